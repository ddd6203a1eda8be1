// Package app provides application state and events for the annotation browser.
package app

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"annotation-browser/internal/library"
	"annotation-browser/internal/logging"
	"annotation-browser/pkg/colorutil"
)

// ErrNoLibrary is returned by entry navigation when no library is open.
var ErrNoLibrary = errors.New("no library open")

// State holds the library listing, the open library and its current entry.
type State struct {
	mu sync.RWMutex

	source library.Source
	logger *log.Logger

	// Category colors persist across entries so a meta keeps its color.
	colors *colorutil.CategoryColors

	libraries  []library.Library
	library    *library.Library
	entryIndex int
	entry      *library.Entry

	// Event listeners
	listeners map[EventType][]EventListener
}

// EventType identifies different application events.
type EventType int

const (
	// EventLibrariesChanged carries the new []library.Library.
	EventLibrariesChanged EventType = iota
	// EventLibraryOpened carries the *library.Library.
	EventLibraryOpened
	// EventEntryLoaded carries the *library.Entry, colors already assigned.
	EventEntryLoaded
	// EventLibraryCleared carries nil.
	EventLibraryCleared
)

func (e EventType) String() string {
	switch e {
	case EventLibrariesChanged:
		return "libraries-changed"
	case EventLibraryOpened:
		return "library-opened"
	case EventEntryLoaded:
		return "entry-loaded"
	case EventLibraryCleared:
		return "library-cleared"
	default:
		return fmt.Sprintf("event(%d)", int(e))
	}
}

// EventListener is called when an event occurs.
type EventListener func(data interface{})

// NewState creates a new application state reading from src.
func NewState(src library.Source, logger *log.Logger) *State {
	return &State{
		source:     src,
		logger:     logging.Component(logger, "state"),
		colors:     colorutil.NewCategoryColors(),
		entryIndex: -1,
		listeners:  make(map[EventType][]EventListener),
	}
}

// On registers an event listener for the specified event type.
func (s *State) On(event EventType, listener EventListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners[event] = append(s.listeners[event], listener)
}

// Emit triggers all listeners for the specified event type.
func (s *State) Emit(event EventType, data interface{}) {
	s.mu.RLock()
	listeners := s.listeners[event]
	s.mu.RUnlock()

	s.logger.Debug("emit", "event", event)
	for _, listener := range listeners {
		listener(data)
	}
}

// Colors returns the category color map shared with the renderer.
func (s *State) Colors() *colorutil.CategoryColors {
	return s.colors
}

// Libraries returns the last listing.
func (s *State) Libraries() []library.Library {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]library.Library(nil), s.libraries...)
}

// Library returns the open library, or nil.
func (s *State) Library() *library.Library {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.library
}

// Entry returns the current entry and its index, or nil and -1.
func (s *State) Entry() (*library.Entry, int) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entry, s.entryIndex
}

// RefreshLibraries re-reads the library listing. If the open library is no
// longer listed it is closed.
func (s *State) RefreshLibraries(ctx context.Context) error {
	libs, err := s.source.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list libraries: %w", err)
	}

	s.mu.Lock()
	s.libraries = libs
	open := s.library
	s.mu.Unlock()

	s.logger.Info("libraries refreshed", "count", len(libs))
	s.Emit(EventLibrariesChanged, libs)

	if open != nil && !containsLibrary(libs, open.Name) {
		s.logger.Warn("open library disappeared", "library", open.Name)
		s.ClearLibrary()
	}
	return nil
}

// OpenLibrary makes name the current library and loads its first entry.
func (s *State) OpenLibrary(ctx context.Context, name string) error {
	lib, err := s.source.Library(ctx, name)
	if err != nil {
		return fmt.Errorf("failed to open library: %w", err)
	}

	s.mu.Lock()
	s.library = lib
	s.entry = nil
	s.entryIndex = -1
	s.mu.Unlock()

	s.logger.Info("library opened", "library", lib.Name, "entries", lib.EntryCount)
	s.Emit(EventLibraryOpened, lib)

	if lib.EntryCount == 0 {
		return nil
	}
	return s.LoadEntry(ctx, 0)
}

// LoadEntry loads entry index of the open library. Every box meta is given a
// color before the entry is published.
func (s *State) LoadEntry(ctx context.Context, index int) error {
	lib := s.Library()
	if lib == nil {
		return ErrNoLibrary
	}

	entry, err := s.source.Entry(ctx, lib.Name, index)
	if err != nil {
		return fmt.Errorf("failed to load entry %d: %w", index, err)
	}
	for _, b := range entry.BoundingBoxes {
		s.colors.Assign(b.Meta)
	}

	s.mu.Lock()
	if s.library == nil || s.library.Name != lib.Name {
		// The library changed while the entry was loading.
		s.mu.Unlock()
		return nil
	}
	s.entry = entry
	s.entryIndex = index
	s.mu.Unlock()

	s.logger.Debug("entry loaded", "library", lib.Name, "index", index, "key", entry.Key, "categories", s.colors.Len())
	s.Emit(EventEntryLoaded, entry)
	return nil
}

// NextEntry loads the entry after the current one, wrapping to the first.
func (s *State) NextEntry(ctx context.Context) error {
	return s.step(ctx, 1)
}

// PrevEntry loads the entry before the current one, wrapping to the last.
func (s *State) PrevEntry(ctx context.Context) error {
	return s.step(ctx, -1)
}

func (s *State) step(ctx context.Context, delta int) error {
	s.mu.RLock()
	lib, index := s.library, s.entryIndex
	s.mu.RUnlock()

	if lib == nil {
		return ErrNoLibrary
	}
	if lib.EntryCount == 0 {
		return fmt.Errorf("%w: library %s is empty", library.ErrEntryOutOfRange, lib.Name)
	}
	if index < 0 && delta < 0 {
		// No entry loaded yet: stepping back lands on the last one.
		index = 0
	}
	next := ((index+delta)%lib.EntryCount + lib.EntryCount) % lib.EntryCount
	return s.LoadEntry(ctx, next)
}

// ClearLibrary closes the open library.
func (s *State) ClearLibrary() {
	s.mu.Lock()
	s.library = nil
	s.entry = nil
	s.entryIndex = -1
	s.mu.Unlock()

	s.Emit(EventLibraryCleared, nil)
}

func containsLibrary(libs []library.Library, name string) bool {
	for _, l := range libs {
		if l.Name == name {
			return true
		}
	}
	return false
}
