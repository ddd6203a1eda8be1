// Package prefs provides JSON-based per-user preferences for the browser.
package prefs

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const (
	appDir    = "annotation-browser"
	prefsFile = "preferences.json"
)

// Keys used by the main window.
const (
	KeyLastLibrary  = "lastLibrary"
	KeyLastEntry    = "lastEntry"
	KeyWindowWidth  = "windowWidth"
	KeyWindowHeight = "windowHeight"
)

// Prefs stores preferences as a key-value map.
type Prefs struct {
	mu     sync.RWMutex
	values map[string]interface{}
	path   string
}

// DefaultPath returns <user config dir>/annotation-browser/preferences.json.
func DefaultPath() string {
	configDir, err := os.UserConfigDir()
	if err != nil {
		configDir = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(configDir, appDir, prefsFile)
}

// Load reads preferences from DefaultPath.
func Load() *Prefs {
	return LoadFrom(DefaultPath())
}

// LoadFrom reads preferences from path. A missing or unreadable file yields
// empty preferences that will be written to path on Save.
func LoadFrom(path string) *Prefs {
	p := &Prefs{
		values: make(map[string]interface{}),
		path:   path,
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return p
	}
	_ = json.Unmarshal(data, &p.values)
	return p
}

// Path returns the backing file.
func (p *Prefs) Path() string {
	return p.path
}

// Save writes preferences to disk.
func (p *Prefs) Save() error {
	p.mu.RLock()
	data, err := json.MarshalIndent(p.values, "", "  ")
	p.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("failed to encode preferences: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(p.path), 0o755); err != nil {
		return fmt.Errorf("failed to create preferences dir: %w", err)
	}
	if err := os.WriteFile(p.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write preferences: %w", err)
	}
	return nil
}

// Int returns an int preference, or fallback if not set. JSON numbers decode
// as float64 and are truncated.
func (p *Prefs) Int(key string, fallback int) int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	switch n := p.values[key].(type) {
	case float64:
		return int(n)
	case int:
		return n
	}
	return fallback
}

// SetInt stores an int preference.
func (p *Prefs) SetInt(key string, val int) {
	p.set(key, val)
}

// String returns a string preference, or "" if not set.
func (p *Prefs) String(key string) string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	s, _ := p.values[key].(string)
	return s
}

// SetString stores a string preference.
func (p *Prefs) SetString(key string, val string) {
	p.set(key, val)
}

// Delete removes a preference.
func (p *Prefs) Delete(key string) {
	p.mu.Lock()
	delete(p.values, key)
	p.mu.Unlock()
}

// LastPosition returns the library and entry index open at last exit.
func (p *Prefs) LastPosition() (library string, entry int) {
	return p.String(KeyLastLibrary), p.Int(KeyLastEntry, 0)
}

// SetLastPosition records the open library and entry. An empty library
// forgets the position.
func (p *Prefs) SetLastPosition(library string, entry int) {
	if library == "" {
		p.Delete(KeyLastLibrary)
		p.Delete(KeyLastEntry)
		return
	}
	p.SetString(KeyLastLibrary, library)
	p.SetInt(KeyLastEntry, entry)
}

// WindowSize returns the saved window size, or the fallbacks.
func (p *Prefs) WindowSize(fallbackW, fallbackH int) (int, int) {
	return p.Int(KeyWindowWidth, fallbackW), p.Int(KeyWindowHeight, fallbackH)
}

// SetWindowSize records the window size.
func (p *Prefs) SetWindowSize(w, h int) {
	p.SetInt(KeyWindowWidth, w)
	p.SetInt(KeyWindowHeight, h)
}

func (p *Prefs) set(key string, val interface{}) {
	p.mu.Lock()
	p.values[key] = val
	p.mu.Unlock()
}
