package library

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/log"
)

// DirSource serves libraries stored as subdirectories of a data directory,
// each holding a ManifestFile and the images it references.
type DirSource struct {
	root   string
	logger *log.Logger
}

// NewDirSource creates a source rooted at dir.
func NewDirSource(dir string, logger *log.Logger) *DirSource {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &DirSource{root: dir, logger: logger}
}

// Root returns the data directory.
func (s *DirSource) Root() string {
	return s.root
}

// List implements Source.
func (s *DirSource) List(ctx context.Context) ([]Library, error) {
	dirs, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("failed to read data directory: %w", err)
	}

	var libs []Library
	for _, d := range dirs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !d.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, d.Name())
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err != nil {
			continue
		}
		lib, err := s.describe(dir)
		if err != nil {
			s.logger.Warn("skipping library", "dir", dir, "err", err)
			continue
		}
		libs = append(libs, *lib)
	}

	sort.Slice(libs, func(i, j int) bool { return libs[i].Name < libs[j].Name })
	return libs, nil
}

// Library implements Source.
func (s *DirSource) Library(ctx context.Context, name string) (*Library, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.dirFor(name)
	if err != nil {
		return nil, err
	}
	return s.describe(dir)
}

// Entry implements Source.
func (s *DirSource) Entry(ctx context.Context, name string, index int) (*Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	dir, err := s.dirFor(name)
	if err != nil {
		return nil, err
	}
	m, err := ReadManifest(filepath.Join(dir, ManifestFile))
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(m.Entries) {
		return nil, fmt.Errorf("%w: %d of %d in %s", ErrEntryOutOfRange, index, len(m.Entries), name)
	}

	me := m.Entries[index]
	img, err := LoadImage(filepath.Join(dir, me.Image))
	if err != nil {
		return nil, err
	}

	b := img.Bounds()
	entry := &Entry{
		Library:       name,
		Index:         index,
		Key:           me.Key,
		Image:         img,
		Width:         me.Width,
		Height:        me.Height,
		BoundingBoxes: append([]BoundingBox(nil), me.BoundingBoxes...),
	}
	if entry.Width <= 0 {
		entry.Width = b.Dx()
	}
	if entry.Height <= 0 {
		entry.Height = b.Dy()
	}

	s.logger.Debug("loaded entry", "library", name, "index", index, "key", me.Key,
		"size", fmt.Sprintf("%dx%d", entry.Width, entry.Height), "boxes", len(entry.BoundingBoxes))
	return entry, nil
}

// dirFor resolves a library name to its directory. Directory names are
// tried first, then the names recorded in the manifests.
func (s *DirSource) dirFor(name string) (string, error) {
	if name != "" && name == filepath.Base(name) {
		dir := filepath.Join(s.root, name)
		if _, err := os.Stat(filepath.Join(dir, ManifestFile)); err == nil {
			return dir, nil
		}
	}

	dirs, err := os.ReadDir(s.root)
	if err != nil {
		return "", fmt.Errorf("failed to read data directory: %w", err)
	}
	for _, d := range dirs {
		if !d.IsDir() {
			continue
		}
		dir := filepath.Join(s.root, d.Name())
		m, err := ReadManifest(filepath.Join(dir, ManifestFile))
		if err == nil && m.Name == name {
			return dir, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrNotFound, name)
}

func (s *DirSource) describe(dir string) (*Library, error) {
	manifestPath := filepath.Join(dir, ManifestFile)
	m, err := ReadManifest(manifestPath)
	if err != nil {
		return nil, err
	}

	name := m.Name
	if name == "" {
		name = filepath.Base(dir)
	}

	size := fileSize(manifestPath)
	for _, e := range m.Entries {
		size += fileSize(filepath.Join(dir, e.Image))
	}

	return &Library{
		Name:              name,
		FilePath:          dir,
		FileSize:          size,
		EntryCount:        len(m.Entries),
		AnnotationClasses: m.AnnotationClasses,
	}, nil
}

func fileSize(path string) int64 {
	info, err := os.Stat(path)
	if err != nil {
		return 0
	}
	return info.Size()
}
