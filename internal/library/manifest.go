package library

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

// ManifestFile is the name of the per-library index inside its directory.
const ManifestFile = "library.json"

// Manifest is the on-disk description of a library.
type Manifest struct {
	Name              string          `json:"name"`
	AnnotationClasses []string        `json:"annotation_classes,omitempty"`
	Entries           []ManifestEntry `json:"entries"`
}

// ManifestEntry points at one image relative to the library directory.
type ManifestEntry struct {
	Key           string        `json:"key"`
	Image         string        `json:"image"`
	Width         int           `json:"width,omitempty"`
	Height        int           `json:"height,omitempty"`
	BoundingBoxes []BoundingBox `json:"bounding_boxes"`
}

// ReadManifest loads and normalizes a manifest file.
func ReadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("failed to parse manifest %s: %w", path, err)
	}
	m.normalize()
	return &m, nil
}

func (m *Manifest) normalize() {
	for i := range m.Entries {
		e := &m.Entries[i]
		if e.Key == "" {
			e.Key = fmt.Sprintf("%s-%d", m.Name, i)
		}
		for j := range e.BoundingBoxes {
			if e.BoundingBoxes[j].Meta == "" {
				e.BoundingBoxes[j].Meta = DefaultMeta
			}
		}
	}
	if len(m.AnnotationClasses) == 0 {
		m.AnnotationClasses = m.labels()
	}
}

// labels collects the distinct box labels, sorted.
func (m *Manifest) labels() []string {
	seen := make(map[string]struct{})
	for _, e := range m.Entries {
		for _, b := range e.BoundingBoxes {
			if b.Label != "" {
				seen[b.Label] = struct{}{}
			}
		}
	}
	out := make([]string, 0, len(seen))
	for l := range seen {
		out = append(out, l)
	}
	sort.Strings(out)
	return out
}
