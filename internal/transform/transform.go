// Package transform applies versioned format migrations to destination
// notes. Each transformation is tagged with the version that introduced it;
// a note only receives the transformations newer than its recorded version,
// in ascending order, and is then stamped with the pipeline's current
// version.
package transform

import (
	"fmt"
	"sort"

	"github.com/halvard/quotesync/internal/note"
)

// Transformation is one pure migration step.
type Transformation struct {
	// Version is the format version this step introduced.
	Version int
	Name    string
	Apply   func(*note.Document)
}

// Pipeline is an ordered set of transformations. The current version is
// derived from the steps supplied at construction, so tests can pin a
// pipeline to any version by choosing the steps.
type Pipeline struct {
	steps   []Transformation
	current int
}

// NewPipeline builds a pipeline from the given steps. Steps may be supplied
// in any order; duplicate versions are rejected.
func NewPipeline(steps ...Transformation) (*Pipeline, error) {
	sorted := make([]Transformation, len(steps))
	copy(sorted, steps)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Version < sorted[j].Version })

	current := 0
	for i, s := range sorted {
		if s.Version <= 0 {
			return nil, fmt.Errorf("transform: step %q has non-positive version %d", s.Name, s.Version)
		}
		if i > 0 && s.Version == sorted[i-1].Version {
			return nil, fmt.Errorf("transform: duplicate version %d", s.Version)
		}
		current = s.Version
	}
	return &Pipeline{steps: sorted, current: current}, nil
}

// CurrentVersion is the version notes are stamped with after a full pass.
func (p *Pipeline) CurrentVersion() int {
	return p.current
}

// Apply runs every transformation newer than the document's recorded version
// and stamps the current version. A note missing the version field is
// treated as version 0 and receives every step. Returns the number of
// transformations applied; 0 means the note was already up to date.
func (p *Pipeline) Apply(doc *note.Document) int {
	from := doc.Version()
	if from >= p.current {
		return 0
	}
	applied := 0
	for _, s := range p.steps {
		if s.Version <= from {
			continue
		}
		s.Apply(doc)
		applied++
	}
	doc.SetVersion(p.current)
	return applied
}
