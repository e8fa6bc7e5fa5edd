// Package fixture seeds document stores from YAML files.
//
// A fixture maps collection names to documents keyed by id:
//
//	users:
//	  alice:
//	    name: Alice
//	    followedAssociations: [robotics]
package fixture

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"sort"

	"github.com/nasdf/campus/document"
	"github.com/nasdf/campus/ref"

	"gopkg.in/yaml.v3"
)

//go:embed directory.yaml
var defaultSource []byte

// Fixture holds documents keyed by collection and id.
type Fixture map[string]map[string]document.Document

// Parse parses a YAML fixture.
func Parse(data []byte) (Fixture, error) {
	var raw map[string]map[string]map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse fixture: %w", err)
	}
	out := make(Fixture, len(raw))
	for collection, docs := range raw {
		out[collection] = make(map[string]document.Document, len(docs))
		for id, doc := range docs {
			out[collection][id] = document.Document(doc).Normalized()
		}
	}
	return out, nil
}

// Load reads and parses the YAML fixture at the given path.
func Load(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Parse(data)
}

// Default returns the bundled sample directory.
func Default() Fixture {
	f, err := Parse(defaultSource)
	if err != nil {
		panic(err)
	}
	return f
}

// Collections returns the sorted collection names.
func (f Fixture) Collections() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IDs returns the sorted document ids of the collection.
func (f Fixture) IDs(collection string) []string {
	ids := make([]string, 0, len(f[collection]))
	for id := range f[collection] {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the total number of documents.
func (f Fixture) Len() int {
	n := 0
	for _, docs := range f {
		n += len(docs)
	}
	return n
}

// Seed writes a copy of every document to w in collection and id order.
func (f Fixture) Seed(ctx context.Context, w ref.Writer) error {
	for _, collection := range f.Collections() {
		for _, id := range f.IDs(collection) {
			if err := w.Set(ctx, collection, id, f[collection][id].Clone()); err != nil {
				return fmt.Errorf("failed to seed %s/%s: %w", collection, id, err)
			}
		}
	}
	return nil
}
