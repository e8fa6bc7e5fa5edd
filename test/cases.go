package test

import (
	"embed"
	"io/fs"
	"path/filepath"

	"github.com/nasdf/campus/fixture"

	"gopkg.in/yaml.v3"
)

//go:embed cases
var casesFS embed.FS

type TestCase struct {
	// Description is a simple description for the test case.
	Description string
	// Documents is the fixture the store is seeded with.
	Documents fixture.Fixture
	// Failures maps "collection/id" keys to store errors returned for them.
	Failures map[string]string
	// Steps is a list of resolutions to run in order.
	Steps []Step
}

type Step struct {
	// Collection is the collection the ids belong to.
	Collection string
	// ID is the target of a single reference.
	ID string
	// IDs are the targets of a reference collection.
	IDs []string
	// List resolves a collection even when IDs is empty.
	List bool
	// Lazy resolves a single reference lazily.
	Lazy bool
	// Repeat is the number of times the resolution is run. Zero means once.
	Repeat int
	// Expect describes the state after the step.
	Expect Expectation
}

type Expectation struct {
	// Cached are the ids of the cached entities in id order.
	Cached []string
	// Failed are the ids that could not be resolved.
	Failed []string
	// Error is "not_found", "store" or empty for a single reference.
	Error string
	// Reads is the number of store reads performed by the step.
	Reads int
}

// Many returns true if the step resolves a collection.
func (s Step) Many() bool {
	return s.List || len(s.IDs) > 0
}

// TestCasePaths returns a list of all test case file paths.
func TestCasePaths() (paths []string, _ error) {
	return paths, fs.WalkDir(casesFS, "cases", func(path string, d fs.DirEntry, err error) error {
		if filepath.Ext(path) == ".yaml" {
			paths = append(paths, path)
		}
		return err
	})
}

// LoadTestCase loads and parses a test case file.
func LoadTestCase(path string) (*TestCase, error) {
	data, err := fs.ReadFile(casesFS, path)
	if err != nil {
		return nil, err
	}
	var testCase TestCase
	if err := yaml.Unmarshal(data, &testCase); err != nil {
		return nil, err
	}
	return &testCase, nil
}
