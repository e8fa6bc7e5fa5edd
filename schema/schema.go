// Package schema describes the stored collections and their fields using a
// GraphQL SDL document.
//
// Every object type annotated with @collection(name: "...") becomes a
// collection. Fields whose type is another object type are relations and are
// stored as document ids, never as nested documents.
package schema

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strconv"

	"github.com/nasdf/campus/document"

	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

//go:embed schema.graphql
var defaultSource string

const collectionDirective = "collection"

var (
	// ErrUnknownCollection is returned for a collection not defined by the schema.
	ErrUnknownCollection = errors.New("unknown collection")
	// ErrUnknownField is returned when a document has a field its collection does not define.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidValue is returned when a field value does not match its type.
	ErrInvalidValue = errors.New("invalid value")
)

// Schema contains the collection definitions parsed from a GraphQL schema.
type Schema struct {
	source      string
	collections map[string]*ast.Definition
	types       map[string]string
}

// Load parses the given GraphQL source.
func Load(source string) (*Schema, error) {
	as, err := gqlparser.LoadSchema(&ast.Source{Name: "schema.graphql", Input: source})
	if err != nil {
		return nil, err
	}
	s := &Schema{
		source:      source,
		collections: make(map[string]*ast.Definition),
		types:       make(map[string]string),
	}
	for _, def := range as.Types {
		if def.BuiltIn || def.Kind != ast.Object {
			continue
		}
		name := collectionName(def)
		if name == "" {
			continue
		}
		if _, ok := s.collections[name]; ok {
			return nil, fmt.Errorf("duplicate collection %s", name)
		}
		s.collections[name] = def
		s.types[def.Name] = name
	}
	return s, nil
}

// Default returns the embedded directory schema.
func Default() *Schema {
	s, err := Load(defaultSource)
	if err != nil {
		panic(err)
	}
	return s
}

// Source returns the GraphQL source the schema was parsed from.
func (s *Schema) Source() string {
	return s.source
}

// Collections returns the sorted names of all collections.
func (s *Schema) Collections() []string {
	names := make([]string, 0, len(s.collections))
	for n := range s.collections {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// HasCollection returns true if a collection with the given name exists.
func (s *Schema) HasCollection(name string) bool {
	_, ok := s.collections[name]
	return ok
}

// Relation returns the collection referenced by the given field and a bool
// indicating if the field is a relation.
func (s *Schema) Relation(collection, field string) (string, bool) {
	def, ok := s.collections[collection]
	if !ok {
		return "", false
	}
	f := def.Fields.ForName(field)
	if f == nil {
		return "", false
	}
	target, ok := s.types[namedType(f.Type)]
	return target, ok
}

// Validate returns an error if the document does not match the collection definition.
//
// Missing fields are always valid.
func (s *Schema) Validate(collection string, doc document.Document) error {
	def, ok := s.collections[collection]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownCollection, collection)
	}
	for k, v := range doc {
		f := def.Fields.ForName(k)
		if f == nil {
			return fmt.Errorf("%w: %s.%s", ErrUnknownField, collection, k)
		}
		if err := s.validateValue(f.Type, v); err != nil {
			return fmt.Errorf("%s.%s: %w", collection, k, err)
		}
	}
	return nil
}

func (s *Schema) validateValue(typ *ast.Type, value any) error {
	value = document.Normalize(value)
	if value == nil {
		if typ.NonNull {
			return fmt.Errorf("%w: null for non null type %s", ErrInvalidValue, typ.String())
		}
		return nil
	}
	if typ.Elem != nil {
		list, ok := value.([]any)
		if !ok {
			return fmt.Errorf("%w: expected list got %T", ErrInvalidValue, value)
		}
		for i, v := range list {
			if err := s.validateValue(typ.Elem, v); err != nil {
				return fmt.Errorf("[%s]: %w", strconv.Itoa(i), err)
			}
		}
		return nil
	}
	var ok bool
	switch typ.NamedType {
	case "String", "ID":
		_, ok = value.(string)
	case "Boolean":
		_, ok = value.(bool)
	case "Int":
		_, ok = value.(int64)
	case "Float":
		switch value.(type) {
		case int64, float64:
			ok = true
		}
	case "Time":
		switch value.(type) {
		case string, int64:
			ok = true
		}
	default:
		if _, isRelation := s.types[typ.NamedType]; isRelation {
			// relations are stored as ids
			_, ok = value.(string)
		}
	}
	if !ok {
		return fmt.Errorf("%w: %T for type %s", ErrInvalidValue, value, typ.NamedType)
	}
	return nil
}

func collectionName(def *ast.Definition) string {
	dir := def.Directives.ForName(collectionDirective)
	if dir == nil {
		return ""
	}
	arg := dir.Arguments.ForName("name")
	if arg == nil || arg.Value == nil {
		return ""
	}
	return arg.Value.Raw
}

func namedType(t *ast.Type) string {
	for t.Elem != nil {
		t = t.Elem
	}
	return t.NamedType
}
