package node

import (
	"fmt"
	"sort"

	"github.com/nasdf/campus/document"

	"github.com/ipld/go-ipld-prime/datamodel"
	"github.com/ipld/go-ipld-prime/node/basicnode"
)

// BuildDocument returns a new map node containing the values of the given document.
func BuildDocument(doc document.Document) (datamodel.Node, error) {
	nb := basicnode.Prototype.Map.NewBuilder()
	if err := assignMap(doc, nb); err != nil {
		return nil, err
	}
	return nb.Build(), nil
}

// Build returns a new node containing the given go value.
func Build(value any) (datamodel.Node, error) {
	nb := basicnode.Prototype.Any.NewBuilder()
	if err := assignValue(value, nb); err != nil {
		return nil, err
	}
	return nb.Build(), nil
}

func assignValue(value any, na datamodel.NodeAssembler) error {
	switch v := document.Normalize(value).(type) {
	case nil:
		return na.AssignNull()
	case bool:
		return na.AssignBool(v)
	case int64:
		return na.AssignInt(v)
	case float64:
		return na.AssignFloat(v)
	case string:
		return na.AssignString(v)
	case []byte:
		return na.AssignBytes(v)
	case []any:
		return assignList(v, na)
	case map[string]any:
		return assignMap(v, na)
	default:
		return fmt.Errorf("cannot build node from %T", value)
	}
}

func assignList(value []any, na datamodel.NodeAssembler) error {
	la, err := na.BeginList(int64(len(value)))
	if err != nil {
		return err
	}
	for _, v := range value {
		if err := assignValue(v, la.AssembleValue()); err != nil {
			return err
		}
	}
	return la.Finish()
}

func assignMap(value map[string]any, na datamodel.NodeAssembler) error {
	// sorted keys keep the encoding and therefore the link stable
	keys := make([]string, 0, len(value))
	for k := range value {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ma, err := na.BeginMap(int64(len(value)))
	if err != nil {
		return err
	}
	for _, k := range keys {
		va, err := ma.AssembleEntry(k)
		if err != nil {
			return err
		}
		if err := assignValue(value[k], va); err != nil {
			return err
		}
	}
	return ma.Finish()
}
