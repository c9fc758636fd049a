package nodetype

import (
	"fmt"

	"github.com/ritzau/brandos-canvas/pkg/fields"
	"github.com/ritzau/brandos-canvas/pkg/topology"
)

// Category groups node types in the palette
type Category string

const (
	CategoryContent     Category = "content"
	CategoryShape       Category = "shape"
	CategoryAI          Category = "ai"
	CategoryIntegration Category = "integration"
	CategoryLogic       Category = "logic"
	CategoryStrategy    Category = "strategy"
)

// Categories lists the categories in palette order
var Categories = []Category{
	CategoryContent,
	CategoryShape,
	CategoryAI,
	CategoryIntegration,
	CategoryLogic,
	CategoryStrategy,
}

// Descriptor is the registered contract of one node type
type Descriptor struct {
	TypeTag      string            // stable identifier stored in persisted boards
	DisplayTitle string            // header title
	Icon         string            // symbolic icon name
	Accent       string            // semantic accent color token
	Category     Category
	MinSize      fields.Size       // lower bound enforced by the resizer
	Topology     topology.Topology // handles, static or derived from data
	Fields       []fields.Spec     // editable controls, may be empty
	DataKeys     []string          // keys written by drops or runs, without a control
	Resizable    bool
	Headerless   bool // shapes and stickies render without the header bar
	Executable   bool // carries executionStatus / executionOutput set externally
}

// Handles resolves the connection points for an instance of this type
func (d Descriptor) Handles(data map[string]any) ([]topology.HandlePoint, error) {
	return topology.Resolve(d.Topology, data)
}

// Normalize applies this type's default table to instance data
func (d Descriptor) Normalize(data map[string]any) map[string]any {
	return fields.Normalize(d.Fields, data)
}

// Editor creates the field editor for an instance of this type
func (d Descriptor) Editor(nodeID string, data map[string]any, locked bool, m fields.Mutator) *fields.Editor {
	return fields.NewEditor(nodeID, d.Fields, d.DataKeys, data, locked, m)
}

// Field returns the spec for key
func (d Descriptor) Field(key string) (fields.Spec, bool) {
	return fields.Lookup(d.Fields, key)
}

func (d Descriptor) validate() error {
	if d.TypeTag == "" {
		return fmt.Errorf("descriptor has empty type tag")
	}
	if !d.MinSize.Positive() {
		return fmt.Errorf("type %s: min size must be positive, got %gx%g",
			d.TypeTag, d.MinSize.Width, d.MinSize.Height)
	}
	if d.Topology == nil {
		return fmt.Errorf("type %s: missing topology", d.TypeTag)
	}
	if d.Topology.Kind() == topology.KindFixed {
		if err := topology.Validate(d.Topology.Resolve(nil)); err != nil {
			return fmt.Errorf("type %s: %w", d.TypeTag, err)
		}
	}
	seen := make(map[string]bool, len(d.Fields))
	for _, f := range d.Fields {
		if err := f.Validate(); err != nil {
			return fmt.Errorf("type %s: %w", d.TypeTag, err)
		}
		if seen[f.Key] {
			return fmt.Errorf("type %s: duplicate field %s", d.TypeTag, f.Key)
		}
		seen[f.Key] = true
	}
	for _, k := range d.DataKeys {
		if seen[k] {
			return fmt.Errorf("type %s: duplicate field %s", d.TypeTag, k)
		}
		seen[k] = true
	}
	return nil
}

// Placeholder is the descriptor rendered for a type tag that is not registered.
// It keeps the broken node visible and connectable without failing the board.
func Placeholder(tag string) Descriptor {
	return Descriptor{
		TypeTag:      tag,
		DisplayTitle: "NULL_VARIANT",
		Icon:         "alert-triangle",
		Accent:       "danger",
		Category:     CategoryContent,
		MinSize:      fields.Size{Width: 160, Height: 80},
		Topology:     topology.Generic(),
	}
}
