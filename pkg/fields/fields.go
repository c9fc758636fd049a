package fields

import (
	"errors"
	"fmt"
)

// Kind is the control used to edit a field in a node body
type Kind string

const (
	KindFreeText      Kind = "freeText"
	KindMultilineText Kind = "multilineText"
	KindEnumSelect    Kind = "enumSelect"
	KindNumericRange  Kind = "numericRange"
	KindToggle        Kind = "toggle"
	KindColorSwatch   Kind = "colorSwatch"
)

// Commit describes when an edit reaches the external store
type Commit string

const (
	CommitOnBlur       Commit = "onCommit"       // buffered locally, flushed when the control loses focus
	CommitOnEachChange Commit = "onEachKeystroke" // every change is forwarded immediately
)

var (
	// ErrLocked is returned by edit operations on a locked node
	ErrLocked = errors.New("node is locked")
	// ErrUnknownField is returned when a key is not part of the node's schema
	ErrUnknownField = errors.New("unknown field")
)

// Size is a width/height pair in canvas units
type Size struct {
	Width  float64 `json:"width" yaml:"width"`
	Height float64 `json:"height" yaml:"height"`
}

// Positive reports whether both dimensions are greater than zero
func (s Size) Positive() bool {
	return s.Width > 0 && s.Height > 0
}

// Patch is a partial data record merged into a node's existing data
type Patch map[string]any

// Mutator is the single mutation entry point exposed to the canvas engine.
// Calls are fire-and-forget; failures belong to the implementing store.
type Mutator interface {
	OnChange(nodeID string, data Patch, size *Size)
}

// MutatorFunc adapts a plain function to Mutator
type MutatorFunc func(nodeID string, data Patch, size *Size)

func (f MutatorFunc) OnChange(nodeID string, data Patch, size *Size) {
	f(nodeID, data, size)
}

// Spec describes one editable control in a node body
type Spec struct {
	Key         string   `json:"key" yaml:"key"`
	Kind        Kind     `json:"kind" yaml:"kind"`
	Label       string   `json:"label,omitempty" yaml:"label,omitempty"`
	Placeholder string   `json:"placeholder,omitempty" yaml:"placeholder,omitempty"`
	Options     []string `json:"options,omitempty" yaml:"options,omitempty"` // enumSelect only
	Min         float64  `json:"min,omitempty" yaml:"min,omitempty"`         // numericRange only
	Max         float64  `json:"max,omitempty" yaml:"max,omitempty"`
	Step        float64  `json:"step,omitempty" yaml:"step,omitempty"`
	Default     any      `json:"default" yaml:"default"`
}

// Commit returns the change semantics implied by the field's kind
func (s Spec) Commit() Commit {
	switch s.Kind {
	case KindFreeText, KindMultilineText:
		return CommitOnBlur
	default:
		return CommitOnEachChange
	}
}

// Validate checks that the constraints match the kind
func (s Spec) Validate() error {
	if s.Key == "" {
		return fmt.Errorf("field has empty key")
	}
	switch s.Kind {
	case KindEnumSelect:
		if len(s.Options) == 0 {
			return fmt.Errorf("field %s: enumSelect needs at least one option", s.Key)
		}
		if d, ok := s.Default.(string); ok && !contains(s.Options, d) {
			return fmt.Errorf("field %s: default %q is not an option", s.Key, d)
		}
	case KindNumericRange:
		if s.Max < s.Min {
			return fmt.Errorf("field %s: max %g below min %g", s.Key, s.Max, s.Min)
		}
		if s.Step <= 0 {
			return fmt.Errorf("field %s: step must be positive", s.Key)
		}
	case KindFreeText, KindMultilineText, KindToggle, KindColorSwatch:
	default:
		return fmt.Errorf("field %s: unknown kind %q", s.Key, s.Kind)
	}
	return nil
}

// Text builds a single-line text field
func Text(key, label, placeholder string) Spec {
	return Spec{Key: key, Kind: KindFreeText, Label: label, Placeholder: placeholder, Default: ""}
}

// Multiline builds a multi-line text field
func Multiline(key, label, placeholder string) Spec {
	return Spec{Key: key, Kind: KindMultilineText, Label: label, Placeholder: placeholder, Default: ""}
}

// Enum builds a select field; the first option is the default unless def is set
func Enum(key, label string, def string, options ...string) Spec {
	if def == "" && len(options) > 0 {
		def = options[0]
	}
	return Spec{Key: key, Kind: KindEnumSelect, Label: label, Options: options, Default: def}
}

// Range builds a numeric slider field
func Range(key, label string, min, max, step, def float64) Spec {
	return Spec{Key: key, Kind: KindNumericRange, Label: label, Min: min, Max: max, Step: step, Default: def}
}

// Toggle builds a boolean switch field
func Toggle(key, label string, def bool) Spec {
	return Spec{Key: key, Kind: KindToggle, Label: label, Default: def}
}

// Swatch builds a color picker field
func Swatch(key, label, def string) Spec {
	return Spec{Key: key, Kind: KindColorSwatch, Label: label, Default: def}
}

// Lookup finds the spec for key
func Lookup(specs []Spec, key string) (Spec, bool) {
	for _, s := range specs {
		if s.Key == key {
			return s, true
		}
	}
	return Spec{}, false
}

func contains(options []string, v string) bool {
	for _, o := range options {
		if o == v {
			return true
		}
	}
	return false
}
