package nodetype

import (
	"github.com/ritzau/brandos-canvas/pkg/fields"
	"github.com/ritzau/brandos-canvas/pkg/topology"
)

// Renderable is the exported view of a descriptor consumed by the canvas engine
type Renderable struct {
	TypeTag      string                 `json:"type" yaml:"type"`
	AliasOf      string                 `json:"aliasOf,omitempty" yaml:"aliasOf,omitempty"`
	DisplayTitle string                 `json:"title" yaml:"title"`
	Icon         string                 `json:"icon" yaml:"icon"`
	Accent       string                 `json:"accent" yaml:"accent"`
	Category     Category               `json:"category" yaml:"category"`
	MinSize      fields.Size            `json:"minSize" yaml:"minSize"`
	Resizable    bool                   `json:"resizable" yaml:"resizable"`
	Headerless   bool                   `json:"headerless,omitempty" yaml:"headerless,omitempty"`
	Executable   bool                   `json:"executable,omitempty" yaml:"executable,omitempty"`
	Topology     topology.Kind          `json:"topology" yaml:"topology"`
	Handles      []topology.HandlePoint `json:"handles" yaml:"handles"` // default-instance handles for derived topologies
	Fields       []RenderableField      `json:"fields" yaml:"fields"`
}

// RenderableField adds the commit semantics to a field spec
type RenderableField struct {
	fields.Spec `yaml:",inline"`
	Commit      fields.Commit `json:"commit" yaml:"commit"`
}

// Export returns the aggregate type -> renderable table.
// The table is built once when the registry is sealed and each call returns a
// fresh map over it. An unsealed registry renders its current contents.
func (r *Registry) Export() map[string]Renderable {
	if !r.Sealed() {
		r.mu.Lock()
		defer r.mu.Unlock()
		out := make(map[string]Renderable, len(r.byTag))
		for tag, d := range r.byTag {
			out[tag] = render(d, r.aliases[tag])
		}
		return out
	}

	out := make(map[string]Renderable, len(r.export))
	for tag, v := range r.export {
		out[tag] = v
	}
	return out
}

// Render builds the exported view of a single descriptor
func Render(d Descriptor) Renderable {
	return render(d, "")
}

func render(d Descriptor, aliasOf string) Renderable {
	fs := make([]RenderableField, len(d.Fields))
	for i, f := range d.Fields {
		fs[i] = RenderableField{Spec: f, Commit: f.Commit()}
	}
	return Renderable{
		TypeTag:      d.TypeTag,
		AliasOf:      aliasOf,
		DisplayTitle: d.DisplayTitle,
		Icon:         d.Icon,
		Accent:       d.Accent,
		Category:     d.Category,
		MinSize:      d.MinSize,
		Resizable:    d.Resizable,
		Headerless:   d.Headerless,
		Executable:   d.Executable,
		Topology:     d.Topology.Kind(),
		Handles:      d.Topology.Resolve(fields.Defaults(d.Fields)),
		Fields:       fs,
	}
}
