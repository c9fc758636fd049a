package nodetype

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
)

var (
	// ErrUnknownType matches any *UnknownTypeError via errors.Is
	ErrUnknownType = errors.New("unknown node type")
	// ErrDuplicateType is returned when a tag is registered twice
	ErrDuplicateType = errors.New("node type already registered")
	// ErrSealed is returned when registering after startup
	ErrSealed = errors.New("registry is sealed")
)

// UnknownTypeError reports a type tag with no registered descriptor
type UnknownTypeError struct {
	Tag string
}

func (e *UnknownTypeError) Error() string {
	return fmt.Sprintf("unknown node type %q", e.Tag)
}

func (e *UnknownTypeError) Is(target error) bool {
	return target == ErrUnknownType
}

// Registry maps type tags to descriptors. It is filled once at startup and
// sealed; after Seal it is read-only and safe to share without locking.
type Registry struct {
	mu      sync.Mutex
	byTag   map[string]Descriptor
	aliases map[string]string // alias tag -> target tag
	sealed  atomic.Bool
	export  map[string]Renderable
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{
		byTag:   make(map[string]Descriptor),
		aliases: make(map[string]string),
	}
}

// Register adds a descriptor under tag
func (r *Registry) Register(tag string, d Descriptor) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return fmt.Errorf("register %s: %w", tag, ErrSealed)
	}
	if tag == "" {
		return fmt.Errorf("register: empty type tag")
	}
	if _, exists := r.byTag[tag]; exists {
		return fmt.Errorf("register %s: %w", tag, ErrDuplicateType)
	}

	d.TypeTag = tag
	if err := d.validate(); err != nil {
		return fmt.Errorf("register %s: %w", tag, err)
	}
	r.byTag[tag] = d
	return nil
}

// Alias registers tag as another name for an existing type.
// Resolving the alias returns the target descriptor with TypeTag set to the alias.
func (r *Registry) Alias(tag, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return fmt.Errorf("alias %s: %w", tag, ErrSealed)
	}
	if _, exists := r.byTag[tag]; exists {
		return fmt.Errorf("alias %s: %w", tag, ErrDuplicateType)
	}
	d, ok := r.byTag[target]
	if !ok {
		return fmt.Errorf("alias %s: %w", tag, &UnknownTypeError{Tag: target})
	}

	d.TypeTag = tag
	r.byTag[tag] = d
	r.aliases[tag] = target
	return nil
}

// Seal freezes the registry and builds the export table
func (r *Registry) Seal() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.sealed.Load() {
		return
	}
	r.export = make(map[string]Renderable, len(r.byTag))
	for tag, d := range r.byTag {
		r.export[tag] = render(d, r.aliases[tag])
	}
	r.sealed.Store(true)
}

// Sealed reports whether Seal has been called
func (r *Registry) Sealed() bool {
	return r.sealed.Load()
}

// Resolve returns the descriptor for tag
func (r *Registry) Resolve(tag string) (Descriptor, error) {
	d, ok := r.lookup(tag)
	if !ok {
		return Descriptor{}, &UnknownTypeError{Tag: tag}
	}
	return d, nil
}

// ResolveOrPlaceholder returns the descriptor for tag, or the broken-node
// placeholder when tag is unknown
func (r *Registry) ResolveOrPlaceholder(tag string) Descriptor {
	if d, ok := r.lookup(tag); ok {
		return d
	}
	return Placeholder(tag)
}

// AliasOf returns the target tag when tag is an alias
func (r *Registry) AliasOf(tag string) (string, bool) {
	defer r.readLock()()
	target, ok := r.aliases[tag]
	return target, ok
}

// Tags returns every registered tag, sorted
func (r *Registry) Tags() []string {
	defer r.readLock()()
	tags := make([]string, 0, len(r.byTag))
	for tag := range r.byTag {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// ByCategory returns the descriptors of one category, sorted by tag
func (r *Registry) ByCategory(c Category) []Descriptor {
	var out []Descriptor
	for _, tag := range r.Tags() {
		d, _ := r.lookup(tag)
		if d.Category == c {
			out = append(out, d)
		}
	}
	return out
}

// Len returns the number of registered tags, aliases included
func (r *Registry) Len() int {
	return len(r.Tags())
}

func (r *Registry) lookup(tag string) (Descriptor, bool) {
	defer r.readLock()()
	d, ok := r.byTag[tag]
	return d, ok
}

// readLock takes the lock only while the registry is still being filled.
// Once sealed the maps never change and reads run unsynchronized.
func (r *Registry) readLock() func() {
	if r.sealed.Load() {
		return func() {}
	}
	r.mu.Lock()
	return r.mu.Unlock
}
