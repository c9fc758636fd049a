package fields

import (
	"fmt"
	"reflect"
	"sync"
)

// Editor holds the local editing state of one node instance.
// Text fields buffer keystrokes in a draft and reach the store once on blur;
// every other kind forwards each change immediately.
type Editor struct {
	mu        sync.Mutex
	nodeID    string
	specs     []Spec
	dataKeys  map[string]bool
	committed map[string]any
	drafts    map[string]any
	locked    bool
	mutator   Mutator
}

// NewEditor creates an editor for nodeID over the given schema. dataKeys
// are keys without a control that Commit may still write.
func NewEditor(nodeID string, specs []Spec, dataKeys []string, committed map[string]any, locked bool, m Mutator) *Editor {
	keys := make(map[string]bool, len(dataKeys))
	for _, k := range dataKeys {
		keys[k] = true
	}
	return &Editor{
		nodeID:    nodeID,
		specs:     specs,
		dataKeys:  keys,
		committed: Normalize(specs, committed),
		drafts:    make(map[string]any),
		locked:    locked,
		mutator:   m,
	}
}

// SetLocked updates the lock state. Pending drafts are kept but cannot be committed while locked.
func (e *Editor) SetLocked(locked bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.locked = locked
}

// Locked reports whether edits are currently rejected
func (e *Editor) Locked() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.locked
}

// Sync replaces the committed values after the store changed underneath.
// Drafts survive so an in-progress edit is not lost.
func (e *Editor) Sync(committed map[string]any) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.committed = Normalize(e.specs, committed)
}

// Input records a change from a control.
func (e *Editor) Input(key string, value any) error {
	e.mu.Lock()
	spec, err := e.check(key)
	if err != nil {
		e.mu.Unlock()
		return err
	}

	if spec.Commit() == CommitOnBlur {
		e.drafts[key] = value
		e.mu.Unlock()
		return nil
	}

	e.committed[key] = value
	e.mu.Unlock()

	e.mutator.OnChange(e.nodeID, Patch{key: value}, nil)
	return nil
}

// Blur flushes the draft of a text field. It emits one OnChange when the
// draft differs from the committed value and nothing otherwise.
func (e *Editor) Blur(key string) error {
	e.mu.Lock()
	if _, err := e.check(key); err != nil {
		e.mu.Unlock()
		return err
	}

	draft, ok := e.drafts[key]
	if !ok {
		e.mu.Unlock()
		return nil
	}
	delete(e.drafts, key)

	if reflect.DeepEqual(draft, e.committed[key]) {
		e.mu.Unlock()
		return nil
	}
	e.committed[key] = draft
	e.mu.Unlock()

	e.mutator.OnChange(e.nodeID, Patch{key: draft}, nil)
	return nil
}

// Commit sends several keys, and optionally a size, as one patch. Keys must
// be fields or data keys of the type.
func (e *Editor) Commit(patch Patch, size *Size) error {
	e.mu.Lock()
	if e.locked {
		e.mu.Unlock()
		return ErrLocked
	}
	for k := range patch {
		if _, ok := Lookup(e.specs, k); !ok && !e.dataKeys[k] {
			e.mu.Unlock()
			return fmt.Errorf("%w: %s", ErrUnknownField, k)
		}
	}
	for k, v := range patch {
		e.committed[k] = v
		delete(e.drafts, k)
	}
	e.mu.Unlock()

	e.mutator.OnChange(e.nodeID, patch, size)
	return nil
}

// Draft returns the pending, uncommitted value of key
func (e *Editor) Draft(key string) (any, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.drafts[key]
	return v, ok
}

// Value returns what the control should display: the draft when one exists,
// the committed value otherwise
func (e *Editor) Value(key string) any {
	e.mu.Lock()
	defer e.mu.Unlock()
	if v, ok := e.drafts[key]; ok {
		return v
	}
	return e.committed[key]
}

// check must be called with e.mu held
func (e *Editor) check(key string) (Spec, error) {
	if e.locked {
		return Spec{}, ErrLocked
	}
	spec, ok := Lookup(e.specs, key)
	if !ok {
		return Spec{}, fmt.Errorf("%w: %s", ErrUnknownField, key)
	}
	return spec, nil
}
