package programs

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

// DescriptorError reports a descriptor rejected at registry load.
type DescriptorError struct {
	ID     int
	Name   string
	Reason string
	Err    error
}

func (e *DescriptorError) Error() string {
	msg := fmt.Sprintf("%v %d (%q): %s", ErrInvalidDescriptor, e.ID, e.Name, e.Reason)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *DescriptorError) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrInvalidDescriptor}
	}
	return []error{ErrInvalidDescriptor, e.Err}
}

// Registry is an immutable, validated set of descriptors ordered by id.
type Registry struct {
	descs []Descriptor
	index map[int]int
}

var glslIdent = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// NewRegistry validates descs and returns them as a registry. Duplicate ids,
// malformed defaults and missing renderer hooks are rejected.
func NewRegistry(descs ...Descriptor) (*Registry, error) {
	r := &Registry{
		descs: slices.Clone(descs),
		index: make(map[int]int, len(descs)),
	}
	slices.SortStableFunc(r.descs, func(a, b Descriptor) int { return a.ID - b.ID })

	for i, d := range r.descs {
		if _, ok := r.index[d.ID]; ok {
			return nil, &DescriptorError{ID: d.ID, Name: d.Name, Reason: "duplicate id"}
		}
		if err := validate(d); err != nil {
			return nil, err
		}
		r.index[d.ID] = i
	}

	return r, nil
}

func validate(d Descriptor) error {
	fail := func(reason string, err error) error {
		return &DescriptorError{ID: d.ID, Name: d.Name, Reason: reason, Err: err}
	}

	if d.ID < 0 {
		return fail("negative id", nil)
	}
	if strings.TrimSpace(d.Name) == "" {
		return fail("empty name", nil)
	}
	if err := d.Defaults.Validate(); err != nil {
		return fail("malformed defaults", err)
	}

	switch d.Kind {
	case GPU:
		if !glslIdent.MatchString(d.Func) {
			return fail(fmt.Sprintf("bad function name %q", d.Func), nil)
		}
		if !strings.Contains(d.Source, d.Func+"(") {
			return fail(fmt.Sprintf("source does not define %s", d.Func), nil)
		}
		if d.Shape < ShapePlane || d.Shape > ShapeRay {
			return fail(fmt.Sprintf("unknown point shape %d", d.Shape), nil)
		}
		if d.Output != OutputColor && d.Output != OutputDepth {
			return fail(fmt.Sprintf("unknown output %d", d.Output), nil)
		}
	case CPU:
		if d.Draw == nil {
			return fail("missing draw callback", nil)
		}
	default:
		return fail(fmt.Sprintf("unknown kind %v", d.Kind), nil)
	}
	return nil
}

func (r *Registry) Len() int { return len(r.descs) }

// Lookup returns the descriptor registered under id.
func (r *Registry) Lookup(id int) (Descriptor, bool) {
	i, ok := r.index[id]
	if !ok {
		return Descriptor{}, false
	}
	return r.descs[i], true
}

// Resolve is Lookup with unknown ids mapped to Fallback.
func (r *Registry) Resolve(id int) Descriptor {
	if d, ok := r.Lookup(id); ok {
		return d
	}
	return Fallback
}

// Descriptors returns every descriptor ordered by id.
func (r *Registry) Descriptors() []Descriptor {
	return slices.Clone(r.descs)
}

// Kind returns the descriptors of kind k ordered by id.
func (r *Registry) Kind(k Kind) []Descriptor {
	var out []Descriptor
	for _, d := range r.descs {
		if d.Kind == k {
			out = append(out, d)
		}
	}
	return out
}
