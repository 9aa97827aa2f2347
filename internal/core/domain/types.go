package domain

import (
	"fmt"
	"math"
	"reflect"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// TypeOf returns the static type of T. Unlike reflect.TypeOf it also works
// for interface types such as any.
func TypeOf[T any]() reflect.Type {
	return reflect.TypeOf((*T)(nil)).Elem()
}

// TypeName returns the fully-qualified descriptor of t as written to a
// settings document. Named types are qualified by their package path
// (e.g. "time.Duration"). Pointers, slices, arrays and maps are spelled with
// the descriptors of their element types (e.g. "[]time.Duration",
// "map[string]*int"); other types use their Go spelling ("interface {}").
func TypeName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	if t.Name() != "" {
		if t.PkgPath() != "" {
			return t.PkgPath() + "." + t.Name()
		}
		return t.String()
	}
	switch t.Kind() {
	case reflect.Pointer:
		return "*" + TypeName(t.Elem())
	case reflect.Slice:
		return "[]" + TypeName(t.Elem())
	case reflect.Array:
		return "[" + strconv.Itoa(t.Len()) + "]" + TypeName(t.Elem())
	case reflect.Map:
		return "map[" + TypeName(t.Key()) + "]" + TypeName(t.Elem())
	default:
		return t.String()
	}
}

// Assignable reports whether value may be stored under a setting declared as t.
// A nil value is only assignable to kinds that can hold nil.
func Assignable(value any, t reflect.Type) bool {
	if t == nil {
		return false
	}
	if value == nil {
		switch t.Kind() {
		case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
			return true
		default:
			return false
		}
	}
	return reflect.TypeOf(value).AssignableTo(t)
}

// TypeRegistry resolves type descriptors back to Go types.
// Go has no way to look a type up by name, so every type that should survive
// a store/load round trip must be known here.
type TypeRegistry struct {
	mu    sync.RWMutex
	types map[string]reflect.Type
}

// NewTypeRegistry creates a registry preloaded with the builtin setting types.
func NewTypeRegistry() *TypeRegistry {
	r := &TypeRegistry{types: make(map[string]reflect.Type)}
	for _, t := range builtinTypes() {
		r.Add(t)
	}
	return r
}

// Add makes t resolvable by its descriptor. Adding a type twice is a no-op.
// It returns an error if a different type already owns the descriptor.
func (r *TypeRegistry) Add(t reflect.Type) error {
	if t == nil {
		return fmt.Errorf("%w: nil type", ErrTypeMismatch)
	}
	name := TypeName(t)

	r.mu.Lock()
	defer r.mu.Unlock()

	if existing, ok := r.types[name]; ok && existing != t {
		return fmt.Errorf("type descriptor %q already bound to %v", name, existing)
	}
	r.types[name] = t
	return nil
}

// Resolve returns the type registered under name. Pointer, slice, array
// and map descriptors are built from their element types, so only the
// element types need to be registered.
func (r *TypeRegistry) Resolve(name string) (reflect.Type, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.resolve(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return t, nil
}

// resolve parses name structurally (caller must hold lock).
func (r *TypeRegistry) resolve(name string) (reflect.Type, bool) {
	if t, ok := r.types[name]; ok {
		return t, true
	}

	switch {
	case strings.HasPrefix(name, "*"):
		elem, ok := r.resolve(name[1:])
		if !ok {
			return nil, false
		}
		return reflect.PointerTo(elem), true

	case strings.HasPrefix(name, "[]"):
		elem, ok := r.resolve(name[2:])
		if !ok {
			return nil, false
		}
		return reflect.SliceOf(elem), true

	case strings.HasPrefix(name, "map["):
		end := closingBracket(name, len("map["))
		if end < 0 {
			return nil, false
		}
		key, ok := r.resolve(name[len("map["):end])
		if !ok || !key.Comparable() {
			return nil, false
		}
		elem, ok := r.resolve(name[end+1:])
		if !ok {
			return nil, false
		}
		return reflect.MapOf(key, elem), true

	case strings.HasPrefix(name, "["):
		end := strings.IndexByte(name, ']')
		if end < 0 {
			return nil, false
		}
		n, err := strconv.Atoi(name[1:end])
		if err != nil || n < 0 {
			return nil, false
		}
		elem, ok := r.resolve(name[end+1:])
		if !ok || (elem.Size() > 0 && uintptr(n) > math.MaxInt/elem.Size()) {
			return nil, false
		}
		return reflect.ArrayOf(n, elem), true
	}

	return nil, false
}

// closingBracket returns the index of the ']' that closes the '[' just
// before start, or -1.
func closingBracket(s string, start int) int {
	depth := 1
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// Names returns all known descriptors sorted alphabetically.
func (r *TypeRegistry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.types))
	for name := range r.types {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// RegisterType adds T to the registry.
func RegisterType[T any](r *TypeRegistry) error {
	return r.Add(TypeOf[T]())
}

func builtinTypes() []reflect.Type {
	return []reflect.Type{
		TypeOf[bool](),
		TypeOf[string](),
		TypeOf[int](),
		TypeOf[int8](),
		TypeOf[int16](),
		TypeOf[int32](),
		TypeOf[int64](),
		TypeOf[uint](),
		TypeOf[uint8](),
		TypeOf[uint16](),
		TypeOf[uint32](),
		TypeOf[uint64](),
		TypeOf[float32](),
		TypeOf[float64](),
		TypeOf[[]byte](),
		TypeOf[[]string](),
		TypeOf[[]int](),
		TypeOf[[]float64](),
		TypeOf[[]any](),
		TypeOf[map[string]string](),
		TypeOf[map[string]int](),
		TypeOf[map[string]any](),
		TypeOf[any](),
		TypeOf[time.Duration](),
		TypeOf[time.Time](),
	}
}
