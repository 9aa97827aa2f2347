package jsonstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/tidwall/gjson"
	"github.com/tidwall/pretty"
	"github.com/tidwall/sjson"

	"github.com/custodia-labs/setstore/internal/core/domain"
)

// Section names of the settings document, in write order.
const (
	sectionTypes    = "types"
	sectionValues   = "values"
	sectionDefaults = "defaults"
)

// descriptorType is the shape every entry of the types section is decoded into.
var descriptorType = reflect.TypeOf("")

var prettyOptions = &pretty.Options{Width: 80, Prefix: "", Indent: "  ", SortKeys: false}

// typeResolver returns the type an entry of a section is decoded into.
type typeResolver func(key string) (reflect.Type, error)

// encodeDocument renders reg as an indented document with the sections
// types, values and defaults in that order.
func encodeDocument(reg registry) ([]byte, error) {
	typeOf := func(key string) reflect.Type { return reg.types[key] }

	types := make(map[string]any, len(reg.types))
	for key, t := range reg.types {
		types[key] = domain.TypeName(t)
	}

	sections := []struct {
		name    string
		entries map[string]any
		shape   func(key string) reflect.Type
	}{
		{sectionTypes, types, func(string) reflect.Type { return descriptorType }},
		{sectionValues, reg.values, typeOf},
		{sectionDefaults, reg.defaults, typeOf},
	}

	doc := []byte(`{}`)
	for _, section := range sections {
		raw, err := encodeSection(section.entries, section.shape)
		if err != nil {
			return nil, fmt.Errorf("%w: section %s: %w", domain.ErrCorruptDocument, section.name, err)
		}
		doc, err = sjson.SetRawBytes(doc, section.name, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: section %s: %w", domain.ErrCorruptDocument, section.name, err)
		}
	}

	return pretty.PrettyOptions(doc, prettyOptions), nil
}

// encodeSection marshals each entry as its key's shape. Keys come out sorted.
func encodeSection(entries map[string]any, shape func(key string) reflect.Type) ([]byte, error) {
	raw := make(map[string]json.RawMessage, len(entries))
	for key, value := range entries {
		b, err := marshalAs(value, shape(key))
		if err != nil {
			return nil, fmt.Errorf("%q: %w", key, err)
		}
		raw[key] = b
	}
	return marshal(raw)
}

// marshalAs encodes value through a variable of type t, so the declared
// type rather than the dynamic type decides the encoding where they differ.
func marshalAs(value any, t reflect.Type) ([]byte, error) {
	if value == nil || t == nil {
		return marshal(value)
	}
	v := reflect.New(t).Elem()
	v.Set(reflect.ValueOf(value))
	return marshal(v.Interface())
}

func marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

// decodeDocument rebuilds a registry from data. Sections are read in
// document order; values and defaults resolve their entry types through the
// types already read, so types must come first.
func decodeDocument(data []byte, types *domain.TypeRegistry) (registry, error) {
	reg := newRegistry()

	if len(bytes.TrimSpace(data)) == 0 {
		return reg, nil
	}
	if !gjson.ValidBytes(data) {
		return reg, fmt.Errorf("%w: malformed JSON", domain.ErrCorruptDocument)
	}
	root := gjson.ParseBytes(data)
	if !root.IsObject() {
		return reg, fmt.Errorf("%w: document is not an object", domain.ErrCorruptDocument)
	}

	declaredType := func(key string) (reflect.Type, error) {
		t, ok := reg.types[key]
		if !ok {
			return nil, fmt.Errorf("%w: %q has no entry in %s", domain.ErrNotRegistered, key, sectionTypes)
		}
		return t, nil
	}
	descriptor := func(string) (reflect.Type, error) { return descriptorType, nil }

	resolveDescriptor := func(raw gjson.Result, _ reflect.Type) (reflect.Type, error) {
		if raw.Type != gjson.String {
			return nil, fmt.Errorf("type descriptor must be a string, got %s", raw.Raw)
		}
		return types.Resolve(raw.Str)
	}

	var err error
	root.ForEach(func(name, section gjson.Result) bool {
		switch name.String() {
		case sectionTypes:
			err = readSection(sectionTypes, section, reg.types, descriptor, resolveDescriptor)
		case sectionValues:
			err = readSection(sectionValues, section, reg.values, declaredType, decodeValue)
		case sectionDefaults:
			err = readSection(sectionDefaults, section, reg.defaults, declaredType, decodeValue)
		default:
			err = fmt.Errorf("%w: unknown section %q", domain.ErrCorruptDocument, name.String())
		}
		return err == nil
	})
	if err != nil {
		return newRegistry(), err
	}

	if err := reg.checkAligned(); err != nil {
		return newRegistry(), err
	}
	return reg, nil
}

// readSection decodes every entry of section into dst, using resolve to pick
// the target type of each key.
func readSection[T any](
	name string,
	section gjson.Result,
	dst map[string]T,
	resolve typeResolver,
	decode func(raw gjson.Result, t reflect.Type) (T, error),
) error {
	if !section.IsObject() {
		return fmt.Errorf("%w: section %s is not an object", domain.ErrCorruptDocument, name)
	}

	var err error
	section.ForEach(func(k, raw gjson.Result) bool {
		key := k.String()
		if _, dup := dst[key]; dup {
			err = fmt.Errorf("%w: %s[%q]: %w", domain.ErrCorruptDocument, name, key, domain.ErrDuplicateKey)
			return false
		}

		t, rerr := resolve(key)
		if rerr != nil {
			err = fmt.Errorf("%w: %s[%q]: %w", domain.ErrCorruptDocument, name, key, rerr)
			return false
		}

		value, derr := decode(raw, t)
		if derr != nil {
			err = fmt.Errorf("%w: %s[%q]: %w", domain.ErrCorruptDocument, name, key, derr)
			return false
		}

		dst[key] = value
		return true
	})
	return err
}

// decodeValue unmarshals raw into a fresh value of type t.
func decodeValue(raw gjson.Result, t reflect.Type) (any, error) {
	ptr := reflect.New(t)
	if err := json.Unmarshal([]byte(raw.Raw), ptr.Interface()); err != nil {
		return nil, err
	}
	return ptr.Elem().Interface(), nil
}

// checkAligned verifies the three maps share one key set.
func (r registry) checkAligned() error {
	for key := range r.types {
		if _, ok := r.values[key]; !ok {
			return fmt.Errorf("%w: %q missing from %s", domain.ErrCorruptDocument, key, sectionValues)
		}
		if _, ok := r.defaults[key]; !ok {
			return fmt.Errorf("%w: %q missing from %s", domain.ErrCorruptDocument, key, sectionDefaults)
		}
	}
	// every value and default key was resolved through types, so the
	// sections can only differ by keys missing above
	return nil
}
