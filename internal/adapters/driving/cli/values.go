package cli

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/custodia-labs/setstore/internal/core/domain"
)

// typeAliases maps the short names accepted on the command line to
// type descriptors.
var typeAliases = map[string]string{
	"any":            "interface {}",
	"duration":       "time.Duration",
	"time":           "time.Time",
	"float":          "float64",
	"bytes":          "[]uint8",
	"[]byte":         "[]uint8",
	"[]any":          "[]interface {}",
	"map[string]any": "map[string]interface {}",
}

// resolveType looks a command line type name up in the registry.
func resolveType(types *domain.TypeRegistry, name string) (reflect.Type, error) {
	name = strings.TrimSpace(name)
	if alias, ok := typeAliases[name]; ok {
		name = alias
	}
	return types.Resolve(name)
}

// parseValue decodes a command line argument as typ.
// The argument is read as JSON first; when that fails it is taken as a
// JSON string, so bare words work for strings and times.
// Durations also accept time.ParseDuration syntax such as "1m30s".
func parseValue(raw string, typ reflect.Type) (any, error) {
	if typ == domain.TypeOf[time.Duration]() {
		if d, err := time.ParseDuration(raw); err == nil {
			return d, nil
		}
	}

	ptr := reflect.New(typ)
	if err := json.Unmarshal([]byte(raw), ptr.Interface()); err == nil {
		return ptr.Elem().Interface(), nil
	}

	quoted, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	ptr = reflect.New(typ)
	if err := json.Unmarshal(quoted, ptr.Interface()); err != nil {
		return nil, fmt.Errorf("%w: cannot read %q as %s", domain.ErrTypeMismatch, raw, domain.TypeName(typ))
	}
	return ptr.Elem().Interface(), nil
}

// formatValue renders a setting value for output.
func formatValue(v any) string {
	if d, ok := v.(time.Duration); ok {
		return d.String()
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}
