package persist

import (
	"encoding/json"
	"reflect"
	"strings"

	"github.com/vango-dev/usershell/internal/errors"
)

// field locates one persisted struct field by its JSON name.
type field struct {
	name  string
	index []int
	typ   reflect.Type
}

// resolveFields maps JSON field names to struct fields of S.
func resolveFields[S any](names []string) ([]field, error) {
	var zero S
	t := reflect.TypeOf(zero)
	if t == nil || t.Kind() != reflect.Struct {
		return nil, errors.New("E004").WithDetail("store state must be a struct")
	}

	byName := make(map[string]reflect.StructField)
	for _, sf := range reflect.VisibleFields(t) {
		if !sf.IsExported() || sf.Anonymous {
			continue
		}
		name := sf.Name
		if tag, ok := sf.Tag.Lookup("json"); ok {
			tagName, _, _ := strings.Cut(tag, ",")
			if tagName == "-" {
				continue
			}
			if tagName != "" {
				name = tagName
			}
		}
		byName[name] = sf
	}

	fields := make([]field, 0, len(names))
	seen := make(map[string]bool, len(names))
	for _, name := range names {
		if seen[name] {
			continue
		}
		seen[name] = true

		sf, ok := byName[name]
		if !ok {
			return nil, errors.New("E004").WithDetail("field " + name + " on " + t.String())
		}
		fields = append(fields, field{name: name, index: sf.Index, typ: sf.Type})
	}
	return fields, nil
}

// encodeFields marshals the listed fields of state.
func encodeFields[S any](state S, fields []field) (map[string]json.RawMessage, error) {
	v := reflect.ValueOf(state)
	out := make(map[string]json.RawMessage, len(fields))
	for _, f := range fields {
		data, err := json.Marshal(v.FieldByIndex(f.index).Interface())
		if err != nil {
			return nil, err
		}
		out[f.name] = data
	}
	return out, nil
}

// decodeField decodes raw into a fresh value of the field's type.
func decodeField(f field, raw json.RawMessage) (reflect.Value, error) {
	ptr := reflect.New(f.typ)
	if err := json.Unmarshal(raw, ptr.Interface()); err != nil {
		return reflect.Value{}, err
	}
	return ptr.Elem(), nil
}
