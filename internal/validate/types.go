package validate

import (
	"encoding"
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"
)

var (
	jsonUnmarshalerType = reflect.TypeFor[json.Unmarshaler]()
	textUnmarshalerType = reflect.TypeFor[encoding.TextUnmarshaler]()
)

// typeErrors walks a generic JSON document alongside t and records every
// value whose JSON kind cannot be decoded into the Go type at that position.
// Keys use the same path format as constraint violations. The returned set
// holds the paths that failed, so constraint checks beneath them can be skipped.
func typeErrors(doc any, t reflect.Type, details Details) map[string]struct{} {
	failed := map[string]struct{}{}
	walkTypes(doc, t, "", details, failed)
	return failed
}

func walkTypes(v any, t reflect.Type, path string, details Details, failed map[string]struct{}) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	// null leaves the target untouched
	if v == nil || customDecoded(t) {
		return
	}

	mismatch := func(expected string) {
		key := path
		if key == "" {
			key = bodyField
		}
		details.add(key, fmt.Sprintf("Expected %s, received %s", expected, receivedKind(v)))
		failed[key] = struct{}{}
	}

	switch t.Kind() {
	case reflect.Interface:
	case reflect.String:
		if _, ok := v.(string); !ok {
			mismatch("string")
		}
	case reflect.Bool:
		if _, ok := v.(bool); !ok {
			mismatch("boolean")
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		n, ok := v.(json.Number)
		if !ok {
			mismatch("number")
			return
		}
		if !fitsInteger(n, t) {
			details.add(path, "Expected integer, received number")
			failed[path] = struct{}{}
		}
	case reflect.Float32, reflect.Float64:
		if _, ok := v.(json.Number); !ok {
			mismatch("number")
		}
	case reflect.Slice, reflect.Array:
		if t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8 {
			// []byte is carried as a base64 string
			if _, ok := v.(string); !ok {
				mismatch("string")
			}
			return
		}
		items, ok := v.([]any)
		if !ok {
			mismatch("array")
			return
		}
		for i, item := range items {
			walkTypes(item, t.Elem(), path+"["+strconv.Itoa(i)+"]", details, failed)
		}
	case reflect.Map:
		obj, ok := v.(map[string]any)
		if !ok {
			mismatch("object")
			return
		}
		for k, item := range obj {
			walkTypes(item, t.Elem(), path+"["+k+"]", details, failed)
		}
	case reflect.Struct:
		obj, ok := v.(map[string]any)
		if !ok {
			mismatch("object")
			return
		}
		for _, f := range jsonFields(t) {
			item, found := lookupKey(obj, f.name)
			if !found {
				continue
			}
			walkTypes(item, f.typ, joinPath(path, f.name), details, failed)
		}
	}
}

// underFailed reports whether path is, or sits beneath, a path with a type error.
func underFailed(path string, failed map[string]struct{}) bool {
	for p := range failed {
		if p == bodyField || path == p ||
			strings.HasPrefix(path, p+".") || strings.HasPrefix(path, p+"[") {
			return true
		}
	}
	return false
}

type jsonField struct {
	name string
	typ  reflect.Type
}

// jsonFields lists the fields encoding/json would decode into, promoting
// untagged embedded structs.
func jsonFields(t reflect.Type) []jsonField {
	var fields []jsonField
	for i := range t.NumField() {
		sf := t.Field(i)
		tag := sf.Tag.Get("json")
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		ft := sf.Type
		if sf.Anonymous && name == "" {
			et := ft
			if et.Kind() == reflect.Pointer {
				et = et.Elem()
			}
			if et.Kind() == reflect.Struct {
				fields = append(fields, jsonFields(et)...)
				continue
			}
		}
		if !sf.IsExported() {
			continue
		}
		// ",string" fields carry their value quoted
		if hasOption(opts, "string") {
			continue
		}
		if name == "" {
			name = sf.Name
		}
		fields = append(fields, jsonField{name: name, typ: ft})
	}
	return fields
}

func hasOption(opts, want string) bool {
	for opts != "" {
		var o string
		o, opts, _ = strings.Cut(opts, ",")
		if o == want {
			return true
		}
	}
	return false
}

// lookupKey matches keys the way encoding/json does: exact first, then case-insensitive.
func lookupKey(obj map[string]any, name string) (any, bool) {
	if v, ok := obj[name]; ok {
		return v, true
	}
	for k, v := range obj {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return nil, false
}

func joinPath(parent, name string) string {
	if parent == "" {
		return name
	}
	return parent + "." + name
}

func customDecoded(t reflect.Type) bool {
	pt := reflect.PointerTo(t)
	return pt.Implements(jsonUnmarshalerType) || pt.Implements(textUnmarshalerType)
}

func fitsInteger(n json.Number, t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		return err == nil && !reflect.New(t).Elem().OverflowUint(u)
	default:
		i, err := strconv.ParseInt(n.String(), 10, 64)
		return err == nil && !reflect.New(t).Elem().OverflowInt(i)
	}
}

func receivedKind(v any) string {
	switch v.(type) {
	case string:
		return "string"
	case bool:
		return "boolean"
	case json.Number:
		return "number"
	case []any:
		return "array"
	case map[string]any:
		return "object"
	default:
		return "null"
	}
}
