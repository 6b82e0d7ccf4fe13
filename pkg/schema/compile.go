package schema

import (
	"reflect"
	"strconv"
	"strings"
	"time"
)

var timeType = reflect.TypeFor[time.Time]()

// For compiles the schema of T. See Compile.
func For[T any]() *Schema {
	return Compile(reflect.TypeFor[T]())
}

// Compile derives a schema from a Go type. Struct fields are visited in
// declaration order and named by their json tag. Fields without omitempty
// are required. The optional desc, minimum, and maximum struct tags are
// carried onto the property schema. Compile performs no I/O and always
// returns a schema; kinds with no structured-output equivalent compile to
// an untyped OBJECT.
func Compile(t reflect.Type) *Schema {
	s := compileType(t)
	if s.Type == TypeObject {
		s.Title = t.Name()
	}
	return s
}

func compileType(t reflect.Type) *Schema {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	if t == timeType {
		return &Schema{Type: TypeString}
	}

	switch t.Kind() {
	case reflect.String:
		return &Schema{Type: TypeString}
	case reflect.Bool:
		return &Schema{Type: TypeBoolean}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return &Schema{Type: TypeInteger}
	case reflect.Float32, reflect.Float64:
		return &Schema{Type: TypeNumber}
	case reflect.Slice, reflect.Array:
		if t.Elem().Kind() == reflect.Uint8 {
			return &Schema{Type: TypeString}
		}
		return &Schema{Type: TypeArray, Items: compileType(t.Elem())}
	case reflect.Struct:
		s := &Schema{Type: TypeObject}
		compileFields(s, t)
		return s
	default:
		return &Schema{Type: TypeObject}
	}
}

func compileFields(s *Schema, t reflect.Type) {
	for i := range t.NumField() {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}

		name, omitempty := jsonName(f)
		if name == "-" {
			continue
		}

		if f.Anonymous && name == "" && f.Type.Kind() == reflect.Struct {
			compileFields(s, f.Type)
			continue
		}

		if name == "" {
			name = f.Name
		}

		prop := compileType(f.Type)
		prop.Description = f.Tag.Get("desc")
		prop.Minimum = floatTag(f, "minimum")
		prop.Maximum = floatTag(f, "maximum")

		s.Properties = append(s.Properties, Property{Name: name, Schema: prop})
		s.PropertyOrdering = append(s.PropertyOrdering, name)
		if !omitempty {
			s.Required = append(s.Required, name)
		}
	}
}

func jsonName(f reflect.StructField) (string, bool) {
	tag, ok := f.Tag.Lookup("json")
	if !ok {
		return "", false
	}
	name, opts, _ := strings.Cut(tag, ",")
	omitempty := false
	for opt := range strings.SplitSeq(opts, ",") {
		if opt == "omitempty" || opt == "omitzero" {
			omitempty = true
		}
	}
	return name, omitempty
}

func floatTag(f reflect.StructField, key string) *float64 {
	v, ok := f.Tag.Lookup(key)
	if !ok {
		return nil
	}
	n, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil
	}
	return &n
}
