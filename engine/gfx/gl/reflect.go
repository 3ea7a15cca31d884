package glbackend

import (
	"fmt"
	"reflect"
	"unicode"
	"unicode/utf8"
)

// Field locates one attribute field inside a vertex record type.
type Field struct {
	Name       string
	Offset     int
	Size       int
	Components int32
	Type       ElementType
}

// FieldOf computes the byte offset, byte size and component count of the
// named field of vertex record V from V's memory layout. Only direct fields
// are considered; fields promoted from embedded structs are not.
func FieldOf[V any](name string) (Field, error) {
	t := reflect.TypeFor[V]()
	if t.Kind() != reflect.Struct {
		return Field{}, fmt.Errorf("%s is not a struct: %w", t, ErrUnsupportedField)
	}
	sf, ok := t.FieldByName(name)
	if !ok || len(sf.Index) != 1 {
		return Field{}, fmt.Errorf("%s has no field %q: %w", t, name, ErrUnsupportedField)
	}
	return fieldLayout(t, sf)
}

// StrideOf returns the byte size of one V record. It fails when V contains
// host padding, since offsets computed from V would then disagree with the
// bytes a buffer upload sends.
func StrideOf[V any]() (int32, error) {
	t := reflect.TypeFor[V]()
	if _, err := packedSize(t); err != nil {
		return 0, err
	}
	return int32(t.Size()), nil
}

// AttribFor builds the binding of field in vertex record V at location loc.
func AttribFor[V any](loc uint32, field string) (VertexAttrib, error) {
	stride, err := StrideOf[V]()
	if err != nil {
		return VertexAttrib{}, err
	}
	f, err := FieldOf[V](field)
	if err != nil {
		return VertexAttrib{}, err
	}
	return VertexAttrib{
		Location: loc,
		Size:     f.Components,
		Type:     f.Type,
		Stride:   stride,
		Offset:   f.Offset,
	}, nil
}

// LayoutFor derives the full layout of V against the vertex inputs of p.
// The attribute name of a field comes from its `attr` tag, or is the field
// name with a lower-case first letter; `attr:"-"` skips the field.
func LayoutFor[V any](p *Program) (VertexLayout, error) {
	stride, fields, err := recordFields[V]()
	if err != nil {
		return VertexLayout{}, err
	}
	layout := VertexLayout{Stride: stride}
	for _, f := range fields {
		loc, err := p.AttribLocation(f.attr)
		if err != nil {
			return VertexLayout{}, fmt.Errorf("%s.%s: %w", reflect.TypeFor[V](), f.Name, err)
		}
		layout.Attributes = append(layout.Attributes, VertexAttrib{
			Location: loc,
			Size:     f.Components,
			Type:     f.Type,
			Stride:   stride,
			Offset:   f.Offset,
		})
	}
	return layout, nil
}

// namedField is a record field together with the vertex input it feeds.
type namedField struct {
	Field
	attr string
}

// recordFields lists the attribute fields of V in declaration order.
func recordFields[V any]() (int32, []namedField, error) {
	t := reflect.TypeFor[V]()
	stride, err := StrideOf[V]()
	if err != nil {
		return 0, nil, err
	}
	if t.Kind() != reflect.Struct {
		return 0, nil, fmt.Errorf("%s is not a struct: %w", t, ErrUnsupportedField)
	}
	var fields []namedField
	for i := 0; i < t.NumField(); i++ {
		sf := t.Field(i)
		name := attribName(sf)
		if name == "" {
			continue
		}
		f, err := fieldLayout(t, sf)
		if err != nil {
			return 0, nil, err
		}
		fields = append(fields, namedField{Field: f, attr: name})
	}
	return stride, fields, nil
}

// sameShape reports whether two field lists feed the same inputs from the
// same bytes.
func sameShape(a, b []namedField) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].attr != b[i].attr || a[i].Offset != b[i].Offset ||
			a[i].Components != b[i].Components || a[i].Type != b[i].Type {
			return false
		}
	}
	return true
}

func attribName(sf reflect.StructField) string {
	tag, ok := sf.Tag.Lookup("attr")
	switch {
	case tag == "-":
		return ""
	case ok && tag != "":
		return tag
	case sf.Name == "_":
		return ""
	}
	r, n := utf8.DecodeRuneInString(sf.Name)
	return string(unicode.ToLower(r)) + sf.Name[n:]
}

func fieldLayout(rec reflect.Type, sf reflect.StructField) (Field, error) {
	elem, err := componentType(sf.Type)
	if err != nil {
		return Field{}, fmt.Errorf("%s.%s: %w", rec, sf.Name, err)
	}
	size := int(sf.Type.Size())
	return Field{
		Name:       sf.Name,
		Offset:     int(sf.Offset),
		Size:       size,
		Components: int32(size / elem.Size()),
		Type:       elem,
	}, nil
}

// componentType returns the scalar type a field is made of: the field itself,
// the element of an array, or the shared type of every field of a struct.
func componentType(t reflect.Type) (ElementType, error) {
	switch t.Kind() {
	case reflect.Array:
		if t.Len() == 0 {
			return 0, fmt.Errorf("zero-length array: %w", ErrUnsupportedField)
		}
		if et, ok := scalarType(t.Elem()); ok {
			return et, nil
		}
	case reflect.Struct:
		if t.NumField() == 0 {
			return 0, fmt.Errorf("empty struct %s: %w", t, ErrUnsupportedField)
		}
		first, ok := scalarType(t.Field(0).Type)
		for i := 1; ok && i < t.NumField(); i++ {
			et, ok2 := scalarType(t.Field(i).Type)
			ok = ok2 && et == first
		}
		if ok && int(t.Size()) == t.NumField()*first.Size() {
			return first, nil
		}
	default:
		if et, ok := scalarType(t); ok {
			return et, nil
		}
	}
	return 0, fmt.Errorf("type %s: %w", t, ErrUnsupportedField)
}

func scalarType(t reflect.Type) (ElementType, bool) {
	switch t.Kind() {
	case reflect.Float32:
		return Float32, true
	case reflect.Float64:
		return Float64, true
	case reflect.Int8:
		return Int8, true
	case reflect.Uint8:
		return Uint8, true
	case reflect.Int16:
		return Int16, true
	case reflect.Uint16:
		return Uint16, true
	case reflect.Int32:
		return Int32, true
	case reflect.Uint32:
		return Uint32, true
	default:
		return 0, false
	}
}

// packedSize returns the byte size of t after checking that it is made only
// of fixed-size numbers laid out without gaps.
func packedSize(t reflect.Type) (uintptr, error) {
	switch t.Kind() {
	case reflect.Array:
		n, err := packedSize(t.Elem())
		if err != nil {
			return 0, err
		}
		return n * uintptr(t.Len()), nil
	case reflect.Struct:
		var sum uintptr
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			if f.Offset != sum {
				return 0, fmt.Errorf("%s: %d bytes of padding before field %s: %w", t, f.Offset-sum, f.Name, ErrPadded)
			}
			n, err := packedSize(f.Type)
			if err != nil {
				return 0, err
			}
			sum += n
		}
		if sum != t.Size() {
			return 0, fmt.Errorf("%s: %d bytes of trailing padding: %w", t, t.Size()-sum, ErrPadded)
		}
		return sum, nil
	case reflect.Int64, reflect.Uint64:
		return t.Size(), nil
	default:
		if _, ok := scalarType(t); ok {
			return t.Size(), nil
		}
		return 0, fmt.Errorf("type %s: %w", t, ErrUnsupportedField)
	}
}
