package configurable

import (
	"fmt"
	"reflect"
	"strings"
)

// Settable receives resolved parameter values. Implementations decide how a
// parameter name maps onto their own state; unknown names should be ignored,
// not treated as errors.
type Settable interface {
	SetParam(name string, value any) error
}

// SetParamFunc adapts a function to the Settable interface.
type SetParamFunc func(name string, value any) error

func (f SetParamFunc) SetParam(name string, value any) error { return f(name, value) }

// Target adapts a struct pointer into a Settable. Parameter names map onto
// exported fields through the `conf` tag, or case-insensitively by field
// name when untagged. Fields tagged `conf:"-"` and names with no matching
// field are ignored. Values are converted to the field type when possible.
func Target(ptr any) Settable {
	return &structTarget{ptr: ptr}
}

type structTarget struct {
	ptr any
}

func (t *structTarget) SetParam(name string, value any) error {
	rv := reflect.ValueOf(t.ptr)
	if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("target %T is not a struct pointer", t.ptr)
	}
	elem := rv.Elem()

	field, ok := fieldFor(elem, name)
	if !ok {
		return nil
	}
	if value == nil {
		field.SetZero()
		return nil
	}

	vv := reflect.ValueOf(value)
	switch {
	case vv.Type().AssignableTo(field.Type()):
		field.Set(vv)
	case vv.Type().ConvertibleTo(field.Type()):
		field.Set(vv.Convert(field.Type()))
	default:
		return fmt.Errorf("field %q: cannot assign %T", name, value)
	}
	return nil
}

func fieldFor(elem reflect.Value, name string) (reflect.Value, bool) {
	rt := elem.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("conf")
		if tag == "-" {
			continue
		}
		if tag == name || (tag == "" && strings.EqualFold(sf.Name, name)) {
			return elem.Field(i), true
		}
	}
	return reflect.Value{}, false
}
