// Package ctyval bridges native Go values and go-cty values. The model and
// parser packages use it to check parameter values against their declared
// cty.Type and to coerce expression results into that type.
package ctyval

import (
	"fmt"
	"math/big"
	"sort"

	"github.com/zclconf/go-cty/cty"
	"github.com/zclconf/go-cty/cty/convert"
	"github.com/zclconf/go-cty/cty/gocty"
)

// FromGo converts a native Go value into a cty.Value. Maps and slices with
// interface elements are converted structurally, since gocty cannot imply a
// type for them.
func FromGo(v any) (cty.Value, error) {
	switch tv := v.(type) {
	case nil:
		return cty.NullVal(cty.DynamicPseudoType), nil
	case cty.Value:
		return tv, nil
	case map[string]any:
		if len(tv) == 0 {
			return cty.EmptyObjectVal, nil
		}
		attrs := make(map[string]cty.Value, len(tv))
		for k, item := range tv {
			cv, err := FromGo(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("attribute %q: %w", k, err)
			}
			attrs[k] = cv
		}
		return cty.ObjectVal(attrs), nil
	case []any:
		if len(tv) == 0 {
			return cty.EmptyTupleVal, nil
		}
		elems := make([]cty.Value, 0, len(tv))
		for i, item := range tv {
			cv, err := FromGo(item)
			if err != nil {
				return cty.NilVal, fmt.Errorf("element %d: %w", i, err)
			}
			elems = append(elems, cv)
		}
		return cty.TupleVal(elems), nil
	}

	ty, err := gocty.ImpliedType(v)
	if err != nil {
		return cty.NilVal, fmt.Errorf("no cty equivalent for %T: %w", v, err)
	}
	val, err := gocty.ToCtyValue(v, ty)
	if err != nil {
		return cty.NilVal, fmt.Errorf("cannot represent %T as %s: %w", v, ty.FriendlyName(), err)
	}
	return val, nil
}

// ToGo converts a cty.Value into its closest native Go representation:
// bool, int64 or float64, string, []any and map[string]any.
func ToGo(val cty.Value) any {
	if val == cty.NilVal || val.IsNull() || !val.IsKnown() {
		return nil
	}

	ty := val.Type()
	switch {
	case ty == cty.Bool:
		return val.True()
	case ty == cty.Number:
		bf := val.AsBigFloat()
		if i, acc := bf.Int64(); acc == big.Exact {
			return i
		}
		f, _ := bf.Float64()
		return f
	case ty == cty.String:
		return val.AsString()
	case ty.IsListType() || ty.IsSetType() || ty.IsTupleType():
		out := make([]any, 0, val.LengthInt())
		for it := val.ElementIterator(); it.Next(); {
			_, ev := it.Element()
			out = append(out, ToGo(ev))
		}
		return out
	case ty.IsMapType() || ty.IsObjectType():
		vm := val.AsValueMap()
		out := make(map[string]any, len(vm))
		keys := make([]string, 0, len(vm))
		for k := range vm {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			out[k] = ToGo(vm[k])
		}
		return out
	}

	// Capsule and other exotic types have no native shape; hand the
	// cty.Value itself back to the caller.
	return val
}

// Conforms reports whether v is acceptable for a parameter of type want.
// cty.NilType places no constraint. A value conforms when it is convertible
// to want under cty conversion rules.
func Conforms(v any, want cty.Type) bool {
	if want == cty.NilType || v == nil {
		return true
	}
	val, err := FromGo(v)
	if err != nil {
		return false
	}
	_, err = convert.Convert(val, want)
	return err == nil
}

// Coerce converts v to the target type want. cty.NilType returns v
// unchanged. The error reports the conversion failure; callers decide
// whether it is fatal.
func Coerce(v any, want cty.Type) (any, error) {
	if want == cty.NilType || v == nil {
		return v, nil
	}
	val, err := FromGo(v)
	if err != nil {
		return nil, err
	}
	out, err := convert.Convert(val, want)
	if err != nil {
		return nil, fmt.Errorf("cannot convert %s to %s: %w", val.Type().FriendlyName(), want.FriendlyName(), err)
	}
	return ToGo(out), nil
}
