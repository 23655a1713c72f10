package file

import (
	"fmt"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/confweave/confweave/driver"
)

// NewJSON creates the JSON file driver. The document is one top-level
// object whose keys are categories and whose nested keys are parameters.
func NewJSON(dirs ...string) *Driver {
	return &Driver{Dirs: dirs, name: "json", codec: jsonCodec{}}
}

type jsonCodec struct{}

func (jsonCodec) decode(data []byte) ([]driver.RawSection, error) {
	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return nil, fmt.Errorf("top-level JSON value is not an object")
	}

	var out []driver.RawSection
	var err error
	doc.ForEach(func(cname, params gjson.Result) bool {
		if !params.IsObject() {
			err = fmt.Errorf("category %q is not an object", cname.String())
			return false
		}
		raw := driver.RawSection{Name: cname.String()}
		params.ForEach(func(key, value gjson.Result) bool {
			svalue := value.String()
			if !value.Exists() || value.Type == gjson.JSON {
				// Arrays and objects keep their JSON text as serialized
				// form.
				svalue = value.Raw
			}
			raw.Items = append(raw.Items, driver.RawItem{Key: key.String(), Value: svalue})
			return true
		})
		out = append(out, raw)
		return true
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (jsonCodec) encode(sections []driver.RawSection) ([]byte, error) {
	out := []byte("{}")
	var err error
	for _, section := range sections {
		for _, item := range section.Items {
			out, err = sjson.SetBytes(out, section.Name+"."+item.Key, item.Value)
			if err != nil {
				return nil, err
			}
		}
		if len(section.Items) == 0 {
			out, err = sjson.SetRawBytes(out, section.Name, []byte("{}"))
			if err != nil {
				return nil, err
			}
		}
	}
	return out, nil
}
