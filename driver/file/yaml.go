package file

import (
	"fmt"
	"sort"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/confweave/confweave/driver"
)

// NewYAML creates the YAML file driver. The document is a two-level
// mapping: categories of parameters holding serialized values.
func NewYAML(dirs ...string) *Driver {
	return &Driver{Dirs: dirs, name: "yaml", codec: yamlCodec{}}
}

type yamlCodec struct{}

func (yamlCodec) decode(data []byte) ([]driver.RawSection, error) {
	var doc map[string]map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}

	cnames := make([]string, 0, len(doc))
	for cname := range doc {
		cnames = append(cnames, cname)
	}
	sort.Strings(cnames)

	var out []driver.RawSection
	for _, cname := range cnames {
		raw := driver.RawSection{Name: cname}

		keys := make([]string, 0, len(doc[cname]))
		for key := range doc[cname] {
			keys = append(keys, key)
		}
		sort.Strings(keys)

		for _, key := range keys {
			svalue, err := cast.ToStringE(doc[cname][key])
			if err != nil {
				svalue = fmt.Sprintf("%v", doc[cname][key])
			}
			raw.Items = append(raw.Items, driver.RawItem{Key: key, Value: svalue})
		}
		out = append(out, raw)
	}
	return out, nil
}

func (yamlCodec) encode(sections []driver.RawSection) ([]byte, error) {
	doc := make(map[string]map[string]string, len(sections))
	for _, section := range sections {
		params := make(map[string]string, len(section.Items))
		for _, item := range section.Items {
			params[item.Key] = item.Value
		}
		doc[section.Name] = params
	}
	return yaml.Marshal(doc)
}
