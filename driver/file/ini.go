package file

import (
	"bytes"

	"gopkg.in/ini.v1"

	"github.com/confweave/confweave/driver"
)

// NewINI creates the INI file driver. With no dirs, DefaultDirs is used.
func NewINI(dirs ...string) *Driver {
	return &Driver{Dirs: dirs, name: "ini", codec: iniCodec{}}
}

type iniCodec struct{}

func (iniCodec) decode(data []byte) ([]driver.RawSection, error) {
	f, err := ini.Load(data)
	if err != nil {
		return nil, err
	}

	var out []driver.RawSection
	for _, section := range f.Sections() {
		keys := section.Keys()
		if section.Name() == ini.DefaultSection && len(keys) == 0 {
			continue
		}
		raw := driver.RawSection{Name: section.Name()}
		for _, key := range keys {
			raw.Items = append(raw.Items, driver.RawItem{Key: key.Name(), Value: key.Value()})
		}
		out = append(out, raw)
	}
	return out, nil
}

func (iniCodec) encode(sections []driver.RawSection) ([]byte, error) {
	f := ini.Empty()
	for _, section := range sections {
		target, err := f.NewSection(section.Name)
		if err != nil {
			return nil, err
		}
		for _, item := range section.Items {
			if _, err := target.NewKey(item.Key, item.Value); err != nil {
				return nil, err
			}
		}
	}

	var buf bytes.Buffer
	if _, err := f.WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
