package file

import (
	"fmt"

	"github.com/beevik/etree"

	"github.com/confweave/confweave/driver"
)

// NewXML creates the XML file driver. The document shape is
// <configuration><category name="..."><parameter name="...">svalue
// </parameter></category></configuration>.
func NewXML(dirs ...string) *Driver {
	return &Driver{Dirs: dirs, name: "xml", codec: xmlCodec{}}
}

type xmlCodec struct{}

func (xmlCodec) decode(data []byte) ([]driver.RawSection, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(data); err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("empty XML document")
	}

	var out []driver.RawSection
	for _, category := range root.SelectElements("category") {
		raw := driver.RawSection{Name: category.SelectAttrValue("name", "")}
		for _, parameter := range category.SelectElements("parameter") {
			raw.Items = append(raw.Items, driver.RawItem{
				Key:   parameter.SelectAttrValue("name", ""),
				Value: parameter.Text(),
			})
		}
		out = append(out, raw)
	}
	return out, nil
}

func (xmlCodec) encode(sections []driver.RawSection) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement("configuration")

	for _, section := range sections {
		category := root.CreateElement("category")
		category.CreateAttr("name", section.Name)
		for _, item := range section.Items {
			parameter := category.CreateElement("parameter")
			parameter.CreateAttr("name", item.Key)
			parameter.SetText(item.Value)
		}
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}
