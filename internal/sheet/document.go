package sheet

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Cell is one named expression as written in a sheet file. Unnamed cells can
// be evaluated but not referenced.
type Cell struct {
	Name  string `yaml:"name,omitempty"`
	Input string `yaml:"input"`
}

// Document is the on-disk form of a sheet:
//
//	name: budget
//	cells:
//	  - name: price
//	    input: 10
//	  - name: total
//	    input: price * 1.2
type Document struct {
	Name  string `yaml:"name,omitempty"`
	Cells []Cell `yaml:"cells"`
}

func Load(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func Parse(data []byte) (*Document, error) {
	doc := &Document{}
	if err := yaml.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("failed to parse sheet: %w", err)
	}
	return doc, nil
}

func (d *Document) Marshal() ([]byte, error) {
	return yaml.Marshal(d)
}
