package database

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type xmlDocument struct {
	Records []xmlRecord `xml:",any"`
}

type xmlRecord struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

// decodeXML reads records as the attributes of the root's child elements:
//
//	<users>
//	  <user id="1" name="Ana"/>
//	</users>
func decodeXML(r io.Reader) ([]*Row, error) {
	var doc xmlDocument
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, err
	}

	rows := make([]*Row, 0, len(doc.Records))
	for _, rec := range doc.Records {
		row := &Row{}
		for _, a := range rec.Attrs {
			row.Set(a.Name.Local, a.Value)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// decodeYAML accepts a sequence of mappings, or a single-key mapping whose
// value is such a sequence:
//
//	users:
//	  - id: 1
//	    name: Ana
func decodeYAML(r io.Reader) ([]*Row, error) {
	var doc yaml.Node
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, err
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, nil
	}

	seq := doc.Content[0]
	if seq.Kind == yaml.MappingNode {
		if len(seq.Content) != 2 {
			return nil, errors.New("top-level mapping must have a single key")
		}
		seq = seq.Content[1]
	}
	if seq.Kind != yaml.SequenceNode {
		return nil, fmt.Errorf("line %d: expected a list of records", seq.Line)
	}

	rows := make([]*Row, 0, len(seq.Content))
	for _, item := range seq.Content {
		if item.Kind != yaml.MappingNode {
			return nil, fmt.Errorf("line %d: record must be a mapping", item.Line)
		}
		row := &Row{}
		for i := 0; i+1 < len(item.Content); i += 2 {
			v, err := yamlCell(item.Content[i+1])
			if err != nil {
				return nil, err
			}
			row.Set(item.Content[i].Value, v)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func yamlCell(n *yaml.Node) (any, error) {
	if n.Kind == yaml.ScalarNode {
		if n.Tag == "!!null" {
			return nil, nil
		}
		return n.Value, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, err
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// decodeJSON accepts an array of objects, or a single-key object whose value
// is such an array.
func decodeJSON(r io.Reader) ([]*Row, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	if data[0] == '{' {
		var wrapper map[string]json.RawMessage
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, err
		}
		if len(wrapper) != 1 {
			return nil, errors.New("top-level object must have a single key")
		}
		for _, inner := range wrapper {
			data = inner
		}
	}

	var rows []*Row
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, err
	}
	for _, row := range rows {
		for _, f := range row.Fields() {
			v, err := jsonCell(f.Value)
			if err != nil {
				return nil, err
			}
			row.Set(f.Name, v)
		}
	}
	return rows, nil
}

func jsonCell(v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case string:
		return t, nil
	case json.Number:
		return t.String(), nil
	case bool:
		return fmt.Sprint(t), nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
