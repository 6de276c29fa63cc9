package upstream

import (
	"bytes"
	"encoding/json"
	"strings"
)

// Document is a claim-case style JSON object owned by the platform. The
// workflows amend a handful of fields and must echo the rest back untouched
// on resubmission, so the document stays dynamic and every consumed field is
// read through an accessor that fails with a LogicalError when the shape is
// not what the workflow depends on.
type Document map[string]any

// DecodeDocument decodes raw JSON into a Document, keeping numbers as
// json.Number so identifiers survive the round trip.
func DecodeDocument(raw json.RawMessage) (Document, error) {
	var doc Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&doc); err != nil {
		return nil, &LogicalError{Detail: "expected a JSON object: " + err.Error()}
	}
	return doc, nil
}

// DecodeDocuments decodes raw JSON into a list of Documents.
func DecodeDocuments(raw json.RawMessage) ([]Document, error) {
	var docs []Document
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&docs); err != nil {
		return nil, &LogicalError{Detail: "expected a JSON array: " + err.Error()}
	}
	return docs, nil
}

func pathDetail(path []string, detail string) *LogicalError {
	return &LogicalError{Detail: "field " + strings.Join(path, ".") + ": " + detail}
}

func (d Document) value(path ...string) (any, error) {
	var cur any = map[string]any(d)
	for i, key := range path {
		obj, ok := cur.(map[string]any)
		if !ok {
			return nil, pathDetail(path[:i+1], "parent is not an object")
		}
		cur, ok = obj[key]
		if !ok {
			return nil, pathDetail(path[:i+1], "missing")
		}
	}
	return cur, nil
}

// Value returns the raw value at path, for fields that are only passed
// through to later requests without interpretation.
func (d Document) Value(path ...string) (any, error) {
	return d.value(path...)
}

// Doc returns the nested object at path.
func (d Document) Doc(path ...string) (Document, error) {
	v, err := d.value(path...)
	if err != nil {
		return nil, err
	}
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, pathDetail(path, "not an object")
	}
	return Document(obj), nil
}

// String returns the string at path.
func (d Document) String(path ...string) (string, error) {
	v, err := d.value(path...)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", pathDetail(path, "not a string")
	}
	return s, nil
}

// Docs returns the array of objects at path.
func (d Document) Docs(path ...string) ([]Document, error) {
	v, err := d.value(path...)
	if err != nil {
		return nil, err
	}
	list, ok := v.([]any)
	if !ok {
		return nil, pathDetail(path, "not an array")
	}
	docs := make([]Document, len(list))
	for i, item := range list {
		obj, ok := item.(map[string]any)
		if !ok {
			return nil, pathDetail(path, "array element is not an object")
		}
		docs[i] = Document(obj)
	}
	return docs, nil
}

// FirstDoc returns the first element of the object array at path.
func (d Document) FirstDoc(path ...string) (Document, error) {
	docs, err := d.Docs(path...)
	if err != nil {
		return nil, err
	}
	if len(docs) == 0 {
		return nil, pathDetail(path, "empty array")
	}
	return docs[0], nil
}

// Set writes value at path. All but the last path element must already exist
// as objects; the workflows only ever amend documents the platform produced.
func (d Document) Set(value any, path ...string) error {
	parent := d
	if len(path) > 1 {
		p, err := d.Doc(path[:len(path)-1]...)
		if err != nil {
			return err
		}
		parent = p
	}
	parent[path[len(path)-1]] = value
	return nil
}

// Pick copies the named keys into a fresh document, skipping absent ones.
func (d Document) Pick(keys ...string) Document {
	out := make(Document, len(keys))
	for _, key := range keys {
		if v, ok := d[key]; ok {
			out[key] = v
		}
	}
	return out
}
