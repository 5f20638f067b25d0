// Package convention compiles SOFA convention definitions from their
// tab-separated source form into nested, machine-readable records.
//
// A convention source file is a small tab-delimited table: the first line
// names the fields (default, flags, dimensions, type, comment), every
// following line describes one entry. Compilation parses each cell into a
// typed value, applies a handful of legacy rewrites for known-bad upstream
// literals, and normalizes the entry order so that GLOBAL attributes come
// first and bulk Data fields come last.
package convention

import (
	"bytes"
	"fmt"
	"strings"

	gojson "github.com/goccy/go-json"

	"github.com/audiolab/sofaconv/pkg/errors"
)

// Entry is one row of a convention: a field name plus its metadata
// (default, flags, dimensions, type, comment). Field keys are lower-cased
// and keep the header order for serialization.
type Entry struct {
	name   string
	fields []string
	values map[string]interface{}
}

// NewEntry creates an empty entry with the given name
func NewEntry(name string) *Entry {
	return &Entry{
		name:   name,
		values: make(map[string]interface{}),
	}
}

// Name returns the entry name, e.g. "GLOBAL:Conventions" or "Data.IR"
func (e *Entry) Name() string {
	return e.name
}

// Fields returns the field keys in serialization order
func (e *Entry) Fields() []string {
	return e.fields
}

// Get returns the value of one field
func (e *Entry) Get(field string) (interface{}, bool) {
	v, ok := e.values[strings.ToLower(field)]
	return v, ok
}

// Set stores a field value. The key is lower-cased; a new key is appended
// to the field order, an existing key keeps its position.
func (e *Entry) Set(field string, value interface{}) {
	key := strings.ToLower(field)
	if _, ok := e.values[key]; !ok {
		e.fields = append(e.fields, key)
	}
	e.values[key] = value
}

// MarshalJSON renders the entry as a JSON object with fields in header order
func (e *Entry) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, field := range e.fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := gojson.Marshal(field)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		val, err := gojson.Marshal(e.values[field])
		if err != nil {
			return nil, err
		}
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Record is one fully compiled convention: an insertion-ordered mapping
// from entry name to Entry. Overwriting an existing name keeps its
// position (last write wins on the value only).
type Record struct {
	name    string
	keys    []string
	entries map[string]*Entry
}

// NewRecord creates an empty record for the named convention
func NewRecord(name string) *Record {
	return &Record{
		name:    name,
		entries: make(map[string]*Entry),
	}
}

// Name returns the convention name (source file name, extension stripped)
func (r *Record) Name() string {
	return r.name
}

// Len returns the number of entries
func (r *Record) Len() int {
	return len(r.entries)
}

// Keys returns the entry names in serialization order
func (r *Record) Keys() []string {
	return r.keys
}

// Get returns the entry with the given name
func (r *Record) Get(name string) (*Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Put inserts an entry. A duplicate name overwrites the previous entry
// in place.
func (r *Record) Put(e *Entry) {
	if _, ok := r.entries[e.name]; !ok {
		r.keys = append(r.keys, e.name)
	}
	r.entries[e.name] = e
}

// normalize applies the two ordering passes that make compiled records
// easier to read: GLOBAL attributes first, Data entries last. Both passes
// are stable partitions of the current key order.
func (r *Record) normalize() {
	global := make([]string, 0, len(r.keys))
	rest := make([]string, 0, len(r.keys))
	for _, key := range r.keys {
		if strings.Contains(key, "GLOBAL") {
			global = append(global, key)
		} else {
			rest = append(rest, key)
		}
	}
	ordered := append(global, rest...)

	nonData := make([]string, 0, len(ordered))
	data := make([]string, 0, len(ordered))
	for _, key := range ordered {
		if strings.HasPrefix(key, "Data") {
			data = append(data, key)
		} else {
			nonData = append(nonData, key)
		}
	}
	r.keys = append(nonData, data...)
}

// MarshalJSON renders the record as a JSON object with entries in
// normalized order
func (r *Record) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range r.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		name, err := gojson.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(name)
		buf.WriteByte(':')
		entry, err := r.entries[key].MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(entry)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalIndent renders the record as human-diffable JSON with four-space
// indentation and stable key order.
func (r *Record) MarshalIndent() ([]byte, error) {
	compact, err := r.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := gojson.Indent(&buf, compact, "", "    "); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to indent record")
	}
	return buf.Bytes(), nil
}

// UnmarshalJSON parses a serialized record, preserving entry and field
// order. Numbers without a decimal point or exponent decode as int64,
// all others as float64.
func (r *Record) UnmarshalJSON(data []byte) error {
	dec := gojson.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	if err := expectDelim(dec, '{'); err != nil {
		return errors.Wrap(err, errors.ErrorTypeValidation, "record is not a JSON object")
	}

	r.keys = nil
	r.entries = make(map[string]*Entry)

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, errors.ErrorTypeValidation, "failed to read entry name")
		}
		name, ok := tok.(string)
		if !ok {
			return errors.Newf(errors.ErrorTypeValidation, "unexpected entry key %v", tok)
		}

		entry := NewEntry(name)
		if err := expectDelim(dec, '{'); err != nil {
			return errors.Wrapf(err, errors.ErrorTypeValidation, "entry %q is not a JSON object", name)
		}
		for dec.More() {
			fieldTok, err := dec.Token()
			if err != nil {
				return errors.Wrapf(err, errors.ErrorTypeValidation, "failed to read field name in %q", name)
			}
			field, ok := fieldTok.(string)
			if !ok {
				return errors.Newf(errors.ErrorTypeValidation, "unexpected field key %v in %q", fieldTok, name)
			}
			value, err := decodeValue(dec)
			if err != nil {
				return errors.Wrapf(err, errors.ErrorTypeValidation, "failed to decode field %q of %q", field, name)
			}
			entry.Set(field, value)
		}
		if err := expectDelim(dec, '}'); err != nil {
			return errors.Wrapf(err, errors.ErrorTypeValidation, "entry %q is not terminated", name)
		}

		r.Put(entry)
	}

	return expectDelim(dec, '}')
}

// expectDelim consumes one token and checks it is the given delimiter
func expectDelim(dec *gojson.Decoder, delim rune) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	d, ok := tok.(gojson.Delim)
	if !ok || rune(d) != delim {
		return fmt.Errorf("expected %q, got %v", delim, tok)
	}
	return nil
}

// decodeValue decodes one JSON value: scalar, null, or arbitrarily
// nested array.
func decodeValue(dec *gojson.Decoder) (interface{}, error) {
	tok, err := dec.Token()
	if err != nil {
		return nil, err
	}

	switch v := tok.(type) {
	case gojson.Delim:
		if rune(v) != '[' {
			return nil, fmt.Errorf("unexpected delimiter %v", v)
		}
		items := []interface{}{}
		for dec.More() {
			item, err := decodeValue(dec)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if err := expectDelim(dec, ']'); err != nil {
			return nil, err
		}
		return items, nil
	case gojson.Number:
		s := v.String()
		if strings.ContainsAny(s, ".eE") {
			return v.Float64()
		}
		return v.Int64()
	default:
		// string, bool or nil
		return v, nil
	}
}
