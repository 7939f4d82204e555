package document

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/uhppoted/sheets2json/record"
)

var ErrSerialization = errors.New("serialization error")

// SerializationError identifies the record field that could not be encoded.
type SerializationError struct {
	Row   int
	Field string
	Err   error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("row %d, field '%s': %v", e.Row, e.Field, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

func (e *SerializationError) Is(target error) bool {
	return target == ErrSerialization
}

// Document is the canonical JSON encoding of a dataset.
type Document struct {
	bytes []byte
}

type options struct {
	indent   string
	sortKeys bool
}

type Option func(*options)

// Indent sets the indentation used for each nesting level. The default is four spaces.
func Indent(indent string) Option {
	return func(o *options) {
		o.indent = indent
	}
}

// SortKeys orders object keys alphabetically instead of by column order.
func SortKeys() Option {
	return func(o *options) {
		o.sortKeys = true
	}
}

// New wraps existing bytes as a document.
func New(b []byte) Document {
	return Document{
		bytes: append([]byte(nil), b...),
	}
}

func (d Document) Bytes() []byte {
	return append([]byte(nil), d.bytes...)
}

func (d Document) String() string {
	return string(d.bytes)
}

func (d Document) Len() int {
	return len(d.bytes)
}

// SHA256 returns the hex encoded SHA-256 digest of the document.
func (d Document) SHA256() string {
	hash := sha256.Sum256(d.bytes)

	return hex.EncodeToString(hash[:])
}

// Build encodes the dataset as a JSON array of objects, one per record, with the object keys in
// field order. The output depends only on the dataset and the options: text is UTF-8 with only
// the escapes JSON requires and there is no trailing newline.
func Build(dataset record.Dataset, opts ...Option) (Document, error) {
	o := options{
		indent: "    ",
	}

	for _, opt := range opts {
		opt(&o)
	}

	if len(dataset) == 0 {
		return Document{bytes: []byte("[]")}, nil
	}

	var b bytes.Buffer

	b.WriteString("[")
	for i, r := range dataset {
		if i > 0 {
			b.WriteString(",")
		}

		b.WriteString("\n")
		b.WriteString(o.indent)

		if err := object(&b, r, o); err != nil {
			var serr *SerializationError
			if errors.As(err, &serr) {
				serr.Row = i
			}

			return Document{}, err
		}
	}

	b.WriteString("\n]")

	return Document{bytes: b.Bytes()}, nil
}

func object(b *bytes.Buffer, r record.Record, o options) error {
	fields := r.Fields()
	if len(fields) == 0 {
		b.WriteString("{}")
		return nil
	}

	if o.sortKeys {
		sort.SliceStable(fields, func(i, j int) bool { return fields[i].Name < fields[j].Name })
	}

	prefix := strings.Repeat(o.indent, 2)

	b.WriteString("{")
	for i, f := range fields {
		if i > 0 {
			b.WriteString(",")
		}

		key, err := encode(f.Name, "", "")
		if err != nil {
			return &SerializationError{Field: f.Name, Err: err}
		}

		value, err := encode(f.Value, prefix, o.indent)
		if err != nil {
			return &SerializationError{Field: f.Name, Err: err}
		}

		b.WriteString("\n")
		b.WriteString(prefix)
		b.Write(key)
		b.WriteString(": ")
		b.Write(value)
	}

	b.WriteString("\n")
	b.WriteString(o.indent)
	b.WriteString("}")

	return nil
}

func encode(v any, prefix, indent string) ([]byte, error) {
	var b bytes.Buffer

	encoder := json.NewEncoder(&b)
	encoder.SetEscapeHTML(false)
	if indent != "" {
		encoder.SetIndent(prefix, indent)
	}

	if err := encoder.Encode(v); err != nil {
		return nil, err
	}

	return separators(bytes.TrimSuffix(b.Bytes(), []byte("\n"))), nil
}

// separators replaces the \u2028 and \u2029 escapes written by encoding/json with the raw
// characters. Escaped backslashes are copied as pairs so that a literal "\\u2028" is left as is.
func separators(b []byte) []byte {
	if !bytes.Contains(b, []byte(`\u202`)) {
		return b
	}

	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		if b[i] != '\\' || i+1 >= len(b) {
			out = append(out, b[i])
			continue
		}

		switch string(b[i+1 : min(i+6, len(b))]) {
		case "u2028":
			out = append(out, "\u2028"...)
			i += 5
			continue

		case "u2029":
			out = append(out, "\u2029"...)
			i += 5
			continue
		}

		out = append(out, b[i], b[i+1])
		i++
	}

	return out
}
