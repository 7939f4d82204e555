package record

import (
	"errors"
	"fmt"

	"github.com/spf13/cast"
)

// Filter maps a record to its output form. Returning skip=true drops the record from the
// transformed dataset. A filter receives its own copy of the record and is free to modify it.
type Filter func(Record) (r Record, skip bool, err error)

var ErrTransform = errors.New("transform error")

// TransformError wraps the error returned by a filter with the (zero based) index of the
// offending row in the input dataset.
type TransformError struct {
	Row int
	Err error
}

func (e *TransformError) Error() string {
	return fmt.Sprintf("row %d: %v", e.Row, e.Err)
}

func (e *TransformError) Unwrap() error {
	return e.Err
}

func (e *TransformError) Is(target error) bool {
	return target == ErrTransform
}

// Transform normalises every record in the dataset and then passes it through the filters, in
// order. The input dataset is not modified.
func Transform(dataset Dataset, filters ...Filter) (Dataset, error) {
	transformed := make(Dataset, 0, len(dataset))

	for i, r := range dataset {
		record := Normalise(r)
		skip := false

		for _, f := range filters {
			if f == nil {
				continue
			}

			var err error
			if record, skip, err = f(record.Clone()); err != nil {
				return nil, &TransformError{Row: i, Err: err}
			} else if skip {
				break
			}
		}

		if !skip {
			transformed = append(transformed, record)
		}
	}

	return transformed, nil
}

// Normalise returns a copy of the record with every value coerced to text.
func Normalise(r Record) Record {
	normalised := Record{
		fields: make([]Field, 0, len(r.fields)),
	}

	for _, f := range r.fields {
		normalised.fields = append(normalised.fields, Field{
			Name:  f.Name,
			Value: text(f.Value),
		})
	}

	return normalised
}

func text(v any) string {
	if s, err := cast.ToStringE(v); err == nil {
		return s
	}

	return fmt.Sprintf("%v", v)
}
