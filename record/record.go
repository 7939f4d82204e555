package record

// Field is a single named value in a Record.
type Field struct {
	Name  string
	Value any
}

// Record is an ordered set of fields, in the column order of the worksheet it was read from.
//
// Records have value semantics as far as the pipeline is concerned: filters are handed a Clone
// and the mutating methods only ever affect that copy.
type Record struct {
	fields []Field
}

// Dataset is an ordered sequence of records.
type Dataset []Record

// New returns a record with the fields in the order given. A repeated name replaces the value
// of the earlier field.
func New(fields ...Field) Record {
	r := Record{
		fields: make([]Field, 0, len(fields)),
	}

	for _, f := range fields {
		r.Set(f.Name, f.Value)
	}

	return r
}

// Clone returns an independent copy of the record.
func (r Record) Clone() Record {
	fields := make([]Field, len(r.fields))
	copy(fields, r.fields)

	return Record{
		fields: fields,
	}
}

func (r Record) Len() int {
	return len(r.fields)
}

// Fields returns a copy of the record fields.
func (r Record) Fields() []Field {
	fields := make([]Field, len(r.fields))
	copy(fields, r.fields)

	return fields
}

func (r Record) Keys() []string {
	keys := make([]string, 0, len(r.fields))
	for _, f := range r.fields {
		keys = append(keys, f.Name)
	}

	return keys
}

func (r Record) Get(name string) (any, bool) {
	if ix := r.index(name); ix >= 0 {
		return r.fields[ix].Value, true
	}

	return nil, false
}

// Set replaces the value of an existing field or appends a new field.
func (r *Record) Set(name string, value any) {
	if ix := r.index(name); ix >= 0 {
		r.fields[ix].Value = value
	} else {
		r.fields = append(r.fields, Field{Name: name, Value: value})
	}
}

// Delete removes a field, returning false if the field does not exist.
func (r *Record) Delete(name string) bool {
	ix := r.index(name)
	if ix < 0 {
		return false
	}

	r.fields = append(r.fields[:ix:ix], r.fields[ix+1:]...)

	return true
}

// Rename renames a field in place, keeping its position. An existing field with the new name is
// removed.
func (r *Record) Rename(from, to string) bool {
	ix := r.index(from)
	if ix < 0 {
		return false
	}

	if from == to {
		return true
	}

	r.fields[ix].Name = to
	for i, f := range r.fields {
		if i != ix && f.Name == to {
			r.fields = append(r.fields[:i:i], r.fields[i+1:]...)
			break
		}
	}

	return true
}

// Map returns the fields as a map, for expression evaluation. Field order is lost.
func (r Record) Map() map[string]any {
	m := make(map[string]any, len(r.fields))
	for _, f := range r.fields {
		m[f.Name] = f.Value
	}

	return m
}

func (r Record) index(name string) int {
	for i, f := range r.fields {
		if f.Name == name {
			return i
		}
	}

	return -1
}
