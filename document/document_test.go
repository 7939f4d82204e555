package document

import (
	"bytes"
	"errors"
	"testing"

	"github.com/spf13/afero"

	"github.com/uhppoted/sheets2json/record"
)

var dataset = record.Dataset{
	record.New(record.Field{Name: "name", Value: "Gate <north>"}, record.Field{Name: "id", Value: "1"}),
	record.New(record.Field{Name: "name", Value: "Tōwer"}, record.Field{Name: "date", Value: "2020-12-31"}),
}

func TestBuild(t *testing.T) {
	expected := `[
    {
        "name": "Gate <north>",
        "id": "1"
    },
    {
        "name": "Tōwer",
        "date": "2020-12-31"
    }
]`

	doc, err := Build(dataset)
	if err != nil {
		t.Fatalf("Unexpected error returned from Build (%v)", err)
	}

	if doc.String() != expected {
		t.Errorf("Incorrect document\n   expected:\n%v\n   got:\n%v\n", expected, doc)
	}
}

func TestBuildWithSortedKeys(t *testing.T) {
	expected := `[
  {
    "id": "1",
    "name": "Gate <north>"
  },
  {
    "date": "2020-12-31",
    "name": "Tōwer"
  }
]`

	doc, err := Build(dataset, SortKeys(), Indent("  "))
	if err != nil {
		t.Fatalf("Unexpected error returned from Build (%v)", err)
	}

	if doc.String() != expected {
		t.Errorf("Incorrect document\n   expected:\n%v\n   got:\n%v\n", expected, doc)
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	first, err := Build(dataset)
	if err != nil {
		t.Fatalf("Unexpected error returned from Build (%v)", err)
	}

	copied := record.Dataset{}
	for _, r := range dataset {
		copied = append(copied, r.Clone())
	}

	second, err := Build(copied)
	if err != nil {
		t.Fatalf("Unexpected error returned from Build (%v)", err)
	}

	if !bytes.Equal(first.Bytes(), second.Bytes()) {
		t.Errorf("Build is not deterministic\n   first:\n%v\n   second:\n%v\n", first, second)
	}

	if first.SHA256() != second.SHA256() {
		t.Errorf("Inconsistent document hashes %v and %v", first.SHA256(), second.SHA256())
	}
}

func TestBuildEmptyDataset(t *testing.T) {
	doc, err := Build(record.Dataset{})
	if err != nil {
		t.Fatalf("Unexpected error returned from Build (%v)", err)
	}

	if doc.String() != "[]" {
		t.Errorf("Incorrect document - expected:%v, got:%v", "[]", doc)
	}
}

func TestBuildWithEmptyRecord(t *testing.T) {
	expected := `[
    {}
]`

	doc, err := Build(record.Dataset{record.New()})
	if err != nil {
		t.Fatalf("Unexpected error returned from Build (%v)", err)
	}

	if doc.String() != expected {
		t.Errorf("Incorrect document\n   expected:\n%v\n   got:\n%v\n", expected, doc)
	}
}

func TestBuildWithNestedValue(t *testing.T) {
	expected := `[
    {
        "name": "Gate",
        "doors": [
            1,
            2
        ]
    }
]`

	doc, err := Build(record.Dataset{
		record.New(record.Field{Name: "name", Value: "Gate"}, record.Field{Name: "doors", Value: []int{1, 2}}),
	})
	if err != nil {
		t.Fatalf("Unexpected error returned from Build (%v)", err)
	}

	if doc.String() != expected {
		t.Errorf("Incorrect document\n   expected:\n%v\n   got:\n%v\n", expected, doc)
	}
}

func TestBuildWithLineSeparators(t *testing.T) {
	expected := "[\n    {\n        \"note\": \"line\u2028break\u2029end \\\\u2028\"\n    }\n]"

	doc, err := Build(record.Dataset{
		record.New(record.Field{Name: "note", Value: "line\u2028break\u2029end \\u2028"}),
	})
	if err != nil {
		t.Fatalf("Unexpected error returned from Build (%v)", err)
	}

	if doc.String() != expected {
		t.Errorf("Incorrect document\n   expected:%q\n   got:     %q", expected, doc.String())
	}
}

func TestBuildWithUnserializableValue(t *testing.T) {
	_, err := Build(record.Dataset{
		record.New(record.Field{Name: "name", Value: "Gate"}),
		record.New(record.Field{Name: "name", Value: func() {}}),
	})

	if !errors.Is(err, ErrSerialization) {
		t.Fatalf("Expected ErrSerialization, got %v", err)
	}

	var serr *SerializationError
	if !errors.As(err, &serr) || serr.Row != 1 || serr.Field != "name" {
		t.Errorf("Incorrect serialization error - got %v", err)
	}
}

func TestPersist(t *testing.T) {
	fs := afero.NewMemMapFs()

	doc, err := Build(dataset)
	if err != nil {
		t.Fatalf("Unexpected error returned from Build (%v)", err)
	}

	if err := Persist(fs, doc, "/var/sheets2json/data.json"); err != nil {
		t.Fatalf("Unexpected error returned from Persist (%v)", err)
	}

	b, err := afero.ReadFile(fs, "/var/sheets2json/data.json")
	if err != nil {
		t.Fatalf("Error reading persisted document (%v)", err)
	}

	if !bytes.Equal(b, doc.Bytes()) {
		t.Errorf("Incorrect persisted document\n   expected:\n%v\n   got:\n%s\n", doc, b)
	}

	if files, _ := afero.ReadDir(fs, "/var/sheets2json"); len(files) != 1 {
		t.Errorf("Expected temporary file to be removed, got %v files", len(files))
	}
}
