package sheet

import (
	"fmt"
	"strings"

	"github.com/uhppoted/sheets2json/record"
)

// MakeRecords converts the rows of a worksheet into header-keyed records. The first row is the
// header. Columns without a header are ignored, short rows are padded with empty values and
// cells beyond the header are discarded.
func MakeRecords(rows [][]any) ([]record.Record, error) {
	if len(rows) == 0 {
		return []record.Record{}, nil
	}

	// .. build index
	type column struct {
		index int
		name  string
	}

	header := []column{}
	index := map[string]int{}
	for i, v := range rows[0] {
		name := clean(fmt.Sprintf("%v", v))
		if name == "" {
			continue
		}

		if _, ok := index[name]; ok {
			return nil, fmt.Errorf("Duplicate column name '%s'", name)
		}

		index[name] = i
		header = append(header, column{index: i, name: name})
	}

	if len(header) == 0 {
		return nil, fmt.Errorf("Missing/invalid header row")
	}

	// ... records
	records := []record.Record{}
	for _, row := range rows[1:] {
		fields := make([]record.Field, 0, len(header))
		for _, h := range header {
			var v any = ""
			if h.index < len(row) && row[h.index] != nil {
				v = row[h.index]
			}

			fields = append(fields, record.Field{Name: h.name, Value: v})
		}

		records = append(records, record.New(fields...))
	}

	return records, nil
}

func clean(v string) string {
	return strings.TrimSpace(v)
}
