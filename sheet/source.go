package sheet

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uhppoted/sheets2json/log"
	"github.com/uhppoted/sheets2json/record"
)

var (
	ErrSourceAuth        = errors.New("spreadsheet authentication/authorization error")
	ErrSourceUnavailable = errors.New("spreadsheet unavailable")
)

// Spec identifies the worksheet(s) to read.
//
// If All is false, Worksheet names the worksheet to read, defaulting to the first worksheet in the
// spreadsheet. If All is true, every worksheet other than those listed in Exclude is read and the
// rows are concatenated in worksheet order.
type Spec struct {
	Spreadsheet string
	Worksheet   string
	All         bool
	Exclude     []string
}

// Client is the subset of the Google Sheets API used to fetch worksheets.
type Client interface {
	// Worksheets returns the worksheet titles in document order.
	Worksheets(ctx context.Context, spreadsheet string) ([]string, error)

	// Values returns the cell values for each worksheet, in the order requested.
	Values(ctx context.Context, spreadsheet string, worksheets []string) ([][][]any, error)
}

type Source struct {
	client Client
}

func NewSource(client Client) *Source {
	return &Source{
		client: client,
	}
}

// Fetch retrieves the rows of the worksheet(s) identified by spec as a dataset.
func (s *Source) Fetch(ctx context.Context, spec Spec) (record.Dataset, error) {
	if strings.TrimSpace(spec.Spreadsheet) == "" {
		return nil, fmt.Errorf("%w: missing spreadsheet ID", ErrSourceUnavailable)
	}

	titles, err := s.client.Worksheets(ctx, spec.Spreadsheet)
	if err != nil {
		return nil, err
	}

	worksheets, err := selectWorksheets(titles, spec)
	if err != nil {
		return nil, err
	}

	if len(worksheets) == 0 {
		log.Debugf("spreadsheet %v: no worksheets to read", spec.Spreadsheet)
		return record.Dataset{}, nil
	}

	log.Debugf("spreadsheet %v: reading worksheets %q", spec.Spreadsheet, worksheets)

	values, err := s.client.Values(ctx, spec.Spreadsheet, worksheets)
	if err != nil {
		return nil, err
	} else if len(values) != len(worksheets) {
		return nil, fmt.Errorf("%w: requested %v worksheets, got %v", ErrSourceUnavailable, len(worksheets), len(values))
	}

	dataset := record.Dataset{}
	for i, rows := range values {
		if len(rows) == 0 {
			log.Debugf("worksheet '%v' is empty", worksheets[i])
			continue
		}

		records, err := MakeRecords(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: worksheet '%v' (%v)", ErrSourceUnavailable, worksheets[i], err)
		}

		log.Debugf("worksheet '%v': %v records", worksheets[i], len(records))

		dataset = append(dataset, records...)
	}

	return dataset, nil
}

func selectWorksheets(titles []string, spec Spec) ([]string, error) {
	if len(titles) == 0 {
		return nil, fmt.Errorf("%w: spreadsheet has no worksheets", ErrSourceUnavailable)
	}

	if spec.All {
		excluded := map[string]bool{}
		for _, title := range spec.Exclude {
			excluded[title] = true
		}

		list := []string{}
		for _, title := range titles {
			if !excluded[title] {
				list = append(list, title)
			}
		}

		return list, nil
	}

	if strings.TrimSpace(spec.Worksheet) == "" {
		return []string{titles[0]}, nil
	}

	for _, title := range titles {
		if normalise(title) == normalise(spec.Worksheet) {
			return []string{title}, nil
		}
	}

	return nil, fmt.Errorf("%w: unable to identify worksheet '%s'", ErrSourceUnavailable, spec.Worksheet)
}

func normalise(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}
