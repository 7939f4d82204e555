package sheet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"
)

type google struct {
	service *sheets.Service
}

// NewGoogleClient wraps a Google Sheets API service as a Source client.
func NewGoogleClient(service *sheets.Service) Client {
	return &google{
		service: service,
	}
}

func (g *google) Worksheets(ctx context.Context, spreadsheet string) ([]string, error) {
	response, err := g.service.Spreadsheets.Get(spreadsheet).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to fetch spreadsheet (%w)", classify(err))
	}

	titles := []string{}
	for _, sheet := range response.Sheets {
		if sheet.Properties != nil {
			titles = append(titles, sheet.Properties.Title)
		}
	}

	return titles, nil
}

func (g *google) Values(ctx context.Context, spreadsheet string, worksheets []string) ([][][]any, error) {
	ranges := []string{}
	for _, title := range worksheets {
		ranges = append(ranges, quote(title))
	}

	response, err := g.service.Spreadsheets.Values.BatchGet(spreadsheet).
		Ranges(ranges...).
		ValueRenderOption("FORMATTED_VALUE").
		MajorDimension("ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to retrieve data from sheet (%w)", classify(err))
	}

	values := [][][]any{}
	for _, vr := range response.ValueRanges {
		values = append(values, vr.Values)
	}

	return values, nil
}

// quote returns the worksheet title as an A1 range covering the whole worksheet.
func quote(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'"
}

func classify(err error) error {
	var apierr *googleapi.Error
	var rerr *oauth2.RetrieveError

	switch {
	case errors.As(err, &rerr):
		return fmt.Errorf("%w: %v", ErrSourceAuth, err)

	case errors.As(err, &apierr):
		switch apierr.Code {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %v", ErrSourceAuth, err)
		default:
			return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
		}

	default:
		return fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
}
