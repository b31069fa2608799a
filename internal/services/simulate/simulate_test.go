package simulate

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"findash/internal/clock"
	"findash/internal/models"
)

func newTestSimulator() *Simulator {
	return New(Options{
		ExportDelay: DefaultExportDelay,
		UploadDelay: DefaultUploadDelay,
		Sleep:       clock.NoDelay,
		Now:         clock.Fixed(time.Date(2024, time.July, 1, 10, 30, 0, 0, time.UTC)),
	})
}

func TestParseSections(t *testing.T) {
	tests := []struct {
		name     string
		input    []string
		expected []Section
		err      error
	}{
		{"all", []string{"savings", "income", "emis", "expenses", "categories"},
			[]Section{SectionIncome, SectionExpenses, SectionCategories, SectionEMIs, SectionSavings}, nil},
		{"duplicates", []string{"income", "Income", " income "}, []Section{SectionIncome}, nil},
		{"unknown", []string{"income", "taxes"}, nil, ErrInvalidSection},
		{"empty", nil, nil, ErrNoSections},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSections(tt.input)
			if !errors.Is(err, tt.err) {
				t.Fatalf("Expected error %v, got %v", tt.err, err)
			}
			if tt.err == nil && !reflect.DeepEqual(got, tt.expected) {
				t.Errorf("ParseSections(%v) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRequestExport(t *testing.T) {
	sim := newTestSimulator()

	receipt, err := sim.RequestExport(context.Background(), []string{"income", "emis"}, "excel")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if receipt.ID == "" {
		t.Error("Expected a receipt ID")
	}
	if receipt.FileName != "financial_report_20240701_103000.xlsx" {
		t.Errorf("Unexpected file name %q", receipt.FileName)
	}

	sheets, err := sim.RequestExport(context.Background(), []string{"savings"}, "SHEETS")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sheets.Format != FormatSheets {
		t.Errorf("Expected sheets format, got %s", sheets.Format)
	}

	if _, err := sim.RequestExport(context.Background(), []string{"income"}, "pdf"); !errors.Is(err, ErrInvalidFormat) {
		t.Errorf("Expected ErrInvalidFormat, got %v", err)
	}
}

func TestRequestExportCancelled(t *testing.T) {
	sim := New(Options{ExportDelay: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := sim.RequestExport(ctx, []string{"income"}, "excel")
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestRequestUpload(t *testing.T) {
	sim := newTestSimulator()

	result, err := sim.RequestUpload(context.Background(), "statement.csv")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.LoadedFrom != "file" {
		t.Errorf("Expected file source, got %s", result.LoadedFrom)
	}
	if !reflect.DeepEqual(result.Record, models.MockRecord()) {
		t.Error("Upload should yield the mock record")
	}

	sheets, err := sim.RequestUpload(context.Background(), SheetsToken)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if sheets.LoadedFrom != "sheets" {
		t.Errorf("Expected sheets source, got %s", sheets.LoadedFrom)
	}

	// Each upload yields an independent copy
	result.Record.Income[0].Amount = 1
	if sheets.Record.Income[0].Amount == 1 {
		t.Error("Uploads share backing arrays")
	}

	if _, err := sim.RequestUpload(context.Background(), "  "); !errors.Is(err, ErrEmptySource) {
		t.Errorf("Expected ErrEmptySource, got %v", err)
	}
}

func TestSkip(t *testing.T) {
	sim := newTestSimulator()
	if r := sim.Skip(); r == nil || len(r.Income) != 6 {
		t.Errorf("Skip should yield the six-month mock record, got %+v", r)
	}
}
