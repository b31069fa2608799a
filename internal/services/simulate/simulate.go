// Package simulate stands in for the export and upload back ends. Both wait a
// fixed delay and then succeed; nothing is written or parsed.
package simulate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"findash/internal/clock"
	"findash/internal/models"
)

// Default waits, matching the dashboard's progress animations
const (
	DefaultExportDelay = 3 * time.Second
	DefaultUploadDelay = 2 * time.Second
)

// SheetsToken marks an upload that "connects" to Google Sheets instead of a file
const SheetsToken = "sheets-token"

var (
	ErrInvalidSection = errors.New("invalid export section")
	ErrInvalidFormat  = errors.New("invalid export format")
	ErrNoSections     = errors.New("no export sections selected")
	ErrEmptySource    = errors.New("upload source is empty")
)

// Section is a block of dashboard data that can be exported
type Section string

const (
	SectionIncome     Section = "income"
	SectionExpenses   Section = "expenses"
	SectionCategories Section = "categories"
	SectionEMIs       Section = "emis"
	SectionSavings    Section = "savings"
)

// SectionOption describes an exportable section for the export dialog
type SectionOption struct {
	Key         Section `json:"key"`
	Label       string  `json:"label"`
	Description string  `json:"description"`
}

// Sections lists every exportable section in display order
var Sections = []SectionOption{
	{SectionIncome, "Income Data", "Monthly income records and sources"},
	{SectionExpenses, "Expense Data", "Monthly expense breakdowns"},
	{SectionCategories, "Category Analysis", "Category-wise spending data"},
	{SectionEMIs, "EMI & Loans", "Loan details and payment schedules"},
	{SectionSavings, "Savings Tracker", "Savings goals and progress"},
}

// Format is the export target
type Format string

const (
	FormatExcel  Format = "excel"
	FormatSheets Format = "sheets"
)

// ExportReceipt confirms a finished (simulated) export
type ExportReceipt struct {
	ID          string    `json:"id"`
	Sections    []Section `json:"sections"`
	Format      Format    `json:"format"`
	FileName    string    `json:"file_name"`
	CompletedAt time.Time `json:"completed_at"`
}

// UploadResult is what a (simulated) upload yields
type UploadResult struct {
	Source     string                  `json:"source"`
	Record     *models.FinancialRecord `json:"record"`
	LoadedFrom string                  `json:"loaded_from"` // "file" or "sheets"
}

// Simulator runs the fake export and upload workflows
type Simulator struct {
	exportDelay time.Duration
	uploadDelay time.Duration
	sleep       clock.Sleeper
	now         clock.Now
	source      func() *models.FinancialRecord
	log         *logrus.Logger
}

// Options configures a Simulator. Nil funcs fall back to defaults; a zero
// delay skips the wait.
type Options struct {
	ExportDelay time.Duration
	UploadDelay time.Duration
	Sleep       clock.Sleeper
	Now         clock.Now
	// Source yields the record every upload resolves to
	Source func() *models.FinancialRecord
	Log    *logrus.Logger
}

// New creates a Simulator
func New(opts Options) *Simulator {
	s := &Simulator{
		exportDelay: opts.ExportDelay,
		uploadDelay: opts.UploadDelay,
		sleep:       opts.Sleep,
		now:         opts.Now,
		source:      opts.Source,
		log:         opts.Log,
	}
	if s.sleep == nil {
		s.sleep = clock.Sleep
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.source == nil {
		s.source = models.MockRecord
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

// ParseSections validates and de-duplicates section keys, keeping display order
func ParseSections(keys []string) ([]Section, error) {
	if len(keys) == 0 {
		return nil, ErrNoSections
	}

	order := make(map[Section]int, len(Sections))
	for i, opt := range Sections {
		order[opt.Key] = i
	}

	seen := make(map[Section]bool)
	var sections []Section
	for _, k := range keys {
		s := Section(strings.ToLower(strings.TrimSpace(k)))
		if _, ok := order[s]; !ok {
			return nil, fmt.Errorf("%w: %q", ErrInvalidSection, k)
		}
		if !seen[s] {
			seen[s] = true
			sections = append(sections, s)
		}
	}

	sort.Slice(sections, func(i, j int) bool {
		return order[sections[i]] < order[sections[j]]
	})
	return sections, nil
}

// ParseFormat validates an export format
func ParseFormat(f string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(f))) {
	case FormatExcel:
		return FormatExcel, nil
	case FormatSheets:
		return FormatSheets, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, f)
	}
}

// RequestExport pretends to export the selected sections
func (s *Simulator) RequestExport(ctx context.Context, keys []string, format string) (*ExportReceipt, error) {
	sections, err := ParseSections(keys)
	if err != nil {
		return nil, err
	}
	f, err := ParseFormat(format)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"sections": len(sections), "format": f}).Info("export started")
	if err := s.sleep(ctx, s.exportDelay); err != nil {
		return nil, fmt.Errorf("export interrupted: %w", err)
	}

	completed := s.now()
	receipt := &ExportReceipt{
		ID:          uuid.New().String(),
		Sections:    sections,
		Format:      f,
		FileName:    exportFileName(f, completed),
		CompletedAt: completed,
	}
	s.log.WithField("export_id", receipt.ID).Info("export complete")
	return receipt, nil
}

// RequestUpload pretends to ingest a file or a Sheets connection and yields
// a fresh record. The file content is never read.
func (s *Simulator) RequestUpload(ctx context.Context, source string) (*UploadResult, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, ErrEmptySource
	}

	from := "file"
	if source == SheetsToken {
		from = "sheets"
	}

	s.log.WithFields(logrus.Fields{"source": source, "from": from}).Info("upload started")
	if err := s.sleep(ctx, s.uploadDelay); err != nil {
		return nil, fmt.Errorf("upload interrupted: %w", err)
	}

	return &UploadResult{
		Source:     source,
		Record:     s.source().Clone(),
		LoadedFrom: from,
	}, nil
}

// Skip yields the default record without any wait
func (s *Simulator) Skip() *models.FinancialRecord {
	return s.source().Clone()
}

func exportFileName(f Format, at time.Time) string {
	stamp := at.Format("20060102_150405")
	if f == FormatSheets {
		return fmt.Sprintf("Financial Report %s", stamp)
	}
	return fmt.Sprintf("financial_report_%s.xlsx", stamp)
}
