// Package records assembles extraction output into the rows of the standard
// output sheets.
package records

import (
	"fmt"
	"time"

	"github.com/a3tai/tender-ai-tagger/internal/extraction"
	"github.com/a3tai/tender-ai-tagger/internal/rules"
	"github.com/a3tai/tender-ai-tagger/internal/workbook"
)

// Standard sheet names
const (
	SheetMaster     = "AI_Tagging_Master"
	SheetBidInfo    = "BID_INFO"
	SheetAmendments = "AmendmentTracker"
	SheetMeta       = "TenderMeta"
)

var (
	MasterColumns    = []string{"Section", "Clause/Ref", "Parameter", "Value", "Unit", "Notes", "SourcePage"}
	BidInfoColumns   = []string{"Field", "Value"}
	AmendmentColumns = []string{"AmendmentType", "FileName", "Date", "Notes", "Pages"}
	MetaColumns      = []string{"Key", "Value"}
)

// MasterSheet lays out tag rows in the order they were generated
func MasterSheet(rows []extraction.TagRow) workbook.Sheet {
	sheet := workbook.Sheet{Name: SheetMaster, Columns: MasterColumns}
	for _, r := range rows {
		sheet.Rows = append(sheet.Rows, []interface{}{
			r.Section, r.ClauseRef, r.Parameter, r.Value, r.Unit, r.Notes, r.SourcePage,
		})
	}
	return sheet
}

// BidInfo is the BID_INFO table: one row per unique field name
type BidInfo struct {
	values *rules.OrderedMap
}

// NewBidInfo creates an empty table
func NewBidInfo() *BidInfo {
	return &BidInfo{values: rules.NewOrderedMap()}
}

// Upsert updates field in place or appends it
func (b *BidInfo) Upsert(field, value string) {
	b.values.Set(field, value)
}

// UpsertAll upserts every entry of values in order
func (b *BidInfo) UpsertAll(values *rules.OrderedMap) {
	for _, e := range values.Entries() {
		b.Upsert(e.Key, e.Value)
	}
}

// ApplyDefaults fills fields that are absent or empty. A non-empty value is never replaced.
func (b *BidInfo) ApplyDefaults(defaults *rules.OrderedMap) {
	for _, e := range defaults.Entries() {
		if current, ok := b.values.Get(e.Key); ok && current != "" {
			continue
		}
		b.Upsert(e.Key, e.Value)
	}
}

// Get returns the value stored for field
func (b *BidInfo) Get(field string) (string, bool) {
	return b.values.Get(field)
}

// Len returns the number of fields
func (b *BidInfo) Len() int {
	return b.values.Len()
}

// Sheet lays out the table as Field/Value rows
func (b *BidInfo) Sheet() workbook.Sheet {
	sheet := workbook.Sheet{Name: SheetBidInfo, Columns: BidInfoColumns}
	for _, e := range b.values.Entries() {
		sheet.Rows = append(sheet.Rows, []interface{}{e.Key, e.Value})
	}
	return sheet
}

// AssembleBidInfo merges extracted header values with declared defaults
func AssembleBidInfo(extracted, defaults *rules.OrderedMap) *BidInfo {
	info := NewBidInfo()
	info.UpsertAll(extracted)
	info.ApplyDefaults(defaults)
	return info
}

// BuildMeta describes one build run for the TenderMeta sheet
type BuildMeta struct {
	Label          string
	BuiltAt        time.Time
	BuildID        string
	SourceCount    int
	AmendmentCount int
}

// BuildLabel renders the build stamp, e.g. "AI_Tagging built 2024-05-12 10:30:00"
func (m BuildMeta) BuildLabel() string {
	label := m.Label
	if label == "" {
		label = "AI_Tagging"
	}
	return fmt.Sprintf("%s built %s", label, m.BuiltAt.Format("2006-01-02 15:04:05"))
}

// MetaSheet lays out the build metadata as Key/Value rows
func MetaSheet(m BuildMeta) workbook.Sheet {
	return workbook.Sheet{
		Name:    SheetMeta,
		Columns: MetaColumns,
		Rows: [][]interface{}{
			{"Build", m.BuildLabel()},
			{"BuildID", m.BuildID},
			{"SourceCount", fmt.Sprint(m.SourceCount)},
			{"AmendmentsCount", fmt.Sprint(m.AmendmentCount)},
		},
	}
}
