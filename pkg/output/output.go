// Package output renders extraction results as on-disk artifacts: a
// detail JSON document and a flattened CSV, one pair per filing.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/edinex/edinex/internal/utils"
	"github.com/edinex/edinex/pkg/edinet"
	"github.com/edinex/edinex/pkg/refdata"
	"github.com/edinex/edinex/pkg/xbrl"
)

const filerNameMaxRunes = 30

// Record is everything the artifacts are rendered from: the filing, its
// classification, the (possibly zero) company directory entry, and the
// extraction result.
type Record struct {
	Filing  edinet.Filing
	DocType edinet.DocumentType
	Company refdata.Company
	Result  xbrl.Result
}

// Paths points at the artifacts one Write produced.
type Paths struct {
	JSON string
	CSV  string
}

// Writer renders Records under Dir/json and Dir/csv. Both files are
// written to a temporary name and renamed into place, so a crash never
// leaves a partial artifact under its final name.
type Writer struct {
	Dir string
}

func NewWriter(dir string) *Writer { return &Writer{Dir: dir} }

// Write renders both artifacts for one record.
func (w *Writer) Write(rec Record) (Paths, error) {
	stem := Stem(rec)

	jsonPath := filepath.Join(w.Dir, "json", stem+".json")
	if err := writeAtomic(jsonPath, func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		return enc.Encode(buildDetail(rec))
	}); err != nil {
		return Paths{}, fmt.Errorf("write json artifact: %w", err)
	}

	csvPath := filepath.Join(w.Dir, "csv", stem+".csv")
	if err := writeAtomic(csvPath, func(f *os.File) error {
		return writeFlatCSV(f, rec)
	}); err != nil {
		return Paths{}, fmt.Errorf("write csv artifact: %w", err)
	}

	utils.Log.Infof("artifacts written: %s.{json,csv}", stem)
	return Paths{JSON: jsonPath, CSV: csvPath}, nil
}

// Stem builds the shared artifact filename:
// company_seccode_edinetcode_doctype_yyyymmdd.
func Stem(rec Record) string {
	name := rec.Company.Name
	if name == "" {
		name = rec.Filing.FilerName
	}
	name = utils.SanitizeFilename(name, filerNameMaxRunes)
	if name == "" {
		name = "unknown"
	}

	secCode := rec.Filing.SecCode
	if secCode == "" {
		secCode = rec.Company.SecCode
	}
	if secCode == "" {
		secCode = "0000"
	}

	code := rec.Filing.EdinetCode
	if code == "" {
		code = rec.Filing.DocID
	}

	date := strings.ReplaceAll(rec.Filing.SubmitDate(), "-", "")
	docType := utils.SanitizeFilename(rec.DocType.String(), 0)
	return fmt.Sprintf("%s_%s_%s_%s_%s", name, secCode, code, docType, date)
}

// Detail is the JSON artifact layout. Concept items are a slice, not a
// map, to preserve catalog order in the rendered document.
type Detail struct {
	Company DetailCompany `json:"company"`
	Filing  DetailFiling  `json:"filing"`
	Period  DetailPeriod  `json:"period"`
	Items   []DetailItem  `json:"items"`
	Summary DetailSummary `json:"summary"`
	Source  DetailSource  `json:"source"`
}

type DetailCompany struct {
	EdinetCode    string `json:"edinet_code"`
	Name          string `json:"name"`
	SecCode       string `json:"sec_code"`
	FiscalYearEnd string `json:"fiscal_year_end,omitempty"`
	Industry      string `json:"industry,omitempty"`
}

type DetailFiling struct {
	DocID          string `json:"doc_id"`
	DocType        string `json:"doc_type"`
	DocDescription string `json:"doc_description"`
	SubmitDateTime string `json:"submitted_at"`
	PeriodStart    string `json:"period_start,omitempty"`
	PeriodEnd      string `json:"period_end,omitempty"`
}

type DetailPeriod struct {
	Start   string `json:"start,omitempty"`
	End     string `json:"end,omitempty"`
	Instant string `json:"instant,omitempty"`
}

type DetailItem struct {
	Key        string  `json:"key"`
	Label      string  `json:"label"`
	Value      *string `json:"value"` // null when the concept was not found
	Unit       string  `json:"unit,omitempty"`
	Importance string  `json:"importance"`
	Category   string  `json:"category,omitempty"`
}

type DetailSummary struct {
	Total       int     `json:"total_items"`
	Found       int     `json:"found_items"`
	SuccessRate float64 `json:"success_rate"`
}

type DetailSource struct {
	Filename    string `json:"filename"`
	Class       string `json:"class"`
	Size        int64  `json:"size_bytes"`
	ExtractedAt string `json:"extracted_at"`
}

func buildDetail(rec Record) Detail {
	d := Detail{
		Company: DetailCompany{
			EdinetCode:    rec.Filing.EdinetCode,
			Name:          rec.Company.Name,
			SecCode:       rec.Filing.SecCode,
			FiscalYearEnd: rec.Company.FiscalYearEnd,
			Industry:      rec.Company.Industry,
		},
		Filing: DetailFiling{
			DocID:          rec.Filing.DocID,
			DocType:        rec.DocType.String(),
			DocDescription: rec.Filing.DocDescription,
			SubmitDateTime: rec.Filing.SubmitDateTime,
			PeriodStart:    rec.Filing.PeriodStart,
			PeriodEnd:      rec.Filing.PeriodEnd,
		},
		Period: DetailPeriod{
			Start:   rec.Result.Period.PeriodStart,
			End:     rec.Result.Period.PeriodEnd,
			Instant: rec.Result.Period.Instant,
		},
		Summary: DetailSummary{
			Total:       rec.Result.Summary.Total,
			Found:       rec.Result.Summary.Found,
			SuccessRate: rec.Result.Summary.SuccessRate,
		},
		Source: DetailSource{
			Filename:    rec.Result.Source.Filename,
			Class:       rec.Result.Source.Class,
			Size:        rec.Result.Source.Size,
			ExtractedAt: rec.Result.Source.ExtractedAt,
		},
	}
	if d.Company.Name == "" {
		d.Company.Name = rec.Filing.FilerName
	}
	for _, key := range rec.Result.Order {
		cr := rec.Result.Concepts[key]
		d.Items = append(d.Items, DetailItem{
			Key:        key,
			Label:      cr.Label,
			Value:      cr.Value.Ptr(),
			Unit:       cr.Unit,
			Importance: cr.Tier.String(),
			Category:   cr.Category,
		})
	}
	return d
}

var csvHeader = []string{
	"date", "doc_name", "item_key", "japanese_name",
	"value", "unit", "importance", "category",
}

func writeFlatCSV(f *os.File, rec Record) error {
	cw := csv.NewWriter(f)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	date := rec.Filing.SubmitDate()
	docName := rec.DocType.String()
	for _, key := range rec.Result.Order {
		cr := rec.Result.Concepts[key]
		value := ""
		if p := cr.Value.Ptr(); p != nil {
			value = *p
		}
		row := []string{date, docName, key, cr.Label, value, cr.Unit, cr.Tier.String(), cr.Category}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// writeAtomic renders into path+".tmp" and renames on success; the
// temporary is removed on failure.
func writeAtomic(path string, render func(*os.File) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}
