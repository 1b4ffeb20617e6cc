package output

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tidwall/gjson"

	"github.com/edinex/edinex/pkg/edinet"
	"github.com/edinex/edinex/pkg/refdata"
	"github.com/edinex/edinex/pkg/xbrl"
)

func sampleRecord() Record {
	sales := "1234567890"
	return Record{
		Filing: edinet.Filing{
			DocID:          "S100TEST",
			EdinetCode:     "E02144",
			SecCode:        "72030",
			FilerName:      "トヨタ自動車株式会社",
			DocDescription: "有価証券報告書－第120期",
			SubmitDateTime: "2024-06-25 09:01",
			PeriodStart:    "2023-04-01",
			PeriodEnd:      "2024-03-31",
		},
		DocType: edinet.DocTypeAnnual,
		Company: refdata.Company{
			EdinetCode:    "E02144",
			Name:          "トヨタ自動車株式会社",
			SecCode:       "72030",
			FiscalYearEnd: "3月31日",
			Industry:      "輸送用機器",
		},
		Result: xbrl.Result{
			Concepts: map[string]xbrl.ConceptResult{
				"NetSales": {
					Value:    xbrl.Value{Kind: xbrl.Numeric, Raw: sales},
					Label:    "売上高",
					Unit:     "円",
					Tier:     xbrl.TierCritical,
					Category: "損益計算書",
				},
				"Goodwill": {
					Value:    xbrl.Value{Kind: xbrl.Missing},
					Label:    "のれん",
					Unit:     "円",
					Tier:     xbrl.TierNormal,
					Category: "貸借対照表",
				},
			},
			Order: []string{"NetSales", "Goodwill"},
			Period: xbrl.PeriodInfo{
				PeriodStart: "2023-04-01",
				PeriodEnd:   "2024-03-31",
			},
			Source: xbrl.Provenance{
				Filename:    "jpcrp030000-asr-001_E02144-000_2024-03-31_01_2024-06-25.xbrl",
				Class:       "XBRLインスタンス（メイン）",
				Size:        4096,
				ExtractedAt: "2024-06-25 10:00:00",
			},
			Summary: xbrl.Summary{Total: 2, Found: 1, SuccessRate: 50.0},
		},
	}
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	paths, err := NewWriter(dir).Write(sampleRecord())
	if err != nil {
		t.Fatalf("Write: %v", err)
	}

	raw, err := os.ReadFile(paths.JSON)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	body := string(raw)
	if gjson.Get(body, "filing.doc_id").String() != "S100TEST" {
		t.Fatalf("doc_id missing in %s", body)
	}
	if gjson.Get(body, "items.0.value").String() != "1234567890" {
		t.Fatalf("found item not rendered: %s", body)
	}
	miss := gjson.Get(body, "items.1.value")
	if miss.Type != gjson.Null {
		t.Fatalf("missing item must serialize as null, got %v", miss)
	}
	if gjson.Get(body, "summary.success_rate").Float() != 50.0 {
		t.Fatalf("success rate wrong: %s", body)
	}
	if gjson.Get(body, "company.industry").String() != "輸送用機器" {
		t.Fatalf("company enrichment missing: %s", body)
	}

	f, err := os.Open(paths.CSV)
	if err != nil {
		t.Fatalf("open csv: %v", err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header + 2 rows, got %d", len(rows))
	}
	if rows[0][0] != "date" || rows[0][2] != "item_key" {
		t.Fatalf("csv header wrong: %v", rows[0])
	}
	if rows[1][0] != "2024-06-25" || rows[1][2] != "NetSales" || rows[1][4] != "1234567890" {
		t.Fatalf("csv row wrong: %v", rows[1])
	}
	if rows[2][2] != "Goodwill" || rows[2][4] != "" {
		t.Fatalf("missing concept must flatten to empty value: %v", rows[2])
	}
}

func TestStem(t *testing.T) {
	stem := Stem(sampleRecord())
	if strings.Contains(stem, "株式会社") {
		t.Fatalf("corporate suffix must be stripped: %s", stem)
	}
	if !strings.HasSuffix(stem, "_20240625") {
		t.Fatalf("date suffix wrong: %s", stem)
	}
	for _, part := range []string{"トヨタ自動車", "72030", "E02144", "有価証券報告書"} {
		if !strings.Contains(stem, part) {
			t.Fatalf("stem missing %q: %s", part, stem)
		}
	}
}

func TestStem_MissingMetadata(t *testing.T) {
	rec := sampleRecord()
	rec.Company = refdata.Company{}
	rec.Filing.FilerName = ""
	rec.Filing.SecCode = ""

	stem := Stem(rec)
	if !strings.HasPrefix(stem, "unknown_0000_") {
		t.Fatalf("fallback stem wrong: %s", stem)
	}
}

func TestWrite_NoPartialArtifacts(t *testing.T) {
	dir := t.TempDir()
	if _, err := NewWriter(dir).Write(sampleRecord()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	for _, sub := range []string{"json", "csv"} {
		leftovers, err := filepath.Glob(filepath.Join(dir, sub, "*.tmp"))
		if err != nil {
			t.Fatalf("glob: %v", err)
		}
		if len(leftovers) != 0 {
			t.Fatalf("temporary files left behind: %v", leftovers)
		}
	}
}
