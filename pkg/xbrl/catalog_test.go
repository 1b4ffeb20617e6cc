package xbrl

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const catalogCSV = `category,subcategory,item_name_jp,item_name_en,xbrl_element,description,unit,importance,calculation
損益計算書,売上,売上高,NetSales,jppfs_cor:NetSales,主たる営業収益,円,最重要,直接取得
損益計算書,売上,売上総利益,GrossProfit,計算項目,売上高-売上原価,円,重要,売上高 - 売上原価
貸借対照表,流動資産,現金及び預金,CashAndDeposits,jppfs_cor:CashAndDeposits,現金と預金,円,最重要,直接取得
損益計算書,経常損益,経常利益,OrdinaryIncome,jppfs_cor:OrdinaryIncome,経常的な利益,円,重要,直接取得
`

func TestParseCatalog(t *testing.T) {
	concepts, err := parseCatalog(strings.NewReader(catalogCSV))
	if err != nil {
		t.Fatalf("parseCatalog: %v", err)
	}
	// The derived row (計算項目) is excluded.
	if len(concepts) != 3 {
		t.Fatalf("expected 3 concepts, got %d", len(concepts))
	}
	c := concepts[0]
	if c.Key != "NetSales" || c.Label != "売上高" || c.Tier != TierCritical {
		t.Fatalf("first concept parsed wrong: %+v", c)
	}
	if c.Patterns[0] != "jppfs_cor:NetSales" {
		t.Fatalf("catalog spelling must be the first variant, got %v", c.Patterns)
	}
	if concepts[2].Tier != TierImportant {
		t.Fatalf("importance mapping wrong: %+v", concepts[2])
	}
}

func TestParseCatalog_BOM(t *testing.T) {
	concepts, err := parseCatalog(strings.NewReader("\ufeff" + catalogCSV))
	if err != nil {
		t.Fatalf("parseCatalog with BOM: %v", err)
	}
	if len(concepts) != 3 {
		t.Fatalf("expected 3 concepts, got %d", len(concepts))
	}
}

func TestElementPatterns(t *testing.T) {
	patterns := ElementPatterns("jpcrp:NetSales")
	if patterns[0] != "jpcrp:NetSales" {
		t.Fatalf("base element must come first, got %v", patterns)
	}
	last := patterns[len(patterns)-1]
	if last != "NetSales" {
		t.Fatalf("bare local name must come last, got %s", last)
	}
	seen := map[string]bool{}
	for _, p := range patterns {
		if seen[p] {
			t.Fatalf("duplicate pattern %s", p)
		}
		seen[p] = true
	}
	if !seen["jppfs_cor:NetSales"] || !seen["ifrs:NetSales"] {
		t.Fatalf("known prefixes missing from %v", patterns)
	}
}

func TestLoadCatalog_PicksNewestFile(t *testing.T) {
	dir := t.TempDir()
	old := `category,subcategory,item_name_jp,item_name_en,xbrl_element,description,unit,importance,calculation
損益計算書,売上,売上高,NetSales,jppfs_cor:NetSales,x,円,最重要,直接取得
`
	if err := os.WriteFile(filepath.Join(dir, "xbrl_fin_metadata_20240101.csv"), []byte(old), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "xbrl_fin_metadata_20250101.csv"), []byte(catalogCSV), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	concepts, err := LoadCatalog(dir)
	if err != nil {
		t.Fatalf("LoadCatalog: %v", err)
	}
	if len(concepts) != 3 {
		t.Fatalf("expected the newer catalog (3 concepts), got %d", len(concepts))
	}
}

func TestLoadCatalog_MissingIsEmpty(t *testing.T) {
	concepts, err := LoadCatalog(t.TempDir())
	if err != nil {
		t.Fatalf("missing catalog must not be an error: %v", err)
	}
	if len(concepts) != 0 {
		t.Fatalf("expected empty catalog, got %d", len(concepts))
	}
}
