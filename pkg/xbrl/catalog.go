package xbrl

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/edinex/edinex/internal/utils"
)

// Importance tiers of catalog concepts, mapped from the catalog's Japanese
// labels.
type Tier int

const (
	TierNormal Tier = iota
	TierImportant
	TierCritical
)

func (t Tier) String() string {
	switch t {
	case TierCritical:
		return "最重要"
	case TierImportant:
		return "重要"
	}
	return "通常"
}

func parseTier(s string) Tier {
	switch strings.TrimSpace(s) {
	case "最重要":
		return TierCritical
	case "重要":
		return TierImportant
	}
	return TierNormal
}

// derivedMarker flags catalog rows that are computed from other concepts
// rather than tagged in the instance document; they are excluded from the
// extraction catalog.
const derivedMarker = "計算項目"

// Taxonomy prefixes under which a concept's local name may appear. Tried
// in this order after the catalog's own element spelling.
var commonPrefixes = []string{
	"jppfs_cor", "jpcrp_cor", "jpdei_cor", "jpigp_cor",
	"us-gaap", "ifrs", "jpfr", "jpcre", "jpcrp",
}

// Concept is one catalog entry: a semantic financial line item with the
// ordered list of tag-name spellings it may appear under.
type Concept struct {
	Key      string // semantic key, e.g. NetSales
	Label    string // Japanese display name
	Patterns []string
	Unit     string
	Tier     Tier
	Category string
}

// ElementPatterns expands a catalog element name into its fallback variant
// list: the spelling as written, the local name under every known taxonomy
// prefix, and finally the bare local name.
func ElementPatterns(element string) []string {
	local := element
	if i := strings.LastIndex(element, ":"); i >= 0 {
		local = element[i+1:]
	}

	patterns := []string{element}
	seen := map[string]struct{}{element: {}}
	add := func(p string) {
		if _, ok := seen[p]; !ok {
			seen[p] = struct{}{}
			patterns = append(patterns, p)
		}
	}
	for _, prefix := range commonPrefixes {
		add(prefix + ":" + local)
	}
	add(local)
	return patterns
}

// LoadCatalog reads the newest xbrl_fin_metadata_*.csv in dir. A missing
// catalog yields an empty (not nil-error) catalog: extraction then reports
// zero attempted concepts. Derived rows are skipped.
func LoadCatalog(dir string) ([]Concept, error) {
	path, ok := utils.NewestMatch(dir, "xbrl_fin_metadata_*.csv")
	if !ok {
		utils.Log.Warn("no concept catalog file (xbrl_fin_metadata_*.csv) found")
		return nil, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	concepts, err := parseCatalog(f)
	if err != nil {
		return nil, err
	}
	utils.Log.Infof("concept catalog loaded: %s (%d concepts)", filepath.Base(path), len(concepts))
	return concepts, nil
}

func parseCatalog(r io.Reader) ([]Concept, error) {
	cr := csv.NewReader(utils.StripBOM(r))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	col := headerIndex(header)

	var concepts []Concept
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		element := field(rec, col, "xbrl_element")
		if element == "" || element == derivedMarker {
			continue
		}
		concepts = append(concepts, Concept{
			Key:      field(rec, col, "item_name_en"),
			Label:    field(rec, col, "item_name_jp"),
			Patterns: ElementPatterns(element),
			Unit:     field(rec, col, "unit"),
			Tier:     parseTier(field(rec, col, "importance")),
			Category: field(rec, col, "category"),
		})
	}
	return concepts, nil
}

func headerIndex(header []string) map[string]int {
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}
	return col
}

func field(rec []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

