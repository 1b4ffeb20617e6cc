package xbrl

import (
	"reflect"
	"strings"
	"testing"
)

const sampleInstance = `<?xml version="1.0" encoding="UTF-8"?>
<xbrli:xbrl xmlns:xbrli="http://www.xbrl.org/2003/instance"
            xmlns:jppfs_cor="http://disclosure.edinet-fsa.go.jp/taxonomy/jppfs/2024-03-31/jppfs_cor"
            xmlns:jpcrp_cor="http://disclosure.edinet-fsa.go.jp/taxonomy/jpcrp/2024-03-31/jpcrp_cor">
  <xbrli:context id="CurrentYearDuration">
    <xbrli:period>
      <xbrli:startDate>2023-04-01</xbrli:startDate>
      <xbrli:endDate>2024-03-31</xbrli:endDate>
    </xbrli:period>
  </xbrli:context>
  <jppfs_cor:NetSales contextRef="CurrentYearDuration" unitRef="JPY">1234567890</jppfs_cor:NetSales>
  <jppfs_cor:OperatingIncome contextRef="CurrentYearDuration" unitRef="JPY">98765</jppfs_cor:OperatingIncome>
  <jpcrp_cor:NumberOfEmployees contextRef="CurrentYearDuration">1,234名</jpcrp_cor:NumberOfEmployees>
</xbrli:xbrl>`

func mustParse(t *testing.T, s string) *Document {
	t.Helper()
	doc, err := Parse(strings.NewReader(s))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return doc
}

func concept(key, element string) Concept {
	return Concept{Key: key, Patterns: ElementPatterns(element), Tier: TierNormal}
}

func TestExtract_ExactMatch(t *testing.T) {
	doc := mustParse(t, sampleInstance)
	res := Extract(doc, []Concept{concept("NetSales", "jppfs_cor:NetSales")})

	got := res.Concepts["NetSales"].Value
	if got.Kind != Numeric || got.Raw != "1234567890" {
		t.Fatalf("expected numeric 1234567890, got %+v", got)
	}
}

func TestExtract_FallbackToSecondVariant(t *testing.T) {
	doc := mustParse(t, sampleInstance)
	// The first variant fails all three passes; the element matches the
	// second-listed variant exactly.
	c := Concept{Key: "OperatingIncome", Patterns: []string{
		"jppfs_cor:SomethingAbsent",
		"jppfs_cor:OperatingIncome",
	}}
	res := Extract(doc, []Concept{c})

	got := res.Concepts["OperatingIncome"].Value
	if got.Kind != Numeric || got.Raw != "98765" {
		t.Fatalf("fallback ordering not respected, got %+v", got)
	}
}

func TestExtract_SuffixPassBeforeNextVariant(t *testing.T) {
	doc := mustParse(t, sampleInstance)
	// An unknown prefix on the first variant still resolves through the
	// suffix pass before any later variant is consulted.
	res := Extract(doc, []Concept{concept("OperatingIncome", "oldtax:OperatingIncome")})

	got := res.Concepts["OperatingIncome"].Value
	if got.Kind != Numeric || got.Raw != "98765" {
		t.Fatalf("suffix pass not applied, got %+v", got)
	}
}

func TestExtract_MissIsNotAnError(t *testing.T) {
	doc := mustParse(t, sampleInstance)
	res := Extract(doc, []Concept{
		concept("NetSales", "jppfs_cor:NetSales"),
		concept("Goodwill", "jppfs_cor:Goodwill"),
	})

	if !res.Concepts["NetSales"].Value.Found() {
		t.Fatalf("present concept should resolve")
	}
	if res.Concepts["Goodwill"].Value.Found() {
		t.Fatalf("absent concept should be Missing")
	}
	if res.Summary.Total != 2 || res.Summary.Found != 1 {
		t.Fatalf("summary wrong: %+v", res.Summary)
	}
	if res.Summary.SuccessRate != 50.0 {
		t.Fatalf("expected 50.0, got %v", res.Summary.SuccessRate)
	}
}

func TestExtract_Idempotent(t *testing.T) {
	doc := mustParse(t, sampleInstance)
	catalog := []Concept{
		concept("NetSales", "jppfs_cor:NetSales"),
		concept("Missing", "jppfs_cor:DoesNotExist"),
	}

	a := Extract(doc, catalog)
	b := Extract(doc, catalog)
	a.Source.ExtractedAt, b.Source.ExtractedAt = "", ""
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("extraction is not idempotent:\n%+v\n%+v", a, b)
	}
}

func TestExtract_EmptyCatalog(t *testing.T) {
	doc := mustParse(t, sampleInstance)
	res := Extract(doc, nil)
	if res.Summary.Total != 0 || res.Summary.Found != 0 {
		t.Fatalf("expected zero totals, got %+v", res.Summary)
	}
	if res.Summary.SuccessRate != 0.0 {
		t.Fatalf("empty catalog success rate must be 0.0, got %v", res.Summary.SuccessRate)
	}
}

func TestExtract_PeriodInfo(t *testing.T) {
	doc := mustParse(t, sampleInstance)
	res := Extract(doc, nil)
	if res.Period.PeriodStart != "2023-04-01" {
		t.Fatalf("period start: got %q", res.Period.PeriodStart)
	}
	if res.Period.PeriodEnd != "2024-03-31" {
		t.Fatalf("period end: got %q", res.Period.PeriodEnd)
	}
	if res.Period.Instant != "" {
		t.Fatalf("instant should be unset, got %q", res.Period.Instant)
	}
}

func TestExtract_PeriodMarkerPriority(t *testing.T) {
	// A fallback marker ("startdate") appears earlier in document order
	// than the preferred one ("periodstart"); the preferred marker still
	// wins because each marker is exhausted over the whole document first.
	doc := mustParse(t, `<root>
		<oldStartDate>1999-01-01</oldStartDate>
		<periodStart>2023-04-01</periodStart>
	</root>`)
	res := Extract(doc, nil)
	if res.Period.PeriodStart != "2023-04-01" {
		t.Fatalf("expected the preferred marker's value, got %q", res.Period.PeriodStart)
	}
}

func TestCoerce(t *testing.T) {
	cases := []struct {
		in   string
		kind ValueKind
		raw  string
	}{
		{"¥1,234,567", Numeric, "1234567"},
		{"1234567890", Numeric, "1234567890"},
		{"-123,456円", Numeric, "-123456"},
		{"N/A", Text, "N/A"},
		{"該当なし", Text, "該当なし"},
		{"  42  ", Numeric, "42"},
		{"", Missing, ""},
	}
	for _, c := range cases {
		got := coerce(c.in)
		if got.Kind != c.kind || got.Raw != c.raw {
			t.Fatalf("coerce(%q): expected {%v %q}, got {%v %q}", c.in, c.kind, c.raw, got.Kind, got.Raw)
		}
	}
}

func TestCaseInsensitivePass(t *testing.T) {
	doc := mustParse(t, `<root><netsales>500</netsales></root>`)
	res := Extract(doc, []Concept{{Key: "NetSales", Patterns: []string{"NetSales"}}})
	got := res.Concepts["NetSales"].Value
	if got.Kind != Numeric || got.Raw != "500" {
		t.Fatalf("case-insensitive pass failed, got %+v", got)
	}
}

func TestSuccessRate70Concepts(t *testing.T) {
	var b strings.Builder
	b.WriteString("<root>")
	catalog := make([]Concept, 0, 70)
	for i := 0; i < 70; i++ {
		key := "Item" + string(rune('A'+i/10)) + string(rune('0'+i%10))
		catalog = append(catalog, Concept{Key: key, Patterns: []string{key}})
		if i < 35 {
			b.WriteString("<" + key + ">1</" + key + ">")
		}
	}
	b.WriteString("</root>")

	res := Extract(mustParse(t, b.String()), catalog)
	if res.Summary.Found != 35 || res.Summary.Total != 70 {
		t.Fatalf("expected 35/70, got %d/%d", res.Summary.Found, res.Summary.Total)
	}
	if res.Summary.SuccessRate != 50.0 {
		t.Fatalf("expected rate 50.0, got %v", res.Summary.SuccessRate)
	}
}
