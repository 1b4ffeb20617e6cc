package xbrl

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/edinex/edinex/internal/utils"
)

// ValueKind tags what a concept resolved to.
type ValueKind int

const (
	Missing ValueKind = iota
	Numeric           // raw text coerced to a normalized numeric string
	Text              // non-numeric text kept verbatim
)

// Value is one concept's extraction outcome. Callers must not assume
// numeric: instance documents tag free text under financial concepts too.
type Value struct {
	Kind ValueKind
	Raw  string
}

func (v Value) Found() bool { return v.Kind != Missing }

// Ptr returns the raw value or nil when missing, for JSON output where
// misses serialize as null.
func (v Value) Ptr() *string {
	if v.Kind == Missing {
		return nil
	}
	raw := v.Raw
	return &raw
}

// ConceptResult pairs a resolved value with the catalog metadata callers
// report on.
type ConceptResult struct {
	Value    Value
	Label    string
	Unit     string
	Tier     Tier
	Category string
}

// PeriodInfo is the reporting-period metadata found alongside the facts.
// Unset fields mean the document carried no such marker.
type PeriodInfo struct {
	PeriodStart string
	PeriodEnd   string
	Instant     string
}

// Provenance records which file a result came from.
type Provenance struct {
	Filename    string
	Class       string
	Size        int64
	ExtractedAt string
}

// Summary is the success accounting over one extraction run.
type Summary struct {
	Total       int
	Found       int
	SuccessRate float64 // percent, one decimal place; 0.0 on empty catalog
}

// Result is one (filing, instance document) extraction: per-concept
// outcomes keyed by semantic key, ordered as the catalog orders them.
type Result struct {
	Concepts map[string]ConceptResult
	Order    []string
	Period   PeriodInfo
	Source   Provenance
	Summary  Summary
}

// Extract resolves every catalog concept against the document. Concepts
// are independent: a miss is recorded as a Missing value and never blocks
// the rest. The same document and catalog always produce the same Result.
func Extract(doc *Document, catalog []Concept) Result {
	res := Result{
		Concepts: make(map[string]ConceptResult, len(catalog)),
		Period:   extractPeriod(doc),
		Summary:  Summary{Total: len(catalog)},
	}
	res.Source.ExtractedAt = time.Now().Format("2006-01-02 15:04:05")

	for _, c := range catalog {
		value := resolveConcept(doc, c.Patterns)
		if value.Found() {
			res.Summary.Found++
		}
		res.Concepts[c.Key] = ConceptResult{
			Value:    value,
			Label:    c.Label,
			Unit:     c.Unit,
			Tier:     c.Tier,
			Category: c.Category,
		}
		res.Order = append(res.Order, c.Key)
	}

	if res.Summary.Total > 0 {
		rate := float64(res.Summary.Found) / float64(res.Summary.Total) * 100
		res.Summary.SuccessRate = math.Round(rate*10) / 10
	}
	utils.Log.Infof("extraction complete: %d/%d concepts (%.1f%%)",
		res.Summary.Found, res.Summary.Total, res.Summary.SuccessRate)
	return res
}

// resolveConcept tries the concept's variants in order; per variant, three
// escalating passes run before moving on to the next variant. The first
// element in document order wins.
func resolveConcept(doc *Document, patterns []string) Value {
	for _, pattern := range patterns {
		for _, match := range passes {
			if e := match(doc, pattern); e != nil {
				return coerce(e.Text)
			}
		}
	}
	return Value{Kind: Missing}
}

// The escalation order is a fixed, enumerable policy: exact prefixed name,
// then suffix on the local name for prefixed patterns, then case-insensitive
// exact.
var passes = []func(*Document, string) *Element{
	matchExact,
	matchSuffix,
	matchFold,
}

func matchExact(doc *Document, pattern string) *Element {
	for i, e := range doc.elems {
		if e.Name == pattern {
			return &doc.elems[i]
		}
	}
	return nil
}

func matchSuffix(doc *Document, pattern string) *Element {
	i := strings.LastIndex(pattern, ":")
	if i < 0 {
		return nil
	}
	local := pattern[i+1:]
	for j, e := range doc.elems {
		if strings.HasSuffix(e.Name, local) {
			return &doc.elems[j]
		}
	}
	return nil
}

func matchFold(doc *Document, pattern string) *Element {
	for i, e := range doc.elems {
		if strings.EqualFold(e.Name, pattern) {
			return &doc.elems[i]
		}
	}
	return nil
}

// coerce normalizes element text: everything but digits, decimal point and
// minus sign is stripped, and if the remainder parses as a number the
// normalized string is kept. Otherwise the trimmed original text passes
// through verbatim.
func coerce(text string) Value {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return Value{Kind: Missing}
	}

	var b strings.Builder
	for _, r := range trimmed {
		if (r >= '0' && r <= '9') || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}
	numeric := b.String()
	if numeric != "" {
		if _, err := strconv.ParseFloat(numeric, 64); err == nil {
			return Value{Kind: Numeric, Raw: numeric}
		}
	}
	return Value{Kind: Text, Raw: trimmed}
}

// Tag-name markers for period context metadata, checked case-insensitively.
var periodMarkers = []struct {
	field   func(*PeriodInfo) *string
	markers []string
}{
	{func(p *PeriodInfo) *string { return &p.PeriodStart }, []string{"periodstart", "startdate"}},
	{func(p *PeriodInfo) *string { return &p.PeriodEnd }, []string{"periodend", "enddate"}},
	{func(p *PeriodInfo) *string { return &p.Instant }, []string{"instant"}},
}

// extractPeriod scans independently per marker category. Markers are
// tried in priority order: each one is exhausted over the whole document
// before the next is consulted, so a preferred marker late in the
// document beats a fallback marker early in it. Absence leaves the field
// unset.
func extractPeriod(doc *Document) PeriodInfo {
	var p PeriodInfo
	for _, cat := range periodMarkers {
		dst := cat.field(&p)
		for _, m := range cat.markers {
			for _, e := range doc.elems {
				if strings.Contains(strings.ToLower(e.Name), m) {
					*dst = strings.TrimSpace(e.Text)
					break
				}
			}
			if *dst != "" {
				break
			}
		}
	}
	return p
}
