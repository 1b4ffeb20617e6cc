package xbrl

import "math"

// Ratio is a found/total pair with a percentage accessor.
type Ratio struct {
	Found int
	Total int
}

// Rate returns the percentage rounded to one decimal place, 0.0 when the
// group is empty.
func (r Ratio) Rate() float64 {
	if r.Total == 0 {
		return 0
	}
	return math.Round(float64(r.Found)/float64(r.Total)*1000) / 10
}

// Report groups one Result's concept outcomes by importance tier and by
// category. Pure aggregation: same Result, same Report.
type Report struct {
	ByTier     map[Tier]Ratio
	ByCategory map[string]Ratio
}

func BuildReport(res Result) Report {
	rep := Report{
		ByTier:     make(map[Tier]Ratio),
		ByCategory: make(map[string]Ratio),
	}
	for _, key := range res.Order {
		cr := res.Concepts[key]

		tier := rep.ByTier[cr.Tier]
		tier.Total++
		cat := rep.ByCategory[cr.Category]
		cat.Total++

		if cr.Value.Found() {
			tier.Found++
			cat.Found++
		}
		rep.ByTier[cr.Tier] = tier
		rep.ByCategory[cr.Category] = cat
	}
	return rep
}
