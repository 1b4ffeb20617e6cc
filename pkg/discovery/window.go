package discovery

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

const (
	// Statutory securities reports are due within three months of fiscal
	// year-end; in practice they cluster 60-90 days after it.
	filingWindowStartDays = 60
	filingWindowEndDays   = 90

	defaultWindowDays = 60
)

// FilingWindow derives the candidate search dates for a company from its
// fiscal year-end, written as "3月31日" in the EDINET company directory.
// It covers the 60-90 day statutory window after the current and prior
// fiscal year-end, drops future dates, and orders newest-first so that the
// first hit during a scan is also the most recent filing. An empty or
// unparseable fiscal year-end falls back to DefaultWindow.
func FilingWindow(fiscalYearEnd string, today time.Time) []time.Time {
	month, day, ok := parseFiscalYearEnd(fiscalYearEnd)
	if !ok {
		return DefaultWindow(today)
	}

	var dates []time.Time
	for _, year := range []int{today.Year(), today.Year() - 1} {
		fiscal := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		// Normalization moves impossible dates (e.g. Feb 30) into the next
		// month; reject those rather than search a bogus window.
		if int(fiscal.Month()) != month {
			continue
		}
		start := fiscal.AddDate(0, 0, filingWindowStartDays)
		end := fiscal.AddDate(0, 0, filingWindowEndDays)
		for d := start; !d.After(end) && !d.After(today); d = d.AddDate(0, 0, 1) {
			dates = append(dates, d)
		}
	}

	if len(dates) == 0 {
		return DefaultWindow(today)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })
	return dates
}

// DefaultWindow is the trailing 60 days up to today, newest first.
func DefaultWindow(today time.Time) []time.Time {
	dates := make([]time.Time, 0, defaultWindowDays)
	for i := 0; i < defaultWindowDays; i++ {
		dates = append(dates, today.AddDate(0, 0, -i))
	}
	return dates
}

// parseFiscalYearEnd reads the "M月D日" form used by the company directory.
func parseFiscalYearEnd(s string) (month, day int, ok bool) {
	s = strings.TrimSpace(s)
	mi := strings.Index(s, "月")
	di := strings.Index(s, "日")
	if mi < 0 || di < mi {
		return 0, 0, false
	}
	month, err := strconv.Atoi(strings.TrimSpace(s[:mi]))
	if err != nil || month < 1 || month > 12 {
		return 0, 0, false
	}
	day, err = strconv.Atoi(strings.TrimSpace(s[mi+len("月") : di]))
	if err != nil || day < 1 || day > 31 {
		return 0, 0, false
	}
	return month, day, true
}
