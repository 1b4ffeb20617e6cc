// Package discovery drives date-by-date querying of the EDINET list
// endpoint to locate securities reports for one company or for everyone.
package discovery

import (
	"context"
	"time"

	"github.com/edinex/edinex/internal/utils"
	"github.com/edinex/edinex/pkg/edinet"
)

// Lister is the slice of the EDINET client the engine needs. Tests swap in
// a fake.
type Lister interface {
	ListFilings(ctx context.Context, day time.Time, docType int) ([]edinet.Filing, error)
}

// Match is one discovered filing tagged with the date it was found under.
type Match struct {
	Filing    edinet.Filing
	FoundDate time.Time
}

// ScanStats summarizes a bulk scan: how many dates were visited, how many
// filings matched, and how many per-date or per-filing failures were
// counted (and skipped) along the way.
type ScanStats struct {
	Days    int
	Matches int
	Errors  int
}

// Engine locates filings via a Lister plus the classification rules.
type Engine struct {
	Client  Lister
	DocType int // list API type parameter, usually edinet.ListWithDocuments

	// MaxDates caps how many candidate dates FindLatest visits. Zero means
	// the whole derived window.
	MaxDates int
}

func NewEngine(client Lister) *Engine {
	return &Engine{Client: client, DocType: edinet.ListWithDocuments}
}

// FindLatest scans the company's estimated statutory filing window,
// newest date first, and stops at the first matching securities report.
// Because candidate dates are ordered newest-first, the first hit is the
// most recent filing; that ordering is what makes early stop correct.
// Per-date failures are logged and skipped. Returns nil if the window is
// exhausted without a match.
func (e *Engine) FindLatest(ctx context.Context, edinetCode, fiscalYearEnd string) (*Match, error) {
	dates := FilingWindow(fiscalYearEnd, time.Now().UTC())
	if e.MaxDates > 0 && len(dates) > e.MaxDates {
		dates = dates[:e.MaxDates]
	}
	utils.Log.Infof("%s: searching %d candidate dates", edinetCode, len(dates))

	for _, day := range dates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		utils.Log.Debugf("searching %s", day.Format("2006-01-02"))

		filings, err := e.Client.ListFilings(ctx, day, e.DocType)
		if err != nil {
			utils.Log.Warnf("%s: query failed, skipping date: %v", day.Format("2006-01-02"), err)
			continue
		}
		for _, f := range edinet.FilterSecuritiesReports(filings) {
			if f.EdinetCode != edinetCode {
				continue
			}
			utils.Log.Infof("found %s (%s, submitted %s)", f.DocID, f.DocDescription, f.SubmitDateTime)
			return &Match{Filing: f, FoundDate: day}, nil
		}
	}
	return nil, nil
}

// FindAllInRange scans every date in [from, to] inclusive and accumulates
// every matching filing for the company. No early stop; per-date failures
// are logged, counted and skipped.
func (e *Engine) FindAllInRange(ctx context.Context, edinetCode string, from, to time.Time) ([]Match, ScanStats, error) {
	var (
		matches []Match
		stats   ScanStats
	)
	err := e.scanRange(ctx, from, to, &stats, func(day time.Time, f edinet.Filing) error {
		if f.EdinetCode != edinetCode {
			return nil
		}
		utils.Log.Infof("found %s: %s (submitted %s)", edinet.Classify(f), f.DocDescription, f.SubmitDateTime)
		matches = append(matches, Match{Filing: f, FoundDate: day})
		stats.Matches++
		return nil
	})
	return matches, stats, err
}

// FindEverythingInRange scans every date in [from, to] with no company
// filter and invokes visit for each matching filing. A visit error is
// counted and the scan continues; only context cancellation aborts it.
func (e *Engine) FindEverythingInRange(ctx context.Context, from, to time.Time, visit func(Match) error) (ScanStats, error) {
	var stats ScanStats
	err := e.scanRange(ctx, from, to, &stats, func(day time.Time, f edinet.Filing) error {
		stats.Matches++
		if err := visit(Match{Filing: f, FoundDate: day}); err != nil {
			utils.Log.Errorf("%s: processing failed: %v", f.DocID, err)
			stats.Errors++
		}
		return nil
	})
	return stats, err
}

// scanRange walks the inclusive date range a day at a time, checking for
// cancellation at every date boundary. Per-date query failures are counted
// and skipped so one bad day never aborts a multi-day scan.
func (e *Engine) scanRange(ctx context.Context, from, to time.Time, stats *ScanStats, each func(time.Time, edinet.Filing) error) error {
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Days++
		utils.Log.Debugf("searching %s", day.Format("2006-01-02"))

		filings, err := e.Client.ListFilings(ctx, day, e.DocType)
		if err != nil {
			utils.Log.Warnf("%s: query failed, skipping date: %v", day.Format("2006-01-02"), err)
			stats.Errors++
			continue
		}
		for _, f := range edinet.FilterSecuritiesReports(filings) {
			if err := each(day, f); err != nil {
				return err
			}
		}
	}
	return nil
}
