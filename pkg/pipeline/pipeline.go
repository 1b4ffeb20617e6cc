// Package pipeline chains discovery, archive retrieval, extraction and
// artifact output into one per-filing processing step, with an index of
// completed work so reruns skip what is already done.
package pipeline

import (
	"context"
	"os"
	"time"

	"github.com/edinex/edinex/internal/utils"
	"github.com/edinex/edinex/pkg/archive"
	"github.com/edinex/edinex/pkg/discovery"
	"github.com/edinex/edinex/pkg/edinet"
	"github.com/edinex/edinex/pkg/output"
	"github.com/edinex/edinex/pkg/refdata"
	"github.com/edinex/edinex/pkg/storage"
	"github.com/edinex/edinex/pkg/xbrl"
)

// Processor runs the retrieval→extraction→output chain for one filing at
// a time. Companies and Index may be nil: the pipeline then runs without
// directory enrichment or dedup.
type Processor struct {
	Client    archive.Downloader
	Catalog   []xbrl.Concept
	Companies *refdata.Directory
	Index     *storage.DB
	Writer    *output.Writer
	WorkDir   string
}

// Outcome reports what one ProcessFiling call did.
type Outcome struct {
	Skipped bool // already in the index, nothing was done
	Paths   output.Paths
	Summary xbrl.Summary
	Report  xbrl.Report
}

// ProcessFiling downloads, unpacks and extracts one filing, writes its
// artifacts and records it in the index. The working directory is removed
// whether processing succeeds or fails.
func (p *Processor) ProcessFiling(ctx context.Context, f edinet.Filing) (Outcome, error) {
	if p.Index != nil {
		done, err := p.Index.IsProcessed(ctx, f.DocID)
		if err != nil {
			return Outcome{}, err
		}
		if done {
			utils.Log.Infof("%s: already processed, skipping", f.DocID)
			return Outcome{Skipped: true}, nil
		}
	}

	dir, err := archive.FetchAndExtract(ctx, p.Client, f.DocID, p.WorkDir)
	if err != nil {
		return Outcome{}, err
	}
	defer os.RemoveAll(dir)

	res, err := p.extractFrom(dir, f.DocID)
	if err != nil {
		return Outcome{}, err
	}

	rec := p.buildRecord(f, res)
	paths, err := p.Writer.Write(rec)
	if err != nil {
		return Outcome{}, err
	}

	if p.Index != nil {
		err := p.Index.MarkProcessed(ctx, storage.ProcessedFiling{
			DocID:       f.DocID,
			EdinetCode:  f.EdinetCode,
			SecCode:     f.SecCode,
			FilerName:   f.FilerName,
			DocType:     rec.DocType.String(),
			SubmittedAt: f.SubmitDateTime,
			PeriodStart: f.PeriodStart,
			PeriodEnd:   f.PeriodEnd,
			FoundItems:  res.Summary.Found,
			TotalItems:  res.Summary.Total,
			SuccessRate: res.Summary.SuccessRate,
			JSONPath:    paths.JSON,
			CSVPath:     paths.CSV,
		})
		if err != nil {
			return Outcome{}, err
		}
	}
	return Outcome{Paths: paths, Summary: res.Summary, Report: xbrl.BuildReport(res)}, nil
}

// ProcessLocal extracts from an already-unpacked bundle directory and
// writes artifacts for it. Used when the archive was obtained out of band.
func (p *Processor) ProcessLocal(dir string, f edinet.Filing) (Outcome, error) {
	res, err := p.extractFrom(dir, f.DocID)
	if err != nil {
		return Outcome{}, err
	}
	paths, err := p.Writer.Write(p.buildRecord(f, res))
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{Paths: paths, Summary: res.Summary, Report: xbrl.BuildReport(res)}, nil
}

// extractFrom locates the bundle's instance document and runs the concept
// catalog against it. The first located file wins: instance documents sort
// ahead of taxonomy files.
func (p *Processor) extractFrom(dir, docID string) (xbrl.Result, error) {
	files, err := archive.LocateStructuredDocuments(dir)
	if err != nil {
		return xbrl.Result{}, err
	}
	if len(files) == 0 {
		return xbrl.Result{}, &archive.ArchiveError{DocID: docID, Reason: "bundle contains no structured documents"}
	}
	target := files[0]

	doc, err := xbrl.Load(target.Path)
	if err != nil {
		return xbrl.Result{}, err
	}
	res := xbrl.Extract(doc, p.Catalog)
	res.Source.Filename = target.Name
	res.Source.Class = target.Class.String()
	res.Source.Size = target.Size
	return res, nil
}

func (p *Processor) buildRecord(f edinet.Filing, res xbrl.Result) output.Record {
	rec := output.Record{
		Filing:  f,
		DocType: edinet.Classify(f),
		Result:  res,
	}
	if p.Companies != nil {
		if c, ok := p.Companies.Company(f.EdinetCode); ok {
			rec.Company = c
		}
	}
	return rec
}

// BulkStats tallies one bulk run.
type BulkStats struct {
	discovery.ScanStats
	Processed int
	Skipped   int
}

// RunBulk scans every date in [from, to] and processes each securities
// report it finds. Individual failures are logged and counted without
// stopping the run; only context cancellation aborts it.
func (p *Processor) RunBulk(ctx context.Context, engine *discovery.Engine, from, to time.Time) (BulkStats, error) {
	var stats BulkStats
	scan, err := engine.FindEverythingInRange(ctx, from, to, func(m discovery.Match) error {
		out, err := p.ProcessFiling(ctx, m.Filing)
		if err != nil {
			return err
		}
		if out.Skipped {
			stats.Skipped++
		} else {
			stats.Processed++
		}
		return nil
	})
	stats.ScanStats = scan
	utils.Log.Infof("bulk run complete: %d days, %d matches, %d processed, %d skipped, %d errors",
		stats.Days, stats.Matches, stats.Processed, stats.Skipped, stats.Errors)
	return stats, err
}
