// Package refdata loads the EDINET reference directories: the company
// list and the fund list distributed as date-stamped CSV files.
package refdata

import (
	"encoding/csv"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/edinex/edinex/internal/utils"
)

// Company is one row of the EDINET code directory.
type Company struct {
	EdinetCode    string
	Name          string
	SecCode       string
	FiscalYearEnd string // "3月31日" style
	Industry      string
}

// Fund is one row of the fund code directory.
type Fund struct {
	FundCode   string
	Name       string
	EdinetCode string
	FilerName  string
}

// Directory indexes companies by EDINET code and funds by fund code.
// An empty Directory answers every lookup with a miss.
type Directory struct {
	companies map[string]Company
	funds     map[string]Fund
}

// Load reads the newest list_edinetcode_*.csv and list_fundcode_*.csv in
// dir. Either file may be absent; a missing file leaves that side of the
// directory empty and logs a warning.
func Load(dir string) (*Directory, error) {
	d := &Directory{
		companies: make(map[string]Company),
		funds:     make(map[string]Fund),
	}

	if path, ok := utils.NewestMatch(dir, "list_edinetcode_*.csv"); ok {
		if err := d.loadCompanies(path); err != nil {
			return nil, err
		}
		utils.Log.Infof("company directory loaded: %s (%d companies)", filepath.Base(path), len(d.companies))
	} else {
		utils.Log.Warn("no company directory file (list_edinetcode_*.csv) found")
	}

	if path, ok := utils.NewestMatch(dir, "list_fundcode_*.csv"); ok {
		if err := d.loadFunds(path); err != nil {
			return nil, err
		}
		utils.Log.Infof("fund directory loaded: %s (%d funds)", filepath.Base(path), len(d.funds))
	} else {
		utils.Log.Warn("no fund directory file (list_fundcode_*.csv) found")
	}
	return d, nil
}

// Company looks up a company by EDINET code.
func (d *Directory) Company(edinetCode string) (Company, bool) {
	c, ok := d.companies[edinetCode]
	return c, ok
}

// Fund looks up a fund by fund code.
func (d *Directory) Fund(fundCode string) (Fund, bool) {
	f, ok := d.funds[fundCode]
	return f, ok
}

// Companies returns the number of companies in the directory.
func (d *Directory) Companies() int { return len(d.companies) }

func (d *Directory) loadCompanies(path string) error {
	return eachRecord(path, func(rec []string, col map[string]int) {
		code := field(rec, col, "EDINETコード")
		if code == "" {
			return
		}
		d.companies[code] = Company{
			EdinetCode:    code,
			Name:          field(rec, col, "提出者名"),
			SecCode:       field(rec, col, "証券コード"),
			FiscalYearEnd: field(rec, col, "決算日"),
			Industry:      field(rec, col, "提出者業種"),
		}
	})
}

func (d *Directory) loadFunds(path string) error {
	return eachRecord(path, func(rec []string, col map[string]int) {
		code := field(rec, col, "ファンドコード")
		if code == "" {
			return
		}
		d.funds[code] = Fund{
			FundCode:   code,
			Name:       field(rec, col, "ファンド名"),
			EdinetCode: field(rec, col, "EDINETコード"),
			FilerName:  field(rec, col, "提出者名"),
		}
	})
}

func eachRecord(path string, visit func(rec []string, col map[string]int)) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	cr := csv.NewReader(utils.StripBOM(f))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil
	}
	if err != nil {
		return err
	}
	col := make(map[string]int, len(header))
	for i, h := range header {
		col[strings.TrimSpace(h)] = i
	}

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		visit(rec, col)
	}
}

func field(rec []string, col map[string]int, name string) string {
	i, ok := col[name]
	if !ok || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}
