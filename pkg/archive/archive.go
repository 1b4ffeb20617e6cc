// Package archive retrieves filing bundles, unpacks them into per-filing
// working directories and locates the XBRL documents inside.
package archive

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/edinex/edinex/internal/utils"
	"github.com/edinex/edinex/pkg/edinet"
)

// ArchiveError is returned when a downloaded payload is not a valid
// archive, or an archive contains nothing extractable.
type ArchiveError struct {
	DocID  string
	Reason string
	Err    error
}

func (e *ArchiveError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("archive %s: %s: %v", e.DocID, e.Reason, e.Err)
	}
	return fmt.Sprintf("archive %s: %s", e.DocID, e.Reason)
}

func (e *ArchiveError) Unwrap() error { return e.Err }

// Downloader is the slice of the EDINET client the unpacker needs.
type Downloader interface {
	DownloadArchive(ctx context.Context, docID string, format int) ([]byte, error)
}

// FetchAndExtract downloads a filing's ZIP bundle and extracts it into a
// fresh directory under workDir, named after the filing. The returned
// directory is caller-owned: remove it once processing completes, success
// or failure.
func FetchAndExtract(ctx context.Context, dl Downloader, docID, workDir string) (string, error) {
	data, err := dl.DownloadArchive(ctx, docID, edinet.FormatArchive)
	if err != nil {
		return "", err
	}

	dest := filepath.Join(workDir, docID)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", err
	}

	if err := extractZip(data, dest, docID); err != nil {
		os.RemoveAll(dest)
		return "", err
	}
	utils.Log.Infof("%s: extracted to %s", docID, dest)
	return dest, nil
}

// UnpackLocal extracts an on-disk ZIP bundle into a fresh directory under
// workDir named after the archive, for bundles obtained out of band.
func UnpackLocal(zipPath, workDir string) (string, error) {
	data, err := os.ReadFile(zipPath)
	if err != nil {
		return "", err
	}
	name := strings.TrimSuffix(filepath.Base(zipPath), filepath.Ext(zipPath))

	dest := filepath.Join(workDir, name)
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", err
	}
	if err := extractZip(data, dest, name); err != nil {
		os.RemoveAll(dest)
		return "", err
	}
	return dest, nil
}

func extractZip(data []byte, dest, docID string) error {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return &ArchiveError{DocID: docID, Reason: "payload is not a valid zip archive", Err: err}
	}

	for _, f := range zr.File {
		target := filepath.Join(dest, filepath.Clean(f.Name))
		if !strings.HasPrefix(target, filepath.Clean(dest)+string(os.PathSeparator)) {
			return &ArchiveError{DocID: docID, Reason: "entry escapes extraction directory: " + f.Name}
		}
		if f.FileInfo().IsDir() {
			if err := os.MkdirAll(target, 0o755); err != nil {
				return err
			}
			continue
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return err
		}
		if err := writeEntry(f, target); err != nil {
			return &ArchiveError{DocID: docID, Reason: "extracting " + f.Name, Err: err}
		}
	}
	return nil
}

func writeEntry(f *zip.File, target string) error {
	rc, err := f.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	out, err := os.Create(target)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, rc)
	return err
}

// Class labels the role of an XBRL file inside the bundle, derived from
// filename substrings.
type Class int

const (
	ClassOther Class = iota
	ClassPrimaryInstance
	ClassReportRelated
	ClassBasicInfoTaxonomy
	ClassIndustryTaxonomy
	ClassFinancialTaxonomy
	ClassGenericInstance
	ClassTaxonomy
)

var classNames = map[Class]string{
	ClassOther:             "その他XBRL文書",
	ClassPrimaryInstance:   "有価証券報告書インスタンス文書",
	ClassReportRelated:     "有価証券報告書関連",
	ClassBasicInfoTaxonomy: "基本情報タクソノミ",
	ClassIndustryTaxonomy:  "業種別タクソノミ",
	ClassFinancialTaxonomy: "財務諸表タクソノミ",
	ClassGenericInstance:   "インスタンス文書",
	ClassTaxonomy:          "タクソノミファイル",
}

func (c Class) String() string { return classNames[c] }

// IsInstance reports whether files of this class carry actual reported
// values, as opposed to taxonomy definitions.
func (c Class) IsInstance() bool {
	return c == ClassPrimaryInstance || c == ClassGenericInstance || c == ClassReportRelated
}

// File is one located XBRL document.
type File struct {
	Path  string
	Name  string
	Size  int64
	Class Class
}

// ClassifyFilename maps a filename onto its Class via substring heuristics.
func ClassifyFilename(name string) Class {
	lower := strings.ToLower(name)
	switch {
	case strings.Contains(lower, "jpcrp") && strings.Contains(lower, "instance"):
		return ClassPrimaryInstance
	case strings.Contains(lower, "jpcrp"):
		return ClassReportRelated
	case strings.Contains(lower, "jpdei"):
		return ClassBasicInfoTaxonomy
	case strings.Contains(lower, "jpigp"):
		return ClassIndustryTaxonomy
	case strings.Contains(lower, "jppfs"):
		return ClassFinancialTaxonomy
	case strings.Contains(lower, "instance"):
		return ClassGenericInstance
	case strings.Contains(lower, "taxonomy") || strings.Contains(lower, "tax"):
		return ClassTaxonomy
	}
	return ClassOther
}

// LocateStructuredDocuments walks the extraction directory for .xbrl files
// and returns them with instance documents first, preserving discovery
// order within each group. An empty result is valid and means there is
// nothing to extract.
func LocateStructuredDocuments(root string) ([]File, error) {
	var instances, others []File

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".xbrl") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		f := File{
			Path:  path,
			Name:  d.Name(),
			Size:  info.Size(),
			Class: ClassifyFilename(d.Name()),
		}
		if f.Class.IsInstance() {
			instances = append(instances, f)
		} else {
			others = append(others, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	files := append(instances, others...)
	utils.Log.Infof("found %d xbrl files under %s", len(files), root)
	for i, f := range files {
		utils.Log.Debugf("  %d. %s (%s, %d bytes)", i+1, f.Name, f.Class, f.Size)
	}
	return files, nil
}
