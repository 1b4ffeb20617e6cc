package edinet

import "github.com/tidwall/gjson"

// List API "type" parameter values.
const (
	ListMetadataOnly  = 1
	ListWithDocuments = 2
)

// Document download format kinds for the documents/{docID} endpoint.
const (
	FormatArchive = 1 // ZIP bundle with the XBRL instance and taxonomies
	FormatPDF     = 2
	FormatCSV     = 5
)

// docInfoEditStatus values reported by the API.
const (
	EditStatusNormal  = "0"
	EditStatusAmended = "1"
	EditStatusDeleted = "2"
)

// Filing is one disclosed document's metadata record as returned by the
// documents.json list endpoint. Immutable once retrieved; DocID is the
// globally unique key used for dedup throughout.
type Filing struct {
	SeqNumber        int
	DocID            string
	EdinetCode       string
	SecCode          string
	JCN              string
	FilerName        string
	FundCode         string
	OrdinanceCode    string
	FormCode         string
	DocTypeCode      string
	DocDescription   string
	SubmitDateTime   string
	PeriodStart      string
	PeriodEnd        string
	EditStatus       string
	WithdrawalStatus string
	ParentDocID      string

	// Attachment flags ("1" means the format is available).
	XbrlFlag       bool
	PdfFlag        bool
	CsvFlag        bool
	AttachDocFlag  bool
	EnglishDocFlag bool
}

func filingFromJSON(v gjson.Result) Filing {
	return Filing{
		SeqNumber:        int(v.Get("seqNumber").Int()),
		DocID:            v.Get("docID").String(),
		EdinetCode:       v.Get("edinetCode").String(),
		SecCode:          v.Get("secCode").String(),
		JCN:              v.Get("JCN").String(),
		FilerName:        v.Get("filerName").String(),
		FundCode:         v.Get("fundCode").String(),
		OrdinanceCode:    v.Get("ordinanceCode").String(),
		FormCode:         v.Get("formCode").String(),
		DocTypeCode:      v.Get("docTypeCode").String(),
		DocDescription:   v.Get("docDescription").String(),
		SubmitDateTime:   v.Get("submitDateTime").String(),
		PeriodStart:      v.Get("periodStart").String(),
		PeriodEnd:        v.Get("periodEnd").String(),
		EditStatus:       v.Get("docInfoEditStatus").String(),
		WithdrawalStatus: v.Get("withdrawalStatus").String(),
		ParentDocID:      v.Get("parentDocID").String(),
		XbrlFlag:         v.Get("xbrlFlag").String() == "1",
		PdfFlag:          v.Get("pdfFlag").String() == "1",
		CsvFlag:          v.Get("csvFlag").String() == "1",
		AttachDocFlag:    v.Get("attachDocFlag").String() == "1",
		EnglishDocFlag:   v.Get("englishDocFlag").String() == "1",
	}
}

// SubmitDate returns the YYYY-MM-DD part of SubmitDateTime, or "" if absent.
func (f Filing) SubmitDate() string {
	if len(f.SubmitDateTime) >= 10 {
		return f.SubmitDateTime[:10]
	}
	return ""
}
