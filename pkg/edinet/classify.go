package edinet

import "strings"

// OrdinanceCorporateDisclosure is the ordinance code for corporate content
// disclosure filings (企業内容等の開示).
const OrdinanceCorporateDisclosure = "010"

// Form codes of the filings we collect. The three quarterly forms were
// retired in April 2024 but still appear in historical data.
var securitiesReportForms = map[string]struct{}{
	"030000": {}, // annual securities report
	"043000": {}, // Q1 quarterly report (legacy)
	"044000": {}, // Q2 quarterly report (legacy)
	"045000": {}, // Q3 quarterly report (legacy)
	"050000": {}, // semiannual report
}

// IsTargetSecuritiesFiling reports whether a filing is one of the securities
// reports this tool extracts from. Withdrawn/deleted filings never match,
// whatever their form code.
func IsTargetSecuritiesFiling(f Filing) bool {
	if f.OrdinanceCode != OrdinanceCorporateDisclosure {
		return false
	}
	if _, ok := securitiesReportForms[f.FormCode]; !ok {
		return false
	}
	return f.EditStatus != EditStatusDeleted
}

// FilterSecuritiesReports returns the subset of filings matching
// IsTargetSecuritiesFiling, preserving order.
func FilterSecuritiesReports(filings []Filing) []Filing {
	var out []Filing
	for _, f := range filings {
		if IsTargetSecuritiesFiling(f) {
			out = append(out, f)
		}
	}
	return out
}

// DocumentType is the human-facing category of a filing.
type DocumentType int

const (
	DocTypeOther DocumentType = iota
	DocTypeAnnual
	DocTypeQuarterly
	DocTypeSemiannual
	DocTypeExtraordinary
	DocTypeRegistration
	DocTypeProspectus
	DocTypeChangeReport
	DocTypeParentCompany
	DocTypeShareBuyback
	DocTypeAmendedRegistration
	DocTypeAmendedAnnual
	DocTypeAmendedQuarterly
	DocTypeAmendedSemiannual
	DocTypeAmendment
)

var docTypeNames = map[DocumentType]string{
	DocTypeOther:               "その他書類",
	DocTypeAnnual:              "有価証券報告書",
	DocTypeQuarterly:           "四半期報告書",
	DocTypeSemiannual:          "半期報告書",
	DocTypeExtraordinary:       "臨時報告書",
	DocTypeRegistration:        "有価証券届出書",
	DocTypeProspectus:          "目論見書",
	DocTypeChangeReport:        "変更報告書",
	DocTypeParentCompany:       "親会社等状況報告書",
	DocTypeShareBuyback:        "自己株券買付状況報告書",
	DocTypeAmendedRegistration: "訂正届出書",
	DocTypeAmendedAnnual:       "有価証券報告書（訂正）",
	DocTypeAmendedQuarterly:    "四半期報告書（訂正）",
	DocTypeAmendedSemiannual:   "半期報告書（訂正）",
	DocTypeAmendment:           "訂正報告書",
}

func (d DocumentType) String() string {
	if s, ok := docTypeNames[d]; ok {
		return s
	}
	return docTypeNames[DocTypeOther]
}

// formCodeTypes is the fallback when the description text is absent or
// unrecognized.
var formCodeTypes = map[string]DocumentType{
	"010000": DocTypeRegistration,
	"020000": DocTypeProspectus,
	"030000": DocTypeAnnual,
	"040000": DocTypeQuarterly,
	"043000": DocTypeQuarterly,
	"044000": DocTypeQuarterly,
	"045000": DocTypeQuarterly,
	"050000": DocTypeSemiannual,
	"060000": DocTypeExtraordinary,
	"070000": DocTypeExtraordinary,
	"080000": DocTypeParentCompany,
	"090000": DocTypeShareBuyback,
	"100000": DocTypeChangeReport,
	"110000": DocTypeAmendedRegistration,
	"120000": DocTypeAnnual,
	"130000": DocTypeAmendedAnnual,
}

// Classify resolves a filing's document type. Amendment markers are checked
// before base types because an amendment description also contains the base
// type substring. Unrecognized filings map to DocTypeOther, never an error.
func Classify(f Filing) DocumentType {
	desc := f.DocDescription

	if strings.Contains(desc, "訂正") {
		switch {
		case strings.Contains(desc, "有価証券報告書"):
			return DocTypeAmendedAnnual
		case strings.Contains(desc, "四半期報告書"):
			return DocTypeAmendedQuarterly
		case strings.Contains(desc, "半期報告書"):
			return DocTypeAmendedSemiannual
		default:
			return DocTypeAmendment
		}
	}

	switch {
	case strings.Contains(desc, "有価証券報告書") || f.FormCode == "030000":
		return DocTypeAnnual
	case strings.Contains(desc, "四半期報告書") || f.FormCode == "043000" || f.FormCode == "044000" || f.FormCode == "045000":
		return DocTypeQuarterly
	case strings.Contains(desc, "半期報告書") || f.FormCode == "050000":
		return DocTypeSemiannual
	case strings.Contains(desc, "臨時報告書") || f.FormCode == "070000":
		return DocTypeExtraordinary
	case strings.Contains(desc, "有価証券届出書"):
		return DocTypeRegistration
	case strings.Contains(desc, "変更報告書"):
		return DocTypeChangeReport
	}

	if t, ok := formCodeTypes[f.FormCode]; ok {
		return t
	}
	return DocTypeOther
}
