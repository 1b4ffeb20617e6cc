package edinet

import "testing"

func target(form, status string) Filing {
	return Filing{
		OrdinanceCode: OrdinanceCorporateDisclosure,
		FormCode:      form,
		EditStatus:    status,
	}
}

func TestIsTargetSecuritiesFiling(t *testing.T) {
	if !IsTargetSecuritiesFiling(target("030000", EditStatusNormal)) {
		t.Fatalf("annual report should match")
	}
	if !IsTargetSecuritiesFiling(target("044000", EditStatusAmended)) {
		t.Fatalf("legacy quarterly report should still match for historical data")
	}
	if !IsTargetSecuritiesFiling(target("050000", EditStatusNormal)) {
		t.Fatalf("semiannual report should match")
	}
}

func TestIsTargetSecuritiesFiling_RejectsWithdrawn(t *testing.T) {
	for _, form := range []string{"030000", "043000", "044000", "045000", "050000"} {
		if IsTargetSecuritiesFiling(target(form, EditStatusDeleted)) {
			t.Fatalf("deleted filing with form %s must never match", form)
		}
	}
}

func TestIsTargetSecuritiesFiling_RejectsOtherOrdinances(t *testing.T) {
	f := target("030000", EditStatusNormal)
	f.OrdinanceCode = "020"
	if IsTargetSecuritiesFiling(f) {
		t.Fatalf("specified-securities ordinance should not match")
	}
}

func TestFilterSecuritiesReports(t *testing.T) {
	in := []Filing{
		target("030000", EditStatusNormal),
		target("030000", EditStatusDeleted),
		target("050000", EditStatusNormal),
	}
	got := FilterSecuritiesReports(in)
	if len(got) != 2 {
		t.Fatalf("expected 2 filings after filtering, got %d", len(got))
	}
}

func TestClassify_AmendmentBeforeBaseType(t *testing.T) {
	f := Filing{DocDescription: "訂正有価証券報告書－第45期"}
	if got := Classify(f); got != DocTypeAmendedAnnual {
		t.Fatalf("expected amended annual, got %v", got)
	}
}

func TestClassify_QuarterlyBeforeSemiannual(t *testing.T) {
	// "四半期報告書" contains "半期報告書" as a substring; the quarterly
	// check has to win.
	f := Filing{DocDescription: "四半期報告書－第2四半期"}
	if got := Classify(f); got != DocTypeQuarterly {
		t.Fatalf("expected quarterly, got %v", got)
	}
}

func TestClassify_FormCodeFallback(t *testing.T) {
	cases := []struct {
		form string
		want DocumentType
	}{
		{"030000", DocTypeAnnual},
		{"050000", DocTypeSemiannual},
		{"080000", DocTypeParentCompany},
		{"130000", DocTypeAmendedAnnual},
	}
	for _, c := range cases {
		f := Filing{FormCode: c.form}
		if got := Classify(f); got != c.want {
			t.Fatalf("form %s: expected %v, got %v", c.form, c.want, got)
		}
	}
}

func TestClassify_UnknownIsOther(t *testing.T) {
	f := Filing{DocDescription: "something unexpected", FormCode: "999999"}
	if got := Classify(f); got != DocTypeOther {
		t.Fatalf("expected other, got %v", got)
	}
}
