package sources

import (
	"testing"
	"time"
)

func TestValidateCELEX(t *testing.T) {
	tests := []struct {
		celex string
		valid bool
	}{
		{"32016R0679", true},
		{"32019L0790", true},
		{"52020DC0067", false},
		{"3201R0679", false},
		{"32016r0679", false},
		{"32016R0679x", false},
		{"", false},
	}
	for _, tt := range tests {
		if err := ValidateCELEX(tt.celex); (err == nil) != tt.valid {
			t.Errorf("ValidateCELEX(%q) error = %v, want valid=%v", tt.celex, err, tt.valid)
		}
	}
}

func TestCELEXDocumentType(t *testing.T) {
	tests := map[string]string{
		"32016R0679": DocRegulation,
		"32019L0790": DocDirective,
		"32022D2481": DocDecision,
		"52021C0001": DocCommunication,
		"32016X0679": DocOther,
		"3201":       DocOther,
	}
	for celex, want := range tests {
		if got := CELEXDocumentType(celex); got != want {
			t.Errorf("CELEXDocumentType(%q) = %q, want %q", celex, got, want)
		}
	}
}

func TestFindCELEX(t *testing.T) {
	if got := FindCELEX("https://eur-lex.europa.eu/legal-content/EN/TXT/?uri=CELEX:32024R1689"); got != "32024R1689" {
		t.Errorf("FindCELEX() = %q", got)
	}
	if got := FindCELEX("no number here"); got != "" {
		t.Errorf("FindCELEX() = %q, want empty", got)
	}
}

func TestCELEXURLs(t *testing.T) {
	urls := CELEXURLs("32016R0679")
	want := map[string]string{
		"html_url": "https://eur-lex.europa.eu/legal-content/EN/TXT/?uri=CELEX:32016R0679",
		"pdf_url":  "https://eur-lex.europa.eu/legal-content/EN/TXT/PDF/?uri=CELEX:32016R0679",
		"xml_url":  "https://eur-lex.europa.eu/legal-content/EN/TXT/XML/?uri=CELEX:32016R0679",
	}
	for k, v := range want {
		if urls[k] != v {
			t.Errorf("%s = %q, want %q", k, urls[k], v)
		}
	}
}

func TestFirstOfMonth(t *testing.T) {
	got := firstOfMonth(time.Date(2026, 2, 28, 23, 59, 0, 0, time.UTC))
	if want := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("firstOfMonth() = %v, want %v", got, want)
	}
}

func TestValidateProcedureReference(t *testing.T) {
	tests := []struct {
		ref   string
		valid bool
	}{
		{"2021/0106(COD)", true},
		{"2020/0374(COD)", true},
		{"2023/2019(INI)", true},
		{"2021/106(COD)", false},
		{"2021/0106", false},
		{"2021-0106(COD)", false},
		{"", false},
	}
	for _, tt := range tests {
		if err := ValidateProcedureReference(tt.ref); (err == nil) != tt.valid {
			t.Errorf("ValidateProcedureReference(%q) error = %v, want valid=%v", tt.ref, err, tt.valid)
		}
	}
}
