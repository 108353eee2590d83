package parser

import (
	"strings"
	"testing"
)

func TestParseKeywordCSV_Ahrefs(t *testing.T) {
	input := "Keyword,Volume,KD,CPC\nweighted blanket,5400,23,1.20\nblanket for anxiety,880,12,0.80\n"
	keywords, err := ParseKeywordCSV(strings.NewReader(input), "hevisleep", "dk")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keywords) != 2 {
		t.Fatalf("expected 2 keywords, got %d", len(keywords))
	}

	k := keywords[0]
	if k.Keyword != "weighted blanket" {
		t.Errorf("expected keyword %q, got %q", "weighted blanket", k.Keyword)
	}
	if k.Volume != 5400 {
		t.Errorf("expected volume 5400, got %d", k.Volume)
	}
	if k.Difficulty != 23 {
		t.Errorf("expected difficulty 23, got %d", k.Difficulty)
	}
	if k.Brand != "hevisleep" || k.Country != "dk" {
		t.Errorf("brand/country not mapped: %q %q", k.Brand, k.Country)
	}
	if k.Source != "ahrefs_import" {
		t.Errorf("expected source ahrefs_import, got %q", k.Source)
	}
	if k.ID == "" {
		t.Error("expected generated id")
	}
}

func TestParseKeywordCSV_HeaderVariants(t *testing.T) {
	input := "query,Search Volume,Keyword Difficulty\nbuy pillows online,320,45\n"
	keywords, err := ParseKeywordCSV(strings.NewReader(input), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keywords) != 1 {
		t.Fatalf("expected 1 keyword, got %d", len(keywords))
	}
	if keywords[0].Keyword != "buy pillows online" || keywords[0].Volume != 320 || keywords[0].Difficulty != 45 {
		t.Errorf("variant headers not mapped: %+v", keywords[0])
	}
	if keywords[0].Country != "sk" {
		t.Errorf("expected default country sk, got %q", keywords[0].Country)
	}
}

func TestParseKeywordCSV_SkipsEmptyRows(t *testing.T) {
	input := "Keyword,Volume\nreal keyword,100\n,200\n   ,300\n"
	keywords, err := ParseKeywordCSV(strings.NewReader(input), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(keywords) != 1 {
		t.Fatalf("expected 1 keyword, got %d", len(keywords))
	}
}

func TestParseKeywordCSV_NoKeywordColumn(t *testing.T) {
	input := "Phrase,Volume\nsomething,100\n"
	if _, err := ParseKeywordCSV(strings.NewReader(input), "", ""); err == nil {
		t.Fatal("expected error for missing keyword column")
	}
}

func TestParseKeywordCSV_Empty(t *testing.T) {
	if _, err := ParseKeywordCSV(strings.NewReader(""), "", ""); err == nil {
		t.Fatal("expected error for empty file")
	}
	if _, err := ParseKeywordCSV(strings.NewReader("Keyword,Volume\n"), "", ""); err == nil {
		t.Fatal("expected error for header-only file")
	}
}

func TestParseKeywordCSV_BadNumbers(t *testing.T) {
	input := "Keyword,Volume,KD\nkw,notanumber,-\n"
	keywords, err := ParseKeywordCSV(strings.NewReader(input), "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if keywords[0].Volume != 0 || keywords[0].Difficulty != 0 {
		t.Errorf("expected zero values for unparseable numbers, got %+v", keywords[0])
	}
}
