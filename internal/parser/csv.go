package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/dgallion1/contentforge/internal/store"
)

// keywordColumns maps known export header names onto our fields. Ahrefs
// and Search Console exports disagree on capitalization and naming.
var (
	keywordHeaders    = []string{"keyword", "query"}
	volumeHeaders     = []string{"volume", "search volume"}
	difficultyHeaders = []string{"kd", "keyword difficulty", "difficulty"}
)

// ParseKeywordCSV reads an Ahrefs-style keyword export and maps its rows
// onto keyword records for the given brand and country. Rows without a
// keyword are skipped; a file that yields none is an error.
func ParseKeywordCSV(r io.Reader, brand, country string) ([]store.Keyword, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("no data rows in csv")
	}

	headers := records[0]
	keywordCol := findColumn(headers, keywordHeaders)
	if keywordCol < 0 {
		return nil, fmt.Errorf("no keyword column found (headers: %s)", strings.Join(headers, ", "))
	}
	volumeCol := findColumn(headers, volumeHeaders)
	difficultyCol := findColumn(headers, difficultyHeaders)

	if country == "" {
		country = "sk"
	}

	var keywords []store.Keyword
	for _, row := range records[1:] {
		kw := strings.TrimSpace(cell(row, keywordCol))
		if kw == "" {
			continue
		}
		keywords = append(keywords, store.Keyword{
			ID:         uuid.NewString(),
			Brand:      brand,
			Keyword:    kw,
			Volume:     cellInt(row, volumeCol),
			Difficulty: cellInt(row, difficultyCol),
			Source:     "ahrefs_import",
			Country:    country,
		})
	}

	if len(keywords) == 0 {
		return nil, fmt.Errorf("no valid keywords found in csv")
	}
	return keywords, nil
}

func findColumn(headers, names []string) int {
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(h))
		for _, name := range names {
			if h == name {
				return i
			}
		}
	}
	return -1
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return row[i]
}

func cellInt(row []string, i int) int {
	n, err := strconv.Atoi(strings.TrimSpace(cell(row, i)))
	if err != nil {
		return 0
	}
	return n
}
