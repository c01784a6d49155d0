// Package clld parses CLDF-style CSV wordlists from CLLD datasets (CLICS,
// WOLD, ASJP and friends) into raw lexical entries.
package clld

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/glossarch/stratigraphy/internal/domain"
)

// Column names recognized in the header, case-insensitive. CLDF exports vary;
// the first matching alias wins.
var columnAliases = map[string][]string{
	"form":     {"form", "value", "word"},
	"language": {"language_name", "language", "doculect"},
	"code":     {"language_id", "glottocode", "iso639p3code", "language_code"},
	"gloss":    {"parameter_name", "concept", "gloss", "meaning"},
	"source":   {"source", "reference"},
	"date":     {"date", "year", "time_period"},
}

// Stats summarizes one parse run.
type Stats struct {
	TotalRows    int
	SkippedRows  int
	EntriesAdded int
}

// ParseFile reads a CLDF CSV wordlist from disk. See Parse.
func ParseFile(path, dataset string) ([]domain.RawLexicalEntry, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open wordlist: %w", err)
	}
	defer f.Close()

	return Parse(f, dataset)
}

// Parse reads a CLDF CSV wordlist. The first row must be a header carrying at
// least a form and a language column. Rows missing either value are counted
// and skipped. The dataset name becomes the provenance source
// ("clld_<dataset>").
func Parse(r io.Reader, dataset string) ([]domain.RawLexicalEntry, Stats, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, Stats{}, fmt.Errorf("read header: %w", err)
	}

	cols, err := resolveColumns(header)
	if err != nil {
		return nil, Stats{}, err
	}

	sourceName := "clld_" + strings.ToLower(strings.TrimSpace(dataset))

	var (
		entries []domain.RawLexicalEntry
		stats   Stats
	)

	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			stats.SkippedRows++
			continue
		}
		stats.TotalRows++

		form := field(row, cols["form"])
		language := field(row, cols["language"])
		if form == "" || language == "" {
			stats.SkippedRows++
			continue
		}

		entry := domain.RawLexicalEntry{
			SourceName:   sourceName,
			SourceID:     fmt.Sprintf("%s-%s-%d", sourceName, form, stats.TotalRows),
			Form:         form,
			Language:     language,
			LanguageCode: domain.DeriveLanguageCode(field(row, cols["code"]), language),
		}

		if gloss := field(row, cols["gloss"]); gloss != "" {
			entry.Definitions = []string{gloss}
		}
		if src := field(row, cols["source"]); src != "" {
			entry.Attestations = []domain.RawAttestation{{Source: src}}
		}
		if rawDate := field(row, cols["date"]); rawDate != "" {
			if year, ok := domain.ParseYear(rawDate); ok {
				entry.DateAttested = &year
			}
		}

		entries = append(entries, entry)
		stats.EntriesAdded++
	}

	return entries, stats, nil
}

// resolveColumns maps logical column names to header indexes. Missing
// optional columns resolve to -1.
func resolveColumns(header []string) (map[string]int, error) {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = strings.ToLower(strings.TrimSpace(h))
	}

	cols := make(map[string]int, len(columnAliases))
	for logical, aliases := range columnAliases {
		cols[logical] = -1
		for _, alias := range aliases {
			for i, h := range normalized {
				if h == alias {
					cols[logical] = i
					break
				}
			}
			if cols[logical] >= 0 {
				break
			}
		}
	}

	if cols["form"] < 0 {
		return nil, fmt.Errorf("header %v: %w: no form column", header, domain.ErrValidation)
	}
	if cols["language"] < 0 {
		return nil, fmt.Errorf("header %v: %w: no language column", header, domain.ErrValidation)
	}

	return cols, nil
}

func field(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
