// Package wiktionary parses Kaikki-style Wiktionary JSONL dumps into raw
// lexical entries.
package wiktionary

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/glossarch/stratigraphy/internal/domain"
)

const (
	// maxLineSize is the buffer size for bufio.Scanner (16 MB). Kaikki lines
	// for polysemous words can run to several megabytes.
	maxLineSize = 16 << 20

	// maxDefinitions caps glosses carried per entry.
	maxDefinitions = 10
)

// SourceName identifies this adapter in LSR provenance lists.
const SourceName = "wiktionary"

// Options filters a parse run.
type Options struct {
	// Languages restricts parsing to these language names. Empty means all.
	Languages []string

	// MaxEntries stops parsing after this many entries. Zero means unlimited.
	MaxEntries int
}

// ParseFile streams a JSONL dump from disk. See Parse.
func ParseFile(path string, opts Options) ([]domain.RawLexicalEntry, Stats, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Stats{}, fmt.Errorf("open dump: %w", err)
	}
	defer f.Close()

	return Parse(f, opts)
}

// Parse streams Kaikki JSONL from r, one entry per line. Malformed lines are
// counted and skipped, never fatal. Lines for the same word in different
// languages yield separate entries.
func Parse(r io.Reader, opts Options) ([]domain.RawLexicalEntry, Stats, error) {
	wanted := make(map[string]bool, len(opts.Languages))
	for _, lang := range opts.Languages {
		wanted[lang] = true
	}

	var (
		entries []domain.RawLexicalEntry
		stats   Stats
	)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, maxLineSize), maxLineSize)

	for scanner.Scan() {
		stats.TotalLines++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		var raw kaikkiEntry
		if err := json.Unmarshal(line, &raw); err != nil {
			stats.MalformedLines++
			continue
		}
		if raw.Word == "" || raw.Lang == "" {
			stats.MalformedLines++
			continue
		}

		if len(wanted) > 0 && !wanted[raw.Lang] {
			stats.SkippedLang++
			continue
		}

		entries = append(entries, buildEntry(&raw))
		stats.EntriesParsed++

		if opts.MaxEntries > 0 && stats.EntriesParsed >= opts.MaxEntries {
			break
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, stats, fmt.Errorf("scan dump: %w", err)
	}

	return entries, stats, nil
}

func buildEntry(raw *kaikkiEntry) domain.RawLexicalEntry {
	code := raw.LangCode
	if code == "" {
		code = languageCodes[raw.Lang]
	}
	code = domain.DeriveLanguageCode(code, raw.Lang)

	entry := domain.RawLexicalEntry{
		SourceName:   SourceName,
		SourceID:     fmt.Sprintf("wikt-%s-%s", raw.Word, code),
		Form:         raw.Word,
		FormPhonetic: firstPhonemicIPA(raw.Sounds),
		Language:     raw.Lang,
		LanguageCode: code,
		Etymology:    strings.TrimSpace(raw.EtymologyText),
		Definitions:  collectGlosses(raw.Senses),
		DateAttested: extractAttestationYear(raw.EtymologyText),
		RawData: map[string]any{
			"source_url": "https://en.wiktionary.org/wiki/" + raw.Word,
		},
	}
	if raw.POS != "" {
		entry.PartOfSpeech = []string{strings.ToLower(raw.POS)}
	}

	return entry
}

// firstPhonemicIPA returns the first phonemic transcription, slashes trimmed.
// Phonetic variants in [brackets] are skipped.
func firstPhonemicIPA(sounds []kaikkiSound) string {
	for _, s := range sounds {
		if strings.HasPrefix(s.IPA, "/") {
			return strings.Trim(s.IPA, "/")
		}
	}
	return ""
}

func collectGlosses(senses []kaikkiSense) []string {
	var defs []string
	for _, sense := range senses {
		for _, g := range sense.Glosses {
			g = strings.TrimSpace(g)
			if len(g) <= 2 {
				continue
			}
			defs = append(defs, g)
			if len(defs) >= maxDefinitions {
				return defs
			}
		}
	}
	return defs
}

var (
	centuryRe = regexp.MustCompile(`(?i)(\d{1,2})(?:st|nd|rd|th)\s+century`)
	yearRe    = regexp.MustCompile(`(?:c\.\s*)?(\d{4})`)
)

// extractAttestationYear guesses the earliest attestation year from etymology
// prose. A century reference maps to the century's first year; otherwise the
// smallest plausible four-digit year wins.
func extractAttestationYear(etymology string) *int {
	if etymology == "" {
		return nil
	}

	if m := centuryRe.FindStringSubmatch(etymology); m != nil {
		century, err := strconv.Atoi(m[1])
		if err == nil && century >= 1 && century <= 21 {
			year := (century-1)*100 + 1
			return &year
		}
	}

	best := 0
	for _, m := range yearRe.FindAllStringSubmatch(etymology, -1) {
		year, err := strconv.Atoi(m[1])
		if err != nil || year < 800 || year > 2100 {
			continue
		}
		if best == 0 || year < best {
			best = year
		}
	}
	if best == 0 {
		return nil
	}
	return &best
}
