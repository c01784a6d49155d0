package ingest

// Config controls one pipeline run.
type Config struct {
	// WiktionaryPath is the Kaikki JSONL dump. Empty skips the phase.
	WiktionaryPath string

	// CLLDPath is a CLDF CSV wordlist. Empty skips the phase.
	CLLDPath string

	// CLLDDataset names the CLLD dataset for provenance ("clics", "wold", ...).
	CLLDDataset string

	// Languages restricts Wiktionary parsing to these language names.
	Languages []string

	// BatchSize is the number of entries resolved and written per transaction.
	BatchSize int

	// MaxEntries caps entries parsed per source. Zero means unlimited.
	MaxEntries int

	// DryRun resolves everything but writes nothing.
	DryRun bool
}
