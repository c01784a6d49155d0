package wiktionary

// kaikkiEntry mirrors the subset of a Kaikki JSONL line we consume.
type kaikkiEntry struct {
	Word          string        `json:"word"`
	Lang          string        `json:"lang"`
	LangCode      string        `json:"lang_code"`
	POS           string        `json:"pos"`
	EtymologyText string        `json:"etymology_text"`
	Senses        []kaikkiSense `json:"senses"`
	Sounds        []kaikkiSound `json:"sounds"`
}

type kaikkiSense struct {
	Glosses []string `json:"glosses"`
}

type kaikkiSound struct {
	IPA string `json:"ipa"`
}

// Stats summarizes one parse run, for pipeline logging.
type Stats struct {
	TotalLines     int
	MalformedLines int
	SkippedLang    int
	EntriesParsed  int
}

// languageCodes maps Wiktionary language names to ISO 639-3 codes for lines
// that carry no lang_code of their own.
var languageCodes = map[string]string{
	"English":             "eng",
	"French":              "fra",
	"German":              "deu",
	"Spanish":             "spa",
	"Italian":             "ita",
	"Portuguese":          "por",
	"Dutch":               "nld",
	"Russian":             "rus",
	"Polish":              "pol",
	"Latin":               "lat",
	"Ancient Greek":       "grc",
	"Greek":               "ell",
	"Old English":         "ang",
	"Middle English":      "enm",
	"Old French":          "fro",
	"Old Norse":           "non",
	"Proto-Germanic":      "gem-pro",
	"Proto-Indo-European": "ine-pro",
	"Sanskrit":            "san",
	"Arabic":              "ara",
	"Hebrew":              "heb",
	"Japanese":            "jpn",
	"Chinese":             "zho",
	"Korean":              "kor",
}
