package youtube

import (
	"net/url"

	"bitbucket.org/creachadair/stringset"
)

// A TranscriptList is the set of caption tracks offered for one video.
type TranscriptList struct {
	VideoID string

	// Transcripts holds manually created tracks first, then generated ones,
	// each group in the order YouTube reports them.
	Transcripts []*Transcript
}

// Codes returns the set of language codes offered by l.
func (l *TranscriptList) Codes() stringset.Set {
	codes := stringset.NewSize(len(l.Transcripts))
	for _, t := range l.Transcripts {
		codes.Add(t.LanguageCode)
	}
	return codes
}

// Find returns the first track matching one of the given language codes, in
// order of preference. For each code a manually created track is preferred to
// a generated one. Codes must match exactly.
func (l *TranscriptList) Find(languages []string) (*Transcript, error) {
	return l.find(languages, func(*Transcript) bool { return true })
}

// FindManual is like Find, but only considers manually created tracks.
func (l *TranscriptList) FindManual(languages []string) (*Transcript, error) {
	return l.find(languages, func(t *Transcript) bool { return !t.IsGenerated })
}

// FindGenerated is like Find, but only considers generated tracks.
func (l *TranscriptList) FindGenerated(languages []string) (*Transcript, error) {
	return l.find(languages, func(t *Transcript) bool { return t.IsGenerated })
}

func (l *TranscriptList) find(languages []string, keep func(*Transcript) bool) (*Transcript, error) {
	for _, lang := range languages {
		// Manual tracks precede generated ones, so the first hit is the
		// preferred one.
		for _, t := range l.Transcripts {
			if t.LanguageCode == lang && keep(t) {
				return t, nil
			}
		}
	}
	return nil, &NoTranscriptFoundError{
		VideoID:   l.VideoID,
		Requested: languages,
		Available: l.Codes().Elements(),
	}
}

// A Transcript describes one caption track of a video.
type Transcript struct {
	VideoID      string
	Language     string // display name, e.g. "English (auto-generated)"
	LanguageCode string // e.g. "en"
	IsGenerated  bool

	// TranslationLanguages lists the languages this track can be machine
	// translated into. It is empty if the track is not translatable.
	TranslationLanguages []TranslationLanguage

	url string
}

// IsTranslatable reports whether t can be machine translated.
func (t *Transcript) IsTranslatable() bool { return len(t.TranslationLanguages) != 0 }

// Translate returns a track that serves t machine translated into the
// language with the given code.
func (t *Transcript) Translate(code string) (*Transcript, error) {
	if !t.IsTranslatable() {
		return nil, &NotTranslatableError{VideoID: t.VideoID, LanguageCode: t.LanguageCode}
	}
	for _, tl := range t.TranslationLanguages {
		if tl.LanguageCode != code {
			continue
		}
		return &Transcript{
			VideoID:      t.VideoID,
			Language:     tl.Language,
			LanguageCode: tl.LanguageCode,
			IsGenerated:  true,
			url:          t.url + "&tlang=" + url.QueryEscape(code),
		}, nil
	}
	return nil, &TranslationUnavailableError{VideoID: t.VideoID, LanguageCode: code}
}

// A TranslationLanguage is a language a track can be translated into.
type TranslationLanguage struct {
	Language     string
	LanguageCode string
}
