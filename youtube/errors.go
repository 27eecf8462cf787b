package youtube

import (
	"fmt"
	"strings"
)

// Callers that only see error text rely on the leading phrases of these
// messages ("Video unavailable", "Transcript disabled", "No transcripts were
// found"), so they should not be reworded.

// VideoUnavailableError reports that the video does not exist or was removed.
type VideoUnavailableError struct {
	VideoID string
}

func (e *VideoUnavailableError) Error() string {
	return fmt.Sprintf("Video unavailable: no playable video with ID %q", e.VideoID)
}

// TranscriptsDisabledError reports that the video exists but has no caption
// tracks at all.
type TranscriptsDisabledError struct {
	VideoID string
}

func (e *TranscriptsDisabledError) Error() string {
	return fmt.Sprintf("Transcript disabled: subtitles are turned off for video %q", e.VideoID)
}

// NoTranscriptFoundError reports that none of the requested languages is
// offered for the video.
type NoTranscriptFoundError struct {
	VideoID   string
	Requested []string
	Available []string
}

func (e *NoTranscriptFoundError) Error() string {
	return fmt.Sprintf("No transcripts were found for video %q in languages %s (available: %s)",
		e.VideoID, strings.Join(e.Requested, ", "), strings.Join(e.Available, ", "))
}

// VideoUnplayableError reports a playability failure other than the video
// being missing, for example a members-only or region-blocked video.
type VideoUnplayableError struct {
	VideoID    string
	Reason     string
	SubReasons []string
}

func (e *VideoUnplayableError) Error() string {
	var buf strings.Builder
	fmt.Fprintf(&buf, "Video unplayable (ID %q)", e.VideoID)
	if e.Reason != "" {
		fmt.Fprintf(&buf, ": %s", e.Reason)
	}
	for _, sub := range e.SubReasons {
		fmt.Fprintf(&buf, "; %s", sub)
	}
	return buf.String()
}

// AgeRestrictedError reports that the video requires a signed-in adult.
type AgeRestrictedError struct {
	VideoID string
}

func (e *AgeRestrictedError) Error() string {
	return fmt.Sprintf("video %q is age restricted and requires sign-in", e.VideoID)
}

// RequestBlockedError reports that YouTube refused to serve the request,
// typically because of rate limiting or a bot check.
type RequestBlockedError struct {
	VideoID string
	Reason  string
}

func (e *RequestBlockedError) Error() string {
	return fmt.Sprintf("Request blocked by YouTube for video %q: %s", e.VideoID, e.Reason)
}

// NotTranslatableError reports an attempt to translate a track that does not
// offer machine translation.
type NotTranslatableError struct {
	VideoID      string
	LanguageCode string
}

func (e *NotTranslatableError) Error() string {
	return fmt.Sprintf("transcript %q of video %q is not translatable", e.LanguageCode, e.VideoID)
}

// TranslationUnavailableError reports a translation target the track does not
// offer.
type TranslationUnavailableError struct {
	VideoID      string
	LanguageCode string
}

func (e *TranslationUnavailableError) Error() string {
	return fmt.Sprintf("translation language %q is not available for video %q", e.LanguageCode, e.VideoID)
}

// StatusError reports an HTTP response with a status other than 200 OK.
type StatusError struct {
	URL    string
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed: %s (%s)", e.Status, e.URL)
}
