package transcript

import "strings"

// User-facing messages.
const (
	msgNoTranscripts    = "No transcripts available for this video"
	msgVideoUnavailable = "Video is unavailable"
	msgDisabled         = "Transcripts are disabled for this video"
	msgExtractFailed    = "Failed to extract transcript"
	msgListFailed       = "Failed to list transcripts"
)

// A failureClass maps failures whose text contains match onto a fixed
// message and explanation.
type failureClass struct {
	match   string
	message string
	details string
}

// extractFailures is checked in order; the first match wins.
var extractFailures = []failureClass{
	{
		match:   "No transcripts were found",
		message: msgNoTranscripts,
		details: "This video may not have captions enabled or may be private/restricted",
	},
	{
		match:   "Video unavailable",
		message: msgVideoUnavailable,
		details: "The video may be private, deleted, or restricted in your region",
	},
	{
		match:   "Transcript disabled",
		message: msgDisabled,
		details: "The video owner has disabled transcript access",
	},
}

// classifyExtractFailure converts an error from the transcript source into
// the failure reported by Extract. Errors that match no known class are
// reported verbatim in the details.
func classifyExtractFailure(err error) *Failure {
	text := err.Error()
	for _, fc := range extractFailures {
		if strings.Contains(text, fc.match) {
			return newFailure(fc.message, fc.details)
		}
	}
	return newFailure(msgExtractFailed, text)
}
