package transcript

// A Response is the JSON envelope reported for a command. Every concrete
// response carries a "success" field; failures never carry transcript
// content, and successes never carry "error" or "details".
type Response interface {
	OK() bool
}

// An ExtractResult reports the content of one caption track.
type ExtractResult struct {
	Success       bool      `json:"success"`
	VideoID       string    `json:"video_id"`
	Language      string    `json:"language"`
	LanguageCode  string    `json:"language_code"`
	IsGenerated   bool      `json:"is_generated"`
	Segments      []Segment `json:"segments"`
	TotalSegments int       `json:"total_segments"`
}

func (*ExtractResult) OK() bool { return true }

// A Segment is one timed caption entry.
type Segment struct {
	Text     string  `json:"text"`
	Start    float64 `json:"start"`    // seconds
	Duration float64 `json:"duration"` // seconds
}

// A ListResult reports the caption tracks available for a video.
type ListResult struct {
	Success              bool       `json:"success"`
	VideoID              string     `json:"video_id"`
	AvailableTranscripts []Metadata `json:"available_transcripts"`
}

func (*ListResult) OK() bool { return true }

// Metadata describes one caption track, independent of its content.
type Metadata struct {
	Language       string `json:"language"`
	LanguageCode   string `json:"language_code"`
	IsGenerated    bool   `json:"is_generated"`
	IsTranslatable bool   `json:"is_translatable"`
}

// A Failure reports that a command could not be completed.
type Failure struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func (*Failure) OK() bool { return false }

func newFailure(msg, details string) *Failure {
	return &Failure{Error: msg, Details: details}
}
