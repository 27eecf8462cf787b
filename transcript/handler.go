// Package transcript resolves video identifiers and turns the results of
// transcript lookups into the JSON envelopes reported to callers.
package transcript

import (
	"context"
	"io"
	"log/slog"
	"strings"

	"github.com/inlieuoffun/ytscript/youtube"
)

// A Source enumerates and fetches the caption tracks of a video.
// *youtube.Client satisfies this interface.
type Source interface {
	List(ctx context.Context, videoID string) (*youtube.TranscriptList, error)
	Fetch(ctx context.Context, t *youtube.Transcript, opts youtube.FetchOptions) ([]youtube.Snippet, error)
}

// A Handler answers extract and list requests against a Source. Each request
// makes a single attempt; nothing is retried.
type Handler struct {
	src Source
	log *slog.Logger
}

// NewHandler constructs a Handler that reads from src. If log == nil,
// nothing is logged.
func NewHandler(src Source, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{src: src, log: log}
}

// ExtractOptions control the behavior of Extract.
type ExtractOptions struct {
	// Languages are the preferred language codes, most preferred first.
	// They are normalized with NormalizeLanguages.
	Languages []string

	// PreserveFormatting keeps inline formatting tags in segment text.
	PreserveFormatting bool

	// If TranslateTo is set, the chosen track is machine translated into
	// this language.
	TranslateTo string
}

// Extract fetches one caption track of the video with the given ID. The
// track is the first one matching the preferred languages, or failing that
// the first track available. Preference is advisory: a video without any
// preferred language still yields a transcript.
//
// The result is either an *ExtractResult or a *Failure.
func (h *Handler) Extract(ctx context.Context, videoID string, opts ExtractOptions) Response {
	list, err := h.src.List(ctx, videoID)
	if err != nil {
		h.log.Info("listing transcripts failed", "video", videoID, "error", err)
		return classifyExtractFailure(err)
	}

	langs := NormalizeLanguages(opts.Languages)
	track, err := list.Find(langs)
	if err != nil {
		if len(list.Transcripts) == 0 {
			return newFailure(msgNoTranscripts, "")
		}
		track = list.Transcripts[0]
		h.log.Info("no preferred language available, using first track",
			"video", videoID, "preferred", langs, "language", track.LanguageCode)
	}

	if opts.TranslateTo != "" {
		track, err = track.Translate(opts.TranslateTo)
		if err != nil {
			return classifyExtractFailure(err)
		}
	}

	snips, err := h.src.Fetch(ctx, track, youtube.FetchOptions{
		PreserveFormatting: opts.PreserveFormatting,
	})
	if err != nil {
		h.log.Info("fetching transcript failed", "video", videoID, "language", track.LanguageCode, "error", err)
		return classifyExtractFailure(err)
	}

	segs := make([]Segment, len(snips))
	for i, s := range snips {
		segs[i] = Segment{
			Text:     strings.TrimSpace(s.Text),
			Start:    s.Start,
			Duration: s.Duration,
		}
	}
	h.log.Info("extracted transcript", "video", videoID, "language", track.LanguageCode,
		"generated", track.IsGenerated, "segments", len(segs))
	return &ExtractResult{
		Success:       true,
		VideoID:       videoID,
		Language:      track.Language,
		LanguageCode:  track.LanguageCode,
		IsGenerated:   track.IsGenerated,
		Segments:      segs,
		TotalSegments: len(segs),
	}
}

// List reports the caption tracks available for the video with the given ID,
// in the order the source lists them.
//
// Unlike Extract, List does not classify failures: any error is reported
// as-is in the details of a generic failure.
//
// The result is either a *ListResult or a *Failure.
func (h *Handler) List(ctx context.Context, videoID string) Response {
	list, err := h.src.List(ctx, videoID)
	if err != nil {
		h.log.Info("listing transcripts failed", "video", videoID, "error", err)
		return newFailure(msgListFailed, err.Error())
	}
	md := make([]Metadata, len(list.Transcripts))
	for i, t := range list.Transcripts {
		md[i] = Metadata{
			Language:       t.Language,
			LanguageCode:   t.LanguageCode,
			IsGenerated:    t.IsGenerated,
			IsTranslatable: t.IsTranslatable(),
		}
	}
	return &ListResult{
		Success:              true,
		VideoID:              videoID,
		AvailableTranscripts: md,
	}
}
