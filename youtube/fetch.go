package youtube

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"html"
	"regexp"
	"strings"

	"bitbucket.org/creachadair/stringset"
)

// FetchOptions control how the timed text of a track is decoded.
type FetchOptions struct {
	// If set, inline formatting tags such as <i> and <b> are kept in the
	// text. Otherwise all markup is removed.
	PreserveFormatting bool
}

// A Snippet is one timed entry of a caption track.
type Snippet struct {
	Text     string
	Start    float64 // seconds
	Duration float64 // seconds
}

// formattingTags are the tags kept when formatting is preserved.
var formattingTags = stringset.New(
	"strong", "em", "b", "i", "mark", "small", "del", "ins", "sub", "sup",
)

var htmlTag = regexp.MustCompile(`</?([a-zA-Z][a-zA-Z0-9]*)\b[^>]*>`)

// Fetch loads and decodes the timed text of t. Entries without text are
// omitted; the rest are returned in track order.
func (c *Client) Fetch(ctx context.Context, t *Transcript, opts FetchOptions) ([]Snippet, error) {
	if strings.Contains(t.url, "&exp=xpe") {
		return nil, &RequestBlockedError{
			VideoID: t.VideoID,
			Reason:  "caption track requires a proof-of-origin token",
		}
	}
	req, err := c.newRequest(ctx, "GET", t.url, nil)
	if err != nil {
		return nil, err
	}
	bits, err := c.loadRequest(req)
	if err != nil {
		return nil, fmt.Errorf("loading captions: %w", err)
	}

	var doc caption
	dec := xml.NewDecoder(bytes.NewReader(bits))
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decoding XML: %w", err)
	}

	snips := make([]Snippet, 0, len(doc.Texts))
	for _, ct := range doc.Texts {
		if ct.Text == "" {
			continue
		}
		snips = append(snips, Snippet{
			Text:     cleanText(ct.Text, opts.PreserveFormatting),
			Start:    ct.Start,
			Duration: ct.Duration,
		})
	}
	c.log.Debug("fetched captions", "video", t.VideoID, "language", t.LanguageCode, "snippets", len(snips))
	return snips, nil
}

type caption struct {
	XMLName xml.Name      `xml:"transcript"`
	Texts   []captionText `xml:"text"`
}

// <text start="3285.28" dur="4.88">surprised you with how they comport</text>
type captionText struct {
	Start    float64 `xml:"start,attr"`
	Duration float64 `xml:"dur,attr"`
	Text     string  `xml:",chardata"`
}

// cleanText decodes the HTML entities remaining in s and strips markup. If
// keepFormatting is true, the tags in formattingTags survive.
func cleanText(s string, keepFormatting bool) string {
	s = html.UnescapeString(s)
	return htmlTag.ReplaceAllStringFunc(s, func(tag string) string {
		if keepFormatting {
			name := htmlTag.FindStringSubmatch(tag)[1]
			if formattingTags.Contains(strings.ToLower(name)) {
				return tag
			}
		}
		return ""
	})
}
