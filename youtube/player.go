package youtube

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// The player endpoint only returns caption tracks usable without a
// proof-of-origin token when it believes the caller is an app client.
const (
	playerClientName    = "ANDROID"
	playerClientVersion = "20.10.38"
)

// Reasons reported in the playability status that get their own errors.
const (
	reasonUnavailable   = "This video is unavailable"
	reasonBotCheck      = "Sign in to confirm you’re not a bot"
	reasonAgeRestricted = "This video may be inappropriate for some users."
)

// List returns the caption tracks available for the specified video ID.
// Manually created tracks are listed before generated ones.
func (c *Client) List(ctx context.Context, id string) (*TranscriptList, error) {
	page, err := c.watchPage(ctx, id)
	if err != nil {
		return nil, err
	}
	key, err := innertubeAPIKey(id, page)
	if err != nil {
		return nil, err
	}
	data, err := c.loadPlayerData(ctx, id, key)
	if err != nil {
		return nil, err
	}
	if err := data.Status.check(id); err != nil {
		return nil, err
	}
	if data.Captions == nil || data.Captions.Renderer == nil {
		return nil, &TranscriptsDisabledError{VideoID: id}
	}
	list := newTranscriptList(id, data.Captions.Renderer)
	c.log.Debug("listed caption tracks", "video", id, "tracks", len(list.Transcripts))
	return list, nil
}

func (c *Client) loadPlayerData(ctx context.Context, id, key string) (*playerResponse, error) {
	body, err := json.Marshal(playerRequest{
		Context: playerContext{Client: playerClient{
			Name:    playerClientName,
			Version: playerClientVersion,
		}},
		VideoID: id,
	})
	if err != nil {
		return nil, err
	}
	req, err := c.newRequest(ctx, "POST", c.baseURL+"/youtubei/v1/player?key="+url.QueryEscape(key), body)
	if err != nil {
		return nil, err
	}
	bits, err := c.loadRequest(req)
	if err != nil {
		return nil, fmt.Errorf("loading player data: %w", err)
	}
	var data playerResponse
	if err := json.Unmarshal(bits, &data); err != nil {
		return nil, fmt.Errorf("decoding player data: %w", err)
	}
	return &data, nil
}

type playerRequest struct {
	Context playerContext `json:"context"`
	VideoID string        `json:"videoId"`
}

type playerContext struct {
	Client playerClient `json:"client"`
}

type playerClient struct {
	Name    string `json:"clientName"`
	Version string `json:"clientVersion"`
}

type playerResponse struct {
	Status   playabilityStatus `json:"playabilityStatus"`
	Captions *struct {
		Renderer *captionRenderer `json:"playerCaptionsTracklistRenderer"`
	} `json:"captions"`
}

type playabilityStatus struct {
	Status      string `json:"status"`
	Reason      string `json:"reason"`
	ErrorScreen struct {
		Renderer struct {
			SubReason textRuns `json:"subreason"`
		} `json:"playerErrorMessageRenderer"`
	} `json:"errorScreen"`
}

// check reports an error if the status says the video cannot be played.
func (p playabilityStatus) check(id string) error {
	if p.Status == "OK" {
		return nil
	}
	switch {
	case p.Status == "LOGIN_REQUIRED" && p.Reason == reasonBotCheck:
		return &RequestBlockedError{VideoID: id, Reason: p.Reason}
	case p.Status == "LOGIN_REQUIRED" && p.Reason == reasonAgeRestricted:
		return &AgeRestrictedError{VideoID: id}
	case p.Status == "ERROR" && p.Reason == reasonUnavailable:
		return &VideoUnavailableError{VideoID: id}
	}
	var subs []string
	for _, run := range p.ErrorScreen.Renderer.SubReason.Runs {
		if run.Text != "" {
			subs = append(subs, run.Text)
		}
	}
	return &VideoUnplayableError{VideoID: id, Reason: p.Reason, SubReasons: subs}
}

type captionRenderer struct {
	Tracks       []*captionInfo `json:"captionTracks"`
	Translations []*struct {
		Code string   `json:"languageCode"`
		Name textRuns `json:"languageName"`
	} `json:"translationLanguages"`
}

type captionInfo struct {
	URL          string   `json:"baseUrl"`
	Lang         string   `json:"languageCode"`
	Kind         string   `json:"kind"`
	Name         textRuns `json:"name"`
	Translatable bool     `json:"isTranslatable"`

	// other fields ignored
}

// textRuns is the encoding YouTube uses for display strings, either a single
// simpleText or a sequence of runs.
type textRuns struct {
	SimpleText string `json:"simpleText"`
	Runs       []struct {
		Text string `json:"text"`
	} `json:"runs"`
}

func (t textRuns) String() string {
	if t.SimpleText != "" {
		return t.SimpleText
	}
	var buf strings.Builder
	for _, run := range t.Runs {
		buf.WriteString(run.Text)
	}
	return buf.String()
}

func newTranscriptList(id string, r *captionRenderer) *TranscriptList {
	var tls []TranslationLanguage
	for _, tr := range r.Translations {
		tls = append(tls, TranslationLanguage{
			Language:     displayName(tr.Name.String(), tr.Code),
			LanguageCode: tr.Code,
		})
	}

	var manual, generated []*Transcript
	for _, info := range r.Tracks {
		t := &Transcript{
			VideoID:      id,
			Language:     displayName(info.Name.String(), info.Lang),
			LanguageCode: info.Lang,
			IsGenerated:  info.Kind == "asr",
			url:          strings.Replace(info.URL, "&fmt=srv3", "", 1),
		}
		if info.Translatable {
			t.TranslationLanguages = tls
		}
		if t.IsGenerated {
			generated = append(generated, t)
		} else {
			manual = append(manual, t)
		}
	}
	return &TranscriptList{
		VideoID:     id,
		Transcripts: append(manual, generated...),
	}
}

// displayName returns name if it is set, otherwise the English name of the
// language identified by code.
func displayName(name, code string) string {
	if name != "" {
		return name
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if s := display.English.Languages().Name(tag); s != "" {
		return s
	}
	return code
}
