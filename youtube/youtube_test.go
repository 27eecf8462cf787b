package youtube_test

import (
	"context"
	"errors"
	"flag"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/inlieuoffun/ytscript/youtube"
)

var doManual = flag.Bool("manual", false, "Run manual tests")

const testVideoID = "abcDEF12345"

const watchPage = `<!DOCTYPE html><html><head><script>
var ytcfg = {"INNERTUBE_API_KEY": "test-key_1", "OTHER": 1};
</script></head><body>video</body></html>`

// fakeSite serves a minimal imitation of the endpoints the client uses.
type fakeSite struct {
	*httptest.Server

	watch    string // watch page body; defaults to watchPage
	player   string // player response; "%[1]s" is replaced by the server URL
	captions map[string]string
	consent  string // if set, require a CONSENT cookie with this value

	mu             sync.Mutex
	playerRequests int
	lastTimedText  string
}

func newFakeSite(t *testing.T, player string, opts ...func(*fakeSite)) *fakeSite {
	t.Helper()
	s := &fakeSite{
		watch:    watchPage,
		player:   player,
		captions: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.serve))
	t.Cleanup(s.Close)
	return s
}

func withWatchPage(page string) func(*fakeSite) {
	return func(s *fakeSite) { s.watch = page }
}

func withConsent(v string) func(*fakeSite) {
	return func(s *fakeSite) { s.consent = v }
}

func withCaptions(key, body string) func(*fakeSite) {
	return func(s *fakeSite) { s.captions[key] = body }
}

func (s *fakeSite) stats() (playerRequests int, lastTimedText string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerRequests, s.lastTimedText
}

func (s *fakeSite) serve(w http.ResponseWriter, r *http.Request) {
	switch r.URL.Path {
	case "/watch":
		if s.consent != "" {
			if c, err := r.Cookie("CONSENT"); err != nil || c.Value != s.consent {
				io.WriteString(w, `<html><body>
<form action="https://consent.youtube.com/s" method="POST">
<input type="hidden" name="gl" value="DE">
<input type="hidden" name="v" value="cb.20210328-17-p0.de+FX+119">
</form></body></html>`)
				return
			}
		}
		io.WriteString(w, s.watch)

	case "/youtubei/v1/player":
		s.mu.Lock()
		s.playerRequests++
		s.mu.Unlock()
		if r.Method != "POST" || r.URL.Query().Get("key") != "test-key_1" {
			http.Error(w, "bad player request", http.StatusBadRequest)
			return
		}
		io.WriteString(w, strings.ReplaceAll(s.player, "%[1]s", s.URL))

	case "/api/timedtext":
		s.mu.Lock()
		s.lastTimedText = r.URL.RawQuery
		s.mu.Unlock()
		body, ok := s.captions[r.URL.Query().Get("lang")+"/"+r.URL.Query().Get("tlang")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		io.WriteString(w, body)

	default:
		http.NotFound(w, r)
	}
}

func (s *fakeSite) client() *youtube.Client {
	return youtube.New(youtube.WithBaseURL(s.URL), youtube.WithTimeout(5*time.Second))
}

const okPlayer = `{
  "playabilityStatus": {"status": "OK"},
  "captions": {"playerCaptionsTracklistRenderer": {
    "captionTracks": [
      {"baseUrl": "%[1]s/api/timedtext?v=abc&lang=en&kind=asr&fmt=srv3", "languageCode": "en",
       "kind": "asr", "name": {"runs": [{"text": "English (auto-generated)"}]}, "isTranslatable": true},
      {"baseUrl": "%[1]s/api/timedtext?v=abc&lang=de", "languageCode": "de",
       "name": {"simpleText": "German"}, "isTranslatable": false},
      {"baseUrl": "%[1]s/api/timedtext?v=abc&lang=en", "languageCode": "en",
       "name": {"runs": [{"text": "English"}]}, "isTranslatable": true},
      {"baseUrl": "%[1]s/api/timedtext?v=abc&lang=pt", "languageCode": "pt", "isTranslatable": false}
    ],
    "translationLanguages": [
      {"languageCode": "fr", "languageName": {"runs": [{"text": "French"}]}},
      {"languageCode": "es", "languageName": {"simpleText": "Spanish"}}
    ]
  }}
}`

func TestList(t *testing.T) {
	site := newFakeSite(t, okPlayer)
	list, err := site.client().List(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if list.VideoID != testVideoID {
		t.Errorf("VideoID: got %q, want %q", list.VideoID, testVideoID)
	}

	type track struct {
		lang, code           string
		generated, translate bool
	}
	want := []track{
		{"German", "de", false, false},
		{"English", "en", false, true},
		{"Portuguese", "pt", false, false},
		{"English (auto-generated)", "en", true, true},
	}
	var got []track
	for _, tr := range list.Transcripts {
		got = append(got, track{tr.Language, tr.LanguageCode, tr.IsGenerated, tr.IsTranslatable()})
	}
	if len(got) != len(want) {
		t.Fatalf("List: got %d tracks %+v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Track %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
	if got, want := list.Codes().Elements(), []string{"de", "en", "pt"}; strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("Codes: got %q, want %q", got, want)
	}
}

func TestFind(t *testing.T) {
	site := newFakeSite(t, okPlayer)
	list, err := site.client().List(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}

	tests := []struct {
		find      func([]string) (*youtube.Transcript, error)
		langs     []string
		wantCode  string
		wantAuto  bool
		wantFound bool
	}{
		{list.Find, []string{"en"}, "en", false, true},
		{list.Find, []string{"fr", "de", "en"}, "de", false, true},
		{list.Find, []string{"EN"}, "", false, false},
		{list.Find, []string{"fr"}, "", false, false},
		{list.Find, nil, "", false, false},
		{list.FindGenerated, []string{"de", "en"}, "en", true, true},
		{list.FindManual, []string{"pt"}, "pt", false, true},
		{list.FindGenerated, []string{"de"}, "", false, false},
	}
	for _, test := range tests {
		got, err := test.find(test.langs)
		if !test.wantFound {
			var nf *youtube.NoTranscriptFoundError
			if !errors.As(err, &nf) {
				t.Errorf("Find(%q): got (%v, %v), want NoTranscriptFoundError", test.langs, got, err)
			} else if !strings.Contains(err.Error(), "No transcripts were found") {
				t.Errorf("Find(%q): unexpected message %q", test.langs, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("Find(%q): unexpected error: %v", test.langs, err)
			continue
		}
		if got.LanguageCode != test.wantCode || got.IsGenerated != test.wantAuto {
			t.Errorf("Find(%q): got %s (generated=%v), want %s (generated=%v)",
				test.langs, got.LanguageCode, got.IsGenerated, test.wantCode, test.wantAuto)
		}
	}
}

func TestListFailures(t *testing.T) {
	tests := []struct {
		name    string
		player  string
		check   func(error) bool
		message string
	}{
		{"unavailable",
			`{"playabilityStatus": {"status": "ERROR", "reason": "This video is unavailable"}}`,
			func(err error) bool { var e *youtube.VideoUnavailableError; return errors.As(err, &e) },
			"Video unavailable"},
		{"no captions",
			`{"playabilityStatus": {"status": "OK"}}`,
			func(err error) bool { var e *youtube.TranscriptsDisabledError; return errors.As(err, &e) },
			"Transcript disabled"},
		{"bot check",
			`{"playabilityStatus": {"status": "LOGIN_REQUIRED", "reason": "Sign in to confirm you’re not a bot"}}`,
			func(err error) bool { var e *youtube.RequestBlockedError; return errors.As(err, &e) },
			"Request blocked"},
		{"age restricted",
			`{"playabilityStatus": {"status": "LOGIN_REQUIRED", "reason": "This video may be inappropriate for some users."}}`,
			func(err error) bool { var e *youtube.AgeRestrictedError; return errors.As(err, &e) },
			"age restricted"},
		{"unplayable",
			`{"playabilityStatus": {"status": "UNPLAYABLE", "reason": "Members only",
			  "errorScreen": {"playerErrorMessageRenderer": {"subreason": {"runs": [{"text": "Join this channel"}]}}}}}`,
			func(err error) bool { var e *youtube.VideoUnplayableError; return errors.As(err, &e) },
			"Members only; Join this channel"},
		{"garbage",
			`{"playabilityStatus": `,
			func(err error) bool { return err != nil },
			"decoding player data"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			site := newFakeSite(t, test.player)
			list, err := site.client().List(context.Background(), testVideoID)
			if err == nil {
				t.Fatalf("List: got %+v, want error", list)
			}
			if !test.check(err) {
				t.Errorf("List: wrong error type %T: %v", err, err)
			}
			if !strings.Contains(err.Error(), test.message) {
				t.Errorf("List: error %q does not mention %q", err, test.message)
			}
		})
	}
}

func TestConsent(t *testing.T) {
	site := newFakeSite(t, okPlayer, withConsent("YES+cb.20210328-17-p0.de+FX+119"))

	list, err := site.client().List(context.Background(), testVideoID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list.Transcripts) != 4 {
		t.Errorf("List: got %d tracks, want 4", len(list.Transcripts))
	}
}

func TestConsentRejected(t *testing.T) {
	site := newFakeSite(t, okPlayer, withConsent("something the client will never send"))

	if _, err := site.client().List(context.Background(), testVideoID); err == nil {
		t.Fatal("List: got nil error, want consent failure")
	} else if !strings.Contains(err.Error(), "consent") {
		t.Errorf("List: unexpected error: %v", err)
	}
	if n, _ := site.stats(); n != 0 {
		t.Errorf("Player endpoint called %d times, want 0", n)
	}
}

func TestRecaptcha(t *testing.T) {
	site := newFakeSite(t, okPlayer, withWatchPage(
		`<html><body><form><div class="g-recaptcha" data-sitekey="x"></div></form></body></html>`))

	_, err := site.client().List(context.Background(), testVideoID)
	var blocked *youtube.RequestBlockedError
	if !errors.As(err, &blocked) {
		t.Fatalf("List: got %v, want RequestBlockedError", err)
	}
}

func TestMissingAPIKey(t *testing.T) {
	site := newFakeSite(t, okPlayer, withWatchPage(`<html><body>nothing to see here</body></html>`))

	_, err := site.client().List(context.Background(), testVideoID)
	if err == nil || !strings.Contains(err.Error(), "INNERTUBE_API_KEY") {
		t.Fatalf("List: got %v, want missing API key error", err)
	}
}

func TestStatusError(t *testing.T) {
	site := newFakeSite(t, okPlayer)
	c := youtube.New(youtube.WithBaseURL(site.URL + "/missing"))

	_, err := c.List(context.Background(), testVideoID)
	var se *youtube.StatusError
	if !errors.As(err, &se) {
		t.Fatalf("List: got %v, want StatusError", err)
	}
	if se.Code != http.StatusNotFound {
		t.Errorf("StatusError code: got %d, want %d", se.Code, http.StatusNotFound)
	}
}

const englishCaptions = `<?xml version="1.0" encoding="utf-8" ?><transcript>
<text start="0.5" dur="1.54">Hey there, it&amp;#39;s &lt;i&gt;me&lt;/i&gt;</text>
<text start="2.04" dur="3"></text>
<text start="5.04" dur="2.2">  &lt;font color=&quot;#E5E5E5&quot;&gt;spaced&lt;/font&gt; &amp;amp; &lt;b&gt;bold&lt;/b&gt;  </text>
<text start="7.3">no duration</text>
</transcript>`

func TestFetch(t *testing.T) {
	site := newFakeSite(t, okPlayer, withCaptions("en/", englishCaptions))

	c := site.client()
	ctx := context.Background()
	list, err := c.List(ctx, testVideoID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	tr, err := list.FindManual([]string{"en"})
	if err != nil {
		t.Fatalf("FindManual failed: %v", err)
	}

	tests := []struct {
		opts youtube.FetchOptions
		want []youtube.Snippet
	}{
		{youtube.FetchOptions{}, []youtube.Snippet{
			{Text: "Hey there, it's me", Start: 0.5, Duration: 1.54},
			{Text: "  spaced & bold  ", Start: 5.04, Duration: 2.2},
			{Text: "no duration", Start: 7.3, Duration: 0},
		}},
		{youtube.FetchOptions{PreserveFormatting: true}, []youtube.Snippet{
			{Text: "Hey there, it's <i>me</i>", Start: 0.5, Duration: 1.54},
			{Text: "  spaced & <b>bold</b>  ", Start: 5.04, Duration: 2.2},
			{Text: "no duration", Start: 7.3, Duration: 0},
		}},
	}
	for _, test := range tests {
		got, err := c.Fetch(ctx, tr, test.opts)
		if err != nil {
			t.Errorf("Fetch(%+v) failed: %v", test.opts, err)
			continue
		}
		if len(got) != len(test.want) {
			t.Errorf("Fetch(%+v): got %d snippets, want %d: %+v", test.opts, len(got), len(test.want), got)
			continue
		}
		for i := range got {
			if got[i] != test.want[i] {
				t.Errorf("Fetch(%+v) snippet %d: got %+v, want %+v", test.opts, i, got[i], test.want[i])
			}
		}
	}
}

func TestFetchDropsFormatParameter(t *testing.T) {
	site := newFakeSite(t, okPlayer, withCaptions("en/", englishCaptions))

	c := site.client()
	ctx := context.Background()
	list, err := c.List(ctx, testVideoID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	tr, err := list.FindGenerated([]string{"en"})
	if err != nil {
		t.Fatalf("FindGenerated failed: %v", err)
	}
	if _, err := c.Fetch(ctx, tr, youtube.FetchOptions{}); err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if _, q := site.stats(); strings.Contains(q, "fmt=srv3") {
		t.Errorf("Timed text query %q still requests srv3", q)
	}
}

func TestTranslate(t *testing.T) {
	site := newFakeSite(t, okPlayer, withCaptions("en/fr",
		`<transcript><text start="1" dur="2">Bonjour</text></transcript>`))

	c := site.client()
	ctx := context.Background()
	list, err := c.List(ctx, testVideoID)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	en, err := list.FindManual([]string{"en"})
	if err != nil {
		t.Fatalf("FindManual failed: %v", err)
	}

	fr, err := en.Translate("fr")
	if err != nil {
		t.Fatalf("Translate(fr) failed: %v", err)
	}
	if fr.Language != "French" || fr.LanguageCode != "fr" || !fr.IsGenerated || fr.IsTranslatable() {
		t.Errorf("Translate(fr): got %+v", fr)
	}
	snips, err := c.Fetch(ctx, fr, youtube.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetch translated failed: %v", err)
	}
	if len(snips) != 1 || snips[0].Text != "Bonjour" {
		t.Errorf("Fetch translated: got %+v", snips)
	}

	var nta *youtube.TranslationUnavailableError
	if _, err := en.Translate("ja"); !errors.As(err, &nta) {
		t.Errorf("Translate(ja): got %v, want TranslationUnavailableError", err)
	}

	de, err := list.Find([]string{"de"})
	if err != nil {
		t.Fatalf("Find(de) failed: %v", err)
	}
	var nt *youtube.NotTranslatableError
	if _, err := de.Translate("fr"); !errors.As(err, &nt) {
		t.Errorf("Translate on untranslatable track: got %v, want NotTranslatableError", err)
	}
}

func TestRequestHeaders(t *testing.T) {
	var gotLang, gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.Header.Get("Accept-Language")
		gotUA = r.Header.Get("User-Agent")
		http.Error(w, "nope", http.StatusTeapot)
	}))
	defer srv.Close()

	c := youtube.New(
		youtube.WithHTTPClient(srv.Client()),
		youtube.WithBaseURL(srv.URL+"/"),
		youtube.WithAcceptLanguage("de-DE"),
		youtube.WithUserAgent("ytscript-test/1.0"),
	)
	if _, err := c.List(context.Background(), testVideoID); err == nil {
		t.Fatal("List: got nil error, want status error")
	}
	if gotLang != "de-DE" {
		t.Errorf("Accept-Language: got %q, want de-DE", gotLang)
	}
	if gotUA != "ytscript-test/1.0" {
		t.Errorf("User-Agent: got %q, want ytscript-test/1.0", gotUA)
	}
}

func TestLiveTranscript(t *testing.T) {
	if !*doManual {
		t.Skip("Skipping manual test (-manual=false)")
	}

	const videoID = "s9vNrZSRUbc"
	ctx := context.Background()
	c := youtube.New()
	list, err := c.List(ctx, videoID)
	if err != nil {
		t.Fatalf("Listing tracks for %q failed: %v", videoID, err)
	}
	for _, tr := range list.Transcripts {
		t.Logf("Track %s (%s) generated=%v translatable=%v",
			tr.LanguageCode, tr.Language, tr.IsGenerated, tr.IsTranslatable())
	}

	tr, err := list.Find([]string{"en"})
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	snips, err := c.Fetch(ctx, tr, youtube.FetchOptions{})
	if err != nil {
		t.Fatalf("Fetching captions: %v", err)
	}
	for i, elt := range snips {
		at := time.Duration(elt.Start * float64(time.Second))
		t.Logf("[%d]: %v\t%s", i+1, at, elt.Text)
	}
}
