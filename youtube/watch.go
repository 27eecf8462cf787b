package youtube

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/url"
	"regexp"

	"github.com/PuerkitoBio/goquery"
)

// consentAction is the form target of the EU cookie consent interstitial.
const consentAction = "https://consent.youtube.com/s"

var apiKeyPattern = regexp.MustCompile(`"INNERTUBE_API_KEY":\s*"([a-zA-Z0-9_-]+)"`)

// watchURL returns the URL of the "watch" page for a video ID.
func (c *Client) watchURL(id string) string {
	return c.baseURL + "/watch?v=" + url.QueryEscape(id)
}

func (c *Client) loadWatchPage(ctx context.Context, id string) ([]byte, error) {
	req, err := c.newRequest(ctx, "GET", c.watchURL(id), nil)
	if err != nil {
		return nil, err
	}
	return c.loadRequest(req)
}

// watchPage loads the watch page for id and returns its raw HTML, accepting
// the cookie consent interstitial if one is served.
func (c *Client) watchPage(ctx context.Context, id string) ([]byte, error) {
	bits, err := c.loadWatchPage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading watch page: %w", err)
	}
	v, ok, err := consentValue(bits)
	if err != nil {
		return nil, err
	} else if !ok {
		return bits, nil
	}

	c.log.Debug("accepting cookie consent", "video", id)
	if err := c.setConsentCookie(v); err != nil {
		return nil, err
	}
	bits, err = c.loadWatchPage(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("loading watch page: %w", err)
	}
	if _, again, _ := consentValue(bits); again {
		return nil, fmt.Errorf("cookie consent for video %q was not accepted", id)
	}
	return bits, nil
}

func (c *Client) setConsentCookie(v string) error {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return err
	}
	c.httpClient.Jar.SetCookies(u, []*http.Cookie{{
		Name:  "CONSENT",
		Value: "YES+" + v,
		Path:  "/",
	}})
	return nil
}

// consentValue reports whether page is the consent interstitial, and if so
// returns the value that has to be echoed back in the CONSENT cookie.
func consentValue(page []byte) (string, bool, error) {
	if !bytes.Contains(page, []byte(consentAction)) {
		return "", false, nil
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", false, fmt.Errorf("parsing consent page: %w", err)
	}
	v, ok := doc.Find(`form[action="` + consentAction + `"] input[name="v"]`).Attr("value")
	if !ok || v == "" {
		return "", false, fmt.Errorf("consent page has no consent value")
	}
	return v, true, nil
}

// innertubeAPIKey extracts the API key for the player endpoint from a watch
// page. If the key is missing, it tries to say why.
func innertubeAPIKey(id string, page []byte) (string, error) {
	if m := apiKeyPattern.FindSubmatch(page); m != nil {
		return string(m[1]), nil
	}
	if isRecaptcha(page) {
		return "", &RequestBlockedError{VideoID: id, Reason: "rate limit exceeded (reCAPTCHA)"}
	}
	return "", fmt.Errorf("watch page for video %q has no INNERTUBE_API_KEY", id)
}

func isRecaptcha(page []byte) bool {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return false
	}
	return doc.Find(".g-recaptcha").Length() != 0
}
