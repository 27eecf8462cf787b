package transcript

import "regexp"

// videoIDPatterns match the URL shapes that carry a video ID. They are tried
// in order and the first match wins.
var videoIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?:youtube\.com/watch\?v=|youtu\.be/|youtube\.com/embed/)([^&\n?#]+)`),
	regexp.MustCompile(`youtube\.com/watch\?.*v=([^&\n?#]+)`),
}

// bareIDLength is the length of a video ID given without a URL.
const bareIDLength = 11

// ResolveVideoID extracts a video ID from input, which may be a watch, short
// or embed URL, or a bare ID. It reports false if no ID could be found.
//
// An ID taken from a URL is whatever follows the marker up to the next '&',
// '?', '#' or newline; its length is not checked. A bare ID must be exactly
// 11 ASCII letters and digits.
func ResolveVideoID(input string) (string, bool) {
	for _, p := range videoIDPatterns {
		if m := p.FindStringSubmatch(input); m != nil {
			return m[1], true
		}
	}
	if len(input) == bareIDLength && isAlnum(input) {
		return input, true
	}
	return "", false
}

func isAlnum(s string) bool {
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !('a' <= c && c <= 'z' || 'A' <= c && c <= 'Z' || '0' <= c && c <= '9') {
			return false
		}
	}
	return s != ""
}
