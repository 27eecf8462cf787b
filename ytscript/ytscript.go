// Program ytscript fetches YouTube captions and reports them as JSON.
//
// Usage:
//
//	ytscript extract <video_url_or_id> [language...]
//	ytscript list <video_url_or_id>
//
// The video may be given as a watch, short (youtu.be) or embed URL, or as a
// bare 11-character ID. For extract, the trailing arguments are preferred
// language codes (default "en"); if none of them is available the first
// available track is used instead.
//
// Output is written to stdout as JSON:
//
//	{
//	  "success": true,
//	  "video_id": "<video-id>",
//	  "language": "English",
//	  "language_code": "en",
//	  "is_generated": false,
//	  "segments": [{
//	    "text": "... text of caption segment ...",
//	    "start": 123.4,
//	    "duration": 5.6
//	  }, ...],
//	  "total_segments": 100
//	}
//
// Failures to fetch a transcript are reported with "success": false and an
// "error" message, and exit with status 0. Invalid arguments exit with
// status 1.
package main

import (
	"context"
	"os"
	"os/signal"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	code := newApp(os.Stdout, os.Stderr).run(ctx, os.Args[1:])
	stop()
	os.Exit(code)
}
