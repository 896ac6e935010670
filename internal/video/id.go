package video

import (
	"net/url"
	"regexp"
	"strings"
)

// idPattern is the character set YouTube uses for video ids.
var idPattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ExtractID returns the video id embedded in a YouTube URL, or "" when the URL
// matches none of the supported shapes:
//
//	https://www.youtube.com/watch?v=ID   (also youtube.com without www)
//	https://youtu.be/ID
//	https://www.youtube.com/embed/ID     (also youtube.com without www)
func ExtractID(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}

	switch strings.ToLower(u.Hostname()) {
	case "www.youtube.com", "youtube.com":
		if u.Path == "/watch" {
			return validID(u.Query().Get("v"))
		}
		if rest, ok := strings.CutPrefix(u.Path, "/embed/"); ok {
			return validID(firstSegment(rest))
		}
	case "youtu.be":
		return validID(firstSegment(strings.TrimPrefix(u.Path, "/")))
	}
	return ""
}

func firstSegment(p string) string {
	seg, _, _ := strings.Cut(p, "/")
	return seg
}

func validID(id string) string {
	if !idPattern.MatchString(id) {
		return ""
	}
	return id
}

// notebookURLMarker precedes the id in NotebookLM notebook URLs.
const notebookURLMarker = "notebooklm.google.com/notebook/"

// ExtractNotebookID accepts a NotebookLM notebook URL or a bare notebook id.
func ExtractNotebookID(input string) string {
	input = strings.TrimSpace(input)
	if _, rest, ok := strings.Cut(input, notebookURLMarker); ok {
		id, _, _ := strings.Cut(rest, "/")
		id, _, _ = strings.Cut(id, "?")
		id, _, _ = strings.Cut(id, "#")
		return id
	}
	return input
}
