package video

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/hpungsan/ytnb/internal/errors"
	"github.com/hpungsan/ytnb/internal/tool"
)

// Placeholders used when metadata is unavailable.
const (
	UnknownTitle   = "Sin título"
	UnknownChannel = "Canal desconocido"
)

// Max lengths of the title and channel parts of a notebook title.
const (
	MaxTitleChars   = 60
	MaxChannelChars = 30
)

// Metadata describes a video as far as notebook naming is concerned.
type Metadata struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	UploadDate  string `json:"upload_date"` // YYYY-MM-DD or UnknownDate
	Description string `json:"description,omitempty"`
}

// Placeholder returns metadata for id with every other field set to its placeholder.
func Placeholder(id string) Metadata {
	return Metadata{
		ID:         id,
		Title:      UnknownTitle,
		Channel:    UnknownChannel,
		UploadDate: UnknownDate,
	}
}

// NotebookTitle builds "{prefix}{id} - {title} - {date} - {channel}".
func NotebookTitle(prefix string, m Metadata) string {
	return fmt.Sprintf("%s%s - %s - %s - %s",
		prefix,
		m.ID,
		Sanitize(m.Title, MaxTitleChars),
		m.UploadDate,
		Sanitize(m.Channel, MaxChannelChars),
	)
}

// Fetcher retrieves metadata for a video URL.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (Metadata, error)
}

// YTDLP fetches metadata by running yt-dlp.
type YTDLP struct {
	Path    string
	Timeout time.Duration
	Runner  tool.Runner
}

// ytdlpInfo is the subset of `yt-dlp --dump-single-json` output we read.
type ytdlpInfo struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Channel     string `json:"channel"`
	Uploader    string `json:"uploader"`
	UploadDate  string `json:"upload_date"`
	Description string `json:"description"`
}

// Fetch implements Fetcher.
func (y *YTDLP) Fetch(ctx context.Context, url string) (Metadata, error) {
	path := y.Path
	if path == "" {
		path = "yt-dlp"
	}
	runner := y.Runner
	if runner == nil {
		runner = tool.ExecRunner{}
	}

	out, err := tool.Invoke(ctx, runner, y.Timeout, "metadata", path,
		"--dump-single-json", "--skip-download", "--no-warnings", "--no-playlist", url)
	if err != nil {
		return Metadata{}, err
	}

	var info ytdlpInfo
	if err := json.Unmarshal(out, &info); err != nil {
		return Metadata{}, errors.NewRemote("metadata", "unparseable yt-dlp output", err)
	}
	return info.toMetadata(), nil
}

func (i ytdlpInfo) toMetadata() Metadata {
	m := Metadata{
		ID:          i.ID,
		Title:       strings.TrimSpace(i.Title),
		Channel:     strings.TrimSpace(i.Channel),
		UploadDate:  FormatUploadDate(i.UploadDate),
		Description: i.Description,
	}
	if m.Title == "" {
		m.Title = UnknownTitle
	}
	if m.Channel == "" {
		m.Channel = strings.TrimSpace(i.Uploader)
	}
	if m.Channel == "" {
		m.Channel = UnknownChannel
	}
	return m
}
