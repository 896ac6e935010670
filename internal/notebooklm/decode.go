package notebooklm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/hpungsan/ytnb/internal/artifact"
)

// decodeList decodes tool output that is either a bare JSON array or an object
// wrapping the array under one of keys.
func decodeList[T any](data []byte, keys ...string) ([]T, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, nil
	}

	var items []T
	if data[0] == '[' {
		if err := json.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("decode list: %w", err)
		}
		return items, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	for _, key := range keys {
		raw, ok := wrapper[key]
		if !ok {
			continue
		}
		if string(raw) == "null" {
			return nil, nil
		}
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, fmt.Errorf("decode list %q: %w", key, err)
		}
		return items, nil
	}
	return nil, fmt.Errorf("decode list: none of %v in output", keys)
}

// decodeObject decodes a JSON object, unwrapping it first when it sits under one of keys.
func decodeObject[T any](data []byte, keys ...string) (T, error) {
	var result T
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return result, fmt.Errorf("decode object: empty output")
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return result, fmt.Errorf("decode object: %w", err)
	}
	for _, key := range keys {
		if raw, ok := wrapper[key]; ok && len(raw) > 0 && raw[0] == '{' {
			data = raw
			break
		}
	}
	if err := json.Unmarshal(data, &result); err != nil {
		return result, fmt.Errorf("decode object: %w", err)
	}
	return result, nil
}

// wireTime accepts RFC 3339 strings, naive datetimes and unix timestamps.
// Unparseable values decode to the zero time.
type wireTime struct {
	time.Time
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func (w *wireTime) UnmarshalJSON(b []byte) error {
	s := strings.TrimSpace(string(b))
	if s == "null" || s == "" {
		return nil
	}
	if s[0] == '"' {
		unquoted, err := strconv.Unquote(s)
		if err != nil {
			return nil
		}
		for _, layout := range timeLayouts {
			if t, err := time.Parse(layout, unquoted); err == nil {
				w.Time = t
				return nil
			}
		}
		return nil
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		sec := int64(f)
		if sec > 1e12 {
			w.Time = time.UnixMilli(sec).UTC()
		} else {
			w.Time = time.Unix(sec, 0).UTC()
		}
	}
	return nil
}

type wireNotebook struct {
	ID        string   `json:"id"`
	Title     string   `json:"title"`
	CreatedAt wireTime `json:"created_at"`
	UpdatedAt wireTime `json:"updated_at"`
}

func (n wireNotebook) notebook() Notebook {
	return Notebook{
		ID:        n.ID,
		Title:     n.Title,
		CreatedAt: n.CreatedAt.Time,
		UpdatedAt: n.UpdatedAt.Time,
	}
}

type wireSource struct {
	ID       string `json:"id"`
	SourceID string `json:"source_id"`
	Title    string `json:"title"`
	Status   string `json:"status"`
}

func (s wireSource) source() Source {
	id := s.ID
	if id == "" {
		id = s.SourceID
	}
	return Source{ID: id, Title: s.Title, Status: s.Status}
}

type wireArtifact struct {
	ID           string `json:"id"`
	Title        string `json:"title"`
	Type         string `json:"type"`
	Kind         string `json:"kind"`
	ArtifactType string `json:"artifact_type"`
	Status       string `json:"status"`
	Language     string `json:"language"`
}

func (a wireArtifact) artifact() Artifact {
	label := firstNonEmpty(a.Type, a.Kind, a.ArtifactType)
	kind, _ := artifact.ParseKind(label)
	return Artifact{
		ID:       a.ID,
		Title:    a.Title,
		Kind:     kind,
		Type:     label,
		Status:   a.Status,
		Language: a.Language,
	}
}

type wireStatus struct {
	TaskID        string `json:"task_id"`
	ArtifactID    string `json:"artifact_id"`
	Status        string `json:"status"`
	Error         string `json:"error"`
	IsRateLimited bool   `json:"is_rate_limited"`
	RateLimited   bool   `json:"rate_limited"`
}

func (s wireStatus) status() GenerationStatus {
	return GenerationStatus{
		TaskID:      firstNonEmpty(s.TaskID, s.ArtifactID),
		Status:      strings.ToLower(s.Status),
		Error:       s.Error,
		RateLimited: s.IsRateLimited || s.RateLimited,
	}
}

// ParseStatus decodes a generation status printed by the notebooklm tool,
// typically the output of a failed call. ok is false when output is not a
// JSON status object.
func ParseStatus(output string) (status GenerationStatus, ok bool) {
	w, err := decodeObject[wireStatus]([]byte(output), "status", "result")
	if err != nil {
		return GenerationStatus{}, false
	}
	st := w.status()
	if st.Status == "" && st.Error == "" && st.TaskID == "" && !st.RateLimited {
		return GenerationStatus{}, false
	}
	return st, true
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
