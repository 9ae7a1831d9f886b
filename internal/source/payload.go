package source

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/theirongolddev/burnline/internal/model"
)

// maxPayloadBytes bounds what is read from stdin.
const maxPayloadBytes = 4 << 20

// ErrEmptyPayload is returned when stdin carried nothing.
var ErrEmptyPayload = errors.New("empty hook payload")

// HookPayload is the JSON document Claude Code pipes to a statusline command.
type HookPayload struct {
	HookEventName   string           `json:"hook_event_name,omitempty"`
	SessionID       string           `json:"session_id"`
	ParentSessionID string           `json:"parent_session_id,omitempty"`
	TranscriptPath  string           `json:"transcript_path,omitempty"`
	Cwd             string           `json:"cwd,omitempty"`
	Version         string           `json:"version,omitempty"`
	Model           PayloadModel     `json:"model"`
	Workspace       PayloadWorkspace `json:"workspace"`
	Cost            *PayloadCost     `json:"cost,omitempty"`
}

// PayloadModel identifies the active model.
type PayloadModel struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// PayloadWorkspace locates the session on disk.
type PayloadWorkspace struct {
	CurrentDir string `json:"current_dir"`
	ProjectDir string `json:"project_dir"`
}

// PayloadCost carries the host's cumulative counters for the session.
type PayloadCost struct {
	TotalCostUSD       *float64 `json:"total_cost_usd,omitempty"`
	TotalDurationMS    int64    `json:"total_duration_ms"`
	TotalAPIDurationMS int64    `json:"total_api_duration_ms"`
	TotalLinesAdded    int64    `json:"total_lines_added"`
	TotalLinesRemoved  int64    `json:"total_lines_removed"`
	InputTokens        *int64   `json:"input_tokens,omitempty"`
	OutputTokens       *int64   `json:"output_tokens,omitempty"`
}

// Counters converts the cost block to record counters. The bool is false
// when the host did not report a cost.
func (c *PayloadCost) Counters() (model.CostCounters, bool) {
	if c == nil {
		return model.CostCounters{}, false
	}
	out := model.CostCounters{
		TotalDurationMS:    c.TotalDurationMS,
		TotalAPIDurationMS: c.TotalAPIDurationMS,
		LinesAdded:         c.TotalLinesAdded,
		LinesRemoved:       c.TotalLinesRemoved,
	}
	if c.TotalCostUSD == nil {
		return out, false
	}
	out.TotalCostUSD = *c.TotalCostUSD
	return out, true
}

// ProjectPath picks the project directory: the workspace project dir, then
// the workspace current dir, then cwd.
func (p HookPayload) ProjectPath() string {
	for _, s := range []string{p.Workspace.ProjectDir, p.Workspace.CurrentDir, p.Cwd} {
		if s != "" {
			return s
		}
	}
	return ""
}

// WorkingDir is where the local config layer is looked up.
func (p HookPayload) WorkingDir() string {
	if p.Workspace.CurrentDir != "" {
		return p.Workspace.CurrentDir
	}
	return p.Cwd
}

// ReadPayload decodes a hook payload. Keys may be snake_case or camelCase;
// when both spellings are present the snake_case one wins.
func ReadPayload(r io.Reader) (HookPayload, error) {
	data, err := io.ReadAll(io.LimitReader(r, maxPayloadBytes))
	if err != nil {
		return HookPayload{}, fmt.Errorf("reading hook payload: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return HookPayload{}, ErrEmptyPayload
	}
	return ParsePayload(data)
}

// ParsePayload decodes a hook payload from bytes.
func ParsePayload(data []byte) (HookPayload, error) {
	var raw any
	if err := json.Unmarshal(data, &raw); err != nil {
		return HookPayload{}, fmt.Errorf("decoding hook payload: %w", err)
	}
	if _, ok := raw.(map[string]any); !ok {
		return HookPayload{}, fmt.Errorf("decoding hook payload: top level is not an object")
	}
	normalized, err := json.Marshal(snakeKeys(raw))
	if err != nil {
		return HookPayload{}, fmt.Errorf("normalizing hook payload: %w", err)
	}
	var p HookPayload
	if err := json.Unmarshal(normalized, &p); err != nil {
		return HookPayload{}, fmt.Errorf("decoding hook payload: %w", err)
	}
	return p, nil
}

// snakeKeys rewrites camelCase object keys to snake_case throughout v.
func snakeKeys(v any) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		// snake_case keys first so they win over camelCase aliases.
		for k, child := range t {
			if toSnake(k) == k {
				out[k] = snakeKeys(child)
			}
		}
		for k, child := range t {
			sk := toSnake(k)
			if sk == k {
				continue
			}
			if _, exists := out[sk]; !exists {
				out[sk] = snakeKeys(child)
			}
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, child := range t {
			out[i] = snakeKeys(child)
		}
		return out
	default:
		return v
	}
}

func toSnake(s string) string {
	var b strings.Builder
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
