package source

import "github.com/theirongolddev/burnline/internal/config"

// RawEntry is one line of a Claude Code transcript.
type RawEntry struct {
	Type      string      `json:"type"`
	Timestamp string      `json:"timestamp,omitempty"`
	SessionID string      `json:"sessionId,omitempty"`
	Cwd       string      `json:"cwd,omitempty"`
	Message   *RawMessage `json:"message,omitempty"`
}

// RawMessage is the assistant message envelope.
type RawMessage struct {
	ID    string    `json:"id"`
	Model string    `json:"model"`
	Usage *RawUsage `json:"usage,omitempty"`
}

// RawUsage holds token counts from the API response.
type RawUsage struct {
	InputTokens              int64          `json:"input_tokens"`
	OutputTokens             int64          `json:"output_tokens"`
	CacheCreationInputTokens int64          `json:"cache_creation_input_tokens"`
	CacheReadInputTokens     int64          `json:"cache_read_input_tokens"`
	CacheCreation            *CacheCreation `json:"cache_creation,omitempty"`
}

// CacheCreation splits cache write tokens by TTL bucket.
type CacheCreation struct {
	Ephemeral5mInputTokens int64 `json:"ephemeral_5m_input_tokens"`
	Ephemeral1hInputTokens int64 `json:"ephemeral_1h_input_tokens"`
}

func (u *RawUsage) tokens() config.TokenUsage {
	out := config.TokenUsage{
		Input:     u.InputTokens,
		Output:    u.OutputTokens,
		CacheRead: u.CacheReadInputTokens,
	}
	if u.CacheCreation != nil {
		out.CacheWrite5m = u.CacheCreation.Ephemeral5mInputTokens
		out.CacheWrite1h = u.CacheCreation.Ephemeral1hInputTokens
	} else {
		out.CacheWrite5m = u.CacheCreationInputTokens
	}
	return out
}

// ProjectDir is a project directory that holds burnline session records.
type ProjectDir struct {
	ID          string // raw directory name, e.g. "-Users-me-src-app"
	Name        string // display name, e.g. "app"
	SessionsDir string
}
