// Package source reads what Claude Code hands to a statusline command: the
// hook payload on stdin and the session transcript it points at.
package source

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"time"

	"github.com/theirongolddev/burnline/internal/config"
)

// Byte patterns for field extraction.
var (
	patTimestamp1 = []byte(`"timestamp":"`)
	patTimestamp2 = []byte(`"timestamp": "`)
	patCwd1       = []byte(`"cwd":"`)
	patCwd2       = []byte(`"cwd": "`)
	patSession1   = []byte(`"sessionId":"`)
	patSession2   = []byte(`"sessionId": "`)
)

// Transcript summarizes one transcript file.
type Transcript struct {
	// Usage is keyed by model as written in the transcript.
	Usage map[string]config.TokenUsage
	Total config.TokenUsage
	// LastModel is the model of the most recent assistant entry.
	LastModel string
	// ForeignSessionID is the first session id in the file that differs from
	// the one being scanned for; resumed conversations start with the
	// previous session's entries.
	ForeignSessionID string
	Cwd              string
	StartTime        time.Time
	EndTime          time.Time
	APICalls         int
	ParseErrors      int
}

type apiCall struct {
	model string
	ts    time.Time
	usage config.TokenUsage
}

// ScanTranscript reads a transcript JSONL file. It deduplicates assistant
// entries by message.id, keeping only the last entry per ID (final billed
// usage). sessionID is the session being recorded.
//
// Entry routing by top-level "type" field:
//   - "user", "system" -> byte-level extraction (timestamp, cwd, sessionId)
//   - "assistant"      -> full JSON parse (token usage, model)
//   - everything else  -> skip
func ScanTranscript(path, sessionID string) (Transcript, error) {
	f, err := os.Open(path) //nolint:gosec // path supplied by the host
	if err != nil {
		return Transcript{}, err
	}
	defer func() { _ = f.Close() }()

	var (
		out   Transcript
		calls = make(map[string]apiCall)
		order []string
	)

	noteSession := func(id string) {
		if out.ForeignSessionID == "" && id != "" && id != sessionID {
			out.ForeignSessionID = id
		}
	}

	r := bufio.NewReaderSize(f, 256*1024)
	var buf []byte

	for {
		line, err := readLine(r, &buf)
		if errors.Is(err, errLineTooLong) {
			out.ParseErrors++
			continue
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Transcript{}, err
		}

		switch extractTopLevelType(line) {
		case "user", "system":
			if ts, ok := extractTimestampBytes(line); ok {
				updateTimeRange(&out.StartTime, &out.EndTime, ts)
			}
			if out.Cwd == "" {
				out.Cwd = extractStringField(line, patCwd1, patCwd2, 1024)
			}
			noteSession(extractStringField(line, patSession1, patSession2, 128))

		case "assistant":
			var entry RawEntry
			if err := json.Unmarshal(line, &entry); err != nil {
				out.ParseErrors++
				continue
			}
			ts, tsErr := time.Parse(time.RFC3339Nano, entry.Timestamp)
			if tsErr == nil {
				updateTimeRange(&out.StartTime, &out.EndTime, ts)
			}
			if out.Cwd == "" {
				out.Cwd = entry.Cwd
			}
			noteSession(entry.SessionID)

			msg := entry.Message
			if msg == nil || msg.ID == "" || msg.Usage == nil {
				continue
			}
			if _, seen := calls[msg.ID]; !seen {
				order = append(order, msg.ID)
			}
			calls[msg.ID] = apiCall{model: msg.Model, ts: ts, usage: msg.Usage.tokens()}
		}
	}
	out.Usage = make(map[string]config.TokenUsage)
	for _, id := range order {
		call := calls[id]
		out.Usage[call.model] = out.Usage[call.model].Plus(call.usage)
		out.Total = out.Total.Plus(call.usage)
		if call.model != "" {
			out.LastModel = call.model
		}
	}
	out.APICalls = len(calls)
	return out, nil
}

// maxLineBytes caps one transcript line. Longer lines (pasted images, huge
// tool results) are skipped whole.
const maxLineBytes = 2 * 1024 * 1024

var errLineTooLong = errors.New("transcript line too long")

// readLine returns the next line without its line ending, reusing *buf.
// An oversized line is consumed and reported as errLineTooLong. io.EOF is
// returned only once no bytes remain.
func readLine(r *bufio.Reader, buf *[]byte) ([]byte, error) {
	line := (*buf)[:0]
	tooLong := false
	read := false
	for {
		chunk, err := r.ReadSlice('\n')
		read = read || len(chunk) > 0
		if !tooLong {
			if len(line)+len(chunk) > maxLineBytes+2 {
				tooLong = true
				line = line[:0]
			} else {
				line = append(line, chunk...)
			}
		}
		if errors.Is(err, bufio.ErrBufferFull) {
			continue
		}
		*buf = line
		if err != nil && !(errors.Is(err, io.EOF) && read) {
			return nil, err
		}
		if tooLong {
			return nil, errLineTooLong
		}
		line = bytes.TrimSuffix(line, []byte("\n"))
		return bytes.TrimSuffix(line, []byte("\r")), nil
	}
}

// EstimateCost prices the transcript with cfg's pricing table.
func (t Transcript) EstimateCost(cfg config.Config) float64 {
	var cost float64
	for m, u := range t.Usage {
		cost += cfg.EstimateCost(m, t.EndTime, u)
	}
	return cost
}

// typeKey is the byte sequence for a JSON key named "type" (with quotes).
var typeKey = []byte(`"type"`)

// extractTopLevelType finds the top-level "type" field in a JSONL line.
// Tracks brace depth and string boundaries so nested "type" keys are ignored.
func extractTopLevelType(line []byte) string {
	depth := 0
	for i := 0; i < len(line); {
		switch line[i] {
		case '"':
			if depth == 1 && bytes.HasPrefix(line[i:], typeKey) {
				if val, isKey := classifyType(line, i+len(typeKey)); isKey {
					return val
				}
			}
			i = skipJSONString(line, i)
		case '{':
			depth++
			i++
		case '}':
			depth--
			i++
		default:
			i++
		}
	}
	return ""
}

// classifyType checks whether pos follows a JSON key (expects : then value).
// isKey=false means "type" appeared as a value and scanning should go on.
func classifyType(line []byte, pos int) (val string, isKey bool) {
	i := skipSpaces(line, pos)
	if i >= len(line) || line[i] != ':' {
		return "", false
	}
	i = skipSpaces(line, i+1)
	if i >= len(line) || line[i] != '"' {
		return "", true
	}
	i++

	end := bytes.IndexByte(line[i:], '"')
	if end < 0 || end > 20 {
		return "", true
	}
	v := string(line[i : i+end])
	switch v {
	case "assistant", "user", "system":
		return v, true
	}
	return "", true
}

// skipJSONString advances past a JSON string starting at the opening quote.
//
//nolint:gosec // manual bounds checking throughout
func skipJSONString(line []byte, i int) int {
	i++
	for i < len(line) {
		switch line[i] {
		case '\\':
			i += 2
		case '"':
			return i + 1
		default:
			i++
		}
	}
	return i
}

func skipSpaces(line []byte, i int) int {
	for i < len(line) && line[i] == ' ' {
		i++
	}
	return i
}

func extractTimestampBytes(line []byte) (time.Time, bool) {
	s := extractStringField(line, patTimestamp1, patTimestamp2, 40)
	if s == "" {
		return time.Time{}, false
	}
	ts, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, false
	}
	return ts, true
}

// extractStringField returns the first string value following either
// pattern, or "" when absent or longer than maxLen.
func extractStringField(line, pat1, pat2 []byte, maxLen int) string {
	for _, pat := range [][]byte{pat1, pat2} {
		idx := bytes.Index(line, pat)
		if idx < 0 {
			continue
		}
		start := idx + len(pat)
		end := bytes.IndexByte(line[start:], '"')
		if end < 0 || end > maxLen {
			continue
		}
		return string(line[start : start+end])
	}
	return ""
}

func updateTimeRange(minTime, maxTime *time.Time, ts time.Time) {
	if minTime.IsZero() || ts.Before(*minTime) {
		*minTime = ts
	}
	if maxTime.IsZero() || ts.After(*maxTime) {
		*maxTime = ts
	}
}
