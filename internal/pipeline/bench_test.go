package pipeline

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/burnline/internal/model"
	"github.com/theirongolddev/burnline/internal/session"
	"github.com/theirongolddev/burnline/internal/source"
)

func BenchmarkScanTranscript(b *testing.B) {
	path := filepath.Join(b.TempDir(), "t.jsonl")
	var sb strings.Builder
	for i := 0; i < 5000; i++ {
		fmt.Fprintf(&sb, `{"type":"user","sessionId":"s","timestamp":"2025-08-01T09:00:00Z","cwd":"/work"}`+"\n")
		fmt.Fprintf(&sb, `{"type":"assistant","sessionId":"s","timestamp":"2025-08-01T09:00:01Z","message":{"id":"m%d","model":"claude-sonnet-4-5","usage":{"input_tokens":1200,"output_tokens":300,"cache_read_input_tokens":9000}}}`+"\n", i)
	}
	if err := os.WriteFile(path, []byte(sb.String()), 0o600); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := source.ScanTranscript(path, "s"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkLoadConversationCost(b *testing.B) {
	s := session.New(filepath.Join(b.TempDir(), "sessions"))
	for i := 0; i < DefaultMaxChainDepth; i++ {
		rec := model.SessionCostRecord{SessionID: fmt.Sprintf("s%d", i), TotalCostUSD: 0.01}
		if i > 0 {
			rec.ParentSessionID = fmt.Sprintf("s%d", i-1)
		}
		if err := s.Save(rec); err != nil {
			b.Fatal(err)
		}
	}
	head := fmt.Sprintf("s%d", DefaultMaxChainDepth-1)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		cost := LoadConversationCost(s, head, 0)
		if len(cost.SessionIDs) != DefaultMaxChainDepth {
			b.Fatalf("visited %d", len(cost.SessionIDs))
		}
	}
}
