// Package journal records analysis summaries and chat exchanges.
package journal

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/types"
)

var ist = time.FixedZone("IST", 19800)

type SummaryEntry struct {
	Time string `json:"time"`
	types.ContextSummary
}

type ChatEntry struct {
	Time     string `json:"time"`
	Ticker   string `json:"ticker"`
	Question string `json:"question"`
	Reply    string `json:"reply"`
}

// JSONL appends one JSON object per line to daily files under dir:
// summaries/2006-01-02.jsonl and chats/2006-01-02.jsonl (IST dates).
type JSONL struct {
	dir string
	now func() time.Time
	mu  sync.Mutex
}

var _ interfaces.Recorder = (*JSONL)(nil)

func NewJSONL(dir string) *JSONL {
	if dir == "" {
		dir = "logs"
	}
	return &JSONL{dir: dir, now: time.Now}
}

func (j *JSONL) dailyPath(kind string, t time.Time) string {
	return filepath.Join(j.dir, kind, t.In(ist).Format("2006-01-02")+".jsonl")
}

func (j *JSONL) appendLine(kind string, v any) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	p := j.dailyPath(kind, j.now())
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(p, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()

	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(f, string(b))
	return err
}

func (j *JSONL) stamp() string {
	return j.now().In(ist).Format("2006-01-02 15:04:05")
}

func (j *JSONL) RecordSummary(ctx context.Context, s types.ContextSummary) error {
	return j.appendLine("summaries", SummaryEntry{Time: j.stamp(), ContextSummary: s})
}

func (j *JSONL) RecordChat(ctx context.Context, ticker, question, reply string) error {
	return j.appendLine("chats", ChatEntry{Time: j.stamp(), Ticker: ticker, Question: question, Reply: reply})
}

func (j *JSONL) Close() error { return nil }

// CompressOlder gzips journal files last modified more than retentionDays
// ago and removes the originals. Files that cannot be read are skipped.
func (j *JSONL) CompressOlder(retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	j.mu.Lock()
	defer j.mu.Unlock()

	cutoff := j.now().AddDate(0, 0, -retentionDays)
	return filepath.WalkDir(j.dir, func(p string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() || filepath.Ext(p) != ".jsonl" {
			return nil
		}
		info, err := d.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			return nil
		}
		gz := p + ".gz"
		if _, err := os.Stat(gz); err == nil {
			_ = os.Remove(p)
			return nil
		}
		if err := gzipFile(p, gz); err != nil {
			_ = os.Remove(gz)
			return nil
		}
		_ = os.Remove(p)
		return nil
	})
}

func gzipFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(out)
	if _, err := io.Copy(gw, in); err != nil {
		_ = gw.Close()
		_ = out.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		_ = out.Close()
		return err
	}
	return out.Close()
}
