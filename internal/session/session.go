// Package session keeps the state of one interactive chat: the loaded
// ticker and its analysis, the selected model and the message history.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"stock-analysis-bot/internal/analyzer"
	"stock-analysis-bot/internal/interfaces"
	"stock-analysis-bot/internal/logger"
	"stock-analysis-bot/internal/signal"
	"stock-analysis-bot/internal/summary"
	"stock-analysis-bot/internal/types"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"

	NoDataReply = "Please load stock data first using the analyze command."
)

type Message struct {
	Role    string    `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// Session is safe for concurrent use.
type Session struct {
	analyzer   interfaces.Analyzer
	llm        interfaces.Prompter
	recorder   interfaces.Recorder
	thresholds signal.Thresholds

	mu       sync.RWMutex
	ticker   string
	model    string
	analysis *types.Analysis
	history  []Message
}

// New creates a session. recorder may be nil.
func New(a interfaces.Analyzer, llm interfaces.Prompter, recorder interfaces.Recorder, th signal.Thresholds, model string) *Session {
	return &Session{
		analyzer:   a,
		llm:        llm,
		recorder:   recorder,
		thresholds: th,
		model:      model,
	}
}

// Load analyzes symbol and makes it the current ticker. On failure the
// previous analysis is kept.
func (s *Session) Load(ctx context.Context, symbol string) (*types.Analysis, error) {
	res, err := s.analyzer.Analyze(ctx, symbol)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.ticker = res.Symbol
	s.analysis = res
	s.mu.Unlock()

	if s.recorder != nil {
		if sum, err := analyzer.Summary(res, s.thresholds); err == nil {
			if err := s.recorder.RecordSummary(ctx, sum); err != nil {
				logger.ErrorWithErr(ctx, "Failed to journal summary", err, "symbol", res.Symbol)
			}
		}
	}
	return res, nil
}

// Ask answers a free-text question about the loaded ticker. Errors never
// escape: they are turned into the assistant reply.
func (s *Session) Ask(ctx context.Context, question string) string {
	s.mu.RLock()
	res, model, ticker := s.analysis, s.model, s.ticker
	s.mu.RUnlock()

	s.append(RoleUser, question)

	var reply string
	switch {
	case res == nil:
		reply = NoDataReply
	default:
		sum, err := analyzer.Summary(res, s.thresholds)
		if err != nil {
			reply = fmt.Sprintf("Not enough price history to analyze %s yet.", ticker)
			if !errors.Is(err, types.ErrInsufficientHistory) {
				reply = "Analysis error: " + err.Error()
			}
			break
		}
		out, err := s.llm.Prompt(ctx, summary.Prompt(sum, question), model)
		if err != nil {
			reply = "LLM error: " + err.Error()
		} else {
			reply = out
		}
	}

	s.append(RoleAssistant, reply)
	if s.recorder != nil && res != nil {
		if err := s.recorder.RecordChat(ctx, ticker, question, reply); err != nil {
			logger.ErrorWithErr(ctx, "Failed to journal chat", err, "symbol", ticker)
		}
	}
	return reply
}

func (s *Session) append(role, content string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.history = append(s.history, Message{Role: role, Content: content, At: time.Now()})
}

// SetModel changes the chat model; blank ids are rejected.
func (s *Session) SetModel(model string) error {
	model = strings.TrimSpace(model)
	if model == "" {
		return errors.New("model id must not be empty")
	}
	s.mu.Lock()
	s.model = model
	s.mu.Unlock()
	return nil
}

func (s *Session) Model() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.model
}

func (s *Session) Ticker() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ticker
}

// Analysis returns the current analysis, or nil before the first Load.
func (s *Session) Analysis() *types.Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.analysis
}

// Summary returns the context snapshot for the loaded ticker.
func (s *Session) Summary() (types.ContextSummary, error) {
	return analyzer.Summary(s.Analysis(), s.thresholds)
}

// Tail returns up to n most recent messages; n <= 0 returns all of them.
func (s *Session) Tail(n int) []Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	start := 0
	if n > 0 && len(s.history) > n {
		start = len(s.history) - n
	}
	out := make([]Message, len(s.history)-start)
	copy(out, s.history[start:])
	return out
}

// Reset clears the ticker, analysis and history. The model is kept.
func (s *Session) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ticker = ""
	s.analysis = nil
	s.history = nil
}
