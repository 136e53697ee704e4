package quickadd

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"unisync-backend/internal/ai"
	"unisync-backend/internal/events"
	"unisync-backend/internal/logger"
	"unisync-backend/internal/metrics"
)

const maxInputRunes = 1000

// Result is a normalized event plus the repairs it needed.
type Result struct {
	Event   events.Draft
	Repairs []Repair
}

// Parser runs one quick-add request: validate, ask the model, normalize.
type Parser struct {
	llm     ai.Completer
	timeout time.Duration
	now     func() time.Time
}

type Option func(*Parser)

func WithTimeout(d time.Duration) Option {
	return func(p *Parser) { p.timeout = d }
}

func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// NewParser accepts a nil completer; every Parse then reports
// UpstreamUnavailable.
func NewParser(llm ai.Completer, opts ...Option) *Parser {
	p := &Parser{llm: llm, timeout: 20 * time.Second, now: time.Now}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Parser) Parse(ctx context.Context, text string) (Result, error) {
	log := logger.FromContext(ctx)

	text = strings.TrimSpace(text)
	if text == "" {
		return Result{}, invalidRequest("text is required")
	}
	if utf8.RuneCountInString(text) > maxInputRunes {
		return Result{}, invalidRequest("text is too long")
	}
	if p.llm == nil || isNilCompleter(p.llm) {
		return Result{}, upstreamUnavailable(ai.ErrNotConfigured)
	}

	reference := p.now().In(events.Location())

	callCtx := ctx
	if p.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	started := time.Now()
	raw, err := p.llm.Complete(callCtx, ai.SystemPrompt(), ai.BuildUserPrompt(text, reference))
	metrics.ObserveLLM(time.Since(started))
	if err != nil {
		log.Warn("quick-add completion failed", "error", err)
		return Result{}, upstreamUnavailable(err)
	}

	draft, repairs, err := normalize(text, raw, reference)
	if err != nil {
		log.Warn("quick-add output not parseable", "error", err)
		log.Debug("quick-add raw output", "raw", raw)
		return Result{}, err
	}

	if len(repairs) > 0 {
		log.Debug("quick-add output repaired", "repairs", repairs)
	}
	for _, r := range repairs {
		metrics.CountRepair(string(r))
	}

	return Result{Event: draft, Repairs: repairs}, nil
}

func isNilCompleter(c ai.Completer) bool {
	client, ok := c.(*ai.Client)
	return ok && client == nil
}

// AsParseError unwraps err to a *ParseError, if it is one.
func AsParseError(err error) (*ParseError, bool) {
	var pe *ParseError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
