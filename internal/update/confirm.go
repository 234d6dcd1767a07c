package update

import (
	"context"
	"errors"
	"sync"

	"github.com/sandeepkv93/daybook/internal/daily"
)

var ErrPromptClosed = errors.New("update: prompt closed")

// ConfirmPrompt is one pending carryover question waiting for the user.
type ConfirmPrompt struct {
	Request daily.ConfirmRequest
	reply   chan daily.Decision
	once    sync.Once
}

// Answer resolves the prompt. Later answers are ignored.
func (p *ConfirmPrompt) Answer(d daily.Decision) {
	p.once.Do(func() {
		p.reply <- d
	})
}

// PromptConfirmer hands carryover questions to the terminal UI and blocks
// until they are answered, the context ends or the UI goes away.
type PromptConfirmer struct {
	requests chan *ConfirmPrompt
	done     chan struct{}
	once     sync.Once
}

func NewPromptConfirmer() *PromptConfirmer {
	return &PromptConfirmer{
		requests: make(chan *ConfirmPrompt),
		done:     make(chan struct{}),
	}
}

func (c *PromptConfirmer) Confirm(ctx context.Context, req daily.ConfirmRequest) (daily.Decision, error) {
	prompt := &ConfirmPrompt{Request: req, reply: make(chan daily.Decision, 1)}
	select {
	case c.requests <- prompt:
	case <-ctx.Done():
		return daily.Decision{}, ctx.Err()
	case <-c.done:
		return daily.Decision{}, ErrPromptClosed
	}

	select {
	case d := <-prompt.reply:
		return d, nil
	case <-ctx.Done():
		return daily.Decision{}, ctx.Err()
	case <-c.done:
		return daily.Decision{}, ErrPromptClosed
	}
}

// Requests delivers prompts in the order they were asked.
func (c *PromptConfirmer) Requests() <-chan *ConfirmPrompt {
	return c.requests
}

// Close fails every waiting and future Confirm call.
func (c *PromptConfirmer) Close() {
	c.once.Do(func() { close(c.done) })
}
