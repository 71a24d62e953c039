// Package notify delivers best-effort push notifications. Mutations enqueue
// a Task after they commit; worker goroutines persist the in-app
// notifications and push to device tokens. Nothing here ever reports a
// failure back to the request that caused it.
package notify

import (
	"context"
	"fmt"

	"github.com/anonto42/newsflash/backend/pkg/logger"
	"github.com/samber/lo"
)

// Message is the payload pushed to every token of a dispatch.
type Message struct {
	Title string
	Body  string
	Data  map[string]string
}

// Options tune delivery on the transport.
type Options struct {
	HighPriority bool
	CollapseKey  string
}

// SendReport is what a Sender managed to deliver.
type SendReport struct {
	Sent         int
	Failed       int
	FailedTokens []string
}

// Sender pushes one message to a set of device tokens.
type Sender interface {
	Send(ctx context.Context, tokens []string, msg Message, opts Options) (SendReport, error)
}

// Result summarises a dispatch. Skipped counts tokens dropped before sending
// (empty or duplicate).
type Result struct {
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type Dispatcher struct {
	sender Sender
}

func NewDispatcher(sender Sender) *Dispatcher {
	return &Dispatcher{sender: sender}
}

// Dispatch sends to tokens and reports the outcome. Failures, including a
// panicking sender, are logged and folded into the Result.
func (d *Dispatcher) Dispatch(ctx context.Context, tokens []string, title, body string, data map[string]string, opts Options) (res Result) {
	l := logger.Ctx(ctx)

	valid := lo.Uniq(lo.Filter(tokens, func(t string, _ int) bool { return t != "" }))
	res.Skipped = len(tokens) - len(valid)
	if len(valid) == 0 {
		return res
	}

	defer func() {
		if r := recover(); r != nil {
			l.Error().Interface("panic", r).Int("tokens", len(valid)).Msg("notification sender panicked")
			res.Sent = 0
			res.Failed = len(valid)
		}
	}()

	report, err := d.sender.Send(ctx, valid, Message{Title: title, Body: body, Data: data}, opts)
	if err != nil {
		l.Warn().Err(err).Int("tokens", len(valid)).Str("title", title).Msg("notification dispatch failed")
		res.Failed = len(valid)
		return res
	}

	res.Sent = report.Sent
	res.Failed = report.Failed
	if report.Failed > 0 {
		l.Warn().
			Int("sent", report.Sent).
			Int("failed", report.Failed).
			Str("title", title).
			Msg(fmt.Sprintf("notification partially delivered to %d of %d devices", report.Sent, len(valid)))
	}
	return res
}
