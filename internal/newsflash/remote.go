package newsflash

import (
	"context"
	"strings"
	"time"

	"github.com/anonto42/newsflash/backend/pkg/logger"
	"github.com/pkg/errors"
	"resty.dev/v3"
)

// Remote asks an HTTP service for the newsflash and falls back to the
// deterministic headline on any failure, so Generate never returns an
// error.
type Remote struct {
	client *resty.Client
	url    string
}

type remoteRequest struct {
	RawText    string `json:"rawText"`
	AuthorName string `json:"authorName"`
	MaxLength  int    `json:"maxLength"`
}

type remoteResponse struct {
	Text string `json:"text"`
}

func NewRemote(url string, timeout time.Duration) *Remote {
	client := resty.NewWithTransportSettings(&resty.TransportSettings{
		DialerTimeout:         timeout,
		TLSHandshakeTimeout:   timeout,
		ResponseHeaderTimeout: timeout,
	}).SetTimeout(timeout)
	return &Remote{client: client, url: url}
}

func (g *Remote) Close() error {
	return g.client.Close()
}

func (g *Remote) Generate(ctx context.Context, rawText, authorName string, opts Options) (string, error) {
	text, err := g.call(ctx, rawText, authorName, opts)
	if err != nil {
		logger.Ctx(ctx).Warn().Err(err).Str("url", g.url).Msg("newsflash service failed, using fallback")
		return Headline(rawText, authorName, opts), nil
	}
	return text, nil
}

func (g *Remote) call(ctx context.Context, rawText, authorName string, opts Options) (string, error) {
	limit := opts.MaxLength
	if limit <= 0 {
		limit = DefaultMaxLength
	}
	res, err := g.client.R().
		WithContext(ctx).
		SetBody(remoteRequest{RawText: rawText, AuthorName: authorName, MaxLength: limit}).
		SetResult(&remoteResponse{}).
		Post(g.url)
	if err != nil {
		return "", errors.Wrap(err, "call newsflash service")
	}
	if res.IsError() {
		return "", errors.Errorf("newsflash service returned %s", res.Status())
	}
	text := strings.TrimSpace(res.Result().(*remoteResponse).Text)
	if text == "" {
		return "", errors.New("newsflash service returned an empty text")
	}
	return text, nil
}
