package openai

import (
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

const (
	DefaultModel     = openai.GPT3Dot5Turbo
	defaultRetryWait = 5 * time.Second
)

type Client struct {
	client     *openai.Client
	model      string
	maxRetries int
	retryWait  time.Duration
}

type Option func(*Client)

// WithRetry sets how often a rate limited request is retried and how long to wait in between.
func WithRetry(maxRetries int, wait time.Duration) Option {
	return func(c *Client) {
		if maxRetries >= 0 {
			c.maxRetries = maxRetries
		}
		if wait >= 0 {
			c.retryWait = wait
		}
	}
}

func WithModel(model string) Option {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

func NewClient(baseUrl, apiKey string, opts ...Option) *Client {
	cfg := openai.DefaultConfig(apiKey)
	if baseUrl != "" {
		cfg.BaseURL = baseUrl
	}
	cfg.HTTPClient = &http.Client{
		Transport: &http.Transport{Proxy: http.ProxyFromEnvironment},
		Timeout:   2 * time.Minute,
	}

	c := &Client{
		client:     openai.NewClientWithConfig(cfg),
		model:      DefaultModel,
		maxRetries: 3,
		retryWait:  defaultRetryWait,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}
