package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"capgrid/log"
	apperrors "capgrid/pkg/errors"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

const descriptionPrompt = `Generate an image description useful for stable-diffusion generator model based on this piece of text:
    '%s'
    `

// Describe asks the chat model for an image description of text.
// Rate limited calls are retried after the configured wait.
func (c *Client) Describe(ctx context.Context, text string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: fmt.Sprintf(descriptionPrompt, text)},
		},
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.client.CreateChatCompletion(ctx, req)
		if err == nil {
			if len(resp.Choices) == 0 {
				return "", apperrors.New(apperrors.CodeDescribeFailed, "Empty description response")
			}
			return strings.TrimSpace(resp.Choices[0].Message.Content), nil
		}

		if !isRateLimited(err) {
			log.GetLogger().Error("describe request failed", zap.String("model", c.model), zap.Error(err))
			return "", apperrors.Wrap(apperrors.CodeDescribeFailed, "Description request failed", err)
		}
		if attempt >= c.maxRetries {
			return "", apperrors.Wrap(apperrors.CodeDescribeRateLimited, "Description API rate limited", err)
		}

		log.GetLogger().Warn("rate limit exceeded, waiting", zap.Duration("wait", c.retryWait), zap.Int("attempt", attempt+1))
		if err := c.wait(ctx); err != nil {
			return "", err
		}
	}
}

func (c *Client) wait(ctx context.Context) error {
	timer := time.NewTimer(c.retryWait)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func isRateLimited(err error) bool {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return reqErr.HTTPStatusCode == http.StatusTooManyRequests
	}
	return false
}
