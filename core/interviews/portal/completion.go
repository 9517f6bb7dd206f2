package portal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/avast/retry-go/v4"
	"github.com/koscakluka/ema-interview/core/interviews"
	"go.opentelemetry.io/otel/attribute"
)

// Complete posts the answers of the interview. Transport failures and
// server errors are retried; client errors are not.
func (c *Client) Complete(ctx context.Context, completion interviews.Completion) error {
	ctx, span := tracer.Start(ctx, "submit interview answers")
	defer span.End()
	span.SetAttributes(attribute.Int("interview.answers.count", len(completion.Answers)))

	body, err := json.Marshal(NewCompletionRequest(completion))
	if err != nil {
		return fmt.Errorf("failed to encode completion: %w", err)
	}

	return retry.Do(
		func() error {
			var response completionResponse
			if err := c.do(ctx, http.MethodPost, c.interviewURL("complete"), bytes.NewReader(body), &response); err != nil {
				return err
			}
			if response.Success != nil && !*response.Success {
				return fmt.Errorf("%w: %s", ErrCompletionRejected, firstNonEmpty(response.Error, response.Message, "no reason given"))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(c.retryAttempts),
		retry.Delay(c.retryDelay),
		retry.LastErrorOnly(true),
		retry.RetryIf(isRetryable),
		retry.OnRetry(func(attempt uint, err error) {
			logger.Warn("retrying interview completion", "attempt", attempt+1, "error", err)
		}),
	)
}

func isRetryable(err error) bool {
	if errors.Is(err, ErrInterviewNotFound) || errors.Is(err, ErrCompletionRejected) || errors.Is(err, context.Canceled) {
		return false
	}

	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Temporary()
	}
	return true
}
