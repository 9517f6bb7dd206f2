package portal

import (
	"context"
	"net/http"
	"strings"

	"github.com/koscakluka/ema-interview/core/interviews"
)

// Questions loads the custom questions of the interview. It prefers the
// questions embedded in the interview itself and falls back to the
// dedicated questions endpoint. An empty result is not an error.
func (c *Client) Questions(ctx context.Context) ([]interviews.Question, error) {
	ctx, span := tracer.Start(ctx, "load interview questions")
	defer span.End()

	var interview interviewResponse
	if err := c.do(ctx, http.MethodGet, c.interviewURL(), nil, &interview); err != nil {
		return nil, err
	}
	if strings.EqualFold(interview.Data.InterviewStatus, "completed") {
		return nil, ErrInterviewCompleted
	}

	if questions := toQuestions(interview.Data.CustomQuestions); len(questions) > 0 {
		return questions, nil
	}

	var fallback questionsResponse
	if err := c.do(ctx, http.MethodGet, c.interviewURL("questions"), nil, &fallback); err != nil {
		return nil, err
	}

	questions := toQuestions(fallback.Data.Questions)
	if len(questions) == 0 {
		logger.Info("portal returned no questions for interview")
	}
	return questions, nil
}
