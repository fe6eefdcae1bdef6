package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/justsurfingit/job-board/internal/apperr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type scriptedModel struct {
	answer string
	err    error
	prompt string
}

func (m *scriptedModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
	for _, msg := range messages {
		for _, part := range msg.Parts {
			if text, ok := part.(llms.TextContent); ok {
				m.prompt += text.Text
			}
		}
	}
	if m.err != nil {
		return nil, m.err
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.answer}}}, nil
}

func (m *scriptedModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestParseJobDraft(t *testing.T) {
	fenced := "```json\n" + `{"jobTitle":"Go Developer","jobType":"Full-Time","location":"Remote","salary":120000,"experience":3,"skills":["Go"," go","SQL"]}` + "\n```"

	draft, err := parseJobDraft(fenced)
	require.NoError(t, err)
	assert.Equal(t, "Go Developer", draft.JobTitle)
	assert.Equal(t, "full-time", draft.JobType)
	require.NotNil(t, draft.Salary)
	assert.EqualValues(t, 120000, *draft.Salary)
	require.NotNil(t, draft.Experience)
	assert.Equal(t, 3, *draft.Experience)
	assert.Equal(t, []string{"Go", "SQL"}, draft.Skills)

	draft, err = parseJobDraft(`{"jobTitle":"Barista","jobType":"seasonal","salary":null,"experience":-1}`)
	require.NoError(t, err)
	assert.Empty(t, draft.JobType)
	assert.Nil(t, draft.Salary)
	assert.Nil(t, draft.Experience)

	_, err = parseJobDraft("Sorry, I cannot help with that.")
	assert.Error(t, err)
}

func TestExtractJobDraft(t *testing.T) {
	model := &scriptedModel{answer: `{"jobTitle":"Go Developer","jobType":"contract"}`}
	svc := &LLMService{Client: model, Log: quietLogger()}

	draft, err := svc.ExtractJobDraft(context.Background(), "We are hiring a Go developer. "+strings.Repeat("x", maxExtractionText))
	require.NoError(t, err)
	assert.Equal(t, "contract", draft.JobType)
	assert.Contains(t, model.prompt, "We are hiring a Go developer.")
	assert.Less(t, len(model.prompt), maxExtractionText+len(jobDraftPrompt))

	model.answer = "not json"
	_, err = svc.ExtractJobDraft(context.Background(), "text")
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))

	model.err = errors.New("quota exceeded")
	_, err = svc.ExtractJobDraft(context.Background(), "text")
	assert.Equal(t, apperr.KindInternal, apperr.KindOf(err))

	_, err = svc.ExtractJobDraft(context.Background(), "   ")
	assert.True(t, apperr.Is(err, apperr.KindValidation))
}

func TestExtractJobDraftDisabled(t *testing.T) {
	svc, err := NewLLMService(context.Background(), "", quietLogger())
	require.NoError(t, err)
	_, err = svc.ExtractJobDraft(context.Background(), "anything")
	assert.True(t, apperr.Is(err, apperr.KindUnavailable))
}
