package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/justsurfingit/job-board/internal/apperr"
	"github.com/justsurfingit/job-board/internal/dtos"
	"github.com/justsurfingit/job-board/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
)

const (
	draftModel        = "gemini-2.5-flash"
	maxExtractionText = 20000
)

const jobDraftPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the raw text of a job posting and extract structured data for a job board upload form.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "jobTitle": "Job title (e.g., Senior Backend Engineer)",
    "jobType": "One of full-time, part-time, contract, intern",
    "location": "Job location or 'Remote'",
    "salary": 120000,
    "experience": 3,
    "desc": "A clean summary of the role and its responsibilities. No HTML.",
    "requirements": "The requirements of the role as plain text.",
    "skills": ["Array", "of", "skills", "e.g., Go, React, AWS"]
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.
salary is a yearly integer amount, experience is the minimum number of years.

### RAW CONTENT:
%s
`

// LLMService turns free text job postings into upload drafts.
type LLMService struct {
	// nil when no API key is configured
	Client llms.Model
	Log    *logrus.Logger
}

// NewLLMService builds the Gemini client. An empty key yields a service whose
// extraction reports the feature as unavailable.
func NewLLMService(ctx context.Context, apiKey string, log *logrus.Logger) (*LLMService, error) {
	if apiKey == "" {
		log.Warn("GEMINI_API_KEY not set, job draft extraction disabled")
		return &LLMService{Log: log}, nil
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(draftModel),
	)
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &LLMService{Client: llm, Log: log}, nil
}

// ExtractJobDraft asks the model for a draft of the posting in raw.
func (s *LLMService) ExtractJobDraft(ctx context.Context, raw string) (*dtos.JobDraft, error) {
	if s.Client == nil {
		return nil, apperr.Unavailable("Job extraction is not configured")
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, apperr.Validation("raw_text is required")
	}
	if r := []rune(raw); len(r) > maxExtractionText {
		raw = string(r[:maxExtractionText])
	}

	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, fmt.Sprintf(jobDraftPrompt, raw))
	if err != nil {
		return nil, fmt.Errorf("generate job draft: %w", err)
	}
	draft, err := parseJobDraft(resp)
	if err != nil {
		s.Log.WithError(err).Warn("model returned an unusable job draft")
		return nil, apperr.Unavailable("Job extraction returned an unreadable answer, try again")
	}
	return draft, nil
}

// parseJobDraft decodes the model output, tolerating a markdown fence around it.
func parseJobDraft(resp string) (*dtos.JobDraft, error) {
	body := strings.TrimSpace(resp)
	if strings.HasPrefix(body, "```") {
		body = strings.TrimPrefix(body, "```json")
		body = strings.TrimPrefix(body, "```")
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}

	var draft dtos.JobDraft
	if err := json.Unmarshal([]byte(strings.TrimSpace(body)), &draft); err != nil {
		return nil, fmt.Errorf("decode job draft: %w", err)
	}

	draft.JobType = strings.ToLower(strings.TrimSpace(draft.JobType))
	if !models.JobType(draft.JobType).Valid() {
		draft.JobType = ""
	}
	draft.Skills = NormalizeSkills(draft.Skills)
	if draft.Salary != nil && *draft.Salary < 0 {
		draft.Salary = nil
	}
	if draft.Experience != nil && *draft.Experience < 0 {
		draft.Experience = nil
	}
	return &draft, nil
}
