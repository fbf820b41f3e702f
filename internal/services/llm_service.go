package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"
	"go.uber.org/zap"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/dtos"
	"github.com/justsurfingit/jobx/internal/logger"
	"github.com/justsurfingit/jobx/internal/models"
)

const maxExtractionInput = 20000

// JobExtractor turns a pasted posting into a draft POST /api/jobs body.
type JobExtractor interface {
	ExtractJobDetails(ctx context.Context, rawHTML string) (*dtos.JobDraft, error)
}

type LLMService struct {
	Client llms.Model
	log    *zap.SugaredLogger
}

// NewLLMService connects to Gemini. An empty key is an error; callers run
// without extraction in that case.
func NewLLMService(ctx context.Context, apiKey, model string, log *zap.SugaredLogger) (*LLMService, error) {
	if apiKey == "" {
		return nil, apperr.WithHint(apperr.Wrap(apperr.ErrUnavailable, "gemini api key is empty"), "Job extraction is not configured")
	}
	llm, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, apperr.Wrap(err, "create gemini client")
	}
	return &LLMService{Client: llm, log: log}, nil
}

const jobExtractionPrompt = `
You are an expert Job Data Extraction Agent. Your task is to analyze the provided raw HTML/Text from a job posting and extract structured data.

### INSTRUCTIONS:
1. **Analyze** the text to identify the core job details.
2. **Ignore** navigation menus, footers, "similar jobs" lists, and site advertisements.
3. **Extract** the following fields strictly.
4. **Format** the output as valid JSON only. Do not wrap the output in markdown code blocks.

### OUTPUT SCHEMA:
{
    "company_name": "Name of the company (e.g., Google, StartupInc)",
    "role_title": "Job title (e.g., Senior Backend Engineer)",
    "location": "Job location or 'Remote'",
    "description": "A clean summary of the job. Focus on Responsibilities and Requirements. Remove HTML tags.",
    "job_type": "One of: %s",
    "work_mode": "One of: %s",
    "tech_stack": ["Array", "of", "technologies", "mentioned", "e.g., Go, React, AWS"],
    "salary_range": "The salary string if explicitly mentioned (e.g., '$100k - $150k'), otherwise null"
}

### CONSTRAINT:
If a piece of information is missing, set the value to null. Do not hallucinate or guess.

### RAW CONTENT:
%s
`

type extractedJob struct {
	CompanyName string   `json:"company_name"`
	RoleTitle   string   `json:"role_title"`
	Location    string   `json:"location"`
	Description string   `json:"description"`
	JobType     string   `json:"job_type"`
	WorkMode    string   `json:"work_mode"`
	TechStack   []string `json:"tech_stack"`
	SalaryRange *string  `json:"salary_range"`
}

// ExtractJobDetails takes raw HTML and returns a draft listing.
func (s *LLMService) ExtractJobDetails(ctx context.Context, rawHTML string) (*dtos.JobDraft, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, apperr.Invalid("raw_html", "is required")
	}
	rawHTML = cutUTF8(rawHTML, maxExtractionInput)

	prompt := fmt.Sprintf(jobExtractionPrompt,
		strings.Join(models.JobTypes, ", "),
		strings.Join(models.WorkModes, ", "),
		rawHTML)
	resp, err := llms.GenerateFromSinglePrompt(ctx, s.Client, prompt)
	if err != nil {
		return nil, apperr.WithHint(apperr.Wrapf(apperr.ErrUnavailable, "generate extraction: %v", err),
			"Job extraction failed, please fill in the form manually")
	}

	var out extractedJob
	if err := json.Unmarshal([]byte(stripCodeFence(resp)), &out); err != nil {
		s.log.Warnw("extraction returned invalid json", logger.FieldError, err, "raw", truncate(resp, 200))
		return nil, apperr.WithHint(apperr.Wrap(apperr.ErrUnavailable, "parse extraction json"),
			"Job extraction failed, please fill in the form manually")
	}
	return out.draft(), nil
}

func (e extractedJob) draft() *dtos.JobDraft {
	d := &dtos.JobDraft{
		CompanyName: strings.TrimSpace(e.CompanyName),
		JobCreationRequest: dtos.JobCreationRequest{
			Title:       strings.TrimSpace(e.RoleTitle),
			Description: strings.TrimSpace(e.Description),
			Location:    strings.TrimSpace(e.Location),
			Skills:      cleanSkills(e.TechStack),
			Tier:        models.TierFree,
		},
	}
	if jt := strings.ToLower(strings.TrimSpace(e.JobType)); models.IsJobType(jt) {
		d.JobType = jt
	}
	if wm := strings.ToLower(strings.TrimSpace(e.WorkMode)); models.IsWorkMode(wm) {
		d.WorkMode = wm
	}
	if e.SalaryRange != nil {
		d.Salary = strings.TrimSpace(*e.SalaryRange)
	}
	return d
}

// stripCodeFence removes a ```json fence some models add anyway.
func stripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimPrefix(s, "json")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return cutUTF8(s, n) + "..."
}

// cutUTF8 shortens s to at most n bytes without splitting a rune.
func cutUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
