package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/dtos"
	"github.com/justsurfingit/jobx/internal/logger"
	"github.com/justsurfingit/jobx/internal/models"
	"github.com/justsurfingit/jobx/internal/testutil"
)

// memoryCache is an in-process ListingCache for tests.
type memoryCache struct {
	mu          sync.Mutex
	pages       map[string]JobPage
	gets        int
	hits        int
	invalidated int
}

func newMemoryCache() *memoryCache { return &memoryCache{pages: map[string]JobPage{}} }

func (m *memoryCache) Get(_ context.Context, key string, dst interface{}) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	p, ok := m.pages[key]
	if ok {
		m.hits++
		*dst.(*JobPage) = p
	}
	return ok, nil
}

func (m *memoryCache) Set(_ context.Context, key string, v interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pages[key] = *v.(*JobPage)
	return nil
}

func (m *memoryCache) Invalidate(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.invalidated++
	m.pages = map[string]JobPage{}
	return nil
}

func TestListJobsUsesCache(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	cache := newMemoryCache()
	f.jobs.Cache = cache
	f.apps.Cache = cache
	_, company := testutil.CreateEmployer(t, f.db, "boss@acme.io", "Acme")

	_, err := f.jobs.CreateJob(ctx, company.ID, jobRequest("Backend Engineer", models.TierFree))
	require.NoError(t, err)
	assert.Equal(t, 1, cache.invalidated)

	first, err := f.jobs.ListJobs(ctx, dtos.JobListQuery{})
	require.NoError(t, err)
	second, err := f.jobs.ListJobs(ctx, dtos.JobListQuery{Page: 1, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 1, cache.hits, "defaults normalize to the same key")
	assert.Equal(t, first.Total, second.Total)

	seeker := testutil.CreateUser(t, f.db, "seeker@mail.io", models.RoleJobSeeker, models.PlanFree)
	_, err = f.apps.Apply(ctx, seeker.ID, ApplyInput{JobID: first.Jobs[0].ID})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.invalidated)

	page, err := f.jobs.ListJobs(ctx, dtos.JobListQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Jobs[0].ApplicationsCount)
}

func TestRedisCacheUnreachableFallsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, company := testutil.CreateEmployer(t, f.db, "boss@acme.io", "Acme")
	testutil.CreateJob(t, f.db, company.ID, "Backend Engineer", models.TierFree, epoch)

	cache, err := NewRedisCache("redis://127.0.0.1:1/0?dial_timeout=100ms&max_retries=-1", time.Second)
	require.NoError(t, err)
	defer cache.Close()
	f.jobs.Cache = cache

	page, err := f.jobs.ListJobs(ctx, dtos.JobListQuery{})
	require.NoError(t, err)
	assert.Len(t, page.Jobs, 1)

	_, err = NewRedisCache("mysql://nope", time.Second)
	assert.Error(t, err)
}

func TestListKey(t *testing.T) {
	a := listKey(dtos.JobListQuery{Location: " Berlin ", Search: "GO", Page: 1, Limit: 10})
	b := listKey(dtos.JobListQuery{Location: "berlin", Search: "go", Page: 1, Limit: 10})
	c := listKey(dtos.JobListQuery{Location: "berlin", Search: "go", Page: 2, Limit: 10})
	assert.Equal(t, a, b)
	assert.NotEqual(t, b, c)
	assert.Equal(t, "jobx:jobs:g3:"+a, pageKey(3, a))
}

type fakeModel struct {
	reply  string
	err    error
	prompt string
}

func (m *fakeModel) GenerateContent(_ context.Context, messages []llms.MessageContent, _ ...llms.CallOption) (*llms.ContentResponse, error) {
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
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: m.reply}}}, nil
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, m, prompt, options...)
}

func TestExtractJobDetails(t *testing.T) {
	model := &fakeModel{reply: "```json\n" + `{
		"company_name": "Acme",
		"role_title": "Senior Go Engineer",
		"location": "Remote",
		"description": "Own the billing platform.",
		"job_type": "Full-Time",
		"work_mode": "anywhere",
		"tech_stack": ["Go", "Kafka", "go"],
		"salary_range": null
	}` + "\n```"}
	svc := &LLMService{Client: model, log: logger.Nop()}

	draft, err := svc.ExtractJobDetails(context.Background(), "<h1>Senior Go Engineer</h1>")
	require.NoError(t, err)
	assert.Equal(t, "Acme", draft.CompanyName)
	assert.Equal(t, "Senior Go Engineer", draft.Title)
	assert.Equal(t, "full-time", draft.JobType)
	assert.Empty(t, draft.WorkMode, "values outside the enum are dropped")
	assert.Equal(t, []string{"Go", "Kafka"}, draft.Skills)
	assert.Empty(t, draft.Salary)
	assert.Equal(t, models.TierFree, draft.Tier)
	assert.Contains(t, model.prompt, "<h1>Senior Go Engineer</h1>")

	model.reply = "not json"
	_, err = svc.ExtractJobDetails(context.Background(), "<p>x</p>")
	assert.True(t, apperr.Is(err, apperr.ErrUnavailable))

	model.err = apperr.New("quota")
	_, err = svc.ExtractJobDetails(context.Background(), "<p>x</p>")
	assert.True(t, apperr.Is(err, apperr.ErrUnavailable))

	_, err = svc.ExtractJobDetails(context.Background(), "  ")
	assert.True(t, apperr.Is(err, apperr.ErrValidation))

	_, err = NewLLMService(context.Background(), "", "gemini-2.5-flash", logger.Nop())
	assert.True(t, apperr.Is(err, apperr.ErrUnavailable))
}

func TestExtractJobDetailsCutsOnRuneBoundary(t *testing.T) {
	model := &fakeModel{reply: `{"role_title": "Barista"}`}
	svc := &LLMService{Client: model, log: logger.Nop()}

	raw := strings.Repeat("a", maxExtractionInput-1) + "é"
	_, err := svc.ExtractJobDetails(context.Background(), raw)
	require.NoError(t, err)
	assert.True(t, utf8.ValidString(model.prompt))
	assert.NotContains(t, model.prompt, "é", "a rune that does not fit is dropped whole")

	assert.Equal(t, "ab", cutUTF8("abé", 3))
	assert.Equal(t, "abé", cutUTF8("abé", 4))
	assert.Equal(t, "日", cutUTF8("日本", 5))
}
