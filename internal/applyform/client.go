package applyform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/justsurfingit/jobx/internal/apperr"
	"github.com/justsurfingit/jobx/internal/dtos"
	"github.com/justsurfingit/jobx/internal/httpx"
	"github.com/justsurfingit/jobx/internal/models"
)

// APIError is a non-2xx answer from the JobX API.
type APIError struct {
	Status int
	Body   httpx.ErrorBody
}

func (e *APIError) Error() string {
	if e.Body.Error != "" {
		return fmt.Sprintf("jobx api: %d %s: %s", e.Status, e.Body.Code, e.Body.Error)
	}
	return fmt.Sprintf("jobx api: status %d", e.Status)
}

// Client calls the application endpoints as the token's owner.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		BaseURL: strings.TrimRight(baseURL, "/"),
		Token:   token,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type myApplicationsPage struct {
	Applications []models.Application `json:"applications"`
	Pagination   httpx.Pagination     `json:"pagination"`
}

// MyApplications pages through every application of the caller.
func (c *Client) MyApplications(ctx context.Context) ([]models.Application, error) {
	var all []models.Application
	for page := 1; ; page++ {
		q := url.Values{"page": {fmt.Sprint(page)}, "limit": {"100"}}
		var out myApplicationsPage
		if err := c.do(ctx, http.MethodGet, "/api/applications/my-applications?"+q.Encode(), "", nil, &out); err != nil {
			return nil, err
		}
		all = append(all, out.Applications...)
		if page >= out.Pagination.Pages {
			return all, nil
		}
	}
}

// UploadResume stores the file and returns its resume_url.
func (c *Client) UploadResume(ctx context.Context, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("resume", filename)
	if err != nil {
		return "", apperr.Wrap(err, "build multipart body")
	}
	if _, err := fw.Write(data); err != nil {
		return "", apperr.Wrap(err, "build multipart body")
	}
	if err := mw.Close(); err != nil {
		return "", apperr.Wrap(err, "build multipart body")
	}

	var out dtos.ResumeUploadResponse
	if err := c.do(ctx, http.MethodPost, "/api/applications/resume", mw.FormDataContentType(), &buf, &out); err != nil {
		return "", err
	}
	return out.ResumeURL, nil
}

// Apply posts an application.
func (c *Client) Apply(ctx context.Context, req dtos.ApplyRequest) (*models.Application, error) {
	raw, err := json.Marshal(req)
	if err != nil {
		return nil, apperr.Wrap(err, "encode application")
	}
	var out struct {
		Application models.Application `json:"application"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/applications", "application/json", bytes.NewReader(raw), &out); err != nil {
		return nil, err
	}
	return &out.Application, nil
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, dst interface{}) error {
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return apperr.Wrap(err, "build request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return apperr.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return apperr.Wrap(err, "read response")
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode}
		_ = json.Unmarshal(raw, &apiErr.Body)
		return apiErr
	}
	if dst == nil {
		return nil
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return apperr.Wrapf(err, "decode %s %s response", method, path)
	}
	return nil
}
