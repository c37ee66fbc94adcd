// Package gemini is a minimal client for the Gemini Batch API: create a
// batch of inference requests, then poll the returned long-running job
// until it is done.
package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	DefaultModel   = "gemini-3-flash-preview"
)

// BatchService is the backend contract the engine depends on. The HTTP
// client implements it for production; MockBatchService for tests.
type BatchService interface {
	// CreateBatch submits one batch job and returns it in a pending state.
	CreateBatch(ctx context.Context, displayName string, reqs []GenerateRequest) (*BatchJob, error)

	// GetBatch fetches the current state of a previously created job.
	GetBatch(ctx context.Context, name string) (*BatchJob, error)
}

// Config holds settings for the HTTP client.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Client talks to the Gemini Batch API over HTTP.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// NewClient creates a Gemini batch client.
func NewClient(cfg Config) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 120 * time.Second
	}

	return &Client{
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// NewPDFRequest builds a generate request carrying a PDF payload and an
// instruction prompt.
func NewPDFRequest(payload []byte, prompt string, genCfg *GenerationConfig) GenerateRequest {
	return GenerateRequest{
		Contents: []Content{{
			Role: "user",
			Parts: []Part{
				{InlineData: &InlineData{
					MimeType: "application/pdf",
					Data:     base64.StdEncoding.EncodeToString(payload),
				}},
				{Text: prompt},
			},
		}},
		GenerationConfig: genCfg,
	}
}

// CreateBatch submits a batch job with inlined requests.
func (c *Client) CreateBatch(ctx context.Context, displayName string, reqs []GenerateRequest) (*BatchJob, error) {
	inlined := make([]inlinedRequest, len(reqs))
	for i, r := range reqs {
		inlined[i] = inlinedRequest{
			Request:  r,
			Metadata: map[string]string{"key": fmt.Sprintf("request-%d", i)},
		}
	}

	body := createBatchRequest{}
	body.Batch.DisplayName = displayName
	body.Batch.InputConfig.Requests.Requests = inlined

	url := fmt.Sprintf("%s/models/%s:batchGenerateContent", c.baseURL, c.model)
	op, err := c.doRequest(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	return op.toBatchJob(), nil
}

// GetBatch fetches the job's long-running operation state.
func (c *Client) GetBatch(ctx context.Context, name string) (*BatchJob, error) {
	url := fmt.Sprintf("%s/%s", c.baseURL, strings.TrimPrefix(name, "/"))
	op, err := c.doRequest(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	return op.toBatchJob(), nil
}

// doRequest performs one API call with short transport-level retries.
// Orchestration-level retry policy (requeueing tasks across waves) lives
// in the engine, not here.
func (c *Client) doRequest(ctx context.Context, method, url string, body any) (*operation, error) {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	var op operation
	err := retry.Do(
		func() error {
			var reader io.Reader
			if payload != nil {
				reader = bytes.NewReader(payload)
			}
			req, err := http.NewRequestWithContext(ctx, method, url, reader)
			if err != nil {
				return retry.Unrecoverable(err)
			}
			req.Header.Set("Content-Type", "application/json")
			req.Header.Set("x-goog-api-key", c.apiKey)

			resp, err := c.client.Do(req)
			if err != nil {
				return fmt.Errorf("request failed: %w", err)
			}
			defer resp.Body.Close()

			respBody, err := io.ReadAll(resp.Body)
			if err != nil {
				return fmt.Errorf("failed to read response: %w", err)
			}

			if resp.StatusCode != http.StatusOK {
				err := apiError(resp.StatusCode, respBody)
				if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
					return err
				}
				return retry.Unrecoverable(err)
			}

			op = operation{}
			if err := json.Unmarshal(respBody, &op); err != nil {
				return retry.Unrecoverable(fmt.Errorf("failed to unmarshal response: %w", err))
			}
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(3),
		retry.Delay(time.Second),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return nil, err
	}
	return &op, nil
}

// apiError extracts the backend error message from a non-200 response.
func apiError(status int, body []byte) error {
	var errResp errorResponse
	if json.Unmarshal(body, &errResp) == nil && errResp.Error.Message != "" {
		return fmt.Errorf("gemini batch error (status %d): %s", status, errResp.Error.Message)
	}
	return fmt.Errorf("gemini batch error (status %d): %s", status, string(body))
}

// Gemini Batch API wire types

type createBatchRequest struct {
	Batch struct {
		DisplayName string `json:"displayName"`
		InputConfig struct {
			Requests struct {
				Requests []inlinedRequest `json:"requests"`
			} `json:"requests"`
		} `json:"inputConfig"`
	} `json:"batch"`
}

type inlinedRequest struct {
	Request  GenerateRequest   `json:"request"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// operation is the long-running operation wrapper returned by both the
// create and get calls.
type operation struct {
	Name     string `json:"name"`
	Done     bool   `json:"done"`
	Metadata struct {
		State string `json:"state"`
	} `json:"metadata"`
	Error *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
	Response *struct {
		InlinedResponses struct {
			InlinedResponses []inlinedResponse `json:"inlinedResponses"`
		} `json:"inlinedResponses"`
	} `json:"response,omitempty"`
}

type inlinedResponse struct {
	Response *generateContentResponse `json:"response,omitempty"`
	Error    *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

type generateContentResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type errorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// text concatenates the text parts of the first candidate.
func (r *generateContentResponse) text() string {
	if len(r.Candidates) == 0 {
		return ""
	}
	var sb strings.Builder
	for _, p := range r.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String()
}

func (o *operation) toBatchJob() *BatchJob {
	job := &BatchJob{
		Name:  o.Name,
		Done:  o.Done,
		State: o.Metadata.State,
	}
	if o.Error != nil {
		job.Error = o.Error.Message
	}
	if o.Response != nil {
		for _, ir := range o.Response.InlinedResponses.InlinedResponses {
			resp := InlineResponse{}
			if ir.Response != nil {
				resp.Text = ir.Response.text()
			}
			if ir.Error != nil {
				resp.Error = ir.Error.Message
			}
			job.Responses = append(job.Responses, resp)
		}
	}
	return job
}

// Verify interface
var _ BatchService = (*Client)(nil)
