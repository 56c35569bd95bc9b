package apiclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"

	"github.com/synthfhir/synthfhir/pkg/contract"
)

// Health calls GET /api/health.
func (c *Client) Health(ctx context.Context) (*contract.HealthResponse, error) {
	var out contract.HealthResponse
	if err := c.request(ctx, "/api/health", requestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetConfig fetches the backend's resource and LLM configuration.
func (c *Client) GetConfig(ctx context.Context) (*contract.AppConfig, error) {
	var out contract.AppConfig
	if err := c.request(ctx, "/api/config", requestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Generate submits a generation request. Per-resource failures come back
// inside a successful response.
func (c *Client) Generate(ctx context.Context, req contract.GenerationRequest) (*contract.GenerationResponse, error) {
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}
	var out contract.GenerationResponse
	if err := c.request(ctx, "/api/generate", requestOptions{Method: http.MethodPost, Body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetKnowledgeStatus(ctx context.Context) (*contract.KnowledgeStatus, error) {
	var out contract.KnowledgeStatus
	if err := c.request(ctx, "/api/knowledge/status", requestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IndexResource rebuilds the knowledge index of one resource.
func (c *Client) IndexResource(ctx context.Context, kind contract.ResourceKind) (*contract.IndexResponse, error) {
	body, err := jsonBody(contract.IndexRequest{Resource: kind})
	if err != nil {
		return nil, err
	}
	var out contract.IndexResponse
	if err := c.request(ctx, "/api/knowledge/index", requestOptions{Method: http.MethodPost, Body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// IndexAllResources rebuilds every resource index. The response resource is
// contract.IndexAllResource.
func (c *Client) IndexAllResources(ctx context.Context) (*contract.IndexResponse, error) {
	var out contract.IndexResponse
	if err := c.request(ctx, "/api/knowledge/index/all", requestOptions{Method: http.MethodPost}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadDocument sends a knowledge document as multipart form data with the
// fields "file" and "target_resource".
func (c *Client) UploadDocument(ctx context.Context, name string, content io.Reader, target contract.UploadTarget) (*contract.IndexResponse, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", name)
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read document: %w", err)
	}
	if err := mw.WriteField("target_resource", target.String()); err != nil {
		return nil, fmt.Errorf("write target: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("close form: %w", err)
	}

	headers := http.Header{}
	headers.Set("Content-Type", mw.FormDataContentType())

	var out contract.IndexResponse
	opts := requestOptions{Method: http.MethodPost, Body: &buf, Headers: headers}
	if err := c.request(ctx, "/api/knowledge/upload", opts, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) GetLLMStatus(ctx context.Context) (*contract.LLMStatus, error) {
	var out contract.LLMStatus
	if err := c.request(ctx, "/api/llm/status", requestOptions{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ExportCSV asks the backend to write a record set to a CSV file. A reply
// with success=false is returned as-is; the caller decides how to surface it.
func (c *Client) ExportCSV(ctx context.Context, req contract.ExportRequest) (*contract.ExportResponse, error) {
	body, err := jsonBody(req.Body())
	if err != nil {
		return nil, err
	}
	var out contract.ExportResponse
	path := "/api/export/" + url.PathEscape(string(req.Resource))
	if err := c.request(ctx, path, requestOptions{Method: http.MethodPost, Body: body}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DownloadCSV fetches a previously exported file as raw bytes. filepath is
// the value returned by ExportCSV and is escaped as a single path segment.
func (c *Client) DownloadCSV(ctx context.Context, filepath string) ([]byte, error) {
	return c.do(ctx, "/api/download/"+url.PathEscape(filepath), requestOptions{})
}
