package indexstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rgoodwin/lexchunk/internal/docmodel"
)

// RetryableError marks a failure the pipeline may retry (rate limits,
// transient upstream errors).
type RetryableError struct {
	Err error
}

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Client communicates with the embedding/index service HTTP API. Chunks
// are upserted keyed by chunk_id; the index side computes embeddings.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// UpsertRequest is the body for PUT /chunks.
type UpsertRequest struct {
	DocID  string           `json:"doc_id"`
	Chunks []docmodel.Chunk `json:"chunks"`
	Meta   docmodel.RunMeta `json:"meta"`
}

// DeleteRequest is the body for POST /chunks/delete.
type DeleteRequest struct {
	DocID    string   `json:"doc_id"`
	ChunkIDs []string `json:"chunk_ids,omitempty"`
}

// ListResponse is a single indexed chunk from GET /docs/{doc_id}/chunks.
type ListResponse struct {
	ChunkID string `json:"chunk_id"`
	DocID   string `json:"doc_id"`
}

// UpsertChunks stores or replaces the given chunks. Re-indexing the same
// chunk_id overwrites the previous entry, so unchanged chunks are
// idempotent across re-runs.
func (c *Client) UpsertChunks(ctx context.Context, docID string, set *docmodel.ChunkSet) error {
	body, err := json.Marshal(UpsertRequest{DocID: docID, Chunks: set.Chunks, Meta: set.Chunking})
	if err != nil {
		return fmt.Errorf("marshal chunks: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, c.baseURL+"/chunks", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RetryableError{Err: fmt.Errorf("upsert chunks: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return statusError("upsert chunks "+docID, resp)
	}
	return nil
}

// DeleteChunks removes specific chunk ids for a document. Used after a
// re-chunk to clear entries whose ids no longer appear in the new set.
func (c *Client) DeleteChunks(ctx context.Context, docID string, chunkIDs []string) error {
	if len(chunkIDs) == 0 {
		return nil
	}
	body, err := json.Marshal(DeleteRequest{DocID: docID, ChunkIDs: chunkIDs})
	if err != nil {
		return fmt.Errorf("marshal delete: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/chunks/delete", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RetryableError{Err: fmt.Errorf("delete chunks: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("delete chunks "+docID, resp)
	}
	return nil
}

// DeleteDocument removes every indexed chunk for a document.
func (c *Client) DeleteDocument(ctx context.Context, docID string) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.baseURL+"/docs/"+docID, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return &RetryableError{Err: fmt.Errorf("delete document: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return statusError("delete document "+docID, resp)
	}
	return nil
}

// ListChunkIDs returns the chunk ids currently indexed for a document.
func (c *Client) ListChunkIDs(ctx context.Context, docID string) ([]string, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/docs/"+docID+"/chunks", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &RetryableError{Err: fmt.Errorf("list chunks: %w", err)}
	}
	defer resp.Body.Close()
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError("list chunks "+docID, resp)
	}

	var result struct {
		Chunks []ListResponse `json:"chunks"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode chunks: %w", err)
	}
	ids := make([]string, 0, len(result.Chunks))
	for _, ch := range result.Chunks {
		ids = append(ids, ch.ChunkID)
	}
	return ids, nil
}

// Close releases any resources (currently a no-op).
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}

// statusError wraps a non-success response, marking 429 and 5xx as
// retryable.
func statusError(op string, resp *http.Response) error {
	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
	err := fmt.Errorf("%s: status %d: %s", op, resp.StatusCode, string(respBody))
	if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
		return &RetryableError{Err: err}
	}
	return err
}
