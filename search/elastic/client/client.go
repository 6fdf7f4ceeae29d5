// Package client wraps the official go-elasticsearch client behind the
// small surface the adapter needs.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

// Client is a thin wrapper around the go-elasticsearch client.
type Client struct {
	client *elasticsearch.Client
}

// NewClient creates an Elasticsearch client for addresses.
func NewClient(addresses []string, username, password string) (*Client, error) {
	if len(addresses) == 0 {
		return &Client{}, nil
	}

	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
		Username:  username,
		Password:  password,
	})
	if err != nil {
		return nil, fmt.Errorf("elasticsearch client creation error: %w", err)
	}
	return &Client{client: es}, nil
}

// GetClient returns the underlying elasticsearch client.
func (c *Client) GetClient() *elasticsearch.Client {
	return c.client
}

// Search runs a search with the given JSON body and decodes the
// response into out.
func (c *Client) Search(ctx context.Context, index, body string, out any) error {
	if c == nil || c.client == nil {
		return errors.New("elasticsearch client is nil, cannot perform search")
	}

	res, err := c.client.Search(
		c.client.Search.WithContext(ctx),
		c.client.Search.WithIndex(index),
		c.client.Search.WithBody(strings.NewReader(body)),
		c.client.Search.WithTrackTotalHits(true),
	)
	if err != nil {
		return err
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("search", res)
	}
	if err := json.NewDecoder(res.Body).Decode(out); err != nil {
		return fmt.Errorf("elasticsearch parsing error: %w", err)
	}
	return nil
}

// IndexDocument indexes one document under documentID.
func (c *Client) IndexDocument(ctx context.Context, index, documentID string, document any) error {
	if c == nil || c.client == nil {
		return errors.New("elasticsearch client is nil, cannot index documents")
	}

	var b strings.Builder
	if err := json.NewEncoder(&b).Encode(document); err != nil {
		return fmt.Errorf("error encoding document: %w", err)
	}

	req := esapi.IndexRequest{
		Index:      index,
		DocumentID: documentID,
		Body:       strings.NewReader(b.String()),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("indexing", res)
	}
	return nil
}

// UpdateDocument applies a partial update to documentID.
func (c *Client) UpdateDocument(ctx context.Context, index, documentID string, partial any) error {
	if c == nil || c.client == nil {
		return errors.New("elasticsearch client is nil, cannot update documents")
	}

	var b strings.Builder
	if err := json.NewEncoder(&b).Encode(map[string]any{"doc": partial}); err != nil {
		return fmt.Errorf("error encoding document: %w", err)
	}

	req := esapi.UpdateRequest{
		Index:      index,
		DocumentID: documentID,
		Body:       strings.NewReader(b.String()),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("update", res)
	}
	return nil
}

// GetDocument fetches the stored source of documentID.
func (c *Client) GetDocument(ctx context.Context, index, documentID string) (map[string]any, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("elasticsearch client is nil, cannot get documents")
	}

	req := esapi.GetRequest{Index: index, DocumentID: documentID}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return nil, err
	}
	defer closeBody(res)

	if res.IsError() {
		return nil, responseError("get", res)
	}
	var body struct {
		Source map[string]any `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("elasticsearch parsing error: %w", err)
	}
	return body.Source, nil
}

// DeleteDocument removes documentID from index.
func (c *Client) DeleteDocument(ctx context.Context, index, documentID string) error {
	if c == nil || c.client == nil {
		return errors.New("elasticsearch client is nil, cannot delete documents")
	}

	req := esapi.DeleteRequest{
		Index:      index,
		DocumentID: documentID,
		Refresh:    "true",
	}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("deletion", res)
	}
	return nil
}

// DeleteIndex drops the whole index.
func (c *Client) DeleteIndex(ctx context.Context, index string) error {
	if c == nil || c.client == nil {
		return errors.New("elasticsearch client is nil, cannot delete index")
	}

	req := esapi.IndicesDeleteRequest{Index: []string{index}}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return err
	}
	defer closeBody(res)

	if res.IsError() {
		return responseError("delete index", res)
	}
	return nil
}

// IndexExists reports whether index exists.
func (c *Client) IndexExists(ctx context.Context, index string) (bool, error) {
	if c == nil || c.client == nil {
		return false, errors.New("elasticsearch client is nil, cannot check index")
	}

	req := esapi.IndicesExistsRequest{Index: []string{index}}
	res, err := req.Do(ctx, c.client)
	if err != nil {
		return false, err
	}
	defer closeBody(res)

	if res.StatusCode == 404 {
		return false, nil
	}
	if res.IsError() {
		return false, responseError("index exists", res)
	}
	return true, nil
}

// responseError turns an error response into a Go error carrying the
// engine's error type, so callers can classify it.
func responseError(op string, res *esapi.Response) error {
	var body struct {
		Error struct {
			Type   string `json:"type"`
			Reason string `json:"reason"`
		} `json:"error"`
	}
	if err := json.NewDecoder(res.Body).Decode(&body); err != nil || body.Error.Type == "" {
		return fmt.Errorf("elasticsearch %s error: %s", op, res.Status())
	}
	return fmt.Errorf("elasticsearch %s error: %s: %s: %s", op, res.Status(), body.Error.Type, body.Error.Reason)
}

// IsAPIError reports whether err is an engine-level error response, as
// opposed to a transport failure.
func IsAPIError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "elasticsearch") &&
		strings.Contains(err.Error(), "error:")
}

// IsNotFound reports whether err reports a missing index or document.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "index_not_found_exception") ||
		strings.Contains(err.Error(), "404")
}

func closeBody(res *esapi.Response) {
	if res != nil && res.Body != nil {
		_, _ = io.Copy(io.Discard, res.Body)
		_ = res.Body.Close()
	}
}
