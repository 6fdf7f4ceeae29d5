// Package client wraps the official typesense-go client behind the
// small surface the adapter needs.
package client

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/typesense/typesense-go/v2/typesense"
	"github.com/typesense/typesense-go/v2/typesense/api"
)

// Client is a thin wrapper around the typesense-go client.
type Client struct {
	client *typesense.Client
}

// SearchParams is an alias for the engine's native search parameters.
type SearchParams = api.SearchCollectionParams

// NewClient creates a Typesense client for serverURL.
func NewClient(serverURL, apiKey string) *Client {
	if serverURL == "" {
		return &Client{}
	}
	return &Client{client: typesense.NewClient(
		typesense.WithServer(serverURL),
		typesense.WithAPIKey(apiKey),
		typesense.WithConnectionTimeout(5*time.Second),
	)}
}

// GetClient returns the underlying typesense client.
func (c *Client) GetClient() *typesense.Client {
	return c.client
}

// EnsureCollection creates collection with an auto-typed schema when
// it does not exist yet.
func (c *Client) EnsureCollection(ctx context.Context, collection string) error {
	if c == nil || c.client == nil {
		return errors.New("typesense client is nil, cannot create collection")
	}
	_, err := c.client.Collection(collection).Retrieve(ctx)
	if err == nil {
		return nil
	}
	if !IsNotFound(err) {
		return err
	}
	_, err = c.client.Collections().Create(ctx, &api.CollectionSchema{
		Name: collection,
		Fields: []api.Field{
			{Name: ".*", Type: "auto"},
		},
	})
	return err
}

// Upsert adds or replaces one document.
func (c *Client) Upsert(ctx context.Context, collection string, document any) error {
	if c == nil || c.client == nil {
		return errors.New("typesense client is nil, cannot upsert document")
	}
	_, err := c.client.Collection(collection).Documents().Upsert(ctx, document)
	if err != nil {
		return fmt.Errorf("typesense upsert error: %w", err)
	}
	return nil
}

// Update applies a partial update to the document with id.
func (c *Client) Update(ctx context.Context, collection, id string, partial any) error {
	if c == nil || c.client == nil {
		return errors.New("typesense client is nil, cannot update document")
	}
	_, err := c.client.Collection(collection).Document(id).Update(ctx, partial)
	if err != nil {
		return fmt.Errorf("typesense update error: %w", err)
	}
	return nil
}

// Retrieve fetches one document by id.
func (c *Client) Retrieve(ctx context.Context, collection, id string) (map[string]any, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("typesense client is nil, cannot retrieve document")
	}
	doc, err := c.client.Collection(collection).Document(id).Retrieve(ctx)
	if err != nil {
		return nil, fmt.Errorf("typesense retrieve error: %w", err)
	}
	return doc, nil
}

// Delete removes one document by id.
func (c *Client) Delete(ctx context.Context, collection, id string) error {
	if c == nil || c.client == nil {
		return errors.New("typesense client is nil, cannot delete document")
	}
	_, err := c.client.Collection(collection).Document(id).Delete(ctx)
	if err != nil {
		return fmt.Errorf("typesense delete error: %w", err)
	}
	return nil
}

// Search runs a collection search.
func (c *Client) Search(ctx context.Context, collection string, params *SearchParams) (*api.SearchResult, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("typesense client is nil, cannot perform search")
	}
	res, err := c.client.Collection(collection).Documents().Search(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("typesense search error: %w", err)
	}
	return res, nil
}

// DeleteCollection drops the whole collection.
func (c *Client) DeleteCollection(ctx context.Context, collection string) error {
	if c == nil || c.client == nil {
		return errors.New("typesense client is nil, cannot delete collection")
	}
	_, err := c.client.Collection(collection).Delete(ctx)
	if err != nil {
		return fmt.Errorf("typesense delete collection error: %w", err)
	}
	return nil
}

// CollectionExists reports whether collection exists.
func (c *Client) CollectionExists(ctx context.Context, collection string) (bool, error) {
	if c == nil || c.client == nil {
		return false, errors.New("typesense client is nil, cannot check collection")
	}
	_, err := c.client.Collection(collection).Retrieve(ctx)
	if err != nil {
		if IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Health checks engine availability.
func (c *Client) Health(ctx context.Context) error {
	if c == nil || c.client == nil {
		return errors.New("typesense client is nil")
	}
	_, err := c.client.Health(ctx, 2*time.Second)
	return err
}

// IsAPIError reports whether err is an engine-level HTTP error, as
// opposed to a transport failure.
func IsAPIError(err error) bool {
	var httpErr *typesense.HTTPError
	return errors.As(err, &httpErr)
}

// IsNotFound reports whether err is an HTTP 404 from the engine.
func IsNotFound(err error) bool {
	var httpErr *typesense.HTTPError
	if errors.As(err, &httpErr) {
		return httpErr.Status == 404
	}
	return false
}
