// Package meili provides the Meilisearch built-in adapter, wrapping
// meilisearch-go. It registers itself when imported:
//
//	import _ "github.com/searchbridge/searchbridge/search/meili"
package meili

import (
	"errors"
	"fmt"

	"github.com/meilisearch/meilisearch-go"
)

// Client is a thin wrapper around the meilisearch-go service manager.
type Client struct {
	client meilisearch.ServiceManager
}

// SearchParams is an alias for the engine's native search request.
type SearchParams = meilisearch.SearchRequest

// NewClient creates a Meilisearch client for host.
func NewClient(host, apiKey string) *Client {
	if host == "" {
		return &Client{}
	}
	return &Client{client: meilisearch.New(host, meilisearch.WithAPIKey(apiKey))}
}

// GetClient returns the underlying meilisearch client.
func (c *Client) GetClient() meilisearch.ServiceManager {
	return c.client
}

// Search searches index.
func (c *Client) Search(index, query string, params *SearchParams) (*meilisearch.SearchResponse, error) {
	if c == nil || c.client == nil {
		return nil, errors.New("meilisearch client is nil, cannot perform search")
	}
	resp, err := c.client.Index(index).Search(query, params)
	if err != nil {
		return nil, fmt.Errorf("meilisearch search error: %w", err)
	}
	return resp, nil
}

// AddDocuments adds documents to index.
func (c *Client) AddDocuments(index string, documents []any, primaryKey ...string) error {
	if c == nil || c.client == nil {
		return errors.New("meilisearch client is nil, cannot add documents")
	}
	var pk *string
	if len(primaryKey) > 0 && primaryKey[0] != "" {
		pk = &primaryKey[0]
	}
	_, err := c.client.Index(index).AddDocuments(documents, &meilisearch.DocumentOptions{PrimaryKey: pk})
	if err != nil {
		return fmt.Errorf("meilisearch add documents error: %w", err)
	}
	return nil
}

// UpdateDocuments applies partial document updates by primary key.
func (c *Client) UpdateDocuments(index string, documents []any) error {
	if c == nil || c.client == nil {
		return errors.New("meilisearch client is nil, cannot update documents")
	}
	_, err := c.client.Index(index).UpdateDocuments(documents, &meilisearch.DocumentOptions{})
	if err != nil {
		return fmt.Errorf("meilisearch update documents error: %w", err)
	}
	return nil
}

// GetDocument fetches one document into docPtr.
func (c *Client) GetDocument(index, id string, docPtr any) error {
	if c == nil || c.client == nil {
		return errors.New("meilisearch client is nil, cannot get document")
	}
	return c.client.Index(index).GetDocument(id, nil, docPtr)
}

// DeleteDocument removes one document.
func (c *Client) DeleteDocument(index, id string) error {
	if c == nil || c.client == nil {
		return errors.New("meilisearch client is nil, cannot delete document")
	}
	_, err := c.client.Index(index).DeleteDocument(id, nil)
	return err
}

// DeleteIndex drops the whole index.
func (c *Client) DeleteIndex(index string) error {
	if c == nil || c.client == nil {
		return errors.New("meilisearch client is nil, cannot delete index")
	}
	_, err := c.client.DeleteIndex(index)
	return err
}

// GetIndex fetches index metadata.
func (c *Client) GetIndex(index string) error {
	if c == nil || c.client == nil {
		return errors.New("meilisearch client is nil, cannot get index")
	}
	_, err := c.client.GetIndex(index)
	return err
}

// Health checks engine availability.
func (c *Client) Health() error {
	if c == nil || c.client == nil {
		return errors.New("meilisearch client is nil")
	}
	_, err := c.client.Health()
	return err
}
