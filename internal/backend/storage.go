package backend

import (
	"context"

	"github.com/tessro/lookout/internal/core"
)

type listRequest struct {
	Prefix string      `json:"prefix"`
	Limit  int         `json:"limit"`
	Offset int         `json:"offset"`
	SortBy core.SortBy `json:"sortBy"`
}

// ListObjects lists the objects stored under prefix in the configured bucket.
func (c *Client) ListObjects(ctx context.Context, prefix string, opts core.ListOptions) ([]core.StorageObject, error) {
	body := listRequest{
		Prefix: prefix,
		Limit:  opts.Limit,
		Offset: opts.Offset,
		SortBy: opts.SortBy,
	}

	var objects []core.StorageObject
	if err := c.Post(ctx, "/storage/v1/object/list/"+c.bucket, body, &objects); err != nil {
		return nil, err
	}
	return objects, nil
}

// PublicURL resolves the public address of prefix/name. It never fails.
func (c *Client) PublicURL(prefix, name string) string {
	path := name
	if prefix != "" {
		path = prefix + "/" + name
	}
	return c.publicURL.ExecuteString(map[string]interface{}{
		"url":    c.baseURL,
		"bucket": c.bucket,
		"path":   path,
	})
}

// Bucket returns the storage bucket this client lists.
func (c *Client) Bucket() string {
	return c.bucket
}
