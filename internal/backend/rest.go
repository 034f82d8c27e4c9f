package backend

import (
	"context"
	"net/http"

	"github.com/tessro/lookout/internal/core"
)

// QueryAll fetches every row of a table, ordered by one column.
func (c *Client) QueryAll(ctx context.Context, table, orderBy string, order core.SortOrder, out any) error {
	params := map[string]string{"select": "*"}
	if orderBy != "" {
		if order == "" {
			order = core.Ascending
		}
		params["order"] = orderBy + "." + string(order)
	}
	return c.Get(ctx, BuildURL("/rest/v1/"+table, params), out)
}

// Insert appends one row to a table.
func (c *Client) Insert(ctx context.Context, table string, record any) error {
	return c.request(ctx, http.MethodPost, "/rest/v1/"+table, []any{record}, nil, map[string]string{
		"Prefer": "return=minimal",
	})
}
