package databento

import (
	"context"
	"fmt"
	"net/url"
)

// ListDatasets returns the dataset identifiers the account can query.
func (c *Client) ListDatasets(ctx context.Context) ([]string, error) {
	var datasets []string
	if err := c.getJSON(ctx, "/metadata.list_datasets", nil, &datasets); err != nil {
		return nil, fmt.Errorf("databento: list datasets: %w", err)
	}
	return datasets, nil
}

// ListSchemas returns the record schemas available for a dataset.
func (c *Client) ListSchemas(ctx context.Context, dataset string) ([]string, error) {
	if dataset == "" {
		dataset = c.dataset
	}
	query := url.Values{"dataset": {dataset}}
	var schemas []string
	if err := c.getJSON(ctx, "/metadata.list_schemas", query, &schemas); err != nil {
		return nil, fmt.Errorf("databento: list schemas %s: %w", dataset, err)
	}
	return schemas, nil
}
