package databento

import (
	"context"
	"fmt"
)

// SymbologyRequest carries parameters for a symbology.resolve call.
type SymbologyRequest struct {
	Dataset   string   `json:"dataset"`
	Symbols   []string `json:"symbols"`
	STypeIn   string   `json:"stype_in"`
	STypeOut  string   `json:"stype_out"`
	StartDate string   `json:"start_date"`
	EndDate   string   `json:"end_date,omitempty"`
}

// SymbologyMapping is one resolved interval for an input symbol.
type SymbologyMapping struct {
	StartDate string `json:"d0"`
	EndDate   string `json:"d1"`
	Symbol    string `json:"s"`
}

// SymbologyResolution is the response of a symbology.resolve call.
type SymbologyResolution struct {
	Result   map[string][]SymbologyMapping `json:"result"`
	Partial  []string                      `json:"partial"`
	NotFound []string                      `json:"not_found"`
	Message  string                        `json:"message"`
	Status   int                           `json:"status"`
}

// ResolveSymbols maps symbols between symbology types, e.g. continuous
// notation to raw instrument identifiers.
func (c *Client) ResolveSymbols(ctx context.Context, req SymbologyRequest) (*SymbologyResolution, error) {
	if req.Dataset == "" {
		req.Dataset = c.dataset
	}
	if len(req.Symbols) == 0 {
		return nil, fmt.Errorf("databento: resolve: at least one symbol required")
	}
	var resolution SymbologyResolution
	if err := c.postJSON(ctx, "/symbology.resolve", req, &resolution); err != nil {
		return nil, fmt.Errorf("databento: resolve symbols: %w", err)
	}
	return &resolution, nil
}
