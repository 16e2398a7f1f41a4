package databento

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// CorporateActionsRequest carries parameters for a corporate-actions lookup.
type CorporateActionsRequest struct {
	Dataset string
	Symbols []string
	STypeIn string
	Start   string
	End     string
	Events  []string
}

// CorporateAction is one corporate-action event row.
type CorporateAction struct {
	Symbol        string         `json:"symbol"`
	EventType     string         `json:"event_type"`
	EffectiveDate string         `json:"effective_date"`
	AnnouncedDate string         `json:"announced_date"`
	Detail        map[string]any `json:"detail"`
}

// CorporateActions fetches corporate-action events for the requested symbols
// and date range. A plain parameter-to-query mapping; no derived computation.
func (c *Client) CorporateActions(ctx context.Context, req CorporateActionsRequest) ([]CorporateAction, error) {
	if len(req.Symbols) == 0 {
		return nil, fmt.Errorf("databento: corporate actions: at least one symbol required")
	}
	if req.Start == "" {
		return nil, fmt.Errorf("databento: corporate actions: start is required")
	}
	if req.Dataset == "" {
		req.Dataset = c.dataset
	}

	query := url.Values{
		"dataset": {req.Dataset},
		"symbols": {strings.Join(req.Symbols, ",")},
		"start":   {req.Start},
	}
	if req.End != "" {
		query.Set("end", req.End)
	}
	if req.STypeIn != "" {
		query.Set("stype_in", req.STypeIn)
	}
	if len(req.Events) > 0 {
		query.Set("events", strings.Join(req.Events, ","))
	}

	var actions []CorporateAction
	if err := c.getJSON(ctx, "/corporate_actions.get_range", query, &actions); err != nil {
		return nil, fmt.Errorf("databento: corporate actions: %w", err)
	}
	return actions, nil
}
