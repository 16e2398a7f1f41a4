package databento

import (
	"context"
	"fmt"
	"net/url"
	"strings"
)

// BatchJobRequest describes a historical data extraction job.
type BatchJobRequest struct {
	Dataset  string
	Symbols  []string
	Schema   string
	Start    string
	End      string
	Encoding string
	STypeIn  string
	Delivery string
	Split    string
}

// BatchJob is the job descriptor returned on submission.
type BatchJob struct {
	ID          string  `json:"id"`
	State       string  `json:"state"`
	Dataset     string  `json:"dataset"`
	Schema      string  `json:"schema"`
	Symbols     string  `json:"symbols"`
	Start       string  `json:"start"`
	End         string  `json:"end"`
	Encoding    string  `json:"encoding"`
	CostUSD     float64 `json:"cost_usd"`
	RecordCount int64   `json:"record_count"`
	BilledSize  int64   `json:"billed_size"`
	TsReceived  string  `json:"ts_received"`
}

// SubmitBatchJob submits an asynchronous extraction job. The endpoint takes a
// form-encoded body; multi-valued fields are joined with commas.
func (c *Client) SubmitBatchJob(ctx context.Context, req BatchJobRequest) (*BatchJob, error) {
	if len(req.Symbols) == 0 {
		return nil, fmt.Errorf("databento: batch job: at least one symbol required")
	}
	if req.Schema == "" || req.Start == "" {
		return nil, fmt.Errorf("databento: batch job: schema and start are required")
	}
	if req.Dataset == "" {
		req.Dataset = c.dataset
	}

	form := url.Values{
		"dataset": {req.Dataset},
		"symbols": {strings.Join(req.Symbols, ",")},
		"schema":  {req.Schema},
		"start":   {req.Start},
	}
	setIfPresent := func(key, val string) {
		if val != "" {
			form.Set(key, val)
		}
	}
	setIfPresent("end", req.End)
	setIfPresent("encoding", req.Encoding)
	setIfPresent("stype_in", req.STypeIn)
	setIfPresent("delivery", req.Delivery)
	setIfPresent("split_duration", req.Split)

	var job BatchJob
	if err := c.postForm(ctx, "/batch.submit_job", form, &job); err != nil {
		return nil, fmt.Errorf("databento: submit batch job: %w", err)
	}
	return &job, nil
}
