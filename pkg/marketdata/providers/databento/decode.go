package databento

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// priceScaleExp is the base-10 exponent of the fixed-point price encoding:
// upstream prices are integers scaled by 1e9.
const priceScaleExp = -9

// DecodeCSV parses comma-delimited tabular text into string-keyed records.
// The first non-blank line is the header; blank lines are dropped and fields
// are trimmed of surrounding whitespace. Rows shorter than the header are
// padded with empty strings; values beyond the header length are ignored.
// A header-only payload decodes to an empty slice, not an error.
func DecodeCSV(text string) []map[string]string {
	var header []string
	var records []map[string]string

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}
		fields := strings.Split(line, ",")
		for i := range fields {
			fields[i] = strings.TrimSpace(fields[i])
		}
		if header == nil {
			header = fields
			continue
		}
		record := make(map[string]string, len(header))
		for i, name := range header {
			if i < len(fields) {
				record[name] = fields[i]
			} else {
				record[name] = ""
			}
		}
		records = append(records, record)
	}
	return records
}

// decodeJSON unmarshals a JSON payload, wrapping failures in a DecodeError
// that keeps a truncated copy of the raw text.
func decodeJSON(body []byte, result any) error {
	if err := json.Unmarshal(body, result); err != nil {
		return &DecodeError{Raw: truncate(string(body), 256), Err: err}
	}
	return nil
}

// jsonBody marshals an outbound request payload.
func jsonBody(payload any) ([]byte, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("databento: encode request: %w", err)
	}
	return data, nil
}

// DecodePrice converts a fixed-point integer price to its floating-point
// value. The division happens exactly once, here, so the scale factor is not
// re-derived elsewhere.
func DecodePrice(raw int64) float64 {
	f, _ := decimal.New(raw, priceScaleExp).Float64()
	return f
}

// priceField parses a fixed-point price column from a decoded record.
func priceField(record map[string]string, name string) (float64, error) {
	raw, ok := record[name]
	if !ok || raw == "" {
		return 0, fmt.Errorf("databento: missing price field %q", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("databento: parse price field %q=%q: %w", name, raw, err)
	}
	return DecodePrice(v), nil
}

// nanosField parses a nanosecond epoch timestamp column.
func nanosField(record map[string]string, name string) (int64, error) {
	raw, ok := record[name]
	if !ok || raw == "" {
		return 0, fmt.Errorf("databento: missing timestamp field %q", name)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("databento: parse timestamp field %q=%q: %w", name, raw, err)
	}
	return v, nil
}

// volumeField parses an unscaled integer volume column.
func volumeField(record map[string]string, name string) (uint64, error) {
	raw, ok := record[name]
	if !ok || raw == "" {
		return 0, fmt.Errorf("databento: missing volume field %q", name)
	}
	v, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("databento: parse volume field %q=%q: %w", name, raw, err)
	}
	return v, nil
}
