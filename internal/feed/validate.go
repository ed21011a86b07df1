package feed

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"mirror/internal/logger"
	"mirror/internal/model"
)

// recordSchema gates field presence and primitive types before the invariant
// checks run. Numeric and date invariants stay in code; the schema only
// answers "is this shaped like a trade record".
const recordSchema = `{
	"type": "object",
	"required": ["symbol", "transaction_type", "shares", "price", "value", "filing_date"],
	"properties": {
		"symbol": {"type": "string", "minLength": 1},
		"transaction_type": {"type": "string"},
		"shares": {"type": "number"},
		"price": {"type": "number"},
		"value": {"type": "number"},
		"filing_date": {"type": "string"}
	}
}`

var filingDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Validator normalizes raw provider records into TradeRecords. Individual
// bad records are dropped and counted, never raised.
type Validator struct {
	schema *jsonschema.Schema
}

func NewValidator() (*Validator, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("trade_record.json", strings.NewReader(recordSchema)); err != nil {
		return nil, err
	}
	schema, err := compiler.Compile("trade_record.json")
	if err != nil {
		return nil, fmt.Errorf("compiling trade record schema failed: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate returns the conforming subset of records plus the dropped count.
func (v *Validator) Validate(records []RawRecord) ([]model.TradeRecord, int) {
	out := make([]model.TradeRecord, 0, len(records))
	dropped := 0
	for _, rec := range records {
		trade, ok := v.validateRecord(rec)
		if !ok {
			dropped++
			continue
		}
		out = append(out, trade)
	}
	if dropped > 0 {
		logger.Debugf("validator: dropped %d of %d records", dropped, len(records))
	}
	return out, dropped
}

func (v *Validator) validateRecord(rec RawRecord) (model.TradeRecord, bool) {
	if rec == nil {
		return model.TradeRecord{}, false
	}
	if err := v.schema.Validate(map[string]any(rec)); err != nil {
		return model.TradeRecord{}, false
	}

	symbol, _ := rec["symbol"].(string)
	txRaw, _ := rec["transaction_type"].(string)
	shares := asFloat(rec["shares"])
	price := asFloat(rec["price"])
	value := asFloat(rec["value"])
	dateRaw, _ := rec["filing_date"].(string)

	txType, ok := model.ParseTransactionType(txRaw)
	if !ok {
		return model.TradeRecord{}, false
	}
	if shares <= 0 || price <= 0 {
		return model.TradeRecord{}, false
	}
	// Exact check against the provider-supplied value. A consistent provider
	// never trips this; any drift is treated as corruption.
	if value != shares*price {
		return model.TradeRecord{}, false
	}
	filingDate, ok := parseFilingDate(dateRaw)
	if !ok {
		return model.TradeRecord{}, false
	}

	return model.TradeRecord{
		Symbol:          symbol,
		TransactionType: txType,
		Shares:          shares,
		Price:           price,
		Value:           value,
		FilingDate:      filingDate,
	}, true
}

func parseFilingDate(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if strings.HasSuffix(raw, "Z") {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, true
		}
		raw = strings.TrimSuffix(raw, "Z")
	}
	for _, layout := range filingDateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	default:
		return 0
	}
}
