// This file holds shared request parsing helpers: JSON body decoding with
// size limits, id extraction from path suffixes and payload types that
// bridge wire formats to the domain inputs.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fintrack/internal/core"
)

// maxBodySize bounds request bodies; the largest legitimate payload is an
// import document.
const maxBodySize = 4 << 20

// decodeJSON decodes the request body into v. Unknown fields are rejected
// so typos in payloads surface as errors instead of silent no-ops.
func decodeJSON(r *http.Request, v any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("decode request body: %w", err)
	}
	// Reject trailing garbage after the JSON document
	if dec.More() {
		return errors.New("unexpected trailing data in request body")
	}
	return nil
}

// amountField accepts a monetary amount as a JSON number or as a decimal
// string ("12.34", "12,34"). Exports from spreadsheet tools quote amounts,
// so both forms are valid on the wire.
type amountField float64

func (a *amountField) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		v, err := core.ParseAmount(s)
		if err != nil {
			return err
		}
		*a = amountField(v)
		return nil
	}
	var f float64
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	*a = amountField(f)
	return nil
}

// transactionPayload mirrors core.TransactionInput with a flexible amount.
type transactionPayload struct {
	Type        core.TransactionType `json:"type"`
	Amount      amountField          `json:"amount"`
	Category    string               `json:"category"`
	Description string               `json:"description"`
	Date        time.Time            `json:"date"`
}

func (p transactionPayload) input() core.TransactionInput {
	return core.TransactionInput{
		Type:        p.Type,
		Amount:      float64(p.Amount),
		Category:    p.Category,
		Description: p.Description,
		Date:        p.Date,
	}
}

type transactionPatchPayload struct {
	Type        *core.TransactionType `json:"type,omitempty"`
	Amount      *amountField          `json:"amount,omitempty"`
	Category    *string               `json:"category,omitempty"`
	Description *string               `json:"description,omitempty"`
	Date        *time.Time            `json:"date,omitempty"`
}

func (p transactionPatchPayload) patch() core.TransactionPatch {
	out := core.TransactionPatch{
		Type:        p.Type,
		Category:    p.Category,
		Description: p.Description,
		Date:        p.Date,
	}
	if p.Amount != nil {
		v := float64(*p.Amount)
		out.Amount = &v
	}
	return out
}

// budgetPayload mirrors core.BudgetInput with a flexible amount.
type budgetPayload struct {
	Category string            `json:"category"`
	Amount   amountField       `json:"amount"`
	Period   core.BudgetPeriod `json:"period"`
	Color    string            `json:"color"`
}

func (p budgetPayload) input() core.BudgetInput {
	return core.BudgetInput{
		Category: p.Category,
		Amount:   float64(p.Amount),
		Period:   p.Period,
		Color:    p.Color,
	}
}

type budgetPatchPayload struct {
	Category *string            `json:"category,omitempty"`
	Amount   *amountField       `json:"amount,omitempty"`
	Period   *core.BudgetPeriod `json:"period,omitempty"`
	Color    *string            `json:"color,omitempty"`
}

func (p budgetPatchPayload) patch() core.BudgetPatch {
	out := core.BudgetPatch{
		Category: p.Category,
		Period:   p.Period,
		Color:    p.Color,
	}
	if p.Amount != nil {
		v := float64(*p.Amount)
		out.Amount = &v
	}
	return out
}

// pathID extracts the id segment after the given route prefix. Returns an
// empty string when the path has no id or has extra segments.
func pathID(path, prefix string) string {
	id := strings.TrimPrefix(path, prefix)
	if id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// queryInt parses an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func queryInt(r *http.Request, name string, def int) int {
	v := strings.TrimSpace(r.URL.Query().Get(name))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
