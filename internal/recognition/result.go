// Package recognition turns the loosely-typed drug-recognition payload of the
// backend into a single Result shape. Field names vary between backend
// versions (drugName or drug_name, sideEffects or side_effects, ...) and
// confidence may arrive as a fraction, a percentage or a numeric string.
package recognition

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrUnexpectedPayload is returned when the payload is not a JSON object.
var ErrUnexpectedPayload = errors.New("recognition payload is not an object")

var hundred = decimal.NewFromInt(100)

// Result is the normalized recognition outcome.
type Result struct {
	DrugName        string           `json:"drugName"`
	Description     string           `json:"description,omitempty"`
	Uses            []string         `json:"uses,omitempty"`
	Dosage          string           `json:"dosage,omitempty"`
	Warnings        []string         `json:"warnings,omitempty"`
	SideEffects     []string         `json:"sideEffects,omitempty"`
	Recommendations []string         `json:"recommendations,omitempty"`
	Confidence      *decimal.Decimal `json:"confidence,omitempty"`
	Raw             map[string]any   `json:"raw,omitempty"`
}

// ConfidencePercent renders confidence as a whole percentage, or "" if unknown.
func (r *Result) ConfidencePercent() string {
	if r == nil || r.Confidence == nil {
		return ""
	}
	return r.Confidence.Mul(hundred).Round(0).String() + "%"
}

// Normalize maps payload onto a Result. payload is what the API client
// returned: a map decoded from JSON, or a JSON string.
func Normalize(payload any) (*Result, error) {
	obj, err := asObject(payload)
	if err != nil {
		return nil, err
	}
	// some backends nest the answer under "result" or "data"
	for _, k := range []string{"result", "data"} {
		if inner, ok := obj[k].(map[string]any); ok && firstString(obj, "drugName", "drug_name", "name") == "" {
			obj = inner
			break
		}
	}

	r := &Result{
		DrugName:        firstString(obj, "drugName", "drug_name", "name"),
		Description:     firstString(obj, "description", "purpose"),
		Uses:            firstList(obj, "uses", "indications"),
		Dosage:          firstString(obj, "dosage", "dose"),
		Warnings:        firstList(obj, "warnings"),
		SideEffects:     firstList(obj, "sideEffects", "side_effects"),
		Recommendations: firstList(obj, "recommendations"),
		Raw:             obj,
	}
	if c, ok := confidence(obj["confidence"]); ok {
		r.Confidence = &c
	}
	return r, nil
}

func asObject(payload any) (map[string]any, error) {
	switch v := payload.(type) {
	case map[string]any:
		return v, nil
	case string:
		dec := json.NewDecoder(strings.NewReader(v))
		dec.UseNumber()
		var m map[string]any
		if err := dec.Decode(&m); err != nil || m == nil {
			return nil, ErrUnexpectedPayload
		}
		return m, nil
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnexpectedPayload, payload)
	}
}

func firstString(obj map[string]any, keys ...string) string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return s
			}
		case json.Number:
			return v.String()
		}
	}
	return ""
}

// firstList accepts an array of strings or a single string; blank entries
// are dropped.
func firstList(obj map[string]any, keys ...string) []string {
	for _, k := range keys {
		switch v := obj[k].(type) {
		case []any:
			out := make([]string, 0, len(v))
			for _, it := range v {
				if s, ok := it.(string); ok && strings.TrimSpace(s) != "" {
					out = append(out, strings.TrimSpace(s))
				}
			}
			if len(out) > 0 {
				return out
			}
		case []string:
			if len(v) > 0 {
				return append([]string(nil), v...)
			}
		case string:
			if s := strings.TrimSpace(v); s != "" {
				return []string{s}
			}
		}
	}
	return nil
}

// confidence parses v into [0,1]. Values in (1,100] are percentages.
func confidence(v any) (decimal.Decimal, bool) {
	var d decimal.Decimal
	var err error
	switch n := v.(type) {
	case json.Number:
		d, err = decimal.NewFromString(n.String())
	case float64:
		d = decimal.NewFromFloat(n)
	case int:
		d = decimal.NewFromInt(int64(n))
	case string:
		d, err = decimal.NewFromString(strings.TrimSuffix(strings.TrimSpace(n), "%"))
	default:
		return decimal.Decimal{}, false
	}
	if err != nil || d.IsNegative() {
		return decimal.Decimal{}, false
	}
	if d.GreaterThan(decimal.NewFromInt(1)) {
		if d.GreaterThan(hundred) {
			return decimal.Decimal{}, false
		}
		d = d.Div(hundred)
	}
	return d, true
}
