package api

import (
	"encoding/json"
	"strconv"
	"strings"
)

// Validator coerces caller-supplied parameters separate from HTTP concerns.
// Both inbound surfaces tolerate sloppy input: a bad category code falls back
// to the configured default and a bad limit falls back to the service
// default, so coercion never produces an error here.
type Validator struct{}

// NewValidator creates a Validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ParseCategoryCode extracts a positive category code from a raw JSON value.
// Returns 0 when the value is absent or non-numeric, which downstream treats
// as "use the configured default".
func (v *Validator) ParseCategoryCode(raw any) int {
	switch value := raw.(type) {
	case float64:
		code := int(value)
		if code > 0 {
			return code
		}
	case json.Number:
		if code, err := value.Int64(); err == nil && code > 0 {
			return int(code)
		}
	case string:
		if code, err := strconv.Atoi(strings.TrimSpace(value)); err == nil && code > 0 {
			return code
		}
	}
	return 0
}

// ParseItemID extracts a positive item id. Returns 0 for an absent or
// non-numeric value; unlike category and limit there is no default to fall
// back to, so the handler rejects it.
func (v *Validator) ParseItemID(raw string) int64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0
	}

	return id
}

// ParseLimit extracts a positive result limit. Returns 0 for an absent,
// zero, negative, or non-numeric value, which downstream coerces to its
// default.
func (v *Validator) ParseLimit(raw string) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0
	}

	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return 0
	}

	return limit
}
