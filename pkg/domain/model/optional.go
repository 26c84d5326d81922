package model

import (
	"bytes"
	"encoding/json"
)

// OptionalFloat is a numeric tracker field that may be absent or null.
// Absence is resolved to zero only at normalization.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Some returns a present value.
func Some(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// OrZero returns the value, or 0 when absent.
func (o OptionalFloat) OrZero() float64 {
	if !o.Valid {
		return 0
	}
	return o.Value
}

// IsSet reports whether the value is present and non-zero.
func (o OptionalFloat) IsSet() bool {
	return o.Valid && o.Value != 0
}

func (o *OptionalFloat) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*o = OptionalFloat{}
		return nil
	}
	var v float64
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*o = Some(v)
	return nil
}

func (o OptionalFloat) MarshalJSON() ([]byte, error) {
	if !o.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(o.Value)
}
