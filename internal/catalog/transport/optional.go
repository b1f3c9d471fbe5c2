package transport

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// OptionalDecimal distinguishes an omitted field from an explicit null.
type OptionalDecimal struct {
	Value *decimal.Decimal
	Set   bool
}

func (o OptionalDecimal) IsZero() bool {
	return !o.Set
}

func (o *OptionalDecimal) UnmarshalJSON(data []byte) error {
	o.Set = true
	if string(data) == "null" {
		o.Value = nil
		return nil
	}

	var d decimal.Decimal
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	o.Value = &d
	return nil
}
