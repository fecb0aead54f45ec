package types

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mleong/mangobox-backend/pkg/enums"
)

// AppliedPromo is the promo snapshot persisted on an order, stored as jsonb.
type AppliedPromo struct {
	Code           string             `json:"code"`
	Type           enums.DiscountType `json:"type"`
	DiscountValue  decimal.Decimal    `json:"value"`
	AmountDeducted decimal.Decimal    `json:"amount_deducted"`
}

// Value implements driver.Valuer.
func (a AppliedPromo) Value() (driver.Value, error) {
	return json.Marshal(a)
}

// Scan implements sql.Scanner.
func (a *AppliedPromo) Scan(value any) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	default:
		return fmt.Errorf("applied promo: unsupported scan type %T", value)
	}
}
