package models

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money is a two-decimal amount. JSON output is a fixed-point string ("45.00").
type Money struct {
	decimal.Decimal
}

func NewMoney(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

func MustMoney(s string) Money {
	return NewMoney(decimal.RequireFromString(s))
}

func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON accepts both "10.50" and 10.5.
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	d, err := decimal.NewFromString(string(b))
	if err != nil {
		return err
	}
	m.Decimal = d.Round(2)
	return nil
}

func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(2).Value()
}

func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(2)
	return nil
}

func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}
