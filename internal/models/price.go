package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// FreeLabel is the wire and storage sentinel for a free ride.
const FreeLabel = "Free"

var ErrInvalidPrice = errors.New("price must be a positive amount or \"Free\"")

// Price is either a positive amount in INR or Free.
type Price struct {
	Amount float64
	Free   bool
}

// FreePrice returns the Free sentinel.
func FreePrice() Price { return Price{Free: true} }

// AmountPrice returns a paid price.
func AmountPrice(amount float64) Price { return Price{Amount: amount} }

// Validate checks that the price is Free or a finite positive amount.
func (p Price) Validate() error {
	if p.Free {
		return nil
	}
	if math.IsNaN(p.Amount) || math.IsInf(p.Amount, 0) || p.Amount <= 0 {
		return ErrInvalidPrice
	}
	return nil
}

func (p Price) String() string {
	if p.Free {
		return FreeLabel
	}
	return strconv.FormatFloat(p.Amount, 'f', -1, 64)
}

// MarshalJSON encodes Free as "Free" and amounts as numbers.
func (p Price) MarshalJSON() ([]byte, error) {
	if p.Free {
		return json.Marshal(FreeLabel)
	}
	return json.Marshal(p.Amount)
}

// UnmarshalJSON accepts "Free", a number, or a numeric string.
func (p *Price) UnmarshalJSON(data []byte) error {
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := PriceFromValue(raw)
	if err != nil {
		return err
	}
	*p = parsed
	return nil
}

// StoredValue is the Firestore representation: the string "Free" or a number.
func (p Price) StoredValue() interface{} {
	if p.Free {
		return FreeLabel
	}
	return p.Amount
}

// PriceFromValue decodes a price from its JSON or Firestore representation.
func PriceFromValue(v interface{}) (Price, error) {
	switch val := v.(type) {
	case string:
		if val == FreeLabel {
			return FreePrice(), nil
		}
		amount, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return Price{}, fmt.Errorf("%w: %q", ErrInvalidPrice, val)
		}
		return AmountPrice(amount), nil
	case float64:
		return AmountPrice(val), nil
	case int64:
		return AmountPrice(float64(val)), nil
	case int:
		return AmountPrice(float64(val)), nil
	default:
		return Price{}, fmt.Errorf("%w: unsupported type %T", ErrInvalidPrice, v)
	}
}
