package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrice_JSON(t *testing.T) {
	data, err := json.Marshal(FreePrice())
	require.NoError(t, err)
	assert.Equal(t, `"Free"`, string(data))

	data, err = json.Marshal(AmountPrice(150))
	require.NoError(t, err)
	assert.Equal(t, `150`, string(data))

	var p Price
	require.NoError(t, json.Unmarshal([]byte(`"Free"`), &p))
	assert.True(t, p.Free)

	require.NoError(t, json.Unmarshal([]byte(`99.5`), &p))
	assert.False(t, p.Free)
	assert.Equal(t, 99.5, p.Amount)

	require.NoError(t, json.Unmarshal([]byte(`"120"`), &p))
	assert.Equal(t, 120.0, p.Amount)

	assert.Error(t, json.Unmarshal([]byte(`"free ride"`), &p))
	assert.Error(t, json.Unmarshal([]byte(`true`), &p))
}

func TestPrice_Validate(t *testing.T) {
	tests := []struct {
		name    string
		price   Price
		wantErr bool
	}{
		{name: "free", price: FreePrice()},
		{name: "positive", price: AmountPrice(1)},
		{name: "zero", price: AmountPrice(0), wantErr: true},
		{name: "negative", price: AmountPrice(-10), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.price.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidPrice)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestPriceFromValue_FirestoreTypes(t *testing.T) {
	p, err := PriceFromValue(int64(100))
	require.NoError(t, err)
	assert.Equal(t, AmountPrice(100), p)

	p, err = PriceFromValue("Free")
	require.NoError(t, err)
	assert.Equal(t, FreePrice(), p)

	_, err = PriceFromValue(nil)
	assert.ErrorIs(t, err, ErrInvalidPrice)
}
