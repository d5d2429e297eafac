package suggest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"

	"wheelsup-backend-go/internal/models"
)

// MockGenerator is a mock implementation of Generator.
type MockGenerator struct {
	mock.Mock
}

func (m *MockGenerator) GenerateJSON(ctx context.Context, prompt string, schema *genai.Schema) (string, error) {
	args := m.Called(ctx, prompt, schema)
	return args.String(0), args.Error(1)
}

var priceReq = PriceRequest{
	Origin:        "Gate 1",
	Destination:   "Banjara Hills",
	DistanceMiles: 15,
	TimeOfDay:     "morning",
	DemandLevel:   "medium",
}

func TestGateway_SuggestPrice(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		err  error
		want *PriceSuggestion
	}{
		{
			name: "valid output",
			raw:  `{"predictedPrice": 180, "reasoning": "Morning rush on the Gachibowli flyover."}`,
			want: &PriceSuggestion{PredictedPrice: 180, Reasoning: "Morning rush on the Gachibowli flyover."},
		},
		{name: "provider error", err: errors.New("503 from provider")},
		{name: "malformed json", raw: `{"predictedPrice": "lots"`},
		{name: "negative price", raw: `{"predictedPrice": -5, "reasoning": "?"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gen := &MockGenerator{}
			gen.On("GenerateJSON", mock.Anything, mock.MatchedBy(func(p string) bool {
				return assert.Contains(t, p, "Origin: Gate 1") &&
					assert.Contains(t, p, "Distance: 15.0 miles") &&
					assert.Contains(t, p, "Demand Level: medium")
			}), priceSchema).Return(tt.raw, tt.err)

			got := NewGateway(gen, nil).SuggestPrice(context.Background(), priceReq)

			assert.Equal(t, tt.want, got)
			gen.AssertExpectations(t)
		})
	}
}

func TestGateway_SummarizeProfile(t *testing.T) {
	gen := &MockGenerator{}
	gen.On("GenerateJSON", mock.Anything, mock.Anything, profileSchema).
		Return(`{"profileSummary": "  Arjun is a top-rated driver.  "}`, nil).Once()
	gen.On("GenerateJSON", mock.Anything, mock.Anything, profileSchema).
		Return("", errors.New("quota exceeded")).Once()
	gen.On("GenerateJSON", mock.Anything, mock.Anything, profileSchema).
		Return(`{"profileSummary": ""}`, nil).Once()

	g := NewGateway(gen, nil)
	req := ProfileRequest{UserName: "Arjun Reddy", RideHistory: "Driver: 25 rides", AverageRating: 4.9}

	assert.Equal(t, "Arjun is a top-rated driver.", g.SummarizeProfile(context.Background(), req))
	assert.Equal(t, FallbackProfileSummary, g.SummarizeProfile(context.Background(), req))
	assert.Equal(t, FallbackProfileSummary, g.SummarizeProfile(context.Background(), req))
	gen.AssertExpectations(t)
}

func TestGateway_NilGeneratorFallsBack(t *testing.T) {
	g := NewGateway(nil, nil)
	assert.Nil(t, g.SuggestPrice(context.Background(), priceReq))
	assert.Equal(t, "A friendly and reliable member of the WheelsUp community.",
		g.SummarizeProfile(context.Background(), ProfileRequest{UserName: "x"}))
}

func TestGateway_ResultCarriesError(t *testing.T) {
	g := NewGateway(Unavailable{}, nil)
	res := g.predictPrice(context.Background(), priceReq)
	require.False(t, res.OK())
	assert.ErrorIs(t, res.Err, ErrUnavailable)
}

func TestProfileRequestFor(t *testing.T) {
	req := ProfileRequestFor(models.User{
		Name:             "Arjun Reddy",
		Rating:           4.9,
		RidesAsDriver:    25,
		RidesAsPassenger: 10,
		MemberSince:      time.Date(2022, 8, 15, 0, 0, 0, 0, time.UTC),
	})
	assert.Equal(t, "Arjun Reddy", req.UserName)
	assert.Equal(t, 4.9, req.AverageRating)
	assert.Equal(t, "Driver: 25 rides, Passenger: 10 rides. Member since 8/15/2022.", req.RideHistory)
}

func TestTimeOfDay(t *testing.T) {
	assert.Equal(t, "morning", TimeOfDay(0))
	assert.Equal(t, "morning", TimeOfDay(11))
	assert.Equal(t, "afternoon", TimeOfDay(12))
	assert.Equal(t, "afternoon", TimeOfDay(17))
	assert.Equal(t, "evening", TimeOfDay(18))
}
