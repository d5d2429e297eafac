// Package suggest wraps the generative-text provider behind two operations
// whose failures never reach the caller: a fare suggestion and a profile blurb.
package suggest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"wheelsup-backend-go/internal/models"
	"wheelsup-backend-go/internal/observability"
)

// FallbackProfileSummary is returned whenever a summary cannot be generated.
const FallbackProfileSummary = "A friendly and reliable member of the WheelsUp community."

// Defaults the post-ride form sends when it has nothing better.
const (
	DefaultDistanceMiles = 15.0
	DefaultDemandLevel   = "medium"
)

// PriceRequest is the fare suggestion input.
type PriceRequest struct {
	Origin        string  `json:"origin"`
	Destination   string  `json:"destination"`
	DistanceMiles float64 `json:"distanceMiles"`
	TimeOfDay     string  `json:"timeOfDay"`
	DemandLevel   string  `json:"demandLevel"`
}

// PriceSuggestion is the fare suggestion output.
type PriceSuggestion struct {
	PredictedPrice float64 `json:"predictedPrice"` // INR
	Reasoning      string  `json:"reasoning"`
}

// ProfileRequest is the profile summary input.
type ProfileRequest struct {
	UserName      string  `json:"userName"`
	RideHistory   string  `json:"rideHistory"`
	AverageRating float64 `json:"averageRating"`
}

type profileSummary struct {
	ProfileSummary string `json:"profileSummary"`
}

var priceSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"predictedPrice": {Type: genai.TypeNumber, Description: "The predicted price for the ride in INR."},
		"reasoning":      {Type: genai.TypeString, Description: "The reasoning behind the price prediction."},
	},
	Required: []string{"predictedPrice", "reasoning"},
}

var profileSchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"profileSummary": {Type: genai.TypeString, Description: "A short, engaging profile summary for the user."},
	},
	Required: []string{"profileSummary"},
}

// Result is the internal outcome of one provider call.
type Result[T any] struct {
	Value T
	Err   error
}

// OK reports success.
func (r Result[T]) OK() bool { return r.Err == nil }

// Gateway is the suggestion boundary. Its exported methods never return errors.
type Gateway struct {
	gen    Generator
	logger *zap.Logger
}

// NewGateway wraps gen. A nil gen behaves like Unavailable.
func NewGateway(gen Generator, logger *zap.Logger) *Gateway {
	if gen == nil {
		gen = Unavailable{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{gen: gen, logger: logger}
}

func generate[T any](ctx context.Context, gen Generator, prompt string, schema *genai.Schema, check func(T) error) Result[T] {
	var out T
	raw, err := gen.GenerateJSON(ctx, prompt, schema)
	if err != nil {
		return Result[T]{Err: err}
	}
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return Result[T]{Err: fmt.Errorf("decode model output: %w", err)}
	}
	if err := check(out); err != nil {
		return Result[T]{Err: err}
	}
	return Result[T]{Value: out}
}

func (g *Gateway) predictPrice(ctx context.Context, req PriceRequest) Result[PriceSuggestion] {
	prompt, err := render(pricePrompt, req)
	if err != nil {
		return Result[PriceSuggestion]{Err: err}
	}
	return generate(ctx, g.gen, prompt, priceSchema, func(s PriceSuggestion) error {
		if math.IsNaN(s.PredictedPrice) || math.IsInf(s.PredictedPrice, 0) || s.PredictedPrice < 0 {
			return fmt.Errorf("implausible predicted price %v", s.PredictedPrice)
		}
		return nil
	})
}

func (g *Gateway) summarize(ctx context.Context, req ProfileRequest) Result[string] {
	prompt, err := render(profilePrompt, req)
	if err != nil {
		return Result[string]{Err: err}
	}
	res := generate(ctx, g.gen, prompt, profileSchema, func(s profileSummary) error {
		if strings.TrimSpace(s.ProfileSummary) == "" {
			return errors.New("empty profile summary")
		}
		return nil
	})
	return Result[string]{Value: strings.TrimSpace(res.Value.ProfileSummary), Err: res.Err}
}

// SuggestPrice returns a fare suggestion, or nil when none is available.
func (g *Gateway) SuggestPrice(ctx context.Context, req PriceRequest) *PriceSuggestion {
	res := g.predictPrice(ctx, req)
	if !res.OK() {
		observability.SuggestionOutcomes.WithLabelValues("price", "fallback").Inc()
		g.logger.Warn("Price suggestion unavailable",
			zap.String("origin", req.Origin), zap.String("destination", req.Destination), zap.Error(res.Err))
		return nil
	}
	observability.SuggestionOutcomes.WithLabelValues("price", "ok").Inc()
	s := res.Value
	return &s
}

// SummarizeProfile returns a generated summary or FallbackProfileSummary.
func (g *Gateway) SummarizeProfile(ctx context.Context, req ProfileRequest) string {
	res := g.summarize(ctx, req)
	if !res.OK() {
		observability.SuggestionOutcomes.WithLabelValues("profile", "fallback").Inc()
		g.logger.Warn("Profile summary unavailable", zap.String("userName", req.UserName), zap.Error(res.Err))
		return FallbackProfileSummary
	}
	observability.SuggestionOutcomes.WithLabelValues("profile", "ok").Inc()
	return res.Value
}

// ProfileRequestFor builds the summary input from a stored profile.
func ProfileRequestFor(u models.User) ProfileRequest {
	return ProfileRequest{
		UserName: u.Name,
		RideHistory: fmt.Sprintf("Driver: %d rides, Passenger: %d rides. Member since %s.",
			u.RidesAsDriver, u.RidesAsPassenger, u.MemberSince.Format("1/2/2006")),
		AverageRating: u.Rating,
	}
}

// TimeOfDay buckets an hour the way the post-ride form does.
func TimeOfDay(hour int) string {
	switch {
	case hour < 12:
		return "morning"
	case hour < 18:
		return "afternoon"
	default:
		return "evening"
	}
}
