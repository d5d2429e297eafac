package core

import (
	"context"

	"wheelsup-backend-go/internal/models"
)

// RideService is the ride half of the store.
type RideService interface {
	ListRides() []models.Ride
	SearchRides(filter models.RideFilter) []models.Ride
	GetRide(ctx context.Context, rideID string) (models.Ride, error)
	// Subscribe delivers the current ride list and every later one until ctx is
	// done or the returned func is called.
	Subscribe(ctx context.Context) (<-chan []models.Ride, func())
	AddRide(ctx context.Context, ride models.Ride) (string, error)
	UpdateRide(ctx context.Context, rideID string, update models.RideUpdate) error
	BookSeat(ctx context.Context, rideID, passengerID string) (models.Ride, error)
}

// ConversationService is the chat half of the store.
type ConversationService interface {
	GetConversation(participantIDs []string) (models.Conversation, bool)
	CreateConversation(conv models.Conversation)
	SendMessage(conversationID string, msg models.Message) bool
	Conversation(conversationID string) (models.Conversation, bool)
	ConversationsFor(userID string) []models.Conversation
	Open(ctx context.Context, me, other models.User, rideID string) (models.Conversation, bool)
	Post(ctx context.Context, conversationID, senderID, text string) (models.Message, error)
}

// UserService manages stored member profiles.
type UserService interface {
	// GetOrCreate returns the stored profile for profile.ID, creating it from
	// profile when missing. The bool reports whether it was created.
	GetOrCreate(ctx context.Context, profile models.User) (*models.User, bool, error)
	GetByID(ctx context.Context, userID string) (*models.User, error)
	UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error)
	VerifyPhone(ctx context.Context, userID string, req models.VerifyPhoneRequest) (*models.User, error)
}

// AnalyticsService counts visitors.
type AnalyticsService interface {
	RecordVisit(ctx context.Context, visitorID string) int64
}

// WelcomeMailer greets newly created members.
type WelcomeMailer interface {
	SendWelcome(ctx context.Context, user models.User) error
}

// PhoneVerifier checks a one-time code sent to a phone number.
type PhoneVerifier interface {
	Verify(ctx context.Context, phoneNumber, code string) error
}
