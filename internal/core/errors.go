package core

import "errors"

var (
	ErrRideNotFound            = errors.New("ride not found")
	ErrNoSeatsAvailable        = errors.New("no seats available on this ride")
	ErrOwnRide                 = errors.New("drivers cannot book their own ride")
	ErrInvalidSeats            = errors.New("available seats cannot be negative")
	ErrEmptyUpdate             = errors.New("update contains no fields")
	ErrConversationNotFound    = errors.New("conversation not found")
	ErrNotParticipant          = errors.New("user is not a participant in this conversation")
	ErrEmptyMessage            = errors.New("message text cannot be empty")
	ErrSelfConversation        = errors.New("cannot start a conversation with yourself")
	ErrUserNotFound            = errors.New("user not found")
	ErrInvalidPhoneNumber      = errors.New("phone number must contain at least 10 digits")
	ErrInvalidVerificationCode = errors.New("verification code is incorrect")
)
