package models

import (
	"sort"
	"strings"
	"time"
)

// Message is a single chat line inside a conversation.
type Message struct {
	ID        string    `json:"id"`
	SenderID  string    `json:"senderId"`
	Text      string    `json:"text"`
	Timestamp time.Time `json:"timestamp"`
}

// Conversation is a two-party messaging thread, optionally tied to a ride.
type Conversation struct {
	ID           string    `json:"id"`
	Participants []User    `json:"participants"` // sorted by ID
	RideID       string    `json:"rideId,omitempty"`
	Messages     []Message `json:"messages"`
}

// ParticipantIDs returns the participant IDs in stored order.
func (c Conversation) ParticipantIDs() []string {
	ids := make([]string, len(c.Participants))
	for i, p := range c.Participants {
		ids[i] = p.ID
	}
	return ids
}

// HasParticipant reports whether userID takes part in the conversation.
func (c Conversation) HasParticipant(userID string) bool {
	for _, p := range c.Participants {
		if p.ID == userID {
			return true
		}
	}
	return false
}

// Clone returns a copy that shares no slices with c.
func (c Conversation) Clone() Conversation {
	out := c
	out.Participants = append([]User(nil), c.Participants...)
	out.Messages = append([]Message{}, c.Messages...)
	return out
}

// ConversationID derives the deterministic ID for a set of participants:
// "conv_" followed by the sorted IDs joined with "_".
func ConversationID(participantIDs ...string) string {
	ids := append([]string(nil), participantIDs...)
	sort.Strings(ids)
	return "conv_" + strings.Join(ids, "_")
}

// NewConversation builds an empty conversation between two members.
func NewConversation(a, b User, rideID string) Conversation {
	participants := []User{a, b}
	sort.Slice(participants, func(i, j int) bool { return participants[i].ID < participants[j].ID })
	return Conversation{
		ID:           ConversationID(a.ID, b.ID),
		Participants: participants,
		RideID:       rideID,
		Messages:     []Message{},
	}
}
