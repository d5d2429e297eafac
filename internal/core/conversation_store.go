package core

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"wheelsup-backend-go/internal/events"
	"wheelsup-backend-go/internal/models"
	"wheelsup-backend-go/internal/observability"
)

// ConversationStore keeps conversations in process memory only. Nothing here
// is written to Firestore; a restart loses every thread.
type ConversationStore struct {
	publisher events.Publisher
	logger    *zap.Logger
	now       func() time.Time
	newID     func() string

	mu    sync.Mutex
	convs []models.Conversation // newest first
}

// NewConversationStore creates an empty store.
func NewConversationStore(publisher events.Publisher, logger *zap.Logger) *ConversationStore {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConversationStore{
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

func sameParticipants(conv models.Conversation, ids []string) bool {
	if len(conv.Participants) != len(ids) {
		return false
	}
	for _, id := range ids {
		if !conv.HasParticipant(id) {
			return false
		}
	}
	// Both directions: {A, A} must not match {A, B}.
	for _, p := range conv.Participants {
		found := false
		for _, id := range ids {
			if p.ID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (s *ConversationStore) findLocked(conversationID string) int {
	for i := range s.convs {
		if s.convs[i].ID == conversationID {
			return i
		}
	}
	return -1
}

// GetConversation finds the conversation whose participant set equals ids, in any order.
func (s *ConversationStore) GetConversation(participantIDs []string) (models.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.convs {
		if sameParticipants(c, participantIDs) {
			return c.Clone(), true
		}
	}
	return models.Conversation{}, false
}

// CreateConversation inserts conv at the head of the list. Duplicates are not checked.
func (s *ConversationStore) CreateConversation(conv models.Conversation) {
	conv = conv.Clone()
	if conv.Messages == nil {
		conv.Messages = []models.Message{}
	}
	s.mu.Lock()
	s.convs = append([]models.Conversation{conv}, s.convs...)
	s.mu.Unlock()
}

// SendMessage appends msg to the matching conversation. It reports false, and
// changes nothing, when no conversation has that ID.
func (s *ConversationStore) SendMessage(conversationID string, msg models.Message) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(conversationID)
	if i < 0 {
		return false
	}
	s.convs[i].Messages = append(s.convs[i].Messages, msg)
	return true
}

// Conversation returns a copy of one conversation.
func (s *ConversationStore) Conversation(conversationID string) (models.Conversation, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.findLocked(conversationID)
	if i < 0 {
		return models.Conversation{}, false
	}
	return s.convs[i].Clone(), true
}

// ConversationsFor lists the threads userID takes part in, newest first.
func (s *ConversationStore) ConversationsFor(userID string) []models.Conversation {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.Conversation{}
	for _, c := range s.convs {
		if c.HasParticipant(userID) {
			out = append(out, c.Clone())
		}
	}
	return out
}

// Open returns the existing thread between me and other, or starts one.
// The bool reports whether a new conversation was created.
func (s *ConversationStore) Open(ctx context.Context, me, other models.User, rideID string) (models.Conversation, bool) {
	s.mu.Lock()
	for _, c := range s.convs {
		if sameParticipants(c, []string{me.ID, other.ID}) {
			s.mu.Unlock()
			return c.Clone(), false
		}
	}
	conv := models.NewConversation(me.Public(), other.Public(), rideID)
	s.convs = append([]models.Conversation{conv}, s.convs...)
	s.mu.Unlock()

	s.publish(ctx, events.New(events.ConversationOpened, conv.ID, map[string]interface{}{
		"conversationId": conv.ID,
		"participantIds": conv.ParticipantIDs(),
		"rideId":         rideID,
	}))
	return conv.Clone(), true
}

// Post builds a message from senderID and appends it.
func (s *ConversationStore) Post(ctx context.Context, conversationID, senderID, text string) (models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return models.Message{}, ErrEmptyMessage
	}
	conv, ok := s.Conversation(conversationID)
	if !ok {
		return models.Message{}, ErrConversationNotFound
	}
	if !conv.HasParticipant(senderID) {
		return models.Message{}, ErrNotParticipant
	}

	msg := models.Message{
		ID:        s.newID(),
		SenderID:  senderID,
		Text:      text,
		Timestamp: s.now().UTC(),
	}
	if !s.SendMessage(conversationID, msg) {
		return models.Message{}, ErrConversationNotFound
	}

	observability.MessagesSentTotal.Inc()
	s.publish(ctx, events.New(events.MessageSent, conversationID, map[string]interface{}{
		"conversationId": conversationID,
		"message":        msg,
	}))
	return msg, nil
}

func (s *ConversationStore) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		observability.EventPublishFailures.WithLabelValues(evt.Type).Inc()
		s.logger.Warn("Failed to publish event", zap.String("type", evt.Type), zap.String("key", evt.Key), zap.Error(err))
	}
}
