package core

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode"

	"go.uber.org/zap"

	"wheelsup-backend-go/internal/db"
	"wheelsup-backend-go/internal/events"
	"wheelsup-backend-go/internal/identity"
	"wheelsup-backend-go/internal/models"
	"wheelsup-backend-go/internal/observability"
)

// welcomeTimeout bounds one welcome email; it is sent after the request returns.
const welcomeTimeout = 30 * time.Second

// ProfileService implements UserService over a UserRepository, falling back to
// the seeded demo members for reads.
type ProfileService struct {
	repo      db.UserRepository
	directory identity.Directory
	verifier  PhoneVerifier
	mailer    WelcomeMailer
	publisher events.Publisher
	logger    *zap.Logger

	mailWG sync.WaitGroup
}

// NewProfileService wires the profile service. mailer may be nil.
func NewProfileService(
	repo db.UserRepository,
	directory identity.Directory,
	verifier PhoneVerifier,
	mailer WelcomeMailer,
	publisher events.Publisher,
	logger *zap.Logger,
) *ProfileService {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileService{
		repo:      repo,
		directory: directory,
		verifier:  verifier,
		mailer:    mailer,
		publisher: publisher,
		logger:    logger,
	}
}

// GetOrCreate returns the stored profile, creating it from profile on first sign-in.
func (s *ProfileService) GetOrCreate(ctx context.Context, profile models.User) (*models.User, bool, error) {
	if profile.ID == "" {
		return nil, false, errors.New("profile ID cannot be empty")
	}

	user, err := s.repo.GetByID(ctx, profile.ID)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, false, fmt.Errorf("failed to get user by ID '%s' from repository: %w", profile.ID, err)
	}

	newUser := profile
	if err := s.repo.Create(ctx, &newUser); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			// Lost a race with a concurrent first sign-in.
			existing, getErr := s.repo.GetByID(ctx, profile.ID)
			if getErr != nil {
				return nil, false, fmt.Errorf("failed to get user (id: %s) after concurrent create: %w", profile.ID, getErr)
			}
			return existing, false, nil
		}
		return nil, false, fmt.Errorf("failed to create user (id: %s) after not found: %w", profile.ID, err)
	}

	s.logger.Info("Created member profile", zap.String("userID", newUser.ID))
	if s.mailer != nil {
		s.mailWG.Add(1)
		go s.sendWelcome(context.WithoutCancel(ctx), newUser)
	}
	s.publish(ctx, events.New(events.ProfileCreated, newUser.ID, newUser.Public()))
	return &newUser, true, nil
}

func (s *ProfileService) sendWelcome(ctx context.Context, user models.User) {
	defer s.mailWG.Done()
	ctx, cancel := context.WithTimeout(ctx, welcomeTimeout)
	defer cancel()
	if err := s.mailer.SendWelcome(ctx, user); err != nil {
		s.logger.Warn("Welcome email failed", zap.String("userID", user.ID), zap.Error(err))
	}
}

// WaitForMail blocks until pending welcome emails have been handed off.
func (s *ProfileService) WaitForMail() {
	s.mailWG.Wait()
}

// GetByID returns a stored profile or a seeded demo member.
func (s *ProfileService) GetByID(ctx context.Context, userID string) (*models.User, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, fmt.Errorf("failed to get user by ID '%s' from repository: %w", userID, err)
	}
	if s.directory != nil {
		if seed, ok := s.directory.LookupByID(userID); ok {
			return &seed, nil
		}
	}
	return nil, fmt.Errorf("%w: user with ID '%s'", ErrUserNotFound, userID)
}

// UpdateProfile applies a partial profile edit. A blank name is ignored.
func (s *ProfileService) UpdateProfile(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.User, error) {
	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Name != nil {
		if name := strings.TrimSpace(*req.Name); name != "" {
			user.Name = name
		}
	}
	if req.Bio != nil {
		user.Bio = strings.TrimSpace(*req.Bio)
	}
	if req.Vehicle != nil {
		user.Vehicle = strings.TrimSpace(*req.Vehicle)
	}
	if req.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to update profile for '%s': %w", userID, err)
	}
	return user, nil
}

// VerifyPhone checks the code, then stores the number and marks the member verified.
func (s *ProfileService) VerifyPhone(ctx context.Context, userID string, req models.VerifyPhoneRequest) (*models.User, error) {
	phone := strings.TrimSpace(req.PhoneNumber)
	if countDigits(phone) < 10 {
		return nil, ErrInvalidPhoneNumber
	}
	if err := s.verifier.Verify(ctx, phone, strings.TrimSpace(req.Code)); err != nil {
		return nil, err
	}

	user, err := s.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	user.PhoneNumber = phone
	user.IsVerified = true
	if err := s.repo.Update(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to store verified phone for '%s': %w", userID, err)
	}

	s.publish(ctx, events.New(events.PhoneVerified, userID, map[string]string{"userId": userID}))
	return user, nil
}

func (s *ProfileService) publish(ctx context.Context, evt events.Event) {
	if err := s.publisher.Publish(ctx, evt); err != nil {
		observability.EventPublishFailures.WithLabelValues(evt.Type).Inc()
		s.logger.Warn("Failed to publish event", zap.String("type", evt.Type), zap.String("key", evt.Key), zap.Error(err))
	}
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}

// StaticCodeVerifier accepts one fixed code for every number. It stands in for
// an SMS provider.
type StaticCodeVerifier struct {
	Code string
}

func (v StaticCodeVerifier) Verify(_ context.Context, _ string, code string) error {
	if v.Code == "" || subtle.ConstantTimeCompare([]byte(code), []byte(v.Code)) != 1 {
		return ErrInvalidVerificationCode
	}
	return nil
}
