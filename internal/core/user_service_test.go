package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"wheelsup-backend-go/internal/db"
	"wheelsup-backend-go/internal/events"
	"wheelsup-backend-go/internal/identity"
	"wheelsup-backend-go/internal/models"
)

func newTestProfileService(repo *MockUserRepository, mailer WelcomeMailer) (*ProfileService, *events.MemoryPublisher) {
	pub := &events.MemoryPublisher{}
	svc := NewProfileService(repo, identity.NewSeedDirectory(), StaticCodeVerifier{Code: "123456"}, mailer, pub, nil)
	return svc, pub
}

func TestProfileService_GetOrCreate(t *testing.T) {
	ctx := context.Background()
	profile := models.User{ID: "uid-1", Name: "New User", Email: "new@example.com", MemberSince: time.Now()}

	tests := []struct {
		name        string
		setup       func(repo *MockUserRepository)
		wantCreated bool
		wantErr     bool
		wantMails   int
	}{
		{
			name: "existing profile",
			setup: func(repo *MockUserRepository) {
				repo.On("GetByID", ctx, "uid-1").Return(&models.User{ID: "uid-1", Name: "Stored"}, nil)
			},
		},
		{
			name: "first sign-in creates",
			setup: func(repo *MockUserRepository) {
				repo.On("GetByID", ctx, "uid-1").Return(nil, db.ErrNotFound)
				repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)
			},
			wantCreated: true,
			wantMails:   1,
		},
		{
			name: "concurrent create returns stored profile",
			setup: func(repo *MockUserRepository) {
				repo.On("GetByID", ctx, "uid-1").Return(nil, db.ErrNotFound).Once()
				repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(db.ErrAlreadyExists)
				repo.On("GetByID", ctx, "uid-1").Return(&models.User{ID: "uid-1"}, nil).Once()
			},
		},
		{
			name: "repository failure",
			setup: func(repo *MockUserRepository) {
				repo.On("GetByID", ctx, "uid-1").Return(nil, errors.New("unavailable"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockUserRepository)
			mailer := &recordingMailer{}
			tt.setup(repo)
			svc, pub := newTestProfileService(repo, mailer)

			user, created, err := svc.GetOrCreate(ctx, profile)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			svc.WaitForMail()
			assert.Equal(t, "uid-1", user.ID)
			assert.Equal(t, tt.wantCreated, created)
			assert.Len(t, mailer.sent, tt.wantMails)
			if tt.wantCreated {
				assert.Equal(t, []string{events.ProfileCreated}, pub.Types())
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestProfileService_GetOrCreate_MailFailureIgnored(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("GetByID", ctx, "uid-1").Return(nil, db.ErrNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)
	svc, _ := newTestProfileService(repo, &recordingMailer{err: errors.New("smtp down")})

	_, created, err := svc.GetOrCreate(ctx, models.User{ID: "uid-1"})
	require.NoError(t, err)
	assert.True(t, created)
	svc.WaitForMail()
}

func TestProfileService_GetOrCreate_DoesNotWaitForMail(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("GetByID", ctx, "uid-1").Return(nil, db.ErrNotFound)
	repo.On("Create", ctx, mock.AnythingOfType("*models.User")).Return(nil)
	mailer := &recordingMailer{block: make(chan struct{})}
	svc, _ := newTestProfileService(repo, mailer)

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, created, err := svc.GetOrCreate(ctx, models.User{ID: "uid-1", Email: "kavya@example.com"})
		assert.NoError(t, err)
		assert.True(t, created)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("GetOrCreate blocked on the welcome email")
	}

	close(mailer.block)
	svc.WaitForMail()
	mailer.mu.Lock()
	defer mailer.mu.Unlock()
	require.Len(t, mailer.sent, 1)
	assert.Equal(t, "kavya@example.com", mailer.sent[0].Email)
}

func TestProfileService_GetByID_SeedFallback(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("GetByID", ctx, "user_1").Return(nil, db.ErrNotFound)
	repo.On("GetByID", ctx, "ghost").Return(nil, db.ErrNotFound)
	svc, _ := newTestProfileService(repo, nil)

	user, err := svc.GetByID(ctx, "user_1")
	require.NoError(t, err)
	assert.Equal(t, "Arjun Reddy", user.Name)

	_, err = svc.GetByID(ctx, "ghost")
	assert.ErrorIs(t, err, ErrUserNotFound)
}

func TestProfileService_UpdateProfile(t *testing.T) {
	ctx := context.Background()
	repo := new(MockUserRepository)
	repo.On("GetByID", ctx, "uid-1").Return(&models.User{ID: "uid-1", Name: "Old", Bio: "old bio"}, nil)
	repo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool {
		return u.Name == "Old" && u.Vehicle == "Swift"
	})).Return(nil)
	svc, _ := newTestProfileService(repo, nil)

	blank := "   "
	vehicle := " Swift "
	user, err := svc.UpdateProfile(ctx, "uid-1", models.UpdateProfileRequest{Name: &blank, Vehicle: &vehicle})
	require.NoError(t, err)
	assert.Equal(t, "Swift", user.Vehicle)
	assert.Equal(t, "old bio", user.Bio)
	repo.AssertExpectations(t)
}

func TestProfileService_VerifyPhone(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		repo := new(MockUserRepository)
		repo.On("GetByID", ctx, "uid-1").Return(&models.User{ID: "uid-1"}, nil)
		repo.On("Update", ctx, mock.MatchedBy(func(u *models.User) bool {
			return u.IsVerified && u.PhoneNumber == "+91 98765 43210"
		})).Return(nil)
		svc, pub := newTestProfileService(repo, nil)

		user, err := svc.VerifyPhone(ctx, "uid-1", models.VerifyPhoneRequest{PhoneNumber: "+91 98765 43210", Code: "123456"})
		require.NoError(t, err)
		assert.True(t, user.IsVerified)
		assert.Equal(t, []string{events.PhoneVerified}, pub.Types())
		repo.AssertExpectations(t)
	})

	t.Run("short number", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestProfileService(repo, nil)
		_, err := svc.VerifyPhone(ctx, "uid-1", models.VerifyPhoneRequest{PhoneNumber: "12345", Code: "123456"})
		assert.ErrorIs(t, err, ErrInvalidPhoneNumber)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})

	t.Run("wrong code", func(t *testing.T) {
		repo := new(MockUserRepository)
		svc, _ := newTestProfileService(repo, nil)
		_, err := svc.VerifyPhone(ctx, "uid-1", models.VerifyPhoneRequest{PhoneNumber: "9876543210", Code: "000000"})
		assert.ErrorIs(t, err, ErrInvalidVerificationCode)
		repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
	})
}

func TestStaticCodeVerifier_EmptyCodeRejectsAll(t *testing.T) {
	assert.ErrorIs(t, StaticCodeVerifier{}.Verify(context.Background(), "9876543210", ""), ErrInvalidVerificationCode)
}
