package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"wheelsup-backend-go/internal/crypto"
	"wheelsup-backend-go/internal/models"
)

const usersCollection = "users"

// userDocument is the stored profile. The phone number is sealed at rest.
type userDocument struct {
	Name              string    `firestore:"name"`
	Email             string    `firestore:"email"`
	AvatarURL         string    `firestore:"avatarUrl"`
	Rating            float64   `firestore:"rating"`
	RidesAsDriver     int       `firestore:"ridesAsDriver"`
	RidesAsPassenger  int       `firestore:"ridesAsPassenger"`
	IsVerified        bool      `firestore:"isVerified"`
	MemberSince       time.Time `firestore:"memberSince"`
	Bio               string    `firestore:"bio,omitempty"`
	PhoneNumberSealed string    `firestore:"phoneNumberSealed,omitempty"`
	Vehicle           string    `firestore:"vehicle,omitempty"`
	UpdatedAt         time.Time `firestore:"updatedAt,serverTimestamp"`
}

// firestoreUserRepository implements UserRepository using Firestore.
type firestoreUserRepository struct {
	client *firestore.Client
	sealer *crypto.Sealer
}

// NewFirestoreUserRepository creates a user repository. sealer protects phone numbers.
func NewFirestoreUserRepository(client *firestore.Client, sealer *crypto.Sealer) UserRepository {
	if client == nil {
		panic("Firestore client is not initialized for UserRepository")
	}
	if sealer == nil {
		panic("PII sealer is not initialized for UserRepository")
	}
	return &firestoreUserRepository{client: client, sealer: sealer}
}

func (r *firestoreUserRepository) toDocument(u *models.User) (userDocument, error) {
	sealed, err := r.sealer.Seal(u.PhoneNumber)
	if err != nil {
		return userDocument{}, fmt.Errorf("failed to seal phone number for user '%s': %w", u.ID, err)
	}
	return userDocument{
		Name:              u.Name,
		Email:             u.Email,
		AvatarURL:         u.AvatarURL,
		Rating:            u.Rating,
		RidesAsDriver:     u.RidesAsDriver,
		RidesAsPassenger:  u.RidesAsPassenger,
		IsVerified:        u.IsVerified,
		MemberSince:       u.MemberSince,
		Bio:               u.Bio,
		PhoneNumberSealed: sealed,
		Vehicle:           u.Vehicle,
	}, nil
}

func (r *firestoreUserRepository) fromDocument(id string, d userDocument) (*models.User, error) {
	phone, err := r.sealer.Open(d.PhoneNumberSealed)
	if err != nil {
		return nil, fmt.Errorf("failed to open phone number for user '%s': %w", id, err)
	}
	return &models.User{
		ID:               id,
		Name:             d.Name,
		Email:            d.Email,
		AvatarURL:        d.AvatarURL,
		Rating:           d.Rating,
		RidesAsDriver:    d.RidesAsDriver,
		RidesAsPassenger: d.RidesAsPassenger,
		IsVerified:       d.IsVerified,
		MemberSince:      d.MemberSince,
		Bio:              d.Bio,
		PhoneNumber:      phone,
		Vehicle:          d.Vehicle,
	}, nil
}

// Create adds a profile keyed by the Firebase Auth UID.
func (r *firestoreUserRepository) Create(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Create operation")
	}
	doc, err := r.toDocument(user)
	if err != nil {
		return err
	}
	if _, err := r.client.Collection(usersCollection).Doc(user.ID).Create(ctx, doc); err != nil {
		if status.Code(err) == codes.AlreadyExists {
			return fmt.Errorf("user with ID '%s': %w", user.ID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create user with ID '%s': %w", user.ID, err)
	}
	return nil
}

// GetByID retrieves a profile by UID.
func (r *firestoreUserRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for GetByID operation")
	}
	snap, err := r.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("user with ID '%s' not found: %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get user with ID '%s': %w", userID, err)
	}
	var doc userDocument
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode user data for ID '%s': %w", userID, err)
	}
	return r.fromDocument(snap.Ref.ID, doc)
}

// Update overwrites the stored profile with user.
func (r *firestoreUserRepository) Update(ctx context.Context, user *models.User) error {
	if user.ID == "" {
		return errors.New("user ID cannot be empty for Update operation")
	}
	doc, err := r.toDocument(user)
	if err != nil {
		return err
	}
	if _, err := r.client.Collection(usersCollection).Doc(user.ID).Set(ctx, doc); err != nil {
		return fmt.Errorf("failed to update user with ID '%s': %w", user.ID, err)
	}
	return nil
}
