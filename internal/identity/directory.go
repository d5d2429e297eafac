package identity

import (
	"time"

	"wheelsup-backend-go/internal/models"
)

// Directory resolves bootstrap profiles.
type Directory interface {
	LookupByEmail(email string) (models.User, bool)
	LookupByID(id string) (models.User, bool)
}

// SeedDirectory is the fixed set of demo members matched at first sign-in.
type SeedDirectory struct {
	users []models.User
}

// NewSeedDirectory returns a directory over users. With no arguments it holds
// the built-in demo members.
func NewSeedDirectory(users ...models.User) *SeedDirectory {
	if len(users) == 0 {
		users = SeedUsers()
	}
	return &SeedDirectory{users: append([]models.User(nil), users...)}
}

// LookupByEmail matches email exactly.
func (d *SeedDirectory) LookupByEmail(email string) (models.User, bool) {
	if email == "" {
		return models.User{}, false
	}
	for _, u := range d.users {
		if u.Email == email {
			return u, true
		}
	}
	return models.User{}, false
}

func (d *SeedDirectory) LookupByID(id string) (models.User, bool) {
	for _, u := range d.users {
		if u.ID == id {
			return u, true
		}
	}
	return models.User{}, false
}

// Users returns a copy of every seeded profile.
func (d *SeedDirectory) Users() []models.User {
	return append([]models.User(nil), d.users...)
}

// SeedUsers returns the demo members.
func SeedUsers() []models.User {
	return []models.User{
		{
			ID:               "user_1",
			Name:             "Arjun Reddy",
			Email:            "arjun@example.com",
			AvatarURL:        "https://placehold.co/100x100.png",
			Rating:           4.9,
			RidesAsDriver:    25,
			RidesAsPassenger: 10,
			IsVerified:       true,
			MemberSince:      time.Date(2022, 8, 15, 0, 0, 0, 0, time.UTC),
			Bio:              "Loves long drives and good music. Clean and reliable car.",
			PhoneNumber:      "9876543210",
			Vehicle:          "Honda City",
		},
		{
			ID:               "user_2",
			Name:             "Priya Sharma",
			Email:            "priya@example.com",
			AvatarURL:        "https://placehold.co/100x100.png",
			Rating:           4.8,
			RidesAsDriver:    5,
			RidesAsPassenger: 32,
			IsVerified:       true,
			MemberSince:      time.Date(2023, 1, 20, 0, 0, 0, 0, time.UTC),
			Bio:              "Friendly and chatty passenger. Always on time.",
			Vehicle:          "Maruti Swift",
		},
		{
			ID:               "user_3",
			Name:             "Rohan Patel",
			Email:            "rohan@example.com",
			AvatarURL:        "https://placehold.co/100x100.png",
			Rating:           4.7,
			RidesAsDriver:    40,
			RidesAsPassenger: 5,
			IsVerified:       false,
			MemberSince:      time.Date(2021, 11, 30, 0, 0, 0, 0, time.UTC),
			PhoneNumber:      "9876543211",
			Vehicle:          "Hyundai Verna",
		},
	}
}
