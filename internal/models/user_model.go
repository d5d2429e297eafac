package models

import "time"

// User represents a WheelsUp member profile.
type User struct {
	ID               string    `json:"id" firestore:"id"` // Firebase Auth UID for real members, "user_N" for seeded demo members
	Name             string    `json:"name" firestore:"name"`
	Email            string    `json:"email" firestore:"email"`
	AvatarURL        string    `json:"avatarUrl" firestore:"avatarUrl"`
	Rating           float64   `json:"rating" firestore:"rating"` // 0..5
	RidesAsDriver    int       `json:"ridesAsDriver" firestore:"ridesAsDriver"`
	RidesAsPassenger int       `json:"ridesAsPassenger" firestore:"ridesAsPassenger"`
	IsVerified       bool      `json:"isVerified" firestore:"isVerified"`
	MemberSince      time.Time `json:"memberSince" firestore:"memberSince"`
	Bio              string    `json:"bio,omitempty" firestore:"bio,omitempty"`
	PhoneNumber      string    `json:"phoneNumber,omitempty" firestore:"phoneNumber,omitempty"`
	Vehicle          string    `json:"vehicle,omitempty" firestore:"vehicle,omitempty"`
}

// Public returns a copy of the profile that is safe to show to other members.
func (u User) Public() User {
	u.PhoneNumber = ""
	return u
}
