// Package identity projects an authentication session into a WheelsUp profile.
package identity

import (
	"strings"
	"time"
	"unicode/utf8"

	"wheelsup-backend-go/internal/models"
)

const (
	DefaultDisplayName = "New User"
	placeholderAvatar  = "https://placehold.co/100x100.png"
	LoginRoute         = "/login"
)

// ProtectedRoutes require a session; anything under them redirects to LoginRoute when signed out.
var ProtectedRoutes = []string{"/profile", "/post-ride", "/messages"}

// Session is what the auth provider reports for a signed-in member.
type Session struct {
	UID         string `json:"uid"`
	Email       string `json:"email,omitempty"`
	DisplayName string `json:"displayName,omitempty"`
	PhotoURL    string `json:"photoURL,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
}

// State is the published identity: both nil when signed out.
type State struct {
	Session *Session     `json:"session"`
	Profile *models.User `json:"profile"`
}

// SignedIn reports whether a session is present.
func (s State) SignedIn() bool { return s.Session != nil }

// Resolve maps a session to a profile. Seed members are returned unchanged;
// anyone else gets a fresh profile stamped with now.
func Resolve(session *Session, dir Directory, now time.Time) State {
	if session == nil {
		return State{}
	}
	sess := *session
	if dir != nil {
		if u, ok := dir.LookupByEmail(sess.Email); ok {
			return State{Session: &sess, Profile: &u}
		}
	}
	profile := Bootstrap(sess, now)
	return State{Session: &sess, Profile: &profile}
}

// Bootstrap synthesizes a first-time profile from a session.
func Bootstrap(s Session, now time.Time) models.User {
	name := s.DisplayName
	if name == "" {
		name = DefaultDisplayName
	}
	avatar := s.PhotoURL
	if avatar == "" {
		avatar = PlaceholderAvatar(s.DisplayName)
	}
	return models.User{
		ID:          s.UID,
		Name:        name,
		Email:       s.Email,
		AvatarURL:   avatar,
		MemberSince: now,
		PhoneNumber: s.PhoneNumber,
	}
}

// PlaceholderAvatar builds the generated avatar URL from the first letter of name, or "U".
func PlaceholderAvatar(name string) string {
	letter := "U"
	if r, _ := utf8.DecodeRuneInString(name); name != "" && r != utf8.RuneError {
		letter = string(r)
	}
	return placeholderAvatar + "?text=" + letter
}

// IsProtected reports whether path is, or is below, a protected route.
func IsProtected(path string) bool {
	for _, p := range ProtectedRoutes {
		if strings.HasPrefix(path, p) {
			return true
		}
	}
	return false
}

// RedirectTarget returns LoginRoute when path is protected and st has no session.
func RedirectTarget(path string, st State) (string, bool) {
	if IsProtected(path) && !st.SignedIn() {
		return LoginRoute, true
	}
	return "", false
}
