package auth

import (
	"context"
	"net/http"
)

// SessionUser is the per-request view of the signed-in user, injected
// into r.Context() by LoadSessionUser. Department and Level carry the
// user's browsing scope (students) or locked upload scope (moderators).
type SessionUser struct {
	ID         string
	Name       string
	Username   string
	Role       string
	Department string
	Level      string
}

type ctxKey string

const currentUserKey ctxKey = "currentUser"

// CurrentUser returns the user from context and a found flag.
func CurrentUser(r *http.Request) (*SessionUser, bool) {
	u, ok := r.Context().Value(currentUserKey).(*SessionUser)
	return u, ok
}

func withUser(r *http.Request, u *SessionUser) *http.Request {
	return r.WithContext(context.WithValue(r.Context(), currentUserKey, u))
}
