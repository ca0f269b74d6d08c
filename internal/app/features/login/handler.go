// internal/app/features/login/handler.go
package login

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	userstore "github.com/qprep/qprep/internal/app/store/users"
	"github.com/qprep/qprep/internal/app/system/auth"
	"github.com/qprep/qprep/internal/app/system/authutil"
	"github.com/qprep/qprep/internal/app/system/authz"
	"github.com/qprep/qprep/internal/app/system/limits"
	"github.com/qprep/qprep/internal/app/system/ratelimit"
	"github.com/qprep/qprep/internal/app/system/respond"
	"github.com/qprep/qprep/internal/app/system/timeouts"
	"github.com/qprep/qprep/internal/domain/models"
)

const invalidCredentials = "Invalid credentials"

// Handler owns registration, login, logout, and the session-view
// endpoint the client uses to route users after authentication.
type Handler struct {
	Users      *userstore.Store
	SessionMgr *auth.SessionManager
	Tokens     *auth.TokenIssuer
	Limits     *ratelimit.LoginLimiter
	Log        *zap.Logger
}

func NewHandler(users *userstore.Store, sm *auth.SessionManager, tokens *auth.TokenIssuer, logger *zap.Logger) *Handler {
	return &Handler{
		Users:      users,
		SessionMgr: sm,
		Tokens:     tokens,
		Limits:     ratelimit.NewLoginLimiter(),
		Log:        logger,
	}
}

type registerRequest struct {
	FullName     string `json:"fullName"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	MatricNumber string `json:"matricNumber"`
	Department   string `json:"department"`
	Level        string `json:"level"`
	Password     string `json:"password"`
}

type loginRequest struct {
	Identifier string `json:"identifier"`
	Password   string `json:"password"`
}

// authResponse is returned by both register and login: the bearer token
// for API clients plus the user record for the UI.
type authResponse struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

// HandleRegister creates a student account. Admin and moderator
// accounts are promoted later by the super admin; self-registration
// never grants anything above student.
func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxAuthBody)).Decode(&req); err != nil {
		respond.BadRequest(w, r, "invalid JSON body")
		return
	}

	if strings.TrimSpace(req.Username) == "" {
		respond.BadRequest(w, r, "username is required")
		return
	}
	if err := authutil.ValidatePassword(req.Password); err != nil {
		respond.BadRequest(w, r, err.Error())
		return
	}
	if req.Email != "" {
		if err := authutil.ValidateEmail(req.Email); err != nil {
			respond.BadRequest(w, r, err.Error())
			return
		}
	}

	hash, err := authutil.HashPassword(req.Password)
	if err != nil {
		h.Log.Error("hash password", zap.Error(err))
		respond.Internal(w, r)
		return
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "register user")
	defer cancel()

	user, err := h.Users.Create(ctx, models.User{
		FullName:     req.FullName,
		Username:     req.Username,
		Email:        req.Email,
		MatricNumber: req.MatricNumber,
		Department:   req.Department,
		Level:        req.Level,
		Role:         authz.RoleStudent,
		PasswordHash: &hash,
	})
	if errors.Is(err, userstore.ErrDuplicate) {
		respond.Error(w, r, http.StatusConflict, err.Error())
		return
	}
	if err != nil {
		respond.BadRequest(w, r, err.Error())
		return
	}

	h.Log.Info("user registered", zap.String("username", user.Username))
	h.signIn(w, r, &user, http.StatusCreated)
}

// HandleLogin authenticates by username, email, or matric number. The
// response never distinguishes a wrong password from an unknown
// identifier.
func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, limits.MaxAuthBody)).Decode(&req); err != nil {
		respond.BadRequest(w, r, "invalid JSON body")
		return
	}
	if req.Identifier == "" || req.Password == "" {
		respond.BadRequest(w, r, "identifier and password are required")
		return
	}

	if h.Limits != nil {
		if allowed, reason := h.Limits.Check(r, req.Identifier); !allowed {
			respond.Error(w, r, http.StatusTooManyRequests, reason)
			return
		}
	}

	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Short(), h.Log, "login lookup")
	defer cancel()

	user, err := h.Users.GetByIdentifier(ctx, req.Identifier)
	if errors.Is(err, userstore.ErrNotFound) {
		respond.Unauthorized(w, r, invalidCredentials)
		return
	}
	if err != nil {
		h.Log.Error("login lookup", zap.Error(err))
		respond.Internal(w, r)
		return
	}

	if user.PasswordHash == nil || !authutil.CheckPassword(req.Password, *user.PasswordHash) {
		respond.Unauthorized(w, r, invalidCredentials)
		return
	}
	if strings.EqualFold(user.Status, "disabled") {
		respond.Unauthorized(w, r, invalidCredentials)
		return
	}

	if h.Limits != nil {
		h.Limits.ResetIdentifier(req.Identifier)
	}
	h.signIn(w, r, user, http.StatusOK)
}

// HandleLogout clears the session cookie. Bearer tokens simply expire.
func (h *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	if err := h.SessionMgr.SignOut(w, r); err != nil {
		h.Log.Warn("sign out", zap.Error(err))
	}
	respond.Message(w, r, "Logged out successfully")
}

type sessionView struct {
	View authz.View        `json:"view"`
	User *auth.SessionUser `json:"user,omitempty"`
}

// ServeSessionView tells the client which surface to show for the
// current session. Anonymous sessions route to login.
func (h *Handler) ServeSessionView(w http.ResponseWriter, r *http.Request) {
	u, ok := auth.CurrentUser(r)
	if !ok {
		respond.OK(w, r, sessionView{View: authz.ViewLogin})
		return
	}
	respond.OK(w, r, sessionView{View: authz.RouteView(u.Role), User: u})
}

// signIn sets the session cookie, mints a bearer token, and writes the
// auth response. The password hash never serializes.
func (h *Handler) signIn(w http.ResponseWriter, r *http.Request, user *models.User, status int) {
	if err := h.SessionMgr.SignIn(w, r, user.ID.Hex()); err != nil {
		h.Log.Error("sign in", zap.Error(err))
		respond.Internal(w, r)
		return
	}

	token, err := h.Tokens.Issue(&auth.SessionUser{
		ID:   user.ID.Hex(),
		Name: user.FullName,
		Role: user.Role,
	})
	if err != nil {
		h.Log.Error("issue token", zap.Error(err))
		respond.Internal(w, r)
		return
	}

	respond.JSON(w, r, status, authResponse{Token: token, User: *user})
}
