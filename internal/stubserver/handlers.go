package stubserver

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/jcallaghan/sessionlink/internal/middleware"
	"github.com/jcallaghan/sessionlink/internal/model"
)

const sessionCookieName = "session"

// registerRequest is the account-creation payload
type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Handlers implements the backend session endpoints
type Handlers struct {
	accounts *Accounts
	caps     model.Capabilities
	openID   string
	logger   *slog.Logger
}

// NewHandlers creates the endpoint handlers
func NewHandlers(accounts *Accounts, caps model.Capabilities, openIDProviderURL string, logger *slog.Logger) *Handlers {
	return &Handlers{
		accounts: accounts,
		caps:     caps,
		openID:   openIDProviderURL,
		logger:   logger,
	}
}

// Router creates the backend router with all routes configured
func Router(h *Handlers, logger *slog.Logger) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(logger, func(w http.ResponseWriter, r *http.Request, err any) {
		http.Error(w, "internal server error", http.StatusInternalServerError)
	}))
	r.Use(middleware.Logging(logger))

	r.HandleFunc("/api/session", h.PasswordLogin).Methods(http.MethodPost)
	r.HandleFunc("/api/session", h.TokenLogin).Methods(http.MethodGet)
	r.HandleFunc("/api/session/token", h.IssueToken).Methods(http.MethodPost)
	r.HandleFunc("/api/session/openid/auth", h.OpenIDAuth).Methods(http.MethodGet)
	r.HandleFunc("/api/users", h.Register).Methods(http.MethodPost)
	r.HandleFunc("/api/server", h.ServerInfo).Methods(http.MethodGet)

	return r
}

// PasswordLogin handles POST /api/session
func (h *Handlers) PasswordLogin(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	email := r.PostFormValue("email")
	password := r.PostFormValue("password")

	user, err := h.accounts.Authenticate(r.Context(), email, password)
	if err != nil {
		http.Error(w, ErrInvalidLogin.Error(), http.StatusUnauthorized)
		return
	}

	h.openSession(w, user)
	writeJSON(w, http.StatusOK, user)
}

// TokenLogin handles GET /api/session?token=...
func (h *Handlers) TokenLogin(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		http.Error(w, "token is required", http.StatusBadRequest)
		return
	}

	user, err := h.accounts.UserByToken(token)
	if err != nil {
		http.Error(w, ErrInvalidToken.Error(), http.StatusUnauthorized)
		return
	}

	h.openSession(w, user)
	writeJSON(w, http.StatusOK, user)
}

// IssueToken handles POST /api/session/token. The caller is identified
// by the session cookie opened on login; the token expiration comes
// from the form.
func (h *Handlers) IssueToken(w http.ResponseWriter, r *http.Request) {
	user, err := h.sessionUser(r)
	if err != nil {
		http.Error(w, ErrInvalidSession.Error(), http.StatusUnauthorized)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	expiresAt, err := time.Parse(time.RFC3339, r.PostFormValue("expiration"))
	if err != nil {
		http.Error(w, "invalid expiration", http.StatusBadRequest)
		return
	}

	token, err := h.accounts.MintToken(user.ID, expiresAt)
	if err != nil {
		h.logger.Error("token minting failed", slog.String("error", err.Error()))
		http.Error(w, "could not issue token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(token))
}

// OpenIDAuth handles GET /api/session/openid/auth by forwarding to the
// identity provider
func (h *Handlers) OpenIDAuth(w http.ResponseWriter, r *http.Request) {
	http.Redirect(w, r, h.openID, http.StatusFound)
}

// Register handles POST /api/users
func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if req.Email == "" || req.Password == "" {
		http.Error(w, "email and password are required", http.StatusBadRequest)
		return
	}

	user, err := h.accounts.Create(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	writeJSON(w, http.StatusOK, user)
}

// ServerInfo handles GET /api/server
func (h *Handlers) ServerInfo(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.caps)
}

func (h *Handlers) openSession(w http.ResponseWriter, user *model.User) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    h.accounts.CreateSession(user.ID),
		Path:     "/",
		HttpOnly: true,
	})
}

func (h *Handlers) sessionUser(r *http.Request) (*model.User, error) {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil, ErrInvalidSession
	}
	return h.accounts.UserBySession(cookie.Value)
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}
