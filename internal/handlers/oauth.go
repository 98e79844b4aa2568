package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"groovetree/backend/internal/audit"
	"groovetree/backend/internal/auth"
	"groovetree/backend/internal/config"
	"groovetree/backend/internal/database"
	"groovetree/backend/internal/models"
)

// Mode distinguishes the two entry points into the OAuth flow. It rides
// inside the state parameter and is validated on the way back in, never
// trusted as free-form provider-echoed text.
type Mode string

const (
	ModeLogin  Mode = "login"
	ModeSignup Mode = "signup"
)

func parseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case ModeLogin, ModeSignup:
		return Mode(s), true
	}
	return "", false
}

const stateCookie = "gt_oauthstate"

var spotifyEndpoint = oauth2.Endpoint{
	AuthURL:  "https://accounts.spotify.com/authorize",
	TokenURL: "https://accounts.spotify.com/api/token",
}

// providerProfile is the identity assertion extracted from a provider,
// normalized across Google and Spotify.
type providerProfile struct {
	ID    string
	Email string
	Name  string
}

type OAuthHandler struct {
	db      *database.DB
	cfg     *config.Config
	configs map[string]*oauth2.Config
}

func NewOAuthHandler(db *database.DB, cfg *config.Config) *OAuthHandler {
	return &OAuthHandler{
		db:  db,
		cfg: cfg,
		configs: map[string]*oauth2.Config{
			"google": {
				ClientID:     cfg.GoogleClientID,
				ClientSecret: cfg.GoogleClientSecret,
				RedirectURL:  cfg.BaseURL + "/api/auth/oauth/google/callback",
				Scopes: []string{
					"https://www.googleapis.com/auth/userinfo.email",
					"https://www.googleapis.com/auth/userinfo.profile",
				},
				Endpoint: google.Endpoint,
			},
			"spotify": {
				ClientID:     cfg.SpotifyClientID,
				ClientSecret: cfg.SpotifyClientSecret,
				RedirectURL:  cfg.BaseURL + "/api/auth/oauth/spotify/callback",
				Scopes:       []string{"user-read-email", "user-read-private"},
				Endpoint:     spotifyEndpoint,
			},
		},
	}
}

// Initiate starts the authorization-code flow. The caller picks login or
// signup via ?mode=; the nonce half of the state lands in a short-lived
// cookie so the callback can check it.
func (h *OAuthHandler) Initiate(w http.ResponseWriter, r *http.Request) {
	oc, ok := h.configs[mux.Vars(r)["provider"]]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown provider")
		return
	}

	mode, ok := parseMode(r.URL.Query().Get("mode"))
	if !ok {
		writeError(w, http.StatusBadRequest, "mode must be login or signup")
		return
	}

	nonce, err := auth.GenerateSecureToken(16)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to start OAuth flow")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     stateCookie,
		Value:    nonce,
		Path:     "/",
		Expires:  time.Now().Add(20 * time.Minute),
		HttpOnly: true,
		Secure:   h.cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})

	state := nonce + "." + string(mode)
	http.Redirect(w, r, oc.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// Callback completes the flow: verify state, exchange the code, fetch the
// provider profile, then resolve or create the local user per the mode.
func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	provider := mux.Vars(r)["provider"]
	oc, ok := h.configs[provider]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown provider")
		return
	}

	mode, ok := h.verifyState(r)
	if !ok {
		h.failRedirect(w, r, "invalid_state")
		return
	}

	code := r.FormValue("code")
	if code == "" {
		h.failRedirect(w, r, "access_denied")
		return
	}

	token, err := oc.Exchange(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Str("provider", provider).Msg("oauth code exchange failed")
		h.failRedirect(w, r, "exchange_failed")
		return
	}

	profile, err := fetchProfile(r.Context(), provider, oc, token)
	if err != nil {
		log.Error().Err(err).Str("provider", provider).Msg("failed to fetch oauth profile")
		h.failRedirect(w, r, "profile_failed")
		return
	}
	if profile.Email == "" {
		h.failRedirect(w, r, "no_email")
		return
	}

	user, err := h.resolveUser(provider, profile, mode)
	if err != nil {
		if errors.Is(err, errAccountNotFound) {
			h.failRedirect(w, r, "account_not_found")
			return
		}
		log.Error().Err(err).Str("provider", provider).Msg("failed to resolve oauth user")
		h.failRedirect(w, r, "server_error")
		return
	}

	session, err := auth.GenerateToken(user.ID.String(), user.Email)
	if err != nil {
		h.failRedirect(w, r, "server_error")
		return
	}
	auth.SetSessionCookie(w, session, h.cfg.IsProduction())

	audit.Log(audit.EventOAuthLogin, user.ID.String(), map[string]interface{}{"provider": provider})
	http.Redirect(w, r, h.cfg.FrontendURL+"/dashboard", http.StatusTemporaryRedirect)
}

var errAccountNotFound = errors.New("no account for oauth identity")

// resolveUser matches the provider identity to a local user. In login mode
// the user must already exist (by email or provider linkage); signup mode
// creates one with a random unusable local password, or refreshes the
// linkage on an existing account.
func (h *OAuthHandler) resolveUser(provider string, p providerProfile, mode Mode) (*models.User, error) {
	var user models.User
	err := h.db.Get(&user, `
		SELECT id, email, name, email_verified, created_at, updated_at
		FROM users
		WHERE email = $1 OR (oauth_provider = $2 AND oauth_provider_id = $3)
	`, p.Email, provider, p.ID)

	switch {
	case err == nil:
		_, uerr := h.db.Exec(`
			UPDATE users SET oauth_provider = $1, oauth_provider_id = $2,
			       email_verified = true, updated_at = NOW()
			WHERE id = $3
		`, provider, p.ID, user.ID)
		if uerr != nil {
			return nil, uerr
		}
		return &user, nil

	case errors.Is(err, sql.ErrNoRows):
		if mode == ModeLogin {
			return nil, errAccountNotFound
		}
		// Random unusable password: the account can only authenticate
		// through the provider until a password reset.
		random, terr := auth.GenerateSecureToken(32)
		if terr != nil {
			return nil, terr
		}
		hash, herr := auth.HashPassword(random)
		if herr != nil {
			return nil, herr
		}
		name := p.Name
		if name == "" {
			name = strings.SplitN(p.Email, "@", 2)[0]
		}
		cerr := h.db.Get(&user, `
			INSERT INTO users (email, name, password_hash, oauth_provider, oauth_provider_id, email_verified)
			VALUES ($1, $2, $3, $4, $5, true)
			RETURNING id, email, name, email_verified, created_at, updated_at
		`, p.Email, name, hash, provider, p.ID)
		if cerr != nil {
			return nil, cerr
		}
		return &user, nil

	default:
		return nil, err
	}
}

func (h *OAuthHandler) verifyState(r *http.Request) (Mode, bool) {
	cookie, err := r.Cookie(stateCookie)
	if err != nil || cookie.Value == "" {
		return "", false
	}
	parts := strings.SplitN(r.FormValue("state"), ".", 2)
	if len(parts) != 2 || parts[0] != cookie.Value {
		return "", false
	}
	return parseMode(parts[1])
}

func (h *OAuthHandler) failRedirect(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, h.cfg.FrontendURL+"/login?error="+code, http.StatusTemporaryRedirect)
}

func fetchProfile(ctx context.Context, provider string, oc *oauth2.Config, token *oauth2.Token) (providerProfile, error) {
	client := oc.Client(ctx, token)

	switch provider {
	case "google":
		resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
		if err != nil {
			return providerProfile{}, err
		}
		defer resp.Body.Close()
		var gu struct {
			ID            string `json:"id"`
			Email         string `json:"email"`
			VerifiedEmail bool   `json:"verified_email"`
			Name          string `json:"name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
			return providerProfile{}, err
		}
		return providerProfile{ID: gu.ID, Email: gu.Email, Name: gu.Name}, nil

	case "spotify":
		resp, err := client.Get("https://api.spotify.com/v1/me")
		if err != nil {
			return providerProfile{}, err
		}
		defer resp.Body.Close()
		var su struct {
			ID          string `json:"id"`
			Email       string `json:"email"`
			DisplayName string `json:"display_name"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&su); err != nil {
			return providerProfile{}, err
		}
		return providerProfile{ID: su.ID, Email: su.Email, Name: su.DisplayName}, nil
	}

	return providerProfile{}, errors.New("unknown provider: " + provider)
}
