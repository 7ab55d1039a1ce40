package handlers

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/rojgarhq/rojgar-backend/internal/apperr"
	"github.com/rojgarhq/rojgar-backend/internal/models"
	"github.com/rojgarhq/rojgar-backend/internal/repository"
	"github.com/rojgarhq/rojgar-backend/internal/utils"
)

type GoogleOAuthHandler struct {
	Users           repository.UserRepository
	JWTSecret       string
	Expires         int
	GoogleClientID  string
	GoogleSecret    string
	GoogleRedirect  string
	FrontendBaseURL string
}

func (h *GoogleOAuthHandler) oauthCfg() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     h.GoogleClientID,
		ClientSecret: h.GoogleSecret,
		RedirectURL:  h.GoogleRedirect,
		Endpoint:     google.Endpoint,
		Scopes:       []string{"openid", "email", "profile"},
	}
}

func randomState(n int) string {
	b := make([]byte, n)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func (h *GoogleOAuthHandler) GoogleStart(c *fiber.Ctx) error {
	next := c.Query("next", "/")
	st := randomState(32)

	c.Cookie(&fiber.Cookie{
		Name:     "oauth_state",
		Value:    st,
		Path:     "/",
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		MaxAge:   10 * 60,
	})
	c.Cookie(&fiber.Cookie{
		Name:     "oauth_next",
		Value:    next,
		Path:     "/",
		HTTPOnly: true,
		Secure:   false,
		SameSite: "Lax",
		MaxAge:   10 * 60,
	})

	authURL := h.oauthCfg().AuthCodeURL(st, oauth2.AccessTypeOffline)
	return c.Redirect(authURL, http.StatusTemporaryRedirect)
}

type googleUserInfo struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func (h *GoogleOAuthHandler) GoogleCallback(c *fiber.Ctx) error {
	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Missing code/state")
	}

	stCookie := c.Cookies("oauth_state")
	next := c.Cookies("oauth_next")
	if next == "" {
		next = "/"
	}

	if stCookie == "" || stCookie != state {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid state")
	}

	tok, err := h.oauthCfg().Exchange(c.Context(), code)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Failed to exchange code")
	}

	client := h.oauthCfg().Client(c.Context(), tok)
	resp, err := client.Get("https://www.googleapis.com/oauth2/v2/userinfo")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Failed to fetch userinfo")
	}
	defer resp.Body.Close()

	var gu googleUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&gu); err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Failed to decode userinfo")
	}

	email := strings.ToLower(strings.TrimSpace(gu.Email))
	name := strings.TrimSpace(gu.Name)
	if email == "" {
		return c.Status(fiber.StatusBadRequest).SendString("Email not found from Google")
	}

	// upsert by email; Google accounts are verified by definition
	u, err := h.Users.FindByEmail(c.Context(), email)
	if err != nil && !errors.Is(err, apperr.ErrNotFound) {
		return c.Status(fiber.StatusInternalServerError).SendString("DB error")
	}

	if errors.Is(err, apperr.ErrNotFound) {
		u = &models.User{
			Name:       name,
			Email:      email,
			GoogleID:   gu.ID,
			Role:       models.RoleClient,
			IsVerified: true,
		}
		if err := h.Users.Create(c.Context(), u); err != nil {
			log.Println("Error creating user via Google:", err)
			u2 := h.FrontendBaseURL + "/auth/login?err=" + url.QueryEscape("Failed to create account")
			return c.Redirect(u2, http.StatusTemporaryRedirect)
		}
	} else {
		fields := map[string]interface{}{}
		if gu.ID != "" && u.GoogleID == "" {
			fields["google_id"] = gu.ID
		}
		if name != "" && u.Name != name {
			fields["name"] = name
		}
		if !u.IsVerified {
			fields["is_verified"] = true
		}
		if len(fields) > 0 {
			_ = h.Users.UpdateFields(c.Context(), u.ID, fields)
		}
	}

	jwtToken, err := utils.SignJWT(h.JWTSecret, u.ID.String(), string(u.Role), h.Expires)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).SendString("Failed to sign jwt")
	}
	setSessionCookie(c, jwtToken, h.Expires)

	c.Cookie(&fiber.Cookie{Name: "oauth_state", Value: "", Path: "/", MaxAge: -1, HTTPOnly: true, Secure: false, SameSite: "Lax"})
	c.Cookie(&fiber.Cookie{Name: "oauth_next", Value: "", Path: "/", MaxAge: -1, HTTPOnly: true, Secure: false, SameSite: "Lax"})

	redirectURL := h.FrontendBaseURL + next
	if !strings.HasPrefix(next, "/") {
		redirectURL = h.FrontendBaseURL + "/"
	}
	return c.Redirect(redirectURL, http.StatusTemporaryRedirect)
}
