package server

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// adminCookieName carries the admin capability token. The token is
// scoped to the calendar day it was issued on: sessions expire at local
// midnight rather than after a fixed duration.
const adminCookieName = "folio_admin"

// signAdminToken creates a JWT that expires at the end of the current
// local day.
func signAdminToken(secret []byte, now time.Time) (string, time.Time, error) {
	expiry := endOfDay(now)
	claims := jwt.MapClaims{
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  expiry.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(secret)
	return signed, expiry, err
}

func endOfDay(now time.Time) time.Time {
	year, month, day := now.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location()).AddDate(0, 0, 1)
}

// validateAdminToken parses and verifies an admin token string.
func validateAdminToken(tokenString string, secret []byte) bool {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return secret, nil
	})
	if err != nil || !token.Valid {
		return false
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return false
	}
	role, _ := claims["role"].(string)
	return role == "admin"
}

// checkAdminPassword compares the submitted password against the
// configured credential. A bcrypt hash takes precedence over a
// plaintext password.
func (s *Server) checkAdminPassword(password string) bool {
	auth := s.app.Config.Auth
	if auth.AdminPasswordHash != "" {
		return bcrypt.CompareHashAndPassword([]byte(auth.AdminPasswordHash), []byte(password)) == nil
	}
	if auth.AdminPassword != "" {
		return subtle.ConstantTimeCompare([]byte(auth.AdminPassword), []byte(password)) == 1
	}
	return false
}

// handleAdminLogin handles POST /api/admin/login.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	var req struct {
		Password string `json:"password"`
	}
	if !DecodeJSON(w, r, &req) {
		return
	}

	if !s.checkAdminPassword(req.Password) {
		s.logger.Warn().Str("remote", r.RemoteAddr).Msg("Admin login rejected")
		WriteError(w, http.StatusUnauthorized, "Invalid password")
		return
	}

	token, expiry, err := signAdminToken([]byte(s.app.Config.Auth.TokenSecret), time.Now())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to issue session token")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiry,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   s.app.Config.IsProduction(),
	})

	s.logger.Info().Time("expires", expiry).Msg("Admin session issued")
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"expires":       expiry.UTC().Format(time.RFC3339),
	})
}

// handleAdminLogout handles POST /api/admin/logout.
func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodPost) {
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     adminCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	WriteJSON(w, http.StatusOK, map[string]interface{}{"authenticated": false})
}

// handleAdminSession handles GET /api/admin/session.
func (s *Server) handleAdminSession(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"authenticated": s.isAdmin(r),
	})
}

// isAdmin reports whether the request carries a valid admin cookie.
func (s *Server) isAdmin(r *http.Request) bool {
	cookie, err := r.Cookie(adminCookieName)
	if err != nil || cookie.Value == "" {
		return false
	}
	return validateAdminToken(cookie.Value, []byte(s.app.Config.Auth.TokenSecret))
}
