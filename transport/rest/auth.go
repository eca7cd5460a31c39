package rest

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"
)

const maxUsernameLength = 20

type guestRequest struct {
	Username string `json:"username"`
}

type response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// createGuest mints a guest token for the supplied display name and sets it
// as an HTTP-only cookie. No account record is kept; the token itself is
// the identity.
func (that *Server) createGuest(w http.ResponseWriter, r *http.Request) {
	log := that.logger.With("method", "createGuest")

	var req guestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, response{Message: "invalid request body"})
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || len(username) > maxUsernameLength {
		writeJSON(w, http.StatusBadRequest, response{Message: "username must be 1-20 characters"})
		return
	}

	token, err := that.auth.GenerateToken(username)
	if err != nil {
		log.Error("failed to generate token", "error", err)
		writeJSON(w, http.StatusInternalServerError, response{Message: "failed to create user"})
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		MaxAge:   int(that.conf.TokenTTL / time.Second),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusCreated, response{
		Success: true,
		Message: "user created",
		Data: map[string]string{
			"username": username,
			"token":    token,
		},
	})
}

// deleteGuest clears the token cookie.
func (that *Server) deleteGuest(w http.ResponseWriter, _ *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, response{
		Success: true,
		Message: "user deleted",
	})
}

func writeJSON(w http.ResponseWriter, status int, body response) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
