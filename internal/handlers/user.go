package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/petermazzocco/go-profile-images/internal/auth"
	"github.com/petermazzocco/go-profile-images/internal/catalog"
)

func UserLoginHandler(w http.ResponseWriter, r *http.Request, cat *catalog.Catalog) {
	user, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		slog.WarnContext(r.Context(), "complete oauth", slog.String("error", err.Error()))
		http.Error(w, "Authentication failed", http.StatusUnauthorized)
		return
	}

	dbUser, err := cat.EnsureUser(r.Context(), user.Name, user.Email, nicknameFor(user))
	if err != nil {
		slog.ErrorContext(r.Context(), "ensure user", slog.String("email", user.Email), slog.String("error", err.Error()))
		http.Error(w, "Failed to create user", http.StatusInternalServerError)
		return
	}

	if err := auth.SaveOwner(w, r, dbUser.Nickname); err != nil {
		slog.ErrorContext(r.Context(), "save session", slog.String("error", err.Error()))
		http.Error(w, "Failed to save session", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, "/api/user", http.StatusTemporaryRedirect)
}

func GetUserHandler(w http.ResponseWriter, r *http.Request, cat *catalog.Catalog) {
	nickname, ok := auth.Owner(r.Context())
	if !ok {
		http.Error(w, "User not found in context", http.StatusUnauthorized)
		return
	}

	user, err := cat.UserWithImages(r.Context(), nickname)
	if errors.Is(err, catalog.ErrNotFound) {
		http.Error(w, "User not found", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// nicknameFor prefers the provider nickname and falls back to the local part
// of the email address.
func nicknameFor(u goth.User) string {
	if u.NickName != "" {
		return u.NickName
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}
