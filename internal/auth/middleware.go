package auth

import (
	"context"
	"net/http"

	"github.com/markbates/goth/gothic"
)

const (
	SessionName = "_gothic_session"
	nicknameKey = "nickname"
)

type ctxKey struct{}

// UserMiddleware puts the session user's nickname on the request context and
// rejects requests without one.
func UserMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := gothic.Store.Get(r, SessionName)
		if err != nil {
			http.Error(w, "Not Authorized", http.StatusUnauthorized)
			return
		}

		nickname, ok := session.Values[nicknameKey].(string)
		if !ok || nickname == "" {
			http.Error(w, "Not Authorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r.WithContext(WithOwner(r.Context(), nickname)))
	})
}

// SaveOwner records nickname as the logged-in user of the session.
func SaveOwner(w http.ResponseWriter, r *http.Request, nickname string) error {
	session, err := gothic.Store.Get(r, SessionName)
	if err != nil {
		return err
	}
	session.Values[nicknameKey] = nickname
	return session.Save(r, w)
}

func WithOwner(ctx context.Context, nickname string) context.Context {
	return context.WithValue(ctx, ctxKey{}, nickname)
}

func Owner(ctx context.Context) (string, bool) {
	nickname, ok := ctx.Value(ctxKey{}).(string)
	return nickname, ok && nickname != ""
}
