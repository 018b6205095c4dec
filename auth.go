package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

const (
	sessionKeyUserID = "user_id"
	sessionKeyFlash  = "flash"
)

type contextKey string

const contextKeyUser contextKey = "user"

var bcryptCost = bcrypt.DefaultCost

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// newSessionManager stores sessions in the app database. Expired rows are
// removed by the cleanup job rather than by the store's own goroutine.
func newSessionManager(db *sql.DB, lifetime time.Duration, secure bool) *scs.SessionManager {
	sm := scs.New()
	sm.Store = sqlite3store.NewWithCleanupInterval(db, 0)
	sm.Lifetime = lifetime
	sm.Cookie.Name = "session"
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = secure
	return sm
}

func cleanupExpiredSessions(ctx context.Context, db *sql.DB) (int64, error) {
	result, err := db.ExecContext(ctx, "DELETE FROM sessions WHERE expiry < julianday('now')")
	if err != nil {
		return 0, fmt.Errorf("cleaning up expired sessions: %w", err)
	}
	return result.RowsAffected()
}

// logIn starts a fresh session for user. The token is renewed first so a
// pre-login session id can never be reused after authentication.
func (b *Blog) logIn(r *http.Request, user *User) error {
	if err := b.sessions.RenewToken(r.Context()); err != nil {
		return fmt.Errorf("renewing session token: %w", err)
	}
	b.sessions.Put(r.Context(), sessionKeyUserID, user.ID)
	return nil
}

func (b *Blog) logOut(r *http.Request) error {
	if err := b.sessions.Destroy(r.Context()); err != nil {
		return fmt.Errorf("destroying session: %w", err)
	}
	return nil
}

func (b *Blog) setFlash(r *http.Request, message string) {
	b.sessions.Put(r.Context(), sessionKeyFlash, message)
}

// loadUser puts the logged-in user, if any, into the request context.
// A session pointing at a user that no longer exists loses its user id.
func (b *Blog) loadUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := b.sessions.GetInt64(r.Context(), sessionKeyUserID)
		if userID == 0 {
			next.ServeHTTP(w, r)
			return
		}

		user, err := getUserByID(r.Context(), b.db, userID)
		if errors.Is(err, ErrUserNotFound) {
			b.sessions.Remove(r.Context(), sessionKeyUserID)
			next.ServeHTTP(w, r)
			return
		}
		if err != nil {
			b.serverError(w, r, err)
			return
		}

		ctx := context.WithValue(r.Context(), contextKeyUser, user)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// currentUser returns the authenticated user for the request, or nil.
func currentUser(ctx context.Context) *User {
	user, _ := ctx.Value(contextKeyUser).(*User)
	return user
}

// requireAdmin rejects everyone but administrators before the wrapped
// handler runs.
func (b *Blog) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user := currentUser(r.Context())
		if !user.IsAdmin() {
			fields := logrus.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			}
			if user != nil {
				fields["user_id"] = user.ID
				fields["user_role"] = user.Role
			}
			b.logger.WithFields(fields).Warn("access denied")

			http.Error(w, "Forbidden: you cannot enter this area", http.StatusForbidden)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// safeNext returns next if it is a path on this site, otherwise fallback.
func safeNext(next, fallback string) string {
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, "\\") {
		return fallback
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return fallback
	}
	return u.String()
}
