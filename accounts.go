package main

import (
	"errors"
	"net/http"
	"net/url"

	"github.com/sirupsen/logrus"
)

const (
	msgEmailExists    = "This email already exists, please log in!"
	msgEmailUnknown   = "Email does not exist! Please register."
	msgPasswordWrong  = "Password is incorrect!"
	msgLoginToComment = "You need to login or register to comment."
	msgCommentEmpty   = "Comment cannot be empty."
	msgCommentAdded   = "Your comment was added."
	msgPostDeleted    = "Post deleted."
	msgSettingsSaved  = "Settings saved."
)

// withNext appends a sanitized next parameter to a local path.
func withNext(path, next string) string {
	next = safeNext(next, "")
	if next == "" {
		return path
	}
	return path + "?next=" + url.QueryEscape(next)
}

func (b *Blog) Register(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"), "")

	if r.Method == http.MethodGet {
		b.render(w, r, http.StatusOK, "register.html", map[string]any{
			"Title":  "Register",
			"Form":   registerForm{},
			"Errors": formErrors{},
			"Next":   next,
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	next = safeNext(r.FormValue("next"), "")

	form, errs := parseRegisterForm(r)
	if len(errs) > 0 {
		form.Password = ""
		b.render(w, r, http.StatusUnprocessableEntity, "register.html", map[string]any{
			"Title":  "Register",
			"Form":   form,
			"Errors": errs,
			"Next":   next,
		})
		return
	}

	_, err := getUserByEmail(r.Context(), b.db, form.Email)
	if err == nil {
		b.setFlash(r, msgEmailExists)
		http.Redirect(w, r, withNext("/login", next), http.StatusSeeOther)
		return
	}
	if !errors.Is(err, ErrUserNotFound) {
		b.serverError(w, r, err)
		return
	}

	hash, err := hashPassword(form.Password)
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	user, err := createUser(r.Context(), b.db, form.Email, hash, form.Name)
	if errors.Is(err, ErrDuplicateEmail) {
		b.setFlash(r, msgEmailExists)
		http.Redirect(w, r, withNext("/login", next), http.StatusSeeOther)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	if err := b.logIn(r, user); err != nil {
		b.serverError(w, r, err)
		return
	}

	b.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("user registered")

	http.Redirect(w, r, safeNext(next, "/"), http.StatusSeeOther)
}

func (b *Blog) Login(w http.ResponseWriter, r *http.Request) {
	next := safeNext(r.URL.Query().Get("next"), "")

	if r.Method == http.MethodGet {
		b.render(w, r, http.StatusOK, "login.html", map[string]any{
			"Title":  "Log In",
			"Form":   loginForm{},
			"Errors": formErrors{},
			"Next":   next,
		})
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	next = safeNext(r.FormValue("next"), "")

	form, errs := parseLoginForm(r)
	if len(errs) > 0 {
		form.Password = ""
		b.render(w, r, http.StatusUnprocessableEntity, "login.html", map[string]any{
			"Title":  "Log In",
			"Form":   form,
			"Errors": errs,
			"Next":   next,
		})
		return
	}

	user, err := getUserByEmail(r.Context(), b.db, form.Email)
	if errors.Is(err, ErrUserNotFound) {
		b.logger.WithField("remote_addr", r.RemoteAddr).Warn("login failed: unknown email")
		b.setFlash(r, msgEmailUnknown)
		http.Redirect(w, r, withNext("/register", next), http.StatusSeeOther)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	if !checkPassword(user.PasswordHash, form.Password) {
		b.logger.WithFields(logrus.Fields{
			"user_id":     user.ID,
			"remote_addr": r.RemoteAddr,
		}).Warn("login failed: wrong password")
		b.setFlash(r, msgPasswordWrong)
		http.Redirect(w, r, withNext("/login", next), http.StatusSeeOther)
		return
	}

	if err := b.logIn(r, user); err != nil {
		b.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, safeNext(next, "/"), http.StatusSeeOther)
}

func (b *Blog) Logout(w http.ResponseWriter, r *http.Request) {
	if err := b.logOut(r); err != nil {
		b.serverError(w, r, err)
		return
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}
