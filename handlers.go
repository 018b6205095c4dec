package main

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"
)

func (b *Blog) serverError(w http.ResponseWriter, r *http.Request, err error) {
	b.logger.WithFields(logrus.Fields{
		"method": r.Method,
		"path":   r.URL.Path,
	}).WithError(err).Error("internal server error")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (b *Blog) notFound(w http.ResponseWriter, r *http.Request) {
	b.render(w, r, http.StatusNotFound, "not-found.html", map[string]any{
		"Title": "Not Found",
	})
}

// postID reads the {id} URL parameter. ok is false for anything that cannot
// name a post.
func postID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id < 1 {
		return 0, false
	}
	return id, true
}

// loadPost fetches the post named in the URL and answers 404 itself when
// there is none.
func (b *Blog) loadPost(w http.ResponseWriter, r *http.Request) (*Post, bool) {
	id, ok := postID(r)
	if !ok {
		b.notFound(w, r)
		return nil, false
	}

	post, err := getPostByID(r.Context(), b.db, id)
	if errors.Is(err, ErrPostNotFound) {
		b.notFound(w, r)
		return nil, false
	}
	if err != nil {
		b.serverError(w, r, err)
		return nil, false
	}

	return post, true
}

func postURL(id int64) string {
	return fmt.Sprintf("/post/%d", id)
}

func (b *Blog) Home(w http.ResponseWriter, r *http.Request) {
	posts, err := getPosts(r.Context(), b.db)
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	intro, err := getSetting(r.Context(), b.db, settingIntro)
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.render(w, r, http.StatusOK, "index.html", map[string]any{
		"Title": "Home",
		"Posts": posts,
		"Intro": intro,
	})
}

// Detail shows a post with its comments. A POST adds a comment and then
// redirects back so a refresh cannot submit it twice.
func (b *Blog) Detail(w http.ResponseWriter, r *http.Request) {
	post, ok := b.loadPost(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodPost {
		b.addComment(w, r, post)
		return
	}

	comments, err := getCommentsByPost(r.Context(), b.db, post.ID)
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.render(w, r, http.StatusOK, "post.html", map[string]any{
		"Title":    post.Title,
		"Post":     post,
		"Comments": comments,
	})
}

func (b *Blog) addComment(w http.ResponseWriter, r *http.Request, post *Post) {
	user := currentUser(r.Context())
	if user == nil {
		b.setFlash(r, msgLoginToComment)
		http.Redirect(w, r, withNext("/login", postURL(post.ID)), http.StatusSeeOther)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	text := strings.TrimSpace(r.PostFormValue("text"))
	if text == "" {
		b.setFlash(r, msgCommentEmpty)
		http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
		return
	}

	_, err := createComment(r.Context(), b.db, post.ID, user.ID, text)
	if errors.Is(err, ErrPostNotFound) {
		b.notFound(w, r)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.setFlash(r, msgCommentAdded)
	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

func (b *Blog) About(w http.ResponseWriter, r *http.Request) {
	b.staticPage(w, r, "about.html", "About", settingAbout)
}

func (b *Blog) Contact(w http.ResponseWriter, r *http.Request) {
	b.staticPage(w, r, "contact.html", "Contact", settingContact)
}

func (b *Blog) staticPage(w http.ResponseWriter, r *http.Request, page, title, key string) {
	text, err := getSetting(r.Context(), b.db, key)
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.render(w, r, http.StatusOK, page, map[string]any{
		"Title": title,
		"Text":  text,
	})
}

func (b *Blog) renderPostForm(w http.ResponseWriter, r *http.Request, status int, form postForm, errs formErrors, post *Post) {
	data := map[string]any{
		"Title":  "New Post",
		"Form":   form,
		"Errors": errs,
		"IsEdit": post != nil,
	}
	if post != nil {
		data["Title"] = fmt.Sprintf("Editing %q", post.Title)
		data["Post"] = post
	}
	b.render(w, r, status, "make-post.html", data)
}

// Create is admin only; requireAdmin guarantees a current user.
func (b *Blog) Create(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		b.renderPostForm(w, r, http.StatusOK, postForm{}, formErrors{}, nil)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form, errs := parsePostForm(r)
	if len(errs) > 0 {
		b.renderPostForm(w, r, http.StatusUnprocessableEntity, form, errs, nil)
		return
	}

	user := currentUser(r.Context())
	id, err := createPost(r.Context(), b.db, Post{
		AuthorID: user.ID,
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Date:     formatPostDate(time.Now()),
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	})
	if errors.Is(err, ErrDuplicateTitle) {
		b.renderPostForm(w, r, http.StatusConflict, form, formErrors{"title": ErrDuplicateTitle.Error()}, nil)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.logger.WithFields(logrus.Fields{
		"post_id": id,
		"user_id": user.ID,
	}).Info("post created")

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Blog) Edit(w http.ResponseWriter, r *http.Request) {
	post, ok := b.loadPost(w, r)
	if !ok {
		return
	}

	if r.Method == http.MethodGet {
		b.renderPostForm(w, r, http.StatusOK, postFormFrom(post), formErrors{}, post)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}

	form, errs := parsePostForm(r)
	if len(errs) > 0 {
		b.renderPostForm(w, r, http.StatusUnprocessableEntity, form, errs, post)
		return
	}

	err := updatePost(r.Context(), b.db, post.ID, form.Title, form.Subtitle, form.ImgURL, form.Body)
	if errors.Is(err, ErrDuplicateTitle) {
		b.renderPostForm(w, r, http.StatusConflict, form, formErrors{"title": ErrDuplicateTitle.Error()}, post)
		return
	}
	if errors.Is(err, ErrPostNotFound) {
		b.notFound(w, r)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	http.Redirect(w, r, postURL(post.ID), http.StatusSeeOther)
}

func (b *Blog) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		b.notFound(w, r)
		return
	}

	err := deletePost(r.Context(), b.db, id)
	if errors.Is(err, ErrPostNotFound) {
		b.notFound(w, r)
		return
	}
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.logger.WithFields(logrus.Fields{
		"post_id": id,
		"user_id": currentUser(r.Context()).ID,
	}).Info("post deleted")

	b.setFlash(r, msgPostDeleted)
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (b *Blog) Settings(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Bad request", http.StatusBadRequest)
			return
		}

		for _, key := range settingKeys {
			value := strings.TrimSpace(r.PostFormValue(key))
			if err := setSetting(r.Context(), b.db, key, value); err != nil {
				b.serverError(w, r, err)
				return
			}
		}

		b.setFlash(r, msgSettingsSaved)
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}

	settings, err := getSettings(r.Context(), b.db)
	if err != nil {
		b.serverError(w, r, err)
		return
	}

	b.render(w, r, http.StatusOK, "settings.html", map[string]any{
		"Title":    "Settings",
		"Settings": settings,
	})
}
