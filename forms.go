package main

import (
	"net/http"
	"net/mail"
	"net/url"
	"strings"
)

// bcrypt ignores everything past 72 bytes, so longer passwords are refused.
const maxPasswordBytes = 72

// formErrors maps a field name to the message shown next to it.
type formErrors map[string]string

func (e formErrors) require(field, value, message string) {
	if strings.TrimSpace(value) == "" {
		e[field] = message
	}
}

type registerForm struct {
	Email    string
	Password string
	Name     string
}

func parseRegisterForm(r *http.Request) (registerForm, formErrors) {
	f := registerForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
		Name:     strings.TrimSpace(r.PostFormValue("name")),
	}

	errs := formErrors{}
	errs.require("email", f.Email, "Email is required")
	if _, ok := errs["email"]; !ok && !validEmail(f.Email) {
		errs["email"] = "Enter a valid email address"
	}
	errs.require("password", f.Password, "Password is required")
	if len(f.Password) > maxPasswordBytes {
		errs["password"] = "Password must be at most 72 bytes"
	}
	errs.require("name", f.Name, "Name is required")

	return f, errs
}

type loginForm struct {
	Email    string
	Password string
}

func parseLoginForm(r *http.Request) (loginForm, formErrors) {
	f := loginForm{
		Email:    strings.TrimSpace(r.PostFormValue("email")),
		Password: r.PostFormValue("password"),
	}

	errs := formErrors{}
	errs.require("email", f.Email, "Email is required")
	errs.require("password", f.Password, "Password is required")

	return f, errs
}

// postForm backs both the create and the edit page. Author is shown on the
// edit page but never written back.
type postForm struct {
	Title    string
	Subtitle string
	Author   string
	ImgURL   string
	Body     string
}

func postFormFrom(p *Post) postForm {
	return postForm{
		Title:    p.Title,
		Subtitle: p.Subtitle,
		Author:   p.AuthorName,
		ImgURL:   p.ImgURL,
		Body:     p.Body,
	}
}

func parsePostForm(r *http.Request) (postForm, formErrors) {
	f := postForm{
		Title:    strings.TrimSpace(r.PostFormValue("title")),
		Subtitle: strings.TrimSpace(r.PostFormValue("subtitle")),
		Author:   strings.TrimSpace(r.PostFormValue("author")),
		ImgURL:   strings.TrimSpace(r.PostFormValue("img_url")),
		Body:     r.PostFormValue("body"),
	}

	errs := formErrors{}
	errs.require("title", f.Title, "Title is required")
	errs.require("subtitle", f.Subtitle, "Subtitle is required")
	errs.require("img_url", f.ImgURL, "Image URL is required")
	if _, ok := errs["img_url"]; !ok && !validURL(f.ImgURL) {
		errs["img_url"] = "Enter a valid http or https URL"
	}
	errs.require("body", f.Body, "Content is required")

	return f, errs
}

func validEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	return err == nil && addr.Address == s
}

func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}
