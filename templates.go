package main

import (
	"bytes"
	"crypto/md5"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = []string{
	"index.html",
	"post.html",
	"make-post.html",
	"register.html",
	"login.html",
	"about.html",
	"contact.html",
	"settings.html",
	"not-found.html",
}

// Post bodies may mix Markdown and raw HTML; the sanitizer runs after
// rendering so raw HTML is never trusted as written.
var (
	markdownRenderer = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithUnsafe()),
	)
	htmlSanitizer = bluemonday.UGCPolicy()
)

// linebreaks escapes plain text and turns blank-line separated blocks into
// paragraphs and single newlines into <br>.
func linebreaks(s string) template.HTML {
	s = template.HTMLEscapeString(s)
	s = strings.ReplaceAll(s, "\r\n", "\n")

	paragraphs := strings.Split(s, "\n\n")
	var result []string

	for _, p := range paragraphs {
		if p = strings.TrimSpace(p); p != "" {
			p = strings.ReplaceAll(p, "\n", "<br>")
			result = append(result, "<p>"+p+"</p>")
		}
	}

	return template.HTML(strings.Join(result, "\n"))
}

func markdown(s string) template.HTML {
	var buf bytes.Buffer
	if err := markdownRenderer.Convert([]byte(s), &buf); err != nil {
		return linebreaks(s)
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes()))
}

// gravatar returns the avatar URL for an email address.
func gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return "https://www.gravatar.com/avatar/" + hex.EncodeToString(sum[:]) + "?s=100&d=retro&r=g"
}

func loadTemplates() map[string]*template.Template {
	templates := make(map[string]*template.Template)

	funcs := template.FuncMap{
		"linebreaks": linebreaks,
		"markdown":   markdown,
		"gravatar":   gravatar,
	}

	for _, page := range pages {
		templates[page] = template.Must(
			template.New("").Funcs(funcs).ParseFS(templateFS,
				"templates/base.html",
				"templates/"+page,
			))
	}

	return templates
}

// render executes page into a buffer first so a template error never leaves
// a half-written response behind. The current user and any pending flash
// message are added to data.
func (b *Blog) render(w http.ResponseWriter, r *http.Request, status int, page string, data map[string]any) {
	tmpl, ok := b.templates[page]
	if !ok {
		b.serverError(w, r, fmt.Errorf("template %q not found", page))
		return
	}

	if data == nil {
		data = map[string]any{}
	}
	user := currentUser(r.Context())
	data["CurrentUser"] = user
	data["IsAuthenticated"] = user != nil
	data["IsAdmin"] = user.IsAdmin()
	data["Flash"] = b.sessions.PopString(r.Context(), sessionKeyFlash)
	data["Year"] = time.Now().Year()

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		b.serverError(w, r, fmt.Errorf("rendering %s: %w", page, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
