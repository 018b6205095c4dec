package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

func (b *Blog) routes() http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(requestLogger(b.logger))
	r.Use(chimw.Recoverer)

	r.Handle("/static/*", http.FileServerFS(staticFS))

	r.Group(func(r chi.Router) {
		r.Use(b.sessions.LoadAndSave)
		r.Use(b.csrfProtect([]byte(b.config.SessionSecret), b.config.TrustedOrigins))
		r.Use(b.loadUser)

		// Public routes
		r.Get("/", b.Home)
		r.Get("/register", b.Register)
		r.Post("/register", b.Register)
		r.Get("/login", b.Login)
		r.Post("/login", b.Login)
		r.Get("/logout", b.Logout)
		r.Get("/post/{id}", b.Detail)
		r.Post("/post/{id}", b.Detail)
		r.Get("/about", b.About)
		r.Get("/contact", b.Contact)

		// Admin routes
		r.Group(func(r chi.Router) {
			r.Use(b.requireAdmin)

			r.Get("/new-post", b.Create)
			r.Post("/new-post", b.Create)
			r.Get("/edit-post/{id}", b.Edit)
			r.Post("/edit-post/{id}", b.Edit)
			r.Get("/delete/{id}", b.Delete)
			r.Post("/delete/{id}", b.Delete)
			r.Get("/settings", b.Settings)
			r.Post("/settings", b.Settings)
		})
	})

	r.NotFound(b.sessions.LoadAndSave(b.loadUser(http.HandlerFunc(b.notFound))).ServeHTTP)

	return r
}
