package handlers

import (
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/mux"

	"blogCPT/internal/middleware"
)

// Routes builds the route table wrapped in the request middleware.
func (h *Handlers) Routes() http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(http.NotFound)
	r.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowed)

	login := middleware.RequireLogin
	admin := middleware.RequireAdmin(http.HandlerFunc(h.Forbidden))

	// public
	r.HandleFunc("/", h.ListPosts).Methods(http.MethodGet)
	r.HandleFunc("/register", h.Register).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/login", h.Login).Methods(http.MethodGet, http.MethodPost)
	r.HandleFunc("/about", h.About).Methods(http.MethodGet)
	r.HandleFunc("/contact", h.Contact).Methods(http.MethodGet)
	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)

	// session
	r.Handle("/logout", login(http.HandlerFunc(h.Logout))).Methods(http.MethodGet)
	r.Handle("/post/{id:[0-9]+}", login(http.HandlerFunc(h.ShowPost))).Methods(http.MethodGet)
	r.Handle("/post/{id:[0-9]+}/comment", login(http.HandlerFunc(h.AddComment))).Methods(http.MethodGet, http.MethodPost)

	// admin
	r.Handle("/new-post", admin(http.HandlerFunc(h.NewPost))).Methods(http.MethodGet, http.MethodPost)
	r.Handle("/edit-post/{id:[0-9]+}", admin(http.HandlerFunc(h.EditPost))).Methods(http.MethodGet, http.MethodPost)
	r.Handle("/delete/{id:[0-9]+}", admin(http.HandlerFunc(h.DeletePost))).Methods(http.MethodGet)

	return middleware.Chain(
		r,
		middleware.LoadUser(h.Sessions, h.AuthService),
		chimw.Recoverer,
		middleware.LoggingMiddleware,
		chimw.RealIP,
		chimw.RequestID,
	)
}
