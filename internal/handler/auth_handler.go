package handlers

import (
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"blogCPT/internal/forms"
	"blogCPT/internal/service"
	"blogCPT/internal/session"
)

const (
	flashRegistered   = "Account created successfully!"
	flashUserExists   = "Username already exists. Please Login to your account."
	flashLoginFailed  = "Login Unsuccessful. Please check username and password"
	flashLoggedOut    = "You Have been logged out successfully."
	flashCommentAdded = "Your comment has been added."
)

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var form forms.RegisterForm
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "register", &PageData{Form: form})
		return
	}

	if err := forms.Decode(r, &form); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if errs := h.Validator.Validate(&form); errs != nil {
		h.render(w, r, http.StatusUnprocessableEntity, "register", &PageData{Form: form, Errors: errs})
		return
	}

	user, err := h.AuthService.Register(r.Context(), service.RegisterRequest{
		Email:    form.Email,
		Username: form.Username,
		Password: form.Password,
	})
	switch {
	case errors.Is(err, service.ErrUserExists):
		h.Sessions.SetFlash(w, "info", flashUserExists)
	case err != nil:
		serverError(w, r, err)
		return
	default:
		log.Info().Int64("user_id", user.ID).Msg("user registered")
		h.Sessions.SetFlash(w, "success", flashRegistered)
	}

	http.Redirect(w, r, "/login", http.StatusSeeOther)
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var form forms.LoginForm
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "login", &PageData{Form: form})
		return
	}

	if err := forms.Decode(r, &form); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if errs := h.Validator.Validate(&form); errs != nil {
		h.render(w, r, http.StatusUnprocessableEntity, "login", &PageData{Form: form, Errors: errs})
		return
	}

	user, err := h.AuthService.Login(r.Context(), form.Email, form.Password)
	if err != nil {
		if !errors.Is(err, service.ErrInvalidCredentials) {
			serverError(w, r, err)
			return
		}
		form.Password = ""
		h.render(w, r, http.StatusOK, "login", &PageData{
			Form:  form,
			Flash: &session.Flash{Category: "danger", Message: flashLoginFailed},
		})
		return
	}

	if err := h.Sessions.Login(w, user.ID); err != nil {
		serverError(w, r, err)
		return
	}

	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	h.Sessions.Logout(w)
	h.Sessions.SetFlash(w, "info", flashLoggedOut)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
