package handlers

import (
	"errors"
	"fmt"
	"net/http"

	"blogCPT/internal/forms"
	"blogCPT/internal/service"
	"blogCPT/internal/session"
)

func (h *Handlers) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	post, err := h.PostService.FindPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			http.NotFound(w, r)
			return
		}
		serverError(w, r, err)
		return
	}

	var form forms.CommentForm
	if r.Method == http.MethodGet {
		h.render(w, r, http.StatusOK, "add_comment", &PageData{Form: form, Post: post})
		return
	}

	if err := forms.Decode(r, &form); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if errs := h.Validator.Validate(&form); errs != nil {
		h.render(w, r, http.StatusUnprocessableEntity, "add_comment", &PageData{Form: form, Errors: errs, Post: post})
		return
	}

	if _, err := h.CommentService.AddComment(r.Context(), id, session.UserFrom(r.Context()), form.Text); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			http.NotFound(w, r)
			return
		}
		serverError(w, r, err)
		return
	}

	h.Sessions.SetFlash(w, "success", flashCommentAdded)
	http.Redirect(w, r, fmt.Sprintf("/post/%d", id), http.StatusSeeOther)
}
