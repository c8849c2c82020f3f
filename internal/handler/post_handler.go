package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"blogCPT/internal/forms"
	"blogCPT/internal/models"
	"blogCPT/internal/service"
	"blogCPT/internal/session"
)

const imageField = "image"

// postID reads the numeric {id} route variable.
func postID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (h *Handlers) ListPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.PostService.ListPosts(r.Context())
	if err != nil {
		serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "index", &PageData{Posts: posts})
}

func (h *Handlers) ShowPost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	detail, err := h.PostService.GetPost(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			http.NotFound(w, r)
			return
		}
		serverError(w, r, err)
		return
	}

	h.render(w, r, http.StatusOK, "post", &PageData{Post: detail.Post, Comments: detail.Comments})
}

func (h *Handlers) NewPost(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodGet {
		h.renderPostForm(w, r, http.StatusOK, forms.PostForm{}, nil, false)
		return
	}

	form, uploaded, errs, err := h.decodePostForm(w, r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if errs != nil {
		h.renderPostForm(w, r, http.StatusUnprocessableEntity, form, errs, false)
		return
	}

	post, err := h.PostService.CreatePost(r.Context(), session.UserFrom(r.Context()), postRequest(form))
	if err != nil {
		h.discardUpload(r, &form, uploaded)
		if errors.Is(err, service.ErrTitleTaken) {
			h.renderPostForm(w, r, http.StatusUnprocessableEntity, form, forms.Errors{"title": err.Error()}, false)
			return
		}
		serverError(w, r, err)
		return
	}

	log.Info().Int64("post_id", post.ID).Int64("author_id", post.AuthorID).Msg("post created")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) EditPost(w http.ResponseWriter, r *http.Request) {
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

	if r.Method == http.MethodGet {
		h.renderPostForm(w, r, http.StatusOK, postFormFrom(post), nil, true)
		return
	}

	form, uploaded, errs, err := h.decodePostForm(w, r)
	if err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	if errs != nil {
		h.renderPostForm(w, r, http.StatusUnprocessableEntity, form, errs, true)
		return
	}

	_, err = h.PostService.UpdatePost(r.Context(), id, session.UserFrom(r.Context()), postRequest(form))
	if err != nil {
		h.discardUpload(r, &form, uploaded)
	}
	switch {
	case errors.Is(err, service.ErrTitleTaken):
		h.renderPostForm(w, r, http.StatusUnprocessableEntity, form, forms.Errors{"title": err.Error()}, true)
		return
	case errors.Is(err, service.ErrPostNotFound):
		http.NotFound(w, r)
		return
	case err != nil:
		serverError(w, r, err)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/post/%d", id), http.StatusSeeOther)
}

func (h *Handlers) DeletePost(w http.ResponseWriter, r *http.Request) {
	id, ok := postID(r)
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := h.PostService.DeletePost(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			http.NotFound(w, r)
			return
		}
		serverError(w, r, err)
		return
	}

	log.Info().Int64("post_id", id).Msg("post deleted")
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (h *Handlers) renderPostForm(w http.ResponseWriter, r *http.Request, status int, form forms.PostForm, errs forms.Errors, isEdit bool) {
	h.render(w, r, status, "make-post", &PageData{
		Form:    form,
		Errors:  errs,
		IsEdit:  isEdit,
		Uploads: h.uploadsEnabled(),
	})
}

func (h *Handlers) uploadsEnabled() bool {
	return h.Cfg != nil && h.Cfg.MinIO.Enabled()
}

// decodePostForm reads a urlencoded or multipart post form. An attached
// image replaces img_url and is stored only once every other field is valid;
// its URL is returned as uploaded. The returned error means the request
// itself was unreadable.
func (h *Handlers) decodePostForm(w http.ResponseWriter, r *http.Request) (form forms.PostForm, uploaded string, errs forms.Errors, err error) {
	multipartForm := strings.HasPrefix(r.Header.Get("Content-Type"), "multipart/form-data")
	if multipartForm {
		maxSize := int64(10 << 20)
		if h.Cfg != nil && h.Cfg.MaxUploadSize > 0 {
			maxSize = h.Cfg.MaxUploadSize
		}
		r.Body = http.MaxBytesReader(w, r.Body, maxSize)
		if err := r.ParseMultipartForm(maxSize); err != nil {
			return form, "", nil, err
		}
	}

	if err := forms.Decode(r, &form); err != nil {
		return form, "", nil, err
	}

	var image *multipart.FileHeader
	errs = forms.Errors{}
	if multipartForm {
		image = attachedImage(r, errs)
	}

	var invalid forms.Errors
	if image != nil {
		invalid = h.Validator.ValidateExcept(&form, "ImgURL")
	} else {
		invalid = h.Validator.Validate(&form)
	}
	for field, message := range invalid {
		errs.Add(field, message)
	}
	if len(errs) > 0 {
		return form, "", errs, nil
	}

	if image != nil {
		url, message := h.uploadImage(r, image)
		if message != "" {
			return form, "", forms.Errors{imageField: message}, nil
		}
		form.ImgURL = url
		uploaded = url
	}
	return form, uploaded, nil, nil
}

// attachedImage returns the non-empty image file of the request, recording
// in errs why an attached file cannot be used.
func attachedImage(r *http.Request, errs forms.Errors) *multipart.FileHeader {
	files := r.MultipartForm.File[imageField]
	if len(files) == 0 || files[0].Size == 0 {
		return nil
	}
	header := files[0]
	if !strings.HasPrefix(header.Header.Get("Content-Type"), "image/") {
		errs.Add(imageField, "image must be an image file")
		return nil
	}
	return header
}

func (h *Handlers) uploadImage(r *http.Request, header *multipart.FileHeader) (string, string) {
	file, err := header.Open()
	if err != nil {
		return "", "could not read the uploaded image"
	}
	defer file.Close()

	url, err := h.PostService.UploadImage(r.Context(), header.Filename, file, header.Size)
	if err != nil {
		if errors.Is(err, service.ErrStorageDisabled) {
			return "", "image uploads are not enabled"
		}
		log.Error().Err(err).Str("file", header.Filename).Msg("image upload failed")
		return "", "image upload failed, please try again"
	}
	return url, ""
}

// discardUpload removes an image stored for a post that was not saved and
// takes its URL back out of the form.
func (h *Handlers) discardUpload(r *http.Request, form *forms.PostForm, uploaded string) {
	if uploaded == "" {
		return
	}
	h.PostService.DiscardImage(r.Context(), uploaded)
	form.ImgURL = ""
}

func postRequest(form forms.PostForm) service.PostRequest {
	return service.PostRequest{
		Title:    form.Title,
		Subtitle: form.Subtitle,
		Body:     form.Body,
		ImgURL:   form.ImgURL,
	}
}

func postFormFrom(post *models.Post) forms.PostForm {
	return forms.PostForm{
		Title:    post.Title,
		Subtitle: post.Subtitle,
		ImgURL:   post.ImgURL,
		Body:     post.Body,
	}
}
