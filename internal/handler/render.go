package handlers

import (
	"bytes"
	"crypto/md5"
	"embed"
	"encoding/hex"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"

	"github.com/rs/zerolog/log"

	"blogCPT/internal/forms"
	"blogCPT/internal/models"
	"blogCPT/internal/session"
)

//go:embed templates/*.html
var templateFS embed.FS

// PageData is handed to every page template.
type PageData struct {
	User     *models.User
	Flash    *session.Flash
	Form     any
	Errors   forms.Errors
	Post     *models.Post
	Posts    []models.Post
	Comments []models.Comment
	IsEdit   bool
	Uploads  bool
}

var templateFuncs = template.FuncMap{
	"gravatar": gravatar,
	// post bodies are written by admins in a rich text editor
	"rawHTML": func(s string) template.HTML { return template.HTML(s) },
}

// gravatar returns the avatar URL for an email address.
func gravatar(email string, size int) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	return fmt.Sprintf("https://www.gravatar.com/avatar/%s?s=%d&d=retro&r=g", hex.EncodeToString(sum[:]), size)
}

// loadTemplates parses every page together with the shared layout.
func loadTemplates() (map[string]*template.Template, error) {
	pages, err := fs.Glob(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}

	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		name := strings.TrimSuffix(strings.TrimPrefix(page, "templates/"), ".html")
		if name == "layout" {
			continue
		}

		t, err := template.New(name).
			Funcs(templateFuncs).
			Option("missingkey=zero").
			ParseFS(templateFS, "templates/layout.html", page)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		templates[name] = t
	}
	return templates, nil
}

// render writes a full page. The current user and any pending flash are filled in.
func (h *Handlers) render(w http.ResponseWriter, r *http.Request, status int, name string, data *PageData) {
	t, ok := h.pages[name]
	if !ok {
		serverError(w, r, fmt.Errorf("template %q not found", name))
		return
	}

	if data == nil {
		data = &PageData{}
	}
	data.User = session.UserFrom(r.Context())
	if data.Flash == nil {
		data.Flash = h.Sessions.PopFlash(w, r)
	}

	var buf bytes.Buffer
	if err := t.ExecuteTemplate(&buf, "layout", data); err != nil {
		serverError(w, r, fmt.Errorf("failed to render %s: %w", name, err))
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := buf.WriteTo(w); err != nil {
		log.Debug().Err(err).Str("page", name).Msg("client went away")
	}
}
