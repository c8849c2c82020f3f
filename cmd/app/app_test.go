package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogCPT/internal/config"
)

func TestNew_SQLite(t *testing.T) {
	cfg := &config.Config{
		DB:              config.DB{Driver: config.DriverSQLite, DbPATH: filepath.Join(t.TempDir(), "posts.db")},
		SecretKey:       "secret",
		SessionDuration: time.Hour,
	}

	application, err := New(context.Background(), cfg)
	require.NoError(t, err)
	defer application.Close()

	assert.NotNil(t, application.Repo)
	assert.NotNil(t, application.Services)
	assert.NotNil(t, application.Sessions)

	handler, err := application.Handler()
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Code)

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestNew_BadDriver(t *testing.T) {
	cfg := &config.Config{DB: config.DB{Driver: "oracle"}}

	_, err := New(context.Background(), cfg)
	assert.Error(t, err)
}
