package repository

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blogCPT/internal/config"
	"blogCPT/internal/database"
	"blogCPT/internal/models"
)

func setupSQLite(t *testing.T) *Repository {
	t.Helper()
	cfg := config.DB{Driver: config.DriverSQLite, DbPATH: filepath.Join(t.TempDir(), "blog.db")}

	db, err := database.Open(cfg.Driver, database.DSN(cfg))
	require.NoError(t, err)
	t.Cleanup(func() { db.CloseDB() })
	require.NoError(t, db.RunMigrations())

	return NewRepository(db.DB)
}

func createUser(t *testing.T, repo *Repository, email, username string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Username: username}
	require.NoError(t, repo.User.CreateUser(context.Background(), user, "secret"))
	return user
}

func TestSQLite_DuplicateUser(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	createUser(t, repo, "a@b.com", "alice")

	err := repo.User.CreateUser(ctx, &models.User{Email: "a@b.com", Username: "other"}, "secret")
	assert.ErrorIs(t, err, ErrDuplicate)

	err = repo.User.CreateUser(ctx, &models.User{Email: "other@b.com", Username: "alice"}, "secret")
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = repo.User.GetUserByEmail(ctx, "other@b.com")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_PostLifecycle(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	admin := createUser(t, repo, "admin@b.com", "admin")
	editor := createUser(t, repo, "editor@b.com", "editor")

	first := &models.Post{Title: "First", Subtitle: "s", Date: "June 05, 2024", Body: "<p>b</p>", ImgURL: "http://img/1", AuthorID: admin.ID}
	second := &models.Post{Title: "Second", Subtitle: "s", Date: "June 06, 2024", Body: "<p>b</p>", ImgURL: "http://img/2", AuthorID: admin.ID}
	require.NoError(t, repo.Post.Create(ctx, first))
	require.NoError(t, repo.Post.Create(ctx, second))

	dup := &models.Post{Title: "First", Subtitle: "s", Date: "d", Body: "b", ImgURL: "u", AuthorID: admin.ID}
	assert.ErrorIs(t, repo.Post.Create(ctx, dup), ErrDuplicate)

	posts, err := repo.Post.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 2)
	assert.Equal(t, "First", posts[0].Title)
	assert.Equal(t, "Second", posts[1].Title)
	assert.Equal(t, "admin", posts[0].AuthorName)

	first.Title = "First, revised"
	first.AuthorID = editor.ID
	require.NoError(t, repo.Post.Update(ctx, first))

	got, err := repo.Post.GetByID(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, "First, revised", got.Title)
	assert.Equal(t, editor.ID, got.AuthorID)
	assert.Equal(t, "editor", got.AuthorName)
	assert.Equal(t, "June 05, 2024", got.Date)

	second.Title = "First, revised"
	assert.ErrorIs(t, repo.Post.Update(ctx, second), ErrDuplicate)

	assert.ErrorIs(t, repo.Post.Update(ctx, &models.Post{ID: 999, Title: "x", AuthorID: admin.ID}), ErrNotFound)

	_, err = repo.Post.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSQLite_DeletePostRemovesComments(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	admin := createUser(t, repo, "admin@b.com", "admin")
	reader := createUser(t, repo, "reader@b.com", "reader")

	post := &models.Post{Title: "T", Subtitle: "s", Date: "d", Body: "b", ImgURL: "u", AuthorID: admin.ID}
	require.NoError(t, repo.Post.Create(ctx, post))

	for _, text := range []string{"one", "two"} {
		c := &models.Comment{Text: text, AuthorID: reader.ID, PostID: post.ID}
		require.NoError(t, repo.Comment.Create(ctx, c))
		assert.NotZero(t, c.ID)
	}

	comments, err := repo.Comment.ListByPostID(ctx, post.ID)
	require.NoError(t, err)
	require.Len(t, comments, 2)
	assert.Equal(t, "one", comments[0].Text)
	assert.Equal(t, "reader", comments[0].AuthorName)
	assert.Equal(t, "reader@b.com", comments[0].AuthorEmail)

	require.NoError(t, repo.Post.Delete(ctx, post.ID))
	assert.ErrorIs(t, repo.Post.Delete(ctx, post.ID), ErrNotFound)

	comments, err = repo.Comment.ListByPostID(ctx, post.ID)
	require.NoError(t, err)
	assert.Empty(t, comments)
}

func TestSQLite_CommentRequiresExistingPost(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	reader := createUser(t, repo, "reader@b.com", "reader")

	err := repo.Comment.Create(ctx, &models.Comment{Text: "orphan", AuthorID: reader.ID, PostID: 42})
	assert.Error(t, err)
}

func TestSQLite_SetAdmin(t *testing.T) {
	repo := setupSQLite(t)
	ctx := context.Background()

	user := createUser(t, repo, "a@b.com", "alice")
	assert.False(t, user.IsAdmin)

	require.NoError(t, repo.User.SetAdmin(ctx, "a@b.com", true))

	got, err := repo.User.GetUserByID(ctx, user.ID)
	require.NoError(t, err)
	assert.True(t, got.IsAdmin)
}
