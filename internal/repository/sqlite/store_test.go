package sqlite

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"devconnector/internal/domain"
	"devconnector/internal/repository"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(context.Background(), filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close(context.Background()) })
	return s
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	u := &domain.User{ID: "u1", Name: "Ann", Email: "ann@x.com", PasswordHash: "hash", Avatar: "a.png"}
	require.NoError(t, s.Users.Create(ctx, u))
	assert.False(t, u.CreatedAt.IsZero())

	err := s.Users.Create(ctx, &domain.User{ID: "u2", Name: "Other", Email: "ann@x.com", PasswordHash: "h"})
	require.ErrorIs(t, err, repository.ErrDuplicate)

	got, err := s.Users.GetByEmail(ctx, "ann@x.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "hash", got.PasswordHash)

	_, err = s.Users.GetByID(ctx, "missing")
	require.ErrorIs(t, err, repository.ErrNotFound)

	require.NoError(t, s.Users.UpdateAvatar(ctx, "u1", "b.png"))
	got, err = s.Users.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "b.png", got.Avatar)

	many, err := s.Users.GetMany(ctx, []string{"u1", "missing"})
	require.NoError(t, err)
	assert.Len(t, many, 1)

	require.NoError(t, s.Users.Delete(ctx, "u1"))
	require.ErrorIs(t, s.Users.Delete(ctx, "u1"), repository.ErrNotFound)
}

func TestProfileRepositorySaveUpserts(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := &domain.Profile{ID: "p1", UserID: "u1", Status: "Developer", Skills: []string{"go"}}
	require.NoError(t, s.Profiles.Save(ctx, p))

	p.Status = "Senior Developer"
	p.Experience = []domain.Experience{{ID: "e1", Title: "Dev", Company: "Acme", From: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)}}
	require.NoError(t, s.Profiles.Save(ctx, p))

	got, err := s.Profiles.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "Senior Developer", got.Status)
	require.Len(t, got.Experience, 1)
	assert.True(t, got.Experience[0].From.Equal(p.Experience[0].From))

	all, err := s.Profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	require.NoError(t, s.Profiles.DeleteByUser(ctx, "u1"))
	_, err = s.Profiles.GetByUser(ctx, "u1")
	require.ErrorIs(t, err, repository.ErrNotFound)
}

func TestProfileRepositoryFirstSavesConverge(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := &domain.Profile{ID: "p1", UserID: "u1", Status: "Dev", Skills: []string{"go"}}
	require.NoError(t, s.Profiles.Save(ctx, first))
	createdAt := first.CreatedAt

	second := &domain.Profile{ID: "p2", UserID: "u1", Status: "Lead", Skills: []string{"go"}}
	require.NoError(t, s.Profiles.Save(ctx, second))
	assert.Equal(t, "p1", second.ID, "the stored id wins")
	assert.True(t, second.CreatedAt.Equal(createdAt))

	got, err := s.Profiles.GetByUser(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "p1", got.ID)
	assert.Equal(t, "Lead", got.Status)

	const writers = 8
	ids := make([]string, writers)
	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			p := &domain.Profile{ID: fmt.Sprintf("race-%d", i), UserID: "u2", Status: "Dev", Skills: []string{"go"}}
			if assert.NoError(t, s.Profiles.Save(ctx, p)) {
				ids[i] = p.ID
			}
		}()
	}
	wg.Wait()

	got, err = s.Profiles.GetByUser(ctx, "u2")
	require.NoError(t, err)
	for _, id := range ids {
		assert.Equal(t, got.ID, id)
	}

	all, err := s.Profiles.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestPostRepositoryOrderAndDelete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"old", "mid", "new"} {
		require.NoError(t, s.Posts.Create(ctx, &domain.Post{
			ID:        id,
			UserID:    map[bool]string{true: "u1", false: "u2"}[i < 2],
			Text:      id,
			CreatedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	posts, err := s.Posts.List(ctx)
	require.NoError(t, err)
	require.Len(t, posts, 3)
	assert.Equal(t, []string{"new", "mid", "old"}, []string{posts[0].ID, posts[1].ID, posts[2].ID})

	post, err := s.Posts.Get(ctx, "mid")
	require.NoError(t, err)
	post.Likes = []domain.Like{{UserID: "u2"}}
	require.NoError(t, s.Posts.Update(ctx, post))

	post, err = s.Posts.Get(ctx, "mid")
	require.NoError(t, err)
	assert.Len(t, post.Likes, 1)

	n, err := s.Posts.DeleteByUser(ctx, "u1")
	require.NoError(t, err)
	assert.EqualValues(t, 2, n)

	require.ErrorIs(t, s.Posts.Delete(ctx, "old"), repository.ErrNotFound)
	require.ErrorIs(t, s.Posts.Update(ctx, &domain.Post{ID: "old"}), repository.ErrNotFound)
	require.NoError(t, s.Posts.Delete(ctx, "new"))
}
