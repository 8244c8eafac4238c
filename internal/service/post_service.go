package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"devconnector/internal/domain"
	"devconnector/internal/repository"
)

// PostService coordinates the post feed, likes and comments.
type PostService interface {
	Create(ctx context.Context, userID, text string) (*domain.Post, error)
	List(ctx context.Context) ([]domain.Post, error)
	Get(ctx context.Context, postID string) (*domain.Post, error)
	Delete(ctx context.Context, postID, requesterID string) error
	Like(ctx context.Context, postID, requesterID string) (*domain.Post, error)
	Unlike(ctx context.Context, postID, requesterID string) (*domain.Post, error)
	AddComment(ctx context.Context, postID, requesterID, text string) (*domain.Post, error)
	RemoveComment(ctx context.Context, postID, commentID, requesterID string) ([]domain.Comment, error)
}

type postService struct {
	posts repository.PostRepository
	users repository.UserRepository
	now   func() time.Time
}

func NewPostService(posts repository.PostRepository, users repository.UserRepository) PostService {
	return &postService{
		posts: posts,
		users: users,
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *postService) Create(ctx context.Context, userID, text string) (*domain.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, newValidationError("Text is required")
	}

	author, err := s.author(ctx, userID)
	if err != nil {
		return nil, err
	}

	post := &domain.Post{
		ID:        uuid.NewString(),
		UserID:    author.ID,
		Text:      text,
		Name:      author.Name,
		Avatar:    author.Avatar,
		Likes:     []domain.Like{},
		Comments:  []domain.Comment{},
		CreatedAt: s.now(),
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *postService) List(ctx context.Context) ([]domain.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, err
	}
	if posts == nil {
		posts = []domain.Post{}
	}
	for i := range posts {
		normalizePost(&posts[i])
	}
	return posts, nil
}

func (s *postService) Get(ctx context.Context, postID string) (*domain.Post, error) {
	// ids that cannot exist are reported as missing rather than malformed
	if _, err := uuid.Parse(postID); err != nil {
		return nil, ErrPostNotFound
	}
	post, err := s.posts.Get(ctx, postID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	normalizePost(post)
	return post, nil
}

func (s *postService) Delete(ctx context.Context, postID, requesterID string) error {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return err
	}
	if err := AssertOwner(post.UserID, requesterID); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, post.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrPostNotFound
		}
		return err
	}
	return nil
}

func (s *postService) Like(ctx context.Context, postID, requesterID string) (*domain.Post, error) {
	return s.mutate(ctx, postID, func(p *domain.Post) error {
		if !p.AddLike(requesterID) {
			return ErrAlreadyLiked
		}
		return nil
	})
}

func (s *postService) Unlike(ctx context.Context, postID, requesterID string) (*domain.Post, error) {
	return s.mutate(ctx, postID, func(p *domain.Post) error {
		if !p.RemoveLike(requesterID) {
			return ErrNotLiked
		}
		return nil
	})
}

func (s *postService) AddComment(ctx context.Context, postID, requesterID, text string) (*domain.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, newValidationError("Text is required")
	}

	author, err := s.author(ctx, requesterID)
	if err != nil {
		return nil, err
	}

	return s.mutate(ctx, postID, func(p *domain.Post) error {
		p.AddComment(domain.Comment{
			ID:        uuid.NewString(),
			UserID:    author.ID,
			Text:      text,
			Name:      author.Name,
			Avatar:    author.Avatar,
			CreatedAt: s.now(),
		})
		return nil
	})
}

func (s *postService) RemoveComment(ctx context.Context, postID, commentID, requesterID string) ([]domain.Comment, error) {
	post, err := s.mutate(ctx, postID, func(p *domain.Post) error {
		comment, ok := p.FindComment(commentID)
		if !ok {
			return ErrCommentNotFound
		}
		if err := AssertOwner(comment.UserID, requesterID); err != nil {
			return err
		}
		p.RemoveComment(commentID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return post.Comments, nil
}

// mutate is a read-modify-write of one post document; concurrent writers race and the last one wins.
func (s *postService) mutate(ctx context.Context, postID string, fn func(*domain.Post) error) (*domain.Post, error) {
	post, err := s.Get(ctx, postID)
	if err != nil {
		return nil, err
	}
	if err := fn(post); err != nil {
		return nil, err
	}
	if err := s.posts.Update(ctx, post); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

func (s *postService) author(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func normalizePost(p *domain.Post) {
	if p.Likes == nil {
		p.Likes = []domain.Like{}
	}
	if p.Comments == nil {
		p.Comments = []domain.Comment{}
	}
}
