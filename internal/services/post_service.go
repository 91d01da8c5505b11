package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/repository"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

// MaxPostImageBytes caps the encoded image attached to a post.
const MaxPostImageBytes = 5 << 20

type PostService struct {
	posts repository.PostRepository
	log   *logrus.Entry
}

type PostRequest struct {
	Content   string  `json:"content" validate:"required,min=1,max=3000"`
	ImageData *string `json:"image_data,omitempty"`
}

func NewPostService(posts repository.PostRepository) *PostService {
	return &PostService{
		posts: posts,
		log:   logrus.WithField("service", "posts"),
	}
}

func checkPostRequest(req *PostRequest) error {
	req.Content = strings.TrimSpace(req.Content)
	if err := validate(req); err != nil {
		return err
	}
	if req.ImageData == nil || *req.ImageData == "" {
		req.ImageData = nil
		return nil
	}

	image := *req.ImageData
	if len(image) > MaxPostImageBytes {
		return fieldError("image_data", "max", "image must be at most 5MB")
	}
	if !strings.HasPrefix(image, "data:image/") &&
		!strings.HasPrefix(image, "https://") &&
		!strings.HasPrefix(image, "http://") {
		return fieldError("image_data", "image", "image must be a data URL or an uploaded file URL")
	}
	return nil
}

func (s *PostService) Create(ctx context.Context, caller Caller, req *PostRequest) (*models.Post, error) {
	if err := checkPostRequest(req); err != nil {
		return nil, err
	}

	post := &models.Post{
		MemberID:  caller.MemberID,
		Content:   req.Content,
		ImageData: req.ImageData,
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}

	s.log.WithFields(logrus.Fields{"post_id": post.ID, "member_id": caller.MemberID}).Info("Post created")
	return post, nil
}

func (s *PostService) Get(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := s.posts.FindByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("post")
	}
	if err != nil {
		return nil, fmt.Errorf("find post: %w", err)
	}
	return post, nil
}

// Feed lists posts newest first.
func (s *PostService) Feed(ctx context.Context, params utils.PaginationParams) (*utils.PaginationResult, error) {
	posts, total, err := s.posts.List(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	result := utils.CreatePaginationResult(posts, total, params)
	return &result, nil
}

// Replace overwrites the content and image of the caller's own post.
func (s *PostService) Replace(ctx context.Context, caller Caller, id uuid.UUID, req *PostRequest) (*models.Post, error) {
	if err := checkPostRequest(req); err != nil {
		return nil, err
	}

	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !caller.Owns(post.MemberID) {
		return nil, ErrForbidden
	}

	post.Content = req.Content
	post.ImageData = req.ImageData
	post.Member = nil
	if err := s.posts.Save(ctx, post); err != nil {
		return nil, fmt.Errorf("update post: %w", err)
	}
	return post, nil
}

func (s *PostService) Delete(ctx context.Context, caller Caller, id uuid.UUID) error {
	post, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if !caller.Owns(post.MemberID) && !caller.IsAdmin() {
		return ErrForbidden
	}

	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return notFound("post")
		}
		return fmt.Errorf("delete post: %w", err)
	}
	return nil
}

func (s *PostService) Like(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.adjust(ctx, id, repository.PostCounterLikes, 1)
}

func (s *PostService) Unlike(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.adjust(ctx, id, repository.PostCounterLikes, -1)
}

func (s *PostService) Repost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.adjust(ctx, id, repository.PostCounterReposts, 1)
}

func (s *PostService) Unrepost(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	return s.adjust(ctx, id, repository.PostCounterReposts, -1)
}

func (s *PostService) adjust(ctx context.Context, id uuid.UUID, counter repository.PostCounter, delta int) (*models.Post, error) {
	if err := s.posts.AdjustCounter(ctx, id, counter, delta); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, notFound("post")
		}
		return nil, fmt.Errorf("adjust post %s: %w", counter, err)
	}
	return s.Get(ctx, id)
}
