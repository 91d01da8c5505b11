package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/unetra-global/member-portal-sub000/internal/mocks"
	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/repository"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

type PostServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	posts   *mocks.MockPostRepository
	service *PostService
	owner   Caller
	other   Caller
}

func (s *PostServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.posts = mocks.NewMockPostRepository()
	s.service = NewPostService(s.posts)
	s.owner = Caller{MemberID: uuid.New(), Tier: models.MembershipTierFree}
	s.other = Caller{MemberID: uuid.New(), Tier: models.MembershipTierFree}
}

func (s *PostServiceTestSuite) TestCreateValidation() {
	var verr *ValidationError

	_, err := s.service.Create(s.ctx, s.owner, &PostRequest{Content: "   "})
	s.True(errors.As(err, &verr))

	_, err = s.service.Create(s.ctx, s.owner, &PostRequest{Content: strings.Repeat("x", 3001)})
	s.True(errors.As(err, &verr))

	bad := "ftp://example.com/a.png"
	_, err = s.service.Create(s.ctx, s.owner, &PostRequest{Content: "hello", ImageData: &bad})
	s.Require().True(errors.As(err, &verr))
	s.Equal("image_data", verr.Details[0].Field)

	huge := "data:image/png;base64," + strings.Repeat("A", MaxPostImageBytes)
	_, err = s.service.Create(s.ctx, s.owner, &PostRequest{Content: "hello", ImageData: &huge})
	s.True(errors.As(err, &verr))

	image := "data:image/png;base64,iVBORw0KGgo="
	post, err := s.service.Create(s.ctx, s.owner, &PostRequest{Content: " Filing season is here ", ImageData: &image})
	s.Require().NoError(err)
	s.Equal("Filing season is here", post.Content)
	s.Equal(s.owner.MemberID, post.MemberID)
}

func (s *PostServiceTestSuite) TestCountersMoveByOneAndFloorAtZero() {
	post, err := s.service.Create(s.ctx, s.owner, &PostRequest{Content: "Counters"})
	s.Require().NoError(err)

	post, err = s.service.Like(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), post.LikesCount)

	post, err = s.service.Repost(s.ctx, post.ID)
	s.Require().NoError(err)
	post, err = s.service.Repost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), post.RepostsCount)
	s.Equal(int64(1), post.LikesCount)

	post, err = s.service.Unrepost(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), post.RepostsCount)

	for i := 0; i < 3; i++ {
		post, err = s.service.Unlike(s.ctx, post.ID)
		s.Require().NoError(err)
	}
	s.Equal(int64(0), post.LikesCount)

	_, err = s.service.Like(s.ctx, uuid.New())
	s.ErrorIs(err, ErrNotFound)
}

func (s *PostServiceTestSuite) TestReplaceAndDeleteOwnership() {
	post, err := s.service.Create(s.ctx, s.owner, &PostRequest{Content: "Original"})
	s.Require().NoError(err)

	_, err = s.service.Replace(s.ctx, s.other, post.ID, &PostRequest{Content: "Hijacked"})
	s.ErrorIs(err, ErrForbidden)

	replaced, err := s.service.Replace(s.ctx, s.owner, post.ID, &PostRequest{Content: "Replaced"})
	s.Require().NoError(err)
	s.Equal("Replaced", replaced.Content)
	s.Nil(replaced.ImageData)

	s.ErrorIs(s.service.Delete(s.ctx, s.other, post.ID), ErrForbidden)

	admin := Caller{MemberID: uuid.New(), Tier: models.MembershipTierAdmin}
	s.NoError(s.service.Delete(s.ctx, admin, post.ID))

	_, err = s.service.Get(s.ctx, post.ID)
	s.ErrorIs(err, ErrNotFound)
}

// engagedPosts records a like and a repost right after every FindByID.
type engagedPosts struct {
	*mocks.MockPostRepository
}

func (r engagedPosts) FindByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := r.MockPostRepository.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := r.AdjustCounter(ctx, id, repository.PostCounterLikes, 1); err != nil {
		return nil, err
	}
	if err := r.AdjustCounter(ctx, id, repository.PostCounterReposts, 1); err != nil {
		return nil, err
	}
	return post, nil
}

func (s *PostServiceTestSuite) TestReplaceKeepsConcurrentCounters() {
	post, err := s.service.Create(s.ctx, s.owner, &PostRequest{Content: "Original"})
	s.Require().NoError(err)

	svc := NewPostService(engagedPosts{s.posts})
	replaced, err := svc.Replace(s.ctx, s.owner, post.ID, &PostRequest{Content: "Edited"})
	s.Require().NoError(err)
	s.Equal(int64(1), replaced.LikesCount)
	s.Equal(int64(1), replaced.RepostsCount)

	stored, err := s.posts.FindByID(s.ctx, post.ID)
	s.Require().NoError(err)
	s.Equal("Edited", stored.Content)
	s.Equal(int64(1), stored.LikesCount)
	s.Equal(int64(1), stored.RepostsCount)
}

func (s *PostServiceTestSuite) TestFeedPaginates() {
	for i := 0; i < 3; i++ {
		_, err := s.service.Create(s.ctx, s.owner, &PostRequest{Content: "post"})
		s.Require().NoError(err)
	}

	result, err := s.service.Feed(s.ctx, utils.PaginationParams{Page: 2, Limit: 2})
	s.Require().NoError(err)
	s.Equal(int64(3), result.Total)
	s.Equal(2, result.TotalPages)
	s.Len(result.Data, 1)
}

func TestPostServiceSuite(t *testing.T) {
	suite.Run(t, new(PostServiceTestSuite))
}
