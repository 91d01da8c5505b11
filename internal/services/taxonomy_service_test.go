package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/unetra-global/member-portal-sub000/internal/mocks"
	"github.com/unetra-global/member-portal-sub000/internal/models"
)

type TaxonomyTestSuite struct {
	suite.Suite
	ctx        context.Context
	categories *CategoryService
	services   *ServicesService
	links      *MemberServicesService
}

func (s *TaxonomyTestSuite) SetupTest() {
	s.ctx = context.Background()
	repos := mocks.NewRepositories()
	s.categories = NewCategoryService(repos.Category)
	s.services = NewServicesService(repos.Service, repos.Category)
	s.links = NewMemberServicesService(repos.MemberService, repos.Service)
}

func (s *TaxonomyTestSuite) TestCategoryNamesAreUnique() {
	category, err := s.categories.Create(s.ctx, &CategoryRequest{Name: "Taxation", Field: "Finance"})
	s.Require().NoError(err)

	_, err = s.categories.Create(s.ctx, &CategoryRequest{Name: "taxation"})
	var conflict *ConflictError
	s.Require().True(errors.As(err, &conflict))
	s.Equal("category", conflict.Resource)

	other, err := s.categories.Create(s.ctx, &CategoryRequest{Name: "Assurance"})
	s.Require().NoError(err)

	_, err = s.categories.Update(s.ctx, other.ID, &CategoryRequest{Name: "TAXATION"})
	s.ErrorIs(err, ErrConflict)

	updated, err := s.categories.Update(s.ctx, category.ID, &CategoryRequest{Name: "Direct Taxation", Field: "Finance"})
	s.Require().NoError(err)
	s.Equal("Direct Taxation", updated.Name)

	list, err := s.categories.List(s.ctx)
	s.Require().NoError(err)
	s.Len(list, 2)

	s.NoError(s.categories.Delete(s.ctx, other.ID))
	_, err = s.categories.Get(s.ctx, other.ID)
	s.ErrorIs(err, ErrNotFound)
}

func (s *TaxonomyTestSuite) TestServices() {
	category, err := s.categories.Create(s.ctx, &CategoryRequest{Name: "Taxation"})
	s.Require().NoError(err)

	_, err = s.services.Create(s.ctx, &ServiceRequest{Name: "GST Filing", CategoryID: &uuid.Nil})
	s.ErrorIs(err, ErrNotFound)

	gst, err := s.services.Create(s.ctx, &ServiceRequest{Name: "GST Filing", CategoryID: &category.ID})
	s.Require().NoError(err)

	_, err = s.services.Create(s.ctx, &ServiceRequest{Name: "gst filing"})
	s.ErrorIs(err, ErrConflict)

	_, err = s.services.Create(s.ctx, &ServiceRequest{Name: "Bookkeeping"})
	s.Require().NoError(err)

	filtered, err := s.services.List(s.ctx, &category.ID)
	s.Require().NoError(err)
	s.Require().Len(filtered, 1)
	s.Equal(gst.ID, filtered[0].ID)

	all, err := s.services.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(all, 2)

	again, err := s.services.UpsertByName(s.ctx, "GST FILING", nil)
	s.Require().NoError(err)
	s.Equal(gst.ID, again.ID)
	s.Equal(&category.ID, again.CategoryID)

	_, err = s.services.UpsertByName(s.ctx, "  ", nil)
	var verr *ValidationError
	s.True(errors.As(err, &verr))
}

func (s *TaxonomyTestSuite) TestSeedIsIdempotent() {
	entries := []TaxonomyEntry{
		{Name: "Taxation", Field: "Finance", Services: []string{"GST Filing", "Income Tax Returns"}},
		{Name: "Assurance", Field: "Audit", Services: []string{"Statutory Audit"}},
	}

	for i := 0; i < 2; i++ {
		result, err := Seed(s.ctx, s.categories, s.services, entries)
		s.Require().NoError(err)
		s.Equal(SeedResult{Categories: 2, Services: 3}, result)
	}

	categories, err := s.categories.List(s.ctx)
	s.Require().NoError(err)
	s.Len(categories, 2)

	services, err := s.services.List(s.ctx, nil)
	s.Require().NoError(err)
	s.Len(services, 3)
}

func (s *TaxonomyTestSuite) TestMemberServiceLinks() {
	service, err := s.services.Create(s.ctx, &ServiceRequest{Name: "Transfer Pricing Study"})
	s.Require().NoError(err)

	owner := Caller{MemberID: uuid.New(), Tier: models.MembershipTierFree}
	other := Caller{MemberID: uuid.New(), Tier: models.MembershipTierAdmin}

	link, err := s.links.Create(s.ctx, owner, &CreateMemberServiceRequest{ServiceID: service.ID, RelevantYearsExperience: 6})
	s.Require().NoError(err)
	s.True(link.IsActive)
	s.Equal(service.Name, link.Service.Name)

	_, err = s.links.Create(s.ctx, owner, &CreateMemberServiceRequest{ServiceID: service.ID})
	var conflict *ConflictError
	s.Require().True(errors.As(err, &conflict))
	var verr *ValidationError
	s.False(errors.As(err, &verr))

	_, err = s.links.Create(s.ctx, owner, &CreateMemberServiceRequest{ServiceID: uuid.New()})
	s.ErrorIs(err, ErrNotFound)

	_, err = s.links.Create(s.ctx, owner, &CreateMemberServiceRequest{})
	s.True(errors.As(err, &verr))

	preferred := true
	_, err = s.links.Update(s.ctx, other, link.ID, &UpdateMemberServiceRequest{IsPreferred: &preferred})
	s.ErrorIs(err, ErrForbidden)

	updated, err := s.links.Update(s.ctx, owner, link.ID, &UpdateMemberServiceRequest{IsPreferred: &preferred})
	s.Require().NoError(err)
	s.True(updated.IsPreferred)

	listed, err := s.links.ListForMember(s.ctx, owner.MemberID)
	s.Require().NoError(err)
	s.Len(listed, 1)

	s.ErrorIs(s.links.Delete(s.ctx, other, link.ID), ErrForbidden)
	s.NoError(s.links.Delete(s.ctx, owner, link.ID))
	s.ErrorIs(s.links.Delete(s.ctx, owner, link.ID), ErrNotFound)
}

func TestTaxonomySuite(t *testing.T) {
	suite.Run(t, new(TaxonomyTestSuite))
}
