package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/unetra-global/member-portal-sub000/internal/config"
	"github.com/unetra-global/member-portal-sub000/internal/mocks"
	"github.com/unetra-global/member-portal-sub000/internal/models"
)

type fakeGateway struct {
	intents map[string]*PaymentIntent
	keys    []string
}

func newFakeGateway() *fakeGateway {
	return &fakeGateway{intents: make(map[string]*PaymentIntent)}
}

func (g *fakeGateway) CreateIntent(_ context.Context, amount int64, currency, key string, metadata map[string]string) (*PaymentIntent, error) {
	g.keys = append(g.keys, key)
	intent := &PaymentIntent{
		ID:           "pi_" + uuid.NewString()[:8],
		ClientSecret: "secret",
		Status:       "requires_payment_method",
		Amount:       amount,
		Currency:     currency,
		Metadata:     metadata,
	}
	g.intents[intent.ID] = intent
	return intent, nil
}

func (g *fakeGateway) GetIntent(_ context.Context, id string) (*PaymentIntent, error) {
	intent, ok := g.intents[id]
	if !ok {
		return nil, errors.New("no such intent")
	}
	copied := *intent
	return &copied, nil
}

type MembershipServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	gateway  *fakeGateway
	members  *mocks.MockMemberRepository
	payments *mocks.MockPaymentRepository
	service  *MembershipService
	caller   Caller
}

func (s *MembershipServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.gateway = newFakeGateway()
	s.members = mocks.NewMockMemberRepository()
	s.payments = mocks.NewMockPaymentRepository()
	s.service = NewMembershipService(s.members, s.payments, s.gateway, config.PaymentConfig{
		Currency:          "INR",
		PremiumPriceCents: 499900,
	})

	member := &models.Member{AuthUserID: "auth-1", FirstName: "A", LastName: "B", Email: "a@example.com"}
	s.Require().NoError(s.members.Create(s.ctx, member, nil))
	s.caller = Caller{MemberID: member.ID, Tier: models.MembershipTierFree}
}

func (s *MembershipServiceTestSuite) TestUpgradeFlow() {
	started, err := s.service.StartUpgrade(s.ctx, s.caller, &UpgradeRequest{Tier: models.MembershipTierPremium})
	s.Require().NoError(err)
	s.Equal(int64(499900), started.AmountCents)
	s.Equal("inr", started.Currency)
	s.Require().Len(s.gateway.keys, 1)
	s.Len(s.gateway.keys[0], 64)

	payment, err := s.payments.FindByReference(s.ctx, started.PaymentID)
	s.Require().NoError(err)
	s.Equal(models.PaymentStatusPending, payment.Status)

	// not paid yet
	_, err = s.service.ConfirmUpgrade(s.ctx, s.caller, &ConfirmUpgradeRequest{PaymentIntentID: started.PaymentID})
	var verr *ValidationError
	s.Require().True(errors.As(err, &verr))

	s.gateway.intents[started.PaymentID].Status = PaymentIntentSucceeded
	confirmed, err := s.service.ConfirmUpgrade(s.ctx, s.caller, &ConfirmUpgradeRequest{PaymentIntentID: started.PaymentID})
	s.Require().NoError(err)
	s.Equal(models.PaymentStatusCompleted, confirmed.Status)

	member, err := s.members.FindByID(s.ctx, s.caller.MemberID)
	s.Require().NoError(err)
	s.Equal(models.MembershipTierPremium, member.MembershipTier)

	// confirming twice is harmless
	_, err = s.service.ConfirmUpgrade(s.ctx, s.caller, &ConfirmUpgradeRequest{PaymentIntentID: started.PaymentID})
	s.NoError(err)
}

func (s *MembershipServiceTestSuite) TestUpgradeRejections() {
	var verr *ValidationError

	_, err := s.service.StartUpgrade(s.ctx, s.caller, &UpgradeRequest{Tier: "GOLD"})
	s.True(errors.As(err, &verr))

	_, err = s.service.StartUpgrade(s.ctx, s.caller, &UpgradeRequest{Tier: models.MembershipTierAdmin})
	s.True(errors.As(err, &verr))

	premium := Caller{MemberID: s.caller.MemberID, Tier: models.MembershipTierPremium}
	_, err = s.service.StartUpgrade(s.ctx, premium, &UpgradeRequest{Tier: models.MembershipTierPremium})
	s.ErrorIs(err, ErrInvalidState)

	started, err := s.service.StartUpgrade(s.ctx, s.caller, &UpgradeRequest{Tier: models.MembershipTierPremium})
	s.Require().NoError(err)

	stranger := Caller{MemberID: uuid.New(), Tier: models.MembershipTierFree}
	_, err = s.service.ConfirmUpgrade(s.ctx, stranger, &ConfirmUpgradeRequest{PaymentIntentID: started.PaymentID})
	s.ErrorIs(err, ErrNotFound)

	_, err = s.service.ConfirmUpgrade(s.ctx, s.caller, &ConfirmUpgradeRequest{PaymentIntentID: "pi_missing"})
	s.ErrorIs(err, ErrNotFound)
}

func TestMembershipServiceSuite(t *testing.T) {
	suite.Run(t, new(MembershipServiceTestSuite))
}
