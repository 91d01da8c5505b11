package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"

	"github.com/unetra-global/member-portal-sub000/internal/config"
	"github.com/unetra-global/member-portal-sub000/internal/models"
	"github.com/unetra-global/member-portal-sub000/internal/repository"
	"github.com/unetra-global/member-portal-sub000/internal/utils"
)

// PaymentIntent is the gateway-neutral view of a payment attempt.
type PaymentIntent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
	Metadata     map[string]string
}

const PaymentIntentSucceeded = string(stripe.PaymentIntentStatusSucceeded)

type PaymentGateway interface {
	CreateIntent(ctx context.Context, amount int64, currency, idempotencyKey string, metadata map[string]string) (*PaymentIntent, error)
	GetIntent(ctx context.Context, id string) (*PaymentIntent, error)
}

// StripeGateway creates PaymentIntents through the Stripe API.
type StripeGateway struct{}

func NewStripeGateway(secretKey string) *StripeGateway {
	stripe.Key = secretKey
	return &StripeGateway{}
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount int64, currency, idempotencyKey string, metadata map[string]string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.SetIdempotencyKey(idempotencyKey)
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("failed to create payment intent: %w", err)
	}
	return fromStripe(pi), nil
}

func (g *StripeGateway) GetIntent(ctx context.Context, id string) (*PaymentIntent, error) {
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := paymentintent.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve payment intent: %w", err)
	}
	return fromStripe(pi), nil
}

func fromStripe(pi *stripe.PaymentIntent) *PaymentIntent {
	return &PaymentIntent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
		Metadata:     pi.Metadata,
	}
}

type MembershipService struct {
	members  repository.MemberRepository
	payments repository.PaymentRepository
	gateway  PaymentGateway
	currency string
	prices   map[models.MembershipTier]int64
	log      *logrus.Entry
}

type UpgradeRequest struct {
	Tier models.MembershipTier `json:"tier" validate:"required,membership_tier"`
}

type ConfirmUpgradeRequest struct {
	PaymentIntentID string `json:"payment_intent_id" validate:"required"`
}

type UpgradeResponse struct {
	PaymentID    string                `json:"payment_id"`
	ClientSecret string                `json:"client_secret"`
	Status       string                `json:"status"`
	Tier         models.MembershipTier `json:"tier"`
	AmountCents  int64                 `json:"amount_cents"`
	Currency     string                `json:"currency"`
}

func NewMembershipService(members repository.MemberRepository, payments repository.PaymentRepository, gateway PaymentGateway, cfg config.PaymentConfig) *MembershipService {
	return &MembershipService{
		members:  members,
		payments: payments,
		gateway:  gateway,
		currency: strings.ToLower(cfg.Currency),
		prices: map[models.MembershipTier]int64{
			models.MembershipTierPremium: cfg.PremiumPriceCents,
		},
		log: logrus.WithField("service", "membership"),
	}
}

// StartUpgrade opens a payment intent for a paid tier and records the
// pending payment.
func (s *MembershipService) StartUpgrade(ctx context.Context, caller Caller, req *UpgradeRequest) (*UpgradeResponse, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	price, ok := s.prices[req.Tier]
	if !ok {
		return nil, fieldError("tier", "membership_tier", "tier cannot be purchased")
	}
	if caller.Tier == req.Tier || caller.IsAdmin() {
		return nil, fmt.Errorf("%w: membership is already %s", ErrInvalidState, caller.Tier)
	}

	nonce, err := utils.GenerateRandomString(16)
	if err != nil {
		return nil, fmt.Errorf("generate idempotency key: %w", err)
	}
	key := utils.HashString(fmt.Sprintf("%s:%s:%s", caller.MemberID, req.Tier, nonce))

	intent, err := s.gateway.CreateIntent(ctx, price, s.currency, key, map[string]string{
		"member_id": caller.MemberID.String(),
		"tier":      string(req.Tier),
	})
	if err != nil {
		return nil, fmt.Errorf("start upgrade: %w", err)
	}

	payment := &models.MembershipPayment{
		MemberID:         caller.MemberID,
		Tier:             req.Tier,
		AmountCents:      price,
		Currency:         s.currency,
		PaymentReference: intent.ID,
		Status:           models.PaymentStatusPending,
	}
	if err := s.payments.Create(ctx, payment); err != nil {
		return nil, fmt.Errorf("record payment: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"member_id": caller.MemberID,
		"tier":      req.Tier,
		"intent":    intent.ID,
	}).Info("Membership upgrade started")

	return &UpgradeResponse{
		PaymentID:    intent.ID,
		ClientSecret: intent.ClientSecret,
		Status:       intent.Status,
		Tier:         req.Tier,
		AmountCents:  price,
		Currency:     s.currency,
	}, nil
}

// ConfirmUpgrade applies the tier once the gateway reports the intent as
// succeeded. Confirming an already completed payment is a no-op.
func (s *MembershipService) ConfirmUpgrade(ctx context.Context, caller Caller, req *ConfirmUpgradeRequest) (*models.MembershipPayment, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	payment, err := s.payments.FindByReference(ctx, req.PaymentIntentID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, notFound("payment")
	}
	if err != nil {
		return nil, fmt.Errorf("find payment: %w", err)
	}
	if !caller.Owns(payment.MemberID) {
		return nil, notFound("payment")
	}
	if payment.Status == models.PaymentStatusCompleted {
		return payment, nil
	}

	intent, err := s.gateway.GetIntent(ctx, req.PaymentIntentID)
	if err != nil {
		return nil, fmt.Errorf("confirm upgrade: %w", err)
	}

	switch intent.Status {
	case PaymentIntentSucceeded:
		payment.Status = models.PaymentStatusCompleted
	case string(stripe.PaymentIntentStatusCanceled):
		payment.Status = models.PaymentStatusFailed
		if err := s.payments.Save(ctx, payment); err != nil {
			return nil, fmt.Errorf("update payment: %w", err)
		}
		return nil, fieldError("payment_intent_id", "payment_status", "payment was canceled")
	default:
		return nil, fieldError("payment_intent_id", "payment_status", "payment has not succeeded (status "+intent.Status+")")
	}

	if err := s.payments.Save(ctx, payment); err != nil {
		return nil, fmt.Errorf("update payment: %w", err)
	}
	if err := s.members.UpdateTier(ctx, payment.MemberID, payment.Tier); err != nil {
		return nil, fmt.Errorf("update membership tier: %w", err)
	}

	s.log.WithFields(logrus.Fields{
		"member_id": payment.MemberID,
		"tier":      payment.Tier,
	}).Info("Membership upgraded")
	return payment, nil
}
