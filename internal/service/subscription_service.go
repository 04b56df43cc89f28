package service

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/dreamtracer/dreamtracer-api/internal/config"
	"github.com/dreamtracer/dreamtracer-api/internal/domain"
	"github.com/dreamtracer/dreamtracer-api/internal/platform/logger"
	"github.com/dreamtracer/dreamtracer-api/internal/redact"
	"github.com/dreamtracer/dreamtracer-api/internal/store"
	"github.com/google/uuid"
)

// PaymentMethods are the accepted payment methods for upgrades.
var PaymentMethods = []string{"card", "apple_pay", "google_pay"}

// PlanCatalog lists the available plans.
type PlanCatalog struct {
	Plans       map[domain.PlanID]domain.Plan `json:"plans"`
	CurrentTime time.Time                     `json:"current_time"`
}

// Usage counts a user's AI analyses.
type Usage struct {
	MonthlyCount int       `json:"monthly_count"`
	TotalCount   int       `json:"total_count"`
	MonthStart   time.Time `json:"month_start"`
}

// SubscriptionStatus describes a user's plan and usage.
type SubscriptionStatus struct {
	UserID       uuid.UUID     `json:"user_id"`
	CurrentPlan  domain.PlanID `json:"current_plan"`
	PlanDetails  domain.Plan   `json:"plan_details"`
	IsActive     bool          `json:"is_active"`
	ExpiresAt    *time.Time    `json:"expires_at"`
	Usage        Usage         `json:"usage"`
	CanUpgrade   bool          `json:"can_upgrade"`
	CanDowngrade bool          `json:"can_downgrade"`
}

// UpgradeResult is returned by a successful upgrade.
type UpgradeResult struct {
	Success      bool                `json:"success"`
	Message      string              `json:"message"`
	Subscription *SubscriptionStatus `json:"subscription"`
	PaymentID    uuid.UUID           `json:"payment_id"`
}

// CancelResult is returned by a successful cancellation.
type CancelResult struct {
	Success   bool       `json:"success"`
	Message   string     `json:"message"`
	ExpiresAt *time.Time `json:"expires_at"`
}

// UsageCheck reports whether the user may request another analysis.
// Remaining and Limit are domain.UnlimitedAnalyses for unlimited plans.
type UsageCheck struct {
	CanAnalyze bool       `json:"can_analyze"`
	Remaining  int        `json:"remaining"`
	Limit      int        `json:"limit"`
	ResetDate  *time.Time `json:"reset_date"`
	Usage      *Usage     `json:"usage,omitempty"`
}

// UsageChecker reports a user's remaining analysis quota.
type UsageChecker interface {
	CheckUsage(ctx context.Context, userID uuid.UUID) (*UsageCheck, error)
}

// SubscriptionService manages plans, upgrades and analysis quotas.
type SubscriptionService interface {
	UsageChecker

	Plans() *PlanCatalog

	Status(ctx context.Context, userID uuid.UUID) (*SubscriptionStatus, error)

	// Upgrade switches the user to plan. Payment is simulated and succeeds
	// for every method in PaymentMethods.
	Upgrade(ctx context.Context, userID uuid.UUID, plan domain.PlanID, paymentMethod string) (*UpgradeResult, error)

	// Cancel keeps the subscription until it expires.
	Cancel(ctx context.Context, userID uuid.UUID) (*CancelResult, error)
}

type subscriptionService struct {
	users  store.UserStore
	dreams store.DreamStore
	plans  map[domain.PlanID]domain.Plan
	now    func() time.Time
	logger *slog.Logger
}

// NewSubscriptionService creates a SubscriptionService. Non-zero values in cfg
// override the free plan quota and the plus plan price.
func NewSubscriptionService(
	users store.UserStore,
	dreams store.DreamStore,
	cfg config.SubscriptionConfig,
	logger *slog.Logger,
) SubscriptionService {
	if logger == nil {
		logger = slog.Default()
	}

	plans := maps.Clone(domain.Plans)
	if cfg.FreeMonthlyAnalyses > 0 {
		free := plans[domain.PlanFree]
		free.AIAnalysisLimit = cfg.FreeMonthlyAnalyses
		plans[domain.PlanFree] = free
	}
	if cfg.PlusPriceKRW > 0 {
		plus := plans[domain.PlanPlus]
		plus.Price = cfg.PlusPriceKRW
		plans[domain.PlanPlus] = plus
	}

	return &subscriptionService{
		users:  users,
		dreams: dreams,
		plans:  plans,
		now:    time.Now,
		logger: logger.With("component", "subscription_service"),
	}
}

func (s *subscriptionService) Plans() *PlanCatalog {
	return &PlanCatalog{Plans: maps.Clone(s.plans), CurrentTime: s.now().UTC()}
}

func (s *subscriptionService) usage(ctx context.Context, userID uuid.UUID, now time.Time) (*Usage, error) {
	monthStart := domain.MonthStart(now)
	monthly, err := s.dreams.CountAnalysesSince(ctx, userID, monthStart)
	if err != nil {
		return nil, fmt.Errorf("failed to count monthly analyses: %w", err)
	}
	total, err := s.dreams.CountAnalysesSince(ctx, userID, time.Time{})
	if err != nil {
		return nil, fmt.Errorf("failed to count analyses: %w", err)
	}
	return &Usage{MonthlyCount: monthly, TotalCount: total, MonthStart: monthStart}, nil
}

func (s *subscriptionService) Status(ctx context.Context, userID uuid.UUID) (*SubscriptionStatus, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	now := s.now()
	usage, err := s.usage(ctx, userID, now)
	if err != nil {
		return nil, err
	}

	plan, ok := s.plans[user.SubscriptionPlan]
	if !ok {
		plan = s.plans[domain.PlanFree]
	}
	active := user.IsSubscriptionActive(now)

	return &SubscriptionStatus{
		UserID:       user.ID,
		CurrentPlan:  user.SubscriptionPlan,
		PlanDetails:  plan,
		IsActive:     active,
		ExpiresAt:    user.SubscriptionExpiresAt,
		Usage:        *usage,
		CanUpgrade:   user.SubscriptionPlan == domain.PlanFree,
		CanDowngrade: user.SubscriptionPlan == domain.PlanPlus && !active,
	}, nil
}

func (s *subscriptionService) Upgrade(
	ctx context.Context,
	userID uuid.UUID,
	planID domain.PlanID,
	paymentMethod string,
) (*UpgradeResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if _, ok := s.plans[planID]; !ok {
		return nil, domain.ErrInvalidPlan
	}
	if !slices.Contains(PaymentMethods, paymentMethod) {
		return nil, ErrUnsupportedPaymentMethod
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	paymentID := uuid.New()

	var expiresAt *time.Time
	if planID == domain.PlanPlus {
		t := s.now().UTC().Add(domain.PlusPeriod)
		expiresAt = &t
	}
	if err := s.users.UpdateSubscription(ctx, userID, planID, expiresAt); err != nil {
		log.Error("failed to update subscription",
			"error", redact.Error(err),
			"user_id", userID,
			"plan", planID)
		return nil, NewServiceError("upgrade_subscription", "failed to save subscription", err)
	}
	log.Info("subscription upgraded", "user_id", userID, "plan", planID, "payment_id", paymentID)

	status, err := s.Status(ctx, userID)
	if err != nil {
		return nil, err
	}
	return &UpgradeResult{
		Success:      true,
		Message:      "구독이 업그레이드되었습니다",
		Subscription: status,
		PaymentID:    paymentID,
	}, nil
}

func (s *subscriptionService) Cancel(ctx context.Context, userID uuid.UUID) (*CancelResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}
	if user.SubscriptionPlan == domain.PlanFree {
		return nil, ErrFreePlanCancel
	}

	logger.FromContextOrDefault(ctx, s.logger).Info("subscription cancellation requested", "user_id", userID)
	return &CancelResult{
		Success:   true,
		Message:   "구독이 취소되었습니다. 현재 구독은 만료일까지 유지됩니다.",
		ExpiresAt: user.SubscriptionExpiresAt,
	}, nil
}

// CheckUsage applies the quota of the user's effective plan: an expired plus
// subscription counts as free.
func (s *subscriptionService) CheckUsage(ctx context.Context, userID uuid.UUID) (*UsageCheck, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve user: %w", err)
	}

	now := s.now()
	limit := s.plans[user.EffectivePlan(now)].AIAnalysisLimit
	if limit == domain.UnlimitedAnalyses {
		return &UsageCheck{
			CanAnalyze: true,
			Remaining:  domain.UnlimitedAnalyses,
			Limit:      domain.UnlimitedAnalyses,
		}, nil
	}

	usage, err := s.usage(ctx, userID, now)
	if err != nil {
		return nil, err
	}
	reset := domain.NextMonthStart(now)
	return &UsageCheck{
		CanAnalyze: usage.MonthlyCount < limit,
		Remaining:  max(0, limit-usage.MonthlyCount),
		Limit:      limit,
		ResetDate:  &reset,
		Usage:      usage,
	}, nil
}
