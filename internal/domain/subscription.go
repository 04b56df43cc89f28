package domain

import "time"

// PlanID identifies a subscription plan.
type PlanID string

const (
	PlanFree PlanID = "free"
	PlanPlus PlanID = "plus"
)

// UnlimitedAnalyses marks a plan without a monthly analysis quota.
const UnlimitedAnalyses = -1

// PlusPeriod is the length of one paid subscription period.
const PlusPeriod = 30 * 24 * time.Hour

// Plan describes a subscription offering.
type Plan struct {
	ID              PlanID   `json:"id"`
	Name            string   `json:"name"`
	Price           int      `json:"price"`
	Currency        string   `json:"currency"`
	AIAnalysisLimit int      `json:"ai_analysis_limit"`
	Features        []string `json:"features"`
}

// Plans lists every offered plan. The free plan's quota may be overridden by
// configuration.
var Plans = map[PlanID]Plan{
	PlanFree: {
		ID:              PlanFree,
		Name:            "무료",
		Price:           0,
		Currency:        "KRW",
		AIAnalysisLimit: 5,
		Features:        []string{"기본 꿈 기록", "월 5회 AI 분석", "기본 통계", "커뮤니티 참여"},
	},
	PlanPlus: {
		ID:              PlanPlus,
		Name:            "꿈결 플러스",
		Price:           5900,
		Currency:        "KRW",
		AIAnalysisLimit: UnlimitedAnalyses,
		Features: []string{
			"무제한 AI 분석", "고급 통계 및 인사이트", "꿈 시각화", "데자뷰 분석", "우선 고객 지원", "모든 커뮤니티 기능",
		},
	},
}

// IsSubscriptionActive reports whether the user holds an unexpired paid plan.
func (u *User) IsSubscriptionActive(now time.Time) bool {
	return u.SubscriptionPlan == PlanPlus && u.SubscriptionExpiresAt != nil && u.SubscriptionExpiresAt.After(now)
}

// EffectivePlan returns the plan whose quota applies at now. An expired plus
// subscription falls back to free.
func (u *User) EffectivePlan(now time.Time) PlanID {
	if u.IsSubscriptionActive(now) {
		return PlanPlus
	}
	return PlanFree
}

// MonthStart returns the first instant of now's month in UTC.
func MonthStart(now time.Time) time.Time {
	now = now.UTC()
	return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
}

// NextMonthStart returns the first instant of the month after now's.
func NextMonthStart(now time.Time) time.Time {
	return MonthStart(now).AddDate(0, 1, 0)
}
