package tenant

import "time"

// Plan is the subscription tier a tenant is on.
type Plan string

const (
	PlanEssential Plan = "essential"
	PlanPro       Plan = "pro"
	PlanProTrial  Plan = "pro_trial"
)

// HasCloudSync reports whether the plan includes the cloud sync entitlement.
func (p Plan) HasCloudSync() bool {
	return p == PlanPro || p == PlanProTrial
}

// HasStockTracking reports whether the plan includes inventory tracking.
func (p Plan) HasStockTracking() bool {
	return p == PlanPro || p == PlanProTrial
}

// SubscriptionStatus is the billing state of a tenant's subscription.
type SubscriptionStatus string

const (
	StatusTrial   SubscriptionStatus = "trial"
	StatusActive  SubscriptionStatus = "active"
	StatusPending SubscriptionStatus = "pending"
	StatusExpired SubscriptionStatus = "expired"
)

// Profile identifies a tenant and carries the plan that gates sync activity
// and the pro feature surface. Profiles are not reconciled by the sync
// engine: the remote side is the single source of truth.
type Profile struct {
	ID                    string             `json:"id"`
	Plan                  Plan               `json:"plan"`
	SubscriptionStatus    SubscriptionStatus `json:"subscription_status"`
	SubscriptionExpiresAt *time.Time         `json:"subscription_expires_at,omitempty"`
	UpdatedAt             time.Time          `json:"updated_at"`
}

// SyncEnabled reports whether sync cycles should run for this tenant at the
// given instant. An expired or lapsed subscription silences the engine; this
// is a feature-tier gate, not a technical constraint.
func (p *Profile) SyncEnabled(now time.Time) bool {
	if !p.Plan.HasCloudSync() {
		return false
	}
	if p.SubscriptionStatus == StatusExpired {
		return false
	}
	if p.SubscriptionExpiresAt != nil && now.After(*p.SubscriptionExpiresAt) {
		return false
	}
	return true
}
