package models

import "time"

// Subscription plan tiers recognized by the backend. PlanPremium is the tier
// that gates the AI advisory feature.
const (
	PlanFree    = "Plan Gratis"
	PlanPremium = "Plan Premium"
)

// Subscription status values stored on an account.
const (
	SubscriptionActive = "active"
	SubscriptionNone   = "none"
)

// Account roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// Account represents a registered business owner. The document ID is the
// Firebase Auth UID.
// Invariant: an account with SubscriptionStatus "active" always carries a
// recognized Plan and a non-zero PlanStartDate (both are written in the same
// update by the checkout commit).
type Account struct {
	UID                 string     `json:"uid" firestore:"-"` // Firebase Auth UID, the document ID
	Email               string     `json:"email" firestore:"email"`
	DisplayName         string     `json:"displayName,omitempty" firestore:"displayName,omitempty"`
	Plan                string     `json:"plan" firestore:"plan"`
	SubscriptionStatus  string     `json:"subscriptionStatus" firestore:"subscriptionStatus"`
	PlanStartDate       time.Time  `json:"planStartDate,omitempty" firestore:"planStartDate,omitempty"`
	DeletionScheduledAt *time.Time `json:"deletionScheduledAt,omitempty" firestore:"deletionScheduledAt,omitempty"`
	Role                string     `json:"role" firestore:"role"`
	CreatedAt           time.Time  `json:"createdAt" firestore:"createdAt,serverTimestamp"`
	UpdatedAt           time.Time  `json:"updatedAt" firestore:"updatedAt,serverTimestamp"`
}

// IsPremium reports whether the account is entitled to premium-only features.
func (a *Account) IsPremium() bool {
	return a.Plan == PlanPremium && a.SubscriptionStatus == SubscriptionActive
}
