package audit

import "time"

// Event is an append-only record of a security-relevant action.
//
// Invariants:
// - Events are never updated or deleted.
// - Events never carry passwords, hashes or tokens.
// - Recording is best-effort; an audit failure must not fail a login.
//
// Storage: table auth_events, INSERT-only.
type Event struct {
	ID   string    `json:"id" db:"id"`
	Type EventType `json:"type" db:"type"`

	// ActorUserID is the authenticated user causing the event, 0 when anonymous.
	ActorUserID int64  `json:"actor_user_id,omitempty" db:"actor_user_id"`
	ActorRole   string `json:"actor_role,omitempty" db:"actor_role"`

	// TargetUserID is the account the event is about.
	TargetUserID int64 `json:"target_user_id,omitempty" db:"target_user_id"`

	// IPAddress is the resolved client identifier used for rate limiting.
	IPAddress string `json:"ip_address,omitempty" db:"ip_address"`

	Message string `json:"message,omitempty" db:"message"`

	// Metadata is optional JSON for details.
	Metadata string `json:"metadata,omitempty" db:"metadata"`

	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type EventType string

const (
	EventLoginSucceeded   EventType = "login_succeeded"
	EventLoginFailed      EventType = "login_failed"
	EventLoginRateLimited EventType = "login_rate_limited"
	EventTokenRefreshed   EventType = "token_refreshed"
	EventRoleChanged      EventType = "role_changed"
	EventSessionsRevoked  EventType = "sessions_revoked"
)

func (t EventType) Valid() bool {
	switch t {
	case EventLoginSucceeded, EventLoginFailed, EventLoginRateLimited,
		EventTokenRefreshed, EventRoleChanged, EventSessionsRevoked:
		return true
	}
	return false
}
