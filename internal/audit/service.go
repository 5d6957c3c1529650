package audit

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"alphabook/pkg/logger"

	"github.com/google/uuid"
)

// Repository is the persistence contract for audit events.
// It is append-only: there is no Update or Delete.
type Repository interface {
	Append(ctx context.Context, e Event) error
}

// Service records authentication and user-management events.
// Records are internal and never exposed through the public API.
type Service struct {
	repo  Repository
	clock func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, clock: time.Now}
}

var ErrInvalidEvent = errors.New("audit: invalid event")

// Append validates e, fills ID and CreatedAt, and stores it.
func (s *Service) Append(ctx context.Context, e Event) error {
	if s == nil || s.repo == nil {
		return errors.New("audit: repository not configured")
	}
	if !e.Type.Valid() {
		return ErrInvalidEvent
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = s.clock().UTC()
	}
	return s.repo.Append(ctx, e)
}

// Record is Append for callers that must not fail on audit errors.
func (s *Service) Record(ctx context.Context, e Event) {
	if s == nil {
		return
	}
	if err := s.Append(ctx, e); err != nil {
		logger.From(ctx).Warn("audit record dropped", "type", e.Type, "err", err)
	}
}

func (s *Service) LoginSucceeded(ctx context.Context, userID int64, role, ip string) {
	s.Record(ctx, Event{Type: EventLoginSucceeded, ActorUserID: userID, ActorRole: role, TargetUserID: userID, IPAddress: ip})
}

// LoginFailed stores no identifier for the attempted account, only the client.
func (s *Service) LoginFailed(ctx context.Context, ip string) {
	s.Record(ctx, Event{Type: EventLoginFailed, IPAddress: ip, Message: "invalid credentials"})
}

func (s *Service) LoginRateLimited(ctx context.Context, ip string) {
	s.Record(ctx, Event{Type: EventLoginRateLimited, IPAddress: ip})
}

func (s *Service) TokenRefreshed(ctx context.Context, userID int64, ip string) {
	s.Record(ctx, Event{Type: EventTokenRefreshed, ActorUserID: userID, TargetUserID: userID, IPAddress: ip})
}

func (s *Service) RoleChanged(ctx context.Context, actorID int64, actorRole string, targetID int64, from, to, ip string) {
	s.Record(ctx, Event{
		Type:         EventRoleChanged,
		ActorUserID:  actorID,
		ActorRole:    actorRole,
		TargetUserID: targetID,
		IPAddress:    ip,
		Message:      "role changed",
		Metadata:     metadata(map[string]string{"from": from, "to": to}),
	})
}

func (s *Service) SessionsRevoked(ctx context.Context, actorID int64, actorRole string, targetID int64, ip string) {
	s.Record(ctx, Event{
		Type:         EventSessionsRevoked,
		ActorUserID:  actorID,
		ActorRole:    actorRole,
		TargetUserID: targetID,
		IPAddress:    ip,
		Message:      "refresh tokens revoked",
	})
}

func metadata(v map[string]string) string {
	b, err := json.Marshal(v)
	if err != nil {
		return ""
	}
	return string(b)
}
