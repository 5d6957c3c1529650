package audit

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func TestService_AppendRequiresKnownType(t *testing.T) {
	svc := NewService(NewMemoryRepo())

	if err := svc.Append(context.Background(), Event{}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
	if err := svc.Append(context.Background(), Event{Type: "wallet_debit"}); !errors.Is(err, ErrInvalidEvent) {
		t.Fatalf("expected ErrInvalidEvent, got %v", err)
	}
}

func TestService_FillsIDAndTimestamp(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)
	fixed := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.clock = func() time.Time { return fixed }

	svc.LoginSucceeded(context.Background(), 7, "USER", "1.2.3.4")

	evs := repo.Events()
	if len(evs) != 1 {
		t.Fatalf("expected 1 event, got %d", len(evs))
	}
	e := evs[0]
	if e.ID == "" || !e.CreatedAt.Equal(fixed) {
		t.Fatalf("expected id and timestamp to be filled: %+v", e)
	}
	if e.ActorUserID != 7 || e.TargetUserID != 7 || e.IPAddress != "1.2.3.4" {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestService_RoleChangedCarriesTransition(t *testing.T) {
	repo := NewMemoryRepo()
	svc := NewService(repo)

	svc.RoleChanged(context.Background(), 1, "ADMIN", 2, "USER", "MODERATOR", "10.0.0.1")

	evs := repo.OfType(EventRoleChanged)
	if len(evs) != 1 {
		t.Fatalf("expected role_changed event")
	}
	var meta map[string]string
	if err := json.Unmarshal([]byte(evs[0].Metadata), &meta); err != nil {
		t.Fatalf("metadata: %v", err)
	}
	if meta["from"] != "USER" || meta["to"] != "MODERATOR" {
		t.Fatalf("unexpected metadata: %v", meta)
	}
}

type failingRepo struct{}

func (failingRepo) Append(context.Context, Event) error { return errors.New("disk full") }

func TestService_RecordNeverFails(t *testing.T) {
	NewService(failingRepo{}).LoginFailed(context.Background(), "1.2.3.4")

	var nilSvc *Service
	nilSvc.LoginRateLimited(context.Background(), "1.2.3.4")
}

func TestPostgresRepo_Append(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	svc := NewService(NewPostgresRepo(db))
	mock.ExpectExec("insert into auth_events").
		WithArgs(sqlmock.AnyArg(), "login_failed", nil, "", nil, "1.2.3.4", "invalid credentials", nil, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := svc.Append(context.Background(), Event{Type: EventLoginFailed, IPAddress: "1.2.3.4", Message: "invalid credentials"}); err != nil {
		t.Fatalf("append: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
