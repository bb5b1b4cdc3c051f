package request

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func validDraft() Draft {
	return Draft{
		EmployeeID:      uuid.New(),
		RoleID:          uuid.New(),
		AdministratorID: uuid.New(),
		Justification:   "  strong React background  ",
		Urgency:         3,
	}
}

func TestDraftValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *Draft)
		ok     bool
	}{
		{name: "valid", mutate: func(d *Draft) {}, ok: true},
		{name: "blank justification", mutate: func(d *Draft) { d.Justification = " \t " }},
		{name: "urgency zero", mutate: func(d *Draft) { d.Urgency = 0 }},
		{name: "urgency six", mutate: func(d *Draft) { d.Urgency = 6 }},
		{name: "missing admin", mutate: func(d *Draft) { d.AdministratorID = uuid.Nil }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := validDraft()
			tt.mutate(&d)
			err := d.Validate()
			if tt.ok && err != nil {
				t.Fatalf("unexpected err: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrValidation) {
				t.Fatalf("expected ErrValidation, got %v", err)
			}
		})
	}
}

func TestNew_Pending(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	req := New(uuid.New(), validDraft(), now)
	if req.State != StatePendiente {
		t.Fatalf("expected PENDIENTE, got %s", req.State)
	}
	if req.ResolvedAt != nil || req.ResolutionComments != nil {
		t.Fatalf("expected unresolved request")
	}
	if req.Justification != "strong React background" {
		t.Fatalf("expected trimmed justification, got %q", req.Justification)
	}
	if !req.CreatedAt.Equal(now) {
		t.Fatalf("unexpected created_at %s", req.CreatedAt)
	}
}

func TestResolve(t *testing.T) {
	now := time.Now()
	req := New(uuid.New(), validDraft(), now)

	resolved, err := Resolve(req, Resolution{Outcome: StateRechazada, Comments: "no capacity", At: now})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resolved.State != StateRechazada || *resolved.ResolutionComments != "no capacity" || resolved.ResolvedAt == nil {
		t.Fatalf("unexpected resolved request: %+v", resolved)
	}

	again, err := Resolve(resolved, Resolution{Outcome: StateAprobada, At: now})
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
	if again.State != StateRechazada || *again.ResolutionComments != "no capacity" {
		t.Fatalf("terminal request must stay unchanged, got %+v", again)
	}
}

func TestResolve_RejectsPendingOutcome(t *testing.T) {
	req := New(uuid.New(), validDraft(), time.Now())
	if _, err := Resolve(req, Resolution{Outcome: StatePendiente}); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}

func TestParseState(t *testing.T) {
	s, err := ParseState(" aprobada ")
	if err != nil || s != StateAprobada {
		t.Fatalf("expected APROBADA, got %q err=%v", s, err)
	}
	if _, err := ParseState("cerrada"); !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
}
