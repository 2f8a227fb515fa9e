package form

import (
	"context"
	"errors"
	"testing"

	"github.com/cuide-se/cuidese-api/internal/domain"
)

type submitCall struct {
	id     string
	values Values
}

func recorder(fail error) (*[]submitCall, Submitter) {
	calls := &[]submitCall{}
	return calls, func(ctx context.Context, id string, values Values) error {
		*calls = append(*calls, submitCall{id: id, values: values})
		return fail
	}
}

func TestDraft_CreateSeedsDefaults(t *testing.T) {
	calls, submit := recorder(nil)
	d := NewDraft(Values{"status": "active"}, Required("name"), submit)

	d.Open("", nil)
	if d.Value("status") != "active" {
		t.Fatalf("status = %q, want default seeded", d.Value("status"))
	}
	if d.Editing() {
		t.Fatal("Editing() = true for a create session")
	}

	d.SetField("name", "Ana")
	if err := d.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(*calls) != 1 || (*calls)[0].id != "" {
		t.Fatalf("calls = %+v, want one create dispatch", *calls)
	}
	if d.IsOpen() {
		t.Fatal("session still open after successful submit")
	}
}

func TestDraft_EditSeedsExistingAndDispatchesUpdate(t *testing.T) {
	calls, submit := recorder(nil)
	d := NewDraft(Values{"status": "active"}, Required("name"), submit)

	d.Open("c1", Values{"name": "Ana", "status": "inactive"})
	if !d.Editing() {
		t.Fatal("Editing() = false for an edit session")
	}
	if d.Value("status") != "inactive" {
		t.Fatalf("status = %q, record values must win over defaults", d.Value("status"))
	}

	d.SetField("name", "Ana Paula")
	if err := d.Submit(context.Background()); err != nil {
		t.Fatalf("Submit: %v", err)
	}
	if len(*calls) != 1 || (*calls)[0].id != "c1" {
		t.Fatalf("calls = %+v, want one update dispatch for c1", *calls)
	}
	if (*calls)[0].values["name"] != "Ana Paula" {
		t.Fatalf("submitted name = %q", (*calls)[0].values["name"])
	}
}

func TestDraft_ValidationReportsEveryMissingField(t *testing.T) {
	calls, submit := recorder(nil)
	d := NewDraft(nil, Required("name", "phone"), submit)

	d.Open("", nil)
	err := d.Submit(context.Background())
	var verr *domain.ErrValidation
	if !errors.As(err, &verr) {
		t.Fatalf("Submit error = %v, want ErrValidation", err)
	}
	if len(verr.Fields) != 2 {
		t.Fatalf("field errors = %v, want both missing fields reported", verr.Fields)
	}
	if len(*calls) != 0 {
		t.Fatal("invalid draft reached the submitter")
	}
	if !d.IsOpen() {
		t.Fatal("session closed by a validation failure")
	}

	// Fixing a field clears its message without touching the other.
	d.SetField("name", "Ana")
	remaining := d.FieldErrors()
	if _, ok := remaining["name"]; ok {
		t.Fatal("fixed field still flagged")
	}
	if _, ok := remaining["phone"]; !ok {
		t.Fatal("untouched field lost its message")
	}
}

func TestDraft_SubmitFailureKeepsSessionOpen(t *testing.T) {
	wantErr := errors.New("conexão recusada")
	_, submit := recorder(wantErr)
	d := NewDraft(nil, nil, submit)

	d.Open("c1", Values{"name": "Ana"})
	if err := d.Submit(context.Background()); !errors.Is(err, wantErr) {
		t.Fatalf("Submit = %v, want %v", err, wantErr)
	}
	if !d.IsOpen() {
		t.Fatal("session closed by a persistence failure")
	}
	if !errors.Is(d.Err(), wantErr) {
		t.Fatalf("Err() = %v, want last submit error kept", d.Err())
	}
}

func TestDraft_ReopenDiscardsPreviousSession(t *testing.T) {
	_, submit := recorder(nil)
	d := NewDraft(nil, Required("name"), submit)

	d.Open("c1", Values{"name": "Ana"})
	d.SetField("name", "")
	_ = d.Submit(context.Background()) // leaves a field error behind

	d.Open("", nil)
	if d.Value("name") != "" {
		t.Fatalf("name = %q, want clean draft", d.Value("name"))
	}
	if len(d.FieldErrors()) != 0 {
		t.Fatalf("field errors = %v, want none after reopen", d.FieldErrors())
	}
	if d.Editing() {
		t.Fatal("reopened create session still targets the old record")
	}
}
