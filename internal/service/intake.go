package service

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/cuide-se/cuidese-api/internal/domain"
	"github.com/cuide-se/cuidese-api/internal/form"
	"github.com/cuide-se/cuidese-api/internal/port"
)

var intakeTracer = otel.Tracer("service/intake")

// IntakeService runs the front-desk client intake flow as draft
// sessions. Reception opens a draft (blank for a new client, seeded
// from the record for an edit), fills fields over several requests,
// and submits once; only a valid submit touches the store. Drafts are
// held in memory per API process, like any other dialog state.
type IntakeService struct {
	store  port.ClientStore
	logger *zap.Logger

	mu     sync.Mutex
	drafts map[string]*form.Draft
}

// NewIntakeService creates the intake service.
func NewIntakeService(store port.ClientStore, logger *zap.Logger) *IntakeService {
	return &IntakeService{
		store:  store,
		logger: logger,
		drafts: make(map[string]*form.Draft),
	}
}

func (s *IntakeService) newDraft() *form.Draft {
	return form.NewDraft(
		form.Values{"status": "active"},
		form.Required("name", "phone"),
		func(ctx context.Context, id string, values form.Values) error {
			in := &domain.ClientInput{
				Name:      values["name"],
				Email:     values["email"],
				Phone:     values["phone"],
				BirthDate: values["birth_date"],
				Notes:     values["notes"],
				Status:    values["status"],
			}
			if id == "" {
				_, err := s.store.CreateClient(ctx, in)
				return err
			}
			_, err := s.store.UpdateClient(ctx, id, in)
			return err
		},
	)
}

// OpenDraft starts an intake session and returns its id plus the
// seeded field values. An empty clientID opens a blank create draft;
// otherwise the client record is loaded and the draft edits it.
func (s *IntakeService) OpenDraft(ctx context.Context, clientID string) (string, form.Values, error) {
	ctx, span := intakeTracer.Start(ctx, "IntakeService.OpenDraft")
	defer span.End()

	var existing form.Values
	if clientID != "" {
		client, err := s.store.GetClient(ctx, clientID)
		if err != nil {
			return "", nil, err
		}
		existing = form.Values{
			"name":       client.Name,
			"email":      client.Email,
			"phone":      client.Phone,
			"birth_date": client.BirthDate,
			"notes":      client.Notes,
			"status":     client.Status,
		}
	}

	draft := s.newDraft()
	draft.Open(clientID, existing)
	draftID := uuid.New().String()

	s.mu.Lock()
	s.drafts[draftID] = draft
	s.mu.Unlock()

	s.logger.Info("intake draft opened",
		zap.String("draft_id", draftID),
		zap.Bool("editing", clientID != ""),
	)
	return draftID, s.fields(draft), nil
}

// SetFields applies field edits to an open draft and returns the
// current values.
func (s *IntakeService) SetFields(draftID string, values map[string]string) (form.Values, error) {
	draft, err := s.draft(draftID)
	if err != nil {
		return nil, err
	}
	for name, value := range values {
		draft.SetField(name, value)
	}
	return s.fields(draft), nil
}

// Submit validates and persists a draft. A validation failure keeps the
// draft open and reports the per-field messages; a store failure keeps
// it open for retry. Success removes the draft.
func (s *IntakeService) Submit(ctx context.Context, draftID string) error {
	ctx, span := intakeTracer.Start(ctx, "IntakeService.Submit")
	defer span.End()

	draft, err := s.draft(draftID)
	if err != nil {
		return err
	}
	if err := draft.Submit(ctx); err != nil {
		s.logger.Debug("intake submit rejected",
			zap.String("draft_id", draftID),
			zap.Error(err),
		)
		return err
	}

	s.mu.Lock()
	delete(s.drafts, draftID)
	s.mu.Unlock()

	s.logger.Info("intake draft submitted", zap.String("draft_id", draftID))
	return nil
}

// Discard abandons a draft without persisting anything.
func (s *IntakeService) Discard(draftID string) error {
	s.mu.Lock()
	draft, ok := s.drafts[draftID]
	delete(s.drafts, draftID)
	s.mu.Unlock()

	if !ok {
		return &domain.ErrNotFound{Resource: "draft", ID: draftID}
	}
	draft.Close()
	return nil
}

func (s *IntakeService) draft(draftID string) (*form.Draft, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	draft, ok := s.drafts[draftID]
	if !ok {
		return nil, &domain.ErrNotFound{Resource: "draft", ID: draftID}
	}
	return draft, nil
}

// intakeFields is the field set every draft exposes, in API order.
var intakeFields = []string{"name", "email", "phone", "birth_date", "notes", "status"}

func (s *IntakeService) fields(draft *form.Draft) form.Values {
	out := make(form.Values, len(intakeFields))
	for _, name := range intakeFields {
		out[name] = draft.Value(name)
	}
	return out
}
