// Package form implements the dialog-style editing flow used by the
// management screens: open a draft seeded from an existing record or
// from defaults, edit fields, validate, then dispatch a create or an
// update depending on how the draft was opened.
package form

import (
	"context"
	"sync"

	"github.com/cuide-se/cuidese-api/internal/domain"
)

// Values is the mutable field set of a draft.
type Values map[string]string

// Validator checks a draft and returns per-field messages. An empty
// map means the draft is valid.
type Validator func(values Values) map[string]string

// Submitter persists a draft. The id is empty for a create and holds
// the record id for an update.
type Submitter func(ctx context.Context, id string, values Values) error

// Required builds a validator that rejects blank values for the given
// fields, reporting every missing field at once.
func Required(fields ...string) Validator {
	return func(values Values) map[string]string {
		problems := make(map[string]string)
		for _, f := range fields {
			if values[f] == "" {
				problems[f] = "campo obrigatório"
			}
		}
		return problems
	}
}

// Draft is one in-flight editing session. It is not shared between
// records: closing it resets everything, and the next Open starts
// clean.
type Draft struct {
	mu        sync.Mutex
	open      bool
	id        string // empty while creating
	values    Values
	errors    map[string]string
	validate  Validator
	submit    Submitter
	defaults  Values
	submitErr error
}

// NewDraft wires a draft to its validation and persistence functions.
// defaults seed creates; Open with a record seeds edits instead.
func NewDraft(defaults Values, validate Validator, submit Submitter) *Draft {
	return &Draft{defaults: defaults, validate: validate, submit: submit}
}

// Open starts an editing session. Pass an empty id and nil values to
// create; pass the record id and its current values to edit. Opening
// always discards whatever a previous session left behind.
func (d *Draft) Open(id string, existing Values) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = true
	d.id = id
	d.errors = nil
	d.submitErr = nil
	d.values = make(Values, len(d.defaults))
	for k, v := range d.defaults {
		d.values[k] = v
	}
	for k, v := range existing {
		d.values[k] = v
	}
}

// IsOpen reports whether an editing session is active.
func (d *Draft) IsOpen() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.open
}

// Editing reports whether the session targets an existing record.
func (d *Draft) Editing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.id != ""
}

// SetField updates one field and clears its stale validation message,
// so the user sees the complaint disappear as they fix it.
func (d *Draft) SetField(name, value string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.open {
		return
	}
	d.values[name] = value
	delete(d.errors, name)
}

// Value returns the current value of one field.
func (d *Draft) Value(name string) string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.values[name]
}

// FieldErrors returns the per-field validation messages from the last
// Submit, keyed by field name.
func (d *Draft) FieldErrors() map[string]string {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]string, len(d.errors))
	for k, v := range d.errors {
		out[k] = v
	}
	return out
}

// Err returns the persistence error from the last Submit, if any.
func (d *Draft) Err() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.submitErr
}

// Submit validates and persists the draft. Validation failures keep
// the session open with per-field messages and never reach the
// submitter. A persistence failure also keeps the session open so the
// user can retry; only a successful submit closes it.
func (d *Draft) Submit(ctx context.Context) error {
	d.mu.Lock()
	if !d.open {
		d.mu.Unlock()
		return domain.NewFieldError("form", "nenhum formulário aberto")
	}
	if d.validate != nil {
		if problems := d.validate(d.values); len(problems) > 0 {
			d.errors = problems
			d.mu.Unlock()
			return &domain.ErrValidation{Fields: problems, Message: "campos inválidos"}
		}
	}
	d.errors = nil
	id := d.id
	values := make(Values, len(d.values))
	for k, v := range d.values {
		values[k] = v
	}
	d.mu.Unlock()

	if err := d.submit(ctx, id, values); err != nil {
		d.mu.Lock()
		d.submitErr = err
		d.mu.Unlock()
		return err
	}

	d.Close()
	return nil
}

// Close abandons the session and clears all draft state.
func (d *Draft) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.open = false
	d.id = ""
	d.values = nil
	d.errors = nil
	d.submitErr = nil
}
