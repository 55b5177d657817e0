package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
)

// SessionTimeout bounds one population run end to end. Exceeding it tears
// the session down without saving; there is no partial-result salvage.
const SessionTimeout = 2 * time.Minute

// CustomerDetails is the identity block of a population request.
type CustomerDetails struct {
	CustomerName string `json:"customerName"`
	Address      string `json:"address"`
	Postcode     string `json:"postcode"`
}

// PopulateRequest is one inbound quote population request.
type PopulateRequest struct {
	OpportunityID string            `json:"opportunityId"`
	Customer      CustomerDetails   `json:"customerDetails"`
	Selections    []string          `json:"optionSelections"`
	Inputs        map[string]string `json:"dynamicInputs"`
	UseNewVersion bool              `json:"useNewVersion"`
}

// Field outcome statuses.
const (
	OutcomeWritten       = "written"
	OutcomeSkippedLocked = "skipped_locked"
	OutcomeCoercedRaw    = "coerced_raw"
	OutcomeFailed        = "failed"
)

// FieldOutcome reports what happened to one logical field during a run.
// Skips and coercion fallbacks used to live only in logs; surfacing them
// lets callers tell "every field written" from "some silently skipped".
type FieldOutcome struct {
	FieldID string `json:"fieldId"`
	Status  string `json:"status"`
	Detail  string `json:"detail,omitempty"`
}

// PopulateResult is the outcome of one population run.
type PopulateResult struct {
	Success      bool           `json:"success"`
	DocumentPath string         `json:"documentVersionPath"`
	Version      int            `json:"version"`
	Fields       []FieldOutcome `json:"fields"`
}

// Populate drives one quote workbook through the fixed population
// sequence: acquire file, customer identity, option selections,
// non-equipment dynamics, equipment, per-array fields, payment, save.
// Steps run forward only; a failed field write is logged and the step
// carries on with the rest of its batch.
func Populate(ctx context.Context, cfg Config, req PopulateRequest) (*PopulateResult, error) {
	ctx, cancel := context.WithTimeout(ctx, SessionTimeout)
	defer cancel()

	// ── Acquire file ─────────────────────────────────────────
	store := cfg.Store()
	ref, err := acquireVersion(store, cfg, req)
	if err != nil {
		return nil, err
	}

	session, err := OpenWorkbook(ref.Path)
	if err != nil {
		return nil, err
	}

	p := &run{
		session:  session,
		batch:    buildBatch(req),
		consumed: make(map[string]bool),
	}

	steps := []func() error{
		p.fillCategory(CategoryCustomer),
		p.applySelections(req.Selections),
		p.fillCategory(CategoryTariff),
		p.fillCategory(CategoryExistingSystem),
		p.fillCategory(CategoryEquipment),
		p.fillArrays,
		p.applyPayment,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return nil, p.abort(req.OpportunityID, err)
		}
		if err := step(); err != nil {
			session.Close()
			return nil, err
		}
	}

	// ── Save & release ───────────────────────────────────────
	if err := ctx.Err(); err != nil {
		return nil, p.abort(req.OpportunityID, err)
	}
	if err := session.Save(); err != nil {
		session.Close()
		return nil, err
	}
	if err := session.Close(); err != nil {
		return nil, err
	}

	return &PopulateResult{
		Success:      true,
		DocumentPath: ref.Path,
		Version:      ref.Version,
		Fields:       p.outcomes,
	}, nil
}

// acquireVersion resolves which physical copy to edit. Editing mutates the
// latest version in place; a new copy is made only when none exists or the
// caller asked to start from the template again.
func acquireVersion(store *VersionStore, cfg Config, req PopulateRequest) (VersionRef, error) {
	if !req.UseNewVersion {
		ref, err := store.ResolveLatest(req.OpportunityID)
		if err == nil {
			return ref, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return VersionRef{}, err
		}
	}
	ref, err := store.AllocateNext(req.OpportunityID)
	if err != nil {
		return VersionRef{}, err
	}
	if err := store.Materialize(ref, cfg.TemplatePath); err != nil {
		return VersionRef{}, err
	}
	return ref, nil
}

// buildBatch folds the customer identity block into the dynamic input map
// so every field goes through the same alias and coercion path.
func buildBatch(req PopulateRequest) map[string]string {
	batch := make(map[string]string, len(req.Inputs)+3)
	for k, v := range req.Inputs {
		batch[k] = v
	}
	if req.Customer.CustomerName != "" {
		batch["customer_name"] = req.Customer.CustomerName
	}
	if req.Customer.Address != "" {
		batch["customer_address"] = req.Customer.Address
	}
	if req.Customer.Postcode != "" {
		batch["customer_postcode"] = req.Customer.Postcode
	}
	return batch
}

// run is the request-scoped state threaded through the pipeline steps.
type run struct {
	session  Session
	batch    map[string]string
	consumed map[string]bool
	outcomes []FieldOutcome
}

func (p *run) abort(opportunityID string, cause error) error {
	p.session.Close()
	log.Printf("populate: %s aborted, session torn down unsaved: %v", opportunityID, cause)
	return fmt.Errorf("%w: %v", ErrSessionTimeout, cause)
}

func (p *run) record(id, status, detail string) {
	p.outcomes = append(p.outcomes, FieldOutcome{FieldID: id, Status: status, Detail: detail})
}

// fillCategory returns a step writing every batch field of one category,
// in registry order.
func (p *run) fillCategory(cat Category) func() error {
	return func() error {
		for _, f := range QuoteFields {
			if f.Category != cat {
				continue
			}
			p.writeField(f)
		}
		return nil
	}
}

// writeField writes one logical field from the batch, resolving alias
// precedence, coercing the value and tolerating locked targets.
func (p *run) writeField(f LogicalField) {
	if p.consumed[f.ID] {
		return
	}

	winner, losers := ResolveAlias(p.batch, f.ID)
	for _, l := range losers {
		p.consumed[l] = true
	}
	p.consumed[winner] = true

	raw, ok := p.batch[winner]
	if !ok {
		return
	}

	// The winning value lands at the canonical field's cell regardless of
	// which alias carried it.
	target, err := ResolveField(winner)
	if err != nil {
		p.record(winner, OutcomeFailed, err.Error())
		return
	}

	if p.session.IsLocked(target.Ref) {
		// Expected for fields whose unlock selection did not run; the
		// batch carries on.
		log.Printf("populate: %s locked at %s, skipped", winner, target.Ref)
		p.record(winner, OutcomeSkippedLocked, "")
		return
	}

	value, warned := Coerce(target.Kind, raw)
	if err := p.session.WriteCell(target.Ref, value); err != nil {
		log.Printf("populate: write %s at %s failed: %v", winner, target.Ref, err)
		p.record(winner, OutcomeFailed, err.Error())
		return
	}
	if warned {
		log.Printf("populate: %s value %q kept raw, not a valid %s", winner, raw, target.Kind)
		p.record(winner, OutcomeCoercedRaw, raw)
		return
	}
	p.record(winner, OutcomeWritten, "")
}

// applySelections returns a step running each requested option selection's
// document action. A failed action is logged and skipped, not fatal.
func (p *run) applySelections(selections []string) func() error {
	return func() error {
		for _, name := range selections {
			if err := p.session.RunAction(name); err != nil {
				log.Printf("populate: selection %q: %v", name, err)
			}
		}
		return nil
	}
}

// fillArrays writes the array count first, expecting its trigger to unlock
// exactly that many array rows, then each present array's sub-fields in
// fixed sub-order. Any array absent from the batch is fine.
func (p *run) fillArrays() error {
	if count, err := ResolveField("array_count"); err == nil {
		p.writeField(count)
	}
	for n := 1; n <= MaxArrays; n++ {
		for _, f := range ArrayFields(n) {
			if _, ok := p.batch[f.ID]; ok {
				p.writeField(f)
			}
		}
	}
	return nil
}

// applyPayment maps the business payment method to its document selection,
// runs it, then writes the remaining payment fields.
func (p *run) applyPayment() error {
	if method, ok := p.batch["payment_method"]; ok && method != "" {
		selection := PaymentSelection(method)
		if err := p.session.RunAction(selection); err != nil {
			log.Printf("populate: payment selection %q: %v", selection, err)
		}
		// The action's marker owns the payment_method cell.
		p.consumed["payment_method"] = true
	}
	for _, f := range QuoteFields {
		if f.Category == CategoryPayment {
			p.writeField(f)
		}
	}
	return nil
}
