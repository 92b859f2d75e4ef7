package form

import (
	"context"
	"fmt"
	"sync"

	"github.com/iwvelando/ingredient-optimizer/internal/optimizer"
	"github.com/iwvelando/ingredient-optimizer/pkg/constants"
	"go.uber.org/zap"
)

// Phase is where the form is in its submit cycle.
type Phase string

const (
	PhaseIdle       Phase = "idle"
	PhaseValidating Phase = "validating"
	PhaseSubmitting Phase = "submitting"
	PhaseSuccess    Phase = "success"
	PhaseFailed     Phase = "failed"
)

// Outcome is the result of a single Submit call.
type Outcome string

const (
	OutcomeInvalid Outcome = "invalid"
	OutcomeSuccess Outcome = "success"
	OutcomeFailed  Outcome = "failed"
)

// Notification is a dismissable message shown after a submission attempt.
type Notification struct {
	Title       string
	Description string
	Action      string
	Destructive bool
}

func invalidInputNotification() *Notification {
	return &Notification{
		Title:       "Invalid input",
		Description: "Please fill in all the fields correctly.",
		Action:      "Try again",
		Destructive: true,
	}
}

func errorNotification(msg string) *Notification {
	return &Notification{
		Title:       "Error",
		Description: msg,
		Action:      "Try again",
		Destructive: true,
	}
}

// Calculator performs the remote optimization.
type Calculator interface {
	Calculate(ctx context.Context, targets optimizer.Targets) (*optimizer.Result, error)
}

// State is a point-in-time copy of a Form, safe to render.
type State struct {
	Values       Values
	Errors       Errors
	Loading      bool
	Phase        Phase
	Result       *optimizer.Result
	Notification *Notification
}

// Form is the state behind one user's optimizer form. It is safe for
// concurrent use; the lock is never held across a call to the optimizer.
type Form struct {
	mu           sync.Mutex
	values       Values
	errors       Errors
	inFlight     int
	phase        Phase
	result       *optimizer.Result
	notification *Notification
	logger       *zap.Logger
}

// New returns an empty form.
func New(logger *zap.Logger) *Form {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Form{
		values: Values{}.clone(),
		errors: Errors{},
		phase:  PhaseIdle,
		logger: logger,
	}
}

// SetValue stores the raw text of one field.
func (f *Form) SetValue(key, value string) error {
	if _, ok := LookupField(key); !ok {
		return fmt.Errorf("unknown field %q", key)
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	return nil
}

// SetValues stores the raw text of every known field present in values.
func (f *Form) SetValues(values Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setValuesLocked(values)
}

func (f *Form) setValuesLocked(values Values) {
	for _, field := range Fields {
		if v, ok := values[field.Key]; ok {
			f.values[field.Key] = v
		}
	}
}

// Throttle stores values without submitting them and raises a rate limit
// notification. The previous result stays in place.
func (f *Form) Throttle(values Values) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.setValuesLocked(values)
	f.notification = errorNotification(constants.RateLimitedMessage)
}

// DismissNotification hides the current notification, if any.
func (f *Form) DismissNotification() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.notification = nil
}

// Snapshot returns a deep copy of the current state.
func (f *Form) Snapshot() State {
	f.mu.Lock()
	defer f.mu.Unlock()

	state := State{
		Values:  f.values.clone(),
		Errors:  f.errors.clone(),
		Loading: f.inFlight > 0,
		Phase:   f.phase,
		Result:  f.result.Clone(),
	}
	if state.Loading {
		state.Phase = PhaseSubmitting
	}
	if f.notification != nil {
		n := *f.notification
		state.Notification = &n
	}
	return state
}

// Submit re-validates every field and, when all pass, sends the targets to calc.
// It is SubmitValues with no new values.
func (f *Form) Submit(ctx context.Context, calc Calculator) Outcome {
	return f.SubmitValues(ctx, nil, calc)
}

// SubmitValues stores values and submits them. Storing and validating happen
// under one lock, so a concurrent SetValues cannot change what is sent.
//
// A failed validation never reaches calc. A successful response replaces the
// stored result; a failure leaves the previous result in place and raises an
// error notification. Overlapping submissions are not de-duplicated: the last
// response to arrive wins and loading stays set until all have returned.
func (f *Form) SubmitValues(ctx context.Context, values Values, calc Calculator) Outcome {
	f.mu.Lock()
	f.setValuesLocked(values)
	f.phase = PhaseValidating
	f.notification = nil
	targets, errs := Parse(f.values)
	f.errors = errs
	if len(errs) > 0 {
		f.notification = invalidInputNotification()
		f.phase = PhaseIdle
		f.mu.Unlock()

		f.logger.Debug("form validation failed",
			zap.String("op", "form.SubmitValues"),
			zap.Int("invalidFields", len(errs)),
		)
		return OutcomeInvalid
	}
	f.inFlight++
	f.phase = PhaseSubmitting
	f.mu.Unlock()

	result, err := calc.Calculate(ctx, targets)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.inFlight--

	if err != nil {
		f.notification = errorNotification(optimizer.UserMessage(err))
		f.phase = PhaseFailed
		f.logger.Warn("optimization failed",
			zap.String("op", "form.SubmitValues"),
			zap.Error(err),
		)
		return OutcomeFailed
	}

	if result == nil {
		result = &optimizer.Result{UsedIngredients: []optimizer.UsedIngredient{}}
	}
	f.result = result.Clone()
	f.phase = PhaseSuccess
	f.logger.Debug("optimization succeeded",
		zap.String("op", "form.Submit"),
		zap.Int("ingredients", len(result.UsedIngredients)),
	)
	return OutcomeSuccess
}
