package form

import (
	"context"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/iwvelando/ingredient-optimizer/internal/optimizer"
	"github.com/iwvelando/ingredient-optimizer/pkg/constants"
	"github.com/iwvelando/ingredient-optimizer/pkg/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeCalculator struct {
	mu      sync.Mutex
	calls   []optimizer.Targets
	result  *optimizer.Result
	err     error
	release chan struct{}
	started chan struct{}
}

func (c *fakeCalculator) Calculate(ctx context.Context, targets optimizer.Targets) (*optimizer.Result, error) {
	c.mu.Lock()
	c.calls = append(c.calls, targets)
	result, err := c.result, c.err
	c.mu.Unlock()

	if c.started != nil {
		c.started <- struct{}{}
	}
	if c.release != nil {
		<-c.release
	}
	return result, err
}

func (c *fakeCalculator) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.calls)
}

func sampleResult(cost string) *optimizer.Result {
	return &optimizer.Result{
		UsedIngredients: []optimizer.UsedIngredient{{Name: "Chicken Breast", Quantity: "150"}},
		TotalCost:       optimizer.Text(cost),
	}
}

func filledForm(t *testing.T) *Form {
	t.Helper()
	f := New(zap.NewNop())
	f.SetValues(validValues())
	return f
}

func TestNewFormIsEmptyAndIdle(t *testing.T) {
	state := New(nil).Snapshot()

	assert.Equal(t, PhaseIdle, state.Phase)
	assert.False(t, state.Loading)
	assert.Nil(t, state.Result)
	assert.Nil(t, state.Notification)
	assert.Empty(t, state.Errors)
	require.Len(t, state.Values, len(Fields))
	for _, field := range Fields {
		assert.Equal(t, "", state.Values[field.Key])
	}
}

func TestSubmitInvalidDoesNotCallService(t *testing.T) {
	calc := &fakeCalculator{result: sampleResult("1.00")}
	f := filledForm(t)
	require.NoError(t, f.SetValue(KeyProtein, "0"))

	outcome := f.Submit(context.Background(), calc)

	assert.Equal(t, OutcomeInvalid, outcome)
	assert.Equal(t, 0, calc.callCount())

	state := f.Snapshot()
	assert.Equal(t, PhaseIdle, state.Phase)
	assert.Equal(t, "Protein must be greater than 0", state.Errors[KeyProtein])
	require.NotNil(t, state.Notification)
	assert.Equal(t, "Invalid input", state.Notification.Title)
	assert.Equal(t, "Please fill in all the fields correctly.", state.Notification.Description)
	assert.Equal(t, "0", state.Values[KeyProtein], "input must be preserved")
}

func TestSubmitSuccessStoresResult(t *testing.T) {
	calc := &fakeCalculator{result: sampleResult("12.50")}
	f := filledForm(t)

	outcome := f.Submit(context.Background(), calc)

	assert.Equal(t, OutcomeSuccess, outcome)
	require.Equal(t, 1, calc.callCount())
	assert.Equal(t, optimizer.Targets{
		DesiredProtein: 100, DesiredCarbs: 200, DesiredFats: 50,
		DesiredVitaminC: 60, DesiredCalcium: 800, Budget: 20,
	}, calc.calls[0])

	state := f.Snapshot()
	assert.Equal(t, PhaseSuccess, state.Phase)
	assert.False(t, state.Loading)
	assert.Nil(t, state.Notification)
	require.NotNil(t, state.Result)
	assert.Equal(t, optimizer.Text("12.50"), state.Result.TotalCost)
}

func TestSubmitFailureKeepsPreviousResult(t *testing.T) {
	calc := &fakeCalculator{result: sampleResult("12.50")}
	f := filledForm(t)
	require.Equal(t, OutcomeSuccess, f.Submit(context.Background(), calc))

	calc.result = nil
	calc.err = &optimizer.APIError{StatusCode: http.StatusBadRequest, Message: "Budget too low"}
	outcome := f.Submit(context.Background(), calc)

	assert.Equal(t, OutcomeFailed, outcome)
	state := f.Snapshot()
	assert.Equal(t, PhaseFailed, state.Phase)
	assert.False(t, state.Loading)
	require.NotNil(t, state.Notification)
	assert.Equal(t, "Error", state.Notification.Title)
	assert.Equal(t, "Budget too low", state.Notification.Description)
	require.NotNil(t, state.Result, "stale result must be preserved")
	assert.Equal(t, optimizer.Text("12.50"), state.Result.TotalCost)
}

func TestSubmitInvalidKeepsPreviousResult(t *testing.T) {
	calc := &fakeCalculator{result: sampleResult("12.50")}
	f := filledForm(t)
	require.Equal(t, OutcomeSuccess, f.Submit(context.Background(), calc))

	require.NoError(t, f.SetValue(KeyBudget, "-3"))
	require.Equal(t, OutcomeInvalid, f.Submit(context.Background(), calc))

	state := f.Snapshot()
	require.NotNil(t, state.Result)
	assert.Equal(t, optimizer.Text("12.50"), state.Result.TotalCost)
}

func TestSubmitRevalidatesAllFields(t *testing.T) {
	calc := &fakeCalculator{result: sampleResult("1.00")}
	f := New(zap.NewNop())

	require.Equal(t, OutcomeInvalid, f.Submit(context.Background(), calc))
	assert.Len(t, f.Snapshot().Errors, len(Fields))

	values := validValues()
	values[KeyCarbs] = "nope"
	f.SetValues(values)
	require.Equal(t, OutcomeInvalid, f.Submit(context.Background(), calc))

	errs := f.Snapshot().Errors
	assert.Len(t, errs, 1)
	assert.Contains(t, errs, KeyCarbs)

	require.NoError(t, f.SetValue(KeyCarbs, "5"))
	require.Equal(t, OutcomeSuccess, f.Submit(context.Background(), calc))
	assert.Empty(t, f.Snapshot().Errors)
}

func TestSubmitTransportFailureUsesGenericMessage(t *testing.T) {
	client, err := optimizer.NewClient(testutil.UnreachableURL(t))
	require.NoError(t, err)
	f := filledForm(t)

	outcome := f.Submit(context.Background(), client)

	assert.Equal(t, OutcomeFailed, outcome)
	state := f.Snapshot()
	assert.False(t, state.Loading)
	require.NotNil(t, state.Notification)
	assert.Equal(t, constants.GenericErrorMessage, state.Notification.Description)
}

func TestSubmitAgainstStubService(t *testing.T) {
	stub := testutil.NewOptimizerStub(t, http.StatusOK, testutil.SampleResultBody)
	client, err := optimizer.NewClient(stub.URL())
	require.NoError(t, err)
	f := filledForm(t)

	require.Equal(t, OutcomeSuccess, f.Submit(context.Background(), client))
	assert.Equal(t, 1, stub.Count())

	stub.Respond(http.StatusBadRequest, `{"error":"Budget too low"}`)
	require.Equal(t, OutcomeFailed, f.Submit(context.Background(), client))
	assert.Equal(t, 2, stub.Count())
	assert.Equal(t, "Budget too low", f.Snapshot().Notification.Description)
}

func TestLoadingWhileInFlight(t *testing.T) {
	calc := &fakeCalculator{
		result:  sampleResult("9.99"),
		release: make(chan struct{}),
		started: make(chan struct{}, 2),
	}
	f := filledForm(t)

	done := make(chan Outcome, 2)
	go func() { done <- f.Submit(context.Background(), calc) }()
	<-calc.started

	state := f.Snapshot()
	assert.True(t, state.Loading)
	assert.Equal(t, PhaseSubmitting, state.Phase)

	// A second submission is not de-duplicated.
	go func() { done <- f.Submit(context.Background(), calc) }()
	<-calc.started
	assert.Equal(t, 2, calc.callCount())

	calc.release <- struct{}{}
	require.Equal(t, OutcomeSuccess, waitOutcome(t, done))
	assert.True(t, f.Snapshot().Loading, "loading must stay set while a submission is in flight")

	calc.release <- struct{}{}
	require.Equal(t, OutcomeSuccess, waitOutcome(t, done))
	assert.False(t, f.Snapshot().Loading)
}

func waitOutcome(t *testing.T, done <-chan Outcome) Outcome {
	t.Helper()
	select {
	case outcome := <-done:
		return outcome
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for submission")
		return ""
	}
}

func TestSetValueUnknownField(t *testing.T) {
	f := New(zap.NewNop())
	assert.Error(t, f.SetValue("desiredSugar", "1"))
}

func TestSetValuesIgnoresUnknownKeys(t *testing.T) {
	f := New(zap.NewNop())
	f.SetValues(Values{"desiredSugar": "1", KeyBudget: "10"})

	state := f.Snapshot()
	assert.NotContains(t, state.Values, "desiredSugar")
	assert.Equal(t, "10", state.Values[KeyBudget])
}

func TestDismissNotification(t *testing.T) {
	f := New(zap.NewNop())
	f.Submit(context.Background(), &fakeCalculator{})
	require.NotNil(t, f.Snapshot().Notification)

	f.DismissNotification()
	assert.Nil(t, f.Snapshot().Notification)
}

func TestSnapshotIsIsolated(t *testing.T) {
	calc := &fakeCalculator{result: sampleResult("12.50")}
	f := filledForm(t)
	f.Submit(context.Background(), calc)

	state := f.Snapshot()
	state.Values[KeyBudget] = "changed"
	state.Result.UsedIngredients[0].Name = "changed"

	again := f.Snapshot()
	assert.Equal(t, "20", again.Values[KeyBudget])
	assert.Equal(t, "Chicken Breast", again.Result.UsedIngredients[0].Name)
}

func TestSubmitNilResultBecomesEmpty(t *testing.T) {
	f := filledForm(t)
	require.Equal(t, OutcomeSuccess, f.Submit(context.Background(), &fakeCalculator{}))

	state := f.Snapshot()
	require.NotNil(t, state.Result)
	assert.Empty(t, state.Result.UsedIngredients)
}

func TestSubmitValuesSendsItsOwnValues(t *testing.T) {
	calc := &fakeCalculator{result: sampleResult("1.00")}
	f := New(zap.NewNop())

	const submitters = 20
	var wg sync.WaitGroup
	stop := make(chan struct{})
	go func() {
		other := validValues()
		other[KeyProtein] = "999"
		for {
			select {
			case <-stop:
				return
			default:
				f.SetValues(other)
			}
		}
	}()

	for i := 1; i <= submitters; i++ {
		values := validValues()
		values[KeyProtein] = strconv.Itoa(i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, OutcomeSuccess, f.SubmitValues(context.Background(), values, calc))
		}()
	}
	wg.Wait()
	close(stop)

	calc.mu.Lock()
	defer calc.mu.Unlock()
	require.Len(t, calc.calls, submitters)
	got := make([]float64, 0, submitters)
	for _, targets := range calc.calls {
		got = append(got, targets.DesiredProtein)
	}
	sort.Float64s(got)
	for i, protein := range got {
		assert.Equal(t, float64(i+1), protein)
	}
}

func TestSubmitValuesStoresValuesBeforeValidating(t *testing.T) {
	calc := &fakeCalculator{result: sampleResult("1.00")}
	f := New(zap.NewNop())

	values := validValues()
	values[KeyFats] = "0"
	require.Equal(t, OutcomeInvalid, f.SubmitValues(context.Background(), values, calc))
	assert.Equal(t, 0, calc.callCount())

	state := f.Snapshot()
	assert.Equal(t, "0", state.Values[KeyFats])
	assert.Equal(t, "100", state.Values[KeyProtein])
	assert.Equal(t, "Fats must be greater than 0", state.Errors[KeyFats])
}

func TestThrottleKeepsValuesAndResult(t *testing.T) {
	calc := &fakeCalculator{result: sampleResult("12.50")}
	f := filledForm(t)
	require.Equal(t, OutcomeSuccess, f.Submit(context.Background(), calc))

	values := validValues()
	values[KeyBudget] = "35"
	f.Throttle(values)

	assert.Equal(t, 1, calc.callCount())
	state := f.Snapshot()
	assert.Equal(t, "35", state.Values[KeyBudget])
	require.NotNil(t, state.Notification)
	assert.Equal(t, constants.RateLimitedMessage, state.Notification.Description)
	require.NotNil(t, state.Result)
	assert.Equal(t, optimizer.Text("12.50"), state.Result.TotalCost)
}
