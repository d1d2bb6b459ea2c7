package router

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Desarso/intentagent/metrics"
	"github.com/Desarso/intentagent/models"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyProvider fails a fixed number of times and then answers.
type flakyProvider struct {
	name     string
	failures int
	reply    string
	journal  *[]string
	mu       *sync.Mutex

	calls int
}

func (p *flakyProvider) Generate(ctx context.Context, system, user string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls++
	*p.journal = append(*p.journal, p.name)
	if p.calls <= p.failures {
		return "", errors.New(p.name + " unavailable")
	}
	return p.reply, nil
}

func newFlaky(name string, failures int, journal *[]string, mu *sync.Mutex) *flakyProvider {
	return &flakyProvider{name: name, failures: failures, reply: "from " + name, journal: journal, mu: mu}
}

func TestGenerate_FirstProviderSucceeds(t *testing.T) {
	var journal []string
	var mu sync.Mutex
	a := newFlaky("a", 0, &journal, &mu)
	b := newFlaky("b", 0, &journal, &mu)

	r := New([]Named{{"a", a}, {"b", b}})
	text, err := r.Generate(context.Background(), "sys", "user")

	require.NoError(t, err)
	assert.Equal(t, "from a", text)
	assert.Equal(t, []string{"a"}, journal)
	assert.Equal(t, map[string]int64{"a": 1, "b": 0}, r.Stats())
}

func TestGenerate_RetriesWithinBudget(t *testing.T) {
	var journal []string
	var mu sync.Mutex
	a := newFlaky("a", 1, &journal, &mu)
	b := newFlaky("b", 0, &journal, &mu)

	r := New([]Named{{"a", a}, {"b", b}}, WithMaxRetries(2))
	text, err := r.Generate(context.Background(), "sys", "user")

	require.NoError(t, err)
	assert.Equal(t, "from a", text)
	assert.Equal(t, []string{"a", "a"}, journal)
}

func TestGenerate_FallsBackOnlyAfterBudgetExhausted(t *testing.T) {
	var journal []string
	var mu sync.Mutex
	a := newFlaky("a", 10, &journal, &mu)
	b := newFlaky("b", 2, &journal, &mu)
	c := newFlaky("c", 0, &journal, &mu)

	r := New([]Named{{"a", a}, {"b", b}, {"c", c}}, WithMaxRetries(3))
	text, err := r.Generate(context.Background(), "sys", "user")

	require.NoError(t, err)
	assert.Equal(t, "from b", text)
	assert.Equal(t, []string{"a", "a", "a", "b", "b", "b"}, journal)
	assert.Zero(t, c.calls)
	assert.Equal(t, int64(1), r.Stats()["b"])
	assert.Equal(t, int64(0), r.Stats()["a"])
}

func TestGenerate_AllProvidersExhausted(t *testing.T) {
	var journal []string
	var mu sync.Mutex
	a := newFlaky("a", 10, &journal, &mu)
	b := newFlaky("b", 10, &journal, &mu)

	r := New([]Named{{"a", a}, {"b", b}})
	text, err := r.Generate(context.Background(), "sys", "user")

	assert.Empty(t, text)
	var exhausted *AllProvidersExhaustedError
	require.ErrorAs(t, err, &exhausted)
	var perr *models.ProviderError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, "b", perr.Provider)
	assert.Len(t, journal, 4)
}

func TestGenerate_OrderOverridesRegistration(t *testing.T) {
	var journal []string
	var mu sync.Mutex
	a := newFlaky("a", 0, &journal, &mu)
	b := newFlaky("b", 0, &journal, &mu)

	r := New([]Named{{"a", a}, {"b", b}}, WithOrder([]string{"b", "a"}))
	text, err := r.Generate(context.Background(), "sys", "user")

	require.NoError(t, err)
	assert.Equal(t, "from b", text)
}

func TestGenerate_SkipsUnknownProviders(t *testing.T) {
	var journal []string
	var mu sync.Mutex
	mock := newFlaky("mock", 0, &journal, &mu)

	r := New([]Named{{"mock", mock}}, WithOrder([]string{"hf", "mock"}))
	text, err := r.Generate(context.Background(), "sys", "user")

	require.NoError(t, err)
	assert.Equal(t, "from mock", text)
	assert.NotContains(t, r.Stats(), "hf")
}

func TestGenerate_NoProvidersAttempted(t *testing.T) {
	tests := map[string][]string{
		"empty order":         {},
		"only absent entries": {"hf", "gemini"},
	}
	for name, order := range tests {
		t.Run(name, func(t *testing.T) {
			r := New([]Named{{"mock", models.ProviderFunc(func(context.Context, string, string) (string, error) {
				return "unused", nil
			})}}, WithOrder(order))

			_, err := r.Generate(context.Background(), "sys", "user")
			var exhausted *AllProvidersExhaustedError
			require.ErrorAs(t, err, &exhausted)
			assert.ErrorIs(t, err, ErrNoProvidersAttempted)
		})
	}
}

func TestGenerate_EmptyTextIsFailure(t *testing.T) {
	empty := models.ProviderFunc(func(context.Context, string, string) (string, error) { return "", nil })
	r := New([]Named{{"empty", empty}}, WithMaxRetries(1))

	_, err := r.Generate(context.Background(), "sys", "user")
	assert.ErrorIs(t, err, models.ErrNoContent)
}

func TestWithMaxRetries_ClampsToOne(t *testing.T) {
	calls := 0
	p := models.ProviderFunc(func(context.Context, string, string) (string, error) {
		calls++
		return "", errors.New("boom")
	})
	r := New([]Named{{"p", p}}, WithMaxRetries(0))
	_, err := r.Generate(context.Background(), "sys", "user")
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestGenerate_AttemptTimeoutBoundsEachCall(t *testing.T) {
	slow := models.ProviderFunc(func(ctx context.Context, _, _ string) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	fast := models.ProviderFunc(func(context.Context, string, string) (string, error) { return "ok", nil })

	r := New([]Named{{"slow", slow}, {"fast", fast}}, WithMaxRetries(1), WithAttemptTimeout(20*time.Millisecond))
	text, err := r.Generate(context.Background(), "sys", "user")

	require.NoError(t, err)
	assert.Equal(t, "ok", text)
}

func TestGenerate_CancelledContextStopsChain(t *testing.T) {
	calls := 0
	p := models.ProviderFunc(func(context.Context, string, string) (string, error) {
		calls++
		return "ok", nil
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	r := New([]Named{{"p", p}})
	_, err := r.Generate(ctx, "sys", "user")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestStats_ConcurrentIncrements(t *testing.T) {
	p := models.ProviderFunc(func(context.Context, string, string) (string, error) { return "ok", nil })
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	r := New([]Named{{"p", p}}, WithMetrics(m))

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = r.Generate(context.Background(), "sys", "user")
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(50), r.Stats()["p"])
	assert.Equal(t, 50.0, testutil.ToFloat64(m.ProviderAttempts.WithLabelValues("p", "success")))
}

func TestStats_ReturnsCopy(t *testing.T) {
	p := models.ProviderFunc(func(context.Context, string, string) (string, error) { return "ok", nil })
	r := New([]Named{{"p", p}})
	snapshot := r.Stats()
	snapshot["p"] = 99
	assert.Equal(t, int64(0), r.Stats()["p"])
}
