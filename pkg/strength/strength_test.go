package strength

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/entrhq/pagekit/pkg/dom"
	"github.com/entrhq/pagekit/pkg/types"
	"github.com/sony/gobreaker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocal(t *testing.T) {
	tests := []struct {
		name  string
		pw    string
		score int
		label string
	}{
		{"empty", "", 0, PromptText},
		{"one class", "abc", 1, "Very weak"},
		{"two classes", "abcdefgh", 2, "Weak"},
		{"three classes", "abcdefgH", 3, "Fair"},
		{"four classes", "abcdefH1", 4, "Good"},
		{"all classes", "abcdeH1!", 5, "Very strong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := Local(tt.pw)
			assert.True(t, r.Local)
			assert.Equal(t, tt.score, r.Score)
			assert.Equal(t, tt.label, r.Strength)
			assert.Equal(t, tt.label, r.Label(), "local results have no crack time")
		})
	}

	assert.Equal(t, 5, Local("abcdeH1!").Bars())
	assert.Equal(t, 0, Local("").Bars())
	assert.Contains(t, Local("abc").Feedback.Suggestions, "Add numbers")
}

func TestResult_Label(t *testing.T) {
	r := Result{Score: 3, Strength: "good", CrackTime: "3 days"}
	assert.Equal(t, "good - Crack time: 3 days", r.Label())
	assert.Equal(t, "good", Result{Strength: "good"}.Label())
}

func TestEstimator_Estimate(t *testing.T) {
	e := NewEstimator()

	empty := e.Estimate("", nil)
	assert.Equal(t, 0, empty.Score)
	assert.Equal(t, "empty", empty.Strength)
	assert.Equal(t, "instantly", empty.CrackTime)
	assert.Equal(t, "Password is required", empty.Feedback.Warning)

	weak := e.Estimate("password", nil)
	assert.Equal(t, 0, weak.Score)
	assert.Equal(t, "very weak", weak.Strength)
	assert.NotEmpty(t, weak.CrackTime)
	assert.NotEmpty(t, weak.Feedback.Warning)

	strong := e.Estimate("Xk9#mQ2$vL7!pR4@wZ", nil)
	assert.Equal(t, 4, strong.Score)
	assert.Equal(t, "very strong", strong.Strength)
	assert.Empty(t, strong.Feedback.Warning)

	personal := e.Estimate("aliceliddell1", []string{"aliceliddell"})
	assert.Less(t, personal.Score, MinScore)
	assert.Equal(t, "Avoid using your name or email in the password.", personal.Feedback.Warning)
}

func TestEstimator_Validate(t *testing.T) {
	e := NewEstimator()

	assert.Equal(t, []string{"Password is required."}, e.Validate("", nil))
	assert.Empty(t, e.Validate("Xk9#mQ2$vL7!pR4@wZ", nil))

	errs := e.Validate("password", nil)
	assert.Contains(t, errs, "Password must contain at least one uppercase letter.")
	assert.Contains(t, errs, "Password must contain at least one digit.")
	assert.Contains(t, errs, "Password must contain at least one special character.")
	assert.Contains(t, errs, "Password is too weak (very easy to crack).")

	suggestions := 0
	for _, msg := range errs {
		if len(msg) > 11 && msg[:11] == "Suggestion:" {
			suggestions++
		}
	}
	assert.LessOrEqual(t, suggestions, 2)
}

func TestClient_Check(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, Endpoint, r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(Result{Score: 3, Strength: "good", CrackTime: "3 days"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", time.Second)
	r := c.Check(context.Background(), "Secret!1", []string{"alice"})

	assert.Equal(t, Request{Password: "Secret!1", UserInputs: []string{"alice"}}, got)
	assert.False(t, r.Local)
	assert.Equal(t, "good - Crack time: 3 days", r.Label())
}

func TestClient_FallsBackAndTrips(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, time.Second)
	for i := 0; i < 5; i++ {
		r := c.Check(context.Background(), "abcdeH1!", nil)
		assert.True(t, r.Local)
		assert.Equal(t, "Very strong", r.Label())
	}
	assert.Equal(t, int32(3), calls.Load(), "breaker opens after three failures")
	assert.Equal(t, gobreaker.StateOpen, c.State())
}

func TestClient_EmptyPasswordSkipsServer(t *testing.T) {
	c := NewClient("http://127.0.0.1:1", time.Second)
	r := c.Check(context.Background(), "", nil)
	assert.Equal(t, PromptText, r.Label())
	assert.Equal(t, gobreaker.StateClosed, c.State())
}

type blockingSource struct {
	release map[string]chan struct{}
	mu      sync.Mutex
}

func (b *blockingSource) Check(_ context.Context, pw string, _ []string) Result {
	b.mu.Lock()
	ch := b.release[pw]
	b.mu.Unlock()
	if ch != nil {
		<-ch
	}
	return Result{Score: len(pw), Strength: pw}
}

func TestChecker_DiscardsStaleResults(t *testing.T) {
	src := &blockingSource{release: map[string]chan struct{}{"a": make(chan struct{})}}
	var events []*types.UIEvent
	var mu sync.Mutex
	c := NewChecker(src, func(e *types.UIEvent) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	done := make(chan bool)
	go func() {
		_, applied := c.Check(context.Background(), "a")
		done <- applied
	}()

	// Wait until the first check holds its sequence number.
	require.Eventually(t, func() bool {
		c.mu.Lock()
		defer c.mu.Unlock()
		return c.seq == 1
	}, time.Second, time.Millisecond)

	r, applied := c.Check(context.Background(), "abc")
	assert.True(t, applied)
	assert.Equal(t, "abc", r.Strength)

	close(src.release["a"])
	assert.False(t, <-done)
	assert.Equal(t, "abc", c.Last().Strength)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, events, 1)
	assert.Equal(t, types.EventTypeStrengthEstimated, events[0].Type)
}

func TestChecker_LocalDefault(t *testing.T) {
	c := NewChecker(nil, nil)
	c.SetUserInputs(" alice ", "")
	assert.Equal(t, []string{"alice"}, c.userInputs)

	r, ok := c.Check(context.Background(), "abcdeH1!")
	assert.True(t, ok)
	assert.True(t, r.Local)

	r, ok = c.Check(context.Background(), "")
	assert.True(t, ok)
	assert.Equal(t, PromptText, r.Label())
}

const meterMarkup = `<div id="meter">
<div class="strength-bar" data-level="0"></div>
<div class="strength-bar" data-level="1"></div>
<div class="strength-bar" data-level="2"></div>
<div class="strength-bar" data-level="3"></div>
<div class="strength-bar" data-level="4"></div>
<span class="strength-label"></span>
<div class="password-feedback hidden"></div>
</div>`

func TestUpdateMeter(t *testing.T) {
	doc := dom.MustParse(meterMarkup)
	meter := doc.ByID("meter")

	UpdateMeter(meter, Result{
		Score:     2,
		Strength:  "fair",
		CrackTime: "2 hours",
		Feedback: Feedback{
			Warning:     "Common pattern",
			Suggestions: []string{"one", "two", "three", "four"},
		},
	})

	bars := meter.QueryClass(BarClass)
	require.Len(t, bars, 5)
	assert.True(t, bars[0].HasClass("bg-yellow-500"))
	assert.True(t, bars[1].HasClass("bg-yellow-500"))
	assert.True(t, bars[2].HasClass(emptyBarClass))

	label := meter.QueryClass(LabelClass)[0]
	assert.Equal(t, "fair - Crack time: 2 hours", label.Text())
	assert.True(t, label.HasClass("text-yellow-600"))

	fb := meter.QueryClass(FeedbackClass)[0]
	assert.False(t, fb.HasClass("hidden"))
	assert.Len(t, fb.Children(), 4, "warning plus three suggestions")

	UpdateMeter(meter, Local(""))
	assert.Equal(t, PromptText, label.Text())
	assert.False(t, bars[0].HasClass("bg-yellow-500"))
	assert.True(t, fb.HasClass("hidden"))
	assert.Empty(t, fb.Children())

	UpdateMeter(nil, Local("x"))
}
