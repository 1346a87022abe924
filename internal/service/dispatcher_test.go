package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/udfnd/credittalk-admin-sub000/internal/model"
)

// statusErr simulates a gateway error carrying an HTTP status. The real
// Firebase error types are internal to the SDK, so tests pair this with a
// classifier that applies the same status mapping as classifySend.
type statusErr struct{ code int }

func (e *statusErr) Error() string { return fmt.Sprintf("gateway status %d", e.code) }

func statusClassifier(err error) sendClass {
	if err == nil {
		return sendOK
	}
	var se *statusErr
	if errors.As(err, &se) {
		return classifyStatus(se.code)
	}
	return sendRetryable
}

// scriptedMessenger returns per-token scripted errors; the last script
// entry repeats once exhausted.
type scriptedMessenger struct {
	mu        sync.Mutex
	scripts   map[string][]error
	attempts  map[string]int
	collapses map[string][]string
}

func newScriptedMessenger() *scriptedMessenger {
	return &scriptedMessenger{
		scripts:   make(map[string][]error),
		attempts:  make(map[string]int),
		collapses: make(map[string][]string),
	}
}

func (m *scriptedMessenger) script(token string, errs ...error) {
	m.scripts[token] = errs
}

func (m *scriptedMessenger) Send(_ context.Context, msg *messaging.Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := m.attempts[msg.Token]
	m.attempts[msg.Token] = n + 1
	if msg.Android != nil {
		m.collapses[msg.Token] = append(m.collapses[msg.Token], msg.Android.CollapseKey)
	}

	script := m.scripts[msg.Token]
	if len(script) == 0 {
		return "projects/x/messages/1", nil
	}
	if n >= len(script) {
		n = len(script) - 1
	}
	if script[n] != nil {
		return "", script[n]
	}
	return "projects/x/messages/1", nil
}

func (m *scriptedMessenger) attemptCount(token string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[token]
}

func (m *scriptedMessenger) collapseKeys(token string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.collapses[token]
}

func testDispatcher(batchSize int) *Dispatcher {
	d := NewDispatcher(batchSize, 3, time.Millisecond)
	d.classify = statusClassifier
	return d
}

func deviceTokens(tokens ...string) []model.DeviceToken {
	out := make([]model.DeviceToken, 0, len(tokens))
	for _, tok := range tokens {
		out = append(out, model.DeviceToken{Token: tok, Platform: "android"})
	}
	return out
}

func TestDispatchAll_BatchIsolation(t *testing.T) {
	gw := newScriptedMessenger()
	gw.script("bad", &statusErr{code: 400})

	out := testDispatcher(100).DispatchAll(context.Background(), gw, deviceTokens("bad", "good"), BuildParams{Title: "T", Body: "B"}, false)

	assert.Equal(t, 1, out.Sent)
	assert.Equal(t, 1, out.Failed)
	assert.Empty(t, out.DeadTokens)
}

func TestDispatchAll_RetryCeiling(t *testing.T) {
	gw := newScriptedMessenger()
	gw.script("flaky", &statusErr{code: 500})

	out := testDispatcher(100).DispatchAll(context.Background(), gw, deviceTokens("flaky"), BuildParams{Title: "T", Body: "B"}, false)

	assert.Equal(t, 3, gw.attemptCount("flaky"))
	assert.Equal(t, 0, out.Sent)
	assert.Equal(t, 1, out.Failed)
	// 500 is not a dead-token signal.
	assert.Empty(t, out.DeadTokens)
}

func TestDispatchAll_TransientThenSuccess(t *testing.T) {
	gw := newScriptedMessenger()
	gw.script("wobbly", &statusErr{code: 503}, nil)

	out := testDispatcher(100).DispatchAll(context.Background(), gw, deviceTokens("wobbly"), BuildParams{Title: "T", Body: "B"}, false)

	assert.Equal(t, 2, gw.attemptCount("wobbly"))
	assert.Equal(t, 1, out.Sent)
	assert.Equal(t, 0, out.Failed)
}

func TestDispatchAll_DeadTokenNoRetry(t *testing.T) {
	gw := newScriptedMessenger()
	gw.script("gone", &statusErr{code: 404})

	out := testDispatcher(100).DispatchAll(context.Background(), gw, deviceTokens("gone"), BuildParams{Title: "T", Body: "B"}, false)

	assert.Equal(t, 1, gw.attemptCount("gone"))
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, []string{"gone"}, out.DeadTokens)
}

func TestDispatchAll_AggregatesAcrossBatches(t *testing.T) {
	gw := newScriptedMessenger()
	gw.script("dead-1", &statusErr{code: 404})

	tokens := deviceTokens("ok-1", "ok-2", "dead-1", "ok-3", "ok-4")
	out := testDispatcher(2).DispatchAll(context.Background(), gw, tokens, BuildParams{Title: "T", Body: "B"}, false)

	assert.Equal(t, 4, out.Sent)
	assert.Equal(t, 1, out.Failed)
	assert.Equal(t, []string{"dead-1"}, out.DeadTokens)
}

func TestDispatchAll_StableCollapseMarkerAcrossRetries(t *testing.T) {
	gw := newScriptedMessenger()
	gw.script("wobbly", &statusErr{code: 503}, nil)

	// No CollapseID supplied: the dispatcher generates one and every
	// attempt must carry it.
	testDispatcher(100).DispatchAll(context.Background(), gw, deviceTokens("wobbly"), BuildParams{Title: "T", Body: "B"}, false)

	keys := gw.collapseKeys("wobbly")
	require.Len(t, keys, 2)
	assert.NotEmpty(t, keys[0])
	assert.Equal(t, keys[0], keys[1])
}

func TestDispatchAll_DryRunSkipsGateway(t *testing.T) {
	gw := newScriptedMessenger()

	out := testDispatcher(100).DispatchAll(context.Background(), gw, deviceTokens("a", "b"), BuildParams{Title: "T", Body: "B"}, true)

	assert.Equal(t, 0, out.Sent)
	assert.Equal(t, 0, out.Failed)
	assert.Equal(t, 0, gw.attemptCount("a"))
}

func TestClassifySend_NilIsOK(t *testing.T) {
	require.Equal(t, sendOK, classifySend(nil))
}

func TestClassifySend_TransportErrorIsRetryable(t *testing.T) {
	// No HTTP status at all: network-level failure.
	require.Equal(t, sendRetryable, classifySend(errors.New("dial tcp: connection refused")))
}

func TestClassifyStatus_Mapping(t *testing.T) {
	assert.Equal(t, sendDeadToken, classifyStatus(404))
	for _, code := range []int{429, 500, 502, 503, 504} {
		assert.Equal(t, sendRetryable, classifyStatus(code), "status %d", code)
	}
	// Anything else is permanent but says nothing about the token.
	assert.Equal(t, sendFailed, classifyStatus(400))
	assert.Equal(t, sendFailed, classifyStatus(403))
}
