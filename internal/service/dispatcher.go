package service

import (
	"context"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/udfnd/credittalk-admin-sub000/internal/model"
	"github.com/udfnd/credittalk-admin-sub000/pkg/gateway"
)

const jitterCeiling = 100 * time.Millisecond

// Dispatcher sends one built message per resolved token with bounded batch
// concurrency and in-process retry of transient failures.
type Dispatcher struct {
	batchSize   int
	maxAttempts int
	baseBackoff time.Duration
	// classify is swappable so the gateway's drifting error taxonomy
	// stays out of the dispatch control flow.
	classify func(error) sendClass
}

func NewDispatcher(batchSize, maxAttempts int, baseBackoff time.Duration) *Dispatcher {
	if batchSize <= 0 {
		batchSize = 100
	}
	if maxAttempts <= 0 {
		maxAttempts = 3
	}
	if baseBackoff <= 0 {
		baseBackoff = 200 * time.Millisecond
	}
	return &Dispatcher{
		batchSize:   batchSize,
		maxAttempts: maxAttempts,
		baseBackoff: baseBackoff,
		classify:    classifySend,
	}
}

// Outcome aggregates per-token results across all batches.
type Outcome struct {
	Sent       int
	Failed     int
	DeadTokens []string
}

// DispatchAll sends to every token in fixed-size batches. Batches run in
// order; sends within a batch run concurrently and all settle before the
// totals are inspected, so one token's failure never aborts its siblings.
// A dry run performs no gateway calls at all.
func (d *Dispatcher) DispatchAll(ctx context.Context, client gateway.Messenger, tokens []model.DeviceToken, p BuildParams, dryRun bool) Outcome {
	var out Outcome
	if dryRun {
		return out
	}
	// One collapse marker for the whole dispatch, so retries of the same
	// token collapse into a single OS notification.
	if p.CollapseID == "" {
		p.CollapseID = uuid.NewString()
	}

	for start := 0; start < len(tokens); start += d.batchSize {
		end := start + d.batchSize
		if end > len(tokens) {
			end = len(tokens)
		}
		batch := tokens[start:end]

		// Per-index result slots; reduced sequentially after the batch
		// settles.
		results := make([]sendClass, len(batch))
		var wg sync.WaitGroup
		for i, tok := range batch {
			wg.Add(1)
			go func(i int, tok model.DeviceToken) {
				defer wg.Done()
				results[i] = d.sendWithRetry(ctx, client, tok, p)
			}(i, tok)
		}
		wg.Wait()

		for i, class := range results {
			switch class {
			case sendOK:
				out.Sent++
			case sendDeadToken:
				out.Failed++
				out.DeadTokens = append(out.DeadTokens, batch[i].Token)
			default:
				out.Failed++
			}
		}
	}
	return out
}

// sendWithRetry attempts one token up to the configured ceiling, backing
// off exponentially with jitter between retryable failures. Permanent
// outcomes return immediately.
func (d *Dispatcher) sendWithRetry(ctx context.Context, client gateway.Messenger, tok model.DeviceToken, p BuildParams) sendClass {
	backoff := d.baseBackoff
	var class sendClass
	for attempt := 1; attempt <= d.maxAttempts; attempt++ {
		msg := BuildMessage(tok.Token, tok.Platform, p)
		_, err := client.Send(ctx, msg)
		class = d.classify(err)
		if class != sendRetryable {
			return class
		}
		if attempt == d.maxAttempts {
			break
		}

		timer := time.NewTimer(backoff + time.Duration(rand.Int63n(int64(jitterCeiling))))
		select {
		case <-ctx.Done():
			timer.Stop()
			return sendFailed
		case <-timer.C:
		}
		backoff *= 2
	}
	// Retries exhausted; the token is not dead on a transient signal.
	return sendFailed
}
