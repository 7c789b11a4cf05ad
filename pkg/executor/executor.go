package executor

import (
	"context"
	"fmt"
	"time"

	"github.com/fcdb-io/fcdb/pkg/capability"
	"github.com/fcdb-io/fcdb/pkg/digest"
	"github.com/fcdb-io/fcdb/pkg/events"
	"github.com/fcdb-io/fcdb/pkg/log"
	"github.com/fcdb-io/fcdb/pkg/metrics"
	"github.com/fcdb-io/fcdb/pkg/types"
)

var _ types.SafeExecutor = (*SafeExecutor)(nil)

// SafeExecutor implements types.SafeExecutor: every call runs fn
// inside a begin -> acquire-shared -> run -> audit -> commit/abort
// bracket, so a caller can never read capability-gated state without
// leaving a trace of having done so.
type SafeExecutor struct {
	resources *ResourceManager
	tracer    *capability.Tracer
	broker    *events.Broker
}

// New returns a SafeExecutor backed by a fresh resource manager and
// audit tracer.
func New() *SafeExecutor {
	return &SafeExecutor{
		resources: NewResourceManager(),
		tracer:    capability.NewTracer(),
	}
}

// NewWithTimeout returns a SafeExecutor whose transactions expire after
// timeout instead of capability.DefaultTimeout.
func NewWithTimeout(timeout time.Duration) *SafeExecutor {
	return &SafeExecutor{
		resources: NewResourceManagerWithTimeout(timeout),
		tracer:    capability.NewTracer(),
	}
}

// SetBroker attaches the event broker transaction aborts are
// announced on. A nil broker (the default) makes publish a no-op.
func (e *SafeExecutor) SetBroker(b *events.Broker) {
	e.broker = b
}

func (e *SafeExecutor) publish(typ events.EventType, message string, meta map[string]string) {
	if e.broker == nil {
		return
	}
	e.broker.Publish(&events.Event{Type: typ, Message: message, Metadata: meta})
}

// Resources exposes the underlying resource manager so callers can
// register capabilities before issuing operations against them.
func (e *SafeExecutor) Resources() *ResourceManager {
	return e.resources
}

// Tracer exposes the audit tracer for inspection.
func (e *SafeExecutor) Tracer() *capability.Tracer {
	return e.tracer
}

// ExecuteSafe brackets fn with a shared-borrow acquisition over
// resource, recording the attempt's outcome in the audit trail
// regardless of whether fn succeeds, then committing the transaction
// on success or aborting it on failure.
func (e *SafeExecutor) ExecuteSafe(ctx context.Context, actor, op string, resource digest.Digest, fn func(ctx context.Context) (any, error)) (any, error) {
	timer := metrics.NewTimer()
	txn := e.resources.BeginTransaction(actor)
	txnLog := log.WithTxnID(txn.ID)

	cap, acquireErr := e.acquireAndRecord(txn, actor, op, resource)
	if acquireErr != nil {
		e.resources.Abort(txn)
		timer.ObserveDuration(metrics.TxnDuration)
		metrics.TxnOutcomesTotal.WithLabelValues("denied").Inc()
		txnLog.Warn().Str("actor", actor).Str("op", op).Err(acquireErr).Msg("transaction denied")
		e.publish(events.EventTxnAborted, fmt.Sprintf("transaction for %s denied: %v", op, acquireErr),
			map[string]string{"actor": actor, "op": op})
		return nil, acquireErr
	}

	result, runErr := fn(ctx)

	success := runErr == nil
	details := "success"
	if !success {
		details = runErr.Error()
	}
	e.tracer.Record(capability.TraceEntry{
		Timestamp: types.Now(),
		Operation: op,
		Actor:     actor,
		Resource:  resource,
		Cap:       cap,
		Success:   success,
		Details:   details,
	})

	timer.ObserveDuration(metrics.TxnDuration)

	if runErr != nil {
		e.resources.Abort(txn)
		metrics.TxnOutcomesTotal.WithLabelValues("aborted").Inc()
		txnLog.Warn().Str("actor", actor).Str("op", op).Err(runErr).Msg("transaction aborted")
		e.publish(events.EventTxnAborted, fmt.Sprintf("transaction for %s aborted: %v", op, runErr),
			map[string]string{"actor": actor, "op": op})
		return nil, runErr
	}

	if err := e.resources.Commit(txn); err != nil {
		metrics.TxnOutcomesTotal.WithLabelValues("aborted").Inc()
		txnLog.Warn().Str("actor", actor).Str("op", op).Err(err).Msg("transaction failed to commit")
		e.publish(events.EventTxnAborted, fmt.Sprintf("transaction for %s failed to commit: %v", op, err),
			map[string]string{"actor": actor, "op": op})
		return nil, err
	}
	metrics.TxnOutcomesTotal.WithLabelValues("committed").Inc()
	txnLog.Debug().Str("actor", actor).Str("op", op).Msg("transaction committed")
	return result, nil
}

// acquireAndRecord acquires a shared handle over resource for txn,
// recording a failed audit entry if acquisition itself is denied (an
// unregistered resource, or one already held exclusively by another
// transaction), before fn ever runs.
func (e *SafeExecutor) acquireAndRecord(txn *capability.Transaction, actor, op string, resource digest.Digest) (types.Capability, error) {
	h, err := e.resources.AcquireShared(resource, txn)
	if err != nil {
		log.WithActor(actor).Debug().Str("op", op).Err(err).Msg("shared acquisition denied")
		e.tracer.Record(capability.TraceEntry{
			Timestamp: types.Now(),
			Operation: op,
			Actor:     actor,
			Resource:  resource,
			Success:   false,
			Details:   err.Error(),
		})
		return types.Capability{}, err
	}
	return h.Cap, nil
}
