package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/orderflow/internal/adapter/payment"
	"github.com/polkiloo/orderflow/internal/domain/model"
)

// FlowFacade exposes the subset of application functionality required by the worker.
type FlowFacade interface {
	StalePaymentRequests(age time.Duration, limit int) []string
	ReconcilePaymentRequest(ctx context.Context, requestID string) error
	PendingOrders(ctx context.Context, age time.Duration, limit int) ([]model.Order, error)
}

// Reconciler polls the payment gateway for requests whose webhook never
// arrived and resolves them concurrently.
type Reconciler struct {
	facade       FlowFacade
	pollInterval time.Duration
	pendingAge   time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan string
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewReconciler constructs the reconciliation worker pool.
func NewReconciler(facade FlowFacade, pollInterval, pendingAge time.Duration, batchSize, workers int, logger *slog.Logger) *Reconciler {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Reconciler{
		facade:       facade,
		pollInterval: pollInterval,
		pendingAge:   pendingAge,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan string, batchSize*workers),
	}
}

// Start launches background processing.
func (r *Reconciler) Start(ctx context.Context) {
	r.mu.Lock()
	defer r.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	r.cancel = cancel

	for i := 0; i < r.workers; i++ {
		r.wg.Add(1)
		go r.worker(runCtx)
	}

	r.wg.Add(1)
	go r.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (r *Reconciler) Stop() {
	r.mu.Lock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
	r.mu.Unlock()

	r.wg.Wait()
}

func (r *Reconciler) dispatch(ctx context.Context) {
	defer r.wg.Done()
	defer close(r.jobs)
	ticker := time.NewTicker(r.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.fetchAndDispatch(ctx)
		}
	}
}

func (r *Reconciler) fetchAndDispatch(ctx context.Context) {
	requestIDs := r.facade.StalePaymentRequests(r.pendingAge, r.batchSize)
	for _, requestID := range requestIDs {
		select {
		case <-ctx.Done():
			return
		case r.jobs <- requestID:
		}
	}

	// Orders can sit in PAYMENT_CHECK or AWAIT_REFUND without a pending
	// request after a restart; surface them so operators notice.
	stuck, err := r.facade.PendingOrders(ctx, r.pendingAge, r.batchSize)
	if err != nil {
		r.logger.Error("list pending orders failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range stuck {
		r.logger.Warn("order awaits gateway verdict",
			slog.String("order_id", order.ID),
			slog.String("status", string(order.Status)),
			slog.Time("updated_at", order.UpdatedAt),
		)
	}
}

func (r *Reconciler) worker(ctx context.Context) {
	defer r.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case requestID, ok := <-r.jobs:
			if !ok {
				return
			}
			r.reconcile(ctx, requestID)
		}
	}
}

func (r *Reconciler) reconcile(ctx context.Context, requestID string) {
	if err := r.facade.ReconcilePaymentRequest(ctx, requestID); err != nil {
		var rateLimited payment.TooManyRequestsError
		switch {
		case errors.As(err, &rateLimited):
			r.logger.Warn("gateway rate limited", slog.Duration("retry_after", rateLimited.RetryAfter))
			time.Sleep(rateLimited.RetryAfter)
		case errors.Is(err, payment.ErrUnknownRequest):
			// The webhook won the race; nothing left to resolve.
		default:
			r.logger.Error("reconcile payment request failed",
				slog.String("request_id", requestID),
				slog.String("error", err.Error()),
			)
		}
	}
}
