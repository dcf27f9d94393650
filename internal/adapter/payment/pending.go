package payment

import (
	"errors"
	"sync"
	"time"

	"github.com/polkiloo/orderflow/internal/domain/port"
)

// ErrUnknownRequest indicates no outstanding request matches the id: either
// it was never issued here or its verdict was already delivered.
var ErrUnknownRequest = errors.New("unknown payment request")

type requestKind string

const (
	kindCharge requestKind = "charge"
	kindRefund requestKind = "refund"
)

type pendingRequest struct {
	kind      requestKind
	callback  port.PaymentCallback
	createdAt time.Time
}

// pendingTable tracks outstanding gateway requests and guarantees that each
// registered callback is dispatched at most once.
type pendingTable struct {
	mu       sync.Mutex
	requests map[string]pendingRequest
}

func newPendingTable() *pendingTable {
	return &pendingTable{requests: make(map[string]pendingRequest)}
}

func (t *pendingTable) add(requestID string, kind requestKind, cb port.PaymentCallback) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.requests[requestID] = pendingRequest{kind: kind, callback: cb, createdAt: time.Now()}
}

func (t *pendingTable) remove(requestID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.requests, requestID)
}

// take claims the request for dispatch, making any further take fail.
func (t *pendingTable) take(requestID string) (pendingRequest, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	req, ok := t.requests[requestID]
	if ok {
		delete(t.requests, requestID)
	}
	return req, ok
}

// staleIDs returns ids of requests created before the cutoff.
func (t *pendingTable) staleIDs(cutoff time.Time, limit int) []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	var ids []string
	for id, req := range t.requests {
		if req.createdAt.Before(cutoff) {
			ids = append(ids, id)
			if limit > 0 && len(ids) >= limit {
				break
			}
		}
	}
	return ids
}
