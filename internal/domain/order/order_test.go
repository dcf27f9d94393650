package order

import (
	"context"
	"errors"
	"testing"

	domainErrors "github.com/polkiloo/orderflow/internal/domain/errors"
	"github.com/polkiloo/orderflow/internal/domain/model"
	"github.com/polkiloo/orderflow/internal/domain/port"
)

type stubIDs struct {
	id    string
	err   error
	calls int
}

func (s *stubIDs) NextID(context.Context) (string, error) {
	s.calls++
	if s.err != nil {
		return "", s.err
	}
	return s.id, nil
}

type stubCatalog struct {
	price      float64
	weight     float64
	priceErr   error
	weightErr  error
	priceCalls int
}

func (s *stubCatalog) UnitPrice(context.Context, string) (float64, error) {
	s.priceCalls++
	return s.price, s.priceErr
}

func (s *stubCatalog) UnitWeight(context.Context, string) (float64, error) {
	return s.weight, s.weightErr
}

type stubShipping struct {
	quote      float64
	quoteErr   error
	tracking   string
	shipErr    error
	quoteCalls int
	shipCalls  int
	lastWeight float64
}

func (s *stubShipping) Quote(_ context.Context, _ model.Address, weight float64) (float64, error) {
	s.quoteCalls++
	s.lastWeight = weight
	return s.quote, s.quoteErr
}

func (s *stubShipping) Ship(_ context.Context, _ model.Address, weight float64) (string, error) {
	s.shipCalls++
	s.lastWeight = weight
	if s.shipErr != nil {
		return "", s.shipErr
	}
	return s.tracking, nil
}

// capturingGateway records requests and captured callbacks so tests can
// deliver verdicts at any later point, like a real provider would.
type capturingGateway struct {
	payErr     error
	refundErr  error
	payCalls   int
	refunds    int
	lastAmount float64
	lastCode   string
	payCB      port.PaymentCallback
	refundCB   port.PaymentCallback
}

func (g *capturingGateway) Pay(_ context.Context, _ model.Card, amount float64, cb port.PaymentCallback) error {
	g.payCalls++
	g.lastAmount = amount
	g.payCB = cb
	return g.payErr
}

func (g *capturingGateway) Refund(_ context.Context, code string, cb port.PaymentCallback) error {
	g.refunds++
	g.lastCode = code
	g.refundCB = cb
	return g.refundErr
}

type fixture struct {
	ids      *stubIDs
	catalog  *stubCatalog
	shipping *stubShipping
	gateway  *capturingGateway
	order    *Order
}

func newFixture(opts ...Option) *fixture {
	f := &fixture{
		ids:      &stubIDs{id: "ORD-1"},
		catalog:  &stubCatalog{price: 1500, weight: 350},
		shipping: &stubShipping{quote: 50, tracking: "11001"},
		gateway:  &capturingGateway{},
	}
	f.order = New(f.ids, f.catalog, f.shipping, f.gateway, opts...)
	return f
}

func (f *fixture) place(t *testing.T) {
	t.Helper()
	if err := f.order.Place(context.Background(), "John", "Apple Watch", 2, model.Address{City: "City 1"}); err != nil {
		t.Fatalf("place failed: %v", err)
	}
}

func (f *fixture) pay(t *testing.T) {
	t.Helper()
	if err := f.order.Pay(context.Background(), model.Card{Number: "001", Holder: "John"}); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
}

func (f *fixture) paid(t *testing.T) {
	t.Helper()
	f.place(t)
	f.pay(t)
	f.gateway.payCB.OnSuccess("1")
	if got := f.order.Status(); got != model.StatusPaid {
		t.Fatalf("expected PAID, got %s", got)
	}
}

func TestNewOrderStartsCreated(t *testing.T) {
	f := newFixture()
	if got := f.order.Status(); got != model.StatusCreated {
		t.Fatalf("expected CREATED, got %s", got)
	}
	if f.order.ID() != "" {
		t.Fatalf("expected empty id before place, got %q", f.order.ID())
	}
}

func TestPlace(t *testing.T) {
	f := newFixture(WithCustomerID(7))
	f.place(t)

	snap := f.order.Snapshot()
	if snap.Status != model.StatusPlaced {
		t.Fatalf("expected PLACED, got %s", snap.Status)
	}
	if snap.ID != "ORD-1" {
		t.Fatalf("expected allocated id, got %q", snap.ID)
	}
	if snap.CustomerID != 7 || snap.CustomerName != "John" || snap.ProductName != "Apple Watch" || snap.Quantity != 2 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}
	if snap.TotalCost != nil {
		t.Fatalf("cost must not be computed at place time")
	}
	if f.ids.calls != 1 {
		t.Fatalf("expected one id allocation, got %d", f.ids.calls)
	}
}

func TestPlaceValidation(t *testing.T) {
	cases := []struct {
		name     string
		customer string
		product  string
		quantity int
	}{
		{"empty customer", "  ", "Apple Watch", 2},
		{"empty product", "John", "", 2},
		{"zero quantity", "John", "Apple Watch", 0},
		{"negative quantity", "John", "Apple Watch", -1},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			err := f.order.Place(context.Background(), tc.customer, tc.product, tc.quantity, model.Address{})
			if !errors.Is(err, domainErrors.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if got := f.order.Status(); got != model.StatusCreated {
				t.Fatalf("state must be unchanged, got %s", got)
			}
			if f.ids.calls != 0 {
				t.Fatalf("id must not be allocated on invalid place")
			}
		})
	}
}

func TestOnlyPlaceIsLegalFromCreated(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	if err := f.order.Pay(ctx, model.Card{}); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition for pay, got %v", err)
	}
	if err := f.order.Ship(ctx); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition for ship, got %v", err)
	}
	if err := f.order.Cancel(ctx); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition for cancel, got %v", err)
	}
	if got := f.order.Status(); got != model.StatusCreated {
		t.Fatalf("state must be unchanged, got %s", got)
	}
}

func TestPlaceTwiceIsIllegal(t *testing.T) {
	f := newFixture()
	f.place(t)
	err := f.order.Place(context.Background(), "John", "Apple Watch", 2, model.Address{})
	if !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
}

func TestPayComputesCostAndCharges(t *testing.T) {
	f := newFixture()
	f.place(t)
	f.pay(t)

	if got := f.order.Status(); got != model.StatusPaymentCheck {
		t.Fatalf("expected PAYMENT_CHECK, got %s", got)
	}
	cost := f.order.TotalCost()
	if cost == nil || *cost != 3050 {
		t.Fatalf("expected total cost 3050, got %v", cost)
	}
	if f.shipping.lastWeight != 700 {
		t.Fatalf("expected quote for weight 700, got %v", f.shipping.lastWeight)
	}
	if f.gateway.payCalls != 1 || f.gateway.lastAmount != 3050 {
		t.Fatalf("expected one charge of 3050, got %d of %v", f.gateway.payCalls, f.gateway.lastAmount)
	}
}

func TestPayRetryReusesCachedCost(t *testing.T) {
	f := newFixture()
	f.place(t)
	f.pay(t)

	// Collaborator answers drift between retries; the cached cost must win.
	f.catalog.price = 9999
	f.shipping.quote = 500
	f.pay(t)

	cost := f.order.TotalCost()
	if cost == nil || *cost != 3050 {
		t.Fatalf("expected cached cost 3050, got %v", cost)
	}
	if f.catalog.priceCalls != 1 {
		t.Fatalf("expected a single catalog lookup, got %d", f.catalog.priceCalls)
	}
	if f.shipping.quoteCalls != 1 {
		t.Fatalf("expected a single shipping quote, got %d", f.shipping.quoteCalls)
	}
	if f.gateway.payCalls != 2 || f.gateway.lastAmount != 3050 {
		t.Fatalf("expected a second charge of the same amount, got %d of %v", f.gateway.payCalls, f.gateway.lastAmount)
	}
}

func TestPaymentSuccess(t *testing.T) {
	f := newFixture()
	f.place(t)
	f.pay(t)

	f.gateway.payCB.OnSuccess("1")

	snap := f.order.Snapshot()
	if snap.Status != model.StatusPaid {
		t.Fatalf("expected PAID, got %s", snap.Status)
	}
	if snap.ConfirmationCode != "1" {
		t.Fatalf("expected confirmation code 1, got %q", snap.ConfirmationCode)
	}
}

func TestPaymentErrorAllowsRetry(t *testing.T) {
	f := newFixture()
	f.place(t)
	f.pay(t)

	f.gateway.payCB.OnError("0")
	if got := f.order.Status(); got != model.StatusPaymentError {
		t.Fatalf("expected PAYMENT_ERROR, got %s", got)
	}

	f.pay(t)
	if got := f.order.Status(); got != model.StatusPaymentCheck {
		t.Fatalf("expected PAYMENT_CHECK after retry, got %s", got)
	}
	f.gateway.payCB.OnSuccess("2")
	if got := f.order.Status(); got != model.StatusPaid {
		t.Fatalf("expected PAID after retried payment, got %s", got)
	}
}

func TestStalePaymentCallbackIgnored(t *testing.T) {
	f := newFixture()
	f.place(t)
	f.pay(t)
	stale := f.gateway.payCB

	f.pay(t) // retry supersedes the first request
	current := f.gateway.payCB

	stale.OnSuccess("9")
	snap := f.order.Snapshot()
	if snap.Status != model.StatusPaymentCheck || snap.ConfirmationCode != "" {
		t.Fatalf("stale callback must be ignored, got %s %q", snap.Status, snap.ConfirmationCode)
	}

	current.OnSuccess("1")
	snap = f.order.Snapshot()
	if snap.Status != model.StatusPaid || snap.ConfirmationCode != "1" {
		t.Fatalf("current callback must apply, got %s %q", snap.Status, snap.ConfirmationCode)
	}
}

func TestDuplicateCallbackIgnored(t *testing.T) {
	f := newFixture()
	f.place(t)
	f.pay(t)

	cb := f.gateway.payCB
	cb.OnSuccess("1")
	cb.OnSuccess("2")
	cb.OnError("0")

	snap := f.order.Snapshot()
	if snap.Status != model.StatusPaid || snap.ConfirmationCode != "1" {
		t.Fatalf("only the first delivery may apply, got %s %q", snap.Status, snap.ConfirmationCode)
	}
}

func TestShip(t *testing.T) {
	f := newFixture()
	f.paid(t)

	if err := f.order.Ship(context.Background()); err != nil {
		t.Fatalf("ship failed: %v", err)
	}

	snap := f.order.Snapshot()
	if snap.Status != model.StatusShipped {
		t.Fatalf("expected SHIPPED, got %s", snap.Status)
	}
	if snap.TrackingCode != "11001" {
		t.Fatalf("expected tracking code 11001, got %q", snap.TrackingCode)
	}
	if f.shipping.shipCalls != 1 || f.shipping.lastWeight != 700 {
		t.Fatalf("expected one shipment of weight 700, got %d of %v", f.shipping.shipCalls, f.shipping.lastWeight)
	}
	if f.shipping.quoteCalls != 1 {
		t.Fatalf("ship must not re-quote, got %d quotes", f.shipping.quoteCalls)
	}
}

func TestShipOnlyFromPaid(t *testing.T) {
	f := newFixture()
	f.place(t)
	if err := f.order.Ship(context.Background()); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}

	f.pay(t)
	if err := f.order.Ship(context.Background()); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition during payment check, got %v", err)
	}
}

func TestShipFailureKeepsStatePaid(t *testing.T) {
	f := newFixture()
	f.paid(t)
	f.shipping.shipErr = errors.New("carrier unavailable")

	if err := f.order.Ship(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	snap := f.order.Snapshot()
	if snap.Status != model.StatusPaid || snap.TrackingCode != "" {
		t.Fatalf("state must be unchanged, got %s %q", snap.Status, snap.TrackingCode)
	}
}

func TestCancelPlaced(t *testing.T) {
	f := newFixture()
	f.place(t)

	if err := f.order.Cancel(context.Background()); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got := f.order.Status(); got != model.StatusCanceled {
		t.Fatalf("expected CANCELED, got %s", got)
	}
	if f.gateway.refunds != 0 {
		t.Fatalf("cancel before payment must not refund")
	}
}

func TestCancelPaidRoutesThroughRefund(t *testing.T) {
	f := newFixture()
	f.paid(t)

	if err := f.order.Cancel(context.Background()); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got := f.order.Status(); got != model.StatusAwaitRefund {
		t.Fatalf("expected AWAIT_REFUND, got %s", got)
	}
	if f.gateway.refunds != 1 || f.gateway.lastCode != "1" {
		t.Fatalf("expected one refund with confirmation code 1, got %d with %q", f.gateway.refunds, f.gateway.lastCode)
	}

	f.gateway.refundCB.OnSuccess("1")
	snap := f.order.Snapshot()
	if snap.Status != model.StatusRefunded {
		t.Fatalf("expected REFUNDED, got %s", snap.Status)
	}
	if snap.ConfirmationCode == "" {
		t.Fatalf("confirmation code records that payment succeeded historically")
	}
}

func TestCancelShippedRoutesThroughRefund(t *testing.T) {
	f := newFixture()
	f.paid(t)
	if err := f.order.Ship(context.Background()); err != nil {
		t.Fatalf("ship failed: %v", err)
	}

	if err := f.order.Cancel(context.Background()); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}
	if got := f.order.Status(); got != model.StatusAwaitRefund {
		t.Fatalf("expected AWAIT_REFUND, got %s", got)
	}
	if f.gateway.refunds != 1 {
		t.Fatalf("expected exactly one refund request, got %d", f.gateway.refunds)
	}
}

func TestRefundErrorIsTerminal(t *testing.T) {
	f := newFixture()
	f.paid(t)
	if err := f.order.Cancel(context.Background()); err != nil {
		t.Fatalf("cancel failed: %v", err)
	}

	f.gateway.refundCB.OnError("0")
	if got := f.order.Status(); got != model.StatusRefundError {
		t.Fatalf("expected REFUND_ERROR, got %s", got)
	}

	if err := f.order.Cancel(context.Background()); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition from REFUND_ERROR, got %v", err)
	}
}

func TestCancelDuringPaymentCheckIsIllegal(t *testing.T) {
	f := newFixture()
	f.place(t)
	f.pay(t)
	if err := f.order.Cancel(context.Background()); !errors.Is(err, domainErrors.ErrIllegalTransition) {
		t.Fatalf("expected illegal transition, got %v", err)
	}
}

func TestQuoteFailureLeavesStateUnchanged(t *testing.T) {
	f := newFixture()
	f.place(t)
	f.shipping.quoteErr = errors.New("shipping unavailable")

	if err := f.order.Pay(context.Background(), model.Card{}); err == nil {
		t.Fatal("expected error")
	}
	snap := f.order.Snapshot()
	if snap.Status != model.StatusPlaced || snap.TotalCost != nil {
		t.Fatalf("state must be unchanged, got %s with cost %v", snap.Status, snap.TotalCost)
	}
	if f.gateway.payCalls != 0 {
		t.Fatalf("gateway must not be charged without a cost")
	}
}

func TestNegativeCatalogPriceRejected(t *testing.T) {
	f := newFixture()
	f.place(t)
	f.catalog.price = -1

	err := f.order.Pay(context.Background(), model.Card{})
	if !errors.Is(err, domainErrors.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if got := f.order.Status(); got != model.StatusPlaced {
		t.Fatalf("state must be unchanged, got %s", got)
	}
}

func TestGatewaySubmitFailure(t *testing.T) {
	f := newFixture()
	f.place(t)
	f.gateway.payErr = errors.New("gateway down")

	if err := f.order.Pay(context.Background(), model.Card{}); err == nil {
		t.Fatal("expected error")
	}
	// No callback will ever come for a request that never went out, so the
	// order lands in PAYMENT_ERROR and stays retryable.
	if got := f.order.Status(); got != model.StatusPaymentError {
		t.Fatalf("expected PAYMENT_ERROR, got %s", got)
	}

	f.gateway.payErr = nil
	f.pay(t)
	if got := f.order.Status(); got != model.StatusPaymentCheck {
		t.Fatalf("expected PAYMENT_CHECK after retry, got %s", got)
	}
}

func TestRefundSubmitFailure(t *testing.T) {
	f := newFixture()
	f.paid(t)
	f.gateway.refundErr = errors.New("gateway down")

	if err := f.order.Cancel(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if got := f.order.Status(); got != model.StatusRefundError {
		t.Fatalf("expected REFUND_ERROR, got %s", got)
	}
}

func TestObserverSeesEveryTransition(t *testing.T) {
	var seen []model.Status
	f := newFixture(WithObserver(func(snap model.Order) {
		seen = append(seen, snap.Status)
	}))

	f.place(t)
	f.pay(t)
	f.gateway.payCB.OnSuccess("1")
	if err := f.order.Ship(context.Background()); err != nil {
		t.Fatalf("ship failed: %v", err)
	}

	want := []model.Status{model.StatusPlaced, model.StatusPaymentCheck, model.StatusPaid, model.StatusShipped}
	if len(seen) != len(want) {
		t.Fatalf("expected %d transitions, got %d: %v", len(want), len(seen), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("transition %d: expected %s, got %s", i, want[i], seen[i])
		}
	}
}

func TestRestoreResumesLifecycle(t *testing.T) {
	f := newFixture()
	f.paid(t)
	snap := f.order.Snapshot()

	restored := Restore(snap, f.ids, f.catalog, f.shipping, f.gateway)
	if err := restored.Ship(context.Background()); err != nil {
		t.Fatalf("ship after restore failed: %v", err)
	}
	got := restored.Snapshot()
	if got.Status != model.StatusShipped || got.TrackingCode != "11001" {
		t.Fatalf("unexpected restored state: %s %q", got.Status, got.TrackingCode)
	}
	if f.shipping.lastWeight != 700 {
		t.Fatalf("restored order must ship with the weight quoted at pay time, got %v", f.shipping.lastWeight)
	}
}
