package order

type callbackKind int

const (
	kindPayment callbackKind = iota
	kindRefund
)

// callbackToken is a single-use completion handle bound to one order and one
// outstanding gateway request. The order itself plays the callback target, so
// a stray or duplicate delivery cannot be misapplied to the wrong pending
// operation. The used flag is guarded by the order mutex.
type callbackToken struct {
	order *Order
	kind  callbackKind
	used  bool
}

// OnSuccess delivers a successful gateway verdict.
func (t *callbackToken) OnSuccess(code string) {
	t.order.resolve(t, code, true)
}

// OnError delivers a failed gateway verdict.
func (t *callbackToken) OnError(code string) {
	t.order.resolve(t, code, false)
}
