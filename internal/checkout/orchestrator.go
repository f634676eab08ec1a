package checkout

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/address"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/cart"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/clock"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/metrics"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/order"
	"github.com/andreasstove999/ecommerce-system/checkout-service-go/internal/wallet"
)

var (
	ErrConfirmInFlight = errors.New("a confirmation is already in progress")
	ErrPersistence     = errors.New("order could not be saved")

	// ErrInsufficientFunds is returned when the balance changed between quote
	// and confirm. The caller re-quotes; the wallet share is never re-clamped.
	ErrInsufficientFunds = wallet.ErrInsufficientFunds
)

const compensationAttempts = 3

type State string

const (
	StateBuilding   State = "building"
	StateConfirming State = "confirming"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Carts resolves the cart of a user scope.
type Carts interface {
	ForUser(userID string) cart.Aggregator
}

type OrderAppender interface {
	Append(ctx context.Context, userID string, o order.Order) error
}

// Publisher announces checkout side effects. Failures are logged and never
// change the outcome of a confirm.
type Publisher interface {
	PublishOrderPlaced(ctx context.Context, o order.Order) error
	PublishWalletCompensated(ctx context.Context, userID, orderID string, amount decimal.Decimal) error
}

type Form struct {
	DeliveryMethod   DeliveryMethod  `json:"deliveryMethod"`
	UseWalletBalance bool            `json:"useWalletBalance"`
	Extras           decimal.Decimal `json:"extras"`
	Payment          *PaymentMethod  `json:"paymentMethod,omitempty"`
}

type Quote struct {
	State           State            `json:"state"`
	Items           []cart.Item      `json:"items"`
	ShippingAddress *address.Address `json:"shippingAddress,omitempty"`
	WalletBalance   decimal.Decimal  `json:"walletBalance"`
	WalletUsable    bool             `json:"walletUsable"`
	Totals          Totals           `json:"totals"`
	DeliveryWindow  Window           `json:"deliveryWindow"`
	Blockers        []Blocker        `json:"blockers"`
	CanConfirm      bool             `json:"canConfirm"`
}

type Completion struct {
	Outcome   OutcomeType  `json:"outcomeType"`
	OrderID   string       `json:"orderId"`
	PayerName string       `json:"payerName,omitempty"`
	Order     *order.Order `json:"order,omitempty"`
}

type Deps struct {
	Carts     Carts
	Addresses address.Book
	Wallet    wallet.Ledger
	Orders    OrderAppender
	Publisher Publisher
	Clock     clock.Clock
	Logger    *zap.Logger
	Metrics   *metrics.CheckoutMetrics

	SettlementDelay time.Duration
	NewOrderID      func() string
}

type Orchestrator struct {
	carts     Carts
	addresses address.Book
	wallet    wallet.Ledger
	orders    OrderAppender
	publisher Publisher
	clock     clock.Clock
	logger    *zap.Logger
	metrics   *metrics.CheckoutMetrics
	delay     time.Duration
	newID     func() string

	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	state State
	// quoted is the wallet balance the user was last shown. Confirm splits
	// the total against it so the debit is never silently re-clamped.
	quoted *decimal.Decimal
}

func New(d Deps) *Orchestrator {
	o := &Orchestrator{
		carts:     d.Carts,
		addresses: d.Addresses,
		wallet:    d.Wallet,
		orders:    d.Orders,
		publisher: d.Publisher,
		clock:     d.Clock,
		logger:    d.Logger,
		metrics:   d.Metrics,
		delay:     d.SettlementDelay,
		newID:     d.NewOrderID,
		sessions:  make(map[string]*session),
	}
	if o.clock == nil {
		o.clock = clock.NewSystem()
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.newID == nil {
		o.newID = func() string { return "ORD-" + uuid.NewString() }
	}
	return o
}

// State reports where the user's checkout session currently is.
func (o *Orchestrator) State(userID string) State {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.sessions[userID]; ok {
		return s.state
	}
	return StateBuilding
}

// WalletBalance reports the stored-value balance shown before checkout. The
// ledger is otherwise only touched by Confirm.
func (o *Orchestrator) WalletBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	balance, err := o.wallet.Balance(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load wallet balance: %w", err)
	}
	return balance, nil
}

// Quote recomputes totals and readiness for the current form. Editing the
// form after a failed or completed confirm puts the session back in Building.
func (o *Orchestrator) Quote(ctx context.Context, userID string, form Form) (Quote, error) {
	inFlight := o.touch(userID)

	balance, err := o.wallet.Balance(ctx, userID)
	if err != nil {
		return Quote{}, fmt.Errorf("load wallet balance: %w", err)
	}
	p, err := o.prepare(ctx, userID, form, balance)
	if err != nil {
		return Quote{}, err
	}
	blockers := p.blockers(form, inFlight)
	o.remember(userID, balance)

	state := StateBuilding
	if inFlight {
		state = StateConfirming
	}
	return Quote{
		State:           state,
		Items:           p.items,
		ShippingAddress: p.address,
		WalletBalance:   p.balance,
		WalletUsable:    p.balance.IsPositive(),
		Totals:          p.totals,
		DeliveryWindow:  DeliveryWindow(o.clock.Now()),
		Blockers:        blockers,
		CanConfirm:      len(blockers) == 0,
	}, nil
}

// Confirm places the order. The wallet share is reserved before the order
// is written; if the write fails the reservation is credited back before
// the error is returned.
func (o *Orchestrator) Confirm(ctx context.Context, userID string, form Form) (Completion, error) {
	if !o.begin(userID) {
		o.metrics.ObserveConfirm("in_flight")
		return Completion{}, ErrConfirmInFlight
	}

	c, err := o.confirm(ctx, userID, form)
	if err != nil {
		o.finish(userID, StateFailed)
		o.metrics.ObserveConfirm(confirmResult(err))
		return Completion{}, err
	}

	o.finish(userID, StateCompleted)
	o.metrics.ObserveConfirm("completed")
	return c, nil
}

func (o *Orchestrator) confirm(ctx context.Context, userID string, form Form) (Completion, error) {
	balance, err := o.quotedBalance(ctx, userID)
	if err != nil {
		return Completion{}, err
	}
	p, err := o.prepare(ctx, userID, form, balance)
	if err != nil {
		return Completion{}, err
	}
	if blockers := p.blockers(form, false); len(blockers) > 0 {
		return Completion{}, &ValidationError{Blockers: blockers}
	}

	candidate := o.snapshot(userID, form, p)
	log := o.logger.With(zap.String("user_id", userID), zap.String("order_id", candidate.ID))

	if err := o.clock.Sleep(ctx, o.delay); err != nil {
		log.Info("checkout abandoned before settlement", zap.Error(err))
		return Completion{}, fmt.Errorf("settlement wait: %w", err)
	}

	// Once money can move, the caller leaving must not strand a debit.
	ctx = context.WithoutCancel(ctx)

	used := candidate.WalletDeduction
	if used.IsPositive() {
		if _, err := o.wallet.Reserve(ctx, userID, used, candidate.ID); err != nil {
			if errors.Is(err, wallet.ErrInsufficientFunds) {
				log.Info("wallet balance changed since quote", zap.String("requested", used.StringFixed(2)))
			}
			return Completion{}, fmt.Errorf("reserve wallet: %w", err)
		}
	}

	if err := o.orders.Append(ctx, userID, candidate); err != nil {
		log.Error("append order failed", zap.Error(err))
		o.compensate(ctx, log, userID, candidate)
		return Completion{}, fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	if err := o.carts.ForUser(userID).Clear(ctx); err != nil {
		log.Warn("clear cart after order failed", zap.Error(err))
	}

	if o.publisher != nil {
		if err := o.publisher.PublishOrderPlaced(ctx, candidate); err != nil {
			log.Warn("publish OrderPlaced failed", zap.Error(err))
		}
	}

	log.Info("order placed",
		zap.String("total", candidate.Total.StringFixed(2)),
		zap.String("wallet_deduction", used.StringFixed(2)),
		zap.String("payment_method", candidate.PaymentMethod),
	)
	return completionFor(form, candidate), nil
}

func (o *Orchestrator) compensate(ctx context.Context, log *zap.Logger, userID string, candidate order.Order) {
	amount := candidate.WalletDeduction
	if !amount.IsPositive() {
		return
	}

	var err error
	for attempt := 1; attempt <= compensationAttempts; attempt++ {
		if _, err = o.wallet.Credit(ctx, userID, amount, candidate.ID); err == nil {
			break
		}
		log.Warn("compensating credit failed", zap.Int("attempt", attempt), zap.Error(err))
	}
	if err != nil {
		log.Error("wallet compensation failed, manual reconciliation required",
			zap.String("amount", amount.StringFixed(2)), zap.Error(err))
		o.metrics.ObserveCompensation("failed")
		return
	}

	log.Warn("wallet debit reversed", zap.String("amount", amount.StringFixed(2)))
	o.metrics.ObserveCompensation("credited")
	if o.publisher != nil {
		if err := o.publisher.PublishWalletCompensated(ctx, userID, candidate.ID, amount); err != nil {
			log.Warn("publish WalletCompensated failed", zap.Error(err))
		}
	}
}

type prepared struct {
	items   []cart.Item
	address *address.Address
	balance decimal.Decimal
	totals  Totals
}

func (p prepared) blockers(form Form, inFlight bool) []Blocker {
	return Blockers(ReadinessInput{
		ItemCount:  len(p.items),
		HasAddress: p.address != nil,
		Form:       form,
		Totals:     p.totals,
		InFlight:   inFlight,
	})
}

func (o *Orchestrator) prepare(ctx context.Context, userID string, form Form, balance decimal.Decimal) (prepared, error) {
	items, err := o.carts.ForUser(userID).LineItems(ctx)
	if err != nil {
		return prepared{}, fmt.Errorf("load cart: %w", err)
	}
	addr, err := o.addresses.Selected(ctx, userID)
	if err != nil {
		return prepared{}, fmt.Errorf("load shipping address: %w", err)
	}
	return prepared{
		items:   items,
		address: addr,
		balance: balance,
		totals:  ComputeTotals(cart.Subtotal(items), form.DeliveryMethod, form.Extras, balance, form.UseWalletBalance),
	}, nil
}

// snapshot freezes everything the order needs. Items are copied so later
// cart edits cannot reach a placed order.
func (o *Orchestrator) snapshot(userID string, form Form, p prepared) order.Order {
	now := o.clock.Now()
	local := now.In(displayZone)

	items := make([]order.Item, len(p.items))
	for i, it := range p.items {
		items[i] = order.Item{
			LineID:    it.LineID,
			ProductID: it.ProductID,
			Name:      it.Name,
			Quantity:  it.Quantity,
			UnitPrice: it.UnitPrice(),
		}
	}

	kind, label := paymentFor(form, p.totals)
	return order.Order{
		ID:                 o.newID(),
		UserID:             userID,
		CreatedDate:        local.Format(time.DateOnly),
		CreatedTime:        local.Format("15:04"),
		CreatedAt:          now,
		Subtotal:           p.totals.Subtotal,
		DeliveryMethod:     string(form.DeliveryMethod),
		DeliveryCost:       p.totals.DeliveryCost,
		Extras:             p.totals.Extras,
		Total:              p.totals.Total,
		Status:             initialStatus(kind, p.totals),
		PaymentMethod:      string(kind),
		PaymentMethodLabel: label,
		ShippingAddress: order.ShippingAddress{
			Recipient: p.address.Recipient,
			Phone:     p.address.Phone,
			Line1:     p.address.Line1,
			City:      p.address.City,
			State:     p.address.State,
		},
		Items:           items,
		WalletDeduction: p.totals.WalletAmountUsed,
	}
}

// paymentFor decides which method settles the order. The remainder method
// only counts while something is left to pay.
func paymentFor(form Form, t Totals) (PaymentKind, string) {
	if !t.AmountDue.IsPositive() || form.Payment == nil {
		if t.WalletAmountUsed.IsPositive() {
			return walletOnly, "Wallet"
		}
		return walletOnly, "No payment due"
	}
	label := form.Payment.Label()
	if t.WalletAmountUsed.IsPositive() {
		label = "Wallet + " + label
	}
	return form.Payment.Kind, label
}

func initialStatus(kind PaymentKind, t Totals) order.Status {
	if t.AmountDue.IsPositive() && (kind == DeferredInvoice || kind == DelegatedPayment) {
		return order.StatusAwaitingPayment
	}
	return order.StatusProcessing
}

func completionFor(form Form, placed order.Order) Completion {
	c := Completion{Outcome: OutcomeStandard, OrderID: placed.ID}
	switch PaymentKind(placed.PaymentMethod) {
	case DeferredInvoice:
		cp := placed.Clone()
		c.Outcome = OutcomeInvoice
		c.Order = &cp
	case DelegatedPayment:
		c.Outcome = OutcomePaymentLink
		c.PayerName = form.Payment.PayerName
	}
	return c
}

func confirmResult(err error) string {
	var verr *ValidationError
	switch {
	case errors.As(err, &verr):
		return "blocked"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrPersistence):
		return "persistence_failed"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled"
	default:
		return "error"
	}
}

// quotedBalance is the balance from the user's last quote, or the current
// balance when confirm is called without one.
func (o *Orchestrator) quotedBalance(ctx context.Context, userID string) (decimal.Decimal, error) {
	o.mu.Lock()
	var quoted *decimal.Decimal
	if s, ok := o.sessions[userID]; ok {
		quoted = s.quoted
	}
	o.mu.Unlock()

	if quoted != nil {
		return *quoted, nil
	}
	balance, err := o.wallet.Balance(ctx, userID)
	if err != nil {
		return decimal.Zero, fmt.Errorf("load wallet balance: %w", err)
	}
	return balance, nil
}

func (o *Orchestrator) session(userID string) *session {
	s, ok := o.sessions[userID]
	if !ok {
		s = &session{state: StateBuilding}
		o.sessions[userID] = s
	}
	return s
}

func (o *Orchestrator) remember(userID string, balance decimal.Decimal) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.session(userID).quoted = &balance
}

func (o *Orchestrator) begin(userID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.session(userID)
	if s.state == StateConfirming {
		return false
	}
	s.state = StateConfirming
	return true
}

// finish records the confirm result. A completed checkout forgets the
// quoted balance; a failed one keeps it so a retry without a fresh quote
// fails the same way.
func (o *Orchestrator) finish(userID string, state State) {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.session(userID)
	s.state = state
	if state == StateCompleted {
		s.quoted = nil
	}
}

// touch moves a settled session back to Building and reports whether a
// confirm is still running.
func (o *Orchestrator) touch(userID string) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	s := o.session(userID)
	if s.state == StateConfirming {
		return true
	}
	s.state = StateBuilding
	return false
}
