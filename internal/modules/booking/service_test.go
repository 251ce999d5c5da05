// README: Booking workflow tests with scripted prompters and in-memory collaborators.
package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"citycab/internal/clock"
	"citycab/internal/modules/account"
	"citycab/internal/modules/citygraph"
	"citycab/internal/modules/fleet"
	"citycab/internal/modules/history"
	"citycab/internal/modules/pricing"
	"citycab/internal/modules/rating"
	"citycab/internal/types"
)

var noon = time.Date(2026, 3, 2, 12, 0, 0, 0, time.UTC)

// scriptPrompter answers every prompt from fixed fields.
type scriptPrompter struct {
	mu sync.Mutex

	confirm     bool
	blockOnAsk  bool // never answer confirmation; wait for ctx
	classChoice fleet.Class
	classOK     bool
	code        func(v Verification) string
	stars       int
	rate        bool

	beforeConfirm func()
	beforeVerify  func()

	offers        []Offer
	classAsks     int
	verifications []Verification
	ratingAsks    int
}

func (p *scriptPrompter) ConfirmBooking(ctx context.Context, offer Offer) (bool, error) {
	p.mu.Lock()
	p.offers = append(p.offers, offer)
	hook := p.beforeConfirm
	p.mu.Unlock()
	if hook != nil {
		hook()
	}
	if p.blockOnAsk {
		<-ctx.Done()
		return false, ctx.Err()
	}
	return p.confirm, nil
}

func (p *scriptPrompter) ChooseClass(_ context.Context, _ fleet.Class) (fleet.Class, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.classAsks++
	return p.classChoice, p.classOK, nil
}

func (p *scriptPrompter) VerifyCode(_ context.Context, v Verification) (string, error) {
	p.mu.Lock()
	p.verifications = append(p.verifications, v)
	hook := p.beforeVerify
	p.mu.Unlock()
	if hook != nil {
		hook()
	}
	if p.code != nil {
		return p.code(v), nil
	}
	return v.Code, nil
}

func (p *scriptPrompter) RequestRating(_ context.Context, _ RatingPrompt) (int, bool, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.ratingAsks++
	return p.stars, p.rate, nil
}

func happyPrompter() *scriptPrompter {
	return &scriptPrompter{confirm: true}
}

// countingFleet records reserve and release calls per vehicle.
type countingFleet struct {
	*fleet.Index
	mu       sync.Mutex
	reserved map[types.ID]int
	released map[types.ID]int
}

func newCountingFleet(idx *fleet.Index) *countingFleet {
	return &countingFleet{Index: idx, reserved: map[types.ID]int{}, released: map[types.ID]int{}}
}

func (c *countingFleet) Reserve(id types.ID) bool {
	ok := c.Index.Reserve(id)
	if ok {
		c.mu.Lock()
		c.reserved[id]++
		c.mu.Unlock()
	}
	return ok
}

func (c *countingFleet) Release(id types.ID) bool {
	c.mu.Lock()
	c.released[id]++
	c.mu.Unlock()
	return c.Index.Release(id)
}

func (c *countingFleet) assertBalanced(t *testing.T) {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	for id, n := range c.reserved {
		if c.released[id] != n {
			t.Fatalf("vehicle %s reserved %d times but released %d times", id, n, c.released[id])
		}
	}
	for id, n := range c.released {
		if c.reserved[id] != n {
			t.Fatalf("vehicle %s released %d times but reserved %d times", id, n, c.reserved[id])
		}
	}
}

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (r *recordingSink) Publish(_ context.Context, ev Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recordingSink) states() []State {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]State, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.To
	}
	return out
}

func (r *recordingSink) assertLegal(t *testing.T) {
	t.Helper()
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, ev := range r.events {
		if ev.From == "" {
			continue
		}
		if !CanTransition(ev.From, ev.To) {
			t.Fatalf("illegal transition %s -> %s", ev.From, ev.To)
		}
	}
}

type fixedIDs struct {
	mu   sync.Mutex
	code string
	next int
}

func (f *fixedIDs) NextCode() string { return f.code }

func (f *fixedIDs) NextBookingID() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.next++
	return fmt.Sprintf("UB%05d", 10000+f.next)
}

type countingReseeder struct {
	mu    sync.Mutex
	calls int
}

func (c *countingReseeder) Reseed(context.Context) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return 0, nil
}

type harness struct {
	svc      *Service
	fleet    *countingFleet
	accounts *account.MemoryStore
	history  *history.MemoryStore
	ratings  *rating.MemoryStore
	reseeder *countingReseeder
	sink     *recordingSink
}

type harnessOption func(*Deps, *Config)

func newHarness(t *testing.T, g *citygraph.Graph, vehicles []fleet.Vehicle, opts ...harnessOption) *harness {
	t.Helper()
	idx := fleet.NewIndex(nil)
	for _, v := range vehicles {
		if err := idx.Register(v); err != nil {
			t.Fatalf("register %s: %v", v.ID, err)
		}
	}
	h := &harness{
		fleet:    newCountingFleet(idx),
		accounts: account.NewMemoryStore(),
		history:  history.NewMemoryStore(),
		ratings:  rating.NewMemoryStore(),
		reseeder: &countingReseeder{},
		sink:     &recordingSink{},
	}
	deps := Deps{
		Graph:    g,
		Fleet:    h.fleet,
		Reseeder: h.reseeder,
		Fares:    pricing.NewCalculator(time.UTC),
		Accounts: h.accounts,
		History:  h.history,
		Ratings:  h.ratings,
		IDs:      &fixedIDs{code: "4321"},
		Clock:    clock.Fixed(noon),
		Events:   h.sink,
	}
	cfg := Config{
		ConfirmTimeout: time.Second,
		VerifyTimeout:  time.Second,
		RatingTimeout:  time.Second,
		TransitMinute:  time.Millisecond,
	}
	for _, o := range opts {
		o(&deps, &cfg)
	}
	h.svc = NewService(deps, cfg)
	return h
}

func (h *harness) addRider(t *testing.T, id types.ID, method account.PaymentMethod, balance int64) {
	t.Helper()
	a := &account.Account{ID: id, Name: "Asha", PaymentMethod: method, Balance: types.Money{Amount: balance}}
	if err := h.accounts.Create(context.Background(), a); err != nil {
		t.Fatalf("create rider: %v", err)
	}
}

func (h *harness) balance(t *testing.T, id types.ID) int64 {
	t.Helper()
	a, err := h.accounts.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get rider: %v", err)
	}
	return a.Balance.Amount
}

func saketBike() fleet.Vehicle {
	return fleet.Vehicle{ID: "9000000001", Name: "Ravi", Location: "Saket", Class: fleet.ClassTwoWheeler}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to State
		want     bool
	}{
		{StateQuoting, StateMatching, true},
		{StateMatching, StateQuoting, true},
		{StateAwaitingConfirmation, StateReserved, true},
		{StateAwaitingConfirmation, StateMatching, true},
		{StateInTransit, StateCompleted, true},
		{StateInTransit, StateFailed, true},
		{StateQuoting, StateCompleted, false},
		{StateReserved, StateMatching, false},
		{StateCompleted, StateCancelled, false},
		{StateFailed, StateQuoting, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Fatalf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
	for _, s := range []State{StateCompleted, StateCancelled, StateFailed} {
		if !s.Terminal() {
			t.Fatalf("%s should be terminal", s)
		}
	}
}

func TestRun_SaketToINA(t *testing.T) {
	ctx := context.Background()
	g := citygraph.New()
	g.AddEdge("Saket", "INA", 7.54)
	h := newHarness(t, g, []fleet.Vehicle{saketBike()})
	h.addRider(t, "r1", account.PaymentWallet, 10000)

	p := happyPrompter()
	p.stars, p.rate = 5, true
	out := h.svc.Run(ctx, Request{RiderID: "r1", Source: "saket", Destination: "INA", Class: fleet.ClassTwoWheeler}, p)

	if out.State != StateCompleted || out.Err != nil {
		t.Fatalf("expected completed, got %s (%v)", out.State, out.Err)
	}
	if out.Quote.Fare.Amount != 7540 {
		t.Fatalf("expected fare 7540 paise, got %d", out.Quote.Fare.Amount)
	}
	if out.ETAMinutes != 1 || out.Vehicle.ID != "9000000001" {
		t.Fatalf("unexpected match: eta=%d vehicle=%+v", out.ETAMinutes, out.Vehicle)
	}
	if out.Payment != PaymentWallet || h.balance(t, "r1") != 2460 {
		t.Fatalf("expected wallet debit, payment=%s balance=%d", out.Payment, h.balance(t, "r1"))
	}
	if v, _ := h.fleet.Get("9000000001"); !v.Available {
		t.Fatalf("vehicle should be released on completion")
	}
	h.fleet.assertBalanced(t)

	rec, err := h.history.Find(ctx, out.BookingID)
	if err != nil {
		t.Fatalf("find record: %v", err)
	}
	if rec.Source != "Saket" || rec.Destination != "INA" || rec.Rating != 5 || rec.DriverName != "Ravi" {
		t.Fatalf("unexpected record: %+v", rec)
	}
	if avg, _ := h.ratings.AverageRating(ctx, "9000000001"); avg != 5 {
		t.Fatalf("expected driver average 5, got %v", avg)
	}

	want := []State{StateQuoting, StateMatching, StateAwaitingConfirmation, StateReserved,
		StateAwaitingPayment, StateAwaitingVerification, StateInTransit, StateCompleted}
	got := h.sink.states()
	if len(got) != len(want) {
		t.Fatalf("unexpected transitions: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("transition %d: got %s, want %s", i, got[i], want[i])
		}
	}
	h.sink.assertLegal(t)

	if len(p.offers) != 1 || len(p.offers[0].Candidates) != 1 {
		t.Fatalf("expected one offer with one candidate, got %+v", p.offers)
	}
}

func TestRun_OfferShowsTopThreeByETA(t *testing.T) {
	g := citygraph.NewDefault()
	vehicles := []fleet.Vehicle{
		{ID: "v-jasola", Name: "J", Location: "Jasola", Class: fleet.ClassSedan},
		{ID: "v-cp", Name: "C", Location: "Connaught Place", Class: fleet.ClassSedan},
		{ID: "v-saket", Name: "S", Location: "Saket", Class: fleet.ClassSedan},
		{ID: "v-rkp", Name: "R", Location: "RK Puram", Class: fleet.ClassSedan},
	}
	h := newHarness(t, g, vehicles)
	h.addRider(t, "r1", account.PaymentCash, 0)
	p := happyPrompter()

	out := h.svc.Run(context.Background(), Request{RiderID: "r1", Source: "Saket", Destination: "INA", Class: fleet.ClassSedan}, p)
	if out.State != StateCompleted {
		t.Fatalf("expected completed, got %s (%v)", out.State, out.Err)
	}
	cands := p.offers[0].Candidates
	if len(cands) != 3 {
		t.Fatalf("expected 3 candidates, got %d", len(cands))
	}
	if cands[0].Vehicle.ID != "v-saket" || cands[1].Vehicle.ID != "v-rkp" || cands[2].Vehicle.ID != "v-jasola" {
		t.Fatalf("unexpected ranking: %s %s %s", cands[0].Vehicle.ID, cands[1].Vehicle.ID, cands[2].Vehicle.ID)
	}
	if out.Payment != PaymentCash {
		t.Fatalf("expected cash payment, got %s", out.Payment)
	}
}

func TestRun_ZeroAvailabilityFails(t *testing.T) {
	g := citygraph.NewDefault()
	h := newHarness(t, g, []fleet.Vehicle{
		{ID: "bike", Name: "B", Location: "Saket", Class: fleet.ClassTwoWheeler},
	})
	h.addRider(t, "r1", account.PaymentWallet, 50000)
	p := &scriptPrompter{confirm: true}

	out := h.svc.Run(context.Background(), Request{RiderID: "r1", Source: "Saket", Destination: "INA", Class: fleet.ClassVan}, p)
	if out.State != StateFailed || !errors.Is(out.Err, ErrNoAvailability) {
		t.Fatalf("expected failed with ErrNoAvailability, got %s (%v)", out.State, out.Err)
	}
	if h.reseeder.calls != 1 {
		t.Fatalf("expected exactly one reseed, got %d", h.reseeder.calls)
	}
	if p.classAsks != 1 {
		t.Fatalf("expected one class-change prompt, got %d", p.classAsks)
	}
	if h.balance(t, "r1") != 50000 {
		t.Fatalf("balance changed: %d", h.balance(t, "r1"))
	}
	if len(h.fleet.reserved) != 0 {
		t.Fatalf("nothing should be reserved")
	}
	h.sink.assertLegal(t)
}

func TestRun_ClassChangeRequotes(t *testing.T) {
	g := citygraph.NewDefault()
	h := newHarness(t, g, []fleet.Vehicle{saketBike()})
	h.addRider(t, "r1", account.PaymentCash, 0)
	p := &scriptPrompter{confirm: true, classChoice: fleet.ClassTwoWheeler, classOK: true}

	out := h.svc.Run(context.Background(), Request{RiderID: "r1", Source: "Saket", Destination: "INA", Class: fleet.ClassVan}, p)
	if out.State != StateCompleted {
		t.Fatalf("expected completed, got %s (%v)", out.State, out.Err)
	}
	if out.Quote.Class != fleet.ClassTwoWheeler || out.Quote.Fare.Amount != 7540 {
		t.Fatalf("expected re-quote for 2-wheeler, got %+v", out.Quote)
	}
	states := h.sink.states()
	if states[1] != StateMatching || states[2] != StateQuoting || states[3] != StateMatching {
		t.Fatalf("expected matching -> quoting -> matching, got %v", states)
	}
	h.sink.assertLegal(t)
}

func TestRun_DeclineCancelsWithoutSideEffects(t *testing.T) {
	g := citygraph.NewDefault()
	h := newHarness(t, g, []fleet.Vehicle{saketBike()})
	h.addRider(t, "r1", account.PaymentWallet, 10000)

	out := h.svc.Run(context.Background(), Request{RiderID: "r1", Source: "Saket", Destination: "INA", Class: fleet.ClassTwoWheeler}, &scriptPrompter{confirm: false})
	if out.State != StateCancelled || !errors.Is(out.Err, ErrDeclined) {
		t.Fatalf("expected cancelled by rider, got %s (%v)", out.State, out.Err)
	}
	if len(h.fleet.reserved) != 0 || h.balance(t, "r1") != 10000 {
		t.Fatalf("decline must not reserve or charge")
	}
}

func TestRun_ConfirmationTimeoutCancels(t *testing.T) {
	g := citygraph.NewDefault()
	h := newHarness(t, g, []fleet.Vehicle{saketBike()}, func(_ *Deps, c *Config) {
		c.ConfirmTimeout = 20 * time.Millisecond
	})
	h.addRider(t, "r1", account.PaymentCash, 0)

	out := h.svc.Run(context.Background(), Request{RiderID: "r1", Source: "Saket", Destination: "INA", Class: fleet.ClassTwoWheeler}, &scriptPrompter{blockOnAsk: true})
	if out.State != StateCancelled || !errors.Is(out.Err, ErrPromptTimeout) {
		t.Fatalf("expected cancelled on timeout, got %s (%v)", out.State, out.Err)
	}
}

func TestRun_VerificationMismatchRefundsExactly(t *testing.T) {
	g := citygraph.NewDefault()
	h := newHarness(t, g, []fleet.Vehicle{saketBike()})
	h.addRider(t, "r1", account.PaymentWallet, 10000)
	p := happyPrompter()
	var balanceDuringVerify int64
	p.beforeVerify = func() { balanceDuringVerify = h.balance(t, "r1") }
	p.code = func(Verification) string { return "0000" }

	out := h.svc.Run(context.Background(), Request{RiderID: "r1", Source: "Saket", Destination: "INA", Class: fleet.ClassTwoWheeler}, p)
	if out.State != StateCancelled || !errors.Is(out.Err, ErrVerificationMismatch) {
		t.Fatalf("expected cancelled on mismatch, got %s (%v)", out.State, out.Err)
	}
	if balanceDuringVerify != 2460 {
		t.Fatalf("expected wallet debited before verification, got %d", balanceDuringVerify)
	}
	if h.balance(t, "r1") != 10000 {
		t.Fatalf("refund was not exact: %d", h.balance(t, "r1"))
	}
	if v, _ := h.fleet.Get(saketBike().ID); !v.Available {
		t.Fatalf("vehicle should be released")
	}
	h.fleet.assertBalanced(t)
	if _, err := h.history.Find(context.Background(), out.BookingID); !errors.Is(err, history.ErrNotFound) {
		t.Fatalf("cancelled booking must not be recorded")
	}
}

func TestRun_ShortWalletFallsBackToCash(t *testing.T) {
	g := citygraph.NewDefault()
	h := newHarness(t, g, []fleet.Vehicle{saketBike()})
	h.addRider(t, "r1", account.PaymentWallet, 100)

	out := h.svc.Run(context.Background(), Request{RiderID: "r1", Source: "Saket", Destination: "INA", Class: fleet.ClassTwoWheeler}, happyPrompter())
	if out.State != StateCompleted || out.Payment != PaymentCashFallback {
		t.Fatalf("expected completed with cash fallback, got %s %s (%v)", out.State, out.Payment, out.Err)
	}
	if h.balance(t, "r1") != 100 {
		t.Fatalf("cash fallback must not touch the wallet: %d", h.balance(t, "r1"))
	}
}

type brokenWallet struct {
	*account.MemoryStore
}

func (brokenWallet) AdjustBalance(context.Context, types.ID, int64) (types.Money, error) {
	return types.Money{}, errors.New("ledger offline")
}

func TestRun_PaymentErrorFailsAndReleases(t *testing.T) {
	g := citygraph.NewDefault()
	h := newHarness(t, g, []fleet.Vehicle{saketBike()}, func(d *Deps, _ *Config) {
		d.Accounts = brokenWallet{MemoryStore: d.Accounts.(*account.MemoryStore)}
	})
	h.addRider(t, "r1", account.PaymentWallet, 10000)

	out := h.svc.Run(context.Background(), Request{RiderID: "r1", Source: "Saket", Destination: "INA", Class: fleet.ClassTwoWheeler}, happyPrompter())
	if out.State != StateFailed || !errors.Is(out.Err, ErrPaymentDeclined) {
		t.Fatalf("expected failed with ErrPaymentDeclined, got %s (%v)", out.State, out.Err)
	}
	if v, _ := h.fleet.Get(saketBike().ID); !v.Available {
		t.Fatalf("vehicle should be released")
	}
	h.fleet.assertBalanced(t)
}

func TestRun_ReservationConflictRematchesOnce(t *testing.T) {
	g := citygraph.NewDefault()
	second := fleet.Vehicle{ID: "9000000002", Name: "Sunil", Location: "RK Puram", Class: fleet.ClassTwoWheeler}
	h := newHarness(t, g, []fleet.Vehicle{saketBike(), second})
	h.addRider(t, "r1", account.PaymentCash, 0)

	p := happyPrompter()
	p.beforeConfirm = func() { h.fleet.Index.Reserve(saketBike().ID) }

	out := h.svc.Run(context.Background(), Request{RiderID: "r1", Source: "Saket", Destination: "INA", Class: fleet.ClassTwoWheeler}, p)
	if out.State != StateCompleted || out.Vehicle.ID != second.ID {
		t.Fatalf("expected completion with the second vehicle, got %s %+v (%v)", out.State, out.Vehicle, out.Err)
	}
	if out.ETAMinutes != 14 {
		t.Fatalf("expected ETA of the rematched vehicle, got %d", out.ETAMinutes)
	}
	h.sink.assertLegal(t)
}

func TestRun_ReservationConflictWithoutAlternativeFails(t *testing.T) {
	g := citygraph.NewDefault()
	h := newHarness(t, g, []fleet.Vehicle{saketBike()})
	h.addRider(t, "r1", account.PaymentWallet, 10000)

	p := happyPrompter()
	p.beforeConfirm = func() { h.fleet.Index.Reserve(saketBike().ID) }

	out := h.svc.Run(context.Background(), Request{RiderID: "r1", Source: "Saket", Destination: "INA", Class: fleet.ClassTwoWheeler}, p)
	if out.State != StateFailed {
		t.Fatalf("expected failed, got %s", out.State)
	}
	if !errors.Is(out.Err, ErrNoAvailability) || !errors.Is(out.Err, ErrReservationConflict) {
		t.Fatalf("expected no-availability wrapping reservation conflict, got %v", out.Err)
	}
	if h.balance(t, "r1") != 10000 {
		t.Fatalf("balance changed: %d", h.balance(t, "r1"))
	}
}

func TestRun_InterruptedTransitFailsWithoutRefund(t *testing.T) {
	g := citygraph.NewDefault()
	h := newHarness(t, g, []fleet.Vehicle{saketBike()}, func(_ *Deps, c *Config) {
		c.TransitMinute = time.Hour
	})
	h.addRider(t, "r1", account.PaymentWallet, 10000)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p := happyPrompter()
	p.beforeVerify = func() {
		go func() {
			time.Sleep(20 * time.Millisecond)
			cancel()
		}()
	}

	out := h.svc.Run(ctx, Request{RiderID: "r1", Source: "Saket", Destination: "INA", Class: fleet.ClassTwoWheeler}, p)
	if out.State != StateFailed || !errors.Is(out.Err, ErrInterrupted) || !errors.Is(out.Err, context.Canceled) {
		t.Fatalf("expected interrupted ride, got %s (%v)", out.State, out.Err)
	}
	if h.balance(t, "r1") != 2460 {
		t.Fatalf("interrupted ride must not refund: %d", h.balance(t, "r1"))
	}
	if v, _ := h.fleet.Get(saketBike().ID); !v.Available {
		t.Fatalf("vehicle should be released")
	}
	h.fleet.assertBalanced(t)
	states := h.sink.states()
	if states[len(states)-1] != StateFailed {
		t.Fatalf("terminal event lost after cancellation: %v", states)
	}
}

func TestRun_UnknownRiderFails(t *testing.T) {
	h := newHarness(t, citygraph.NewDefault(), []fleet.Vehicle{saketBike()})
	out := h.svc.Run(context.Background(), Request{RiderID: "ghost", Source: "Saket", Destination: "INA", Class: fleet.ClassTwoWheeler}, happyPrompter())
	if out.State != StateFailed || !errors.Is(out.Err, ErrNotFound) || !errors.Is(out.Err, account.ErrNotFound) {
		t.Fatalf("expected failed not-found, got %s (%v)", out.State, out.Err)
	}
}

func TestRun_NoRouteFails(t *testing.T) {
	g := citygraph.NewDefault()
	g.AddEdge("Dwarka", "Janakpuri", 6)
	h := newHarness(t, g, []fleet.Vehicle{saketBike()})
	h.addRider(t, "r1", account.PaymentCash, 0)

	for _, dst := range []string{"Dwarka", "Atlantis"} {
		out := h.svc.Run(context.Background(), Request{RiderID: "r1", Source: "Saket", Destination: dst, Class: fleet.ClassTwoWheeler}, happyPrompter())
		if out.State != StateFailed || !errors.Is(out.Err, ErrNoRoute) {
			t.Fatalf("%s: expected ErrNoRoute, got %s (%v)", dst, out.State, out.Err)
		}
	}
}

func TestRun_BadRequest(t *testing.T) {
	h := newHarness(t, citygraph.NewDefault(), nil)
	h.addRider(t, "r1", account.PaymentCash, 0)
	bad := []Request{
		{RiderID: "", Source: "Saket", Destination: "INA", Class: fleet.ClassVan},
		{RiderID: "r1", Source: " ", Destination: "INA", Class: fleet.ClassVan},
		{RiderID: "r1", Source: "Saket", Destination: "INA", Class: "rickshaw"},
	}
	for _, req := range bad {
		out := h.svc.Run(context.Background(), req, happyPrompter())
		if out.State != StateFailed || !errors.Is(out.Err, ErrBadRequest) {
			t.Fatalf("%+v: expected bad request, got %s (%v)", req, out.State, out.Err)
		}
	}
}

func TestRun_InvalidRatingThenLaterSubmission(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t, citygraph.NewDefault(), []fleet.Vehicle{saketBike()})
	h.addRider(t, "r1", account.PaymentCash, 0)
	p := happyPrompter()
	p.stars, p.rate = 7, true

	out := h.svc.Run(ctx, Request{RiderID: "r1", Source: "Saket", Destination: "INA", Class: fleet.ClassTwoWheeler}, p)
	if out.State != StateCompleted || !errors.Is(out.RatingErr, ErrInvalidRating) {
		t.Fatalf("expected completed with rejected rating, got %s (%v)", out.State, out.RatingErr)
	}
	rec, err := h.history.Find(ctx, out.BookingID)
	if err != nil || rec.Rated() {
		t.Fatalf("record should exist unrated: %+v %v", rec, err)
	}

	if err := h.svc.SubmitRating(ctx, out.BookingID, 0); !errors.Is(err, ErrInvalidRating) {
		t.Fatalf("expected ErrInvalidRating, got %v", err)
	}
	if err := h.svc.SubmitRating(ctx, out.BookingID, 4); err != nil {
		t.Fatalf("later rating: %v", err)
	}
	if err := h.svc.SubmitRating(ctx, out.BookingID, 5); !errors.Is(err, ErrAlreadyRated) {
		t.Fatalf("expected ErrAlreadyRated, got %v", err)
	}
	if err := h.svc.SubmitRating(ctx, "UB99999", 5); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	sum, _ := h.ratings.Summary(ctx, saketBike().ID)
	if sum.Count != 1 || sum.Sum != 4 {
		t.Fatalf("driver aggregate should count one rating of 4, got %+v", sum)
	}
}

func TestRun_ConcurrentBookingsShareOneVehicle(t *testing.T) {
	h := newHarness(t, citygraph.NewDefault(), []fleet.Vehicle{saketBike()})
	const riders = 8
	for i := 0; i < riders; i++ {
		h.addRider(t, types.ID(string(rune('a'+i))), account.PaymentCash, 0)
	}

	var wg sync.WaitGroup
	outs := make(chan Outcome, riders)
	for i := 0; i < riders; i++ {
		wg.Add(1)
		go func(id types.ID) {
			defer wg.Done()
			outs <- h.svc.Run(context.Background(), Request{RiderID: id, Source: "Saket", Destination: "INA", Class: fleet.ClassTwoWheeler}, happyPrompter())
		}(types.ID(string(rune('a' + i))))
	}
	wg.Wait()
	close(outs)

	completed := 0
	for out := range outs {
		switch out.State {
		case StateCompleted:
			completed++
		case StateFailed:
			if !errors.Is(out.Err, ErrNoAvailability) {
				t.Fatalf("unexpected failure: %v", out.Err)
			}
		default:
			t.Fatalf("unexpected terminal state %s", out.State)
		}
	}
	if completed < 1 {
		t.Fatalf("expected at least one completed booking")
	}
	if v, _ := h.fleet.Get(saketBike().ID); !v.Available {
		t.Fatalf("vehicle must end available")
	}
	h.fleet.assertBalanced(t)
}

func TestQuote(t *testing.T) {
	h := newHarness(t, citygraph.NewDefault(), nil)
	q, err := h.svc.Quote("rk puram", "ina", fleet.ClassVan)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if q.Source != "RK Puram" || q.Destination != "INA" || q.Fare.Amount != 24680 {
		t.Fatalf("unexpected quote: %+v", q)
	}
	if _, err := h.svc.Quote("Saket", "Atlantis", fleet.ClassVan); !errors.Is(err, ErrNoRoute) {
		t.Fatalf("expected ErrNoRoute, got %v", err)
	}
}
