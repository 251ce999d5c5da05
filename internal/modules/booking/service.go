// README: Booking workflow: quote, match, confirm, reserve, pay, verify, ride, rate.
package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"citycab/internal/clock"
	"citycab/internal/idgen"
	"citycab/internal/modules/account"
	"citycab/internal/modules/fleet"
	"citycab/internal/modules/history"
	"citycab/internal/modules/matching"
	"citycab/internal/types"
)

type Config struct {
	ConfirmTimeout time.Duration
	VerifyTimeout  time.Duration
	RatingTimeout  time.Duration
	// TransitMinute is how long one ETA minute lasts in the simulation.
	TransitMinute time.Duration
	DisplayCount  int
}

func DefaultConfig() Config {
	return Config{
		ConfirmTimeout: 2 * time.Minute,
		VerifyTimeout:  2 * time.Minute,
		RatingTimeout:  time.Minute,
		TransitMinute:  time.Second,
		DisplayCount:   matching.DefaultDisplayCount,
	}
}

type Deps struct {
	Graph    Router
	Fleet    Fleet
	Reseeder Reseeder
	Fares    Fares
	Accounts Accounts
	History  History
	Ratings  Ratings
	IDs      idgen.Generator
	Clock    clock.Clock
	Events   EventSink
	Logger   *slog.Logger
}

type Service struct {
	graph    Router
	fleet    Fleet
	reseeder Reseeder
	fares    Fares
	accounts Accounts
	history  History
	ratings  Ratings
	ids      idgen.Generator
	clock    clock.Clock
	events   EventSink
	logger   *slog.Logger
	tracer   trace.Tracer
	cfg      Config
}

func NewService(d Deps, cfg Config) *Service {
	if d.IDs == nil {
		d.IDs = idgen.NewRandom()
	}
	if d.Clock == nil {
		d.Clock = clock.System{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}
	if cfg.DisplayCount <= 0 {
		cfg.DisplayCount = matching.DefaultDisplayCount
	}
	return &Service{
		graph:    d.Graph,
		fleet:    d.Fleet,
		reseeder: d.Reseeder,
		fares:    d.Fares,
		accounts: d.Accounts,
		history:  d.History,
		ratings:  d.Ratings,
		ids:      d.IDs,
		clock:    d.Clock,
		events:   d.Events,
		logger:   d.Logger,
		tracer:   otel.Tracer("citycab/booking"),
		cfg:      cfg,
	}
}

// Quote routes and prices a trip without touching the fleet.
func (s *Service) Quote(source, destination string, class fleet.Class) (Quote, error) {
	if !class.Valid() {
		return Quote{}, fmt.Errorf("%w: %w", ErrBadRequest, fleet.ErrUnknownClass)
	}
	km, path := s.graph.ShortestPath(source, destination)
	if math.IsInf(km, 1) {
		return Quote{}, fmt.Errorf("%w: %s to %s", ErrNoRoute, source, destination)
	}
	fare, err := s.fares.Quote(km, class, s.clock.Now())
	if err != nil {
		return Quote{}, err
	}
	return Quote{
		Source:      s.graph.DisplayName(source),
		Destination: s.graph.DisplayName(destination),
		Class:       class,
		DistanceKm:  km,
		Path:        path,
		Fare:        fare,
	}, nil
}

// run carries one workflow's mutable state.
type run struct {
	s        *Service
	prompter Prompter
	observer Observer
	req      Request
	out      Outcome
	rider    *account.Account

	held    types.ID // reserved vehicle not yet released
	debited int64    // wallet amount taken for this booking
}

// Run drives one booking to a terminal state. Every vehicle it reserves is
// released exactly once before Run returns.
func (s *Service) Run(ctx context.Context, req Request, p Prompter) Outcome {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	ctx, span := s.tracer.Start(ctx, "booking.Run", trace.WithAttributes(
		attribute.String("request_id", req.RequestID),
		attribute.String("rider_id", string(req.RiderID)),
		attribute.String("class", string(req.Class)),
	))
	defer span.End()

	r := &run{
		s:        s,
		prompter: p,
		req:      req,
		out:      Outcome{RequestID: req.RequestID, StartedAt: s.clock.Now()},
	}
	if o, ok := p.(Observer); ok {
		r.observer = o
	}
	r.moveTo(ctx, StateQuoting, "requested")

	out := r.execute(ctx)
	out.EndedAt = s.clock.Now()

	span.SetAttributes(attribute.String("state", string(out.State)))
	if out.BookingID != "" {
		span.SetAttributes(attribute.String("booking_id", out.BookingID))
	}
	if out.Err != nil && out.State == StateFailed {
		span.RecordError(out.Err)
		span.SetStatus(codes.Error, out.Err.Error())
	}
	return out
}

func (r *run) execute(ctx context.Context) Outcome {
	s := r.s
	req := r.req

	if req.RiderID == "" || strings.TrimSpace(req.Source) == "" || strings.TrimSpace(req.Destination) == "" {
		return r.fail(ctx, ErrBadRequest)
	}
	if !req.Class.Valid() {
		return r.fail(ctx, fmt.Errorf("%w: %w", ErrBadRequest, fleet.ErrUnknownClass))
	}

	// quoting
	rider, err := s.accounts.Get(ctx, req.RiderID)
	if errors.Is(err, account.ErrNotFound) {
		return r.fail(ctx, fmt.Errorf("rider %s: %w: %w", req.RiderID, ErrNotFound, err))
	}
	if err != nil {
		return r.fail(ctx, fmt.Errorf("load rider: %w", err))
	}
	r.rider = rider
	if err := r.quote(req.Class); err != nil {
		return r.fail(ctx, err)
	}

	// matching
	r.moveTo(ctx, StateMatching, "")
	cands, err := r.matchWithFallbacks(ctx)
	if err != nil {
		return r.fail(ctx, err)
	}
	if len(cands) == 0 {
		return r.fail(ctx, ErrNoAvailability)
	}

	// awaiting confirmation
	r.moveTo(ctx, StateAwaitingConfirmation, "")
	top := matching.Top(cands, s.cfg.DisplayCount)
	ok, err := r.confirm(ctx, top)
	if err != nil {
		return r.cancel(ctx, err)
	}
	if !ok {
		return r.cancel(ctx, ErrDeclined)
	}

	// reserved
	chosen := cands[0]
	if !s.fleet.Reserve(chosen.Vehicle.ID) {
		s.logger.Info("reservation conflict, rematching",
			"request_id", req.RequestID, "vehicle_id", chosen.Vehicle.ID)
		r.moveTo(ctx, StateMatching, "reservation conflict on "+string(chosen.Vehicle.ID))
		again := r.match()
		if len(again) == 0 || !s.fleet.Reserve(again[0].Vehicle.ID) {
			return r.fail(ctx, fmt.Errorf("%w: %w", ErrNoAvailability, ErrReservationConflict))
		}
		chosen = again[0]
	}
	r.held = chosen.Vehicle.ID
	v := chosen.Vehicle
	v.Available = false
	r.out.Vehicle = &v
	r.out.ETAMinutes = chosen.ETAMinutes
	r.moveTo(ctx, StateReserved, string(v.ID))

	// awaiting payment
	r.moveTo(ctx, StateAwaitingPayment, "")
	if err := r.pay(ctx); err != nil {
		return r.fail(ctx, err)
	}

	// awaiting verification
	r.out.BookingID = s.ids.NextBookingID()
	r.moveTo(ctx, StateAwaitingVerification, "")
	if err := r.verify(ctx); err != nil {
		refundErr := r.refund(ctx)
		return r.cancel(ctx, errors.Join(err, refundErr))
	}

	// in transit
	r.moveTo(ctx, StateInTransit, fmt.Sprintf("eta %d min", r.out.ETAMinutes))
	if err := r.ride(ctx); err != nil {
		return r.fail(ctx, err)
	}

	// completed
	r.release()
	r.record(ctx)
	r.moveTo(ctx, StateCompleted, "")
	r.askRating(ctx)
	return r.out
}

func (r *run) quote(class fleet.Class) error {
	q, err := r.s.Quote(r.req.Source, r.req.Destination, class)
	if err != nil {
		return err
	}
	r.out.Quote = &q
	return nil
}

func (r *run) match() []matching.Candidate {
	return matching.FindCandidates(r.req.Source, r.out.Quote.Class, r.s.fleet, r.s.graph)
}

// matchWithFallbacks tries the requested class, then one reseed, then one
// class change offered to the rider.
func (r *run) matchWithFallbacks(ctx context.Context) ([]matching.Candidate, error) {
	s := r.s
	cands := r.match()
	if len(cands) > 0 {
		return cands, nil
	}

	if s.reseeder != nil {
		added, err := s.reseeder.Reseed(ctx)
		if err != nil {
			s.logger.Warn("reseed failed", "request_id", r.req.RequestID, "err", err)
		} else {
			s.logger.Info("fleet reseeded for booking", "request_id", r.req.RequestID, "added", added)
		}
		if cands = r.match(); len(cands) > 0 {
			return cands, nil
		}
	}

	pctx, cancel := context.WithTimeout(ctx, s.cfg.ConfirmTimeout)
	next, ok, err := r.prompter.ChooseClass(pctx, r.out.Quote.Class)
	cancel()
	if err != nil || !ok {
		if err != nil {
			s.logger.Info("class change not answered", "request_id", r.req.RequestID, "err", err)
		}
		return nil, nil
	}
	if !next.Valid() {
		return nil, fmt.Errorf("%w: %w", ErrBadRequest, fleet.ErrUnknownClass)
	}

	r.moveTo(ctx, StateQuoting, "class change to "+string(next))
	if err := r.quote(next); err != nil {
		return nil, err
	}
	r.moveTo(ctx, StateMatching, "")
	return r.match(), nil
}

func (r *run) confirm(ctx context.Context, top []matching.Candidate) (bool, error) {
	s := r.s
	offer := Offer{Quote: *r.out.Quote, Candidates: make([]RankedOffer, 0, len(top))}
	for _, c := range top {
		avg := 0.0
		if s.ratings != nil {
			a, err := s.ratings.AverageRating(ctx, c.Vehicle.ID)
			if err != nil {
				s.logger.Warn("average rating", "vehicle_id", c.Vehicle.ID, "err", err)
			}
			avg = a
		}
		offer.Candidates = append(offer.Candidates, RankedOffer{Candidate: c, AverageRating: avg})
	}

	pctx, cancel := context.WithTimeout(ctx, s.cfg.ConfirmTimeout)
	defer cancel()
	ok, err := r.prompter.ConfirmBooking(pctx, offer)
	if err != nil {
		return false, promptErr(err)
	}
	return ok, nil
}

func (r *run) pay(ctx context.Context) error {
	s := r.s
	fare := r.out.Quote.Fare
	if r.rider.PaymentMethod != account.PaymentWallet {
		r.out.Payment = PaymentCash
		return nil
	}
	_, err := s.accounts.AdjustBalance(ctx, r.rider.ID, -fare.Amount)
	switch {
	case err == nil:
		r.debited = fare.Amount
		r.out.Payment = PaymentWallet
		return nil
	case errors.Is(err, account.ErrInsufficientFunds):
		s.logger.Info("wallet short, falling back to cash",
			"request_id", r.req.RequestID, "rider_id", r.rider.ID, "fare", fare.String())
		r.out.Payment = PaymentCashFallback
		return nil
	default:
		return fmt.Errorf("%w: %w", ErrPaymentDeclined, err)
	}
}

func (r *run) verify(ctx context.Context) error {
	s := r.s
	code := s.ids.NextCode()
	pctx, cancel := context.WithTimeout(ctx, s.cfg.VerifyTimeout)
	defer cancel()

	got, err := r.prompter.VerifyCode(pctx, Verification{
		BookingID: r.out.BookingID,
		Code:      code,
		Vehicle:   *r.out.Vehicle,
	})
	if err != nil {
		return fmt.Errorf("%w: %w", ErrVerificationMismatch, promptErr(err))
	}
	if strings.TrimSpace(got) != code {
		return ErrVerificationMismatch
	}
	return nil
}

// refund returns exactly what pay debited. It is the only refund path.
func (r *run) refund(ctx context.Context) error {
	if r.debited == 0 {
		return nil
	}
	amount := r.debited
	if _, err := r.s.accounts.AdjustBalance(context.WithoutCancel(ctx), r.rider.ID, amount); err != nil {
		r.s.logger.Error("refund failed", "request_id", r.req.RequestID, "rider_id", r.rider.ID, "amount", amount, "err", err)
		return fmt.Errorf("refund: %w", err)
	}
	r.debited = 0
	return nil
}

func (r *run) ride(ctx context.Context) error {
	wait := time.Duration(r.out.ETAMinutes) * r.s.cfg.TransitMinute
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrInterrupted, ctx.Err())
	case <-timer.C:
		return nil
	}
}

func (r *run) record(ctx context.Context) {
	s := r.s
	q := r.out.Quote
	rec := history.Record{
		BookingID:   r.out.BookingID,
		RiderID:     r.rider.ID,
		RiderName:   r.rider.Name,
		Source:      q.Source,
		Destination: q.Destination,
		Class:       q.Class,
		Fare:        q.Fare,
		Payment:     r.out.Payment,
		VehicleID:   r.out.Vehicle.ID,
		DriverName:  r.out.Vehicle.Name,
		DistanceKm:  q.DistanceKm,
		BookedAt:    s.clock.Now(),
	}
	if err := s.history.Append(context.WithoutCancel(ctx), rec); err != nil {
		s.logger.Error("append ride history", "booking_id", rec.BookingID, "err", err)
	}
}

func (r *run) askRating(ctx context.Context) {
	s := r.s
	pctx, cancel := context.WithTimeout(ctx, s.cfg.RatingTimeout)
	stars, ok, err := r.prompter.RequestRating(pctx, RatingPrompt{BookingID: r.out.BookingID, Vehicle: *r.out.Vehicle})
	cancel()
	if err != nil || !ok {
		return
	}
	if err := s.SubmitRating(ctx, r.out.BookingID, stars); err != nil {
		s.logger.Warn("rating rejected", "booking_id", r.out.BookingID, "stars", stars, "err", err)
		r.out.RatingErr = err
		return
	}
	r.out.Rating = stars
}

func (r *run) release() {
	if r.held == "" {
		return
	}
	r.s.fleet.Release(r.held)
	r.held = ""
	if r.out.Vehicle != nil {
		r.out.Vehicle.Available = true
	}
}

func (r *run) fail(ctx context.Context, err error) Outcome {
	return r.finish(ctx, StateFailed, err)
}

func (r *run) cancel(ctx context.Context, err error) Outcome {
	return r.finish(ctx, StateCancelled, err)
}

func (r *run) finish(ctx context.Context, to State, err error) Outcome {
	r.release()
	r.out.Err = err
	detail := ""
	if err != nil {
		detail = err.Error()
	}
	r.moveTo(ctx, to, detail)
	return r.out
}

// moveTo records a transition. Events are delivered with a context that
// survives cancellation so terminal states are never lost.
func (r *run) moveTo(ctx context.Context, to State, detail string) {
	from := r.out.State
	if from != "" && !CanTransition(from, to) {
		r.s.logger.Error("illegal booking transition",
			"request_id", r.req.RequestID, "from", from, "state", to, "err", ErrInvalidState)
	}
	r.out.State = to
	ev := Event{
		RequestID: r.req.RequestID,
		BookingID: r.out.BookingID,
		RiderID:   r.req.RiderID,
		From:      from,
		To:        to,
		Detail:    detail,
		At:        r.s.clock.Now(),
	}
	if r.observer != nil {
		r.observer.Observe(ev)
	}
	if r.s.events != nil {
		if err := r.s.events.Publish(context.WithoutCancel(ctx), ev); err != nil {
			r.s.logger.Warn("publish booking event", "request_id", ev.RequestID, "state", to, "err", err)
		}
	}
}

func promptErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %w", ErrPromptTimeout, err)
	}
	return err
}
