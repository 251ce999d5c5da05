// README: Scripted demo; books one ride end to end against in-memory stores.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"citycab/internal/modules/account"
	"citycab/internal/modules/booking"
	"citycab/internal/modules/citygraph"
	"citycab/internal/modules/fleet"
	"citycab/internal/modules/history"
	"citycab/internal/modules/pricing"
	"citycab/internal/modules/rating"
	"citycab/internal/types"
)

// scripted accepts the first offer, reads the code back correctly and
// rates the driver with a fixed score.
type scripted struct {
	stars int
}

func (s scripted) ConfirmBooking(_ context.Context, offer booking.Offer) (bool, error) {
	q := offer.Quote
	fmt.Printf("Route %s -> %s: %.1f km via %v\n", q.Source, q.Destination, q.DistanceKm, q.Path)
	fmt.Printf("Fare (%s): %s\n", q.Class, q.Fare)
	for i, c := range offer.Candidates {
		fmt.Printf("  %d. %s at %s, %d min away, rating %.1f\n",
			i+1, c.Vehicle.Name, c.Vehicle.Location, c.ETAMinutes, c.AverageRating)
	}
	return true, nil
}

func (s scripted) ChooseClass(_ context.Context, current fleet.Class) (fleet.Class, bool, error) {
	fmt.Printf("No %s available, switching class\n", current)
	for _, c := range fleet.Classes {
		if c != current {
			return c, true, nil
		}
	}
	return "", false, nil
}

func (s scripted) VerifyCode(_ context.Context, v booking.Verification) (string, error) {
	fmt.Printf("Booking %s: share code %s with %s (%s)\n", v.BookingID, v.Code, v.Vehicle.Name, v.Vehicle.ID)
	return v.Code, nil
}

func (s scripted) RequestRating(_ context.Context, p booking.RatingPrompt) (int, bool, error) {
	fmt.Printf("Rating %s: %d stars\n", p.Vehicle.Name, s.stars)
	return s.stars, true, nil
}

func main() {
	from := flag.String("from", "Saket", "pickup location")
	to := flag.String("to", "Connaught Place", "drop location")
	class := flag.String("class", "4-seater", "vehicle class")
	wallet := flag.Float64("wallet", 500, "starting wallet balance in rupees")
	stars := flag.Int("stars", 5, "rating to give the driver")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	k, err := fleet.ParseClass(*class)
	if err != nil {
		logger.Error("parse class", "class", *class, "err", err)
		os.Exit(1)
	}

	fleetSvc := fleet.NewService(fleet.NewIndex(logger), fleet.NewMemoryStore(), logger)
	if err := fleetSvc.Load(ctx); err != nil {
		logger.Error("load fleet", "err", err)
		os.Exit(1)
	}
	accountStore := account.NewMemoryStore()
	accounts := account.NewService(accountStore, nil)
	rider, err := accounts.Register(ctx, account.RegisterCommand{
		ID:             "demo-rider",
		Name:           "Demo Rider",
		PaymentMethod:  account.PaymentWallet,
		InitialBalance: types.Rupees(*wallet).Amount,
	})
	if err != nil {
		logger.Error("register rider", "err", err)
		os.Exit(1)
	}

	loc, err := time.LoadLocation(pricing.DefaultTimezone)
	if err != nil {
		loc = time.UTC
	}

	svc := booking.NewService(booking.Deps{
		Graph:    citygraph.NewDefault(),
		Fleet:    fleetSvc.Index(),
		Reseeder: fleetSvc,
		Fares:    pricing.NewCalculator(loc),
		Accounts: accountStore,
		History:  history.NewMemoryStore(),
		Ratings:  rating.NewMemoryStore(),
		Logger:   logger,
	}, booking.Config{
		ConfirmTimeout: time.Second,
		VerifyTimeout:  time.Second,
		RatingTimeout:  time.Second,
		TransitMinute:  50 * time.Millisecond,
	})

	out := svc.Run(ctx, booking.Request{
		RiderID:     rider.ID,
		Source:      *from,
		Destination: *to,
		Class:       k,
	}, scripted{stars: *stars})

	fmt.Printf("Outcome: %s", out.State)
	if out.Err != nil {
		fmt.Printf(" (%v)", out.Err)
	}
	fmt.Println()
	if out.State != booking.StateCompleted {
		os.Exit(1)
	}
	after, err := accounts.Get(ctx, rider.ID)
	if err == nil {
		fmt.Printf("Paid by %s, wallet now %s\n", out.Payment, after.Balance)
	}
}
