// README: Entry point; loads config, wires services, starts HTTP server and background loops.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"citycab/internal/config"
	httptransport "citycab/internal/http"
	"citycab/internal/http/handlers"
	"citycab/internal/infra"
	"citycab/internal/maps"
	"citycab/internal/modules/account"
	"citycab/internal/modules/booking"
	"citycab/internal/modules/citygraph"
	"citycab/internal/modules/fleet"
	"citycab/internal/modules/history"
	"citycab/internal/modules/pricing"
	"citycab/internal/modules/rating"
)

const reapInterval = time.Minute

// rideStore is the ride history as both the workflow and the API use it.
type rideStore interface {
	booking.History
	handlers.RideLister
	handlers.Counter
}

type stores struct {
	accounts account.Repository
	history  rideStore
	ratings booking.Ratings
	fleet   fleet.Repository
	fares   *pricing.Calculator
	events  booking.Sinks
	closers []func()
}

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("load config", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("citycab-api stopped", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
	st, err := openStores(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer func() {
		for _, c := range st.closers {
			c()
		}
	}()

	graph, err := loadGraph(ctx, cfg, logger)
	if err != nil {
		return err
	}

	fleetSvc := fleet.NewService(fleet.NewIndex(logger), st.fleet, logger)
	if err := fleetSvc.Load(ctx); err != nil {
		return err
	}

	accounts := account.NewService(st.accounts, nil)

	bookingSvc := booking.NewService(booking.Deps{
		Graph:    graph,
		Fleet:    fleetSvc.Index(),
		Reseeder: fleetSvc,
		Fares:    st.fares,
		Accounts: st.accounts,
		History:  st.history,
		Ratings:  st.ratings,
		Events:   st.events,
		Logger:   logger,
	}, booking.Config{
		ConfirmTimeout: cfg.Booking.ConfirmTimeout,
		VerifyTimeout:  cfg.Booking.VerifyTimeout,
		RatingTimeout:  cfg.Booking.RatingTimeout,
		TransitMinute:  cfg.Booking.TransitMinute,
		DisplayCount:   cfg.Booking.DisplayCount,
	})
	sessions := booking.NewManager(ctx, bookingSvc, cfg.Booking.SessionTTL, logger)

	router := httptransport.NewRouter(httptransport.RouterDeps{
		Graph:        graph,
		Fleet:        fleetSvc,
		Accounts:     accounts,
		Rides:        st.history,
		Booking:      bookingSvc,
		Sessions:     sessions,
		Logger:       logger,
		BookingRPS:   cfg.HTTP.RateLimitRPS,
		BookingBurst: cfg.HTTP.RateLimitBurst,
	})
	server := httptransport.NewServer(cfg.HTTP.Addr, router, logger)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return server.Run(gctx) })
	g.Go(func() error {
		fleetSvc.RunSnapshotFlusher(gctx, cfg.FleetFlushInterval)
		return nil
	})
	g.Go(func() error {
		sessions.RunReaper(gctx, reapInterval)
		return nil
	})
	err = g.Wait()
	sessions.Wait()
	return err
}

func openStores(ctx context.Context, cfg config.Config, logger *slog.Logger) (*stores, error) {
	st := &stores{events: booking.Sinks{booking.LogSink{Logger: logger}}}

	if cfg.NATS.URL != "" {
		nc, err := infra.NewNATS(cfg.NATS.URL, logger)
		if err != nil {
			return nil, err
		}
		st.closers = append(st.closers, nc.Close)
		st.events = append(st.events, booking.NewNATSPublisher(nc))
	}

	if cfg.Storage == config.StorageMemory {
		logger.Info("using in-memory storage")
		st.accounts = account.NewMemoryStore()
		st.history = history.NewMemoryStore()
		st.ratings = rating.NewMemoryStore()
		st.fleet = fleet.NewMemoryStore()
		st.fares = pricing.NewCalculator(cfg.Location)
		return st, nil
	}

	db, err := infra.NewDB(ctx, cfg.DB.DSN)
	if err != nil {
		return nil, err
	}
	st.closers = append(st.closers, db.Close)
	if err := infra.Migrate(ctx, db); err != nil {
		return nil, err
	}
	rdb, err := infra.NewRedis(ctx, cfg.Redis.Addr)
	if err != nil {
		return nil, err
	}
	st.closers = append(st.closers, func() { _ = rdb.Close() })

	fares, err := pricing.LoadCalculator(ctx, pricing.NewStore(db), cfg.Location)
	if err != nil {
		return nil, err
	}
	st.accounts = account.NewStore(db)
	st.history = history.NewStore(db)
	st.ratings = rating.NewStore(rdb)
	st.fleet = fleet.NewStore(rdb)
	st.fares = fares
	st.events = append(st.events, booking.NewEventStore(db))
	return st, nil
}

func loadGraph(ctx context.Context, cfg config.Config, logger *slog.Logger) (*citygraph.Graph, error) {
	graph := citygraph.NewDefault()
	if cfg.Graph.EdgesFile != "" {
		f, err := os.Open(cfg.Graph.EdgesFile)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		added, skipped, err := citygraph.LoadEdgesCSV(graph, f)
		if err != nil {
			return nil, err
		}
		logger.Info("loaded road edges", "file", cfg.Graph.EdgesFile, "added", added, "skipped", skipped)
	}
	if cfg.Maps.APIKey != "" {
		geocoder, err := maps.NewGeocoder(cfg.Maps.APIKey, cfg.Maps.Region, ", Delhi")
		if err != nil {
			return nil, err
		}
		n := citygraph.FillCoordinates(ctx, graph, geocoder, logger)
		logger.Info("geocoded locations", "count", n)
	}
	return graph, nil
}
