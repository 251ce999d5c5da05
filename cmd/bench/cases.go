// README: Benchmark cases; concurrent in-process bookings plus HTTP, DB and Redis checks.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"citycab/internal/infra"
	"citycab/internal/modules/account"
	"citycab/internal/modules/booking"
	"citycab/internal/modules/citygraph"
	"citycab/internal/modules/fleet"
	"citycab/internal/modules/history"
	"citycab/internal/modules/pricing"
	"citycab/internal/modules/rating"
	"citycab/internal/types"
)

const (
	statusPass = "PASS"
	statusFail = "FAIL"
	statusSkip = "SKIP"
)

type Runner struct {
	cfg   Config
	httpc *http.Client
	db    *pgxpool.Pool
	redis *redis.Client
}

type Result struct {
	Status  string
	Latency time.Duration
	Note    string
}

type TestCase struct {
	Name string
	Run  func(ctx context.Context, r *Runner) Result
}

func NewRunner(cfg Config) *Runner {
	return &Runner{
		cfg:   cfg,
		httpc: &http.Client{Timeout: 10 * time.Second},
	}
}

func (r *Runner) RunAll(ctx context.Context) []Result {
	if r.cfg.DSN != "" {
		if db, err := infra.NewDB(ctx, r.cfg.DSN); err == nil {
			r.db = db
		}
	}
	if r.cfg.RedisAddr != "" {
		if rdb, err := infra.NewRedis(ctx, r.cfg.RedisAddr); err == nil {
			r.redis = rdb
		}
	}

	tests := r.cases()
	results := make([]Result, 0, len(tests))
	for _, tc := range tests {
		res := tc.Run(ctx, r)
		results = append(results, res)
		fmt.Printf("%-5s %s", res.Status, tc.Name)
		if res.Latency > 0 {
			fmt.Printf(" (%s)", res.Latency)
		}
		if res.Note != "" {
			fmt.Printf(" - %s", res.Note)
		}
		fmt.Println()
	}

	if r.db != nil {
		r.db.Close()
	}
	if r.redis != nil {
		_ = r.redis.Close()
	}
	return results
}

func (r *Runner) cases() []TestCase {
	base := r.cfg.BaseURL
	return []TestCase{
		{Name: "Workflow: concurrent bookings release every vehicle", Run: concurrentBookings},
		{Name: "Workflow: more riders than vehicles", Run: contendedBookings},
		{
			Name: "Env: Postgres migrate",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.db == nil {
					return Result{Status: statusSkip, Note: "dsn not configured"}
				}
				start := time.Now()
				if err := infra.Migrate(ctx, r.db); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass, Latency: time.Since(start)}
			},
		},
		{
			Name: "Env: Redis ping",
			Run: func(ctx context.Context, r *Runner) Result {
				if r.redis == nil {
					return Result{Status: statusSkip, Note: "redis not configured"}
				}
				ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
				defer cancel()
				if err := r.redis.Ping(ctx).Err(); err != nil {
					return Result{Status: statusFail, Note: err.Error()}
				}
				return Result{Status: statusPass}
			},
		},
		httpCase("API: health", http.MethodGet, base+"/health", nil, http.StatusOK),
		httpCase("API: locations", http.MethodGet, base+"/api/locations", nil, http.StatusOK),
		httpCase("API: quote", http.MethodGet, base+"/api/quote?source=Saket&destination=Connaught%20Place&class=4-seater", nil, http.StatusOK),
		httpCase("API: quote without route", http.MethodGet, base+"/api/quote?source=Saket&destination=Nowhere", nil, http.StatusUnprocessableEntity),
		httpCase("API: booking missing fields", http.MethodPost, base+"/api/bookings", map[string]any{}, http.StatusBadRequest),
		httpCase("API: booking session unknown", http.MethodGet, base+"/api/bookings/does-not-exist", nil, http.StatusNotFound),
		{
			Name: "Perf: quote throughput",
			Run: func(ctx context.Context, r *Runner) Result {
				if base == "" {
					return Result{Status: statusSkip, Note: "base-url not configured"}
				}
				return perfLoad(ctx, r, base+"/api/quote?source=Saket&destination=INA&class=2-wheeler")
			},
		},
	}
}

// autoRider confirms, reads the code back and skips rating.
type autoRider struct{}

func (autoRider) ConfirmBooking(context.Context, booking.Offer) (bool, error) { return true, nil }
func (autoRider) ChooseClass(context.Context, fleet.Class) (fleet.Class, bool, error) {
	return "", false, nil
}
func (autoRider) VerifyCode(_ context.Context, v booking.Verification) (string, error) {
	return v.Code, nil
}
func (autoRider) RequestRating(context.Context, booking.RatingPrompt) (int, bool, error) {
	return 0, false, nil
}

type inProcess struct {
	svc   *booking.Service
	fleet *fleet.Index
	rides *history.MemoryStore
}

func newInProcess(ctx context.Context, riders int, vehicles []fleet.Vehicle) (*inProcess, error) {
	idx := fleet.NewIndex(nil)
	for _, v := range vehicles {
		if err := idx.Register(v); err != nil {
			return nil, err
		}
	}
	accounts := account.NewMemoryStore()
	for i := 0; i < riders; i++ {
		a := &account.Account{
			ID:            types.ID(fmt.Sprintf("rider-%d", i)),
			Name:          fmt.Sprintf("Rider %d", i),
			Balance:       types.Rupees(1000),
			PaymentMethod: account.PaymentWallet,
		}
		if err := accounts.Create(ctx, a); err != nil {
			return nil, err
		}
	}
	rides := history.NewMemoryStore()
	svc := booking.NewService(booking.Deps{
		Graph:    citygraph.NewDefault(),
		Fleet:    idx,
		Fares:    pricing.NewCalculator(time.UTC),
		Accounts: accounts,
		History:  rides,
		Ratings:  rating.NewMemoryStore(),
	}, booking.Config{
		ConfirmTimeout: time.Second,
		VerifyTimeout:  time.Second,
		RatingTimeout:  time.Second,
		TransitMinute:  time.Millisecond,
	})
	return &inProcess{svc: svc, fleet: idx, rides: rides}, nil
}

func (p *inProcess) book(ctx context.Context, riders int) map[booking.State]int {
	var mu sync.Mutex
	counts := make(map[booking.State]int)
	var wg sync.WaitGroup
	for i := 0; i < riders; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			out := p.svc.Run(ctx, booking.Request{
				RequestID:   fmt.Sprintf("bench-%d", i),
				RiderID:     types.ID(fmt.Sprintf("rider-%d", i)),
				Source:      "Saket",
				Destination: "Connaught Place",
				Class:       fleet.ClassSedan,
			}, autoRider{})
			mu.Lock()
			counts[out.State]++
			mu.Unlock()
		}(i)
	}
	wg.Wait()
	return counts
}

func (p *inProcess) allAvailable() bool {
	for _, v := range p.fleet.Snapshot() {
		if !v.Available {
			return false
		}
	}
	return true
}

func sedans(n int) []fleet.Vehicle {
	out := make([]fleet.Vehicle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, fleet.Vehicle{
			ID:        types.ID(fmt.Sprintf("98%08d", i)),
			Name:      fmt.Sprintf("Driver %d", i),
			Location:  "Saket",
			Class:     fleet.ClassSedan,
			Available: true,
		})
	}
	return out
}

func concurrentBookings(ctx context.Context, r *Runner) Result {
	return bookingRun(ctx, r.cfg.Concurrency, r.cfg.Concurrency)
}

func contendedBookings(ctx context.Context, r *Runner) Result {
	vehicles := r.cfg.Concurrency / 2
	if vehicles < 1 {
		vehicles = 1
	}
	return bookingRun(ctx, r.cfg.Concurrency, vehicles)
}

// bookingRun races riders over the given number of vehicles. Every booking
// must end in a terminal state, at least one must complete, every vehicle
// must be released and history must hold exactly the completed rides.
func bookingRun(ctx context.Context, riders, vehicles int) Result {
	p, err := newInProcess(ctx, riders, sedans(vehicles))
	if err != nil {
		return Result{Status: statusFail, Note: err.Error()}
	}
	start := time.Now()
	counts := p.book(ctx, riders)
	latency := time.Since(start)

	total := 0
	for state, c := range counts {
		if !state.Terminal() {
			return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("non-terminal outcome %s", state)}
		}
		total += c
	}
	completed := counts[booking.StateCompleted]
	if total != riders || completed == 0 {
		return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("outcomes=%v", counts)}
	}
	if !p.allAvailable() {
		return Result{Status: statusFail, Latency: latency, Note: "vehicle left reserved"}
	}
	recorded, _ := p.rides.Count(ctx)
	if recorded != completed {
		return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("history=%d completed=%d", recorded, completed)}
	}
	return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("outcomes=%v", counts)}
}

func httpCase(name, method, url string, body any, want int) TestCase {
	return TestCase{
		Name: name,
		Run: func(ctx context.Context, r *Runner) Result {
			if r.cfg.BaseURL == "" {
				return Result{Status: statusSkip, Note: "base-url not configured"}
			}
			var reader io.Reader
			if body != nil {
				b, _ := json.Marshal(body)
				reader = strings.NewReader(string(b))
			}
			req, _ := http.NewRequestWithContext(ctx, method, url, reader)
			req.Header.Set("Content-Type", "application/json")
			start := time.Now()
			resp, err := r.httpc.Do(req)
			if err != nil {
				return Result{Status: statusFail, Note: err.Error()}
			}
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			latency := time.Since(start)

			if resp.StatusCode == want {
				return Result{Status: statusPass, Latency: latency, Note: fmt.Sprintf("status=%d", resp.StatusCode)}
			}
			return Result{Status: statusFail, Latency: latency, Note: fmt.Sprintf("status=%d want=%d", resp.StatusCode, want)}
		},
	}
}

func perfLoad(ctx context.Context, r *Runner, url string) Result {
	end := time.Now().Add(r.cfg.Duration)
	var count, errCount int64
	var mu sync.Mutex
	wg := sync.WaitGroup{}

	for i := 0; i < r.cfg.Concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for time.Now().Before(end) && ctx.Err() == nil {
				req, _ := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
				resp, err := r.httpc.Do(req)
				mu.Lock()
				if err != nil {
					errCount++
					mu.Unlock()
					continue
				}
				count++
				mu.Unlock()
				_, _ = io.Copy(io.Discard, resp.Body)
				resp.Body.Close()
			}
		}()
	}
	wg.Wait()

	if count == 0 {
		return Result{Status: statusFail, Note: "no requests completed"}
	}
	rps := float64(count) / r.cfg.Duration.Seconds()
	return Result{Status: statusPass, Note: fmt.Sprintf("rps=%.1f errors=%d", rps, errCount)}
}
