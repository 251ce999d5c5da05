// README: Session manager running each booking workflow behind a channel-backed prompter.
package booking

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"citycab/internal/modules/fleet"
)

var (
	ErrSessionNotFound = errors.New("booking session not found")
	ErrNoPrompt        = errors.New("session is not waiting for that answer")
	ErrSessionClosed   = errors.New("booking session finished")
)

type PromptKind string

const (
	PromptNone    PromptKind = ""
	PromptConfirm PromptKind = "confirm"
	PromptClass   PromptKind = "class"
	PromptVerify  PromptKind = "verify"
	PromptRating  PromptKind = "rating"
)

// View is a point-in-time copy of a session for display.
type View struct {
	SessionID    string        `json:"session_id"`
	State        State         `json:"state"`
	Prompt       PromptKind    `json:"prompt,omitempty"`
	Offer        *Offer        `json:"offer,omitempty"`
	CurrentClass fleet.Class   `json:"current_class,omitempty"`
	Verification *Verification `json:"verification,omitempty"`
	Rating       *RatingPrompt `json:"rating,omitempty"`
	Events       []Event       `json:"events"`
	Done         bool          `json:"done"`
	Outcome      *Outcome      `json:"outcome,omitempty"`
	Error        string        `json:"error,omitempty"`
}

type answer struct {
	kind  PromptKind
	ok    bool
	class fleet.Class
	code  string
	stars int
}

// Session is a Prompter whose questions are answered through Confirm,
// SelectClass, SubmitCode and SubmitRating.
type Session struct {
	id      string
	answers chan answer
	done    chan struct{}

	mu         sync.Mutex
	view       View
	finishedAt time.Time
}

func newSession(id string) *Session {
	return &Session{
		id:      id,
		answers: make(chan answer, 1),
		done:    make(chan struct{}),
		view:    View{SessionID: id},
	}
}

func (s *Session) ID() string { return s.id }

// Done is closed once the workflow reaches a terminal state and the
// outcome is available.
func (s *Session) Done() <-chan struct{} { return s.done }

func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.view
	v.Events = append([]Event(nil), s.view.Events...)
	return v
}

func (s *Session) Observe(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.view.State = ev.To
	s.view.Events = append(s.view.Events, ev)
}

func (s *Session) ConfirmBooking(ctx context.Context, offer Offer) (bool, error) {
	a, err := s.ask(ctx, PromptConfirm, func(v *View) { v.Offer = &offer })
	if err != nil {
		return false, err
	}
	return a.ok, nil
}

func (s *Session) ChooseClass(ctx context.Context, current fleet.Class) (fleet.Class, bool, error) {
	a, err := s.ask(ctx, PromptClass, func(v *View) { v.CurrentClass = current })
	if err != nil {
		return "", false, err
	}
	return a.class, a.ok, nil
}

func (s *Session) VerifyCode(ctx context.Context, ver Verification) (string, error) {
	a, err := s.ask(ctx, PromptVerify, func(v *View) { v.Verification = &ver })
	if err != nil {
		return "", err
	}
	return a.code, nil
}

func (s *Session) RequestRating(ctx context.Context, p RatingPrompt) (int, bool, error) {
	a, err := s.ask(ctx, PromptRating, func(v *View) { v.Rating = &p })
	if err != nil {
		return 0, false, err
	}
	return a.stars, a.ok, nil
}

// Confirm answers the confirmation prompt.
func (s *Session) Confirm(ok bool) error {
	return s.answer(answer{kind: PromptConfirm, ok: ok})
}

// SelectClass answers the class-change prompt; ok=false keeps the
// original class and lets the booking fail.
func (s *Session) SelectClass(class fleet.Class, ok bool) error {
	return s.answer(answer{kind: PromptClass, class: class, ok: ok})
}

// SubmitCode passes on the code the driver typed.
func (s *Session) SubmitCode(code string) error {
	return s.answer(answer{kind: PromptVerify, code: code})
}

// SubmitRating answers the rating prompt; ok=false skips rating.
func (s *Session) SubmitRating(stars int, ok bool) error {
	return s.answer(answer{kind: PromptRating, stars: stars, ok: ok})
}

func (s *Session) ask(ctx context.Context, kind PromptKind, setup func(*View)) (answer, error) {
	s.mu.Lock()
	for drained := false; !drained; {
		select {
		case <-s.answers:
		default:
			drained = true
		}
	}
	s.view.Prompt = kind
	setup(&s.view)
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		if s.view.Prompt == kind {
			s.view.Prompt = PromptNone
		}
		s.mu.Unlock()
	}()

	for {
		select {
		case <-ctx.Done():
			return answer{}, ctx.Err()
		case a := <-s.answers:
			if a.kind == kind {
				return a, nil
			}
		}
	}
}

func (s *Session) answer(a answer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.view.Done {
		return ErrSessionClosed
	}
	if s.view.Prompt != a.kind {
		return ErrNoPrompt
	}
	select {
	case s.answers <- a:
		s.view.Prompt = PromptNone
		return nil
	default:
		return ErrNoPrompt
	}
}

func (s *Session) finish(out Outcome, at time.Time) {
	s.mu.Lock()
	s.view.Done = true
	s.view.Prompt = PromptNone
	s.view.State = out.State
	s.view.Outcome = &out
	if out.Err != nil {
		s.view.Error = out.Err.Error()
	}
	s.finishedAt = at
	s.mu.Unlock()
	close(s.done)
}

// Outcome blocks until the workflow ends or ctx is done.
func (s *Session) Outcome(ctx context.Context) (Outcome, error) {
	select {
	case <-ctx.Done():
		return Outcome{}, ctx.Err()
	case <-s.done:
		s.mu.Lock()
		defer s.mu.Unlock()
		return *s.view.Outcome, nil
	}
}

// Manager owns the live sessions.
type Manager struct {
	svc    *Service
	ctx    context.Context
	ttl    time.Duration
	logger *slog.Logger

	mu       sync.Mutex
	sessions map[string]*Session
	wg       sync.WaitGroup
}

// NewManager runs workflows under ctx; cancelling it interrupts every
// booking still in flight.
func NewManager(ctx context.Context, svc *Service, ttl time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.Default()
	}
	return &Manager{
		svc:      svc,
		ctx:      ctx,
		ttl:      ttl,
		logger:   logger,
		sessions: make(map[string]*Session),
	}
}

// Start launches a workflow and returns its session immediately.
func (m *Manager) Start(req Request) *Session {
	if req.RequestID == "" {
		req.RequestID = uuid.NewString()
	}
	sess := newSession(req.RequestID)

	m.mu.Lock()
	m.sessions[sess.id] = sess
	m.mu.Unlock()

	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		out := m.svc.Run(m.ctx, req, sess)
		sess.finish(out, m.svc.clock.Now())
	}()
	return sess
}

func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Reap drops sessions that finished more than ttl before now.
func (m *Manager) Reap(now time.Time) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for id, sess := range m.sessions {
		sess.mu.Lock()
		expired := sess.view.Done && now.Sub(sess.finishedAt) > m.ttl
		sess.mu.Unlock()
		if expired {
			delete(m.sessions, id)
			n++
		}
	}
	return n
}

func (m *Manager) RunReaper(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Reap(m.svc.clock.Now()); n > 0 {
				m.logger.Debug("reaped booking sessions", "count", n)
			}
		}
	}
}

// Wait blocks until every started workflow has returned.
func (m *Manager) Wait() {
	m.wg.Wait()
}
