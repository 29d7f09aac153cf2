package form

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// Route is an application path a form may send its user to.
type Route string

const (
	RouteHome      Route = "/"
	RouteRegister  Route = "/register"
	RouteLogin     Route = "/login"
	RouteDemo      Route = "/demo"
	RouteDashboard Route = "/dashboard"
	RoutePayments  Route = "/payments"
)

// Navigator is called with the presenter locked and must not call back into it.
type Navigator interface {
	Navigate(route Route)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(route Route)

func (fn NavigatorFunc) Navigate(route Route) { fn(route) }

type Status string

const (
	StatusIdle       Status = "idle"
	StatusSubmitting Status = "submitting"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

var (
	ErrSubmitInFlight = errors.New("a submission is already in flight")
	ErrNotIdle        = errors.New("form was already submitted")
	ErrClosed         = errors.New("form is closed")
)

// DefaultRedirectDelay is how long the login confirmation stays up before going to the dashboard.
const DefaultRedirectDelay = 3000 * time.Millisecond

// SettleFunc is called once per submission, after it completed or failed.
type SettleFunc func(kind Kind, values Values, err error)

type PresenterConfig struct {
	Validator     *Validator
	Submitter     Submitter
	Navigator     Navigator
	RedirectDelay time.Duration
	OnSettled     SettleFunc
}

// Snapshot is a consistent copy of a Presenter's observable state.
type Snapshot struct {
	Kind    Kind
	Status  Status
	Values  Values
	Errors  Errors
	Failure string
}

// Presenter drives one form through idle, submitting, then success or failed.
// It is safe for concurrent use.
type Presenter struct {
	kind Kind
	cfg  PresenterConfig

	mu       sync.Mutex
	state    *State
	errors   Errors
	status   Status
	failure  string
	cancel   context.CancelFunc
	settled  chan struct{}
	redirect *time.Timer
	closed   bool
}

func NewPresenter(kind Kind, cfg PresenterConfig) *Presenter {
	if cfg.Navigator == nil {
		cfg.Navigator = NavigatorFunc(func(Route) {})
	}
	return &Presenter{
		kind:   kind,
		cfg:    cfg,
		state:  NewState(kind),
		errors: make(Errors),
		status: StatusIdle,
	}
}

func (p *Presenter) Kind() Kind { return p.kind }

func (p *Presenter) Snapshot() Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	return Snapshot{
		Kind:    p.kind,
		Status:  p.status,
		Values:  p.state.Values(),
		Errors:  p.errors.clone(),
		Failure: p.failure,
	}
}

func (p *Presenter) Status() Status {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.status
}

// Change applies edits to the form. Edits are accepted in every state but closed;
// the values of an in-flight submission are unaffected.
func (p *Presenter) Change(vs Values) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	return p.state.Apply(vs)
}

// Submit validates the form and, if it is valid, starts submitting it.
// Invalid forms stay idle and their errors are returned.
func (p *Presenter) Submit() (Errors, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.closed:
		return nil, ErrClosed
	case p.status == StatusSubmitting:
		return nil, ErrSubmitInFlight
	case p.status == StatusSuccess:
		return nil, ErrNotIdle
	}

	values := p.state.Values()
	p.errors = p.cfg.Validator.Validate(p.kind, values)
	if len(p.errors) > 0 {
		return p.errors.clone(), nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	p.status = StatusSubmitting
	p.failure = ""
	p.cancel = cancel
	p.settled = make(chan struct{})
	go p.run(ctx, cancel, values, p.settled)
	return nil, nil
}

func (p *Presenter) run(ctx context.Context, cancel context.CancelFunc, values Values, settled chan struct{}) {
	defer close(settled)
	defer cancel()

	err := p.cfg.Submitter.Submit(ctx, p.kind, values)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.cancel = nil
	var next Route
	if err != nil {
		p.status = StatusFailed
		p.failure = FailureMessage(err)
	} else {
		p.status = StatusSuccess
		next = p.succeed()
	}
	p.mu.Unlock()

	if p.cfg.OnSettled != nil {
		p.cfg.OnSettled(p.kind, values, err)
	}
	if next != "" {
		p.navigate(next)
	}
}

// navigate reports route unless the form was closed meanwhile.
func (p *Presenter) navigate(route Route) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.closed {
		p.cfg.Navigator.Navigate(route)
	}
}

// succeed runs the per-form success effects and returns where to navigate right away, if anywhere.
func (p *Presenter) succeed() Route {
	switch p.kind {
	case KindLogin:
		p.redirect = time.AfterFunc(p.cfg.RedirectDelay, p.finishRedirect)
	case KindStudentInfo:
		p.state.Reset()
		return RouteLogin
	}
	return ""
}

func (p *Presenter) finishRedirect() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed || p.status != StatusSuccess || p.redirect == nil {
		return
	}
	p.redirect = nil
	p.status = StatusIdle
	p.cfg.Navigator.Navigate(RouteDashboard)
}

// Reset leaves success or failed and goes back to an idle form.
// The demo request keeps its values, other forms are cleared.
func (p *Presenter) Reset() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch {
	case p.closed:
		return ErrClosed
	case p.status == StatusSubmitting:
		return ErrSubmitInFlight
	}

	p.stopRedirect()
	p.status = StatusIdle
	p.failure = ""
	p.errors = make(Errors)
	if !p.kind.keepsValuesOnReset() {
		p.state.Reset()
	}
	return nil
}

// Close cancels any pending submission or redirect. Nothing is observable after Close.
func (p *Presenter) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	cancel := p.cancel
	p.cancel = nil
	p.stopRedirect()
	p.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}

// Wait blocks until the latest submission settled, or ctx is done.
func (p *Presenter) Wait(ctx context.Context) error {
	p.mu.Lock()
	settled := p.settled
	p.mu.Unlock()
	if settled == nil {
		return nil
	}

	select {
	case <-settled:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Presenter) stopRedirect() {
	if p.redirect != nil {
		p.redirect.Stop()
		p.redirect = nil
	}
}
