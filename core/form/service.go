package form

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"

	"github.com/trezcool/edupay/core"
)

var (
	ErrNotFound   = errors.New("form not found")
	ErrNoFollowUp = errors.New("no follow-up form is available")
)

// Session is an open form together with where it asked to navigate.
type Session struct {
	ID        string
	Presenter *Presenter

	mu       sync.Mutex
	pending  Route
	followUp string
}

// Navigate records route until the next View of the session.
func (s *Session) Navigate(route Route) {
	s.mu.Lock()
	s.pending = route
	s.mu.Unlock()
}

func (s *Session) takeRoute() Route {
	s.mu.Lock()
	defer s.mu.Unlock()
	route := s.pending
	s.pending = ""
	return route
}

func (s *Session) followUpID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.followUp
}

func (s *Session) Close() { s.Presenter.Close() }

// Store keeps open sessions. Deleting or expiring a session must Close it.
type Store interface {
	Add(s *Session)
	Get(id string) (*Session, bool)
	Delete(id string) bool
	Count() int
}

// View is what clients see of a session.
type View struct {
	ID           string                 `json:"id"`
	Kind         Kind                   `json:"kind"`
	Status       Status                 `json:"status"`
	Values       map[string]interface{} `json:"values"`
	Errors       Errors                 `json:"errors"`
	Failure      string                 `json:"failure,omitempty"`
	Confirmation *Confirmation          `json:"confirmation,omitempty"`
	FollowUp     Kind                   `json:"follow_up,omitempty"`
	FollowUpID   string                 `json:"follow_up_id,omitempty"`
	NavigateTo   Route                  `json:"navigate_to,omitempty"`
}

// Hook observes every settled submission.
type Hook func(kind Kind, values Values, err error)

type ServiceConfig struct {
	Store         Store
	Validator     *Validator
	Submitter     Submitter
	RedirectDelay time.Duration
	Logger        core.Logger
	Hooks         []Hook
}

type Service struct {
	cfg   ServiceConfig
	newID func() string
}

func NewService(cfg ServiceConfig) *Service {
	return &Service{cfg: cfg, newID: uuid.NewString}
}

// Open starts a new form, optionally prefilled with raw values.
func (svc *Service) Open(kind Kind, raw map[string]json.RawMessage) (View, error) {
	values, err := ParseValues(kind, raw)
	if err != nil {
		return View{}, err
	}
	sess := svc.newSession(kind)
	if err := sess.Presenter.Change(values); err != nil {
		return View{}, err
	}
	svc.cfg.Store.Add(sess)
	svc.cfg.Logger.Debug("form opened", map[string]interface{}{"kind": kind, "id": sess.ID})
	return svc.view(sess), nil
}

func (svc *Service) newSession(kind Kind) *Session {
	sess := &Session{ID: svc.newID()}
	sess.Presenter = NewPresenter(kind, PresenterConfig{
		Validator:     svc.cfg.Validator,
		Submitter:     svc.cfg.Submitter,
		Navigator:     sess,
		RedirectDelay: svc.cfg.RedirectDelay,
		OnSettled:     svc.settled(sess.ID),
	})
	return sess
}

func (svc *Service) settled(id string) SettleFunc {
	return func(kind Kind, values Values, err error) {
		if err != nil {
			svc.cfg.Logger.Warn("form submission failed", err, map[string]interface{}{"kind": kind, "id": id})
		} else {
			svc.cfg.Logger.Info("form submitted", map[string]interface{}{"kind": kind, "id": id})
		}
		for _, hook := range svc.cfg.Hooks {
			hook(kind, values, err)
		}
	}
}

func (svc *Service) get(id string) (*Session, error) {
	sess, ok := svc.cfg.Store.Get(id)
	if !ok {
		return nil, ErrNotFound
	}
	return sess, nil
}

// View returns the current view of a session. A pending navigation is reported once.
func (svc *Service) View(id string) (View, error) {
	sess, err := svc.get(id)
	if err != nil {
		return View{}, err
	}
	return svc.view(sess), nil
}

func (svc *Service) Change(id string, raw map[string]json.RawMessage) (View, error) {
	sess, err := svc.get(id)
	if err != nil {
		return View{}, err
	}
	values, err := ParseValues(sess.Presenter.Kind(), raw)
	if err != nil {
		return View{}, err
	}
	if err := sess.Presenter.Change(values); err != nil {
		return View{}, err
	}
	return svc.view(sess), nil
}

// Submit validates then starts the submission of a session.
// An invalid form is reported as a *core.ValidationError.
func (svc *Service) Submit(id string) (View, error) {
	sess, err := svc.get(id)
	if err != nil {
		return View{}, err
	}
	errs, err := sess.Presenter.Submit()
	if err != nil {
		return View{}, err
	}
	if err := errs.Err(); err != nil {
		return View{}, err
	}
	return svc.view(sess), nil
}

func (svc *Service) Reset(id string) (View, error) {
	sess, err := svc.get(id)
	if err != nil {
		return View{}, err
	}
	if err := sess.Presenter.Reset(); err != nil {
		return View{}, err
	}
	return svc.view(sess), nil
}

// OpenFollowUp opens the form offered after a successful submission,
// e.g. the student details following a registration.
func (svc *Service) OpenFollowUp(id string) (View, error) {
	parent, err := svc.get(id)
	if err != nil {
		return View{}, err
	}
	kind, ok := parent.Presenter.Kind().FollowUp()
	if !ok || parent.Presenter.Status() != StatusSuccess {
		return View{}, ErrNoFollowUp
	}

	sess := svc.newSession(kind)
	svc.cfg.Store.Add(sess)
	parent.mu.Lock()
	parent.followUp = sess.ID
	parent.mu.Unlock()
	svc.cfg.Logger.Debug("follow-up form opened", map[string]interface{}{"kind": kind, "id": sess.ID, "parent": id})
	return svc.view(sess), nil
}

// Close tears a session down, cancelling its pending work.
func (svc *Service) Close(id string) error {
	if !svc.cfg.Store.Delete(id) {
		return ErrNotFound
	}
	svc.cfg.Logger.Debug("form closed", map[string]interface{}{"id": id})
	return nil
}

// Wait blocks until the latest submission of a session settled.
func (svc *Service) Wait(ctx context.Context, id string) error {
	sess, err := svc.get(id)
	if err != nil {
		return err
	}
	return sess.Presenter.Wait(ctx)
}

func (svc *Service) view(sess *Session) View {
	snap := sess.Presenter.Snapshot()
	v := View{
		ID:         sess.ID,
		Kind:       snap.Kind,
		Status:     snap.Status,
		Values:     snap.Values.Payload(snap.Kind, false),
		Errors:     snap.Errors,
		Failure:    snap.Failure,
		NavigateTo: sess.takeRoute(),
	}
	if snap.Status == StatusSuccess {
		c := snap.Kind.Confirmation()
		v.Confirmation = &c
		if next, ok := snap.Kind.FollowUp(); ok {
			v.FollowUp = next
			v.FollowUpID = sess.followUpID()
		}
	}
	return v
}
