package form

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

// gateSubmitter blocks every submission until a result is sent on release.
type gateSubmitter struct {
	release chan error
	calls   int32

	mu   sync.Mutex
	sent []Values
}

func newGateSubmitter() *gateSubmitter {
	return &gateSubmitter{release: make(chan error, 1)}
}

func (g *gateSubmitter) Submit(ctx context.Context, _ Kind, values Values) error {
	atomic.AddInt32(&g.calls, 1)
	g.mu.Lock()
	g.sent = append(g.sent, values)
	g.mu.Unlock()

	select {
	case err := <-g.release:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (g *gateSubmitter) Calls() int { return int(atomic.LoadInt32(&g.calls)) }

type navRecorder struct {
	mu     sync.Mutex
	routes []Route
}

func (n *navRecorder) Navigate(route Route) {
	n.mu.Lock()
	n.routes = append(n.routes, route)
	n.mu.Unlock()
}

func (n *navRecorder) Routes() []Route {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Route(nil), n.routes...)
}

type settleRecorder struct {
	mu   sync.Mutex
	errs []error
}

func (s *settleRecorder) record(_ Kind, _ Values, err error) {
	s.mu.Lock()
	s.errs = append(s.errs, err)
	s.mu.Unlock()
}

func (s *settleRecorder) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.errs)
}

type presenterFixture struct {
	p       *Presenter
	sub     *gateSubmitter
	nav     *navRecorder
	settles *settleRecorder
}

func newPresenterFixture(kind Kind, values Values) presenterFixture {
	f := presenterFixture{sub: newGateSubmitter(), nav: &navRecorder{}, settles: &settleRecorder{}}
	f.p = NewPresenter(kind, PresenterConfig{
		Validator:     newTestValidator(),
		Submitter:     f.sub,
		Navigator:     f.nav,
		RedirectDelay: 20 * time.Millisecond,
		OnSettled:     f.settles.record,
	})
	if values != nil {
		if err := f.p.Change(values); err != nil {
			panic(err)
		}
	}
	return f
}

func waitSettled(t *testing.T, p *Presenter) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, p.Wait(ctx))
}

func TestPresenter_InvalidSubmitStaysIdle(t *testing.T) {
	f := newPresenterFixture(KindRegistration, nil)

	errs, err := f.p.Submit()
	require.NoError(t, err)
	want := Errors{
		FieldFullName:    "Full name is required",
		FieldEmail:       "Email is required",
		FieldPhoneNumber: "Phone number is required",
		FieldPassword:    "Password is required",
	}
	if diff := cmp.Diff(want, errs); diff != "" {
		t.Errorf("Submit() errors mismatch (-want +got):\n%s", diff)
	}

	snap := f.p.Snapshot()
	require.Equal(t, StatusIdle, snap.Status)
	require.Equal(t, want, snap.Errors)
	require.Equal(t, 0, f.sub.Calls())
}

func TestPresenter_ErrorsReplacedOnResubmit(t *testing.T) {
	f := newPresenterFixture(KindLogin, Values{FieldEmail: Text("bad")})

	errs, _ := f.p.Submit()
	require.Len(t, errs, 2)

	require.NoError(t, f.p.Change(Values{FieldPassword: Text("s3cretpass")}))
	errs, _ = f.p.Submit()
	require.Equal(t, Errors{FieldEmail: "Please enter a valid email"}, errs)
}

func TestPresenter_LoginSuccessRedirectsOnce(t *testing.T) {
	f := newPresenterFixture(KindLogin, validLogin)

	errs, err := f.p.Submit()
	require.NoError(t, err)
	require.Empty(t, errs)
	require.Equal(t, StatusSubmitting, f.p.Status())

	_, err = f.p.Submit()
	require.Equal(t, ErrSubmitInFlight, err)
	require.Equal(t, ErrSubmitInFlight, f.p.Reset())

	f.sub.release <- nil
	waitSettled(t, f.p)
	require.Equal(t, StatusSuccess, f.p.Status())
	require.Empty(t, f.nav.Routes())

	_, err = f.p.Submit()
	require.Equal(t, ErrNotIdle, err)

	require.Eventually(t, func() bool { return f.p.Status() == StatusIdle }, time.Second, 5*time.Millisecond)
	time.Sleep(50 * time.Millisecond)
	require.Equal(t, []Route{RouteDashboard}, f.nav.Routes())
	require.Equal(t, 1, f.sub.Calls())
	require.Equal(t, 1, f.settles.Count())
}

func TestPresenter_SubmitsValuesAtSubmitTime(t *testing.T) {
	f := newPresenterFixture(KindLogin, validLogin)

	_, err := f.p.Submit()
	require.NoError(t, err)
	require.NoError(t, f.p.Change(Values{FieldEmail: Text("changed@school.tz")}))

	f.sub.release <- nil
	waitSettled(t, f.p)

	f.sub.mu.Lock()
	defer f.sub.mu.Unlock()
	require.Equal(t, "asha@school.tz", f.sub.sent[0].Text(FieldEmail))
}

func TestPresenter_DemoResetKeepsValues(t *testing.T) {
	f := newPresenterFixture(KindDemoRequest, validDemoRequest)

	_, err := f.p.Submit()
	require.NoError(t, err)
	f.sub.release <- nil
	waitSettled(t, f.p)
	require.Equal(t, StatusSuccess, f.p.Status())

	require.NoError(t, f.p.Reset())
	snap := f.p.Snapshot()
	require.Equal(t, StatusIdle, snap.Status)
	require.Equal(t, "Mwenge Secondary", snap.Values.Text(FieldSchool))
	require.Empty(t, f.nav.Routes())
}

func TestPresenter_RegistrationResetClearsValues(t *testing.T) {
	f := newPresenterFixture(KindRegistration, validRegistration)

	_, err := f.p.Submit()
	require.NoError(t, err)
	f.sub.release <- nil
	waitSettled(t, f.p)

	require.NoError(t, f.p.Reset())
	snap := f.p.Snapshot()
	require.Equal(t, StatusIdle, snap.Status)
	require.Equal(t, "", snap.Values.Text(FieldFullName))
}

func TestPresenter_StudentInfoGoesToLogin(t *testing.T) {
	f := newPresenterFixture(KindStudentInfo, validStudentInfo)

	_, err := f.p.Submit()
	require.NoError(t, err)
	f.sub.release <- nil
	waitSettled(t, f.p)

	require.Eventually(t, func() bool { return len(f.nav.Routes()) == 1 }, time.Second, 5*time.Millisecond)
	require.Equal(t, []Route{RouteLogin}, f.nav.Routes())
	require.Empty(t, f.p.Snapshot().Values.Files(FieldDocuments))
}

func TestPresenter_Failure(t *testing.T) {
	f := newPresenterFixture(KindDemoRequest, validDemoRequest)

	_, err := f.p.Submit()
	require.NoError(t, err)
	f.sub.release <- &SubmissionError{Kind: SubmissionRejected, Message: "School is not supported yet", Err: errors.New("422")}
	waitSettled(t, f.p)

	snap := f.p.Snapshot()
	require.Equal(t, StatusFailed, snap.Status)
	require.Equal(t, "School is not supported yet", snap.Failure)
	require.Equal(t, "Mwenge Secondary", snap.Values.Text(FieldSchool))

	// a failed form may be submitted again
	_, err = f.p.Submit()
	require.NoError(t, err)
	require.Equal(t, "", f.p.Snapshot().Failure)
	f.sub.release <- errors.New("boom")
	waitSettled(t, f.p)
	require.Equal(t, defaultFailureMessage, f.p.Snapshot().Failure)
	require.Equal(t, 2, f.settles.Count())
}

func TestPresenter_CloseCancelsSubmission(t *testing.T) {
	f := newPresenterFixture(KindLogin, validLogin)

	_, err := f.p.Submit()
	require.NoError(t, err)
	f.p.Close()
	waitSettled(t, f.p)

	require.Equal(t, StatusSubmitting, f.p.Status())
	require.Equal(t, 0, f.settles.Count())
	require.Empty(t, f.nav.Routes())

	_, err = f.p.Submit()
	require.Equal(t, ErrClosed, err)
	require.Equal(t, ErrClosed, f.p.Change(validLogin))
	require.Equal(t, ErrClosed, f.p.Reset())
	f.p.Close()
}

func TestPresenter_CloseStopsRedirect(t *testing.T) {
	f := newPresenterFixture(KindLogin, validLogin)

	_, err := f.p.Submit()
	require.NoError(t, err)
	f.sub.release <- nil
	waitSettled(t, f.p)
	f.p.Close()

	time.Sleep(60 * time.Millisecond)
	require.Empty(t, f.nav.Routes())
	require.Equal(t, StatusSuccess, f.p.Status())
}

func TestPresenter_CloseAfterSettleSkipsNavigation(t *testing.T) {
	sub := newGateSubmitter()
	nav := &navRecorder{}
	var p *Presenter
	p = NewPresenter(KindStudentInfo, PresenterConfig{
		Validator: newTestValidator(),
		Submitter: sub,
		Navigator: nav,
		// the form is torn down between settling and navigating
		OnSettled: func(Kind, Values, error) { p.Close() },
	})
	require.NoError(t, p.Change(validStudentInfo))

	_, err := p.Submit()
	require.NoError(t, err)
	sub.release <- nil
	waitSettled(t, p)

	require.Empty(t, nav.Routes())
}

func TestSimulator(t *testing.T) {
	sim := NewSimulator(map[Kind]time.Duration{KindLogin: 10 * time.Millisecond})

	start := time.Now()
	require.NoError(t, sim.Submit(context.Background(), KindLogin, nil))
	require.GreaterOrEqual(t, int64(time.Since(start)), int64(10*time.Millisecond))

	slow := NewSimulator(map[Kind]time.Duration{KindLogin: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.Equal(t, context.Canceled, slow.Submit(ctx, KindLogin, nil))
}

func TestFailureMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "plain error", err: errors.New("x"), want: defaultFailureMessage},
		{name: "submission error", err: &SubmissionError{Kind: SubmissionNetwork, Message: "Offline"}, want: "Offline"},
		{name: "wrapped", err: errors.Wrap(&SubmissionError{Message: "Nope"}, "posting"), want: "Nope"},
		{name: "no message", err: &SubmissionError{Kind: SubmissionNetwork}, want: defaultFailureMessage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FailureMessage(tt.err); got != tt.want {
				t.Errorf("FailureMessage() = %q, want %q", got, tt.want)
			}
		})
	}
}
