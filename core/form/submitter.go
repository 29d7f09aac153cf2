package form

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/edupay/core"
)

// Submitter delivers the values of a valid form.
// It must return promptly with ctx.Err() once ctx is done.
type Submitter interface {
	Submit(ctx context.Context, kind Kind, values Values) error
}

// DefaultDelays are the simulated processing times of each form.
func DefaultDelays() map[Kind]time.Duration {
	return map[Kind]time.Duration{
		KindRegistration: 2000 * time.Millisecond,
		KindLogin:        2000 * time.Millisecond,
		KindDemoRequest:  1500 * time.Millisecond,
		KindStudentInfo:  2000 * time.Millisecond,
	}
}

// ConfiguredDelays reads the simulated processing times from conf.
func ConfiguredDelays(conf *core.Config) map[Kind]time.Duration {
	return map[Kind]time.Duration{
		KindRegistration: conf.Forms.RegistrationDelay,
		KindLogin:        conf.Forms.LoginDelay,
		KindDemoRequest:  conf.Forms.DemoRequestDelay,
		KindStudentInfo:  conf.Forms.StudentInfoDelay,
	}
}

// Simulator stands in for a backend: it waits the delay of the form then reports success.
type Simulator struct {
	delays map[Kind]time.Duration
}

func NewSimulator(delays map[Kind]time.Duration) *Simulator {
	if delays == nil {
		delays = DefaultDelays()
	}
	return &Simulator{delays: delays}
}

func (sim *Simulator) Submit(ctx context.Context, kind Kind, _ Values) error {
	timer := time.NewTimer(sim.delays[kind])
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

type SubmissionErrorKind string

const (
	SubmissionNetwork  SubmissionErrorKind = "network"
	SubmissionRejected SubmissionErrorKind = "rejected"
)

var defaultFailureMessage = "Something went wrong. Please try again."

// SubmissionError is returned by submitters that reach a real backend.
// Message is safe to show to users.
type SubmissionError struct {
	Kind    SubmissionErrorKind
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err == nil {
		return string(e.Kind) + ": " + e.Message
	}
	return string(e.Kind) + ": " + e.Err.Error()
}

func (e *SubmissionError) Cause() error  { return e.Err }
func (e *SubmissionError) Unwrap() error { return e.Err }

// FailureMessage returns the message shown to users when a submission failed with err.
func FailureMessage(err error) string {
	var sErr *SubmissionError
	if errors.As(err, &sErr) && sErr.Message != "" {
		return sErr.Message
	}
	return defaultFailureMessage
}
