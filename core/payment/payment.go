package payment

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/edupay/core"
)

// Raw keeps a JSON string or number exactly as the backend sent it.
type Raw string

func (r *Raw) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*r = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = Raw(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return errors.Wrapf(err, "expected a string or a number, got %s", data)
	}
	*r = Raw(n.String())
	return nil
}

type Payment struct {
	ID     Raw `json:"id"`
	UserID Raw `json:"userId"`
	Amount Raw `json:"amount"`
	Status Raw `json:"status"`
}

// Lister fetches the payments known to the backend.
type Lister interface {
	ListPayments(ctx context.Context) ([]Payment, error)
}

type State string

const (
	StateLoading State = "loading"
	StateReady   State = "ready"
	StateFailed  State = "failed"
)

var (
	LoadingText = "Loading payments..."
	FailedText  = "Unable to load payments"
	Headers     = []string{"ID", "User ID", "Amount", "Status"}
)

type Listing struct {
	State    State     `json:"state"`
	Payments []Payment `json:"payments"`
	Error    string    `json:"error,omitempty"`
}

// Loading is the listing shown while a fetch is in progress.
func Loading() Listing {
	return Listing{State: StateLoading, Payments: []Payment{}}
}

type ServiceConfig struct {
	Lister  Lister
	Logger  core.Logger
	Timeout time.Duration
	// OnFetched is told about the outcome of every fetch.
	OnFetched func(err error)
}

type Service struct {
	cfg ServiceConfig
}

func NewService(cfg ServiceConfig) *Service {
	return &Service{cfg: cfg}
}

// List fetches the payments once. Failures are logged and reported as a failed listing.
func (svc *Service) List(ctx context.Context) Listing {
	if svc.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, svc.cfg.Timeout)
		defer cancel()
	}

	payments, err := svc.cfg.Lister.ListPayments(ctx)
	if svc.cfg.OnFetched != nil {
		svc.cfg.OnFetched(err)
	}
	if err != nil {
		svc.cfg.Logger.Error("error fetching payments", errors.Wrap(err, "listing payments"))
		return Listing{State: StateFailed, Payments: []Payment{}, Error: FailedText}
	}
	if payments == nil {
		payments = []Payment{}
	}
	return Listing{State: StateReady, Payments: payments}
}

// Rows renders payments as table rows, fields verbatim.
func Rows(payments []Payment) [][]string {
	rows := make([][]string, 0, len(payments))
	for _, p := range payments {
		rows = append(rows, []string{string(p.ID), string(p.UserID), string(p.Amount), string(p.Status)})
	}
	return rows
}
