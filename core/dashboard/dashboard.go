package dashboard

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
)

// DefaultDelay is how long loading the summary takes.
const DefaultDelay = 1500 * time.Millisecond

var ErrUnknownNotification = errors.New("unknown notification")

type (
	Payment struct {
		ID     int     `json:"id"`
		Course string  `json:"course"`
		Amount float64 `json:"amount"`
		Date   string  `json:"date"`
		Status string  `json:"status"`
	}

	UpcomingPayment struct {
		ID      int     `json:"id"`
		Course  string  `json:"course"`
		Amount  float64 `json:"amount"`
		DueDate string  `json:"dueDate"`
	}

	Notification struct {
		ID      int    `json:"id"`
		Message string `json:"message"`
		Time    string `json:"time"`
		Read    bool   `json:"read"`
	}

	Summary struct {
		Balance          float64           `json:"balance"`
		RecentPayments   []Payment         `json:"recentPayments"`
		UpcomingPayments []UpcomingPayment `json:"upcomingPayments"`
		Notifications    []Notification    `json:"notifications"`
	}
)

// Tabs are the sections of the dashboard, in menu order.
var Tabs = []string{"overview", "payments", "invoices", "schedule", "reports", "settings"}

func sample() Summary {
	return Summary{
		Balance: 1250.50,
		RecentPayments: []Payment{
			{ID: 1, Course: "Mathematics 101", Amount: 250.00, Date: "2023-05-15", Status: "completed"},
			{ID: 2, Course: "Physics 201", Amount: 300.00, Date: "2023-04-28", Status: "completed"},
			{ID: 3, Course: "Chemistry Lab", Amount: 150.50, Date: "2023-04-10", Status: "completed"},
		},
		UpcomingPayments: []UpcomingPayment{
			{ID: 4, Course: "Biology 301", Amount: 275.00, DueDate: "2023-06-10"},
			{ID: 5, Course: "Computer Science", Amount: 320.00, DueDate: "2023-06-25"},
		},
		Notifications: []Notification{
			{ID: 1, Message: "Payment for Mathematics 101 was successful", Time: "2 hours ago", Read: false},
			{ID: 2, Message: "Upcoming payment for Biology 301 due in 15 days", Time: "1 day ago", Read: true},
			{ID: 3, Message: "New invoice generated for Computer Science", Time: "3 days ago", Read: true},
		},
	}
}

// TotalPaid sums the recent payments.
func (s Summary) TotalPaid() float64 {
	var total float64
	for _, p := range s.RecentPayments {
		total += p.Amount
	}
	return total
}

func (s Summary) HasUnread() bool {
	for _, n := range s.Notifications {
		if !n.Read {
			return true
		}
	}
	return false
}

// MarkAsRead returns a copy of s with the notification id read.
func (s Summary) MarkAsRead(id int) (Summary, error) {
	notifs := make([]Notification, len(s.Notifications))
	found := false
	for i, n := range s.Notifications {
		if n.ID == id {
			n.Read = true
			found = true
		}
		notifs[i] = n
	}
	if !found {
		return s, ErrUnknownNotification
	}
	s.Notifications = notifs
	return s, nil
}

// Service serves the mock dashboard.
type Service struct {
	delay time.Duration
}

func NewService(delay time.Duration) *Service {
	return &Service{delay: delay}
}

// Load returns the summary once the loading delay elapsed.
func (svc *Service) Load(ctx context.Context) (Summary, error) {
	timer := time.NewTimer(svc.delay)
	defer timer.Stop()

	select {
	case <-timer.C:
		return sample(), nil
	case <-ctx.Done():
		return Summary{}, ctx.Err()
	}
}

// FormatCurrency renders amount in the given currency: USD as "$1,250.50", TZS as "TSh 1,251".
func FormatCurrency(amount float64, code string) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}
	switch code {
	case "TZS":
		return sign + "TSh " + humanize.FormatFloat("#,###.", amount)
	case "USD", "":
		return sign + "$" + humanize.FormatFloat("#,###.##", amount)
	default:
		return sign + code + " " + humanize.FormatFloat("#,###.##", amount)
	}
}
