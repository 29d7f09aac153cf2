package dashboard

import (
	"context"
	"testing"
	"time"
)

func TestService_Load(t *testing.T) {
	svc := NewService(5 * time.Millisecond)
	sum, err := svc.Load(context.Background())
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if sum.Balance != 1250.50 {
		t.Errorf("Load() balance = %v, want 1250.50", sum.Balance)
	}
	if len(sum.RecentPayments) != 3 || len(sum.UpcomingPayments) != 2 || len(sum.Notifications) != 3 {
		t.Errorf("Load() = %+v, want 3 recent, 2 upcoming, 3 notifications", sum)
	}
	if !sum.HasUnread() {
		t.Errorf("HasUnread() = false, want true")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := NewService(time.Hour).Load(ctx); err != context.Canceled {
		t.Errorf("Load() error = %v, want %v", err, context.Canceled)
	}
}

func TestSummary_TotalPaid(t *testing.T) {
	if got := sample().TotalPaid(); got != 700.50 {
		t.Errorf("TotalPaid() = %v, want 700.50", got)
	}
	if got := (Summary{}).TotalPaid(); got != 0 {
		t.Errorf("TotalPaid() = %v, want 0", got)
	}
}

func TestSummary_MarkAsRead(t *testing.T) {
	sum := sample()
	read, err := sum.MarkAsRead(1)
	if err != nil {
		t.Fatalf("MarkAsRead() error = %v", err)
	}
	if read.HasUnread() {
		t.Errorf("HasUnread() after MarkAsRead() = true")
	}
	if sum.Notifications[0].Read {
		t.Errorf("MarkAsRead() changed the original summary")
	}
	if _, err := sum.MarkAsRead(42); err != ErrUnknownNotification {
		t.Errorf("MarkAsRead() error = %v, want %v", err, ErrUnknownNotification)
	}
}

func TestFormatCurrency(t *testing.T) {
	tests := []struct {
		amount float64
		code   string
		want   string
	}{
		{amount: 1250.50, code: "USD", want: "$1,250.50"},
		{amount: 150.5, code: "USD", want: "$150.50"},
		{amount: 0, code: "", want: "$0.00"},
		{amount: 1234567.891, code: "USD", want: "$1,234,567.89"},
		{amount: -42, code: "USD", want: "-$42.00"},
		{amount: 1250.50, code: "TZS", want: "TSh 1,251"},
		{amount: 2500000, code: "TZS", want: "TSh 2,500,000"},
		{amount: 99.9, code: "KES", want: "KES 99.90"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatCurrency(tt.amount, tt.code); got != tt.want {
				t.Errorf("FormatCurrency(%v, %q) = %q, want %q", tt.amount, tt.code, got, tt.want)
			}
		})
	}
}
