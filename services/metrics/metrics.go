package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/trezcool/edupay/core/form"
)

const namespace = "edupay"

// Collector records form submissions, open forms and payment fetches.
type Collector struct {
	registry       *prometheus.Registry
	submissions    *prometheus.CounterVec
	paymentFetches *prometheus.CounterVec
}

// NewCollector registers the metrics on a dedicated registry.
// openForms reports the number of live form sessions.
func NewCollector(openForms func() int) *Collector {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	c := &Collector{
		registry: reg,
		submissions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "form_submissions_total",
			Help:      "Settled form submissions by form kind and outcome.",
		}, []string{"kind", "outcome"}),
		paymentFetches: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "payment_fetches_total",
			Help:      "Payment listing fetches by outcome.",
		}, []string{"outcome"}),
	}
	factory.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "open_forms",
		Help:      "Form sessions currently open.",
	}, func() float64 { return float64(openForms()) })
	return c
}

func outcome(err error) string {
	if err != nil {
		return "failed"
	}
	return "success"
}

// ObserveSubmission is a form.Hook.
func (c *Collector) ObserveSubmission(kind form.Kind, _ form.Values, err error) {
	c.submissions.WithLabelValues(string(kind), outcome(err)).Inc()
}

func (c *Collector) ObservePaymentFetch(err error) {
	c.paymentFetches.WithLabelValues(outcome(err)).Inc()
}

func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
