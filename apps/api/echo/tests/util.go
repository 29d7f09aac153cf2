package tests

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"

	. "github.com/trezcool/edupay/apps/api/echo"
	"github.com/trezcool/edupay/core"
	"github.com/trezcool/edupay/core/dashboard"
	"github.com/trezcool/edupay/core/form"
	"github.com/trezcool/edupay/core/payment"
	"github.com/trezcool/edupay/services/metrics"
	"github.com/trezcool/edupay/storage/inmem"
	"github.com/trezcool/edupay/tests"
)

var errNotFound = httpErr{Error: "not found"}

type testApp struct {
	*Server
	forms *inmem.FormStore
}

func setup(t *testing.T, lister payment.Lister) testApp {
	conf := testutil.NewConfig()
	logger := testutil.NewLogger()
	formValidator, validate := testutil.NewValidator()

	store := inmem.NewFormStore(conf.Forms.SessionTTL)
	collector := metrics.NewCollector(store.Count)

	formSvc := form.NewService(form.ServiceConfig{
		Store:         store,
		Validator:     formValidator,
		Submitter:     form.NewSimulator(form.ConfiguredDelays(conf)),
		RedirectDelay: conf.Forms.LoginRedirect,
		Logger:        logger,
		Hooks:         []form.Hook{collector.ObserveSubmission},
	})
	paymentSvc := payment.NewService(payment.ServiceConfig{
		Lister:    lister,
		Logger:    logger,
		Timeout:   conf.Payments.Timeout,
		OnFetched: collector.ObservePaymentFetch,
	})

	server := NewServer(
		ServerDeps{
			Conf:         conf,
			Logger:       logger,
			FormSvc:      formSvc,
			PaymentSvc:   paymentSvc,
			DashboardSvc: dashboard.NewService(conf.Dashboard.Delay),
			Metrics:      collector.Handler(),
			Validate:     validate,
			Translator:   core.NewTranslator(),
		},
	)
	t.Cleanup(func() {
		store.Flush()
		_ = server.Close()
	})
	return testApp{Server: server, forms: store}
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	wantCode int
	wantData []byte
	extra    interface{}
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	return req, rec
}

func marchallObj(t *testing.T, obj interface{}) []byte {
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marchallObj() failed: %v", err)
	}
	return data
}

func jsonBytesEqual(t *testing.T, b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	if reflect.DeepEqual(j1, j2) {
		return true, nil
	}
	if j1 == nil || j2 == nil {
		return false, nil
	}
	return assert.ElementsMatch(t, j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	ok, err := jsonBytesEqual(t, rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

// do serves one request and decodes a form view from the response, if any.
func (app testApp) do(t *testing.T, method, path string, data ...[]byte) (form.View, *httptest.ResponseRecorder) {
	t.Helper()
	req, rec := newRequest(method, path, data...)
	app.ServeHTTP(rec, req)

	var view form.View
	if rec.Code < http.StatusBadRequest && rec.Body.Len() > 0 {
		if err := json.Unmarshal(rec.Body.Bytes(), &view); err != nil {
			t.Fatalf("decoding view: %v; body %s", err, rec.Body.String())
		}
	}
	return view, rec
}

// view fetches a form view, returning the zero view on any failure.
func (app testApp) view(path string) form.View {
	req, rec := newRequest(http.MethodGet, path)
	app.ServeHTTP(rec, req)

	var view form.View
	_ = json.Unmarshal(rec.Body.Bytes(), &view)
	return view
}
