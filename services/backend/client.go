package backend

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/sendgrid/rest"
	"github.com/sethvargo/go-retry"

	"github.com/trezcool/edupay/core"
	"github.com/trezcool/edupay/core/form"
	"github.com/trezcool/edupay/core/payment"
)

var (
	unreachableText = "Unable to reach the server. Please check your connection and try again."
	unavailableText = "The server is unavailable right now. Please try again later."
	rejectedText    = "Your submission was rejected. Please review it and try again."
)

// StatusError is returned for responses outside the 2xx range.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return "unexpected status " + strconv.Itoa(e.StatusCode) + ": " + e.Body
}

// Client talks to the school payment backend.
type Client struct {
	baseURL    string
	rest       *rest.Client
	maxRetries uint64
	retryBase  time.Duration
}

var (
	_ payment.Lister = (*Client)(nil)
	_ form.Submitter = (*Client)(nil)
)

func NewClient(conf *core.Config, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: conf.Payments.Timeout}
	}
	return &Client{
		baseURL:    conf.Payments.BackendURL,
		rest:       &rest.Client{HTTPClient: httpClient},
		maxRetries: conf.Submission.MaxRetries,
		retryBase:  conf.Submission.RetryBase,
	}
}

// send performs req, retrying transport errors and 5xx responses with exponential backoff.
func (c *Client) send(ctx context.Context, req rest.Request) (*rest.Response, error) {
	var resp *rest.Response
	backoff := retry.WithMaxRetries(c.maxRetries, retry.NewExponential(c.retryBase))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		r, err := c.do(ctx, req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return retry.RetryableError(errors.Wrapf(err, "%s %s", req.Method, req.BaseURL))
		}
		if r.StatusCode >= http.StatusInternalServerError {
			return retry.RetryableError(&StatusError{StatusCode: r.StatusCode, Body: r.Body})
		}
		resp = r
		return nil
	})
	return resp, err
}

func (c *Client) do(ctx context.Context, req rest.Request) (*rest.Response, error) {
	httpReq, err := rest.BuildRequestObject(req)
	if err != nil {
		return nil, err
	}
	res, err := c.rest.MakeRequest(httpReq.WithContext(ctx))
	if err != nil {
		return nil, err
	}
	return rest.BuildResponse(res)
}

func (c *Client) ListPayments(ctx context.Context) ([]payment.Payment, error) {
	resp, err := c.send(ctx, rest.Request{
		Method:  rest.Get,
		BaseURL: c.baseURL + "/api/payment",
		Headers: map[string]string{"Accept": "application/json"},
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return nil, &StatusError{StatusCode: resp.StatusCode, Body: resp.Body}
	}

	var payments []payment.Payment
	if err := json.Unmarshal([]byte(resp.Body), &payments); err != nil {
		return nil, errors.Wrap(err, "decoding payments")
	}
	return payments, nil
}

// Submit posts the values of a form. Failures are reported as *form.SubmissionError.
func (c *Client) Submit(ctx context.Context, kind form.Kind, values form.Values) error {
	body, err := json.Marshal(values.Payload(kind, true))
	if err != nil {
		return errors.Wrap(err, "encoding form values")
	}

	resp, err := c.send(ctx, rest.Request{
		Method:  rest.Post,
		BaseURL: c.baseURL + "/api/forms/" + string(kind),
		Headers: map[string]string{"Accept": "application/json"},
		Body:    body,
	})
	if err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		msg := unreachableText
		if _, ok := errors.Cause(err).(*StatusError); ok {
			msg = unavailableText
		}
		return &form.SubmissionError{Kind: form.SubmissionNetwork, Message: msg, Err: err}
	}

	if resp.StatusCode >= http.StatusMultipleChoices {
		return &form.SubmissionError{
			Kind:    form.SubmissionRejected,
			Message: rejectionMessage(resp.Body),
			Err:     &StatusError{StatusCode: resp.StatusCode, Body: resp.Body},
		}
	}
	return nil
}

// rejectionMessage extracts {"message": ...} or {"error": ...} from a response body.
func rejectionMessage(body string) string {
	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil {
		if payload.Message != "" {
			return payload.Message
		}
		if payload.Error != "" {
			return payload.Error
		}
	}
	return rejectedText
}
