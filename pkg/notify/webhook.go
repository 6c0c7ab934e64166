package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/dop251/goja"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"

	"github.com/autopair-dev/wadb-agent/pkg/logging"
)

// Webhook posts a timestamped JSON payload to a URL. An optional JavaScript
// transform lets deployments reshape the payload for whatever endpoint they
// point the agent at (chat webhooks, home-automation hooks, etc.).
type Webhook struct {
	url       string
	client    *http.Client
	limiter   *rate.Limiter
	transform *goja.Program
}

// WebhookOptions configures a webhook sink.
type WebhookOptions struct {
	URL string

	// RatePerMinute caps deliveries; zero means 6/min. Flapping networks
	// retrigger runs, and the endpoint shouldn't pay for that.
	RatePerMinute int

	// Script is optional JavaScript: it is evaluated with a `result`
	// global and its completion value becomes the request body.
	Script string

	Timeout time.Duration
}

// NewWebhook creates the sink. Returns an error when the transform script
// does not compile.
func NewWebhook(opts WebhookOptions) (*Webhook, error) {
	perMin := opts.RatePerMinute
	if perMin <= 0 {
		perMin = 6
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	w := &Webhook{
		url:     opts.URL,
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(perMin)), 1),
	}

	if opts.Script != "" {
		prog, err := goja.Compile("webhook-payload", opts.Script, true)
		if err != nil {
			return nil, fmt.Errorf("compile payload script: %w", err)
		}
		w.transform = prog
	}

	return w, nil
}

// Name implements Sink.
func (w *Webhook) Name() string { return "webhook" }

// Deliver implements Sink.
func (w *Webhook) Deliver(ctx context.Context, r Result) error {
	if err := w.limiter.Wait(ctx); err != nil {
		return err
	}

	body, err := w.payload(r)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook returned %d: %s", resp.StatusCode, string(respBody))
	}

	// Some endpoints report errors in a 200 body; surface those in the log
	// without failing the delivery.
	if gjson.ValidBytes(respBody) {
		if errField := gjson.GetBytes(respBody, "error"); errField.Exists() && errField.String() != "" {
			log := logging.For("notify")
			log.Warn().
				Str("sink", w.Name()).
				Str("error", errField.String()).
				Msg("webhook accepted request but reported an error")
		}
	}

	return nil
}

// payload builds the request body: the default shape, or the transform
// script's output.
func (w *Webhook) payload(r Result) ([]byte, error) {
	status := "ok"
	if !r.Succeeded() {
		status = "failed"
	}

	fields := map[string]interface{}{
		"id":        uuid.NewString(),
		"runId":     r.RunID,
		"timestamp": r.FinishedAt.UTC().Format(time.RFC3339),
		"device":    r.Device,
		"network":   r.Network,
		"status":    status,
		"attempts":  r.Attempts,
	}
	if r.Succeeded() {
		fields["host"] = r.Address.Host
		fields["port"] = r.Address.Port
		fields["address"] = r.Address.String()
	} else {
		fields["error"] = r.Error
	}

	if w.transform == nil {
		return json.Marshal(fields)
	}

	vm := goja.New()
	if err := vm.Set("result", fields); err != nil {
		return nil, err
	}
	v, err := vm.RunProgram(w.transform)
	if err != nil {
		return nil, fmt.Errorf("payload script: %w", err)
	}
	return json.Marshal(v.Export())
}
