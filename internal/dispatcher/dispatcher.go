// Package dispatcher batches envelopes and POSTs them to subscribers.
package dispatcher

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"webhook_feed/internal/filter"
	"webhook_feed/internal/metrics"
	"webhook_feed/internal/model"
	"webhook_feed/internal/subscriber"
)

// HTTPClient is the interface for performing HTTP requests.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Dispatcher.
type Options struct {
	// ChunkSize is the maximum number of envelopes per POST; 0 sends one POST.
	ChunkSize   int
	Timeout     time.Duration
	Concurrency int
}

// StatusError is returned when a subscriber answers with a status other than 200.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("unexpected status %d", e.Code)
}

// Dispatcher delivers envelope sequences to subscribers.
type Dispatcher struct {
	client  HTTPClient
	opts    Options
	metrics *metrics.Collector
	log     *slog.Logger
}

// New creates a Dispatcher. A zero Timeout defaults to 5s and a
// non-positive Concurrency to 1.
func New(client HTTPClient, opts Options, m *metrics.Collector, log *slog.Logger) *Dispatcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Second
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = 1
	}
	return &Dispatcher{
		client:  client,
		opts:    opts,
		metrics: m,
		log:     log,
	}
}

// Chunk splits events into contiguous slices of at most size elements.
// A size of 0 returns the whole sequence as one chunk.
func Chunk(events []model.Envelope, size int) [][]model.Envelope {
	if size <= 0 {
		return [][]model.Envelope{events}
	}
	chunks := make([][]model.Envelope, 0, (len(events)+size-1)/size)
	for start := 0; start < len(events); start += size {
		end := min(start+size, len(events))
		chunks = append(chunks, events[start:end])
	}
	return chunks
}

// TypeCounts counts the envelopes of each type.
func TypeCounts(events []model.Envelope) map[model.EventType]int {
	counts := make(map[model.EventType]int)
	for _, e := range events {
		counts[e.Type]++
	}
	return counts
}

// Send delivers events to every subscriber. Subscribers are served
// concurrently up to the configured limit; the chunks of one subscriber are
// sent in order. Failures are logged to log, or the dispatcher's logger when
// log is nil, and never retried.
func (d *Dispatcher) Send(ctx context.Context, log *slog.Logger, subs []subscriber.Subscriber, events []model.Envelope) {
	if log == nil {
		log = d.log
	}
	if len(events) == 0 {
		log.Debug("payload empty, skipping delivery")
		return
	}

	var g errgroup.Group
	g.SetLimit(d.opts.Concurrency)
	for i, sub := range subs {
		g.Go(func() error {
			d.deliver(ctx, log, i+1, len(subs), sub, events)
			return nil
		})
	}
	_ = g.Wait()
}

func (d *Dispatcher) deliver(ctx context.Context, log *slog.Logger, num, total int, sub subscriber.Subscriber, events []model.Envelope) {
	payload := filter.Select(events, sub.Types)
	if len(payload) == 0 {
		log.Debug("payload empty for subscriber", "url", sub.URL, "types", sub.Types)
		return
	}

	chunks := Chunk(payload, d.opts.ChunkSize)
	for j, chunk := range chunks {
		if ctx.Err() != nil {
			return
		}

		err := d.post(ctx, sub.URL, chunk)
		var statusErr *StatusError
		switch {
		case err == nil:
			d.metrics.Delivery(metrics.ResultOK)
			log.Info("sent payload to webhook",
				"progress", progress(num, total, j+1, len(chunks)),
				"stats", TypeCounts(chunk))
		case errors.As(err, &statusErr):
			d.metrics.Delivery(metrics.ResultStatus)
			log.Warn("webhook returned status other than 200 OK", "url", sub.URL, "status", statusErr.Code)
		default:
			d.metrics.Delivery(metrics.ResultError)
			log.Warn("send webhook", "url", sub.URL, "error", err)
		}
	}
}

func (d *Dispatcher) post(ctx context.Context, url string, chunk []model.Envelope) error {
	body, err := json.Marshal(chunk)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "WebhookFeed/1.0")

	resp, err := d.client.Do(req)
	if err != nil {
		return fmt.Errorf("http post: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64*1024))

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Code: resp.StatusCode}
	}
	return nil
}

// progress renders "[wh i/n] [pl j/m]", leaving out a counter whose total is 1.
func progress(wh, whTotal, pl, plTotal int) string {
	var b strings.Builder
	if whTotal > 1 {
		fmt.Fprintf(&b, "[wh %d/%d]", wh, whTotal)
	}
	if plTotal > 1 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		fmt.Fprintf(&b, "[pl %d/%d]", pl, plTotal)
	}
	return b.String()
}
