// Package poller runs the change-feed loop: it reads rows changed since the
// checkpoint, transforms them and hands the envelopes to the dispatcher.
package poller

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"webhook_feed/internal/metrics"
	"webhook_feed/internal/model"
	"webhook_feed/internal/storage"
	"webhook_feed/internal/subscriber"
	"webhook_feed/internal/transform"
)

// lookback is the number of intervals before its start that the next cycle
// re-reads.
const lookback = 6

// Store opens read sessions on the change feed.
type Store interface {
	BeginRead(ctx context.Context) (storage.Reader, error)
}

// Sender delivers an envelope sequence to subscribers.
type Sender interface {
	Send(ctx context.Context, log *slog.Logger, subs []subscriber.Subscriber, events []model.Envelope)
}

// Options configures a Poller.
type Options struct {
	Interval time.Duration
	// StartTime is the initial checkpoint in unix seconds; 0 means now.
	StartTime int64
}

// Poller periodically collects changed rows and delivers them.
type Poller struct {
	store      Store
	tr         *transform.Transformer
	sender     Sender
	subs       []subscriber.Subscriber
	fetch      subscriber.FetchSet
	interval   time.Duration
	checkpoint int64
	now        func() time.Time
	metrics    *metrics.Collector
	log        *slog.Logger
}

// New creates a Poller.
func New(store Store, tr *transform.Transformer, sender Sender, subs *subscriber.Registry, opts Options,
	m *metrics.Collector, log *slog.Logger) *Poller {
	p := &Poller{
		store:    store,
		tr:       tr,
		sender:   sender,
		subs:     subs.Subscribers(),
		fetch:    subs.FetchSet(),
		interval: opts.Interval,
		now:      time.Now,
		metrics:  m,
		log:      log,
	}
	p.checkpoint = opts.StartTime
	if p.checkpoint == 0 {
		p.checkpoint = p.now().Unix()
	}
	return p
}

// Checkpoint returns the unix time the next cycle reads changes from.
func (p *Poller) Checkpoint() int64 {
	return p.checkpoint
}

// Run starts the poll loop, blocking until ctx is cancelled.
func (p *Poller) Run(ctx context.Context) {
	p.log.Info("starting webhook worker", "interval", p.interval, "subscribers", len(p.subs))

	timer := time.NewTimer(p.interval)
	defer timer.Stop()

	for {
		if ctx.Err() != nil {
			p.log.Info("stopping webhook worker")
			return
		}
		p.RunCycle(ctx)

		timer.Reset(p.interval)
		select {
		case <-ctx.Done():
			p.log.Info("stopping webhook worker")
			return
		case <-timer.C:
		}
	}
}

// RunCycle performs one fetch, transform and deliver pass and advances the
// checkpoint to the start of the lookback window.
func (p *Poller) RunCycle(ctx context.Context) {
	start := p.now()
	windowStart := start.Add(-lookback * p.interval).Unix()
	log := p.log.With("cycle", uuid.NewString())

	log.Debug("fetching data changed since", "checkpoint", p.checkpoint)
	events := p.collect(ctx, log)
	log.Debug("done fetching data", "count", len(events))

	p.sender.Send(ctx, log, p.subs, events)

	p.checkpoint = windowStart
	p.metrics.SetCheckpoint(windowStart)
	p.metrics.ObserveCycle(time.Since(start))
}

type step struct {
	kind model.EventType
	run  func(ctx context.Context, r storage.Reader, since int64) ([]model.Envelope, error)
}

// steps lists the per-kind fetches in delivery order.
func (p *Poller) steps() []step {
	return []step{
		{model.EventRaid, func(ctx context.Context, r storage.Reader, since int64) ([]model.Envelope, error) {
			rows, err := r.RaidsChangedSince(ctx, since)
			if err != nil {
				return nil, err
			}
			return p.tr.Raids(rows), nil
		}},
		{model.EventQuest, func(ctx context.Context, r storage.Reader, since int64) ([]model.Envelope, error) {
			rows, err := r.QuestsChangedSince(ctx, since)
			if err != nil {
				return nil, err
			}
			return p.tr.Quests(rows), nil
		}},
		{model.EventWeather, func(ctx context.Context, r storage.Reader, since int64) ([]model.Envelope, error) {
			rows, err := r.WeatherChangedSince(ctx, since)
			if err != nil {
				return nil, err
			}
			return p.tr.Weather(rows), nil
		}},
		{model.EventGym, func(ctx context.Context, r storage.Reader, since int64) ([]model.Envelope, error) {
			rows, err := r.GymsChangedSince(ctx, since)
			if err != nil {
				return nil, err
			}
			return p.tr.Gyms(rows), nil
		}},
		{model.EventPokestop, func(ctx context.Context, r storage.Reader, since int64) ([]model.Envelope, error) {
			rows, err := r.PokestopsChangedSince(ctx, since)
			if err != nil {
				return nil, err
			}
			return p.tr.Pokestops(rows), nil
		}},
		{model.EventPokemon, func(ctx context.Context, r storage.Reader, since int64) ([]model.Envelope, error) {
			rows, err := r.PokemonChangedSince(ctx, since, p.fetch.SeenTypes)
			if err != nil {
				return nil, err
			}
			return p.tr.Pokemon(rows), nil
		}},
	}
}

func (p *Poller) collect(ctx context.Context, log *slog.Logger) []model.Envelope {
	reader, err := p.store.BeginRead(ctx)
	if err != nil {
		log.Error("open read session", "error", err)
		return nil
	}
	defer func() {
		if err := reader.Close(); err != nil {
			log.Error("close read session", "error", err)
		}
	}()

	var events []model.Envelope
	for _, s := range p.steps() {
		if !p.fetch.Has(s.kind) {
			continue
		}
		if ctx.Err() != nil {
			break
		}
		envs, err := s.run(ctx, reader, p.checkpoint)
		if err != nil {
			log.Error("fetch changes", "kind", s.kind, "error", err)
			p.metrics.FetchError(string(s.kind))
			continue
		}
		log.Debug("transformed changes", "kind", s.kind, "count", len(envs))
		p.metrics.AddEvents(string(s.kind), len(envs))
		events = append(events, envs...)
	}
	return events
}
