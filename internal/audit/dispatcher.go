package audit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"skinmuse/internal/models"
)

type ActivityStore interface {
	Insert(ctx context.Context, userID *uuid.UUID, action, ip string) error
}

type SecuritySink interface {
	Write(ev models.SecurityEvent) error
}

type Alerter interface {
	Alert(ctx context.Context, ev models.SecurityEvent) error
}

type job struct {
	ctx      context.Context
	activity *activityJob
	security *models.SecurityEvent
}

type activityJob struct {
	userID *uuid.UUID
	action string
	ip     string
}

// Dispatcher: очередь с одним воркером. Переполнение: событие отбрасывается с warn.
type Dispatcher struct {
	activity   ActivityStore
	security   SecuritySink
	alerter    Alerter
	alertTypes map[string]struct{}
	log        zerolog.Logger
	now        func() time.Time

	jobs      chan job
	wg        sync.WaitGroup
	closeOnce sync.Once
	mu        sync.RWMutex
	closed    bool
}

type Option func(*Dispatcher)

// WithAlerter: события перечисленных типов дополнительно уходят в alerter.
func WithAlerter(a Alerter, types ...string) Option {
	return func(d *Dispatcher) {
		d.alerter = a
		for _, t := range types {
			d.alertTypes[t] = struct{}{}
		}
	}
}

func NewDispatcher(activity ActivityStore, security SecuritySink, queueSize int, log zerolog.Logger, opts ...Option) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 256
	}
	d := &Dispatcher{
		activity:   activity,
		security:   security,
		alertTypes: map[string]struct{}{},
		log:        log,
		now:        time.Now,
		jobs:       make(chan job, queueSize),
	}
	for _, o := range opts {
		o(d)
	}
	d.wg.Add(1)
	go d.run()
	return d
}

func (d *Dispatcher) Activity(ctx context.Context, userID *uuid.UUID, action string) {
	d.enqueue(job{
		ctx:      context.WithoutCancel(ctx),
		activity: &activityJob{userID: userID, action: action, ip: ClientIP(ctx)},
	})
}

func (d *Dispatcher) Security(ctx context.Context, eventType, message string, meta map[string]any) {
	m := make(map[string]any, len(meta)+2)
	for k, v := range meta {
		m[k] = v
	}
	meta = m
	if ip := ClientIP(ctx); ip != "" {
		meta["ip"] = ip
	}
	if rid := RequestID(ctx); rid != "" {
		meta["request_id"] = rid
	}
	d.enqueue(job{
		ctx:      context.WithoutCancel(ctx),
		security: &models.SecurityEvent{Timestamp: d.now().UTC(), Type: eventType, Message: message, Meta: meta},
	})
}

// Close дожидается обработки очереди или отмены ctx.
func (d *Dispatcher) Close(ctx context.Context) error {
	d.closeOnce.Do(func() {
		d.mu.Lock()
		d.closed = true
		close(d.jobs)
		d.mu.Unlock()
	})
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (d *Dispatcher) enqueue(j job) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed {
		return
	}
	select {
	case d.jobs <- j:
	default:
		d.log.Warn().Msg("[audit] queue full, event dropped")
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for j := range d.jobs {
		d.handle(j)
	}
}

func (d *Dispatcher) handle(j job) {
	ctx, cancel := context.WithTimeout(j.ctx, 5*time.Second)
	defer cancel()

	if a := j.activity; a != nil && d.activity != nil {
		if err := d.activity.Insert(ctx, a.userID, a.action, a.ip); err != nil {
			d.log.Warn().Err(err).Str("action", a.action).Msg("[audit] activity log write failed")
		}
	}
	if ev := j.security; ev != nil {
		if d.security != nil {
			if err := d.security.Write(*ev); err != nil {
				d.log.Warn().Err(err).Str("type", ev.Type).Msg("[audit] security log write failed")
			}
		}
		if _, ok := d.alertTypes[ev.Type]; ok && d.alerter != nil {
			if err := d.alerter.Alert(ctx, *ev); err != nil {
				d.log.Warn().Err(err).Str("type", ev.Type).Msg("[audit] alert failed")
			}
		}
	}
}
