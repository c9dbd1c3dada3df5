package notify

import (
	"context"
	"sync"
	"time"

	"github.com/jobportal/jobportal-api/pkg/logger"
	"github.com/jobportal/jobportal-api/pkg/metrics"
)

// Dispatcher delivers emails off the request path. Enqueue never blocks and
// never reports failure to the caller; delivery problems are logged and
// counted. A full queue drops the message.
type Dispatcher struct {
	mailer  Mailer
	queue   chan task
	timeout time.Duration
	wg      sync.WaitGroup
	once    sync.Once
}

type task struct {
	kind string
	msg  Message
}

func NewDispatcher(m Mailer, queueSize int, timeout time.Duration) *Dispatcher {
	if queueSize <= 0 {
		queueSize = 1
	}
	d := &Dispatcher{
		mailer:  m,
		queue:   make(chan task, queueSize),
		timeout: timeout,
	}
	d.wg.Add(1)
	go d.run()
	return d
}

// Enqueue hands a message to the background worker. kind labels the metric
// series ("job-posted", "status-changed", "feedback").
func (d *Dispatcher) Enqueue(kind string, msg Message) {
	select {
	case d.queue <- task{kind: kind, msg: msg}:
	default:
		metrics.NotifyDropped.Inc()
		logger.Warnf("notify: queue full, dropping %s mail to %v", kind, msg.To)
	}
}

func (d *Dispatcher) run() {
	defer d.wg.Done()
	for t := range d.queue {
		// Delivery outlives any request, so each attempt gets its own
		// deadline off the background context.
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		err := d.mailer.Send(ctx, t.msg)
		cancel()
		if err != nil {
			metrics.NotifyFailed.WithLabelValues(t.kind).Inc()
			logger.Errorf("notify: %s mail failed: %v", t.kind, err)
			continue
		}
		metrics.NotifySent.WithLabelValues(t.kind).Inc()
		logger.Debugf("notify: %s mail sent", t.kind)
	}
}

// Close stops accepting work and waits for queued messages to drain.
func (d *Dispatcher) Close() {
	d.once.Do(func() {
		close(d.queue)
	})
	d.wg.Wait()
}
