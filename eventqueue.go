package appconfig

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/configflow/go-client-sdk/api"
	"github.com/configflow/go-client-sdk/util"
)

var ErrQueueFull = fmt.Errorf("max event queue size reached")

// EventQueue buffers per-evaluation telemetry events and hands them to
// the host's flush handler in batches. Queueing never blocks the
// evaluation hot path: when the buffer is full, events are dropped and
// counted, not waited on.
type EventQueue struct {
	options   *Options
	queue     chan api.EvaluationEvent
	flushStop chan bool
	ticker    *time.Ticker
	dropped   atomic.Int64
	// unix nanos of the last queue-full warning; drops happen on the
	// callers' goroutines so the rate limit must be atomic too
	droppedLog atomic.Int64
}

func newEventQueue(options *Options) *EventQueue {
	e := &EventQueue{
		options:   options,
		queue:     make(chan api.EvaluationEvent, options.MaxEventQueueSize),
		flushStop: make(chan bool, 2),
	}
	if options.EvaluationEventHandler != nil {
		e.ticker = time.NewTicker(options.EventFlushInterval)
		go e.flushLoop()
	}
	return e
}

// QueueEvent records one evaluation result. It assigns the event id and
// timestamp so callers only describe what was evaluated.
func (e *EventQueue) QueueEvent(event api.EvaluationEvent) error {
	if e.options.EvaluationEventHandler == nil {
		return nil
	}
	event.Id = uuid.New().String()
	event.ClientDate = time.Now()
	select {
	case e.queue <- event:
		return nil
	default:
		dropped := e.dropped.Add(1)
		last := e.droppedLog.Load()
		if time.Since(time.Unix(0, last)) > time.Minute &&
			e.droppedLog.CompareAndSwap(last, time.Now().UnixNano()) {
			util.Warnf("Evaluation event queue full, %d events dropped", dropped)
		}
		return ErrQueueFull
	}
}

func (e *EventQueue) flushLoop() {
	for {
		select {
		case <-e.flushStop:
			e.ticker.Stop()
			return
		case <-e.ticker.C:
			e.FlushEvents()
		}
	}
}

// FlushEvents drains up to FlushEventQueueSize queued events into one
// payload and delivers it to the handler. Delivery is non-blocking; a
// congested handler sheds the batch rather than stalling the queue.
func (e *EventQueue) FlushEvents() {
	events := make([]api.EvaluationEvent, 0, e.options.FlushEventQueueSize)
drain:
	for len(events) < e.options.FlushEventQueueSize {
		select {
		case event := <-e.queue:
			events = append(events, event)
		default:
			break drain
		}
	}
	if len(events) == 0 {
		return
	}
	payload := api.FlushPayload{
		PayloadId: uuid.New().String(),
		Events:    events,
	}
	select {
	case e.options.EvaluationEventHandler <- payload:
	default:
		util.Warnf("Evaluation event handler is not keeping up, dropping %d events", len(events))
	}
}

func (e *EventQueue) Close() {
	if e.options.EvaluationEventHandler == nil {
		return
	}
	e.flushStop <- true
	e.FlushEvents()
}
