package queue

import (
	"context"
	"hash/fnv"

	"github.com/rs/zerolog"

	"github.com/threadly/threadly-api/internal/core/ports"
)

const (
	defaultWorkers = 4
	channelBuffer  = 128
)

// Sink receives fully formed chat updates; in production it is the realtime
// hub.
type Sink interface {
	Deliver(update ports.ChatUpdate)
}

// Dispatcher routes chat updates to a fixed set of workers using consistent
// hashing on the room id, guaranteeing per-chat event ordering while keeping
// HTTP handlers free of fan-out latency.
type Dispatcher struct {
	workers []chan ports.ChatUpdate
	sink    Sink
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, sink Sink, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.ChatUpdate, numWorkers),
		sink:    sink,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ChatUpdate, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends an update to the worker responsible for its room. The call
// is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(update ports.ChatUpdate) {
	d.workers[d.shardIndex(update.Room)] <- update
}

// shardIndex maps a room id deterministically to a worker index.
func (d *Dispatcher) shardIndex(room string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(room))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ChatUpdate) {
	for {
		select {
		case <-ctx.Done():
			return
		case update, ok := <-ch:
			if !ok {
				return
			}
			d.sink.Deliver(update)
			d.log.Debug().
				Str("room", update.Room).
				Str("type", update.Type).
				Int("worker_id", id).
				Msg("chat update dispatched")
		}
	}
}
