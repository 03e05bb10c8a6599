// Package forward exports delivery outcome events to Kafka so downstream
// consumers (SIEM, warehousing) can follow mail flow without scraping
// the dashboard API. Forwarding is optional; without brokers configured
// the rest of the service runs unchanged.
package forward

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/segmentio/kafka-go"

	"mailwatch/internal/config"
	"mailwatch/internal/logger"
	"mailwatch/internal/maillog"
	"mailwatch/internal/metrics"
)

// Event is one delivery outcome, keyed by queue id for partitioning.
type Event struct {
	QueueID   string    `json:"queue_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Status    string    `json:"status"`
	Detail    string    `json:"detail"`
	Timestamp time.Time `json:"timestamp"`
}

// Forwarder batches events onto a Kafka topic. Each cache rebuild hands
// it the full transaction set; only new or changed outcomes are
// published, the rest are filtered out against what was already sent.
type Forwarder struct {
	writer       *kafka.Writer
	events       chan Event
	batchSize    int
	batchTimeout time.Duration

	mu   sync.Mutex
	sent map[string]string // queue id -> last published status

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New returns nil when no brokers are configured; callers treat a nil
// Forwarder as disabled.
func New(cfg config.ForwardConfig) *Forwarder {
	if len(cfg.Brokers) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Forwarder{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(cfg.Brokers...),
			Topic:        cfg.Topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
			Compression:  kafka.Snappy,
		},
		events:       make(chan Event, cfg.QueueSize),
		batchSize:    cfg.BatchSize,
		batchTimeout: cfg.BatchTimeout,
		sent:         make(map[string]string),
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start launches the publishing worker.
func (f *Forwarder) Start() {
	if f == nil {
		return
	}
	log := logger.WithComponent("forward")
	log.Info().Str("topic", f.writer.Topic).Msg("delivery event forwarding enabled")

	f.wg.Add(1)
	go f.worker()
}

// Stop flushes the queue and closes the writer.
func (f *Forwarder) Stop() {
	if f == nil {
		return
	}
	f.cancel()
	f.wg.Wait()
	if err := f.writer.Close(); err != nil {
		log := logger.WithComponent("forward")
		log.Error().Err(err).Msg("writer close error")
	}
}

// Publish enqueues the status-bearing transactions that changed since
// the last pass. Never blocks: events beyond the queue capacity are
// dropped and counted.
func (f *Forwarder) Publish(txs []*maillog.Transaction) {
	if f == nil {
		return
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	for _, tx := range txs {
		if tx.Status == "info" || f.sent[tx.ID] == tx.Status {
			continue
		}

		ev := Event{
			QueueID:   tx.ID,
			From:      tx.From,
			To:        tx.To,
			Status:    tx.Status,
			Detail:    tx.Detail,
			Timestamp: tx.Timestamp,
		}

		select {
		case f.events <- ev:
			f.sent[tx.ID] = tx.Status
		default:
			metrics.ForwardDropped.Inc()
		}
	}
}

func (f *Forwarder) worker() {
	defer f.wg.Done()

	log := logger.WithComponent("forward")
	batch := make([]Event, 0, f.batchSize)
	timer := time.NewTimer(f.batchTimeout)
	defer timer.Stop()

	flush := func() {
		if len(batch) > 0 {
			f.publishBatch(log, batch)
			batch = batch[:0]
		}
	}

	for {
		select {
		case <-f.ctx.Done():
			// Drain whatever is already queued before exiting.
			for {
				select {
				case ev := <-f.events:
					batch = append(batch, ev)
					if len(batch) >= f.batchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}

		case ev := <-f.events:
			batch = append(batch, ev)
			if len(batch) >= f.batchSize {
				flush()
				timer.Reset(f.batchTimeout)
			}

		case <-timer.C:
			flush()
			timer.Reset(f.batchTimeout)
		}
	}
}

func (f *Forwarder) publishBatch(log zerolog.Logger, batch []Event) {
	msgs := make([]kafka.Message, 0, len(batch))
	for _, ev := range batch {
		value, err := json.Marshal(ev)
		if err != nil {
			continue
		}
		msgs = append(msgs, kafka.Message{
			Key:   []byte(ev.QueueID),
			Value: value,
		})
	}

	start := time.Now()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	err := f.writer.WriteMessages(ctx, msgs...)
	metrics.ForwardPublishDuration.Observe(time.Since(start).Seconds())

	if err != nil {
		log.Error().Err(err).Int("batch_size", len(msgs)).Msg("failed to publish delivery events")
		metrics.ForwardPublished.WithLabelValues("failed").Add(float64(len(msgs)))
		return
	}

	log.Debug().Int("batch_size", len(msgs)).Msg("delivery events published")
	metrics.ForwardPublished.WithLabelValues("success").Add(float64(len(msgs)))
}
