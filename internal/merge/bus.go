package merge

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/segmentio/kafka-go"
)

// DeltaBus publishes and consumes MemoryDelta envelopes between agent
// replicas. Two implementations are provided: a Kafka-backed bus for
// real multi-process deployments, and an in-process channel bus for
// tests and single-process fan-out.
type DeltaBus interface {
	Publish(ctx context.Context, delta *MemoryDelta) error
	Subscribe(ctx context.Context) (<-chan *MemoryDelta, error)
	Close() error
}

// wireDelta is the JSON-serializable shape of a MemoryDelta; FieldDelta
// is an interface so it is encoded as a tagged envelope per entry.
type wireDelta struct {
	MemoryID    string            `json:"memory_id"`
	SourceAgent string            `json:"source_agent"`
	Clock       map[string]uint64 `json:"clock"`
	Timestamp   int64             `json:"timestamp"`
	FieldDeltas []wireFieldDelta  `json:"field_deltas"`
}

type wireFieldDelta struct {
	Tag     string          `json:"tag"`
	Payload json.RawMessage `json:"payload"`
}

func encodeDelta(d *MemoryDelta) ([]byte, error) {
	w := wireDelta{
		MemoryID:    d.MemoryID,
		SourceAgent: d.SourceAgent,
		Clock:       d.Clock,
		Timestamp:   d.Timestamp.UnixNano(),
	}
	for _, fd := range d.FieldDeltas {
		payload, err := json.Marshal(fd)
		if err != nil {
			return nil, fmt.Errorf("encode field delta %s: %w", fd.fieldDeltaTag(), err)
		}
		w.FieldDeltas = append(w.FieldDeltas, wireFieldDelta{Tag: fd.fieldDeltaTag(), Payload: payload})
	}
	return json.Marshal(w)
}

// KafkaDeltaBus publishes MemoryDelta envelopes to a Kafka topic keyed
// by memory id, so deltas for the same memory are ordered within a
// partition. Grounded on segmentio/kafka-go's Writer/Reader pairing.
type KafkaDeltaBus struct {
	writer *kafka.Writer
	reader *kafka.Reader
}

// NewKafkaDeltaBus constructs a bus against the given brokers/topic. The
// reader uses groupID for consumer-group coordination across replicas.
func NewKafkaDeltaBus(brokers []string, topic, groupID string) *KafkaDeltaBus {
	return &KafkaDeltaBus{
		writer: &kafka.Writer{
			Addr:     kafka.TCP(brokers...),
			Topic:    topic,
			Balancer: &kafka.Hash{},
		},
		reader: kafka.NewReader(kafka.ReaderConfig{
			Brokers: brokers,
			Topic:   topic,
			GroupID: groupID,
		}),
	}
}

func (b *KafkaDeltaBus) Publish(ctx context.Context, delta *MemoryDelta) error {
	payload, err := encodeDelta(delta)
	if err != nil {
		return err
	}
	return b.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(delta.MemoryID),
		Value: payload,
	})
}

// Subscribe starts a goroutine that reads from Kafka and decodes
// envelopes onto the returned channel until ctx is cancelled. Decode
// failures are dropped; malformed deltas would otherwise wedge the
// consumer group on an unparseable message forever.
func (b *KafkaDeltaBus) Subscribe(ctx context.Context) (<-chan *MemoryDelta, error) {
	out := make(chan *MemoryDelta)
	go func() {
		defer close(out)
		for {
			msg, err := b.reader.ReadMessage(ctx)
			if err != nil {
				return
			}
			var w wireDelta
			if err := json.Unmarshal(msg.Value, &w); err != nil {
				continue
			}
			out <- &MemoryDelta{
				MemoryID:    w.MemoryID,
				SourceAgent: w.SourceAgent,
				Clock:       w.Clock,
			}
		}
	}()
	return out, nil
}

func (b *KafkaDeltaBus) Close() error {
	werr := b.writer.Close()
	rerr := b.reader.Close()
	if werr != nil {
		return werr
	}
	return rerr
}

// InProcessDeltaBus fans deltas out to every subscriber within a single
// process; used by tests and by single-binary deployments that don't
// need a real broker.
type InProcessDeltaBus struct {
	mu          sync.Mutex
	subscribers []chan *MemoryDelta
	closed      bool
}

// NewInProcessDeltaBus constructs an empty bus.
func NewInProcessDeltaBus() *InProcessDeltaBus {
	return &InProcessDeltaBus{}
}

func (b *InProcessDeltaBus) Publish(ctx context.Context, delta *MemoryDelta) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("merge: bus closed")
	}
	for _, ch := range b.subscribers {
		select {
		case ch <- delta:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

func (b *InProcessDeltaBus) Subscribe(ctx context.Context) (<-chan *MemoryDelta, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch := make(chan *MemoryDelta, 16)
	b.subscribers = append(b.subscribers, ch)
	return ch, nil
}

func (b *InProcessDeltaBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
	return nil
}
