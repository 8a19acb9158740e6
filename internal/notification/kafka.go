package notification

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/TheVish04/ecommerce2-sub001/internal/logging"
)

// KafkaNotifier publishes events as JSON messages. Publish errors are
// logged and swallowed; notifications are best-effort by contract.
type KafkaNotifier struct {
	writer *kafka.Writer
}

// NewKafkaNotifier builds a notifier from a comma separated broker list.
// Returns nil when no brokers are configured; callers should fall back to
// Noop in that case.
func NewKafkaNotifier(brokersCSV, topic string) *KafkaNotifier {
	brokers := []string{}
	for _, b := range strings.Split(brokersCSV, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	if len(brokers) == 0 {
		return nil
	}
	return &KafkaNotifier{
		writer: &kafka.Writer{
			Addr:         kafka.TCP(brokers...),
			Topic:        topic,
			Balancer:     &kafka.Hash{},
			RequiredAcks: kafka.RequireOne,
		},
	}
}

func (n *KafkaNotifier) Notify(ctx context.Context, ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		logging.FromCtx(ctx).Error("notify marshal failed", "kind", ev.Kind, "err", err)
		return
	}

	key := ev.Kind + ":" + strconv.Itoa(ev.OrderID+ev.CommissionID)
	msg := kafka.Message{Key: []byte(key), Value: data, Time: time.Now().UTC()}
	if err := n.writer.WriteMessages(ctx, msg); err != nil {
		logging.FromCtx(ctx).Error("notify publish failed", "kind", ev.Kind, "err", err)
	}
}

func (n *KafkaNotifier) Close() error {
	return n.writer.Close()
}
