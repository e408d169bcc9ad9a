package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dakshgoel/schedulr/config"
	"github.com/dakshgoel/schedulr/internal/kafka"
	kafkaGo "github.com/segmentio/kafka-go"
)

// The worker tails the meeting-events topic as an audit log. Emails and
// calendar mutations happen inline in the booking actions, nothing here
// mutates booking state.
func main() {
	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config.yaml"
	}

	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	consumer := kafka.NewConsumer(cfg.Kafka.Brokers, cfg.Kafka.GroupID, cfg.Kafka.MeetingEventsTopic)
	defer consumer.Close()

	if err := consumer.Consume(ctx, func(ctx context.Context, msg kafkaGo.Message) error {
		var event kafka.MeetingEvent
		if err := json.Unmarshal(msg.Value, &event); err != nil {
			log.Printf("decode event error: %v", err)
			return nil
		}
		log.Printf("meeting event: type=%s meeting=%s event=%s attendee=%s start=%s",
			event.Type, event.MeetingID, event.EventID, event.Email, event.StartTime)
		return nil
	}); err != nil {
		log.Printf("consumer stopped: %v", err)
	}
}
