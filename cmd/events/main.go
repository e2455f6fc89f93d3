// cmd/events/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/streadway/amqp"

	"github.com/javajoker/catalog-backend/internal/config"
	"github.com/javajoker/catalog-backend/internal/services"
	"github.com/javajoker/catalog-backend/pkg/rabbitmq"
)

// events follows the product event queue and logs every lifecycle change.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.WithError(err).Fatal("Failed to load configuration")
	}
	logrus.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	logrus.SetOutput(os.Stdout)

	if cfg.RabbitMQ.URL == "" {
		logrus.Fatal("RABBITMQ_URL is required")
	}

	mq, err := rabbitmq.NewClient(rabbitmq.Config{URL: cfg.RabbitMQ.URL, Queue: cfg.RabbitMQ.Queue})
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to RabbitMQ")
	}
	defer mq.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mq.Consume(ctx, logEvent); err != nil {
		logrus.WithError(err).Error("Failed to start consumer")
		return
	}
	logrus.WithField("queue", cfg.RabbitMQ.Queue).Info("Following product events")

	<-ctx.Done()
}

func logEvent(d amqp.Delivery) error {
	event, err := services.DecodeProductEvent(d.Type, d.Body)
	if err != nil {
		// dropped, a requeued malformed message would come straight back
		logrus.WithError(err).WithField("message_id", d.MessageId).Warn("Skipping product event")
		return nil
	}

	logrus.WithFields(logrus.Fields{
		"event":       event.Type,
		"product_id":  event.ProductID,
		"sku":         event.SKU,
		"is_approved": event.IsApproved,
		"occurred_at": event.OccurredAt,
	}).Info("Product event")
	return nil
}
