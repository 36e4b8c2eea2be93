package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"agents-backend/internal/bootstrap"
	"agents-backend/internal/shared/config"
	"agents-backend/internal/shared/mq"
	"agents-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	if cfg.AMQPURL == "" {
		log.Fatal("AMQP_URL is required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap: %v", err)
	}
	defer app.Close()

	consumer, err := mq.DialConsumer(cfg.AMQPURL, mq.JobQueue, mq.RoutingKeyRequested)
	if err != nil {
		log.Fatalf("dial consumer: %v", err)
	}
	defer consumer.Close()

	log.Printf("worker started queue=%s", mq.JobQueue)

	err = consumer.Consume(ctx, func(ctx context.Context, body []byte) error {
		var job mq.Job
		if err := json.Unmarshal(body, &job); err != nil || job.AssessmentID == "" {
			// Malformed payloads can never succeed; drop instead of requeueing.
			telemetry.Error("worker.assessment.decode_failed", map[string]any{
				"body_len": len(body),
			})
			return nil
		}
		telemetry.Info("worker.assessment.received", map[string]any{
			"assessment_id": job.AssessmentID,
		})
		if err := app.AssessmentsService.Process(ctx, job.AssessmentID); err != nil {
			telemetry.Error("worker.assessment.failed", map[string]any{
				"assessment_id": job.AssessmentID,
				"error":         err.Error(),
			})
			return err
		}
		telemetry.Info("worker.assessment.completed", map[string]any{
			"assessment_id": job.AssessmentID,
		})
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("consume: %v", err)
	}
	log.Printf("worker stopped")
}
