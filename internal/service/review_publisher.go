package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const reviewStreamMaxLen = 10000

// ReviewEvent announces a flagged verification that needs a human reviewer.
type ReviewEvent struct {
	SubmissionID    string    `json:"submission_id"`
	TaskID          string    `json:"task_id"`
	UserID          string    `json:"user_id"`
	Score           int       `json:"score"`
	FraudIndicators []string  `json:"fraud_indicators"`
	Notes           string    `json:"notes"`
	VerifiedAt      time.Time `json:"verified_at"`
}

// ReviewPublisher fans flagged verifications out to reviewer queues.
type ReviewPublisher interface {
	PublishFlagged(ctx context.Context, event ReviewEvent) error
}

type reviewPublisher struct {
	redis       *redis.Client
	redisStream string
	nats        *nats.Conn
	natsSubject string
	logger      zerolog.Logger
}

// NewReviewPublisher publishes to "<channelBase>:reviews" on Redis and
// "<channelBase>.reviews" on NATS. Either transport may be nil.
func NewReviewPublisher(redisClient *redis.Client, natsConn *nats.Conn, channelBase string, logger zerolog.Logger) ReviewPublisher {
	stream := ""
	subject := ""
	if channelBase != "" {
		stream = channelBase + ":reviews"
		subject = strings.ReplaceAll(channelBase, ":", ".") + ".reviews"
	}

	return &reviewPublisher{
		redis:       redisClient,
		redisStream: stream,
		nats:        natsConn,
		natsSubject: subject,
		logger:      logger.With().Str("component", "review_publisher").Logger(),
	}
}

func (p *reviewPublisher) PublishFlagged(ctx context.Context, event ReviewEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	var errs []error
	if p.redis != nil && p.redisStream != "" {
		err := p.redis.XAdd(ctx, &redis.XAddArgs{
			Stream: p.redisStream,
			MaxLen: reviewStreamMaxLen,
			Approx: true,
			Values: map[string]interface{}{
				"submission_id": event.SubmissionID,
				"payload":       string(payload),
			},
		}).Err()
		if err != nil {
			errs = append(errs, err)
		}
	}

	if p.nats != nil && p.natsSubject != "" {
		if err := p.nats.Publish(p.natsSubject, payload); err != nil {
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	p.logger.Debug().Str("submission_id", event.SubmissionID).Msg("flagged submission queued for review")
	return nil
}
