// Package events consumes payment gateway notifications from SQS.
package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/rs/zerolog"

	"github.com/naveenchoudhary1234/ParkingSystem/internal/domain"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/metrics"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/repository"
	"github.com/naveenchoudhary1234/ParkingSystem/internal/service"
)

const (
	maxMessages       = 10
	waitTimeSeconds   = 20
	visibilityTimeout = 60
	retryDelay        = 5 * time.Second
)

// SQSAPI is the subset of *sqs.Client the consumer uses.
type SQSAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

type PaymentHandler interface {
	HandlePaymentEvent(ctx context.Context, ev domain.PaymentEvent) error
}

type SQSConsumer struct {
	client   SQSAPI
	queueURL string
	handler  PaymentHandler
	log      *zerolog.Logger
}

func NewSQSConsumer(client SQSAPI, queueURL string, handler PaymentHandler, log *zerolog.Logger) *SQSConsumer {
	if log == nil {
		nop := zerolog.Nop()
		log = &nop
	}
	l := log.With().Str("component", "sqs_consumer").Str("queue", queueURL).Logger()
	return &SQSConsumer{client: client, queueURL: queueURL, handler: handler, log: &l}
}

// Start long-polls the queue until ctx is cancelled.
func (c *SQSConsumer) Start(ctx context.Context) {
	c.log.Info().Msg("Listening for payment events")
	for {
		select {
		case <-ctx.Done():
			c.log.Info().Msg("Payment consumer stopped")
			return
		default:
		}

		if err := c.poll(ctx); err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.log.Warn().Err(err).Dur("retry_in", retryDelay).Msg("Receive failed")
			select {
			case <-time.After(retryDelay):
			case <-ctx.Done():
			}
		}
	}
}

func (c *SQSConsumer) poll(ctx context.Context) error {
	out, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.queueURL),
		MaxNumberOfMessages: maxMessages,
		WaitTimeSeconds:     waitTimeSeconds,
		VisibilityTimeout:   visibilityTimeout,
	})
	if err != nil {
		return fmt.Errorf("receive message: %w", err)
	}
	if len(out.Messages) > 0 {
		c.log.Debug().Int("count", len(out.Messages)).Msg("Received messages")
	}
	for _, m := range out.Messages {
		c.handle(ctx, m)
	}
	return nil
}

// handle processes one message. Undecodable messages and events that can never
// succeed are deleted; other failures are redelivered after the visibility timeout.
func (c *SQSConsumer) handle(ctx context.Context, m types.Message) {
	log := c.log.With().Str("message_id", aws.ToString(m.MessageId)).Logger()

	if m.Body == nil || *m.Body == "" {
		log.Warn().Msg("Empty message body, deleting")
		metrics.IncPaymentEvent("malformed")
		c.delete(ctx, m.ReceiptHandle, &log)
		return
	}

	var ev domain.PaymentEvent
	if err := json.Unmarshal([]byte(*m.Body), &ev); err != nil || ev.BookingID <= 0 {
		log.Warn().Err(err).Str("body", *m.Body).Msg("Malformed payment event, deleting")
		metrics.IncPaymentEvent("malformed")
		c.delete(ctx, m.ReceiptHandle, &log)
		return
	}

	if err := c.handler.HandlePaymentEvent(log.WithContext(ctx), ev); err != nil {
		if permanent(err) {
			log.Warn().Err(err).Int("booking_id", ev.BookingID).Msg("Payment event rejected, deleting")
			metrics.IncPaymentEvent("rejected")
			c.delete(ctx, m.ReceiptHandle, &log)
			return
		}
		log.Error().Err(err).Int("booking_id", ev.BookingID).Str("type", ev.Type).Msg("Payment event failed, will retry")
		metrics.IncPaymentEvent("failed")
		return
	}
	metrics.IncPaymentEvent("processed")
	log.Info().Int("booking_id", ev.BookingID).Str("type", ev.Type).Msg("Payment event processed")
	c.delete(ctx, m.ReceiptHandle, &log)
}

func (c *SQSConsumer) delete(ctx context.Context, receiptHandle *string, log *zerolog.Logger) {
	if receiptHandle == nil {
		log.Warn().Msg("Missing receipt handle, cannot delete message")
		return
	}
	_, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.queueURL),
		ReceiptHandle: receiptHandle,
	})
	if err != nil {
		log.Warn().Err(err).Msg("Delete message failed")
	}
}

func permanent(err error) bool {
	return errors.Is(err, repository.ErrNotFound) || errors.Is(err, service.ErrInvalidInput)
}
