package queue

import (
	"context"
	"encoding/json"
	"log/slog"

	"booking-reconciler/internal/pkg/config"
	"booking-reconciler/internal/pkg/errs"
	"booking-reconciler/internal/usecase/shared"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
)

// Message is the body published for every refund instruction. InstructionID
// lets the consumer drop redeliveries.
type Message struct {
	InstructionID      string `json:"instruction_id"`
	CancellationID     string `json:"cancellation_id"`
	BookingID          string `json:"booking_id"`
	Kind               string `json:"kind"`
	AmountCents        int64  `json:"amount_cents"`
	WalletPortionCents int64  `json:"wallet_portion_cents,omitempty"`
	CardPortionCents   int64  `json:"card_portion_cents,omitempty"`
	Attempt            int    `json:"attempt"`
}

func NewMessage(rec shared.InstructionRecord) Message {
	return Message{
		InstructionID:      rec.ID.String(),
		CancellationID:     rec.CancellationID.String(),
		BookingID:          rec.BookingID.String(),
		Kind:               rec.Instruction.Kind.String(),
		AmountCents:        rec.Instruction.Amount.Cents(),
		WalletPortionCents: rec.Instruction.WalletPortion.Cents(),
		CardPortionCents:   rec.Instruction.CardPortion.Cents(),
		Attempt:            rec.Attempts + 1,
	}
}

type sqsAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

type SQSPublisher struct {
	client   sqsAPI
	queueURL string
}

func NewSQSPublisher(client sqsAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

// NewPublisher returns an SQS publisher when a queue URL is configured and a
// log-only publisher otherwise.
func NewPublisher(ctx context.Context, cfg config.AWSConfig) (shared.InstructionPublisher, error) {
	if cfg.PaymentQueueURL == "" {
		slog.Warn("PAYMENT_INSTRUCTIONS_QUEUE_URL not set, refund instructions will only be logged")
		return LogPublisher{}, nil
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errs.Wrap(err, "failed to load AWS config")
	}
	client := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return NewSQSPublisher(client, cfg.PaymentQueueURL), nil
}

func (p *SQSPublisher) Publish(ctx context.Context, rec shared.InstructionRecord) error {
	msg := NewMessage(rec)
	body, err := json.Marshal(msg)
	if err != nil {
		return errs.Wrap(err, "failed to marshal refund instruction")
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"Kind": {
				StringValue: aws.String(msg.Kind),
				DataType:    aws.String("String"),
			},
			"BookingID": {
				StringValue: aws.String(msg.BookingID),
				DataType:    aws.String("String"),
			},
		},
	})
	if err != nil {
		return errs.Wrap(err, "failed to send refund instruction to SQS")
	}
	return nil
}

type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, rec shared.InstructionRecord) error {
	msg := NewMessage(rec)
	slog.Info("refund instruction",
		"instruction_id", msg.InstructionID,
		"booking_id", msg.BookingID,
		"kind", msg.Kind,
		"amount_cents", msg.AmountCents)
	return nil
}
