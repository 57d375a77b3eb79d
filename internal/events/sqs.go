package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/nimasrn/marketplace/pkg/logger"
)

// SQSAPI is the part of *sqs.Client the publisher and source use.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
}

// NewSQSClient loads the default AWS credential chain. A non-empty endpoint
// points the client at LocalStack or another compatible service.
func NewSQSClient(ctx context.Context, region, endpoint string) (*sqs.Client, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	if endpoint != "" {
		cfg.BaseEndpoint = aws.String(endpoint)
	}
	return sqs.NewFromConfig(cfg), nil
}

type SQSPublisher struct {
	client   SQSAPI
	queueURL string
}

func NewSQSPublisher(client SQSAPI, queueURL string) *SQSPublisher {
	return &SQSPublisher{client: client, queueURL: queueURL}
}

func (p *SQSPublisher) Publish(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.queueURL),
		MessageBody: aws.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"type": {DataType: aws.String("String"), StringValue: aws.String(string(e.Type))},
		},
	})
	if err != nil {
		return fmt.Errorf("send message to SQS: %w", err)
	}
	return nil
}

// SQSSource long-polls a queue and hands each decoded event to a handler.
// Messages are deleted only after the handler succeeds; undecodable bodies
// are deleted so they do not loop forever.
type SQSSource struct {
	client      SQSAPI
	queueURL    string
	maxMessages int32
	waitSeconds int32
	log         logger.Logger
}

func NewSQSSource(client SQSAPI, queueURL string) *SQSSource {
	return &SQSSource{
		client:      client,
		queueURL:    queueURL,
		maxMessages: 10,
		waitSeconds: 20,
		log:         logger.With("component", "sqs-source"),
	}
}

// Run blocks until ctx is cancelled.
func (s *SQSSource) Run(ctx context.Context, handle func(ctx context.Context, e Event) error) error {
	s.log.Info("starting SQS source", "queueURL", s.queueURL)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := s.Poll(ctx, handle); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("receive messages failed", "error", err)
		}
	}
}

// Poll performs a single receive round.
func (s *SQSSource) Poll(ctx context.Context, handle func(ctx context.Context, e Event) error) error {
	out, err := s.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(s.queueURL),
		MaxNumberOfMessages: s.maxMessages,
		WaitTimeSeconds:     s.waitSeconds,
	})
	if err != nil {
		return fmt.Errorf("receive messages: %w", err)
	}

	for _, m := range out.Messages {
		if m.Body == nil {
			s.delete(ctx, m)
			continue
		}
		ev, err := Decode([]byte(*m.Body))
		if err != nil {
			s.log.Warn("dropping undecodable message", "error", err)
			s.delete(ctx, m)
			continue
		}
		if err := handle(ctx, ev); err != nil {
			s.log.Warn("handler failed, message will be redelivered", "id", ev.ID, "error", err)
			continue
		}
		s.delete(ctx, m)
	}
	return nil
}

func (s *SQSSource) delete(ctx context.Context, m types.Message) {
	_, err := s.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(s.queueURL),
		ReceiptHandle: m.ReceiptHandle,
	})
	if err != nil {
		s.log.Error("delete message failed", "error", err)
	}
}
