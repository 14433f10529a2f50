package publish

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/avicente/cardholder/internal/common"
	"github.com/avicente/cardholder/internal/logging"
	"github.com/avicente/cardholder/internal/server/models"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
)

// SQSAPI is the slice of the SQS client used here, extracted for tests.
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
}

// SQSPublisher sends card requests and notifications to their queues.
type SQSPublisher struct {
	client           SQSAPI
	cardQueueURL     string
	notificationsURL string
	logger           logging.Logger
}

func NewSQSPublisher(client SQSAPI, cardQueueURL, notificationsURL string, logger logging.Logger) *SQSPublisher {
	return &SQSPublisher{
		client:           client,
		cardQueueURL:     cardQueueURL,
		notificationsURL: notificationsURL,
		logger:           logger,
	}
}

type cardRequestMessage struct {
	UserID  string `json:"userId"`
	Request string `json:"request"`
}

func (p *SQSPublisher) PublishCardRequest(ctx context.Context, identity, kind string) error {
	if p.cardQueueURL == "" {
		return fmt.Errorf("%w: card request queue not configured", common.ErrorDependency)
	}

	body, err := json.Marshal(cardRequestMessage{UserID: identity, Request: kind})
	if err != nil {
		return fmt.Errorf("marshalling card request: %w", err)
	}

	_, err = p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.cardQueueURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("%w: sending card request: %v", common.ErrorDependency, err)
	}
	return nil
}

func (p *SQSPublisher) PublishNotification(ctx context.Context, event *models.NotificationEvent) error {
	if p.notificationsURL == "" {
		p.logger.Warn(ctx, "notifications queue not configured, skipping", "type", event.Type)
		return nil
	}

	payload := map[string]string{
		"userId":  event.Identity,
		"type":    event.Type,
		"message": event.Message,
	}
	for k, v := range event.Extra {
		payload[k] = v
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshalling notification: %w", err)
	}

	out, err := p.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(p.notificationsURL),
		MessageBody: aws.String(string(body)),
	})
	if err != nil {
		return fmt.Errorf("%w: sending notification: %v", common.ErrorDependency, err)
	}

	p.logger.Debug(ctx, "notification published", "type", event.Type, "message_id", aws.ToString(out.MessageId))
	return nil
}
