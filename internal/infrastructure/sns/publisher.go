package sns

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/dultive/dultive-api/internal/config"
)

// Publisher pushes app events (post liked, interaction updated) to an SNS
// topic consumed by the mobile push pipeline.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Event types pushed to the topic.
const (
	EventPostLiked          = "post_liked"
	EventInteractionUpdated = "interaction_updated"
)

// Event is the push-notification payload.
type Event struct {
	Type        string `json:"type"` // "post_liked" | "interaction_updated"
	RecipientID string `json:"recipient_id"`
	PostID      string `json:"post_id,omitempty"`
	Message     string `json:"message"`
}

type publisher struct {
	client   *sns.Client
	topicARN string
	timeout  time.Duration
}

func NewPublisher(cfg *config.Config) (Publisher, error) {
	if cfg.SNSTopicARN == "" {
		slog.Warn("SNS topic not configured, push events will be logged instead of published")
		return &logPublisher{}, nil
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWSRegion),
	)
	if err != nil {
		return nil, err
	}
	return &publisher{
		client:   sns.NewFromConfig(awsCfg),
		topicARN: cfg.SNSTopicARN,
		timeout:  cfg.NotifierTimeout,
	}, nil
}

// Publish caps each delivery with the notifier timeout so a slow topic never
// stalls the request path it is called from.
func (p *publisher) Publish(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()
	msg := string(body)
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  &msg,
	})
	return err
}

type logPublisher struct{}

func (l *logPublisher) Publish(_ context.Context, event Event) error {
	slog.Info("simulated push event", "type", event.Type, "recipient", event.RecipientID)
	return nil
}
