package eventbridge

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"userdir-backend/application/ports"
	"userdir-backend/domain/user"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

const source = "userdir.directory"

// Event detail types emitted by the directory.
const (
	DetailTypeUserCreated = "UserCreated"
	DetailTypeUserDeleted = "UserDeleted"
)

// Publisher implements the EventPublisher interface using AWS EventBridge.
type Publisher struct {
	client       *eventbridge.Client
	eventBusName string
	logger       *zap.Logger
}

// NewPublisher creates a new EventBridge publisher.
func NewPublisher(client *eventbridge.Client, eventBusName string, logger *zap.Logger) ports.EventPublisher {
	return &Publisher{
		client:       client,
		eventBusName: eventBusName,
		logger:       logger,
	}
}

// userCreatedDetail is the event payload for a created user. Credentials are
// never part of the payload.
type userCreatedDetail struct {
	UID       string   `json:"uid"`
	Username  string   `json:"username"`
	Roles     []string `json:"roles"`
	CreatedAt int64    `json:"createdAt"`
}

// userDeletedDetail is the event payload for a deleted user.
type userDeletedDetail struct {
	UID string `json:"uid"`
}

// PublishUserCreated emits a UserCreated event.
func (p *Publisher) PublishUserCreated(ctx context.Context, u *user.User) error {
	detail := userCreatedDetail{
		UID:       u.UID,
		Username:  u.Username,
		Roles:     u.Roles,
		CreatedAt: u.CreatedAt,
	}
	return p.publish(ctx, DetailTypeUserCreated, detail)
}

// PublishUserDeleted emits a UserDeleted event.
func (p *Publisher) PublishUserDeleted(ctx context.Context, uid string) error {
	return p.publish(ctx, DetailTypeUserDeleted, userDeletedDetail{UID: uid})
}

func (p *Publisher) publish(ctx context.Context, detailType string, detail interface{}) error {
	data, err := json.Marshal(detail)
	if err != nil {
		return fmt.Errorf("failed to marshal event detail: %w", err)
	}

	entry := types.PutEventsRequestEntry{
		EventBusName: aws.String(p.eventBusName),
		Source:       aws.String(source),
		DetailType:   aws.String(detailType),
		Detail:       aws.String(string(data)),
		Time:         aws.Time(time.Now()),
	}

	result, err := p.client.PutEvents(ctx, &eventbridge.PutEventsInput{
		Entries: []types.PutEventsRequestEntry{entry},
	})
	if err != nil {
		p.logger.Error("Failed to publish event",
			zap.String("detailType", detailType),
			zap.Error(err),
		)
		return err
	}

	if result.FailedEntryCount > 0 {
		for _, e := range result.Entries {
			if e.ErrorCode != nil {
				p.logger.Error("Event entry rejected",
					zap.String("detailType", detailType),
					zap.String("errorCode", aws.ToString(e.ErrorCode)),
					zap.String("errorMessage", aws.ToString(e.ErrorMessage)),
				)
			}
		}
		return fmt.Errorf("eventbridge rejected %d entries", result.FailedEntryCount)
	}

	return nil
}
