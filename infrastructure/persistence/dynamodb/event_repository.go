package dynamodb

import (
	"context"
	"fmt"

	"smartproduct-backend/application/ports"
	"smartproduct-backend/domain/model"
	"smartproduct-backend/pkg/utils"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// EventRepository implements ports.EventRepository on DynamoDB. Table keyed
// (deviceId, id); timestamp GSIs back per-device and per-user chronological
// listing.
type EventRepository struct {
	client      StoreAPI
	pager       *QueryPager
	tableName   string
	deviceIndex string
	userIndex   string
	logger      *zap.Logger
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(client StoreAPI, tableName, deviceIndex, userIndex string, logger *zap.Logger) ports.EventRepository {
	return &EventRepository{
		client:      client,
		pager:       NewQueryPager(client, logger),
		tableName:   tableName,
		deviceIndex: deviceIndex,
		userIndex:   userIndex,
		logger:      logger,
	}
}

type eventItem struct {
	DeviceID  string                 `dynamodbav:"deviceId"`
	ID        string                 `dynamodbav:"id"`
	UserID    string                 `dynamodbav:"userId"`
	Type      string                 `dynamodbav:"type"`
	Message   string                 `dynamodbav:"message"`
	Details   map[string]interface{} `dynamodbav:"details,omitempty"`
	Ack       bool                   `dynamodbav:"ack"`
	Suppress  bool                   `dynamodbav:"suppress"`
	Timestamp string                 `dynamodbav:"timestamp"`
	CreatedAt string                 `dynamodbav:"createdAt"`
	UpdatedAt string                 `dynamodbav:"updatedAt"`
	SentAt    string                 `dynamodbav:"sentAt,omitempty"`
}

func eventToItem(ev *model.Event) eventItem {
	return eventItem{
		DeviceID:  ev.DeviceID,
		ID:        ev.ID,
		UserID:    ev.UserID,
		Type:      ev.Type,
		Message:   ev.Message,
		Details:   ev.Details,
		Ack:       ev.Ack,
		Suppress:  ev.Suppress,
		Timestamp: ev.Timestamp,
		CreatedAt: ev.CreatedAt,
		UpdatedAt: ev.UpdatedAt,
		SentAt:    ev.SentAt,
	}
}

func itemToEvent(item eventItem) model.Event {
	return model.Event{
		DeviceID:  item.DeviceID,
		ID:        item.ID,
		UserID:    item.UserID,
		Type:      item.Type,
		Message:   item.Message,
		Details:   item.Details,
		Ack:       item.Ack,
		Suppress:  item.Suppress,
		Timestamp: item.Timestamp,
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
		SentAt:    item.SentAt,
	}
}

// Create persists a new event row.
func (r *EventRepository) Create(ctx context.Context, ev *model.Event) error {
	av, err := attributevalue.MarshalMap(eventToItem(ev))
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("failed to save event: %w", err)
	}

	r.logger.Info("event saved",
		zap.String("deviceId", ev.DeviceID),
		zap.String("eventId", ev.ID),
		zap.String("type", ev.Type),
	)

	return nil
}

// Get retrieves one event by its composite key.
func (r *EventRepository) Get(ctx context.Context, deviceID, eventID string) (*model.Event, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"deviceId": &types.AttributeValueMemberS{Value: deviceID},
			"id":       &types.AttributeValueMemberS{Value: eventID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item eventItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}

	ev := itemToEvent(item)
	return &ev, nil
}

// MarkViewed sets ack and suppress after a user opened the event detail.
func (r *EventRepository) MarkViewed(ctx context.Context, deviceID, eventID string) error {
	expr, err := expression.NewBuilder().
		WithUpdate(expression.
			Set(expression.Name("ack"), expression.Value(true)).
			Set(expression.Name("suppress"), expression.Value(true)).
			Set(expression.Name("updatedAt"), expression.Value(utils.NowRFC3339()))).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	if _, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"deviceId": &types.AttributeValueMemberS{Value: deviceID},
			"id":       &types.AttributeValueMemberS{Value: eventID},
		},
		UpdateExpression:          expr.Update(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}); err != nil {
		return fmt.Errorf("failed to update event: %w", err)
	}

	return nil
}

// ListByDevice returns one filled page of the device's events, newest first,
// optionally post-filtered by type.
func (r *EventRepository) ListByDevice(ctx context.Context, deviceID, eventType, cursor string) (ports.Page[model.Event], error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key("deviceId").Equal(expression.Value(deviceID)))
	hasFilter := eventType != ""
	if hasFilter {
		builder = builder.WithFilter(expression.Name("type").Equal(expression.Value(eventType)))
	}
	return r.queryPage(ctx, builder, r.deviceIndex, hasFilter, cursor)
}

// ListByUser returns one filled page of the user's events across devices,
// newest first, optionally post-filtered by device and type.
func (r *EventRepository) ListByUser(ctx context.Context, userID, deviceID, eventType, cursor string) (ports.Page[model.Event], error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key("userId").Equal(expression.Value(userID)))

	var filter *expression.ConditionBuilder
	if deviceID != "" {
		f := expression.Name("deviceId").Equal(expression.Value(deviceID))
		filter = &f
	}
	if eventType != "" {
		f := expression.Name("type").Equal(expression.Value(eventType))
		if filter != nil {
			f = filter.And(f)
		}
		filter = &f
	}
	if filter != nil {
		builder = builder.WithFilter(*filter)
	}

	return r.queryPage(ctx, builder, r.userIndex, filter != nil, cursor)
}

// ListAlerts returns one filled page of unacknowledged events whose type is
// in alertLevel, optionally restricted to one device.
func (r *EventRepository) ListAlerts(ctx context.Context, userID string, alertLevel []string, deviceID, cursor string) (ports.Page[model.Event], error) {
	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key("userId").Equal(expression.Value(userID))).
		WithFilter(alertFilter(alertLevel, deviceID))
	return r.queryPage(ctx, builder, r.userIndex, true, cursor)
}

// CountAlerts counts the events ListAlerts would return, without
// materializing them.
func (r *EventRepository) CountAlerts(ctx context.Context, userID string, alertLevel []string, deviceID string) (int, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("userId").Equal(expression.Value(userID))).
		WithFilter(alertFilter(alertLevel, deviceID)).
		Build()
	if err != nil {
		return 0, fmt.Errorf("failed to build expression: %w", err)
	}

	total, err := r.pager.CountAll(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.userIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count alerts: %w", err)
	}

	return total, nil
}

// alertFilter builds ack=false AND (type=a OR type=b ...) AND optional
// deviceId equality. Callers guarantee alertLevel is non-empty.
func alertFilter(alertLevel []string, deviceID string) expression.ConditionBuilder {
	levels := expression.Name("type").Equal(expression.Value(alertLevel[0]))
	for _, level := range alertLevel[1:] {
		levels = levels.Or(expression.Name("type").Equal(expression.Value(level)))
	}

	filter := expression.Name("ack").Equal(expression.Value(false)).And(levels)
	if deviceID != "" {
		filter = filter.And(expression.Name("deviceId").Equal(expression.Value(deviceID)))
	}
	return filter
}

func (r *EventRepository) queryPage(ctx context.Context, builder expression.Builder, indexName string, hasFilter bool, cursor string) (ports.Page[model.Event], error) {
	var page ports.Page[model.Event]

	startKey, err := DecodeCursor(cursor)
	if err != nil {
		return page, err
	}

	expr, err := builder.Build()
	if err != nil {
		return page, fmt.Errorf("failed to build expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(indexName),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(PageMin),
		ScanIndexForward:          aws.Bool(false),
		ExclusiveStartKey:         startKey,
	}
	if hasFilter {
		input.FilterExpression = expr.Filter()
	}

	items, lastKey, err := r.pager.QueryMinFill(ctx, input)
	if err != nil {
		return page, fmt.Errorf("failed to query events: %w", err)
	}

	page.Items = make([]model.Event, 0, len(items))
	for _, raw := range items {
		var item eventItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return page, fmt.Errorf("failed to unmarshal event: %w", err)
		}
		page.Items = append(page.Items, itemToEvent(item))
	}

	page.NextToken, err = EncodeCursor(lastKey)
	return page, err
}
