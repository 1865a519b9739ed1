package dynamodb

import (
	"context"
	"fmt"

	"smartproduct-backend/application/ports"
	"smartproduct-backend/domain/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// RegistrationRepository implements ports.RegistrationRepository on DynamoDB.
// Table keyed (userId, deviceId); the deviceId GSI backs global uniqueness
// checks and owner resolution for device-originated traffic.
type RegistrationRepository struct {
	client      StoreAPI
	pager       *QueryPager
	tableName   string
	deviceIndex string
	logger      *zap.Logger
}

// NewRegistrationRepository creates a new RegistrationRepository.
func NewRegistrationRepository(client StoreAPI, tableName, deviceIndex string, logger *zap.Logger) ports.RegistrationRepository {
	return &RegistrationRepository{
		client:      client,
		pager:       NewQueryPager(client, logger),
		tableName:   tableName,
		deviceIndex: deviceIndex,
		logger:      logger,
	}
}

type registrationItem struct {
	UserID      string                 `dynamodbav:"userId"`
	DeviceID    string                 `dynamodbav:"deviceId"`
	DeviceName  string                 `dynamodbav:"deviceName"`
	ModelNumber string                 `dynamodbav:"modelNumber"`
	Details     map[string]interface{} `dynamodbav:"details,omitempty"`
	Status      string                 `dynamodbav:"status"`
	CreatedAt   string                 `dynamodbav:"createdAt"`
	UpdatedAt   string                 `dynamodbav:"updatedAt"`
	ActivatedAt string                 `dynamodbav:"activatedAt,omitempty"`
}

func registrationToItem(reg *model.Registration) registrationItem {
	return registrationItem{
		UserID:      reg.UserID,
		DeviceID:    reg.DeviceID,
		DeviceName:  reg.DeviceName,
		ModelNumber: reg.ModelNumber,
		Details:     reg.Details,
		Status:      reg.Status,
		CreatedAt:   reg.CreatedAt,
		UpdatedAt:   reg.UpdatedAt,
		ActivatedAt: reg.ActivatedAt,
	}
}

func itemToRegistration(item registrationItem) model.Registration {
	return model.Registration{
		UserID:      item.UserID,
		DeviceID:    item.DeviceID,
		DeviceName:  item.DeviceName,
		ModelNumber: item.ModelNumber,
		Details:     item.Details,
		Status:      item.Status,
		CreatedAt:   item.CreatedAt,
		UpdatedAt:   item.UpdatedAt,
		ActivatedAt: item.ActivatedAt,
	}
}

// Get retrieves one registration by its composite key.
func (r *RegistrationRepository) Get(ctx context.Context, userID, deviceID string) (*model.Registration, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"userId":   &types.AttributeValueMemberS{Value: userID},
			"deviceId": &types.AttributeValueMemberS{Value: deviceID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get registration: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item registrationItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal registration: %w", err)
	}

	reg := itemToRegistration(item)
	return &reg, nil
}

// Create persists a new registration row.
func (r *RegistrationRepository) Create(ctx context.Context, reg *model.Registration) error {
	av, err := attributevalue.MarshalMap(registrationToItem(reg))
	if err != nil {
		return fmt.Errorf("failed to marshal registration: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("failed to save registration: %w", err)
	}

	r.logger.Info("registration saved",
		zap.String("deviceId", reg.DeviceID),
		zap.String("userId", reg.UserID),
		zap.String("status", reg.Status),
	)

	return nil
}

// Update rewrites the registration row. Soft deletion goes through here too.
func (r *RegistrationRepository) Update(ctx context.Context, reg *model.Registration) error {
	return r.Create(ctx, reg)
}

// HardDelete removes the row outright. Used only by the create-rollback leg.
func (r *RegistrationRepository) HardDelete(ctx context.Context, userID, deviceID string) error {
	if _, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"userId":   &types.AttributeValueMemberS{Value: userID},
			"deviceId": &types.AttributeValueMemberS{Value: deviceID},
		},
	}); err != nil {
		return fmt.Errorf("failed to delete registration: %w", err)
	}
	return nil
}

// ListByDevice queries the deviceId index, excluding deleted rows.
func (r *RegistrationRepository) ListByDevice(ctx context.Context, deviceID string) ([]model.Registration, error) {
	filter := expression.Name("status").NotEqual(expression.Value(model.RegistrationDeleted))
	return r.queryDeviceIndex(ctx, deviceID, filter)
}

// ListPendingByDevice queries the deviceId index filtered to pending rows.
func (r *RegistrationRepository) ListPendingByDevice(ctx context.Context, deviceID string) ([]model.Registration, error) {
	filter := expression.Name("status").Equal(expression.Value(model.RegistrationPending))
	return r.queryDeviceIndex(ctx, deviceID, filter)
}

func (r *RegistrationRepository) queryDeviceIndex(ctx context.Context, deviceID string, filter expression.ConditionBuilder) ([]model.Registration, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("deviceId").Equal(expression.Value(deviceID))).
		WithFilter(filter).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	out, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.deviceIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query registrations: %w", err)
	}

	return unmarshalRegistrations(out.Items)
}

// ListByUser returns one filled page of the user's registrations.
func (r *RegistrationRepository) ListByUser(ctx context.Context, userID, cursor string) (ports.Page[model.Registration], error) {
	var page ports.Page[model.Registration]

	startKey, err := DecodeCursor(cursor)
	if err != nil {
		return page, err
	}

	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("userId").Equal(expression.Value(userID))).
		WithFilter(expression.Name("status").NotEqual(expression.Value(model.RegistrationDeleted))).
		Build()
	if err != nil {
		return page, fmt.Errorf("failed to build expression: %w", err)
	}

	items, lastKey, err := r.pager.QueryMinFill(ctx, &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(PageMin),
		ExclusiveStartKey:         startKey,
	})
	if err != nil {
		return page, fmt.Errorf("failed to query registrations: %w", err)
	}

	page.Items, err = unmarshalRegistrations(items)
	if err != nil {
		return page, err
	}

	page.NextToken, err = EncodeCursor(lastKey)
	return page, err
}

// ListAllByUser loads every non-deleted registration of a user, following
// continuation keys to exhaustion. Backs the deviceName join on event reads.
func (r *RegistrationRepository) ListAllByUser(ctx context.Context, userID string) ([]model.Registration, error) {
	expr, err := expression.NewBuilder().
		WithKeyCondition(expression.Key("userId").Equal(expression.Value(userID))).
		WithFilter(expression.Name("status").NotEqual(expression.Value(model.RegistrationDeleted))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		KeyConditionExpression:    expr.KeyCondition(),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	}

	var regs []model.Registration
	for {
		out, err := r.client.Query(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("failed to query registrations: %w", err)
		}

		batch, err := unmarshalRegistrations(out.Items)
		if err != nil {
			return nil, err
		}
		regs = append(regs, batch...)

		if out.LastEvaluatedKey == nil {
			return regs, nil
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}
}

func unmarshalRegistrations(items []map[string]types.AttributeValue) ([]model.Registration, error) {
	regs := make([]model.Registration, 0, len(items))
	for _, raw := range items {
		var item registrationItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return nil, fmt.Errorf("failed to unmarshal registration: %w", err)
		}
		regs = append(regs, itemToRegistration(item))
	}
	return regs, nil
}
