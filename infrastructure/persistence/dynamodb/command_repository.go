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

// CommandRepository implements ports.CommandRepository on DynamoDB. Table
// keyed (deviceId, commandId); the updatedAt GSI backs chronological listing.
type CommandRepository struct {
	client    StoreAPI
	pager     *QueryPager
	tableName string
	sortIndex string
	logger    *zap.Logger
}

// NewCommandRepository creates a new CommandRepository.
func NewCommandRepository(client StoreAPI, tableName, sortIndex string, logger *zap.Logger) ports.CommandRepository {
	return &CommandRepository{
		client:    client,
		pager:     NewQueryPager(client, logger),
		tableName: tableName,
		sortIndex: sortIndex,
		logger:    logger,
	}
}

type commandItem struct {
	DeviceID  string             `dynamodbav:"deviceId"`
	CommandID string             `dynamodbav:"commandId"`
	UserID    string             `dynamodbav:"userId"`
	Status    string             `dynamodbav:"status"`
	Details   commandDetailsItem `dynamodbav:"details"`
	CreatedAt string             `dynamodbav:"createdAt"`
	UpdatedAt string             `dynamodbav:"updatedAt"`
}

type commandDetailsItem struct {
	Command string `dynamodbav:"command"`
	Value   string `dynamodbav:"value"`
}

func commandToItem(cmd *model.Command) commandItem {
	return commandItem{
		DeviceID:  cmd.DeviceID,
		CommandID: cmd.CommandID,
		UserID:    cmd.UserID,
		Status:    cmd.Status,
		Details:   commandDetailsItem{Command: cmd.Details.Command, Value: cmd.Details.Value},
		CreatedAt: cmd.CreatedAt,
		UpdatedAt: cmd.UpdatedAt,
	}
}

func itemToCommand(item commandItem) model.Command {
	return model.Command{
		DeviceID:  item.DeviceID,
		CommandID: item.CommandID,
		UserID:    item.UserID,
		Status:    item.Status,
		Details:   model.CommandDetails{Command: item.Details.Command, Value: item.Details.Value},
		CreatedAt: item.CreatedAt,
		UpdatedAt: item.UpdatedAt,
	}
}

// Create persists a new command row.
func (r *CommandRepository) Create(ctx context.Context, cmd *model.Command) error {
	av, err := attributevalue.MarshalMap(commandToItem(cmd))
	if err != nil {
		return fmt.Errorf("failed to marshal command: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("failed to save command: %w", err)
	}

	r.logger.Info("command saved",
		zap.String("deviceId", cmd.DeviceID),
		zap.String("commandId", cmd.CommandID),
		zap.String("command", cmd.Details.Command),
	)

	return nil
}

// Get retrieves one command by its composite key.
func (r *CommandRepository) Get(ctx context.Context, deviceID, commandID string) (*model.Command, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"deviceId":  &types.AttributeValueMemberS{Value: deviceID},
			"commandId": &types.AttributeValueMemberS{Value: commandID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get command: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item commandItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal command: %w", err)
	}

	cmd := itemToCommand(item)
	return &cmd, nil
}

// ListByDevice returns one filled page of the device's commands, newest
// first, optionally post-filtered by status. The status filter runs after the
// range scan, so sparse pages are compensated by the pager.
func (r *CommandRepository) ListByDevice(ctx context.Context, deviceID, status, cursor string) (ports.Page[model.Command], error) {
	var page ports.Page[model.Command]

	startKey, err := DecodeCursor(cursor)
	if err != nil {
		return page, err
	}

	builder := expression.NewBuilder().
		WithKeyCondition(expression.Key("deviceId").Equal(expression.Value(deviceID)))
	if status != "" {
		builder = builder.WithFilter(expression.Name("status").Equal(expression.Value(status)))
	}

	expr, err := builder.Build()
	if err != nil {
		return page, fmt.Errorf("failed to build expression: %w", err)
	}

	input := &dynamodb.QueryInput{
		TableName:                 aws.String(r.tableName),
		IndexName:                 aws.String(r.sortIndex),
		KeyConditionExpression:    expr.KeyCondition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
		Limit:                     aws.Int32(PageMin),
		ScanIndexForward:          aws.Bool(false),
		ExclusiveStartKey:         startKey,
	}
	if status != "" {
		input.FilterExpression = expr.Filter()
	}

	items, lastKey, err := r.pager.QueryMinFill(ctx, input)
	if err != nil {
		return page, fmt.Errorf("failed to query commands: %w", err)
	}

	page.Items = make([]model.Command, 0, len(items))
	for _, raw := range items {
		var item commandItem
		if err := attributevalue.UnmarshalMap(raw, &item); err != nil {
			return page, fmt.Errorf("failed to unmarshal command: %w", err)
		}
		page.Items = append(page.Items, itemToCommand(item))
	}

	page.NextToken, err = EncodeCursor(lastKey)
	return page, err
}
