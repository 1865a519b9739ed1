package dynamodb

import (
	"context"
	"fmt"

	"smartproduct-backend/application/ports"
	"smartproduct-backend/domain/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// SettingRepository implements ports.SettingRepository on DynamoDB. One row
// per user, keyed by settingId = userId.
type SettingRepository struct {
	client    StoreAPI
	tableName string
	logger    *zap.Logger
}

// NewSettingRepository creates a new SettingRepository.
func NewSettingRepository(client StoreAPI, tableName string, logger *zap.Logger) ports.SettingRepository {
	return &SettingRepository{client: client, tableName: tableName, logger: logger}
}

type settingItem struct {
	SettingID        string   `dynamodbav:"settingId"`
	AlertLevel       []string `dynamodbav:"alertLevel"`
	SendNotification bool     `dynamodbav:"sendNotification"`
	CreatedAt        string   `dynamodbav:"createdAt"`
	UpdatedAt        string   `dynamodbav:"updatedAt"`
}

// Get retrieves a user's setting, or (nil, nil) when none exists.
func (r *SettingRepository) Get(ctx context.Context, settingID string) (*model.UserSetting, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"settingId": &types.AttributeValueMemberS{Value: settingID},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get setting: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item settingItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal setting: %w", err)
	}

	return &model.UserSetting{
		SettingID:        item.SettingID,
		AlertLevel:       item.AlertLevel,
		SendNotification: item.SendNotification,
		CreatedAt:        item.CreatedAt,
		UpdatedAt:        item.UpdatedAt,
	}, nil
}

// Put upserts a user's setting.
func (r *SettingRepository) Put(ctx context.Context, setting *model.UserSetting) error {
	av, err := attributevalue.MarshalMap(settingItem{
		SettingID:        setting.SettingID,
		AlertLevel:       setting.AlertLevel,
		SendNotification: setting.SendNotification,
		CreatedAt:        setting.CreatedAt,
		UpdatedAt:        setting.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal setting: %w", err)
	}

	if _, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      av,
	}); err != nil {
		return fmt.Errorf("failed to save setting: %w", err)
	}

	r.logger.Info("setting saved", zap.String("settingId", setting.SettingID))
	return nil
}
