package dynamodb

import (
	"context"
	"fmt"

	"smartproduct-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

// ReferenceRepository implements ports.ReferenceRepository on DynamoDB.
// Manufacturer reference data keyed by modelNumber; registration creation
// copies the matched details document onto the new row.
type ReferenceRepository struct {
	client    StoreAPI
	tableName string
	logger    *zap.Logger
}

// NewReferenceRepository creates a new ReferenceRepository.
func NewReferenceRepository(client StoreAPI, tableName string, logger *zap.Logger) ports.ReferenceRepository {
	return &ReferenceRepository{client: client, tableName: tableName, logger: logger}
}

type referenceItem struct {
	ModelNumber string                 `dynamodbav:"modelNumber"`
	Details     map[string]interface{} `dynamodbav:"details"`
}

// Get returns the reference details for a model number, or (nil, nil) when
// the model is unknown.
func (r *ReferenceRepository) Get(ctx context.Context, modelNumber string) (map[string]interface{}, error) {
	out, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"modelNumber": &types.AttributeValueMemberS{Value: modelNumber},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get reference data: %w", err)
	}
	if out.Item == nil {
		return nil, nil
	}

	var item referenceItem
	if err := attributevalue.UnmarshalMap(out.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal reference data: %w", err)
	}

	return item.Details, nil
}
