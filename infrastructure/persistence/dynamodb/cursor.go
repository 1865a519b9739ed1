package dynamodb

import (
	"encoding/base64"
	"encoding/json"

	apperrors "smartproduct-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// EncodeCursor serializes a LastEvaluatedKey into the opaque lastevalkey
// token. A nil key encodes to the empty string, the end-of-data signal.
func EncodeCursor(key map[string]types.AttributeValue) (string, error) {
	if key == nil {
		return "", nil
	}

	var plain map[string]interface{}
	if err := attributevalue.UnmarshalMap(key, &plain); err != nil {
		return "", err
	}

	raw, err := json.Marshal(plain)
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// DecodeCursor parses a lastevalkey token back into an ExclusiveStartKey.
// Malformed tokens are a caller error, not a store failure.
func DecodeCursor(token string) (map[string]types.AttributeValue, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(token)
	if err != nil {
		return nil, apperrors.NewValidation(apperrors.KindInvalidParameter, "invalid lastevalkey")
	}

	var plain map[string]interface{}
	if err := json.Unmarshal(raw, &plain); err != nil {
		return nil, apperrors.NewValidation(apperrors.KindInvalidParameter, "invalid lastevalkey")
	}

	key, err := attributevalue.MarshalMap(plain)
	if err != nil {
		return nil, apperrors.NewValidation(apperrors.KindInvalidParameter, "invalid lastevalkey")
	}

	return key, nil
}
