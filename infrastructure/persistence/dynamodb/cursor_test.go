package dynamodb

import (
	"testing"

	apperrors "smartproduct-backend/pkg/errors"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCursorRoundTrip(t *testing.T) {
	key := map[string]types.AttributeValue{
		"deviceId":  &types.AttributeValueMemberS{Value: "device-1"},
		"updatedAt": &types.AttributeValueMemberS{Value: "2026-08-29T10:00:00Z"},
	}

	token, err := EncodeCursor(key)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	decoded, err := DecodeCursor(token)
	require.NoError(t, err)
	assert.Equal(t, key, decoded)
}

func TestCursorEmptyToken(t *testing.T) {
	token, err := EncodeCursor(nil)
	require.NoError(t, err)
	assert.Empty(t, token)

	decoded, err := DecodeCursor("")
	require.NoError(t, err)
	assert.Nil(t, decoded)
}

func TestDecodeCursorRejectsGarbage(t *testing.T) {
	for _, token := range []string{"!!!not-base64!!!", "bm90LWpzb24"} {
		_, err := DecodeCursor(token)
		require.Error(t, err)
		assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidParameter))
	}
}
