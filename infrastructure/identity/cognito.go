package identity

import (
	"context"
	"fmt"

	"smartproduct-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	"go.uber.org/zap"
)

// CognitoProvider resolves user attributes from the Cognito user pool.
type CognitoProvider struct {
	client *cognitoidentityprovider.Client
	poolID string
	logger *zap.Logger
}

// NewCognitoProvider creates a new CognitoProvider.
func NewCognitoProvider(client *cognitoidentityprovider.Client, poolID string, logger *zap.Logger) *CognitoProvider {
	return &CognitoProvider{client: client, poolID: poolID, logger: logger}
}

var _ ports.IdentityProvider = (*CognitoProvider)(nil)

// PhoneNumber returns the phone_number attribute of the user identified by
// sub, or "" when the user has none.
func (p *CognitoProvider) PhoneNumber(ctx context.Context, sub string) (string, error) {
	out, err := p.client.ListUsers(ctx, &cognitoidentityprovider.ListUsersInput{
		UserPoolId: aws.String(p.poolID),
		Filter:     aws.String(fmt.Sprintf("sub = %q", sub)),
		Limit:      aws.Int32(1),
	})
	if err != nil {
		return "", fmt.Errorf("failed to list users: %w", err)
	}

	if len(out.Users) == 0 {
		p.logger.Warn("no user found for sub", zap.String("sub", sub))
		return "", nil
	}

	for _, attr := range out.Users[0].Attributes {
		if aws.ToString(attr.Name) == "phone_number" {
			return aws.ToString(attr.Value), nil
		}
	}

	return "", nil
}
