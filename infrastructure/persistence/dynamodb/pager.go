package dynamodb

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"
)

const (
	// PageMin is the minimum logical page size the pager guarantees when
	// enough matching items exist.
	PageMin = 20

	// countPageLimit caps per-request reads for the count variant.
	countPageLimit = 100

	// maxQueryPages bounds read amplification when a post-filter rarely
	// matches. Reaching the cap returns whatever accumulated plus the token.
	maxQueryPages = 30
)

// QueryAPI is the slice of the DynamoDB client the pager needs. Injected so
// tests can substitute an in-memory fake.
type QueryAPI interface {
	Query(ctx context.Context, params *dynamodb.QueryInput, optFns ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error)
}

// QueryPager fills pages from a range index whose post-filter can return
// arbitrarily sparse results. A filter like status=success over a time-ordered
// index may match 0 of 100 scanned rows; handing such a near-empty page to the
// caller would read as end-of-data and break pagination. The pager keeps
// following LastEvaluatedKey until the page holds at least PageMin items or
// the store runs out, and forwards only the final continuation key.
type QueryPager struct {
	client QueryAPI
	logger *zap.Logger
}

// NewQueryPager creates a pager over the given query client.
func NewQueryPager(client QueryAPI, logger *zap.Logger) *QueryPager {
	return &QueryPager{client: client, logger: logger}
}

// QueryMinFill runs the query, accumulating pages until at least PageMin items
// are collected or no continuation key remains. The returned key is nil
// exactly when the store reported no more data.
func (p *QueryPager) QueryMinFill(ctx context.Context, input *dynamodb.QueryInput) ([]map[string]types.AttributeValue, map[string]types.AttributeValue, error) {
	var items []map[string]types.AttributeValue
	var lastKey map[string]types.AttributeValue

	for page := 0; page < maxQueryPages; page++ {
		out, err := p.client.Query(ctx, input)
		if err != nil {
			return nil, nil, err
		}

		items = append(items, out.Items...)
		lastKey = out.LastEvaluatedKey

		if lastKey == nil || len(items) >= PageMin {
			break
		}
		input.ExclusiveStartKey = lastKey
	}

	p.logger.Debug("page filled",
		zap.Int("items", len(items)),
		zap.Bool("more", lastKey != nil),
	)

	return items, lastKey, nil
}

// CountAll runs the query in COUNT mode with a raised per-request cap and
// accumulates the total across all pages. Nothing is materialized.
func (p *QueryPager) CountAll(ctx context.Context, input *dynamodb.QueryInput) (int, error) {
	input.Select = types.SelectCount
	input.Limit = aws.Int32(countPageLimit)

	total := 0
	for {
		out, err := p.client.Query(ctx, input)
		if err != nil {
			return 0, err
		}

		total += int(out.Count)

		if out.LastEvaluatedKey == nil {
			break
		}
		input.ExclusiveStartKey = out.LastEvaluatedKey
	}

	return total, nil
}
