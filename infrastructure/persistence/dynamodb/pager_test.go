package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeQueryClient replays a scripted sequence of pages and records how the
// pager chains continuation keys.
type fakeQueryClient struct {
	pages []*dynamodb.QueryOutput
	calls []*dynamodb.QueryInput
	err   error
}

func (f *fakeQueryClient) Query(_ context.Context, params *dynamodb.QueryInput, _ ...func(*dynamodb.Options)) (*dynamodb.QueryOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	call := len(f.calls)
	// Snapshot the input: the pager reuses one QueryInput across calls, so
	// recording the pointer would alias every call to its final state.
	snapshot := *params
	f.calls = append(f.calls, &snapshot)
	if call >= len(f.pages) {
		return &dynamodb.QueryOutput{}, nil
	}
	return f.pages[call], nil
}

func item(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func key(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"id": &types.AttributeValueMemberS{Value: id},
	}
}

func items(prefix string, n int) []map[string]types.AttributeValue {
	out := make([]map[string]types.AttributeValue, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, item(fmt.Sprintf("%s-%d", prefix, i)))
	}
	return out
}

func TestQueryMinFillAccumulatesSparsePages(t *testing.T) {
	// A sparse post-filter yields 3, 5 and 14 items across three store pages.
	client := &fakeQueryClient{
		pages: []*dynamodb.QueryOutput{
			{Items: items("a", 3), LastEvaluatedKey: key("a-2")},
			{Items: items("b", 5), LastEvaluatedKey: key("b-4")},
			{Items: items("c", 14), LastEvaluatedKey: key("c-13")},
		},
	}
	pager := NewQueryPager(client, zap.NewNop())

	got, lastKey, err := pager.QueryMinFill(context.Background(), &dynamodb.QueryInput{})
	require.NoError(t, err)

	assert.Len(t, got, 22, "page must reach at least PageMin")
	assert.Len(t, client.calls, 3)
	// The final continuation key is forwarded, not the intermediates.
	assert.Equal(t, key("c-13"), lastKey)
	// Each follow-up call chains the previous page's key.
	assert.Equal(t, key("a-2"), client.calls[1].ExclusiveStartKey)
	assert.Equal(t, key("b-4"), client.calls[2].ExclusiveStartKey)
}

func TestQueryMinFillStopsWhenStoreExhausted(t *testing.T) {
	client := &fakeQueryClient{
		pages: []*dynamodb.QueryOutput{
			{Items: items("a", 2), LastEvaluatedKey: key("a-1")},
			{Items: items("b", 1)}, // no LastEvaluatedKey: genuinely out of data
		},
	}
	pager := NewQueryPager(client, zap.NewNop())

	got, lastKey, err := pager.QueryMinFill(context.Background(), &dynamodb.QueryInput{})
	require.NoError(t, err)

	assert.Len(t, got, 3, "returns whatever accumulated when under-filled")
	assert.Nil(t, lastKey, "nil token is the authoritative end-of-data signal")
	assert.Len(t, client.calls, 2)
}

func TestQueryMinFillSingleFullPage(t *testing.T) {
	client := &fakeQueryClient{
		pages: []*dynamodb.QueryOutput{
			{Items: items("a", 25), LastEvaluatedKey: key("a-24")},
		},
	}
	pager := NewQueryPager(client, zap.NewNop())

	got, lastKey, err := pager.QueryMinFill(context.Background(), &dynamodb.QueryInput{})
	require.NoError(t, err)

	assert.Len(t, got, 25)
	assert.Equal(t, key("a-24"), lastKey)
	assert.Len(t, client.calls, 1, "no extra reads once the page is full")
}

func TestQueryMinFillIterationCap(t *testing.T) {
	// Every store page matches nothing but reports more data; the pager must
	// stop at the cap instead of scanning the partition forever.
	pages := make([]*dynamodb.QueryOutput, maxQueryPages+10)
	for i := range pages {
		pages[i] = &dynamodb.QueryOutput{LastEvaluatedKey: key(fmt.Sprintf("k-%d", i))}
	}
	client := &fakeQueryClient{pages: pages}
	pager := NewQueryPager(client, zap.NewNop())

	got, lastKey, err := pager.QueryMinFill(context.Background(), &dynamodb.QueryInput{})
	require.NoError(t, err)

	assert.Empty(t, got)
	assert.NotNil(t, lastKey, "caller can resume from the cap point")
	assert.Len(t, client.calls, maxQueryPages)
}

func TestQueryMinFillPropagatesStoreError(t *testing.T) {
	client := &fakeQueryClient{err: errors.New("throttled")}
	pager := NewQueryPager(client, zap.NewNop())

	_, _, err := pager.QueryMinFill(context.Background(), &dynamodb.QueryInput{})
	assert.Error(t, err)
}

func TestCountAllAccumulates(t *testing.T) {
	client := &fakeQueryClient{
		pages: []*dynamodb.QueryOutput{
			{Count: 100, LastEvaluatedKey: key("a")},
			{Count: 100, LastEvaluatedKey: key("b")},
			{Count: 17},
		},
	}
	pager := NewQueryPager(client, zap.NewNop())

	total, err := pager.CountAll(context.Background(), &dynamodb.QueryInput{})
	require.NoError(t, err)

	assert.Equal(t, 217, total)
	assert.Len(t, client.calls, 3)
	assert.Equal(t, types.SelectCount, client.calls[0].Select)
	require.NotNil(t, client.calls[0].Limit)
	assert.Equal(t, int32(countPageLimit), *client.calls[0].Limit)
}
