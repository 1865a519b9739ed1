package observability

import (
	"context"
	"time"

	"smartproduct-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// Metrics publishes usage counters to CloudWatch. Delivery failures are
// logged and swallowed so metrics never break the request path.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
	logger    *zap.Logger
}

// NewMetrics creates a new metrics instance
func NewMetrics(namespace string, client *cloudwatch.Client, logger *zap.Logger) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
	}
}

var _ ports.UsageMetrics = (*Metrics)(nil)

// RecordCommand counts one issued device command by command name and outcome.
func (m *Metrics) RecordCommand(ctx context.Context, command string, failed bool) {
	status := "success"
	if failed {
		status = "failure"
	}
	m.putCount(ctx, "CommandIssued",
		types.Dimension{Name: aws.String("Command"), Value: aws.String(command)},
		types.Dimension{Name: aws.String("Status"), Value: aws.String(status)},
	)
}

// RecordAlert counts one alert evaluation and whether a message went out.
func (m *Metrics) RecordAlert(ctx context.Context, sent bool) {
	outcome := "suppressed"
	if sent {
		outcome = "sent"
	}
	m.putCount(ctx, "AlertEvaluated",
		types.Dimension{Name: aws.String("Outcome"), Value: aws.String(outcome)},
	)
}

// RecordRegistration counts one registration lifecycle transition.
func (m *Metrics) RecordRegistration(ctx context.Context, outcome string) {
	m.putCount(ctx, "Registration",
		types.Dimension{Name: aws.String("Outcome"), Value: aws.String(outcome)},
	)
}

func (m *Metrics) putCount(ctx context.Context, name string, dims ...types.Dimension) {
	if m.client == nil {
		return // Skip if no client configured
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String(name),
				Dimensions: dims,
				Value:      aws.Float64(1),
				Unit:       types.StandardUnitCount,
				Timestamp:  aws.Time(time.Now()),
			},
		},
	}

	if _, err := m.client.PutMetricData(ctx, input); err != nil {
		m.logger.Warn("failed to send metrics", zap.String("metric", name), zap.Error(err))
	}
}
