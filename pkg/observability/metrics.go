package observability

import (
	"context"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// Metrics publishes per-operation latency and outcome counts to CloudWatch.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	namespace string
	client    *cloudwatch.Client
}

// NewMetrics creates a Metrics instance for the given namespace.
func NewMetrics(namespace string, client *cloudwatch.Client) *Metrics {
	return &Metrics{
		namespace: namespace,
		client:    client,
	}
}

// RecordOperation emits a latency datum and a success/failure count for one
// directory operation. Errors from CloudWatch are swallowed; metrics must
// never fail the operation they describe.
func (m *Metrics) RecordOperation(ctx context.Context, operation string, duration time.Duration, success bool) {
	if m == nil || m.client == nil {
		return
	}

	outcome := "Success"
	if !success {
		outcome = "Failure"
	}

	dimensions := []types.Dimension{
		{Name: aws.String("Operation"), Value: aws.String(operation)},
	}

	input := &cloudwatch.PutMetricDataInput{
		Namespace: aws.String(m.namespace),
		MetricData: []types.MetricDatum{
			{
				MetricName: aws.String("OperationLatency"),
				Dimensions: dimensions,
				Unit:       types.StandardUnitMilliseconds,
				Value:      aws.Float64(float64(duration.Milliseconds())),
			},
			{
				MetricName: aws.String("Operation" + outcome),
				Dimensions: dimensions,
				Unit:       types.StandardUnitCount,
				Value:      aws.Float64(1),
			},
		},
	}

	_, _ = m.client.PutMetricData(ctx, input)
}
