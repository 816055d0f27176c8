// Package observability holds the metrics sinks and the tracing decorators.
package observability

import (
	"context"
	"sync"
	"time"

	"axon-backend/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
	"go.uber.org/zap"
)

// cloudWatchBatch is the number of datums sent per PutMetricData call
const cloudWatchBatch = 20

// CloudWatchClient is the subset of the CloudWatch API the metrics sink uses
type CloudWatchClient interface {
	PutMetricData(ctx context.Context, params *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatchMetrics buffers counters and timings and sends them to
// CloudWatch on Flush. Recording never blocks on the network.
type CloudWatchMetrics struct {
	namespace string
	client    CloudWatchClient
	logger    *zap.Logger
	now       func() time.Time

	mu      sync.Mutex
	pending []types.MetricDatum
}

// NewCloudWatchMetrics creates a new metrics instance
func NewCloudWatchMetrics(namespace string, client CloudWatchClient, logger *zap.Logger) *CloudWatchMetrics {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CloudWatchMetrics{
		namespace: namespace,
		client:    client,
		logger:    logger,
		now:       time.Now,
	}
}

// Increment records one occurrence of metric
func (m *CloudWatchMetrics) Increment(metric, label string) {
	m.record(metric, label, 1, types.StandardUnitCount)
}

// StartTimer starts timing metric; Stop records the elapsed milliseconds
func (m *CloudWatchMetrics) StartTimer(metric, label string) ports.Timer {
	return &timer{start: m.now(), now: m.now, stop: func(d time.Duration) {
		m.record(metric, label, float64(d.Milliseconds()), types.StandardUnitMilliseconds)
	}}
}

func (m *CloudWatchMetrics) record(metric, label string, value float64, unit types.StandardUnit) {
	datum := types.MetricDatum{
		MetricName: aws.String(metric),
		Value:      aws.Float64(value),
		Unit:       unit,
		Timestamp:  aws.Time(m.now()),
	}
	if label != "" {
		datum.Dimensions = []types.Dimension{{Name: aws.String("Name"), Value: aws.String(label)}}
	}

	m.mu.Lock()
	m.pending = append(m.pending, datum)
	m.mu.Unlock()
}

// Pending reports how many datums are waiting to be sent
func (m *CloudWatchMetrics) Pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.pending)
}

// Flush sends every buffered datum. Datums of a failed call are dropped.
func (m *CloudWatchMetrics) Flush(ctx context.Context) error {
	m.mu.Lock()
	data := m.pending
	m.pending = nil
	m.mu.Unlock()

	var firstErr error
	for i := 0; i < len(data); i += cloudWatchBatch {
		end := i + cloudWatchBatch
		if end > len(data) {
			end = len(data)
		}
		_, err := m.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
			Namespace:  aws.String(m.namespace),
			MetricData: data[i:end],
		})
		if err != nil {
			m.logger.Warn("Failed to send metrics", zap.Int("count", end-i), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// Run flushes every interval until ctx is done, then flushes once more
func (m *CloudWatchMetrics) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = m.Flush(ctx)
		case <-ctx.Done():
			flushCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = m.Flush(flushCtx)
			cancel()
			return
		}
	}
}

type timer struct {
	start time.Time
	now   func() time.Time
	stop  func(time.Duration)
	once  sync.Once
}

func (t *timer) Stop() {
	t.once.Do(func() { t.stop(t.now().Sub(t.start)) })
}
