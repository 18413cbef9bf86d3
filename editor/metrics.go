package editor

import (
	"context"
	"time"

	"github.com/Moonlight-Companies/gologger/logger"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const (
	opScan      = "scan"
	opRescan    = "rescan"
	opReadValue = "read_value"
	opWrite     = "write_value"
)

type metrics struct {
	bytesRead     metric.Int64Counter
	regionsFailed metric.Int64Counter
	matches       metric.Int64Counter
	duration      metric.Float64Histogram
}

// newMetrics registers the editor instruments, an instrument the meter
// rejects is replaced by a no-op one
func newMetrics(meter metric.Meter, log *logger.Logger) *metrics {
	m := &metrics{
		bytesRead:     noop.Int64Counter{},
		regionsFailed: noop.Int64Counter{},
		matches:       noop.Int64Counter{},
		duration:      noop.Float64Histogram{},
	}

	if c, err := meter.Int64Counter("memedit_scan_bytes_read_total",
		metric.WithDescription("Bytes read from target processes while scanning"),
		metric.WithUnit("By")); err == nil {
		m.bytesRead = c
	} else {
		log.Warn("Failed to create counter: ", err)
	}

	if c, err := meter.Int64Counter("memedit_scan_regions_failed_total",
		metric.WithDescription("Regions skipped because they could not be read")); err == nil {
		m.regionsFailed = c
	} else {
		log.Warn("Failed to create counter: ", err)
	}

	if c, err := meter.Int64Counter("memedit_matches_total",
		metric.WithDescription("Addresses returned by scan and rescan")); err == nil {
		m.matches = c
	} else {
		log.Warn("Failed to create counter: ", err)
	}

	if h, err := meter.Float64Histogram("memedit_operation_duration_seconds",
		metric.WithDescription("Duration of editor operations"),
		metric.WithUnit("s")); err == nil {
		m.duration = h
	} else {
		log.Warn("Failed to create histogram: ", err)
	}

	return m
}

func (m *metrics) observe(ctx context.Context, op string, start time.Time) {
	m.duration.Record(context.WithoutCancel(ctx), time.Since(start).Seconds(),
		metric.WithAttributes(attribute.String("op", op)))
}

func (m *metrics) found(ctx context.Context, op string, n int) {
	m.matches.Add(context.WithoutCancel(ctx), int64(n),
		metric.WithAttributes(attribute.String("op", op)))
}
