package observability

import (
	"context"
	"net/http"

	"github.com/aws/aws-xray-sdk-go/xray"
)

// Tracer records X-Ray subsegments for traced operations. A nil or disabled
// Tracer runs everything untraced.
type Tracer struct {
	serviceName string
	enabled     bool
}

// NewTracer creates a new tracer instance
func NewTracer(serviceName string, enabled bool) *Tracer {
	return &Tracer{
		serviceName: serviceName,
		enabled:     enabled,
	}
}

// Enabled reports whether segments are recorded
func (t *Tracer) Enabled() bool {
	return t != nil && t.enabled
}

// Handler opens one segment per HTTP request, named after the service, so
// operations traced while serving it have a parent
func (t *Tracer) Handler(next http.Handler) http.Handler {
	if !t.Enabled() {
		return next
	}
	return xray.Handler(xray.NewFixedSegmentNamer(t.serviceName), next)
}

// Trace runs fn inside a subsegment called name. Annotations are given as
// key/value pairs and indexed on the subsegment; an error returned by fn is
// recorded on it. Without a parent segment in ctx fn runs untraced.
func (t *Tracer) Trace(ctx context.Context, name string, fn func(context.Context) error, annotations ...string) error {
	if !t.Enabled() || xray.GetSegment(ctx) == nil {
		return fn(ctx)
	}

	ctx, seg := xray.BeginSubsegment(ctx, name)
	if seg == nil {
		return fn(ctx)
	}
	for i := 0; i+1 < len(annotations); i += 2 {
		_ = seg.AddAnnotation(annotations[i], annotations[i+1])
	}

	err := fn(ctx)
	if err != nil {
		_ = seg.AddError(err)
	}
	seg.Close(err)
	return err
}
