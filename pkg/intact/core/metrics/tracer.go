package metrics

import (
	"context"
)

// Tracer is an abstract interface for distributed tracing of reconciliation passes.
type Tracer interface {
	// StartSpan starts a span named name under the span carried by ctx.
	//
	// Returns: A context with the new span set, and a function to end the span.
	//          It is recommended to call the returned function in a defer statement.
	StartSpan(ctx context.Context, name string, attributes map[string]string) (context.Context, func())

	// RecordError records an error in the current span.
	//
	// ctx: The context with the current span.
	// module: The name of the component where the error occurred (e.g. "PublicationSynchronizer").
	// err: The error to record.
	RecordError(ctx context.Context, module string, err error)

	// RecordEvent records an event in the current span.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}
