/*
Package tracing provides lightweight request tracing.

A Tracer opens spans that carry a trace id and a parent span id through
the request context. Finished spans are queued to a background collector
and written to the structured log, at Debug normally and at Warn when the
operation failed.

# Usage

	tracer := tracing.New(logger)
	defer tracer.Close()

	router.Use(tracing.HTTPMiddleware(tracer))

	err := tracer.Trace(ctx, "registry.import", func(ctx context.Context) error {
		_, err := reg.ImportFromFolder(ctx, dir)
		return err
	})

Trace context travels in the X-Trace-ID and X-Span-ID headers.
*/
package tracing
