/*
Package monitoring provides Prometheus metrics for the widget shell.

# Overview

Metrics covers the HTTP surface, registry mutations, durable store calls
(including circuit breaker state), launch dispatches, window state and
WebSocket traffic. Metrics implements the recorder interfaces of the
registry, lifecycle and window packages and the store observer, so
domain packages never import Prometheus directly.

# Usage

	metrics := monitoring.NewMetrics(prometheus.NewRegistry())
	router.Use(monitoring.Middleware(metrics))
	reg := registry.New(st, registry.Options{Recorder: metrics})

# Metrics Endpoint

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))
*/
package monitoring
