/*
Package observability provides structured logging and metrics collection for
the harvester.

# Architecture

	Provider (one per run, no process-wide state)
	    ├── Logger  (console notices or JSON lines)
	    └── Metrics (Prometheus collectors on a private registry)

Every component (extractor, layout, enumerator, retrieval, harvester) asks the
provider for its own logger and metrics collector. Components depend on the
interfaces in the types package only, so tests hand them mocks.

# Usage

	provider := observability.NewProvider(&observability.Config{
	    ServiceName: "codegrabber",
	    Environment: "local",
	    LogLevel:    "info",
	    LogFormat:   observability.FormatConsole,
	    Colorize:    true,
	})
	defer provider.Close()

	log := provider.Logger("retrieval")
	metrics := provider.Metrics("retrieval")

	ctx = types.WithRunID(ctx, runID)
	ctx = types.WithContainer(ctx, "twentytwentyfour")

	log.Info(ctx, "content appended", observability.Fields{
	    "file":  "inc/template.php",
	    "bytes": 2048,
	})
	metrics.RecordFileSize("php", 2048)

	// At the end of the run
	_ = provider.WriteMetrics("/var/lib/node_exporter/codegrabber.prom")

# Log Formats

The console format prints one notice per line with a severity mark:

	[*] debug   [+] info   [!] warn   [-] error

The JSON format writes one object per line with timestamp, level, service,
env, hostname, message, run_id, container and any call fields.

# Metrics

Each component gets the following, prefixed with "{service}_{component}":

  - processed_total: Counter with labels [status, type]
  - errors_total: Counter with labels [error_type, operation]
  - duration_seconds: Histogram with label [operation]
  - file_size_bytes: Histogram with label [file_type]
  - in_progress: Gauge with label [operation]

The harvester is a short-lived CLI, so nothing is served over HTTP. Metrics
are written once to a textfile for the node exporter textfile collector.

# Testing

	log := mocks.NewNopLogger()
	metrics := new(mocks.MockMetrics)
	metrics.On("RecordError", "retrieve", "missing_payload").Return()

# Thread Safety

Loggers and collectors are safe for concurrent use. Loggers derived from the
same provider share one write lock, so lines never interleave.
*/
package observability
