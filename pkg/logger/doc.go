// Package logger builds the service's *slog.Logger.
//
// New returns a JSON or text logger whose handler is wrapped in a
// ContextHandler, so request scoped values are attached without passing them
// around:
//
//	log := logger.New(
//		logger.WithEnvironment(env, "tenantd"),
//		logger.WithContextExtractors(
//			requestid.LoggerExtractor(),
//			tenant.LoggerExtractor(),
//		),
//	)
//	log.InfoContext(r.Context(), "tenant created", logger.Slug(t.Slug))
//
// The attribute helpers in attr.go keep key names consistent across packages.
package logger
