// Package logger builds the *slog.Logger shared by the task client.
//
// New assembles a text or JSON handler from functional options and wraps it
// with LogHandlerDecorator, which runs registered ContextExtractor callbacks on
// every record. The gateway stores the id of each outbound call in the context
// (WithRequestID), so a logger built with RequestIDExtractor tags everything
// logged during that call with "request_id".
//
//	log := logger.New(
//	    logger.WithEnvironment(cfg.Env, "taskctl"),
//	    logger.WithLevelName(cfg.LogLevel),
//	    logger.WithContextExtractors(logger.RequestIDExtractor()),
//	)
//
// Attribute helpers (Error, Method, Path, StatusCode, MessageID...) keep key
// names consistent. Error returns an empty Attr for nil, so it can be passed
// unconditionally.
package logger
