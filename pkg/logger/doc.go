// Package logger builds the application's slog.Logger from
// environment configuration.
//
// Production uses the JSON handler at info level; local development
// usually switches to text at debug via LOG_FORMAT and LOG_LEVEL. The
// service name is attached to every record so multiple binaries can
// share one log stream.
//
// # Usage
//
//	cfg := config.MustLoad[logger.Config]()
//	log := logger.New(cfg)
//	logger.SetAsDefault(log)
package logger
