// Package logging builds the slog loggers used across brickmatch.
//
// It offers a console handler for interactive use, a JSON handler for log
// files and machine consumption, attribute helpers so call sites stay terse,
// and component loggers that tag every line with the emitting subsystem.
package logging
