// Package telemetry configures structured logging for the engine and CLI.
// Output level and format are controlled by the LOG_LEVEL and LOG_FORMAT
// environment variables.
package telemetry
