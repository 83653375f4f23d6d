// Package logger is a standardized event logging framework for the
// interpreter: one JSON object per line, one event per object.
package logger
