// Package logger re-exports pkg/logger so internal packages share one import path.
package logger

import (
	pkglogger "github.com/pawaovo/nfc-bracelet-fortune/pkg/logger"
)

type (
	Logger = pkglogger.Logger
	Config = pkglogger.Config
	Format = pkglogger.Format
)

const (
	DefaultTraceIDKey = pkglogger.DefaultTraceIDKey
	FormatJSON        = pkglogger.FormatJSON
	FormatText        = pkglogger.FormatText
)

var (
	New                = pkglogger.New
	NewWithConfig      = pkglogger.NewWithConfig
	ContextWithTraceID = pkglogger.ContextWithTraceID
	TraceIDFromContext = pkglogger.TraceIDFromContext
)
