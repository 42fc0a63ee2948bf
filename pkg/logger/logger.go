package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with booking-flow helpers
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter creates a logger writing to w at the given level
func NewWithWriter(w io.Writer, levelStr string) *Logger {
	level := getLogLevel(levelStr)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text for development, JSON otherwise
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{Logger: slog.New(handler)}
}

// getLogLevel converts string to slog.Level
func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{Logger: l.Logger.With(slog.String("error", err.Error()))}
}

// WithFields adds multiple fields to logger context
func (l *Logger) WithFields(fields map[string]interface{}) *Logger {
	args := make([]interface{}, 0, len(fields)*2)
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	return &Logger{Logger: l.Logger.With(args...)}
}

// HTTP logging methods

// LogHTTPRequest logs an HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogHTTPError logs an HTTP error
func (l *Logger) LogHTTPError(c *gin.Context, err error, statusCode int) {
	l.Logger.ErrorContext(c.Request.Context(),
		"HTTP Error",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.Int("status", statusCode),
		slog.String("error", err.Error()),
		slog.String("ip", c.ClientIP()),
	)
}

// Booking flow logging methods

func (l *Logger) LogSeatMapSaved(ctx context.Context, eventID string, seats int, version int64, created bool) {
	l.Logger.InfoContext(ctx,
		"Seat Map Saved",
		slog.String("event_id", eventID),
		slog.Int("seats", seats),
		slog.Int64("version", version),
		slog.Bool("created", created),
	)
}

func (l *Logger) LogBookingInitiated(ctx context.Context, bookingID, eventID, buyerID string, seats []string) {
	l.Logger.InfoContext(ctx,
		"Booking Initiated",
		slog.String("booking_id", bookingID),
		slog.String("event_id", eventID),
		slog.String("buyer_id", buyerID),
		slog.Any("seats", seats),
	)
}

func (l *Logger) LogBookingConfirmed(ctx context.Context, bookingID, eventID, paymentID string, seats []string) {
	l.Logger.InfoContext(ctx,
		"Booking Confirmed",
		slog.String("booking_id", bookingID),
		slog.String("event_id", eventID),
		slog.String("payment_id", paymentID),
		slog.Any("seats", seats),
	)
}

func (l *Logger) LogBookingCancelled(ctx context.Context, bookingID, eventID, reason string) {
	l.Logger.InfoContext(ctx,
		"Booking Cancelled",
		slog.String("booking_id", bookingID),
		slog.String("event_id", eventID),
		slog.String("reason", reason),
	)
}

// LogSeatConflict records a paid booking whose seats were taken by an earlier settlement
func (l *Logger) LogSeatConflict(ctx context.Context, bookingID, eventID, paymentID string, seats []string) {
	l.Logger.ErrorContext(ctx,
		"Seat Conflict Requires Reconciliation",
		slog.String("booking_id", bookingID),
		slog.String("event_id", eventID),
		slog.String("payment_id", paymentID),
		slog.Any("conflicting_seats", seats),
	)
}

func (l *Logger) LogPaymentError(ctx context.Context, provider, bookingID string, err error) {
	l.Logger.ErrorContext(ctx,
		"Payment Gateway Error",
		slog.String("provider", provider),
		slog.String("booking_id", bookingID),
		slog.String("error", err.Error()),
	)
}

// Security logging methods

// LogAuthSuccess logs successful authentication
func (l *Logger) LogAuthSuccess(ctx context.Context, userID, method string) {
	l.Logger.InfoContext(ctx,
		"Authentication Success",
		slog.String("user_id", userID),
		slog.String("method", method),
	)
}

// LogAuthFailure logs failed authentication
func (l *Logger) LogAuthFailure(ctx context.Context, reason, ip string) {
	l.Logger.WarnContext(ctx,
		"Authentication Failure",
		slog.String("reason", reason),
		slog.String("ip", ip),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// Global logger instance
var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
