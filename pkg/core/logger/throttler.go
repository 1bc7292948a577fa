package logger

import (
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// DefaultThrottleInterval is used when NewLogThrottler gets a zero interval.
const DefaultThrottleInterval = time.Minute

// LogThrottler rate limits repeated log entries per key. Each key may log at
// the requested level once per interval; the rest are logged at debug.
type LogThrottler struct {
	log      *zap.Logger
	interval time.Duration
	limiters sync.Map // key -> *rate.Limiter
}

// NewLogThrottler creates a throttler writing to log.
func NewLogThrottler(log *zap.Logger, interval time.Duration) *LogThrottler {
	if interval <= 0 {
		interval = DefaultThrottleInterval
	}
	return &LogThrottler{log: log, interval: interval}
}

// Warn logs at warn level once per interval for key.
func (t *LogThrottler) Warn(key, msg string, fields ...zap.Field) {
	if t.allow(key) {
		t.log.Warn(msg, fields...)
		return
	}
	t.log.Debug(msg, fields...)
}

// Error logs at error level once per interval for key.
func (t *LogThrottler) Error(key, msg string, fields ...zap.Field) {
	if t.allow(key) {
		t.log.Error(msg, fields...)
		return
	}
	t.log.Debug(msg, fields...)
}

func (t *LogThrottler) allow(key string) bool {
	if l, ok := t.limiters.Load(key); ok {
		return l.(*rate.Limiter).Allow()
	}
	l, _ := t.limiters.LoadOrStore(key, rate.NewLimiter(rate.Every(t.interval), 1))
	return l.(*rate.Limiter).Allow()
}
