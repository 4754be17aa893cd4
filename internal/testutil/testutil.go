// Package testutil holds fixtures shared by package tests.
package testutil

import (
	"fmt"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"github.com/iyunix/go-messenger/internal/repository"
)

var dbCounter atomic.Int64

// NewTestDB opens a private in-memory shared store, migrated and closed
// with the test.
func NewTestDB(t testing.TB) *gorm.DB {
	t.Helper()
	name := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", dbCounter.Add(1))
	db, err := repository.Open(name)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repository.Close(db) })
	return db
}

// Logger routes key/value logging into the test output. Entries written
// by background goroutines after the test finished are dropped.
type Logger struct {
	mu     sync.RWMutex
	sugar  *zap.SugaredLogger
	closed bool
}

func NewLogger(t testing.TB) *Logger {
	l := &Logger{sugar: zaptest.NewLogger(t).Sugar()}
	t.Cleanup(func() {
		l.mu.Lock()
		l.closed = true
		l.mu.Unlock()
	})
	return l
}

func (l *Logger) log(write func(string, ...interface{}), msg string, keysAndValues []interface{}) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if l.closed {
		return
	}
	write(msg, keysAndValues...)
}

func (l *Logger) Info(msg string, keysAndValues ...interface{}) {
	l.log(l.sugar.Infow, msg, keysAndValues)
}

func (l *Logger) Error(msg string, keysAndValues ...interface{}) {
	l.log(l.sugar.Errorw, msg, keysAndValues)
}

func (l *Logger) Debug(msg string, keysAndValues ...interface{}) {
	l.log(l.sugar.Debugw, msg, keysAndValues)
}

func (l *Logger) Warn(msg string, keysAndValues ...interface{}) {
	l.log(l.sugar.Warnw, msg, keysAndValues)
}
