// Package audit records every confession submission against a pseudonymous
// author tag. The trail is append-only and write-only: nothing in the
// pipeline reads it back, it exists so operators can correlate abuse without
// recovering identities.
package audit

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
)

type Log struct {
	logger *zap.Logger
}

func NewLog(logger *zap.Logger) (*Log, error) {
	if logger == nil {
		return nil, fmt.Errorf("audit logger is nil")
	}
	return &Log{logger: logger}, nil
}

// Record writes one audit line for a submission. Newlines in the content are
// escaped so each submission stays a single line.
func (l *Log) Record(tag, content string) {
	l.logger.Warn("confession received",
		zap.String("hash", tag),
		zap.String("content", strings.ReplaceAll(content, "\n", " \\n ")),
	)
}

func (l *Log) Sync() {
	_ = l.logger.Sync()
}
