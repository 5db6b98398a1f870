// Package notify carries user-visible notices for the session.
package notify

import (
	"fmt"
	"time"
)

// Level represents the severity of a notification.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Notification represents a single notification event.
type Notification struct {
	ID        int64
	Level     Level
	Message   string
	CreatedAt time.Time
}

// Log keeps every notification raised during a session, oldest first. It
// is owned by the event loop.
type Log struct {
	items  []Notification
	nextID int64
	now    func() time.Time
}

// NewLog returns an empty log.
func NewLog() *Log {
	return &Log{now: time.Now}
}

// Add records a notification and returns it with its id and timestamp set.
func (l *Log) Add(level Level, message string) Notification {
	l.nextID++
	n := Notification{
		ID:        l.nextID,
		Level:     level,
		Message:   message,
		CreatedAt: l.now(),
	}
	l.items = append(l.items, n)
	return n
}

// Infof records an info notification.
func (l *Log) Infof(format string, args ...any) Notification {
	return l.Add(LevelInfo, fmt.Sprintf(format, args...))
}

// Warnf records a warning.
func (l *Log) Warnf(format string, args ...any) Notification {
	return l.Add(LevelWarning, fmt.Sprintf(format, args...))
}

// Errorf records an error notification.
func (l *Log) Errorf(format string, args ...any) Notification {
	return l.Add(LevelError, fmt.Sprintf(format, args...))
}

// List returns a copy of every notification.
func (l *Log) List() []Notification {
	return append([]Notification(nil), l.items...)
}

// Count returns the number of notifications.
func (l *Log) Count() int {
	return len(l.items)
}

// CountAtLeast returns how many notifications are at level or more severe.
func (l *Log) CountAtLeast(level Level) int {
	n := 0
	for _, it := range l.items {
		if severity(it.Level) >= severity(level) {
			n++
		}
	}
	return n
}

// Clear removes every notification.
func (l *Log) Clear() {
	l.items = nil
}

func severity(l Level) int {
	switch l {
	case LevelError:
		return 2
	case LevelWarning:
		return 1
	default:
		return 0
	}
}
