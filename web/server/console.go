package server

import (
	"fmt"
	"sync"
	"time"

	"github.com/df07/go-pathtracer/pkg/log"
)

// ConsoleMessage represents a console message with timestamp
type ConsoleMessage struct {
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Level     string    `json:"level"` // "debug", "info", "notice", "warning", "error"
}

// WebLogger implements log.Logger for a single render. Every message goes
// to the server log and is also kept so it can be returned to the client.
type WebLogger struct {
	renderID string
	base     log.Logger

	mu       sync.Mutex
	messages []ConsoleMessage
	limit    int
}

// NewWebLogger creates a logger for one render, keeping at most limit messages
func NewWebLogger(renderID string, base log.Logger, limit int) *WebLogger {
	return &WebLogger{renderID: renderID, base: base, limit: limit}
}

// Messages returns the captured messages in order
func (wl *WebLogger) Messages() []ConsoleMessage {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	return append([]ConsoleMessage(nil), wl.messages...)
}

func (wl *WebLogger) capture(level, message string) {
	wl.mu.Lock()
	defer wl.mu.Unlock()
	if len(wl.messages) >= wl.limit {
		return
	}
	wl.messages = append(wl.messages, ConsoleMessage{Message: message, Timestamp: time.Now(), Level: level})
}

func (wl *WebLogger) Debug(v ...interface{}) {
	wl.base.Debugf("[%s] %s", wl.renderID, fmt.Sprint(v...))
	wl.capture("debug", fmt.Sprint(v...))
}

func (wl *WebLogger) Debugf(format string, v ...interface{}) {
	wl.Debug(fmt.Sprintf(format, v...))
}

func (wl *WebLogger) Info(v ...interface{}) {
	wl.base.Infof("[%s] %s", wl.renderID, fmt.Sprint(v...))
	wl.capture("info", fmt.Sprint(v...))
}

func (wl *WebLogger) Infof(format string, v ...interface{}) {
	wl.Info(fmt.Sprintf(format, v...))
}

func (wl *WebLogger) Notice(v ...interface{}) {
	wl.base.Noticef("[%s] %s", wl.renderID, fmt.Sprint(v...))
	wl.capture("notice", fmt.Sprint(v...))
}

func (wl *WebLogger) Noticef(format string, v ...interface{}) {
	wl.Notice(fmt.Sprintf(format, v...))
}

func (wl *WebLogger) Warning(v ...interface{}) {
	wl.base.Warningf("[%s] %s", wl.renderID, fmt.Sprint(v...))
	wl.capture("warning", fmt.Sprint(v...))
}

func (wl *WebLogger) Warningf(format string, v ...interface{}) {
	wl.Warning(fmt.Sprintf(format, v...))
}

func (wl *WebLogger) Error(v ...interface{}) {
	wl.base.Errorf("[%s] %s", wl.renderID, fmt.Sprint(v...))
	wl.capture("error", fmt.Sprint(v...))
}

func (wl *WebLogger) Errorf(format string, v ...interface{}) {
	wl.Error(fmt.Sprintf(format, v...))
}
