package event

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Hook processes lifecycle events.
type Hook interface {
	// Name returns the hook's identifier.
	Name() string
	// Matches returns true if the hook should handle this event type.
	Matches(t EventType) bool
	// IsBlocking returns true if execution should wait for this hook.
	IsBlocking() bool
	// Handle processes an event. For blocking hooks, an error stops execution.
	Handle(ev Event) error
}

// baseHook provides shared fields for all hook implementations.
type baseHook struct {
	name     string
	events   []EventType
	blocking bool
}

func (h *baseHook) Name() string     { return h.name }
func (h *baseHook) IsBlocking() bool { return h.blocking }
func (h *baseHook) Matches(t EventType) bool {
	if len(h.events) == 0 {
		return true // match all events if no filter specified
	}
	for _, ev := range h.events {
		if ev == t {
			return true
		}
	}
	return false
}

// WebhookHook sends an HTTP POST with event JSON to a URL.
type WebhookHook struct {
	baseHook
	URL     string
	Timeout time.Duration
}

func NewWebhookHook(name, url string, events []EventType, blocking bool) *WebhookHook {
	return &WebhookHook{
		baseHook: baseHook{name: name, events: events, blocking: blocking},
		URL:      url,
		Timeout:  10 * time.Second,
	}
}

func (h *WebhookHook) Handle(ev Event) error {
	body, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	client := &http.Client{Timeout: h.Timeout}
	resp, err := client.Post(h.URL, "application/json", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("webhook %s failed: %w", h.name, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return fmt.Errorf("webhook %s returned status %d", h.name, resp.StatusCode)
	}
	return nil
}

// LogHook logs events at the configured level. Always non-blocking.
type LogHook struct {
	baseHook
	logger FullLogger
	level  string // "debug", "info", "warn"
}

// FullLogger extends Logger with additional log levels for the LogHook.
type FullLogger interface {
	Logger
	Info(msg string, keyvals ...interface{})
	Debug(msg string, keyvals ...interface{})
}

func NewLogHook(name string, events []EventType, logger FullLogger, level string) *LogHook {
	if level == "" {
		level = "info"
	}
	return &LogHook{
		baseHook: baseHook{name: name, events: events, blocking: false},
		logger:   logger,
		level:    level,
	}
}

func (h *LogHook) Handle(ev Event) error {
	keyvals := make([]interface{}, 0, len(ev.Data)*2+2)
	keyvals = append(keyvals, "event", string(ev.Type))
	for k, v := range ev.Data {
		keyvals = append(keyvals, k, v)
	}

	switch h.level {
	case "debug":
		h.logger.Debug("memory event", keyvals...)
	case "warn":
		h.logger.Warn("memory event", keyvals...)
	default:
		h.logger.Info("memory event", keyvals...)
	}
	return nil
}
