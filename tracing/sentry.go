package tracing

import (
	"fmt"

	"github.com/getsentry/sentry-go"
	"github.com/ncobase/unicourse/ctxutil"
	"github.com/sirupsen/logrus"
)

// SentryHook forwards error log entries to Sentry, tagged with their trace
// ID.
type SentryHook struct {
	hub *sentry.Hub
}

// NewSentryHook reports through hub, or the current hub when nil.
func NewSentryHook(hub *sentry.Hub) *SentryHook {
	if hub == nil {
		hub = sentry.CurrentHub()
	}
	return &SentryHook{hub: hub}
}

func (h *SentryHook) Levels() []logrus.Level {
	return []logrus.Level{logrus.PanicLevel, logrus.FatalLevel, logrus.ErrorLevel}
}

func (h *SentryHook) Fire(e *logrus.Entry) error {
	event := sentry.NewEvent()
	event.Level = sentry.LevelError
	if e.Level <= logrus.FatalLevel {
		event.Level = sentry.LevelFatal
	}
	event.Message = e.Message
	event.Timestamp = e.Time
	for k, v := range e.Data {
		switch k {
		case ctxutil.TraceIDKey:
			event.Tags[k] = fmt.Sprint(v)
		case logrus.ErrorKey:
			if err, ok := v.(error); ok {
				event.Exception = append(event.Exception, sentry.Exception{Type: fmt.Sprintf("%T", err), Value: err.Error()})
				continue
			}
			event.Extra[k] = v
		default:
			event.Extra[k] = v
		}
	}
	h.hub.CaptureEvent(event)
	return nil
}
