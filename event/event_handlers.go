package event

import (
	"github.com/sirupsen/logrus"
)

// EventHandler reacts to one committed job event. a handler returns nil for
// events it does not care about.
type EventHandler func(e *EventRecord) *EventHandleResult

type EventHandleResult struct {
	Success           bool
	Message           string
	HandlerIdentifier string
}

var EventHandlers []EventHandler

var InvokeHandlersFunc = invokeHandlers

// invokeHandlers fans one committed event out to every registered handler.
// handler failures are logged and reported back, never raised: the job
// transition is already committed at this point.
func invokeHandlers(record *EventRecord) []EventHandleResult {
	results := []EventHandleResult{}
	for _, handler := range EventHandlers {
		r := handler(record)
		if r == nil {
			continue
		}
		results = append(results, *r)

		if r.Success {
			logrus.Infof("event %s of %s %d handled by %s", record.EventCategory,
				record.SourceType, record.SourceId, r.HandlerIdentifier)
		} else {
			logrus.Errorf("event %s of %s %d: handler %s failed: %s", record.EventCategory,
				record.SourceType, record.SourceId, r.HandlerIdentifier, r.Message)
		}
	}
	return results
}
