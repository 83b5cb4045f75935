package jstransport

import (
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/tehsphinx/jstransport/pubsub"
)

type logLevel int

const (
	levelVerbose logLevel = iota
	levelDebug
	levelInfo
	levelWarn
	levelError
)

var statusLevels = map[pubsub.StatusType]logLevel{
	pubsub.StatusPingTimer:       levelDebug,
	pubsub.StatusReconnecting:    levelDebug,
	pubsub.StatusStaleConnection: levelDebug,
	pubsub.StatusDisconnect:      levelError,
	pubsub.StatusError:           levelError,
	pubsub.StatusReconnect:       levelInfo,
	pubsub.StatusLDM:             levelWarn,
	pubsub.StatusUpdate:          levelVerbose,
}

func (l logLevel) print(log Logger, msg string) {
	switch l {
	case levelVerbose:
		log.Verbose(msg)
	case levelDebug:
		log.Debug(msg)
	case levelInfo:
		log.Info(msg)
	case levelWarn:
		log.Warn(msg)
	case levelError:
		log.Error(msg)
	}
}

// watchStatus logs the health events of a connection until the status
// channel is closed.
func watchStatus(status <-chan pubsub.Status, log Logger, metrics MetricsCollector) {
	for st := range status {
		metrics.StatusEvent(st.Type)

		level, ok := statusLevels[st.Type]
		if !ok {
			continue
		}
		level.print(log, fmt.Sprintf("(%s): %s", st.Type, statusData(st.Data)))
	}
}

// statusData renders structured values as JSON and scalars as text.
func statusData(data interface{}) string {
	switch v := data.(type) {
	case nil:
		return "<nil>"
	case string:
		return v
	case error:
		return v.Error()
	case fmt.Stringer:
		return v.String()
	}

	switch reflect.Indirect(reflect.ValueOf(data)).Kind() {
	case reflect.Map, reflect.Struct, reflect.Slice, reflect.Array:
		b, err := json.Marshal(data)
		if err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(data)
}
