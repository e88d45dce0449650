package usecases

import (
	"time"

	"github.com/google/uuid"

	"github.com/sophialabs/scenarioadmin/internal/domain/scenario"
	"github.com/sophialabs/scenarioadmin/internal/domain/trace"
	"github.com/sophialabs/scenarioadmin/internal/infrastructure/ports"
)

// Recorder logs every catalog operation and appends it to the audit trace.
type Recorder struct {
	trace  *trace.RingBuffer
	clock  ports.Clock
	logger ports.Logger
}

// NewRecorder creates a recorder. A nil buffer disables the audit trace.
func NewRecorder(buf *trace.RingBuffer, clock ports.Clock, logger ports.Logger) *Recorder {
	return &Recorder{trace: buf, clock: clock, logger: logger}
}

func (r *Recorder) record(op, key string, start time.Time, err error) {
	entry := trace.Entry{
		ID:        uuid.NewString(),
		Timestamp: start,
		Operation: op,
		Key:       key,
		Outcome:   trace.OutcomeOK,
		Duration:  r.clock.Since(start),
	}

	if err != nil {
		kind := scenario.KindOf(err)
		entry.Outcome = kind.String()
		entry.Message = err.Error()

		switch kind {
		case scenario.KindInternal, scenario.KindConfiguration, scenario.KindUnauthorized:
			r.logger.Error("scenario operation failed", "op", op, "key", key, "kind", kind.String(), "error", err)
		default:
			r.logger.Warn("scenario operation failed", "op", op, "key", key, "kind", kind.String(), "error", err)
		}
	} else {
		r.logger.Debug("scenario operation", "op", op, "key", key, "duration", entry.Duration)
	}

	if r.trace != nil {
		r.trace.Add(entry)
	}
}
