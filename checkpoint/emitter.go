package checkpoint

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"reflect"

	"github.com/relex/etl-sink-agent/defs"
	"github.com/relex/gotils/logger"
	"github.com/relex/gotils/promexporter/promext"
	"github.com/relex/gotils/promexporter/promreg"
)

// Emitter writes chosen checkpoint payloads to the output sink, one self-contained line per
// payload, flushed immediately
//
// Consecutive structurally-equal payloads are written only once: the candidate is compared
// against the previously chosen payload and suppressed on equality, while the remembered
// payload still advances unconditionally. This is sequential dedup, not full-history dedup.
type Emitter struct {
	logger      logger.Logger
	destination *bufio.Writer
	lastEmitted interface{}
	emittedAny  bool
	metrics     emitterMetrics
}

type emitterMetrics struct {
	emittedTotal    promext.RWCounter
	suppressedTotal promext.RWCounter
}

// NewEmitter creates an Emitter writing to the given destination, normally the process stdout
func NewEmitter(parentLogger logger.Logger, destination io.Writer, metricCreator promreg.MetricCreator) *Emitter {
	emitted := metricCreator.AddOrGetCounterVec("emitted_checkpoints_total",
		"Numbers of checkpoint payloads chosen for emission", []string{"state"}, nil)
	return &Emitter{
		logger:      parentLogger.WithField(defs.LabelComponent, "CheckpointEmitter"),
		destination: bufio.NewWriter(destination),
		lastEmitted: nil,
		emittedAny:  false,
		metrics: emitterMetrics{
			emittedTotal:    emitted.WithLabelValues("written"),
			suppressedTotal: emitted.WithLabelValues("suppressed"),
		},
	}
}

// Emit writes the payload unless it structurally equals the previously chosen payload
//
// A payload that cannot be serialized is a loud failure; a checkpoint is never dropped silently
func (emitter *Emitter) Emit(payload interface{}) error {
	duplicate := emitter.emittedAny && reflect.DeepEqual(payload, emitter.lastEmitted)
	emitter.lastEmitted = payload
	emitter.emittedAny = true
	if duplicate {
		emitter.logger.Debugf("suppress duplicate checkpoint")
		emitter.metrics.suppressedTotal.Inc()
		return nil
	}

	line, merr := json.Marshal(payload)
	if merr != nil {
		return fmt.Errorf("failed to serialize checkpoint payload: %w", merr)
	}
	if _, werr := emitter.destination.Write(line); werr != nil {
		return fmt.Errorf("failed to write checkpoint: %w", werr)
	}
	if werr := emitter.destination.WriteByte('\n'); werr != nil {
		return fmt.Errorf("failed to write checkpoint: %w", werr)
	}
	if ferr := emitter.destination.Flush(); ferr != nil {
		return fmt.Errorf("failed to flush checkpoint: %w", ferr)
	}
	emitter.metrics.emittedTotal.Inc()
	return nil
}
