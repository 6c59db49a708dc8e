package stream

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/grovetools/fsevents/internal/cf"
)

// makeDeliver builds the delivery function invoked by the native callback.
// Per-record decode failures are logged and skipped; they never end the
// stream. Sends never block: when the channel is full the batch is dropped
// with a warning, because stalling the callback would stall every watch
// scheduled on the same native subsystem.
func makeDeliver(events chan []Event, flatten bool, log *logrus.Entry) func([]cf.RawEvent) {
	return func(raw []cf.RawEvent) {
		batch := make([]Event, 0, len(raw))
		for _, r := range raw {
			if r.InodeErr {
				log.WithField("path", r.Path).Error("unable to convert inode field to int64, dropping record")
				continue
			}
			flags, ok := ParseEventFlags(r.Flags)
			if !ok {
				log.WithFields(logrus.Fields{
					"path":      r.Path,
					"raw_flags": fmt.Sprintf("%#x", r.Flags),
				}).Error("unknown bits in event flags, dropping record")
				continue
			}
			batch = append(batch, Event{
				Path:     r.Path,
				Inode:    r.Inode,
				Flags:    flags,
				RawFlags: r.Flags,
				ID:       r.ID,
			})
		}
		if len(batch) == 0 {
			return
		}

		if flatten {
			for _, ev := range batch {
				trySend(events, []Event{ev}, log)
			}
			return
		}
		trySend(events, batch, log)
	}
}

func trySend(events chan []Event, batch []Event, log *logrus.Entry) {
	select {
	case events <- batch:
	default:
		log.WithField("dropped", len(batch)).Warn("event channel full, dropping batch")
	}
}
