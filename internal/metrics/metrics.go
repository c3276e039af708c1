// Package metrics counts what the routing engine does. Counters are atomics;
// Snapshot is cheap and safe to call at any time.
package metrics

import (
	"sync/atomic"
	"time"
)

type Snapshot struct {
	GeneratedAt time.Time     `json:"generated_at"`
	Search      SearchMetrics `json:"search"`
	Join        JoinMetrics   `json:"join"`
	Wire        WireMetrics   `json:"wire"`
}

type SearchMetrics struct {
	Started   uint64 `json:"started"`
	Forwarded uint64 `json:"forwarded"`
	Found     uint64 `json:"found"`
	NotFound  uint64 `json:"not_found"`
	HopLimit  uint64 `json:"hop_limit"`
}

type JoinMetrics struct {
	Started         uint64 `json:"started"`
	Completed       uint64 `json:"completed"`
	Failed          uint64 `json:"failed"`
	LevelsCompleted uint64 `json:"levels_completed"`
	Rejections      uint64 `json:"rejections"`
}

type WireMetrics struct {
	Timeouts        uint64 `json:"timeouts"`
	TransportErrors uint64 `json:"transport_errors"`
	DroppedUnknown  uint64 `json:"dropped_unknown"`
	DroppedInvalid  uint64 `json:"dropped_invalid"`
}

type Metrics struct {
	searchStarted   atomic.Uint64
	searchForwarded atomic.Uint64
	searchFound     atomic.Uint64
	searchNotFound  atomic.Uint64
	searchHopLimit  atomic.Uint64

	joinStarted    atomic.Uint64
	joinCompleted  atomic.Uint64
	joinFailed     atomic.Uint64
	joinLevels     atomic.Uint64
	joinRejections atomic.Uint64

	timeouts        atomic.Uint64
	transportErrors atomic.Uint64
	droppedUnknown  atomic.Uint64
	droppedInvalid  atomic.Uint64
}

func New() *Metrics {
	return &Metrics{}
}

func (m *Metrics) IncSearchStarted() { m.searchStarted.Add(1) }
func (m *Metrics) IncSearchForwarded() { m.searchForwarded.Add(1) }
func (m *Metrics) IncSearchFound() { m.searchFound.Add(1) }
func (m *Metrics) IncSearchNotFound() { m.searchNotFound.Add(1) }
func (m *Metrics) IncSearchHopLimit() { m.searchHopLimit.Add(1) }

func (m *Metrics) IncJoinStarted() { m.joinStarted.Add(1) }
func (m *Metrics) IncJoinCompleted() { m.joinCompleted.Add(1) }
func (m *Metrics) IncJoinFailed() { m.joinFailed.Add(1) }
func (m *Metrics) IncJoinLevel() { m.joinLevels.Add(1) }
func (m *Metrics) IncJoinRejection() { m.joinRejections.Add(1) }

func (m *Metrics) IncTimeout() { m.timeouts.Add(1) }
func (m *Metrics) IncTransportError() { m.transportErrors.Add(1) }
func (m *Metrics) IncDroppedUnknown() { m.droppedUnknown.Add(1) }
func (m *Metrics) IncDroppedInvalid() { m.droppedInvalid.Add(1) }

func (m *Metrics) Snapshot() Snapshot {
	return Snapshot{
		GeneratedAt: time.Now().UTC(),
		Search: SearchMetrics{
			Started:   m.searchStarted.Load(),
			Forwarded: m.searchForwarded.Load(),
			Found:     m.searchFound.Load(),
			NotFound:  m.searchNotFound.Load(),
			HopLimit:  m.searchHopLimit.Load(),
		},
		Join: JoinMetrics{
			Started:         m.joinStarted.Load(),
			Completed:       m.joinCompleted.Load(),
			Failed:          m.joinFailed.Load(),
			LevelsCompleted: m.joinLevels.Load(),
			Rejections:      m.joinRejections.Load(),
		},
		Wire: WireMetrics{
			Timeouts:        m.timeouts.Load(),
			TransportErrors: m.transportErrors.Load(),
			DroppedUnknown:  m.droppedUnknown.Load(),
			DroppedInvalid:  m.droppedInvalid.Load(),
		},
	}
}
