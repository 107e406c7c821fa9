// Package metrics exposes receiver-core events as Prometheus collectors,
// one per PhysicalChannel instance, distinguished by a channel_id label.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dbehnke/tetrapol-phys/pkg/tetrapol"
)

// Collector implements tetrapol.Observer and forwards every event to a
// fixed set of Prometheus collectors labeled by channel_id.
type Collector struct {
	channelID string

	syncAcquiredTotal *prometheus.CounterVec
	syncLostTotal     *prometheus.CounterVec
	framesOKTotal     *prometheus.CounterVec
	framesDropped     *prometheus.CounterVec
	scrCommittedTotal *prometheus.CounterVec
	scrCurrent        *prometheus.GaugeVec
	hasSync           *prometheus.GaugeVec
}

var (
	syncAcquiredTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tetrapol_sync_acquired_total",
			Help: "Total number of times frame sync was acquired",
		},
		[]string{"channel_id"},
	)
	syncLostTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tetrapol_sync_lost_total",
			Help: "Total number of times frame sync was lost",
		},
		[]string{"channel_id"},
	)
	framesOKTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tetrapol_frames_ok_total",
			Help: "Total number of frames that passed decode, type, and CRC checks",
		},
		[]string{"channel_id"},
	)
	framesDropped = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tetrapol_frames_dropped_total",
			Help: "Total number of frames dropped, by reason (decode, type, crc)",
		},
		[]string{"channel_id", "reason"},
	)
	scrCommittedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tetrapol_scr_committed_total",
			Help: "Total number of times the blind SCR detector committed to a key",
		},
		[]string{"channel_id"},
	)
	scrCurrent = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tetrapol_scr_current",
			Help: "Scrambling key last committed by the blind SCR detector, or -1 until it commits",
		},
		[]string{"channel_id"},
	)
	hasSync = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tetrapol_has_frame_sync",
			Help: "1 if the channel currently holds frame sync, 0 otherwise",
		},
		[]string{"channel_id"},
	)
)

// NewCollector returns an Observer that reports events for one channel
// under the given channel_id label.
func NewCollector(channelID string) *Collector {
	c := &Collector{
		channelID:         channelID,
		syncAcquiredTotal: syncAcquiredTotal,
		syncLostTotal:     syncLostTotal,
		framesOKTotal:     framesOKTotal,
		framesDropped:     framesDropped,
		scrCommittedTotal: scrCommittedTotal,
		scrCurrent:        scrCurrent,
		hasSync:           hasSync,
	}
	c.scrCurrent.WithLabelValues(channelID).Set(float64(tetrapol.ScrDetect))
	return c
}

// SyncAcquired implements tetrapol.Observer.
func (c *Collector) SyncAcquired() {
	c.syncAcquiredTotal.WithLabelValues(c.channelID).Inc()
	c.hasSync.WithLabelValues(c.channelID).Set(1)
}

// SyncLost implements tetrapol.Observer.
func (c *Collector) SyncLost() {
	c.syncLostTotal.WithLabelValues(c.channelID).Inc()
	c.hasSync.WithLabelValues(c.channelID).Set(0)
}

// FrameOK implements tetrapol.Observer.
func (c *Collector) FrameOK(tetrapol.FrameNo) {
	c.framesOKTotal.WithLabelValues(c.channelID).Inc()
}

// FrameDropped implements tetrapol.Observer.
func (c *Collector) FrameDropped(reason string) {
	c.framesDropped.WithLabelValues(c.channelID, reason).Inc()
}

// ScrCommitted implements tetrapol.Observer.
func (c *Collector) ScrCommitted(key int) {
	c.scrCommittedTotal.WithLabelValues(c.channelID).Inc()
	c.scrCurrent.WithLabelValues(c.channelID).Set(float64(key))
}
