package metrics

import (
	"testing"

	dto "github.com/prometheus/client_model/go"

	"github.com/dbehnke/tetrapol-phys/pkg/tetrapol"
)

func counterValue(t *testing.T, m *dto.Metric) float64 {
	t.Helper()
	return m.GetCounter().GetValue()
}

func TestCollectorRecordsFrameOutcomes(t *testing.T) {
	c := NewCollector("test-channel-a")

	c.SyncAcquired()
	c.FrameOK(tetrapol.FrameNo(0))
	c.FrameOK(tetrapol.FrameNo(1))
	c.FrameDropped("crc")
	c.ScrCommitted(42)
	c.SyncLost()

	var m dto.Metric
	if err := c.framesOKTotal.WithLabelValues("test-channel-a").Write(&m); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := counterValue(t, &m); got != 2 {
		t.Fatalf("framesOKTotal = %v, want 2", got)
	}

	var dropped dto.Metric
	if err := c.framesDropped.WithLabelValues("test-channel-a", "crc").Write(&dropped); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if got := counterValue(t, &dropped); got != 1 {
		t.Fatalf("framesDropped[crc] = %v, want 1", got)
	}
}
