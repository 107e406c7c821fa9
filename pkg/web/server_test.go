package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dbehnke/tetrapol-phys/pkg/logger"
)

func TestHandleStatusWithoutChannel(t *testing.T) {
	s := NewServer(Config{Enabled: true, Host: "127.0.0.1", Port: 0}, logger.New(logger.Config{Level: "error"}), "cch-1", nil)

	req := httptest.NewRequest(http.MethodGet, "/api/status", nil)
	rec := httptest.NewRecorder()
	s.handleStatus(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var snap Snapshot
	if err := json.NewDecoder(rec.Body).Decode(&snap); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if snap.ChannelID != "cch-1" {
		t.Fatalf("ChannelID = %q, want cch-1", snap.ChannelID)
	}
}

func TestHubObserverBroadcastsWithoutPanicking(t *testing.T) {
	hub := NewHub(logger.New(logger.Config{Level: "error"}))
	obs := &hubObserver{hub: hub, channelID: "cch-1"}

	obs.SyncAcquired()
	obs.SyncLost()
	obs.FrameOK(3)
	obs.FrameDropped("crc")
	obs.ScrCommitted(42)
}
