package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/dbehnke/tetrapol-phys/pkg/logger"
	"github.com/dbehnke/tetrapol-phys/pkg/tetrapol"
)

// Config holds web dashboard configuration.
type Config struct {
	Enabled bool
	Host    string
	Port    int
}

// Snapshot is the point-in-time state exposed by GET /api/status.
type Snapshot struct {
	ChannelID  string `json:"channel_id"`
	HasSync    bool   `json:"has_sync"`
	SCR        int    `json:"scr"`
	Confidence int    `json:"confidence"`
	FrameNo    int    `json:"frame_no"`
}

// Server serves the dashboard's WebSocket feed and REST snapshot endpoint.
type Server struct {
	cfg  Config
	log  *logger.Logger
	hub  *Hub
	http *http.Server

	mu        sync.RWMutex
	channelID string
	channel   *tetrapol.PhysicalChannel
}

// NewServer constructs a Server bound to one PhysicalChannel for snapshots.
func NewServer(cfg Config, log *logger.Logger, channelID string, channel *tetrapol.PhysicalChannel) *Server {
	return &Server{
		cfg:       cfg,
		log:       log,
		hub:       NewHub(log),
		channelID: channelID,
		channel:   channel,
	}
}

// Observer returns a tetrapol.Observer that broadcasts every event to
// connected dashboard clients.
func (s *Server) Observer() tetrapol.Observer {
	return &hubObserver{hub: s.hub, channelID: s.channelID}
}

// Start runs the HTTP server and the hub's event loop until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if !s.cfg.Enabled {
		s.log.Info("web dashboard disabled")
		return nil
	}

	go s.hub.Run(ctx)

	mux := http.NewServeMux()
	mux.Handle("/ws", s.hub.Handler())
	mux.HandleFunc("/api/status", s.handleStatus)

	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)
	s.http = &http.Server{Addr: addr, Handler: mux}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("web dashboard listening", logger.String("addr", addr))
		if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	snap := Snapshot{ChannelID: s.channelID}
	if s.channel != nil {
		snap.HasSync = s.channel.HasFrameSync()
		snap.SCR = s.channel.GetSCR()
		snap.Confidence = s.channel.GetSCRConfidence()
		snap.FrameNo = int(s.channel.FrameNo())
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(snap)
}

// hubObserver adapts a Hub to the tetrapol.Observer interface.
type hubObserver struct {
	hub       *Hub
	channelID string
}

func (o *hubObserver) SyncAcquired() {
	o.hub.Broadcast(Event{Type: "sync_acquired", Data: map[string]interface{}{"channel_id": o.channelID}})
}

func (o *hubObserver) SyncLost() {
	o.hub.Broadcast(Event{Type: "sync_lost", Data: map[string]interface{}{"channel_id": o.channelID}})
}

func (o *hubObserver) FrameOK(frameNo tetrapol.FrameNo) {
	o.hub.Broadcast(Event{Type: "frame_ok", Data: map[string]interface{}{
		"channel_id": o.channelID,
		"frame_no":   int(frameNo),
	}})
}

func (o *hubObserver) FrameDropped(reason string) {
	o.hub.Broadcast(Event{Type: "frame_dropped", Data: map[string]interface{}{
		"channel_id": o.channelID,
		"reason":     reason,
	}})
}

func (o *hubObserver) ScrCommitted(key int) {
	o.hub.Broadcast(Event{Type: "scr_committed", Data: map[string]interface{}{
		"channel_id": o.channelID,
		"key":        key,
	}})
}
