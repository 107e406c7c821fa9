// Package mqtt publishes receiver-core events to an MQTT broker as JSON.
package mqtt

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/dbehnke/tetrapol-phys/pkg/logger"
	"github.com/dbehnke/tetrapol-phys/pkg/tetrapol"
)

// Config holds MQTT publisher configuration.
type Config struct {
	Enabled     bool
	Broker      string
	TopicPrefix string
	ClientID    string
	Username    string
	Password    string
	QoS         byte
	Retained    bool
}

// Publisher implements tetrapol.Observer and publishes each event as JSON
// to a topic under TopicPrefix. All publish calls are fire-and-forget: the
// observer contract requires Publisher's methods to return promptly, so
// Publish tokens are never waited on from the hot path.
type Publisher struct {
	config    Config
	channelID string
	log       *logger.Logger
	client    paho.Client
}

// SyncEvent reports an acquisition/loss transition.
type SyncEvent struct {
	ChannelID string    `json:"channel_id"`
	Acquired  bool      `json:"acquired"`
	Timestamp time.Time `json:"timestamp"`
}

// FrameEvent reports a successfully decoded frame.
type FrameEvent struct {
	ChannelID string    `json:"channel_id"`
	FrameNo   int       `json:"frame_no"`
	Timestamp time.Time `json:"timestamp"`
}

// FrameDroppedEvent reports a dropped frame and why.
type FrameDroppedEvent struct {
	ChannelID string    `json:"channel_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// ScrCommittedEvent reports a blind-detected scrambling key commit.
type ScrCommittedEvent struct {
	ChannelID string    `json:"channel_id"`
	Key       int       `json:"key"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a Publisher. If cfg.Enabled is true it dials the broker
// immediately; a connection failure is returned rather than silently
// degrading to a no-op, since the caller asked for MQTT explicitly.
func New(cfg Config, channelID string, log *logger.Logger) (*Publisher, error) {
	if log == nil {
		log = logger.New(logger.Config{Level: "info", Format: "text"})
	}
	p := &Publisher{
		config:    cfg,
		channelID: channelID,
		log:       log.WithComponent("mqtt"),
	}

	if !cfg.Enabled {
		p.log.Info("mqtt publisher disabled")
		return p, nil
	}

	opts := paho.NewClientOptions()
	opts.AddBroker(cfg.Broker)
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = "tetrapol-" + channelID
	}
	opts.SetClientID(clientID)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	opts.SetAutoReconnect(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetOnConnectHandler(func(paho.Client) {
		p.log.Info("connected to mqtt broker", logger.String("broker", cfg.Broker))
	})
	opts.SetConnectionLostHandler(func(_ paho.Client, err error) {
		p.log.Warn("mqtt connection lost", logger.Error(err))
	})

	client := paho.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("mqtt: failed to connect to %s: %w", cfg.Broker, token.Error())
	}
	p.client = client
	return p, nil
}

// Close disconnects the underlying MQTT client, if connected.
func (p *Publisher) Close() {
	if p.client != nil && p.client.IsConnected() {
		p.client.Disconnect(250)
	}
}

func (p *Publisher) topic(suffix string) string {
	prefix := strings.TrimSuffix(p.config.TopicPrefix, "/")
	if prefix == "" {
		return suffix
	}
	return prefix + "/" + suffix
}

func (p *Publisher) publish(topic string, event interface{}) {
	if !p.config.Enabled || p.client == nil {
		return
	}
	payload, err := json.Marshal(event)
	if err != nil {
		p.log.Error("failed to marshal mqtt event", logger.String("topic", topic), logger.Error(err))
		return
	}
	p.client.Publish(topic, p.config.QoS, p.config.Retained, payload)
}

// SyncAcquired implements tetrapol.Observer.
func (p *Publisher) SyncAcquired() {
	p.publish(p.topic("sync"), SyncEvent{ChannelID: p.channelID, Acquired: true, Timestamp: time.Now()})
}

// SyncLost implements tetrapol.Observer.
func (p *Publisher) SyncLost() {
	p.publish(p.topic("sync"), SyncEvent{ChannelID: p.channelID, Acquired: false, Timestamp: time.Now()})
}

// FrameOK implements tetrapol.Observer.
func (p *Publisher) FrameOK(frameNo tetrapol.FrameNo) {
	p.publish(p.topic("frames/ok"), FrameEvent{ChannelID: p.channelID, FrameNo: int(frameNo), Timestamp: time.Now()})
}

// FrameDropped implements tetrapol.Observer.
func (p *Publisher) FrameDropped(reason string) {
	p.publish(p.topic("frames/dropped"), FrameDroppedEvent{ChannelID: p.channelID, Reason: reason, Timestamp: time.Now()})
}

// ScrCommitted implements tetrapol.Observer.
func (p *Publisher) ScrCommitted(key int) {
	p.publish(p.topic("scr"), ScrCommittedEvent{ChannelID: p.channelID, Key: key, Timestamp: time.Now()})
}
