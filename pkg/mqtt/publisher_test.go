package mqtt

import "testing"

func TestNewDisabledPublisherDoesNotDial(t *testing.T) {
	pub, err := New(Config{Enabled: false}, "cch-1", nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if pub.client != nil {
		t.Fatal("disabled publisher should not construct an MQTT client")
	}

	// All Observer methods must be safe to call even when disabled.
	pub.SyncAcquired()
	pub.SyncLost()
	pub.FrameOK(0)
	pub.FrameDropped("crc")
	pub.ScrCommitted(42)
	pub.Close()
}

func TestTopicFormatting(t *testing.T) {
	pub := &Publisher{config: Config{TopicPrefix: "tetrapol/cch1"}}
	if got, want := pub.topic("sync"), "tetrapol/cch1/sync"; got != want {
		t.Fatalf("topic(sync) = %q, want %q", got, want)
	}

	pub2 := &Publisher{config: Config{TopicPrefix: ""}}
	if got, want := pub2.topic("sync"), "sync"; got != want {
		t.Fatalf("topic(sync) with empty prefix = %q, want %q", got, want)
	}
}
