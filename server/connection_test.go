package server

import (
	"bytes"
	"strings"
	"sync/atomic"
	"testing"
)

func TestFrameSmallPayloadStaysRaw(t *testing.T) {
	c := &ClientConn{compressionOK: true}
	payload := []byte(`{"type":"roomState"}`)

	got := c.frame(payload)

	if got[0] != rawFramePrefix {
		t.Fatalf("frame()[0] = %x, want rawFramePrefix for a payload under the threshold", got[0])
	}
	if !bytes.Equal(got[1:], payload) {
		t.Fatal("raw frame body should equal the original payload untouched")
	}
}

func TestFrameLargePayloadCompressesAndRoundTrips(t *testing.T) {
	c := &ClientConn{compressionOK: true}
	payload := []byte(`{"type":"gameState","players":"` + strings.Repeat("x", compressionThreshold+1) + `"}`)

	got := c.frame(payload)

	if got[0] != compressedFramePrefix {
		t.Fatalf("frame()[0] = %x, want compressedFramePrefix for a payload over the threshold", got[0])
	}

	back, err := inflateEnvelope(got)
	if err != nil {
		t.Fatalf("inflateEnvelope: %v", err)
	}
	if !bytes.Equal(back, payload) {
		t.Fatal("inflated frame did not round-trip to the original payload")
	}
}

func TestFrameCompressionDisabledStaysRawRegardlessOfSize(t *testing.T) {
	c := &ClientConn{compressionOK: false}
	payload := []byte(strings.Repeat("y", compressionThreshold*2))

	got := c.frame(payload)

	if got[0] != rawFramePrefix {
		t.Fatal("a connection that signaled no compression support must always get raw frames")
	}
}

func TestFrameWithoutMetricsDoesNotPanic(t *testing.T) {
	c := &ClientConn{compressionOK: true}
	_ = c.frame([]byte("short"))
}

func TestFrameRecordsBroadcastMetrics(t *testing.T) {
	c := &ClientConn{compressionOK: true}
	m := &RoomMetrics{}
	c.SetMetrics(m)

	c.frame([]byte(`{"type":"roomState"}`))

	if got := atomic.LoadInt64(&m.BroadcastFrames); got != 1 {
		t.Fatalf("BroadcastFrames = %d, want 1", got)
	}
}

func TestInflateEnvelopeRejectsEmptyFrame(t *testing.T) {
	if _, err := inflateEnvelope(nil); err == nil {
		t.Fatal("expected an error for an empty frame")
	}
}
