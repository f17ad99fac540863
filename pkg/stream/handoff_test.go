package stream

import (
	"context"
	"errors"
	"io"
	"runtime"
	"testing"
	"time"
)

func TestTakeTransport_NoChannel(t *testing.T) {
	for _, state := range []StreamState{StreamStateIdle, StreamStateConfigured, StreamStateOpening} {
		f := newFixture(t, time.Second)
		f.driveTo(t, state)

		if _, err := f.ep.TakeTransport(); !errors.Is(err, ErrInvalidState) {
			t.Errorf("TakeTransport() in %s error = %v, want ErrInvalidState", state, err)
		}
	}
}

func TestTakeTransport_Exclusive(t *testing.T) {
	f := newFixture(t, time.Second)
	f.driveTo(t, StreamStateOpen)

	first, err := f.ep.TakeTransport()
	if err != nil {
		t.Fatalf("first TakeTransport() error = %v", err)
	}

	if _, err := f.ep.TakeTransport(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("second TakeTransport() error = %v, want ErrInvalidState", err)
	}

	first.Close()

	second, err := f.ep.TakeTransport()
	if err != nil {
		t.Fatalf("TakeTransport() after Close error = %v", err)
	}
	second.Close()
}

func TestTakeTransport_DroppedStreamReleasesClaim(t *testing.T) {
	f := newFixture(t, time.Second)
	f.driveTo(t, StreamStateOpen)

	func() {
		if _, err := f.ep.TakeTransport(); err != nil {
			t.Fatalf("TakeTransport() error = %v", err)
		}
	}()

	var err error
	for i := 0; i < 100; i++ {
		runtime.GC()
		var ms *MediaStream
		if ms, err = f.ep.TakeTransport(); err == nil {
			ms.Close()
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("TakeTransport() after dropping the stream error = %v, want nil", err)
}

func TestTakeTransport_WhileClosing(t *testing.T) {
	f := newFixture(t, time.Second)
	f.driveTo(t, StreamStateClosing)

	ms, err := f.ep.TakeTransport()
	if err != nil {
		t.Fatalf("TakeTransport() in Closing error = %v", err)
	}
	defer ms.Close()

	if err := f.ep.Abort(context.Background(), nil); err != nil {
		t.Fatalf("Abort() error = %v", err)
	}
	if _, err := ms.ReadPacket(context.Background()); err != io.EOF {
		t.Errorf("ReadPacket() after release completed error = %v, want io.EOF", err)
	}
}

func TestMediaStream_ReadWrite(t *testing.T) {
	f := newFixture(t, time.Second)
	f.driveTo(t, StreamStateStreaming)

	ms, err := f.ep.TakeTransport()
	if err != nil {
		t.Fatalf("TakeTransport() error = %v", err)
	}
	defer ms.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	if _, err := ms.Write([]byte("outbound")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	got, err := f.remote.ReadPacket(ctx)
	if err != nil || string(got) != "outbound" {
		t.Errorf("remote ReadPacket() = %q, %v; want outbound", got, err)
	}

	if _, err := f.remote.Write([]byte("inbound")); err != nil {
		t.Fatalf("remote Write() error = %v", err)
	}
	buf := make([]byte, 64)
	n, err := ms.Read(buf)
	if err != nil || string(buf[:n]) != "inbound" {
		t.Errorf("Read() = %q, %v; want inbound", buf[:n], err)
	}
}

func TestMediaStream_ShortBuffer(t *testing.T) {
	f := newFixture(t, time.Second)
	f.driveTo(t, StreamStateOpen)

	ms, _ := f.ep.TakeTransport()
	defer ms.Close()

	f.remote.Write([]byte("0123456789"))
	buf := make([]byte, 4)
	n, err := ms.Read(buf)
	if err != io.ErrShortBuffer || n != 4 {
		t.Errorf("Read() = %d, %v; want 4, io.ErrShortBuffer", n, err)
	}
}

func TestMediaStream_InvalidatedByAbort(t *testing.T) {
	f := newFixture(t, time.Second)
	f.driveTo(t, StreamStateStreaming)

	ms, err := f.ep.TakeTransport()
	if err != nil {
		t.Fatalf("TakeTransport() error = %v", err)
	}

	if err := f.ep.Abort(context.Background(), nil); err != nil {
		t.Fatalf("Abort() error = %v", err)
	}

	if _, err := ms.ReadPacket(context.Background()); err != io.EOF {
		t.Errorf("ReadPacket() after Abort error = %v, want io.EOF", err)
	}
	if _, err := ms.Write([]byte("late")); !errors.Is(err, ErrConnectionAborted) {
		t.Errorf("Write() after Abort error = %v, want ErrConnectionAborted", err)
	}

	// Releasing a stream whose channel is gone still clears the claim.
	if err := ms.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if ms.inUse.Load() {
		t.Error("exclusivity flag still set after Close")
	}
}

func TestMediaStream_InvalidatedByEndpointClose(t *testing.T) {
	f := newFixture(t, time.Second)
	f.driveTo(t, StreamStateOpen)

	ms, _ := f.ep.TakeTransport()
	defer ms.Close()

	f.ep.Close()

	if _, err := ms.Write([]byte("x")); !errors.Is(err, ErrConnectionAborted) {
		t.Errorf("Write() after endpoint Close error = %v, want ErrConnectionAborted", err)
	}
	if _, err := ms.Read(make([]byte, 8)); err != io.EOF {
		t.Errorf("Read() after endpoint Close error = %v, want io.EOF", err)
	}
}

func TestMediaStream_PeerClosed(t *testing.T) {
	f := newFixture(t, time.Second)
	f.driveTo(t, StreamStateOpen)

	ms, _ := f.ep.TakeTransport()
	defer ms.Close()

	f.remote.Write([]byte("last"))
	time.Sleep(20 * time.Millisecond)
	f.remote.Close()

	select {
	case <-f.local.Closed():
	case <-time.After(time.Second):
		t.Fatal("local channel did not observe peer close")
	}

	got, err := ms.ReadPacket(context.Background())
	if err != nil || string(got) != "last" {
		t.Errorf("ReadPacket() = %q, %v; want queued packet", got, err)
	}
	if _, err := ms.ReadPacket(context.Background()); err != io.EOF {
		t.Errorf("ReadPacket() after drain error = %v, want io.EOF", err)
	}
	if _, err := ms.Write([]byte("x")); !errors.Is(err, ErrConnectionAborted) {
		t.Errorf("Write() to closed channel error = %v, want ErrConnectionAborted", err)
	}
}

func TestMediaStream_UseAfterClose(t *testing.T) {
	f := newFixture(t, time.Second)
	f.driveTo(t, StreamStateOpen)

	ms, _ := f.ep.TakeTransport()
	ms.Close()
	ms.Close()

	if _, err := ms.Write([]byte("x")); !errors.Is(err, ErrStreamClosed) {
		t.Errorf("Write() after Close error = %v, want ErrStreamClosed", err)
	}
	if _, err := ms.ReadPacket(context.Background()); !errors.Is(err, ErrStreamClosed) {
		t.Errorf("ReadPacket() after Close error = %v, want ErrStreamClosed", err)
	}
}

func TestMediaStream_StaleAcrossReopen(t *testing.T) {
	f := newFixture(t, time.Second)
	f.driveTo(t, StreamStateOpen)

	stale, _ := f.ep.TakeTransport()
	f.ep.Abort(context.Background(), nil)
	f.remote.Close()

	// Reopen with a fresh channel; the stale handle must not reach it and
	// the new channel starts with a released claim.
	f.driveTo(t, StreamStateOpen)

	if _, err := stale.Write([]byte("x")); !errors.Is(err, ErrConnectionAborted) {
		t.Errorf("stale Write() error = %v, want ErrConnectionAborted", err)
	}

	fresh, err := f.ep.TakeTransport()
	if err != nil {
		t.Fatalf("TakeTransport() on reopened stream error = %v", err)
	}
	fresh.Close()
	stale.Close()
}
