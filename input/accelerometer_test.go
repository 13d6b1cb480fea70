package input

import (
	"io"
	"log"
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type gravityRecorder struct {
	calls   int
	gravity mgl64.Vec3
}

func (g *gravityRecorder) SetGravity(gravity mgl64.Vec3) {
	g.calls++
	g.gravity = gravity
}

func newTestAccelerometer(t *testing.T, config Config) (*Accelerometer, *gravityRecorder) {
	t.Helper()

	recorder := &gravityRecorder{}
	a := NewAccelerometer(config, recorder, log.New(io.Discard, "", 0))
	if err := a.Initialize(); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}

	return a, recorder
}

func TestAccelerometer_NoSampleKeepsGravity(t *testing.T) {
	a, recorder := newTestAccelerometer(t, DefaultConfig())

	a.Poll()
	a.Poll()

	if recorder.calls != 0 {
		t.Errorf("SetGravity called %d times before any sample", recorder.calls)
	}
}

func TestAccelerometer_Orientation(t *testing.T) {
	tests := []struct {
		name     string
		sample   mgl64.Vec3
		expected mgl64.Vec3
	}{
		{"upright", mgl64.Vec3{0, 9.8, 0}, mgl64.Vec3{0, 0, -9.8}},
		{"upside down", mgl64.Vec3{0, -9.8, 0}, mgl64.Vec3{0, 0, 9.8}},
		{"flat on the table", mgl64.Vec3{0, 0, 9.8}, mgl64.Vec3{0, 9.8, 0}},
		{"on the side", mgl64.Vec3{-9.8, 0, 0}, mgl64.Vec3{-9.8, 0, 0}},
		{"tilted corner", mgl64.Vec3{7, 7, 7}, mgl64.Vec3{9.8, 9.8, -9.8}},
		{"weak reading", mgl64.Vec3{4, 4.9, 1}, mgl64.Vec3{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, recorder := newTestAccelerometer(t, DefaultConfig())

			a.Push(tt.sample)
			a.Poll()

			if recorder.calls != 1 {
				t.Fatalf("SetGravity called %d times, want 1", recorder.calls)
			}
			if recorder.gravity != tt.expected {
				t.Errorf("gravity = %v, want %v", recorder.gravity, tt.expected)
			}
		})
	}
}

func TestAccelerometer_LowPassFilter(t *testing.T) {
	a, recorder := newTestAccelerometer(t, DefaultConfig())

	// upright, then a single opposite spike
	a.Push(mgl64.Vec3{0, 9.8, 0})
	a.Poll()
	a.Push(mgl64.Vec3{0, -9.8, 0})
	a.Poll()

	if recorder.gravity != (mgl64.Vec3{0, 0, -9.8}) {
		t.Errorf("a single spike should be filtered out, gravity = %v", recorder.gravity)
	}

	// the filter follows a sustained change
	for range 30 {
		a.Push(mgl64.Vec3{0, -9.8, 0})
		a.Poll()
	}
	if recorder.gravity != (mgl64.Vec3{0, 0, 9.8}) {
		t.Errorf("gravity = %v, want the device flipped", recorder.gravity)
	}
}

func TestAccelerometer_PushDropsWhenFull(t *testing.T) {
	config := DefaultConfig()
	config.BufferSize = 2
	a, _ := newTestAccelerometer(t, config)

	if !a.Push(mgl64.Vec3{}) || !a.Push(mgl64.Vec3{}) {
		t.Fatal("Push() should accept samples until the buffer is full")
	}
	if a.Push(mgl64.Vec3{}) {
		t.Error("Push() should drop when the buffer is full")
	}
	if a.dropped.Load() != 1 {
		t.Errorf("dropped = %d, want 1", a.dropped.Load())
	}

	a.Poll()
	if !a.Push(mgl64.Vec3{}) {
		t.Error("Poll() should drain the buffer")
	}
}

func TestAccelerometer_ConcurrentPush(t *testing.T) {
	config := DefaultConfig()
	config.BufferSize = 1000
	a, recorder := newTestAccelerometer(t, config)

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				a.Push(mgl64.Vec3{0, 9.8, 0})
			}
		}()
	}
	wg.Wait()

	a.Poll()

	if len(a.samples) != 0 {
		t.Errorf("%d samples left after Poll", len(a.samples))
	}
	if recorder.gravity != (mgl64.Vec3{0, 0, -9.8}) {
		t.Errorf("gravity = %v", recorder.gravity)
	}
}

func TestAccelerometer_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"zero alpha", func(c *Config) { c.FilterAlpha = 0 }},
		{"alpha above one", func(c *Config) { c.FilterAlpha = 1.5 }},
		{"negative threshold", func(c *Config) { c.Threshold = -1 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)

			a := NewAccelerometer(config, &gravityRecorder{}, log.New(io.Discard, "", 0))
			if err := a.Initialize(); err == nil {
				t.Error("Initialize() should fail")
			}
		})
	}
}

func TestAccelerometer_FinalizeDrains(t *testing.T) {
	a, _ := newTestAccelerometer(t, DefaultConfig())
	a.Push(mgl64.Vec3{1, 2, 3})

	if err := a.Finalize(); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}
	if len(a.samples) != 0 {
		t.Errorf("%d samples left after Finalize", len(a.samples))
	}
}
