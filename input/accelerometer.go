package input

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync/atomic"

	"github.com/akmonengine/tumble/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// GravitySetter receives the gravity read from the sensor
type GravitySetter interface {
	SetGravity(gravity mgl64.Vec3)
}

type Config struct {
	// FilterAlpha is the weight of a new sample in the low-pass filter
	FilterAlpha float64 `yaml:"filter_alpha"`
	// An axis is snapped to ±Magnitude above Threshold, to 0 below
	Threshold  float64 `yaml:"threshold"`
	Magnitude  float64 `yaml:"magnitude"`
	BufferSize int     `yaml:"buffer_size"`
}

func DefaultConfig() Config {
	return Config{
		FilterAlpha: 0.1,
		Threshold:   5,
		Magnitude:   9.8,
		BufferSize:  64,
	}
}

func (c Config) Validate() error {
	if c.FilterAlpha <= 0 || c.FilterAlpha > 1 {
		return fmt.Errorf("filter alpha %v must be in (0, 1]", c.FilterAlpha)
	}
	if c.Threshold < 0 || c.Magnitude < 0 {
		return errors.New("threshold and magnitude must not be negative")
	}
	if c.BufferSize < 1 {
		return fmt.Errorf("buffer size %d must be at least 1", c.BufferSize)
	}

	return nil
}

// Accelerometer turns device acceleration samples into the gravity of the scene.
// Push can be called from any goroutine, the other methods from the engine goroutine only.
type Accelerometer struct {
	config Config
	target GravitySetter
	logger *log.Logger

	samples chan mgl64.Vec3
	dropped atomic.Uint64

	// mounting rotates the device frame into the scene frame
	mounting mgl64.Mat3
	filter   mgl64.Vec3
	received bool
}

func NewAccelerometer(config Config, target GravitySetter, logger *log.Logger) *Accelerometer {
	if logger == nil {
		logger = log.Default()
	}
	if config.BufferSize < 1 {
		config.BufferSize = DefaultConfig().BufferSize
	}

	return &Accelerometer{
		config:   config,
		target:   target,
		logger:   logger,
		samples:  make(chan mgl64.Vec3, config.BufferSize),
		mounting: actor.RotationFromAxisAngle(mgl64.Vec3{1, 0, 0}, -90),
	}
}

func (a *Accelerometer) Initialize() error {
	if err := a.config.Validate(); err != nil {
		return fmt.Errorf("accelerometer: %w", err)
	}
	if a.target == nil {
		return errors.New("accelerometer: no gravity target")
	}

	a.filter = mgl64.Vec3{}
	a.received = false

	return nil
}

// Finalize drops the pending samples
func (a *Accelerometer) Finalize() error {
	for {
		select {
		case <-a.samples:
		default:
			if dropped := a.dropped.Load(); dropped > 0 {
				a.logger.Printf("[Input] %d samples dropped", dropped)
			}
			return nil
		}
	}
}

// Push queues a sample, it is dropped when the buffer is full.
// It returns false when dropped.
func (a *Accelerometer) Push(sample mgl64.Vec3) bool {
	select {
	case a.samples <- sample:
		return true
	default:
		a.dropped.Add(1)
		return false
	}
}

// Poll filters the pending samples and updates the gravity.
// The gravity is left untouched until a first sample is received.
func (a *Accelerometer) Poll() {
	for drained := false; !drained; {
		select {
		case sample := <-a.samples:
			a.filterSample(sample)
		default:
			drained = true
		}
	}

	if !a.received {
		return
	}

	a.target.SetGravity(a.Gravity())
}

func (a *Accelerometer) filterSample(sample mgl64.Vec3) {
	if !a.received {
		a.filter = sample
		a.received = true
		return
	}

	alpha := a.config.FilterAlpha
	a.filter = sample.Mul(alpha).Add(a.filter.Mul(1 - alpha))
}

// Gravity is the filtered acceleration in the scene frame, each axis snapped to ±Magnitude or 0
func (a *Accelerometer) Gravity() mgl64.Vec3 {
	rotated := a.mounting.Mul3x1(a.filter)

	var gravity mgl64.Vec3
	for i := range 3 {
		if math.Abs(rotated[i]) > a.config.Threshold {
			gravity[i] = math.Copysign(a.config.Magnitude, rotated[i])
		}
	}

	return gravity
}
