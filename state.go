package tumble

import (
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/akmonengine/tumble/actor"
	"github.com/go-gl/mathgl/mgl64"
)

const (
	// StateBlobName is the storage name of the persisted scene
	StateBlobName = "state.bin"

	sceneStateFloats = 3 + 3 + 9 + 3 + 3
	// SceneStateSize is the encoded size of a SceneState in bytes
	SceneStateSize = sceneStateFloats * 8
)

var ErrShortState = errors.New("scene state blob too short")

// SceneState is the persisted part of a simulation: gravity, pose and velocities of the cube
type SceneState struct {
	Gravity mgl64.Vec3
	Cube    actor.Transform
	Motion  actor.Motion
}

// MarshalBinary encodes the state as little endian float64 values:
// gravity, position, rotation (column major), linear and angular velocity.
func (s SceneState) MarshalBinary() ([]byte, error) {
	buf := make([]byte, 0, SceneStateSize)

	buf = appendFloats(buf, s.Gravity[:])
	buf = appendFloats(buf, s.Cube.Position[:])
	buf = appendFloats(buf, s.Cube.Rotation[:])
	buf = appendFloats(buf, s.Motion.Linear[:])
	buf = appendFloats(buf, s.Motion.Angular[:])

	return buf, nil
}

// UnmarshalBinary decodes a state written by MarshalBinary.
// Trailing bytes are ignored.
func (s *SceneState) UnmarshalBinary(data []byte) error {
	if len(data) < SceneStateSize {
		return fmt.Errorf("%w: %d bytes, want %d", ErrShortState, len(data), SceneStateSize)
	}

	data = readFloats(data, s.Gravity[:])
	data = readFloats(data, s.Cube.Position[:])
	data = readFloats(data, s.Cube.Rotation[:])
	data = readFloats(data, s.Motion.Linear[:])
	readFloats(data, s.Motion.Angular[:])

	return nil
}

func appendFloats(buf []byte, values []float64) []byte {
	for _, v := range values {
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(v))
	}

	return buf
}

func readFloats(data []byte, values []float64) []byte {
	for i := range values {
		values[i] = math.Float64frombits(binary.LittleEndian.Uint64(data))
		data = data[8:]
	}

	return data
}
