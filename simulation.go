package tumble

import (
	"errors"
	"fmt"
	"log"

	"github.com/akmonengine/tumble/actor"
	"github.com/go-gl/mathgl/mgl64"
)

// Storage persists the scene between runs
type Storage interface {
	// LoadBlob returns false when no blob was saved under name
	LoadBlob(name string) ([]byte, bool, error)
	SaveBlob(name string, data []byte) error
}

// SceneConfig describes the initial scene and the stepping policy
type SceneConfig struct {
	Gravity  mgl64.Vec3 `yaml:"gravity"`
	Position mgl64.Vec3 `yaml:"position"`
	// RotationAxis and RotationAngle (degrees) give the initial orientation of the cube
	RotationAxis  mgl64.Vec3 `yaml:"rotation_axis"`
	RotationAngle float64    `yaml:"rotation_angle"`
	Size          mgl64.Vec3 `yaml:"size"`
	Mass          float64    `yaml:"mass"`
	WallsSize     mgl64.Vec3 `yaml:"walls_size"`

	Substeps int `yaml:"substeps"`
	// Damping is disabled when zero
	Damping float64 `yaml:"damping"`
	// Sleeping is disabled when SleepTime is zero, the default.
	// 0.5 lets the positional correction finish before the cube sleeps on the floor.
	SleepTime     float64 `yaml:"sleep_time"`
	SleepVelocity float64 `yaml:"sleep_velocity"`
}

// DefaultSceneConfig is a unit cube tilted by 50° inside walls of 4.3, gravity pulling along -(1,1,1)
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{
		Gravity:       mgl64.Vec3{1, 1, 1}.Normalize().Mul(-9.8),
		Position:      mgl64.Vec3{0, 0, 0},
		RotationAxis:  mgl64.Vec3{1, 1, 1},
		RotationAngle: 50,
		Size:          mgl64.Vec3{1, 1, 1},
		Mass:          1,
		WallsSize:     mgl64.Vec3{4.3, 4.3, 4.3},
		Substeps:      1,
		SleepTime:     0,
		SleepVelocity: 0.05,
	}
}

func (c SceneConfig) Validate() error {
	for i := range 3 {
		if c.Size[i] <= 0 {
			return fmt.Errorf("size %v: every dimension must be positive", c.Size)
		}
		if c.WallsSize[i] <= 0 {
			return fmt.Errorf("walls size %v: every dimension must be positive", c.WallsSize)
		}
	}
	if c.Mass <= 0 {
		return fmt.Errorf("mass %v must be positive", c.Mass)
	}
	if c.Substeps < 1 {
		return fmt.Errorf("substeps %d must be at least 1", c.Substeps)
	}
	if c.Damping < 0 || c.SleepTime < 0 || c.SleepVelocity < 0 {
		return errors.New("damping and sleep settings must not be negative")
	}

	return nil
}

// Simulation owns the cube, its dynamic state and the static walls
type Simulation struct {
	Config  SceneConfig
	Storage Storage
	Events  Events
	// Fatal reports broken preconditions, it defaults to logger.Fatalf
	Fatal func(format string, args ...any)

	logger *log.Logger

	gravity mgl64.Vec3
	cube    *actor.RigidBox
	walls   *actor.RigidBox
	body    *actor.RigidBody

	initialized bool
}

// NewSimulation creates a simulation; storage may be nil to disable persistence
func NewSimulation(config SceneConfig, storage Storage, logger *log.Logger) *Simulation {
	if logger == nil {
		logger = log.Default()
	}

	return &Simulation{
		Config:  config,
		Storage: storage,
		Events:  NewEvents(),
		Fatal:   logger.Fatalf,
		logger:  logger,
	}
}

// Initialize builds the scene from the configuration, then restores the saved state if any
func (s *Simulation) Initialize() error {
	if s.initialized {
		s.Fatal("[Simulation] Initialize called twice")
		return nil
	}
	if err := s.Config.Validate(); err != nil {
		s.Fatal("[Simulation] invalid scene: %v", err)
		return err
	}

	s.gravity = s.Config.Gravity
	s.cube = actor.NewRigidBox(
		s.Config.Position,
		actor.RotationFromAxisAngle(s.Config.RotationAxis, s.Config.RotationAngle),
		s.Config.Size,
	)
	s.walls = actor.NewRigidBox(mgl64.Vec3{}, mgl64.Ident3(), s.Config.WallsSize)
	s.body = actor.NewRigidBody(s.cube, s.walls, s.Config.Mass)

	if err := s.loadState(); err != nil {
		return err
	}

	if !s.walls.Bounds().ContainsBox(s.cube) {
		s.logger.Printf("[Simulation] cube at %v is not fully inside the walls", s.cube.Position())
	}

	s.initialized = true

	return nil
}

func (s *Simulation) loadState() error {
	if s.Storage == nil {
		return nil
	}

	data, ok, err := s.Storage.LoadBlob(StateBlobName)
	if err != nil {
		return fmt.Errorf("load %s: %w", StateBlobName, err)
	}
	if !ok {
		s.logger.Printf("[Simulation] no saved state, starting from the default scene")
		return nil
	}

	var state SceneState
	if err := state.UnmarshalBinary(data); err != nil {
		if errors.Is(err, ErrShortState) {
			s.logger.Printf("[Simulation] ignoring saved state: %v", err)
			return nil
		}
		return err
	}

	s.gravity = state.Gravity
	s.cube.LoadState(state.Cube)
	s.body.LoadState(state.Motion)

	return nil
}

// Finalize saves the state; calling it again is a no-op
func (s *Simulation) Finalize() error {
	if !s.initialized {
		return nil
	}
	s.initialized = false

	if s.Storage == nil {
		return nil
	}

	data, err := s.State().MarshalBinary()
	if err != nil {
		return err
	}
	if err := s.Storage.SaveBlob(StateBlobName, data); err != nil {
		return fmt.Errorf("save %s: %w", StateBlobName, err)
	}

	return nil
}

// Step advances the scene by dt, split in Config.Substeps substeps
func (s *Simulation) Step(dt float64) {
	if !s.initialized {
		s.Fatal("[Simulation] Step called before Initialize")
		return
	}

	if !s.body.IsSleeping {
		h := dt / float64(s.Config.Substeps)

		for range s.Config.Substeps {
			s.body.ApplyGravity(s.gravity, h)
			s.Events.recordContacts(s.body.ProcessCollisions())
			s.body.Integrate(h)

			if s.Config.Damping > 0 {
				s.body.ApplyDamping(h, s.Config.Damping)
			}
			if s.Config.SleepTime > 0 {
				s.body.TrySleep(h, s.Config.SleepTime, s.Config.SleepVelocity)
				if s.body.IsSleeping {
					break
				}
			}
		}
	}

	s.Events.processSleepEvents(s.body)
	s.Events.flush(s.body)
}

// SetGravity changes the gravity used by the next steps; a new value wakes the cube
func (s *Simulation) SetGravity(gravity mgl64.Vec3) {
	if gravity == s.gravity {
		return
	}

	s.gravity = gravity
	if s.body != nil && s.body.IsSleeping {
		s.body.Awake()
	}
}

func (s *Simulation) Gravity() mgl64.Vec3 {
	return s.gravity
}

func (s *Simulation) Cube() *actor.RigidBox {
	return s.cube
}

func (s *Simulation) Walls() *actor.RigidBox {
	return s.walls
}

func (s *Simulation) Body() *actor.RigidBody {
	return s.body
}

// State captures the persisted part of the scene
func (s *Simulation) State() SceneState {
	return SceneState{
		Gravity: s.gravity,
		Cube:    s.cube.SaveState(),
		Motion:  s.body.SaveState(),
	}
}
