package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/akmonengine/tumble/render"
)

const (
	DefaultTickRate      = 60
	DefaultQueueCapacity = 30
)

var (
	ErrSetupFailed    = errors.New("engine setup failed")
	ErrNotInitialized = errors.New("engine not initialized")
)

// AssetManager gives access to the files of the application
type AssetManager interface {
	Initialize(dir string) error
	Finalize() error
}

// Physics is stepped once per tick with the fixed frame duration in seconds
type Physics interface {
	Initialize() error
	Finalize() error
	Step(dt float64)
}

// Renderer draws the scene once per tick into its output target
type Renderer interface {
	Initialize() error
	Finalize() error
	SetOutputTarget(target render.Target)
	Draw()
}

// InputManager is polled once per tick, before the physics step
type InputManager interface {
	Initialize() error
	Finalize() error
	Poll()
}

// Collaborators are driven by the engine goroutine; a nil collaborator is skipped
type Collaborators struct {
	Assets   AssetManager
	Physics  Physics
	Renderer Renderer
	Input    InputManager
}

type Config struct {
	TickRate int `yaml:"tick_rate"`
	// MaxLagFrames is the lag tolerated before the tick clock is snapped to now
	MaxLagFrames  int `yaml:"max_lag_frames"`
	QueueCapacity int `yaml:"queue_capacity"`
}

func DefaultConfig() Config {
	return Config{
		TickRate:      DefaultTickRate,
		MaxLagFrames:  0,
		QueueCapacity: DefaultQueueCapacity,
	}
}

func (c Config) Validate() error {
	if c.TickRate <= 0 {
		return fmt.Errorf("tick rate %d must be positive", c.TickRate)
	}
	if c.MaxLagFrames < 0 {
		return fmt.Errorf("max lag frames %d must not be negative", c.MaxLagFrames)
	}
	if c.QueueCapacity < 1 {
		return fmt.Errorf("queue capacity %d must be at least 1", c.QueueCapacity)
	}

	return nil
}

// engineTestHooks provides injection points for deterministic testing.
// They are called from the engine goroutine.
type engineTestHooks struct {
	OnEvent func(Event)         // Called after an event is processed
	OnTick  func(tick uint64)   // Called after a tick
	OnWait  func(time.Duration) // Called before a timed wait on the queue
}

type Option func(*Engine)

func WithLogger(logger *log.Logger) Option {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

func WithClock(clock Clock) Option {
	return func(e *Engine) {
		e.clock = clock
	}
}

// WithFatal replaces the handler of broken preconditions, logger.Fatalf by default
func WithFatal(fatal func(format string, args ...any)) Option {
	return func(e *Engine) {
		e.fatal = fatal
	}
}

type stage struct {
	name       string
	initialize func(params InitParams) error
	finalize   func() error
}

// Engine runs the collaborators on a dedicated goroutine at a fixed tick rate.
// Initialize, Start, Stop and SetOutputTarget only enqueue an event and can be called from any goroutine;
// Finalize waits for the engine goroutine to exit.
type Engine struct {
	config    Config
	frameTime time.Duration
	dt        float64

	physics  Physics
	renderer Renderer
	input    InputManager
	stages   []stage

	logger    *log.Logger
	clock     Clock
	fatal     func(format string, args ...any)
	testHooks *engineTestHooks

	mu           sync.Mutex
	running      bool
	queue        chan Event
	loopDone     chan struct{}
	setupDone    chan struct{}
	finalizeOnce *sync.Once
	err          error

	// Owned by the engine goroutine
	initialized  int
	setupFailed  bool
	started      bool
	finalized    bool
	nextTickTime time.Time
	tickCount    uint64
	lagSnaps     uint64
}

func New(collaborators Collaborators, config Config, opts ...Option) *Engine {
	if config.TickRate <= 0 {
		config.TickRate = DefaultTickRate
	}
	if config.QueueCapacity < 1 {
		config.QueueCapacity = DefaultQueueCapacity
	}

	e := &Engine{
		config:    config,
		frameTime: time.Second / time.Duration(config.TickRate),
		dt:        1.0 / float64(config.TickRate),
		physics:   collaborators.Physics,
		renderer:  collaborators.Renderer,
		input:     collaborators.Input,
		logger:    log.Default(),
		clock:     systemClock{},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.fatal == nil {
		e.fatal = e.logger.Fatalf
	}

	// Torn down in reverse order
	if c := collaborators.Assets; c != nil {
		e.stages = append(e.stages, stage{"assets", func(p InitParams) error { return c.Initialize(p.AssetsDir) }, c.Finalize})
	}
	if c := collaborators.Physics; c != nil {
		e.stages = append(e.stages, stage{"physics", func(InitParams) error { return c.Initialize() }, c.Finalize})
	}
	if c := collaborators.Renderer; c != nil {
		e.stages = append(e.stages, stage{"renderer", func(InitParams) error { return c.Initialize() }, c.Finalize})
	}
	if c := collaborators.Input; c != nil {
		e.stages = append(e.stages, stage{"input", func(InitParams) error { return c.Initialize() }, c.Finalize})
	}

	return e
}

// Initialize starts the engine goroutine, which then initializes the collaborators.
// The engine can be initialized again once finalized.
func (e *Engine) Initialize(params InitParams) {
	e.mu.Lock()
	if e.running {
		e.mu.Unlock()
		e.fatal("[Engine] Initialize called while the engine is running")
		return
	}

	e.running = true
	e.queue = make(chan Event, e.config.QueueCapacity)
	e.loopDone = make(chan struct{})
	e.setupDone = make(chan struct{})
	e.finalizeOnce = &sync.Once{}
	e.err = nil
	// queued under the lock so that no other event can go first
	e.queue <- Event{Kind: EventInitialize, Payload: params}
	queue, loopDone, setupDone := e.queue, e.loopDone, e.setupDone
	e.mu.Unlock()

	go e.run(queue, loopDone, setupDone)

	e.logger.Printf("[Engine] initialized (%d TPS)", e.config.TickRate)
}

// Finalize tears down the collaborators and waits for the engine goroutine to exit.
// It returns ErrSetupFailed if the collaborators could not be initialized, or the teardown errors.
// Calling it again returns the same result without side effect.
func (e *Engine) Finalize() error {
	e.mu.Lock()
	if e.queue == nil {
		e.mu.Unlock()
		return nil
	}
	once, queue, loopDone := e.finalizeOnce, e.queue, e.loopDone
	e.mu.Unlock()

	once.Do(func() {
		queue <- Event{Kind: EventFinalize}
	})
	<-loopDone

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.running {
		e.running = false
		e.logger.Printf("[Engine] finalized")
	}

	return e.err
}

// WaitInitialized blocks until the collaborators of the current run are set up.
// It returns the setup error, so that the host can give up instead of serving a dead engine.
func (e *Engine) WaitInitialized(ctx context.Context) error {
	e.mu.Lock()
	setupDone := e.setupDone
	e.mu.Unlock()

	if setupDone == nil {
		return ErrNotInitialized
	}

	select {
	case <-setupDone:
		return e.Err()
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Err returns the setup or teardown error of the last run, once the engine goroutine has exited
func (e *Engine) Err() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	return e.err
}

func (e *Engine) Start() {
	e.pushEvent(Event{Kind: EventStart})
}

func (e *Engine) Stop() {
	e.pushEvent(Event{Kind: EventStop})
}

// SetOutputTarget hands target to the renderer, nil detaches the current one.
// The engine owns target afterwards.
func (e *Engine) SetOutputTarget(target render.Target) {
	e.pushEvent(Event{Kind: EventSetOutputTarget, Payload: target})
}

func (e *Engine) pushEvent(event Event) {
	e.mu.Lock()
	queue, running := e.queue, e.running
	e.mu.Unlock()

	switch {
	case queue == nil:
		e.fatal("[Engine] %v before Initialize", event.Kind)
	case !running:
		e.logger.Printf("[Engine] %v after Finalize, ignored", event.Kind)
		if target, ok := event.Payload.(render.Target); ok && target != nil {
			target.Close()
		}
	default:
		queue <- event
	}
}

// run is the engine goroutine
func (e *Engine) run(queue <-chan Event, loopDone, setupDone chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(loopDone)

	e.started = false
	e.finalized = false
	e.setupFailed = false
	e.initialized = 0
	e.tickCount = 0
	e.lagSnaps = 0

	// Initialize is always the first queued event
	e.processEvent(<-queue)
	close(setupDone)

	for {
		e.processEventsUntilNextTick(queue)
		if e.finalized {
			break
		}

		if !e.started {
			e.fatal("[Engine] tick while not started")
			return
		}
		e.tick()
	}
}

// processEventsUntilNextTick handles the queued events until the next tick is due.
// It blocks without timeout while the engine is not started.
func (e *Engine) processEventsUntilNextTick(queue <-chan Event) {
	for !e.finalized {
		if !e.started {
			e.processEvent(<-queue)
			continue
		}

		remaining := e.nextTickTime.Sub(e.clock.Now()).Microseconds()
		// have no time
		if remaining < 1 {
			return
		}

		timeout := time.Duration(remaining) * time.Microsecond
		if e.testHooks != nil && e.testHooks.OnWait != nil {
			e.testHooks.OnWait(timeout)
		}

		select {
		case event := <-queue:
			e.processEvent(event)
		case <-e.clock.After(timeout):
			return
		}
	}
}

func (e *Engine) processEvent(event Event) {
	switch event.Kind {
	case EventInitialize:
		params, _ := event.Payload.(InitParams)
		e.setup(params)
	case EventFinalize:
		e.teardown()
		e.finalized = true
		e.logger.Printf("[Engine] stopped after %d ticks (%d lag snaps)", e.tickCount, e.lagSnaps)
	case EventStart:
		if e.setupFailed {
			e.logger.Printf("[Engine] refusing to start: %v", e.Err())
			break
		}
		e.nextTickTime = e.clock.Now()
		e.started = true
	case EventStop:
		e.started = false
	case EventSetOutputTarget:
		target, _ := event.Payload.(render.Target)
		if e.renderer == nil || e.setupFailed {
			if target != nil {
				target.Close()
			}
			break
		}
		e.renderer.SetOutputTarget(target)
	default:
		e.fatal("[Engine] unknown event %v", event.Kind)
	}

	if e.testHooks != nil && e.testHooks.OnEvent != nil {
		e.testHooks.OnEvent(event)
	}
}

// setup initializes the collaborators in order; on failure the initialized ones are torn down
func (e *Engine) setup(params InitParams) {
	for _, s := range e.stages {
		if err := s.initialize(params); err != nil {
			e.setErr(fmt.Errorf("%w: %s: %w", ErrSetupFailed, s.name, err))
			e.logger.Printf("[Engine] %s setup failed: %v", s.name, err)
			e.setupFailed = true
			e.teardown()
			return
		}
		e.initialized++
	}
}

// teardown finalizes the initialized collaborators in reverse order
func (e *Engine) teardown() {
	var errs []error
	for ; e.initialized > 0; e.initialized-- {
		s := e.stages[e.initialized-1]
		if err := s.finalize(); err != nil {
			e.logger.Printf("[Engine] %s teardown failed: %v", s.name, err)
			errs = append(errs, fmt.Errorf("%s: %w", s.name, err))
		}
	}

	if len(errs) > 0 {
		e.mu.Lock()
		e.err = errors.Join(append([]error{e.err}, errs...)...)
		e.mu.Unlock()
	}
}

func (e *Engine) setErr(err error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.err = err
}

func (e *Engine) tick() {
	if e.input != nil {
		e.input.Poll()
	}
	if e.physics != nil {
		e.physics.Step(e.dt)
	}
	if e.renderer != nil {
		e.renderer.Draw()
	}

	e.tickCount++
	e.setNextTickTime()

	if e.testHooks != nil && e.testHooks.OnTick != nil {
		e.testHooks.OnTick(e.tickCount)
	}
}

// setNextTickTime advances the tick clock; when late by more than MaxLagFrames it is snapped to now
// instead of catching up with a burst of ticks.
func (e *Engine) setNextTickTime() {
	e.nextTickTime = e.nextTickTime.Add(e.frameTime)

	now := e.clock.Now()
	if now.After(e.nextTickTime.Add(e.frameTime * time.Duration(e.config.MaxLagFrames))) {
		e.nextTickTime = now
		e.lagSnaps++
	}
}
