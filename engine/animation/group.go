package animation

import (
	"errors"
	"fmt"
	"math"

	"cogentcore.org/core/math32"

	"github.com/Carmen-Shannon/oxy-anim/common"
)

var (
	// ErrInvalidStateTransition is matched (via errors.Is) by every InvalidStateTransitionError.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrInvalidPlaybackParams is returned by Start when the playback parameters cannot drive a group.
	ErrInvalidPlaybackParams = errors.New("invalid playback parameters")
)

// PlaybackState is the lifecycle state of a group.
type PlaybackState uint8

const (
	// StateIdle is the state of a new or explicitly stopped group. Nothing is evaluated.
	StateIdle PlaybackState = iota
	// StatePlaying advances progress and evaluates bindings every tick.
	StatePlaying
	// StatePaused freezes progress until Resume.
	StatePaused
	// StateStopped is reached when a finite loop budget runs out; the last frame stays applied.
	StateStopped
)

func (s PlaybackState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePlaying:
		return "playing"
	case StatePaused:
		return "paused"
	case StateStopped:
		return "stopped"
	default:
		return fmt.Sprintf("PlaybackState(%d)", uint8(s))
	}
}

// InvalidStateTransitionError reports an operation that is not valid in the group's current state.
// The group is left unchanged.
type InvalidStateTransitionError struct {
	Group common.GroupID
	Op    string
	From  PlaybackState
}

func (e *InvalidStateTransitionError) Error() string {
	return fmt.Sprintf("group %d: cannot %s while %s", e.Group, e.Op, e.From)
}

func (e *InvalidStateTransitionError) Is(target error) bool {
	return target == ErrInvalidStateTransition
}

// PlaybackParams configures a Start call.
type PlaybackParams struct {
	// Speed scales elapsed time; 0 holds the window start.
	Speed float32
	// Loop is the traversal direction and repeat budget.
	Loop LoopMode
	// WindowStart and WindowEnd bound the played frame range in curve ticks.
	WindowStart common.Tick
	WindowEnd   common.Tick
	// TicksPerSecond converts frame time into curve ticks; 1000 plays curves at source speed.
	TicksPerSecond float32
	// AmountCalc remaps normalized progress; nil means Identity.
	AmountCalc AmountCalc
}

// DefaultPlaybackParams plays the given window forwards forever at source speed.
//
// Parameters:
//   - start: the first frame of the window
//   - end: the last frame of the window
//
// Returns:
//   - PlaybackParams: the default parameters
func DefaultPlaybackParams(start, end common.Tick) PlaybackParams {
	return PlaybackParams{
		Speed:          1,
		Loop:           PositiveForever(),
		WindowStart:    start,
		WindowEnd:      end,
		TicksPerSecond: common.TicksPerSecond,
		AmountCalc:     Identity,
	}
}

// Validate checks the window, rate, speed, and loop mode.
func (p PlaybackParams) Validate() error {
	if p.WindowEnd <= p.WindowStart {
		return fmt.Errorf("%w: window end %d must be after start %d", ErrInvalidPlaybackParams, p.WindowEnd, p.WindowStart)
	}
	if !(p.TicksPerSecond > 0) {
		return fmt.Errorf("%w: ticks per second must be positive, got %v", ErrInvalidPlaybackParams, p.TicksPerSecond)
	}
	if !(p.Speed >= 0) || math32.IsInf(p.Speed, 0) {
		return fmt.Errorf("%w: speed must be a finite non-negative number, got %v", ErrInvalidPlaybackParams, p.Speed)
	}
	if err := p.Loop.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidPlaybackParams, err)
	}
	return nil
}

// group is the implementation of the Group interface.
type group struct {
	id      common.GroupID
	name    string
	scene   common.SceneID
	targets []TargetAnimation

	state   PlaybackState
	params  PlaybackParams
	cycles  int     // completed cycles; parity only for Forever modes
	elapsed float64 // ticks into the current cycle, already scaled by speed
	frame   float32
}

// Group is a named set of target animations played back together under one progress and loop state.
// A Group is owned by a scene and is not safe for concurrent use.
type Group interface {
	// ID returns the group's identifier.
	//
	// Returns:
	//   - common.GroupID: the group ID
	ID() common.GroupID

	// Name returns the group's name, unique within its scene.
	//
	// Returns:
	//   - string: the group name
	Name() string

	// Scene returns the scene that owns the group.
	//
	// Returns:
	//   - common.SceneID: the owning scene
	Scene() common.SceneID

	// State returns the current playback state.
	//
	// Returns:
	//   - PlaybackState: the current state
	State() PlaybackState

	// Params returns the parameters of the last successful Start.
	//
	// Returns:
	//   - PlaybackParams: the active parameters
	Params() PlaybackParams

	// Frame returns the curve frame computed by the most recent Advance or Start.
	//
	// Returns:
	//   - float32: the current frame in ticks
	Frame() float32

	// Targets returns a copy of the group's target animations in insertion order.
	//
	// Returns:
	//   - []TargetAnimation: the bindings
	Targets() []TargetAnimation

	// AddTarget appends a binding. The group takes ownership of the animation's curve reference.
	//
	// Parameters:
	//   - ta: the binding to add
	AddTarget(ta TargetAnimation)

	// RemoveTarget drops every binding for the given object and releases their curve references.
	//
	// Parameters:
	//   - target: the object whose bindings are removed
	//
	// Returns:
	//   - int: the number of removed bindings
	RemoveTarget(target common.ObjectID) int

	// Start begins playback from the window start. Valid from Idle, Stopped, and Playing (restart).
	//
	// Parameters:
	//   - params: the playback parameters
	//
	// Returns:
	//   - error: ErrInvalidPlaybackParams or an InvalidStateTransitionError; the group is unchanged on error
	Start(params PlaybackParams) error

	// Pause freezes progress. Valid only while Playing.
	//
	// Returns:
	//   - error: an InvalidStateTransitionError from any other state
	Pause() error

	// Resume continues from the frozen progress. Valid only while Paused.
	//
	// Returns:
	//   - error: an InvalidStateTransitionError from any other state
	Resume() error

	// Stop returns the group to Idle. Valid from any state but Idle.
	//
	// Returns:
	//   - error: an InvalidStateTransitionError when already Idle
	Stop() error

	// Advance moves a Playing group forward by a frame's time budget.
	// When a finite loop budget runs out the group switches to Stopped and reports the held terminal frame
	// one last time.
	//
	// Parameters:
	//   - deltaMs: the frame time in milliseconds
	//
	// Returns:
	//   - float32: the curve frame to evaluate
	//   - bool: true if the bindings should be evaluated this tick
	Advance(deltaMs float32) (float32, bool)

	// Release drops every binding's curve reference. The group must not be used afterwards.
	Release()
}

var _ Group = &group{}

// NewGroup creates an Idle group configured with the given options.
//
// Parameters:
//   - options: functional options to configure the group
//
// Returns:
//   - Group: the new group
func NewGroup(options ...GroupBuilderOption) Group {
	g := &group{state: StateIdle}
	for _, option := range options {
		option(g)
	}
	return g
}

func (g *group) ID() common.GroupID {
	return g.id
}

func (g *group) Name() string {
	return g.name
}

func (g *group) Scene() common.SceneID {
	return g.scene
}

func (g *group) State() PlaybackState {
	return g.state
}

func (g *group) Params() PlaybackParams {
	return g.params
}

func (g *group) Frame() float32 {
	return g.frame
}

func (g *group) Targets() []TargetAnimation {
	out := make([]TargetAnimation, len(g.targets))
	copy(out, g.targets)
	return out
}

func (g *group) AddTarget(ta TargetAnimation) {
	g.targets = append(g.targets, ta)
}

func (g *group) RemoveTarget(target common.ObjectID) int {
	kept := g.targets[:0]
	removed := 0
	for _, ta := range g.targets {
		if ta.Target == target {
			ta.Animation.Release()
			removed++
			continue
		}
		kept = append(kept, ta)
	}
	clear(g.targets[len(kept):])
	g.targets = kept
	return removed
}

func (g *group) Start(params PlaybackParams) error {
	if g.state == StatePaused {
		return &InvalidStateTransitionError{Group: g.id, Op: "start", From: g.state}
	}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("group %d: %w", g.id, err)
	}
	if params.AmountCalc == nil {
		params.AmountCalc = Identity
	}

	g.params = params
	g.cycles = 0
	g.elapsed = 0
	g.frame = g.frameAt(0, 0)
	g.state = StatePlaying
	return nil
}

func (g *group) Pause() error {
	if g.state != StatePlaying {
		return &InvalidStateTransitionError{Group: g.id, Op: "pause", From: g.state}
	}
	g.state = StatePaused
	return nil
}

func (g *group) Resume() error {
	if g.state != StatePaused {
		return &InvalidStateTransitionError{Group: g.id, Op: "resume", From: g.state}
	}
	g.state = StatePlaying
	return nil
}

func (g *group) Stop() error {
	if g.state == StateIdle {
		return &InvalidStateTransitionError{Group: g.id, Op: "stop", From: g.state}
	}
	g.state = StateIdle
	g.cycles = 0
	g.elapsed = 0
	return nil
}

func (g *group) Advance(deltaMs float32) (float32, bool) {
	if g.state != StatePlaying {
		return g.frame, false
	}

	p := g.params
	length := float64(p.WindowEnd - p.WindowStart)
	if deltaMs > 0 {
		g.elapsed += float64(deltaMs) / 1000 * float64(p.TicksPerSecond) * float64(p.Speed)
	}
	if whole := math.Floor(g.elapsed / length); whole >= 1 {
		g.elapsed = max(g.elapsed-whole*length, 0)
		if p.Loop.Forever {
			g.cycles = (g.cycles + int(math.Mod(whole, 2))) % 2
		} else {
			g.cycles += int(min(whole, float64(p.Loop.Repeats)))
		}
	}

	if p.Loop.exhausted(g.cycles) {
		g.cycles = p.Loop.Repeats
		g.elapsed = 0
		g.frame = g.terminalFrame(p.Loop.Repeats - 1)
		g.state = StateStopped
		return g.frame, true
	}

	g.frame = g.frameAt(g.cycles, float32(g.elapsed/length))
	return g.frame, true
}

func (g *group) Release() {
	for _, ta := range g.targets {
		ta.Animation.Release()
	}
	g.targets = nil
}

// frameAt maps normalized progress within a cycle onto a curve frame, honoring the cycle's direction.
func (g *group) frameAt(cycle int, progress float32) float32 {
	p := g.params
	length := float32(p.WindowEnd - p.WindowStart)
	amount := common.Clamp01(p.AmountCalc(progress))
	if p.Loop.forward(cycle) {
		return float32(p.WindowStart) + amount*length
	}
	return float32(p.WindowEnd) - amount*length
}

// terminalFrame is the frame a cycle ends on.
func (g *group) terminalFrame(cycle int) float32 {
	if g.params.Loop.forward(cycle) {
		return float32(g.params.WindowEnd)
	}
	return float32(g.params.WindowStart)
}
