package engine

import (
	"fmt"
	"log/slog"

	"cogentcore.org/core/base/errors"
	"cogentcore.org/core/base/keylist"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/cache"
	"github.com/Carmen-Shannon/oxy-anim/engine/command"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
	"github.com/Carmen-Shannon/oxy-anim/engine/scene"
)

var (
	// ErrUnknownScene is returned when a call names a scene the system does not own.
	ErrUnknownScene = errors.New("unknown scene")

	// ErrUnknownGroup is returned when a call names a group that is not in the given scene.
	ErrUnknownGroup = errors.New("unknown animation group")
)

// animationSystem is the implementation of the AnimationSystem interface.
type animationSystem struct {
	cache  cache.CurveCache
	queue  command.Queue
	scenes keylist.List[common.SceneID, scene.Scene]

	nextScene common.SceneID
	nextGroup common.GroupID

	sceneOptions []scene.SceneBuilderOption
	logger       *slog.Logger
}

// AnimationSystem owns the curve cache, the scenes with their animation groups, and the attribute
// command queue. It is driven by a single goroutine: every method, including Advance, must be called
// from the goroutine that owns the tick loop.
type AnimationSystem interface {
	// Cache returns the curve cache shared by every scene.
	//
	// Returns:
	//   - cache.CurveCache: the curve cache
	Cache() cache.CurveCache

	// Queue returns the command queue Advance pushes into.
	//
	// Returns:
	//   - command.Queue: the command queue
	Queue() command.Queue

	// CreateScene creates a new scene with its own group registry.
	//
	// Parameters:
	//   - name: the scene name
	//   - options: scene options applied after the system's defaults
	//
	// Returns:
	//   - common.SceneID: the new scene's ID
	CreateScene(name string, options ...scene.SceneBuilderOption) common.SceneID

	// Scene returns the scene with the given ID.
	//
	// Parameters:
	//   - id: the scene ID
	//
	// Returns:
	//   - scene.Scene: the scene, nil if absent
	//   - bool: true if the scene exists
	Scene(id common.SceneID) (scene.Scene, bool)

	// Scenes returns every scene in creation order.
	//
	// Returns:
	//   - []scene.Scene: the scenes
	Scenes() []scene.Scene

	// RemoveScene destroys a scene and every animation group it owns.
	//
	// Parameters:
	//   - id: the scene ID
	//
	// Returns:
	//   - error: ErrUnknownScene if the scene does not exist
	RemoveScene(id common.SceneID) error

	// CreateGroup creates an animation group in a scene. An empty name becomes "group<id>".
	//
	// Parameters:
	//   - sceneID: the owning scene
	//   - name: the group name, unique within the scene
	//
	// Returns:
	//   - common.GroupID: the new group's ID
	//   - error: ErrUnknownScene, or animation.ErrDuplicateGroup if the name is taken
	CreateGroup(sceneID common.SceneID, name string) (common.GroupID, error)

	// Group returns a group by ID.
	//
	// Parameters:
	//   - sceneID: the owning scene
	//   - groupID: the group ID
	//
	// Returns:
	//   - animation.Group: the group
	//   - error: ErrUnknownScene or ErrUnknownGroup
	Group(sceneID common.SceneID, groupID common.GroupID) (animation.Group, error)

	// GroupByName returns a group by name.
	//
	// Parameters:
	//   - sceneID: the owning scene
	//   - name: the group name
	//
	// Returns:
	//   - animation.Group: the group
	//   - error: ErrUnknownScene or ErrUnknownGroup
	GroupByName(sceneID common.SceneID, name string) (animation.Group, error)

	// RemoveGroup removes a group and releases its curve references.
	//
	// Parameters:
	//   - sceneID: the owning scene
	//   - groupID: the group ID
	//
	// Returns:
	//   - error: ErrUnknownScene or ErrUnknownGroup
	RemoveGroup(sceneID common.SceneID, groupID common.GroupID) error

	// AddTargetAnimation binds an animation to an object attribute inside a group. The group takes
	// ownership of the animation's curve reference. The target does not need to exist yet; a group
	// with a missing target is skipped during Advance until it appears.
	//
	// Parameters:
	//   - sceneID: the owning scene
	//   - target: the driven object
	//   - groupID: the group to add the binding to
	//   - anim: the animation to bind
	//
	// Returns:
	//   - error: ErrUnknownScene, ErrUnknownGroup, or an error if anim holds no curve
	AddTargetAnimation(sceneID common.SceneID, target common.ObjectID, groupID common.GroupID, anim animation.Animation) error

	// BakeCurve ingests a decoded channel into the cache under key, or returns the curve already cached
	// under key for the channel's attribute kind.
	//
	// Parameters:
	//   - key: the cache key
	//   - ch: the decoded channel
	//
	// Returns:
	//   - *cache.SharedCurve: a new reference owned by the caller
	//   - error: curve.ErrUnsupportedChannelKind, curve.ErrMalformedKeyframeStream, or cache.ErrDuplicateCurveKey
	BakeCurve(key string, ch curve.Channel) (*cache.SharedCurve, error)

	// Start starts or restarts a group.
	//
	// Parameters:
	//   - sceneID: the owning scene
	//   - groupID: the group
	//   - params: the playback parameters
	//
	// Returns:
	//   - error: lookup errors, animation.ErrInvalidPlaybackParams or animation.ErrInvalidStateTransition
	Start(sceneID common.SceneID, groupID common.GroupID, params animation.PlaybackParams) error

	// Pause freezes a playing group.
	//
	// Parameters:
	//   - sceneID: the owning scene
	//   - groupID: the group
	//
	// Returns:
	//   - error: lookup errors or animation.ErrInvalidStateTransition
	Pause(sceneID common.SceneID, groupID common.GroupID) error

	// Resume continues a paused group.
	//
	// Parameters:
	//   - sceneID: the owning scene
	//   - groupID: the group
	//
	// Returns:
	//   - error: lookup errors or animation.ErrInvalidStateTransition
	Resume(sceneID common.SceneID, groupID common.GroupID) error

	// Stop returns a group to idle.
	//
	// Parameters:
	//   - sceneID: the owning scene
	//   - groupID: the group
	//
	// Returns:
	//   - error: lookup errors or animation.ErrInvalidStateTransition
	Stop(sceneID common.SceneID, groupID common.GroupID) error

	// Advance moves every playing group forward and pushes one command per target animation onto the
	// queue. Active scenes are visited in creation order and their groups in creation order, so the
	// queue order is deterministic.
	//
	// Parameters:
	//   - frameDeltaMs: the frame's time budget in milliseconds
	//
	// Returns:
	//   - int: the number of commands pushed
	Advance(frameDeltaMs float32) int

	// Flush drains the queue once and applies the batch to sink in enqueue order.
	//
	// Parameters:
	//   - sink: the consumer; nil discards the batch
	//
	// Returns:
	//   - error: the sink's error
	Flush(sink command.Sink) error

	// Tick runs Advance then Flush.
	//
	// Parameters:
	//   - frameDeltaMs: the frame's time budget in milliseconds
	//   - sink: the consumer; nil discards the batch
	//
	// Returns:
	//   - int: the number of commands produced
	//   - error: the sink's error
	Tick(frameDeltaMs float32, sink command.Sink) (int, error)
}

var _ AnimationSystem = &animationSystem{}

// NewAnimationSystem creates an AnimationSystem with an empty cache and queue unless options supply them.
//
// Parameters:
//   - options: functional options to configure the system
//
// Returns:
//   - AnimationSystem: the new system
func NewAnimationSystem(options ...SystemBuilderOption) AnimationSystem {
	s := &animationSystem{
		logger: slog.Default(),
	}
	for _, option := range options {
		option(s)
	}

	if s.cache == nil {
		s.cache = cache.NewCurveCache(cache.WithLogger(s.logger))
	}
	if s.queue == nil {
		s.queue = command.NewQueue()
	}
	return s
}

func (s *animationSystem) Cache() cache.CurveCache {
	return s.cache
}

func (s *animationSystem) Queue() command.Queue {
	return s.queue
}

func (s *animationSystem) CreateScene(name string, options ...scene.SceneBuilderOption) common.SceneID {
	s.nextScene++
	id := s.nextScene

	opts := make([]scene.SceneBuilderOption, 0, len(s.sceneOptions)+len(options)+1)
	opts = append(opts, scene.WithLogger(s.logger))
	opts = append(opts, s.sceneOptions...)
	opts = append(opts, options...)

	// ids only ever grow, so Add cannot collide
	_ = s.scenes.Add(id, scene.NewScene(id, name, opts...))
	s.logger.Debug("scene created", "scene", id, "name", name)
	return id
}

func (s *animationSystem) Scene(id common.SceneID) (scene.Scene, bool) {
	return s.scenes.AtTry(id)
}

func (s *animationSystem) Scenes() []scene.Scene {
	out := make([]scene.Scene, len(s.scenes.Values))
	copy(out, s.scenes.Values)
	return out
}

func (s *animationSystem) RemoveScene(id common.SceneID) error {
	sc, ok := s.scenes.AtTry(id)
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownScene, id)
	}
	sc.Destroy()
	s.scenes.DeleteByKey(id)
	s.logger.Debug("scene removed", "scene", id)
	return nil
}

func (s *animationSystem) CreateGroup(sceneID common.SceneID, name string) (common.GroupID, error) {
	sc, err := s.scene(sceneID)
	if err != nil {
		return 0, err
	}

	id := s.nextGroup + 1
	if name == "" {
		name = fmt.Sprintf("group%d", id)
	}
	if _, err := sc.Groups().Create(id, name); err != nil {
		return 0, err
	}
	s.nextGroup = id
	return id, nil
}

func (s *animationSystem) Group(sceneID common.SceneID, groupID common.GroupID) (animation.Group, error) {
	sc, err := s.scene(sceneID)
	if err != nil {
		return nil, err
	}
	g, ok := sc.Groups().Group(groupID)
	if !ok {
		return nil, fmt.Errorf("scene %d: %w: %d", sceneID, ErrUnknownGroup, groupID)
	}
	return g, nil
}

func (s *animationSystem) GroupByName(sceneID common.SceneID, name string) (animation.Group, error) {
	sc, err := s.scene(sceneID)
	if err != nil {
		return nil, err
	}
	g, ok := sc.Groups().GroupByName(name)
	if !ok {
		return nil, fmt.Errorf("scene %d: %w: %q", sceneID, ErrUnknownGroup, name)
	}
	return g, nil
}

func (s *animationSystem) RemoveGroup(sceneID common.SceneID, groupID common.GroupID) error {
	sc, err := s.scene(sceneID)
	if err != nil {
		return err
	}
	if !sc.Groups().Remove(groupID) {
		return fmt.Errorf("scene %d: %w: %d", sceneID, ErrUnknownGroup, groupID)
	}
	return nil
}

func (s *animationSystem) AddTargetAnimation(sceneID common.SceneID, target common.ObjectID, groupID common.GroupID, anim animation.Animation) error {
	g, err := s.Group(sceneID, groupID)
	if err != nil {
		return err
	}
	if !anim.Valid() {
		return fmt.Errorf("group %d: animation for object %d holds no curve", groupID, target)
	}

	g.AddTarget(animation.TargetAnimation{Target: target, Kind: anim.Kind(), Animation: anim})
	return nil
}

func (s *animationSystem) BakeCurve(key string, ch curve.Channel) (*cache.SharedCurve, error) {
	kind, err := curve.KindForPath(ch.Path)
	if err != nil {
		return nil, err
	}

	return s.cache.BakeOrFetch(key, kind, func() (curve.Curve, error) {
		_, c, err := curve.Ingest(ch)
		return c, err
	})
}

func (s *animationSystem) Start(sceneID common.SceneID, groupID common.GroupID, params animation.PlaybackParams) error {
	g, err := s.Group(sceneID, groupID)
	if err != nil {
		return err
	}
	return g.Start(params)
}

func (s *animationSystem) Pause(sceneID common.SceneID, groupID common.GroupID) error {
	g, err := s.Group(sceneID, groupID)
	if err != nil {
		return err
	}
	return g.Pause()
}

func (s *animationSystem) Resume(sceneID common.SceneID, groupID common.GroupID) error {
	g, err := s.Group(sceneID, groupID)
	if err != nil {
		return err
	}
	return g.Resume()
}

func (s *animationSystem) Stop(sceneID common.SceneID, groupID common.GroupID) error {
	g, err := s.Group(sceneID, groupID)
	if err != nil {
		return err
	}
	return g.Stop()
}

func (s *animationSystem) Advance(frameDeltaMs float32) int {
	produced := 0
	for _, sc := range s.scenes.Values {
		if !sc.Active() {
			continue
		}
		for _, g := range sc.Groups().Groups() {
			produced += s.advanceGroup(sc, g, frameDeltaMs)
		}
	}
	return produced
}

// advanceGroup steps one group and pushes its commands. A group with a missing target still advances
// but emits nothing for the tick.
func (s *animationSystem) advanceGroup(sc scene.Scene, g animation.Group, frameDeltaMs float32) int {
	if g.State() != animation.StatePlaying {
		return 0
	}
	frame, emit := g.Advance(frameDeltaMs)
	if !emit {
		return 0
	}

	targets := g.Targets()
	for _, ta := range targets {
		if !sc.Has(ta.Target) {
			errors.Log(fmt.Errorf("scene %d group %q skipped: object %d: %w", sc.ID(), g.Name(), ta.Target, scene.ErrUnknownObject))
			return 0
		}
	}

	cmds := make([]command.AttributeCommand, 0, len(targets))
	for _, ta := range targets {
		if !ta.Animation.Valid() {
			continue
		}
		cmds = append(cmds, command.AttributeCommand{
			Scene:  sc.ID(),
			Group:  g.ID(),
			Target: ta.Target,
			Kind:   ta.Kind,
			Frame:  frame,
			Value:  ta.Animation.Evaluate(frame),
		})
	}
	s.queue.Push(cmds...)
	return len(cmds)
}

func (s *animationSystem) Flush(sink command.Sink) error {
	batch := s.queue.Drain()
	if len(batch) == 0 {
		return nil
	}
	if sink == nil {
		sink = command.Discard
	}
	if err := sink.Apply(batch); err != nil {
		return fmt.Errorf("failed to apply %d commands: %w", len(batch), err)
	}
	return nil
}

func (s *animationSystem) Tick(frameDeltaMs float32, sink command.Sink) (int, error) {
	n := s.Advance(frameDeltaMs)
	return n, s.Flush(sink)
}

func (s *animationSystem) scene(id common.SceneID) (scene.Scene, error) {
	sc, ok := s.scenes.AtTry(id)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrUnknownScene, id)
	}
	return sc, nil
}
