package scene

import (
	"cmp"
	"errors"
	"fmt"
	"hash/maphash"
	"log/slog"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/command"
	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
)

// ErrUnknownObject is returned when a command or lookup names an object that is not in the scene.
var ErrUnknownObject = errors.New("unknown scene object")

// parallelApplyThreshold is the batch size below which Apply stays on the calling goroutine.
const parallelApplyThreshold = 256

// Scene is the context that owns a set of GameObjects and the animation groups that drive them.
// It is also a command.Sink: applying a batch writes each command's value onto the target object.
// Object access is safe for concurrent use; the group registry belongs to the goroutine running playback.
type Scene interface {
	command.Sink

	// ID returns the scene's identifier.
	ID() common.SceneID

	// Name returns the scene's name.
	Name() string

	// SetName sets the scene's name.
	SetName(name string)

	// Active returns whether this scene takes part in playback.
	Active() bool

	// SetActive sets whether this scene takes part in playback.
	SetActive(active bool)

	// Count returns the number of GameObjects in the scene.
	//
	// Returns:
	//   - int: count of GameObjects in the registry
	Count() int

	// Add adds a GameObject to the scene. Objects without an ID are assigned the next free one.
	// An object with the ID of an existing object replaces it.
	//
	// Parameters:
	//   - obj: the GameObject to add
	//
	// Returns:
	//   - common.ObjectID: the assigned object ID
	Add(obj game_object.GameObject) common.ObjectID

	// Get retrieves a GameObject by its ID.
	// Returns nil if not found.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - game_object.GameObject: the object or nil
	Get(id common.ObjectID) game_object.GameObject

	// Has reports whether an object with the given ID is in the scene.
	//
	// Parameters:
	//   - id: the object's unique ID
	//
	// Returns:
	//   - bool: true if present
	Has(id common.ObjectID) bool

	// Objects returns every GameObject ordered by ID.
	//
	// Returns:
	//   - []game_object.GameObject: the objects
	Objects() []game_object.GameObject

	// Remove removes a GameObject from the registry by ID. Animation bindings that target the object are
	// left in place; playback skips their group until the object is added back or the binding removed.
	//
	// Parameters:
	//   - id: the object's unique ID
	Remove(id common.ObjectID)

	// Clear removes all objects from the scene. Animation groups are kept.
	Clear()

	// Groups returns the registry of animation groups owned by the scene.
	//
	// Returns:
	//   - animation.GroupRegistry: the scene's groups
	Groups() animation.GroupRegistry

	// Destroy removes every object and every animation group, releasing the groups' curve references.
	Destroy()
}

type scene struct {
	mu *sync.RWMutex

	id     common.SceneID
	name   string
	active bool

	registry map[common.ObjectID]game_object.GameObject
	nextID   common.ObjectID

	groups animation.GroupRegistry
	logger *slog.Logger

	// applyPool fans large batches out by target; each target's commands stay on one worker and in order.
	applyPool    worker.DynamicWorkerPool
	applyWorkers int
	seed         maphash.Seed
}

// Ensure scene implements Scene interface.
var _ Scene = &scene{}

// NewScene creates a new, active Scene with an empty group registry.
//
// Parameters:
//   - id: the scene identifier
//   - name: the name of the scene
//   - options: functional options to further configure the scene
//
// Returns:
//   - Scene: the newly created scene
func NewScene(id common.SceneID, name string, options ...SceneBuilderOption) Scene {
	s := &scene{
		mu:           &sync.RWMutex{},
		id:           id,
		name:         name,
		active:       true,
		registry:     make(map[common.ObjectID]game_object.GameObject),
		nextID:       1,
		groups:       animation.NewGroupRegistry(id),
		logger:       slog.Default(),
		applyWorkers: max(runtime.NumCPU()-1, 1),
		seed:         maphash.MakeSeed(),
	}

	for _, option := range options {
		option(s)
	}

	// Initialize the pool after options so WithApplyWorkers can override the default.
	if s.applyWorkers > 1 {
		s.applyPool = worker.NewDynamicWorkerPool(s.applyWorkers, 256, 1*time.Second)
	}
	return s
}

func (s *scene) ID() common.SceneID {
	return s.id
}

func (s *scene) Name() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

func (s *scene) SetName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.name = name
}

func (s *scene) Active() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

func (s *scene) SetActive(active bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.active = active
}

func (s *scene) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.registry)
}

func (s *scene) Add(obj game_object.GameObject) common.ObjectID {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(obj)
	return obj.ID()
}

// addLocked registers obj. Caller must hold s.mu write lock.
func (s *scene) addLocked(obj game_object.GameObject) {
	if obj.ID() == 0 {
		for s.registry[s.nextID] != nil {
			s.nextID++
		}
		obj.SetID(s.nextID)
		s.nextID++
	}
	s.registry[obj.ID()] = obj
}

func (s *scene) Get(id common.ObjectID) game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry[id]
}

func (s *scene) Has(id common.ObjectID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.registry[id]
	return ok
}

func (s *scene) Objects() []game_object.GameObject {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]game_object.GameObject, 0, len(s.registry))
	for _, obj := range s.registry {
		out = append(out, obj)
	}
	slices.SortFunc(out, func(a, b game_object.GameObject) int {
		return cmp.Compare(a.ID(), b.ID())
	})
	return out
}

func (s *scene) Remove(id common.ObjectID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.registry, id)
}

func (s *scene) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.registry = make(map[common.ObjectID]game_object.GameObject)
}

func (s *scene) Groups() animation.GroupRegistry {
	return s.groups
}

func (s *scene) Destroy() {
	s.groups.Clear()
	s.Clear()
}

func (s *scene) Apply(cmds command.Batch) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(cmds) < parallelApplyThreshold || s.applyPool == nil {
		return s.applyRange(cmds)
	}

	// Partition by target so every write to one object lands on the same worker in enqueue order.
	parts := make([]command.Batch, s.applyWorkers)
	for _, c := range cmds {
		i := maphash.Comparable(s.seed, c.Target) % uint64(len(parts))
		parts[i] = append(parts[i], c)
	}

	var wg sync.WaitGroup
	errs := make([]error, len(parts))
	for i, part := range parts {
		if len(part) == 0 {
			continue
		}
		wg.Add(1)
		id, partCap := i, part
		s.applyPool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				errs[id] = s.applyRange(partCap)
				return nil, nil
			},
		})
	}
	wg.Wait()
	return errors.Join(errs...)
}

// applyRange writes cmds in order. Caller must hold s.mu read lock.
func (s *scene) applyRange(cmds command.Batch) error {
	var errs []error
	for _, c := range cmds {
		if c.Scene != s.id {
			continue
		}
		obj := s.registry[c.Target]
		if obj == nil {
			errs = append(errs, fmt.Errorf("scene %d: %w %d", s.id, ErrUnknownObject, c.Target))
			continue
		}
		if err := obj.ApplyAttribute(c.Kind, c.Value); err != nil {
			errs = append(errs, fmt.Errorf("scene %d: %w", s.id, err))
		}
	}
	if len(errs) > 0 {
		s.logger.Debug("scene apply had failures", "scene", s.id, "failed", len(errs), "commands", len(cmds))
	}
	return errors.Join(errs...)
}
