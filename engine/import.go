package engine

import (
	"fmt"

	"cogentcore.org/core/base/errors"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/animation"
	"github.com/Carmen-Shannon/oxy-anim/engine/curve"
	"github.com/Carmen-Shannon/oxy-anim/engine/model"
)

var (
	// ErrUnmappedNode is recorded for a channel whose target node has no scene object.
	ErrUnmappedNode = errors.New("channel targets a node with no scene object")

	// ErrDuplicateBinding is recorded for a channel whose object attribute is already driven by the group.
	ErrDuplicateBinding = errors.New("object attribute already bound in group")
)

// ImportOptions controls ImportAnimations.
type ImportOptions struct {
	// AutoStart starts every group that bound at least one channel.
	AutoStart bool

	// Playback overrides the parameters AutoStart uses. A zero window is replaced by the span of the
	// group's bound curves. Nil plays the span forwards forever at source speed.
	Playback *animation.PlaybackParams
}

// ImportedGroup describes the group one source animation was imported into.
type ImportedGroup struct {
	Animation   string
	Group       common.GroupID
	Bound       int
	WindowStart common.Tick
	WindowEnd   common.Tick
	Started     bool
}

// ImportReport lists what ImportAnimations bound and which channels it could not.
type ImportReport struct {
	Groups   []ImportedGroup
	Failures []model.ChannelFailure
}

// Bound returns the number of channels bound across all groups.
func (r ImportReport) Bound() int {
	n := 0
	for _, g := range r.Groups {
		n += g.Bound
	}
	return n
}

// Err joins every channel failure, nil if there were none.
func (r ImportReport) Err() error {
	errs := make([]error, len(r.Failures))
	for i, f := range r.Failures {
		errs[i] = f
	}
	return errors.Join(errs...)
}

// ImportAnimations bakes every decoded channel of asset into the system's cache and binds it to the
// scene object its node maps to. Each source animation gets the group named "<asset>/<animation>",
// created on first import and reused afterwards. Curves are keyed
// "<asset>/<animation index>channel<channel index>" so re-importing an asset shares the cached
// curves. A channel that cannot be baked or bound is recorded in the report and never stops the
// rest of the import.
//
// Parameters:
//   - sys: the system to import into
//   - sceneID: the scene the groups belong to
//   - asset: the decoded asset
//   - targets: maps node indices to scene objects
//   - opts: import options
//
// Returns:
//   - ImportReport: the bound groups and per-channel failures
//   - error: ErrUnknownScene if the scene does not exist
func ImportAnimations(sys AnimationSystem, sceneID common.SceneID, asset *model.DecodedAsset, targets map[int]common.ObjectID, opts ImportOptions) (ImportReport, error) {
	var report ImportReport
	if _, ok := sys.Scene(sceneID); !ok {
		return report, fmt.Errorf("%w: %d", ErrUnknownScene, sceneID)
	}

	for ai := range asset.Animations {
		anim := &asset.Animations[ai]
		report.Failures = append(report.Failures, anim.Failures...)

		g, err := importGroup(sys, sceneID, asset.Name+"/"+anim.Name)
		if err != nil {
			for _, ch := range anim.Channels {
				report.Failures = append(report.Failures, model.ChannelFailure{Animation: anim.Index, Channel: ch.Index, Err: err})
			}
			continue
		}

		imported := ImportedGroup{Animation: anim.Name, Group: g.ID()}
		spanSet := false
		for _, ch := range anim.Channels {
			start, end, err := importChannel(sys, g, asset.Name, anim.Index, ch, targets)
			if err != nil {
				report.Failures = append(report.Failures, model.ChannelFailure{Animation: anim.Index, Channel: ch.Index, Err: err})
				continue
			}
			imported.Bound++
			if !spanSet || start < imported.WindowStart {
				imported.WindowStart = start
			}
			if !spanSet || end > imported.WindowEnd {
				imported.WindowEnd = end
			}
			spanSet = true
		}

		if opts.AutoStart && imported.Bound > 0 {
			params := autoStartParams(opts.Playback, imported.WindowStart, imported.WindowEnd)
			imported.WindowStart, imported.WindowEnd = params.WindowStart, params.WindowEnd
			if err := g.Start(params); err != nil {
				errors.Log(fmt.Errorf("auto start of group %q: %w", g.Name(), err))
			} else {
				imported.Started = true
			}
		}
		report.Groups = append(report.Groups, imported)
	}
	return report, nil
}

// importGroup returns the named group, creating it on first use.
func importGroup(sys AnimationSystem, sceneID common.SceneID, name string) (animation.Group, error) {
	if g, err := sys.GroupByName(sceneID, name); err == nil {
		return g, nil
	}
	id, err := sys.CreateGroup(sceneID, name)
	if err != nil {
		return nil, err
	}
	return sys.Group(sceneID, id)
}

// importChannel bakes one channel and binds it into g, returning the bound curve's frame span.
func importChannel(sys AnimationSystem, g animation.Group, assetName string, animIndex int, ch model.DecodedChannel, targets map[int]common.ObjectID) (common.Tick, common.Tick, error) {
	kind, err := curve.KindForPath(curve.ChannelPath(ch.Path))
	if err != nil {
		return 0, 0, err
	}
	target, ok := targets[ch.Node]
	if !ok {
		return 0, 0, fmt.Errorf("%w: node %d", ErrUnmappedNode, ch.Node)
	}
	for _, ta := range g.Targets() {
		if ta.Target == target && ta.Kind == kind {
			return 0, 0, fmt.Errorf("%w: object %d %s", ErrDuplicateBinding, target, kind)
		}
	}

	interpolation, err := curve.ParseInterpolation(ch.Interpolation)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %w", curve.ErrMalformedKeyframeStream, err)
	}

	key := fmt.Sprintf("%s/%dchannel%d", assetName, animIndex, ch.Index)
	ref, err := sys.BakeCurve(key, curve.Channel{
		Path:          curve.ChannelPath(ch.Path),
		Interpolation: interpolation,
		Times:         ch.Times,
		Values:        ch.Values,
	})
	if err != nil {
		return 0, 0, err
	}

	g.AddTarget(animation.TargetAnimation{Target: target, Kind: kind, Animation: animation.NewAnimation(ref)})
	c := ref.Curve()
	return c.StartFrame(), c.EndFrame(), nil
}

// autoStartParams fills the window of the override (or the defaults) with the bound span. A span of a
// single frame is widened to one tick so the window stays valid.
func autoStartParams(override *animation.PlaybackParams, start, end common.Tick) animation.PlaybackParams {
	if end == start {
		if end < common.MaxTick {
			end++
		} else {
			start--
		}
	}

	params := animation.DefaultPlaybackParams(start, end)
	if override != nil {
		params = *override
		if params.WindowStart == 0 && params.WindowEnd == 0 {
			params.WindowStart, params.WindowEnd = start, end
		}
	}
	return params
}
