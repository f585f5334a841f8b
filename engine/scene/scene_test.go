package scene

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Carmen-Shannon/oxy-anim/common"
	"github.com/Carmen-Shannon/oxy-anim/engine/command"
	"github.com/Carmen-Shannon/oxy-anim/engine/game_object"
)

func position(t *testing.T, obj game_object.GameObject) [3]float32 {
	t.Helper()
	require.NotNil(t, obj)
	x, y, z := obj.Position()
	return [3]float32{x, y, z}
}

func TestAddAssignsIDs(t *testing.T) {
	s := NewScene(1, "main", WithObjects(game_object.NewGameObject(game_object.WithID(2))))
	assert.True(t, s.Active())

	first := s.Add(game_object.NewGameObject())
	second := s.Add(game_object.NewGameObject())
	assert.Equal(t, common.ObjectID(1), first)
	// 2 is taken by the seeded object
	assert.Equal(t, common.ObjectID(3), second)
	assert.Equal(t, 3, s.Count())

	var ids []common.ObjectID
	for _, obj := range s.Objects() {
		ids = append(ids, obj.ID())
	}
	assert.Equal(t, []common.ObjectID{1, 2, 3}, ids)

	s.Remove(2)
	assert.False(t, s.Has(2))
	assert.Nil(t, s.Get(2))

	s.Clear()
	assert.Equal(t, 0, s.Count())
}

func TestApplyLastWriterWins(t *testing.T) {
	s := NewScene(1, "main", WithApplyWorkers(1))
	id := s.Add(game_object.NewGameObject())

	err := s.Apply(command.Batch{
		{Scene: 1, Target: id, Kind: common.AttributePosition, Value: [4]float32{1, 0, 0}},
		{Scene: 1, Target: id, Kind: common.AttributePosition, Value: [4]float32{2, 0, 0}},
		// commands for other scenes are ignored
		{Scene: 9, Target: id, Kind: common.AttributePosition, Value: [4]float32{3, 0, 0}},
	})
	require.NoError(t, err)
	assert.Equal(t, [3]float32{2, 0, 0}, position(t, s.Get(id)))
}

func TestApplyReportsUnknownObjects(t *testing.T) {
	s := NewScene(1, "main")
	id := s.Add(game_object.NewGameObject())

	err := s.Apply(command.Batch{
		{Scene: 1, Target: 77, Kind: common.AttributePosition, Value: [4]float32{1}},
		{Scene: 1, Target: id, Kind: common.AttributeScaling, Value: [4]float32{5, 5, 5}},
	})
	assert.ErrorIs(t, err, ErrUnknownObject)

	// the valid command is still applied
	sx, _, _ := s.Get(id).Scale()
	assert.Equal(t, float32(5), sx)
}

func TestParallelApplyKeepsPerTargetOrder(t *testing.T) {
	s := NewScene(1, "main", WithApplyWorkers(4))
	const objects = 16
	for range objects {
		s.Add(game_object.NewGameObject())
	}

	var batch command.Batch
	for round := range 40 {
		for id := common.ObjectID(1); id <= objects; id++ {
			batch = append(batch, command.AttributeCommand{
				Scene:  1,
				Target: id,
				Kind:   common.AttributePosition,
				Value:  [4]float32{float32(round), float32(id)},
			})
		}
	}
	require.GreaterOrEqual(t, len(batch), parallelApplyThreshold)
	require.NoError(t, s.Apply(batch))

	for id := common.ObjectID(1); id <= objects; id++ {
		assert.Equal(t, [3]float32{39, float32(id), 0}, position(t, s.Get(id)), "object %d", id)
	}
}

func TestDestroyClearsGroups(t *testing.T) {
	s := NewScene(5, "main")
	s.Add(game_object.NewGameObject())
	_, err := s.Groups().Create(1, "walk")
	require.NoError(t, err)
	assert.Equal(t, common.SceneID(5), s.Groups().Scene())

	s.Destroy()
	assert.Equal(t, 0, s.Groups().Len())
	assert.Equal(t, 0, s.Count())
}
