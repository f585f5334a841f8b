package loader

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testBuffer packs float32s little-endian.
func testBuffer(values ...float32) []byte {
	buf := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
	}
	return buf
}

// testDocument returns a two node document with one animation: a translation channel from (0,0,0) at
// 0s to (2,4,6) at 1s, and a channel pointing at a sampler that does not exist.
func testDocument(uri string) map[string]any {
	buffer := map[string]any{"byteLength": 32}
	if uri != "" {
		buffer["uri"] = uri
	}
	return map[string]any{
		"asset": map[string]any{"version": "2.0"},
		"nodes": []any{
			map[string]any{"name": "root", "children": []int{1}},
			map[string]any{"name": "arm", "translation": []float32{1, 0, 0}},
		},
		"buffers": []any{buffer},
		"bufferViews": []any{
			map[string]any{"buffer": 0, "byteOffset": 0, "byteLength": 8},
			map[string]any{"buffer": 0, "byteOffset": 8, "byteLength": 24},
		},
		"accessors": []any{
			map[string]any{"bufferView": 0, "componentType": gltfComponentTypeFloat, "count": 2, "type": "SCALAR"},
			map[string]any{"bufferView": 1, "componentType": gltfComponentTypeFloat, "count": 2, "type": "VEC3"},
		},
		"animations": []any{
			map[string]any{
				"name": "wave",
				"samplers": []any{
					map[string]any{"input": 0, "output": 1},
				},
				"channels": []any{
					map[string]any{"sampler": 0, "target": map[string]any{"node": 1, "path": "translation"}},
					map[string]any{"sampler": 5, "target": map[string]any{"node": 0, "path": "scale"}},
				},
			},
		},
	}
}

func testPayload() []byte {
	return testBuffer(0, 1, 0, 0, 0, 2, 4, 6)
}

func writeTestGLTF(t *testing.T) string {
	t.Helper()
	uri := "data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(testPayload())
	data, err := json.Marshal(testDocument(uri))
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "wave.gltf")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func buildTestGLB(t *testing.T) []byte {
	t.Helper()
	jsonChunk, err := json.Marshal(testDocument(""))
	require.NoError(t, err)
	for len(jsonChunk)%4 != 0 {
		jsonChunk = append(jsonChunk, ' ')
	}
	binChunk := testPayload()

	var out bytes.Buffer
	total := 12 + 8 + len(jsonChunk) + 8 + len(binChunk)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBHeader{Magic: gltfGLBMagic, Version: gltfGLBVersion, Length: uint32(total)}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(jsonChunk)), ChunkType: gltfGLBChunkJSON}))
	out.Write(jsonChunk)
	require.NoError(t, binary.Write(&out, binary.LittleEndian, gltfGLBChunkHeader{ChunkLength: uint32(len(binChunk)), ChunkType: gltfGLBChunkBIN}))
	out.Write(binChunk)
	return out.Bytes()
}

func TestLoadDecodesNodesAndChannels(t *testing.T) {
	path := writeTestGLTF(t)
	l := NewLoader(BackendTypeGLTF, WithDecodeWorkers(0))

	asset, err := l.Load(path)
	require.NoError(t, err)
	assert.Equal(t, path, asset.Name)

	require.Len(t, asset.Nodes, 2)
	assert.Equal(t, -1, asset.Nodes[0].Parent)
	assert.Equal(t, 0, asset.Nodes[1].Parent)
	assert.Equal(t, [3]float32{1, 0, 0}, asset.Nodes[1].Translation)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, asset.Nodes[1].Rotation)
	assert.Equal(t, [3]float32{1, 1, 1}, asset.Nodes[1].Scale)

	node, ok := asset.NodeByName("arm")
	require.True(t, ok)
	assert.Equal(t, 1, node.Index)

	anim := asset.AnimationByName("wave")
	require.NotNil(t, anim)
	require.Len(t, anim.Channels, 1)
	ch := anim.Channels[0]
	assert.Equal(t, 1, ch.Node)
	assert.Equal(t, "translation", ch.Path)
	assert.Equal(t, "LINEAR", ch.Interpolation)
	assert.Equal(t, []float32{0, 1}, ch.Times)
	assert.Equal(t, [][4]float32{{0, 0, 0, 0}, {2, 4, 6, 0}}, ch.Values)
	assert.InDelta(t, 1.0, anim.Duration(), 1e-6)

	// the broken channel is reported without failing the animation
	require.Len(t, anim.Failures, 1)
	assert.Equal(t, 1, anim.Failures[0].Channel)
	assert.Contains(t, anim.Failures[0].Error(), "sampler index 5")
}

func TestLoadCachesByPath(t *testing.T) {
	path := writeTestGLTF(t)
	l := NewLoader(BackendTypeGLTF, WithDecodeWorkers(0))

	first, err := l.Load(path)
	require.NoError(t, err)
	second, err := l.Load(path)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Same(t, first, l.Get(path))
	assert.Len(t, l.Assets(), 1)

	assert.True(t, l.Evict(path))
	assert.False(t, l.Evict(path))
	assert.Nil(t, l.Get(path))
}

func TestLoadRejectsUnknownExtension(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithDecodeWorkers(0))
	_, err := l.Load("scene.fbx")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported asset format")
}

func TestLoadReaderGLB(t *testing.T) {
	l := NewLoader(BackendTypeGLTF, WithDecodeWorkers(0))

	asset, err := l.LoadReader("packed", bytes.NewReader(buildTestGLB(t)), true)
	require.NoError(t, err)
	assert.Equal(t, "packed", asset.Name)
	require.Len(t, asset.Animations, 1)
	require.Len(t, asset.Animations[0].Channels, 1)
	assert.Equal(t, [4]float32{2, 4, 6, 0}, asset.Animations[0].Channels[0].Values[1])
	assert.Same(t, asset, l.Get("packed"))
}

func TestLoadReaderRejectsBadGLBMagic(t *testing.T) {
	data := buildTestGLB(t)
	binary.LittleEndian.PutUint32(data[:4], 0xdeadbeef)

	l := NewLoader(BackendTypeGLTF, WithDecodeWorkers(0))
	_, err := l.LoadReader("bad", bytes.NewReader(data), true)
	require.ErrorIs(t, err, errInvalidGLBMagic)
	assert.Nil(t, l.Get("bad"))
}

func TestAccessorPastBufferViewIsChannelFailure(t *testing.T) {
	doc := testDocument("data:application/octet-stream;base64," + base64.StdEncoding.EncodeToString(testPayload()))
	// two VEC3 floats need 24 bytes; shrink the view so the read overruns it
	doc["bufferViews"].([]any)[1].(map[string]any)["byteLength"] = 16
	data, err := json.Marshal(doc)
	require.NoError(t, err)

	l := NewLoader(BackendTypeGLTF, WithDecodeWorkers(0))
	asset, err := l.LoadReader("short", bytes.NewReader(data), false)
	require.NoError(t, err)
	require.Len(t, asset.Animations, 1)
	assert.Empty(t, asset.Animations[0].Channels)
	require.Len(t, asset.Animations[0].Failures, 2)
	assert.ErrorIs(t, asset.Animations[0].Failures[0], errAccessorOutOfRange)
}

func TestReadComponentNormalized(t *testing.T) {
	assert.InDelta(t, 1.0, readComponent([]byte{255}, gltfComponentTypeUnsignedByte, true), 1e-6)
	assert.InDelta(t, -1.0, readComponent([]byte{0x80}, gltfComponentTypeByte, true), 1e-6)
	assert.InDelta(t, 0.5, readComponent([]byte{0xff, 0x7f}, gltfComponentTypeUnsignedShort, true), 1e-4)
	assert.InDelta(t, 200.0, readComponent([]byte{200}, gltfComponentTypeUnsignedByte, false), 1e-6)
}

func TestDecodeNodesMatrix(t *testing.T) {
	// translate (1,2,3), a quarter turn about z, uniform scale 2
	m := [16]float32{
		0, 2, 0, 0,
		-2, 0, 0, 0,
		0, 0, 2, 0,
		1, 2, 3, 1,
	}
	doc := &gltfDocument{Nodes: []gltfNode{
		{Name: "root", Children: []int{1}},
		{Name: "child", Matrix: &m},
	}}

	nodes := gltfDecodeNodes(doc)
	require.Len(t, nodes, 2)
	assert.Equal(t, -1, nodes[0].Parent)
	assert.Equal(t, [4]float32{0, 0, 0, 1}, nodes[0].Rotation)
	assert.Equal(t, [3]float32{1, 1, 1}, nodes[0].Scale)

	child := nodes[1]
	assert.Equal(t, 1, child.Index)
	assert.Equal(t, 0, child.Parent)
	assert.Equal(t, [3]float32{1, 2, 3}, child.Translation)
	for i, want := range []float32{2, 2, 2} {
		assert.InDelta(t, want, child.Scale[i], 1e-5)
	}
	for i, want := range []float32{0, 0, math.Sqrt2 / 2, math.Sqrt2 / 2} {
		assert.InDelta(t, want, child.Rotation[i], 1e-5)
	}
}

func TestLoadAsync(t *testing.T) {
	path := writeTestGLTF(t)
	l := NewLoader(BackendTypeGLTF, WithDecodeWorkers(1))

	select {
	case res := <-l.LoadAsync(context.Background(), path):
		require.NoError(t, res.Err)
		assert.Equal(t, path, res.Asset.Name)
	case <-time.After(5 * time.Second):
		t.Fatal("async load did not complete")
	}
	assert.NotNil(t, l.Get(path))
}

func TestLoadAsyncCancelledIsNotCached(t *testing.T) {
	path := writeTestGLTF(t)
	l := NewLoader(BackendTypeGLTF, WithDecodeWorkers(1))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	select {
	case res := <-l.LoadAsync(ctx, path):
		require.ErrorIs(t, res.Err, context.Canceled)
		assert.Nil(t, res.Asset)
	case <-time.After(5 * time.Second):
		t.Fatal("async load did not complete")
	}
	assert.Nil(t, l.Get(path))
}
