package converter

import (
	"fmt"

	"github.com/binzume/vrmanim/anim"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func keysEquals(a, b []float32) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

var trsPaths = map[string]gltf.TRSProperty{
	anim.PropertyPosition:   gltf.TRSTranslation,
	anim.PropertyQuaternion: gltf.TRSRotation,
	anim.PropertyScale:      gltf.TRSScale,
}

// AddClipToGLTF appends clip as a new animation and returns its index.
// Track times are milliseconds, every track must be bound to a node of doc.
// Returns -1 if the clip has no samples.
func AddClipToGLTF(doc *gltf.Document, clip *anim.Clip) (int, error) {
	a := gltf.Animation{Name: clip.Name}
	if len(doc.Buffers) == 0 {
		doc.Buffers = append(doc.Buffers, &gltf.Buffer{})
	}

	var prevTimes []float32
	var prevKeysAcc uint32
	for _, t := range clip.Tracks {
		if t.Node == nil || t.Node.Index < 0 || t.Node.Index >= len(doc.Nodes) {
			return -1, fmt.Errorf("track %q is not bound to a node", t.Name)
		}
		path, ok := trsPaths[t.Property()]
		if !ok {
			return -1, fmt.Errorf("track %q: unsupported property", t.Name)
		}
		n := t.SampleCount()
		if n == 0 {
			continue
		}

		var keysAcc uint32
		if prevTimes != nil && keysEquals(t.Times[:n], prevTimes) {
			keysAcc = prevKeysAcc
		} else {
			keys := make([]float32, n)
			for i := range keys {
				keys[i] = t.Times[i] / 1000
			}
			keysAcc = modeler.WriteAccessor(doc, gltf.TargetNone, keys)
			doc.Accessors[keysAcc].Min = []float32{keys[0]}
			doc.Accessors[keysAcc].Max = []float32{keys[n-1]}
			prevTimes = t.Times[:n]
			prevKeysAcc = keysAcc
		}

		var samplesAcc uint32
		if path == gltf.TRSRotation {
			rotations := make([][4]float32, n)
			for i := range rotations {
				copy(rotations[i][:], t.Values[i*4:i*4+4])
			}
			samplesAcc = modeler.WriteAccessor(doc, gltf.TargetNone, rotations)
		} else {
			vectors := make([][3]float32, n)
			for i := range vectors {
				copy(vectors[i][:], t.Values[i*3:i*3+3])
			}
			samplesAcc = modeler.WriteAccessor(doc, gltf.TargetNone, vectors)
		}

		a.Samplers = append(a.Samplers, &gltf.AnimationSampler{
			Input:         gltf.Index(keysAcc),
			Output:        gltf.Index(samplesAcc),
			Interpolation: gltf.InterpolationLinear,
		})
		a.Channels = append(a.Channels, &gltf.Channel{
			Sampler: gltf.Index(uint32(len(a.Samplers) - 1)),
			Target: gltf.ChannelTarget{
				Node: gltf.Index(uint32(t.Node.Index)),
				Path: path,
			},
		})
	}

	if len(a.Channels) == 0 {
		return -1, nil
	}
	doc.Animations = append(doc.Animations, &a)
	return len(doc.Animations) - 1, nil
}
