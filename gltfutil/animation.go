package gltfutil

import (
	"fmt"

	"github.com/binzume/vrmanim/anim"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

var trsProperties = map[gltf.TRSProperty]string{
	gltf.TRSTranslation: anim.PropertyPosition,
	gltf.TRSRotation:    anim.PropertyQuaternion,
	gltf.TRSScale:       anim.PropertyScale,
}

// ReadClips returns all animations of doc. Tracks are named "<node>.<property>".
// Morph target weights are skipped.
func ReadClips(doc *gltf.Document) ([]*anim.Clip, error) {
	var clips []*anim.Clip
	for ai, a := range doc.Animations {
		var tracks []*anim.Track
		for ci, ch := range a.Channels {
			prop, ok := trsProperties[ch.Target.Path]
			if !ok || ch.Target.Node == nil || ch.Sampler == nil {
				continue
			}
			if int(*ch.Sampler) >= len(a.Samplers) {
				return nil, fmt.Errorf("animation %d channel %d: invalid sampler %d", ai, ci, *ch.Sampler)
			}
			s := a.Samplers[*ch.Sampler]
			if s.Input == nil || s.Output == nil {
				return nil, fmt.Errorf("animation %d channel %d: sampler without accessor", ai, ci)
			}
			times, err := ReadFloats(doc, *s.Input)
			if err != nil {
				return nil, fmt.Errorf("animation %d channel %d: %w", ai, ci, err)
			}
			values, err := ReadFloats(doc, *s.Output)
			if err != nil {
				return nil, fmt.Errorf("animation %d channel %d: %w", ai, ci, err)
			}
			if s.Interpolation == gltf.InterpolationCubicSpline {
				size := 3
				if prop == anim.PropertyQuaternion {
					size = 4
				}
				values = splineValues(values, size)
			}
			name := anim.NodeTrackName(NodeName(doc, *ch.Target.Node), prop)
			tracks = append(tracks, anim.NewTrack(name, times, values))
		}

		name := a.Name
		if name == "" {
			name = fmt.Sprintf("animation_%d", ai)
		}
		clips = append(clips, anim.NewClip(name, tracks))
	}
	return clips, nil
}

// splineValues drops in/out tangents of CUBICSPLINE samples.
func splineValues(values []float32, size int) []float32 {
	n := len(values) / (size * 3)
	dst := make([]float32, 0, n*size)
	for i := 0; i < n; i++ {
		dst = append(dst, values[(i*3+1)*size:(i*3+2)*size]...)
	}
	return dst
}

// ReadFloats reads an accessor as packed float values.
// Normalized integer accessors are converted to [-1, 1] or [0, 1].
func ReadFloats(doc *gltf.Document, index uint32) ([]float32, error) {
	if int(index) >= len(doc.Accessors) {
		return nil, fmt.Errorf("invalid accessor %d", index)
	}
	data, err := modeler.ReadAccessor(doc, doc.Accessors[index], nil)
	if err != nil {
		return nil, err
	}
	switch v := data.(type) {
	case []float32:
		return v, nil
	case [][3]float32:
		dst := make([]float32, 0, len(v)*3)
		for _, e := range v {
			dst = append(dst, e[:]...)
		}
		return dst, nil
	case [][4]float32:
		dst := make([]float32, 0, len(v)*4)
		for _, e := range v {
			dst = append(dst, e[:]...)
		}
		return dst, nil
	case [][4]int8:
		dst := make([]float32, 0, len(v)*4)
		for _, e := range v {
			for _, c := range e {
				dst = append(dst, normalizeInt(float32(c)/127))
			}
		}
		return dst, nil
	case [][4]int16:
		dst := make([]float32, 0, len(v)*4)
		for _, e := range v {
			for _, c := range e {
				dst = append(dst, normalizeInt(float32(c)/32767))
			}
		}
		return dst, nil
	}
	return nil, fmt.Errorf("unsupported accessor type %T", data)
}

func normalizeInt(v float32) float32 {
	if v < -1 {
		return -1
	}
	return v
}
