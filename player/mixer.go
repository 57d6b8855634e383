// Package player plays clips on the nodes of a glTF document.
package player

import (
	"github.com/binzume/vrmanim/anim"
	"github.com/binzume/vrmanim/geom"
	"github.com/binzume/vrmanim/gltfutil"
	"github.com/qmuntal/gltf"
)

type transform struct {
	translation *geom.Vector3
	rotation    *geom.Quaternion
	scale       *geom.Vector3
}

func nodeTransform(n *gltf.Node) *transform {
	r := geom.NewQuaternionFromArray(n.Rotation)
	if r.LenSqr() == 0 {
		r = geom.NewQuaternion(0, 0, 0, 1)
	}
	s := geom.NewVector3FromArray(n.Scale)
	if s.LenSqr() == 0 {
		s = geom.NewVector3(1, 1, 1)
	}
	return &transform{
		translation: geom.NewVector3FromArray(n.Translation),
		rotation:    r,
		scale:       s,
	}
}

// Mixer blends running actions into node transforms.
type Mixer struct {
	doc     *gltf.Document
	rest    []*transform
	nodes   map[string]int
	actions []*Action
}

// NewMixer captures the current node transforms of doc as the rest pose.
func NewMixer(doc *gltf.Document) *Mixer {
	m := &Mixer{doc: doc, nodes: map[string]int{}}
	for i, n := range doc.Nodes {
		m.rest = append(m.rest, nodeTransform(n))
		m.nodes[gltfutil.NodeName(doc, uint32(i))] = i
	}
	return m
}

// ClipAction returns the action for clip, creating it if needed.
func (m *Mixer) ClipAction(clip *anim.Clip) *Action {
	for _, a := range m.actions {
		if a.clip == clip {
			return a
		}
	}
	a := &Action{mixer: m, clip: clip, loop: LoopRepeat, weight: 1}
	m.actions = append(m.actions, a)
	return a
}

func (m *Mixer) StopAllAction() {
	for _, a := range m.actions {
		a.Stop()
	}
}

// ResetPose writes the rest pose back to the nodes.
func (m *Mixer) ResetPose() {
	for i, r := range m.rest {
		m.apply(i, r)
	}
}

func (m *Mixer) trackNode(t *anim.Track) int {
	if t.Node != nil {
		if t.Node.Index >= 0 && t.Node.Index < len(m.rest) {
			return t.Node.Index
		}
		return -1
	}
	name, _, ok := anim.ParseTrackName(t.Name)
	if !ok {
		return -1
	}
	if i, ok := m.nodes[name]; ok {
		return i
	}
	return -1
}

type binding struct {
	translation, scale *geom.Vector3
	rotation           *geom.Quaternion
	tw, rw, sw         float32
}

func mixVector(acc *geom.Vector3, accWeight float32, v *geom.Vector3, w float32) *geom.Vector3 {
	if acc == nil {
		return v
	}
	return acc.Lerp(v, w/(accWeight+w))
}

func mixQuaternion(acc *geom.Quaternion, accWeight float32, q *geom.Quaternion, w float32) *geom.Quaternion {
	if acc == nil {
		return q
	}
	return acc.Slerp(q, w/(accWeight+w))
}

// Update advances running actions by delta (clip time units, milliseconds
// for retargeted clips) and writes the blended pose to the nodes.
func (m *Mixer) Update(delta float32) {
	bindings := map[int]*binding{}
	for _, a := range m.actions {
		a.update(delta)
		if !a.active() || a.weight <= 0 {
			continue
		}
		t := a.localTime()
		for _, track := range a.clip.Tracks {
			node := m.trackNode(track)
			if node < 0 || track.SampleCount() == 0 {
				continue
			}
			b := bindings[node]
			if b == nil {
				b = &binding{}
				bindings[node] = b
			}
			switch track.Property() {
			case anim.PropertyPosition:
				b.translation = mixVector(b.translation, b.tw, sampleVector(track, t), a.weight)
				b.tw += a.weight
			case anim.PropertyScale:
				b.scale = mixVector(b.scale, b.sw, sampleVector(track, t), a.weight)
				b.sw += a.weight
			case anim.PropertyQuaternion:
				b.rotation = mixQuaternion(b.rotation, b.rw, sampleQuaternion(track, t), a.weight)
				b.rw += a.weight
			}
		}
	}

	for i, rest := range m.rest {
		b := bindings[i]
		if b == nil {
			m.apply(i, rest)
			continue
		}
		tr := &transform{translation: rest.translation, rotation: rest.rotation, scale: rest.scale}
		if b.translation != nil {
			tr.translation = mixRest(rest.translation, b.translation, b.tw)
		}
		if b.scale != nil {
			tr.scale = mixRest(rest.scale, b.scale, b.sw)
		}
		if b.rotation != nil {
			if b.rw < 1 {
				tr.rotation = rest.rotation.Slerp(b.rotation, b.rw)
			} else {
				tr.rotation = b.rotation
			}
		}
		m.apply(i, tr)
	}
}

func mixRest(rest, v *geom.Vector3, w float32) *geom.Vector3 {
	if w < 1 {
		return rest.Lerp(v, w)
	}
	return v
}

func (m *Mixer) apply(i int, tr *transform) {
	n := m.doc.Nodes[i]
	tr.translation.ToArray(n.Translation[:])
	r := *tr.rotation
	r.Normalize().ToArray(n.Rotation[:])
	tr.scale.ToArray(n.Scale[:])
}

// keyIndex returns i such that times[i] <= t < times[i+1], clamped to [0, n-1].
func keyIndex(times []float32, n int, t float32) int {
	lo, hi := 0, n-1
	if t <= times[0] {
		return 0
	}
	if t >= times[hi] {
		return hi
	}
	for hi-lo > 1 {
		mid := (lo + hi) / 2
		if times[mid] <= t {
			lo = mid
		} else {
			hi = mid
		}
	}
	return lo
}

func keyRatio(times []float32, i, n int, t float32) float32 {
	if i+1 >= n || times[i+1] <= times[i] || t <= times[i] {
		return 0
	}
	return (t - times[i]) / (times[i+1] - times[i])
}

func sampleVector(track *anim.Track, t float32) *geom.Vector3 {
	n := track.SampleCount()
	i := keyIndex(track.Times, n, t)
	r := keyRatio(track.Times, i, n, t)
	if r == 0 {
		return track.Vector(i)
	}
	return track.Vector(i).Lerp(track.Vector(i+1), r)
}

func sampleQuaternion(track *anim.Track, t float32) *geom.Quaternion {
	n := track.SampleCount()
	i := keyIndex(track.Times, n, t)
	r := keyRatio(track.Times, i, n, t)
	if r == 0 {
		return track.Quaternion(i)
	}
	return track.Quaternion(i).Slerp(track.Quaternion(i+1), r)
}
