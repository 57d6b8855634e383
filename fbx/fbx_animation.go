package fbx

import (
	"fmt"
	"math"
	"sort"

	"github.com/binzume/vrmanim/anim"
	"github.com/binzume/vrmanim/geom"
)

// TicksPerSecond is the FBX time unit (KTime).
const TicksPerSecond = 46186158000

type AnimationStack struct {
	Obj
}

func (s *AnimationStack) Layers() []Object {
	return s.FindRefs("AnimationLayer")
}

// AnimationCurveNode groups the X/Y/Z curves of an animated model property.
type AnimationCurveNode struct {
	Obj
	Target     *Model
	TargetProp string // "Lcl Translation", "Lcl Rotation" or "Lcl Scaling"
}

func (n *AnimationCurveNode) Curve(axis string) *AnimationCurve {
	if c, ok := n.FindRef("AnimationCurve", "d|"+axis).(*AnimationCurve); ok {
		return c
	}
	return nil
}

type AnimationCurve struct {
	Obj
}

func (c *AnimationCurve) KeyTime() []int64 {
	return c.FindChild("KeyTime").Attr(0).ToInt64Array()
}

func (c *AnimationCurve) KeyValues() []float32 {
	return c.FindChild("KeyValueFloat").Attr(0).ToFloat32Array()
}

type curveKeys struct {
	times  []int64
	values []float32
	def    float32
}

func newCurveKeys(c *AnimationCurve, def float32) *curveKeys {
	k := &curveKeys{def: def}
	if c == nil {
		return k
	}
	k.times = c.KeyTime()
	k.values = c.KeyValues()
	if len(k.values) < len(k.times) {
		k.times = k.times[:len(k.values)]
	}
	return k
}

// at returns the linearly interpolated value at t.
func (k *curveKeys) at(t int64) float32 {
	n := len(k.times)
	if n == 0 {
		return k.def
	}
	if t <= k.times[0] {
		return k.values[0]
	}
	if t >= k.times[n-1] {
		return k.values[n-1]
	}
	i := sort.Search(n, func(i int) bool { return k.times[i] >= t })
	if k.times[i] == t {
		return k.values[i]
	}
	r := float32(t-k.times[i-1]) / float32(k.times[i]-k.times[i-1])
	return k.values[i-1] + (k.values[i]-k.values[i-1])*r
}

func mergeTimes(keys []*curveKeys) []int64 {
	seen := map[int64]bool{}
	var times []int64
	for _, k := range keys {
		for _, t := range k.times {
			if !seen[t] {
				seen[t] = true
				times = append(times, t)
			}
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times
}

var curveNodeProperties = map[string]string{
	"Lcl Translation": anim.PropertyPosition,
	"Lcl Rotation":    anim.PropertyQuaternion,
	"Lcl Scaling":     anim.PropertyScale,
}

func degToRad(v float32) float32 {
	return float32(float64(v) * math.Pi / 180)
}

func eulerToQuaternion(v *geom.Vector3, order geom.RotationOrder) *geom.Quaternion {
	return geom.NewEuler(degToRad(v.X), degToRad(v.Y), degToRad(v.Z), order).ToQuaternion()
}

// rotationConverter returns Lcl Rotation (degrees) to local rotation including Pre/PostRotation.
func rotationConverter(m *Model) func(v *geom.Vector3) *geom.Quaternion {
	order := m.RotationOrder()
	pre := eulerToQuaternion(m.GetProperty70("PreRotation").ToVector3(0, 0, 0), order)
	postInv := eulerToQuaternion(m.GetProperty70("PostRotation").ToVector3(0, 0, 0), order).Inverse()
	return func(v *geom.Vector3) *geom.Quaternion {
		return pre.Mul(eulerToQuaternion(v, order)).Mul(postInv).Normalize()
	}
}

func (n *AnimationCurveNode) track() *anim.Track {
	prop, ok := curveNodeProperties[n.TargetProp]
	if !ok || n.Target == nil {
		return nil
	}
	var def *geom.Vector3
	switch prop {
	case anim.PropertyPosition:
		def = n.Target.GetTranslation()
	case anim.PropertyQuaternion:
		def = n.Target.GetRotation()
	default:
		def = n.Target.GetScaling()
	}

	keys := []*curveKeys{
		newCurveKeys(n.Curve("X"), n.GetProperty70("d|X").Get(0).ToFloat32(def.X)),
		newCurveKeys(n.Curve("Y"), n.GetProperty70("d|Y").Get(0).ToFloat32(def.Y)),
		newCurveKeys(n.Curve("Z"), n.GetProperty70("d|Z").Get(0).ToFloat32(def.Z)),
	}
	ticks := mergeTimes(keys)
	if len(ticks) == 0 {
		return nil
	}

	var toQuat func(v *geom.Vector3) *geom.Quaternion
	if prop == anim.PropertyQuaternion {
		toQuat = rotationConverter(n.Target)
	}
	times := make([]float32, len(ticks))
	var values []float32
	for i, t := range ticks {
		times[i] = float32(float64(t) / TicksPerSecond)
		v := geom.NewVector3(keys[0].at(t), keys[1].at(t), keys[2].at(t))
		if toQuat != nil {
			q := toQuat(v)
			values = append(values, q.X, q.Y, q.Z, q.W)
		} else {
			values = append(values, v.X, v.Y, v.Z)
		}
	}
	name := anim.NodeTrackName(anim.SanitizeNodeName(n.Target.Name()), prop)
	return anim.NewTrack(name, times, values)
}

// Clips returns a clip for each AnimationStack. Tracks are named
// "<model>.position", "<model>.quaternion" and "<model>.scale" with times in seconds.
func (doc *Document) Clips() []*anim.Clip {
	var clips []*anim.Clip
	for si, stack := range doc.Stacks {
		var tracks []*anim.Track
		added := map[string]bool{}
		for _, layer := range stack.Layers() {
			for _, o := range layer.FindRefs("AnimationCurveNode") {
				cn, ok := o.(*AnimationCurveNode)
				if !ok {
					continue
				}
				t := cn.track()
				if t == nil || added[t.Name] {
					continue
				}
				added[t.Name] = true
				tracks = append(tracks, t)
			}
		}
		name := stack.Name()
		if name == "" {
			name = fmt.Sprintf("animation_%d", si)
		}
		clips = append(clips, anim.NewClip(name, tracks))
	}
	return clips
}
