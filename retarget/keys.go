package retarget

import (
	"fmt"
	"math"

	"github.com/binzume/vrmanim/anim"
	"github.com/binzume/vrmanim/geom"
)

// DefaultPositionScale converts source root translation to meters.
const DefaultPositionScale = 0.008

// Keyframe is one converted sample of a bone. Time is in milliseconds.
type Keyframe struct {
	Time int
	Rot  *[4]float32
	Pos  *[3]float32
}

type Options struct {
	// RootMotion keeps translation of the root bone.
	RootMotion bool

	// PositionScale for root translation. 0 means DefaultPositionScale.
	PositionScale float32

	// OnSkip is called for each bone left out of the clip.
	OnSkip func(bone HumanBone, err error)
}

func (o *Options) positionScale() float32 {
	if o.PositionScale == 0 {
		return DefaultPositionScale
	}
	return o.PositionScale
}

func (o *Options) skip(bone HumanBone, err error) {
	if o.OnSkip != nil {
		o.OnSkip(bone, err)
	}
}

func toMillis(t float32) int {
	return int(math.Floor(float64(t) * 1000))
}

// flipRotation converts handedness: (x, y, z, w) -> (-x, y, -z, w)
func flipRotation(q *geom.Quaternion) *[4]float32 {
	return &[4]float32{-q.X, q.Y, -q.Z, q.W}
}

func flipPosition(v *geom.Vector3, scale float32) *[3]float32 {
	return &[3]float32{-v.X * scale, v.Y * scale, -v.Z * scale}
}

// ConvertBoneSamples converts the source samples of one bone.
// Returns ErrMissingTrack, ErrMissingPairedTrack or ErrEmptySampleSet when
// the bone has nothing to contribute.
func ConvertBoneSamples(bone HumanBone, tracks []*anim.Track, f *Format, opts *Options) ([]Keyframe, error) {
	if opts == nil {
		opts = &Options{}
	}
	id, ok := f.ids[bone]
	if !ok {
		return nil, fmt.Errorf("%w: no %s joint for %s", ErrMissingTrack, f.Name, bone)
	}

	posName := f.trackName(id, anim.PropertyPosition)
	rotName := f.trackName(id, anim.PropertyQuaternion)
	posTrack := FindTrack(posName, tracks)
	rotTrack := FindTrack(rotName, tracks)
	if rotTrack == nil {
		return nil, fmt.Errorf("%w: %s", ErrMissingTrack, rotName)
	}

	// samples are driven by the position track when every joint has one.
	timeTrack := rotTrack
	n := rotTrack.SampleCount()
	if f.requirePosition {
		if posTrack == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingTrack, posName)
		}
		timeTrack = posTrack
		if c := posTrack.SampleCount(); c < n {
			n = c
		}
	}

	var pairTrack *anim.Track
	if pairID, ok := f.pairs[bone]; ok {
		pairName := f.trackName(pairID, anim.PropertyQuaternion)
		pairTrack = FindTrack(pairName, tracks)
		if pairTrack == nil {
			return nil, fmt.Errorf("%w: %s", ErrMissingPairedTrack, pairName)
		}
		if c := pairTrack.SampleCount(); c < n {
			n = c
		}
	}

	rootMotion := bone == RootBone && opts.RootMotion && posTrack != nil
	scale := opts.positionScale()

	keys := make([]Keyframe, 0, n)
	for i := 0; i < n; i++ {
		q := rotTrack.Quaternion(i)
		if pairTrack != nil {
			q = q.Mul(pairTrack.Quaternion(i))
		}
		key := Keyframe{Time: toMillis(timeTrack.Times[i]), Rot: flipRotation(q)}
		if rootMotion && i < posTrack.SampleCount() {
			key.Pos = flipPosition(posTrack.Vector(i), scale)
		}
		keys = append(keys, key)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptySampleSet, rotName)
	}
	return keys, nil
}
