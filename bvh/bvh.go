// Package bvh reads Biovision Hierarchy motion files.
package bvh

import (
	"math"
	"strings"

	"github.com/binzume/vrmanim/anim"
	"github.com/binzume/vrmanim/geom"
)

type Joint struct {
	Name     string
	Offset   [3]float32
	Channels []string
	Parent   *Joint
	Children []*Joint
	EndSite  bool

	// index of the first channel in a frame
	channelIndex int
}

type Motion struct {
	Root      *Joint
	Joints    []*Joint
	FrameTime float32
	Frames    [][]float32
}

// Joint returns the first joint named name, or nil.
func (m *Motion) Joint(name string) *Joint {
	for _, j := range m.Joints {
		if j.Name == name && !j.EndSite {
			return j
		}
	}
	return nil
}

// NumChannels returns number of values in a frame.
func (m *Motion) NumChannels() int {
	n := 0
	for _, j := range m.Joints {
		n += len(j.Channels)
	}
	return n
}

var axes = map[byte]*geom.Vector3{'X': geom.UnitX, 'Y': geom.UnitY, 'Z': geom.UnitZ}

// rotationOrder returns e.g. "ZXY" for Zrotation Xrotation Yrotation.
func (j *Joint) rotationOrder() string {
	var order []byte
	for _, c := range j.Channels {
		if strings.HasSuffix(c, "rotation") {
			order = append(order, c[0])
		}
	}
	return string(order)
}

func (j *Joint) frameRotation(frame []float32) *geom.Quaternion {
	var angles [3]float32
	var seq []float32
	for i, c := range j.Channels {
		if !strings.HasSuffix(c, "rotation") {
			continue
		}
		v := frame[j.channelIndex+i] * math.Pi / 180
		seq = append(seq, v)
		switch c[0] {
		case 'X':
			angles[0] = v
		case 'Y':
			angles[1] = v
		case 'Z':
			angles[2] = v
		}
	}

	order := j.rotationOrder()
	if o, ok := geom.ParseRotationOrder(order); ok {
		return geom.NewEuler(angles[0], angles[1], angles[2], o).ToQuaternion()
	}
	q := geom.NewQuaternion(0, 0, 0, 1)
	for i, v := range seq {
		q = q.Mul(geom.NewQuaternionFromAxisAngle(axes[order[i]], float64(v)))
	}
	return q
}

func (j *Joint) framePosition(frame []float32) [3]float32 {
	pos := j.Offset
	for i, c := range j.Channels {
		switch c {
		case "Xposition":
			pos[0] += frame[j.channelIndex+i]
		case "Yposition":
			pos[1] += frame[j.channelIndex+i]
		case "Zposition":
			pos[2] += frame[j.channelIndex+i]
		}
	}
	return pos
}

// Clip returns ".bones[<joint>].position" and ".bones[<joint>].quaternion"
// tracks for every joint. Times are in seconds.
func (m *Motion) Clip(name string) *anim.Clip {
	times := make([]float32, len(m.Frames))
	for i := range m.Frames {
		times[i] = float32(i) * m.FrameTime
	}

	var tracks []*anim.Track
	for _, j := range m.Joints {
		if j.EndSite {
			continue
		}
		pos := make([]float32, 0, len(m.Frames)*3)
		rot := make([]float32, 0, len(m.Frames)*4)
		for _, frame := range m.Frames {
			p := j.framePosition(frame)
			q := j.frameRotation(frame)
			pos = append(pos, p[:]...)
			rot = append(rot, q.X, q.Y, q.Z, q.W)
		}
		tracks = append(tracks,
			anim.NewTrack(anim.BonesTrackName(j.Name, anim.PropertyPosition), times, pos),
			anim.NewTrack(anim.BonesTrackName(j.Name, anim.PropertyQuaternion), times, rot))
	}
	return anim.NewClip(name, tracks)
}
