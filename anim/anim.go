// Package anim holds keyframe tracks and clips shared by loaders, the
// retargeting core and the player.
package anim

import (
	"regexp"

	"github.com/binzume/vrmanim/geom"
)

const (
	PropertyPosition   = "position"
	PropertyQuaternion = "quaternion"
	PropertyScale      = "scale"
)

// Node is a live node of a destination skeleton.
type Node struct {
	Index int    // node index in the destination document
	Name  string // bone path used in bound track names
}

// Track is a named channel of sampled values. Values are packed per sample,
// 4 components for quaternion tracks and 3 for position and scale tracks.
type Track struct {
	Name   string
	Times  []float32
	Values []float32

	// Node is nil for source tracks.
	Node *Node
}

func NewTrack(name string, times, values []float32) *Track {
	return &Track{Name: name, Times: times, Values: values}
}

// Property returns the animated property of the track.
func (t *Track) Property() string {
	if _, prop, ok := ParseTrackName(t.Name); ok {
		return prop
	}
	return ""
}

func (t *Track) ValueSize() int {
	if t.Property() == PropertyQuaternion {
		return 4
	}
	return 3
}

// SampleCount returns number of samples that have both a time and a value.
func (t *Track) SampleCount() int {
	n := len(t.Values) / t.ValueSize()
	if len(t.Times) < n {
		return len(t.Times)
	}
	return n
}

func (t *Track) Quaternion(i int) *geom.Quaternion {
	return geom.NewQuaternionFromSlice(t.Values[i*4 : i*4+4])
}

func (t *Track) Vector(i int) *geom.Vector3 {
	return geom.NewVector3FromSlice(t.Values[i*3 : i*3+3])
}

// Clip is a named set of tracks.
type Clip struct {
	Name     string
	Duration float32
	Tracks   []*Track
}

func NewClip(name string, tracks []*Track) *Clip {
	c := &Clip{Name: name, Tracks: tracks}
	c.ResetDuration()
	return c
}

// ResetDuration sets Duration to the latest key time of all tracks.
func (c *Clip) ResetDuration() {
	var d float32
	for _, t := range c.Tracks {
		if len(t.Times) > 0 && t.Times[len(t.Times)-1] > d {
			d = t.Times[len(t.Times)-1]
		}
	}
	c.Duration = d
}

var (
	bonesTrackName = regexp.MustCompile(`^\.bones\[([^\]]+)\]\.(position|quaternion|scale)$`)
	nodeTrackName  = regexp.MustCompile(`^([^\[\]]+)\.(position|quaternion|scale)$`)
	reservedChars  = regexp.MustCompile(`[\[\]\.:/]`)
	whitespace     = regexp.MustCompile(`\s`)
)

// ParseTrackName splits "<node>.<property>" or ".bones[<node>].<property>".
func ParseTrackName(name string) (node, property string, ok bool) {
	if m := bonesTrackName.FindStringSubmatch(name); m != nil {
		return m[1], m[2], true
	}
	if m := nodeTrackName.FindStringSubmatch(name); m != nil {
		return m[1], m[2], true
	}
	return "", "", false
}

// BonesTrackName returns ".bones[<node>].<property>".
func BonesTrackName(node, property string) string {
	return ".bones[" + node + "]." + property
}

// NodeTrackName returns "<node>.<property>".
func NodeTrackName(node, property string) string {
	return node + "." + property
}

// SanitizeNodeName makes name usable as a track name prefix.
// "mixamorig:Hips" -> "mixamorigHips"
func SanitizeNodeName(name string) string {
	return reservedChars.ReplaceAllString(whitespace.ReplaceAllString(name, "_"), "")
}

// IsBonesTrackName reports whether name is in the ".bones[...]" form.
func IsBonesTrackName(name string) bool {
	return bonesTrackName.MatchString(name)
}
