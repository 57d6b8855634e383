package retarget

import (
	"regexp"
	"strconv"

	"github.com/binzume/vrmanim/anim"
)

// Skeleton is the destination of a conversion.
type Skeleton interface {
	// BoneNode returns nil if the skeleton has no node for bone.
	BoneNode(bone HumanBone) *anim.Node
}

var indexTrackName = regexp.MustCompile(`^\.bones\[([^\]]+)\]\.(position|quaternion|scale)$`)

// BuildClip converts src to a clip bound to the nodes of skel.
// Bones that can't be converted or have no target node are left out.
func BuildClip(src *anim.Clip, skel Skeleton, f *Format, opts *Options) (*anim.Clip, error) {
	if opts == nil {
		opts = &Options{}
	}
	var name string
	var tracks []*anim.Track
	if src != nil {
		name = src.Name
		tracks = src.Tracks
	}

	// nodes[i] is the target of hierarchy[i].
	var nodes []*anim.Node
	var hierarchy [][]Keyframe
	for _, bone := range CanonicalBones {
		node := skel.BoneNode(bone)
		if node == nil {
			opts.skip(bone, ErrUnresolvedTargetBone)
			continue
		}
		keys, err := ConvertBoneSamples(bone, tracks, f, opts)
		if err != nil {
			opts.skip(bone, err)
			continue
		}
		nodes = append(nodes, node)
		hierarchy = append(hierarchy, keys)
	}

	clip, err := parseAnimation(name, hierarchy, len(nodes))
	if err != nil {
		return nil, err
	}
	if err := rewriteTrackNames(clip, nodes); err != nil {
		return nil, err
	}
	return clip, nil
}

// parseAnimation makes ".bones[<index>].<property>" tracks from keyframe lists.
func parseAnimation(name string, hierarchy [][]Keyframe, nodeCount int) (*anim.Clip, error) {
	if len(hierarchy) != nodeCount {
		return nil, &AlignmentError{Nodes: nodeCount, Keys: len(hierarchy)}
	}
	if name == "" {
		name = "default"
	}

	var tracks []*anim.Track
	for h, keys := range hierarchy {
		bone := strconv.Itoa(h)
		if t := positionTrack(anim.BonesTrackName(bone, anim.PropertyPosition), keys); t != nil {
			tracks = append(tracks, t)
		}
		if t := rotationTrack(anim.BonesTrackName(bone, anim.PropertyQuaternion), keys); t != nil {
			tracks = append(tracks, t)
		}
	}
	return anim.NewClip(name, tracks), nil
}

func positionTrack(name string, keys []Keyframe) *anim.Track {
	var times, values []float32
	for _, k := range keys {
		if k.Pos != nil {
			times = append(times, float32(k.Time))
			values = append(values, k.Pos[:]...)
		}
	}
	if len(times) == 0 {
		return nil
	}
	return anim.NewTrack(name, times, values)
}

func rotationTrack(name string, keys []Keyframe) *anim.Track {
	var times, values []float32
	for _, k := range keys {
		if k.Rot != nil {
			times = append(times, float32(k.Time))
			values = append(values, k.Rot[:]...)
		}
	}
	if len(times) == 0 {
		return nil
	}
	return anim.NewTrack(name, times, values)
}

// rewriteTrackNames renames ".bones[<index>].<property>" to "<bone path>.<property>"
// and binds each track to its node.
func rewriteTrackNames(clip *anim.Clip, nodes []*anim.Node) error {
	for _, t := range clip.Tracks {
		m := indexTrackName.FindStringSubmatch(t.Name)
		if m == nil {
			return &AlignmentError{Nodes: len(nodes), Track: t.Name}
		}
		i, err := strconv.Atoi(m[1])
		if err != nil || i < 0 || i >= len(nodes) {
			return &AlignmentError{Nodes: len(nodes), Track: t.Name}
		}
		t.Name = anim.NodeTrackName(nodes[i].Name, m[2])
		t.Node = nodes[i]
	}
	return nil
}
