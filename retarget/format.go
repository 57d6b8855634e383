package retarget

import (
	"strings"

	"github.com/binzume/vrmanim/anim"
)

// Format is a source rig convention: its joint names for every canonical
// bone and the way its loader names tracks.
type Format struct {
	Name string

	ids map[HumanBone]string

	// pairs lists joints whose rotation is composed after the bone's own
	// rotation. The target skeleton has a single joint for both.
	pairs map[HumanBone]string

	// requirePosition is set for conventions that key position on every joint.
	requirePosition bool

	trackName func(id, property string) string
}

// SourceID returns the joint name for bone.
func (f *Format) SourceID(bone HumanBone) string {
	return f.ids[bone]
}

// TrackName returns the source track name for a joint property.
func (f *Format) TrackName(id, property string) string {
	return f.trackName(id, property)
}

// Mixamo rigs exported from FBX/glTF. Tracks are "<id>.quaternion".
var Mixamo = &Format{
	Name: "mixamo",
	ids: map[HumanBone]string{
		Head:          "mixamorigHead",
		Neck:          "mixamorigNeck",
		Chest:         "mixamorigSpine2",
		Spine:         "mixamorigSpine",
		Hips:          "mixamorigHips",
		RightShoulder: "mixamorigRightShoulder",
		RightUpperArm: "mixamorigRightArm",
		RightLowerArm: "mixamorigRightForeArm",
		RightHand:     "mixamorigRightHand",
		LeftShoulder:  "mixamorigLeftShoulder",
		LeftUpperArm:  "mixamorigLeftArm",
		LeftLowerArm:  "mixamorigLeftForeArm",
		LeftHand:      "mixamorigLeftHand",
		RightUpperLeg: "mixamorigRightUpLeg",
		RightLowerLeg: "mixamorigRightLeg",
		RightFoot:     "mixamorigRightFoot",
		LeftUpperLeg:  "mixamorigLeftUpLeg",
		LeftLowerLeg:  "mixamorigLeftLeg",
		LeftFoot:      "mixamorigLeftFoot",
	},
	trackName: anim.NodeTrackName,
}

// BvhViewer is the joint naming of BVH files for the bvh web viewer
// (Poser/DAZ style). The thigh is split into buttock and thigh joints.
var BvhViewer = &Format{
	Name: "bvhviewer",
	ids: map[HumanBone]string{
		Head:          "head",
		Neck:          "neck",
		Chest:         "chest",
		Spine:         "abdomen",
		Hips:          "hip",
		RightShoulder: "rCollar",
		RightUpperArm: "rShldr",
		RightLowerArm: "rForeArm",
		RightHand:     "rHand",
		LeftShoulder:  "lCollar",
		LeftUpperArm:  "lShldr",
		LeftLowerArm:  "lForeArm",
		LeftHand:      "lHand",
		RightUpperLeg: "rButtock",
		RightLowerLeg: "rShin",
		RightFoot:     "rFoot",
		LeftUpperLeg:  "lButtock",
		LeftLowerLeg:  "lShin",
		LeftFoot:      "lFoot",
	},
	pairs: map[HumanBone]string{
		RightUpperLeg: "rThigh",
		LeftUpperLeg:  "lThigh",
	},
	requirePosition: true,
	trackName:       anim.BonesTrackName,
}

// Tdpt is the joint naming of BVH files exported by TDPT (ThreeDPoseTracker).
var Tdpt = &Format{
	Name: "tdpt",
	ids: map[HumanBone]string{
		Head:          "Head",
		Neck:          "Neck",
		Chest:         "Chest",
		Spine:         "Spine",
		Hips:          "Hips",
		RightShoulder: "RightShoulder",
		RightUpperArm: "RightUpperArm",
		RightLowerArm: "RightLowerArm",
		RightHand:     "RightHand",
		LeftShoulder:  "LeftShoulder",
		LeftUpperArm:  "LeftUpperArm",
		LeftLowerArm:  "LeftLowerArm",
		LeftHand:      "LeftHand",
		RightUpperLeg: "RightUpperLeg",
		RightLowerLeg: "RightLowerLeg",
		RightFoot:     "RightFoot",
		LeftUpperLeg:  "LeftUpperLeg",
		LeftLowerLeg:  "LeftLowerLeg",
		LeftFoot:      "LeftFoot",
	},
	requirePosition: true,
	trackName:       anim.BonesTrackName,
}

var Formats = []*Format{Mixamo, BvhViewer, Tdpt}

// FormatByName returns nil for unknown names.
func FormatByName(name string) *Format {
	name = strings.ToLower(name)
	for _, f := range Formats {
		if f.Name == name {
			return f
		}
	}
	return nil
}
