package retarget

// HumanBone is a VRM humanoid bone name.
type HumanBone string

const (
	Head          HumanBone = "head"
	Neck          HumanBone = "neck"
	Chest         HumanBone = "chest"
	Spine         HumanBone = "spine"
	Hips          HumanBone = "hips"
	RightShoulder HumanBone = "rightShoulder"
	RightUpperArm HumanBone = "rightUpperArm"
	RightLowerArm HumanBone = "rightLowerArm"
	RightHand     HumanBone = "rightHand"
	LeftShoulder  HumanBone = "leftShoulder"
	LeftUpperArm  HumanBone = "leftUpperArm"
	LeftLowerArm  HumanBone = "leftLowerArm"
	LeftHand      HumanBone = "leftHand"
	RightUpperLeg HumanBone = "rightUpperLeg"
	RightLowerLeg HumanBone = "rightLowerLeg"
	RightFoot     HumanBone = "rightFoot"
	LeftUpperLeg  HumanBone = "leftUpperLeg"
	LeftLowerLeg  HumanBone = "leftLowerLeg"
	LeftFoot      HumanBone = "leftFoot"
)

// CanonicalBones is the conversion order. Output tracks follow this order.
var CanonicalBones = []HumanBone{
	Head,
	Neck,
	Chest,
	Spine,
	Hips,
	RightShoulder,
	RightUpperArm,
	RightLowerArm,
	RightHand,
	LeftShoulder,
	LeftUpperArm,
	LeftLowerArm,
	LeftHand,
	RightUpperLeg,
	RightLowerLeg,
	RightFoot,
	LeftUpperLeg,
	LeftLowerLeg,
	LeftFoot,
}

// RootBone carries root motion.
const RootBone = Hips
