package vrm

// https://vrm.dev/
// https://github.com/vrm-c/vrm-specification/blob/master/specification/0.0/README.ja.md
// https://github.com/vrm-c/vrm-specification/tree/master/specification/VRMC_vrm-1.0

import (
	"encoding/json"

	"github.com/qmuntal/gltf"
)

const (
	ExtensionName   = "VRM"
	ExtensionNameV1 = "VRMC_vrm"
)

func init() {
	gltf.RegisterExtension(ExtensionName, Unmarshal)
	gltf.RegisterExtension(ExtensionNameV1, UnmarshalV1)
}

// RequiredBones of VRM 0.x humanoid.
var RequiredBones = []string{
	"hips", "spine", "chest", "neck", "head",
	"leftUpperArm", "leftLowerArm", "leftHand",
	"rightUpperArm", "rightLowerArm", "rightHand",
	"leftUpperLeg", "leftLowerLeg", "leftFoot",
	"rightUpperLeg", "rightLowerLeg", "rightFoot",
}

type Metadata struct {
	Title   string `json:"title"`
	Version string `json:"version"`
	Author  string `json:"author"`

	LicenseName     string `json:"licenseName"`
	OtherLicenseUrl string `json:"otherLicenseUrl"`
}

type Bone struct {
	Bone             string `json:"bone"`
	Node             int    `json:"node"`
	UseDefaultValues bool   `json:"useDefaultValues"`
}

type Humanoid struct {
	Bones []*Bone `json:"humanBones"`
}

// VRM is the VRM 0.x extension. Fields not listed here are kept as is.
type VRM struct {
	Meta            Metadata `json:"meta"`
	Humanoid        Humanoid `json:"humanoid"`
	ExporterVersion string   `json:"exporterVersion"`

	raw json.RawMessage
}

func (v *VRM) MarshalJSON() ([]byte, error) {
	if v.raw != nil {
		return v.raw, nil
	}
	type plain VRM
	return json.Marshal((*plain)(v))
}

func Unmarshal(data []byte) (interface{}, error) {
	var vrmext VRM
	if err := json.Unmarshal(data, &vrmext); err != nil {
		return nil, err
	}
	vrmext.raw = append(json.RawMessage(nil), data...)
	return &vrmext, nil
}

type MetadataV1 struct {
	Name    string   `json:"name"`
	Version string   `json:"version"`
	Authors []string `json:"authors"`
}

type HumanBoneV1 struct {
	Node int `json:"node"`
}

// VRMV1 is the VRMC_vrm extension.
type VRMV1 struct {
	SpecVersion string     `json:"specVersion"`
	Meta        MetadataV1 `json:"meta"`
	Humanoid    struct {
		HumanBones map[string]*HumanBoneV1 `json:"humanBones"`
	} `json:"humanoid"`

	raw json.RawMessage
}

func (v *VRMV1) MarshalJSON() ([]byte, error) {
	if v.raw != nil {
		return v.raw, nil
	}
	type plain VRMV1
	return json.Marshal((*plain)(v))
}

func UnmarshalV1(data []byte) (interface{}, error) {
	var vrmext VRMV1
	if err := json.Unmarshal(data, &vrmext); err != nil {
		return nil, err
	}
	vrmext.raw = append(json.RawMessage(nil), data...)
	return &vrmext, nil
}
