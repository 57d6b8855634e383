package converter

import (
	"github.com/binzume/vrmanim/anim"
	"github.com/binzume/vrmanim/gltfutil"
	"github.com/binzume/vrmanim/retarget"
	"github.com/binzume/vrmanim/vrm"
	"github.com/qmuntal/gltf"
)

// VRMSkeleton resolves retarget bones to humanoid nodes of a VRM document.
type VRMSkeleton struct {
	doc *vrm.Document
}

func NewVRMSkeleton(doc *vrm.Document) *VRMSkeleton {
	return &VRMSkeleton{doc: doc}
}

func (s *VRMSkeleton) BoneNode(bone retarget.HumanBone) *anim.Node {
	n, ok := s.doc.HumanBoneNode(string(bone))
	if !ok {
		return nil
	}
	return &anim.Node{Index: n, Name: gltfutil.NodeName((*gltf.Document)(s.doc), uint32(n))}
}
