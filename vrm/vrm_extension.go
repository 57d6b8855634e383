package vrm

import (
	"fmt"
	"strings"

	"github.com/qmuntal/gltf"
)

type Document gltf.Document

// VRM returns VRM 0.x extension or nil.
func (doc *Document) VRM() *VRM {
	if ext, ok := doc.Extensions[ExtensionName].(*VRM); ok {
		return ext
	}
	return nil
}

// VRMV1 returns VRMC_vrm extension or nil.
func (doc *Document) VRMV1() *VRMV1 {
	if ext, ok := doc.Extensions[ExtensionNameV1].(*VRMV1); ok {
		return ext
	}
	return nil
}

func (doc *Document) IsExtentionUsed(extname string) bool {
	for _, ex := range doc.ExtensionsUsed {
		if ex == extname {
			return true
		}
	}
	return false
}

// Version returns "1.0", "0.x" or "" for plain glTF.
func (doc *Document) Version() string {
	if doc.VRMV1() != nil {
		return "1.0"
	}
	if doc.VRM() != nil {
		return "0.x"
	}
	return ""
}

func (doc *Document) Title() string {
	if v := doc.VRMV1(); v != nil {
		return v.Meta.Name
	}
	if v := doc.VRM(); v != nil {
		return v.Meta.Title
	}
	return ""
}

func (doc *Document) Author() string {
	if v := doc.VRMV1(); v != nil {
		return strings.Join(v.Meta.Authors, ", ")
	}
	if v := doc.VRM(); v != nil {
		return v.Meta.Author
	}
	return ""
}

// HumanBoneNode returns node index of the humanoid bone.
func (doc *Document) HumanBoneNode(bone string) (int, bool) {
	node := -1
	if v := doc.VRMV1(); v != nil {
		if b, ok := v.Humanoid.HumanBones[bone]; ok && b != nil {
			node = b.Node
		}
	} else if v := doc.VRM(); v != nil {
		for _, b := range v.Humanoid.Bones {
			if b.Bone == bone {
				node = b.Node
				break
			}
		}
	}
	if node < 0 || node >= len(doc.Nodes) {
		return -1, false
	}
	return node, true
}

// CheckRequiredBones returns missing bone names.
func (doc *Document) CheckRequiredBones() []string {
	var missing []string
	for _, name := range RequiredBones {
		if _, ok := doc.HumanBoneNode(name); !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

func (doc *Document) ValidateBones() error {
	errorBones := doc.CheckRequiredBones()
	if len(errorBones) > 0 {
		return fmt.Errorf("Bone error. Missing bones: %v", strings.Join(errorBones, ","))
	}
	return nil
}
