package converter

import (
	"io/ioutil"
	"log"

	"github.com/binzume/vrmanim/anim"
	"github.com/binzume/vrmanim/gltfutil"
	"github.com/binzume/vrmanim/retarget"
	"github.com/binzume/vrmanim/vrm"
	"github.com/qmuntal/gltf"
	"gopkg.in/yaml.v2"
)

// Config is a conversion setting file. YAML (or JSON) format.
type Config struct {
	Format        string  `yaml:"format"`
	RootMotion    bool    `yaml:"rootMotion"`
	PositionScale float32 `yaml:"positionScale"`
	Name          string  `yaml:"name"`
	Animation     int     `yaml:"animation"`
	ShiftJIS      bool    `yaml:"sjis"`

	// BoneMappings override humanoid bones of the avatar.
	BoneMappings []*BoneMapping `yaml:"boneMappings"`
}

type BoneMapping struct {
	Bone     string `yaml:"bone"`
	NodeName string `yaml:"nodeName"`
}

func LoadConfig(confpath string) (*Config, error) {
	data, err := ioutil.ReadFile(confpath)
	if err != nil {
		return nil, err
	}
	var conf Config
	if err := yaml.Unmarshal(data, &conf); err != nil {
		return nil, err
	}
	return &conf, nil
}

// MappedSkeleton resolves bones by node name.
type MappedSkeleton struct {
	doc   *gltf.Document
	nodes map[retarget.HumanBone]int
}

// NewMappedSkeleton resolves bones listed in mappings. A mapping with empty node name hides the bone.
func NewMappedSkeleton(doc *gltf.Document, mappings []*BoneMapping) *MappedSkeleton {
	return newMappedSkeleton(doc, mappings, true)
}

func newMappedSkeleton(doc *gltf.Document, mappings []*BoneMapping, verbose bool) *MappedSkeleton {
	nodeMap := map[string]int{}
	for id, node := range doc.Nodes {
		if _, exists := nodeMap[node.Name]; !exists {
			nodeMap[node.Name] = id
		}
	}
	s := &MappedSkeleton{doc: doc, nodes: map[retarget.HumanBone]int{}}
	for _, mapping := range mappings {
		bone := retarget.HumanBone(mapping.Bone)
		if _, found := s.nodes[bone]; found {
			continue
		}
		if mapping.NodeName == "" {
			s.nodes[bone] = -1
			continue
		}
		if id, ok := nodeMap[mapping.NodeName]; ok {
			s.nodes[bone] = id
		} else if verbose {
			log.Println("Bone node not found:", mapping.NodeName)
		}
	}
	return s
}

func (s *MappedSkeleton) BoneNode(bone retarget.HumanBone) *anim.Node {
	id, ok := s.nodes[bone]
	if !ok || id < 0 {
		return nil
	}
	return &anim.Node{Index: id, Name: gltfutil.NodeName(s.doc, uint32(id))}
}

func (s *MappedSkeleton) hidden(bone retarget.HumanBone) bool {
	id, ok := s.nodes[bone]
	return ok && id < 0
}

type avatarSkeleton struct {
	mapped *MappedSkeleton
	vrm    *VRMSkeleton
	byName *MappedSkeleton
}

func (s *avatarSkeleton) BoneNode(bone retarget.HumanBone) *anim.Node {
	if s.mapped.hidden(bone) {
		return nil
	}
	if n := s.mapped.BoneNode(bone); n != nil {
		return n
	}
	if n := s.vrm.BoneNode(bone); n != nil {
		return n
	}
	return s.byName.BoneNode(bone)
}

// NewSkeleton resolves bones of the avatar from conf mappings, then its
// humanoid extension, then nodes named after the bone.
func NewSkeleton(doc *vrm.Document, conf *Config) retarget.Skeleton {
	gltfDoc := (*gltf.Document)(doc)
	var mappings []*BoneMapping
	if conf != nil {
		mappings = conf.BoneMappings
	}
	var byName []*BoneMapping
	for _, b := range retarget.CanonicalBones {
		byName = append(byName, &BoneMapping{Bone: string(b), NodeName: string(b)})
	}
	return &avatarSkeleton{
		mapped: NewMappedSkeleton(gltfDoc, mappings),
		vrm:    NewVRMSkeleton(doc),
		byName: newMappedSkeleton(gltfDoc, byName, false),
	}
}
