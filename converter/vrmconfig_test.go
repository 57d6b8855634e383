package converter

import (
	"io/ioutil"
	"path/filepath"
	"testing"

	"github.com/binzume/vrmanim/retarget"
	"github.com/qmuntal/gltf"
)

const testConfig = `
format: bvhviewer
rootMotion: true
positionScale: 0.01
name: dance
unknownKey: 1
boneMappings:
  - bone: head
    nodeName: Head
  - bone: spine
    nodeName: ""
  - bone: neck
    nodeName: NotFound
`

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.yaml")
	if err := ioutil.WriteFile(path, []byte(testConfig), 0644); err != nil {
		t.Fatal(err)
	}
	conf, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if conf.Format != "bvhviewer" || !conf.RootMotion || conf.PositionScale != 0.01 || conf.Name != "dance" {
		t.Error("config", conf)
	}
	if len(conf.BoneMappings) != 3 || conf.BoneMappings[0].NodeName != "Head" {
		t.Error("boneMappings", conf.BoneMappings)
	}

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "notfound.yaml")); err == nil {
		t.Error("missing file")
	}
}

func TestNewSkeleton(t *testing.T) {
	avatar := newTestAvatar(t)
	doc := (*gltf.Document)(avatar)
	doc.Nodes = append(doc.Nodes, &gltf.Node{Name: "Head"}, &gltf.Node{Name: "leftFoot"})

	skel := NewSkeleton(avatar, &Config{BoneMappings: []*BoneMapping{
		{Bone: "head", NodeName: "Head"},
		{Bone: "spine", NodeName: ""},
	}})
	if n := skel.BoneNode(retarget.Head); n == nil || n.Index != 2 || n.Name != "Head" {
		t.Error("mapped", n)
	}
	if n := skel.BoneNode(retarget.Spine); n != nil {
		t.Error("hidden", n)
	}
	if n := skel.BoneNode(retarget.Hips); n == nil || n.Index != 0 {
		t.Error("humanoid", n)
	}
	if n := skel.BoneNode(retarget.LeftFoot); n == nil || n.Index != 3 {
		t.Error("by name", n)
	}
	if n := skel.BoneNode(retarget.RightFoot); n != nil {
		t.Error("missing", n)
	}

	if n := NewSkeleton(avatar, nil).BoneNode(retarget.Spine); n == nil || n.Index != 1 {
		t.Error("no config", n)
	}
}
