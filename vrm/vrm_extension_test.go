package vrm

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/qmuntal/gltf"
)

const testVRM0 = `{
	"exporterVersion": "test",
	"meta": {"title": "Alicia", "author": "Nico"},
	"humanoid": {"humanBones": [
		{"bone": "hips", "node": 0},
		{"bone": "spine", "node": 1},
		{"bone": "head", "node": 9}
	]},
	"blendShapeMaster": {"blendShapeGroups": []}
}`

const testVRM1 = `{
	"specVersion": "1.0",
	"meta": {"name": "Seed", "authors": ["a", "b"]},
	"humanoid": {"humanBones": {"hips": {"node": 1}, "spine": {"node": 0}}}
}`

func newTestDocument(t *testing.T, name, ext string) *Document {
	var v interface{}
	var err error
	if name == ExtensionNameV1 {
		v, err = UnmarshalV1([]byte(ext))
	} else {
		v, err = Unmarshal([]byte(ext))
	}
	if err != nil {
		t.Fatal(err)
	}
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{{Name: "Hips"}, {Name: "Spine"}}
	doc.Extensions = gltf.Extensions{name: v}
	doc.ExtensionsUsed = []string{name}
	return (*Document)(doc)
}

func TestHumanBoneNode(t *testing.T) {
	doc := newTestDocument(t, ExtensionName, testVRM0)
	if doc.Version() != "0.x" || doc.Title() != "Alicia" || doc.Author() != "Nico" || !doc.IsExtentionUsed(ExtensionName) {
		t.Error("meta", doc.Version(), doc.Title(), doc.Author())
	}
	if n, ok := doc.HumanBoneNode("spine"); !ok || n != 1 {
		t.Error("spine", n, ok)
	}
	// node index out of range
	if _, ok := doc.HumanBoneNode("head"); ok {
		t.Error("head")
	}
	if _, ok := doc.HumanBoneNode("leftHand"); ok {
		t.Error("leftHand")
	}
	if err := doc.ValidateBones(); err == nil || !strings.Contains(err.Error(), "chest") {
		t.Error("ValidateBones", err)
	}

	doc1 := newTestDocument(t, ExtensionNameV1, testVRM1)
	if doc1.Version() != "1.0" || doc1.Title() != "Seed" || doc1.Author() != "a, b" {
		t.Error("meta v1", doc1.Version(), doc1.Title(), doc1.Author())
	}
	if n, ok := doc1.HumanBoneNode("hips"); !ok || n != 1 {
		t.Error("hips v1", n, ok)
	}

	plain := (*Document)(gltf.NewDocument())
	if _, ok := plain.HumanBoneNode("hips"); ok || plain.Version() != "" || plain.Title() != "" {
		t.Error("plain glTF")
	}
}

func TestMarshalKeepsUnknownFields(t *testing.T) {
	doc := newTestDocument(t, ExtensionName, testVRM0)
	data, err := json.Marshal(doc.VRM())
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "blendShapeGroups") {
		t.Error("blendShapeMaster lost", string(data))
	}

	data, err = json.Marshal(&VRM{Meta: Metadata{Title: "new"}})
	if err != nil || !strings.Contains(string(data), `"title":"new"`) {
		t.Error("marshal new extension", string(data), err)
	}
}

func TestParseAndWrite(t *testing.T) {
	doc := newTestDocument(t, ExtensionName, testVRM0)
	var buf bytes.Buffer
	if err := Write(doc, &buf, "test.vrm"); err != nil {
		t.Fatal(err)
	}
	parsed, err := Parse(&buf, "test.vrm")
	if err != nil {
		t.Fatal(err)
	}
	if parsed.VRM() == nil || parsed.Title() != "Alicia" {
		t.Fatal("VRM extension not found.")
	}
	if n, ok := parsed.HumanBoneNode("hips"); !ok || n != 0 {
		t.Error("hips", n, ok)
	}
}
