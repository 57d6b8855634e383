package fbx

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"math"
	"strings"
	"testing"

	"github.com/binzume/vrmanim/anim"
	"github.com/binzume/vrmanim/geom"
)

const testFBX = `; FBX 7.4.0 project file
FBXHeaderExtension:  {
	FBXVersion: 7400
	Creator: "vrmanim test"
}
Objects:  {
	Model: 100, "Model::mixamorig:Hips", "LimbNode" {
		Version: 232
		Properties70:  {
			P: "RotationOrder", "enum", "", "",5
			P: "Lcl Translation", "Lcl Translation", "", "A",0,100,0
		}
		Shading: Y
	}
	AnimationStack: 200, "AnimStack::Take 001", "" {
	}
	AnimationLayer: 300, "AnimLayer::BaseLayer", "" {
	}
	AnimationCurveNode: 400, "AnimCurveNode::T", "" {
		Properties70:  {
			P: "d|X", "Number", "", "A",0
			P: "d|Y", "Number", "", "A",100
			P: "d|Z", "Number", "", "A",-5.5
		}
	}
	AnimationCurveNode: 401, "AnimCurveNode::R", "" {
	}
	AnimationCurve: 500, "AnimCurve::", "" {
		KeyTime: *2 {
			a: 0,46186158000
		}
		KeyValueFloat: *2 {
			a: 0,10
		}
	}
	AnimationCurve: 501, "AnimCurve::", "" {
		KeyTime: *3 {
			a: 0,23093079000,46186158000
		}
		KeyValueFloat: *3 {
			a: 0,45.0,90
		}
	}
}
Connections:  {
	;AnimLayer::BaseLayer, AnimStack::Take 001
	C: "OO",300,200
	C: "OO",400,300
	C: "OO",401,300
	C: "OP",400,100, "Lcl Translation"
	C: "OP",401,100, "Lcl Rotation"
	C: "OP",500,400, "d|X"
	C: "OP",501,401, "d|Y"
}
`

func node(name string, attrs []interface{}, children ...*Node) *Node {
	n := &Node{Name: name, Children: children}
	for _, v := range attrs {
		n.Attributes = append(n.Attributes, &Attribute{Value: v})
	}
	return n
}

func attrs(v ...interface{}) []interface{} {
	return v
}

func prop70(name string, values ...interface{}) *Node {
	return node("P", append(attrs(name, "", "", "A"), values...))
}

// deflated marks an array stored compressed.
type deflated []float64

// testBinaryTree is testFBX as a binary file tree.
func testBinaryTree() *Node {
	return node("_FBX_ROOT", nil,
		node("FBXHeaderExtension", nil,
			node("FBXVersion", attrs(int32(7400))),
			node("Creator", attrs("vrmanim test"))),
		node("Objects", nil,
			node("Model", attrs(int64(100), "mixamorig:Hips\x00\x01Model", "LimbNode"),
				node("Properties70", nil,
					prop70("RotationOrder", int32(5)),
					prop70("Lcl Translation", 0.0, 100.0, 0.0))),
			node("AnimationStack", attrs(int64(200), "Take 001\x00\x01AnimStack", "")),
			node("AnimationLayer", attrs(int64(300), "BaseLayer\x00\x01AnimLayer", "")),
			node("AnimationCurveNode", attrs(int64(400), "T\x00\x01AnimCurveNode", ""),
				node("Properties70", nil,
					prop70("d|X", 0.0),
					prop70("d|Y", 100.0),
					prop70("d|Z", -5.5))),
			node("AnimationCurveNode", attrs(int64(401), "R\x00\x01AnimCurveNode", "")),
			node("AnimationCurve", attrs(int64(500), "\x00\x01AnimCurve", ""),
				node("KeyTime", attrs([]int64{0, 46186158000})),
				node("KeyValueFloat", attrs([]float32{0, 10}))),
			node("AnimationCurve", attrs(int64(501), "\x00\x01AnimCurve", ""),
				node("KeyTime", attrs([]int64{0, 23093079000, 46186158000})),
				node("KeyValueFloat", attrs(deflated{0, 45, 90})))),
		node("Connections", nil,
			node("C", attrs("OO", int64(300), int64(200))),
			node("C", attrs("OO", int64(400), int64(300))),
			node("C", attrs("OO", int64(401), int64(300))),
			node("C", attrs("OP", int64(400), int64(100), "Lcl Translation")),
			node("C", attrs("OP", int64(401), int64(100), "Lcl Rotation")),
			node("C", attrs("OP", int64(500), int64(400), "d|X")),
			node("C", attrs("OP", int64(501), int64(401), "d|Y"))))
}

func writeArray(w *bytes.Buffer, typ byte, count int, data interface{}, compress bool) {
	var raw bytes.Buffer
	binary.Write(&raw, binary.LittleEndian, data)
	body := raw.Bytes()
	encoding := uint32(0)
	if compress {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		zw.Write(body)
		zw.Close()
		body, encoding = z.Bytes(), 1
	}
	w.WriteByte(typ)
	binary.Write(w, binary.LittleEndian, []uint32{uint32(count), encoding, uint32(len(body))})
	w.Write(body)
}

func writeBinaryNode(w *bytes.Buffer, n *Node) {
	start := w.Len()
	w.Write(make([]byte, 12))
	w.WriteByte(byte(len(n.Name)))
	w.WriteString(n.Name)
	propStart := w.Len()
	for _, a := range n.Attributes {
		switch v := a.Value.(type) {
		case int32:
			w.WriteByte('I')
			binary.Write(w, binary.LittleEndian, v)
		case int64:
			w.WriteByte('L')
			binary.Write(w, binary.LittleEndian, v)
		case float64:
			w.WriteByte('D')
			binary.Write(w, binary.LittleEndian, v)
		case string:
			w.WriteByte('S')
			binary.Write(w, binary.LittleEndian, uint32(len(v)))
			w.WriteString(v)
		case []int64:
			writeArray(w, 'l', len(v), v, false)
		case []float32:
			writeArray(w, 'f', len(v), v, false)
		case deflated:
			writeArray(w, 'd', len(v), []float64(v), true)
		}
	}
	propLen := w.Len() - propStart
	for _, c := range n.Children {
		writeBinaryNode(w, c)
	}
	if len(n.Children) > 0 {
		w.Write(make([]byte, 13))
	}
	binary.LittleEndian.PutUint32(w.Bytes()[start:], uint32(w.Len()))
	binary.LittleEndian.PutUint32(w.Bytes()[start+4:], uint32(len(n.Attributes)))
	binary.LittleEndian.PutUint32(w.Bytes()[start+8:], uint32(propLen))
}

func encodeBinary(root *Node) []byte {
	var w bytes.Buffer
	w.WriteString(binaryMagic)
	w.Write([]byte{0x1a, 0})
	binary.Write(&w, binary.LittleEndian, uint32(7400))
	for _, n := range root.Children {
		writeBinaryNode(&w, n)
	}
	w.Write(make([]byte, 13))
	return w.Bytes()
}

func checkAnimation(t *testing.T, doc *Document) {
	t.Helper()
	const eps = 0.00001

	if doc.Creator != "vrmanim test" || doc.Version != 7400 {
		t.Error("header", doc.Creator, doc.Version)
	}
	if len(doc.Models) != 1 || doc.Models[0].Name() != "mixamorig:Hips" {
		t.Fatal("models", doc.Models)
	}
	if o := doc.Models[0].RotationOrder(); o != geom.RotationOrderXYZ {
		t.Error("rotation order", o)
	}

	clips := doc.Clips()
	if len(clips) != 1 || clips[0].Name != "Take 001" || len(clips[0].Tracks) != 2 {
		t.Fatal("clips", clips)
	}
	if clips[0].Duration != 1 {
		t.Error("duration", clips[0].Duration)
	}

	pos := clips[0].Tracks[0]
	if pos.Name != "mixamorigHips.position" || pos.Property() != anim.PropertyPosition {
		t.Error("position track", pos.Name)
	}
	if len(pos.Times) != 2 || pos.Times[0] != 0 || pos.Times[1] != 1 {
		t.Error("position times", pos.Times)
	}
	if p := pos.Vector(1); p.Sub(geom.NewVector3(10, 100, -5.5)).Len() > eps {
		t.Error("position", p)
	}

	rot := clips[0].Tracks[1]
	if rot.Name != "mixamorigHips.quaternion" || rot.SampleCount() != 3 {
		t.Fatal("rotation track", rot.Name, rot.Times)
	}
	if math.Abs(float64(rot.Times[1]-0.5)) > eps {
		t.Error("rotation times", rot.Times)
	}
	s := float32(math.Sqrt(0.5))
	if q := rot.Quaternion(0); q.Sub(geom.NewQuaternion(0, 0, 0, 1)).Len() > eps {
		t.Error("rotation 0", q)
	}
	if q := rot.Quaternion(2); q.Sub(geom.NewQuaternion(0, s, 0, s)).Len() > eps {
		t.Error("rotation 2", q)
	}
}

func TestParseText(t *testing.T) {
	doc, err := Parse(strings.NewReader(testFBX))
	if err != nil {
		t.Fatal(err)
	}
	checkAnimation(t, doc)
}

func TestParseBinary(t *testing.T) {
	doc, err := Parse(bytes.NewReader(encodeBinary(testBinaryTree())))
	if err != nil {
		t.Fatal(err)
	}
	checkAnimation(t, doc)
}

func TestParseError(t *testing.T) {
	data := encodeBinary(testBinaryTree())

	badArray := &bytes.Buffer{}
	badArray.WriteString(binaryMagic)
	badArray.Write([]byte{0x1a, 0})
	binary.Write(badArray, binary.LittleEndian, uint32(7400))
	writeBinaryNode(badArray, node("KeyTime", attrs([]int64{1, 2})))
	b := badArray.Bytes()
	// element count 3 with 16 bytes of data
	binary.LittleEndian.PutUint32(b[27+13+len("KeyTime")+1:], 3)

	for name, src := range map[string][]byte{
		"truncated binary": data[:len(data)/2],
		"array size":       b,
		"text array size":  []byte("KeyTime: *3 {\n a: 1,2\n}\n"),
		"text string":      []byte("Creator: \"abc"),
		"text token":       []byte("Objects: {\n 123: 4\n}\n"),
	} {
		if _, err := Parse(bytes.NewReader(src)); err == nil {
			t.Error("should be error:", name)
		}
	}
}

func TestCurveKeys(t *testing.T) {
	k := &curveKeys{times: []int64{10, 20}, values: []float32{1, 3}, def: 7}
	for _, c := range []struct {
		t int64
		v float32
	}{{0, 1}, {10, 1}, {15, 2}, {20, 3}, {30, 3}} {
		if v := k.at(c.t); v != c.v {
			t.Error("at", c.t, v)
		}
	}
	if v := (&curveKeys{def: 7}).at(5); v != 7 {
		t.Error("default", v)
	}
}

func TestPreRotation(t *testing.T) {
	const eps = 0.00001
	m := &Model{Obj{Node: node("Model", attrs(int64(1), "Model::Arm", "LimbNode"),
		node("Properties70", nil, prop70("PreRotation", 0.0, 0.0, 90.0)))}}

	s := float32(math.Sqrt(0.5))
	if q := rotationConverter(m)(geom.NewVector3(0, 0, 0)); q.Sub(geom.NewQuaternion(0, 0, s, s)).Len() > eps {
		t.Error("pre rotation", q)
	}
	if m.GetScaling().X != 1 || m.RotationOrder() != geom.RotationOrderZYX {
		t.Error("defaults", m.GetScaling(), m.RotationOrder())
	}
}
