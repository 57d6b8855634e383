package player

import (
	"math"
	"testing"

	"github.com/binzume/vrmanim/anim"
	"github.com/binzume/vrmanim/geom"
	"github.com/qmuntal/gltf"
)

const eps = 0.00001

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < eps
}

func newTestDocument() *gltf.Document {
	doc := gltf.NewDocument()
	doc.Nodes = []*gltf.Node{
		{Name: "J_Bip_C_Hips", Translation: [3]float32{0, 1, 0}},
		{Name: "J_Bip_C_Spine"},
	}
	return doc
}

// newTestClip moves hips x from 0 to 10 and turns spine 90 degrees around Y in 1000ms.
func newTestClip() *anim.Clip {
	times := []float32{0, 1000}
	q := geom.NewQuaternionFromAxisAngle(geom.UnitY, math.Pi/2)
	hips := anim.NewTrack("J_Bip_C_Hips.position", times, []float32{0, 1, 0, 10, 1, 0})
	hips.Node = &anim.Node{Index: 0, Name: "J_Bip_C_Hips"}
	spine := anim.NewTrack("J_Bip_C_Spine.quaternion", times, []float32{0, 0, 0, 1, q.X, q.Y, q.Z, q.W})
	return anim.NewClip("test", []*anim.Track{hips, spine})
}

func TestMixerUpdate(t *testing.T) {
	doc := newTestDocument()
	m := NewMixer(doc)
	a := m.ClipAction(newTestClip())
	if m.ClipAction(a.Clip()) != a {
		t.Error("ClipAction should return the same action")
	}
	a.Play()
	m.Update(500)

	if !near(doc.Nodes[0].Translation[0], 5) || !near(doc.Nodes[0].Translation[1], 1) {
		t.Error("hips", doc.Nodes[0].Translation)
	}
	half := geom.NewQuaternionFromAxisAngle(geom.UnitY, math.Pi/4)
	if r := doc.Nodes[1].Rotation; !near(r[1], half.Y) || !near(r[3], half.W) {
		t.Error("spine", r)
	}
	if doc.Nodes[1].Scale != [3]float32{1, 1, 1} {
		t.Error("rest scale", doc.Nodes[1].Scale)
	}
}

func TestLoopOnce(t *testing.T) {
	doc := newTestDocument()
	m := NewMixer(doc)
	a := m.ClipAction(newTestClip()).SetLoop(LoopOnce, 1).Play()
	a.ClampWhenFinished = true
	m.Update(1500)
	if a.IsRunning() || a.Time() != 1000 {
		t.Error("finished", a.IsRunning(), a.Time())
	}
	if !near(doc.Nodes[0].Translation[0], 10) {
		t.Error("clamped", doc.Nodes[0].Translation)
	}

	a.ClampWhenFinished = false
	m.Update(0)
	if doc.Nodes[0].Translation[0] != 0 {
		t.Error("rest", doc.Nodes[0].Translation)
	}
}

func TestLoopRepeat(t *testing.T) {
	doc := newTestDocument()
	m := NewMixer(doc)
	a := m.ClipAction(newTestClip()).SetLoop(LoopRepeat, 0).Play()
	m.Update(1250)
	if !a.IsRunning() || !near(a.Time(), 250) {
		t.Error("wrap", a.IsRunning(), a.Time())
	}
	if !near(doc.Nodes[0].Translation[0], 2.5) {
		t.Error("hips", doc.Nodes[0].Translation)
	}

	a.SetLoop(LoopRepeat, 2)
	m.Update(1000)
	if a.IsRunning() {
		t.Error("repetitions")
	}
}

func TestLoopPingPong(t *testing.T) {
	doc := newTestDocument()
	m := NewMixer(doc)
	m.ClipAction(newTestClip()).SetLoop(LoopPingPong, 0).Play()
	m.Update(1250)
	if !near(doc.Nodes[0].Translation[0], 7.5) {
		t.Error("backward", doc.Nodes[0].Translation)
	}
}

func TestEffectiveWeight(t *testing.T) {
	doc := newTestDocument()
	m := NewMixer(doc)
	a := m.ClipAction(newTestClip()).Play()

	a.SetEffectiveWeight(0)
	m.Update(1000)
	if doc.Nodes[0].Translation != [3]float32{0, 1, 0} || doc.Nodes[1].Rotation != [4]float32{0, 0, 0, 1} {
		t.Error("weight 0", doc.Nodes[0].Translation, doc.Nodes[1].Rotation)
	}

	// half way between rest and x=5
	a.SetEffectiveWeight(0.5).SetTime(0)
	m.Update(500)
	if !near(doc.Nodes[0].Translation[0], 2.5) {
		t.Error("weight 0.5", doc.Nodes[0].Translation)
	}

	m.StopAllAction()
	m.Update(0)
	if a.IsRunning() || doc.Nodes[0].Translation[0] != 0 {
		t.Error("stopped", doc.Nodes[0].Translation)
	}
}

func TestResetPose(t *testing.T) {
	doc := newTestDocument()
	m := NewMixer(doc)
	m.ClipAction(newTestClip()).Play()
	m.Update(500)
	m.ResetPose()
	if doc.Nodes[0].Translation != [3]float32{0, 1, 0} {
		t.Error("ResetPose", doc.Nodes[0].Translation)
	}
}
