package fbx

import (
	"strings"

	"github.com/binzume/vrmanim/geom"
)

type Document struct {
	Creator string
	Version int

	GlobalSettings *Obj
	Objects        map[int64]Object

	Models []*Model
	Stacks []*AnimationStack

	RawNode *Node
}

// Property70 is an entry of Properties70.
type Property70 struct {
	AttributeList
	Type  string
	Label string
	Flag  string
}

func (p *Property70) ToVector3(x, y, z float32) *geom.Vector3 {
	return &geom.Vector3{X: p.Get(0).ToFloat32(x), Y: p.Get(1).ToFloat32(y), Z: p.Get(2).ToFloat32(z)}
}

type Connection struct {
	Type string
	From int64
	To   int64
	Prop string
}

type Object interface {
	NodeName() string
	ID() int64
	Name() string
	GetProperty70(name string) *Property70
	FindRefs(typ string) []Object
	FindRef(typ, prop string) Object
	AddRef(o Object, prop string)
}

type ref struct {
	obj  Object
	prop string
}

type Obj struct {
	*Node
	Template   *Obj
	refs       []ref
	properties map[string]*Property70 // lazy initialize
}

func (o *Obj) NodeName() string {
	return o.Node.Name
}

func (o *Obj) ID() int64 {
	return o.Attr(0).ToInt64(0)
}

// Name returns the object name without its class ("Model::Hips" in text files,
// "Hips\x00\x01Model" in binary files).
func (o *Obj) Name() string {
	name := o.Attr(1).ToString()
	if i := strings.Index(name, "\x00\x01"); i >= 0 {
		return name[:i]
	}
	if i := strings.Index(name, "::"); i >= 0 {
		return name[i+2:]
	}
	return name
}

func (o *Obj) GetProperty70(name string) *Property70 {
	if o == nil || o.Node == nil {
		return &Property70{}
	}
	if o.properties == nil {
		o.properties = map[string]*Property70{}
		for _, node := range o.FindChild("Properties70").GetChildren() {
			if len(node.Attributes) < 4 {
				continue
			}
			o.properties[node.Attr(0).ToString()] = &Property70{
				AttributeList: node.Attributes[4:],
				Type:          node.Attr(1).ToString(),
				Label:         node.Attr(2).ToString(),
				Flag:          node.Attr(3).ToString()}
		}
	}
	if p, ok := o.properties[name]; ok {
		return p
	} else if o.Template != nil {
		return o.Template.GetProperty70(name)
	}
	return &Property70{}
}

func (o *Obj) FindRefs(typ string) []Object {
	var refs []Object
	for _, r := range o.refs {
		if r.obj.NodeName() == typ {
			refs = append(refs, r.obj)
		}
	}
	return refs
}

// FindRef returns the object connected to property prop, or nil.
func (o *Obj) FindRef(typ, prop string) Object {
	for _, r := range o.refs {
		if r.obj.NodeName() == typ && r.prop == prop {
			return r.obj
		}
	}
	return nil
}

func (o *Obj) AddRef(obj Object, prop string) {
	o.refs = append(o.refs, ref{obj, prop})
}

type Model struct {
	Obj
}

// RotationOrder returns the order of Lcl Rotation as intrinsic rotation sequence.
func (m *Model) RotationOrder() geom.RotationOrder {
	// eEulerXYZ applies X first.
	orders := []geom.RotationOrder{
		geom.RotationOrderZYX,
		geom.RotationOrderYZX,
		geom.RotationOrderXZY,
		geom.RotationOrderZXY,
		geom.RotationOrderYXZ,
		geom.RotationOrderXYZ,
	}
	i := m.GetProperty70("RotationOrder").Get(0).ToInt(0)
	if i < 0 || i >= len(orders) {
		return orders[0]
	}
	return orders[i]
}

func (m *Model) GetTranslation() *geom.Vector3 {
	return m.GetProperty70("Lcl Translation").ToVector3(0, 0, 0)
}

// GetRotation returns Lcl Rotation in degrees.
func (m *Model) GetRotation() *geom.Vector3 {
	return m.GetProperty70("Lcl Rotation").ToVector3(0, 0, 0)
}

func (m *Model) GetScaling() *geom.Vector3 {
	return m.GetProperty70("Lcl Scaling").ToVector3(1, 1, 1)
}

func parseConnection(node *Node) *Connection {
	c := &Connection{
		Type: node.Attr(0).ToString(),
		From: node.Attr(1).ToInt64(0),
		To:   node.Attr(2).ToInt64(0),
	}
	if c.Type == "OP" {
		c.Prop = node.Attr(3).ToString()
	}
	return c
}

func BuildDocument(root *Node) (*Document, error) {
	doc := &Document{RawNode: root, Objects: map[int64]Object{}}

	header := root.FindChild("FBXHeaderExtension")
	doc.Creator = header.FindChild("Creator").Attr(0).ToString()
	doc.Version = header.FindChild("FBXVersion").Attr(0).ToInt(0)

	templates := map[string]*Obj{}
	for _, node := range root.FindChild("Definitions").GetChildren() {
		if node.Name != "ObjectType" {
			continue
		}
		if t := node.FindChild("PropertyTemplate"); t != nil {
			templates[node.Attr(0).ToString()] = &Obj{Node: t}
		}
	}
	doc.GlobalSettings = &Obj{Node: root.FindChild("GlobalSettings"), Template: templates["GlobalSettings"]}

	for _, node := range root.FindChild("Objects").GetChildren() {
		base := Obj{Node: node, Template: templates[node.Name]}
		var obj Object
		switch node.Name {
		case "Model":
			m := &Model{base}
			doc.Models = append(doc.Models, m)
			obj = m
		case "AnimationStack":
			s := &AnimationStack{base}
			doc.Stacks = append(doc.Stacks, s)
			obj = s
		case "AnimationCurveNode":
			obj = &AnimationCurveNode{Obj: base}
		case "AnimationCurve":
			obj = &AnimationCurve{base}
		default:
			obj = &base
		}
		doc.Objects[obj.ID()] = obj
	}

	for _, node := range root.FindChild("Connections").GetChildren() {
		if node.Name != "C" {
			continue
		}
		c := parseConnection(node)
		if c.Type != "OO" && c.Type != "OP" {
			continue
		}
		from := doc.Objects[c.From]
		to := doc.Objects[c.To]
		if to == nil || from == nil {
			continue
		}
		to.AddRef(from, c.Prop)
		if cn, ok := from.(*AnimationCurveNode); ok {
			if m, ok := to.(*Model); ok {
				cn.Target = m
				cn.TargetProp = c.Prop
			}
		}
	}

	return doc, nil
}
