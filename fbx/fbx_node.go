package fbx

type Node struct {
	Name       string
	Attributes AttributeList
	Children   []*Node
}

func (n *Node) FindChild(name string) *Node {
	if n == nil {
		return nil
	}
	for _, c := range n.Children {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func (n *Node) GetChildren() []*Node {
	if n == nil {
		return nil
	}
	return n.Children
}

func (n *Node) Attr(i int) *Attribute {
	if n == nil {
		return nil
	}
	return n.Attributes.Get(i)
}

// Attribute is a node property. Arrays have ArraySize > 0.
type Attribute struct {
	Value     interface{}
	ArraySize uint
}

type AttributeList []*Attribute

func (p AttributeList) Get(i int) *Attribute {
	if i >= len(p) {
		return nil
	}
	return p[i]
}

func (p *Attribute) ToInt64(defvalue int64) int64 {
	if p == nil {
		return defvalue
	}
	switch v := p.Value.(type) {
	case byte:
		return int64(v)
	case int16:
		return int64(v)
	case int32:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	}
	return defvalue
}

func (p *Attribute) ToInt(defvalue int) int {
	return int(p.ToInt64(int64(defvalue)))
}

func (p *Attribute) ToFloat32(defvalue float32) float32 {
	if p == nil {
		return defvalue
	}
	switch v := p.Value.(type) {
	case float32:
		return v
	case float64:
		return float32(v)
	case int16:
		return float32(v)
	case int32:
		return float32(v)
	case int64:
		return float32(v)
	}
	return defvalue
}

func (p *Attribute) ToString() string {
	if p == nil {
		return ""
	}
	if v, ok := p.Value.(string); ok {
		return v
	} else if v, ok := p.Value.([]byte); ok {
		return string(v)
	}
	return ""
}

func (p *Attribute) ToInt64Array() []int64 {
	if p == nil {
		return nil
	}
	var r []int64
	switch vv := p.Value.(type) {
	case []int64:
		return vv
	case []int32:
		for _, v := range vv {
			r = append(r, int64(v))
		}
	case []float64:
		for _, v := range vv {
			r = append(r, int64(v))
		}
	}
	return r
}

func (p *Attribute) ToFloat32Array() []float32 {
	if p == nil {
		return nil
	}
	var r []float32
	switch vv := p.Value.(type) {
	case []float32:
		return vv
	case []float64:
		for _, v := range vv {
			r = append(r, float32(v))
		}
	case []int32:
		for _, v := range vv {
			r = append(r, float32(v))
		}
	case []int64:
		for _, v := range vv {
			r = append(r, float32(v))
		}
	}
	return r
}
