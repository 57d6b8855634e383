package fbx

import (
	"compress/zlib"
	"encoding/binary"
	"fmt"
	"io"
	"io/ioutil"
)

const binaryMagic = "Kaydara FBX Binary  "

// deflate cannot expand data more than about 1032 times.
const maxDeflateRatio = 1032

type positionReader struct {
	r        io.Reader
	position int64
}

func (r *positionReader) Read(p []byte) (n int, err error) {
	n, err = r.r.Read(p)
	r.position += int64(n)
	return n, err
}

func (r *positionReader) SkipTo(pos int64) error {
	offset := pos - r.position
	if offset < 0 {
		return fmt.Errorf("fbx: cannot rewind to %d", pos)
	}
	n, err := io.CopyN(ioutil.Discard, r, offset)
	if err == io.EOF && n < offset {
		return io.ErrUnexpectedEOF
	}
	return err
}

type binaryParser struct {
	r       *positionReader
	version uint32
	err     error
}

func (p *binaryParser) read(v interface{}) error {
	if p.err == nil {
		p.err = binary.Read(p.r, binary.LittleEndian, v)
	}
	return p.err
}

func (p *binaryParser) readUint8() uint8 {
	var v uint8
	p.read(&v)
	return v
}

func (p *binaryParser) readInt16() int16 {
	var v int16
	p.read(&v)
	return v
}

func (p *binaryParser) readUint32() uint32 {
	var v uint32
	p.read(&v)
	return v
}

func (p *binaryParser) readInt32() int32 {
	var v int32
	p.read(&v)
	return v
}

func (p *binaryParser) readInt64() int64 {
	var v int64
	p.read(&v)
	return v
}

func (p *binaryParser) readFloat() float32 {
	var v float32
	p.read(&v)
	return v
}

func (p *binaryParser) readFloat64() float64 {
	var v float64
	p.read(&v)
	return v
}

// readOffset reads a record header field. 64bit since FBX 7.5.
func (p *binaryParser) readOffset() uint64 {
	if p.version >= 7500 {
		var v uint64
		p.read(&v)
		return v
	}
	return uint64(p.readUint32())
}

func (p *binaryParser) readBytes(n uint32) []byte {
	if p.err != nil {
		return nil
	}
	buf, err := ioutil.ReadAll(io.LimitReader(p.r, int64(n)))
	if err != nil {
		p.err = err
		return nil
	}
	if uint32(len(buf)) != n {
		p.err = io.EOF
	}
	return buf
}

func (p *binaryParser) readPropArray(typ uint8) *Attribute {
	count := p.readUint32()
	encoding := p.readUint32()
	sz := p.readUint32()
	if p.err != nil {
		return nil
	}
	elemSize := map[uint8]uint64{'b': 1, 'i': 4, 'l': 8, 'f': 4, 'd': 8}[typ]
	if encoding == 0 && uint64(count)*elemSize != uint64(sz) {
		p.err = fmt.Errorf("fbx: array size mismatch %d*%d != %d", count, elemSize, sz)
		return nil
	}
	if uint64(count)*elemSize > uint64(sz)*maxDeflateRatio {
		p.err = fmt.Errorf("fbx: array too large %d", count)
		return nil
	}
	var buf interface{}
	switch typ {
	case 'b':
		buf = make([]byte, count)
	case 'i':
		buf = make([]int32, count)
	case 'l':
		buf = make([]int64, count)
	case 'f':
		buf = make([]float32, count)
	case 'd':
		buf = make([]float64, count)
	}
	if encoding == 0 {
		p.read(buf)
	} else {
		next := p.r.position + int64(sz)
		r, err := zlib.NewReader(io.LimitReader(p.r, int64(sz)))
		if err != nil {
			p.err = err
			return nil
		}
		defer r.Close()
		if err := binary.Read(r, binary.LittleEndian, buf); err != nil && p.err == nil {
			p.err = err
		}
		if p.err == nil {
			p.err = p.r.SkipTo(next)
		}
	}
	return &Attribute{Value: buf, ArraySize: uint(count)}
}

func (p *binaryParser) readProp() *Attribute {
	typ := p.readUint8()
	if p.err != nil {
		return nil
	}

	switch typ {
	case 'B', 'C':
		return &Attribute{Value: p.readUint8()}
	case 'Y':
		return &Attribute{Value: p.readInt16()}
	case 'I':
		return &Attribute{Value: p.readInt32()}
	case 'L':
		return &Attribute{Value: p.readInt64()}
	case 'F':
		return &Attribute{Value: p.readFloat()}
	case 'D':
		return &Attribute{Value: p.readFloat64()}
	case 'S':
		return &Attribute{Value: string(p.readBytes(p.readUint32()))}
	case 'R':
		return &Attribute{Value: p.readBytes(p.readUint32())}
	case 'b', 'i', 'l', 'f', 'd':
		return p.readPropArray(typ)
	}
	p.err = fmt.Errorf("fbx: unknown property type %q", typ)
	return nil
}

// readNode returns nil at the null record that terminates a node list.
func (p *binaryParser) readNode() *Node {
	start := p.r.position
	n := p.readNodeAt(start)
	if p.err == io.EOF && p.r.position > start {
		p.err = io.ErrUnexpectedEOF
	}
	return n
}

func (p *binaryParser) readNodeAt(start int64) *Node {
	next := p.readOffset()
	nprop := p.readOffset()
	p.readOffset() // property list length
	name := string(p.readBytes(uint32(p.readUint8())))
	if p.err != nil {
		return nil
	}
	if next == 0 {
		return nil
	}
	if int64(next) <= start {
		p.err = fmt.Errorf("fbx: invalid record end %d at %d", next, start)
		return nil
	}

	n := &Node{Name: name}
	for i := uint64(0); i < nprop && p.err == nil; i++ {
		n.Attributes = append(n.Attributes, p.readProp())
	}
	for p.err == nil && p.r.position < int64(next) {
		child := p.readNode()
		if child == nil {
			break
		}
		n.Children = append(n.Children, child)
	}
	if p.err == nil {
		p.err = p.r.SkipTo(int64(next))
	}
	if p.err != nil {
		return nil
	}
	return n
}

func (p *binaryParser) Parse() (*Node, error) {
	if string(p.readBytes(uint32(len(binaryMagic)))) != binaryMagic {
		return nil, fmt.Errorf("fbx: unknown format")
	}
	p.readBytes(2)
	p.version = p.readUint32()
	root := &Node{Name: "_FBX_ROOT"}
	for p.err == nil {
		node := p.readNode()
		if node == nil {
			break
		}
		root.Children = append(root.Children, node)
	}
	if p.err != nil && p.err != io.EOF {
		return nil, p.err
	}
	return root, nil
}
