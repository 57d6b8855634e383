package fbx

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

type tokenType int

const (
	Ident tokenType = iota
	Number
	String
	Operator
	BlockStart
	BlockEnd
	EOL
	EOF
)

type textParser struct {
	r   io.ByteReader
	buf []byte
	err error
}

func newTextParser(r io.Reader) *textParser {
	if br, ok := r.(io.ByteReader); ok {
		return &textParser{r: br}
	}
	return &textParser{r: bufio.NewReader(r)}
}

func (p *textParser) errorf(f string, a ...interface{}) error {
	if p.err == nil {
		p.err = fmt.Errorf(f, a...)
	}
	return p.err
}

func (p *textParser) read() byte {
	if len(p.buf) > 0 {
		b := p.buf[0]
		p.buf = p.buf[1:]
		return b
	}
	if p.err != nil {
		return 0
	}
	b, err := p.r.ReadByte()
	p.err = err
	return b
}

func isNumber(c byte) bool {
	return c >= '0' && c <= '9' || c == '.' || c == '-' || c == '+' || c == 'e' || c == 'E'
}

func isIdent(c byte) bool {
	return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' || c >= '0' && c <= '9' || c == '_' || c == '-' || c == '|'
}

func (p *textParser) getToken() (tokenType, string) {
	for p.err == nil {
		c := p.read()
		if p.err != nil {
			break
		}
		if c == ';' {
			for p.err == nil && c != '\n' {
				c = p.read()
			}
			if p.err == nil {
				return EOL, ""
			}
			break
		} else if c == '{' {
			return BlockStart, string(c)
		} else if c == '}' {
			return BlockEnd, string(c)
		} else if c == '*' || c == ':' || c == ',' {
			return Operator, string(c)
		} else if c >= '0' && c <= '9' || c == '.' || c == '-' {
			buf := []byte{c}
			c = p.read()
			for isNumber(c) && p.err == nil {
				buf = append(buf, c)
				c = p.read()
			}
			if p.err == nil {
				p.buf = append(p.buf, c)
			}
			return Number, string(buf)
		} else if c == '\n' {
			return EOL, ""
		} else if c == '"' {
			buf := []byte{}
			c = p.read()
			for c != '"' && p.err == nil {
				buf = append(buf, c)
				c = p.read()
			}
			if p.err != nil {
				p.err = io.ErrUnexpectedEOF
			}
			return String, string(buf)
		} else if isIdent(c) {
			buf := []byte{}
			for isIdent(c) && p.err == nil {
				buf = append(buf, c)
				c = p.read()
			}
			if p.err == nil {
				p.buf = append(p.buf, c)
			}
			return Ident, string(buf)
		}
	}
	return EOF, ""
}

func (p *textParser) skip(t tokenType) bool {
	typ, s := p.getToken()
	if typ != t {
		p.errorf("fbx: unexpected token %q", s)
	}
	return typ == t
}

func (p *textParser) parseNumber(s string) *Attribute {
	if strings.ContainsAny(s, ".eE") {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil {
			p.errorf("fbx: failed to parse number %q", s)
		}
		return &Attribute{Value: v}
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		p.errorf("fbx: failed to parse number %q", s)
	}
	return &Attribute{Value: v}
}

// parseArrayProp parses `*N { a: v, v, ... }`.
func (p *textParser) parseArrayProp() *Attribute {
	_, s := p.getToken()
	size, err := strconv.ParseInt(s, 10, 32)
	if err != nil || size < 0 {
		p.errorf("fbx: invalid array size %q", s)
		return nil
	}
	p.skip(BlockStart)
	for p.err == nil {
		if typ, s := p.getToken(); s == ":" || typ == EOF {
			break
		}
	}
	var values []*Attribute
	isFloat := false
	for p.err == nil {
		typ, s := p.getToken()
		if typ == EOL || typ == Operator {
			continue
		} else if typ == BlockEnd {
			break
		} else if typ == Number {
			v := p.parseNumber(s)
			_, f := v.Value.(float64)
			isFloat = isFloat || f
			values = append(values, v)
		} else {
			p.errorf("fbx: invalid token in array %q", s)
		}
	}
	if p.err == nil && len(values) != int(size) {
		p.errorf("fbx: array size %d != %d", len(values), size)
	}
	if isFloat {
		fvalues := make([]float64, len(values))
		for i, v := range values {
			if f, ok := v.Value.(float64); ok {
				fvalues[i] = f
			} else {
				fvalues[i] = float64(v.ToInt64(0))
			}
		}
		return &Attribute{Value: fvalues, ArraySize: uint(size)}
	}
	ivalues := make([]int64, len(values))
	for i, v := range values {
		ivalues[i] = v.ToInt64(0)
	}
	return &Attribute{Value: ivalues, ArraySize: uint(size)}
}

func (p *textParser) parseNodeList() []*Node {
	var nodes []*Node
	for p.err == nil {
		typ, s := p.getToken()
		if typ == EOL {
			continue
		} else if typ == EOF || typ == BlockEnd {
			break
		} else if typ != Ident {
			p.errorf("fbx: unexpected token %q", s)
			break
		}
		p.skip(Operator)
		node := &Node{Name: s}
		nodes = append(nodes, node)
		for p.err == nil {
			typ, s := p.getToken()
			if typ == EOL || typ == EOF {
				break
			} else if typ == BlockStart {
				node.Children = p.parseNodeList()
				break
			} else if typ == Number {
				node.Attributes = append(node.Attributes, p.parseNumber(s))
			} else if typ == String || typ == Ident {
				node.Attributes = append(node.Attributes, &Attribute{Value: s})
			} else if typ == Operator && s == "*" {
				node.Attributes = append(node.Attributes, p.parseArrayProp())
			}
		}
	}
	return nodes
}

func (p *textParser) Parse() (*Node, error) {
	root := &Node{Name: "_FBX_ROOT"}
	root.Children = p.parseNodeList()
	if p.err != nil && p.err != io.EOF {
		return nil, p.err
	}
	return root, nil
}
