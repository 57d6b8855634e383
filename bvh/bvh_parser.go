package bvh

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"golang.org/x/text/encoding"
	"golang.org/x/text/transform"
)

// Parser is parser for .bvh motion.
type Parser struct {
	// Encoding of joint names. nil for UTF-8.
	Encoding encoding.Encoding

	r       io.Reader
	sc      *bufio.Scanner
	motion  *Motion
	channel int
}

// NewParser returns new parser.
func NewParser(r io.Reader) *Parser {
	return &Parser{r: r}
}

// Parse motion data.
func (p *Parser) Parse() (*Motion, error) {
	r := p.r
	if p.Encoding != nil {
		r = transform.NewReader(r, p.Encoding.NewDecoder())
	}
	p.sc = bufio.NewScanner(r)
	p.sc.Split(bufio.ScanWords)
	p.motion = &Motion{}
	p.channel = 0

	if err := p.expect("HIERARCHY"); err != nil {
		return nil, err
	}
	if err := p.expect("ROOT"); err != nil {
		return nil, err
	}
	root, err := p.parseJoint(nil, false)
	if err != nil {
		return nil, err
	}
	p.motion.Root = root

	if err := p.expect("MOTION"); err != nil {
		return nil, err
	}
	if err := p.expect("Frames:"); err != nil {
		return nil, err
	}
	frames, err := p.readInt()
	if err != nil {
		return nil, err
	}
	if err := p.expect("Frame"); err != nil {
		return nil, err
	}
	if err := p.expect("Time:"); err != nil {
		return nil, err
	}
	if p.motion.FrameTime, err = p.readFloat(); err != nil {
		return nil, err
	}

	for f := 0; f < frames; f++ {
		frame := make([]float32, p.channel)
		for i := range frame {
			if frame[i], err = p.readFloat(); err != nil {
				return nil, fmt.Errorf("frame %d: %w", f, err)
			}
		}
		p.motion.Frames = append(p.motion.Frames, frame)
	}
	return p.motion, nil
}

func (p *Parser) parseJoint(parent *Joint, endSite bool) (*Joint, error) {
	j := &Joint{Parent: parent, EndSite: endSite}
	name, err := p.next()
	if err != nil {
		return nil, err
	}
	if endSite {
		if name != "Site" {
			return nil, fmt.Errorf("bvh: unexpected token %q after End", name)
		}
		name = parent.Name + "_end"
	}
	j.Name = name
	p.motion.Joints = append(p.motion.Joints, j)
	if parent != nil {
		parent.Children = append(parent.Children, j)
	}

	if err := p.expect("{"); err != nil {
		return nil, err
	}
	for {
		tok, err := p.next()
		if err != nil {
			return nil, err
		}
		switch tok {
		case "OFFSET":
			for i := range j.Offset {
				if j.Offset[i], err = p.readFloat(); err != nil {
					return nil, err
				}
			}
		case "CHANNELS":
			n, err := p.readInt()
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, fmt.Errorf("bvh: invalid channel count %d in %s", n, j.Name)
			}
			if len(j.Channels) > 0 {
				return nil, fmt.Errorf("bvh: duplicate CHANNELS in %s", j.Name)
			}
			j.channelIndex = p.channel
			for i := 0; i < n; i++ {
				c, err := p.next()
				if err != nil {
					return nil, err
				}
				if !validChannel(c) {
					return nil, fmt.Errorf("bvh: unknown channel %q in %s", c, j.Name)
				}
				j.Channels = append(j.Channels, c)
			}
			p.channel += n
		case "JOINT":
			if _, err := p.parseJoint(j, false); err != nil {
				return nil, err
			}
		case "End":
			if _, err := p.parseJoint(j, true); err != nil {
				return nil, err
			}
		case "}":
			return j, nil
		default:
			return nil, fmt.Errorf("bvh: unexpected token %q in %s", tok, j.Name)
		}
	}
}

func validChannel(c string) bool {
	switch c {
	case "Xposition", "Yposition", "Zposition", "Xrotation", "Yrotation", "Zrotation":
		return true
	}
	return false
}

func (p *Parser) next() (string, error) {
	if !p.sc.Scan() {
		if err := p.sc.Err(); err != nil {
			return "", err
		}
		return "", io.ErrUnexpectedEOF
	}
	return p.sc.Text(), nil
}

func (p *Parser) expect(tok string) error {
	t, err := p.next()
	if err != nil {
		return err
	}
	if t != tok {
		return fmt.Errorf("bvh: expected %q but got %q", tok, t)
	}
	return nil
}

func (p *Parser) readInt() (int, error) {
	t, err := p.next()
	if err != nil {
		return 0, err
	}
	return strconv.Atoi(t)
}

func (p *Parser) readFloat() (float32, error) {
	t, err := p.next()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(t, 32)
	return float32(v), err
}

// Parse reads a BVH file in UTF-8.
func Parse(r io.Reader) (*Motion, error) {
	return NewParser(r).Parse()
}
