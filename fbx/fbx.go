// Package fbx reads node trees and animation curves from binary and ASCII FBX files.
package fbx

import (
	"bufio"
	"io"
	"os"
)

func Load(path string) (*Document, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Parse(r)
}

func Parse(r io.Reader) (*Document, error) {
	br := bufio.NewReader(r)
	var root *Node
	var err error
	if magic, _ := br.Peek(len(binaryMagic)); string(magic) == binaryMagic {
		p := binaryParser{r: &positionReader{r: br}}
		root, err = p.Parse()
	} else {
		root, err = newTextParser(br).Parse()
	}
	if err != nil {
		return nil, err
	}
	return BuildDocument(root)
}
