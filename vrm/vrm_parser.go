package vrm

import (
	"io"
	"path/filepath"

	"github.com/qmuntal/gltf"
)

// Parse vrm data
func Parse(r io.Reader, path string) (*Document, error) {
	var doc gltf.Document
	dec := gltf.NewDecoder(r).WithReadHandler(&gltf.RelativeFileHandler{Dir: filepath.Dir(path)})
	if err := dec.Decode(&doc); err != nil {
		return nil, err
	}
	return (*Document)(&doc), nil
}

// Write vrm file
func Write(doc *Document, w io.Writer, path string) error {
	e := gltf.NewEncoder(w).WithWriteHandler(&gltf.RelativeFileHandler{Dir: filepath.Dir(path)})
	e.AsBinary = true
	return e.Encode((*gltf.Document)(doc))
}
