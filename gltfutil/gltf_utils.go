package gltfutil

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/binzume/vrmanim/anim"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
)

func Load(path string) (*gltf.Document, error) {
	return gltf.Open(path)
}

// ToSingleFile embeds external images so the document can be saved as a binary file.
func ToSingleFile(doc *gltf.Document, srcDir string) error {
	for _, b := range doc.Buffers {
		b.URI = ""
	}
	for _, m := range doc.Images {
		if m.BufferView == nil && m.URI != "" && !strings.HasPrefix(m.URI, "data:") {
			buf, err := os.ReadFile(filepath.Join(srcDir, filepath.FromSlash(m.URI)))
			if err != nil {
				log.Print(err)
				continue
			}
			if m.MimeType == "" {
				if strings.HasSuffix(strings.ToLower(m.URI), ".png") {
					m.MimeType = "image/png"
				} else {
					m.MimeType = "image/jpeg"
				}
			}
			m.BufferView = gltf.Index(modeler.WriteBufferView(doc, gltf.TargetNone, buf))
			m.URI = ""
		}
	}
	return nil
}

// NodeName returns sanitized name of the node.
func NodeName(doc *gltf.Document, index uint32) string {
	if int(index) < len(doc.Nodes) {
		if name := anim.SanitizeNodeName(doc.Nodes[index].Name); name != "" {
			return name
		}
	}
	return "node_" + strconv.Itoa(int(index))
}
