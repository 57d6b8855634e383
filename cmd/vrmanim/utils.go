package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/binzume/vrmanim/anim"
	"github.com/binzume/vrmanim/bvh"
	"github.com/binzume/vrmanim/fbx"
	"github.com/binzume/vrmanim/gltfutil"
	"github.com/binzume/vrmanim/vrm"
	"golang.org/x/text/encoding/japanese"
)

func loadSourceClips(input string, sjis bool) ([]*anim.Clip, error) {
	ext := strings.ToLower(filepath.Ext(input))
	switch ext {
	case ".bvh":
		r, err := os.Open(input)
		if err != nil {
			return nil, err
		}
		defer r.Close()
		p := bvh.NewParser(r)
		if sjis {
			p.Encoding = japanese.ShiftJIS
		}
		motion, err := p.Parse()
		if err != nil {
			return nil, err
		}
		name := filepath.Base(input)
		return []*anim.Clip{motion.Clip(name[0 : len(name)-len(ext)])}, nil
	case ".glb", ".gltf", ".vrm":
		doc, err := gltfutil.Load(input)
		if err != nil {
			return nil, err
		}
		return gltfutil.ReadClips(doc)
	case ".fbx":
		doc, err := fbx.Load(input)
		if err != nil {
			return nil, err
		}
		return doc.Clips(), nil
	}
	return nil, fmt.Errorf("Unsupported input type: %v", ext)
}

func loadSourceClip(input string, index int, sjis bool) (*anim.Clip, error) {
	clips, err := loadSourceClips(input, sjis)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(clips) {
		return nil, fmt.Errorf("animation %d not found in %v (%d animations)", index, input, len(clips))
	}
	return clips[index], nil
}

func loadAvatar(input string) (*vrm.Document, error) {
	r, err := os.Open(input)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	doc, err := vrm.Parse(r, input)
	if err != nil {
		return nil, err
	}
	log.Print("Title: ", doc.Title(), " Author: ", doc.Author(), " VRM: ", doc.Version())
	if w := avatarWarning(doc); w != "" {
		log.Print("WARNING: ", w)
	}
	if err := doc.ValidateBones(); err != nil {
		log.Print(err)
	}
	return doc, nil
}

// avatarWarning reports targets whose facing differs from the VRM 0.x convention
// the rotation flip is built for.
func avatarWarning(doc *vrm.Document) string {
	if doc.Version() == "1.0" {
		return "VRM 1.0 avatar faces +Z. The animation is converted for VRM 0.x (-Z) and will be mirrored."
	}
	return ""
}

func saveAvatar(doc *vrm.Document, output string) error {
	w, err := os.Create(output)
	if err != nil {
		return err
	}
	defer w.Close()
	return vrm.Write(doc, w, output)
}

func dumpClip(w io.Writer, clip *anim.Clip) {
	fmt.Fprintf(w, "%s duration=%v\n", clip.Name, clip.Duration)
	for _, t := range clip.Tracks {
		n := t.SampleCount()
		fmt.Fprintf(w, "  %s node=%d keys=%d", t.Name, t.Node.Index, n)
		if n > 0 {
			size := t.ValueSize()
			fmt.Fprintf(w, " first=%v", t.Values[0:size])
		}
		fmt.Fprintln(w)
	}
}
