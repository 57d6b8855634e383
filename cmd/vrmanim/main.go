package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/binzume/vrmanim/converter"
	"github.com/binzume/vrmanim/gltfutil"
	"github.com/binzume/vrmanim/player"
	"github.com/binzume/vrmanim/retarget"
	"github.com/qmuntal/gltf"
)

type options struct {
	format     string
	rootMotion bool
	scale      float64
	name       string
	anim       int
	sjis       bool
	pose       float64
	dump       bool
}

func defaultOutputFile(avatar string) string {
	ext := filepath.Ext(avatar)
	return avatar[0:len(avatar)-len(ext)] + "_anim.vrm"
}

func defaultFormat(source string) string {
	if strings.ToLower(filepath.Ext(source)) == ".bvh" {
		return retarget.Tdpt.Name
	}
	return retarget.Mixamo.Name
}

// applyConfig copies conf values to opts unless the flag is set explicitly.
func applyConfig(opts *options, conf *converter.Config, set map[string]bool) {
	if conf.Format != "" && !set["format"] {
		opts.format = conf.Format
	}
	if conf.RootMotion && !set["rootmotion"] {
		opts.rootMotion = true
	}
	if conf.PositionScale != 0 && !set["scale"] {
		opts.scale = float64(conf.PositionScale)
	}
	if conf.Name != "" && !set["name"] {
		opts.name = conf.Name
	}
	if conf.Animation != 0 && !set["anim"] {
		opts.anim = conf.Animation
	}
	if conf.ShiftJIS && !set["sjis"] {
		opts.sjis = true
	}
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s motion.bvh avatar.vrm [output.vrm]\n", os.Args[0])
		flag.PrintDefaults()
	}
	var opts options
	flag.StringVar(&opts.format, "format", "", "mixamo, bvhviewer or tdpt (default: by extension)")
	flag.BoolVar(&opts.rootMotion, "rootmotion", false, "keep hips translation")
	flag.Float64Var(&opts.scale, "scale", retarget.DefaultPositionScale, "root motion scale (0 means 0.008)")
	flag.StringVar(&opts.name, "name", "", "animation name")
	flag.IntVar(&opts.anim, "anim", 0, "animation index in source")
	flag.BoolVar(&opts.sjis, "sjis", false, "bvh joint names are Shift_JIS")
	flag.Float64Var(&opts.pose, "pose", -1, "set node pose at time (ms)")
	confFile := flag.String("config", "", "config file (.yaml)")
	flag.BoolVar(&opts.dump, "dump", false, "print converted tracks")
	flag.Parse()

	if flag.NArg() < 2 {
		flag.Usage()
		return
	}
	source := flag.Arg(0)
	avatar := flag.Arg(1)
	output := flag.Arg(2)
	if output == "" {
		output = defaultOutputFile(avatar)
	}

	if *confFile == "" {
		*confFile = source[0:len(source)-len(filepath.Ext(source))] + ".vrmanim.yaml"
		if _, err := os.Stat(*confFile); err != nil {
			*confFile = ""
		}
	}
	var conf *converter.Config
	if *confFile != "" {
		var err error
		conf, err = converter.LoadConfig(*confFile)
		if err != nil {
			log.Fatal(err)
		}
		set := map[string]bool{}
		flag.Visit(func(f *flag.Flag) { set[f.Name] = true })
		applyConfig(&opts, conf, set)
	}
	if opts.format == "" {
		opts.format = defaultFormat(source)
	}
	format := retarget.FormatByName(opts.format)
	if format == nil {
		log.Fatal("Unsupported format: ", opts.format)
	}

	src, err := loadSourceClip(source, opts.anim, opts.sjis)
	if err != nil {
		log.Fatal(err)
	}
	log.Print("Source: ", src.Name, " tracks: ", len(src.Tracks), " format: ", format.Name)

	doc, err := loadAvatar(avatar)
	if err != nil {
		log.Fatal(err)
	}

	clip, err := retarget.BuildClip(src, converter.NewSkeleton(doc, conf), format, &retarget.Options{
		RootMotion:    opts.rootMotion,
		PositionScale: float32(opts.scale),
		OnSkip: func(bone retarget.HumanBone, err error) {
			log.Print("skip ", bone, ": ", err)
		},
	})
	if err != nil {
		log.Fatal(err)
	}
	if opts.name != "" {
		clip.Name = opts.name
	}

	if opts.dump {
		dumpClip(os.Stdout, clip)
		return
	}

	gltfDoc := (*gltf.Document)(doc)
	index, err := converter.AddClipToGLTF(gltfDoc, clip)
	if err != nil {
		log.Fatal(err)
	}
	if index < 0 {
		log.Fatal("No tracks converted")
	}
	log.Print("Animation: ", index, " ", clip.Name, " duration(ms): ", clip.Duration)

	if opts.pose >= 0 {
		mixer := player.NewMixer(gltfDoc)
		action := mixer.ClipAction(clip).SetLoop(player.LoopOnce, 1).Play()
		action.ClampWhenFinished = true
		mixer.Update(float32(opts.pose))
	}

	if err := gltfutil.ToSingleFile(gltfDoc, filepath.Dir(avatar)); err != nil {
		log.Fatal(err)
	}
	log.Print("out: ", output)
	if err := saveAvatar(doc, output); err != nil {
		log.Fatal(err)
	}
}
