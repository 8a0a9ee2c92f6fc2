package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/qmuntal/gltf"

	"github.com/binzume/objconv/converter"
	"github.com/binzume/objconv/obj"
)

func defaultOutputFile(input string) string {
	ext := strings.ToLower(filepath.Ext(input))
	base := input[0 : len(input)-len(ext)]
	return base + ".glb"
}

func saveDocument(doc *obj.Document, output string, opt *converter.OBJToGLTFOption) error {
	ext := strings.ToLower(filepath.Ext(output))
	if ext == ".glb" || ext == ".gltf" {
		conv := converter.NewOBJToGLTFConverter(opt)
		gltfdoc, err := conv.Convert(doc)
		if err != nil {
			return err
		}
		if ext == ".glb" {
			return gltf.SaveBinary(gltfdoc, output)
		}
		return gltf.Save(gltfdoc, output)
	} else if ext == ".obj" || ext == "" {
		return obj.Save(doc, output)
	}
	return fmt.Errorf("Unsuppored output type: %v", ext)
}

func main() {
	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s input.obj [output.(obj|glb|gltf)]\n", os.Args[0])
		flag.PrintDefaults()
	}
	scale := flag.Float64("scale", 1, "uniform scale")
	forceUnlit := flag.Bool("gltfunlit", false, "unlit all materials")
	genNormals := flag.Bool("gennormals", false, "generate smooth normals if the source has none")
	confFlag := flag.String("config", "", "conversion preset file (YAML)")
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		return
	}
	input := flag.Arg(0)
	output := flag.Arg(1)
	if output == "" {
		output = defaultOutputFile(input)
	}

	confFile := *confFlag
	if confFile == "" {
		confFile = input[0:len(input)-len(filepath.Ext(input))] + ".objconv.yaml"
		if _, err := os.Stat(confFile); err != nil {
			confFile = ""
		}
	}

	opt := &converter.OBJToGLTFOption{
		Scale:           *scale,
		ForceUnlit:      *forceUnlit,
		GenerateNormals: *genNormals,
	}
	if confFile != "" {
		conf, err := converter.LoadConfig(confFile)
		if err != nil {
			log.Fatal(err)
		}
		opt = conf.Option()
	}

	doc, err := obj.Load(input)
	if err != nil {
		log.Fatal(err)
	}

	if opt.Scale != 1.0 && strings.ToLower(filepath.Ext(output)) == ".obj" {
		s := opt.Scale
		doc.Transform(func(v *obj.Vertex) {
			v.X *= s
			v.Y *= s
			v.Z *= s
		})
	}

	log.Print("out: ", output)
	if err = saveDocument(doc, output, opt); err != nil {
		log.Fatal(err)
	}
}
