// meshtool is a CLI utility for inspecting STL model files before they
// go through the slicing pipeline.
package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/Faultbox/gofff/internal/mesh"
	fffmath "github.com/Faultbox/gofff/pkg/math"
	"github.com/Faultbox/gofff/pkg/stl"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "bounds":
		cmdBounds(args)
	case "layers":
		cmdLayers(args)
	case "validate":
		cmdValidate(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`meshtool - STL model inspection utility

Usage:
  meshtool <command> [options]

Commands:
  info <file.stl>                Show triangle/vertex counts
  bounds <file.stl>               Show the model's bounding box in mm
  layers <file.stl> <thickness>   Show layer count at thickness (mm)
  validate <file.stl>             Report open edges (degenerate faces are dropped on load, not reported)

Examples:
  meshtool info part.stl
  meshtool bounds part.stl
  meshtool layers part.stl 0.2
  meshtool validate part.stl`)
}

func loadIndex(path string) (*mesh.MeshIndex, error) {
	model, err := stl.Load(path, 1000)
	if err != nil {
		return nil, err
	}
	return mesh.NewMeshIndex(model, mesh.BuildOptions{
		Rotation:        fffmath.Identity3(),
		WeldToleranceUm: 10,
	}), nil
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool info <file.stl>")
		os.Exit(1)
	}

	idx, err := loadIndex(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Vertices:  %d\n", len(idx.Vertices))
	fmt.Printf("Triangles: %d\n", idx.TriangleCount())
	fmt.Printf("Open edges: %d\n", len(idx.OpenEdges()))
}

func cmdBounds(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool bounds <file.stl>")
		os.Exit(1)
	}

	idx, err := loadIndex(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	min, max := idx.Bounds()
	fmt.Printf("Min: (%.3f, %.3f, %.3f) mm\n", umToMm(min.X), umToMm(min.Y), umToMm(min.Z))
	fmt.Printf("Max: (%.3f, %.3f, %.3f) mm\n", umToMm(max.X), umToMm(max.Y), umToMm(max.Z))
	fmt.Printf("Size: (%.3f, %.3f, %.3f) mm\n",
		umToMm(max.X-min.X), umToMm(max.Y-min.Y), umToMm(max.Z-min.Z))
}

func cmdLayers(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool layers <file.stl> <thickness_mm>")
		os.Exit(1)
	}

	idx, err := loadIndex(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var thicknessMm float64
	if _, err := fmt.Sscanf(args[1], "%f", &thicknessMm); err != nil || thicknessMm <= 0 {
		fmt.Fprintln(os.Stderr, "thickness must be a positive number of millimeters")
		os.Exit(1)
	}

	min, max := idx.Bounds()
	heightUm := max.Z - min.Z
	thicknessUm := int64(thicknessMm * 1000)
	count := heightUm / thicknessUm
	if heightUm%thicknessUm != 0 {
		count++
	}
	fmt.Printf("Height: %.3f mm\n", umToMm(heightUm))
	fmt.Printf("Layers at %.3f mm: %d\n", thicknessMm, count)
}

func cmdValidate(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: meshtool validate <file.stl>")
		os.Exit(1)
	}

	idx, err := loadIndex(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	open := idx.OpenEdges()
	if len(open) == 0 {
		fmt.Println("Mesh is watertight: no open edges found.")
		return
	}

	byVertex := make(map[int]int)
	for _, e := range open {
		byVertex[e.A]++
		byVertex[e.B]++
	}
	var vertices []int
	for v := range byVertex {
		vertices = append(vertices, v)
	}
	sort.Ints(vertices)

	fmt.Printf("Mesh has %d open edges touching %d vertices.\n", len(open), len(vertices))
	limit := 10
	if len(vertices) < limit {
		limit = len(vertices)
	}
	for _, v := range vertices[:limit] {
		p := idx.Vertex(v)
		fmt.Printf("  vertex %d at (%.3f, %.3f, %.3f) mm\n", v, umToMm(p.X), umToMm(p.Y), umToMm(p.Z))
	}
	os.Exit(1)
}

func umToMm(v int64) float64 {
	return float64(v) / 1000
}
