package stl

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"
)

const asciiCube = `solid cube
facet normal 0 0 -1
outer loop
vertex 0 0 0
vertex 1 1 0
vertex 1 0 0
endloop
endfacet
endsolid cube
`

func TestLoadASCII(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cube.stl")
	if err := os.WriteFile(path, []byte(asciiCube), 0644); err != nil {
		t.Fatalf("failed to write test STL: %v", err)
	}

	model, err := Load(path, 1000)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(model.Triangles) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(model.Triangles))
	}
	if model.Triangles[0].V1.X != 1 || model.Triangles[0].V1.Y != 1 {
		t.Errorf("unexpected vertex: %+v", model.Triangles[0].V1)
	}
}

func writeBinarySTL(t *testing.T, path string) {
	t.Helper()
	var buf bytes.Buffer
	buf.Write(make([]byte, binaryHeaderSize))
	binary.Write(&buf, binary.LittleEndian, uint32(1))

	writeFloat := func(f float32) {
		binary.Write(&buf, binary.LittleEndian, math.Float32bits(f))
	}
	// normal
	writeFloat(0)
	writeFloat(0)
	writeFloat(-1)
	// 3 vertices
	coords := [9]float32{0, 0, 0, 1, 0, 0, 1, 1, 0}
	for _, c := range coords {
		writeFloat(c)
	}
	buf.Write(make([]byte, 2)) // attribute byte count

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		t.Fatalf("failed to write binary STL: %v", err)
	}
}

func TestLoadBinary(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "cube.stl")
	writeBinarySTL(t, path)

	model, err := Load(path, 1000)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if len(model.Triangles) != 1 {
		t.Fatalf("expected 1 triangle, got %d", len(model.Triangles))
	}
	if model.Triangles[0].V2.X != 1 || model.Triangles[0].V2.Y != 1 {
		t.Errorf("unexpected vertex: %+v", model.Triangles[0].V2)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load("/nonexistent/model.stl", 1000); err == nil {
		t.Error("expected error loading a missing file")
	}
}
