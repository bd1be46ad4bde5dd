// Package stl reads ASCII and binary STL model files into the raw
// triangle-soup mesh.Model representation the rest of the pipeline
// builds on.
package stl

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	gomath "math"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/Faultbox/gofff/internal/mesh"
	fffmath "github.com/Faultbox/gofff/pkg/math"
)

const binaryHeaderSize = 80

// Load reads path (auto-detecting ASCII vs. binary STL) and returns its
// raw triangles. scaleUmPerUnit converts one STL unit into micrometers,
// since the format itself carries no unit information.
func Load(path string, scaleUmPerUnit float64) (mesh.Model, error) {
	file, err := os.Open(path)
	if err != nil {
		return mesh.Model{}, errors.Wrap(err, "opening STL file")
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return mesh.Model{}, errors.Wrap(err, "stat STL file")
	}

	isBinary, err := detectBinary(file, info.Size())
	if err != nil {
		return mesh.Model{}, err
	}
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return mesh.Model{}, errors.Wrap(err, "seeking STL file")
	}

	var triangles []mesh.Triangle
	if isBinary {
		triangles, err = readBinary(file)
	} else {
		triangles, err = readASCII(file)
	}
	if err != nil {
		return mesh.Model{}, err
	}

	return mesh.Model{Triangles: triangles, ScaleUmPerUnit: scaleUmPerUnit}, nil
}

// detectBinary distinguishes binary from ASCII STL the way most slicers
// do: a binary file's 80-byte header is followed by a uint32 triangle
// count, and the file size must exactly match
// 84 + 50*count for that to be genuine binary geometry rather than an
// ASCII file whose header happens to start with non-ASCII bytes.
func detectBinary(r io.ReadSeeker, size int64) (bool, error) {
	if size < binaryHeaderSize+4 {
		return false, nil
	}

	header := make([]byte, binaryHeaderSize+4)
	if _, err := io.ReadFull(r, header); err != nil {
		return false, errors.Wrap(err, "reading STL header")
	}

	// A "solid" prefix isn't trusted on its own: a binary file can
	// legally start with those bytes in its free-form header, so the
	// triangle-count/file-size check below is the deciding factor.
	count := binary.LittleEndian.Uint32(header[binaryHeaderSize:])
	expected := int64(binaryHeaderSize+4) + int64(count)*50
	return expected == size, nil
}

func readBinary(r io.Reader) ([]mesh.Triangle, error) {
	header := make([]byte, binaryHeaderSize+4)
	if _, err := io.ReadFull(r, header); err != nil {
		return nil, errors.Wrap(err, "reading binary STL header")
	}
	count := binary.LittleEndian.Uint32(header[binaryHeaderSize:])

	triangles := make([]mesh.Triangle, 0, count)
	buf := make([]byte, 50)
	for i := uint32(0); i < count; i++ {
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, errors.Wrapf(err, "reading triangle %d", i)
		}
		nx := readFloat32(buf[0:4])
		ny := readFloat32(buf[4:8])
		nz := readFloat32(buf[8:12])
		v0 := readVec3(buf[12:24])
		v1 := readVec3(buf[24:36])
		v2 := readVec3(buf[36:48])
		triangles = append(triangles, mesh.Triangle{
			V0: v0, V1: v1, V2: v2,
			Normal: fffmath.Vec3{X: nx, Y: ny, Z: nz},
		})
	}
	return triangles, nil
}

func readFloat32(b []byte) float32 {
	bits := binary.LittleEndian.Uint32(b)
	return gomath.Float32frombits(bits)
}

func readVec3(b []byte) fffmath.Vec3 {
	return fffmath.Vec3{
		X: readFloat32(b[0:4]),
		Y: readFloat32(b[4:8]),
		Z: readFloat32(b[8:12]),
	}
}

func readASCII(r io.Reader) ([]mesh.Triangle, error) {
	scanner := bufio.NewScanner(r)
	var triangles []mesh.Triangle
	var normal fffmath.Vec3
	var verts [3]fffmath.Vec3
	vertCount := 0

	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		switch fields[0] {
		case "facet":
			if len(fields) == 5 && fields[1] == "normal" {
				normal = parseVec3(fields[2], fields[3], fields[4])
			}
			vertCount = 0
		case "vertex":
			if len(fields) != 4 || vertCount >= 3 {
				return nil, fmt.Errorf("malformed vertex line: %q", scanner.Text())
			}
			verts[vertCount] = parseVec3(fields[1], fields[2], fields[3])
			vertCount++
		case "endfacet":
			if vertCount == 3 {
				triangles = append(triangles, mesh.Triangle{
					V0: verts[0], V1: verts[1], V2: verts[2], Normal: normal,
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "scanning ASCII STL")
	}
	return triangles, nil
}

func parseVec3(xs, ys, zs string) fffmath.Vec3 {
	x, _ := strconv.ParseFloat(xs, 32)
	y, _ := strconv.ParseFloat(ys, 32)
	z, _ := strconv.ParseFloat(zs, 32)
	return fffmath.Vec3{X: float32(x), Y: float32(y), Z: float32(z)}
}
