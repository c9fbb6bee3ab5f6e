package meshfs

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/refeel-health/refeel-cli/internal/core/domain"
	"github.com/refeel-health/refeel-cli/internal/geometry"
)

// ParseOBJ reads vertices and faces from r and returns an untransformed mesh.
func ParseOBJ(name string, r io.Reader) (*geometry.Mesh, error) {
	var vertices []mgl64.Vec3
	var faces [][3]int

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			v, err := parseVertex(fields[1:])
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, line, err)
			}
			vertices = append(vertices, v)
		case "f":
			poly, err := parseFace(fields[1:], len(vertices))
			if err != nil {
				return nil, fmt.Errorf("%s:%d: %w", name, line, err)
			}
			for i := 1; i+1 < len(poly); i++ {
				faces = append(faces, [3]int{poly[0], poly[i], poly[i+1]})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return geometry.NewMesh(name, vertices, faces)
}

// LoadOBJ parses the OBJ file at path.
func LoadOBJ(path string) (*geometry.Mesh, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseOBJ(path, f)
}

func parseVertex(args []string) (mgl64.Vec3, error) {
	if len(args) < 3 {
		return mgl64.Vec3{}, fmt.Errorf("%w: vertex needs 3 coordinates", domain.ErrInvalidInput)
	}
	var v mgl64.Vec3
	for i := 0; i < 3; i++ {
		f, err := strconv.ParseFloat(args[i], 64)
		if err != nil {
			return mgl64.Vec3{}, fmt.Errorf("%w: vertex coordinate %q", domain.ErrInvalidInput, args[i])
		}
		v[i] = f
	}
	return v, nil
}

// parseFace resolves 1-based and negative (relative) indices of the
// "v", "v/vt", "v//vn" and "v/vt/vn" forms to zero-based vertex indices.
func parseFace(args []string, count int) ([]int, error) {
	if len(args) < 3 {
		return nil, fmt.Errorf("%w: face needs 3 vertices", domain.ErrInvalidInput)
	}
	poly := make([]int, 0, len(args))
	for _, a := range args {
		ref, _, _ := strings.Cut(a, "/")
		n, err := strconv.Atoi(ref)
		if err != nil || n == 0 {
			return nil, fmt.Errorf("%w: face index %q", domain.ErrInvalidInput, a)
		}
		if n < 0 {
			n = count + n
		} else {
			n--
		}
		if n < 0 || n >= count {
			return nil, fmt.Errorf("%w: face index %q out of range", domain.ErrInvalidInput, a)
		}
		poly = append(poly, n)
	}
	return poly, nil
}
