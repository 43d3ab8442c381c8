package wfobject

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"cogentcore.org/core/math32"

	"github.com/PeterZhouSZ/string2shape/pkg/errors"
)

// defaultMaterial is used for faces that appear before any usemtl record.
const defaultMaterial = "default"

// Load reads a Wavefront OBJ file and returns the parsed object.
func Load(path string) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "open %s", path)
	}
	defer f.Close()
	o, err := Read(f)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidObject, err, "parse %s", path)
	}
	return o, nil
}

// Read parses OBJ text from r. Faces with more than three vertices are
// fan-triangulated. Negative (relative) vertex references are resolved
// against the vertices seen so far.
func Read(r io.Reader) (*Object, error) {
	o := &Object{}
	matIndex := map[string]int{}
	curMat := -1
	curGroup := 0
	groupOpen := false

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates", lineNo)
			}
			var c [3]float32
			for i := 0; i < 3; i++ {
				f64, err := strconv.ParseFloat(fields[i+1], 32)
				if err != nil {
					return nil, fmt.Errorf("line %d: bad coordinate %q", lineNo, fields[i+1])
				}
				c[i] = float32(f64)
			}
			o.Vertices = append(o.Vertices, math32.Vec3(c[0], c[1], c[2]))
		case "g", "o":
			// Each group directive starts a fresh part range.
			if groupOpen {
				curGroup++
			}
			groupOpen = true
		case "usemtl":
			if len(fields) < 2 {
				return nil, fmt.Errorf("line %d: usemtl needs a name", lineNo)
			}
			name := fields[1]
			id, ok := matIndex[name]
			if !ok {
				id = len(o.Materials)
				matIndex[name] = id
				o.Materials = append(o.Materials, Material{Name: name})
			}
			curMat = id
		case "mtllib":
			if len(fields) >= 2 {
				o.MtlLib = fields[1]
			}
		case "f":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices", lineNo)
			}
			if curMat < 0 {
				id, ok := matIndex[defaultMaterial]
				if !ok {
					id = len(o.Materials)
					matIndex[defaultMaterial] = id
					o.Materials = append(o.Materials, Material{Name: defaultMaterial})
				}
				curMat = id
			}
			idx := make([]int, 0, len(fields)-1)
			for _, tok := range fields[1:] {
				vi, err := parseFaceIndex(tok, len(o.Vertices))
				if err != nil {
					return nil, fmt.Errorf("line %d: %w", lineNo, err)
				}
				idx = append(idx, vi)
			}
			groupOpen = true
			for i := 1; i+1 < len(idx); i++ {
				o.Faces = append(o.Faces, Face{
					Verts:    [3]int{idx[0], idx[i], idx[i+1]},
					Material: curMat,
					Group:    curGroup,
				})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	if len(o.Faces) == 0 {
		return nil, fmt.Errorf("no faces")
	}
	o.buildParts()
	if err := o.Validate(); err != nil {
		return nil, err
	}
	return o, nil
}

// parseFaceIndex parses one face vertex token ("7", "7/1", "7//3", "-2")
// and returns the zero-based vertex index.
func parseFaceIndex(tok string, numVerts int) (int, error) {
	if i := strings.IndexByte(tok, '/'); i >= 0 {
		tok = tok[:i]
	}
	n, err := strconv.Atoi(tok)
	if err != nil {
		return 0, fmt.Errorf("bad face index %q", tok)
	}
	if n < 0 {
		n = numVerts + n + 1
	}
	if n < 1 || n > numVerts {
		return 0, fmt.Errorf("face index %d out of range [1,%d]", n, numVerts)
	}
	return n - 1, nil
}

// Save writes the object to path in OBJ format.
// The file is created with 0644 permissions.
func (o *Object) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return o.Write(f)
}

// Write emits the object as OBJ text: all vertices first, then each part as
// a group with its usemtl record. Round-trip through Read preserves part
// structure and types.
func (o *Object) Write(w io.Writer) error {
	bw := bufio.NewWriter(w)
	if o.MtlLib != "" {
		fmt.Fprintf(bw, "mtllib %s\n", o.MtlLib)
	}
	for _, v := range o.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v.X, v.Y, v.Z)
	}
	for pi, p := range o.Parts {
		fmt.Fprintf(bw, "g part_%d\n", pi)
		lastMat := -1
		for _, f := range o.Faces[p.FaceStart:p.FaceEnd] {
			if f.Material != lastMat {
				fmt.Fprintf(bw, "usemtl %s\n", o.Materials[f.Material].Name)
				lastMat = f.Material
			}
			fmt.Fprintf(bw, "f %d %d %d\n", f.Verts[0]+1, f.Verts[1]+1, f.Verts[2]+1)
		}
	}
	return bw.Flush()
}
