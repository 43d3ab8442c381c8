// Package wfobject provides the Wavefront OBJ data model used throughout
// string2shape: vertices, triangulated faces, materials, and rigid parts.
//
// A part is a contiguous run of faces that share a group id. Parts are the
// unit of rigid motion: each part carries a pose (rotation + translation
// accumulated since load) and owns the vertices referenced by its faces.
// The part's type is the material id of its first face, which is what the
// structural grammar reasons about.
//
// # File Handling
//
// Load and Save work on the common OBJ subset emitted by the shape datasets:
// v, g/o, usemtl, mtllib and f records. Polygonal faces are fan-triangulated
// on load. Unreadable or structurally empty files yield an error rather than
// a partial object.
package wfobject
