// Package meshfs loads the stump and full-limb meshes of an exam from a
// directory of Wavefront OBJ files and watches that directory so edited
// models can be reloaded while a session is open.
//
// Only the geometry the picker needs is read: vertex positions and faces.
// Polygons are fan-triangulated. Normals, texture coordinates, groups and
// materials are skipped.
//
// When a model file is missing the library falls back to a built-in
// capsule (stump) or a longer capsule (full limb), so the application is
// usable without any model directory.
package meshfs
