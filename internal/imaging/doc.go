// Package imaging inspects image files written to disk.
//
// Probe reports dimensions, format and size of a saved image. Orientation
// stored in EXIF metadata is applied, so the reported width and height match
// what a viewer shows. GIF, JPEG, PNG and WebP are recognized.
package imaging
