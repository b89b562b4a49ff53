// Package utils provides loose-typed conversion helpers for values decoded
// from third-party JSON dumps, where the same field may arrive as a number,
// a string, or be missing entirely depending on the source.
package utils
