// Package textutil sanitizes names derived from media titles and paths so
// they are safe to use as file names.
package textutil
