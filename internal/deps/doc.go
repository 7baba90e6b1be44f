// Package deps reports whether the external binaries framesmith drives are
// installed and which versions they are.
package deps
