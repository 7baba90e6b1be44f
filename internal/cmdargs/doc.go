// Package cmdargs turns command models into ordered command-line argument
// strings.
//
// A command model implements Schema and lists its Fields: an argument name, an
// optional ordering key, a value Kind, and the value itself. Serialize walks
// the schema in order and dispatches each value to the converter for its kind.
// The set of kinds is closed; an unknown kind or a value of the wrong Go type
// is a programming error reported as services.ErrUnsupportedValue.
//
// Key types:
//   - Field, Kind, Schema: the declarative schema
//   - Pair: one rendered argument (name plus shell-ready value)
//   - Codec, Filter, MappedStream: structured values for the codec, filter
//     graph, and stream-map kinds
//
// Output of Join is a single shell-quoted line; Split reverses it into argv.
package cmdargs
