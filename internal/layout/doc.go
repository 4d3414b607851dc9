// Package layout models the layout files of a content pack and groups them
// by logical layout identity.
//
// Two schema generations exist on disk:
//
//   - legacy: one file per kind, with the presentation block nested under
//     "layout" and the identity at "layout.id";
//   - container: one file per logical layout, holding every kind under a
//     dynamic top-level key and the identity at "id".
//
// Discover walks a layout directory, classifies every JSON file, and builds
// an Index of Groups keyed by identity. Files that are not layouts are
// skipped and left untouched.
//
// Records are persisted either compact (freshly synthesized files) or with
// an indent width equal to the record's nesting depth (rewritten files).
package layout
