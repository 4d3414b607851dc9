// Package convert migrates the layouts of content packs between the legacy
// per-kind format and the layouts container format.
//
// Conversion of one layout directory runs in two passes over its Index:
//
//  1. legacy backfill: every kind declared by a container that no legacy
//     file covers gets a synthesized legacy file;
//  2. container backfill: every group without a container gets one, then
//     every legacy file of the group is merged into the container and the
//     container's group is set to "indicator" or "incident".
//
// After both passes every group has exactly one container and one legacy
// file per kind it declares.
//
// Converter wraps the passes in a per-pack transaction: the pack's layout
// directory is copied to a scratch root, converted there, and swapped into
// place only when every step succeeded. Scratch roots are always removed at
// the end of a run.
package convert
