package layout

//go:generate go tool stringer -type=Version -linecomment -output=version_string.go

// Version is the schema generation of a layout file.
type Version int

const (
	VersionUnknown   Version = iota // unknown
	VersionLegacy                   // legacy
	VersionContainer                // container
)
