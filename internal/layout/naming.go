package layout

import (
	"fmt"

	"layout-converter/internal/common"
)

// File name prefixes of synthesized layout files.
const (
	LegacyPrefix    = "layout"
	ContainerPrefix = "layoutscontainer"
)

// LegacyFileName returns the file name of a synthesized legacy layout for kind.
func LegacyFileName(kind, id string, separators []string) string {
	return fmt.Sprintf("%s-%s-%s.json", LegacyPrefix, kind, common.SanitizeName(id, separators))
}

// ContainerFileName returns the file name of a synthesized layouts container.
func ContainerFileName(id string, separators []string) string {
	return fmt.Sprintf("%s-%s.json", ContainerPrefix, common.SanitizeName(id, separators))
}
