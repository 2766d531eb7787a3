// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import "strings"

// IsSkipName reports texture names whose faces are dropped from the
// drawn surface set.
func IsSkipName(name string) bool {
	switch strings.ToLower(name) {
	case "skip", "*waterskip", "*slimeskip", "*lavaskip":
		return true
	case "bevel", "null": // zhlt compat
		return true
	}
	return false
}

// IsHintName reports the hint textures that guide the partitioner
// without producing geometry.
func IsHintName(name string) bool {
	switch strings.ToLower(name) {
	case "hint", "hintskip":
		return true
	}
	return false
}

// IsSpecialName reports sky and liquid textures, which take no
// lightmap and are never subdivided.
func IsSpecialName(name string) bool {
	if strings.HasPrefix(name, "*") {
		return true
	}
	if len(name) >= 3 && strings.EqualFold(name[:3], "sky") {
		return true
	}
	return false
}

// IsNoExpandName reports textures whose faces keep their exact plane
// during hull expansion.
func IsNoExpandName(name string) bool {
	return strings.EqualFold(name, "bevel") // zhlt compat
}
