// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"strings"

	"gobsp/game"
)

// SurfFlags carries the game native surface bits plus the compiler's
// extended qualifiers.
type SurfFlags struct {
	Native   int32
	Extended uint32
}

// TexInfo is a texture projection record: world position dotted with
// Vecs[0] and Vecs[1] (plus their fourth shift component) yields the
// s,t texture coordinates.
type TexInfo struct {
	Vecs   [2][4]float64
	Miptex int
	Flags  SurfFlags
	Value  int32
}

// FindTexinfo returns a pool texinfo number, inserting on first use.
func (m *MapData) FindTexinfo(t TexInfo) int {
	m.texMu.Lock()
	defer m.texMu.Unlock()

	if i, ok := m.texinfoLookup[t]; ok {
		return i
	}
	i := len(m.TexInfos)
	m.TexInfos = append(m.TexInfos, t)
	m.texinfoLookup[t] = i
	return i
}

// FindMiptex returns a texture name pool index. Names compare case
// insensitively and, outside Quake 2, a leading path is ignored.
func (m *MapData) FindMiptex(name string, flags int32, value int32) int {
	m.mipMu.Lock()
	defer m.mipMu.Unlock()
	return m.findMiptex(name, flags, value)
}

func (m *MapData) findMiptex(name string, flags int32, value int32) int {
	q2 := m.Game != nil && m.Game.ID() == game.Quake2
	if !q2 {
		if i := strings.LastIndexByte(name, '/'); i >= 0 {
			name = name[i+1:]
		}
		for i, tex := range m.Miptex {
			if strings.EqualFold(name, tex.Name) {
				return i
			}
		}
	} else {
		for i, tex := range m.Miptex {
			if strings.EqualFold(name, tex.Name) &&
				tex.Flags == flags && tex.Value == value {
				return i
			}
		}
	}

	i := len(m.Miptex)
	m.Miptex = append(m.Miptex, Miptex{Name: name, Flags: flags, Value: value})
	if !q2 && strings.HasPrefix(name, "+") && len(name) > 2 {
		m.addAnimTex(name)
	}
	return i
}

// addAnimTex registers the lower numbered frames of an animating
// texture so their pool slots exist even when only one frame appears
// in the map.
func (m *MapData) addAnimTex(name string) {
	frame := name[1]
	basechar := byte('0')
	switch {
	case frame >= 'a' && frame <= 'j':
		frame -= 'a' - 'A'
		basechar = 'A'
	case frame >= 'A' && frame <= 'J':
		basechar = 'A'
	case frame >= '0' && frame <= '9':
	default:
		return
	}
	last := frame - basechar

	base := []byte(name)
	for i := byte(0); i <= last; i++ {
		base[1] = basechar + i
		m.findMiptex(string(base), 0, 0)
	}
}
