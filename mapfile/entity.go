// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"fmt"
	"log/slog"
	"strings"

	"gobsp/math/vec"
)

// MapFace is one side of a parsed brush. The plane is kept as written,
// pool numbering happens when faces are built.
type MapFace struct {
	Plane    Plane
	PlanePts [3]vec.Vec3

	Texinfo int
	TexName string

	// Flags mirror the texinfo flags, Contents and Value carry the
	// Quake 2 per side values.
	Flags    SurfFlags
	Contents int32
	Value    int32

	LineNum int
}

// MapBrush is a parsed brush, faces in file order minus discarded
// duplicates.
type MapBrush struct {
	Faces   []MapFace
	LineNum int
}

// Entity is one parsed map entity. Epairs keeps insertion order so the
// entity lump writes back in source order.
type Entity struct {
	Epairs    map[string]string
	epairKeys []string

	Brushes []*MapBrush

	// Origin is the offset of brush models that rotate or carry an
	// "origin" key.
	Origin vec.Vec3

	Rotation Rotation

	LineNum int
}

func NewEntity() *Entity {
	return &Entity{Epairs: make(map[string]string)}
}

// SetKeyValue stores a key, preserving the position of an existing one.
func (e *Entity) SetKeyValue(key, value string) {
	if _, ok := e.Epairs[key]; !ok {
		e.epairKeys = append(e.epairKeys, key)
	}
	e.Epairs[key] = value
}

// RemoveKey deletes a key if present.
func (e *Entity) RemoveKey(key string) {
	if _, ok := e.Epairs[key]; !ok {
		return
	}
	delete(e.Epairs, key)
	for i, k := range e.epairKeys {
		if k == key {
			e.epairKeys = append(e.epairKeys[:i], e.epairKeys[i+1:]...)
			break
		}
	}
}

// ValueForKey returns the value for key, empty when absent.
func (e *Entity) ValueForKey(key string) string {
	return e.Epairs[key]
}

func (e *Entity) Classname() string {
	return e.Epairs["classname"]
}

// VectorForKey parses a key as three floats, zeros for missing
// components.
func (e *Entity) VectorForKey(key string) vec.Vec3 {
	var v vec.Vec3
	fmt.Sscanf(e.Epairs[key], "%f %f %f", &v.X, &v.Y, &v.Z)
	return v
}

// FindTargetEntity returns the first entity whose targetname matches.
func (m *MapData) FindTargetEntity(target string) *Entity {
	for _, e := range m.Entities {
		if e.ValueForKey("targetname") == target {
			return e
		}
	}
	return nil
}

// IsWorldBrushEntity reports whether the entity's brushes are folded
// into the world model instead of getting their own.
func IsWorldBrushEntity(e *Entity) bool {
	switch e.Classname() {
	case "func_group", "func_detail", "func_detail_illusionary",
		"func_detail_fence", "func_detail_wall", "func_illusionary_visblocker":
		return true
	}
	return false
}

// FixRotateOrigin computes the origin of a rotate_* entity from its
// matching info_rotate target and writes it back as an origin key.
func (m *MapData) FixRotateOrigin(e *Entity) vec.Vec3 {
	var offset vec.Vec3
	target := e.ValueForKey("target")
	var t *Entity
	if target != "" {
		t = m.FindTargetEntity(target)
	}
	if t != nil {
		offset = t.VectorForKey("origin")
	} else {
		slog.Warn("no target for rotation entity, origin set to zero",
			"classname", e.Classname(), "target", target, "line", e.LineNum)
	}
	e.SetKeyValue("origin", fmt.Sprintf("%d %d %d",
		int(offset.X), int(offset.Y), int(offset.Z)))
	return offset
}

// WriteEntitiesToString serializes the entities back into entity lump
// text. Brush entities folded into the world are dropped.
func (m *MapData) WriteEntitiesToString() string {
	var sb strings.Builder
	for _, e := range m.Entities {
		if len(e.Epairs) == 0 {
			continue
		}
		if IsWorldBrushEntity(e) {
			continue
		}
		sb.WriteString("{\n")
		for _, k := range e.epairKeys {
			fmt.Fprintf(&sb, "\"%s\" \"%s\"\n", k, e.Epairs[k])
		}
		sb.WriteString("}\n")
	}
	return sb.String()
}
