// SPDX-License-Identifier: GPL-2.0-or-later

package mapfile

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"gobsp/game"
	"gobsp/math/vec"
)

type brushFormat int

const (
	brushNormal brushFormat = iota
	brushPrimitives
)

type texCoordStyle int

const (
	texQuakeEd texCoordStyle = iota
	texValve220
	texBrushPrim
)

// extTexInfo is the optional Quake 2 per face triple.
type extTexInfo struct {
	present  bool
	contents int32
	flags    int32
	value    int32
}

// LoadMapText parses complete .map source text.
func LoadMapText(data string, g game.Game) (*MapData, error) {
	m := NewMapData(g)
	t := newTokenizer(data)
	for {
		e, err := m.parseEntity(t)
		if err != nil {
			return nil, err
		}
		if e == nil {
			break
		}
		m.Entities = append(m.Entities, e)
	}
	if len(m.Entities) == 0 {
		return nil, errors.Wrap(ErrSyntax, "no entities")
	}
	if m.World().Classname() != "worldspawn" {
		return nil, errors.Wrapf(ErrSyntax,
			"first entity is %q, worldspawn required", m.World().Classname())
	}
	return m, nil
}

func (m *MapData) parseEntity(t *tokenizer) (*Entity, error) {
	ok, err := t.next(parseNormal | parseOptional)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	if t.token != "{" {
		return nil, errors.Wrapf(ErrSyntax, "line %d: entity start { not found", t.line)
	}

	e := NewEntity()
	e.LineNum = t.line
	for {
		if _, err := t.next(parseNormal); err != nil {
			return nil, errors.Wrap(err, "entity without closing brace")
		}
		if t.token == "}" {
			break
		}
		if t.token == "{" {
			b, err := m.parseBrush(t, e)
			if err != nil {
				return nil, err
			}
			e.Brushes = append(e.Brushes, b)
			continue
		}
		if err := m.parseEpair(t, e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func (m *MapData) parseEpair(t *tokenizer, e *Entity) error {
	key := t.token
	if _, err := t.next(parseSameLine); err != nil {
		return errors.Wrapf(err, "key %q without value", key)
	}
	e.SetKeyValue(key, t.token)
	return nil
}

func (m *MapData) parseBrush(t *tokenizer, e *Entity) (*MapBrush, error) {
	b := &MapBrush{LineNum: t.line}

	format := brushNormal
	if _, err := t.next(parseNormal | parsePeek); err != nil {
		return nil, errors.Wrap(err, "unexpected end of file after { beginning brush")
	}
	if t.token != "(" {
		format = brushPrimitives
		if _, err := t.next(parseNormal); err != nil {
			return nil, err
		}
		if t.token == "brushDef" {
			if _, err := t.next(parseNormal); err != nil {
				return nil, err
			}
		}
		if t.token != "{" {
			return nil, errors.Wrapf(ErrSyntax,
				"line %d: expected second { at beginning of brush, got %q", t.line, t.token)
		}
	}

	for {
		if _, err := t.next(parseNormal); err != nil {
			return nil, err
		}
		if t.token == "}" {
			break
		}

		face, err := m.parseBrushFace(t, format, e)
		if err != nil {
			return nil, err
		}
		if face == nil {
			continue
		}

		if m.Game.ID() == game.Quake2 {
			fixupQuake2Face(face)
		}

		discard := false
		for i := range b.Faces {
			check := &b.Faces[i]
			if check.Plane.EpsilonEqual(face.Plane) {
				slog.Warn("brush with duplicate plane", "line", t.line)
				discard = true
			} else if check.Plane.Flip().EpsilonEqual(face.Plane) {
				slog.Warn("brush with duplicate plane", "line", t.line)
			}
		}
		if discard {
			continue
		}
		b.Faces = append(b.Faces, *face)
	}

	if format == brushPrimitives {
		if err := t.expect("}", parseNormal); err != nil {
			return nil, errors.Wrap(err, "brush primitives without closing brace")
		}
	}
	return b, nil
}

// fixupQuake2Face applies the legacy content corrections: translucent
// and clip faces become detail, contentless faces become solid, hint
// and skip faces lose their contents.
func fixupQuake2Face(face *MapFace) {
	if face.Flags.Native&(game.Q2_SURF_TRANS33|game.Q2_SURF_TRANS66) != 0 ||
		face.Contents&(game.Q2_CONTENTS_PLAYERCLIP|game.Q2_CONTENTS_MONSTERCLIP) != 0 {
		face.Contents |= game.Q2_CONTENTS_DETAIL
	}
	visible := int32(game.Q2_LAST_VISIBLE_CONTENTS<<1) - 1
	if face.Contents&(visible|game.Q2_CONTENTS_PLAYERCLIP|game.Q2_CONTENTS_MONSTERCLIP) == 0 {
		face.Contents |= game.Q2_CONTENTS_SOLID
	}
	if face.Flags.Native&(game.Q2_SURF_HINT|game.Q2_SURF_SKIP) != 0 {
		face.Contents = 0
	}
}

func (m *MapData) parseBrushFace(t *tokenizer, format brushFormat, e *Entity) (*MapFace, error) {
	face := &MapFace{LineNum: t.line}

	var texMat [2][3]float64
	var err error
	if format == brushPrimitives {
		texMat, err = parseBrushPrimTX(t)
		if err != nil {
			return nil, err
		}
	}

	pts, err := parsePlaneDef(t, format)
	if err != nil {
		return nil, err
	}
	face.PlanePts = pts

	plane, normalOK := PlaneFromPoints(pts)
	face.Plane = plane

	tx, err := m.parseTextureDef(t, face, format, texMat, normalOK)
	if err != nil {
		return nil, err
	}

	if !normalOK {
		slog.Warn("brush plane with no normal", "line", t.line)
		return nil, nil
	}

	// Round texture vectors that sit within ZeroEpsilon of integers.
	// Engines computing surface extents in 32 bit precision get
	// corrupted lightmap sizes otherwise.
	roundTexVecs(&tx.Vecs)

	m.validateTextureProjection(face, tx)

	tx.Flags = m.surfFlagsForEntity(tx, face.TexName, e)
	face.Flags = tx.Flags
	face.Texinfo = m.FindTexinfo(*tx)
	return face, nil
}

// validateTextureProjection repairs projections whose texture plane is
// perpendicular to the face by resetting to the default projection.
func (m *MapData) validateTextureProjection(face *MapFace, tx *TexInfo) {
	if ValidTextureProjection(face.Plane.Normal, tx.Vecs) {
		return
	}
	slog.Warn("repairing invalid texture projection",
		"line", face.LineNum, "texture", face.TexName,
		"near", face.PlanePts[0])
	tx.Vecs = TexVecsQuakeEd(face.Plane, [2]float64{0, 0}, 0, [2]float64{1, 1})
}

func (m *MapData) surfFlagsForEntity(tx *TexInfo, texname string, e *Entity) SurfFlags {
	var flags SurfFlags
	if m.Game.ID() != game.Quake2 {
		if IsSkipName(texname) {
			flags.Extended |= game.TexExSkip
		}
		if IsHintName(texname) {
			flags.Extended |= game.TexExHint
		}
		if IsSpecialName(texname) {
			flags.Native |= game.TexSpecial
		}
	} else {
		flags.Native = tx.Flags.Native

		// Some old maps carry SKY|NODRAW together, drop the NODRAW.
		if flags.Native&(game.Q2_SURF_SKY|game.Q2_SURF_NODRAW) ==
			game.Q2_SURF_SKY|game.Q2_SURF_NODRAW {
			flags.Native &^= game.Q2_SURF_NODRAW
		}

		if flags.Native&game.Q2_SURF_NODRAW != 0 || IsSkipName(texname) {
			flags.Extended |= game.TexExSkip
		}
		if flags.Native&game.Q2_SURF_HINT != 0 || IsHintName(texname) {
			flags.Extended |= game.TexExHint
		}
	}
	if IsNoExpandName(texname) {
		flags.Extended |= game.TexExNoExpand
	}
	return flags
}

func (m *MapData) parseTextureDef(t *tokenizer, face *MapFace, format brushFormat,
	texMat [2][3]float64, normalOK bool) (*TexInfo, error) {

	tx := &TexInfo{}
	style := texQuakeEd
	var axis [2]vec.Vec3
	var shift, scale [2]float64
	var rotate float64
	var ext extTexInfo
	var err error

	if format == brushPrimitives {
		if _, err := t.next(parseSameLine); err != nil {
			return nil, err
		}
		face.TexName = t.token
		style = texBrushPrim
		if ext, err = parseExtendedTX(t); err != nil {
			return nil, err
		}
	} else {
		if _, err := t.next(parseSameLine); err != nil {
			return nil, err
		}
		face.TexName = t.token

		ok, err := t.next(parseSameLine | parsePeek | parseOptional)
		if err != nil {
			return nil, err
		}
		if ok && t.token == "[" {
			style = texValve220
			axis, shift, rotate, scale, err = parseValve220TX(t)
			if err != nil {
				return nil, err
			}
		} else {
			var fields [5]float64
			for i := range fields {
				if _, err := t.next(parseSameLine); err != nil {
					return nil, errors.Wrapf(err, "line %d: texture definition", t.line)
				}
				if fields[i], err = strconv.ParseFloat(t.token, 64); err != nil {
					return nil, errors.Wrapf(ErrSyntax,
						"line %d: bad texture field %q", t.line, t.token)
				}
			}
			shift = [2]float64{fields[0], fields[1]}
			rotate = fields[2]
			scale = [2]float64{fields[3], fields[4]}
		}
		if ext, err = parseExtendedTX(t); err != nil {
			return nil, err
		}
	}

	// A Quake 2 triple on a non Quake 2 map is dropped so the map
	// still compiles.
	if m.Game.ID() != game.Quake2 {
		ext = extTexInfo{}
	}

	tx.Miptex = m.FindMiptex(face.TexName, ext.flags, ext.value)
	face.Contents = ext.contents
	tx.Flags = SurfFlags{Native: ext.flags}
	tx.Value = ext.value
	face.Value = ext.value

	if !normalOK {
		return tx, nil
	}

	switch style {
	case texValve220:
		tx.Vecs = TexVecsValve220(axis, shift, scale)
	case texBrushPrim:
		tx.Vecs = TexVecsBrushPrimitives(texMat, face.Plane.Normal, 64, 64)
	default:
		tx.Vecs = TexVecsQuakeEd(face.Plane, shift, rotate, scale)
	}
	return tx, nil
}

func parsePlaneDef(t *tokenizer, format brushFormat) ([3]vec.Vec3, error) {
	var pts [3]vec.Vec3
	for i := 0; i < 3; i++ {
		if i == 0 && format == brushNormal {
			// parseBrush has already read the first token of the face
			if t.token != "(" {
				return pts, errors.Wrapf(ErrSyntax,
					"line %d: invalid brush plane format", t.line)
			}
		} else if err := t.expect("(", parseSameLine); err != nil {
			return pts, errors.Wrapf(err, "line %d: invalid brush plane format", t.line)
		}
		for j := 0; j < 3; j++ {
			if _, err := t.next(parseSameLine); err != nil {
				return pts, err
			}
			v, err := strconv.ParseFloat(t.token, 64)
			if err != nil {
				return pts, errors.Wrapf(ErrSyntax,
					"line %d: bad plane coordinate %q", t.line, t.token)
			}
			pts[i].SetIdx(j, v)
		}
		if err := t.expect(")", parseSameLine); err != nil {
			return pts, errors.Wrapf(err, "line %d: invalid brush plane format", t.line)
		}
	}
	return pts, nil
}

func parseValve220TX(t *tokenizer) (axis [2]vec.Vec3, shift [2]float64, rotate float64, scale [2]float64, err error) {
	for i := 0; i < 2; i++ {
		if err = t.expect("[", parseSameLine); err != nil {
			return
		}
		for j := 0; j < 3; j++ {
			if _, err = t.next(parseSameLine); err != nil {
				return
			}
			var v float64
			if v, err = strconv.ParseFloat(t.token, 64); err != nil {
				err = errors.Wrapf(ErrSyntax, "line %d: bad texture axis %q", t.line, t.token)
				return
			}
			axis[i].SetIdx(j, v)
		}
		if _, err = t.next(parseSameLine); err != nil {
			return
		}
		if shift[i], err = strconv.ParseFloat(t.token, 64); err != nil {
			err = errors.Wrapf(ErrSyntax, "line %d: bad texture shift %q", t.line, t.token)
			return
		}
		if err = t.expect("]", parseSameLine); err != nil {
			return
		}
	}
	if rotate, err = parseFloatToken(t); err != nil {
		return
	}
	if scale[0], err = parseFloatToken(t); err != nil {
		return
	}
	scale[1], err = parseFloatToken(t)
	return
}

func parseBrushPrimTX(t *tokenizer) ([2][3]float64, error) {
	var texMat [2][3]float64
	if err := t.expect("(", parseSameLine); err != nil {
		return texMat, err
	}
	for i := 0; i < 2; i++ {
		if err := t.expect("(", parseSameLine); err != nil {
			return texMat, err
		}
		for j := 0; j < 3; j++ {
			v, err := parseFloatToken(t)
			if err != nil {
				return texMat, err
			}
			texMat[i][j] = v
		}
		if err := t.expect(")", parseSameLine); err != nil {
			return texMat, err
		}
	}
	if err := t.expect(")", parseSameLine); err != nil {
		return texMat, err
	}
	return texMat, nil
}

func parseFloatToken(t *tokenizer) (float64, error) {
	if _, err := t.next(parseSameLine); err != nil {
		return 0, err
	}
	v, err := strconv.ParseFloat(t.token, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrSyntax, "line %d: expected number, got %q", t.line, t.token)
	}
	return v, nil
}

// parseExtendedTX reads the optional Quake 2 contents, flags and value
// triple, plus the QuArK comment marker some editors leave behind.
func parseExtendedTX(t *tokenizer) (extTexInfo, error) {
	var ext extTexInfo

	ok, err := t.next(parseSameLine | parseComment | parseOptional | parsePeek)
	if err != nil || !ok {
		return ext, err
	}
	if strings.HasPrefix(t.token, "//") {
		return ext, nil
	}

	for i := 0; i < 3; i++ {
		ok, err := t.next(parseSameLine | parseOptional)
		if err != nil {
			return ext, err
		}
		if !ok {
			return ext, nil
		}
		v, err := strconv.ParseInt(t.token, 10, 32)
		if err != nil {
			return ext, errors.Wrapf(ErrSyntax,
				"line %d: bad extended texture field %q", t.line, t.token)
		}
		ext.present = true
		switch i {
		case 0:
			ext.contents = int32(v)
		case 1:
			ext.flags = int32(v)
		case 2:
			ext.value = int32(v)
		}
	}
	return ext, nil
}
