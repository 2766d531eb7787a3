// SPDX-License-Identifier: GPL-2.0-or-later

package winding

import (
	"github.com/pkg/errors"
)

var (
	ErrTooFewPoints  = errors.New("winding has fewer than 3 points")
	ErrTooManyPoints = errors.New("winding exceeds point limit")
	ErrOffPlane      = errors.New("winding point off plane")
	ErrShortEdge     = errors.New("winding edge too short")
	ErrConcave       = errors.New("winding is not convex")
)
