// SPDX-License-Identifier: GPL-2.0-or-later

package bsp

import "github.com/pkg/errors"

var (
	// ErrMixedContents reports a brush whose sides disagree on contents.
	ErrMixedContents = errors.New("mixed face contents in brush")

	// ErrTooDeep reports a tree that exceeded the recursion limit,
	// usually a sign of degenerate input geometry.
	ErrTooDeep = errors.New("bsp tree too deep")

	// ErrHullOverflow reports a brush that exceeded the fixed hull
	// expansion tables.
	ErrHullOverflow = errors.New("hull expansion overflow")

	// ErrPortalDegenerate reports a portal winding clipped away
	// entirely during portalization.
	ErrPortalDegenerate = errors.New("degenerate portal")

	// ErrLimitExceeded reports a lump that no supported output format
	// can hold.
	ErrLimitExceeded = errors.New("format limit exceeded")
)
