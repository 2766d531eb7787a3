// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"bytes"
	"io"
	"log/slog"
	"os"

	"gobsp/bsp"
	"gobsp/bspfile"
	"gobsp/commandline"
	"gobsp/mapfile"
)

func main() {
	run, err := commandline.Parse(os.Args[1:])
	if err != nil {
		slog.Error("bad invocation", "err", err)
		os.Exit(2)
	}

	level := slog.LevelInfo
	if run.Opts.Verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr,
		&slog.HandlerOptions{Level: level})))

	if err := compile(run); err != nil {
		slog.Error("compile failed", "map", run.MapFile, "err", err)
		os.Exit(1)
	}
}

// compile runs the pipeline and writes files only once it succeeded.
func compile(run *commandline.Run) error {
	src, err := os.ReadFile(run.MapFile)
	if err != nil {
		return err
	}

	md, err := mapfile.LoadMapText(string(src), run.Opts.Game)
	if err != nil {
		return err
	}

	var prt *bytes.Buffer
	var prtw io.Writer
	if !run.NoPRT {
		prt = &bytes.Buffer{}
		prtw = prt
	}

	res, err := bsp.Compile(md, run.Opts, prtw)
	if err != nil {
		return err
	}

	bspOut, err := os.Create(run.BSPFile)
	if err != nil {
		return err
	}
	format, err := bspfile.Write(bspOut, res.BSP, bspfile.FormatAuto)
	if err != nil {
		bspOut.Close()
		return err
	}
	if err := bspOut.Close(); err != nil {
		return err
	}
	slog.Info("wrote bsp", "file", run.BSPFile, "format", formatName(format))

	if prt != nil {
		if err := os.WriteFile(run.PRTFile, prt.Bytes(), 0o644); err != nil {
			return err
		}
		slog.Info("wrote portal file", "file", run.PRTFile)
	}

	if bspfile.NeedsTexInfoSidecar(res.TexFlags) {
		side, err := os.Create(run.SidecarFile)
		if err != nil {
			return err
		}
		if err := bspfile.WriteTexInfoSidecar(side, res.TexFlags); err != nil {
			side.Close()
			return err
		}
		if err := side.Close(); err != nil {
			return err
		}
		slog.Info("wrote texinfo sidecar", "file", run.SidecarFile)
	}
	return nil
}

func formatName(f bspfile.Format) string {
	if f == bspfile.Format2 {
		return "bsp2"
	}
	return "bsp29"
}
