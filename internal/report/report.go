// Package report writes plain-text views of tilemaps and rule tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/mattn/go-runewidth"

	"tilemask/internal/autotile"
	"tilemask/internal/world"
)

// Empty and untiled cells are drawn with these markers.
const (
	markEmpty   = "."
	markUntiled = "-"
)

// WriteVariants prints the variant index of every cell, rows top to bottom.
func WriteVariants(w io.Writer, snap world.Snapshot) error {
	return writeGrid(w, snap, func(c world.Cell) string {
		switch {
		case c.Kind == "":
			return markEmpty
		case !c.Tiled:
			return markUntiled
		}
		return strconv.Itoa(int(c.Variant))
	})
}

// WriteMasks prints the neighbor mask of every cell, rows top to bottom.
func WriteMasks(w io.Writer, snap world.Snapshot) error {
	return writeGrid(w, snap, func(c world.Cell) string {
		if c.Kind == "" {
			return markEmpty
		}
		return strconv.Itoa(int(c.Mask))
	})
}

// WriteKinds prints the kind at every cell, rows top to bottom.
func WriteKinds(w io.Writer, snap world.Snapshot) error {
	return writeGrid(w, snap, func(c world.Cell) string {
		if c.Kind == "" {
			return markEmpty
		}
		return string(c.Kind)
	})
}

func writeGrid(w io.Writer, snap world.Snapshot, label func(world.Cell) string) error {
	labels := make([][]string, len(snap.Cells))
	width := 1
	for r, row := range snap.Cells {
		labels[r] = make([]string, len(row))
		for x, c := range row {
			s := label(c)
			labels[r][x] = s
			if sw := runewidth.StringWidth(s); sw > width {
				width = sw
			}
		}
	}

	if _, err := fmt.Fprintf(w, "%s (%dx%d)\n", snap.Name, snap.Width, snap.Height); err != nil {
		return err
	}
	for _, row := range labels {
		var b strings.Builder
		for x, s := range row {
			if x > 0 {
				b.WriteByte(' ')
			}
			b.WriteString(runewidth.FillLeft(s, width))
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// WriteRules prints a rule table's entries in their configured order.
func WriteRules(w io.Writer, t *autotile.RuleTable) error {
	if _, err := fmt.Fprintf(w, "%s: %d variants, normalize=%s\n", t.Name(), t.Variants(), t.Normalize()); err != nil {
		return err
	}
	const dirsWidth = 24
	for _, r := range t.Rules() {
		dirs := r.Mask.String()
		line := fmt.Sprintf("  %3d  %s -> %d\n", r.Mask, runewidth.FillRight(dirs, dirsWidth), r.Variant)
		if _, err := io.WriteString(w, line); err != nil {
			return err
		}
	}
	return nil
}
