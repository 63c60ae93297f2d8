package main

import (
	"fmt"
	"os"
	"sort"

	"tilemask/internal/maps"
	"tilemask/internal/report"
	"tilemask/internal/rules"
	"tilemask/internal/world"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "validate":
		if len(args) < 1 || len(args) > 2 {
			fmt.Fprintln(os.Stderr, "Usage: maptools validate <maps-dir> [rules-dir]")
			os.Exit(1)
		}
		os.Exit(runValidate(args[0], optional(args, 1)))
	case "variants", "masks", "kinds":
		if len(args) < 1 || len(args) > 2 {
			fmt.Fprintf(os.Stderr, "Usage: maptools %s <map-file> [rules-dir]\n", cmd)
			os.Exit(1)
		}
		os.Exit(runGrid(cmd, args[0], optional(args, 1)))
	case "rules":
		if len(args) > 1 {
			fmt.Fprintln(os.Stderr, "Usage: maptools rules [rules-dir]")
			os.Exit(1)
		}
		os.Exit(runRules(optional(args, 0)))
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintln(os.Stderr, `Usage: maptools <command> <path> [rules-dir]

Commands:
  validate <maps-dir>   Check every map's kinds against the rule tables
  variants <map-file>   Print the variant index of each cell
  masks    <map-file>   Print the neighbor mask of each cell
  kinds    <map-file>   Print the tile kind of each cell
  rules    [rules-dir]  Print every rule table`)
}

func optional(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// --- validate ---

func runValidate(dir, rulesDir string) int {
	reg, err := rules.LoadDir(rulesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}
	allMaps, err := maps.LoadMaps(dir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FAIL: %v\n", err)
		return 1
	}

	names := make([]string, 0, len(allMaps))
	for name := range allMaps {
		names = append(names, name)
	}
	sort.Strings(names)

	errors := 0
	for _, name := range names {
		m := allMaps[name]
		fmt.Printf("Validating %q...\n", name)
		found := 0

		for kind, def := range m.Kinds {
			rt, err := reg.Get(def.Rules)
			if err != nil {
				fmt.Printf("  ERROR: kind %q: %v\n", kind, err)
				found++
				continue
			}
			if len(def.Sprites) == 0 {
				fmt.Printf("  WARN: kind %q has no sprites; its cells are never tiled\n", kind)
			} else if len(def.Sprites) < rt.Variants() {
				fmt.Printf("  WARN: kind %q has %d sprites, rule table %q has %d variants\n",
					kind, len(def.Sprites), rt.Name(), rt.Variants())
			}
		}

		errors += found
		if found == 0 {
			fmt.Printf("  OK (%dx%d, %d kinds)\n", m.Width, m.Height, len(m.Kinds))
		}
	}

	if errors > 0 {
		fmt.Printf("\n%d error(s) found\n", errors)
		return 1
	}
	fmt.Printf("\nAll %d maps valid\n", len(allMaps))
	return 0
}

// --- variants / masks / kinds ---

func runGrid(cmd, path, rulesDir string) int {
	reg, err := rules.LoadDir(rulesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	m, err := maps.LoadMap(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	w, err := world.New(map[string]*maps.Map{m.Name: m}, reg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	snap, err := w.Snapshot(m.Name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	switch cmd {
	case "variants":
		err = report.WriteVariants(os.Stdout, snap)
	case "masks":
		err = report.WriteMasks(os.Stdout, snap)
	default:
		err = report.WriteKinds(os.Stdout, snap)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// --- rules ---

func runRules(rulesDir string) int {
	reg, err := rules.LoadDir(rulesDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	for i, name := range reg.Names() {
		if i > 0 {
			fmt.Println()
		}
		if err := report.WriteRules(os.Stdout, reg.MustGet(name)); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}
	return 0
}
