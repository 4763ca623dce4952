// Package main provides a CLI tool for validating schema and overlay documents
// before they are deployed to a care planner server.
package main

import (
	"flag"
	"fmt"
	"os"

	"careplan/internal/models"
	"careplan/internal/services/schema"
)

func main() {
	basePath := flag.String("base", "data/schemas/base.json", "Path to the base schema document")
	overlayPath := flag.String("overlay", "", "Path to an overlay document (optional)")
	verbose := flag.Bool("v", false, "Verbose output")
	flag.Parse()

	base, err := loadBase(*basePath)
	if err != nil {
		fmt.Printf("FAIL base schema %s\n", *basePath)
		fmt.Printf("     %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("PASS base schema %s (%d groups)\n", *basePath, len(base.Groups))

	var overlay *models.Overlay
	if *overlayPath != "" {
		overlay, err = loadOverlay(*overlayPath)
		if err != nil {
			fmt.Printf("FAIL overlay %s\n", *overlayPath)
			fmt.Printf("     %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("PASS overlay %s (%d directives)\n", *overlayPath, len(overlay.Directives))
	}

	resolved, err := schema.Resolve(base, overlay)
	if err != nil {
		fmt.Printf("FAIL resolve\n")
		fmt.Printf("     %v\n", err)
		os.Exit(1)
	}

	fields := resolved.Fields()
	fmt.Printf("PASS resolve (%d groups, %d fields)\n", len(resolved.Groups), len(fields))

	if *verbose {
		fmt.Println()
		for _, g := range resolved.Groups {
			fmt.Printf("  %s (%d fields)\n", g.Name, len(g.Fields))
			for _, f := range g.Fields {
				fmt.Printf("    %-28s %s\n", f.Key, f.Type)
			}
		}
		fmt.Println()
		fmt.Printf("  state multipliers: %d\n", len(resolved.Lookups.StateMultipliers))
		fmt.Printf("  hourly rate breakpoints: %d\n", len(resolved.Lookups.InHomeHourly))
		fmt.Printf("  projection horizon: %d months\n", resolved.Settings.HorizonMonths)
	}
}

func loadBase(path string) (*models.Schema, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return schema.Parse(data)
}

func loadOverlay(path string) (*models.Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return schema.ParseOverlay(data)
}
