// Command genscenario writes a scenario YAML file that the service and the
// validate command can load. It uses the actual scenario package so the
// generated file always round-trips through Load and Build.
//
// Usage:
//
//	go run ./cmd/genscenario -out scenarios/default.yaml
//	go run ./cmd/genscenario -out scenarios/warm-start.yaml -polar-temp 220 -ice-fraction 0.4
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/tharsis-sim/marsclim/internal/scenario"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	out := flag.String("out", "", "output path for the scenario YAML")
	name := flag.String("name", "", "scenario name (default: keep the built-in name)")
	polarTemp := flag.Float64("polar-temp", 0, "override polar surface temperature in K (0 = keep default)")
	iceFraction := flag.Float64("ice-fraction", -1, "override polar ice fraction (negative = keep default)")
	flag.Parse()

	if *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flag: -out")
	}

	scn := scenario.Default()
	if *name != "" {
		scn.Name = *name
	}
	for i := range scn.Regions {
		kind := scn.Regions[i].Kind
		if kind != "north_pole" && kind != "south_pole" {
			continue
		}
		if *polarTemp > 0 {
			scn.Regions[i].SurfaceTemperatureK = *polarTemp
		}
		if *iceFraction >= 0 {
			scn.Regions[i].IceFraction = *iceFraction
		}
	}

	// Reject unbuildable output before writing anything.
	if _, err := scn.Build(); err != nil {
		return fmt.Errorf("generated scenario is invalid: %w", err)
	}

	data, err := yaml.Marshal(scn)
	if err != nil {
		return fmt.Errorf("marshal scenario: %w", err)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", *out, err)
	}

	fmt.Printf("Wrote %s (%d regions)\n", *out, len(scn.Regions))
	return nil
}
