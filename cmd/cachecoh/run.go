// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"
	"os"

	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/spf13/cobra"

	"github.com/cachecoh/cachecoh/lib/coherence"
	"github.com/cachecoh/cachecoh/lib/simreport"
	"github.com/cachecoh/cachecoh/lib/simrun"
	"github.com/cachecoh/cachecoh/lib/trace"
)

func init() {
	var (
		cacheSize        uint64
		blockSize        uint64
		associativity    uint64
		policyName       string
		patternName      string
		numAccesses      uint64
		addressRange     uint64
		numCores         int
		workingSetPeriod uint64
		seed             uint64
		writeFraction    float64
		output           string
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a cache-coherence simulation and report its statistics",

		Args: cliutil.WrapPositionalArgs(cobra.NoArgs),

		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := parsePolicy(policyName)
			if err != nil {
				return err
			}
			pattern, err := parsePattern(patternName)
			if err != nil {
				return err
			}

			cfg, err := coherence.NewCacheConfig(cacheSize, blockSize, associativity, policy)
			if err != nil {
				return err
			}

			gen := trace.NewGenerator(trace.Config{
				Pattern:          pattern,
				AddressRange:     addressRange,
				BlockSize:        blockSize,
				WorkingSetSize:   cacheSize,
				WorkingSetPeriod: workingSetPeriod,
				WriteFraction:    writeFraction,
			}, seed)

			driver := simrun.NewDriver(cfg, numCores, gen, seed)
			driver.Run(cmd.Context(), numAccesses)

			report := simreport.New(cfg, driver.Stats())
			switch output {
			case "json":
				return simreport.WriteJSON(os.Stdout, report)
			case "table", "":
				return simreport.WriteTable(os.Stdout, report)
			default:
				return fmt.Errorf("unknown --output %q: must be %q or %q", output, "table", "json")
			}
		},
	}

	cmd.Flags().Uint64Var(&cacheSize, "cache-size", 32768, "total cache size in bytes")
	cmd.Flags().Uint64Var(&blockSize, "block-size", 64, "block size in bytes")
	cmd.Flags().Uint64Var(&associativity, "associativity", 4, "number of ways per set")
	cmd.Flags().StringVar(&policyName, "policy", "lru", "replacement policy: lru or lfu")
	cmd.Flags().StringVar(&patternName, "pattern", "random", "access pattern: random, sequential, or localized")
	cmd.Flags().Uint64Var(&numAccesses, "accesses", 10000, "number of accesses to simulate")
	cmd.Flags().Uint64Var(&addressRange, "address-range", 1<<20, "address space size in bytes")
	cmd.Flags().IntVar(&numCores, "cores", 4, "number of cores (caches) to simulate")
	cmd.Flags().Uint64Var(&workingSetPeriod, "working-set-period", 1000, "accesses per working-set window, for --pattern=localized")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed, for reproducible runs")
	cmd.Flags().Float64Var(&writeFraction, "write-fraction", 0.25, "fraction of accesses that are writes")
	cmd.Flags().StringVar(&output, "output", "table", "report format: table or json")

	commands = append(commands, cmd)
}

func parsePolicy(s string) (coherence.PolicyKind, error) {
	switch s {
	case "lru":
		return coherence.PolicyLRU, nil
	case "lfu":
		return coherence.PolicyLFU, nil
	default:
		return 0, fmt.Errorf("unknown --policy %q: must be %q or %q", s, "lru", "lfu")
	}
}

func parsePattern(s string) (trace.Pattern, error) {
	switch s {
	case "random":
		return trace.Random, nil
	case "sequential":
		return trace.Sequential, nil
	case "localized":
		return trace.Localized, nil
	default:
		return 0, fmt.Errorf("unknown --pattern %q: must be %q, %q, or %q", s, "random", "sequential", "localized")
	}
}
