// SPDX-License-Identifier: GPL-2.0-or-later

package main

import (
	"fmt"

	"github.com/datawire/ocibuild/pkg/cliutil"
	"github.com/spf13/cobra"

	"github.com/cachecoh/cachecoh/lib/coherence"
	"github.com/cachecoh/cachecoh/lib/maps"
	"github.com/cachecoh/cachecoh/lib/simlog"
	"github.com/cachecoh/cachecoh/lib/simrun"
	"github.com/cachecoh/cachecoh/lib/slices"
	"github.com/cachecoh/cachecoh/lib/trace"
)

func init() {
	var (
		cacheSize     uint64
		blockSize     uint64
		associativity uint64
		policyName    string
		numAccesses   uint64
		addressRange  uint64
		seed          uint64
		core          int
	)

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Run a short warm-up trace and print one core's set occupancy",

		Args: cliutil.WrapPositionalArgs(cobra.NoArgs),

		RunE: func(cmd *cobra.Command, args []string) error {
			policy, err := parsePolicy(policyName)
			if err != nil {
				return err
			}

			cfg, err := coherence.NewCacheConfig(cacheSize, blockSize, associativity, policy)
			if err != nil {
				return err
			}

			gen := trace.NewGenerator(trace.Config{
				Pattern:          trace.Localized,
				AddressRange:     addressRange,
				BlockSize:        blockSize,
				WorkingSetSize:   cacheSize,
				WorkingSetPeriod: numAccesses,
				WriteFraction:    0.25,
			}, seed)

			driver := simrun.NewDriver(cfg, core+1, gen, seed)
			driver.Run(cmd.Context(), numAccesses)

			caches := driver.Caches()
			if core >= len(caches) {
				return fmt.Errorf("--core %d out of range: only %d core(s) configured", core, len(caches))
			}

			occ := caches[core].Occupancy()
			setIndices := maps.SortedKeys(occ)
			slices.Reverse(setIndices) // highest set index first, lowest last

			simlog.Fprintf(cmd.OutOrStdout(), "core=%d sets_occupied=%d/%d\n", core, len(setIndices), cfg.NumSets())
			for _, s := range setIndices {
				simlog.Fprintf(cmd.OutOrStdout(), "  set=%d lines=%d\n", s, occ[s])
			}
			return nil
		},
	}

	cmd.Flags().Uint64Var(&cacheSize, "cache-size", 32768, "total cache size in bytes")
	cmd.Flags().Uint64Var(&blockSize, "block-size", 64, "block size in bytes")
	cmd.Flags().Uint64Var(&associativity, "associativity", 4, "number of ways per set")
	cmd.Flags().StringVar(&policyName, "policy", "lru", "replacement policy: lru or lfu")
	cmd.Flags().Uint64Var(&numAccesses, "accesses", 1000, "number of warm-up accesses to simulate")
	cmd.Flags().Uint64Var(&addressRange, "address-range", 1<<20, "address space size in bytes")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "random seed, for reproducible runs")
	cmd.Flags().IntVar(&core, "core", 0, "which core's cache to inspect")

	commands = append(commands, cmd)
}
