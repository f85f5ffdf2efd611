// SPDX-License-Identifier: GPL-2.0-or-later

// Package simreport renders coherence statistics as a human-readable
// table or as JSON, the two reporting surfaces the driver contract leaves
// to external collaborators.
package simreport

import (
	"io"
	"text/tabwriter"

	"git.lukeshu.com/go/lowmemjson"

	"github.com/cachecoh/cachecoh/lib/coherence"
	"github.com/cachecoh/cachecoh/lib/simlog"
)

// CoreReport is one core's counters plus its derived rates, in a shape
// meant for encoding rather than for further computation.
type CoreReport struct {
	Core         int     `json:"core"`
	Reads        uint64  `json:"reads"`
	Writes       uint64  `json:"writes"`
	Hits         uint64  `json:"hits"`
	Misses       uint64  `json:"misses"`
	Conflicts    uint64  `json:"conflicts"`
	HitRate      float64 `json:"hit_rate"`
	ConflictRate float64 `json:"conflict_rate"`
}

// Report is the full report: the config that produced it, one CoreReport
// per core, and the aggregate across all cores.
type Report struct {
	CacheSize     uint64       `json:"cache_size"`
	BlockSize     uint64       `json:"block_size"`
	Associativity uint64       `json:"associativity"`
	Policy        string       `json:"policy"`
	Cores         []CoreReport `json:"cores"`
	Aggregate     CoreReport   `json:"aggregate"`
}

func toCoreReport(core int, s coherence.Stats) CoreReport {
	return CoreReport{
		Core:         core,
		Reads:        s.Reads,
		Writes:       s.Writes,
		Hits:         s.Hits,
		Misses:       s.Misses,
		Conflicts:    s.Conflicts,
		HitRate:      s.HitRate(),
		ConflictRate: s.ConflictRate(),
	}
}

// New builds a Report from a cache config and the per-core stats a Driver
// harvested.
func New(cfg coherence.CacheConfig, perCore []coherence.Stats) Report {
	cores := make([]CoreReport, len(perCore))
	for i, s := range perCore {
		cores[i] = toCoreReport(i, s)
	}
	return Report{
		CacheSize:     cfg.CacheSize,
		BlockSize:     cfg.BlockSize,
		Associativity: cfg.Associativity,
		Policy:        cfg.Policy.String(),
		Cores:         cores,
		Aggregate:     toCoreReport(-1, coherence.Aggregate(perCore)),
	}
}

// WriteTable renders r as an aligned, human-readable table.
func WriteTable(w io.Writer, r Report) error {
	simlog.Fprintf(w, "cache_size=%v block_size=%v associativity=%v policy=%s\n\n",
		simlog.IEC(r.CacheSize, "B"), simlog.IEC(r.BlockSize, "B"), r.Associativity, r.Policy)

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = io.WriteString(tw, "CORE\tREADS\tWRITES\tHITS\tMISSES\tHIT RATE\tCONFLICTS\tCONFLICT RATE\n")
	for _, c := range r.Cores {
		writeRow(tw, c)
	}
	writeRow(tw, r.Aggregate)
	return tw.Flush()
}

func writeRow(tw *tabwriter.Writer, c CoreReport) {
	label := "avg"
	if c.Core >= 0 {
		label = simlog.Sprintf("%d", c.Core)
	}
	simlog.Fprintf(tw, "%s\t%v\t%v\t%v\t%v\t%v\t%v\t%v\n",
		label,
		simlog.Humanized(c.Reads),
		simlog.Humanized(c.Writes),
		simlog.Humanized(c.Hits),
		simlog.Humanized(c.Misses),
		simlog.Portion[uint64]{N: c.Hits, D: c.Hits + c.Misses},
		simlog.Humanized(c.Conflicts),
		simlog.Portion[uint64]{N: c.Conflicts, D: c.Hits + c.Misses},
	)
}

// WriteJSON encodes r using the project's low-memory JSON encoder.
func WriteJSON(w io.Writer, r Report) error {
	return lowmemjson.Encode(&lowmemjson.ReEncoder{
		Out:                   w,
		Indent:                "\t",
		ForceTrailingNewlines: true,
	}, r)
}
