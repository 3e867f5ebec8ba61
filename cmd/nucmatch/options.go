package main

import (
	"sort"

	"github.com/cladebio/nucmatch/cluster"
	"github.com/cladebio/nucmatch/extend"
	"github.com/cladebio/nucmatch/format"
	"github.com/cladebio/nucmatch/match"
	"github.com/cladebio/nucmatch/nucerr"
	"github.com/cladebio/nucmatch/pipeline"
)

// sampleRate is the sparse suffix array's sampling rate k. spec.md section
// 6 does not expose k on the CLI surface -- only the minmatch/k
// relationship ("-l/--minmatch N, must satisfy N >= k") -- so k is a fixed
// internal constant rather than a flag.
const sampleRate = 4

// options is the fully validated, typed configuration run derives its
// behavior from, built once out of the flat nucmatchFlags the CLI parses
// into.
type options struct {
	refPath, queryPath string

	pipeline pipeline.Params

	savePath string
	loadPath string
	large    bool

	prefix       string
	deltaPath    string
	samShortPath string
	samLongPath  string
	format       string

	genome   bool
	maxChunk int
	batch    int
	stats    bool
}

// validate turns the raw flags and positional arguments into options,
// enforcing spec.md section 7's Usage rules ("-l < k", contradictory
// output flags, etc). set records which flag names were explicitly passed
// on the command line, distinguishing an explicit choice from a flag's
// zero-value default.
func validate(f nucmatchFlags, set map[string]bool, args []string) (*options, error) {
	if len(args) != 2 {
		return nil, nucerr.Usagef("expected exactly 2 positional arguments (<reference.fa> <query.fa>), got %d", len(args))
	}

	policy, err := resolvePolicy(f, set)
	if err != nil {
		return nil, err
	}

	if f.minMatch < sampleRate {
		return nil, nucerr.Usagef("-l/--minmatch (%d) must be >= the suffix array sampling rate (%d)", f.minMatch, sampleRate)
	}

	if f.forward && f.reverse {
		return nil, nucerr.Usagef("-f/--forward and -r/--reverse are mutually exclusive; omit both to search both strands")
	}

	switch f.format {
	case "default", "delta", "paf", "sam":
	default:
		return nil, nucerr.Usagef("-format must be one of default, delta, paf, sam; got %q", f.format)
	}
	explicitPath := f.deltaPath != "" || f.samShortPath != "" || f.samLongPath != ""
	if f.format != "default" && explicitPath {
		return nil, nucerr.Usagef("-format is contradictory with an explicit --delta/--sam-short/--sam-long path; use one or the other")
	}

	if f.savePath != "" && f.loadPath != "" {
		return nil, nucerr.Usagef("--save and --load are contradictory; an index is either built or loaded, not both")
	}

	opts := &options{
		refPath:   args[0],
		queryPath: args[1],
		pipeline: pipeline.Params{
			Threads:     f.threads,
			Policy:      policy,
			MinMatch:    f.minMatch,
			Reverse:     !f.forward,
			SkipForward: f.reverse && !f.forward,
			Cluster: cluster.Params{
				MaxGap:     f.maxGap,
				DiagDiff:   f.diagDiff,
				DiagFactor: f.diagFactor,
				MinMatch:   f.minMatch,
				MinCluster: f.minCluster,
				NoSimplify: f.noSimplify,
			},
			Extend: extend.Params{
				BreakLen:   f.breakLen,
				MinCluster: f.minCluster,
				DiagDiff:   f.diagDiff,
				DiagFactor: f.diagFactor,
				Banded:     f.banded,
				MinAlign:   f.minAlign,
				NoOptimize: f.noOptimize,
				NoExtend:   f.noExtend,
			},
		},
		savePath:     f.savePath,
		loadPath:     f.loadPath,
		large:        f.large,
		prefix:       f.prefix,
		deltaPath:    f.deltaPath,
		samShortPath: f.samShortPath,
		samLongPath:  f.samLongPath,
		format:       f.format,
		genome:       f.genome,
		maxChunk:     f.maxChunk,
		batch:        f.batch,
		stats:        f.stats,
	}
	return opts, nil
}

// resolvePolicy maps the four policy flags to a match.Policy, rejecting
// combinations of explicitly-set flags that disagree (spec.md section 6:
// "-mum | -mumreference (default) | -mumcand (alias) | -maxmatch").
// -mumreference's flag default is true, so it is excluded from the
// explicit-conflict check unless the caller actually passed it.
func resolvePolicy(f nucmatchFlags, set map[string]bool) (match.Policy, error) {
	explicit := map[string]match.Policy{}
	if set["mum"] {
		explicit["mum"] = match.MUM
	}
	if set["mumreference"] {
		explicit["mumreference"] = match.MAM
	}
	if set["mumcand"] {
		explicit["mumcand"] = match.MAM
	}
	if set["maxmatch"] {
		explicit["maxmatch"] = match.MEM
	}
	if len(explicit) == 0 {
		return match.MAM, nil // -mumreference's documented default
	}
	names := make([]string, 0, len(explicit))
	for name := range explicit {
		names = append(names, name)
	}
	sort.Strings(names)
	want := explicit[names[0]]
	for _, name := range names[1:] {
		if explicit[name] != want {
			return 0, nucerr.Usagef("contradictory policy flags: %v", names)
		}
	}
	return want, nil
}

// resolveCodec maps -large to the index persistence codec, per spec.md
// section 6's --save/--load option and SPEC_FULL.md's gzip-for-large-index
// wiring.
func resolveCodec(large bool) format.Codec {
	if large {
		return format.CodecGzip
	}
	return format.CodecNone
}
