// Command nucmatch aligns a query FASTA against a reference FASTA using
// sparse-suffix-array seeded maximal matches, colinear chaining, and
// banded affine-gap extension, per spec.md sections 1-6.
//
// Usage:
//
//	nucmatch [flags] <reference.fa> <query.fa>
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"

	"github.com/cladebio/nucmatch/nucerr"
)

// nucmatchFlags mirrors bio-fusion/main.go's fusionFlags: one plain field
// per CLI flag, filled in by flag.*Var in main before grail.Init runs.
type nucmatchFlags struct {
	// Policy.
	mum          bool
	mumreference bool
	mumcand      bool
	maxmatch     bool

	// Match.
	minMatch int

	// Cluster.
	breakLen   int
	minCluster int
	diagDiff   int
	diagFactor float64
	maxGap     int
	minAlign   int

	// Processing.
	noExtend   bool
	noOptimize bool
	noSimplify bool
	forward    bool
	reverse    bool

	// Output.
	prefix       string
	deltaPath    string
	samShortPath string
	samLongPath  string
	format       string

	// Index.
	savePath string
	loadPath string

	// Advanced.
	banded   bool
	large    bool
	genome   bool
	maxChunk int
	threads  int
	batch    int
	stats    bool
}

func usage() {
	fmt.Fprint(os.Stderr, `nucmatch aligns a query FASTA against a reference FASTA.

Usage:
  nucmatch [flags] <reference.fa> <query.fa>

Flags:
`)
	flag.PrintDefaults()
}

func main() {
	flag.Usage = usage
	var f nucmatchFlags

	flag.BoolVar(&f.mum, "mum", false, "Use unique matches in both reference and query.")
	flag.BoolVar(&f.mumreference, "mumreference", true, "Use matches unique in the reference (default policy).")
	flag.BoolVar(&f.mumcand, "mumcand", false, "Alias for -mumreference.")
	flag.BoolVar(&f.maxmatch, "maxmatch", false, "Use all maximal matches, regardless of uniqueness.")

	flag.IntVar(&f.minMatch, "l", 20, "Minimum match length.")
	flag.IntVar(&f.minMatch, "minmatch", 20, "Minimum match length.")

	flag.IntVar(&f.breakLen, "b", 200, "Distance to extend alignment poorly scoring region before giving up.")
	flag.IntVar(&f.breakLen, "breaklen", 200, "Distance to extend alignment poorly scoring region before giving up.")
	flag.IntVar(&f.minCluster, "c", 65, "Minimum cluster length.")
	flag.IntVar(&f.minCluster, "mincluster", 65, "Minimum cluster length.")
	flag.IntVar(&f.diagDiff, "D", 5, "Maximum diagonal difference between two adjacent anchors in a cluster.")
	flag.IntVar(&f.diagDiff, "diagdiff", 5, "Maximum diagonal difference between two adjacent anchors in a cluster.")
	flag.Float64Var(&f.diagFactor, "d", 0.12, "Maximum diagonal difference as a fraction of the gap length.")
	flag.Float64Var(&f.diagFactor, "diagfactor", 0.12, "Maximum diagonal difference as a fraction of the gap length.")
	flag.IntVar(&f.maxGap, "g", 90, "Maximum gap between two adjacent anchors in a cluster.")
	flag.IntVar(&f.maxGap, "maxgap", 90, "Maximum gap between two adjacent anchors in a cluster.")
	flag.IntVar(&f.minAlign, "L", 0, "Minimum length of an alignment.")
	flag.IntVar(&f.minAlign, "minalign", 0, "Minimum length of an alignment.")

	flag.BoolVar(&f.noExtend, "noextend", false, "Do not extend alignments outward from their clusters.")
	flag.BoolVar(&f.noOptimize, "nooptimize", false, "Do not trim alignment ends to their highest-scoring span.")
	flag.BoolVar(&f.noSimplify, "nosimplify", false, "Do not remove shadowed (lower-scoring, overlapping) clusters.")
	flag.BoolVar(&f.forward, "f", false, "Search the forward strand only.")
	flag.BoolVar(&f.forward, "forward", false, "Search the forward strand only.")
	flag.BoolVar(&f.reverse, "r", false, "Search the reverse-complement strand only.")
	flag.BoolVar(&f.reverse, "reverse", false, "Search the reverse-complement strand only.")

	flag.StringVar(&f.prefix, "p", "out", "Prefix for default output file names.")
	flag.StringVar(&f.prefix, "prefix", "out", "Prefix for default output file names.")
	flag.StringVar(&f.deltaPath, "delta", "", "Write a nucmer delta file to this path.")
	flag.StringVar(&f.samShortPath, "sam-short", "", "Write a hard-clipped SAM file to this path.")
	flag.StringVar(&f.samLongPath, "sam-long", "", "Write a soft-clipped SAM file to this path.")
	flag.StringVar(&f.format, "format", "default", "Default output format: default, delta, paf, or sam.")

	flag.StringVar(&f.savePath, "save", "", "Persist the built suffix array index to this path.")
	flag.StringVar(&f.loadPath, "load", "", "Load a previously persisted suffix array index from this path, instead of building one.")

	flag.BoolVar(&f.banded, "banded", false, "Use a fixed-width band (diagdiff) instead of a gap-proportional one.")
	flag.BoolVar(&f.large, "large", false, "Memory-map the reference and compress the persisted index, for large genomes.")
	flag.BoolVar(&f.genome, "G", false, "Treat the whole reference as a single chunk, regardless of -M.")
	flag.BoolVar(&f.genome, "genome", false, "Treat the whole reference as a single chunk, regardless of -M.")
	flag.IntVar(&f.maxChunk, "M", 0, "Maximum reference bases per chunk. Accepted but has no effect: the reference is always indexed as one chunk.")
	flag.IntVar(&f.maxChunk, "max-chunk", 0, "Maximum reference bases per chunk. Accepted but has no effect: the reference is always indexed as one chunk.")
	flag.IntVar(&f.threads, "t", 0, "Worker threads (0 selects GOMAXPROCS).")
	flag.IntVar(&f.threads, "threads", 0, "Worker threads (0 selects GOMAXPROCS).")
	flag.IntVar(&f.batch, "batch", 0, "Chunks processed before flushing output. Accepted but has no effect: output is written once, after all queries are aligned.")
	flag.BoolVar(&f.stats, "stats", false, "Report N50/N90 alignment length statistics to stderr.")

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	set := map[string]bool{}
	flag.Visit(func(fl *flag.Flag) { set[fl.Name] = true })

	opts, err := validate(f, set, flag.Args())
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		usage()
		os.Exit(nucerr.KindOf(err).ExitCode())
	}

	if err := run(ctx, opts); err != nil {
		log.Printf("%v", err)
		os.Exit(nucerr.KindOf(err).ExitCode())
	}
	log.Printf("All done")
}
