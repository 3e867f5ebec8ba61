package main

import (
	"context"
	"os"
	"sort"

	"github.com/grailbio/base/file"
	"github.com/grailbio/base/log"

	"github.com/cladebio/nucmatch/format"
	"github.com/cladebio/nucmatch/nucerr"
	"github.com/cladebio/nucmatch/pipeline"
	"github.com/cladebio/nucmatch/progress"
	"github.com/cladebio/nucmatch/seq"
	"github.com/cladebio/nucmatch/ssa"
	"github.com/cladebio/nucmatch/stats"
)

// progressInterval is how many query sequences pipeline.Run processes
// between progress.Reporter log lines.
const progressInterval = 1000

// run loads the reference and query FASTAs, builds or loads the suffix
// array index, drives the pipeline, and writes the selected output
// format(s), per spec.md sections 4 and 6.
func run(ctx context.Context, opts *options) error {
	refSeqs, err := loadFASTA(opts.refPath, opts.large)
	if err != nil {
		return err
	}
	ref, err := seq.ConcatWithSentinels(refSeqs)
	if err != nil {
		return err
	}
	log.Printf("loaded reference %s: %d sequence(s), %d bases", opts.refPath, ref.NumSequences(), ref.Len())

	index, err := loadOrBuildIndex(ctx, ref, opts)
	if err != nil {
		return err
	}

	querySeqs, err := loadFASTA(opts.queryPath, opts.large)
	if err != nil {
		return err
	}
	log.Printf("loaded query %s: %d sequence(s)", opts.queryPath, len(querySeqs))

	reporter := progress.NewReporter("aligning", int64(len(querySeqs)), progressInterval)
	var alignments []pipeline.Alignment
	sink := func(res pipeline.Result) error {
		alignments = append(alignments, res.Alignments...)
		reporter.Add(1)
		return nil
	}
	if err := pipeline.Run(ctx, ref, index, querySeqs, opts.pipeline, sink); err != nil {
		reporter.Done()
		return err
	}
	reporter.Done()

	if err := writeOutputs(opts, ref, querySeqs, alignments); err != nil {
		return err
	}

	if opts.stats {
		reportStats(alignments)
	}
	return nil
}

// loadFASTA reads path, using the memory-mapped large-reference path when
// opts.large is set (spec.md section 6's -large option).
func loadFASTA(path string, large bool) ([]seq.Sequence, error) {
	if large {
		return seq.LoadLarge(path)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nucerrIo(path, err)
	}
	defer f.Close()
	return seq.Load(f)
}

// loadOrBuildIndex either loads a persisted SSA from opts.loadPath or
// builds a fresh one over ref, persisting it to opts.savePath if set.
func loadOrBuildIndex(ctx context.Context, ref *seq.Reference, opts *options) (*ssa.SSA, error) {
	digest := ssa.Digest(ref.Bases)
	codec := resolveCodec(opts.large)

	if opts.loadPath != "" {
		in, err := file.Open(ctx, opts.loadPath)
		if err != nil {
			return nil, nucerrIo(opts.loadPath, err)
		}
		defer in.Close(ctx)
		index, err := format.LoadIndex(in.Reader(ctx), codec, sampleRate, seq.TerminatorByte, digest)
		if err != nil {
			return nil, err
		}
		log.Printf("loaded suffix array index from %s", opts.loadPath)
		return index, nil
	}

	index, err := ssa.Build(ref.Bases, sampleRate)
	if err != nil {
		return nil, err
	}
	log.Printf("built suffix array index: k=%d, %d sampled positions", sampleRate, len(index.Positions))

	if opts.savePath != "" {
		out, err := file.Create(ctx, opts.savePath)
		if err != nil {
			return nil, nucerrIo(opts.savePath, err)
		}
		if err := format.SaveIndex(out.Writer(ctx), index, codec, seq.TerminatorByte, digest); err != nil {
			out.Close(ctx)
			return nil, err
		}
		if err := out.Close(ctx); err != nil {
			return nil, nucerrIo(opts.savePath, err)
		}
		log.Printf("saved suffix array index to %s", opts.savePath)
	}
	return index, nil
}

// writeOutputs writes the delta/paf/sam file(s) opts names, defaulting to
// a single prefix-based file when no explicit path flag was given.
func writeOutputs(opts *options, ref *seq.Reference, queries []seq.Sequence, alignments []pipeline.Alignment) error {
	sort.SliceStable(alignments, func(i, j int) bool {
		if alignments[i].RefSeqIndex != alignments[j].RefSeqIndex {
			return alignments[i].RefSeqIndex < alignments[j].RefSeqIndex
		}
		return alignments[i].QuerySeqIndex < alignments[j].QuerySeqIndex
	})

	wrote := false
	if opts.deltaPath != "" {
		if err := writeDeltaFile(opts.deltaPath, opts, ref, queries, alignments); err != nil {
			return err
		}
		wrote = true
	}
	if opts.samShortPath != "" {
		if err := writeSAMFile(opts.samShortPath, ref, queries, alignments, true); err != nil {
			return err
		}
		wrote = true
	}
	if opts.samLongPath != "" {
		if err := writeSAMFile(opts.samLongPath, ref, queries, alignments, false); err != nil {
			return err
		}
		wrote = true
	}
	if wrote {
		return nil
	}

	switch opts.format {
	case "paf":
		return writePAFFile(opts.prefix+".paf", ref, queries, alignments)
	case "sam":
		return writeSAMFile(opts.prefix+".sam", ref, queries, alignments, true)
	default: // "default" or "delta"
		return writeDeltaFile(opts.prefix+".delta", opts, ref, queries, alignments)
	}
}

func writeDeltaFile(path string, opts *options, ref *seq.Reference, queries []seq.Sequence, alignments []pipeline.Alignment) error {
	w, err := os.Create(path)
	if err != nil {
		return nucerrIo(path, err)
	}
	defer w.Close()
	if err := format.WriteDelta(w, opts.refPath, opts.queryPath, ref, queries, alignments); err != nil {
		return err
	}
	log.Printf("wrote delta output to %s", path)
	return nil
}

func writePAFFile(path string, ref *seq.Reference, queries []seq.Sequence, alignments []pipeline.Alignment) error {
	w, err := os.Create(path)
	if err != nil {
		return nucerrIo(path, err)
	}
	defer w.Close()
	if err := format.WritePAF(w, ref, queries, alignments); err != nil {
		return err
	}
	log.Printf("wrote PAF output to %s", path)
	return nil
}

func writeSAMFile(path string, ref *seq.Reference, queries []seq.Sequence, alignments []pipeline.Alignment, short bool) error {
	w, err := os.Create(path)
	if err != nil {
		return nucerrIo(path, err)
	}
	defer w.Close()
	if err := format.WriteSAM(w, ref, queries, alignments, short); err != nil {
		return err
	}
	log.Printf("wrote SAM output to %s", path)
	return nil
}

// nucerrIo wraps a raw I/O error with the nucerr.Io kind and the
// offending path, per spec.md section 7's "offending file/record" rule.
func nucerrIo(path string, err error) error {
	return nucerr.E(nucerr.Io, path, err)
}

// reportStats logs N50/N90-style summary statistics over alignment
// lengths, per spec.md section 6's -stats option.
func reportStats(alignments []pipeline.Alignment) {
	lengths := make([]int, len(alignments))
	for i, a := range alignments {
		lengths[i] = a.AlignedLen
	}
	s := stats.Summarize(lengths)
	log.Printf("stats: %d alignments, total %d bases, mean %.1f, stddev %.1f, min %d, max %d, N50 %d, N90 %d",
		s.Count, s.Total, s.Mean, s.StdDev, s.Min, s.Max, s.N50, s.N90)
}
