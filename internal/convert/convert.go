// Package convert drives the per-file pipeline: parse, render, write,
// mirror the source modification time. Batch mode runs the pipeline once
// per file and keeps going past per-file failures.
package convert

import (
	"fmt"
	"sort"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/jsonl2md/jsonl2md/internal/markdown"
	"github.com/jsonl2md/jsonl2md/internal/parse"
	"github.com/jsonl2md/jsonl2md/internal/scan"
)

// Result describes one converted file.
type Result struct {
	Input    string
	Output   string
	Messages int
	Skipped  int // undecodable input lines
}

// Stats tallies a batch run.
type Stats struct {
	Converted int
	Failed    int
}

func (s Stats) String() string {
	return fmt.Sprintf("converted=%d failed=%d", s.Converted, s.Failed)
}

// OutputPath returns the default .md path for a transcript file.
func OutputPath(inPath string) string {
	return strings.TrimSuffix(inPath, ".jsonl") + ".md"
}

// File converts one transcript. An empty outPath places the markdown
// alongside the input.
func File(inPath, outPath string) (*Result, error) {
	if outPath == "" {
		outPath = OutputPath(inPath)
	}

	conv, err := parse.File(inPath)
	if err != nil {
		return nil, err
	}
	if conv.SkippedLines > 0 {
		logrus.WithField("file", inPath).Warnf("skipped %d undecodable lines", conv.SkippedLines)
	}

	if err := markdown.WriteFile(conv, outPath); err != nil {
		return nil, err
	}
	if err := markdown.MirrorModTime(outPath, conv.Mtime); err != nil {
		return nil, err
	}

	return &Result{
		Input:    inPath,
		Output:   outPath,
		Messages: len(conv.Messages),
		Skipped:  conv.SkippedLines,
	}, nil
}

// Tree converts every transcript under root. Each file is an independent
// pipeline run; one failure is recorded and the batch continues. The
// returned error aggregates all per-file failures and is nil only when
// every file converted.
func Tree(root string, recursive bool) (Stats, error) {
	var stats Stats

	files, err := scan.Transcripts(root, recursive)
	if err != nil {
		return stats, errors.Wrap(err, "scan")
	}
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })

	var batchErr *multierror.Error
	for _, fi := range files {
		res, err := File(fi.Path, "")
		if err != nil {
			stats.Failed++
			batchErr = multierror.Append(batchErr, errors.Wrap(err, fi.Path))
			logrus.WithField("file", fi.Path).WithError(err).Error("convert failed")
			continue
		}
		stats.Converted++
		logrus.WithFields(logrus.Fields{
			"file":     res.Input,
			"output":   res.Output,
			"messages": res.Messages,
		}).Info("converted")
	}

	return stats, batchErr.ErrorOrNil()
}
