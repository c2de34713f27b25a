// ixbuild constructs the inverted index for a corpus directory of
// numbered document files.
//
// Usage:
//
//	ixbuild -i CORPUS_DIR -d DICT_FILE -p POSTINGS_FILE
//	        [-maxmem N] [-blocks DIR] [-verbose] [-stats] [-timer]
package main

import (
	"fmt"
	"os"

	"ixsearch/internal/build"
	"ixsearch/internal/diag"
)

func main() {

	args := os.Args[1:]

	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "\nERROR: No command-line arguments supplied to ixbuild\n")
		os.Exit(1)
	}

	corpusDir := ""
	dictPath := ""
	postingsPath := ""
	blocksDir := ""

	maxLines := 0

	verbose := false
	stats := false
	timer := false

	for len(args) > 0 {

		switch args[0] {
		case "-i":
			corpusDir = diag.GetStringArg(args, "Corpus directory")
			args = args[1:]
		case "-d":
			dictPath = diag.GetStringArg(args, "Dictionary file")
			args = args[1:]
		case "-p":
			postingsPath = diag.GetStringArg(args, "Postings file")
			args = args[1:]
		case "-blocks":
			blocksDir = diag.GetStringArg(args, "Block directory")
			args = args[1:]
		// performance tuning flag, zero means auto-size from free memory
		case "-maxmem":
			maxLines = diag.GetNumericArg(args, "In-memory line pair cap", 0, 1000, 100000000)
			args = args[1:]
		case "-verbose":
			verbose = true
		case "-stats":
			stats = true
		case "-timer":
			timer = true
		default:
			diag.Fatal("Unrecognized argument %s", args[0])
		}

		args = args[1:]
	}

	if corpusDir == "" {
		diag.Fatal("Corpus directory (-i) is missing")
	}
	if dictPath == "" {
		diag.Fatal("Dictionary file (-d) is missing")
	}
	if postingsPath == "" {
		diag.Fatal("Postings file (-p) is missing")
	}

	diag.SetVerbose(verbose)

	diag.Progress("Indexing corpus %s", corpusDir)

	result, err := build.Run(build.Options{
		CorpusDir:    corpusDir,
		DictPath:     dictPath,
		PostingsPath: postingsPath,
		BlocksDir:    blocksDir,
		MaxLines:     maxLines,
	})
	if err != nil {
		diag.Fatal("%s", err.Error())
	}

	if stats {
		diag.PrintStats(result.Blocks, result.Terms, result.MaxLines)
	}

	if timer {
		diag.PrintDuration("documents", result.Documents)
	}
}
