// ixquery evaluates a file of boolean queries against a built index,
// writing one result line of ascending doc ids per query.
//
// Usage:
//
//	ixquery -d DICT_FILE -p POSTINGS_FILE -q QUERY_FILE -o OUTPUT_FILE
//	        [-verbose] [-stats] [-timer]
package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"ixsearch/internal/build"
	"ixsearch/internal/diag"
	"ixsearch/internal/index"
	"ixsearch/internal/normalize"
	"ixsearch/internal/query"
	"ixsearch/internal/universe"
)

func main() {

	args := os.Args[1:]

	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "\nERROR: No command-line arguments supplied to ixquery\n")
		os.Exit(1)
	}

	dictPath := ""
	postingsPath := ""
	queryPath := ""
	outputPath := ""

	verbose := false
	stats := false
	timer := false

	for len(args) > 0 {

		switch args[0] {
		case "-d":
			dictPath = diag.GetStringArg(args, "Dictionary file")
			args = args[1:]
		case "-p":
			postingsPath = diag.GetStringArg(args, "Postings file")
			args = args[1:]
		case "-q":
			queryPath = diag.GetStringArg(args, "Query file")
			args = args[1:]
		case "-o":
			outputPath = diag.GetStringArg(args, "Output file")
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

	if dictPath == "" {
		diag.Fatal("Dictionary file (-d) is missing")
	}
	if postingsPath == "" {
		diag.Fatal("Postings file (-p) is missing")
	}
	if queryPath == "" {
		diag.Fatal("Query file (-q) is missing")
	}
	if outputPath == "" {
		diag.Fatal("Output file (-o) is missing")
	}

	diag.SetVerbose(verbose)

	rdr, err := index.NewReader(dictPath, postingsPath)
	if err != nil {
		diag.Fatal("%s", err.Error())
	}
	defer rdr.Close()

	uniPath := filepath.Join(filepath.Dir(dictPath), build.UniverseFileName)
	uni, err := universe.ReadFile(uniPath)
	if err != nil {
		diag.Fatal("%s", err.Error())
	}

	qf, err := os.Open(queryPath)
	if err != nil {
		diag.Fatal("Unable to open query file: %s", err.Error())
	}
	defer qf.Close()

	out, err := os.Create(outputPath)
	if err != nil {
		diag.Fatal("Unable to create output file: %s", err.Error())
	}
	defer out.Close()

	ix := &query.Index{Reader: rdr, Universe: uni}
	memo := normalize.NewMemo()

	wtr := bufio.NewWriter(out)
	queries := 0

	scanner := bufio.NewScanner(qf)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		queries++

		docs, err := runQuery(line, ix, memo)
		if err != nil {
			// a malformed query yields an empty result line, the batch continues
			diag.Warn("query %d: %s", queries, err.Error())
		}

		parts := make([]string, len(docs))
		for i, d := range docs {
			parts[i] = strconv.Itoa(d)
		}
		wtr.WriteString(strings.Join(parts, " "))
		wtr.WriteByte('\n')
	}
	if err := scanner.Err(); err != nil {
		diag.Fatal("Reading query file: %s", err.Error())
	}

	if err := wtr.Flush(); err != nil {
		diag.Fatal("Writing output file: %s", err.Error())
	}

	if stats {
		fmt.Fprintf(os.Stderr, "Qrys %d\n", queries)
		fmt.Fprintf(os.Stderr, "Docs %d\n", len(uni.Sorted()))
		fmt.Fprintf(os.Stderr, "\n")
	}

	if timer {
		diag.PrintDuration("queries", queries)
	}
}

func runQuery(line string, ix *query.Index, memo *normalize.Memo) ([]int, error) {
	root, err := query.Parse(line, memo)
	if err != nil {
		return nil, err
	}
	return query.Execute(root, ix)
}
