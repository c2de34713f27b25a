// Package build drives a full index construction pass: walk the corpus,
// normalize each document into terms, buffer SPIMI blocks, then k-way
// merge the blocks into the final dictionary and postings files.
package build

import (
	"path/filepath"

	"github.com/pbnjay/memory"

	"ixsearch/internal/corpus"
	"ixsearch/internal/merge"
	"ixsearch/internal/normalize"
	"ixsearch/internal/spimi"
	"ixsearch/internal/universe"
)

// UniverseFileName is the fixed name of the universe file, written next
// to the dictionary and looked up there at query time.
const UniverseFileName = "document_id_list.txt"

// FreqFileName is the fixed name of the frequency-sorted dictionary,
// written next to the main dictionary for ancillary tooling.
const FreqFileName = "freq_sorted_dict.txt"

// Options names the files a build reads and writes. BlocksDir defaults to
// a "blocks" directory beside DictPath when left empty; the universe file
// and the frequency-sorted dictionary are always written beside DictPath.
// MaxLines of zero auto-sizes from free memory.
type Options struct {
	CorpusDir    string
	DictPath     string
	PostingsPath string
	BlocksDir    string
	MaxLines     int
}

// Stats summarizes one completed build.
type Stats struct {
	Documents int
	Blocks    int
	Terms     int
	MaxLines  int
}

// AutoMaxLines picks the in-memory pair cap from free system memory when
// the caller leaves -maxmem unset. The steps are coarse on purpose: the
// cap only bounds block size, it does not have to be tight.
func AutoMaxLines() int {
	gb := memory.FreeMemory() / (1 << 30)
	switch {
	case gb >= 16:
		return 10 * spimi.DefaultMaxLines
	case gb >= 4:
		return 4 * spimi.DefaultMaxLines
	default:
		return spimi.DefaultMaxLines
	}
}

// Run executes the full build. Any document that cannot be read aborts
// the whole build; a partial index is never left behind as if complete.
func Run(opts Options) (Stats, error) {
	if opts.MaxLines <= 0 {
		opts.MaxLines = AutoMaxLines()
	}
	outDir := filepath.Dir(opts.DictPath)
	if opts.BlocksDir == "" {
		opts.BlocksDir = filepath.Join(outDir, "blocks")
	}

	docs, err := corpus.List(opts.CorpusDir)
	if err != nil {
		return Stats{}, err
	}

	writer, err := spimi.NewWriter(opts.BlocksDir, opts.MaxLines)
	if err != nil {
		return Stats{}, err
	}

	uni := universe.New()
	memo := normalize.NewMemo()

	for _, doc := range docs {
		raw, err := doc.Read()
		if err != nil {
			return Stats{}, err
		}
		uni.Add(doc.ID)
		for _, term := range normalize.Terms(raw, memo) {
			if err := writer.Add(doc.ID, term); err != nil {
				return Stats{}, err
			}
		}
	}
	if err := writer.Flush(); err != nil {
		return Stats{}, err
	}

	terms, err := merge.Run(opts.BlocksDir, writer.BlockCount(), opts.DictPath,
		opts.PostingsPath, filepath.Join(outDir, FreqFileName), opts.MaxLines)
	if err != nil {
		return Stats{}, err
	}

	if err := universe.WriteFile(filepath.Join(outDir, UniverseFileName), uni); err != nil {
		return Stats{}, err
	}

	return Stats{
		Documents: len(docs),
		Blocks:    writer.BlockCount(),
		Terms:     terms,
		MaxLines:  opts.MaxLines,
	}, nil
}
