package index

import (
	"bufio"
	"fmt"
	"os"
	"sort"
	"strconv"
)

// newlineWidth is the platform newline-adjustment term from the on-disk
// offset bookkeeping rule. This writer always emits a bare "\n" (never
// "\r\n"), so the adjustment is 0 on every platform it runs on; a writer
// that emitted CRLF would need this to be 1.
const newlineWidth = 0

// Writer accumulates postings and dictionary output during the k-way
// merge and flushes both files in lockstep every flushEvery terms,
// bounding how much unwritten data can pile up during a large merge.
type Writer struct {
	postingsFile *os.File
	dictFile     *os.File
	postings     *bufio.Writer
	dict         *bufio.Writer
	offset       int64
	flushEvery   int
	pending      int
	freqs        []termFreq
}

type termFreq struct {
	term string
	freq int
}

// NewWriter truncates and opens dictPath/postingsPath for append, ready to
// receive emitted terms in ascending order.
func NewWriter(dictPath, postingsPath string, flushEvery int) (*Writer, error) {
	if flushEvery <= 0 {
		flushEvery = 100000
	}
	df, err := os.Create(dictPath)
	if err != nil {
		return nil, fmt.Errorf("creating dictionary file: %w", err)
	}
	pf, err := os.Create(postingsPath)
	if err != nil {
		df.Close()
		return nil, fmt.Errorf("creating postings file: %w", err)
	}
	return &Writer{
		postingsFile: pf,
		dictFile:     df,
		postings:     bufio.NewWriter(pf),
		dict:         bufio.NewWriter(df),
		flushEvery:   flushEvery,
	}, nil
}

// Emit writes one term's posting line plus its dictionary entry:
// skip-augment the posting list, record the byte offset the line started
// at, and periodically flush to bound memory.
func (w *Writer) Emit(term string, postings []int) error {
	offsetBefore := w.offset

	entries := Encode(postings)
	line := term
	for _, e := range entries {
		line += " " + e
	}
	line += "\n"

	if _, err := w.postings.WriteString(line); err != nil {
		return fmt.Errorf("writing postings line for %q: %w", term, err)
	}
	w.offset += int64(len(line)) + newlineWidth

	dictLine := term + " " + strconv.Itoa(len(postings)) + " " + strconv.FormatInt(offsetBefore, 10) + "\n"
	if _, err := w.dict.WriteString(dictLine); err != nil {
		return fmt.Errorf("writing dictionary line for %q: %w", term, err)
	}

	w.freqs = append(w.freqs, termFreq{term: term, freq: len(postings)})

	w.pending++
	if w.pending >= w.flushEvery {
		if err := w.flushBuffers(); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) flushBuffers() error {
	if err := w.postings.Flush(); err != nil {
		return fmt.Errorf("flushing postings: %w", err)
	}
	if err := w.dict.Flush(); err != nil {
		return fmt.Errorf("flushing dictionary: %w", err)
	}
	w.pending = 0
	return nil
}

// Close flushes remaining buffers, closes both output files, and writes
// the frequency-sorted dictionary to freqSortedPath.
func (w *Writer) Close(freqSortedPath string) error {
	if err := w.flushBuffers(); err != nil {
		return err
	}
	if err := w.postingsFile.Close(); err != nil {
		return fmt.Errorf("closing postings file: %w", err)
	}
	if err := w.dictFile.Close(); err != nil {
		return fmt.Errorf("closing dictionary file: %w", err)
	}
	return writeFreqSorted(freqSortedPath, w.freqs)
}

func writeFreqSorted(path string, freqs []termFreq) error {
	sorted := make([]termFreq, len(freqs))
	copy(sorted, freqs)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].freq > sorted[j].freq
	})

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating frequency-sorted dictionary: %w", err)
	}
	defer f.Close()

	buf := bufio.NewWriter(f)
	for _, tf := range sorted {
		buf.WriteString(tf.term)
		buf.WriteByte(' ')
		buf.WriteString(strconv.Itoa(tf.freq))
		buf.WriteByte('\n')
	}
	return buf.Flush()
}
