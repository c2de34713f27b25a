// Package merge implements the k-way external merge: combine every
// SPIMI block into the final dictionary and postings files, adding
// skip pointers and recording byte offsets.
package merge

import (
	"bufio"
	"container/heap"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"ixsearch/internal/index"
	"ixsearch/internal/spimi"
)

// entry is one (term, doc-id list) line read from a block, tagged with the
// block it came from so the priority queue can tie-break deterministically.
type entry struct {
	term     string
	blockIdx int
	docs     []int
}

// entryHeap orders entries by the composite key (term, blockIdx), the
// stable tie-break the merge requires — never a hash-based tuple order.
type entryHeap []entry

func (h entryHeap) Len() int { return len(h) }
func (h entryHeap) Less(i, j int) bool {
	if h[i].term != h[j].term {
		return h[i].term < h[j].term
	}
	return h[i].blockIdx < h[j].blockIdx
}
func (h entryHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *entryHeap) Push(x interface{}) {
	*h = append(*h, x.(entry))
}
func (h *entryHeap) Pop() interface{} {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

type blockSource struct {
	file    *os.File
	scanner *bufio.Scanner
}

func openBlock(blocksDir string, idx int) (*blockSource, error) {
	path := filepath.Join(blocksDir, strconv.Itoa(idx))
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening block %d: %w", idx, err)
	}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 8*1024*1024)
	return &blockSource{file: f, scanner: scanner}, nil
}

// readBatch reads up to n lines from a block, parsing each into an entry.
// Returns fewer than n at EOF.
func (b *blockSource) readBatch(idx, n int) ([]entry, error) {
	entries := make([]entry, 0, n)
	for len(entries) < n && b.scanner.Scan() {
		term, docs, err := spimi.ParseBlockLine(b.scanner.Text())
		if err != nil {
			return nil, fmt.Errorf("parsing block %d: %w", idx, err)
		}
		entries = append(entries, entry{term: term, blockIdx: idx, docs: docs})
	}
	if err := b.scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading block %d: %w", idx, err)
	}
	return entries, nil
}

// Run merges blockCount block files under blocksDir into dictPath and
// postingsPath (plus freqPath), per the k-way merge algorithm, returning
// the number of dictionary terms emitted. Zero blocks produces empty
// output files, not an error.
func Run(blocksDir string, blockCount int, dictPath, postingsPath, freqPath string, maxLines int) (int, error) {
	w, err := index.NewWriter(dictPath, postingsPath, maxLines)
	if err != nil {
		return 0, err
	}
	if blockCount == 0 {
		return 0, w.Close(freqPath)
	}

	perBlockBatch := maxLines / blockCount
	if perBlockBatch < 1 {
		perBlockBatch = 1
	}

	emitted := 0

	sources := make([]*blockSource, blockCount)
	linesInQueue := make([]int, blockCount)
	h := &entryHeap{}
	heap.Init(h)

	for idx := 0; idx < blockCount; idx++ {
		src, err := openBlock(blocksDir, idx)
		if err != nil {
			return emitted, err
		}
		sources[idx] = src
		defer src.file.Close()

		batch, err := src.readBatch(idx, perBlockBatch)
		if err != nil {
			return emitted, err
		}
		linesInQueue[idx] = len(batch)
		for _, e := range batch {
			heap.Push(h, e)
		}
	}

	var currentTerm string
	var accumulator []int
	started := false

	for h.Len() > 0 {
		popped := heap.Pop(h).(entry)

		if started && popped.term != currentTerm {
			if err := w.Emit(currentTerm, accumulator); err != nil {
				return emitted, err
			}
			emitted++
			accumulator = nil
		}
		if !started || popped.term != currentTerm {
			currentTerm = popped.term
			started = true
		}
		accumulator = mergeStrictAscend(accumulator, popped.docs)

		linesInQueue[popped.blockIdx]--
		if linesInQueue[popped.blockIdx] == 0 {
			more, err := sources[popped.blockIdx].readBatch(popped.blockIdx, perBlockBatch)
			if err != nil {
				return emitted, err
			}
			linesInQueue[popped.blockIdx] = len(more)
			for _, e := range more {
				heap.Push(h, e)
			}
		}
	}

	if started {
		if err := w.Emit(currentTerm, accumulator); err != nil {
			return emitted, err
		}
		emitted++
	}

	return emitted, w.Close(freqPath)
}

// mergeStrictAscend unions an accumulator with a newly popped doc-id list,
// both individually ascending and duplicate-free, rejecting any doc-id
// already present at the accumulator's tail or elsewhere (strict ascent
// across blocks is enforced by the union, not assumed).
func mergeStrictAscend(acc, docs []int) []int {
	if acc == nil {
		out := make([]int, len(docs))
		copy(out, docs)
		return out
	}
	return index.UnionSorted(acc, docs)
}
