package index

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// DictEntry is one parsed dictionary line: a term's posting-list length
// and its byte offset into the postings file.
type DictEntry struct {
	Length int
	Offset int64
}

// Reader serves random-access posting lookups against a built index: the
// dictionary lives entirely in memory, the postings file stays on disk
// and is seeked into per term.
type Reader struct {
	dict      map[string]DictEntry
	postings  *os.File
	reader    *bufio.Reader
	curOffset int64
}

// NewReader loads dictPath into memory and opens postingsPath for random
// access reads.
func NewReader(dictPath, postingsPath string) (*Reader, error) {
	dict, err := loadDictionary(dictPath)
	if err != nil {
		return nil, err
	}
	pf, err := os.Open(postingsPath)
	if err != nil {
		return nil, fmt.Errorf("opening postings file: %w", err)
	}
	return &Reader{
		dict:     dict,
		postings: pf,
		reader:   bufio.NewReader(pf),
	}, nil
}

func loadDictionary(path string) (map[string]DictEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening dictionary file: %w", err)
	}
	defer f.Close()

	dict := make(map[string]DictEntry)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) != 3 {
			continue
		}
		length, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("bad dictionary length %q: %w", fields[1], err)
		}
		offset, err := strconv.ParseInt(fields[2], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad dictionary offset %q: %w", fields[2], err)
		}
		dict[fields[0]] = DictEntry{Length: length, Offset: offset}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning dictionary file: %w", err)
	}
	return dict, nil
}

// Close releases the postings file handle.
func (r *Reader) Close() error {
	return r.postings.Close()
}

// GetSize returns a term's posting-list length, or 0 if the term is
// absent (UnknownTerm is not an error).
func (r *Reader) GetSize(term string) int {
	return r.dict[term].Length
}

// GetPostings seeks to the term's recorded offset and returns its raw
// on-disk entries (each "D" or "D;S"), or nil if the term is absent.
func (r *Reader) GetPostings(term string) ([]string, error) {
	entry, ok := r.dict[term]
	if !ok {
		return nil, nil
	}
	if _, err := r.postings.Seek(entry.Offset, 0); err != nil {
		return nil, fmt.Errorf("seeking postings for %q: %w", term, err)
	}
	r.reader.Reset(r.postings)
	line, err := r.reader.ReadString('\n')
	if err != nil && line == "" {
		return nil, fmt.Errorf("reading postings for %q: %w", term, err)
	}
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, fmt.Errorf("empty postings line for %q", term)
	}
	return fields[1:], nil
}
