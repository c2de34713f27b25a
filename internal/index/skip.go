// Package index holds the on-disk dictionary/postings format shared by
// the k-way merger (writer) and the query engine (reader): skip-pointer
// encoding, dictionary entries, and random-access posting lookup.
package index

import (
	"math"
	"strconv"
)

// Jump returns ceil(sqrt(n)), the skip-pointer stride for a posting list
// of length n.
func Jump(n int) int {
	if n <= 0 {
		return 1
	}
	return int(math.Ceil(math.Sqrt(float64(n))))
}

// Entry is one decoded posting: Doc is the document id, Next is the
// skip-pointer target (-1 if index i carries no skip).
type Entry struct {
	Doc  int
	Next int
}

// Encode renders a strictly ascending posting list into its skip-augmented
// on-disk text form: "D" or "D;S" per element, per the skip-pointer rule
// (skip at i iff i mod jump == 0 and i+jump < n).
func Encode(postings []int) []string {
	n := len(postings)
	jump := Jump(n)
	out := make([]string, n)
	for i, d := range postings {
		if i%jump == 0 && i+jump < n {
			out[i] = strconv.Itoa(d) + ";" + strconv.Itoa(postings[i+jump])
		} else {
			out[i] = strconv.Itoa(d)
		}
	}
	return out
}

// Decode parses the on-disk entries of a posting line back into Entry
// values, each carrying its own skip target (or -1).
func Decode(fields []string) []Entry {
	entries := make([]Entry, len(fields))
	for i, f := range fields {
		doc, next := splitEntry(f)
		entries[i] = Entry{Doc: doc, Next: next}
	}
	return entries
}

// DecodeDocs strips skip annotations, returning the plain doc-id list.
func DecodeDocs(fields []string) []int {
	docs := make([]int, len(fields))
	for i, f := range fields {
		doc, _ := splitEntry(f)
		docs[i] = doc
	}
	return docs
}

func splitEntry(field string) (doc, next int) {
	next = -1
	for i := 0; i < len(field); i++ {
		if field[i] == ';' {
			doc, _ = strconv.Atoi(field[:i])
			next, _ = strconv.Atoi(field[i+1:])
			return
		}
	}
	doc, _ = strconv.Atoi(field)
	return
}
