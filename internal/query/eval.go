package query

import (
	"sort"

	"ixsearch/internal/index"
	"ixsearch/internal/universe"
)

// Index bundles what the evaluator needs per query: random-access postings
// plus the universe of all document ids for NOT complements.
type Index struct {
	Reader   *index.Reader
	Universe *universe.Set
}

// Execute evaluates a parsed query against the index, returning the
// ascending list of matching document ids. The root is evaluated forced,
// so a top-level NOT materializes its complement against the universe.
func Execute(root *Node, ix *Index) ([]int, error) {
	return root.Evaluate(ix, true)
}

// Evaluate returns the sorted doc-id list this subtree matches. For a Not
// node, forced selects between materializing the complement against the
// universe (forced, used at top level and under Or) and returning the
// child's positive list (unforced, used by And, which subtracts it via
// set difference instead).
func (n *Node) Evaluate(ix *Index, forced bool) ([]int, error) {
	switch n.Kind {
	case KindTerm:
		docs, err := n.termDocs(ix)
		if err != nil {
			return nil, err
		}
		n.setSize(len(docs))
		return docs, nil

	case KindNot:
		if !forced {
			return n.Child.Evaluate(ix, false)
		}
		// Forcing propagates through the child so stacked negations
		// cancel: NOT NOT x is x, not the complement of x.
		inner, err := n.Child.Evaluate(ix, true)
		if err != nil {
			return nil, err
		}
		out := ix.Universe.Difference(inner)
		n.setSize(len(out))
		return out, nil

	case KindOr:
		return n.evaluateOr(ix)

	case KindAnd:
		return n.evaluateAnd(ix)
	}
	return nil, nil
}

// Size returns the subtree's result size: the dictionary length for a
// term, the cached result length for a node already evaluated.
func (n *Node) Size(ix *Index) int {
	if n.hasSize {
		return n.size
	}
	switch n.Kind {
	case KindTerm:
		return ix.Reader.GetSize(n.Term)
	case KindNot:
		return n.Child.Size(ix)
	}
	return 0
}

func (n *Node) setSize(s int) {
	n.size = s
	n.hasSize = true
}

func (n *Node) termDocs(ix *Index) ([]int, error) {
	fields, err := ix.Reader.GetPostings(n.Term)
	if err != nil {
		return nil, err
	}
	return index.DecodeDocs(fields), nil
}

// termEntries is the primitive evaluation used by And: it keeps each
// posting's skip target so the intersection can jump.
func (n *Node) termEntries(ix *Index) ([]index.Entry, error) {
	fields, err := ix.Reader.GetPostings(n.Term)
	if err != nil {
		return nil, err
	}
	return index.Decode(fields), nil
}

// evaluateOr unions every child's forced result, so negated children
// arrive as concrete universe-complements.
func (n *Node) evaluateOr(ix *Index) ([]int, error) {
	var out []int
	for _, op := range n.Ops {
		docs, err := op.Evaluate(ix, true)
		if err != nil {
			return nil, err
		}
		out = index.UnionSorted(out, docs)
	}
	n.setSize(len(out))
	return out, nil
}

// posting is one positive And operand prepared for intersection: its
// skip-carrying entries and the size used both for smallest-first
// ordering and for the skip stride.
type posting struct {
	entries []index.Entry
	size    int
}

// evaluateAnd partitions operands into positive and negative, intersects
// the positives smallest-first with skip pointers, then subtracts each
// negative's positive list.
func (n *Node) evaluateAnd(ix *Index) ([]int, error) {
	var positives []*Node
	var negatives []*Node
	for _, op := range n.Ops {
		if op.IsFlipped() {
			negatives = append(negatives, op)
		} else {
			positives = append(positives, op)
		}
	}

	// All-negative: by De Morgan, complement the union of the negated
	// children's positive lists.
	if len(positives) == 0 {
		var union []int
		for _, op := range negatives {
			docs, err := op.Evaluate(ix, false)
			if err != nil {
				return nil, err
			}
			union = index.UnionSorted(union, docs)
		}
		out := ix.Universe.Difference(union)
		n.setSize(len(out))
		return out, nil
	}

	prepared := make([]posting, 0, len(positives))
	for _, op := range positives {
		p, err := preparePositive(op, ix)
		if err != nil {
			return nil, err
		}
		prepared = append(prepared, p)
	}
	sort.SliceStable(prepared, func(i, j int) bool {
		return prepared[i].size < prepared[j].size
	})

	// Single positive with nothing to subtract: hand the list back as is,
	// without an intersection fold. The result is a plain doc-id list; an
	// enclosing And sees this node as a composite operand with no skip info.
	var docs []int
	if len(prepared) == 1 && len(negatives) == 0 {
		docs = entryDocs(prepared[0].entries)
	} else {
		cur := prepared[0].entries
		jump := index.Jump(prepared[0].size)
		for k := 1; k < len(prepared); k++ {
			cur = intersect(cur, jump, prepared[k].entries, index.Jump(prepared[k].size))
			// The merged list's skip targets no longer describe its own
			// indices, so later folds step one at a time on the left.
			jump = 1
		}
		docs = entryDocs(cur)

		for _, op := range negatives {
			neg, err := op.Evaluate(ix, false)
			if err != nil {
				return nil, err
			}
			docs = index.SetDifference(docs, neg)
		}
	}

	n.setSize(len(docs))
	return docs, nil
}

// preparePositive turns one positive And operand into entries for the
// intersection. Primitives read their skip targets straight from disk;
// composites evaluate normally and carry no skip info.
func preparePositive(op *Node, ix *Index) (posting, error) {
	if op.IsPrimitive() {
		base := baseTerm(op)
		entries, err := base.termEntries(ix)
		if err != nil {
			return posting{}, err
		}
		return posting{entries: entries, size: ix.Reader.GetSize(base.Term)}, nil
	}
	docs, err := op.Evaluate(ix, true)
	if err != nil {
		return posting{}, err
	}
	entries := make([]index.Entry, len(docs))
	for i, d := range docs {
		entries[i] = index.Entry{Doc: d, Next: -1}
	}
	return posting{entries: entries, size: len(docs)}, nil
}

func entryDocs(entries []index.Entry) []int {
	docs := make([]int, len(entries))
	for i, e := range entries {
		docs[i] = e.Doc
	}
	return docs
}

// intersect is the skip-pointer two-pointer intersection. j1 and j2 are
// the stride each side advances by when its current entry carries a skip
// target that still falls below the other side's cursor.
func intersect(a []index.Entry, j1 int, b []index.Entry, j2 int) []index.Entry {
	if j1 < 1 {
		j1 = 1
	}
	if j2 < 1 {
		j2 = 1
	}
	var out []index.Entry
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		switch {
		case a[i].Doc == b[j].Doc:
			out = append(out, a[i])
			i++
			j++
		case a[i].Doc < b[j].Doc:
			if a[i].Next != -1 && a[i].Next < b[j].Doc {
				i += j1
			} else {
				i++
			}
		default:
			if b[j].Next != -1 && b[j].Next < a[i].Doc {
				j += j2
			} else {
				j++
			}
		}
	}
	return out
}
