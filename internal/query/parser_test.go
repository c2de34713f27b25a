package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// opTerms collects the Term strings of an And/Or node's direct operands,
// unordered shape checks only.
func opTerms(n *Node) map[string]bool {
	out := make(map[string]bool)
	for _, op := range n.Ops {
		if op.Kind == KindTerm {
			out[op.Term] = true
		}
	}
	return out
}

func TestParseSingleTerm(t *testing.T) {
	root, err := Parse("apple", nil)
	require.NoError(t, err)
	assert.Equal(t, KindTerm, root.Kind)
	assert.Equal(t, "appl", root.Term) // terms are stemmed like at index time
}

func TestParsePrecedenceAndBindsTighter(t *testing.T) {
	root, err := Parse("a AND b OR c", nil)
	require.NoError(t, err)

	require.Equal(t, KindOr, root.Kind)
	require.Len(t, root.Ops, 2)

	var andNode, termNode *Node
	for _, op := range root.Ops {
		switch op.Kind {
		case KindAnd:
			andNode = op
		case KindTerm:
			termNode = op
		}
	}
	require.NotNil(t, andNode, "expected Or(And(a,b), c)")
	require.NotNil(t, termNode)
	assert.Equal(t, "c", termNode.Term)
	assert.Equal(t, map[string]bool{"a": true, "b": true}, opTerms(andNode))
}

func TestParseParensOverridePrecedence(t *testing.T) {
	root, err := Parse("a AND (b OR c)", nil)
	require.NoError(t, err)

	require.Equal(t, KindAnd, root.Kind)
	require.Len(t, root.Ops, 2)

	var orNode *Node
	for _, op := range root.Ops {
		if op.Kind == KindOr {
			orNode = op
		}
	}
	require.NotNil(t, orNode)
	assert.Equal(t, map[string]bool{"b": true, "c": true}, opTerms(orNode))
}

func TestParseNotWrapsTerm(t *testing.T) {
	root, err := Parse("NOT a", nil)
	require.NoError(t, err)
	require.Equal(t, KindNot, root.Kind)
	assert.Equal(t, KindTerm, root.Child.Kind)
	assert.True(t, root.IsFlipped())
	assert.True(t, root.IsPrimitive())
}

func TestParseDoubleNotCancelsAtParseTime(t *testing.T) {
	// consecutive NOTs toggle the pending-negation flag
	root, err := Parse("NOT NOT a", nil)
	require.NoError(t, err)
	assert.Equal(t, KindTerm, root.Kind)
}

func TestParseNotParenSubExpression(t *testing.T) {
	root, err := Parse("NOT (a OR b)", nil)
	require.NoError(t, err)
	require.Equal(t, KindNot, root.Kind)
	assert.Equal(t, KindOr, root.Child.Kind)
	assert.True(t, root.IsFlipped())
	assert.False(t, root.IsPrimitive())
}

func TestParseLeftAssociative(t *testing.T) {
	root, err := Parse("a AND b AND c", nil)
	require.NoError(t, err)
	require.Equal(t, KindAnd, root.Kind)
	require.Len(t, root.Ops, 2)

	var inner *Node
	for _, op := range root.Ops {
		if op.Kind == KindAnd {
			inner = op
		}
	}
	require.NotNil(t, inner, "a AND b reduces before the second AND")
	assert.Equal(t, map[string]bool{"a": true, "b": true}, opTerms(inner))
}

func TestParseErrors(t *testing.T) {
	testCases := []string{
		"",
		"   ",
		"(a AND b",
		"a AND",
		"AND a",
		"a b",
	}
	for _, q := range testCases {
		_, err := Parse(q, nil)
		assert.Error(t, err, "query %q", q)
	}
}

func TestIsFlippedDerivation(t *testing.T) {
	a := &Node{Kind: KindTerm, Term: "a"}
	assert.False(t, a.IsFlipped())

	not := &Node{Kind: KindNot, Child: a}
	assert.True(t, not.IsFlipped())

	notNot := &Node{Kind: KindNot, Child: not}
	assert.False(t, notNot.IsFlipped())
	assert.True(t, notNot.IsPrimitive())
}
