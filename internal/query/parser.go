package query

import (
	"fmt"

	"ixsearch/internal/normalize"
)

// Parse tokenizes and parses an infix boolean query into an expression
// tree using shunting-yard with a unary NOT. Query terms are normalized
// the same way indexed terms are, so lookups against the dictionary
// match.
func Parse(s string, memo *normalize.Memo) (*Node, error) {
	tokens, err := Tokenize(s)
	if err != nil {
		return nil, err
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("empty query")
	}
	node, rest, err := parseTokens(tokens, memo)
	if err != nil {
		return nil, err
	}
	if len(rest) != 0 {
		return nil, fmt.Errorf("unmatched ')' in query")
	}
	return node, nil
}

func precedence(k TokenKind) int {
	if k == TokAnd {
		return 1
	}
	return 2
}

// parseTokens runs the shunting-yard algorithm over tokens, which must
// not contain an unmatched RB (Parse guarantees this via Tokenize's
// nesting-aware bracket matching). It returns the parsed tree and any
// unconsumed trailing tokens (always empty for a well-formed top-level
// call; non-empty only if a caller passed a bad manual slice).
func parseTokens(tokens []Token, memo *normalize.Memo) (*Node, []Token, error) {
	var opStack []TokenKind
	var operands []*Node
	negateNext := false

	reduce := func() error {
		op := opStack[len(opStack)-1]
		opStack = opStack[:len(opStack)-1]
		if len(operands) < 2 {
			return fmt.Errorf("malformed query: operator with missing operand")
		}
		b := operands[len(operands)-1]
		a := operands[len(operands)-2]
		operands = operands[:len(operands)-2]
		kind := KindAnd
		if op == TokOr {
			kind = KindOr
		}
		operands = append(operands, &Node{Kind: kind, Ops: []*Node{b, a}})
		return nil
	}

	i := 0
	for i < len(tokens) {
		tok := tokens[i]
		switch tok.Kind {
		case TokNot:
			negateNext = !negateNext
			i++

		case TokLB:
			depth := 1
			j := i + 1
			for j < len(tokens) && depth > 0 {
				switch tokens[j].Kind {
				case TokLB:
					depth++
				case TokRB:
					depth--
				}
				if depth == 0 {
					break
				}
				j++
			}
			if depth != 0 {
				return nil, nil, fmt.Errorf("unmatched '(' in query")
			}
			sub, _, err := parseTokens(tokens[i+1:j], memo)
			if err != nil {
				return nil, nil, err
			}
			if negateNext {
				sub = &Node{Kind: KindNot, Child: sub}
				negateNext = false
			}
			operands = append(operands, sub)
			i = j + 1

		case TokRB:
			return nil, tokens[i:], nil

		case TokAnd, TokOr:
			for len(opStack) > 0 && precedence(opStack[len(opStack)-1]) <= precedence(tok.Kind) {
				if err := reduce(); err != nil {
					return nil, nil, err
				}
			}
			opStack = append(opStack, tok.Kind)
			i++

		case TokTerm:
			// A term that fails normalization (e.g. all-digit) still
			// occupies its operand slot as a term with no dictionary
			// entry, which evaluates like any other unknown term.
			term, _ := normalize.Term(tok.Text, memo)
			node := &Node{Kind: KindTerm, Term: term}
			if negateNext {
				node = &Node{Kind: KindNot, Child: node}
				negateNext = false
			}
			operands = append(operands, node)
			i++
		}
	}

	for len(opStack) > 0 {
		if err := reduce(); err != nil {
			return nil, nil, err
		}
	}
	if len(operands) != 1 {
		return nil, nil, fmt.Errorf("malformed query: %d dangling operands", len(operands))
	}
	return operands[0], nil, nil
}
