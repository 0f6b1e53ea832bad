package warden

import (
	"strings"

	"github.com/duskfall/warden/pkg/warden/parser"
)

// FindUnsafeLoop scans a parsed program for the first while loop whose test
// is the literal true and whose body contains no await expression anywhere.
// Such a loop can never yield control back to the host scheduler and would
// stall it indefinitely, so the script must be rejected before execution.
//
// The returned line is 1-based, computed from the loop's byte offset in
// source. When a loop is condemned its body is not searched for further
// findings; the next run after the fix reports any deeper loop. A loop that
// does await is not flagged, but its body is still walked, since a nested
// loop inside it may be individually unsafe.
//
// The check is purely syntactic: an await that is dynamically unreachable
// still counts as a suspension point.
func FindUnsafeLoop(program *parser.Program, source string) (line int, found bool) {
	return scanLoops(program, source)
}

func scanLoops(n parser.Node, source string) (int, bool) {
	if loop, ok := n.(*parser.WhileStatement); ok {
		if isLiteralTrue(loop.Test) && !containsAwait(loop.Body) {
			return lineAt(source, loop.Pos()), true
		}
	}

	for _, c := range parser.Children(n) {
		if line, ok := scanLoops(c, source); ok {
			return line, true
		}
	}
	return 0, false
}

// isLiteralTrue matches only the exact boolean literal. Expressions that
// merely evaluate to true (1 == 1, !false) are not folded.
func isLiteralTrue(e parser.Expression) bool {
	lit, ok := e.(*parser.BooleanLiteral)
	return ok && lit.Value
}

func containsAwait(n parser.Node) bool {
	if n == nil {
		return false
	}
	if _, ok := n.(*parser.AwaitExpression); ok {
		return true
	}
	for _, c := range parser.Children(n) {
		if containsAwait(c) {
			return true
		}
	}
	return false
}

// lineAt converts a byte offset to a 1-based line number by counting the
// newlines preceding it.
func lineAt(source string, pos int) int {
	if pos > len(source) {
		pos = len(source)
	}
	if pos < 0 {
		pos = 0
	}
	return 1 + strings.Count(source[:pos], "\n")
}
