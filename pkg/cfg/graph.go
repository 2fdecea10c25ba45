package cfg

import (
	"fmt"
	"strings"

	"github.com/bits-and-blooms/bitset"

	"github.com/l3aro/go-symflow/pkg/syntax"
)

// Graph is the CFG of one function. Blocks is indexed by block ID.
type Graph struct {
	Func   *syntax.Function
	Blocks []*Block
	Entry  *Block
	Exit   *Block
}

// Edges returns every edge of the graph, grouped by source block.
func (g *Graph) Edges() []*Edge {
	var out []*Edge
	for _, b := range g.Blocks {
		out = append(out, b.Succs...)
	}
	return out
}

// ExitBlocks returns the blocks that flow into the synthetic exit block:
// returns, throws and the fall-through end of the body.
func (g *Graph) ExitBlocks() []*Block {
	var out []*Block
	for _, e := range g.Exit.Preds {
		out = append(out, e.From)
	}
	return out
}

// Reachable returns the set of block IDs reachable from the entry block.
func (g *Graph) Reachable() *bitset.BitSet {
	seen := bitset.New(uint(len(g.Blocks)))
	stack := []*Block{g.Entry}
	seen.Set(uint(g.Entry.ID))
	for len(stack) > 0 {
		b := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		for _, e := range b.Succs {
			if !seen.Test(uint(e.To.ID)) {
				seen.Set(uint(e.To.ID))
				stack = append(stack, e.To)
			}
		}
	}
	return seen
}

func blockName(b *Block) string {
	return fmt.Sprintf("block_%d", b.ID)
}

// Info exports the graph in serializable form. Statement texts are taken
// from file.
func (g *Graph) Info(file *syntax.File) *CFGInfo {
	info := &CFGInfo{
		FunctionName:         g.Func.Name,
		Blocks:               make(map[string]CFGBlock, len(g.Blocks)),
		EntryBlockID:         blockName(g.Entry),
		ExitBlockIDs:         []string{blockName(g.Exit)},
		CyclomaticComplexity: CyclomaticComplexity(g.Func),
	}
	for _, b := range g.Blocks {
		cb := CFGBlock{
			ID:           blockName(b),
			Type:         b.Type,
			StartLine:    b.StartLine,
			EndLine:      b.EndLine,
			Statements:   make([]string, 0, len(b.Elements)),
			Predecessors: make([]string, 0, len(b.Preds)),
		}
		for _, el := range b.Elements {
			cb.Statements = append(cb.Statements, statementText(file, el))
		}
		for _, p := range b.Preds {
			cb.Predecessors = append(cb.Predecessors, blockName(p.From))
		}
		info.Blocks[cb.ID] = cb

		for _, e := range b.Succs {
			edge := CFGEdge{
				SourceID: blockName(e.From),
				TargetID: blockName(e.To),
				EdgeType: e.Label(),
			}
			if (e.Type == EdgeTypeTrue || e.Type == EdgeTypeFalse) && b.Cond != nil {
				edge.Condition = statementText(file, b.Cond)
			}
			info.Edges = append(info.Edges, edge)
		}
	}
	return info
}

// statementText returns the first line of an element's source.
func statementText(file *syntax.File, n syntax.Node) string {
	if file == nil {
		return fmt.Sprintf("%T", n)
	}
	if fi, ok := n.(*syntax.ForInStmt); ok {
		kw := "in"
		if fi.Of {
			kw = "of"
		}
		return fmt.Sprintf("for (%s %s %s)", statementText(file, fi.Left), kw, statementText(file, fi.Right))
	}
	text := file.Text(n)
	if i := strings.IndexByte(text, '\n'); i >= 0 {
		text = strings.TrimSpace(text[:i]) + " ..."
	}
	return text
}

// CyclomaticComplexity counts the decision points of a function body plus
// one. Nested functions are not counted.
func CyclomaticComplexity(fn *syntax.Function) int {
	count := 1
	for _, st := range fn.Body {
		syntax.Inspect(st, func(n syntax.Node) bool {
			switch n := n.(type) {
			case *syntax.FuncLit, *syntax.ClassLit:
				return false
			case *syntax.IfStmt, *syntax.WhileStmt, *syntax.DoWhileStmt,
				*syntax.ForStmt, *syntax.ForInStmt, *syntax.ConditionalExpr:
				count++
			case *syntax.CaseClause:
				if n.Test != nil {
					count++
				}
			case *syntax.LogicalExpr:
				if n.Op == "&&" || n.Op == "||" {
					count++
				}
			case *syntax.TryStmt:
				if n.Handler != nil {
					count++
				}
			}
			return true
		})
	}
	return count
}
