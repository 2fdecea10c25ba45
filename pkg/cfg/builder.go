package cfg

import (
	"fmt"

	"github.com/l3aro/go-symflow/pkg/syntax"
)

// jumpTarget is an enclosing statement that break or continue can leave.
type jumpTarget struct {
	label      string
	breakTo    *Block
	continueTo *Block // nil for switch and labeled blocks
	backEdge   bool   // whether continue edges go back to the loop head
	isBlock    bool   // labeled statement that is not a loop or switch
}

// tryFrame collects the blocks created inside a try body so they can be
// wired to the handler once it exists.
type tryFrame struct {
	blocks []*Block
}

type builder struct {
	graph   *Graph
	targets []*jumpTarget
	tries   []*tryFrame
	label   string // label waiting for the next loop
	err     error
}

// Build constructs the CFG of fn. A function whose body is structurally
// malformed is rejected with an error wrapping ErrMalformedInput.
// Constructs the builder does not model become opaque blocks.
func Build(fn *syntax.Function) (*Graph, error) {
	if fn == nil {
		return nil, fmt.Errorf("%w: nil function", ErrMalformedInput)
	}

	b := &builder{graph: &Graph{Func: fn}}
	entry := b.newBlock(BlockTypeEntry, fn.Start.Line)
	b.graph.Entry = entry

	// The exit block gets its ID last so IDs follow source order.
	exit := &Block{Type: BlockTypeExit, StartLine: fn.End.Line, EndLine: fn.End.Line}
	b.graph.Exit = exit

	current := entry
	b.processList(fn.Body, &current)
	if b.err != nil {
		return nil, fmt.Errorf("building cfg for %s: %w", fn.Name, b.err)
	}
	if current != nil {
		b.addEdge(current, exit, EdgeTypeUnconditional)
	}

	exit.ID = len(b.graph.Blocks)
	b.graph.Blocks = append(b.graph.Blocks, exit)
	return b.graph, nil
}

func (b *builder) fail(n syntax.Node, format string, args ...any) {
	if b.err != nil {
		return
	}
	msg := fmt.Sprintf(format, args...)
	b.err = fmt.Errorf("%w: %s at %s", ErrMalformedInput, msg, n.Span().Start)
}

func (b *builder) newBlock(blockType BlockType, line int) *Block {
	block := &Block{
		ID:        len(b.graph.Blocks),
		Type:      blockType,
		StartLine: line,
		EndLine:   line,
	}
	b.graph.Blocks = append(b.graph.Blocks, block)
	if n := len(b.tries); n > 0 {
		b.tries[n-1].blocks = append(b.tries[n-1].blocks, block)
	}
	return block
}

func (b *builder) addEdge(from, to *Block, edgeType EdgeType) *Edge {
	e := &Edge{From: from, To: to, Type: edgeType}
	from.Succs = append(from.Succs, e)
	to.Preds = append(to.Preds, e)
	return e
}

func (b *builder) addBackEdge(from, to *Block, edgeType EdgeType) {
	b.addEdge(from, to, edgeType).Back = true
}

// current returns the block new elements go to, starting a fresh block
// after an opaque one and an unreachable one after a jump.
func (b *builder) current(currentBlock **Block, line int) *Block {
	cur := *currentBlock
	switch {
	case cur == nil:
		cur = b.newBlock(BlockTypePlain, line)
	case cur.Opaque:
		next := b.newBlock(BlockTypePlain, line)
		b.addEdge(cur, next, EdgeTypeUnconditional)
		cur = next
	}
	*currentBlock = cur
	return cur
}

func (b *builder) addElement(currentBlock **Block, n syntax.Node) *Block {
	line := n.Span().Start.Line
	cur := b.current(currentBlock, line)
	if len(cur.Elements) == 0 && cur.Type != BlockTypeEntry {
		cur.StartLine = line
	}
	cur.Elements = append(cur.Elements, n)
	if end := n.Span().End.Line; end > cur.EndLine {
		cur.EndLine = end
	}
	return cur
}

// branchBlock returns a block that can end with the test cond: the current
// block if it has not started, a new successor otherwise.
func (b *builder) branchBlock(currentBlock **Block, cond syntax.Expr, blockType BlockType) *Block {
	line := cond.Span().Start.Line
	cur := *currentBlock
	var blk *Block
	if cur != nil && !cur.Opaque && cur.Type == BlockTypePlain && len(cur.Elements) == 0 && len(cur.Succs) == 0 {
		blk = cur
		blk.Type = blockType
	} else {
		blk = b.newBlock(blockType, line)
		if cur != nil {
			b.addEdge(cur, blk, EdgeTypeUnconditional)
		}
	}
	var tmp = blk
	b.addElement(&tmp, cond)
	blk.Cond = cond
	return blk
}

func (b *builder) processList(list []syntax.Stmt, currentBlock **Block) {
	for _, st := range list {
		if b.err != nil {
			return
		}
		b.process(st, currentBlock)
	}
}

func (b *builder) process(st syntax.Stmt, currentBlock **Block) {
	label := b.label
	b.label = ""

	switch st := st.(type) {
	case nil, *syntax.EmptyStmt:
	case *syntax.VarDecl, *syntax.ExprStmt, *syntax.FuncDecl, *syntax.ClassDecl, *syntax.ImportDecl:
		b.addElement(currentBlock, st)
	case *syntax.BlockStmt:
		b.processList(st.List, currentBlock)
	case *syntax.IfStmt:
		b.processIf(st, currentBlock)
	case *syntax.WhileStmt:
		b.processWhile(st, label, currentBlock)
	case *syntax.DoWhileStmt:
		b.processDoWhile(st, label, currentBlock)
	case *syntax.ForStmt:
		b.processFor(st, label, currentBlock)
	case *syntax.ForInStmt:
		b.processForIn(st, label, currentBlock)
	case *syntax.ReturnStmt:
		cur := b.addElement(currentBlock, st)
		markReturn(cur)
		b.addEdge(cur, b.graph.Exit, EdgeTypeUnconditional)
		*currentBlock = nil
	case *syntax.ThrowStmt:
		cur := b.addElement(currentBlock, st)
		markReturn(cur)
		if len(b.tries) == 0 {
			b.addEdge(cur, b.graph.Exit, EdgeTypeException)
		}
		*currentBlock = nil
	case *syntax.BreakStmt:
		b.processBreak(st, currentBlock)
	case *syntax.ContinueStmt:
		b.processContinue(st, currentBlock)
	case *syntax.TryStmt:
		b.processTry(st, currentBlock)
	case *syntax.SwitchStmt:
		b.processSwitch(st, label, currentBlock)
	case *syntax.LabeledStmt:
		b.processLabeled(st, currentBlock)
	case *syntax.BadStmt:
		b.processOpaque(st, st.Idents, currentBlock)
	default:
		b.processOpaque(st, nil, currentBlock)
	}
}

func markReturn(b *Block) {
	if b.Type == BlockTypePlain {
		b.Type = BlockTypeReturn
	}
}

func (b *builder) processIf(st *syntax.IfStmt, currentBlock **Block) {
	if st.Test == nil {
		b.fail(st, "if statement without test")
		return
	}
	if st.Then == nil {
		b.fail(st, "if statement without body")
		return
	}
	branch := b.branchBlock(currentBlock, st.Test, BlockTypeBranch)

	thenBlock := b.newBlock(BlockTypePlain, st.Then.Span().Start.Line)
	b.addEdge(branch, thenBlock, EdgeTypeTrue)
	b.process(st.Then, &thenBlock)

	var elseBlock *Block
	if st.Else != nil {
		elseBlock = b.newBlock(BlockTypePlain, st.Else.Span().Start.Line)
		b.addEdge(branch, elseBlock, EdgeTypeFalse)
		b.process(st.Else, &elseBlock)
	}

	join := b.newBlock(BlockTypePlain, st.End.Line)
	if thenBlock != nil {
		b.addEdge(thenBlock, join, EdgeTypeUnconditional)
	}
	if st.Else == nil {
		b.addEdge(branch, join, EdgeTypeFalse)
	} else if elseBlock != nil {
		b.addEdge(elseBlock, join, EdgeTypeUnconditional)
	}
	*currentBlock = join
}

func (b *builder) pushTarget(t *jumpTarget) {
	b.targets = append(b.targets, t)
}

func (b *builder) popTarget() {
	b.targets = b.targets[:len(b.targets)-1]
}

func (b *builder) loopBody(body syntax.Stmt, entry *Block, target *jumpTarget) *Block {
	b.pushTarget(target)
	cur := entry
	b.process(body, &cur)
	b.popTarget()
	return cur
}

func (b *builder) processWhile(st *syntax.WhileStmt, label string, currentBlock **Block) {
	if st.Test == nil {
		b.fail(st, "while loop without test")
		return
	}
	if st.Body == nil {
		b.fail(st, "while loop without body")
		return
	}
	header := b.newBlock(BlockTypeLoop, st.Start.Line)
	if *currentBlock != nil {
		b.addEdge(*currentBlock, header, EdgeTypeUnconditional)
	}
	tmp := header
	b.addElement(&tmp, st.Test)
	header.Cond = st.Test

	body := b.newBlock(BlockTypePlain, st.Body.Span().Start.Line)
	b.addEdge(header, body, EdgeTypeTrue)
	after := b.newBlock(BlockTypePlain, st.End.Line)

	end := b.loopBody(st.Body, body, &jumpTarget{label: label, breakTo: after, continueTo: header, backEdge: true})
	if end != nil {
		b.addBackEdge(end, header, EdgeTypeUnconditional)
	}
	b.addEdge(header, after, EdgeTypeFalse)
	*currentBlock = after
}

func (b *builder) processDoWhile(st *syntax.DoWhileStmt, label string, currentBlock **Block) {
	if st.Test == nil {
		b.fail(st, "do-while loop without test")
		return
	}
	if st.Body == nil {
		b.fail(st, "do-while loop without body")
		return
	}
	body := b.newBlock(BlockTypePlain, st.Start.Line)
	if *currentBlock != nil {
		b.addEdge(*currentBlock, body, EdgeTypeUnconditional)
	}
	test := b.newBlock(BlockTypeLoop, st.Test.Span().Start.Line)
	after := b.newBlock(BlockTypePlain, st.End.Line)

	end := b.loopBody(st.Body, body, &jumpTarget{label: label, breakTo: after, continueTo: test})
	if end != nil {
		b.addEdge(end, test, EdgeTypeUnconditional)
	}
	tmp := test
	b.addElement(&tmp, st.Test)
	test.Cond = st.Test
	b.addBackEdge(test, body, EdgeTypeTrue)
	b.addEdge(test, after, EdgeTypeFalse)
	*currentBlock = after
}

func (b *builder) processFor(st *syntax.ForStmt, label string, currentBlock **Block) {
	if st.Body == nil {
		b.fail(st, "for loop without body")
		return
	}
	if st.Init != nil {
		b.addElement(currentBlock, st.Init)
	}

	header := b.newBlock(BlockTypeLoop, st.Start.Line)
	if *currentBlock != nil {
		b.addEdge(*currentBlock, header, EdgeTypeUnconditional)
	}
	body := b.newBlock(BlockTypePlain, st.Body.Span().Start.Line)
	if st.Test != nil {
		tmp := header
		b.addElement(&tmp, st.Test)
		header.Cond = st.Test
		b.addEdge(header, body, EdgeTypeTrue)
	} else {
		b.addEdge(header, body, EdgeTypeUnconditional)
	}

	var update *Block
	if st.Update != nil {
		update = b.newBlock(BlockTypeLoop, st.Update.Span().Start.Line)
	}
	after := b.newBlock(BlockTypePlain, st.End.Line)

	target := &jumpTarget{label: label, breakTo: after, continueTo: header, backEdge: true}
	if update != nil {
		target.continueTo, target.backEdge = update, false
	}
	end := b.loopBody(st.Body, body, target)

	if update != nil {
		if end != nil {
			b.addEdge(end, update, EdgeTypeUnconditional)
		}
		tmp := update
		b.addElement(&tmp, st.Update)
		b.addBackEdge(update, header, EdgeTypeUnconditional)
	} else if end != nil {
		b.addBackEdge(end, header, EdgeTypeUnconditional)
	}
	if st.Test != nil {
		b.addEdge(header, after, EdgeTypeFalse)
	}
	*currentBlock = after
}

// processForIn models the iteration as a loop head that either binds the
// next element (true) or leaves the loop (false). The head's element is the
// statement itself.
func (b *builder) processForIn(st *syntax.ForInStmt, label string, currentBlock **Block) {
	if st.Right == nil || st.Left == nil {
		b.fail(st, "for-in loop without iteration target")
		return
	}
	if st.Body == nil {
		b.fail(st, "for-in loop without body")
		return
	}
	b.addElement(currentBlock, st.Right)

	header := b.newBlock(BlockTypeLoop, st.Start.Line)
	b.addEdge(*currentBlock, header, EdgeTypeUnconditional)
	tmp := header
	b.addElement(&tmp, st)

	body := b.newBlock(BlockTypePlain, st.Body.Span().Start.Line)
	b.addEdge(header, body, EdgeTypeTrue)
	after := b.newBlock(BlockTypePlain, st.End.Line)

	end := b.loopBody(st.Body, body, &jumpTarget{label: label, breakTo: after, continueTo: header, backEdge: true})
	if end != nil {
		b.addBackEdge(end, header, EdgeTypeUnconditional)
	}
	b.addEdge(header, after, EdgeTypeFalse)
	*currentBlock = after
}

// findTarget resolves the statement a break or continue leaves. Unlabeled
// jumps skip labeled blocks; continue only targets loops.
func (b *builder) findTarget(label string, needContinue bool) *jumpTarget {
	for i := len(b.targets) - 1; i >= 0; i-- {
		t := b.targets[i]
		switch {
		case label != "" && t.label != label:
			continue
		case label == "" && t.isBlock:
			continue
		case needContinue && t.continueTo == nil:
			if label != "" {
				return nil
			}
			continue
		}
		return t
	}
	return nil
}

func (b *builder) processBreak(st *syntax.BreakStmt, currentBlock **Block) {
	t := b.findTarget(st.Label, false)
	if t == nil {
		b.processOpaque(st, nil, currentBlock)
		return
	}
	cur := b.addElement(currentBlock, st)
	b.addEdge(cur, t.breakTo, EdgeTypeUnconditional)
	*currentBlock = nil
}

func (b *builder) processContinue(st *syntax.ContinueStmt, currentBlock **Block) {
	t := b.findTarget(st.Label, true)
	if t == nil {
		b.processOpaque(st, nil, currentBlock)
		return
	}
	cur := b.addElement(currentBlock, st)
	if t.backEdge {
		b.addBackEdge(cur, t.continueTo, EdgeTypeUnconditional)
	} else {
		b.addEdge(cur, t.continueTo, EdgeTypeUnconditional)
	}
	*currentBlock = nil
}

func (b *builder) processTry(st *syntax.TryStmt, currentBlock **Block) {
	if st.Body == nil || (st.Handler == nil && st.Finally == nil) {
		b.fail(st, "try statement without handler or finalizer")
		return
	}

	frame := &tryFrame{}
	b.tries = append(b.tries, frame)
	body := b.newBlock(BlockTypePlain, st.Body.Start.Line)
	if *currentBlock != nil {
		b.addEdge(*currentBlock, body, EdgeTypeUnconditional)
	}
	bodyEnd := body
	b.processList(st.Body.List, &bodyEnd)
	b.tries = b.tries[:len(b.tries)-1]

	var finally *Block
	if st.Finally != nil {
		finally = b.newBlock(BlockTypePlain, st.Finally.Start.Line)
	}
	after := b.newBlock(BlockTypePlain, st.End.Line)
	next := after
	if finally != nil {
		next = finally
	}

	if bodyEnd != nil {
		b.addEdge(bodyEnd, next, EdgeTypeUnconditional)
	}

	if st.Handler != nil {
		handler := b.newBlock(BlockTypePlain, st.Handler.Start.Line)
		for _, blk := range frame.blocks {
			b.addEdge(blk, handler, EdgeTypeException)
		}
		handlerEnd := handler
		b.processList(st.Handler.List, &handlerEnd)
		if handlerEnd != nil {
			b.addEdge(handlerEnd, next, EdgeTypeUnconditional)
		}
	} else {
		for _, blk := range frame.blocks {
			b.addEdge(blk, finally, EdgeTypeException)
		}
	}

	if finally != nil {
		finallyEnd := finally
		b.processList(st.Finally.List, &finallyEnd)
		if finallyEnd != nil {
			b.addEdge(finallyEnd, after, EdgeTypeUnconditional)
			if st.Handler == nil {
				// the exception resumes after the finalizer
				b.addEdge(finallyEnd, b.graph.Exit, EdgeTypeException)
			}
		}
	}
	*currentBlock = after
}

func (b *builder) processSwitch(st *syntax.SwitchStmt, label string, currentBlock **Block) {
	if st.Tag == nil {
		b.fail(st, "switch statement without discriminant")
		return
	}
	src := b.addElement(currentBlock, st.Tag)
	srcType := EdgeTypeUnconditional

	bodies := make([]*Block, len(st.Cases))
	defaultIdx := -1
	for i, cc := range st.Cases {
		if cc == nil {
			b.fail(st, "switch statement with empty case")
			return
		}
		if cc.Test == nil {
			defaultIdx = i
			continue
		}
		test := b.newBlock(BlockTypeBranch, cc.Start.Line)
		b.addEdge(src, test, srcType)
		tmp := test
		b.addElement(&tmp, cc.Test)
		bodies[i] = b.newBlock(BlockTypePlain, cc.Start.Line)
		b.addEdge(test, bodies[i], EdgeTypeTrue)
		src, srcType = test, EdgeTypeFalse
	}
	if defaultIdx >= 0 {
		bodies[defaultIdx] = b.newBlock(BlockTypePlain, st.Cases[defaultIdx].Start.Line)
	}
	after := b.newBlock(BlockTypePlain, st.End.Line)
	if defaultIdx >= 0 {
		b.addEdge(src, bodies[defaultIdx], srcType)
	} else {
		b.addEdge(src, after, srcType)
	}

	b.pushTarget(&jumpTarget{label: label, breakTo: after})
	var fall *Block
	for i, cc := range st.Cases {
		body := bodies[i]
		if fall != nil {
			b.addEdge(fall, body, EdgeTypeUnconditional)
		}
		end := body
		b.processList(cc.Body, &end)
		fall = end
	}
	b.popTarget()
	if fall != nil {
		b.addEdge(fall, after, EdgeTypeUnconditional)
	}
	*currentBlock = after
}

func (b *builder) processLabeled(st *syntax.LabeledStmt, currentBlock **Block) {
	switch st.Body.(type) {
	case *syntax.WhileStmt, *syntax.DoWhileStmt, *syntax.ForStmt, *syntax.ForInStmt, *syntax.SwitchStmt:
		b.label = st.Label
		b.process(st.Body, currentBlock)
		return
	}
	after := b.newBlock(BlockTypePlain, st.End.Line)
	b.pushTarget(&jumpTarget{label: st.Label, breakTo: after, isBlock: true})
	b.process(st.Body, currentBlock)
	b.popTarget()
	if *currentBlock != nil {
		b.addEdge(*currentBlock, after, EdgeTypeUnconditional)
	}
	*currentBlock = after
}

// processOpaque isolates an unmodeled statement in its own block.
func (b *builder) processOpaque(st syntax.Stmt, idents []*syntax.Ident, currentBlock **Block) {
	blk := b.newBlock(BlockTypeOpaque, st.Span().Start.Line)
	blk.Opaque = true
	blk.EndLine = st.Span().End.Line
	blk.Elements = []syntax.Node{st}
	seen := make(map[*syntax.Binding]bool)
	for _, id := range idents {
		if id.Binding != nil && !seen[id.Binding] {
			seen[id.Binding] = true
			blk.Touched = append(blk.Touched, id.Binding)
		}
	}
	if *currentBlock != nil {
		b.addEdge(*currentBlock, blk, EdgeTypeUnconditional)
	}
	*currentBlock = blk
}
