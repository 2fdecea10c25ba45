// Package cfg builds Control Flow Graphs (CFGs) over the statements of one
// function and exports them in a serializable form.
package cfg

import (
	"errors"

	"github.com/l3aro/go-symflow/pkg/syntax"
)

// ErrMalformedInput is returned when a function body violates basic
// structural expectations, such as a branch without a test.
var ErrMalformedInput = errors.New("malformed input")

// BlockType represents the type of a CFG block.
type BlockType string

const (
	BlockTypeEntry  BlockType = "entry"     // Function entry point
	BlockTypeBranch BlockType = "branch"    // Ends with a two-way test
	BlockTypeLoop   BlockType = "loop_head" // Loop test or iteration step
	BlockTypeReturn BlockType = "return"    // Ends with return or throw
	BlockTypeExit   BlockType = "exit"      // Function exit point
	BlockTypePlain  BlockType = "plain"     // Regular statements
	BlockTypeOpaque BlockType = "opaque"    // Unmodeled construct
)

// EdgeType represents the type of a CFG edge.
type EdgeType string

const (
	EdgeTypeUnconditional EdgeType = "unconditional"
	EdgeTypeTrue          EdgeType = "true"
	EdgeTypeFalse         EdgeType = "false"
	EdgeTypeBackEdge      EdgeType = "back_edge"
	EdgeTypeException     EdgeType = "exception"
)

// Block is a basic block. Elements are statements and expressions evaluated
// in order; a branch block ends with its Cond as the last element. Blocks are
// immutable once Build returns.
type Block struct {
	ID       int
	Type     BlockType
	Elements []syntax.Node
	Cond     syntax.Expr
	Succs    []*Edge
	Preds    []*Edge

	// Opaque blocks hold a single unmodeled construct; Touched lists the
	// bindings it mentions.
	Opaque  bool
	Touched []*syntax.Binding

	StartLine int
	EndLine   int
}

// Edge connects two blocks. Back marks a loop-back edge; its Type still says
// which branch outcome it carries.
type Edge struct {
	From *Block
	To   *Block
	Type EdgeType
	Back bool
}

// Label is the edge type as reported, with back edges labeled back_edge.
func (e *Edge) Label() EdgeType {
	if e.Back {
		return EdgeTypeBackEdge
	}
	return e.Type
}

// CFGBlock is the serializable form of a Block.
type CFGBlock struct {
	ID           string    `json:"id"`
	Type         BlockType `json:"type"`
	StartLine    int       `json:"start_line"`
	EndLine      int       `json:"end_line"`
	Statements   []string  `json:"statements"`
	Predecessors []string  `json:"predecessors"`
}

// CFGEdge is the serializable form of an Edge.
type CFGEdge struct {
	SourceID  string   `json:"source_id"`
	TargetID  string   `json:"target_id"`
	EdgeType  EdgeType `json:"edge_type"`
	Condition string   `json:"condition,omitempty"`
}

// CFGInfo represents the complete Control Flow Graph for a function.
type CFGInfo struct {
	FunctionName         string              `json:"function_name"`
	Blocks               map[string]CFGBlock `json:"blocks"`
	Edges                []CFGEdge           `json:"edges"`
	EntryBlockID         string              `json:"entry_block_id"`
	ExitBlockIDs         []string            `json:"exit_block_ids"`
	CyclomaticComplexity int                 `json:"cyclomatic_complexity"`
}
