// Package output renders analysis results for the terminal, as colored text
// or as JSON.
package output

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/fatih/color"
	jsoniter "github.com/json-iterator/go"
	"github.com/schollz/progressbar/v3"

	"github.com/l3aro/go-symflow/pkg/cfg"
	"github.com/l3aro/go-symflow/pkg/checks"
	"github.com/l3aro/go-symflow/pkg/complexity"
	"github.com/l3aro/go-symflow/pkg/symbolic"
	"github.com/l3aro/go-symflow/pkg/syntax"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	location = color.New(color.Bold).SprintFunc()
	ruleKey  = color.New(color.FgYellow).SprintFunc()
	faint    = color.New(color.Faint).SprintFunc()
	success  = color.New(color.FgGreen).SprintFunc()
	failure  = color.New(color.FgRed, color.Bold).SprintFunc()
	heading  = color.New(color.FgCyan, color.Bold).SprintFunc()
)

// JSON writes v as indented JSON followed by a newline.
func JSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	_, err = fmt.Fprintln(w, string(data))
	return err
}

// Issues prints one line per issue, followed by its secondary locations.
func Issues(w io.Writer, issues []checks.Issue) {
	for _, is := range issues {
		fmt.Fprintf(w, "%s: %s %s\n", location(is.Path+":"+is.Pos.String()), is.Message, ruleKey("["+is.Rule+"]"))
		for _, loc := range is.Secondary {
			msg := loc.Message
			if msg == "" {
				msg = "+1"
			}
			fmt.Fprintf(w, "    %s %s\n", faint(loc.Pos.String()), faint(msg))
		}
	}
}

// Summary prints the closing line of a check run.
func Summary(w io.Writer, files, issues, failed int) {
	switch {
	case failed > 0:
		fmt.Fprintf(w, "%s in %d files, %s\n", plural(issues, "issue"), files, failure(plural(failed, "file")+" failed"))
	case issues > 0:
		fmt.Fprintf(w, "%s in %d files\n", failure(plural(issues, "issue")), files)
	default:
		fmt.Fprintf(w, "%s in %d files\n", success("no issues"), files)
	}
}

func plural(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return strconv.Itoa(n) + " " + noun + "s"
}

// VerdictView is the JSON form of a complexity verdict.
type VerdictView struct {
	Path    string `json:"path"`
	Message string `json:"message"`
	complexity.Verdict
}

// Verdicts prints complexity verdicts with their operator locations.
func Verdicts(w io.Writer, views []VerdictView) {
	for _, v := range views {
		fmt.Fprintf(w, "%s: %s %s\n", location(v.Path+":"+v.Pos.String()), v.Message, faint(fmt.Sprintf("(effort %d)", v.EffortToFix)))
		ops := make([]string, len(v.Operators))
		for i, op := range v.Operators {
			ops[i] = op.String()
		}
		fmt.Fprintf(w, "    %s\n", faint("operators at "+strings.Join(ops, ", ")))
	}
}

// CFG prints a control flow graph in block order.
func CFG(w io.Writer, info *cfg.CFGInfo) {
	fmt.Fprintf(w, "%s\n", heading("=== CFG for function: "+info.FunctionName+" ==="))
	fmt.Fprintf(w, "Cyclomatic Complexity: %d\n", info.CyclomaticComplexity)
	fmt.Fprintf(w, "Entry Block: %s\n", info.EntryBlockID)
	fmt.Fprintf(w, "Exit Blocks: %s\n", strings.Join(info.ExitBlockIDs, ", "))

	ids := make([]string, 0, len(info.Blocks))
	for id := range info.Blocks {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return blockNumber(ids[i]) < blockNumber(ids[j]) })

	fmt.Fprintf(w, "\nBlocks (%d):\n", len(ids))
	for _, id := range ids {
		block := info.Blocks[id]
		fmt.Fprintf(w, "  %s (%s, lines %d-%d)\n", id, block.Type, block.StartLine, block.EndLine)
		for _, stmt := range block.Statements {
			fmt.Fprintf(w, "    %s\n", stmt)
		}
	}

	fmt.Fprintf(w, "\nEdges (%d):\n", len(info.Edges))
	for _, edge := range info.Edges {
		if edge.Condition != "" {
			fmt.Fprintf(w, "  %s --%s--> %s  %s\n", edge.SourceID, edge.EdgeType, edge.TargetID, faint("["+edge.Condition+"]"))
			continue
		}
		fmt.Fprintf(w, "  %s --%s--> %s\n", edge.SourceID, edge.EdgeType, edge.TargetID)
	}
}

func blockNumber(id string) int {
	n, _ := strconv.Atoi(strings.TrimPrefix(id, "block_"))
	return n
}

// StateView is the JSON form of one observation.
type StateView struct {
	Line      int              `json:"line"`
	Column    int              `json:"column"`
	Statement string           `json:"statement"`
	Entries   []symbolic.Entry `json:"entries"`
}

// StateViews converts observations into their printable form.
func StateViews(file *syntax.File, observations []symbolic.Observation) []StateView {
	views := make([]StateView, len(observations))
	for i, o := range observations {
		views[i] = StateView{
			Line:      o.Pos.Line,
			Column:    o.Pos.Column,
			Statement: firstLine(file.Text(o.Node)),
			Entries:   o.Entries(),
		}
	}
	return views
}

// States prints the observation stream of one function.
func States(w io.Writer, function string, views []StateView, diags []symbolic.Diagnostic) {
	fmt.Fprintf(w, "%s\n", heading("=== States for function: "+function+" ==="))
	for _, v := range views {
		parts := make([]string, len(v.Entries))
		for i, e := range v.Entries {
			parts[i] = e.String()
		}
		fmt.Fprintf(w, "%s  %s\n", location(fmt.Sprintf("%d:%d", v.Line, v.Column)), v.Statement)
		if len(parts) > 0 {
			fmt.Fprintf(w, "    %s\n", faint(strings.Join(parts, ", ")))
		}
	}
	for _, d := range diags {
		fmt.Fprintf(w, "%s %s: %s\n", ruleKey(string(d.Kind)), d.Pos, d.Message)
	}
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return strings.TrimSpace(s[:i]) + " ..."
	}
	return strings.TrimSpace(s)
}

// NewProgress returns a progress bar over total files on stderr. When
// disabled the bar is silent.
func NewProgress(total int, enabled bool) *progressbar.ProgressBar {
	if !enabled {
		return progressbar.DefaultSilent(int64(total))
	}
	return progressbar.NewOptions(total,
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("analyzing"),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)
}
