package cfg

import (
	"fmt"
	"io"
	"strings"
)

// PrintDot renders the block CFG in GraphViz dot format. The label callback
// may return extra text per instruction; return "" for the default rendering.
func (g *BlockCFG) PrintDot(w io.Writer, label func(i int) string) {
	fmt.Fprintln(w, "digraph cfg {")
	fmt.Fprintln(w, "  node [shape=box];")

	for _, b := range g.Blocks {
		var lines []string
		for _, i := range b.Instrs {
			text := ""
			if label != nil {
				text = label(i)
			}
			if text == "" {
				text = g.Instrs[i].String()
			}
			lines = append(lines, escapeDot(text))
		}
		shape := ""
		if g.Exits[b.ID] {
			shape = ", peripheries=2"
		}
		fmt.Fprintf(w, "  b%d [label=\"B%d\\n%s\"%s];\n", b.ID, b.ID, strings.Join(lines, "\\n"), shape)
	}

	for _, b := range g.Blocks {
		for _, s := range b.Succs {
			fmt.Fprintf(w, "  b%d -> b%d;\n", b.ID, s)
		}
	}
	fmt.Fprintln(w, "}")
}

func escapeDot(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	return strings.ReplaceAll(s, `"`, `\"`)
}
