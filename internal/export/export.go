// Package export writes graphs and distributions to text formats.
package export

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/efebarandurmaz/reach/internal/graph"
	"github.com/efebarandurmaz/reach/internal/reach"
)

// DistributionFileName returns the file name used for a hop limit's histogram.
func DistributionFileName(hops int) string {
	return fmt.Sprintf("Distance_%d_Distribution.txt", hops)
}

// WriteHistogram writes one integer per line in index order.
func WriteHistogram(w io.Writer, h reach.Histogram) error {
	bw := bufio.NewWriter(w)
	for _, line := range h.Lines() {
		if _, err := bw.WriteString(line + "\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// WriteHistogramFile creates or truncates path and writes h to it.
func WriteHistogramFile(path string, h reach.Histogram) error {
	return writeFile(path, func(w io.Writer) error { return WriteHistogram(w, h) })
}

// WriteGraph writes a human-readable dump of every company and its connections.
func WriteGraph(w io.Writer, g *graph.Graph) error {
	bw := bufio.NewWriter(w)
	for _, c := range g.Companies() {
		fmt.Fprintf(bw, "Company: %s, Domain: %s\n", c.Name, c.Domain)
		for _, r := range g.Relationships(c) {
			fmt.Fprintf(bw, "   Connection ID: %s, Tail Node: %s, Head Node: %s, Edge Type: %s, Update Time: %s\n",
				r.ID, dumpCompany(r.Tail), dumpCompany(r.Head), dumpKind(r.Kind), r.UpdatedAt)
		}
	}
	return bw.Flush()
}

// WriteGraphFile creates or truncates path and dumps g to it.
func WriteGraphFile(path string, g *graph.Graph) error {
	return writeFile(path, func(w io.Writer) error { return WriteGraph(w, g) })
}

// ExportDOT generates a Graphviz DOT representation of the graph. Only
// forward relationships are drawn; their mirrors are implied.
func ExportDOT(g *graph.Graph) string {
	var b strings.Builder
	b.WriteString("digraph companies {\n")
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  node [fontname=\"Helvetica\" shape=box style=filled fillcolor=\"#1f6feb\" fontcolor=white];\n")
	b.WriteString("  edge [fontname=\"Helvetica\" fontsize=10];\n\n")

	for _, c := range g.Companies() {
		b.WriteString(fmt.Sprintf("  \"%s\" [label=\"%s\\n%s\"];\n", nodeID(c), escapeDOT(c.Name), escapeDOT(c.Domain)))
	}
	if g.Len() > 0 {
		b.WriteString("\n")
	}

	for _, r := range g.Records() {
		b.WriteString(fmt.Sprintf("  \"%s\" -> \"%s\" [label=\"%s\" style=%s color=\"%s\"];\n",
			nodeID(r.Tail), nodeID(r.Head), r.Kind, edgeStyle(r.Kind), edgeColor(r.Kind)))
	}

	b.WriteString("}\n")
	return b.String()
}

// ExportJSON serializes the graph to JSON.
func ExportJSON(g *graph.Graph) ([]byte, error) {
	return json.MarshalIndent(g, "", "  ")
}

// FormatSummary returns a human-readable block of distribution statistics.
func FormatSummary(hops int, s reach.Summary) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Analysis for Distance = %d Distribution:\n", hops))
	b.WriteString(fmt.Sprintf("Companies: %d\n", s.Total))
	b.WriteString(fmt.Sprintf("Mean: %g\n", s.Mean))
	b.WriteString(fmt.Sprintf("Median: %g\n", s.Median))
	b.WriteString(fmt.Sprintf("Standard Deviation: %g\n", s.StdDev))
	b.WriteString(fmt.Sprintf("y-max: (%d, %d), x-max: (%d, %d)\n", s.YMax.Index, s.YMax.Value, s.XMax.Index, s.XMax.Value))
	b.WriteString(fmt.Sprintf("y-min: (%d, %d), x-min: (%d, %d)\n", s.YMin.Index, s.YMin.Value, s.XMin.Index, s.XMin.Value))
	return b.String()
}

func writeFile(path string, fn func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output dir: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

// dumpCompany renders a company as a record literal in the graph dump.
func dumpCompany(c graph.Company) string {
	return fmt.Sprintf("Company { name: %q, domain_name: %q }", c.Name, c.Domain)
}

// dumpKind renders a kind as its capitalized variant name. Kinds outside
// the known set print as None.
func dumpKind(k graph.Kind) string {
	if !k.IsKnown() {
		return "None"
	}
	name := string(k)
	return strings.ToUpper(name[:1]) + name[1:]
}

func nodeID(c graph.Company) string {
	return escapeDOT(c.Name + "@" + c.Domain)
}

func escapeDOT(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}

func edgeStyle(kind graph.Kind) string {
	switch kind {
	case graph.KindCustomer, graph.KindSupplier:
		return "solid"
	case graph.KindInvestor, graph.KindInvestee:
		return "bold"
	case graph.KindPartner:
		return "dashed"
	case graph.KindCompetitor:
		return "dotted"
	default:
		return "solid"
	}
}

func edgeColor(kind graph.Kind) string {
	switch kind {
	case graph.KindCustomer, graph.KindSupplier:
		return "#3fb950"
	case graph.KindInvestor, graph.KindInvestee:
		return "#d29922"
	case graph.KindPartner:
		return "#8957e5"
	case graph.KindCompetitor:
		return "#f85149"
	default:
		return "#c9d1d9"
	}
}
