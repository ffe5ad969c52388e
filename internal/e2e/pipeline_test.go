package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/efebarandurmaz/reach/internal/analysis"
	"github.com/efebarandurmaz/reach/internal/export"
	"github.com/efebarandurmaz/reach/internal/graph"
	"github.com/efebarandurmaz/reach/internal/ingest"
	"github.com/efebarandurmaz/reach/internal/reach"
)

// writeDataset writes a links CSV in the upstream column layout.
func writeDataset(t *testing.T, dir string, rows ...string) string {
	t.Helper()
	var b strings.Builder
	b.WriteString("link_id,tail_name,head_name,type,update_time,tail_domain,head_domain,source\n")
	for _, r := range rows {
		b.WriteString(r)
		b.WriteString("\n")
	}
	path := filepath.Join(dir, "links.csv")
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
}

func TestE2E_AnalyzeWritesDistributionFiles(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()

	// 1. A small supply chain with one investor and a competitor pair.
	input := writeDataset(t, tmpDir,
		"1,Acme,Bolt,customer,2021-04-01,acme.com,bolt.io,news",
		"2,Bolt,Cog,customer,2021-04-02,bolt.io,cog.net,news",
		"3,Fund,Acme,investment,2021-04-03,fund.vc,acme.com,news",
		"4,Cog,Dyn,competitor,2021-04-04,cog.net,dyn.org,news",
		"5,Dyn,Eon,N/A,2021-04-05,dyn.org,eon.com,news",
		"6,Eon,Fizz,acquisition,2021-04-06,eon.com,fizz.com,news",
	)
	outDir := filepath.Join(tmpDir, "out")

	// 2. Run the analysis with the default hop limits.
	m, err := analysis.NewRunner(nil).Run(ctx, analysis.Job{
		Input:     input,
		OutputDir: outDir,
		Hops:      []int{1, 2},
		Workers:   2,
	})
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}

	// 3. Dataset accounting.
	if m.Dataset.Rows != 6 || m.Dataset.Accepted != 4 || m.Dataset.Skipped != 2 {
		t.Errorf("unexpected dataset metrics %+v", m.Dataset)
	}
	if m.Dataset.Companies != 5 || m.Dataset.Relationships != 8 {
		t.Errorf("unexpected graph size %+v", m.Dataset)
	}

	// 4. Distribution files. The graph is a path Fund-Acme-Bolt-Cog-Dyn.
	got := readLines(t, filepath.Join(outDir, "Distance_1_Distribution.txt"))
	if want := []string{"0", "2", "3"}; !equal(got, want) {
		t.Errorf("hop 1 distribution = %v, want %v", got, want)
	}
	got = readLines(t, filepath.Join(outDir, "Distance_2_Distribution.txt"))
	if want := []string{"0", "0", "2", "2", "1"}; !equal(got, want) {
		t.Errorf("hop 2 distribution = %v, want %v", got, want)
	}

	// 5. Every distribution accounts for every company.
	for _, d := range m.Distributions {
		if d.Summary.Total != m.Dataset.Companies {
			t.Errorf("hops=%d total %d, want %d", d.Hops, d.Summary.Total, m.Dataset.Companies)
		}
	}
}

func TestE2E_KindFilterNarrowsReach(t *testing.T) {
	ctx := context.Background()
	input := writeDataset(t, t.TempDir(),
		"1,Acme,Bolt,customer,2021-04-01,acme.com,bolt.io,news",
		"2,Bolt,Cog,partnership,2021-04-02,bolt.io,cog.net,news",
	)

	g, _, err := ingest.NewReader(nil).ReadFile(ctx, input)
	if err != nil {
		t.Fatal(err)
	}

	all := reach.BuildDistribution(g, 2, reach.AllKinds())
	supply := reach.BuildDistribution(g, 2, reach.KindsOf(graph.KindCustomer, graph.KindSupplier))
	partner := reach.BuildDistribution(g, 2, reach.KindsOf(graph.KindPartner))

	if fmt.Sprint(all) != "[0 0 3]" {
		t.Errorf("all kinds = %v", all)
	}
	if fmt.Sprint(supply) != "[1 2]" {
		t.Errorf("supply chain = %v", supply)
	}
	if fmt.Sprint(partner) != "[1 2]" {
		t.Errorf("partners = %v", partner)
	}
}

func TestE2E_JSONExportPreservesDistributions(t *testing.T) {
	ctx := context.Background()
	input := writeDataset(t, t.TempDir(),
		"1,Acme,Bolt,customer,2021-04-01,acme.com,bolt.io,news",
		"2,Bolt,Cog,investment,2021-04-02,bolt.io,cog.net,news",
		"3,Cog,Acme,competitor,2021-04-03,cog.net,acme.com,news",
		"4,Dyn,Eon,partnership,2021-04-04,dyn.org,eon.com,news",
	)

	g, _, err := ingest.NewReader(nil).ReadFile(ctx, input)
	if err != nil {
		t.Fatal(err)
	}

	data, err := export.ExportJSON(g)
	if err != nil {
		t.Fatal(err)
	}
	var restored graph.Graph
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("restore: %v", err)
	}

	for hops := 0; hops <= 3; hops++ {
		want := reach.BuildDistribution(g, hops, reach.AllKinds())
		got := reach.BuildDistribution(&restored, hops, reach.AllKinds())
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("hops=%d: restored %v, original %v", hops, got, want)
		}
	}
}

func TestE2E_DumpListsMirrors(t *testing.T) {
	ctx := context.Background()
	input := writeDataset(t, t.TempDir(),
		"1,Fund,Acme,investment,2021-04-03,fund.vc,acme.com,news",
	)

	g, _, err := ingest.NewReader(nil).ReadFile(ctx, input)
	if err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := export.WriteGraph(&buf, g); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	if !strings.Contains(out, `Connection ID: 1-RECI, Tail Node: Company { name: "Acme", domain_name: "acme.com" }, Head Node: Company { name: "Fund", domain_name: "fund.vc" }, Edge Type: Investee`) {
		t.Errorf("dump missing investee mirror:\n%s", out)
	}
}

func TestE2E_EmptyDataset(t *testing.T) {
	ctx := context.Background()
	tmpDir := t.TempDir()
	input := writeDataset(t, tmpDir)
	outDir := filepath.Join(tmpDir, "out")

	m, err := analysis.NewRunner(nil).Run(ctx, analysis.Job{Input: input, OutputDir: outDir, Hops: []int{1}})
	if err != nil {
		t.Fatalf("analysis failed: %v", err)
	}
	if m.Dataset.Companies != 0 {
		t.Errorf("expected no companies, got %d", m.Dataset.Companies)
	}
	data, err := os.ReadFile(filepath.Join(outDir, "Distance_1_Distribution.txt"))
	if err != nil {
		t.Fatalf("distribution file should exist: %v", err)
	}
	if len(data) != 0 {
		t.Errorf("expected empty file, got %q", data)
	}
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
