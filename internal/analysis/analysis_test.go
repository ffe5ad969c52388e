package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/efebarandurmaz/reach/internal/graph"
	"github.com/efebarandurmaz/reach/internal/reach"
)

const links = "id,tail,head,type,time,tail_domain,head_domain,source\n" +
	"1,A,B,customer,2021-04-01,a.com,b.com,x\n" +
	"2,B,C,partnership,2021-04-02,b.com,c.com,x\n" +
	"3,C,D,N/A,2021-04-03,c.com,d.com,x\n"

func writeLinks(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "links.csv")
	require.NoError(t, os.WriteFile(path, []byte(links), 0o644))
	return path
}

func TestRun_WritesDistributions(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out")
	job := Job{Input: writeLinks(t), OutputDir: out, Hops: []int{1, 2}, Workers: 2}

	m, err := NewRunner(nil).Run(context.Background(), job)
	require.NoError(t, err)

	assert.Equal(t, 3, m.Dataset.Rows)
	assert.Equal(t, 2, m.Dataset.Accepted)
	assert.Equal(t, 1, m.Dataset.Skipped)
	assert.Equal(t, 3, m.Dataset.Companies)
	require.Len(t, m.Distributions, 2)
	assert.Equal(t, []int{0, 2, 1}, m.Distributions[0].Histogram)
	assert.Equal(t, []int{0, 0, 3}, m.Distributions[1].Histogram)

	data, err := os.ReadFile(filepath.Join(out, "Distance_1_Distribution.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0\n2\n1\n", string(data))

	data, err = os.ReadFile(filepath.Join(out, "Distance_2_Distribution.txt"))
	require.NoError(t, err)
	assert.Equal(t, "0\n0\n3\n", string(data))
}

func TestRun_KindFilter(t *testing.T) {
	job := Job{Input: writeLinks(t), Hops: []int{2}, Kinds: []graph.Kind{graph.KindCustomer, graph.KindSupplier}}

	m, err := NewRunner(nil).Run(context.Background(), job)
	require.NoError(t, err)
	require.Len(t, m.Distributions, 1)
	assert.Equal(t, []int{1, 2}, m.Distributions[0].Histogram)
	assert.Equal(t, "customer,supplier", m.Distributions[0].Kinds)
	assert.Empty(t, m.Distributions[0].OutputPath)
}

func TestRun_NoInput(t *testing.T) {
	_, err := NewRunner(nil).Run(context.Background(), Job{Hops: []int{1}})
	assert.ErrorIs(t, err, ErrNoInput)
}

func TestRun_MissingFile(t *testing.T) {
	_, err := NewRunner(nil).Run(context.Background(), Job{Input: filepath.Join(t.TempDir(), "nope.csv"), Hops: []int{1}})
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestRun_NegativeHop(t *testing.T) {
	_, err := NewRunner(nil).Run(context.Background(), Job{Input: writeLinks(t), Hops: []int{-1}})
	assert.Error(t, err)
}

func TestFilterFor(t *testing.T) {
	assert.Equal(t, "all", FilterFor(nil).String())
	assert.Equal(t, reach.KindsOf(graph.KindPartner).String(), FilterFor([]graph.Kind{graph.KindPartner}).String())
}
