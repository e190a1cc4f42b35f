package biome_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yumyai/emgapi/internal/testutil"
	"github.com/yumyai/emgapi/pkg/biome"
	"github.com/yumyai/emgapi/pkg/loader"
	"github.com/yumyai/emgapi/pkg/model"
)

func lineages(nodes []model.BiomeNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Lineage
	}
	return out
}

func fixtureEngine(t *testing.T) *biome.Engine {
	t.Helper()
	return biome.NewEngine(testutil.Stores(t).SQL)
}

func TestRoots(t *testing.T) {
	e := fixtureEngine(t)

	page, err := e.Roots(context.Background(), model.All)
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "root2"}, lineages(page.Items))
	assert.Equal(t, 2, page.Count)

	page, err = e.Roots(context.Background(), model.NewWindow(2, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"root2"}, lineages(page.Items))
	assert.Equal(t, 2, page.Count)
}

func TestRootsEmpty(t *testing.T) {
	e := biome.NewEngine(testutil.EmptyStores(t).SQL)

	page, err := e.Roots(context.Background(), model.All)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.Equal(t, 0, page.Count)
}

func TestChildren(t *testing.T) {
	e := fixtureEngine(t)
	ctx := context.Background()

	page, err := e.Children(ctx, "root", model.All)
	require.NoError(t, err)
	assert.Equal(t, []string{"root:foo", "root:foo2"}, lineages(page.Items))

	page, err = e.Children(ctx, "root:foo", model.All)
	require.NoError(t, err)
	assert.Equal(t, []string{"root:foo:bar"}, lineages(page.Items))

	// a leaf has no children, which is not an error
	page, err = e.Children(ctx, "root:foo2:qux:deep", model.All)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
}

func TestChildrenErrors(t *testing.T) {
	e := fixtureEngine(t)
	ctx := context.Background()

	_, err := e.Children(ctx, "root:nope", model.All)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	// exact-string matching only
	_, err = e.Children(ctx, "Root", model.All)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = e.Children(ctx, "", model.All)
	assert.True(t, errors.Is(err, model.ErrInvalidIdentifier))

	_, err = e.Descendants(ctx, "root/foo", model.All)
	assert.True(t, errors.Is(err, model.ErrInvalidIdentifier))
}

func TestDescendants(t *testing.T) {
	e := fixtureEngine(t)
	ctx := context.Background()

	page, err := e.Descendants(ctx, "root", model.All)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"root:foo", "root:foo2", "root:foo2:baz", "root:foo2:qux",
		"root:foo2:qux:deep", "root:foo:bar",
	}, lineages(page.Items))
	assert.Equal(t, 6, page.Count)

	page, err = e.Descendants(ctx, "root", model.Window{Offset: 1, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"root:foo2", "root:foo2:baz"}, lineages(page.Items))
	assert.Equal(t, 6, page.Count)

	page, err = e.Descendants(ctx, "root", model.Window{Offset: 4})
	require.NoError(t, err)
	assert.Equal(t, []string{"root:foo2:qux:deep", "root:foo:bar"}, lineages(page.Items))
}

func TestChildrenSubsetOfDescendants(t *testing.T) {
	e := fixtureEngine(t)
	ctx := context.Background()

	all, err := e.Descendants(ctx, "root", model.All)
	require.NoError(t, err)
	roots, err := e.Roots(ctx, model.All)
	require.NoError(t, err)

	for _, n := range append(roots.Items, all.Items...) {
		children, err := e.Children(ctx, n.Lineage, model.All)
		require.NoError(t, err)
		desc, err := e.Descendants(ctx, n.Lineage, model.All)
		require.NoError(t, err)

		assert.Subset(t, lineages(desc.Items), lineages(children.Items), n.Lineage)

		// equal exactly when the subtree is at most two levels deep
		shallow := true
		for _, d := range desc.Items {
			if d.Depth > n.Depth+1 {
				shallow = false
			}
		}
		assert.Equal(t, shallow, len(children.Items) == len(desc.Items), n.Lineage)
	}
}

func TestGet(t *testing.T) {
	e := fixtureEngine(t)

	n, err := e.Get(context.Background(), "root:foo2:qux")
	require.NoError(t, err)
	assert.Equal(t, 6, n.ID)
	assert.Equal(t, "qux", n.Name)
	assert.Equal(t, 3, n.Depth)
}

func TestAncestorClosure(t *testing.T) {
	e := fixtureEngine(t)
	ctx := context.Background()

	ids, err := e.AncestorClosure(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 4, 6}, ids)

	ids, err = e.AncestorClosure(ctx, 1)
	require.NoError(t, err)
	assert.Empty(t, ids)

	_, err = e.AncestorClosure(ctx, 404)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestStudyBiomes(t *testing.T) {
	e := fixtureEngine(t)
	ctx := context.Background()

	nodes, err := e.StudyBiomes(ctx, "MGYS00000003", false)
	require.NoError(t, err)
	assert.Equal(t, []string{"root:foo2:qux", "root:foo2:qux:deep"}, lineages(nodes))

	nodes, err = e.StudyBiomes(ctx, "MGYS00000003", true)
	require.NoError(t, err)
	assert.Equal(t, []string{"root", "root:foo2", "root:foo2:qux", "root:foo2:qux:deep"}, lineages(nodes))

	_, err = e.StudyBiomes(ctx, "MGYS00000002", false)
	assert.True(t, errors.Is(err, model.ErrNotFound))

	_, err = e.StudyBiomes(ctx, "MGYS-1", false)
	assert.True(t, errors.Is(err, model.ErrInvalidIdentifier))
}

func TestTopN(t *testing.T) {
	e := fixtureEngine(t)
	ctx := context.Background()

	top, err := e.TopN(ctx, []int{4, 2, 1, 8, 404}, 10)
	require.NoError(t, err)
	require.Len(t, top, 4)
	got := make([]string, len(top))
	for i, c := range top {
		got[i] = c.Lineage
	}
	// foo2 and foo tie on two samples and keep their input order
	assert.Equal(t, []string{"root", "root:foo2", "root:foo", "root2"}, got)
	assert.Equal(t, []int{4, 2, 2, 0}, []int{top[0].SamplesCount, top[1].SamplesCount, top[2].SamplesCount, top[3].SamplesCount})

	top, err = e.TopN(ctx, []int{2, 4}, 1)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, "root:foo", top[0].Lineage)

	top, err = e.TopN(ctx, nil, 10)
	require.NoError(t, err)
	assert.Empty(t, top)
}

func TestSamplesAndStudies(t *testing.T) {
	e := fixtureEngine(t)
	ctx := context.Background()

	samples, err := e.Samples(ctx, "root:foo2", model.All)
	require.NoError(t, err)
	require.Equal(t, 2, samples.Count)
	assert.Equal(t, "ERS0004", samples.Items[0].Accession)
	assert.Equal(t, "root:foo2:qux:deep", samples.Items[0].Lineage)
	assert.Equal(t, "ERS0005", samples.Items[1].Accession)

	studies, err := e.Studies(ctx, "root", model.All)
	require.NoError(t, err)
	require.Equal(t, 2, studies.Count)
	assert.Equal(t, "MGYS00000001", studies.Items[0].Accession)
	assert.Equal(t, "MGYS00000003", studies.Items[1].Accession)

	studies, err = e.Studies(ctx, "root2", model.All)
	require.NoError(t, err)
	assert.Empty(t, studies.Items)

	n, err := e.SampleCount(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, 4, n)
}

// root/foo/bar with one public sample two levels down.
func TestRollupScenario(t *testing.T) {
	ds := &loader.Dataset{
		Biomes: []loader.Biome{
			{ID: 1, Name: "root", Lineage: "root", Depth: 1, Lft: 1, Rgt: 50},
			{ID: 2, Name: "foo", Lineage: "root:foo", Depth: 2, Lft: 2, Rgt: 25},
			{ID: 3, Name: "bar", Lineage: "root:foo:bar", Depth: 3, Lft: 3, Rgt: 24},
		},
		Samples: []loader.Sample{{ID: 1, Accession: "ERS1", BiomeID: 3, Public: true}},
	}
	e := biome.NewEngine(testutil.Load(t, ds).SQL)
	ctx := context.Background()

	page, err := e.Children(ctx, "root", model.All)
	require.NoError(t, err)
	assert.Equal(t, []string{"root:foo"}, lineages(page.Items))

	page, err = e.Children(ctx, "root:foo", model.All)
	require.NoError(t, err)
	assert.Equal(t, []string{"root:foo:bar"}, lineages(page.Items))

	n, err := e.SampleCount(ctx, "root")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	top, err := e.TopN(ctx, []int{1}, 10)
	require.NoError(t, err)
	require.Len(t, top, 1)
	assert.Equal(t, 1, top[0].SamplesCount)
}
