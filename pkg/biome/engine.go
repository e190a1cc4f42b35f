package biome

import (
	"context"
	"database/sql"
	"errors"
	"sort"

	"github.com/yumyai/emgapi/pkg/db"
	"github.com/yumyai/emgapi/pkg/model"
)

const nodeColumns = `b.biome_id, b.biome_name, b.lineage, b.depth, b.lft, b.rgt`

// Engine answers hierarchy questions over the nested-set encoded biome
// table. It holds no state besides the store handle.
type Engine struct {
	rel *db.Relational
}

func NewEngine(rel *db.Relational) *Engine {
	return &Engine{rel: rel}
}

// Roots lists the depth 1 nodes ordered by lineage.
func (e *Engine) Roots(ctx context.Context, w model.Window) (model.Page[model.BiomeNode], error) {
	return e.nodePage(ctx, `FROM biome b WHERE b.depth = 1`, nil, w)
}

// Get returns the node with exactly this lineage.
func (e *Engine) Get(ctx context.Context, lineage string) (model.BiomeNode, error) {
	if err := model.ValidateLineage(lineage); err != nil {
		return model.BiomeNode{}, err
	}

	stm, err := e.rel.DB.PrepareContext(ctx, e.rel.Rebind(`SELECT `+nodeColumns+` FROM biome b WHERE b.lineage = ?`))
	if err != nil {
		return model.BiomeNode{}, model.RelationalError("prepare biome", err)
	}
	defer stm.Close()

	var n model.BiomeNode
	err = stm.QueryRowContext(ctx, lineage).Scan(&n.ID, &n.Name, &n.Lineage, &n.Depth, &n.Lft, &n.Rgt)
	if errors.Is(err, sql.ErrNoRows) {
		return model.BiomeNode{}, model.NotFound("biome", lineage)
	}
	if err != nil {
		return model.BiomeNode{}, model.RelationalError("get biome", err)
	}
	return n, nil
}

// Children returns the nodes one level below lineage.
func (e *Engine) Children(ctx context.Context, lineage string, w model.Window) (model.Page[model.BiomeNode], error) {
	parent, err := e.Get(ctx, lineage)
	if err != nil {
		return model.Page[model.BiomeNode]{}, err
	}
	return e.nodePage(ctx,
		`FROM biome b WHERE b.lft > ? AND b.rgt < ? AND b.depth = ?`,
		[]any{parent.Lft, parent.Rgt, parent.Depth + 1}, w)
}

// Descendants returns the whole subtree below lineage, excluding the node
// itself.
func (e *Engine) Descendants(ctx context.Context, lineage string, w model.Window) (model.Page[model.BiomeNode], error) {
	parent, err := e.Get(ctx, lineage)
	if err != nil {
		return model.Page[model.BiomeNode]{}, err
	}
	return e.nodePage(ctx,
		`FROM biome b WHERE b.lft > ? AND b.rgt < ? AND b.depth > ?`,
		[]any{parent.Lft, parent.Rgt, parent.Depth}, w)
}

// AncestorClosure returns the ids of every ancestor of biomeID, root first.
// The node itself is not part of the closure.
func (e *Engine) AncestorClosure(ctx context.Context, biomeID int) ([]int, error) {
	q := e.rel.Rebind(`
		SELECT a.biome_id
		FROM biome b
		JOIN biome a ON a.lft < b.lft AND a.rgt > b.rgt
		WHERE b.biome_id = ?
		ORDER BY a.depth`)

	var exists int
	err := e.rel.DB.QueryRowContext(ctx, e.rel.Rebind(`SELECT COUNT(*) FROM biome WHERE biome_id = ?`), biomeID).Scan(&exists)
	if err != nil {
		return nil, model.RelationalError("get biome", err)
	}
	if exists == 0 {
		return nil, model.NotFound("biome", itoa(biomeID))
	}

	rows, err := e.rel.DB.QueryContext(ctx, q, biomeID)
	if err != nil {
		return nil, model.RelationalError("ancestor closure", err)
	}
	defer rows.Close()

	ids := make([]int, 0, 8)
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, model.RelationalError("ancestor closure", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, model.RelationalError("ancestor closure", err)
	}
	return ids, nil
}

// StudyBiomes lists the distinct biomes of a public study's public samples.
// With widen set the list also carries every ancestor of those biomes, which
// is what rollup counts are computed over.
func (e *Engine) StudyBiomes(ctx context.Context, studyAccession string, widen bool) ([]model.BiomeNode, error) {
	if err := model.ValidateAccession(studyAccession); err != nil {
		return nil, err
	}

	var studyID int
	err := e.rel.DB.QueryRowContext(ctx,
		e.rel.Rebind(`SELECT study_id FROM study WHERE accession = ? AND is_public = 1`),
		studyAccession).Scan(&studyID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, model.NotFound("study", studyAccession)
	}
	if err != nil {
		return nil, model.RelationalError("get study", err)
	}

	rows, err := e.rel.DB.QueryContext(ctx, e.rel.Rebind(`
		SELECT DISTINCT s.biome_id
		FROM sample s
		WHERE s.study_id = ? AND s.is_public = 1`), studyID)
	if err != nil {
		return nil, model.RelationalError("study biomes", err)
	}
	ids, err := scanInts(rows)
	if err != nil {
		return nil, model.RelationalError("study biomes", err)
	}
	if len(ids) == 0 {
		return []model.BiomeNode{}, nil
	}

	if widen {
		seen := make(map[int]bool, len(ids))
		for _, id := range ids {
			seen[id] = true
		}
		for _, id := range ids {
			closure, err := e.AncestorClosure(ctx, id)
			if err != nil {
				return nil, err
			}
			for _, a := range closure {
				if !seen[a] {
					seen[a] = true
					ids = append(ids, a)
				}
			}
		}
	}

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return e.queryNodes(ctx,
		`SELECT `+nodeColumns+` FROM biome b WHERE b.biome_id IN (`+db.Placeholders(len(ids))+`) ORDER BY b.lineage`,
		args...)
}

// TopN ranks the candidate biomes by the number of public samples anywhere
// in their subtree. Ties keep the order of candidateIDs. Unknown ids are
// ignored.
func (e *Engine) TopN(ctx context.Context, candidateIDs []int, n int) ([]model.BiomeCount, error) {
	if len(candidateIDs) == 0 || n <= 0 {
		return []model.BiomeCount{}, nil
	}

	args := make([]any, len(candidateIDs))
	for i, id := range candidateIDs {
		args[i] = id
	}
	q := e.rel.Rebind(`
		SELECT c.biome_id, c.biome_name, c.lineage, c.depth, c.lft, c.rgt, COUNT(DISTINCT s.sample_id)
		FROM biome c
		LEFT JOIN biome b ON b.lft >= c.lft AND b.rgt <= c.rgt
		LEFT JOIN sample s ON s.biome_id = b.biome_id AND s.is_public = 1
		WHERE c.biome_id IN (` + db.Placeholders(len(candidateIDs)) + `)
		GROUP BY c.biome_id, c.biome_name, c.lineage, c.depth, c.lft, c.rgt`)

	rows, err := e.rel.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, model.RelationalError("top biomes", err)
	}
	defer rows.Close()

	byID := make(map[int]model.BiomeCount, len(candidateIDs))
	for rows.Next() {
		var c model.BiomeCount
		if err := rows.Scan(&c.ID, &c.Name, &c.Lineage, &c.Depth, &c.Lft, &c.Rgt, &c.SamplesCount); err != nil {
			return nil, model.RelationalError("top biomes", err)
		}
		byID[c.ID] = c
	}
	if err := rows.Err(); err != nil {
		return nil, model.RelationalError("top biomes", err)
	}

	ranked := make([]model.BiomeCount, 0, len(byID))
	seen := make(map[int]bool, len(candidateIDs))
	for _, id := range candidateIDs {
		if c, ok := byID[id]; ok && !seen[id] {
			seen[id] = true
			ranked = append(ranked, c)
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].SamplesCount > ranked[j].SamplesCount
	})
	if len(ranked) > n {
		ranked = ranked[:n]
	}
	return ranked, nil
}

func (e *Engine) nodePage(ctx context.Context, from string, args []any, w model.Window) (model.Page[model.BiomeNode], error) {
	var count int
	err := e.rel.DB.QueryRowContext(ctx, e.rel.Rebind(`SELECT COUNT(*) `+from), args...).Scan(&count)
	if err != nil {
		return model.Page[model.BiomeNode]{}, model.RelationalError("count biomes", err)
	}
	if count == 0 {
		return model.EmptyPage[model.BiomeNode](), nil
	}

	clause, pageArgs := e.rel.LimitOffset(w.Limit, w.Offset, append([]any{}, args...))
	nodes, err := e.queryNodes(ctx, `SELECT `+nodeColumns+` `+from+` ORDER BY b.lineage`+clause, pageArgs...)
	if err != nil {
		return model.Page[model.BiomeNode]{}, err
	}
	return model.Page[model.BiomeNode]{Items: nodes, Count: count}, nil
}

func (e *Engine) queryNodes(ctx context.Context, q string, args ...any) ([]model.BiomeNode, error) {
	rows, err := e.rel.DB.QueryContext(ctx, e.rel.Rebind(q), args...)
	if err != nil {
		return nil, model.RelationalError("list biomes", err)
	}
	defer rows.Close()

	nodes := make([]model.BiomeNode, 0, 16)
	for rows.Next() {
		var n model.BiomeNode
		if err := rows.Scan(&n.ID, &n.Name, &n.Lineage, &n.Depth, &n.Lft, &n.Rgt); err != nil {
			return nil, model.RelationalError("list biomes", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, model.RelationalError("list biomes", err)
	}
	return nodes, nil
}
