package biome

import (
	"context"
	"database/sql"
	"strconv"
	"time"

	"github.com/yumyai/emgapi/pkg/model"
)

// subtree matches every biome in the subtree of the node bound to the two
// placeholders, the node itself included.
const subtree = `SELECT sb.biome_id FROM biome sb WHERE sb.lft >= ? AND sb.rgt <= ?`

// Samples lists the public samples attached anywhere under lineage.
func (e *Engine) Samples(ctx context.Context, lineage string, w model.Window) (model.Page[model.Sample], error) {
	node, err := e.Get(ctx, lineage)
	if err != nil {
		return model.Page[model.Sample]{}, err
	}

	from := `
		FROM sample s
		JOIN biome b ON b.biome_id = s.biome_id
		WHERE s.is_public = 1 AND s.biome_id IN (` + subtree + `)`
	args := []any{node.Lft, node.Rgt}

	count, err := e.count(ctx, from, args)
	if err != nil || count == 0 {
		return model.EmptyPage[model.Sample](), err
	}

	clause, args := e.rel.LimitOffset(w.Limit, w.Offset, args)
	rows, err := e.rel.DB.QueryContext(ctx, e.rel.Rebind(`
		SELECT s.sample_id, s.accession, s.sample_name, s.biome_id, b.lineage,
			COALESCE(s.study_id, 0), s.is_public, s.last_update
		`+from+` ORDER BY s.accession`+clause), args...)
	if err != nil {
		return model.Page[model.Sample]{}, model.RelationalError("biome samples", err)
	}
	defer rows.Close()

	items := make([]model.Sample, 0, 16)
	for rows.Next() {
		var s model.Sample
		var public int
		var updated sql.NullTime
		if err := rows.Scan(&s.ID, &s.Accession, &s.Name, &s.BiomeID, &s.Lineage, &s.StudyID, &public, &updated); err != nil {
			return model.Page[model.Sample]{}, model.RelationalError("biome samples", err)
		}
		s.IsPublic = public == 1
		s.LastUpdate = timeOrZero(updated)
		items = append(items, s)
	}
	if err := rows.Err(); err != nil {
		return model.Page[model.Sample]{}, model.RelationalError("biome samples", err)
	}
	return model.Page[model.Sample]{Items: items, Count: count}, nil
}

// Studies lists the public studies that own at least one public sample
// under lineage.
func (e *Engine) Studies(ctx context.Context, lineage string, w model.Window) (model.Page[model.Study], error) {
	node, err := e.Get(ctx, lineage)
	if err != nil {
		return model.Page[model.Study]{}, err
	}

	from := `
		FROM study st
		WHERE st.is_public = 1 AND st.study_id IN (
			SELECT s.study_id FROM sample s
			WHERE s.is_public = 1 AND s.biome_id IN (` + subtree + `))`
	args := []any{node.Lft, node.Rgt}

	count, err := e.count(ctx, from, args)
	if err != nil || count == 0 {
		return model.EmptyPage[model.Study](), err
	}

	clause, args := e.rel.LimitOffset(w.Limit, w.Offset, args)
	rows, err := e.rel.DB.QueryContext(ctx, e.rel.Rebind(`
		SELECT st.study_id, st.accession, st.study_name, COALESCE(st.biome_id, 0), st.is_public, st.last_update
		`+from+` ORDER BY st.accession`+clause), args...)
	if err != nil {
		return model.Page[model.Study]{}, model.RelationalError("biome studies", err)
	}
	defer rows.Close()

	items := make([]model.Study, 0, 16)
	for rows.Next() {
		var st model.Study
		var public int
		var updated sql.NullTime
		if err := rows.Scan(&st.ID, &st.Accession, &st.Name, &st.BiomeID, &public, &updated); err != nil {
			return model.Page[model.Study]{}, model.RelationalError("biome studies", err)
		}
		st.IsPublic = public == 1
		st.LastUpdate = timeOrZero(updated)
		items = append(items, st)
	}
	if err := rows.Err(); err != nil {
		return model.Page[model.Study]{}, model.RelationalError("biome studies", err)
	}
	return model.Page[model.Study]{Items: items, Count: count}, nil
}

// SampleCount is the rollup count of public samples under lineage.
func (e *Engine) SampleCount(ctx context.Context, lineage string) (int, error) {
	node, err := e.Get(ctx, lineage)
	if err != nil {
		return 0, err
	}
	return e.count(ctx, `FROM sample s WHERE s.is_public = 1 AND s.biome_id IN (`+subtree+`)`,
		[]any{node.Lft, node.Rgt})
}

func (e *Engine) count(ctx context.Context, from string, args []any) (int, error) {
	var n int
	if err := e.rel.DB.QueryRowContext(ctx, e.rel.Rebind(`SELECT COUNT(*) `+from), args...).Scan(&n); err != nil {
		return 0, model.RelationalError("count", err)
	}
	return n, nil
}

func scanInts(rows *sql.Rows) ([]int, error) {
	defer rows.Close()
	var out []int
	for rows.Next() {
		var n int
		if err := rows.Scan(&n); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func timeOrZero(t sql.NullTime) time.Time {
	if t.Valid {
		return t.Time
	}
	return time.Time{}
}

func itoa(n int) string {
	return strconv.Itoa(n)
}
