package loader

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"github.com/yumyai/emgapi/logger"
	"github.com/yumyai/emgapi/pkg/annotation"
	"github.com/yumyai/emgapi/pkg/biome"
	"github.com/yumyai/emgapi/pkg/db"
	"github.com/yumyai/emgapi/pkg/model"
)

// Stats counts what a Load wrote.
type Stats struct {
	Rows      int
	Terms     int
	Organisms int
	Sets      int
}

// Load imports ds: schema first, then every relational row in a single
// transaction, then the documents. Set documents replace earlier versions
// wholesale.
func Load(ctx context.Context, stores *db.Stores, ds *Dataset) (Stats, error) {
	var stats Stats
	start := time.Now()

	if err := check(ds); err != nil {
		return stats, err
	}
	if err := stores.SQL.Migrate(ctx); err != nil {
		return stats, err
	}

	rows, err := loadRelational(ctx, stores.SQL, ds)
	if err != nil {
		return stats, err
	}
	stats.Rows = rows

	if stats.Terms, err = loadTerms(stores.Docs, ds); err != nil {
		return stats, err
	}
	if stats.Organisms, err = loadOrganisms(stores.Docs, ds); err != nil {
		return stats, err
	}
	if stats.Sets, err = loadSets(stores.Docs, ds); err != nil {
		return stats, err
	}

	logger.Info("Dataset loaded",
		zap.String("rows", humanize.Comma(int64(stats.Rows))),
		zap.String("terms", humanize.Comma(int64(stats.Terms))),
		zap.String("organisms", humanize.Comma(int64(stats.Organisms))),
		zap.String("annotation_sets", humanize.Comma(int64(stats.Sets))),
		zap.Duration("took", time.Since(start)),
	)
	return stats, nil
}

func check(ds *Dataset) error {
	nodes := make([]model.BiomeNode, len(ds.Biomes))
	for i, b := range ds.Biomes {
		if err := model.ValidateLineage(b.Lineage); err != nil {
			return err
		}
		nodes[i] = b.Node()
	}
	if err := biome.Validate(nodes); err != nil {
		return fmt.Errorf("biome tree: %w", err)
	}

	for coll, terms := range ds.Terms {
		if !annotation.IsTermCollection(coll) || coll == annotation.Organisms {
			return fmt.Errorf("unknown term collection %q", coll)
		}
		for _, t := range terms {
			if err := model.ValidateAnnotationAccession(t.Accession); err != nil {
				return fmt.Errorf("%s: %w", coll, err)
			}
		}
	}
	for _, s := range ds.Sets {
		if !annotation.IsSetCollection(s.Collection) {
			return fmt.Errorf("unknown annotation set collection %q", s.Collection)
		}
		if err := model.ValidatePipelineVersion(s.PipelineVersion); err != nil {
			return fmt.Errorf("set of job %d: %w", s.JobID, err)
		}
		if s.JobID <= 0 {
			return fmt.Errorf("set in %s without job id", s.Collection)
		}
		for list, entries := range s.Lists {
			if !annotation.IsSetList(s.Collection, list) {
				return fmt.Errorf("set of job %d: list %q does not belong to %s", s.JobID, list, s.Collection)
			}
			for _, e := range entries {
				if e.Count < 0 {
					return fmt.Errorf("set of job %d: %s %s has negative count %d", s.JobID, list, e.Ref, e.Count)
				}
			}
		}
	}
	return nil
}

func nullInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func orDefault(n, def int) int {
	if n == 0 {
		return def
	}
	return n
}

func loadRelational(ctx context.Context, rel *db.Relational, ds *Dataset) (int, error) {
	tx, err := rel.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, model.RelationalError("begin", err)
	}
	defer tx.Rollback()

	n := 0
	exec := func(table, q string, args ...any) error {
		if _, err := tx.ExecContext(ctx, rel.Rebind(q), args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
		n++
		return nil
	}

	for _, b := range ds.Biomes {
		if err := exec("biome", `INSERT INTO biome (biome_id, biome_name, lineage, depth, lft, rgt) VALUES (?, ?, ?, ?, ?, ?)`,
			b.ID, b.Name, b.Lineage, b.Depth, b.Lft, b.Rgt); err != nil {
			return 0, err
		}
	}
	for _, e := range ds.ExperimentTypes {
		if err := exec("experiment_type", `INSERT INTO experiment_type (experiment_type_id, experiment_type) VALUES (?, ?)`,
			e.ID, e.Name); err != nil {
			return 0, err
		}
	}
	for _, p := range ds.Pipelines {
		if err := exec("pipeline", `INSERT INTO pipeline (pipeline_id, release_version, release_date) VALUES (?, ?, ?)`,
			p.ID, p.Version, nullTime(p.ReleaseDate)); err != nil {
			return 0, err
		}
	}
	for _, s := range ds.Studies {
		if err := exec("study", `INSERT INTO study (study_id, accession, study_name, biome_id, is_public, last_update) VALUES (?, ?, ?, ?, ?, ?)`,
			s.ID, s.Accession, s.Name, nullInt(s.BiomeID), boolInt(s.Public), nullTime(s.LastUpdate)); err != nil {
			return 0, err
		}
	}
	for _, s := range ds.Samples {
		if err := exec("sample", `INSERT INTO sample (sample_id, accession, sample_name, biome_id, study_id, is_public, last_update) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			s.ID, s.Accession, s.Name, s.BiomeID, nullInt(s.StudyID), boolInt(s.Public), nullTime(s.LastUpdate)); err != nil {
			return 0, err
		}
	}
	for _, r := range ds.Runs {
		if err := exec("run", `INSERT INTO run (run_id, accession, sample_id, study_id, experiment_type_id, status_id, instrument_platform, instrument_model) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			r.ID, r.Accession, nullInt(r.SampleID), nullInt(r.StudyID), nullInt(r.ExperimentTypeID),
			orDefault(r.StatusID, 4), r.InstrumentPlatform, r.InstrumentModel); err != nil {
			return 0, err
		}
	}
	for _, a := range ds.Analyses {
		if err := exec("analysis_job", `INSERT INTO analysis_job (job_id, run_id, sample_id, study_id, pipeline_id, experiment_type_id, analysis_status_id, run_status_id, external_run_ids) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.JobID, nullInt(a.RunID), nullInt(a.SampleID), nullInt(a.StudyID), a.PipelineID, nullInt(a.ExperimentTypeID),
			orDefault(a.AnalysisStatusID, 3), orDefault(a.RunStatusID, 4), a.ExternalRunIDs); err != nil {
			return 0, err
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, model.RelationalError("commit", err)
	}
	return n, nil
}

func loadTerms(docs *db.DocStore, ds *Dataset) (int, error) {
	n := 0
	for coll, terms := range ds.Terms {
		for _, t := range terms {
			if err := docs.Put(coll, t.Accession, t); err != nil {
				return n, err
			}
			n++
		}
	}
	return n, nil
}

func loadOrganisms(docs *db.DocStore, ds *Dataset) (int, error) {
	for i, o := range ds.Organisms {
		org := o.Model()
		indexes := []db.Index{
			{Field: annotation.FieldLineage, Value: org.Lineage},
			{Field: annotation.FieldName, Value: org.Name},
		}
		for _, a := range org.Ancestors {
			indexes = append(indexes, db.Index{Field: annotation.FieldAncestors, Value: a})
		}
		if err := docs.Put(annotation.Organisms, org.ID, org, indexes...); err != nil {
			return i, err
		}
	}
	return len(ds.Organisms), nil
}

func loadSets(docs *db.DocStore, ds *Dataset) (int, error) {
	for i, s := range ds.Sets {
		set := model.AnnotationSet{
			AnalysisID:      db.SetID(s.JobID, s.PipelineVersion),
			Accession:       model.FormatAnalysisAccession(s.JobID),
			PipelineVersion: s.PipelineVersion,
			JobID:           s.JobID,
			Lists:           make(map[string][]model.AnnotationRef, len(s.Lists)),
		}
		var indexes []db.Index
		for field, entries := range s.Lists {
			refs := make([]model.AnnotationRef, len(entries))
			for j, e := range entries {
				refs[j] = model.AnnotationRef{
					Ref:          e.Ref,
					Count:        e.Count,
					Completeness: e.Completeness,
					MatchingKOs:  e.MatchingKOs,
					MissingKOs:   e.MissingKOs,
				}
				indexes = append(indexes, db.Index{Field: field, Value: e.Ref})
			}
			set.Lists[field] = refs
		}
		if err := docs.Put(s.Collection, set.AnalysisID, set, indexes...); err != nil {
			return i, err
		}
	}
	return len(ds.Sets), nil
}
