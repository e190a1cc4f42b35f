package annotation

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/yumyai/emgapi/pkg/db"
	"github.com/yumyai/emgapi/pkg/model"
)

// analysisColumns and analysisJoins are shared by the anchor lookup and the
// reverse lookup so both render the same entity.
const analysisColumns = `aj.job_id, COALESCE(r.accession, ''), COALESCE(sa.accession, ''),
	COALESCE(st.accession, ''), p.release_version, COALESCE(et.experiment_type, '')`

const analysisJoins = `
	FROM analysis_job aj
	JOIN pipeline p ON p.pipeline_id = aj.pipeline_id
	LEFT JOIN run r ON r.run_id = aj.run_id
	LEFT JOIN sample sa ON sa.sample_id = aj.sample_id
	LEFT JOIN study st ON st.study_id = aj.study_id
	LEFT JOIN experiment_type et ON et.experiment_type_id = aj.experiment_type_id`

// visible is the availability filter applied to analyses listed from the
// annotation side.
const visible = `aj.run_status_id = 4 AND aj.analysis_status_id IN (3, 6)`

// Resolver joins relational analyses with annotation documents. Every
// operation resolves its anchor first and only then the join, in that
// order.
type Resolver struct {
	rel  *db.Relational
	docs *db.DocStore
}

func NewResolver(stores *db.Stores) *Resolver {
	return &Resolver{rel: stores.SQL, docs: stores.Docs}
}

// Analysis resolves the anchor of an entity lookup: an MGYA accession, or a
// run accession together with the pipeline version.
func (r *Resolver) Analysis(ctx context.Context, accession, version string) (model.Analysis, error) {
	if err := model.ValidatePipelineVersion(version); err != nil {
		return model.Analysis{}, err
	}

	var q string
	var key any
	if model.IsAnalysisAccession(accession) {
		jobID, err := model.ParseAnalysisAccession(accession)
		if err != nil {
			return model.Analysis{}, err
		}
		q = `SELECT ` + analysisColumns + analysisJoins + `
			WHERE aj.job_id = ? AND p.release_version = ?`
		key = jobID
	} else {
		if err := model.ValidateAccession(accession); err != nil {
			return model.Analysis{}, err
		}
		q = `SELECT ` + analysisColumns + analysisJoins + `
			WHERE r.accession = ? AND p.release_version = ?
			ORDER BY aj.job_id DESC LIMIT 1`
		key = accession
	}

	a, err := scanAnalysis(r.rel.DB.QueryRowContext(ctx, r.rel.Rebind(q), key, version))
	if errors.Is(err, sql.ErrNoRows) {
		return model.Analysis{}, model.NotFound("analysis", accession+"/"+version)
	}
	if err != nil {
		return model.Analysis{}, model.RelationalError("get analysis", err)
	}
	return a, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAnalysis(row rowScanner) (model.Analysis, error) {
	var a model.Analysis
	err := row.Scan(&a.JobID, &a.RunAccession, &a.SampleAccession, &a.StudyAccession, &a.PipelineVersion, &a.ExperimentType)
	if err != nil {
		return model.Analysis{}, err
	}
	a.Accession = model.FormatAnalysisAccession(a.JobID)
	return a, nil
}

// set loads the annotation set of one analysis. A missing document is not an
// error: the analysis has not been annotated for this collection.
func (r *Resolver) set(collection string, jobID int, version string) (model.AnnotationSet, bool, error) {
	var set model.AnnotationSet
	ok, err := r.docs.Get(collection, db.SetID(jobID, version), &set)
	return set, ok, err
}

// AnnotationsForEntity lists the annotations of kind attached to the
// analysis, each carrying the values recorded for that analysis only.
func (r *Resolver) AnnotationsForEntity(ctx context.Context, accession, version string, kind Kind, w model.Window) (model.Page[model.Annotation], error) {
	a, err := r.Analysis(ctx, accession, version)
	if err != nil {
		return model.Page[model.Annotation]{}, err
	}
	if kind.Excludes(a.ExperimentType) {
		return model.Page[model.Annotation]{}, model.NotFound("analysis", accession+"/"+version)
	}

	set, ok, err := r.set(kind.SetCollection, a.JobID, version)
	if err != nil {
		return model.Page[model.Annotation]{}, err
	}
	if !ok {
		return model.EmptyPage[model.Annotation](), nil
	}

	refs := model.Slice(set.Lists[kind.List], w)
	items := make([]model.Annotation, 0, len(refs.Items))
	for _, ref := range refs.Items {
		if err := ctx.Err(); err != nil {
			return model.Page[model.Annotation]{}, err
		}
		ann, err := r.enrich(kind, ref)
		if err != nil {
			return model.Page[model.Annotation]{}, err
		}
		items = append(items, ann)
	}
	return model.Page[model.Annotation]{Items: items, Count: refs.Count}, nil
}

// enrich attaches the annotation document to a list entry. A reference to a
// document that is not in the store keeps its accession and values.
func (r *Resolver) enrich(kind Kind, ref model.AnnotationRef) (model.Annotation, error) {
	ann := model.Annotation{
		Accession:    ref.Ref,
		Count:        ref.Count,
		Completeness: ref.Completeness,
		MatchingKOs:  ref.MatchingKOs,
		MissingKOs:   ref.MissingKOs,
	}

	if kind.Taxonomy() {
		var org model.Organism
		ok, err := r.docs.Get(kind.TermCollection, ref.Ref, &org)
		if err != nil || !ok {
			return ann, err
		}
		ann.Name = org.Name
		ann.Lineage = org.Lineage
		ann.Organism = &org
		return ann, nil
	}

	var term model.Term
	ok, err := r.docs.Get(kind.TermCollection, ref.Ref, &term)
	if err != nil || !ok {
		return ann, err
	}
	ann.Description = term.Description
	ann.Name = term.Name
	ann.Lineage = term.Lineage
	return ann, nil
}

// Term returns the annotation document itself.
func (r *Resolver) Term(ctx context.Context, kind Kind, accession string) (model.Term, error) {
	acc, err := kind.ValidateAccession(accession)
	if err != nil {
		return model.Term{}, err
	}
	if err := ctx.Err(); err != nil {
		return model.Term{}, err
	}

	if kind.Taxonomy() {
		var org model.Organism
		ok, err := r.docs.Get(kind.TermCollection, acc, &org)
		if err != nil {
			return model.Term{}, err
		}
		if !ok {
			return model.Term{}, model.NotFound(kind.Name, acc)
		}
		return organismTerm(acc, org), nil
	}

	var term model.Term
	ok, err := r.docs.Get(kind.TermCollection, acc, &term)
	if err != nil {
		return model.Term{}, err
	}
	if !ok {
		return model.Term{}, model.NotFound(kind.Name, acc)
	}
	if term.Accession == "" {
		term.Accession = acc
	}
	return term, nil
}

func organismTerm(acc string, org model.Organism) model.Term {
	return model.Term{
		Accession:   acc,
		Description: org.Rank,
		Name:        org.Name,
		Lineage:     org.Lineage,
		Organism:    &org,
	}
}

type setKey struct {
	jobID   int
	version string
}

// EntitiesForAnnotation lists the visible analyses whose annotation sets
// reference accession, newest job first. Set documents pointing at jobs the
// relational store does not know, or does not show, drop out of the result.
func (r *Resolver) EntitiesForAnnotation(ctx context.Context, accession string, kind Kind, w model.Window) (model.Page[model.Analysis], error) {
	term, err := r.Term(ctx, kind, accession)
	if err != nil {
		return model.Page[model.Analysis]{}, err
	}

	keys, err := r.referencingSets(kind, term.Accession)
	if err != nil {
		return model.Page[model.Analysis]{}, err
	}
	if len(keys) == 0 {
		return model.EmptyPage[model.Analysis](), nil
	}
	return r.analysesFor(ctx, keys, kind, w)
}

// referencingSets collects the distinct (job id, version) tuples of every set
// document whose reverse lists mention acc, in scan order.
func (r *Resolver) referencingSets(kind Kind, acc string) ([]setKey, error) {
	seen := make(map[setKey]bool)
	var keys []setKey
	for _, list := range kind.ReverseLists {
		err := r.docs.IndexScan(kind.SetCollection, list, acc, func(id string) error {
			jobID, version, err := db.ParseSetID(id)
			if err != nil {
				return err
			}
			k := setKey{jobID: jobID, version: version}
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
			return nil
		})
		if err != nil {
			return nil, err
		}
	}
	return keys, nil
}

func (r *Resolver) analysesFor(ctx context.Context, keys []setKey, kind Kind, w model.Window) (model.Page[model.Analysis], error) {
	conn, err := r.rel.DB.Conn(ctx)
	if err != nil {
		return model.Page[model.Analysis]{}, model.RelationalError("get connection", err)
	}
	defer conn.Close()

	// rolling back drops the scratch table as well
	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return model.Page[model.Analysis]{}, model.RelationalError("begin", err)
	}
	defer tx.Rollback()

	if err := r.scaffoldJobs(ctx, tx, keys); err != nil {
		return model.Page[model.Analysis]{}, model.RelationalError("scaffold jobs", err)
	}

	from := analysisJoins + `
		JOIN annotation_jobs t ON t.job_id = aj.job_id AND t.pipeline_version = p.release_version
		WHERE ` + visible
	var args []any
	for _, e := range kind.Excluded {
		from += ` AND COALESCE(et.experiment_type, '') <> ?`
		args = append(args, e)
	}

	var count int
	if err := tx.QueryRowContext(ctx, r.rel.Rebind(`SELECT COUNT(*) `+from), args...).Scan(&count); err != nil {
		return model.Page[model.Analysis]{}, model.RelationalError("count analyses", err)
	}
	if count == 0 {
		return model.EmptyPage[model.Analysis](), nil
	}

	clause, args := r.rel.LimitOffset(w.Limit, w.Offset, args)
	rows, err := tx.QueryContext(ctx, r.rel.Rebind(`SELECT `+analysisColumns+from+` ORDER BY aj.job_id DESC`+clause), args...)
	if err != nil {
		return model.Page[model.Analysis]{}, model.RelationalError("list analyses", err)
	}
	defer rows.Close()

	items := make([]model.Analysis, 0, 16)
	for rows.Next() {
		a, err := scanAnalysis(rows)
		if err != nil {
			return model.Page[model.Analysis]{}, model.RelationalError("list analyses", err)
		}
		items = append(items, a)
	}
	if err := rows.Err(); err != nil {
		return model.Page[model.Analysis]{}, model.RelationalError("list analyses", err)
	}
	return model.Page[model.Analysis]{Items: items, Count: count}, nil
}

// scaffoldJobs fills a temporary table with the tuples so the relational
// filter never hits a bind parameter limit.
func (r *Resolver) scaffoldJobs(ctx context.Context, tx *sql.Tx, keys []setKey) error {
	if _, err := tx.ExecContext(ctx,
		`CREATE TEMPORARY TABLE annotation_jobs (job_id INTEGER NOT NULL, pipeline_version TEXT NOT NULL)`); err != nil {
		return fmt.Errorf("create annotation_jobs: %w", err)
	}

	stm, err := tx.PrepareContext(ctx, r.rel.Rebind(`INSERT INTO annotation_jobs (job_id, pipeline_version) VALUES (?, ?)`))
	if err != nil {
		return err
	}
	defer stm.Close()

	for _, k := range keys {
		if _, err := stm.ExecContext(ctx, k.jobID, k.version); err != nil {
			return fmt.Errorf("populate annotation_jobs: %w", err)
		}
	}
	return nil
}
