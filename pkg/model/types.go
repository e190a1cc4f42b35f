package model

import "time"

// Biome node, nested-set encoded. Lft/Rgt never leave the service.
type BiomeNode struct {
	ID      int    `json:"biome_id"`
	Name    string `json:"biome_name"`
	Lineage string `json:"lineage"`
	Depth   int    `json:"depth"`
	Lft     int    `json:"-"`
	Rgt     int    `json:"-"`
}

// Biome with rollup counts, computed per request.
type BiomeCount struct {
	BiomeNode
	SamplesCount int `json:"samples_count"`
}

type Study struct {
	ID         int       `json:"-"`
	Accession  string    `json:"accession"`
	Name       string    `json:"study_name"`
	BiomeID    int       `json:"biome_id"`
	IsPublic   bool      `json:"is_public"`
	LastUpdate time.Time `json:"last_update"`
}

type Sample struct {
	ID         int       `json:"-"`
	Accession  string    `json:"accession"`
	Name       string    `json:"sample_name"`
	BiomeID    int       `json:"biome_id"`
	Lineage    string    `json:"biome"`
	StudyID    int       `json:"study_id"`
	IsPublic   bool      `json:"is_public"`
	LastUpdate time.Time `json:"last_update"`
}

// Analysis is the relational side of an annotated entity (an analysis job
// of a run under one pipeline version).
type Analysis struct {
	JobID           int    `json:"-"`
	Accession       string `json:"accession"`
	RunAccession    string `json:"run_accession"`
	SampleAccession string `json:"sample_accession"`
	StudyAccession  string `json:"study_accession"`
	PipelineVersion string `json:"pipeline_version"`
	ExperimentType  string `json:"experiment_type"`
}

// Term is an annotation document (GO term, InterPro entry, KEGG module,
// Pfam entry).
type Term struct {
	Accession   string `json:"accession"`
	Description string `json:"description"`
	Name        string `json:"name,omitempty"`
	Lineage     string `json:"lineage,omitempty"`
	// set for taxonomy kinds
	Organism *Organism `json:"organism,omitempty"`
}

// Organism is a taxonomy node. Ancestors is a flat list of names, not an
// interval.
type Organism struct {
	ID              string            `json:"id"`
	Lineage         string            `json:"lineage"`
	Ancestors       []string          `json:"ancestors"`
	Hierarchy       map[string]string `json:"hierarchy,omitempty"`
	Domain          string            `json:"domain,omitempty"`
	Name            string            `json:"name"`
	Parent          string            `json:"parent,omitempty"`
	Rank            string            `json:"rank,omitempty"`
	PipelineVersion string            `json:"pipeline_version"`
}

// Entry of an embedded annotation list: a reference plus the per-analysis
// values. KEGG module entries use Completeness and the KO lists instead of
// Count.
type AnnotationRef struct {
	Ref          string   `json:"ref"`
	Count        int      `json:"count"`
	Completeness *float64 `json:"completeness,omitempty"`
	MatchingKOs  []string `json:"matching_kos,omitempty"`
	MissingKOs   []string `json:"missing_kos,omitempty"`
}

// AnnotationSet is the join document, one per (job id, pipeline version)
// and collection. Lists holds each embedded list by field name.
type AnnotationSet struct {
	AnalysisID      string                     `json:"analysis_id"`
	Accession       string                     `json:"accession"`
	PipelineVersion string                     `json:"pipeline_version"`
	JobID           int                        `json:"job_id"`
	Lists           map[string][]AnnotationRef `json:"lists"`
}

// Annotation is what the resolver returns for one entity: the term or
// organism document enriched with the entity-specific values.
type Annotation struct {
	Accession    string    `json:"accession"`
	Description  string    `json:"description,omitempty"`
	Name         string    `json:"name,omitempty"`
	Lineage      string    `json:"lineage,omitempty"`
	Count        int       `json:"count"`
	Completeness *float64  `json:"completeness,omitempty"`
	MatchingKOs  []string  `json:"matching_kos,omitempty"`
	MissingKOs   []string  `json:"missing_kos,omitempty"`
	Organism     *Organism `json:"organism,omitempty"`
}
