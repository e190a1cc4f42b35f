package loader

import (
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yumyai/emgapi/pkg/model"
)

// Dataset is one import unit: relational rows plus annotation documents.
type Dataset struct {
	Biomes          []Biome          `yaml:"biomes"`
	ExperimentTypes []ExperimentType `yaml:"experiment_types"`
	Pipelines       []Pipeline       `yaml:"pipelines"`
	Studies         []Study          `yaml:"studies"`
	Samples         []Sample         `yaml:"samples"`
	Runs            []Run            `yaml:"runs"`
	Analyses        []Analysis       `yaml:"analyses"`

	// keyed by term collection, e.g. go_terms
	Terms     map[string][]model.Term `yaml:"terms"`
	Organisms []Organism              `yaml:"organisms"`
	Sets      []Set                   `yaml:"annotation_sets"`
}

type Biome struct {
	ID      int    `yaml:"id"`
	Name    string `yaml:"name"`
	Lineage string `yaml:"lineage"`
	Depth   int    `yaml:"depth"`
	Lft     int    `yaml:"lft"`
	Rgt     int    `yaml:"rgt"`
}

func (b Biome) Node() model.BiomeNode {
	return model.BiomeNode{ID: b.ID, Name: b.Name, Lineage: b.Lineage, Depth: b.Depth, Lft: b.Lft, Rgt: b.Rgt}
}

type ExperimentType struct {
	ID   int    `yaml:"id"`
	Name string `yaml:"name"`
}

type Pipeline struct {
	ID          int        `yaml:"id"`
	Version     string     `yaml:"version"`
	ReleaseDate *time.Time `yaml:"release_date"`
}

type Study struct {
	ID         int        `yaml:"id"`
	Accession  string     `yaml:"accession"`
	Name       string     `yaml:"name"`
	BiomeID    int        `yaml:"biome_id"`
	Public     bool       `yaml:"public"`
	LastUpdate *time.Time `yaml:"last_update"`
}

type Sample struct {
	ID         int        `yaml:"id"`
	Accession  string     `yaml:"accession"`
	Name       string     `yaml:"name"`
	BiomeID    int        `yaml:"biome_id"`
	StudyID    int        `yaml:"study_id"`
	Public     bool       `yaml:"public"`
	LastUpdate *time.Time `yaml:"last_update"`
}

type Run struct {
	ID               int    `yaml:"id"`
	Accession        string `yaml:"accession"`
	SampleID         int    `yaml:"sample_id"`
	StudyID          int    `yaml:"study_id"`
	ExperimentTypeID int    `yaml:"experiment_type_id"`
	// 4 (public) when omitted
	StatusID           int    `yaml:"status_id"`
	InstrumentPlatform string `yaml:"instrument_platform"`
	InstrumentModel    string `yaml:"instrument_model"`
}

type Analysis struct {
	JobID            int `yaml:"job_id"`
	RunID            int `yaml:"run_id"`
	SampleID         int `yaml:"sample_id"`
	StudyID          int `yaml:"study_id"`
	PipelineID       int `yaml:"pipeline_id"`
	ExperimentTypeID int `yaml:"experiment_type_id"`
	// 3 (completed) and 4 (public run) when omitted
	AnalysisStatusID int    `yaml:"analysis_status_id"`
	RunStatusID      int    `yaml:"run_status_id"`
	ExternalRunIDs   string `yaml:"external_run_ids"`
}

type Organism struct {
	ID              string            `yaml:"id"`
	Lineage         string            `yaml:"lineage"`
	Ancestors       []string          `yaml:"ancestors"`
	Hierarchy       map[string]string `yaml:"hierarchy"`
	Domain          string            `yaml:"domain"`
	Name            string            `yaml:"name"`
	Parent          string            `yaml:"parent"`
	Rank            string            `yaml:"rank"`
	PipelineVersion string            `yaml:"pipeline_version"`
}

func (o Organism) Model() model.Organism {
	id := o.ID
	if id == "" {
		id = o.Lineage
	}
	return model.Organism{
		ID:              id,
		Lineage:         o.Lineage,
		Ancestors:       o.Ancestors,
		Hierarchy:       o.Hierarchy,
		Domain:          o.Domain,
		Name:            o.Name,
		Parent:          o.Parent,
		Rank:            o.Rank,
		PipelineVersion: o.PipelineVersion,
	}
}

// Set is an annotation set document of one analysis.
type Set struct {
	Collection      string                `yaml:"collection"`
	JobID           int                   `yaml:"job_id"`
	PipelineVersion string                `yaml:"pipeline_version"`
	Lists           map[string][]SetEntry `yaml:"lists"`
}

type SetEntry struct {
	Ref          string   `yaml:"ref"`
	Count        int      `yaml:"count"`
	Completeness *float64 `yaml:"completeness"`
	MatchingKOs  []string `yaml:"matching_kos"`
	MissingKOs   []string `yaml:"missing_kos"`
}

// Decode reads a YAML dataset.
func Decode(r io.Reader) (*Dataset, error) {
	var ds Dataset
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&ds); err != nil {
		if err == io.EOF {
			return &ds, nil
		}
		return nil, fmt.Errorf("decode dataset: %w", err)
	}
	return &ds, nil
}

// ReadFile decodes the dataset stored at path.
func ReadFile(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Decode(f)
}
