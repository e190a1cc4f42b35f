package annotation

import (
	"strings"

	"github.com/yumyai/emgapi/pkg/model"
)

// Term and set collections of the document store.
const (
	GoTerms             = "go_terms"
	InterProIdentifiers = "interpro_identifiers"
	KeggModules         = "kegg_modules"
	PfamEntries         = "pfam_entries"
	Organisms           = "organisms"

	SetGoTerm     = "analysis_job_goterm"
	SetInterPro   = "analysis_job_interpro"
	SetKeggModule = "analysis_job_kegg_module"
	SetPfam       = "analysis_job_pfam"
	SetTaxonomy   = "analysis_job_taxonomy"
)

// Organism index fields.
const (
	FieldLineage   = "lineage"
	FieldName      = "name"
	FieldAncestors = "ancestors"
)

// Kind describes one annotation kind. Every kind resolves through the same
// code; only these fields differ.
type Kind struct {
	Name string
	// collection holding the annotation documents
	TermCollection string
	// collection holding one set document per (job id, pipeline version)
	SetCollection string
	// embedded list read for an entity
	List string
	// embedded lists scanned when looking up entities of an annotation
	ReverseLists []string
	// experiment types this kind never applies to
	Excluded []string
}

// Taxonomy reports whether the kind annotates with organisms.
func (k Kind) Taxonomy() bool {
	return k.TermCollection == Organisms
}

func (k Kind) Excludes(experimentType string) bool {
	for _, e := range k.Excluded {
		if strings.EqualFold(e, experimentType) {
			return true
		}
	}
	return false
}

// ValidateAccession checks an annotation accession for this kind. Organism
// ids follow the lineage alphabet and may arrive percent-encoded.
func (k Kind) ValidateAccession(acc string) (string, error) {
	if k.Taxonomy() {
		return model.UnquoteLineage(acc)
	}
	if err := model.ValidateAnnotationAccession(acc); err != nil {
		return "", err
	}
	return acc, nil
}

var kinds = []Kind{
	{
		Name:           "go-terms",
		TermCollection: GoTerms,
		SetCollection:  SetGoTerm,
		List:           "go_terms",
		ReverseLists:   []string{"go_terms", "go_slim"},
	},
	{
		Name:           "go-slim",
		TermCollection: GoTerms,
		SetCollection:  SetGoTerm,
		List:           "go_slim",
		ReverseLists:   []string{"go_terms", "go_slim"},
	},
	{
		Name:           "interpro-identifiers",
		TermCollection: InterProIdentifiers,
		SetCollection:  SetInterPro,
		List:           "interpro_identifiers",
		ReverseLists:   []string{"interpro_identifiers"},
	},
	{
		Name:           "kegg-modules",
		TermCollection: KeggModules,
		SetCollection:  SetKeggModule,
		List:           "kegg_modules",
		ReverseLists:   []string{"kegg_modules"},
	},
	{
		Name:           "pfam-entries",
		TermCollection: PfamEntries,
		SetCollection:  SetPfam,
		List:           "pfam_entries",
		ReverseLists:   []string{"pfam_entries"},
	},
	{
		Name:           "taxonomy",
		TermCollection: Organisms,
		SetCollection:  SetTaxonomy,
		List:           "taxonomy",
		ReverseLists:   []string{"taxonomy"},
		Excluded:       []string{"amplicon"},
	},
	{
		Name:           "taxonomy-lsu",
		TermCollection: Organisms,
		SetCollection:  SetTaxonomy,
		List:           "taxonomy_lsu",
		ReverseLists:   []string{"taxonomy_lsu"},
	},
	{
		Name:           "taxonomy-ssu",
		TermCollection: Organisms,
		SetCollection:  SetTaxonomy,
		List:           "taxonomy_ssu",
		ReverseLists:   []string{"taxonomy_ssu"},
	},
	{
		Name:           "taxonomy-itsonedb",
		TermCollection: Organisms,
		SetCollection:  SetTaxonomy,
		List:           "taxonomy_itsonedb",
		ReverseLists:   []string{"taxonomy_itsonedb"},
	},
	{
		Name:           "taxonomy-unite",
		TermCollection: Organisms,
		SetCollection:  SetTaxonomy,
		List:           "taxonomy_itsunite",
		ReverseLists:   []string{"taxonomy_itsunite"},
	},
}

// Kinds returns all kinds in their canonical order.
func Kinds() []Kind {
	out := make([]Kind, len(kinds))
	copy(out, kinds)
	return out
}

// KindByName looks a kind up by its route name.
func KindByName(name string) (Kind, error) {
	for _, k := range kinds {
		if k.Name == name {
			return k, nil
		}
	}
	return Kind{}, model.Invalid("annotation kind %q", name)
}

// IsSetCollection reports whether coll holds annotation sets.
func IsSetCollection(coll string) bool {
	for _, k := range kinds {
		if k.SetCollection == coll {
			return true
		}
	}
	return false
}

// IsTermCollection reports whether coll holds annotation documents.
func IsTermCollection(coll string) bool {
	for _, k := range kinds {
		if k.TermCollection == coll {
			return true
		}
	}
	return false
}

// IsSetList reports whether list is an embedded list of the set collection.
func IsSetList(coll, list string) bool {
	for _, k := range kinds {
		if k.SetCollection == coll && k.List == list {
			return true
		}
	}
	return false
}
