package model

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

const AnalysisPrefix = "MGYA"

var (
	lineageRe    = regexp.MustCompile(`^[a-zA-Z0-9:\-\s()<>]+$`)
	accessionRe  = regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	analysisRe   = regexp.MustCompile(`^` + AnalysisPrefix + `([0-9]+)$`)
	versionRe    = regexp.MustCompile(`^[0-9]+(\.[0-9]+)*$`)
	annotationRe = regexp.MustCompile(`^[a-zA-Z0-9:.]+$`)
)

// FormatAnalysisAccession renders a job id as its public accession,
// e.g. 102827 -> MGYA00102827.
func FormatAnalysisAccession(jobID int) string {
	return fmt.Sprintf("%s%08d", AnalysisPrefix, jobID)
}

// IsAnalysisAccession reports whether acc carries the analysis prefix.
func IsAnalysisAccession(acc string) bool {
	return strings.HasPrefix(acc, AnalysisPrefix)
}

// ParseAnalysisAccession returns the job id of an MGYA accession. Leading
// zeros are optional.
func ParseAnalysisAccession(acc string) (int, error) {
	m := analysisRe.FindStringSubmatch(acc)
	if m == nil {
		return 0, Invalid("analysis accession %q", acc)
	}
	id, err := strconv.Atoi(m[1])
	if err != nil || id <= 0 {
		return 0, Invalid("analysis accession %q", acc)
	}
	return id, nil
}

// ValidateAccession checks study, sample and run accessions.
func ValidateAccession(acc string) error {
	if !accessionRe.MatchString(acc) {
		return Invalid("accession %q", acc)
	}
	return nil
}

func ValidatePipelineVersion(v string) error {
	if !versionRe.MatchString(v) {
		return Invalid("pipeline version %q", v)
	}
	return nil
}

func ValidateAnnotationAccession(acc string) error {
	if !annotationRe.MatchString(acc) {
		return Invalid("annotation accession %q", acc)
	}
	return nil
}

// ValidateLineage checks a biome lineage. Matching stays exact-string, so
// nothing is trimmed or case-folded here.
func ValidateLineage(lineage string) error {
	if lineage == "" {
		return Invalid("empty lineage")
	}
	if !lineageRe.MatchString(lineage) {
		return Invalid("lineage %q", lineage)
	}
	return nil
}

// UnquoteLineage decodes an organism path segment and strips surrounding
// whitespace.
func UnquoteLineage(raw string) (string, error) {
	s, err := url.PathUnescape(raw)
	if err != nil {
		return "", Invalid("lineage %q: %v", raw, err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", Invalid("empty lineage")
	}
	return s, nil
}
