package handler

import (
	"net/http"
)

func NewRouter(dbctx *DBContext) *http.ServeMux {
	mux := http.NewServeMux()

	// Error route
	mux.HandleFunc("GET /favicon.ico", func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "Not Found", http.StatusNotFound)
	})

	mux.HandleFunc("GET /v1/health", dbctx.HealthCheck)

	// Biomes
	mux.HandleFunc("GET /v1/biomes", dbctx.ListRootBiomes)
	mux.HandleFunc("GET /v1/biomes/top10", dbctx.TopBiomesHandler)
	mux.HandleFunc("GET /v1/biomes/{lineage}", dbctx.GetBiome)
	mux.HandleFunc("GET /v1/biomes/{lineage}/{relation}", dbctx.BiomeRelation)
	mux.HandleFunc("GET /v1/studies/{accession}/biomes", dbctx.StudyBiomes)

	// Analyses
	mux.HandleFunc("GET /v1/analyses/{accession}/{version}/annotations", dbctx.AnalysisSummaryHandler)
	mux.HandleFunc("GET /v1/analyses/{accession}/{version}/{kind}", dbctx.AnalysisAnnotations)

	// Annotations
	mux.HandleFunc("GET /v1/annotations/{kind}", dbctx.ListAnnotations)
	mux.HandleFunc("GET /v1/annotations/{kind}/{accession}", dbctx.GetAnnotation)
	mux.HandleFunc("GET /v1/annotations/{kind}/{accession}/analyses", dbctx.AnnotationAnalyses)
	mux.HandleFunc("GET /v1/annotations/organisms/{lineage}/children", dbctx.OrganismChildren)

	return mux
}
