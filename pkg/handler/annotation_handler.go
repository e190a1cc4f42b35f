package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yumyai/emgapi/logger"
	"github.com/yumyai/emgapi/pkg/annotation"
	"github.com/yumyai/emgapi/pkg/handler/request"
	"github.com/yumyai/emgapi/pkg/model"
)

type AnalysisSummary struct {
	Analysis    model.Analysis         `json:"analysis"`
	Annotations []annotation.KindCount `json:"annotations"`
}

func entityRequest(r *http.Request) request.EntityRequest {
	return request.EntityRequest{
		Accession: r.PathValue("accession"),
		Version:   r.PathValue("version"),
	}
}

// GET /v1/analyses/{accession}/{version}/annotations
func (dbctx *DBContext) AnalysisSummaryHandler(w http.ResponseWriter, r *http.Request) {
	req := entityRequest(r)

	a, counts, err := dbctx.Resolver.Summary(r.Context(), req.Accession, req.Version)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, AnalysisSummary{Analysis: a, Annotations: counts})
}

// GET /v1/analyses/{accession}/{version}/{kind}
func (dbctx *DBContext) AnalysisAnnotations(w http.ResponseWriter, r *http.Request) {
	req := entityRequest(r)
	pr := dbctx.pageRequest(r)

	kind, err := annotation.KindByName(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Debug("Annotations for analysis",
		zap.String("accession", req.Accession),
		zap.String("version", req.Version),
		zap.String("kind", kind.Name))

	page, err := dbctx.Resolver.AnnotationsForEntity(r.Context(), req.Accession, req.Version, kind, pr.Window())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, page, pr)
}

// GET /v1/annotations/{kind}
func (dbctx *DBContext) ListAnnotations(w http.ResponseWriter, r *http.Request) {
	pr := dbctx.pageRequest(r)

	kind, err := annotation.KindByName(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	page, err := dbctx.Resolver.Terms(r.Context(), kind, pr.Window())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, page, pr)
}

// GET /v1/annotations/{kind}/{accession}
func (dbctx *DBContext) GetAnnotation(w http.ResponseWriter, r *http.Request) {
	kind, err := annotation.KindByName(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	term, err := dbctx.Resolver.Term(r.Context(), kind, r.PathValue("accession"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, term)
}

// GET /v1/annotations/{kind}/{accession}/analyses
func (dbctx *DBContext) AnnotationAnalyses(w http.ResponseWriter, r *http.Request) {
	pr := dbctx.pageRequest(r)

	kind, err := annotation.KindByName(r.PathValue("kind"))
	if err != nil {
		writeError(w, r, err)
		return
	}

	logger.Debug("Analyses for annotation",
		zap.String("kind", kind.Name),
		zap.String("accession", r.PathValue("accession")))

	page, err := dbctx.Resolver.EntitiesForAnnotation(r.Context(), r.PathValue("accession"), kind, pr.Window())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, page, pr)
}

// GET /v1/annotations/organisms/{lineage}/children
func (dbctx *DBContext) OrganismChildren(w http.ResponseWriter, r *http.Request) {
	pr := dbctx.pageRequest(r)

	page, err := dbctx.Resolver.ChildrenOf(r.Context(), r.PathValue("lineage"), pr.Window())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, page, pr)
}
