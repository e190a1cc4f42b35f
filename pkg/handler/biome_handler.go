package handler

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/yumyai/emgapi/logger"
	"github.com/yumyai/emgapi/pkg/handler/request"
	"github.com/yumyai/emgapi/pkg/model"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	topBiomes       = 10
)

// GET /v1/biomes
func (dbctx *DBContext) ListRootBiomes(w http.ResponseWriter, r *http.Request) {
	pr := dbctx.pageRequest(r)
	page, err := dbctx.Biomes.Roots(r.Context(), pr.Window())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writePage(w, page, pr)
}

// GET /v1/biomes/top10
func (dbctx *DBContext) TopBiomesHandler(w http.ResponseWriter, r *http.Request) {
	top, err := dbctx.Biomes.TopN(r.Context(), dbctx.TopBiomes, topBiomes)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if top == nil {
		top = []model.BiomeCount{}
	}
	writeData(w, top)
}

// GET /v1/biomes/{lineage}
func (dbctx *DBContext) GetBiome(w http.ResponseWriter, r *http.Request) {
	lineage := r.PathValue("lineage")

	node, err := dbctx.Biomes.Get(r.Context(), lineage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	samples, err := dbctx.Biomes.SampleCount(r.Context(), lineage)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, model.BiomeCount{BiomeNode: node, SamplesCount: samples})
}

// GET /v1/biomes/{lineage}/{relation}
func (dbctx *DBContext) BiomeRelation(w http.ResponseWriter, r *http.Request) {
	lineage := r.PathValue("lineage")
	relation := request.NewBiomeRelation(r.PathValue("relation"))
	pr := dbctx.pageRequest(r)

	logger.Debug("Biome relation", zap.String("lineage", lineage), zap.Stringer("relation", relation))

	switch relation {
	case request.BiomeRelationChildren:
		page, err := dbctx.Biomes.Children(r.Context(), lineage, pr.Window())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writePage(w, page, pr)
	case request.BiomeRelationDescendants:
		page, err := dbctx.Biomes.Descendants(r.Context(), lineage, pr.Window())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writePage(w, page, pr)
	case request.BiomeRelationSamples:
		page, err := dbctx.Biomes.Samples(r.Context(), lineage, pr.Window())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writePage(w, page, pr)
	case request.BiomeRelationStudies:
		page, err := dbctx.Biomes.Studies(r.Context(), lineage, pr.Window())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writePage(w, page, pr)
	default:
		writeError(w, r, model.NotFound("relation", r.PathValue("relation")))
	}
}

// GET /v1/studies/{accession}/biomes?rollup=true
func (dbctx *DBContext) StudyBiomes(w http.ResponseWriter, r *http.Request) {
	rollup := request.ParseBool(r.URL.Query().Get("rollup"))

	nodes, err := dbctx.Biomes.StudyBiomes(r.Context(), r.PathValue("accession"), rollup)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if nodes == nil {
		nodes = []model.BiomeNode{}
	}
	writeData(w, nodes)
}
