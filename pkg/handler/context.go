package handler

// DI for all handlers alike.

import (
	"github.com/yumyai/emgapi/pkg/annotation"
	"github.com/yumyai/emgapi/pkg/biome"
	"github.com/yumyai/emgapi/pkg/config"
	"github.com/yumyai/emgapi/pkg/db"
)

type DBContext struct {
	Stores   *db.Stores
	Biomes   *biome.Engine
	Resolver *annotation.Resolver

	// Biome ids ranked by /v1/biomes/top10.
	TopBiomes []int
	PageSize  int
}

func NewDBContext(stores *db.Stores, cfg config.Config) *DBContext {
	return &DBContext{
		Stores:    stores,
		Biomes:    biome.NewEngine(stores.SQL),
		Resolver:  annotation.NewResolver(stores),
		TopBiomes: cfg.TopBiomes,
		PageSize:  cfg.PageSize,
	}
}
