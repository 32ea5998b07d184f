// Package catalog assembles the compiled-in Aiera tool table: every pack,
// the immutable registry built from them, and one selection group per
// category.
package catalog

import (
	"fmt"

	"github.com/aiera-inc/aiera-mcp/domain/correction"
	"github.com/aiera-inc/aiera-mcp/domain/pack"
	"github.com/aiera-inc/aiera-mcp/infrastructure/aiera"
	"github.com/aiera-inc/aiera-mcp/infrastructure/storage/memory"
	"github.com/aiera-inc/aiera-mcp/infrastructure/telemetry"
	"github.com/aiera-inc/aiera-mcp/pack/companydocs"
	"github.com/aiera-inc/aiera-mcp/pack/equities"
	"github.com/aiera-inc/aiera-mcp/pack/events"
	"github.com/aiera-inc/aiera-mcp/pack/filings"
	"github.com/aiera-inc/aiera-mcp/pack/indexes"
	"github.com/aiera-inc/aiera-mcp/pack/internal/toolkit"
	"github.com/aiera-inc/aiera-mcp/pack/search"
	"github.com/aiera-inc/aiera-mcp/pack/thirdbridge"
	"github.com/aiera-inc/aiera-mcp/pack/transcrippets"
)

// Config carries the collaborators tool handlers call at run time.
type Config struct {
	Client    aiera.Fetcher
	Corrector *correction.Engine
	Metrics   telemetry.Metrics

	// PageSize is the default page size for paged tools.
	PageSize int
}

// Catalog is the full tool table.
type Catalog struct {
	Packs    []*pack.Pack
	Registry *memory.ToolRegistry
	Groups   []pack.Group
}

// Packs builds every pack in display order.
func Packs(cfg Config) []*pack.Pack {
	deps := toolkit.Deps{
		Client:    cfg.Client,
		Corrector: cfg.Corrector,
		Metrics:   cfg.Metrics,
		PageSize:  cfg.PageSize,
	}
	return []*pack.Pack{
		events.New(deps),
		filings.New(deps),
		equities.New(deps),
		indexes.New(deps),
		companydocs.New(deps),
		thirdbridge.New(deps),
		transcrippets.New(deps),
		search.New(deps),
	}
}

// New builds the catalog. It fails if two tools or two packs share a name.
func New(cfg Config) (*Catalog, error) {
	packs := Packs(cfg)

	registry, err := memory.NewToolRegistry(pack.Tools(packs...)...)
	if err != nil {
		return nil, fmt.Errorf("build tool registry: %w", err)
	}
	groups, err := pack.Groups(packs...)
	if err != nil {
		return nil, fmt.Errorf("build tool groups: %w", err)
	}

	return &Catalog{
		Packs:    packs,
		Registry: registry,
		Groups:   groups,
	}, nil
}
