package directory

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/genricoloni/albumplayer/internal/domain"
	"go.uber.org/zap"
)

const (
	// StrategyManifest discovers albums through albums.json
	StrategyManifest = "manifest"
	// StrategyStatic uses the configured folder list
	StrategyStatic = "static"
)

// AlbumDirectory lists the albums available for selection
type AlbumDirectory struct {
	logger   *zap.Logger
	source   domain.MetadataSource
	catalog  domain.Catalog
	strategy string
	folders  []string
}

// NewAlbumDirectory creates a directory using the discovery strategy from cfg
func NewAlbumDirectory(logger *zap.Logger, cfg domain.Config, source domain.MetadataSource, catalog domain.Catalog) *AlbumDirectory {
	strategy := cfg.GetDiscovery()
	if strategy != StrategyStatic {
		strategy = StrategyManifest
	}
	return &AlbumDirectory{
		logger:   logger,
		source:   source,
		catalog:  catalog,
		strategy: strategy,
		folders:  cfg.GetStaticAlbums(),
	}
}

// ListAlbums returns album summaries in manifest or configured order.
// Folders without readable metadata are skipped.
func (d *AlbumDirectory) ListAlbums(ctx context.Context) ([]domain.Album, error) {
	entries, err := d.entries(ctx)
	if err != nil {
		d.logger.Warn("Album list unavailable", zap.String("strategy", d.strategy), zap.Error(err))
		return []domain.Album{}, err
	}

	albums := make([]domain.Album, 0, len(entries))
	for _, entry := range entries {
		if entry.Folder == "" {
			continue
		}

		info, err := d.catalog.LoadInfo(ctx, entry.Folder)
		if err != nil {
			d.logger.Warn("Skipping album without metadata",
				zap.String("folder", entry.Folder),
				zap.Error(err))
			continue
		}

		albums = append(albums, summarize(entry, info))
	}

	d.logger.Debug("Albums listed",
		zap.String("strategy", d.strategy),
		zap.Int("count", len(albums)))
	return albums, nil
}

func (d *AlbumDirectory) entries(ctx context.Context) ([]domain.ManifestEntry, error) {
	if d.strategy == StrategyStatic {
		entries := make([]domain.ManifestEntry, 0, len(d.folders))
		for _, folder := range d.folders {
			entries = append(entries, domain.ManifestEntry{Folder: folder})
		}
		return entries, nil
	}

	body, err := d.source.Get(ctx, domain.ManifestPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrMetadataUnavailable, err)
	}

	var entries []domain.ManifestEntry
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, fmt.Errorf("%w: invalid albums.json: %w", domain.ErrMetadataUnavailable, err)
	}
	return entries, nil
}

func summarize(entry domain.ManifestEntry, info domain.AlbumInfo) domain.Album {
	album := domain.Album{
		Folder:      entry.Folder,
		Title:       info.Title,
		Description: info.Description,
		Cover:       info.Cover,
	}
	if album.Title == "" {
		album.Title = entry.Folder
	}
	if album.Cover == "" {
		album.Cover = entry.Cover
	}
	if album.Cover == "" {
		album.Cover = domain.DefaultCover
	}
	return album
}
