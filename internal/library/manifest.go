package library

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/genricoloni/albumplayer/internal/domain"
	"go.uber.org/zap"
)

// InfoFile is the per-folder metadata document name
const InfoFile = "info.json"

// ManifestFile is the album manifest name at the library root
const ManifestFile = "albums.json"

// BuildManifest lists the subfolders of dir that contain an info.json, sorted by name.
// The cover of each entry comes from info.json, else a cover.jpg next to it.
func BuildManifest(logger *zap.Logger, dir string) ([]domain.ManifestEntry, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read library directory: %w", err)
	}

	manifest := []domain.ManifestEntry{}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		folder := entry.Name()
		data, err := os.ReadFile(filepath.Join(dir, folder, InfoFile))
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			logger.Warn("Skipping unreadable folder", zap.String("folder", folder), zap.Error(err))
			continue
		}

		var info struct {
			Cover string `json:"cover"`
		}
		if err := json.Unmarshal(data, &info); err != nil {
			logger.Warn("Skipping folder with invalid info.json", zap.String("folder", folder), zap.Error(err))
			continue
		}

		me := domain.ManifestEntry{Folder: folder, Cover: info.Cover}
		if me.Cover == "" {
			if _, err := os.Stat(filepath.Join(dir, folder, domain.DefaultCover)); err == nil {
				me.Cover = domain.DefaultCover
			}
		}
		manifest = append(manifest, me)
	}

	sort.Slice(manifest, func(i, j int) bool { return manifest[i].Folder < manifest[j].Folder })

	logger.Debug("Manifest built", zap.String("dir", dir), zap.Int("albums", len(manifest)))
	return manifest, nil
}

// ManifestJSON returns the albums.json body for dir: the file on disk when present,
// otherwise a manifest built from the folder layout
func ManifestJSON(logger *zap.Logger, dir string) ([]byte, error) {
	data, err := os.ReadFile(filepath.Join(dir, ManifestFile))
	if err == nil {
		return data, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}

	manifest, err := BuildManifest(logger, dir)
	if err != nil {
		return nil, err
	}
	return json.Marshal(manifest)
}
