package catalog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/genricoloni/albumplayer/internal/domain"
	"go.uber.org/zap"
)

// trackEntry accepts both a plain file name and an object with a file/name field
type trackEntry string

func (e *trackEntry) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err == nil {
		*e = trackEntry(name)
		return nil
	}

	var obj struct {
		File string `json:"file"`
		Name string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return fmt.Errorf("track entry is neither a string nor an object: %w", err)
	}
	if obj.File != "" {
		*e = trackEntry(obj.File)
	} else {
		*e = trackEntry(obj.Name)
	}
	return nil
}

// infoDocument mirrors info.json; Songs is the legacy name of Tracks
type infoDocument struct {
	Tracks      []trackEntry `json:"tracks"`
	Songs       []trackEntry `json:"songs"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Cover       string       `json:"cover"`
}

// TrackCatalog loads folder metadata from a MetadataSource
type TrackCatalog struct {
	logger *zap.Logger
	source domain.MetadataSource
}

// NewTrackCatalog creates a catalog backed by source
func NewTrackCatalog(logger *zap.Logger, source domain.MetadataSource) *TrackCatalog {
	return &TrackCatalog{
		logger: logger,
		source: source,
	}
}

// LoadInfo fetches and decodes the info.json of folder
func (c *TrackCatalog) LoadInfo(ctx context.Context, folder string) (domain.AlbumInfo, error) {
	body, err := c.source.Get(ctx, domain.InfoPath(folder))
	if err != nil {
		return domain.AlbumInfo{}, fmt.Errorf("%w: %s: %w", domain.ErrMetadataUnavailable, folder, err)
	}

	info, err := parseInfo(folder, body)
	if err != nil {
		return domain.AlbumInfo{}, fmt.Errorf("%w: %s: %w", domain.ErrMetadataUnavailable, folder, err)
	}
	return info, nil
}

// LoadTracks returns the ordered track list of folder.
// Any failure is logged and yields an empty list.
func (c *TrackCatalog) LoadTracks(ctx context.Context, folder string) ([]domain.Track, error) {
	info, err := c.LoadInfo(ctx, folder)
	if err != nil {
		c.logger.Warn("Track metadata unavailable",
			zap.String("folder", folder),
			zap.Error(err))
		return []domain.Track{}, err
	}

	c.logger.Debug("Tracks loaded",
		zap.String("folder", folder),
		zap.Int("count", len(info.Tracks)))
	return info.Tracks, nil
}

func parseInfo(folder string, body []byte) (domain.AlbumInfo, error) {
	var doc infoDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return domain.AlbumInfo{}, fmt.Errorf("invalid info.json: %w", err)
	}

	entries := doc.Tracks
	if entries == nil {
		entries = doc.Songs
	}

	tracks := make([]domain.Track, 0, len(entries))
	for _, e := range entries {
		if e == "" {
			continue
		}
		tracks = append(tracks, domain.Track(e))
	}

	return domain.AlbumInfo{
		Folder:      folder,
		Title:       doc.Title,
		Description: doc.Description,
		Cover:       doc.Cover,
		Tracks:      tracks,
	}, nil
}
