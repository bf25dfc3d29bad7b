package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/genricoloni/albumplayer/internal/domain"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const (
	defaultBaseURL    = "http://127.0.0.1:8080"
	defaultLibraryDir = "./songs"
	defaultListenAddr = ":8080"
	defaultDiscovery  = "manifest"
	defaultCacheDir   = "/tmp/albumplayer"
)

// AppConfig holds application configuration
type AppConfig struct {
	logger       *zap.Logger
	baseURL      string
	libraryDir   string
	listenAddr   string
	discovery    string
	staticAlbums []string
	cacheDir     string
	mpris        bool
}

var _ domain.Config = (*AppConfig)(nil)

// NewAppConfig creates a new application configuration instance.
// Values from a .env file in the working directory are loaded first; real
// environment variables take precedence over them.
func NewAppConfig(logger *zap.Logger) *AppConfig {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.Warn("Failed to load .env file", zap.Error(err))
	}

	cfg := &AppConfig{
		logger:       logger,
		baseURL:      strings.TrimRight(getEnv("ALBUMPLAYER_BASE_URL", defaultBaseURL), "/"),
		libraryDir:   expandPath(getEnv("ALBUMPLAYER_LIBRARY_DIR", defaultLibraryDir)),
		listenAddr:   getEnv("ALBUMPLAYER_LISTEN_ADDR", defaultListenAddr),
		discovery:    strings.ToLower(getEnv("ALBUMPLAYER_DISCOVERY", defaultDiscovery)),
		staticAlbums: splitList(os.Getenv("ALBUMPLAYER_ALBUMS")),
		cacheDir:     expandPath(getEnv("ALBUMPLAYER_CACHE_DIR", defaultCacheDir)),
		mpris:        true,
	}

	if raw := os.Getenv("ALBUMPLAYER_MPRIS"); raw != "" {
		enabled, err := strconv.ParseBool(raw)
		if err != nil {
			logger.Warn("Invalid ALBUMPLAYER_MPRIS value, keeping default",
				zap.String("value", raw))
		} else {
			cfg.mpris = enabled
		}
	}

	if cfg.discovery != "manifest" && cfg.discovery != "static" {
		logger.Warn("Unknown discovery strategy, falling back to manifest",
			zap.String("discovery", cfg.discovery))
		cfg.discovery = defaultDiscovery
	}

	logger.Info("Configuration loaded",
		zap.String("baseURL", cfg.baseURL),
		zap.String("libraryDir", cfg.libraryDir),
		zap.String("listenAddr", cfg.listenAddr),
		zap.String("discovery", cfg.discovery),
		zap.Strings("albums", cfg.staticAlbums),
		zap.String("cacheDir", cfg.cacheDir),
		zap.Bool("mpris", cfg.mpris))

	return cfg
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

// expandPath resolves environment variables and a leading ~
func expandPath(path string) string {
	path = os.ExpandEnv(path)
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}

func splitList(raw string) []string {
	out := []string{}
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// GetBaseURL returns the origin that serves the /songs tree
func (c *AppConfig) GetBaseURL() string {
	return c.baseURL
}

// GetLibraryDir returns the local directory served under /songs
func (c *AppConfig) GetLibraryDir() string {
	return c.libraryDir
}

// GetListenAddr returns the HTTP listen address
func (c *AppConfig) GetListenAddr() string {
	return c.listenAddr
}

// GetDiscovery returns the album discovery strategy
func (c *AppConfig) GetDiscovery() string {
	return c.discovery
}

// GetStaticAlbums returns the configured folder list for static discovery
func (c *AppConfig) GetStaticAlbums() []string {
	return append([]string(nil), c.staticAlbums...)
}

// GetCacheDir returns the directory for generated cover images
func (c *AppConfig) GetCacheDir() string {
	return c.cacheDir
}

// MPRISEnabled reports whether the D-Bus surface should be exported
func (c *AppConfig) MPRISEnabled() bool {
	return c.mpris
}
