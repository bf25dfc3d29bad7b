package catalog

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/genricoloni/albumplayer/internal/domain"
	"github.com/genricoloni/albumplayer/internal/mocks"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestTrackCatalog_LoadTracks(t *testing.T) {
	tests := []struct {
		name        string
		body        string
		fetchErr    error
		expected    []domain.Track
		expectError bool
	}{
		{
			name:     "Tracks As Strings",
			body:     `{"tracks":["a.mp3","b.mp3"]}`,
			expected: []domain.Track{"a.mp3", "b.mp3"},
		},
		{
			name:     "Legacy Songs With File Objects",
			body:     `{"songs":[{"file":"c.mp3"}]}`,
			expected: []domain.Track{"c.mp3"},
		},
		{
			name:     "Objects Fall Back To Name",
			body:     `{"tracks":[{"name":"d.mp3"},{"file":"e.mp3","name":"ignored"}]}`,
			expected: []domain.Track{"d.mp3", "e.mp3"},
		},
		{
			name:     "Mixed Entries",
			body:     `{"tracks":["a.mp3",{"file":"b.mp3"}]}`,
			expected: []domain.Track{"a.mp3", "b.mp3"},
		},
		{
			name:     "Tracks Win Over Songs",
			body:     `{"tracks":["new.mp3"],"songs":["old.mp3"]}`,
			expected: []domain.Track{"new.mp3"},
		},
		{
			name:     "Empty Object Entries Dropped",
			body:     `{"tracks":[{},"a.mp3"]}`,
			expected: []domain.Track{"a.mp3"},
		},
		{
			name:     "No Track Field",
			body:     `{"title":"Nothing here"}`,
			expected: []domain.Track{},
		},
		{
			name:        "Fetch Failure",
			fetchErr:    fmt.Errorf("network error: connection refused"),
			expected:    []domain.Track{},
			expectError: true,
		},
		{
			name:        "Not Found",
			fetchErr:    fmt.Errorf("/songs/X/info.json: %w", domain.ErrNotFound),
			expected:    []domain.Track{},
			expectError: true,
		},
		{
			name:        "Invalid JSON",
			body:        `{"tracks":`,
			expected:    []domain.Track{},
			expectError: true,
		},
		{
			name:        "Invalid Entry Type",
			body:        `{"tracks":[42]}`,
			expected:    []domain.Track{},
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			source := mocks.NewMockMetadataSource(ctrl)
			var body []byte
			if tt.fetchErr == nil {
				body = []byte(tt.body)
			}
			source.EXPECT().Get(gomock.Any(), "/songs/X/info.json").Return(body, tt.fetchErr)

			c := NewTrackCatalog(zap.NewNop(), source)
			tracks, err := c.LoadTracks(context.Background(), "X")

			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error, got nil")
				}
				if !errors.Is(err, domain.ErrMetadataUnavailable) {
					t.Errorf("Expected ErrMetadataUnavailable, got %v", err)
				}
			} else if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}

			if tracks == nil {
				t.Fatal("Tracks must never be nil")
			}
			if !reflect.DeepEqual(tracks, tt.expected) {
				t.Errorf("Tracks mismatch: want %v, got %v", tt.expected, tracks)
			}
		})
	}
}

func TestTrackCatalog_LoadInfo(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mocks.NewMockMetadataSource(ctrl)
	source.EXPECT().Get(gomock.Any(), "/songs/Wedding%20Songs/info.json").
		Return([]byte(`{"title":"Wedding","description":"First dance","cover":"art.png","songs":["x.mp3"]}`), nil)

	c := NewTrackCatalog(zap.NewNop(), source)
	info, err := c.LoadInfo(context.Background(), "Wedding Songs")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	want := domain.AlbumInfo{
		Folder:      "Wedding Songs",
		Title:       "Wedding",
		Description: "First dance",
		Cover:       "art.png",
		Tracks:      []domain.Track{"x.mp3"},
	}
	if !reflect.DeepEqual(info, want) {
		t.Errorf("Info mismatch: want %+v, got %+v", want, info)
	}
}
