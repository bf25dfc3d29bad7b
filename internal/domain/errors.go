package domain

import "errors"

var (
	// ErrNotFound is returned by a MetadataSource when the path does not exist
	ErrNotFound = errors.New("not found")
	// ErrMetadataUnavailable means a metadata fetch failed or returned 404
	ErrMetadataUnavailable = errors.New("metadata unavailable")
	// ErrIndexOutOfRange means a navigation request fell outside the track list
	ErrIndexOutOfRange = errors.New("track index out of range")
	// ErrPlaybackRejected means the audio capability refused to start playback
	ErrPlaybackRejected = errors.New("playback rejected")
	// ErrUnknownDuration means a seek was requested without a finite, positive duration
	ErrUnknownDuration = errors.New("duration unknown")
	// ErrNoFolder means a transport command was issued while no folder is loaded
	ErrNoFolder = errors.New("no folder loaded")
	// ErrStaleResponse means a folder load completed after a newer selection started
	ErrStaleResponse = errors.New("stale folder response")
)
