package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// AudioRequest identifies the audio of one track.
type AudioRequest struct {
	ID       string
	FileName string
	Title    string
	Artist   string
}

// CurrentTrack is a downloaded, locally playable copy of a track's audio.
type CurrentTrack struct {
	ID     string
	File   string // server file name
	Path   string // local playable copy
	Title  string
	Artist string

	once sync.Once
}

// Release deletes the local copy. Safe to call more than once.
func (c *CurrentTrack) Release() {
	if c == nil {
		return
	}
	c.once.Do(func() {
		if c.Path != "" {
			os.Remove(c.Path)
		}
	})
}

// LoadAudio downloads the audio of req into a temporary file. Canceling ctx
// aborts the download and removes the partial file.
func (l *Library) LoadAudio(ctx context.Context, req AudioRequest) (*CurrentTrack, error) {
	ext := strings.ToLower(filepath.Ext(req.FileName))
	f, err := os.CreateTemp(l.tempDir(), "trackshelf-*"+ext)
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	path := f.Name()

	n, err := l.t.DownloadFile(ctx, req.FileName, f)
	if cerr := f.Close(); err == nil && cerr != nil {
		err = fmt.Errorf("writing %s: %w", path, cerr)
	}
	if err != nil {
		os.Remove(path)
		return nil, err
	}

	l.log.Debug("audio loaded", zap.String("id", req.ID), zap.String("file", req.FileName), zap.Int64("bytes", n))
	return &CurrentTrack{
		ID:     req.ID,
		File:   req.FileName,
		Path:   path,
		Title:  req.Title,
		Artist: req.Artist,
	}, nil
}
