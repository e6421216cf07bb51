// Package meta loads configuration documents and command scripts from any
// afs supported location.
package meta

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Service loads resources through afs.
type Service struct {
	fs afs.Service
}

// Download returns raw resource content.
func (s *Service) Download(ctx context.Context, URL string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to download %v: %w", URL, err)
	}
	return data, nil
}

// Load decodes a YAML (or JSON) document into target after expanding
// ${env.KEY} expressions. Fields missing in the document keep the values
// target already holds.
func (s *Service) Load(ctx context.Context, URL string, target interface{}) error {
	data, err := s.Download(ctx, URL)
	if err != nil {
		return err
	}
	if err = yaml.Unmarshal([]byte(expandEnv(string(data))), target); err != nil {
		return fmt.Errorf("failed to decode %v: %w", URL, err)
	}
	return nil
}

// Lines returns the non-blank lines of a script; lines starting with # are
// skipped.
func (s *Service) Lines(ctx context.Context, URL string) ([]string, error) {
	data, err := s.Download(ctx, URL)
	if err != nil {
		return nil, err
	}
	var ret []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		ret = append(ret, line)
	}
	return ret, scanner.Err()
}

// New creates a loader; a nil fs uses afs.New().
func New(fs afs.Service) *Service {
	if fs == nil {
		fs = afs.New()
	}
	return &Service{fs: fs}
}
