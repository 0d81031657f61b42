package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/udlcoach/pkg/domain"
)

// Store implements ports.SessionRepository using the local filesystem.
// It stores one JSON document per session in a configured directory.
type Store struct {
	BasePath string
}

// New creates a new Store with the given base path.
// If basePath is empty, it defaults to ".udlcoach/sessions".
func New(basePath string) *Store {
	if basePath == "" {
		basePath = filepath.Join(".udlcoach", "sessions")
	}
	return &Store{BasePath: basePath}
}

func (s *Store) path(token string) (string, error) {
	if token == "" {
		return "", domain.ErrMissingToken
	}
	if token != filepath.Base(token) || strings.ContainsAny(token, `/\`) || token == "." || token == ".." {
		return "", fmt.Errorf("%w: invalid session token %q", domain.ErrInvalidInput, token)
	}
	return filepath.Join(s.BasePath, token+".json"), nil
}

// Put persists the record to a JSON file atomically.
// It writes to a temporary file first, syncs via fsync, and then renames it to the destination.
func (s *Store) Put(ctx context.Context, token string, record *domain.Record) error {
	destPath, err := s.path(token)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure session directory: %w", err)
	}

	data, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal record: %w", err)
	}

	// Same directory as the destination so the rename stays on one filesystem.
	tmpFile, err := os.CreateTemp(s.BasePath, "tmp-"+token+"-*.json.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	// Cannot rename an open file on Windows.
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to session: %w", err)
	}
	return nil
}

// Get retrieves the record from its JSON file.
func (s *Store) Get(ctx context.Context, token string) (*domain.Record, error) {
	filePath, err := s.path(token)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var record domain.Record
	if err := json.Unmarshal(data, &record); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session record: %w", err)
	}
	if record.Transcript == nil {
		record.Transcript = []domain.Message{}
	}
	return &record, nil
}

// Delete removes the session file.
func (s *Store) Delete(ctx context.Context, token string) error {
	filePath, err := s.path(token)
	if err != nil {
		return err
	}

	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete session file: %w", err)
	}
	return nil
}

// List returns all stored session tokens.
func (s *Store) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.BasePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []string{}, nil
		}
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	tokens := []string{}
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || filepath.Ext(name) != ".json" {
			continue
		}
		tokens = append(tokens, strings.TrimSuffix(name, ".json"))
	}
	return tokens, nil
}
