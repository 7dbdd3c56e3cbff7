// Package file loads authored game content from YAML asset files, one file
// per game id, the shape designers export from the authoring tool.
package file

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"viral-game-service/internal/domain"
)

// ContentLoader reads {dir}/{gameID}.yaml on demand.
type ContentLoader struct {
	dir string
}

func NewContentLoader(dir string) *ContentLoader {
	return &ContentLoader{dir: dir}
}

func (l *ContentLoader) LoadContent(_ context.Context, gameID string) (domain.Content, error) {
	path := filepath.Join(l.dir, gameID+".yaml")
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return domain.Content{}, domain.ErrContentNotFound
		}
		return domain.Content{}, fmt.Errorf("read content %s: %w", path, err)
	}

	var content domain.Content
	if err := yaml.Unmarshal(data, &content); err != nil {
		return domain.Content{}, fmt.Errorf("unmarshal content %s: %w", path, err)
	}
	if content.GameID == "" {
		content.GameID = gameID
	}
	return content, nil
}
