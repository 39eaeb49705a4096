package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

const matchExt = ".yaml"

func (r *MatchRecord) Save(dir string) error {
	if r.ID == "" {
		return errors.New("match record has no id")
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(r)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, r.ID+matchExt), data, 0644)
}

func LoadMatch(dir, id string) (*MatchRecord, error) {
	data, err := os.ReadFile(filepath.Join(dir, id+matchExt))
	if err != nil {
		return nil, err
	}
	var r MatchRecord
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parse match %s: %w", id, err)
	}
	return &r, nil
}

// ListMatches returns the ids of saved matches, sorted.
func ListMatches(dir string) ([]string, error) {
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return []string{}, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var ids []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), matchExt) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(entry.Name(), matchExt))
	}
	sort.Strings(ids)
	return ids, nil
}
