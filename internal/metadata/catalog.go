package metadata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/example/boardgame-tables/internal/proposition"
)

// Catalog is a provider backed by a static list of games, typically loaded
// from a YAML file maintained by the group.
type Catalog map[int]Game

type catalogFile struct {
	Games []catalogGame `yaml:"games"`
}

type catalogGame struct {
	ID          int      `yaml:"id"`
	Name        string   `yaml:"name"`
	Image       string   `yaml:"image"`
	Description string   `yaml:"description"`
	Categories  []string `yaml:"categories"`
	Mechanics   []string `yaml:"mechanics"`
	Expansions  []struct {
		ID   int    `yaml:"id"`
		Name string `yaml:"name"`
	} `yaml:"expansions"`
}

// ParseCatalog decodes a YAML catalog.
//
//	games:
//	  - id: 224517
//	    name: Brass: Birmingham
//	    expansions:
//	      - {id: 1, name: Extra}
func ParseCatalog(r io.Reader) (Catalog, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	catalog := make(Catalog, len(file.Games))
	for i, entry := range file.Games {
		if entry.ID <= 0 {
			return nil, fmt.Errorf("catalog entry %d: id must be positive", i)
		}
		if _, dup := catalog[entry.ID]; dup {
			return nil, fmt.Errorf("catalog entry %d: duplicate id %d", i, entry.ID)
		}
		game := Game{
			ID:          entry.ID,
			DisplayName: strings.TrimSpace(entry.Name),
			ImageURL:    entry.Image,
			Description: entry.Description,
			Categories:  entry.Categories,
			Mechanics:   entry.Mechanics,
		}
		for _, exp := range entry.Expansions {
			game.Expansions = append(game.Expansions, proposition.Expansion{ID: exp.ID, Name: exp.Name})
		}
		catalog[entry.ID] = game
	}
	return catalog, nil
}

// LoadCatalog reads a YAML catalog from path.
func LoadCatalog(path string) (Catalog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	defer f.Close()
	return ParseCatalog(f)
}

// Lookup implements Provider.
func (c Catalog) Lookup(_ context.Context, gameID int) (Game, error) {
	game, ok := c[gameID]
	if !ok {
		return Game{}, fmt.Errorf("%w: %d", ErrUnknownGame, gameID)
	}
	return game, nil
}
