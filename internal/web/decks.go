package web

import "gopkg.in/yaml.v3"

// parseDeckFileYAML parses the decks YAML payload.
func parseDeckFileYAML(data []byte) (*deckFile, error) {
	var df deckFile
	if err := yaml.Unmarshal(data, &df); err != nil {
		return nil, err
	}
	return &df, nil
}

type deckFile struct {
	Decks []deckEntry `yaml:"decks"`
}

type deckEntry struct {
	Name  string `yaml:"name"`
	Cards []struct {
		Name  string `yaml:"name"`
		Count int    `yaml:"count"`
	} `yaml:"cards"`
}
