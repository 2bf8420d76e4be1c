// Package seed ships the sample question bank and demo profiles.
package seed

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"trivia-service/internal/domain"
)

//go:embed questions.yaml
var questionsYAML []byte

//go:embed people.yaml
var peopleYAML []byte

// Profile is a demo person with a starting score.
type Profile struct {
	Name   string        `yaml:"name"`
	Age    int           `yaml:"age"`
	Gender domain.Gender `yaml:"gender"`
	Avatar string        `yaml:"avatar"`
	Score  int           `yaml:"score"`
}

// Questions returns the built-in question bank.
func Questions() ([]domain.Question, error) {
	var qs []domain.Question
	if err := yaml.Unmarshal(questionsYAML, &qs); err != nil {
		return nil, fmt.Errorf("decode embedded questions: %w", err)
	}
	return qs, nil
}

// LoadQuestions reads a question bank from a .json, .yaml or .yml file.
func LoadQuestions(path string) ([]domain.Question, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var qs []domain.Question
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = json.Unmarshal(data, &qs)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &qs)
	default:
		return nil, fmt.Errorf("unsupported question file %q: want .json, .yaml or .yml", path)
	}
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	return qs, nil
}

// People returns the demo profiles.
func People() ([]Profile, error) {
	var ps []Profile
	if err := yaml.Unmarshal(peopleYAML, &ps); err != nil {
		return nil, fmt.Errorf("decode embedded people: %w", err)
	}
	return ps, nil
}
