package state

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/grovetools/reqs/pkg/hierarchy"
	"gopkg.in/yaml.v3"
)

// PrefsFile is where session preferences live, relative to the working
// directory.
const PrefsFile = ".reqs/state.yml"

// Prefs is the part of a session worth restoring on the next start.
type Prefs struct {
	ProjectPath       string `yaml:"project_path,omitempty"`
	Document          string `yaml:"document,omitempty"`
	ExtendedAttribute string `yaml:"extended_attribute,omitempty"`
}

// PrefsFromState captures the restorable fields of s.
func PrefsFromState(s State) Prefs {
	return Prefs{
		ProjectPath:       s.ProjectPath(),
		Document:          string(s.SelectedDocument()),
		ExtendedAttribute: s.ExtendedAttribute(),
	}
}

// Actions returns the actions that bring a fresh session back to p. A
// project path yields SetProjectPath followed by LoadProject.
func (p Prefs) Actions() []Action {
	var actions []Action
	if p.ProjectPath != "" {
		actions = append(actions, SetProjectPath{Path: p.ProjectPath}, LoadProject{})
		if p.Document != "" {
			actions = append(actions, SelectDocument{Prefix: hierarchy.Prefix(p.Document)})
		}
	}
	if p.ExtendedAttribute != "" {
		actions = append(actions, SetExtendedAttributeName{Name: p.ExtendedAttribute})
	}
	return actions
}

func prefsPath(dir string) string {
	return filepath.Join(dir, PrefsFile)
}

// LoadPrefs reads the preferences saved below dir.
// Returns empty preferences if the file doesn't exist.
func LoadPrefs(dir string) (Prefs, error) {
	data, err := os.ReadFile(prefsPath(dir))
	if err != nil {
		if os.IsNotExist(err) {
			return Prefs{}, nil
		}
		return Prefs{}, fmt.Errorf("read state file: %w", err)
	}

	var p Prefs
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Prefs{}, fmt.Errorf("parse state file: %w", err)
	}
	return p, nil
}

// SavePrefs writes p below dir, creating the .reqs directory.
func SavePrefs(dir string, p Prefs) error {
	path := prefsPath(dir)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create state directory: %w", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write state file: %w", err)
	}
	return nil
}
