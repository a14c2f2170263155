package launcher

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"codeberg.org/mutker/hostctl/internal/errors"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Mode selects how a target is started.
type Mode string

const (
	// ModeOpen hands the target to the platform's default opener.
	ModeOpen Mode = "direct-open"
	// ModeSpawn starts the command as a detached process.
	ModeSpawn Mode = "spawn"
)

// Target is one launchable entry.
type Target struct {
	ID      string  `json:"-" yaml:"-"`
	Label   string  `json:"label" yaml:"label"`
	Icon    string  `json:"icon" yaml:"icon"`
	Command Command `json:"command" yaml:"command"`
	Mode    Mode    `json:"mode" yaml:"mode"`
}

// Entry is the public view of a target.
type Entry struct {
	ID    string `json:"id"`
	Label string `json:"label"`
	Icon  string `json:"icon"`
}

// Command is either a single shell string or an argument vector.
type Command struct {
	Line string
	Argv []string
}

// IsArgv reports whether the command was given as a list.
func (c Command) IsArgv() bool {
	return len(c.Argv) > 0
}

func (c Command) IsZero() bool {
	return c.Line == "" && len(c.Argv) == 0
}

func (c *Command) UnmarshalJSON(data []byte) error {
	var line string
	if err := json.Unmarshal(data, &line); err == nil {
		*c = Command{Line: line}
		return nil
	}

	var argv []string
	if err := json.Unmarshal(data, &argv); err != nil {
		return fmt.Errorf("command must be a string or a list of strings")
	}
	*c = Command{Argv: argv}

	return nil
}

func (c *Command) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		*c = Command{Line: node.Value}
		return nil
	case yaml.SequenceNode:
		var argv []string
		if err := node.Decode(&argv); err != nil {
			return err
		}
		*c = Command{Argv: argv}
		return nil
	}

	return fmt.Errorf("line %d: command must be a string or a list of strings", node.Line)
}

// Catalog maps target ids to targets.
type Catalog map[string]Target

// Entries lists the public view of every target, sorted by id.
func (c Catalog) Entries() []Entry {
	entries := make([]Entry, 0, len(c))
	for id, t := range c {
		entries = append(entries, Entry{ID: id, Label: t.Label, Icon: t.Icon})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].ID < entries[j].ID })

	return entries
}

// Load reads a catalog from a JSON (comments allowed) or YAML file.
func Load(path string) (Catalog, error) {
	errFactory := errors.New()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errFactory.WithMessage(errors.ErrMissingConfig, "Missing config: "+path)
		}
		return nil, errFactory.Wrap(errors.ErrReadConfig, err)
	}

	raw := map[string]Target{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &raw)
	default:
		err = json.Unmarshal(jsonc.ToJSON(data), &raw)
	}
	if err != nil {
		return nil, errFactory.Wrap(errors.ErrInvalidConfig, err)
	}

	catalog := make(Catalog, len(raw))
	for id, t := range raw {
		t.ID = id
		t.Mode = normalizeMode(t.Mode)
		catalog[id] = t
	}

	return catalog, nil
}

// normalizeMode accepts the legacy startfile/popen names.
func normalizeMode(m Mode) Mode {
	switch strings.ToLower(strings.TrimSpace(string(m))) {
	case "direct-open", "startfile", "open":
		return ModeOpen
	default:
		return ModeSpawn
	}
}
