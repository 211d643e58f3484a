package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/quantifiedwork/ohtidy/internal/ohops"
)

// YAML job configuration for the ohtidy CLI: which profiles to load, what
// to extract, and how to compose the final table.

var (
	ErrNoExtracts = errors.New("config: at least one extract is required")
	ErrNoBasePath = errors.New("config: extract base_path is required")
	ErrNoDir      = errors.New("config: profiles dir is required")
)

// JobConfig is one extraction job.
type JobConfig struct {
	Profiles ProfilesConfig  `yaml:"profiles"`
	Extracts []ExtractConfig `yaml:"extracts"`
	Compose  ComposeConfig   `yaml:"compose"`
	Output   OutputConfig    `yaml:"output"`
}

// ProfilesConfig says where profiles live and which subjects to keep.
type ProfilesConfig struct {
	Dir             string           `yaml:"dir"`
	SubjectIDs      []string         `yaml:"subject_ids"`
	ExcludeSubjects []string         `yaml:"exclude_subjects"`
	Groups          []string         `yaml:"groups"`
	RequireKeys     []string         `yaml:"require_keys"`
	DateRange       *ohops.DateRange `yaml:"date_range"`
}

// FilterSpec converts the profile section into the filter the engine takes.
// Returns nil when no criterion is set.
func (p ProfilesConfig) FilterSpec() *ohops.FilterSpec {
	if p.SubjectIDs == nil && p.ExcludeSubjects == nil && p.Groups == nil &&
		p.RequireKeys == nil && p.DateRange == nil {
		return nil
	}
	return &ohops.FilterSpec{
		SubjectIDs:      p.SubjectIDs,
		ExcludeSubjects: p.ExcludeSubjects,
		Groups:          p.Groups,
		RequireKeys:     p.RequireKeys,
		DateRange:       p.DateRange,
	}
}

// ExtractConfig is one nested extraction; successive extracts outer-merge
// into a single table.
type ExtractConfig struct {
	Name            string   `yaml:"name"`
	BasePath        string   `yaml:"base_path"`
	LevelNames      []string `yaml:"level_names"`
	ValuePaths      []string `yaml:"value_paths"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

// Spec converts to the engine's nested-extraction spec.
func (e ExtractConfig) Spec() ohops.NestedSpec {
	return ohops.NestedSpec{
		BasePath:        e.BasePath,
		LevelNames:      e.LevelNames,
		ValuePaths:      e.ValuePaths,
		ExcludePatterns: e.ExcludePatterns,
	}
}

// ComposeConfig controls merging and derived columns.
type ComposeConfig struct {
	MergeOn          []string               `yaml:"merge_on"` // empty = subject_id, work_type, date, session
	DateColumn       string                 `yaml:"date_column"`
	SessionColumn    string                 `yaml:"session_column"`
	AddWeekday       bool                   `yaml:"add_weekday"`
	AddSessionNumber bool                   `yaml:"add_session_number"`
	AddDayIndex      bool                   `yaml:"add_day_index"`
	Side             string                 `yaml:"side"` // "", left, right, both, average
	Autofill         *ohops.AutofillOptions `yaml:"autofill"`
}

func (c ComposeConfig) DateCol() string {
	if c.DateColumn == "" {
		return "date"
	}
	return c.DateColumn
}

func (c ComposeConfig) SessionCol() string {
	if c.SessionColumn == "" {
		return "session"
	}
	return c.SessionColumn
}

// OutputConfig says where the composed table goes.
type OutputConfig struct {
	CSV string `yaml:"csv"`
}

// Load reads and validates a job config file.
func Load(path string) (*JobConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg JobConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the parts that would otherwise fail deep inside a run.
func (c *JobConfig) Validate() error {
	if c.Profiles.Dir == "" {
		return ErrNoDir
	}
	if len(c.Extracts) == 0 {
		return ErrNoExtracts
	}
	for _, e := range c.Extracts {
		if e.BasePath == "" {
			return fmt.Errorf("%w (extract %q)", ErrNoBasePath, e.Name)
		}
	}
	return nil
}
