package stage

import (
	"fmt"
	"regexp"
	"sort"
	"sync"
	"time"

	"sheetflow/core/dataset"
)

// DefaultMaxStages bounds how many stages a store holds before Save fails.
// Recipes that legitimately need more can raise the limit at construction.
const DefaultMaxStages = 100

var nameRe = regexp.MustCompile(`^[A-Za-z0-9_][A-Za-z0-9_ .-]*$`)

// NotFoundError reports a load of a stage that does not exist.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("stage %q not found", e.Name)
}

// ExistsError reports a save to an existing stage without overwrite.
type ExistsError struct {
	Name string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("stage %q already exists and overwrite was not requested", e.Name)
}

// ProtectedError reports an attempted overwrite of a protected stage.
type ProtectedError struct {
	Name string
}

func (e *ProtectedError) Error() string {
	return fmt.Sprintf("stage %q is protected and cannot be overwritten", e.Name)
}

// Metadata describes a saved stage.
type Metadata struct {
	// Description is the human-readable stage summary.
	Description string `json:"description"`

	// StepName is the pipeline step that saved the stage, if any.
	StepName string `json:"step_name,omitempty"`

	// Rows and Columns record the dataset shape at save time.
	Rows    int `json:"rows"`
	Columns int `json:"columns"`

	// SavedAt is the save timestamp.
	SavedAt time.Time `json:"saved_at"`

	// UsageCount is incremented every time the stage is loaded.
	UsageCount int `json:"usage_count"`

	// Protected stages refuse overwrites regardless of the overwrite flag.
	Protected bool `json:"protected"`
}

// Info pairs a stage name with its metadata for listings.
type Info struct {
	Name     string   `json:"name"`
	Metadata Metadata `json:"metadata"`
}

type entry struct {
	data dataset.Dataset
	meta Metadata
}

// Store is the named in-memory dataset registry shared by pipeline steps.
// It is safe for concurrent use. Datasets are copied on save and load so
// stages behave as immutable snapshots.
type Store struct {
	mu        sync.RWMutex
	stages    map[string]*entry
	maxStages int
}

// NewStore creates an empty store with the default stage limit.
func NewStore() *Store {
	return NewStoreWithLimit(DefaultMaxStages)
}

// NewStoreWithLimit creates an empty store holding at most maxStages stages.
func NewStoreWithLimit(maxStages int) *Store {
	if maxStages <= 0 {
		maxStages = DefaultMaxStages
	}
	return &Store{
		stages:    make(map[string]*entry),
		maxStages: maxStages,
	}
}

// SaveOptions carries optional save parameters.
type SaveOptions struct {
	// StepName names the step performing the save, for listings.
	StepName string

	// Protected marks the stage as overwrite-proof.
	Protected bool
}

// Save stores a dataset under name. It fails with an ExistsError if the
// name is taken and overwrite is false, and with a ProtectedError if the
// existing stage is protected.
func (s *Store) Save(name string, ds *dataset.Dataset, description string, overwrite bool) error {
	return s.SaveWithOptions(name, ds, description, overwrite, SaveOptions{})
}

// SaveWithOptions is Save with step attribution and protection control.
func (s *Store) SaveWithOptions(name string, ds *dataset.Dataset, description string, overwrite bool, opts SaveOptions) error {
	if err := ValidateName(name); err != nil {
		return err
	}
	if ds == nil {
		return fmt.Errorf("stage %q: dataset must not be nil", name)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.stages[name]; ok {
		if existing.meta.Protected {
			return &ProtectedError{Name: name}
		}
		if !overwrite {
			return &ExistsError{Name: name}
		}
	} else if len(s.stages) >= s.maxStages {
		return fmt.Errorf("stage limit reached (%d); cannot save %q", s.maxStages, name)
	}

	s.stages[name] = &entry{
		data: *ds.Clone(),
		meta: Metadata{
			Description: description,
			StepName:    opts.StepName,
			Rows:        ds.Len(),
			Columns:     len(ds.Columns),
			SavedAt:     time.Now(),
			Protected:   opts.Protected,
		},
	}
	return nil
}

// Load returns a copy of the named stage's dataset and bumps its usage
// count. Absent stages produce a NotFoundError.
func (s *Store) Load(name string) (*dataset.Dataset, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.stages[name]
	if !ok {
		return nil, &NotFoundError{Name: name}
	}
	e.meta.UsageCount++
	return e.data.Clone(), nil
}

// Has reports whether the named stage exists, without counting a use.
func (s *Store) Has(name string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.stages[name]
	return ok
}

// Delete removes the named stage. Deleting an absent stage is a no-op.
// Protected stages cannot be deleted.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.stages[name]; ok && e.meta.Protected {
		return &ProtectedError{Name: name}
	}
	delete(s.stages, name)
	return nil
}

// List returns all stages sorted by name.
func (s *Store) List() []Info {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]Info, 0, len(s.stages))
	for name, e := range s.stages {
		infos = append(infos, Info{Name: name, Metadata: e.meta})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Name < infos[j].Name })
	return infos
}

// Len returns the number of stages held.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.stages)
}

// ValidateName checks that a stage name is usable: non-empty, starting
// with a word character, and containing only word characters, spaces,
// dots, and dashes.
func ValidateName(name string) error {
	if name == "" {
		return fmt.Errorf("stage name must not be empty")
	}
	if !nameRe.MatchString(name) {
		return fmt.Errorf("invalid stage name %q", name)
	}
	return nil
}
