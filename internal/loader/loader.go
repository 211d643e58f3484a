package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/quantifiedwork/ohtidy/internal/types"
)

// Discovery and loading of per-subject profile JSON files. A profile file
// is named "<subject_id>_OH_profile.json"; malformed files are counted and
// sampled in the report, never fatal for the batch.

// ProfileSuffix is the standard profile filename suffix.
const ProfileSuffix = "_OH_profile.json"

// maxErrorSample bounds how many per-file errors the report carries.
const maxErrorSample = 5

// LoadReport summarizes a batch load.
type LoadReport struct {
	Loaded int      `json:"loaded"`
	Failed int      `json:"failed"`
	Errors []string `json:"errors"` // first maxErrorSample failures
}

// DiscoverProfiles lists profile files in dir, sorted by name.
func DiscoverProfiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("profiles directory: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("profiles path is not a directory: %s", dir)
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read profiles directory: %w", err)
	}
	var out []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ProfileSuffix) {
			continue
		}
		out = append(out, filepath.Join(dir, e.Name()))
	}
	sort.Strings(out)
	return out, nil
}

// SubjectID extracts the subject id from a profile filename.
func SubjectID(path string) string {
	name := filepath.Base(path)
	if strings.HasSuffix(name, ProfileSuffix) {
		return strings.TrimSuffix(name, ProfileSuffix)
	}
	return strings.TrimSuffix(name, filepath.Ext(name))
}

// LoadProfile parses one profile file.
func LoadProfile(path string) (types.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read profile: %w", err)
	}
	var p types.Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

// LoadProfiles loads every profile in dir, optionally restricted to the
// given subject ids. Files that fail to parse are reported, not raised.
func LoadProfiles(dir string, subjectIDs []string) (*types.ProfileSet, LoadReport, error) {
	paths, err := DiscoverProfiles(dir)
	if err != nil {
		return nil, LoadReport{}, err
	}

	var wanted map[string]struct{}
	if subjectIDs != nil {
		wanted = make(map[string]struct{}, len(subjectIDs))
		for _, id := range subjectIDs {
			wanted[id] = struct{}{}
		}
	}

	profiles := types.NewProfileSet()
	var report LoadReport
	for _, path := range paths {
		id := SubjectID(path)
		if wanted != nil {
			if _, ok := wanted[id]; !ok {
				continue
			}
		}
		p, err := LoadProfile(path)
		if err != nil {
			report.Failed++
			if len(report.Errors) < maxErrorSample {
				report.Errors = append(report.Errors, fmt.Sprintf("%s: %v", id, err))
			}
			continue
		}
		profiles.Add(id, p)
		report.Loaded++
	}
	return profiles, report, nil
}

// ListSubjects returns the loaded subject ids sorted ascending.
func ListSubjects(profiles *types.ProfileSet) []string {
	ids := profiles.IDs()
	sort.Strings(ids)
	return ids
}
