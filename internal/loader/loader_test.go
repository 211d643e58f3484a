package loader

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, dir, subject, body string) {
	t.Helper()
	path := filepath.Join(dir, subject+ProfileSuffix)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestDiscoverProfiles(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "s2", `{}`)
	writeProfile(t, dir, "s1", `{}`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0o644))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o755))

	paths, err := DiscoverProfiles(dir)
	require.NoError(t, err)

	// only suffix-matching files, sorted
	require.Len(t, paths, 2)
	assert.Equal(t, "s1", SubjectID(paths[0]))
	assert.Equal(t, "s2", SubjectID(paths[1]))
}

func TestDiscoverProfilesErrors(t *testing.T) {
	_, err := DiscoverProfiles(filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)

	file := filepath.Join(t.TempDir(), "plain")
	require.NoError(t, os.WriteFile(file, nil, 0o644))
	_, err = DiscoverProfiles(file)
	assert.Error(t, err)
}

func TestSubjectID(t *testing.T) {
	assert.Equal(t, "s42", SubjectID("/data/s42_OH_profile.json"))
	assert.Equal(t, "other", SubjectID("/data/other.json"))
}

func TestLoadProfiles(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "s1", `{"meta_data":{"group":"office"}}`)
	writeProfile(t, dir, "s2", `{not json`)
	writeProfile(t, dir, "s3", `{}`)

	profiles, report, err := LoadProfiles(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, report.Loaded)
	assert.Equal(t, 1, report.Failed)
	require.Len(t, report.Errors, 1)
	assert.Contains(t, report.Errors[0], "s2")

	assert.Equal(t, []string{"s1", "s3"}, profiles.IDs())
	p, ok := profiles.Get("s1")
	require.True(t, ok)
	group, ok := p["meta_data"].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, "office", group["group"])
}

func TestLoadProfilesSubjectRestriction(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "s1", `{}`)
	writeProfile(t, dir, "s2", `{}`)

	profiles, report, err := LoadProfiles(dir, []string{"s2"})
	require.NoError(t, err)
	assert.Equal(t, 1, report.Loaded)
	assert.Equal(t, []string{"s2"}, profiles.IDs())
}

func TestLoadProfilesErrorSampleBound(t *testing.T) {
	dir := t.TempDir()
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		writeProfile(t, dir, id, `broken`)
	}

	_, report, err := LoadProfiles(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, 7, report.Failed)
	assert.Len(t, report.Errors, maxErrorSample)
}

func TestListSubjects(t *testing.T) {
	dir := t.TempDir()
	writeProfile(t, dir, "s2", `{}`)
	writeProfile(t, dir, "s1", `{}`)

	profiles, _, err := LoadProfiles(dir, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"s1", "s2"}, ListSubjects(profiles))
}
