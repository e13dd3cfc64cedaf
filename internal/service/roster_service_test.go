package service

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mfreeman481/paysheet-api/internal/models"
)

func newRosterServiceForTest(t *testing.T) (*RosterService, string) {
	t.Helper()
	dir := t.TempDir()
	return NewRosterService(dir, nil, zap.NewNop()), dir
}

func TestRosterLoadFallsBackToDefaults(t *testing.T) {
	svc, _ := newRosterServiceForTest(t)

	names := svc.Load(models.TeamConstruction)
	assert.Equal(t, DefaultSubcontractors, names)
}

func TestRosterLoadFallsBackOnEmptyFile(t *testing.T) {
	svc, dir := newRosterServiceForTest(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "subcontractors.txt"), []byte("\n  \n\n"), 0o644))

	names := svc.Load(models.TeamConstruction)
	assert.Equal(t, DefaultSubcontractors, names)
}

func TestRosterSaveLoadRoundTrip(t *testing.T) {
	svc, _ := newRosterServiceForTest(t)

	require.NoError(t, svc.Save("Sub 1\n\n  Sub 2  \nSub 3\n", models.TeamConstruction))

	names := svc.Load(models.TeamConstruction)
	assert.Equal(t, []string{"Sub 1", "Sub 2", "Sub 3"}, names)
}

func TestRosterTeamsAreIndependent(t *testing.T) {
	svc, _ := newRosterServiceForTest(t)

	require.NoError(t, svc.Save("Welder A\nWelder B", models.TeamWelding))

	assert.Equal(t, []string{"Welder A", "Welder B"}, svc.Load(models.TeamWelding))
	assert.Equal(t, DefaultSubcontractors, svc.Load(models.TeamConstruction))
}

func TestRosterLoadIsCachedUntilInvalidated(t *testing.T) {
	svc, dir := newRosterServiceForTest(t)
	path := filepath.Join(dir, "subcontractors.txt")
	require.NoError(t, os.WriteFile(path, []byte("Sub 1"), 0o644))

	assert.Equal(t, []string{"Sub 1"}, svc.Load(models.TeamConstruction))

	// An out-of-band write is invisible until the cache entry drops.
	require.NoError(t, os.WriteFile(path, []byte("Sub 9"), 0o644))
	assert.Equal(t, []string{"Sub 1"}, svc.Load(models.TeamConstruction))

	svc.Invalidate(models.TeamConstruction)
	assert.Equal(t, []string{"Sub 9"}, svc.Load(models.TeamConstruction))
}

func TestRosterSaveInvalidatesCache(t *testing.T) {
	svc, _ := newRosterServiceForTest(t)

	assert.Equal(t, DefaultSubcontractors, svc.Load(models.TeamConstruction))
	require.NoError(t, svc.Save("Sub 1\nSub 2", models.TeamConstruction))
	assert.Equal(t, []string{"Sub 1", "Sub 2"}, svc.Load(models.TeamConstruction))
}

func TestRosterLoadReturnsACopy(t *testing.T) {
	svc, _ := newRosterServiceForTest(t)
	require.NoError(t, svc.Save("Sub 1\nSub 2", models.TeamConstruction))

	first := svc.Load(models.TeamConstruction)
	first[0] = "mutated"

	assert.Equal(t, []string{"Sub 1", "Sub 2"}, svc.Load(models.TeamConstruction))
}
