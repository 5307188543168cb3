package kelpsvc

import (
	"context"
	"testing"

	"github.com/dekarrin/kelp/server/dao/inmem"
	"github.com/dekarrin/kelp/server/serr"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	return Service{DB: inmem.NewDatastore()}
}

func Test_CreateScript_ParsesAndCaches(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)
	owner := uuid.New()

	created, err := svc.CreateScript(context.Background(), owner.String(), "greet", `"hello"`)
	require.NoError(err)
	require.Equal("greet", created.Name)
	require.NotEmpty(created.ProgramCache)
}

func Test_CreateScript_RejectsInvalidSource(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)
	owner := uuid.New()

	_, err := svc.CreateScript(context.Background(), owner.String(), "broken", `let x =`)
	require.Error(err)
	require.ErrorIs(err, serr.ErrBadArgument)
}

func Test_UpdateScript_ReparsesOnlyWhenSourceChanges(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)
	owner := uuid.New()

	created, err := svc.CreateScript(context.Background(), owner.String(), "greet", `1 + 1`)
	require.NoError(err)
	originalCache := created.ProgramCache

	sameSource, err := svc.UpdateScript(context.Background(), created.ID.String(), "greet-renamed", `1 + 1`)
	require.NoError(err)
	require.Equal(originalCache, sameSource.ProgramCache)

	newSource, err := svc.UpdateScript(context.Background(), created.ID.String(), "greet-renamed", `2 + 2`)
	require.NoError(err)
	require.NotEqual(originalCache, newSource.ProgramCache)
}

func Test_RunScript_UsesCachedProgram(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)
	owner := uuid.New()

	created, err := svc.CreateScript(context.Background(), owner.String(), "math", `2 + 3`)
	require.NoError(err)

	result, err := svc.RunScript(context.Background(), created.ID.String())
	require.NoError(err)
	require.Empty(result.Error)
	require.Equal("5", result.Output)
}

func Test_RunScript_ReportsParseFailureWithoutError(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)
	owner := uuid.New()

	// CreateScript refuses to store unparseable source, so simulate a
	// stale cache by updating the script's source directly in the store.
	created, err := svc.CreateScript(context.Background(), owner.String(), "math", `1`)
	require.NoError(err)

	stored, err := svc.DB.Scripts().GetByID(context.Background(), created.ID)
	require.NoError(err)
	stored.Source = `let x =`
	stored.ProgramCache = nil
	_, err = svc.DB.Scripts().Update(context.Background(), created.ID, stored)
	require.NoError(err)

	result, err := svc.RunScript(context.Background(), created.ID.String())
	require.NoError(err)
	require.NotEmpty(result.Error)
}

func Test_GetAllScriptsByUser_FiltersToOwner(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)
	owner1 := uuid.New()
	owner2 := uuid.New()

	_, err := svc.CreateScript(context.Background(), owner1.String(), "a", `1`)
	require.NoError(err)
	_, err = svc.CreateScript(context.Background(), owner2.String(), "b", `2`)
	require.NoError(err)

	scripts, err := svc.GetAllScriptsByUser(context.Background(), owner1.String())
	require.NoError(err)
	require.Len(scripts, 1)
	require.Equal("a", scripts[0].Name)
}
