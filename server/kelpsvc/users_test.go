package kelpsvc

import (
	"context"
	"testing"

	"github.com/dekarrin/kelp/server/dao"
	"github.com/dekarrin/kelp/server/serr"
	"github.com/stretchr/testify/require"
)

func Test_CreateUser_RejectsDuplicateUsername(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)

	_, err := svc.CreateUser(context.Background(), "kelpy", "password1", "", dao.Normal)
	require.NoError(err)

	_, err = svc.CreateUser(context.Background(), "kelpy", "password2", "", dao.Normal)
	require.ErrorIs(err, serr.ErrAlreadyExists)
}

func Test_CreateUser_RejectsBlankPassword(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)

	_, err := svc.CreateUser(context.Background(), "kelpy", "", "", dao.Normal)
	require.ErrorIs(err, serr.ErrBadArgument)
}

func Test_CreateUser_StoresHashedPassword(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)

	created, err := svc.CreateUser(context.Background(), "kelpy", "password1", "", dao.Normal)
	require.NoError(err)
	require.NotEqual("password1", created.Password)
}

func Test_UpdatePassword_RejectsBlank(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)

	created, err := svc.CreateUser(context.Background(), "kelpy", "password1", "", dao.Normal)
	require.NoError(err)

	_, err = svc.UpdatePassword(context.Background(), created.ID.String(), "")
	require.ErrorIs(err, serr.ErrBadArgument)
}

func Test_DeleteUser_NotFound(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)

	_, err := svc.DeleteUser(context.Background(), "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(err, serr.ErrNotFound)
}
