package kelpsvc

import (
	"context"
	"testing"

	"github.com/dekarrin/kelp/server/dao"
	"github.com/dekarrin/kelp/server/serr"
	"github.com/stretchr/testify/require"
)

func Test_Login_Success(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)

	_, err := svc.CreateUser(context.Background(), "kelpy", "password1", "", dao.Normal)
	require.NoError(err)

	user, err := svc.Login(context.Background(), "kelpy", "password1")
	require.NoError(err)
	require.Equal("kelpy", user.Username)
}

func Test_Login_WrongPassword(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)

	_, err := svc.CreateUser(context.Background(), "kelpy", "password1", "", dao.Normal)
	require.NoError(err)

	_, err = svc.Login(context.Background(), "kelpy", "wrong-password")
	require.ErrorIs(err, serr.ErrBadCredentials)
}

func Test_Login_UnknownUsername(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)

	_, err := svc.Login(context.Background(), "nobody", "password1")
	require.ErrorIs(err, serr.ErrBadCredentials)
}

func Test_Logout_UpdatesLastLogoutTime(t *testing.T) {
	require := require.New(t)
	svc := newTestService(t)

	created, err := svc.CreateUser(context.Background(), "kelpy", "password1", "", dao.Normal)
	require.NoError(err)
	before := created.LastLogoutTime

	loggedOut, err := svc.Logout(context.Background(), created.ID)
	require.NoError(err)
	require.True(loggedOut.LastLogoutTime.After(before))
}
