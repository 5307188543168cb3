package token

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/dekarrin/kelp/server/dao"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUserRepo struct {
	users map[uuid.UUID]dao.User
}

func (f fakeUserRepo) Create(ctx context.Context, u dao.User) (dao.User, error) { return u, nil }
func (f fakeUserRepo) GetByUsername(ctx context.Context, username string) (dao.User, error) {
	return dao.User{}, dao.ErrNotFound
}
func (f fakeUserRepo) GetAll(ctx context.Context) ([]dao.User, error) { return nil, nil }
func (f fakeUserRepo) Update(ctx context.Context, id uuid.UUID, u dao.User) (dao.User, error) {
	return u, nil
}
func (f fakeUserRepo) Delete(ctx context.Context, id uuid.UUID) (dao.User, error) {
	return dao.User{}, nil
}
func (f fakeUserRepo) Close() error { return nil }

func (f fakeUserRepo) GetByID(ctx context.Context, id uuid.UUID) (dao.User, error) {
	u, ok := f.users[id]
	if !ok {
		return dao.User{}, dao.ErrNotFound
	}
	return u, nil
}

func Test_Generate_Validate_RoundTrip(t *testing.T) {
	require := require.New(t)
	secret := []byte("super-secret-value-that-is-long-enough")

	u := dao.User{
		ID:             uuid.New(),
		Username:       "fronds",
		Password:       "hashed-password",
		Role:           dao.Normal,
		LastLogoutTime: time.Unix(1000, 0),
	}

	repo := fakeUserRepo{users: map[uuid.UUID]dao.User{u.ID: u}}

	tok, err := Generate(secret, u)
	require.NoError(err)
	require.NotEmpty(tok)

	got, err := Validate(context.Background(), tok, secret, repo)
	require.NoError(err)
	require.Equal(u.ID, got.ID)
}

func Test_Validate_RejectsTokenAfterPasswordChange(t *testing.T) {
	require := require.New(t)
	secret := []byte("super-secret-value-that-is-long-enough")

	u := dao.User{
		ID:       uuid.New(),
		Username: "fronds",
		Password: "hashed-password",
	}

	tok, err := Generate(secret, u)
	require.NoError(err)

	u.Password = "a-different-hashed-password"
	repo := fakeUserRepo{users: map[uuid.UUID]dao.User{u.ID: u}}

	_, err = Validate(context.Background(), tok, secret, repo)
	require.Error(err)
}

func Test_Validate_RejectsTokenAfterLogout(t *testing.T) {
	require := require.New(t)
	secret := []byte("super-secret-value-that-is-long-enough")

	u := dao.User{
		ID:             uuid.New(),
		Username:       "fronds",
		Password:       "hashed-password",
		LastLogoutTime: time.Unix(1000, 0),
	}

	tok, err := Generate(secret, u)
	require.NoError(err)

	u.LastLogoutTime = time.Unix(2000, 0)
	repo := fakeUserRepo{users: map[uuid.UUID]dao.User{u.ID: u}}

	_, err = Validate(context.Background(), tok, secret, repo)
	require.Error(err)
}

func Test_Get(t *testing.T) {
	testCases := []struct {
		name      string
		header    string
		expect    string
		expectErr bool
	}{
		{
			name:   "normal bearer token",
			header: "Bearer abc.def.ghi",
			expect: "abc.def.ghi",
		},
		{
			name:      "missing header",
			header:    "",
			expectErr: true,
		},
		{
			name:      "wrong scheme",
			header:    "Basic abc.def.ghi",
			expectErr: true,
		},
		{
			name:      "malformed header",
			header:    "abc.def.ghi",
			expectErr: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert := assert.New(t)

			req, err := http.NewRequest(http.MethodGet, "/", nil)
			assert.NoError(err)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}

			got, err := Get(req)
			if tc.expectErr {
				assert.Error(err)
				return
			}
			assert.NoError(err)
			assert.Equal(tc.expect, got)
		})
	}
}
