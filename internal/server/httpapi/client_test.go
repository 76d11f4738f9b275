package httpapi

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/medscan/internal/client/api"
	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/localapi"
)

// newClient serves the router over a real listener and points the HTTP
// client at it.
func newClient(t *testing.T) *api.HTTPClient {
	t.Helper()
	ts := httptest.NewServer(newTestServer(t))
	t.Cleanup(ts.Close)
	return api.NewHTTPClient(ts.URL, time.Second, api.WithHTTPClient(ts.Client()))
}

func TestHTTPClient_AccountFlow(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	require.NoError(t, c.Ping(ctx))

	res, err := c.Signup(ctx, models.SignUpFields{FirstName: "Ada", LastName: "Lovelace", Email: "Ada@Example.com", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", res.User.Email)

	_, err = c.Signup(ctx, models.SignUpFields{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "password1"})
	require.ErrorIs(t, err, common.ErrDuplicateEmail)
	assert.Equal(t, "email", common.FieldOf(err))

	_, err = c.Login(ctx, "ada@example.com", "wrong-one")
	require.ErrorIs(t, err, common.ErrWrongPassword)
	assert.Equal(t, "password", common.FieldOf(err))

	_, err = c.Login(ctx, "nobody@example.com", "password1")
	require.ErrorIs(t, err, common.ErrUnregisteredEmail)

	res, err = c.Login(ctx, "ada@example.com", "password1")
	require.NoError(t, err)

	_, err = c.UpdateProfile(ctx, res.User)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	c.SetToken(res.Token)
	upd := res.User
	upd.LastName = "King"
	p, err := c.UpdateProfile(ctx, upd)
	require.NoError(t, err)
	assert.Equal(t, "King", p.LastName)

	p, err = c.GetProfile(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Equal(t, "King", p.LastName)

	require.NoError(t, c.Logout(ctx))
}

func TestHTTPClient_PasswordReset(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	_, err := c.Signup(ctx, models.SignUpFields{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)

	msg, err := c.RequestReset(ctx, "ada@example.com")
	require.NoError(t, err)
	assert.Contains(t, msg, localapi.MockResetCode)

	require.NoError(t, c.VerifyResetCode(ctx, "ada@example.com", localapi.MockResetCode))

	err = c.CompleteReset(ctx, "ada@example.com", "999999", "newpassword")
	require.ErrorIs(t, err, common.ErrInvalidCode)

	require.NoError(t, c.CompleteReset(ctx, "ada@example.com", localapi.MockResetCode, "newpassword"))

	_, err = c.Login(ctx, "ada@example.com", "newpassword")
	require.NoError(t, err)
}

func TestHTTPClient_Medicine(t *testing.T) {
	ctx := context.Background()
	c := newClient(t)

	rec, err := c.LookupMedicine(ctx, "BRUFEN")
	require.NoError(t, err)
	assert.Equal(t, "Brufen", rec.Name)

	_, err = c.LookupMedicine(ctx, "Unobtainium")
	require.ErrorIs(t, err, common.ErrNotFound)

	rec, err = c.SubmitOCR(ctx, []byte{0xff, 0xd8, 0xff})
	require.NoError(t, err)
	assert.Equal(t, "Panadol", rec.Name)

	_, err = c.SaveHistory(ctx, "", rec)
	require.ErrorIs(t, err, common.ErrUnauthorized)

	res, err := c.Signup(ctx, models.SignUpFields{FirstName: "Ada", LastName: "Lovelace", Email: "ada@example.com", Password: "password1"})
	require.NoError(t, err)
	c.SetToken(res.Token)

	added, err := c.SaveHistory(ctx, res.User.ID, rec)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = c.SaveHistory(ctx, res.User.ID, rec)
	require.NoError(t, err)
	assert.False(t, added)
}
