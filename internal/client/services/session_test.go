package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/medscan/internal/auth"
	"github.com/dmitrijs2005/medscan/internal/client/models"
	"github.com/dmitrijs2005/medscan/internal/common"
	"github.com/dmitrijs2005/medscan/internal/validate"
)

func TestInitialize_FreshInstallShowsOnboarding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	st := f.mgr.Initialize(ctx)
	assert.False(t, st.SignedIn)
	assert.Nil(t, st.User)
	assert.Equal(t, models.RouteOnboarding, st.Route)

	require.NoError(t, f.mgr.MarkOnboardingSeen(ctx))
	assert.Equal(t, models.RouteMain, f.mgr.State().Route)

	st = f.reopen().Initialize(ctx)
	assert.Equal(t, models.RouteMain, st.Route)
}

func TestInitialize_RestoresSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user, err := f.mgr.SignUp(ctx, adaFields)
	require.NoError(t, err)

	m2 := f.reopen()
	st := m2.Initialize(ctx)
	require.True(t, st.SignedIn)
	if diff := cmp.Diff(&user, st.User); diff != "" {
		t.Fatalf("restored user mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, models.RouteMain, st.Route)
	assert.NotEmpty(t, f.client.token(), "cached token handed to the client")
}

func TestInitialize_CorruptOrIncompleteUserIsSignedOut(t *testing.T) {
	tests := []struct {
		name string
		raw  string
	}{
		{"garbage", "{not json"},
		{"no email", `{"id":"1","firstName":"Ada"}`},
		{"blank email", `{"email":"   "}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			ctx := context.Background()
			require.NoError(t, f.store.Set(ctx, KeyUser, []byte(tt.raw)))

			st := f.mgr.Initialize(ctx)
			assert.False(t, st.SignedIn)
			assert.Equal(t, models.RouteOnboarding, st.Route)
		})
	}
}

func TestInitialize_RemovesStrayToken(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.store.Set(ctx, KeyToken, []byte("orphan")))

	st := f.mgr.Initialize(ctx)
	assert.False(t, st.SignedIn)

	v, err := f.store.Get(ctx, KeyToken)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestInitialize_ExpiredTokenKeepsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	expired, err := auth.GenerateToken("u1", []byte("k"), -time.Hour)
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, KeyUser, []byte(`{"id":"u1","email":"ada@example.com"}`)))
	require.NoError(t, f.store.Set(ctx, KeyToken, []byte(expired)))

	st := f.mgr.Initialize(ctx)
	assert.True(t, st.SignedIn, "a session exists while the user record does")
	assert.Equal(t, expired, f.client.token())
}

func TestSignUp_Validation(t *testing.T) {
	f := newFixture(t)

	_, err := f.mgr.SignUp(context.Background(), models.SignUpFields{Email: "bad", Password: "short"})
	require.ErrorIs(t, err, common.ErrValidation)

	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	for field, want := range map[string]string{
		validate.FieldFirstName: "Please enter First Name.",
		validate.FieldLastName:  "Please enter Last Name.",
		validate.FieldEmail:     "Please enter a valid email.",
		validate.FieldPassword:  "Password must be at least 8 characters long.",
	} {
		got, ok := ve.Message(field)
		require.True(t, ok, field)
		assert.Equal(t, want, got)
	}
	assert.False(t, f.mgr.State().SignedIn)
}

func TestSignUp_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mgr.SignUp(ctx, adaFields)
	require.NoError(t, err)
	require.NoError(t, f.mgr.LogOut(ctx))

	dup := adaFields
	dup.Email = " ADA@example.com"
	_, err = f.mgr.SignUp(ctx, dup)
	require.ErrorIs(t, err, common.ErrDuplicateEmail)
	assert.Equal(t, validate.FieldEmail, common.FieldOf(err))
	assert.False(t, f.mgr.State().SignedIn)
}

func TestSignUp_NeverStoresPassword(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mgr.SignUp(ctx, adaFields)
	require.NoError(t, err)

	raw, err := f.store.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), adaFields.Password)

	seen, err := f.store.Get(ctx, KeyOnboardingSeen)
	require.NoError(t, err)
	assert.NotNil(t, seen)
}

func TestSignUpThenLogIn_RoundTrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	signed, err := f.mgr.SignUp(ctx, adaFields)
	require.NoError(t, err)
	require.NoError(t, f.mgr.LogOut(ctx))

	user, err := f.mgr.LogIn(ctx, "Ada@Example.com", adaFields.Password)
	require.NoError(t, err)
	assert.Equal(t, signed.ID, user.ID)

	st := f.mgr.State()
	require.True(t, st.SignedIn)
	assert.Equal(t, "ada@example.com", st.User.Email)
}

func TestLogIn_Errors(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.mgr.SignUp(ctx, adaFields)
	require.NoError(t, err)
	require.NoError(t, f.mgr.LogOut(ctx))

	_, err = f.mgr.LogIn(ctx, "ghost@example.com", "password1")
	require.ErrorIs(t, err, common.ErrUnregisteredEmail)
	assert.Equal(t, common.KindAuth, common.KindOf(err))

	_, err = f.mgr.LogIn(ctx, "ada@example.com", "password9")
	require.ErrorIs(t, err, common.ErrWrongPassword)
	assert.Equal(t, validate.FieldPassword, common.FieldOf(err))

	_, err = f.mgr.LogIn(ctx, "ada@example.com", "")
	require.ErrorIs(t, err, common.ErrValidation)
	var ve *common.ValidationError
	require.ErrorAs(t, err, &ve)
	msg, _ := ve.Message(validate.FieldPassword)
	assert.Equal(t, "Please enter a password.", msg)

	assert.False(t, f.mgr.State().SignedIn)
}

func TestLogIn_ProfileFetchFailureKeepsLoginUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.mgr.SignUp(ctx, adaFields)
	require.NoError(t, err)
	require.NoError(t, f.mgr.LogOut(ctx))

	f.client.profileErr = errBoom
	user, err := f.mgr.LogIn(ctx, adaFields.Email, adaFields.Password)
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", user.Email)
	assert.True(t, f.mgr.State().SignedIn)
}

func TestLogIn_StorageFailureLeavesSignedOut(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.mgr.SignUp(ctx, adaFields)
	require.NoError(t, err)
	require.NoError(t, f.mgr.LogOut(ctx))

	f.flaky.failWrites = true
	_, err = f.mgr.LogIn(ctx, adaFields.Email, adaFields.Password)
	require.ErrorIs(t, err, common.ErrStorage)
	assert.Equal(t, common.KindStorage, common.KindOf(err))
	assert.False(t, f.mgr.State().SignedIn)
	assert.Empty(t, f.client.token())

	v, err := f.store.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestLogOut_ClearsSessionAcrossReload(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.mgr.SignUp(ctx, adaFields)
	require.NoError(t, err)
	require.NoError(t, f.store.Set(ctx, KeyResetCode, []byte(`{"email":"ada@example.com","code":"1"}`)))

	f.client.logoutErr = errBoom
	require.NoError(t, f.mgr.LogOut(ctx), "remote failure must not block local logout")
	assert.False(t, f.mgr.State().SignedIn)

	_, err = f.mgr.SaveHistory(ctx, panadol)
	require.ErrorIs(t, err, common.ErrSignUpRequired)

	for _, key := range []string{KeyUser, KeyToken, KeyResetCode} {
		v, err := f.store.Get(ctx, key)
		require.NoError(t, err)
		assert.Nil(t, v, key)
	}

	st := f.reopen().Initialize(ctx)
	assert.False(t, st.SignedIn)
	assert.Equal(t, models.RouteMain, st.Route, "onboarding was already seen")
}

func TestLogOut_StorageFailureKeepsSession(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.mgr.SignUp(ctx, adaFields)
	require.NoError(t, err)

	f.flaky.failWrites = true
	err = f.mgr.LogOut(ctx)
	require.ErrorIs(t, err, common.ErrStorage)
	assert.True(t, f.mgr.State().SignedIn)
}

func TestSubscribe_NotifiesAndCancels(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var got []models.State
	cancel := f.mgr.Subscribe(func(st models.State) {
		// State must be callable from a listener.
		_ = f.mgr.State()
		got = append(got, st)
	})

	_, err := f.mgr.SignUp(ctx, adaFields)
	require.NoError(t, err)
	require.NoError(t, f.mgr.LogOut(ctx))

	require.Len(t, got, 2)
	assert.True(t, got[0].SignedIn)
	assert.False(t, got[1].SignedIn)

	cancel()
	_, err = f.mgr.LogIn(ctx, adaFields.Email, adaFields.Password)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestUpdateProfile_MovesHistory(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.mgr.UpdateProfile(ctx, "A", "B", "a@b.co")
	require.ErrorIs(t, err, common.ErrSignedOut)

	_, err = f.mgr.SignUp(ctx, adaFields)
	require.NoError(t, err)
	_, err = f.mgr.SaveHistory(ctx, panadol)
	require.NoError(t, err)

	p, err := f.mgr.UpdateProfile(ctx, "Augusta", "King", "augusta@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Augusta", p.FirstName)
	assert.Equal(t, "augusta@example.com", f.mgr.State().User.Email)

	hist, err := f.mgr.LoadHistory(ctx)
	require.NoError(t, err)
	require.Len(t, hist, 1)
	assert.Equal(t, "Panadol", hist[0].Name)

	keys, err := f.mgr.OfflineKeys(ctx)
	require.NoError(t, err)
	assert.Contains(t, keys, PrefixHistory+"augusta@example.com")
	assert.NotContains(t, keys, PrefixHistory+"ada@example.com")
}

func TestOfflineKeys_OnlyCacheKeys(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.mgr.SignUp(ctx, adaFields)
	require.NoError(t, err)

	keys, err := f.mgr.OfflineKeys(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyOnboardingSeen, KeyToken, KeyUser}, keys)
}
