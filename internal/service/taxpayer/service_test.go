package taxpayer

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"FiscoBot/entity"
)

type fakeRepo struct {
	byPhone map[string]*entity.Taxpayer
	saved   []*entity.Taxpayer
}

func (f *fakeRepo) UpsertTaxpayer(_ context.Context, t *entity.Taxpayer) error {
	f.saved = append(f.saved, t)
	return nil
}

func (f *fakeRepo) GetTaxpayerByPhone(_ context.Context, phone string) (*entity.Taxpayer, error) {
	return f.byPhone[phone], nil
}

func newTestService(repo Repository) *Service {
	s := NewService(slog.New(slog.NewTextHandler(io.Discard, nil)))
	if repo != nil {
		s.SetRepository(repo)
	}
	return s
}

func TestLookupKnownPhone(t *testing.T) {
	repo := &fakeRepo{byPhone: map[string]*entity.Taxpayer{
		"+237699112233": {UUID: "tp-1", Name: "Amina"},
	}}
	svc := newTestService(repo)

	out, err := svc.Call(context.Background(), "lookup", map[string]any{"phone": "+237699112233"})
	require.NoError(t, err)
	assert.Equal(t, true, out["found"])
	assert.Equal(t, "tp-1", out["uuid"])
	assert.Equal(t, "Amina", out["name"])
}

func TestLookupUnknownPhone(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	out, err := svc.Call(context.Background(), "lookup", map[string]any{"phone": "+237600000000"})
	require.NoError(t, err)
	assert.Equal(t, false, out["found"])
}

func TestLookupWithoutRepository(t *testing.T) {
	svc := newTestService(nil)

	out, err := svc.Call(context.Background(), "lookup", map[string]any{"phone": "+237600000000"})
	require.NoError(t, err)
	assert.Equal(t, false, out["found"])

	_, err = svc.Call(context.Background(), "lookup", map[string]any{})
	assert.Error(t, err)
}

func TestRegisterPersists(t *testing.T) {
	repo := &fakeRepo{}
	svc := newTestService(repo)

	out, err := svc.Call(context.Background(), "register", map[string]any{
		"name":   "Amina Ngo",
		"phone":  "+237699112233",
		"region": "Littoral",
		"email":  "amina@exemple.cm",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, out["uuid"])
	assert.Equal(t, "Amina Ngo", out["name"])

	require.Len(t, repo.saved, 1)
	saved := repo.saved[0]
	assert.Equal(t, "Littoral", saved.Region)
	assert.Equal(t, "amina@exemple.cm", saved.Email)
}

func TestRegisterRequiresNameAndPhone(t *testing.T) {
	svc := newTestService(&fakeRepo{})

	_, err := svc.Call(context.Background(), "register", map[string]any{"name": "Amina"})
	assert.Error(t, err)
}
