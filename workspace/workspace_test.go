package workspace

import (
	"testing"
	"time"

	"klar/models"
	"klar/storage"
	"klar/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type tierTable map[string]models.AccountTier

func (t tierTable) TierOf(email string) models.AccountTier {
	if tier, ok := t[email]; ok {
		return tier
	}
	return models.TierEssential
}

func newManager(t *testing.T) *Manager {
	t.Helper()
	kv, err := storage.NewFileKV(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	log := utils.NewNopLogger()
	m := NewManager(
		storage.NewSettingsStorage(kv, "", log),
		tierTable{"test@klar.com": models.TierPro},
		time.Hour,
		log,
	)
	t.Cleanup(m.Shutdown)
	return m
}

func TestOpenCreatesAndReuses(t *testing.T) {
	m := newManager(t)

	ws := m.Open("sess-1", "test@klar.com")
	assert.Equal(t, "sess-1", ws.ID)
	assert.Equal(t, "test@klar.com", ws.Account())
	assert.True(t, ws.Settings.Settings().IsPro())

	_, err := ws.Mailbox.ToggleStar(2)
	require.NoError(t, err)

	again := m.Open("sess-1", "test@klar.com")
	assert.Same(t, ws, again)
	e, err := again.Mailbox.Get(2)
	require.NoError(t, err)
	assert.True(t, e.IsStarred)

	got, ok := m.Get("sess-1")
	require.True(t, ok)
	assert.Same(t, ws, got)
	assert.Equal(t, 1, m.Len())
}

func TestWorkspacesAreIsolated(t *testing.T) {
	m := newManager(t)

	a := m.Open("a", "test@klar.com")
	b := m.Open("b", "testfree@klar.com")

	_, err := a.Mailbox.MoveToTrash(1)
	require.NoError(t, err)

	assert.Equal(t, 1, a.Mailbox.Counters().Trash)
	assert.Equal(t, 0, b.Mailbox.Counters().Trash)
	assert.Equal(t, models.TierEssential, b.Settings.Settings().AccountType)
}

func TestSwitchingAccountResetsMailbox(t *testing.T) {
	m := newManager(t)

	ws := m.Open("sess", "test@klar.com")
	_, err := ws.Mailbox.Archive(3)
	require.NoError(t, err)
	ws.Settings.UpdateSettings(models.SettingsPatch{FullName: models.Ptr("Pro")})

	ws = m.Open("sess", "testfree@klar.com")
	assert.Equal(t, 0, ws.Mailbox.Counters().Archived)
	assert.Equal(t, "", ws.Settings.Settings().FullName)

	ws = m.Open("sess", "test@klar.com")
	assert.Equal(t, "Pro", ws.Settings.Settings().FullName)
}

func TestCloseDropsWorkspace(t *testing.T) {
	m := newManager(t)
	m.Open("sess", "test@klar.com")

	m.Close("sess")

	_, ok := m.Get("sess")
	assert.False(t, ok)
	assert.Equal(t, 0, m.Len())
}
