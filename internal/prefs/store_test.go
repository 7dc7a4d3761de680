package prefs

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "prefs.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestRecentDefaultsOnly(t *testing.T) {
	s := openTestStore(t)
	assert.Equal(t, []string{"RSD", "EUR", "USD", "RUB"}, s.Recent(Currencies, 1))
	assert.Equal(t,
		[]string{"Serbian", "English", "Russian", "German", "French", "Spanish"},
		s.Recent(Languages, 1))
}

func TestTouchMovesToFrontAndDedupes(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Touch(Currencies, 7, "EUR"))
	require.NoError(t, s.Touch(Currencies, 7, "USD"))
	require.NoError(t, s.Touch(Currencies, 7, "eur"))

	got := s.Recent(Currencies, 7)
	assert.Equal(t, []string{"EUR", "USD", "RSD", "RUB"}, got)
	assert.LessOrEqual(t, len(got), 6)
}

func TestRecentCappedAtSix(t *testing.T) {
	s := openTestStore(t)
	for _, c := range []string{"GBP", "JPY", "CNY", "CHF", "CAD", "AUD", "NZD"} {
		require.NoError(t, s.Touch(Currencies, 9, c))
	}
	got := s.Recent(Currencies, 9)
	assert.Len(t, got, 6)
	assert.Equal(t, []string{"NZD", "AUD", "CAD", "CHF", "CNY", "JPY"}, got)
}

func TestPerSubmitterIsolation(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Touch(Languages, 1, "Italian"))
	assert.Equal(t, "Italian", s.Recent(Languages, 1)[0])
	assert.Equal(t, "Serbian", s.Recent(Languages, 2)[0])
}

func TestTouchRejectsEmpty(t *testing.T) {
	s := openTestStore(t)
	assert.Error(t, s.Touch(Languages, 1, "   "))
}
