package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"example.com/voyage/internal/domain"
)

func writeCatalog(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadShippedCatalog(t *testing.T) {
	c, err := Load("../../configs/journey.yaml")
	require.NoError(t, err)

	legs, err := c.JourneyLegs("classic-80")
	require.NoError(t, err)
	require.Len(t, legs, 5)
	require.Equal(t, "London", legs[0].From)
	require.Equal(t, domain.CategoryNautical, legs[0].RequiredCategory)
}

func TestLoadRejectsUnknownCategory(t *testing.T) {
	path := writeCatalog(t, `
journeys:
  - id: bad
    name: Bad Journey
    legs:
      - from: A
        to: B
        category: aerial
        amount: 1.0
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestLoadRejectsNonPositiveAmount(t *testing.T) {
	path := writeCatalog(t, `
journeys:
  - id: bad
    name: Bad Journey
    legs:
      - from: A
        to: B
        category: nautical
        amount: 0
`)
	_, err := Load(path)
	require.Error(t, err)
}

func TestJourneyLegsUnknownID(t *testing.T) {
	path := writeCatalog(t, `
journeys:
  - id: ok
    name: OK
    legs:
      - from: A
        to: B
        category: nautical
        amount: 1.0
`)
	c, err := Load(path)
	require.NoError(t, err)

	_, err = c.JourneyLegs("missing")
	require.Error(t, err)
}
