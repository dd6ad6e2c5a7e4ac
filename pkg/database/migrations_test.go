package database

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMigrationsAreOrdered(t *testing.T) {
	migrations := getMigrations()
	assert.NotEmpty(t, migrations)

	previous := 0
	for _, m := range migrations {
		assert.Greater(t, m.Version, previous, "migration %d out of order", m.Version)
		assert.NotNil(t, m.Up)
		assert.NotNil(t, m.Down)
		assert.NotEmpty(t, m.Description)
		previous = m.Version
	}
}
