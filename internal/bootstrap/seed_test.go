package bootstrap

import (
	"testing"

	"anoa.com/bloodlink/internal/entity"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestSeedBloodBankIsIdempotent(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:bootstrap_seed?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	require.NoError(t, SeedBloodBank(db, "bank@test.local", "secret1"))
	require.NoError(t, SeedBloodBank(db, "bank@test.local", "secret1"))

	var users []entity.User
	require.NoError(t, db.Preload("Bank").Where("email = ?", "bank@test.local").Find(&users).Error)
	require.Len(t, users, 1)
	assert.Equal(t, entity.RoleBank, users[0].Role)
	require.NotNil(t, users[0].Bank)
	assert.Equal(t, 0, users[0].Bank.BloodBagCount)
	assert.Equal(t, 1, users[0].ProfileCount())
}
