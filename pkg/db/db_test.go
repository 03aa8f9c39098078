package db

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type uniqueRow struct {
	ID   int64  `gorm:"primaryKey"`
	Code string `gorm:"uniqueIndex"`
}

func TestNewTestDuplicateKey(t *testing.T) {
	conn, err := NewTest()
	require.NoError(t, err)
	require.NoError(t, conn.AutoMigrate(&uniqueRow{}))

	require.NoError(t, conn.Create(&uniqueRow{ID: 1, Code: "a"}).Error)
	err = conn.Create(&uniqueRow{ID: 2, Code: "a"}).Error
	require.Error(t, err)

	assert.True(t, IsDuplicateKeyErr(err))
	assert.False(t, errors.Is(err, gorm.ErrDuplicatedKey))
	assert.False(t, IsDuplicateKeyErr(errors.New("boom")))
	assert.False(t, IsDuplicateKeyErr(nil))
}

func TestNewTestIsolated(t *testing.T) {
	first, err := NewTest()
	require.NoError(t, err)
	second, err := NewTest()
	require.NoError(t, err)

	require.NoError(t, first.AutoMigrate(&uniqueRow{}))
	assert.False(t, second.Migrator().HasTable(&uniqueRow{}))
}
