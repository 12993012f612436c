package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/printvala/printvala-api/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupSequenceDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.NumberSequence{}))
	return db
}

func TestNextNumber_Format(t *testing.T) {
	db := setupSequenceDB(t)
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	number, err := NextNumber(db, "PV", now)
	require.NoError(t, err)
	assert.Equal(t, "PV260829001", number)
}

func TestNextNumber_SequencesWithinADay(t *testing.T) {
	db := setupSequenceDB(t)
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	for i := 1; i <= 12; i++ {
		number, err := NextNumber(db, "PV", now)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("PV260829%03d", i), number)
	}
}

func TestNextNumber_ResetsEachDay(t *testing.T) {
	db := setupSequenceDB(t)

	day1 := time.Date(2026, 8, 29, 23, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 30, 1, 0, 0, 0, time.UTC)

	n1, err := NextNumber(db, "PV", day1)
	require.NoError(t, err)
	n2, err := NextNumber(db, "PV", day2)
	require.NoError(t, err)

	assert.Equal(t, "PV260829001", n1)
	assert.Equal(t, "PV260830001", n2, "the counter restarts with the date")
}

func TestNextNumber_PrefixesAreIndependent(t *testing.T) {
	db := setupSequenceDB(t)
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	order, err := NextNumber(db, "PV", now)
	require.NoError(t, err)
	quote, err := NextNumber(db, "QT", now)
	require.NoError(t, err)

	assert.Equal(t, "PV260829001", order)
	assert.Equal(t, "QT260829001", quote, "order numbering must not consume quote numbers")
}

func TestNextNumber_NeverRepeats(t *testing.T) {
	db := setupSequenceDB(t)
	now := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)

	seen := make(map[string]bool)
	for i := 0; i < 50; i++ {
		number, err := NextNumber(db, "PV", now)
		require.NoError(t, err)
		assert.False(t, seen[number], "number %s issued twice", number)
		seen[number] = true
	}
}
