package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestSQLHelpers(t *testing.T) {
	assert.Equal(t, "SELECT", operationFromSQL(`SELECT * FROM "songs" WHERE id = 1`))
	assert.Equal(t, "DELETE", operationFromSQL(`WITH x AS (SELECT 1) DELETE FROM song_collaborators`))
	assert.Equal(t, "UNKNOWN", operationFromSQL(""))

	assert.Equal(t, "songs", tableFromSQL(`SELECT * FROM "songs" WHERE id = 1`))
	assert.Equal(t, "song_collaborators", tableFromSQL(`INSERT INTO song_collaborators (id) VALUES (1)`))
	assert.Equal(t, "artists", tableFromSQL("UPDATE `artists` SET name = ?"))
	assert.Equal(t, "", tableFromSQL("PRAGMA foreign_keys"))
}

func TestGormConfigFor(t *testing.T) {
	assert.Equal(t, gormlogger.Info, GormConfigFor("development").Level)
	assert.Equal(t, gormlogger.Warn, GormConfigFor("production").Level)
}

func TestTraceSkipsRecordNotFound(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	restore := zap.ReplaceGlobals(zap.New(core))
	defer restore()
	ctx := context.Background()

	l := NewGormLogger(GormLoggerConfig{Level: gormlogger.Warn, SlowThreshold: time.Hour})
	stmt := func() (string, int64) { return `SELECT * FROM "songs"`, 0 }

	l.Trace(ctx, time.Now(), stmt, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 0, logs.Len())

	l.Trace(ctx, time.Now(), stmt, errors.New("connection reset"))
	if assert.Equal(t, 1, logs.Len()) {
		entry := logs.All()[0]
		assert.Equal(t, zapcore.ErrorLevel, entry.Level)
		assert.Equal(t, "songs", entry.ContextMap()["table"])
	}
}
