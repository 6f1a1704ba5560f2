package services

import (
	"context"
	"fmt"
	"io"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/mokayaj857/vireya/internal/apiclient"
	"github.com/mokayaj857/vireya/internal/repo"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:svc_%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := repo.AutoMigrate(db); err != nil {
		t.Fatalf("automigrate: %v", err)
	}
	return db
}

// fakeBackend answers each call from a table of values and errors.
type fakeBackend struct {
	values    map[string]any
	errs      map[string]error
	lastFile  []byte
	lastName  string
	lastExtra map[string]string
}

func (f *fakeBackend) get(name string) (any, error) {
	if err := f.errs[name]; err != nil {
		return nil, err
	}
	return f.values[name], nil
}

func (f *fakeBackend) Welcome(context.Context) (any, error)          { return f.get("welcome") }
func (f *fakeBackend) AnalyticsSummary(context.Context) (any, error) { return f.get("analytics") }
func (f *fakeBackend) ContentList(context.Context) (any, error)      { return f.get("content") }
func (f *fakeBackend) CreateSupportTicket(_ context.Context, t apiclient.SupportTicket) (any, error) {
	return f.get("support")
}
func (f *fakeBackend) RecognizeDrug(_ context.Context, file apiclient.File, extra map[string]string) (any, error) {
	f.lastName = file.Name
	f.lastFile, _ = io.ReadAll(file.Content)
	f.lastExtra = extra
	return f.get("recognize")
}
