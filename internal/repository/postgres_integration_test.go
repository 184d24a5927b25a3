//go:build integration

package repository

import (
	"testing"

	"github.com/rongwang/sitecrew-server/internal/testutils"
)

func TestPostgresRepository(t *testing.T) {
	repo := NewSQLRepository(testutils.GetPostgresDB(t))
	runRepositoryTests(t, repo)
}
