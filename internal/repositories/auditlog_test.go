package repositories_test

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tkivisto/legalintake/internal/models"
	"github.com/tkivisto/legalintake/internal/repositories"
	"github.com/tkivisto/legalintake/internal/testhelpers"
)

func TestAuditLogRepository(t *testing.T) {
	dbs := newTestDB(t)
	repo := repositories.NewAuditLogRepository(dbs, testhelpers.NewLogger(io.Discard))
	ctx := context.Background()

	entries, err := repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	// Newest first.
	require.Equal(t, models.AuditActionSummaryEdited, entries[0].Action)
	require.Equal(t, "Maria Attorney", entries[0].Actor)
	require.Equal(t, models.AuditActionAnalysis, entries[1].Action)
	require.Equal(t, "AI Assistant", entries[1].Actor)

	err = repo.Append(ctx, 1, models.AuditActionReviewCompleted, "Case marked as reviewed", "Maria Attorney")
	require.NoError(t, err)

	entries, err = repo.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	require.Equal(t, models.AuditActionReviewCompleted, entries[0].Action)

	// A case without log entries has an empty trail.
	entries, err = repo.List(ctx, 2)
	require.NoError(t, err)
	require.Empty(t, entries)
}
