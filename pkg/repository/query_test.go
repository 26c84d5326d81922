package repository_test

import (
	"context"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
)

func runQueryRepositoryTest(t *testing.T, newRepo func(t *testing.T) interfaces.Repository) {
	t.Helper()

	t.Run("Put replaces the query of a team", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Query().Put(ctx, &model.SavedQuery{TeamID: "platform", Name: "sprint", JQL: "project = OPS"})).Required()
		gt.NoError(t, repo.Query().Put(ctx, &model.SavedQuery{TeamID: "platform", Name: "sprint", JQL: "project = OPS AND sprint in openSprints()"})).Required()

		got, err := repo.Query().Get(ctx, "platform")
		gt.NoError(t, err).Required()
		gt.Value(t, got.JQL).Equal("project = OPS AND sprint in openSprints()")
		gt.Bool(t, got.UpdatedAt.IsZero()).False()
	})

	t.Run("Get and Delete of missing query fail", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		_, err := repo.Query().Get(ctx, "platform")
		gt.Value(t, err).NotNil()
		gt.Value(t, repo.Query().Delete(ctx, "platform")).NotNil()
	})

	t.Run("Delete removes query", func(t *testing.T) {
		repo := newRepo(t)
		ctx := context.Background()

		gt.NoError(t, repo.Query().Put(ctx, &model.SavedQuery{TeamID: "platform", JQL: "project = OPS"})).Required()
		gt.NoError(t, repo.Query().Delete(ctx, "platform")).Required()
		_, err := repo.Query().Get(ctx, "platform")
		gt.Value(t, err).NotNil()
	})
}

func TestQueryRepository(t *testing.T) {
	runBothBackends(t, runQueryRepositoryTest)
}
