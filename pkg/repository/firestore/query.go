package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type queryDocument struct {
	TeamID    string    `firestore:"team_id"`
	Name      string    `firestore:"name"`
	JQL       string    `firestore:"jql"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

type queryRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newQueryRepository(client *firestore.Client) *queryRepository {
	return &queryRepository{client: client}
}

func (r *queryRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "queries"))
}

func (r *queryRepository) Put(ctx context.Context, query *model.SavedQuery) error {
	doc := &queryDocument{
		TeamID:    query.TeamID.String(),
		Name:      query.Name,
		JQL:       query.JQL,
		UpdatedAt: time.Now().UTC(),
	}
	if _, err := r.collection().Doc(doc.TeamID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put saved query", goerr.V("team_id", query.TeamID))
	}
	return nil
}

func (r *queryRepository) Get(ctx context.Context, teamID types.TeamID) (*model.SavedQuery, error) {
	doc, err := r.collection().Doc(teamID.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "saved query not found", goerr.V("team_id", teamID))
		}
		return nil, goerr.Wrap(err, "failed to get saved query", goerr.V("team_id", teamID))
	}

	var q queryDocument
	if err := doc.DataTo(&q); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal saved query", goerr.V("team_id", teamID))
	}
	return &model.SavedQuery{
		TeamID:    types.TeamID(q.TeamID),
		Name:      q.Name,
		JQL:       q.JQL,
		UpdatedAt: q.UpdatedAt,
	}, nil
}

func (r *queryRepository) Delete(ctx context.Context, teamID types.TeamID) error {
	docRef := r.collection().Doc(teamID.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "saved query not found", goerr.V("team_id", teamID))
		}
		return goerr.Wrap(err, "failed to get saved query", goerr.V("team_id", teamID))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete saved query", goerr.V("team_id", teamID))
	}
	return nil
}
