package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/domain/types"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type memberDocument struct {
	ID                string `firestore:"id"`
	Name              string `firestore:"name"`
	Email             string `firestore:"email"`
	Designation       string `firestore:"designation"`
	ExternalAccountID string `firestore:"external_account_id"`
	Location          string `firestore:"location"`
}

type teamDocument struct {
	ID        string           `firestore:"id"`
	Name      string           `firestore:"name"`
	Location  string           `firestore:"location"`
	Members   []memberDocument `firestore:"members"`
	CreatedAt time.Time        `firestore:"created_at"`
	UpdatedAt time.Time        `firestore:"updated_at"`
}

func (d *teamDocument) toModel() *model.Team {
	members := make([]model.Member, len(d.Members))
	for i, m := range d.Members {
		members[i] = model.Member{
			ID:                types.MemberID(m.ID),
			Name:              m.Name,
			Email:             m.Email,
			Designation:       m.Designation,
			ExternalAccountID: m.ExternalAccountID,
			Location:          m.Location,
		}
	}
	return &model.Team{
		ID:        types.TeamID(d.ID),
		Name:      d.Name,
		Location:  d.Location,
		Members:   members,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type teamRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newTeamRepository(client *firestore.Client) *teamRepository {
	return &teamRepository{client: client}
}

func (r *teamRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "teams"))
}

func (r *teamRepository) Put(ctx context.Context, team *model.Team) (*model.Team, error) {
	docRef := r.collection().Doc(team.ID.String())
	now := time.Now().UTC()

	members := make([]memberDocument, len(team.Members))
	for i, m := range team.Members {
		members[i] = memberDocument{
			ID:                m.ID.String(),
			Name:              m.Name,
			Email:             m.Email,
			Designation:       m.Designation,
			ExternalAccountID: m.ExternalAccountID,
			Location:          m.Location,
		}
	}

	doc := &teamDocument{
		ID:        team.ID.String(),
		Name:      team.Name,
		Location:  team.Location,
		Members:   members,
		CreatedAt: now,
		UpdatedAt: now,
	}

	err := r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		existing, err := tx.Get(docRef)
		if err != nil && status.Code(err) != codes.NotFound {
			return goerr.Wrap(err, "failed to get team")
		}
		if err == nil {
			var prev teamDocument
			if err := existing.DataTo(&prev); err != nil {
				return goerr.Wrap(err, "failed to unmarshal team")
			}
			doc.CreatedAt = prev.CreatedAt
		}
		return tx.Set(docRef, doc)
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to put team", goerr.V("id", team.ID))
	}

	return doc.toModel(), nil
}

func (r *teamRepository) Get(ctx context.Context, id types.TeamID) (*model.Team, error) {
	doc, err := r.collection().Doc(id.String()).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "team not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get team", goerr.V("id", id))
	}

	var teamDoc teamDocument
	if err := doc.DataTo(&teamDoc); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal team", goerr.V("id", id))
	}
	return teamDoc.toModel(), nil
}

func (r *teamRepository) List(ctx context.Context) ([]*model.Team, error) {
	iter := r.collection().OrderBy("id", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	var teams []*model.Team
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate teams")
		}

		var teamDoc teamDocument
		if err := doc.DataTo(&teamDoc); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal team")
		}
		teams = append(teams, teamDoc.toModel())
	}
	return teams, nil
}

func (r *teamRepository) Delete(ctx context.Context, id types.TeamID) error {
	docRef := r.collection().Doc(id.String())

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "team not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get team", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete team", goerr.V("id", id))
	}
	return nil
}
