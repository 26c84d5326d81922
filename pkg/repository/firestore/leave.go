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

type leaveDocument struct {
	ID        string    `firestore:"id"`
	MemberID  string    `firestore:"member_id"`
	Start     time.Time `firestore:"start"`
	End       time.Time `firestore:"end"`
	Duration  float64   `firestore:"duration"`
	Status    string    `firestore:"status"`
	Reason    string    `firestore:"reason"`
	CreatedAt time.Time `firestore:"created_at"`
	UpdatedAt time.Time `firestore:"updated_at"`
}

func (d *leaveDocument) toModel() *model.Leave {
	return &model.Leave{
		ID:        model.LeaveID(d.ID),
		MemberID:  types.MemberID(d.MemberID),
		Start:     d.Start.UTC(),
		End:       d.End.UTC(),
		Duration:  d.Duration,
		Status:    types.LeaveStatus(d.Status),
		Reason:    d.Reason,
		CreatedAt: d.CreatedAt,
		UpdatedAt: d.UpdatedAt,
	}
}

type leaveRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newLeaveRepository(client *firestore.Client) *leaveRepository {
	return &leaveRepository{client: client}
}

func (r *leaveRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "leaves"))
}

func (r *leaveRepository) Put(ctx context.Context, leave *model.Leave) error {
	now := time.Now().UTC()
	createdAt := leave.CreatedAt
	if createdAt.IsZero() {
		createdAt = now
	}

	doc := &leaveDocument{
		ID:        string(leave.ID),
		MemberID:  leave.MemberID.String(),
		Start:     model.Day(leave.Start),
		End:       model.Day(leave.End),
		Duration:  leave.Duration,
		Status:    leave.Status.String(),
		Reason:    leave.Reason,
		CreatedAt: createdAt,
		UpdatedAt: now,
	}

	if _, err := r.collection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put leave", goerr.V("id", leave.ID))
	}
	return nil
}

func (r *leaveRepository) Get(ctx context.Context, id model.LeaveID) (*model.Leave, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "leave not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get leave", goerr.V("id", id))
	}

	var l leaveDocument
	if err := doc.DataTo(&l); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal leave", goerr.V("id", id))
	}
	return l.toModel(), nil
}

func (r *leaveRepository) Delete(ctx context.Context, id model.LeaveID) error {
	docRef := r.collection().Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "leave not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get leave", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete leave", goerr.V("id", id))
	}
	return nil
}

// FindByMember filters start <= end on the server and end >= start in
// memory, since Firestore allows range filters on a single field only.
func (r *leaveRepository) FindByMember(ctx context.Context, memberID types.MemberID, st types.LeaveStatus, start, end time.Time) ([]*model.Leave, error) {
	q := r.collection().
		Where("member_id", "==", memberID.String()).
		Where("status", "==", st.String()).
		Where("start", "<=", model.Day(end)).
		OrderBy("start", firestore.Asc)
	return r.collect(q.Documents(ctx), model.NewDateRange(start, end))
}

func (r *leaveRepository) List(ctx context.Context, start, end time.Time) ([]*model.Leave, error) {
	q := r.collection().
		Where("start", "<=", model.Day(end)).
		OrderBy("start", firestore.Asc)
	return r.collect(q.Documents(ctx), model.NewDateRange(start, end))
}

func (r *leaveRepository) collect(iter *firestore.DocumentIterator, window model.DateRange) ([]*model.Leave, error) {
	defer iter.Stop()

	var leaves []*model.Leave
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate leaves")
		}

		var l leaveDocument
		if err := doc.DataTo(&l); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal leave")
		}
		leave := l.toModel()
		if leave.Overlaps(window) {
			leaves = append(leaves, leave)
		}
	}
	return leaves, nil
}
