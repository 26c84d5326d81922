package firestore

import (
	"context"
	"time"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

type holidayDocument struct {
	ID        string    `firestore:"id"`
	Name      string    `firestore:"name"`
	Date      time.Time `firestore:"date"`
	Location  string    `firestore:"location"`
	Hours     *float64  `firestore:"hours"`
	CreatedAt time.Time `firestore:"created_at"`
}

func (d *holidayDocument) toModel() *model.Holiday {
	return &model.Holiday{
		ID:        model.HolidayID(d.ID),
		Name:      d.Name,
		Date:      d.Date.UTC(),
		Location:  d.Location,
		Hours:     d.Hours,
		CreatedAt: d.CreatedAt,
	}
}

type holidayRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newHolidayRepository(client *firestore.Client) *holidayRepository {
	return &holidayRepository{client: client}
}

func (r *holidayRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "holidays"))
}

func (r *holidayRepository) Put(ctx context.Context, holiday *model.Holiday) error {
	createdAt := holiday.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	doc := &holidayDocument{
		ID:        string(holiday.ID),
		Name:      holiday.Name,
		Date:      model.Day(holiday.Date),
		Location:  holiday.Location,
		Hours:     holiday.Hours,
		CreatedAt: createdAt,
	}

	if _, err := r.collection().Doc(doc.ID).Set(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to put holiday", goerr.V("id", holiday.ID))
	}
	return nil
}

func (r *holidayRepository) Delete(ctx context.Context, id model.HolidayID) error {
	docRef := r.collection().Doc(string(id))

	if _, err := docRef.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return goerr.Wrap(ErrNotFound, "holiday not found", goerr.V("id", id))
		}
		return goerr.Wrap(err, "failed to get holiday", goerr.V("id", id))
	}

	if _, err := docRef.Delete(ctx); err != nil {
		return goerr.Wrap(err, "failed to delete holiday", goerr.V("id", id))
	}
	return nil
}

func (r *holidayRepository) List(ctx context.Context, start, end time.Time) ([]*model.Holiday, error) {
	q := r.collection().
		Where("date", ">=", model.Day(start)).
		Where("date", "<=", model.Day(end)).
		OrderBy("date", firestore.Asc)
	return r.collect(q.Documents(ctx))
}

// FindByLocation relies on the (location, date) composite index created by
// the migrate command.
func (r *holidayRepository) FindByLocation(ctx context.Context, location string, start, end time.Time) ([]*model.Holiday, error) {
	locations := []string{location}
	if location != model.GlobalLocation {
		locations = append(locations, model.GlobalLocation)
	}

	q := r.collection().
		Where("location", "in", locations).
		Where("date", ">=", model.Day(start)).
		Where("date", "<=", model.Day(end)).
		OrderBy("date", firestore.Asc)
	return r.collect(q.Documents(ctx))
}

func (r *holidayRepository) collect(iter *firestore.DocumentIterator) ([]*model.Holiday, error) {
	defer iter.Stop()

	var holidays []*model.Holiday
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate holidays")
		}

		var h holidayDocument
		if err := doc.DataTo(&h); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal holiday")
		}
		holidays = append(holidays, h.toModel())
	}
	return holidays, nil
}
