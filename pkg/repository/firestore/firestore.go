package firestore

import (
	"context"

	"cloud.google.com/go/firestore"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
)

type Firestore struct {
	client  *firestore.Client
	team    *teamRepository
	holiday *holidayRepository
	leave   *leaveRepository
	query   *queryRepository
	report  *reportRepository
}

var _ interfaces.Repository = &Firestore{}

type Option func(*Firestore)

// WithCollectionPrefix namespaces every collection, e.g. "test_teams".
func WithCollectionPrefix(prefix string) Option {
	return func(f *Firestore) {
		f.team.collectionPrefix = prefix
		f.holiday.collectionPrefix = prefix
		f.leave.collectionPrefix = prefix
		f.query.collectionPrefix = prefix
		f.report.collectionPrefix = prefix
	}
}

// New connects to Firestore. An empty databaseID selects the default database.
func New(ctx context.Context, projectID, databaseID string, opts ...Option) (*Firestore, error) {
	if databaseID == "" {
		databaseID = firestore.DefaultDatabaseID
	}

	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client",
			goerr.V("projectID", projectID),
			goerr.V("databaseID", databaseID))
	}

	f := &Firestore{
		client:  client,
		team:    newTeamRepository(client),
		holiday: newHolidayRepository(client),
		leave:   newLeaveRepository(client),
		query:   newQueryRepository(client),
		report:  newReportRepository(client),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f, nil
}

func (f *Firestore) Team() interfaces.TeamRepository {
	return f.team
}

func (f *Firestore) Holiday() interfaces.HolidayRepository {
	return f.holiday
}

func (f *Firestore) Leave() interfaces.LeaveRepository {
	return f.leave
}

func (f *Firestore) Query() interfaces.QueryRepository {
	return f.query
}

func (f *Firestore) Report() interfaces.ReportRepository {
	return f.report
}

func (f *Firestore) Close() error {
	if f.client != nil {
		return f.client.Close()
	}
	return nil
}

// CollectionName returns the Firestore collection name of name under prefix
func CollectionName(prefix, name string) string {
	if prefix != "" {
		return prefix + "_" + name
	}
	return name
}
