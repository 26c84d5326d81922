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

type riskDocument struct {
	Type     string `firestore:"type"`
	Severity string `firestore:"severity"`
	Message  string `firestore:"message"`
}

type reportDocument struct {
	ID             string            `firestore:"id"`
	TeamID         string            `firestore:"team_id"`
	Start          time.Time         `firestore:"start"`
	End            time.Time         `firestore:"end"`
	Summary        model.TeamSummary `firestore:"summary"`
	Risks          []riskDocument    `firestore:"risks"`
	BurnRate       model.BurnRate    `firestore:"burn_rate"`
	Trend          string            `firestore:"trend"`
	Narrative      string            `firestore:"narrative"`
	NarrativeState string            `firestore:"narrative_state"`
	ArchiveURL     string            `firestore:"archive_url"`
	CreatedAt      time.Time         `firestore:"created_at"`
}

func (d *reportDocument) toModel() *model.Report {
	risks := make([]model.Risk, len(d.Risks))
	for i, r := range d.Risks {
		risks[i] = model.Risk{
			Type:     model.RiskType(r.Type),
			Severity: types.Severity(r.Severity),
			Message:  r.Message,
		}
	}
	return &model.Report{
		ID:             model.ReportID(d.ID),
		TeamID:         types.TeamID(d.TeamID),
		Start:          d.Start.UTC(),
		End:            d.End.UTC(),
		Summary:        d.Summary,
		Risks:          risks,
		BurnRate:       d.BurnRate,
		Trend:          types.Trend(d.Trend),
		Narrative:      d.Narrative,
		NarrativeState: model.NarrativeState(d.NarrativeState),
		ArchiveURL:     d.ArchiveURL,
		CreatedAt:      d.CreatedAt,
	}
}

type reportRepository struct {
	client           *firestore.Client
	collectionPrefix string
}

func newReportRepository(client *firestore.Client) *reportRepository {
	return &reportRepository{client: client}
}

func (r *reportRepository) collection() *firestore.CollectionRef {
	return r.client.Collection(CollectionName(r.collectionPrefix, "reports"))
}

func (r *reportRepository) Create(ctx context.Context, report *model.Report) error {
	risks := make([]riskDocument, len(report.Risks))
	for i, risk := range report.Risks {
		risks[i] = riskDocument{
			Type:     string(risk.Type),
			Severity: risk.Severity.String(),
			Message:  risk.Message,
		}
	}

	doc := &reportDocument{
		ID:             string(report.ID),
		TeamID:         report.TeamID.String(),
		Start:          report.Start,
		End:            report.End,
		Summary:        report.Summary,
		Risks:          risks,
		BurnRate:       report.BurnRate,
		Trend:          string(report.Trend),
		Narrative:      report.Narrative,
		NarrativeState: string(report.NarrativeState),
		ArchiveURL:     report.ArchiveURL,
		CreatedAt:      report.CreatedAt,
	}

	if _, err := r.collection().Doc(doc.ID).Create(ctx, doc); err != nil {
		return goerr.Wrap(err, "failed to create report", goerr.V("id", report.ID))
	}
	return nil
}

func (r *reportRepository) Get(ctx context.Context, id model.ReportID) (*model.Report, error) {
	doc, err := r.collection().Doc(string(id)).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, goerr.Wrap(ErrNotFound, "report not found", goerr.V("id", id))
		}
		return nil, goerr.Wrap(err, "failed to get report", goerr.V("id", id))
	}

	var rd reportDocument
	if err := doc.DataTo(&rd); err != nil {
		return nil, goerr.Wrap(err, "failed to unmarshal report", goerr.V("id", id))
	}
	return rd.toModel(), nil
}

func (r *reportRepository) ListByTeam(ctx context.Context, teamID types.TeamID, limit int) ([]*model.Report, error) {
	q := r.collection().
		Where("team_id", "==", teamID.String()).
		OrderBy("created_at", firestore.Desc)
	if limit > 0 {
		q = q.Limit(limit)
	}

	iter := q.Documents(ctx)
	defer iter.Stop()

	var reports []*model.Report
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to iterate reports", goerr.V("team_id", teamID))
		}

		var rd reportDocument
		if err := doc.DataTo(&rd); err != nil {
			return nil, goerr.Wrap(err, "failed to unmarshal report")
		}
		reports = append(reports, rd.toModel())
	}
	return reports, nil
}
