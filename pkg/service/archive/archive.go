package archive

import (
	"context"
	"encoding/json"
	"fmt"
	"path"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/domain/interfaces"
	"github.com/secmon-lab/moirai/pkg/domain/model"
	"github.com/secmon-lab/moirai/pkg/utils/logging"
	"github.com/secmon-lab/moirai/pkg/utils/safe"
)

// GCS stores report snapshots as JSON objects in a Cloud Storage bucket
type GCS struct {
	client *storage.Client
	bucket string
	prefix string
}

var _ interfaces.Archiver = &GCS{}

type Option func(*GCS)

// WithPrefix places every object under prefix
func WithPrefix(prefix string) Option {
	return func(g *GCS) {
		g.prefix = prefix
	}
}

func New(ctx context.Context, bucket string, opts ...Option) (*GCS, error) {
	if bucket == "" {
		return nil, goerr.New("archive bucket is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client", goerr.V("bucket", bucket))
	}

	g := &GCS{
		client: client,
		bucket: bucket,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// Archive uploads the report and returns its gs:// URL
func (g *GCS) Archive(ctx context.Context, report *model.Report) (string, error) {
	name := objectName(g.prefix, report)

	w := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	w.ContentType = "application/json"
	w.Metadata = map[string]string{
		"team_id":   report.TeamID.String(),
		"report_id": string(report.ID),
	}

	if err := json.NewEncoder(w).Encode(report); err != nil {
		safe.Close(ctx, w)
		return "", goerr.Wrap(err, "failed to write report object", goerr.V("object", name))
	}
	if err := w.Close(); err != nil {
		return "", goerr.Wrap(err, "failed to finalize report object", goerr.V("object", name))
	}

	url := fmt.Sprintf("gs://%s/%s", g.bucket, name)
	logging.From(ctx).Info("report archived", "report_id", report.ID, "url", url)
	return url, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}

// objectName is prefix/team/start_end/report-id.json
func objectName(prefix string, report *model.Report) string {
	window := report.Start.Format(model.DateLayout) + "_" + report.End.Format(model.DateLayout)
	return path.Join(prefix, report.TeamID.String(), window, string(report.ID)+".json")
}
