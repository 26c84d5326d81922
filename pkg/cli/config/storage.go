package config

import (
	"context"
	"log/slog"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/moirai/pkg/service/archive"
	"github.com/urfave/cli/v3"
)

// Storage holds the report archive bucket settings
type Storage struct {
	bucket string
	prefix string
}

func (x *Storage) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "archive-bucket",
			Usage:       "Cloud Storage bucket receiving report JSON. Empty disables archiving",
			Category:    "Storage",
			Sources:     cli.EnvVars("MOIRAI_ARCHIVE_BUCKET"),
			Destination: &x.bucket,
		},
		&cli.StringFlag{
			Name:        "archive-prefix",
			Usage:       "Object name prefix for archived reports",
			Category:    "Storage",
			Sources:     cli.EnvVars("MOIRAI_ARCHIVE_PREFIX"),
			Destination: &x.prefix,
		},
	}
}

func (x Storage) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("bucket", x.bucket),
		slog.String("prefix", x.prefix),
	)
}

// Configure opens the archive. Returns nil when no bucket is set. The
// caller closes the returned archive.
func (x *Storage) Configure(ctx context.Context) (*archive.GCS, error) {
	if x.bucket == "" {
		return nil, nil
	}

	gcs, err := archive.New(ctx, x.bucket, archive.WithPrefix(x.prefix))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to initialize report archive")
	}
	return gcs, nil
}
