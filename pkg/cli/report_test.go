package cli

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/moirai/pkg/domain/model"
)

func TestReportWindow(t *testing.T) {
	now := time.Date(2024, 1, 17, 10, 0, 0, 0, time.UTC)

	t.Run("defaults to previous business week", func(t *testing.T) {
		start, end, err := reportWindow("", "", now)
		gt.NoError(t, err).Required()
		gt.String(t, start.Format(model.DateLayout)).Equal("2024-01-08")
		gt.String(t, end.Format(model.DateLayout)).Equal("2024-01-12")
	})

	t.Run("explicit window", func(t *testing.T) {
		start, end, err := reportWindow("2024-02-01", "2024-02-29", now)
		gt.NoError(t, err).Required()
		gt.String(t, start.Format(model.DateLayout)).Equal("2024-02-01")
		gt.String(t, end.Format(model.DateLayout)).Equal("2024-02-29")
	})

	t.Run("one bound only", func(t *testing.T) {
		_, _, err := reportWindow("2024-02-01", "", now)
		gt.Error(t, err)
	})

	t.Run("malformed date", func(t *testing.T) {
		_, _, err := reportWindow("2024/02/01", "2024-02-29", now)
		gt.Error(t, err)
	})
}

func TestGetIndexConfig(t *testing.T) {
	cfg := getIndexConfig("test")
	gt.Array(t, cfg.Collections).Length(3).Required()
	gt.String(t, cfg.Collections[0].Name).Equal("test_holidays")
	gt.String(t, cfg.Collections[2].Name).Equal("test_reports")
}
