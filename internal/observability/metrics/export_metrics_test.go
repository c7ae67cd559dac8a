package metrics

import (
	"context"
	"errors"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestClassifyError(t *testing.T) {
	assert.Equal(t, "", ClassifyError(nil))
	assert.Equal(t, ExportErrorTypeDeadlineExceeded, ClassifyError(context.DeadlineExceeded))
	assert.Equal(t, ExportErrorTypeDB, ClassifyError(&pgconn.PgError{Code: "40001"}))
	assert.Equal(t, ExportErrorTypeDB, ClassifyError(gorm.ErrInvalidDB))
	assert.Equal(t, ExportErrorTypeUnknown, ClassifyError(errors.New("boom")))
}

func TestRecordInternalErrorLabelsFailureClass(t *testing.T) {
	m := newExportMetrics(prometheus.NewRegistry(), Config{})

	m.RecordInternalError(gorm.ErrInvalidDB)
	m.RecordInternalError(errors.New("boom"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.batches.WithLabelValues(ExportOutcomeInternalError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues(ExportErrorTypeDB)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues(ExportErrorTypeUnknown)))
}
