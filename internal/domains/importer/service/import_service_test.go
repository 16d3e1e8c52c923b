package service

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pos-backend/internal/domains/importer/model"
)

func newServiceUnderTest(ledger *fakeLedger, files *fakeFileStore, enqueuer *fakeEnqueuer, notifier *fakeNotifier) ServiceInterface {
	return NewImportService(ledger, files, enqueuer, notifier, testImportConfig())
}

func TestStartImportCreatesPendingJobAndEnqueues(t *testing.T) {
	ledger := newFakeLedger()
	files := newFakeFileStore()
	enqueuer := &fakeEnqueuer{}
	svc := newServiceUnderTest(ledger, files, enqueuer, &fakeNotifier{})

	ownerID := uuid.New()
	job, err := svc.StartImport(context.Background(), ownerID, model.KindProducts, "productos.xlsx", []byte("workbook-bytes"))
	require.NoError(t, err)

	assert.Equal(t, model.StatusPending, job.Status)
	assert.Equal(t, model.KindProducts, job.ImportKind)
	assert.Equal(t, ownerID, job.OwnerID)
	assert.Contains(t, job.SourceFileRef, job.ID.String())

	stored, err := ledger.GetJob(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, stored.Status)

	require.Len(t, enqueuer.jobIDs, 1)
	assert.Equal(t, job.ID, enqueuer.jobIDs[0])

	data, err := files.Download(context.Background(), job.SourceFileRef)
	require.NoError(t, err)
	assert.Equal(t, []byte("workbook-bytes"), data)
}

// The ledger stores whatever Upload returns, and the runner later hands that
// value straight to Download. The ref must therefore be the object key itself,
// never a derived URL.
func TestStartImportStoresDownloadableObjectKey(t *testing.T) {
	files := newFakeFileStore()
	svc := newServiceUnderTest(newFakeLedger(), files, &fakeEnqueuer{}, &fakeNotifier{})

	job, err := svc.StartImport(context.Background(), uuid.New(), model.KindStock, "stock.xlsx", []byte("rows"))
	require.NoError(t, err)

	assert.Equal(t, fmt.Sprintf("imports/%s/stock.xlsx", job.ID), job.SourceFileRef)

	data, err := files.Download(context.Background(), job.SourceFileRef)
	require.NoError(t, err)
	assert.Equal(t, []byte("rows"), data)
}

func TestStartImportRejectsEmptyFile(t *testing.T) {
	svc := newServiceUnderTest(newFakeLedger(), newFakeFileStore(), &fakeEnqueuer{}, &fakeNotifier{})

	_, err := svc.StartImport(context.Background(), uuid.New(), model.KindProducts, "x.xlsx", nil)
	assert.Error(t, err)
}

func TestStartImportRejectsOversizedFile(t *testing.T) {
	svc := newServiceUnderTest(newFakeLedger(), newFakeFileStore(), &fakeEnqueuer{}, &fakeNotifier{})

	big := make([]byte, testImportConfig().MaxUploadBytes+1)
	_, err := svc.StartImport(context.Background(), uuid.New(), model.KindProducts, "x.xlsx", big)
	assert.Error(t, err)
}

func TestStartImportFailsWhenUploadFails(t *testing.T) {
	files := newFakeFileStore()
	files.failUpload = true
	ledger := newFakeLedger()
	svc := newServiceUnderTest(ledger, files, &fakeEnqueuer{}, &fakeNotifier{})

	_, err := svc.StartImport(context.Background(), uuid.New(), model.KindProducts, "x.xlsx", []byte("data"))
	require.Error(t, err)
	assert.Empty(t, ledger.jobs)
}

func TestCancelPendingJob(t *testing.T) {
	ledger := newFakeLedger()
	notifier := &fakeNotifier{}
	svc := newServiceUnderTest(ledger, newFakeFileStore(), &fakeEnqueuer{}, notifier)

	job := &model.ImportJob{ID: uuid.New(), Status: model.StatusPending, OwnerID: uuid.New()}
	require.NoError(t, ledger.CreateJob(context.Background(), job))

	cancelled, err := svc.Cancel(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusCancelled, cancelled.Status)
	assert.Equal(t, model.StatusCancelled, notifier.last().Status)
}

func TestCancelRejectsTerminalJob(t *testing.T) {
	ledger := newFakeLedger()
	svc := newServiceUnderTest(ledger, newFakeFileStore(), &fakeEnqueuer{}, &fakeNotifier{})

	for _, status := range []model.JobStatus{model.StatusCompleted, model.StatusFailed, model.StatusCancelled} {
		job := &model.ImportJob{ID: uuid.New(), Status: status, OwnerID: uuid.New()}
		require.NoError(t, ledger.CreateJob(context.Background(), job))

		_, err := svc.Cancel(context.Background(), job.ID)
		assert.ErrorIs(t, err, model.ErrNotCancellable, "status %s", status)
	}
}

func TestCancelUnknownJob(t *testing.T) {
	svc := newServiceUnderTest(newFakeLedger(), newFakeFileStore(), &fakeEnqueuer{}, &fakeNotifier{})

	_, err := svc.Cancel(context.Background(), uuid.New())
	assert.ErrorIs(t, err, model.ErrJobNotFound)
}

func TestRetryResetsJobAndReenqueues(t *testing.T) {
	ledger := newFakeLedger()
	enqueuer := &fakeEnqueuer{}
	svc := newServiceUnderTest(ledger, newFakeFileStore(), enqueuer, &fakeNotifier{})

	summary, _ := json.Marshal(model.FailureSummary{Message: "no se pudo leer el archivo"})
	job := &model.ImportJob{
		ID:                uuid.New(),
		Status:            model.StatusFailed,
		OwnerID:           uuid.New(),
		TotalRecords:      10,
		ProcessedRecords:  4,
		SuccessfulRecords: 3,
		FailedRecords:     1,
		ErrorSummary:      summary,
	}
	require.NoError(t, ledger.CreateJob(context.Background(), job))

	retried, err := svc.Retry(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.StatusPending, retried.Status)
	assert.Zero(t, retried.ProcessedRecords)
	assert.Zero(t, retried.SuccessfulRecords)
	assert.Zero(t, retried.FailedRecords)
	assert.Nil(t, retried.ErrorSummary)
	assert.Nil(t, retried.CompletedAt)

	require.Len(t, enqueuer.jobIDs, 1)
	assert.Equal(t, job.ID, enqueuer.jobIDs[0])
}

func TestRetryRejectsNonTerminalJob(t *testing.T) {
	ledger := newFakeLedger()
	svc := newServiceUnderTest(ledger, newFakeFileStore(), &fakeEnqueuer{}, &fakeNotifier{})

	for _, status := range []model.JobStatus{model.StatusPending, model.StatusProcessing, model.StatusCompleted} {
		job := &model.ImportJob{ID: uuid.New(), Status: status, OwnerID: uuid.New()}
		require.NoError(t, ledger.CreateJob(context.Background(), job))

		_, err := svc.Retry(context.Background(), job.ID)
		assert.ErrorIs(t, err, model.ErrNotRetryable, "status %s", status)
	}
}

func TestListRecordsUnknownJob(t *testing.T) {
	svc := newServiceUnderTest(newFakeLedger(), newFakeFileStore(), &fakeEnqueuer{}, &fakeNotifier{})

	_, err := svc.ListRecords(context.Background(), uuid.New(), 50, 0)
	assert.ErrorIs(t, err, model.ErrJobNotFound)
}
