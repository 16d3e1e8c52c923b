package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	categorymodel "pos-backend/internal/domains/category/model"
	"pos-backend/internal/domains/importer/model"
	productmodel "pos-backend/internal/domains/product/model"
	usermodel "pos-backend/internal/domains/user/model"
)

// fakeLedger is an in-memory stand-in for the import job repository.
type fakeLedger struct {
	mu      sync.Mutex
	jobs    map[uuid.UUID]*model.ImportJob
	records []model.ImportRecord

	// cancelAfterFlushes flips the job to cancelled once this many
	// UpdateProgress calls have happened (0 = never).
	cancelAfterFlushes int
	flushes            int

	failUpdateProgress bool
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{jobs: make(map[uuid.UUID]*model.ImportJob)}
}

func (f *fakeLedger) CreateJob(ctx context.Context, job *model.ImportJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job.CreatedAt = time.Now()
	clone := *job
	f.jobs[job.ID] = &clone
	return nil
}

func (f *fakeLedger) GetJob(ctx context.Context, id uuid.UUID) (*model.ImportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return nil, model.ErrJobNotFound
	}
	clone := *job
	return &clone, nil
}

func (f *fakeLedger) ListJobsByOwner(ctx context.Context, ownerID uuid.UUID, limit, offset int) ([]*model.ImportJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var jobs []*model.ImportJob
	for _, job := range f.jobs {
		if job.OwnerID == ownerID {
			clone := *job
			jobs = append(jobs, &clone)
		}
	}
	return jobs, nil
}

func (f *fakeLedger) SetStatus(ctx context.Context, id uuid.UUID, status model.JobStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return model.ErrJobNotFound
	}
	job.Status = status
	if status.Terminal() {
		now := time.Now()
		job.CompletedAt = &now
	} else {
		job.CompletedAt = nil
	}
	return nil
}

func (f *fakeLedger) SetTotal(ctx context.Context, id uuid.UUID, total int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return model.ErrJobNotFound
	}
	job.TotalRecords = total
	return nil
}

func (f *fakeLedger) UpdateProgress(ctx context.Context, id uuid.UUID, processed, successful, failed int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpdateProgress {
		return errors.New("progress write refused")
	}
	job, ok := f.jobs[id]
	if !ok {
		return model.ErrJobNotFound
	}
	job.ProcessedRecords = processed
	job.SuccessfulRecords = successful
	job.FailedRecords = failed
	now := time.Now()
	job.HeartbeatAt = &now

	f.flushes++
	if f.cancelAfterFlushes > 0 && f.flushes >= f.cancelAfterFlushes {
		job.Status = model.StatusCancelled
	}
	return nil
}

func (f *fakeLedger) SetErrorSummary(ctx context.Context, id uuid.UUID, summary interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return model.ErrJobNotFound
	}
	data, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	job.ErrorSummary = data
	return nil
}

func (f *fakeLedger) ResetForRetry(ctx context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	job, ok := f.jobs[id]
	if !ok {
		return model.ErrJobNotFound
	}
	if !job.CanRetry() {
		return model.ErrNotRetryable
	}
	job.Status = model.StatusPending
	job.ProcessedRecords = 0
	job.SuccessfulRecords = 0
	job.FailedRecords = 0
	job.ErrorSummary = nil
	job.HeartbeatAt = nil
	job.CompletedAt = nil
	return nil
}

func (f *fakeLedger) AppendRecord(ctx context.Context, record *model.ImportRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record.CreatedAt = time.Now()
	f.records = append(f.records, *record)
	return nil
}

func (f *fakeLedger) ListRecords(ctx context.Context, jobID uuid.UUID, limit, offset int) ([]*model.ImportRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var records []*model.ImportRecord
	for i := range f.records {
		if f.records[i].ImportJobID == jobID {
			clone := f.records[i]
			records = append(records, &clone)
		}
	}
	if offset > len(records) {
		offset = len(records)
	}
	records = records[offset:]
	if limit > 0 && limit < len(records) {
		records = records[:limit]
	}
	return records, nil
}

func (f *fakeLedger) FailStuckJobs(ctx context.Context, olderThan time.Duration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var reaped int64
	cutoff := time.Now().Add(-olderThan)
	for _, job := range f.jobs {
		if job.Status == model.StatusProcessing && job.HeartbeatAt != nil && job.HeartbeatAt.Before(cutoff) {
			job.Status = model.StatusFailed
			reaped++
		}
	}
	return reaped, nil
}

// fakeFileStore keeps uploads in a map.
type fakeFileStore struct {
	mu           sync.Mutex
	files        map[string][]byte
	failUpload   bool
	failDownload bool
}

func newFakeFileStore() *fakeFileStore {
	return &fakeFileStore{files: make(map[string][]byte)}
}

func (f *fakeFileStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failUpload {
		return "", errors.New("upload refused")
	}
	f.files[key] = data
	return key, nil
}

func (f *fakeFileStore) Download(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failDownload {
		return nil, errors.New("download refused")
	}
	data, ok := f.files[key]
	if !ok {
		return nil, fmt.Errorf("no such file %q", key)
	}
	return data, nil
}

// fakeNotifier records published events.
type fakeNotifier struct {
	mu     sync.Mutex
	events []model.ProgressEvent
}

func (f *fakeNotifier) Publish(ctx context.Context, event model.ProgressEvent) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakeNotifier) Subscribe(ctx context.Context, jobID uuid.UUID) (<-chan model.ProgressEvent, func()) {
	ch := make(chan model.ProgressEvent)
	close(ch)
	return ch, func() {}
}

func (f *fakeNotifier) last() model.ProgressEvent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.events[len(f.events)-1]
}

// fakeEnqueuer records enqueued job ids.
type fakeEnqueuer struct {
	mu     sync.Mutex
	jobIDs []uuid.UUID
	fail   bool
}

func (f *fakeEnqueuer) EnqueueRunImport(ctx context.Context, jobID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail {
		return errors.New("enqueue refused")
	}
	f.jobIDs = append(f.jobIDs, jobID)
	return nil
}

// fakeProductRepo is an in-memory catalog keyed by SKU.
type fakeProductRepo struct {
	mu       sync.Mutex
	bySKU    map[string]*productmodel.Product
	failRepo bool
}

func newFakeProductRepo() *fakeProductRepo {
	return &fakeProductRepo{bySKU: make(map[string]*productmodel.Product)}
}

func (f *fakeProductRepo) Create(ctx context.Context, product *productmodel.Product) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRepo {
		return errors.New("insert refused")
	}
	clone := *product
	f.bySKU[product.SKU] = &clone
	return nil
}

func (f *fakeProductRepo) FindBySKU(ctx context.Context, sku string) (*productmodel.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRepo {
		return nil, errors.New("lookup refused")
	}
	product, ok := f.bySKU[sku]
	if !ok {
		return nil, nil
	}
	clone := *product
	return &clone, nil
}

func (f *fakeProductRepo) ExistsBySKU(ctx context.Context, sku string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failRepo {
		return false, errors.New("lookup refused")
	}
	_, ok := f.bySKU[sku]
	return ok, nil
}

func (f *fakeProductRepo) UpdateStock(ctx context.Context, id string, stock int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, product := range f.bySKU {
		if product.ID.String() == id {
			product.Stock = stock
			return nil
		}
	}
	return fmt.Errorf("no product with id %s", id)
}

// fakeCategoryRepo resolves categories by lowercased name.
type fakeCategoryRepo struct {
	byName map[string]*categorymodel.Category
}

func newFakeCategoryRepo(names ...string) *fakeCategoryRepo {
	f := &fakeCategoryRepo{byName: make(map[string]*categorymodel.Category)}
	for _, name := range names {
		f.byName[strings.ToLower(name)] = &categorymodel.Category{ID: uuid.New(), Name: name, IsActive: true}
	}
	return f
}

func (f *fakeCategoryRepo) FindByNameCaseInsensitive(ctx context.Context, name string) (*categorymodel.Category, error) {
	category, ok := f.byName[strings.ToLower(name)]
	if !ok {
		return nil, nil
	}
	return category, nil
}

// fakeUserLookup implements just enough of the user repository for the
// users processor.
type fakeUserLookup struct {
	byEmail map[string]*usermodel.User
}

func newFakeUserLookup(emails ...string) *fakeUserLookup {
	f := &fakeUserLookup{byEmail: make(map[string]*usermodel.User)}
	for _, email := range emails {
		f.byEmail[email] = &usermodel.User{ID: uuid.New(), Email: email}
	}
	return f
}

func (f *fakeUserLookup) Create(ctx context.Context, user *usermodel.User) error { return nil }
func (f *fakeUserLookup) CreateProfile(ctx context.Context, profile *usermodel.Profile) error {
	return nil
}
func (f *fakeUserLookup) AssignRole(ctx context.Context, userID uuid.UUID, role string) error {
	return nil
}
func (f *fakeUserLookup) Delete(ctx context.Context, id uuid.UUID) error { return nil }

func (f *fakeUserLookup) FindByEmail(ctx context.Context, email string) (*usermodel.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return nil, nil
	}
	return user, nil
}

// fakeUserService records provisioned accounts.
type fakeUserService struct {
	created []string
	fail    bool
}

func (f *fakeUserService) CreateImportedUser(ctx context.Context, email, fullName, role string) (uuid.UUID, error) {
	if f.fail {
		return uuid.Nil, errors.New("provisioning refused")
	}
	f.created = append(f.created, email)
	return uuid.New(), nil
}

// fakeProcessor returns canned results keyed by row "sku" (or "email") cell.
type fakeProcessor struct {
	kind    model.ImportKind
	failRow map[string]error
	calls   int
}

func (f *fakeProcessor) Kind() model.ImportKind { return f.kind }

func (f *fakeProcessor) Process(ctx context.Context, row map[string]string, rowNumber int) (string, error) {
	f.calls++
	key := row["sku"]
	if err, ok := f.failRow[key]; ok {
		return "", err
	}
	return uuid.NewString(), nil
}
