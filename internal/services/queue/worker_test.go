package queue

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"sync"
	"testing"

	"github.com/phambaophuc/image-watermark/internal/models"
	"github.com/phambaophuc/image-watermark/internal/services/processor"
	"github.com/streadway/amqp"
	"go.uber.org/zap"
)

type fakeStore struct {
	mu       sync.Mutex
	cache    map[string][]byte
	files    map[string][]byte
	uploads  []models.UploadFile
	statuses []string
	last     *models.ProcessingJob
}

func newFakeStore() *fakeStore {
	return &fakeStore{cache: map[string][]byte{}, files: map[string][]byte{}}
}

func (f *fakeStore) GetFromCache(ctx context.Context, key string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cache[key], nil
}

func (f *fakeStore) SetCache(ctx context.Context, key string, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cache[key] = data
	return nil
}

func (f *fakeStore) Upload(ctx context.Context, data []byte, filename, contentType string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads = append(f.uploads, models.UploadFile{Data: data, Filename: filename, ContentType: contentType})
	return "https://cdn.test/" + filename, nil
}

func (f *fakeStore) Download(ctx context.Context, path string) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("object not found")
	}
	return data, nil
}

func (f *fakeStore) SaveJob(ctx context.Context, job *models.ProcessingJob) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *job
	f.last = &copied
	f.statuses = append(f.statuses, job.Status)
	return nil
}

type fakeAcknowledger struct {
	acked    int
	nacked   int
	requeued bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple bool, requeue bool) error {
	a.nacked++
	a.requeued = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func newTestQueue(store JobStore) *QueueService {
	return &QueueService{
		logger:    zap.NewNop(),
		queueName: "test",
		processor: processor.NewImageProcessor(zap.NewNop()),
		store:     store,
	}
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.Black}, image.Point{}, draw.Src)
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func delivery(t *testing.T, ack amqp.Acknowledger, job *models.ProcessingJob) amqp.Delivery {
	t.Helper()
	body, err := json.Marshal(job)
	if err != nil {
		t.Fatalf("marshal job: %v", err)
	}
	return amqp.Delivery{Acknowledger: ack, Body: body}
}

func TestProcessMessageCompletesJob(t *testing.T) {
	store := newFakeStore()
	store.files["uploads/cat.png"] = testPNG(t, 200, 150)
	q := newTestQueue(store)
	ack := &fakeAcknowledger{}

	job := &models.ProcessingJob{ID: "job-1", StoragePath: "uploads/cat.png", Options: processor.DefaultOptions(), PlanID: "free"}
	q.processMessage(context.Background(), delivery(t, ack, job), 1)

	if ack.acked != 1 {
		t.Fatalf("expected message to be acked once, got %d", ack.acked)
	}
	if len(store.statuses) != 2 || store.statuses[0] != models.StatusProcessing || store.statuses[1] != models.StatusCompleted {
		t.Fatalf("unexpected status history %v", store.statuses)
	}

	result := store.last.Result
	if result == nil || !result.Watermarked || result.Width != 200 || result.Height != 150 || result.Format != "png" {
		t.Fatalf("unexpected result %+v", result)
	}
	if len(store.uploads) != 1 || store.uploads[0].ContentType != "image/png" {
		t.Fatalf("expected one png upload, got %+v", store.uploads)
	}
}

func TestProcessMessageRejectsMalformedBody(t *testing.T) {
	store := newFakeStore()
	ack := &fakeAcknowledger{}

	newTestQueue(store).processMessage(context.Background(), amqp.Delivery{Acknowledger: ack, Body: []byte("{")}, 1)

	if ack.nacked != 1 || ack.requeued {
		t.Fatalf("expected a single nack without requeue, got %+v", ack)
	}
	if len(store.statuses) != 0 {
		t.Fatalf("no job state should be stored, got %v", store.statuses)
	}
}

func TestProcessMessageRecordsFailure(t *testing.T) {
	store := newFakeStore()
	ack := &fakeAcknowledger{}

	job := &models.ProcessingJob{ID: "job-2", StoragePath: "uploads/missing.png", Options: processor.DefaultOptions()}
	newTestQueue(store).processMessage(context.Background(), delivery(t, ack, job), 1)

	if ack.acked != 1 {
		t.Fatalf("failed jobs are still acked, got %d", ack.acked)
	}
	if store.last.Status != models.StatusFailed || store.last.Error == "" {
		t.Fatalf("expected failed job with an error, got %+v", store.last)
	}
}

func TestProcessJobSkipsWatermarkForPaidPlan(t *testing.T) {
	store := newFakeStore()
	source := testPNG(t, 50, 50)
	store.files["uploads/dog.png"] = source

	job := &models.ProcessingJob{ID: "job-3", StoragePath: "uploads/dog.png", Options: processor.DefaultOptions(), PlanID: "pro"}
	result, err := newTestQueue(store).processJob(context.Background(), job)
	if err != nil {
		t.Fatalf("processJob error: %v", err)
	}
	if result.Watermarked {
		t.Fatalf("expected no watermark for a paid plan")
	}
	if !bytes.Equal(store.uploads[0].Data, source) {
		t.Fatalf("expected the source to be uploaded unchanged")
	}
	if store.uploads[0].ContentType != "image/png" {
		t.Fatalf("expected sniffed image/png, got %q", store.uploads[0].ContentType)
	}
}

func TestProcessJobUsesCache(t *testing.T) {
	store := newFakeStore()
	store.files["uploads/bird.png"] = testPNG(t, 30, 30)
	q := newTestQueue(store)

	first := &models.ProcessingJob{ID: "job-a", StoragePath: "uploads/bird.png", Options: processor.DefaultOptions()}
	if _, err := q.processJob(context.Background(), first); err != nil {
		t.Fatalf("processJob error: %v", err)
	}

	second := &models.ProcessingJob{ID: "job-b", StoragePath: "uploads/bird.png", Options: processor.DefaultOptions()}
	result, err := q.processJob(context.Background(), second)
	if err != nil {
		t.Fatalf("processJob error: %v", err)
	}
	if result.ID != "job-b" {
		t.Fatalf("cached result should carry the new job id, got %q", result.ID)
	}
	if len(store.uploads) != 1 {
		t.Fatalf("expected the cached result to skip upload, got %d uploads", len(store.uploads))
	}
}

func TestProcessJobSkipsCacheWhenEncodingFails(t *testing.T) {
	encodeResult = func(v interface{}) ([]byte, error) {
		return nil, errors.New("unsupported value")
	}
	defer func() { encodeResult = json.Marshal }()

	store := newFakeStore()
	store.files["uploads/fish.png"] = testPNG(t, 20, 20)

	job := &models.ProcessingJob{ID: "job-c", StoragePath: "uploads/fish.png", Options: processor.DefaultOptions()}
	result, err := newTestQueue(store).processJob(context.Background(), job)
	if err != nil {
		t.Fatalf("processJob error: %v", err)
	}
	if result == nil || !result.Watermarked {
		t.Fatalf("expected a watermarked result, got %+v", result)
	}
	if len(store.cache) != 0 {
		t.Fatalf("expected nothing to be cached, got %d entries", len(store.cache))
	}
}
