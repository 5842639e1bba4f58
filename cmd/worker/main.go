package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"campusattend/internal/config"
	"campusattend/internal/metrics"
	"campusattend/internal/permission"
	"campusattend/internal/queue"
	"campusattend/internal/storage"
	"campusattend/internal/store"
	"campusattend/internal/submission"
)

// Worker consumes queued jobs (photo cleanup, verification mirroring) and
// runs the scheduled sweeps.
func main() {
	cfg := config.Load()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		log.Println("shutdown signal received")
		cancel()
	}()

	db, err := store.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	defer db.Close()

	redisClient := store.NewRedis(cfg.RedisAddr)

	photos, err := storage.New(storage.Config{
		AccessKey: cfg.S3AccessKey,
		SecretKey: cfg.S3SecretKey,
		Bucket:    cfg.S3Bucket,
		Region:    cfg.S3Region,
		Endpoint:  cfg.S3Endpoint,
	})
	if err != nil {
		log.Fatalf("storage init failed: %v", err)
	}

	var jobs queue.Queue
	if cfg.QueueBackend == "memory" {
		jobs = queue.NewInMemory(64)
	} else {
		jobs = queue.NewRedisQueue(redisClient.Client, "")
	}

	permRepo := permission.NewRepository(db.Client)
	subRepo := submission.NewRepository(db.Client)

	w := &worker{
		redis:  redisClient,
		photos: photos,
		perms:  permRepo,
		subs:   subRepo,
	}

	c := cron.New()
	// Hourly: deactivate permission windows whose date has passed.
	if _, err := c.AddFunc("@hourly", func() { w.expirePermissions(ctx) }); err != nil {
		log.Fatalf("register cron: %v", err)
	}
	// Daily: delete attendance photos that no submission row references.
	if _, err := c.AddFunc("@daily", func() { w.sweepOrphanPhotos(ctx) }); err != nil {
		log.Fatalf("register cron: %v", err)
	}
	c.Start()
	defer func() { <-c.Stop().Done() }()

	messages, err := jobs.Consume(ctx)
	if err != nil {
		log.Fatalf("queue consume init failed: %v", err)
	}

	log.Println("worker started, waiting for messages...")
	for msg := range messages {
		switch msg.Type {
		case queue.TypePhotoCleanup:
			w.handlePhotoCleanup(ctx, msg.Body)
		case queue.TypeProfileSync:
			w.handleProfileSync(ctx, msg.Body)
		default:
			log.Printf("skipping unknown job type %q", msg.Type)
		}
	}

	log.Println("worker stopped")
}

type worker struct {
	redis  *store.Redis
	photos *storage.Client
	perms  *permission.Repository
	subs   *submission.Repository
}

func (w *worker) handlePhotoCleanup(ctx context.Context, body json.RawMessage) {
	var job queue.PhotoCleanup
	if err := json.Unmarshal(body, &job); err != nil || job.Key == "" {
		metrics.QueueJobsTotal.WithLabelValues(queue.TypePhotoCleanup, "bad_payload").Inc()
		return
	}
	if err := w.photos.Delete(ctx, job.Key); err != nil {
		log.Printf("photo cleanup %s failed: %v", job.Key, err)
		metrics.QueueJobsTotal.WithLabelValues(queue.TypePhotoCleanup, "error").Inc()
		return
	}
	log.Printf("cleaned up orphaned photo %s", job.Key)
	metrics.QueueJobsTotal.WithLabelValues(queue.TypePhotoCleanup, "ok").Inc()
}

func (w *worker) handleProfileSync(ctx context.Context, body json.RawMessage) {
	var job queue.ProfileSync
	if err := json.Unmarshal(body, &job); err != nil || job.UserID == "" {
		metrics.QueueJobsTotal.WithLabelValues(queue.TypeProfileSync, "bad_payload").Inc()
		return
	}
	// Best-effort mirror; the Postgres value stays authoritative.
	if err := w.redis.MirrorVerified(ctx, job.UserID, job.Status); err != nil {
		log.Printf("profile sync for %s failed: %v", job.UserID, err)
		metrics.QueueJobsTotal.WithLabelValues(queue.TypeProfileSync, "error").Inc()
		return
	}
	metrics.QueueJobsTotal.WithLabelValues(queue.TypeProfileSync, "ok").Inc()
}

func (w *worker) expirePermissions(ctx context.Context) {
	n, err := w.perms.DeactivateExpired(ctx, time.Now())
	if err != nil {
		log.Printf("expire permissions failed: %v", err)
		return
	}
	if n > 0 {
		log.Printf("deactivated %d expired permissions", n)
	}
}

// sweepOrphanPhotos removes attendance photos with no matching submission
// row. Objects dated today are skipped so an in-flight submission is never
// raced.
func (w *worker) sweepOrphanPhotos(ctx context.Context) {
	keys, err := w.photos.List(ctx, "attendance-photos/")
	if err != nil {
		log.Printf("orphan sweep list failed: %v", err)
		return
	}
	today := time.Now().Format("2006-01-02")
	removed := 0
	for _, key := range keys {
		if photoDate(key) >= today {
			continue
		}
		exists, err := w.subs.ExistsByPhotoPath(ctx, key)
		if err != nil {
			log.Printf("orphan sweep lookup %s failed: %v", key, err)
			continue
		}
		if exists {
			continue
		}
		if err := w.photos.Delete(ctx, key); err != nil {
			log.Printf("orphan sweep delete %s failed: %v", key, err)
			continue
		}
		removed++
	}
	if removed > 0 {
		log.Printf("orphan sweep removed %d photos", removed)
	}
}

// photoDate extracts the date segment from an attendance photo key:
// attendance-photos/<program>/<branch>/<year>/<sem>/<date>/<subject>/<file>
func photoDate(key string) string {
	parts := strings.Split(key, "/")
	if len(parts) < 6 {
		return ""
	}
	return parts[5]
}
