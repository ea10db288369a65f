package tasks

import (
	"context"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"greendrake/commentguard/internal/config"
	"greendrake/commentguard/internal/services"
)

// TaskType defines the type of a background task.
const (
	TypeStashPurge = "comment:stash:purge"
)

const queueMaintenance = "maintenance"

// Enqueuer is the part of *asynq.Client used to schedule work.
type Enqueuer interface {
	Enqueue(task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

func redisOpt(rdb *redis.Client) asynq.RedisClientOpt {
	opts := rdb.Options()
	return asynq.RedisClientOpt{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	}
}

// --- Task Client (Enqueuing tasks) ---

func NewClient(rdb *redis.Client) *asynq.Client {
	return asynq.NewClient(redisOpt(rdb))
}

// NewStashPurgeTask returns a task that deletes expired held comments.
func NewStashPurgeTask() *asynq.Task {
	return asynq.NewTask(TypeStashPurge, nil, asynq.Queue(queueMaintenance), asynq.MaxRetry(3), asynq.Timeout(5*time.Minute))
}

// EnqueueStashPurge schedules an immediate stash purge. Duplicate requests within a
// minute collapse into one task.
func EnqueueStashPurge(client Enqueuer) (*asynq.TaskInfo, error) {
	info, err := client.Enqueue(NewStashPurgeTask(), asynq.Unique(time.Minute))
	if err != nil {
		return nil, fmt.Errorf("failed to enqueue stash purge: %w", err)
	}
	return info, nil
}

// --- Task Server (Processing tasks) ---

// TaskProcessor handles the processing of tasks.
// It holds dependencies needed by task handlers.
type TaskProcessor struct {
	cfg            *config.Config
	commentService services.ICommentService
	now            func() time.Time
}

func NewTaskProcessor(cfg *config.Config, commentService services.ICommentService) *TaskProcessor {
	return &TaskProcessor{
		cfg:            cfg,
		commentService: commentService,
		now:            time.Now,
	}
}

// SetupServer configures an Asynq server and the mux serving the processor's tasks.
// The caller runs and stops the server.
func SetupServer(rdb *redis.Client, processor *TaskProcessor) (*asynq.Server, *asynq.ServeMux) {
	srv := asynq.NewServer(
		redisOpt(rdb),
		asynq.Config{
			Concurrency: 2,
			Queues: map[string]int{
				queueMaintenance: 1,
			},
			ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
				log.Error().Err(err).Str("task_type", task.Type()).Msg("Asynq task failed")
			}),
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeStashPurge, processor.HandleStashPurgeTask)
	log.Info().Str("task_type", TypeStashPurge).Msg("Registered background task handlers.")

	return srv, mux
}

// SetupScheduler registers the periodic stash purge on cfg.StashPurgeCron.
func SetupScheduler(rdb *redis.Client, cfg *config.Config) (*asynq.Scheduler, error) {
	scheduler := asynq.NewScheduler(redisOpt(rdb), &asynq.SchedulerOpts{Location: time.UTC})
	entryID, err := scheduler.Register(cfg.StashPurgeCron, NewStashPurgeTask())
	if err != nil {
		return nil, fmt.Errorf("failed to register stash purge schedule %q: %w", cfg.StashPurgeCron, err)
	}
	log.Info().Str("entry_id", entryID).Str("cron", cfg.StashPurgeCron).Msg("Scheduled stash purge.")
	return scheduler, nil
}

// --- Task Handlers ---

// HandleStashPurgeTask deletes held comments that outlived the stash TTL. Their
// recovery links stop restoring anything once purged.
func (p *TaskProcessor) HandleStashPurgeTask(ctx context.Context, t *asynq.Task) error {
	cutoff := p.now().UTC().Add(-p.cfg.StashTTL)
	deleted, err := p.commentService.PurgeHeldBefore(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("stash purge: %w", err)
	}
	log.Info().Int64("deleted", deleted).Time("cutoff", cutoff).Msg("Stash purge finished.")
	return nil
}
