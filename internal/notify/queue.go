package notify

import (
	"context"
	"sync"
	"time"

	"github.com/anonto42/newsflash/backend/internal/ids"
	"github.com/anonto42/newsflash/backend/internal/models"
	"github.com/anonto42/newsflash/backend/internal/repositories"
	"github.com/anonto42/newsflash/backend/pkg/logger"
	"github.com/samber/lo"
	"gorm.io/datatypes"
)

// Recipient is one addressee of a task. PushToken may be empty, in which
// case only the in-app notification is stored.
type Recipient struct {
	UserID    string
	PushToken string
}

// RecipientsOf converts users into recipients.
func RecipientsOf(users ...models.User) []Recipient {
	return lo.Map(users, func(u models.User, _ int) Recipient {
		return Recipient{UserID: u.ID, PushToken: u.PushToken}
	})
}

// Task is an outbound notification emitted by a committed mutation.
type Task struct {
	Type       string
	ActorID    string
	Title      string
	Body       string
	Data       map[string]string
	Recipients []Recipient
	Options    Options
}

// Enqueuer accepts tasks without blocking the caller.
type Enqueuer interface {
	Enqueue(task Task)
}

type QueueConfig struct {
	Workers int
	Size    int
	Timeout time.Duration
}

// Queue is a bounded task buffer drained by a fixed pool of workers.
type Queue struct {
	store      repositories.NotificationRepository
	dispatcher *Dispatcher
	cfg        QueueConfig

	tasks  chan Task
	wg     sync.WaitGroup
	mu     sync.RWMutex
	closed bool
}

func NewQueue(store repositories.NotificationRepository, dispatcher *Dispatcher, cfg QueueConfig) *Queue {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.Size < 1 {
		cfg.Size = 1
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	return &Queue{
		store:      store,
		dispatcher: dispatcher,
		cfg:        cfg,
		tasks:      make(chan Task, cfg.Size),
	}
}

// Start launches the workers.
func (q *Queue) Start() {
	for i := 0; i < q.cfg.Workers; i++ {
		q.wg.Add(1)
		go func() {
			defer q.wg.Done()
			for task := range q.tasks {
				q.process(task)
			}
		}()
	}
	logger.L().Info().Int("workers", q.cfg.Workers).Int("size", q.cfg.Size).Msg("notification queue started")
}

// Enqueue hands the task to the workers. A full or closed queue drops it.
func (q *Queue) Enqueue(task Task) {
	if len(task.Recipients) == 0 {
		return
	}

	q.mu.RLock()
	defer q.mu.RUnlock()

	if q.closed {
		tasksDropped.WithLabelValues(task.Type, "closed").Inc()
		logger.L().Warn().Str("type", task.Type).Msg("notification queue closed, dropping task")
		return
	}
	select {
	case q.tasks <- task:
		tasksEnqueued.WithLabelValues(task.Type).Inc()
	default:
		tasksDropped.WithLabelValues(task.Type, "full").Inc()
		logger.L().Warn().
			Str("type", task.Type).
			Int("recipients", len(task.Recipients)).
			Msg("notification queue full, dropping task")
	}
}

// Close stops accepting tasks and waits for the buffered ones to drain.
func (q *Queue) Close() {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.tasks)
	q.mu.Unlock()

	q.wg.Wait()
	logger.L().Info().Msg("notification queue drained")
}

func (q *Queue) process(task Task) {
	ctx, cancel := context.WithTimeout(context.Background(), q.cfg.Timeout)
	defer cancel()
	Deliver(ctx, q.store, q.dispatcher, task)
}

// Deliver stores one in-app notification per recipient and pushes to the
// recipients' devices. Both steps are best effort.
func Deliver(ctx context.Context, store repositories.NotificationRepository, dispatcher *Dispatcher, task Task) Result {
	l := logger.Ctx(ctx).With().Str("type", task.Type).Str("actor_id", task.ActorID).Logger()

	data := datatypes.JSONMap{}
	for k, v := range task.Data {
		data[k] = v
	}
	now := time.Now()
	rows := lo.Map(task.Recipients, func(r Recipient, _ int) models.Notification {
		return models.Notification{
			ID:        ids.Notification(),
			UserID:    r.UserID,
			ActorID:   task.ActorID,
			Type:      task.Type,
			Title:     task.Title,
			Message:   task.Body,
			Data:      data,
			CreatedAt: now,
		}
	})
	if err := store.CreateNotifications(ctx, rows); err != nil {
		l.Error().Err(err).Int("recipients", len(rows)).Msg("failed to store notifications")
	}

	tokens := lo.Map(task.Recipients, func(r Recipient, _ int) string { return r.PushToken })
	res := dispatcher.Dispatch(logger.WithLogger(ctx, l), tokens, task.Title, task.Body, task.Data, task.Options)
	observeDelivery(task.Type, res)
	l.Debug().Int("sent", res.Sent).Int("failed", res.Failed).Int("skipped", res.Skipped).Msg("notification delivered")
	return res
}
