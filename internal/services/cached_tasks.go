package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/gofrs/uuid"
	"github.com/sirupsen/logrus"

	"todo-tracker/backend/internal/cache"
	"todo-tracker/backend/internal/models"
)

type ListCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// CachedTaskService serves owner lists from cache and drops the owner's
// entry on every write. Cache errors are logged, never returned.
//
// An owner whose entry could not be dropped is served from the store until
// a later delete succeeds. A list read from the store is only cached when
// no write for that owner happened while it was being read.
type CachedTaskService struct {
	taskService TaskService
	cache       ListCache
	ttl         time.Duration
	log         logrus.FieldLogger

	mu     sync.Mutex
	owners map[uuid.UUID]*ownerState
}

// ownerState exists while reads or writes for the owner are in flight, or
// while a failed delete is still owed. gen advances on every write.
type ownerState struct {
	gen   uint64
	refs  int
	dirty bool
}

func NewCachedTaskService(taskService TaskService, listCache ListCache, ttl time.Duration, log logrus.FieldLogger) *CachedTaskService {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	return &CachedTaskService{
		taskService: taskService,
		cache:       listCache,
		ttl:         ttl,
		log:         log.WithField("service", "cached_tasks"),
		owners:      make(map[uuid.UUID]*ownerState),
	}
}

func ownerKey(owner uuid.UUID) string {
	return fmt.Sprintf("user_tasks:%s", owner.String())
}

func (s *CachedTaskService) CreateToDo(ctx context.Context, userID, title, description string) (*models.Task, error) {
	task, err := s.taskService.CreateToDo(ctx, userID, title, description)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, task.UserID)
	return task, nil
}

func (s *CachedTaskService) GetUserToDoList(ctx context.Context, userID string) ([]models.Task, error) {
	owner, err := uuid.FromString(userID)
	if err != nil {
		return s.taskService.GetUserToDoList(ctx, userID)
	}
	key := ownerKey(owner)

	gen, usable := s.beginRead(ctx, owner)
	defer s.release(owner)
	if !usable {
		return s.taskService.GetUserToDoList(ctx, userID)
	}

	var cached []models.Task
	if err := s.cache.Get(ctx, key, &cached); err == nil {
		if cached == nil {
			cached = []models.Task{}
		}
		return cached, nil
	} else if !errors.Is(err, cache.ErrCacheMiss) {
		s.log.WithError(err).WithField("key", key).Warn("task list cache read failed")
	}

	tasks, err := s.taskService.GetUserToDoList(ctx, userID)
	if err != nil {
		return nil, err
	}
	s.fill(ctx, owner, gen, tasks)
	return tasks, nil
}

func (s *CachedTaskService) DeleteToDo(ctx context.Context, id string) (*models.Task, error) {
	task, err := s.taskService.DeleteToDo(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, task.UserID)
	return task, nil
}

func (s *CachedTaskService) UpdateToDo(ctx context.Context, in UpdateToDoInput) (*models.Task, error) {
	task, err := s.taskService.UpdateToDo(ctx, in)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, task.UserID)
	return task, nil
}

func (s *CachedTaskService) invalidate(ctx context.Context, owner uuid.UUID) {
	s.mu.Lock()
	st := s.acquire(owner)
	st.gen++
	gen := st.gen
	s.mu.Unlock()
	defer s.release(owner)

	s.drop(ctx, owner, gen)
}

// beginRead registers a reader for owner. It reports false while a failed
// delete is still owed and one more attempt did not clear it.
func (s *CachedTaskService) beginRead(ctx context.Context, owner uuid.UUID) (uint64, bool) {
	s.mu.Lock()
	st := s.acquire(owner)
	gen, dirty := st.gen, st.dirty
	s.mu.Unlock()

	if !dirty {
		return gen, true
	}
	return gen, s.drop(ctx, owner, gen)
}

// fill stores tasks unless a write for owner has happened since gen was
// taken. A write that lands during the store gets its delete repeated.
func (s *CachedTaskService) fill(ctx context.Context, owner uuid.UUID, gen uint64, tasks []models.Task) {
	if _, stale := s.current(owner, gen); stale {
		return
	}

	key := ownerKey(owner)
	if err := s.cache.Set(ctx, key, tasks, s.ttl); err != nil {
		s.log.WithError(err).WithField("key", key).Warn("task list cache write failed")
		return
	}

	if latest, stale := s.current(owner, gen); stale {
		s.drop(ctx, owner, latest)
	}
}

// drop deletes the owner's entry. The owner stays dirty unless the delete
// succeeded and no newer write happened meanwhile.
func (s *CachedTaskService) drop(ctx context.Context, owner uuid.UUID, gen uint64) bool {
	err := s.cache.Delete(ctx, ownerKey(owner))

	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.owners[owner]
	if err != nil {
		st.dirty = true
		s.log.WithError(err).WithField("owner", owner.String()).Warn("task list cache invalidation failed")
		return false
	}
	if st.gen != gen {
		return false
	}
	st.dirty = false
	return true
}

func (s *CachedTaskService) current(owner uuid.UUID, gen uint64) (uint64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.owners[owner]
	return st.gen, st.gen != gen || st.dirty
}

// acquire must be called with s.mu held.
func (s *CachedTaskService) acquire(owner uuid.UUID) *ownerState {
	st, ok := s.owners[owner]
	if !ok {
		st = &ownerState{}
		s.owners[owner] = st
	}
	st.refs++
	return st
}

func (s *CachedTaskService) release(owner uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.owners[owner]
	st.refs--
	if st.refs == 0 && !st.dirty {
		delete(s.owners, owner)
	}
}
