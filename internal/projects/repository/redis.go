package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/filmschedule/filmschedule-backend/internal/apperr"
	"github.com/filmschedule/filmschedule-backend/internal/projects/domain"
)

const (
	projectKeyPrefix = "project:doc:"  // project document: {prefix}project:doc:{id}
	nameKeyPrefix    = "project:name:" // name index: {prefix}project:name:{name} -> id
	projectIndexKey  = "projects"      // sorted set of ids scored by insertion sequence
	projectSeqKey    = "projects:seq"  // insertion counter
)

// maxTxAttempts bounds optimistic retries when a watched key changes
// between read and EXEC.
const maxTxAttempts = 16

// RedisStore keeps each project as a JSON string with a name index and an
// ordered id set next to it.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new RedisStore. prefix namespaces every key.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return wrap("ping", err)
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Project, error) {
	data, err := s.client.Get(ctx, s.projectKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, errProjectNotFound
	}
	if err != nil {
		return nil, wrap("get project", err)
	}
	return decode(data)
}

func (s *RedisStore) FindByName(ctx context.Context, name string) (*domain.Project, error) {
	id, err := s.client.Get(ctx, s.nameKey(name)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, errProjectNotFound
	}
	if err != nil {
		return nil, wrap("find project by name", err)
	}
	return s.Get(ctx, id)
}

func (s *RedisStore) List(ctx context.Context) ([]domain.Project, error) {
	ids, err := s.client.ZRange(ctx, s.key(projectIndexKey), 0, -1).Result()
	if err != nil {
		return nil, wrap("list projects", err)
	}
	if len(ids) == 0 {
		return []domain.Project{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.projectKey(id)
	}

	vals, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, wrap("list projects", err)
	}

	out := make([]domain.Project, 0, len(vals))
	for _, v := range vals {
		str, ok := v.(string)
		if !ok {
			// index entry whose document was removed concurrently
			continue
		}
		p, err := decode([]byte(str))
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, nil
}

// Insert writes the document before claiming its name, so a claimed name
// always resolves to a readable document.
func (s *RedisStore) Insert(ctx context.Context, p *domain.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project document: %w", err)
	}

	written, err := s.client.SetNX(ctx, s.projectKey(p.ID), data, 0).Result()
	if err != nil {
		return wrap("insert project", err)
	}
	if !written {
		return apperr.Conflict(fmt.Sprintf("project %q already exists", p.ID))
	}

	claimed, err := s.client.SetNX(ctx, s.nameKey(p.Name), p.ID, 0).Result()
	if err != nil || !claimed {
		s.client.Del(ctx, s.projectKey(p.ID))
		if err != nil {
			return wrap("claim project name", err)
		}
		return errNameTaken(p.Name)
	}

	seq, err := s.client.Incr(ctx, s.key(projectSeqKey)).Result()
	if err == nil {
		err = s.client.ZAdd(ctx, s.key(projectIndexKey), redis.Z{Score: float64(seq), Member: p.ID}).Err()
	}
	if err != nil {
		s.client.Del(ctx, s.nameKey(p.Name), s.projectKey(p.ID))
		return wrap("insert project", err)
	}
	return nil
}

// Replace rewrites the document and moves the name index on rename. The
// document and the new name key are watched so a concurrent write makes the
// transaction retry against fresh state.
func (s *RedisStore) Replace(ctx context.Context, p *domain.Project) error {
	data, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode project document: %w", err)
	}

	return s.watchProject(ctx, "replace project", p.ID, func(tx *redis.Tx, existing *domain.Project) error {
		renamed := existing.Name != p.Name
		if renamed {
			owner, err := tx.Get(ctx, s.nameKey(p.Name)).Result()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if err == nil && owner != p.ID {
				return errNameTaken(p.Name)
			}
		}

		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.projectKey(p.ID), data, 0)
			if renamed {
				pipe.Set(ctx, s.nameKey(p.Name), p.ID, 0)
				pipe.Del(ctx, s.nameKey(existing.Name))
			}
			return nil
		})
		return err
	}, s.nameKey(p.Name))
}

func (s *RedisStore) SetArchived(ctx context.Context, id string, archived bool) error {
	return s.watchProject(ctx, "set archived", id, func(tx *redis.Tx, p *domain.Project) error {
		p.Archived = archived
		data, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode project document: %w", err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, s.projectKey(id), data, 0)
			return nil
		})
		return err
	})
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.watchProject(ctx, "delete project", id, func(tx *redis.Tx, p *domain.Project) error {
		_, err := tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, s.projectKey(id))
			pipe.Del(ctx, s.nameKey(p.Name))
			pipe.ZRem(ctx, s.key(projectIndexKey), id)
			return nil
		})
		return err
	})
}

// watchProject loads the document under WATCH and runs fn, which must queue
// its writes with tx.TxPipelined. The whole read-modify-write is retried when
// the document or any of the extra keys changes before EXEC.
func (s *RedisStore) watchProject(ctx context.Context, op, id string, fn func(tx *redis.Tx, p *domain.Project) error, extra ...string) error {
	key := s.projectKey(id)
	txf := func(tx *redis.Tx) error {
		data, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return errProjectNotFound
		}
		if err != nil {
			return err
		}
		p, err := decode(data)
		if err != nil {
			return err
		}
		return fn(tx, p)
	}

	keys := append([]string{key}, extra...)
	for attempt := 0; attempt < maxTxAttempts; attempt++ {
		err := s.client.Watch(ctx, txf, keys...)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		var appErr *apperr.AppError
		if err != nil && !errors.As(err, &appErr) {
			return wrap(op, err)
		}
		return err
	}
	return apperr.Conflict(fmt.Sprintf("project %q is being modified concurrently", id))
}

func (s *RedisStore) key(suffix string) string {
	return s.prefix + suffix
}

func (s *RedisStore) projectKey(id string) string {
	return s.prefix + projectKeyPrefix + id
}

func (s *RedisStore) nameKey(name string) string {
	return s.prefix + nameKeyPrefix + name
}

func decode(data []byte) (*domain.Project, error) {
	var p domain.Project
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("decode project document: %w", err)
	}
	return &p, nil
}
