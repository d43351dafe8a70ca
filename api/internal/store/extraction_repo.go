package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"hotel-bot/api/internal/extract"
)

var ErrNotFound = sql.ErrNoRows

// ExtractionRepo — кэш результатов извлечения по (image_hash, engine, model).
// Реализует extract.Cache.
type ExtractionRepo struct {
	DB     *sql.DB
	Engine string
	Model  string
	// MaxAge > 0 — более старые записи считаются отсутствующими.
	MaxAge time.Duration
}

func NewExtractionRepo(db *sql.DB, engine, model string, maxAge time.Duration) *ExtractionRepo {
	return &ExtractionRepo{DB: db, Engine: engine, Model: model, MaxAge: maxAge}
}

const schema = `
create table if not exists extractions (
  id          bigserial primary key,
  created_at  timestamptz not null default now(),
  image_hash  text not null,
  engine      text not null,
  model       text not null,
  source      text not null,
  fields      int not null,
  result_json jsonb not null,
  unique (image_hash, engine, model)
);
create index if not exists extractions_created_at_idx on extractions (created_at)`

func (r *ExtractionRepo) EnsureSchema(ctx context.Context) error {
	_, err := r.DB.ExecContext(ctx, schema)
	return err
}

func (r *ExtractionRepo) Find(ctx context.Context, imageHash string) (*extract.Result, error) {
	const q = `
select created_at, result_json
from extractions
where image_hash = $1 and engine = $2 and model = $3`
	var (
		ts time.Time
		js []byte
	)
	if err := r.DB.QueryRowContext(ctx, q, imageHash, r.Engine, r.Model).Scan(&ts, &js); err != nil {
		return nil, err
	}
	if r.MaxAge > 0 && time.Since(ts) > r.MaxAge {
		return nil, ErrNotFound
	}
	var res extract.Result
	if err := json.Unmarshal(js, &res); err != nil {
		// битый JSON — как будто записи нет
		return nil, ErrNotFound
	}
	return &res, nil
}

// Save перезаписывает результат для того же фото, движка и модели.
func (r *ExtractionRepo) Save(ctx context.Context, imageHash string, res extract.Result) error {
	js, err := json.Marshal(res)
	if err != nil {
		return err
	}
	const q = `
insert into extractions (image_hash, engine, model, source, fields, result_json)
values ($1,$2,$3,$4,$5,$6)
on conflict (image_hash, engine, model) do update
set created_at = now(),
    source = excluded.source,
    fields = excluded.fields,
    result_json = excluded.result_json`
	_, err = r.DB.ExecContext(ctx, q,
		imageHash, r.Engine, r.Model, string(res.Source), res.Fields.Count(), js,
	)
	return err
}

// PurgeOlderThan удаляет старые записи кэша, чтобы не раздувать БД.
func (r *ExtractionRepo) PurgeOlderThan(ctx context.Context, olderThan time.Duration) (int64, error) {
	if olderThan <= 0 {
		return 0, errors.New("olderThan must be > 0")
	}
	cutoff := time.Now().Add(-olderThan)
	const q = `delete from extractions where created_at < $1`
	res, err := r.DB.ExecContext(ctx, q, cutoff)
	if err != nil {
		return 0, err
	}
	aff, _ := res.RowsAffected()
	return aff, nil
}
