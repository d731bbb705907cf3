// Package repository 는 GORM 기반 문서 저장소 구현이다.
// PostgreSQL(jsonb) 과 SQLite 를 지원한다.
package repository

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	cerrors "github.com/park285/llm-kakao-bots/scoreboard-go/internal/common/errors"
	"github.com/park285/llm-kakao-bots/scoreboard-go/internal/scoreboard/docstore"
)

var fieldNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Repository: documents 테이블 위의 docstore.Store
type Repository struct {
	db  *gorm.DB
	now func() time.Time
}

var _ docstore.Store = (*Repository)(nil)

// New: 새로운 Repository 인스턴스를 생성한다.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

// AutoMigrate: documents 테이블 스키마를 맞춘다.
func (r *Repository) AutoMigrate(ctx context.Context) error {
	if r == nil || r.db == nil {
		return fmt.Errorf("db is nil")
	}
	if err := r.db.WithContext(ctx).AutoMigrate(&Document{}); err != nil {
		return fmt.Errorf("auto migrate failed: %w", err)
	}
	return nil
}

// Ping: DB 연결 상태를 확인한다.
func (r *Repository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return wrapDB("ping", err)
	}
	return wrapDB("ping", sqlDB.PingContext(ctx))
}

func (r *Repository) Get(ctx context.Context, collection, id string) (docstore.Snapshot, error) {
	var row Document
	err := r.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return docstore.Snapshot{}, fmt.Errorf("get %s/%s: %w", collection, id, docstore.ErrNotFound)
	}
	if err != nil {
		return docstore.Snapshot{}, wrapDB("get "+collection, err)
	}
	return toSnapshot(row)
}

// Set: 트랜잭션 안에서 기존 문서를 읽어 병합한 뒤 ON CONFLICT 로 upsert 한다.
func (r *Repository) Set(ctx context.Context, collection, id string, data docstore.Data, opts docstore.SetOptions) error {
	now := r.now().UTC()
	prepared, err := docstore.Prepare(data, now)
	if err != nil {
		return fmt.Errorf("prepare %s/%s: %w", collection, id, err)
	}

	tx := r.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return wrapDB("begin", tx.Error)
	}
	defer tx.Rollback()

	if opts.Merge {
		var existing Document
		read := tx
		if r.db.Dialector.Name() == DriverPostgres {
			read = tx.Clauses(clause.Locking{Strength: "UPDATE"})
		}
		err := read.Where("collection = ? AND id = ?", collection, id).Take(&existing).Error
		switch {
		case err == nil:
			current, decodeErr := decodeData(existing.Data)
			if decodeErr != nil {
				return fmt.Errorf("decode %s/%s: %w", collection, id, decodeErr)
			}
			prepared = docstore.MergeData(current, prepared)
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return wrapDB("read for merge "+collection, err)
		}
	}

	raw, err := json.Marshal(prepared)
	if err != nil {
		return fmt.Errorf("encode %s/%s: %w", collection, id, err)
	}

	row := Document{Collection: collection, ID: id, Data: raw, CreatedAt: now, UpdatedAt: now}
	if err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "collection"}, {Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error; err != nil {
		return wrapDB("upsert "+collection, err)
	}

	if err := tx.Commit().Error; err != nil {
		return wrapDB("commit", err)
	}
	return nil
}

func (r *Repository) Add(ctx context.Context, collection string, data docstore.Data) (docstore.Ref, error) {
	now := r.now().UTC()
	prepared, err := docstore.Prepare(data, now)
	if err != nil {
		return docstore.Ref{}, fmt.Errorf("prepare %s: %w", collection, err)
	}
	raw, err := json.Marshal(prepared)
	if err != nil {
		return docstore.Ref{}, fmt.Errorf("encode %s: %w", collection, err)
	}

	row := Document{Collection: collection, ID: uuid.NewString(), Data: raw, CreatedAt: now, UpdatedAt: now}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return docstore.Ref{}, wrapDB("add "+collection, err)
	}
	return docstore.Ref{Collection: collection, ID: row.ID}, nil
}

func (r *Repository) List(ctx context.Context, collection string, q docstore.Query) ([]docstore.Snapshot, error) {
	query := r.db.WithContext(ctx).Where("collection = ?", collection)
	if !q.CreatedAfter.IsZero() {
		query = query.Where("created_at > ?", q.CreatedAfter.UTC())
	}
	if q.OrderByDesc != "" {
		order, err := r.numberOrder(q.OrderByDesc)
		if err != nil {
			return nil, err
		}
		query = query.Order(order)
	}
	query = query.Order("created_at ASC").Order("id ASC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}

	var rows []Document
	if err := query.Find(&rows).Error; err != nil {
		return nil, wrapDB("list "+collection, err)
	}

	out := make([]docstore.Snapshot, 0, len(rows))
	for _, row := range rows {
		snap, err := toSnapshot(row)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, nil
}

// Delete: 없는 문서를 지워도 에러가 아니다.
func (r *Repository) Delete(ctx context.Context, collection, id string) error {
	err := r.db.WithContext(ctx).
		Where("collection = ? AND id = ?", collection, id).
		Delete(&Document{}).Error
	return wrapDB("delete "+collection, err)
}

// 숫자가 아닌 값은 NULL 로 바꿔 맨 뒤로 보낸다.
func (r *Repository) numberOrder(field string) (string, error) {
	if !fieldNamePattern.MatchString(field) {
		return "", fmt.Errorf("invalid order field: %q", field)
	}
	if r.db.Dialector.Name() == DriverPostgres {
		return fmt.Sprintf("CASE WHEN jsonb_typeof(data->'%[1]s') = 'number' THEN (data->>'%[1]s')::double precision END DESC NULLS LAST", field), nil
	}
	return fmt.Sprintf("CASE WHEN json_type(data, '$.%[1]s') IN ('integer', 'real') THEN json_extract(data, '$.%[1]s') END DESC", field), nil
}

func toSnapshot(row Document) (docstore.Snapshot, error) {
	data, err := decodeData(row.Data)
	if err != nil {
		return docstore.Snapshot{}, fmt.Errorf("decode %s/%s: %w", row.Collection, row.ID, err)
	}
	return docstore.Snapshot{ID: row.ID, Data: data, CreatedAt: row.CreatedAt, UpdatedAt: row.UpdatedAt}, nil
}

func decodeData(raw []byte) (docstore.Data, error) {
	data := docstore.Data{}
	if len(raw) == 0 {
		return data, nil
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	return data, nil
}

func wrapDB(operation string, err error) error {
	if err == nil {
		return nil
	}
	return cerrors.DatabaseError{Operation: operation, Err: err}
}
