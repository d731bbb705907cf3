package repository

import (
	"time"

	"gorm.io/datatypes"
)

// Document: 모든 컬렉션 문서를 담는 단일 테이블 행
// 복합 기본키: (collection, id), 복합 인덱스: idx_documents_collection_created (collection, created_at)
type Document struct {
	Collection string         `gorm:"column:collection;primaryKey;size:64;index:idx_documents_collection_created,priority:1"`
	ID         string         `gorm:"column:id;primaryKey;size:191"`
	Data       datatypes.JSON `gorm:"column:data;type:jsonb;not null"`
	CreatedAt  time.Time      `gorm:"column:created_at;not null;index:idx_documents_collection_created,priority:2"`
	UpdatedAt  time.Time      `gorm:"column:updated_at;not null"`
}

func (Document) TableName() string { return "documents" }
