package repository

import (
	"context"

	"gorm.io/gorm"
)

// Store groups the repositories that take part in an admin action so the primary
// mutation and its audit record can share one transaction.
type Store interface {
	Users() UserRepository
	Roles() RoleRepository
	Audit() AuditRepository
	Messages() MessageRepository
	Courses() CourseRepository
	WithinTx(ctx context.Context, fn func(tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore constructs a GORM-backed store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository       { return NewUserRepository(s.db) }
func (s *gormStore) Roles() RoleRepository       { return NewRoleRepository(s.db) }
func (s *gormStore) Audit() AuditRepository      { return NewAuditRepository(s.db) }
func (s *gormStore) Messages() MessageRepository { return NewMessageRepository(s.db) }
func (s *gormStore) Courses() CourseRepository   { return NewCourseRepository(s.db) }

func (s *gormStore) WithinTx(ctx context.Context, fn func(tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormStore{db: tx})
	})
}
