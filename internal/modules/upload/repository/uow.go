package repository

import (
	"context"

	violationRepo "anoa.com/droneanalytics/internal/modules/violation/repository"
	"gorm.io/gorm"
)

// Tx is one open transaction together with the repositories bound to it.
// After Commit, Rollback is a no-op.
type Tx interface {
	Uploads() UploadRepository
	Violations() violationRepo.ViolationRepository
	Commit() error
	Rollback() error
}

type UnitOfWork interface {
	Begin(ctx context.Context) (Tx, error)
}

type gormUnitOfWork struct {
	db *gorm.DB
}

func NewUnitOfWork(db *gorm.DB) UnitOfWork {
	return &gormUnitOfWork{db: db}
}

func (u *gormUnitOfWork) Begin(ctx context.Context) (Tx, error) {
	tx := u.db.WithContext(ctx).Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}

	return &gormTx{
		db:         tx,
		uploads:    NewUploadRepository(tx),
		violations: violationRepo.NewViolationRepository(tx),
	}, nil
}

type gormTx struct {
	db         *gorm.DB
	uploads    UploadRepository
	violations violationRepo.ViolationRepository
	done       bool
}

func (t *gormTx) Uploads() UploadRepository {
	return t.uploads
}

func (t *gormTx) Violations() violationRepo.ViolationRepository {
	return t.violations
}

func (t *gormTx) Commit() error {
	if t.done {
		return gorm.ErrInvalidTransaction
	}
	t.done = true
	return t.db.Commit().Error
}

func (t *gormTx) Rollback() error {
	if t.done {
		return nil
	}
	t.done = true
	return t.db.Rollback().Error
}
