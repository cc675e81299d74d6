package application

import (
	"context"
	"errors"
	"slices"
	"sync"
	"time"

	"github.com/gatlingbook/gatlingbook/pkg/db"
)

// PostgresRepository stores applications in the "applications" table.
type PostgresRepository struct {
	db db.DBTX
}

// NewPostgresRepository creates a repository over any database/sql handle.
func NewPostgresRepository(conn db.DBTX) *PostgresRepository {
	return &PostgresRepository{db: conn}
}

func (r *PostgresRepository) Create(ctx context.Context, a *Application) error {
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO applications (job_id, applicant_id, cover_letter, resume_key) VALUES ($1, $2, $3, $4) RETURNING application_id, created_at`,
		a.JobID, a.ApplicantID, a.CoverLetter, a.ResumeKey,
	).Scan(&a.ID, &a.CreatedAt)
	if err != nil {
		return errors.Join(ErrPersistence, err)
	}
	return nil
}

func (r *PostgresRepository) ByJob(ctx context.Context, jobID int64) ([]Application, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT application_id, job_id, applicant_id, cover_letter, resume_key, created_at
FROM applications WHERE job_id = $1 ORDER BY created_at DESC`, jobID)
	if err != nil {
		return nil, errors.Join(ErrPersistence, err)
	}
	defer rows.Close()

	var out []Application
	for rows.Next() {
		var a Application
		if err := rows.Scan(&a.ID, &a.JobID, &a.ApplicantID, &a.CoverLetter, &a.ResumeKey, &a.CreatedAt); err != nil {
			return nil, errors.Join(ErrPersistence, err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Join(ErrPersistence, err)
	}
	return out, nil
}

// MemoryRepository keeps applications in process memory.
type MemoryRepository struct {
	items  []Application
	nextID int64
	mu     sync.Mutex
}

// NewMemoryRepository returns an empty repository.
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{}
}

func (m *MemoryRepository) Create(_ context.Context, a *Application) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	a.ID = m.nextID
	a.CreatedAt = time.Now()
	m.items = append(m.items, *a)
	return nil
}

func (m *MemoryRepository) ByJob(_ context.Context, jobID int64) ([]Application, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Application
	for _, a := range slices.Backward(m.items) {
		if a.JobID == jobID {
			out = append(out, a)
		}
	}
	return out, nil
}
