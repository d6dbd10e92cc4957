package storage

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// DeploymentStore persists deployment records, one per network and contract name.
type DeploymentStore interface {
	SaveDeployment(ctx context.Context, d *Deployment) error
	GetDeployment(ctx context.Context, network, name string) (*Deployment, error)
	ListDeployments(ctx context.Context, network string) ([]Deployment, error)
	DeleteDeployments(ctx context.Context, network string) error
	MarkVerified(ctx context.Context, network, name string) error
}

// RunStore persists harness runs.
type RunStore interface {
	CreateRun(ctx context.Context, run *Run) error
	CompleteRun(ctx context.Context, run *Run) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit, offset int) (*PaginatedRuns, error)
}

// GasStore persists gas samples collected during a run.
type GasStore interface {
	BulkInsertGasSamples(ctx context.Context, runID string, samples []GasSample) error
	GetGasSamples(ctx context.Context, runID string) ([]GasSample, error)
}

// Storage is the full persistence interface.
type Storage interface {
	DeploymentStore
	RunStore
	GasStore

	Close() error
}
