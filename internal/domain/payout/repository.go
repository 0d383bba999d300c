package payout

import "context"

type Repository interface {
	Create(ctx context.Context, p *Payout) error
	GetByID(ctx context.Context, id string) (*Payout, error)
	GetByIDForUpdate(ctx context.Context, id string) (*Payout, error)
	ExistsForPeriod(ctx context.Context, cycleID string, period int) (bool, error)
	ListByCycle(ctx context.Context, cycleID string) ([]Payout, error)
	SaveStatus(ctx context.Context, p *Payout) error
}
