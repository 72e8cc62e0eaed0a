package repository

import (
	"context"
	"database/sql/driver"
	"errors"
	"fmt"
	"net"

	"github.com/filmschedule/filmschedule-backend/internal/apperr"
	"github.com/filmschedule/filmschedule-backend/internal/projects/domain"
)

// Store persists whole project documents keyed by id. Names are unique
// across the collection.
type Store interface {
	Ping(ctx context.Context) error
	Get(ctx context.Context, id string) (*domain.Project, error)
	FindByName(ctx context.Context, name string) (*domain.Project, error)
	// List returns every project in creation order.
	List(ctx context.Context) ([]domain.Project, error)
	// Insert stores a new document; the caller assigns the id.
	Insert(ctx context.Context, p *domain.Project) error
	Replace(ctx context.Context, p *domain.Project) error
	SetArchived(ctx context.Context, id string, archived bool) error
	Delete(ctx context.Context, id string) error
}

var errProjectNotFound = apperr.NotFound("project not found")

func errNameTaken(name string) error {
	return apperr.Conflict(fmt.Sprintf("a project named %q already exists", name))
}

// wrap annotates a driver error with the operation and classifies
// connectivity failures as store-unavailable.
func wrap(op string, err error) error {
	if isConnErr(err) {
		return fmt.Errorf("%s: %w", op, apperr.StoreUnavailable(err))
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isConnErr(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr)
}
