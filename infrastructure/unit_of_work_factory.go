package infrastructure

import (
	"betpool/application"
	"betpool/database"
	"betpool/domain/interfaces"
	"betpool/repository"
)

// UnitOfWorkFactory implements application.UnitOfWorkFactory. Every unit of
// work gets its own transactional publisher in front of the shared one.
type UnitOfWorkFactory struct {
	repoFactory interface {
		CreateWithPublisher(transactionalPublisher interfaces.TransactionalEventPublisher) application.UnitOfWork
	}
	eventPublisher interfaces.EventPublisher
}

// NewUnitOfWorkFactory creates a new UnitOfWorkFactory
func NewUnitOfWorkFactory(db *database.DB, eventPublisher interfaces.EventPublisher) *UnitOfWorkFactory {
	return &UnitOfWorkFactory{
		repoFactory:    repository.NewUnitOfWorkFactory(db),
		eventPublisher: eventPublisher,
	}
}

// Create returns a fresh, not yet begun unit of work
func (f *UnitOfWorkFactory) Create() application.UnitOfWork {
	return f.repoFactory.CreateWithPublisher(NewNATSTransactionalPublisher(f.eventPublisher))
}

var _ application.UnitOfWorkFactory = (*UnitOfWorkFactory)(nil)
