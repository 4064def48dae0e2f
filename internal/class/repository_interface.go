package class

import "context"

type Repository interface {
	Create(ctx context.Context, c *Class) (*Class, error)
	GetByID(ctx context.Context, id int) (*Class, error)
	List(ctx context.Context, filter ListFilter) ([]Class, error)
	Update(ctx context.Context, c *Class) (*Class, error)
	// SetStatus moves a class from one status to another and reports
	// false if the class was no longer in from.
	SetStatus(ctx context.Context, id int, from, to Status) (bool, error)
}
