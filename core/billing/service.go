package billing

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/access"
	"github.com/darasa-app/darasa/core/catalog"
)

var ErrNotFound = errors.New("payment not found")

// orderableFields whitelists the ordering params accepted by Query; anything
// else is dropped.
var orderableFields = map[string]string{
	"payment_date": "payment_date",
	"amount":       "amount",
}

type (
	Repository interface {
		CreatePayment(ctx context.Context, pmt Payment) (Payment, error)
		// QueryPayments applies the scope, then the filter, then the ordering.
		QueryPayments(ctx context.Context, scope access.Scope, actorID string, filter *QueryFilter, ordering []core.DBOrdering) ([]Payment, error)
	}

	// Catalog is the slice of the catalog repository needed to resolve the
	// course and lesson references carried on new payments.
	Catalog interface {
		GetCourse(ctx context.Context, scope access.Scope, actorID, id string) (catalog.Course, error)
		GetLesson(ctx context.Context, scope access.Scope, actorID, id string) (catalog.Lesson, error)
	}

	Service interface {
		Create(actor access.Actor, np NewPayment) (Payment, error)
		Query(actor access.Actor, filter *QueryFilter, ordering []core.DBOrdering) ([]Payment, error)
	}

	service struct {
		repo    Repository
		catalog Catalog
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, cat Catalog) Service {
	return &service{repo: repo, catalog: cat}
}

// Create records a payment for the acting user. Course and lesson references
// are resolved first so a dangling id fails validation instead of reaching the
// storage layer.
func (svc *service) Create(actor access.Actor, np NewPayment) (Payment, error) {
	if !actor.Authenticated {
		return Payment{}, access.ErrUnauthenticated
	}
	ctx := context.Background()

	if np.CourseID != "" {
		if _, err := svc.catalog.GetCourse(ctx, access.CatalogScope(actor), actor.ID, np.CourseID); err != nil {
			if errors.Cause(err) == catalog.ErrCourseNotFound {
				return Payment{}, core.NewValidationError(err, core.FieldError{Field: "course", Error: err.Error()})
			}
			return Payment{}, err
		}
	}
	if np.LessonID != "" {
		if _, err := svc.catalog.GetLesson(ctx, access.CatalogScope(actor), actor.ID, np.LessonID); err != nil {
			if errors.Cause(err) == catalog.ErrLessonNotFound {
				return Payment{}, core.NewValidationError(err, core.FieldError{Field: "lesson", Error: err.Error()})
			}
			return Payment{}, err
		}
	}

	pmt := Payment{
		UserID:        actor.ID,
		CourseID:      null.NewString(np.CourseID, np.CourseID != ""),
		LessonID:      null.NewString(np.LessonID, np.LessonID != ""),
		Amount:        np.Amount,
		PaymentMethod: np.PaymentMethod,
		PaymentDate:   time.Now().UTC(),
	}
	return svc.repo.CreatePayment(ctx, pmt)
}

// Query lists payments visible to the actor: own rows, or every row for
// moderators and staff. Default ordering is newest first.
func (svc *service) Query(actor access.Actor, filter *QueryFilter, ordering []core.DBOrdering) ([]Payment, error) {
	if !actor.Authenticated {
		return nil, access.ErrUnauthenticated
	}
	if filter != nil {
		filter.Clean()
	}

	cleaned := make([]core.DBOrdering, 0, len(ordering))
	for _, ord := range ordering {
		if col, ok := orderableFields[ord.Field]; ok {
			cleaned = append(cleaned, core.DBOrdering{Field: col, Ascending: ord.Ascending})
		}
	}
	if len(cleaned) == 0 {
		cleaned = append(cleaned, core.DBOrdering{Field: "payment_date", Ascending: false})
	}

	return svc.repo.QueryPayments(context.Background(), access.OwnedScope(actor), actor.ID, filter, cleaned)
}
