package inmemdb

import (
	"context"
	"sort"

	"github.com/google/uuid"
	"github.com/volatiletech/null/v8"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/access"
	"github.com/darasa-app/darasa/core/billing"
)

type paymentRepository struct {
	db *DB
}

var _ billing.Repository = (*paymentRepository)(nil)

func NewPaymentRepository(db *DB) *paymentRepository {
	return &paymentRepository{db: db}
}

func (repo *paymentRepository) CreatePayment(ctx context.Context, pmt billing.Payment) (billing.Payment, error) {
	repo.db.mutex.Lock()
	defer repo.db.mutex.Unlock()

	pmt.ID = uuid.New().String()
	repo.db.payments[pmt.ID] = paymentRec{Payment: pmt, seq: repo.db.nextSeq()}
	return pmt, nil
}

func (repo *paymentRepository) QueryPayments(
	ctx context.Context,
	scope access.Scope,
	actorID string,
	filter *billing.QueryFilter,
	ordering []core.DBOrdering,
) ([]billing.Payment, error) {
	repo.db.mutex.RLock()
	defer repo.db.mutex.RUnlock()

	recs := make([]paymentRec, 0, len(repo.db.payments))
	for _, rec := range repo.db.payments {
		switch scope {
		case access.ScopeAll:
		case access.ScopeOwned:
			if rec.UserID != actorID {
				continue
			}
		default:
			continue
		}
		if filter != nil && !matches(rec.Payment, filter) {
			continue
		}
		recs = append(recs, rec)
	}

	sort.Slice(recs, func(i, j int) bool { return paymentLess(recs[i], recs[j], ordering) })

	payments := make([]billing.Payment, 0, len(recs))
	for _, rec := range recs {
		pmt := rec.Payment
		pmt.CourseTitle = repo.courseTitle(pmt.CourseID)
		pmt.LessonTitle = repo.lessonTitle(pmt.LessonID)
		payments = append(payments, pmt)
	}
	return payments, nil
}

func (repo *paymentRepository) courseTitle(id null.String) null.String {
	if !id.Valid {
		return null.String{}
	}
	if rec, ok := repo.db.courses[id.String]; ok {
		return null.StringFrom(rec.Title)
	}
	return null.String{}
}

func (repo *paymentRepository) lessonTitle(id null.String) null.String {
	if !id.Valid {
		return null.String{}
	}
	if rec, ok := repo.db.lessons[id.String]; ok {
		return null.StringFrom(rec.Title)
	}
	return null.String{}
}

func matches(pmt billing.Payment, filter *billing.QueryFilter) bool {
	if filter.UserID != "" && pmt.UserID != filter.UserID {
		return false
	}
	if filter.CourseID != "" && (!pmt.CourseID.Valid || pmt.CourseID.String != filter.CourseID) {
		return false
	}
	if filter.LessonID != "" && (!pmt.LessonID.Valid || pmt.LessonID.String != filter.LessonID) {
		return false
	}
	if filter.PaymentMethod != "" && pmt.PaymentMethod != filter.PaymentMethod {
		return false
	}
	if filter.AmountGte != nil && pmt.Amount < *filter.AmountGte {
		return false
	}
	if filter.AmountLte != nil && pmt.Amount > *filter.AmountLte {
		return false
	}
	return true
}

func paymentLess(a, b paymentRec, ordering []core.DBOrdering) bool {
	for _, ord := range ordering {
		switch ord.Field {
		case "amount":
			if a.Amount != b.Amount {
				if ord.Ascending {
					return a.Amount < b.Amount
				}
				return a.Amount > b.Amount
			}
		case "payment_date":
			if !a.PaymentDate.Equal(b.PaymentDate) {
				if ord.Ascending {
					return a.PaymentDate.Before(b.PaymentDate)
				}
				return a.PaymentDate.After(b.PaymentDate)
			}
		}
	}
	return a.seq < b.seq
}
