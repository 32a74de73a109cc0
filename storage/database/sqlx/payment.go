package sqlxrepos

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/access"
	"github.com/darasa-app/darasa/core/billing"
)

type paymentRepository struct {
	db *sqlx.DB
}

var _ billing.Repository = (*paymentRepository)(nil) // interface compliance check

func NewPaymentRepository(db *sqlx.DB) *paymentRepository {
	return &paymentRepository{db: db}
}

type paymentRow struct {
	ID            string      `db:"id"`
	UserID        string      `db:"user_id"`
	CourseID      null.String `db:"course_id"`
	LessonID      null.String `db:"lesson_id"`
	Amount        core.Amount `db:"amount"`
	PaymentMethod string      `db:"payment_method"`
	PaymentDate   time.Time   `db:"payment_date"`
	CourseTitle   null.String `db:"course_title"`
	LessonTitle   null.String `db:"lesson_title"`
}

func (r paymentRow) toDomain() billing.Payment {
	return billing.Payment{
		ID:            r.ID,
		UserID:        r.UserID,
		CourseID:      r.CourseID,
		LessonID:      r.LessonID,
		Amount:        r.Amount,
		PaymentMethod: r.PaymentMethod,
		PaymentDate:   r.PaymentDate,
		CourseTitle:   r.CourseTitle,
		LessonTitle:   r.LessonTitle,
	}
}

func (repo paymentRepository) CreatePayment(ctx context.Context, pmt billing.Payment) (billing.Payment, error) {
	pmt.ID = uuid.New().String()
	_, err := repo.db.ExecContext(ctx,
		`INSERT INTO payment (id, user_id, course_id, lesson_id, amount, payment_method, payment_date)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		pmt.ID, pmt.UserID, pmt.CourseID, pmt.LessonID, pmt.Amount, pmt.PaymentMethod, pmt.PaymentDate.UTC(),
	)
	if err != nil {
		return billing.Payment{}, errors.Wrap(err, "inserting payment")
	}
	return pmt, nil
}

func (repo paymentRepository) QueryPayments(
	ctx context.Context,
	scope access.Scope,
	actorID string,
	filter *billing.QueryFilter,
	ordering []core.DBOrdering,
) ([]billing.Payment, error) {
	conds := make([]string, 0, 6)
	args := make([]interface{}, 0, 6)

	arg := func(v interface{}) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	switch scope {
	case access.ScopeAll:
	case access.ScopeOwned:
		conds = append(conds, "p.user_id = "+arg(actorID))
	default:
		conds = append(conds, "FALSE")
	}

	if filter != nil {
		if filter.UserID != "" {
			conds = append(conds, "p.user_id = "+arg(filter.UserID))
		}
		// malformed ids cannot match anything; comparing them against a uuid
		// column would make Postgres error out instead
		if filter.CourseID != "" {
			if _, err := uuid.Parse(filter.CourseID); err != nil {
				conds = append(conds, "FALSE")
			} else {
				conds = append(conds, "p.course_id = "+arg(filter.CourseID))
			}
		}
		if filter.LessonID != "" {
			if _, err := uuid.Parse(filter.LessonID); err != nil {
				conds = append(conds, "FALSE")
			} else {
				conds = append(conds, "p.lesson_id = "+arg(filter.LessonID))
			}
		}
		if filter.PaymentMethod != "" {
			conds = append(conds, "p.payment_method = "+arg(filter.PaymentMethod))
		}
		if filter.AmountGte != nil {
			conds = append(conds, "p.amount >= "+arg(*filter.AmountGte))
		}
		if filter.AmountLte != nil {
			conds = append(conds, "p.amount <= "+arg(*filter.AmountLte))
		}
	}

	where := ""
	if len(conds) > 0 {
		where = " WHERE " + strings.Join(conds, " AND ")
	}

	orderBy := make([]string, 0, len(ordering))
	for _, ord := range ordering {
		orderBy = append(orderBy, "p."+ord.String())
	}
	if len(orderBy) == 0 {
		orderBy = append(orderBy, "p.payment_date DESC")
	}

	query := `SELECT p.*, c.title AS course_title, l.title AS lesson_title
		FROM payment p
		LEFT JOIN course c ON c.id = p.course_id
		LEFT JOIN lesson l ON l.id = p.lesson_id` +
		where + " ORDER BY " + strings.Join(orderBy, ", ")

	var rows []paymentRow
	if err := repo.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying payments")
	}

	payments := make([]billing.Payment, 0, len(rows))
	for _, row := range rows {
		payments = append(payments, row.toDomain())
	}
	return payments, nil
}
