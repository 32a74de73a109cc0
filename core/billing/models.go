package billing

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/volatiletech/null/v8"

	"github.com/darasa-app/darasa/core"
)

// payment methods
const (
	MethodCash     = "cash"
	MethodTransfer = "transfer"
)

type Payment struct {
	ID            string      `json:"id"`
	UserID        string      `json:"user"`
	CourseID      null.String `json:"course"`
	LessonID      null.String `json:"lesson"`
	Amount        core.Amount `json:"amount"`
	PaymentMethod string      `json:"payment_method"`
	PaymentDate   time.Time   `json:"payment_date"` // UTC, immutable

	// joined for read views
	CourseTitle null.String `json:"course_title"`
	LessonTitle null.String `json:"lesson_title"`
}

// NewPayment contains information needed to record a new Payment; the paying
// user is always the acting user.
type NewPayment struct {
	CourseID      string      `json:"course"`
	LessonID      string      `json:"lesson"`
	Amount        core.Amount `json:"amount" validate:"required,gt=0"`
	PaymentMethod string      `json:"payment_method" validate:"required,oneof=cash transfer"`
}

func (np *NewPayment) Validate(validate *validator.Validate) error {
	np.PaymentMethod = core.CleanString(np.PaymentMethod, true /* lower */)
	return validate.Struct(np)
}

// QueryFilter applies AND over its set fields. UserID is never bound from
// request params; callers set it to pin results to a single payer.
type QueryFilter struct {
	UserID        string
	CourseID      string
	LessonID      string
	PaymentMethod string
	AmountGte     *core.Amount
	AmountLte     *core.Amount
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.UserID == "" && qf.CourseID == "" && qf.LessonID == "" && qf.PaymentMethod == "" &&
		qf.AmountGte == nil && qf.AmountLte == nil
}

func (qf *QueryFilter) Clean() {
	qf.PaymentMethod = core.CleanString(qf.PaymentMethod, true /* lower */)
}
