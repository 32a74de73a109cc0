package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/billing"
)

type paymentApi struct {
	svc      billing.Service
	validate *validator.Validate
}

func registerPaymentAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := paymentApi{
		svc:      deps.BillingSvc,
		validate: deps.Validate,
	}

	pg := g.Group("/payments", jwt)
	pg.GET("", api.list)
	pg.POST("", api.create)
}

// Handlers

func (api *paymentApi) list(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	filter, err := bindPaymentFilter(ctx)
	if err != nil {
		return err
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	payments, err := api.svc.Query(actor, filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying payments")
	}
	if payments == nil {
		payments = []billing.Payment{}
	}
	return ctx.JSON(http.StatusOK, payments)
}

func (api *paymentApi) create(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	var data billing.NewPayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPayment")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	pmt, err := api.svc.Create(actor, data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, pmt)
}

// bindPaymentFilter reads the filter query params; amounts are decimal
// strings, a malformed one is a validation error.
func bindPaymentFilter(ctx echo.Context) (*billing.QueryFilter, error) {
	filter := &billing.QueryFilter{
		CourseID:      ctx.QueryParam("course"),
		LessonID:      ctx.QueryParam("lesson"),
		PaymentMethod: ctx.QueryParam("payment_method"),
	}

	if v := ctx.QueryParam("amount_gte"); v != "" {
		amt, err := core.ParseAmount(v)
		if err != nil {
			return nil, core.NewValidationError(err, core.FieldError{Field: "amount_gte", Error: err.Error()})
		}
		filter.AmountGte = &amt
	}
	if v := ctx.QueryParam("amount_lte"); v != "" {
		amt, err := core.ParseAmount(v)
		if err != nil {
			return nil, core.NewValidationError(err, core.FieldError{Field: "amount_lte", Error: err.Error()})
		}
		filter.AmountLte = &amt
	}

	if filter.IsEmpty() {
		return nil, nil
	}
	return filter, nil
}
