package echoapi

import (
	"net/http"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/darasa-app/darasa/core"
	"github.com/darasa-app/darasa/core/billing"
	"github.com/darasa-app/darasa/core/user"
)

type userApi struct {
	conf       *core.Config
	svc        user.Service
	billingSvc billing.Service
	validate   *validator.Validate
	translator ut.Translator
}

func registerUserAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := userApi{
		conf:       deps.Conf,
		svc:        deps.UserSvc,
		billingSvc: deps.BillingSvc,
		validate:   deps.Validate,
		translator: deps.Translator,
	}

	// un-authed endpoints
	g.POST("/token", api.obtainToken)
	g.POST("/token/refresh", api.refreshToken)
	g.POST("/users/register", api.register)

	// authed endpoints
	pg := g.Group("/profile", jwt)
	pg.GET("/:id", api.retrieveProfile)
	pg.PATCH("/:id", api.updateProfile)
}

// Handlers

func (api *userApi) register(ctx echo.Context) error {
	var data user.NewUser
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewUser")
	}
	if err := data.Validate(api.validate, api.svc); err != nil {
		return err
	}

	usr, err := api.svc.Register(data)
	if err != nil {
		return errors.Wrap(err, "registering user")
	}

	// a fresh account is logged in right away
	access, refresh, err := GenerateTokenPair(api.conf, usr)
	if err != nil {
		return errors.Wrap(err, "generating token pair")
	}
	return ctx.JSON(http.StatusCreated, TokenResponse{Access: access, Refresh: refresh, User: usr})
}

func (api *userApi) obtainToken(ctx echo.Context) error {
	var data TokenRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to TokenRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	usr, err := authenticate(data.Email, data.Password, api.svc)
	if err != nil {
		return err
	}
	access, refresh, err := GenerateTokenPair(api.conf, usr)
	if err != nil {
		return errors.Wrap(err, "generating token pair")
	}
	return ctx.JSON(http.StatusOK, TokenResponse{Access: access, Refresh: refresh, User: usr})
}

func (api *userApi) refreshToken(ctx echo.Context) error {
	var data RefreshRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to RefreshRequest")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := parseRefreshToken(api.conf, data.Refresh)
	if err != nil {
		return err
	}

	// the account must still exist and be active
	usr, err := api.svc.GetByID(claims.Subject)
	if err != nil {
		if errors.Cause(err) == user.ErrNotFound {
			return errRefreshInvalid
		}
		return errors.Wrap(err, "finding user by ID")
	}
	if !usr.IsActive {
		return errAccountDeactivated
	}

	access, err := GenerateToken(api.conf, newUserClaims(api.conf, usr, tokenTypeAccess, api.conf.Server.JWTAccessExpirationDelta))
	if err != nil {
		return errors.Wrap(err, "generating token")
	}
	return ctx.JSON(http.StatusOK, AccessResponse{Access: access})
}

func (api *userApi) retrieveProfile(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	usr, err := api.svc.GetProfile(actor, ctx.Param("id"))
	if err != nil {
		return err
	}

	res := ProfileResponse{User: usr}
	if usr.ID == actor.ID {
		// own profile carries the payment history; pin the filter to the
		// owner so staff and moderators do not get the whole ledger here
		payments, err := api.billingSvc.Query(actor, &billing.QueryFilter{UserID: usr.ID}, nil)
		if err != nil {
			return errors.Wrap(err, "querying payments")
		}
		res.Payments = payments
	}
	return ctx.JSON(http.StatusOK, res)
}

func (api *userApi) updateProfile(ctx echo.Context) error {
	actor, err := getContextActor(ctx)
	if err != nil {
		return err
	}

	orig, err := api.svc.GetProfile(actor, ctx.Param("id"))
	if err != nil {
		return err
	}

	var data user.UpdateProfile
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateProfile")
	}
	if err := data.Validate(orig, api.validate); err != nil {
		return err
	}

	usr, err := api.svc.UpdateProfile(actor, ctx.Param("id"), data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, usr)
}

type (
	TokenRequest struct {
		Email    string `json:"email" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	TokenResponse struct {
		Access  string    `json:"access"`
		Refresh string    `json:"refresh"`
		User    user.User `json:"user"`
	}

	RefreshRequest struct {
		Refresh string `json:"refresh" validate:"required"`
	}

	AccessResponse struct {
		Access string `json:"access"`
	}

	ProfileResponse struct {
		user.User
		Payments []billing.Payment `json:"payments,omitempty"`
	}
)

func (tr *TokenRequest) Validate(validate *validator.Validate) error {
	tr.Email = core.CleanString(tr.Email, true /* lower */)
	return validate.Struct(tr)
}

func (rr *RefreshRequest) Validate(validate *validator.Validate) error {
	return validate.Struct(rr)
}
