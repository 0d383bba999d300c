package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"merry/internal/adapter/middleware"
	"merry/internal/domain/apperr"
	"merry/internal/domain/chama"
	"merry/internal/domain/uow"
)

const membershipKey = "merry.membership"

// scopeParams are the path parameters a chama can be resolved from, in
// lookup order.
var scopeParams = []string{"chama_id", "cycle_id", "contribution_id", "payout_id", "loan_id"}

// Access scopes routes to the chama they touch. Roles live on the chama
// membership, so an admin of one chama has no rights in another.
type Access struct{ repos uow.Repos }

func NewAccess(repos uow.Repos) *Access { return &Access{repos: repos} }

// Member admits any member of the chama, active or not.
func (a *Access) Member() echo.MiddlewareFunc { return a.require(false) }

// Admin admits active admins of the chama only.
func (a *Access) Admin() echo.MiddlewareFunc { return a.require(true) }

func (a *Access) require(admin bool) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			chamaID, ok, err := a.chamaOf(c)
			if !ok {
				return err
			}
			m, err := a.repos.Chamas.GetMemberByUser(c.Request().Context(), chamaID, middleware.IdentityFrom(c).UserID)
			if errors.Is(err, apperr.ErrNotFound) {
				return c.JSON(http.StatusForbidden, ErrorResponse{Error: "not a member of this chama"})
			}
			if err != nil {
				return fail(c, err)
			}
			if admin && !m.IsAdmin() {
				return c.JSON(http.StatusForbidden, ErrorResponse{Error: "chama admin role required"})
			}
			c.Set(membershipKey, *m)
			return next(c)
		}
	}
}

// chamaOf resolves the chama a request targets. When it returns false the
// error response has already been written.
func (a *Access) chamaOf(c echo.Context) (string, bool, error) {
	for _, name := range scopeParams {
		if c.Param(name) == "" {
			continue
		}
		v, ok, err := pathID(c, name)
		if !ok {
			return "", false, err
		}
		chamaID, err := a.lookup(c.Request().Context(), name, v)
		if err != nil {
			return "", false, fail(c, err)
		}
		return chamaID, true, nil
	}
	return "", false, fail(c, errors.New("route "+c.Path()+" has no chama scope"))
}

func (a *Access) lookup(ctx context.Context, param, v string) (string, error) {
	cycleID := ""
	switch param {
	case "chama_id":
		ch, err := a.repos.Chamas.GetByID(ctx, v)
		if err != nil {
			return "", err
		}
		return ch.ID, nil
	case "loan_id":
		l, err := a.repos.Loans.GetByID(ctx, v)
		if err != nil {
			return "", err
		}
		return l.ChamaID, nil
	case "contribution_id":
		x, err := a.repos.Contributions.GetByID(ctx, v)
		if err != nil {
			return "", err
		}
		cycleID = x.CycleID
	case "payout_id":
		p, err := a.repos.Payouts.GetByID(ctx, v)
		if err != nil {
			return "", err
		}
		cycleID = p.CycleID
	default:
		cycleID = v
	}
	cy, err := a.repos.Cycles.GetByID(ctx, cycleID)
	if err != nil {
		return "", err
	}
	return cy.ChamaID, nil
}

// MembershipFrom returns the caller's membership set by Access.
func MembershipFrom(c echo.Context) (chama.Member, bool) {
	m, ok := c.Get(membershipKey).(chama.Member)
	return m, ok
}

// callerIsAdmin reports whether the caller administers the route's chama.
func callerIsAdmin(c echo.Context) bool {
	m, ok := MembershipFrom(c)
	return ok && m.IsAdmin()
}
