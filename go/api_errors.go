package posserver

import (
	"errors"

	"github.com/gin-gonic/gin"

	menuapp "github.com/Apurer/restaurant-pos/internal/domains/menu/application"
	terminalapp "github.com/Apurer/restaurant-pos/internal/domains/terminal/application"
	apierrors "github.com/Apurer/restaurant-pos/internal/shared/errors"
)

var responder = apierrors.NewResponder("", mapPOSError)

// mapPOSError translates the menu and terminal error taxonomy into problems.
func mapPOSError(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, menuapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, terminalapp.ErrNotConnected):
		return apierrors.ErrUnauthorized.WithDetail(err.Error()), true
	case errors.Is(err, terminalapp.ErrUnknownItem):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, menuapp.ErrDuplicateItem):
		problem := apierrors.ErrConflict.WithDetail(err.Error())
		var dup *menuapp.DuplicateItemError
		if errors.As(err, &dup) && dup.ItemID != "" {
			problem = problem.WithExtension("existingItemId", dup.ItemID)
		}
		return problem, true
	case errors.Is(err, menuapp.ErrStoreFailure), errors.Is(err, menuapp.ErrSubscription):
		return apierrors.ErrBadGateway.WithDetail(err.Error()), true
	default:
		return apierrors.ProblemDetail{}, false
	}
}

func respondError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	responder.RespondError(c, err)
}

func respondBadRequest(c *gin.Context, err error) {
	responder.BadRequest(c, err.Error())
}
