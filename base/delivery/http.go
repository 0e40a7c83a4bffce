package delivery

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/token"
	"github.com/x-xyz/marketplace/service/query"
)

type JsonResponseStatus string

const (
	JsonResponseStatusSuccess JsonResponseStatus = "success"
	JsonResponseStatusFail    JsonResponseStatus = "fail"
)

type JsonResponse struct {
	Data   interface{}        `json:"data"`
	Status JsonResponseStatus `json:"status"`
}

var errStatus = []struct {
	err    error
	status int
}{
	{domain.ErrNotFound, http.StatusNotFound},
	{query.ErrNotFound, http.StatusNotFound},
	{domain.ErrListingNotFound, http.StatusNotFound},
	{domain.ErrCollectionNotRecognized, http.StatusNotFound},
	{token.ErrNonexistentToken, http.StatusNotFound},
	{token.ErrUnknownCollection, http.StatusNotFound},

	{domain.ErrBadParamInput, http.StatusBadRequest},
	{domain.ErrInvalidNumberFormat, http.StatusBadRequest},
	{domain.ErrInvalidAddress, http.StatusBadRequest},
	{domain.ErrInvalidWindow, http.StatusBadRequest},
	{domain.ErrBelowMinimalValue, http.StatusBadRequest},
	{domain.ErrInvalidRoyalty, http.StatusBadRequest},
	{domain.ErrIncorrectPaymentAmount, http.StatusBadRequest},
	{domain.ErrBidTooLow, http.StatusBadRequest},
	{domain.ErrWrongListingKind, http.StatusBadRequest},
	{domain.ErrErc721InterfaceUnsupported, http.StatusBadRequest},
	{token.ErrApprovalOnChain, http.StatusBadRequest},

	{domain.ErrInvalidSignature, http.StatusUnauthorized},
	{domain.ErrNotOwnerOrApproved, http.StatusForbidden},
	{domain.ErrIdentityCheckFailed, http.StatusForbidden},
	{domain.ErrNotSeller, http.StatusForbidden},
	{domain.ErrNotProject, http.StatusForbidden},
	{token.ErrNotAuthorized, http.StatusForbidden},

	{domain.ErrConflict, http.StatusConflict},
	{domain.ErrListingAlreadyExists, http.StatusConflict},
	{domain.ErrDuplicateImport, http.StatusConflict},
	{domain.ErrNotActive, http.StatusConflict},
	{domain.ErrAlreadyFinalized, http.StatusConflict},
	{domain.ErrNotSuccessful, http.StatusConflict},
	{domain.ErrHasBids, http.StatusConflict},
	{domain.ErrNotRejected, http.StatusConflict},

	{domain.ErrTransferFailed, http.StatusPaymentRequired},
}

// StatusOf maps a domain error to its http status, 500 when unknown
func StatusOf(err error) int {
	for _, e := range errStatus {
		if errors.Is(err, e.err) {
			return e.status
		}
	}
	return http.StatusInternalServerError
}

// MakeJsonResp writes data wrapped in JsonResponse. An error as data picks
// its own status.
func MakeJsonResp(c echo.Context, status int, data interface{}) error {
	if err, ok := data.(error); ok {
		if s := StatusOf(err); s != http.StatusInternalServerError {
			status = s
		}
		data = err.Error()
	}

	if status >= 400 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusFail})
	}

	if status >= 200 && status < 300 {
		return c.JSON(status, JsonResponse{data, JsonResponseStatusSuccess})
	}

	return c.JSON(status, data)
}
