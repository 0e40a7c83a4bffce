package delivery

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/token"
)

func TestStatusOf(t *testing.T) {
	req := require.New(t)
	req.Equal(http.StatusNotFound, StatusOf(domain.ErrListingNotFound))
	req.Equal(http.StatusConflict, StatusOf(domain.ErrAlreadyFinalized))
	req.Equal(http.StatusPaymentRequired, StatusOf(xerrors.Errorf("refund: %v: %w", errors.New("frozen"), domain.ErrTransferFailed)))
	req.Equal(http.StatusForbidden, StatusOf(xerrors.Errorf("registrar: %w", domain.ErrIdentityCheckFailed)))
	req.Equal(http.StatusForbidden, StatusOf(token.ErrNotAuthorized))
	req.Equal(http.StatusNotFound, StatusOf(token.ErrUnknownCollection))
	// the token cause of a failed escrow is not exposed
	req.Equal(http.StatusPaymentRequired, StatusOf(xerrors.Errorf("escrow: %v: %w", token.ErrNotAuthorized, domain.ErrTransferFailed)))
	req.Equal(http.StatusInternalServerError, StatusOf(errors.New("boom")))
}

func TestMakeJsonResp(t *testing.T) {
	req := require.New(t)
	e := echo.New()

	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	req.NoError(MakeJsonResp(c, http.StatusInternalServerError, domain.ErrBidTooLow))
	req.Equal(http.StatusBadRequest, rec.Code)
	res := JsonResponse{}
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	req.Equal(JsonResponseStatusFail, res.Status)
	req.Equal(domain.ErrBidTooLow.Error(), res.Data)

	rec = httptest.NewRecorder()
	c = e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
	req.NoError(MakeJsonResp(c, http.StatusOK, map[string]int{"n": 1}))
	req.Equal(http.StatusOK, rec.Code)
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &res))
	req.Equal(JsonResponseStatusSuccess, res.Status)
}
