package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/suite"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/delivery"
	"github.com/x-xyz/marketplace/base/metrics"
	"github.com/x-xyz/marketplace/base/validator"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/collection"
	"github.com/x-xyz/marketplace/domain/listing"
	"github.com/x-xyz/marketplace/domain/token"
	"github.com/x-xyz/marketplace/middleware"
	"github.com/x-xyz/marketplace/service/cache"
	"github.com/x-xyz/marketplace/service/cache/provider/primitive"
	"github.com/x-xyz/marketplace/service/erc721"
	"github.com/x-xyz/marketplace/service/ledger"
	"github.com/x-xyz/marketplace/service/registrar"
	authMiddleware "github.com/x-xyz/marketplace/stores/auth/delivery/http/middleware"
	collectionDelivery "github.com/x-xyz/marketplace/stores/collection/delivery/http"
	collectionRepository "github.com/x-xyz/marketplace/stores/collection/repository"
	collectionUsecase "github.com/x-xyz/marketplace/stores/collection/usecase"
	listingRepository "github.com/x-xyz/marketplace/stores/listing/repository"
	listingUsecase "github.com/x-xyz/marketplace/stores/listing/usecase"
	settlementRepository "github.com/x-xyz/marketplace/stores/settlement/repository"
)

const (
	escrow = domain.Address("0x1000000000000000000000000000000000000001")
	artist = domain.Address("0x2000000000000000000000000000000000000001")
	alice  = domain.Address("0x2000000000000000000000000000000000000002")
	bob    = domain.Address("0x2000000000000000000000000000000000000003")
)

// tokenAuth accepts the caller address itself as bearer token
type tokenAuth struct{}

func (tokenAuth) SigningMessage(ctx.Ctx, domain.Address) (string, error) { return "", nil }

func (tokenAuth) SignToken(ctx.Ctx, domain.Address, string) (string, error) { return "", nil }

func (tokenAuth) ParseToken(_ ctx.Ctx, token string) (string, error) {
	if !validator.IsValidAddress(token) {
		return "", domain.ErrInvalidSignature
	}
	return token, nil
}

type handlerSuite struct {
	suite.Suite

	clk     *clock.Mock
	e       *echo.Echo
	led     *ledger.Memory
	project domain.Address
}

func TestHandler(t *testing.T) {
	suite.Run(t, new(handlerSuite))
}

func (s *handlerSuite) SetupTest() {
	c := ctx.Background()
	s.clk = clock.NewMock()
	s.clk.Set(time.Date(2022, 3, 1, 0, 0, 0, 0, time.UTC))

	dir := erc721.NewDirectory()
	led := ledger.NewMemory()
	s.Require().NoError(led.Deposit(c, alice, domain.MustParseEther("10").BigInt()))
	s.led = led

	allow := registrar.NewAllowList()
	s.Require().NoError(allow.Grant("artist.eth", artist))

	colUC := collectionUsecase.NewCollection(&collectionUsecase.CollectionUseCaseCfg{
		CollectionRepo:    collectionRepository.NewMemory(),
		Factory:           erc721.NewFactory("0x1000000000000000000000000000000000000003", escrow, dir),
		Directory:         dir,
		InterfaceCheckers: []token.InterfaceChecker{dir},
		Cache: cache.New(cache.ServiceConfig{
			Pfx:   "collection",
			Cache: primitive.NewPrimitive("collection", 1),
		}),
		Clock: s.clk,
	})
	col, err := colUC.CreateProject(c, artist, collection.CreateProjectParams{MetadataURI: "QmP", Name: "P", Symbol: "P"})
	s.Require().NoError(err)
	s.project = col.Address

	uc := listingUsecase.New(&listingUsecase.ListingUseCaseCfg{
		Config: listing.Config{
			Escrow:              escrow,
			FeeRecipient:        "0x1000000000000000000000000000000000000002",
			PlatformFee:         domain.MustParseEther("0.025").BigInt(),
			MinimumDuration:     time.Minute,
			MinimalListingValue: domain.MustParseEther("0.001").BigInt(),
			AuctionStep:         domain.MustParseEther("0.01").BigInt(),
		},
		ListingRepo:    listingRepository.NewMemory(),
		SettlementRepo: settlementRepository.NewMemory(),
		CollectionUC:   colUC,
		Registrar:      allow,
		Ledger:         led,
		Clock:          s.clk,
		Metrics:        metrics.New("listing"),
	})

	s.e = echo.New()
	s.e.Validator = validator.NewCustomValidator(validator.New())
	s.e.Use(middleware.InitMiddleware().AddContext())
	auth := authMiddleware.New(tokenAuth{})
	New(s.e, uc, auth, s.clk)
	collectionDelivery.New(s.e, colUC, auth, cache.New(cache.ServiceConfig{
		Pfx:   "http",
		Cache: primitive.NewPrimitive("http", 1),
	}))
}

func (s *handlerSuite) do(method, path string, caller domain.Address, body string) (int, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if caller != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+string(caller))
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	res := delivery.JsonResponse{}
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &res), rec.Body.String())
	data, _ := res.Data.(map[string]interface{})
	return rec.Code, data
}

func (s *handlerSuite) mintAuction(identity string) (int, map[string]interface{}) {
	return s.do(http.MethodPost, "/listings/mint/auction", artist, fmt.Sprintf(
		`{"collection":"%s","tokenUri":"QmA","royalty":"0.1","identity":"%s","startTime":%d,"duration":3600,"minimalBid":"1"}`,
		s.project, identity, s.clk.Now().Unix(),
	))
}

func (s *handlerSuite) TestAuctionFlow() {
	code, l := s.mintAuction("artist.eth")
	s.Require().Equal(http.StatusCreated, code, l)
	s.Equal("active", l["status"])
	path := fmt.Sprintf("/listings/%s/%s", s.project, l["tokenId"])

	code, _ = s.do(http.MethodPost, path+"/bid", alice, `{"value":"0.5"}`)
	s.Equal(http.StatusBadRequest, code)
	code, _ = s.do(http.MethodPost, path+"/bid", alice, `{"value":"lots"}`)
	s.Equal(http.StatusBadRequest, code)

	code, l = s.do(http.MethodPost, path+"/bid", alice, `{"value":"2"}`)
	s.Require().Equal(http.StatusOK, code, l)
	s.Equal(domain.MustParseEther("2").String(), l["lastBid"])

	code, _ = s.do(http.MethodPost, path+"/claim", bob, "")
	s.Equal(http.StatusConflict, code)

	s.clk.Add(2 * time.Hour)
	code, l = s.do(http.MethodGet, path+"/status", "", "")
	s.Equal(http.StatusOK, code)
	s.Equal("successful", l["status"])

	code, l = s.do(http.MethodPost, path+"/claim", bob, "")
	s.Require().Equal(http.StatusOK, code, l)
	s.Equal(true, l["finalized"])

	code, _ = s.do(http.MethodPost, path+"/claim", bob, "")
	s.Equal(http.StatusConflict, code)

	req := httptest.NewRequest(http.MethodGet, path+"/settlements", nil)
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)
	s.Equal(http.StatusOK, rec.Code)
	s.Contains(rec.Body.String(), domain.MustParseEther("0.2").String())
}

func (s *handlerSuite) TestResale() {
	code, l := s.mintAuction("artist.eth")
	s.Require().Equal(http.StatusCreated, code, l)
	tokenId := l["tokenId"].(string)
	path := fmt.Sprintf("/listings/%s/%s", s.project, tokenId)
	tokenPath := fmt.Sprintf("/collections/%s/tokens/%s", s.project, tokenId)

	code, l = s.do(http.MethodPost, path+"/bid", alice, `{"value":"2"}`)
	s.Require().Equal(http.StatusOK, code, l)
	s.clk.Add(2 * time.Hour)
	code, l = s.do(http.MethodPost, path+"/claim", bob, "")
	s.Require().Equal(http.StatusOK, code, l)

	code, t := s.do(http.MethodGet, tokenPath, "", "")
	s.Require().Equal(http.StatusOK, code, t)
	s.Equal(string(alice), t["owner"])

	resale := fmt.Sprintf(`{"collection":"%s","tokenId":"%s","startTime":%d,"duration":3600,"price":"3"}`,
		s.project, tokenId, s.clk.Now().Unix())
	// the escrow is not approved yet
	code, _ = s.do(http.MethodPost, "/listings/fixed-price", alice, resale)
	s.Equal(http.StatusPaymentRequired, code)
	code, _ = s.do(http.MethodPost, "/listings/fixed-price", bob, resale)
	s.Equal(http.StatusForbidden, code)

	code, t = s.do(http.MethodPost, tokenPath+"/approve", alice, `{"to":"`+string(escrow)+`"}`)
	s.Require().Equal(http.StatusOK, code, t)
	s.Equal(string(escrow), t["approved"])

	code, l = s.do(http.MethodPost, "/listings/fixed-price", alice, resale)
	s.Require().Equal(http.StatusCreated, code, l)
	s.Equal(string(alice), l["seller"])
	s.Equal(string(artist), l["royaltyBeneficiary"])
	s.Equal("active", l["status"])

	s.Require().NoError(s.led.Deposit(ctx.Background(), bob, domain.MustParseEther("5").BigInt()))
	code, l = s.do(http.MethodPost, path+"/purchase", bob, `{"value":"3"}`)
	s.Require().Equal(http.StatusOK, code, l)
	s.Equal("successful", l["status"])

	code, t = s.do(http.MethodGet, tokenPath, "", "")
	s.Require().Equal(http.StatusOK, code, t)
	s.Equal(string(bob), t["owner"])

	// 3 less the 2.5% fee and the 10% mint royalty
	b, err := s.led.Balance(ctx.Background(), alice)
	s.Require().NoError(err)
	s.Equal("10.625", domain.NewAmount(b).Ether())
}

func (s *handlerSuite) TestIdentityRequired() {
	code, _ := s.mintAuction("someone-else.eth")
	s.Equal(http.StatusForbidden, code)
}

func (s *handlerSuite) TestAuthRequired() {
	code, _ := s.do(http.MethodPost, "/listings/mint/auction", "", `{}`)
	s.NotEqual(http.StatusCreated, code)
}

func (s *handlerSuite) TestList() {
	code, _ := s.mintAuction("artist.eth")
	s.Require().Equal(http.StatusCreated, code)

	code, res := s.do(http.MethodGet, "/listings?seller="+string(artist), "", "")
	s.Equal(http.StatusOK, code)
	s.EqualValues(1, res["count"])
	s.Len(res["items"], 1)

	code, res = s.do(http.MethodGet, "/listings?kind=fixedPrice", "", "")
	s.Equal(http.StatusOK, code)
	s.EqualValues(0, res["count"])

	code, _ = s.do(http.MethodGet, "/listings?kind=barter", "", "")
	s.Equal(http.StatusBadRequest, code)
}

func (s *handlerSuite) TestNotFound() {
	code, _ := s.do(http.MethodGet, fmt.Sprintf("/listings/%s/404", s.project), "", "")
	s.Equal(http.StatusNotFound, code)
	code, _ = s.do(http.MethodGet, "/listings/not-an-address/1", "", "")
	s.Equal(http.StatusBadRequest, code)
}
