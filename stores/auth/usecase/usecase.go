package usecase

import (
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/golang-jwt/jwt"
	"github.com/google/uuid"
	"golang.org/x/xerrors"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/ethereum"
	"github.com/x-xyz/marketplace/base/log"
	"github.com/x-xyz/marketplace/domain"
	"github.com/x-xyz/marketplace/domain/keys"
	"github.com/x-xyz/marketplace/service/cache"
)

const defaultTokenTtl = 24 * time.Hour

type AuthUseCaseCfg struct {
	JwtSecret string
	// SigningMsgTemplate has one %s replaced by the nonce
	SigningMsgTemplate string
	// Nonces keeps the pending nonce per address, its ttl bounds how long a
	// message may stay unsigned
	Nonces   cache.Service
	Clock    clock.Clock
	TokenTtl time.Duration
}

type impl struct {
	jwtSecret []byte
	template  string
	nonces    cache.Service
	clock     clock.Clock
	tokenTtl  time.Duration
}

func New(cfg *AuthUseCaseCfg) domain.AuthUsecase {
	im := &impl{
		jwtSecret: []byte(cfg.JwtSecret),
		template:  cfg.SigningMsgTemplate,
		nonces:    cfg.Nonces,
		clock:     cfg.Clock,
		tokenTtl:  cfg.TokenTtl,
	}
	if im.clock == nil {
		im.clock = clock.New()
	}
	if im.tokenTtl == 0 {
		im.tokenTtl = defaultTokenTtl
	}
	return im
}

func nonceKey(address domain.Address) string {
	return keys.RedisKey(keys.PfxNonce, address.ToLowerStr())
}

func (im *impl) SigningMessage(ctx ctx.Ctx, address domain.Address) (string, error) {
	if address.IsEmpty() {
		return "", domain.ErrInvalidAddress
	}
	nonce := uuid.NewString()
	if err := im.nonces.Set(ctx, nonceKey(address), nonce); err != nil {
		ctx.WithFields(log.Fields{"err": err, "address": address}).Error("nonces.Set failed")
		return "", err
	}
	return fmt.Sprintf(im.template, nonce), nil
}

func (im *impl) SignToken(ctx ctx.Ctx, address domain.Address, signature string) (string, error) {
	var nonce string
	if err := im.nonces.Get(ctx, nonceKey(address), &nonce); err == cache.ErrNotFound {
		return "", xerrors.Errorf("no pending signing message: %w", domain.ErrInvalidSignature)
	} else if err != nil {
		ctx.WithFields(log.Fields{"err": err, "address": address}).Error("nonces.Get failed")
		return "", err
	}

	msg := fmt.Sprintf(im.template, nonce)
	if ok, err := ethereum.ValidateMsgSignature([]byte(msg), signature, string(address)); err != nil {
		return "", xerrors.Errorf("%v: %w", err, domain.ErrInvalidSignature)
	} else if !ok {
		return "", domain.ErrInvalidSignature
	}

	// a message is good for one token only
	if err := im.nonces.Del(ctx, nonceKey(address)); err != nil {
		ctx.WithFields(log.Fields{"err": err, "address": address}).Error("nonces.Del failed")
		return "", err
	}

	claims := domain.JwtCustomClaims{
		Address: address.ToLowerStr(),
		StandardClaims: jwt.StandardClaims{
			IssuedAt:  im.clock.Now().Unix(),
			ExpiresAt: im.clock.Now().Add(im.tokenTtl).Unix(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if ss, err := token.SignedString(im.jwtSecret); err != nil {
		ctx.WithField("err", err).Error("token.SignedString failed")
		return "", err
	} else {
		return ss, nil
	}
}

func (im *impl) ParseToken(ctx ctx.Ctx, str string) (string, error) {
	token, err := jwt.ParseWithClaims(str, &domain.JwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("Unexpected signing method: %v", token.Header["alg"])
		}
		return im.jwtSecret, nil
	})

	if token != nil {
		if claims, ok := token.Claims.(*domain.JwtCustomClaims); ok && token.Valid {
			return claims.Address, nil
		}
	}

	if err == nil {
		err = domain.ErrInvalidSignature
	}
	return "", err
}
