package healthcheck

import (
	"github.com/x-xyz/marketplace/base/ctx"
)

const (
	StatusOK   = "ok"
	StatusDown = "down"
)

// Report holds the status of every checked backend
type Report struct {
	Healthy    bool              `json:"healthy"`
	Components map[string]string `json:"components"`
}

type HealthCheckUsecase interface {
	Check(c ctx.Ctx) Report
}

// Pinger checks one backend the service depends on
type Pinger interface {
	Name() string
	Ping(c ctx.Ctx) error
}
