package usecase

import (
	"sync"
	"time"

	"github.com/x-xyz/marketplace/base/ctx"
	"github.com/x-xyz/marketplace/base/log"
	hcdomain "github.com/x-xyz/marketplace/domain/healthcheck"
)

const defaultTimeout = 2 * time.Second

type impl struct {
	pingers []hcdomain.Pinger
	timeout time.Duration
}

// New runs every pinger concurrently, each bounded by timeout (2s when 0)
func New(timeout time.Duration, pingers ...hcdomain.Pinger) hcdomain.HealthCheckUsecase {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &impl{pingers: pingers, timeout: timeout}
}

func (im *impl) Check(c ctx.Ctx) hcdomain.Report {
	c, cancel := ctx.WithTimeout(c, im.timeout)
	defer cancel()

	var (
		mu  sync.Mutex
		wg  sync.WaitGroup
		rep = hcdomain.Report{Healthy: true, Components: map[string]string{}}
	)
	for _, p := range im.pingers {
		wg.Add(1)
		go func(p hcdomain.Pinger) {
			defer wg.Done()
			status := hcdomain.StatusOK
			if err := p.Ping(c); err != nil {
				c.WithFields(log.Fields{"err": err, "backend": p.Name()}).Error("pinger.Ping failed")
				status = hcdomain.StatusDown
			}
			mu.Lock()
			defer mu.Unlock()
			rep.Components[p.Name()] = status
			if status != hcdomain.StatusOK {
				rep.Healthy = false
			}
		}(p)
	}
	wg.Wait()
	return rep
}
