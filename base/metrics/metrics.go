/*Package metrics wraps datadog-go to record metrics
Following are naming convention of metric:
- Internal process time: *.time
- External latency: *.latency
- Error: *.err
- Warning: *.warn
*/
package metrics

import (
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/x-xyz/marketplace/base/env"
	"github.com/x-xyz/marketplace/base/log"
)

// Ender is returned by BumpTime
type Ender interface {
	End()
}

// Service provides interface for metrics
type Service interface {
	BumpAvg(key string, val float64, tags ...string)
	BumpSum(key string, val float64, tags ...string)
	BumpHistogram(key string, val float64, tags ...string)

	// BumpTime starts a timer, call End on the result to record it
	//
	//     defer s.BumpTime("my.function").End()
	BumpTime(key string, tags ...string) Ender
}

type statsCli interface {
	Gauge(name string, value float64, tags []string, rate float64) error
	Count(name string, value int64, tags []string, rate float64) error
	Histogram(name string, value float64, tags []string, rate float64) error
	TimeInMilliseconds(name string, value float64, tags []string, rate float64) error
}

const sampleRate = 1.0

// Metrics prefixes every key with its package name and sends it to datadog,
// or to the debug log when no agent is configured
type Metrics struct {
	pkgName string
	tags    []string
	cli     func() statsCli
}

// New creates a metric client with pkgName as key prefix
func New(pkgName string) Service {
	tags := []string{
		"env:" + env.Or(viper.GetString("env_name"), env.EnvName()),
		"app:" + env.Or(viper.GetString("app_name"), env.AppName()),
	}
	if pod := env.PodName(); pod != "" {
		tags = append(tags, "pod:"+pod)
	}
	cli := func() statsCli { return logClient }
	if viper.GetString("datadog_host") != "" {
		cli = nextDDClient
	}
	return &Metrics{
		pkgName: pkgName,
		tags:    tags,
		cli:     cli,
	}
}

func (mt *Metrics) key(key string) string {
	return mt.pkgName + "." + key
}

func (mt *Metrics) withTags(tags []string) []string {
	if len(tags)%2 != 0 {
		log.Log().WithField("tags", tags).Warn("tag length needs to be multiple of 2")
		tags = tags[:len(tags)-1]
	}
	res := make([]string, 0, len(mt.tags)+len(tags)/2)
	res = append(res, mt.tags...)
	for i := 0; i < len(tags); i += 2 {
		res = append(res, tags[i]+":"+tags[i+1])
	}
	return res
}

func (mt *Metrics) report(fn string, key string, err error) {
	if err != nil {
		log.Log().WithFields(log.Fields{"err": err, "key": key, "func": fn}).Error("Bump fail")
	}
}

func (mt *Metrics) BumpAvg(key string, val float64, tags ...string) {
	mt.report("BumpAvg", key, mt.cli().Gauge(mt.key(key), val, mt.withTags(tags), sampleRate))
}

func (mt *Metrics) BumpSum(key string, val float64, tags ...string) {
	mt.report("BumpSum", key, mt.cli().Count(mt.key(key), int64(val), mt.withTags(tags), sampleRate))
}

func (mt *Metrics) BumpHistogram(key string, val float64, tags ...string) {
	mt.report("BumpHistogram", key, mt.cli().Histogram(mt.key(key), val, mt.withTags(tags), sampleRate))
}

func (mt *Metrics) BumpTime(key string, tags ...string) Ender {
	return &timeTracker{
		start: time.Now(),
		end: func(ms float64) {
			mt.report("BumpTime", key, mt.cli().TimeInMilliseconds(mt.key(key), ms, mt.withTags(tags), sampleRate))
		},
	}
}

type timeTracker struct {
	start time.Time
	end   func(ms float64)
}

func (t *timeTracker) End() {
	d := time.Since(t.start)
	t.end(float64(d) / float64(time.Millisecond))
}

// Key joins components into a metric key
func Key(components ...string) string {
	return strings.Join(components, ".")
}
