package autocompare

import (
	"fmt"
	"reflect"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// CompiledComparer compares two values of T and returns every difference
// between them. Either side may be nil: a nil old value reports every member
// of new as added, a nil new value reports every member of old as removed
type CompiledComparer[T any] func(old, new *T) []*Difference

// Engine configures, builds and caches comparers. An Engine is safe for
// concurrent use once configuration is done. Configuration is expected to
// happen during setup, before comparisons of the configured type begin
type Engine struct {
	log logrus.FieldLogger

	mu       sync.RWMutex
	configs  map[reflect.Type]*TypeConfiguration
	compiled map[reflect.Type]*comparer

	// builds coalesces concurrent first builds of the same type
	builds singleflight.Group
}

// Option is a function that adjusts an engine, zero or more Options can be
// passed to New
type Option func(e *Engine)

// OptionLogger sets the logger build events are reported to. defaults to the
// logrus standard logger
func OptionLogger(l logrus.FieldLogger) Option {
	return func(e *Engine) {
		e.log = l
	}
}

// New creates an engine with no configured or compiled types
func New(opts ...Option) *Engine {
	e := &Engine{
		log:      logrus.StandardLogger(),
		configs:  map[reflect.Type]*TypeConfiguration{},
		compiled: map[reflect.Type]*comparer{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Compare compares two values of T, building T's comparer on first use.
// Only building can fail: errors always describe a problem with T or its
// configuration
func Compare[T any](e *Engine, old, new *T) ([]*Difference, error) {
	c, err := e.comparerFor(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return c.compare(structValue(old), structValue(new)), nil
}

// Get returns T's comparer, building it if needed. Callers comparing the
// same type in a loop can hold on to the result to skip the cache lookup
func Get[T any](e *Engine) (CompiledComparer[T], error) {
	c, err := e.comparerFor(reflect.TypeFor[T]())
	if err != nil {
		return nil, err
	}
	return func(old, new *T) []*Difference {
		return c.compare(structValue(old), structValue(new))
	}, nil
}

func structValue[T any](v *T) reflect.Value {
	if v == nil {
		return reflect.Value{}
	}
	return reflect.ValueOf(v).Elem()
}

// IsTypeCompiled reports whether a comparer for t has been built
func (e *Engine) IsTypeCompiled(t reflect.Type) bool {
	_, ok := e.lookup(t)
	return ok
}

// IsTypeConfigured reports whether t has a configuration
func (e *Engine) IsTypeConfigured(t reflect.Type) bool {
	e.mu.RLock()
	defer e.mu.RUnlock()
	_, ok := e.configs[t]
	return ok
}

// configure applies fn to t's configuration, creating it if necessary
func (e *Engine) configure(t reflect.Type, fn func(*TypeConfiguration)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	cfg, ok := e.configs[t]
	if !ok {
		cfg = newTypeConfiguration(t)
		e.configs[t] = cfg
	}
	fn(cfg)
}

// configFor returns a copy of t's configuration, or an empty one
func (e *Engine) configFor(t reflect.Type) *TypeConfiguration {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if cfg, ok := e.configs[t]; ok {
		return cfg.clone()
	}
	return newTypeConfiguration(t)
}

func (e *Engine) lookup(t reflect.Type) (*comparer, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	c, ok := e.compiled[t]
	return c, ok
}

// comparerFor returns the published comparer for t, building it once. a
// failed build is not remembered, the next call builds again
func (e *Engine) comparerFor(t reflect.Type) (*comparer, error) {
	if c, ok := e.lookup(t); ok {
		return c, nil
	}

	v, err, shared := e.builds.Do(buildKey(t), func() (interface{}, error) {
		if c, ok := e.lookup(t); ok {
			return c, nil
		}

		start := time.Now()
		b := newBuilder(e)
		c, err := b.comparerFor(t)
		if err != nil {
			e.log.WithError(err).WithField("type", t.String()).Warn("building comparer failed")
			return nil, err
		}

		c = e.publish(t, b.session)
		e.log.WithFields(logrus.Fields{
			"type":    t.String(),
			"members": len(c.members),
			"types":   len(b.session),
			"elapsed": time.Since(start),
		}).Debug("built comparer")
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	if shared {
		e.log.WithFields(logrus.Fields{"type": t.String(), "shared": true}).Debug("joined comparer build")
	}
	return v.(*comparer), nil
}

// publish stores every comparer of a build session. a type published by a
// concurrent session wins, keeping one comparer per type visible to callers
func (e *Engine) publish(t reflect.Type, session map[reflect.Type]*comparer) *comparer {
	e.mu.Lock()
	defer e.mu.Unlock()
	for st, c := range session {
		if _, ok := e.compiled[st]; !ok {
			e.compiled[st] = c
		}
	}
	return e.compiled[t]
}

// buildKey identifies a type for build coalescing. type names alone aren't
// unique across packages, the runtime type pointer is
func buildKey(t reflect.Type) string {
	return fmt.Sprintf("%s@%p", t, t)
}
