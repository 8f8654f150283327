package benchmark

import (
	"fmt"

	"github.com/samber/do/v2"
	"go.uber.org/dig"
	"go.uber.org/fx"

	"github.com/danpasecinic/kiln"
)

type Config struct {
	Host string
	Port int
}

type Logger struct {
	Level string
}

type Database struct {
	Config *Config
	Logger *Logger
}

type Cache struct {
	Logger *Logger
}

type Repository struct {
	DB    *Database
	Cache *Cache
}

type Service struct {
	Repo   *Repository
	Logger *Logger
}

// Plain constructors shared by the reflection-based containers.
var chainConstructors = []any{
	func() *Config { return &Config{Host: "localhost", Port: 8080} },
	func() *Logger { return &Logger{Level: "info"} },
	func(cfg *Config, log *Logger) *Database { return &Database{Config: cfg, Logger: log} },
	func(log *Logger) *Cache { return &Cache{Logger: log} },
	func(db *Database, cache *Cache) *Repository { return &Repository{DB: db, Cache: cache} },
	func(repo *Repository, log *Logger) *Service { return &Service{Repo: repo, Logger: log} },
}

func kilnChain() []any {
	return []any{
		kiln.Instance(&Config{Host: "localhost", Port: 8080}),
		kiln.Instance(&Logger{Level: "info"}),
		kiln.Class[*Database](chainConstructors[2], kiln.TypeOf[*Config](), kiln.TypeOf[*Logger]()),
		kiln.Class[*Cache](chainConstructors[3], kiln.TypeOf[*Logger]()),
		kiln.Class[*Repository](chainConstructors[4], kiln.TypeOf[*Database](), kiln.TypeOf[*Cache]()),
		kiln.Class[*Service](chainConstructors[5], kiln.TypeOf[*Repository](), kiln.TypeOf[*Logger]()),
	}
}

func doChain() do.Injector {
	injector := do.New()
	do.ProvideValue(injector, &Config{Host: "localhost", Port: 8080})
	do.ProvideValue(injector, &Logger{Level: "info"})
	do.Provide(injector, func(i do.Injector) (*Database, error) {
		return &Database{Config: do.MustInvoke[*Config](i), Logger: do.MustInvoke[*Logger](i)}, nil
	})
	do.Provide(injector, func(i do.Injector) (*Cache, error) {
		return &Cache{Logger: do.MustInvoke[*Logger](i)}, nil
	})
	do.Provide(injector, func(i do.Injector) (*Repository, error) {
		return &Repository{DB: do.MustInvoke[*Database](i), Cache: do.MustInvoke[*Cache](i)}, nil
	})
	do.Provide(injector, func(i do.Injector) (*Service, error) {
		return &Service{Repo: do.MustInvoke[*Repository](i), Logger: do.MustInvoke[*Logger](i)}, nil
	})
	return injector
}

func digChain() *dig.Container {
	c := dig.New()
	for _, ctor := range chainConstructors {
		_ = c.Provide(ctor)
	}
	return c
}

func fxChain(extra ...fx.Option) []fx.Option {
	opts := []fx.Option{fx.NopLogger}
	for _, ctor := range chainConstructors {
		opts = append(opts, fx.Provide(ctor))
	}
	return append(opts, extra...)
}

func serviceName(i int) string {
	return fmt.Sprintf("svc_%d", i)
}
