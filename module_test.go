package kiln_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danpasecinic/kiln"
)

func TestModule_Name(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "storage", kiln.NewModule("storage").Name())
}

func TestModule_Provide(t *testing.T) {
	t.Parallel()

	module := kiln.NewModule("config").Provide(
		kiln.Instance(&Config{Port: 8080}),
		kiln.Class[*Database](func(cfg *Config) *Database {
			return &Database{Config: cfg, Name: "main"}
		}, kiln.TypeOf[*Config]()),
	)

	b := newTestBuilder()
	require.NoError(t, b.Register(module))
	c := mustBuild(t, b)

	db, err := kiln.Invoke[*Database](c)
	require.NoError(t, err)
	assert.Equal(t, 8080, db.Config.Port)

	node, ok := c.Node(kiln.TypeOf[*Database]())
	require.True(t, ok)
	assert.Equal(t, "config", node.Metadata.Module)
}

func TestModule_ImportsLoadFirst(t *testing.T) {
	t.Parallel()

	base := kiln.NewModule("base").Provide(value("A", 1))
	app := kiln.NewModule("app").
		Provide(factory("B", func() any { return 2 }, "A")).
		Import(base)

	b := newTestBuilder()
	require.NoError(t, b.Register(app))

	assert.Equal(t, []string{"A", "B"}, b.Keys())
}

func TestModule_LoadedOnce(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	shared := kiln.NewModule("shared").
		Provide(value("A", 1)).
		ProvideFunc(func(context.Context) ([]any, error) {
			calls.Add(1)
			return []any{value("lazy", 2)}, nil
		})

	left := kiln.NewModule("left").Import(shared)
	right := kiln.NewModule("right").Import(shared)

	b := newTestBuilder()
	require.NoError(t, b.Register(shared, left, right))
	require.NoError(t, b.Register(shared))

	c := mustBuild(t, b)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, 2, c.Size())
}

func TestModule_ImportCycleTerminates(t *testing.T) {
	t.Parallel()

	a := kiln.NewModule("a").Provide(value("A", 1))
	bMod := kiln.NewModule("b").Provide(value("B", 2))
	a.Import(bMod)
	bMod.Import(a)

	b := newTestBuilder()
	require.NoError(t, b.Register(a))
	assert.ElementsMatch(t, []string{"A", "B"}, b.Keys())
}

func TestModule_ProvideFuncRunsDuringBuild(t *testing.T) {
	t.Parallel()

	var ran atomic.Bool
	module := kiln.NewModule("deferred").ProvideFunc(func(context.Context) ([]any, error) {
		ran.Store(true)
		return []any{
			factory("B", func() any { return "b" }, "A"),
		}, nil
	})

	b := newTestBuilder()
	require.NoError(t, b.Register(module, value("A", "a")))
	assert.False(t, ran.Load())
	assert.False(t, b.Has(kiln.Name("B")))

	c := mustBuild(t, b)
	assert.True(t, ran.Load())

	v, err := c.Get(kiln.Name("B"))
	require.NoError(t, err)
	assert.Equal(t, "b", v)

	node, ok := c.Node(kiln.Name("B"))
	require.True(t, ok)
	assert.Equal(t, "deferred", node.Metadata.Module)
}

func TestModule_ProvideFuncError(t *testing.T) {
	t.Parallel()

	errLoad := errors.New("remote config unavailable")
	module := kiln.NewModule("remote").ProvideFunc(func(context.Context) ([]any, error) {
		return nil, errLoad
	})

	b := newTestBuilder()
	require.NoError(t, b.Register(module))

	_, err := b.Build(context.Background())
	require.Error(t, err)
	assert.True(t, kiln.IsModuleApplyFailed(err))
	assert.ErrorIs(t, err, errLoad)
	assert.Contains(t, err.Error(), "remote")
}

func TestModule_ProvideFuncDuplicate(t *testing.T) {
	t.Parallel()

	module := kiln.NewModule("dup").ProvideFunc(func(context.Context) ([]any, error) {
		return []any{value("A", 2)}, nil
	})

	b := newTestBuilder()
	require.NoError(t, b.Register(value("A", 1), module))

	_, err := b.Build(context.Background())
	assert.True(t, kiln.IsDuplicateService(err))
}

func TestModule_ProvideFuncInvalidItem(t *testing.T) {
	t.Parallel()

	module := kiln.NewModule("bad").ProvideFunc(func(context.Context) ([]any, error) {
		return []any{NewServer}, nil
	})

	b := newTestBuilder()
	require.NoError(t, b.Register(module))

	_, err := b.Build(context.Background())
	assert.True(t, kiln.IsInvalidDeclaration(err))
}

func TestModule_Exports(t *testing.T) {
	t.Parallel()

	storage := kiln.NewModule("storage").
		Provide(value("db", 1), value("pool", 2)).
		Export(kiln.Name("db"))

	b := newTestBuilder()
	require.NoError(t, b.Register(storage, value("app", 3)))
	c := mustBuild(t, b)

	db, _ := c.Node(kiln.Name("db"))
	pool, _ := c.Node(kiln.Name("pool"))
	app, _ := c.Node(kiln.Name("app"))

	assert.True(t, db.Metadata.Exported)
	assert.False(t, pool.Metadata.Exported)
	assert.Equal(t, kiln.Metadata{}, app.Metadata)
}

func TestModule_ExportsDoNotGateResolution(t *testing.T) {
	t.Parallel()

	internal := kiln.NewModule("internal").Provide(value("secret", 42))
	b := newTestBuilder()
	require.NoError(t, b.Register(
		internal,
		factory("consumer", func() any { return "ok" }, "secret"),
	))

	_, err := b.Build(context.Background())
	assert.NoError(t, err)
}

func TestModule_InvalidItems(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		module *kiln.Module
	}{
		{name: "empty name", module: kiln.NewModule("")},
		{name: "bare function", module: kiln.NewModule("m").Provide(NewServer)},
		{name: "nil import", module: kiln.NewModule("m").Import(nil)},
		{name: "nil provider func", module: kiln.NewModule("m").ProvideFunc(nil)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := newTestBuilder().Register(tt.module)
			assert.True(t, kiln.IsInvalidDeclaration(err), "got %v", err)
		})
	}
}
