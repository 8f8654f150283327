// Package kiln is a dependency injection runtime that builds every provider
// once, in dependency order, and then drives init and destroy hooks over the
// resulting graph.
//
// # Quick Start
//
// Declare providers, register them on a builder and build the container:
//
//	type Config struct{ Port int }
//	type Server struct{ cfg *Config }
//
//	func NewServer(cfg *Config) *Server { return &Server{cfg: cfg} }
//
//	b := kiln.New()
//	err := b.Register(
//	    kiln.Instance(&Config{Port: 8080}),
//	    kiln.Class[*Server](NewServer, kiln.TypeOf[*Config]()),
//	)
//	c, err := b.Build(ctx)
//	srv, err := kiln.Invoke[*Server](c)
//
// # Tokens
//
// Every provider is keyed by a token. TypeOf[T] keys by the Go type and
// NewToken[T] keys by name:
//
//	var Primary = kiln.NewToken[*sql.DB]("db.primary")
//
//	kiln.Factory(Primary, openPrimary, kiln.TypeOf[*Config]())
//	db, err := kiln.Get(c, Primary)
//
// # Providers
//
// There are three kinds of provider:
//
//	kiln.Class[*Server](NewServer, deps...)   // constructor called with deps
//	kiln.Value(token, v)                      // existing value
//	kiln.Factory(token, fn, deps...)          // fn(ctx, args), may block
//
// Dependencies are passed positionally in the order they are declared.
//
// # Lifecycle
//
// Class providers can declare hooks, either as functions or by method name:
//
//	kiln.Class[*Server](NewServer, kiln.TypeOf[*Config]()).
//	    OnInit((*Server).Listen).
//	    OnDestroyMethod("Shutdown")
//
//	c.Init(ctx)     // dependencies first
//	c.Destroy(ctx)  // dependents first
//	c.Run(ctx)      // Init, wait for a signal, Destroy
//
// A hook error stops the pass and is returned unchanged.
//
// # Modules
//
// Modules group providers, load their imports first and are loaded once per
// builder no matter how often they are registered:
//
//	var Storage = kiln.NewModule("storage").
//	    Provide(kiln.Class[*Repo](NewRepo, kiln.TypeOf[*sql.DB]())).
//	    Export(kiln.TypeOf[*Repo]())
//
//	var App = kiln.NewModule("app").Import(Storage)
//
// ProvideFunc computes providers during Build, before anything is
// instantiated.
//
// # Inspection
//
// The built graph can be traversed, exported as JSON or printed:
//
//	c.Traverse(fn, kiln.WithDirection(kiln.ReverseTopological))
//	data, err := c.ToJSON()
//	c.PrintGraph()
//	c.PrintGraphDOT()
//
// # Health Checks
//
// Instances implementing HealthChecker or ReadinessChecker are probed
// concurrently:
//
//	err := c.Live(ctx)
//	err := c.Ready(ctx)
//	reports := c.Health(ctx)
//
// # Observers
//
// Observers receive per-provider timings for metrics integration:
//
//	b := kiln.New(
//	    kiln.WithProvideObserver(func(key string, d time.Duration, err error) {
//	        metrics.RecordProvide(key, d, err)
//	    }),
//	    kiln.WithInitObserver(recordInit),
//	    kiln.WithDestroyObserver(recordDestroy),
//	)
package kiln
