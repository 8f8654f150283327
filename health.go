package kiln

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"
)

type HealthStatus string

const (
	HealthStatusUp      HealthStatus = "up"
	HealthStatusDown    HealthStatus = "down"
	HealthStatusUnknown HealthStatus = "unknown"
)

type HealthReport struct {
	Name    string
	Status  HealthStatus
	Error   error
	Latency time.Duration
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type ReadinessChecker interface {
	ReadinessCheck(ctx context.Context) error
}

// Live returns an error for the first HealthChecker that reports down.
func (c *Container) Live(ctx context.Context) error {
	return firstDown(c.Health(ctx))
}

// Ready returns an error for the first ReadinessChecker that reports down.
func (c *Container) Ready(ctx context.Context) error {
	return firstDown(c.Readiness(ctx))
}

// Health probes every instance implementing HealthChecker concurrently.
// Reports are returned in graph order.
func (c *Container) Health(ctx context.Context) []HealthReport {
	return c.probe(ctx, func(instance any) (func(context.Context) error, bool) {
		hc, ok := instance.(HealthChecker)
		if !ok {
			return nil, false
		}
		return hc.HealthCheck, true
	})
}

func (c *Container) Readiness(ctx context.Context) []HealthReport {
	return c.probe(ctx, func(instance any) (func(context.Context) error, bool) {
		rc, ok := instance.(ReadinessChecker)
		if !ok {
			return nil, false
		}
		return rc.ReadinessCheck, true
	})
}

func (c *Container) probe(
	ctx context.Context,
	checkerOf func(instance any) (func(context.Context) error, bool),
) []HealthReport {
	nodes := c.Nodes()
	slots := make([]*HealthReport, len(nodes))

	var g errgroup.Group
	for i, node := range nodes {
		check, ok := checkerOf(node.Instance)
		if !ok {
			continue
		}

		g.Go(func() error {
			start := time.Now()
			err := check(ctx)

			report := &HealthReport{
				Name:    node.ID,
				Status:  HealthStatusUp,
				Latency: time.Since(start),
			}
			if err != nil {
				report.Status = HealthStatusDown
				report.Error = err
			}
			slots[i] = report
			return nil
		})
	}
	_ = g.Wait()

	reports := make([]HealthReport, 0, len(slots))
	for _, r := range slots {
		if r == nil {
			continue
		}
		if r.Status == HealthStatusDown {
			c.logger.Warn("health check failed", "service", r.Name, "error", r.Error)
		}
		reports = append(reports, *r)
	}
	return reports
}

func firstDown(reports []HealthReport) error {
	for _, r := range reports {
		if r.Status == HealthStatusDown {
			return errHealthCheckFailed(r.Name, r.Error)
		}
	}
	return nil
}
