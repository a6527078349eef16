package orchestrator

import (
	"github.com/osintdeck/osintdeck/internal/model"
	"github.com/osintdeck/osintdeck/internal/provider"
)

// Plan is the resolved execution plan for one request: the provider
// units that will run. Each unit emits independently; the aggregator
// counts their terminal outcomes against len(Units).
type Plan struct {
	Request model.SearchRequest
	Units   []provider.Provider
}

// BuildPlan resolves a request's topic to its provider set. It returns
// ErrUnknownTopic when nothing serves the topic.
func BuildPlan(registry *provider.Registry, req model.SearchRequest) (Plan, error) {
	units := registry.ForTopic(req.Topic)
	if len(units) == 0 {
		return Plan{}, ErrUnknownTopic
	}
	return Plan{Request: req, Units: units}, nil
}
