package provider

import (
	"github.com/osintdeck/osintdeck/internal/model"
)

// Registry maps topics to their provider sets.
//
// Design decision: The registry is built explicitly at startup rather
// than populated by package init side effects. Wiring is visible in one
// place, tests can build registries with fakes, and an adapter can be
// left out (e.g. google when the external collaborator is missing)
// without touching the adapter code.
type Registry struct {
	byTopic map[model.Topic][]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byTopic: make(map[model.Topic][]Provider)}
}

// Register adds a provider under its own topic. Registration order is
// preserved per topic.
func (r *Registry) Register(p Provider) {
	topic := p.Topic()
	r.byTopic[topic] = append(r.byTopic[topic], p)
}

// ForTopic returns the providers serving a topic, in registration order.
// The returned slice is shared; callers must not mutate it.
func (r *Registry) ForTopic(topic model.Topic) []Provider {
	return r.byTopic[topic]
}

// Topics returns the topics that have at least one provider, in the
// model package's stable topic order.
func (r *Registry) Topics() []model.Topic {
	var topics []model.Topic
	for _, t := range model.Topics() {
		if len(r.byTopic[t]) > 0 {
			topics = append(topics, t)
		}
	}
	return topics
}

// Inventory returns topic -> provider names for health reporting.
func (r *Registry) Inventory() map[string][]string {
	inv := make(map[string][]string, len(r.byTopic))
	for topic, providers := range r.byTopic {
		names := make([]string, 0, len(providers))
		for _, p := range providers {
			names = append(names, p.Name())
		}
		inv[topic.String()] = names
	}
	return inv
}
