package queue_entities

// QueueConfig is the durable configuration for one named queue:
// its format, its matching constraints, and scheduling metadata the
// Runner uses to order and budget ticks across queues. Loadable from
// YAML via gopkg.in/yaml.v3 (ambient configuration stack).
type QueueConfig struct {
	Name                string           `yaml:"name"`
	Format              MatchFormat      `yaml:"format"`
	Constraints         MatchConstraints `yaml:"constraints"`
	Priority            int              `yaml:"priority"`
	Enabled             bool             `yaml:"enabled"`
	MaxConcurrentPerTick int             `yaml:"max_concurrent_per_tick"`
}
