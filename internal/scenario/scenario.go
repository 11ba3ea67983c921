// Package scenario loads simulator task sets from YAML. A scenario names
// the tasks to spawn, their priorities and behaviors, and the shared
// primitives (one mutex or semaphore per group) the behaviors contend on.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v2"

	"keel/kernel"
)

// Behaviors a scenario task can run.
const (
	BehaviorSpin     = "spin"     // burn CPU, yield each lap
	BehaviorSleeper  = "sleeper"  // sleep period ticks per lap
	BehaviorPingPong = "pingpong" // hold the group mutex, yield inside
	BehaviorProducer = "producer" // signal the group semaphore, sleep period
	BehaviorConsumer = "consumer" // wait on the group semaphore
)

// Task describes one task to spawn.
type Task struct {
	Name     string `yaml:"name"`
	Priority string `yaml:"priority"` // critical|normal|low, default normal
	Behavior string `yaml:"behavior"`
	Period   uint64 `yaml:"period"` // ticks, for sleeper/producer
	Group    string `yaml:"group"`  // shared-primitive group for pingpong/producer/consumer
	Stack    int    `yaml:"stack"`  // bytes, 0 = kernel minimum
}

// Scenario is a whole simulator run.
type Scenario struct {
	Hz         int    `yaml:"hz"`          // tick rate, default 100
	Ticks      uint64 `yaml:"ticks"`       // stop after N ticks, 0 = run forever
	SliceTicks uint32 `yaml:"slice_ticks"` // round-robin slice, 0 = kernel default
	ArenaKB    int    `yaml:"arena_kb"`    // stack arena size, default 64
	Tasks      []Task `yaml:"tasks"`
}

// Load reads and validates a scenario file.
func Load(path string) (*Scenario, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	return Parse(raw)
}

// Parse validates a YAML scenario document.
func Parse(raw []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.UnmarshalStrict(raw, &sc); err != nil {
		return nil, fmt.Errorf("scenario: %w", err)
	}
	if sc.Hz == 0 {
		sc.Hz = 100
	}
	if sc.ArenaKB == 0 {
		sc.ArenaKB = 64
	}
	if len(sc.Tasks) == 0 {
		return nil, fmt.Errorf("scenario: no tasks")
	}
	for i := range sc.Tasks {
		t := &sc.Tasks[i]
		if t.Name == "" {
			t.Name = fmt.Sprintf("task%d", i)
		}
		if _, err := t.Prio(); err != nil {
			return nil, err
		}
		switch t.Behavior {
		case BehaviorSpin:
		case BehaviorSleeper, BehaviorProducer:
			if t.Period == 0 {
				t.Period = 10
			}
		case BehaviorPingPong, BehaviorConsumer:
			if t.Group == "" {
				return nil, fmt.Errorf("scenario: task %q: behavior %q needs a group", t.Name, t.Behavior)
			}
		default:
			return nil, fmt.Errorf("scenario: task %q: unknown behavior %q", t.Name, t.Behavior)
		}
		if t.Behavior == BehaviorProducer && t.Group == "" {
			return nil, fmt.Errorf("scenario: task %q: behavior %q needs a group", t.Name, t.Behavior)
		}
	}
	return &sc, nil
}

// Prio maps the YAML priority name to a kernel priority.
func (t *Task) Prio() (kernel.Priority, error) {
	switch t.Priority {
	case "", "normal":
		return kernel.PriorityNormal, nil
	case "critical":
		return kernel.PriorityCritical, nil
	case "low":
		return kernel.PriorityLow, nil
	default:
		return 0, fmt.Errorf("scenario: task %q: unknown priority %q", t.Name, t.Priority)
	}
}

// Default is the built-in demo used when no scenario file is given: a
// high-priority blinker, two time-sliced workers fighting over a mutex,
// and a producer/consumer pair on a semaphore.
func Default() *Scenario {
	return &Scenario{
		Hz:      100,
		ArenaKB: 64,
		Tasks: []Task{
			{Name: "blinker", Priority: "critical", Behavior: BehaviorSleeper, Period: 25},
			{Name: "ping", Behavior: BehaviorPingPong, Group: "lock"},
			{Name: "pong", Behavior: BehaviorPingPong, Group: "lock"},
			{Name: "producer", Behavior: BehaviorProducer, Group: "queue", Period: 7},
			{Name: "consumer", Behavior: BehaviorConsumer, Group: "queue"},
			{Name: "grind", Priority: "low", Behavior: BehaviorSpin},
		},
	}
}
