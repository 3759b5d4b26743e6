package strategy

import (
	"github.com/seantiz/linebench/internal/isolate"
	"github.com/seantiz/linebench/internal/model"
)

// Options configures the built-in strategies.
type Options struct {
	// PoolSize is the number of workers of the bounded pool.
	PoolSize int
	// Spawner starts the workers of the isolates strategy. Nil means actors.
	Spawner isolate.Spawner
}

// NewDefaultRegistry registers every built-in strategy in the order of
// model.DefaultStrategies.
func NewDefaultRegistry(opts Options) *Registry {
	spawner := opts.Spawner
	if spawner == nil {
		spawner = isolate.ActorSpawner{}
	}

	reg := NewRegistry()
	reg.Register(model.StrategySequential, Sequential{})
	reg.Register(model.StrategyThreads, Threads{})
	reg.Register(model.StrategyFibers, Fibers{})
	reg.Register(model.StrategyAsync, Async{})
	reg.Register(model.StrategyIsolates, NewIsolates(spawner))
	reg.Register(model.StrategyPool, NewPool(opts.PoolSize))
	return reg
}
