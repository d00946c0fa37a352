package sim

// TimeTeller can be used to get the current time.
type TimeTeller interface {
	CurrentTime() VTimeInSec
}

// EventScheduler can be used to schedule future events.
type EventScheduler interface {
	Schedule(e Event)
}

// A RunEndHandler is a handler that is called after all scheduled events are
// drained.
type RunEndHandler interface {
	Handle(now VTimeInSec)
}

// An Engine is a unit that keeps the virtual-time scan run progressing.
type Engine interface {
	Hookable
	TimeTeller
	EventScheduler

	// Run will process all the events until the run finishes
	Run() error

	// Pause will pause the run until Continue is called.
	Pause()

	// Continue will continue the paused run
	Continue()

	// RegisterRunEndHandler registers a handler that performs some actions
	// after the run is finished.
	RegisterRunEndHandler(handler RunEndHandler)

	// Finished invokes all the registered RunEndHandler
	Finished()
}
