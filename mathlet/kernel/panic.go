package kernel

import (
	"fmt"
	"runtime/debug"
	"sync"
)

// PanicInfo describes a task that panicked.
type PanicInfo struct {
	TaskID TaskID
	Task   string // dynamic type of the Task, e.g. "*portrait.Task"
	Value  any
	Stack  []byte
}

func (p PanicInfo) String() string {
	return fmt.Sprintf("task %d (%s) panicked: %v", p.TaskID, p.Task, p.Value)
}

// The first panic wins; later ones are dropped because the widget is
// already disabled by then.
var panics struct {
	mu      sync.Mutex
	handler func(PanicInfo)
	first   *PanicInfo
}

// SetPanicHandler installs the process-wide handler for task panics. If a
// task already panicked, fn is called with that panic right away.
func SetPanicHandler(fn func(PanicInfo)) {
	panics.mu.Lock()
	panics.handler = fn
	first := panics.first
	panics.mu.Unlock()
	if fn != nil && first != nil {
		fn(*first)
	}
}

// Panicked returns the first recorded task panic.
func Panicked() (PanicInfo, bool) {
	panics.mu.Lock()
	defer panics.mu.Unlock()
	if panics.first == nil {
		return PanicInfo{}, false
	}
	return *panics.first, true
}

// recoverTask must be deferred directly by the task goroutine.
func recoverTask(id TaskID, t Task) {
	v := recover()
	if v == nil {
		return
	}
	info := PanicInfo{TaskID: id, Task: fmt.Sprintf("%T", t), Value: v, Stack: debug.Stack()}

	panics.mu.Lock()
	if panics.first != nil {
		panics.mu.Unlock()
		return
	}
	panics.first = &info
	fn := panics.handler
	panics.mu.Unlock()

	if fn != nil {
		fn(info)
	}
}

func resetPanicsForTest() {
	panics.mu.Lock()
	panics.handler = nil
	panics.first = nil
	panics.mu.Unlock()
}
