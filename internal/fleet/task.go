package fleet

// Task is a handle to one attack running on its own goroutine.
// The goroutine always finishes; Wait blocks until it has.
type Task struct {
	done chan struct{}
	shot Shot
	err  error
}

func startTask(fn func() (Shot, error)) *Task {
	t := &Task{done: make(chan struct{})}
	go func() {
		defer close(t.done)
		t.shot, t.err = fn()
	}()
	return t
}

// Done is closed once the attack has resolved.
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the attack resolves and returns its outcome.
func (t *Task) Wait() (Shot, error) {
	<-t.done
	return t.shot, t.err
}
