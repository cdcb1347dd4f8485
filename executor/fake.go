package executor

import (
	"context"
	"strings"
	"sync"
)

// Call records one invocation seen by Fake.
type Call struct {
	Name string
	Args []string
}

// Fake is an in-memory Executor for tests. Handler decides the outcome of each
// call; a nil Handler succeeds with empty output.
type Fake struct {
	Handler func(name string, args []string) (string, error)

	mu    sync.Mutex
	calls []Call
}

func (f *Fake) Execute(ctx context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	f.calls = append(f.calls, Call{Name: name, Args: append([]string(nil), args...)})
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if f.Handler == nil {
		return "", nil
	}
	return f.Handler(name, args)
}

func (f *Fake) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// ArgAfter returns the argument following flag, or "".
func (c Call) ArgAfter(flag string) string {
	for i, a := range c.Args {
		if a == flag && i+1 < len(c.Args) {
			return c.Args[i+1]
		}
	}
	return ""
}

func (c Call) String() string {
	return c.Name + " " + strings.Join(c.Args, " ")
}
