package harness

import (
	"fmt"
	"strings"
)

// failNow unwinds a check after a fatal assertion.
type failNow struct{}

// T collects the assertion failures of one check. It satisfies
// require.TestingT, so checks use testify assertions.
type T struct {
	name     string
	failures []string
	skip     string
}

func newT(name string) *T {
	return &T{name: name}
}

// Name returns the check name.
func (t *T) Name() string { return t.name }

// Errorf records a failure and lets the check continue.
func (t *T) Errorf(format string, args ...interface{}) {
	t.failures = append(t.failures, strings.TrimSpace(fmt.Sprintf(format, args...)))
}

// FailNow stops the check.
func (t *T) FailNow() {
	panic(failNow{})
}

// Skip marks the check skipped and stops it.
func (t *T) Skip(reason string) {
	t.skip = reason
	panic(failNow{})
}

// Failed reports whether any assertion failed.
func (t *T) Failed() bool { return len(t.failures) > 0 }

// Skipped reports whether the check was skipped.
func (t *T) Skipped() bool { return t.skip != "" }

func (t *T) err() error {
	if !t.Failed() {
		return nil
	}
	return fmt.Errorf("%s", strings.Join(t.failures, "\n"))
}

// run executes fn and converts panics into failures.
func (t *T) run(fn func()) {
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(failNow); !ok {
				t.Errorf("panic: %v", r)
			}
		}
	}()
	fn()
}
