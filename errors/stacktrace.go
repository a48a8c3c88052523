package errors

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/pkg/errors"
)

// stackTrace returns the first found stack trace frame carried by given error
// or any wrapped error. It returns nil if no stack trace is found.
func stackTrace(err error) errors.StackTrace {
	type stackTracer interface {
		StackTrace() errors.StackTrace
	}

	for {
		if st, ok := err.(stackTracer); ok {
			return st.StackTrace()
		}

		if c, ok := err.(causer); ok {
			err = c.Cause()
		} else {
			return nil
		}
	}
}

// Format works like pkg/errors, with additions.
// %s is just the error message
// %+v is the full stack trace
// %v appends a compressed [filename:line] where the error was created
//
// Inspired by https://github.com/pkg/errors/blob/v0.8.1/errors.go#L162-L176
func (e *wrappedError) Format(s fmt.State, verb rune) {
	// normal output here....
	if verb != 'v' {
		fmt.Fprint(s, e.Error())
		return
	}
	// work with the stack trace... whole or part
	stack := trimInternal(stackTrace(e))
	if s.Flag('+') {
		fmt.Fprintf(s, "%+v\n", stack)
		fmt.Fprint(s, e.Error())
	} else {
		fmt.Fprint(s, e.Error())
		fmt.Fprint(s, writeSimpleFrame(stack))
	}
}

// trimInternal removes the frames of this package, so the trace starts where
// the error was created.
func trimInternal(st errors.StackTrace) errors.StackTrace {
	for len(st) > 0 && isWrapper(st[0]) {
		st = st[1:]
	}
	// trim out outer wrappers (runtime and testing)
	for len(st) > 0 && matchesFile(st[len(st)-1], "runtime/", "src/testing/") {
		st = st[:len(st)-1]
	}
	return st
}

// isWrapper returns true if given frame belongs to one of the wrapping
// functions of this package.
func isWrapper(f errors.Frame) bool {
	fn := runtime.FuncForPC(uintptr(f) - 1)
	if fn == nil {
		return false
	}
	name := fn.Name()
	const pkg = "github.com/iov-one/msig/errors."
	if !strings.HasPrefix(name, pkg) {
		return false
	}
	return !strings.HasPrefix(name[len(pkg):], "Test")
}

func matchesFile(f errors.Frame, substrs ...string) bool {
	file, _ := fileLine(f)
	for _, sub := range substrs {
		if strings.Contains(file, sub) {
			return true
		}
	}
	return false
}

func fileLine(f errors.Frame) (string, int) {
	// this looks a bit like magic, but follows the pkg/errors frame logic
	pc := uintptr(f) - 1
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "unknown", 0
	}
	return fn.FileLine(pc)
}

func writeSimpleFrame(st errors.StackTrace) string {
	if len(st) == 0 {
		return ""
	}
	file, line := fileLine(st[0])
	if idx := strings.LastIndex(file, "/"); idx >= 0 {
		file = file[idx+1:]
	}
	return fmt.Sprintf(" [%s:%d]", file, line)
}
