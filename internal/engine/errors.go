package engine

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/dop251/goja"

	"unlatex/internal/errs"
)

// frameLocation matches "at fn (file:line:col(pc))" and "at file:line:col(pc)".
var frameLocation = regexp.MustCompile(`at (?:[^(\n]*\()?([^\s()]+):(\d+):\d+`)

// fromEngine maps a goja failure onto the error taxonomy.
func fromEngine(err error) error {
	if err == nil {
		return nil
	}
	var own *errs.Error
	if errors.As(err, &own) {
		return err
	}
	var ex *goja.Exception
	if errors.As(err, &ex) {
		return fromException(ex)
	}
	var overflow *goja.StackOverflowError
	if errors.As(err, &overflow) {
		return overflowException(overflow)
	}
	var interrupted *goja.InterruptedError
	if errors.As(err, &interrupted) {
		e := fromException(&interrupted.Exception)
		if interrupted.Value() == nil {
			e.Message = "execution interrupted"
		}
		e.Cause = interrupted
		return e
	}
	return errs.Wrap(errs.Unknown, "engine failure", err)
}

func fromException(ex *goja.Exception) *errs.Error {
	message := ""
	full := ex.String()
	stack := full
	if v := ex.Value(); v != nil {
		message = v.String()
		stack = strings.TrimPrefix(full, message)
	}
	stack = strings.TrimSpace(stack)

	file, line := "", 0
	if m := frameLocation.FindStringSubmatch(stack); m != nil {
		file = m[1]
		line, _ = strconv.Atoi(m[2])
	}

	e := errs.NewException(message, file, line, stack)
	e.Cause = ex
	return e
}

// overflowException reports the call-depth ceiling being hit. goja raises it
// without a JavaScript value, so the message is fixed.
func overflowException(so *goja.StackOverflowError) *errs.Error {
	e := fromException(&so.Exception)
	e.Message = "RangeError: Maximum call stack size exceeded"
	e.Cause = so
	return e
}

// fromPanic converts a value recovered while reading engine objects.
func fromPanic(r any) error {
	switch v := r.(type) {
	case *goja.Exception:
		return fromException(v)
	case *goja.StackOverflowError:
		return overflowException(v)
	case error:
		return fromEngine(v)
	default:
		return errs.Wrap(errs.Unknown, "engine panic", fmt.Errorf("%v", v))
	}
}
