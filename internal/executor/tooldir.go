package executor

import (
	"errors"
	"fmt"
	"path/filepath"
	"reflect"
	"runtime"
)

// ToolDir returns the directory of the source file that defines v, which
// must be a function or a value whose type has at least one method.
// Paths are the ones recorded at build time.
func ToolDir(v any) (string, error) {
	if v == nil {
		return "", errors.New("executor: tool dir of nil")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.Func {
		return sourceDir(rv.Pointer())
	}

	types := []reflect.Type{rv.Type()}
	if rv.Kind() == reflect.Pointer {
		types = append(types, rv.Type().Elem())
	} else {
		types = append(types, reflect.PointerTo(rv.Type()))
	}

	for _, t := range types {
		if t.NumMethod() == 0 {
			continue
		}
		dir, err := sourceDir(t.Method(0).Func.Pointer())
		if err == nil {
			return dir, nil
		}
	}
	return "", fmt.Errorf("executor: cannot locate source of %T", v)
}

func sourceDir(pc uintptr) (string, error) {
	fn := runtime.FuncForPC(pc)
	if fn == nil {
		return "", errors.New("executor: no symbol")
	}

	file, _ := fn.FileLine(fn.Entry())
	// Compiler-generated wrappers carry no real file.
	if file == "" || file == "<autogenerated>" {
		return "", errors.New("executor: generated symbol")
	}

	abs, err := filepath.Abs(file)
	if err != nil {
		return "", fmt.Errorf("executor: resolve %s: %w", file, err)
	}
	return filepath.Dir(abs), nil
}
