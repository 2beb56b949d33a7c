package builtins

import (
	"os"

	"github.com/sadderchris/cheshire/internal/interperr"
	"github.com/sadderchris/cheshire/internal/reader"
	"github.com/sadderchris/cheshire/internal/vm"
)

func installSystem(m *vm.VM) {
	define(m, "procedure-arity", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		arity, variadic, _, ok := vm.ProcArity(a[0])
		if !ok {
			return argErr("procedure-arity", "expected a procedure, got %s", a[0].Write())
		}
		n := float64(arity)
		if variadic {
			n = -n - 1 // Scheme convention: negative encodes "at least |n|-1"
		}
		return ret(vm.Number(n))
	})
	define(m, "exit", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		code := 0
		if len(a) > 0 && a[0].Kind == vm.ValNumber {
			code = int(a[0].Num)
		}
		os.Exit(code)
		return ret(vm.Void())
	})
	define(m, "compile", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		src, ok := stringOf(a[0])
		if !ok {
			return argErr("compile", "expected a string, got %s", a[0].Write())
		}
		rd := reader.New("compile", string(src), m.Symtab)
		d, rerr := rd.Read()
		if rerr != nil {
			return vm.Value{}, false, rerr
		}
		fn, err := vm.CompileForm("compile", d, m.Symtab)
		if err != nil {
			return vm.Value{}, false, err
		}
		return ret(vm.Box(fn))
	})
	define(m, "disassemble", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		var fn *vm.Function
		switch o := a[0].Obj.(type) {
		case *vm.Function:
			fn = o
		case *vm.Closure:
			fn = o.Fn
		default:
			return argErr("disassemble", "expected a compiled procedure, got %s", a[0].Write())
		}
		name := fn.Name
		if name == "" {
			name = "<anonymous>"
		}
		out := vm.Disassemble(fn.Chunk, name)
		return ret(vm.ImmString(out))
	})
	define(m, "load", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		path, ok := stringOf(a[0])
		if !ok {
			return argErr("load", "expected a string, got %s", a[0].Write())
		}
		src, rerr := os.ReadFile(string(path))
		if rerr != nil {
			return vm.Value{}, false, interperr.IO(rerr)
		}
		rd := reader.New(string(path), string(src), m.Symtab)
		forms, err := rd.ReadAll()
		if err != nil {
			return vm.Value{}, false, err
		}
		fn, err := vm.Compile(string(path), forms, m.Symtab)
		if err != nil {
			return vm.Value{}, false, err
		}
		res, err := m.CallSync(vm.Box(fn), nil)
		if err != nil {
			return vm.Value{}, false, err
		}
		return ret(res)
	})
}
