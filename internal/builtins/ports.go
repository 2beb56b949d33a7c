package builtins

import (
	"fmt"
	"strings"

	"github.com/sadderchris/cheshire/internal/interperr"
	"github.com/sadderchris/cheshire/internal/reader"
	"github.com/sadderchris/cheshire/internal/vm"
)

func installPorts(m *vm.VM) {
	define(m, "current-output-port", 0, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(m.OutPort)
	})
	define(m, "current-input-port", 0, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(m.InPort)
	})
	define(m, "open-input-string", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		r, ok := stringOf(a[0])
		if !ok {
			return argErr("open-input-string", "expected a string, got %s", a[0].Write())
		}
		return ret(vm.Box(vm.NewReadPort("string", strings.NewReader(string(r)))))
	})
	define(m, "eof-object?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		return ret(vm.Bool(a[0].Kind == vm.ValEof))
	})
	define(m, "input-port?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		_, ok := a[0].Obj.(*vm.ReadPort)
		return ret(vm.Bool(ok))
	})
	define(m, "output-port?", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		_, ok := a[0].Obj.(*vm.WritePort)
		return ret(vm.Bool(ok))
	})
	define(m, "char-ready?", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		p, aerr := inPortOf(m, a, "char-ready?")
		if aerr != nil {
			return vm.Value{}, false, aerr
		}
		return ret(vm.Bool(p.Ready()))
	})
	define(m, "close-port", 1, false, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		switch p := a[0].Obj.(type) {
		case *vm.ReadPort:
			if err := p.Close(); err != nil {
				return vm.Value{}, false, interperr.IO(err)
			}
		}
		return ret(vm.Void())
	})

	define(m, "read-char", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		p, aerr := inPortOf(m, a, "read-char")
		if aerr != nil {
			return vm.Value{}, false, aerr
		}
		r, eof, rerr := p.ReadRune()
		if rerr != nil {
			return vm.Value{}, false, interperr.IO(rerr)
		}
		if eof {
			return ret(vm.Eof())
		}
		return ret(vm.Char(r))
	})
	define(m, "peek-char", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		p, aerr := inPortOf(m, a, "peek-char")
		if aerr != nil {
			return vm.Value{}, false, aerr
		}
		r, eof, rerr := p.PeekRune()
		if rerr != nil {
			return vm.Value{}, false, interperr.IO(rerr)
		}
		if eof {
			return ret(vm.Eof())
		}
		return ret(vm.Char(r))
	})
	define(m, "read", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		p, aerr := inPortOf(m, a, "read")
		if aerr != nil {
			return vm.Value{}, false, aerr
		}
		var sb strings.Builder
		for {
			r, eof, rerr := p.ReadRune()
			if rerr != nil {
				return vm.Value{}, false, interperr.IO(rerr)
			}
			if eof {
				break
			}
			sb.WriteRune(r)
		}
		rd := reader.New(p.Name, sb.String(), m.Symtab)
		d, rerr := rd.Read()
		if rerr != nil {
			return vm.Value{}, false, rerr
		}
		return ret(vm.FromDatum(d))
	})
	define(m, "write", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		p, err := outPortOf(m, a[1:], "write")
		if err != nil {
			return vm.Value{}, false, err
		}
		fmt.Fprint(p.W, a[0].Write())
		return ret(vm.Void())
	})
	define(m, "display", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		p, err := outPortOf(m, a[1:], "display")
		if err != nil {
			return vm.Value{}, false, err
		}
		fmt.Fprint(p.W, a[0].Display())
		return ret(vm.Void())
	})
	define(m, "newline", 0, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		p, err := outPortOf(m, a, "newline")
		if err != nil {
			return vm.Value{}, false, err
		}
		fmt.Fprint(p.W, "\n")
		return ret(vm.Void())
	})
	define(m, "write-char", 1, true, func(m *vm.VM, a []vm.Value) (vm.Value, bool, error) {
		p, err := outPortOf(m, a[1:], "write-char")
		if err != nil {
			return vm.Value{}, false, err
		}
		fmt.Fprint(p.W, string(a[0].Ch))
		return ret(vm.Void())
	})
}

func inPortOf(m *vm.VM, a []vm.Value, name string) (*vm.ReadPort, *interperr.InterpretError) {
	port := m.InPort
	if len(a) > 0 {
		port = a[0]
	}
	p, ok := port.Obj.(*vm.ReadPort)
	if !ok {
		return nil, interperr.Runtimef("%s: expected an input port", name)
	}
	return p, nil
}

func outPortOf(m *vm.VM, a []vm.Value, name string) (*vm.WritePort, *interperr.InterpretError) {
	port := m.OutPort
	if len(a) > 0 {
		port = a[0]
	}
	p, ok := port.Obj.(*vm.WritePort)
	if !ok {
		return nil, interperr.Runtimef("%s: expected an output port", name)
	}
	return p, nil
}
