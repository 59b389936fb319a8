package shell

import (
	"errors"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/beevik/prefixtree/v2"
)

// settings holds the shell's adjustable display and runtime defaults. Each
// field is addressable by an unambiguous lowercase prefix of its name
// through settingsTree, the same pattern the teacher repo uses for its own
// debugger settings.
type settings struct {
	CompactMode  bool   `doc:"compact disassembly output"`
	DumpBytes    int    `doc:"default number of heap bytes to dump"`
	DisasmLines  int    `doc:"default number of lines to disassemble"`
	MaxStepLines int    `doc:"max lines to print while stepping"`
	DumpOffset   uint32 `doc:"heap offset where the next .dump with no argument starts"`
}

func newSettings() *settings {
	return &settings{
		CompactMode:  false,
		DumpBytes:    64,
		DisasmLines:  10,
		MaxStepLines: 20,
		DumpOffset:   0,
	}
}

type settingsField struct {
	name  string
	index int
	kind  reflect.Kind
	typ   reflect.Type
	doc   string
}

var (
	settingsTree   = prefixtree.New[*settingsField]()
	settingsFields []settingsField
)

func init() {
	t := reflect.TypeOf(settings{})
	settingsFields = make([]settingsField, t.NumField())
	for i := 0; i < len(settingsFields); i++ {
		f := t.Field(i)
		doc, _ := f.Tag.Lookup("doc")
		settingsFields[i] = settingsField{
			name:  f.Name,
			index: i,
			kind:  f.Type.Kind(),
			typ:   f.Type,
			doc:   doc,
		}
		settingsTree.Add(strings.ToLower(f.Name), &settingsFields[i])
	}
}

func (s *settings) Display(w io.Writer) {
	value := reflect.ValueOf(s).Elem()
	for i, f := range settingsFields {
		v := value.Field(i)
		var rendered string
		switch f.kind {
		case reflect.Uint32:
			// Heap offsets are addresses into the VM's byte-addressed
			// heap, displayed the same way the PC is elsewhere in the
			// shell: a fixed-width hex address.
			rendered = fmt.Sprintf("$%04X", v.Uint())
		case reflect.Bool:
			rendered = fmt.Sprintf("%-8v", v.Bool())
		default:
			rendered = fmt.Sprintf("%-8v", v)
		}
		fmt.Fprintf(w, "    %-16s %s (%s)\n", f.name, rendered, f.doc)
	}
}

func (s *settings) Kind(key string) reflect.Kind {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return reflect.Invalid
	}
	return f.kind
}

func (s *settings) Set(key string, value any) error {
	f, err := settingsTree.FindValue(strings.ToLower(key))
	if err != nil {
		return err
	}

	vIn := reflect.ValueOf(value)
	if !vIn.Type().ConvertibleTo(f.typ) {
		return errors.New("shell: invalid setting value type")
	}

	vOut := reflect.ValueOf(s).Elem().Field(f.index).Addr().Elem()
	vOut.Set(vIn.Convert(f.typ))
	return nil
}
