package level

import (
	"fmt"
	"strings"

	"github.com/Faultbox/z64scene/pkg/cdata"
	"github.com/Faultbox/z64scene/pkg/encoding"
	"github.com/Faultbox/z64scene/pkg/errs"
	"github.com/Faultbox/z64scene/pkg/scene"
)

// GeometrySettings are passed to the geometry provider with every model.
type GeometrySettings struct {
	TextureFormat string
}

// GeometryProvider turns a compiled model into display list and texture
// source text.
type GeometryProvider interface {
	ToCommands(model scene.Model, settings GeometrySettings) (cdata.CData, error)
}

// Options selects the output layout.
type Options struct {
	// SingleFile merges each room and the scene into one source file.
	SingleFile    bool
	TextureFormat string
}

// File is one emitted text artifact.
type File struct {
	Name    string
	Content string
}

// Files is the emitted output of one scene.
type Files struct {
	// Base is the scene identifier, Name adds the "_scene" suffix.
	Base      string
	Name      string
	RoomCount int
	Sources   []File
	Header    File
}

// All returns the sources followed by the header.
func (f *Files) All() []File {
	return append(append([]File(nil), f.Sources...), f.Header)
}

// Lookup returns the file with the given name.
func (f *Files) Lookup(name string) (File, bool) {
	for _, file := range f.All() {
		if file.Name == name {
			return file, true
		}
	}
	return File{}, false
}

var commonIncludes = []string{
	"ultra64.h",
	"z64.h",
	"macros.h",
	"segment_symbols.h",
	"command_macros_base.h",
	"z64cutscene_commands.h",
	"variables.h",
}

func includes(sceneName string) string {
	var sb strings.Builder
	for _, inc := range commonIncludes {
		sb.WriteString(cdata.Include(inc))
	}
	sb.WriteString("\n")
	sb.WriteString(cdata.Include(sceneName + ".h"))
	sb.WriteString("\n\n")
	return sb.String()
}

// commandsC renders a command stream as its command array followed by the
// alternate table, when given, and the header's lists.
func commandsC(st *Stream, alternates cdata.CData) cdata.CData {
	arr := cdata.NewUnsizedArray("SCmdBase", st.Name)
	for _, c := range st.Commands {
		arr.Add("%s", c)
	}
	out := arr.CData()
	out.Append(alternates)
	for _, d := range st.Data {
		out.Append(d)
	}
	return out
}

func streamsC(streams []*Stream, alternates cdata.CData) cdata.CData {
	var out cdata.CData
	for _, st := range streams {
		alt := cdata.CData{}
		if st.Slot == scene.Main {
			alt = alternates
		}
		out.Append(commandsC(st, alt))
	}
	return out
}

// Emit renders the assembly into source files and one shared header.
//
// Split mode writes "<room>_main.c", "<room>_model_info.c" and
// "<room>_model.c" per room and "<scene>_main.c", "<scene>_col.c",
// "<scene>_cs_<i>.c" and "<scene>_tex.c" for the scene. Single file mode
// writes "<room>.c" and "<scene>.c"; textures stay in "<scene>_tex.c".
func Emit(a *Assembly, geo GeometryProvider, opts Options) (*Files, error) {
	if a == nil {
		return nil, errs.Reference("no assembly to emit")
	}
	if geo == nil {
		return nil, errs.Reference("no geometry provider")
	}
	settings := GeometrySettings{TextureFormat: opts.TextureFormat}
	inc := includes(a.Name)

	files := &Files{Base: a.Base, Name: a.Name, RoomCount: len(a.Rooms)}
	var header cdata.CData
	add := func(name, source string) {
		files.Sources = append(files.Sources, File{Name: name + ".c", Content: inc + source})
	}

	main := streamsC(a.Headers, a.AlternateTable)
	header.AppendHeader("%s", main.Header)
	for _, cs := range a.Cutscenes {
		header.AppendHeader("%s", cs.Data.Header)
	}
	header.AppendHeader("%s", a.Collision.Header)

	var textures cdata.CData
	if a.Model != nil {
		t, err := geo.ToCommands(*a.Model, settings)
		if err != nil {
			return nil, fmt.Errorf("scene model: %w", err)
		}
		textures = t
		header.AppendHeader("%s", textures.Header)
	}

	if opts.SingleFile {
		source := main.Source + a.Collision.Source
		for _, cs := range a.Cutscenes {
			source += cs.Data.Source
		}
		add(a.Name, source)
	} else {
		add(a.Name+"_main", main.Source)
		add(a.Name+"_col", a.Collision.Source)
		for i, cs := range a.Cutscenes {
			add(fmt.Sprintf("%s_cs_%d", a.Name, i), cs.Data.Source)
		}
	}
	if textures.Source != "" {
		add(a.Name+"_tex", textures.Source)
	}

	for _, r := range a.Rooms {
		roomMain := streamsC(r.Headers, r.AlternateTable)
		model, err := geo.ToCommands(r.Model, settings)
		if err != nil {
			return nil, fmt.Errorf("room %d model: %w", r.Index, err)
		}
		header.AppendHeader("%s", roomMain.Header)
		header.AppendHeader("%s", model.Header)
		header.AppendHeader("%s", r.Shape.Header)

		if opts.SingleFile {
			add(r.Name, roomMain.Source+r.Shape.Source+model.Source)
			continue
		}
		add(r.Name+"_main", roomMain.Source)
		add(r.Name+"_model_info", r.Shape.Source)
		add(r.Name+"_model", model.Source)
	}

	guard := encoding.IncludeGuard(a.Name)
	files.Header = File{
		Name:    a.Name + ".h",
		Content: fmt.Sprintf("#ifndef %s\n#define %s\n\n%s\n#endif\n", guard, guard, header.Header),
	}
	return files, nil
}
