package patch

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/z64scene/pkg/level"
)

func createTestFiles(rooms int) *level.Files {
	files := &level.Files{Base: "spot00", Name: "spot00_scene", RoomCount: rooms}
	files.Sources = append(files.Sources,
		level.File{Name: "spot00_scene_main.c", Content: "main"},
		level.File{Name: "spot00_scene_col.c", Content: "col"},
	)
	for i := 0; i < rooms; i++ {
		room := level.RoomFileName("spot00", i)
		files.Sources = append(files.Sources,
			level.File{Name: room + "_main.c", Content: "room main"},
			level.File{Name: room + "_model_info.c", Content: "room info"},
			level.File{Name: room + "_model.c", Content: "room model"},
		)
	}
	files.Header = level.File{Name: "spot00_scene.h", Content: "header"}
	return files
}

func TestRemoveStaleRooms(t *testing.T) {
	dir := t.TempDir()
	names := []string{
		"spot00_room_0.c",
		"spot00_room_1_main.c",
		"spot00_room_1_model.c",
		"spot00_room_2.c",
		"spot00_room_2.h",
		"spot00_room_10_model_info.c",
		"spot00_scene.c",
		"spot01_room_5.c",
		"spot00_room_3.txt",
	}
	for _, n := range names {
		if err := os.WriteFile(filepath.Join(dir, n), nil, 0644); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := RemoveStaleRooms(dir, "spot00", 2)
	if err != nil {
		t.Fatalf("RemoveStaleRooms() error = %v", err)
	}
	want := []string{"spot00_room_10_model_info.c", "spot00_room_2.c", "spot00_room_2.h"}
	if strings.Join(removed, ",") != strings.Join(want, ",") {
		t.Errorf("removed = %v, want %v", removed, want)
	}

	for _, n := range []string{"spot00_room_0.c", "spot00_room_1_main.c", "spot00_scene.c", "spot01_room_5.c", "spot00_room_3.txt"} {
		if _, err := os.Stat(filepath.Join(dir, n)); err != nil {
			t.Errorf("%s should be kept: %v", n, err)
		}
	}
}

const testSpec = `beginseg
    name "makerom"
    include "$(BUILD_DIR)/src/makerom/rom_header.o"
endseg

beginseg
    name "spot00_scene"
    romalign 0x1000
    include "$(BUILD_DIR)/assets/scenes/overworld/spot00/spot00_scene.o"
    number 2
endseg

beginseg
    name "spot00_room_0"
    romalign 0x1000
    include "$(BUILD_DIR)/assets/scenes/overworld/spot00/spot00_room_0.o"
    number 3
endseg

beginseg
    name "spot00_room_1"
    romalign 0x1000
    include "$(BUILD_DIR)/assets/scenes/overworld/spot00/spot00_room_1.o"
    number 3
endseg

beginseg
    name "spot01_scene"
    romalign 0x1000
    include "$(BUILD_DIR)/assets/scenes/overworld/spot01/spot01_scene.o"
    number 2
endseg
`

func TestPatchSpec(t *testing.T) {
	got, err := PatchSpec(testSpec, createTestFiles(1), "assets/scenes/overworld/spot00")
	if err != nil {
		t.Fatalf("PatchSpec() error = %v", err)
	}

	want := `beginseg
    name "makerom"
    include "$(BUILD_DIR)/src/makerom/rom_header.o"
endseg

beginseg
    name "spot00_scene"
    compress
    romalign 0x1000
    include "$(BUILD_DIR)/assets/scenes/overworld/spot00/spot00_scene_main.o"
    include "$(BUILD_DIR)/assets/scenes/overworld/spot00/spot00_scene_col.o"
    number 2
endseg

beginseg
    name "spot00_room_0"
    compress
    romalign 0x1000
    include "$(BUILD_DIR)/assets/scenes/overworld/spot00/spot00_room_0_main.o"
    include "$(BUILD_DIR)/assets/scenes/overworld/spot00/spot00_room_0_model_info.o"
    include "$(BUILD_DIR)/assets/scenes/overworld/spot00/spot00_room_0_model.o"
    number 3
endseg

beginseg
    name "spot01_scene"
    romalign 0x1000
    include "$(BUILD_DIR)/assets/scenes/overworld/spot01/spot01_scene.o"
    number 2
endseg
`
	if got != want {
		t.Errorf("PatchSpec() =\n%s\nwant\n%s", got, want)
	}

	again, err := PatchSpec(got, createTestFiles(1), "assets/scenes/overworld/spot00")
	if err != nil {
		t.Fatalf("PatchSpec() error = %v", err)
	}
	if again != got {
		t.Errorf("patching twice changed the spec:\n%s", again)
	}
}

func TestPatchSpecAppendsNewScene(t *testing.T) {
	spec := "beginseg\n    name \"makerom\"\nendseg\n"
	files := &level.Files{Base: "custom", Name: "custom_scene", RoomCount: 1, Sources: []level.File{
		{Name: "custom_scene.c"},
		{Name: "custom_room_0.c"},
	}}

	got, err := PatchSpec(spec, files, "assets/scenes/custom")
	if err != nil {
		t.Fatalf("PatchSpec() error = %v", err)
	}
	if !strings.HasPrefix(got, spec+"\nbeginseg\n    name \"custom_scene\"\n") {
		t.Errorf("scene segment not appended:\n%s", got)
	}
	if !strings.Contains(got, "    include \"$(BUILD_DIR)/assets/scenes/custom/custom_room_0.o\"\n    number 3\n") {
		t.Errorf("room segment missing:\n%s", got)
	}
}

func TestPatchSceneTable(t *testing.T) {
	table := "/* 0x00 */ DEFINE_SCENE(ydan_scene, g_pn_06, SCENE_DEKU_TREE, SDC_DEKU_TREE, 1, 2)\n" +
		"/* 0x51 */ DEFINE_SCENE(spot00_scene, g_pn_01, SCENE_HYRULE_FIELD, SDC_HYRULE_FIELD, 0, 0)\n"
	row := SceneTableRow{Name: "spot00_scene", Title: "none", Enum: "SCENE_HYRULE_FIELD", DrawConfig: "SDC_DEFAULT"}

	got := PatchSceneTable(table, row)
	want := "/* 0x00 */ DEFINE_SCENE(ydan_scene, g_pn_06, SCENE_DEKU_TREE, SDC_DEKU_TREE, 1, 2)\n" +
		"/* 0x51 */ DEFINE_SCENE(spot00_scene, none, SCENE_HYRULE_FIELD, SDC_DEFAULT, 0, 0)\n"
	if got != want {
		t.Errorf("PatchSceneTable() =\n%s\nwant\n%s", got, want)
	}

	row = SceneTableRow{Name: "custom_scene", Title: "none", Enum: "SCENE_CUSTOM", DrawConfig: "SDC_DEFAULT"}
	got = PatchSceneTable(table, row)
	if !strings.HasSuffix(got, "DEFINE_SCENE(custom_scene, none, SCENE_CUSTOM, SDC_DEFAULT, 0, 0)\n") {
		t.Errorf("new row not appended:\n%s", got)
	}
}

func TestSinkFinalize(t *testing.T) {
	root := t.TempDir()
	out := filepath.Join(root, "assets", "scenes", "spot00")
	if err := os.MkdirAll(out, 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(out, "spot00_room_3_main.c"), []byte("old"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(root, "spec"), []byte(testSpec), 0644); err != nil {
		t.Fatal(err)
	}
	tablePath := filepath.Join(root, DefaultSceneTablePath)
	if err := os.MkdirAll(filepath.Dir(tablePath), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tablePath, []byte("/* 0x51 */ DEFINE_SCENE(spot00_scene, g_pn_01, SCENE_HYRULE_FIELD, SDC_HYRULE_FIELD, 0, 0)\n"), 0644); err != nil {
		t.Fatal(err)
	}

	sink := NewSink(Options{
		OutputDir:       out,
		DecompRoot:      root,
		PatchRegistries: true,
		IncludeDir:      "assets/scenes/spot00",
	}, nil)
	files := createTestFiles(2)
	row := SceneTableRow{Name: "spot00_scene", Title: "none", Enum: "SCENE_HYRULE_FIELD", DrawConfig: "SDC_DEFAULT"}
	if err := sink.Finalize(files, row); err != nil {
		t.Fatalf("Finalize() error = %v", err)
	}

	for _, f := range files.All() {
		data, err := os.ReadFile(filepath.Join(out, f.Name))
		if err != nil {
			t.Errorf("%s not written: %v", f.Name, err)
			continue
		}
		if string(data) != f.Content {
			t.Errorf("%s = %q, want %q", f.Name, data, f.Content)
		}
	}
	if _, err := os.Stat(filepath.Join(out, "spot00_room_3_main.c")); !os.IsNotExist(err) {
		t.Error("stale room file was not removed")
	}

	spec, _ := os.ReadFile(filepath.Join(root, "spec"))
	if !strings.Contains(string(spec), "spot00_room_1_model.o") {
		t.Errorf("spec not patched:\n%s", spec)
	}
	table, _ := os.ReadFile(tablePath)
	if !strings.Contains(string(table), "SDC_DEFAULT") {
		t.Errorf("scene table not patched:\n%s", table)
	}
}

func TestSinkWithoutDecompRoot(t *testing.T) {
	sink := NewSink(Options{OutputDir: t.TempDir(), PatchRegistries: true}, nil)
	if err := sink.Finalize(createTestFiles(1), SceneTableRow{}); err == nil {
		t.Error("Finalize() should fail without a decomp root")
	}
}
