package actordb

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Faultbox/z64scene/pkg/errs"
)

func TestDefault(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if table.Len() == 0 {
		t.Fatal("bundled table is empty")
	}

	box, ok := table.ByKey("000a")
	if !ok {
		t.Fatal("ByKey(000a) not found")
	}
	if box.ID != "ACTOR_EN_BOX" || box.ObjectID != "OBJECT_BOX" {
		t.Errorf("box = %+v", box)
	}
	if byID, _ := table.ByID("ACTOR_EN_BOX"); byID != box {
		t.Error("ByID and ByKey disagree")
	}
	if len(box.Presets) != 3 || box.Presets[2].Name != "Big Boss Chest" {
		t.Errorf("Presets = %+v", box.Presets)
	}
}

func TestFieldShift(t *testing.T) {
	tests := []struct {
		mask uint16
		want int
	}{
		{0x001F, 0},
		{0x0FE0, 5},
		{0xF000, 12},
		{0x3F00, 8},
		{0x0000, 0},
	}

	for _, tt := range tests {
		if got := (Field{Mask: tt.mask}).Shift(); got != tt.want {
			t.Errorf("Shift(0x%04X) = %d, want %d", tt.mask, got, tt.want)
		}
	}
}

func TestCompose(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		actor   string
		base    uint16
		values  map[string]int
		want    uint16
		wantZ   uint16
		wantErr error
	}{
		{
			name:   "chest",
			actor:  "ACTOR_EN_BOX",
			values: map[string]int{"Chest Type": 0x5, "Item": 0x48, "Chest Flag": 0x03},
			want:   0x5000 | 0x48<<5 | 0x03,
		},
		{
			name:   "base and switch flag",
			actor:  "ACTOR_OBJ_SWITCH",
			base:   0x0001,
			values: map[string]int{"Switch Flag": 0x12},
			want:   0x1201,
		},
		{
			name:   "rotation target",
			actor:  "ACTOR_EN_WONDER_ITEM",
			values: map[string]int{"Tag Point": 0x07, "Switch Flag": 0x01},
			want:   0x0001,
			wantZ:  0x0007,
		},
		{
			name:    "value wider than mask",
			actor:   "ACTOR_EN_BOX",
			values:  map[string]int{"Chest Flag": 0x20},
			wantErr: errs.ErrFieldOverflow,
		},
		{
			name:    "unknown field",
			actor:   "ACTOR_EN_BOX",
			values:  map[string]int{"Color": 1},
			wantErr: errs.ErrReference,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, ok := table.ByID(tt.actor)
			if !ok {
				t.Fatalf("actor %s not found", tt.actor)
			}
			got, err := a.Compose(tt.base, tt.values)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Compose() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Compose() error = %v", err)
			}
			if got.Params != tt.want {
				t.Errorf("Params = 0x%04X, want 0x%04X", got.Params, tt.want)
			}
			if got.Rotations[2] != tt.wantZ || got.HasRotation[2] != (tt.wantZ != 0) {
				t.Errorf("Rotations = %v %v, want z 0x%04X", got.Rotations, got.HasRotation, tt.wantZ)
			}
		})
	}
}

func TestObjectFor(t *testing.T) {
	table, err := Default()
	if err != nil {
		t.Fatal(err)
	}
	tests := map[string]string{
		"ACTOR_EN_BOX":     "OBJECT_BOX",
		"ACTOR_EN_OKUTA":   "OBJECT_OKUTA",
		"ACTOR_PLAYER":     "",
		"ACTOR_OBJ_SWITCH": "",
		"ACTOR_UNKNOWN":    "",
	}
	for id, want := range tests {
		if got := table.ObjectFor(id); got != want {
			t.Errorf("ObjectFor(%s) = %q, want %q", id, got, want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ActorList.xml")
	data := `<Table>
	<Actor ID="ACTOR_A" Key="0001" ObjectID="OBJECT_A"><Property Mask="0x00F0" Name="Kind"/><Property Mask="0x0F00" Name="None"/></Actor>
	<Actor ID="ACTOR_B" Key="0001" ObjectID="OBJECT_B"/>
</Table>`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	_, err := LoadFile(path)
	if !errors.Is(err, errs.ErrStructuralIndex) {
		t.Errorf("LoadFile() error = %v, want ErrStructuralIndex", err)
	}

	table, err := Load(strings.NewReader(strings.Replace(data, `Key="0001" ObjectID="OBJECT_B"`, `Key="0002" ObjectID="OBJECT_B"`, 1)))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	a, _ := table.ByKey("0001")
	if len(a.Fields) != 1 || a.Fields[0].Name != "Kind" || a.Fields[0].Target != TargetParams {
		t.Errorf("Fields = %+v", a.Fields)
	}
}
