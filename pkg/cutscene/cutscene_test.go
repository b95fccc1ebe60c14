package cutscene

import (
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/Faultbox/z64scene/pkg/errs"
	"github.com/Faultbox/z64scene/pkg/math"
)

func createTestCamList(kind CamKind, points int, offset int) *CamList {
	l := &CamList{Kind: kind, StartFrame: 0, EndFrame: 91, Points: []CamPoint{}}
	for i := 0; i < points; i++ {
		flag := CamContinue
		if i == points-1 {
			flag = CamStop
		}
		l.Points = append(l.Points, CamPoint{
			Continue:  flag,
			Roll:      0,
			Frame:     i * 30,
			ViewAngle: 45.5,
			Pos:       [3]int{offset + i*10, 50, -100 - i},
		})
	}
	return l
}

func createTestCutscene(splinePoints int) *Cutscene {
	return &Cutscene{
		Name:       "test_cs",
		FrameCount: 300,
		Commands: []Command{
			{ActorCues: &ActorCueList{CmdType: "0x000F", Cues: []ActorCue{
				{Action: "0x0001", StartFrame: 0, EndFrame: 10, Rotation: [3]math.Binang{0, 0x8000, 0},
					StartPos: [3]int{0, 0, 0}, EndPos: [3]int{10, 0, -20}},
				{Action: "0x0002", StartFrame: 10, EndFrame: 40, Rotation: [3]math.Binang{0, 0xC000, 0},
					StartPos: [3]int{10, 0, -20}, EndPos: [3]int{10, 5, -40}},
			}}},
			{ActorCues: &ActorCueList{Player: true, Cues: []ActorCue{
				{Action: "PLAYER_CUEID_5", StartFrame: 0, EndFrame: 60, StartPos: [3]int{-5, 0, 7}, EndPos: [3]int{-5, 0, 7}},
			}}},
			{Camera: createTestCamList(CamEyeSpline, splinePoints, 0)},
			{Camera: createTestCamList(CamATSpline, splinePoints, 500)},
			{Text: &TextList{Entries: []TextEntry{
				{Kind: TextNone, StartFrame: 0, EndFrame: 20},
				{Kind: TextNormal, TextID: "0x1020", StartFrame: 20, EndFrame: 50, Type: "CS_TEXT_NORMAL", AltTextID1: "0xFFFF", AltTextID2: "0xFFFF"},
				{Kind: TextOcarinaAction, OcarinaAction: "OCARINA_ACTION_TEACH_MINUET", StartFrame: 50, EndFrame: 60, TextID: "0x0877"},
			}}},
			{Lighting: &LightSettingList{Entries: []LightSetting{{Setting: 3, StartFrame: 0, EndFrame: 1}}}},
			{Time: &TimeList{Entries: []TimeEntry{{StartFrame: 5, EndFrame: 6, Hour: 12, Minute: 30}}}},
			{Sequence: &SeqList{Kind: SeqStart, Entries: []SeqEntry{{Value: "NA_BGM_FIRE_BOSS", StartFrame: 0, EndFrame: 1}}}},
			{Sequence: &SeqList{Kind: SeqStop, Entries: []SeqEntry{{Value: "NA_BGM_FIRE_BOSS", StartFrame: 200, EndFrame: 201}}}},
			{Sequence: &SeqList{Kind: SeqFadeOut, Entries: []SeqEntry{{Value: "CS_FADE_OUT_BGM_MAIN", StartFrame: 150, EndFrame: 200}}}},
			{Misc: &MiscList{Entries: []MiscEntry{{Type: "CS_MISC_STOP_CUTSCENE", StartFrame: 280, EndFrame: 281}}}},
			{Rumble: &RumbleList{Entries: []RumbleEntry{{StartFrame: 30, EndFrame: 31, SourceStrength: "255", Duration: "10", DecreaseRate: "0x14"}}}},
			{Transition: &Transition{Type: "CS_TRANS_BLACK_FILL_IN", StartFrame: 250, EndFrame: 270}},
			{Destination: &Destination{Destination: "CS_DEST_HYRULE_FIELD_FROM_DARK_LINK", StartFrame: 290, EndFrame: 291}},
		},
	}
}

func TestCompileRoundTrip(t *testing.T) {
	cs := createTestCutscene(4)

	out, err := Compile(cs, "", Embedded)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.HasPrefix(out.Source, "CutsceneData test_cs[] = {\n\tCS_BEGIN_CUTSCENE(14, 300),\n") {
		t.Errorf("unexpected source start:\n%s", out.Source)
	}
	if out.Header != "extern CutsceneData test_cs[];\n" {
		t.Errorf("Header = %q", out.Header)
	}

	parsed, err := Parse(out.Source)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("Parse() returned %d cutscenes, want 1", len(parsed))
	}
	if !reflect.DeepEqual(parsed[0], cs) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", parsed[0], cs)
	}
}

func TestCompileIsDeterministic(t *testing.T) {
	cs := createTestCutscene(5)
	a, err := Compile(cs, "", Embedded)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compile(cs, "", Embedded)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("compiling the same cutscene twice gave different output")
	}
}

func TestCompileSplineTrim(t *testing.T) {
	tests := []struct {
		name   string
		points int
		want   int
	}{
		{"four points unchanged", 4, 4},
		{"five points drop one", 5, 4},
		{"six points drop one", 6, 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := createTestCutscene(tt.points)
			out, err := Compile(cs, "", Embedded)
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			parsed, err := Parse(out.Source)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			for _, c := range parsed[0].Commands {
				if c.Camera == nil {
					continue
				}
				if len(c.Camera.Points) != tt.want {
					t.Errorf("%s has %d points, want %d", c.Camera.Kind, len(c.Camera.Points), tt.want)
				}
				original := cs.Commands[2].Camera
				if c.Camera.Kind == CamATSpline {
					original = cs.Commands[3].Camera
				}
				if !reflect.DeepEqual(c.Camera.Points, original.Points[:tt.want]) {
					t.Errorf("%s points are not a prefix of the input", c.Camera.Kind)
				}
			}
			if got := len(cs.Commands[2].Camera.Points); got != tt.points {
				t.Errorf("input was modified: %d points, want %d", got, tt.points)
			}
		})
	}
}

func TestCompileValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(cs *Cutscene)
		want   error
	}{
		{
			name: "cue frame gap",
			modify: func(cs *Cutscene) {
				cs.Commands[0].ActorCues.Cues[1].StartFrame = 11
			},
			want: errs.ErrContinuity,
		},
		{
			name: "cue position gap",
			modify: func(cs *Cutscene) {
				cs.Commands[0].ActorCues.Cues[1].StartPos = [3]int{0, 0, 0}
			},
			want: errs.ErrContinuity,
		},
		{
			name: "empty cue list",
			modify: func(cs *Cutscene) {
				cs.Commands[1].ActorCues.Cues = nil
			},
			want: errs.ErrContinuity,
		},
		{
			name: "short spline pair",
			modify: func(cs *Cutscene) {
				cs.Commands[2].Camera = createTestCamList(CamEyeSpline, 3, 0)
				cs.Commands[3].Camera = createTestCamList(CamATSpline, 3, 0)
			},
			want: errs.ErrContinuity,
		},
		{
			name: "spline length mismatch",
			modify: func(cs *Cutscene) {
				cs.Commands[3].Camera = createTestCamList(CamATSpline, 5, 0)
			},
			want: errs.ErrContinuity,
		},
		{
			name: "unpaired eye list",
			modify: func(cs *Cutscene) {
				cs.Commands = append(cs.Commands, Command{Camera: createTestCamList(CamEye, 4, 0)})
			},
			want: errs.ErrContinuity,
		},
		{
			name: "command without a list",
			modify: func(cs *Cutscene) {
				cs.Commands = append(cs.Commands, Command{})
			},
			want: errs.ErrFormat,
		},
		{
			name: "unknown sequence kind",
			modify: func(cs *Cutscene) {
				cs.Commands[7].Sequence.Kind = "bogus"
			},
			want: errs.ErrFormat,
		},
		{
			name: "actor cue list without command type",
			modify: func(cs *Cutscene) {
				cs.Commands[0].ActorCues.CmdType = ""
			},
			want: errs.ErrFormat,
		},
		{
			name: "camera point without continue flag",
			modify: func(cs *Cutscene) {
				cs.Commands[2].Camera.Points[1].Continue = ""
			},
			want: errs.ErrFormat,
		},
		{
			name: "unknown camera list kind",
			modify: func(cs *Cutscene) {
				cs.Commands[3].Camera.Kind = "side"
			},
			want: errs.ErrFormat,
		},
		{
			name: "unknown text kind",
			modify: func(cs *Cutscene) {
				cs.Commands[4].Text.Entries[1].Kind = "subtitle"
			},
			want: errs.ErrFormat,
		},
		{
			name: "transition without type",
			modify: func(cs *Cutscene) {
				cs.Commands[12].Transition.Type = ""
			},
			want: errs.ErrFormat,
		},
		{
			name: "destination without target",
			modify: func(cs *Cutscene) {
				cs.Commands[13].Destination.Destination = ""
			},
			want: errs.ErrFormat,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cs := createTestCutscene(4)
			tt.modify(cs)
			_, err := Compile(cs, "", Embedded)
			if !errors.Is(err, tt.want) {
				t.Errorf("Compile() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestCompileObjectMode(t *testing.T) {
	out, err := Compile(createTestCutscene(4), "Cutscene_Intro", Object)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if !strings.Contains(out.Source, "CutsceneData Cutscene_Intro[] = {\n\tCS_BEGIN_CUTSCENE(4, 300),\n") {
		t.Errorf("unexpected object export:\n%s", out.Source)
	}
	for _, macro := range []string{"CS_TEXT_LIST", "CS_TRANSITION", "CS_MISC_LIST"} {
		if strings.Contains(out.Source, macro) {
			t.Errorf("object export contains %s", macro)
		}
	}
}

func TestCompileOutput(t *testing.T) {
	cs := &Cutscene{
		Name:       "small",
		FrameCount: 100,
		Commands: []Command{
			{Transition: &Transition{Type: "CS_TRANS_GRAY_FILL_IN", StartFrame: 10, EndFrame: 20}},
			{Lighting: &LightSettingList{Entries: []LightSetting{{Setting: 3, StartFrame: 0, EndFrame: 1}}}},
			{Unknown: &UnknownList{CmdType: "0x001A", Entries: [][12]int32{{-1, 1}}}},
		},
	}

	out, err := Compile(cs, "", Embedded)
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	want := "CutsceneData small[] = {\n" +
		"\tCS_BEGIN_CUTSCENE(3, 100),\n" +
		"\tCS_TRANSITION(CS_TRANS_GRAY_FILL_IN, 10, 20),\n" +
		"\tCS_LIGHT_SETTING_LIST(1),\n" +
		"\t\tCS_LIGHT_SETTING(3, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0),\n" +
		"\tCS_UNK_DATA_LIST(0x001A, 1),\n" +
		"\t\tCS_UNK_DATA(0xFFFFFFFF, 0x00000001, 0x00000000, 0x00000000, 0x00000000, 0x00000000, " +
		"0x00000000, 0x00000000, 0x00000000, 0x00000000, 0x00000000, 0x00000000),\n" +
		"\tCS_END(),\n" +
		"};\n\n"
	if out.Source != want {
		t.Errorf("Source =\n%s\nwant\n%s", out.Source, want)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{
			name: "entry without list",
			text: "CutsceneData cs[] = {\n\tCS_BEGIN_CUTSCENE(1, 10),\n\tCS_TEXT_NONE(0, 5),\n\tCS_END(),\n};\n",
		},
		{
			name: "entry after unknown command",
			text: "CutsceneData cs[] = {\n\tCS_TEXT_LIST(2),\n\tCS_TEXT_NONE(0, 5),\n\tCS_SOMETHING_NEW(1),\n\tCS_TEXT_NONE(5, 9),\n};\n",
		},
		{
			name: "entry in a list of another kind",
			text: "CutsceneData cs[] = {\n\tCS_TIME_LIST(1),\n\tCS_TEXT_NONE(0, 5),\n};\n",
		},
		{
			name: "wrong argument count",
			text: "CutsceneData cs[] = {\n\tCS_TIME_LIST(1),\n\tCS_TIME(0, 1, 2),\n};\n",
		},
		{
			name: "point after stop",
			text: "CutsceneData cs[] = {\n\tCS_CAM_EYE_SPLINE(0, 10),\n" +
				"\tCS_CAM_POINT(CS_CAM_STOP, 0, 0, 45.0f, 0, 0, 0, 0),\n" +
				"\tCS_CAM_POINT(CS_CAM_STOP, 0, 0, 45.0f, 0, 0, 0, 0),\n};\n",
		},
		{
			name: "missing closing brace",
			text: "CutsceneData cs[] = {\n\tCS_BEGIN_CUTSCENE(0, 10),\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.text)
			if !errors.Is(err, errs.ErrFormat) {
				t.Errorf("Parse() error = %v, want ErrFormat", err)
			}
		})
	}
}

func TestParseUnknownCommand(t *testing.T) {
	text := `
// leading comment with CutsceneData inside
extern CutsceneData other[];

/* CS_TEXT_NONE(0, 1) */
CutsceneData cs[] = {
    CS_BEGIN_CUTSCENE(2, 50),
    CS_TEXT_LIST(1),
        CS_TEXT_NONE(0, 5),
    CS_SOMETHING_NEW(1, 2),
    CS_UNK_DATA_LIST(0x001A, 1),
        CS_UNK_DATA(0x00000001, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0, 0),
    CS_END(),
};
`
	p := NewParser(nil)
	parsed, err := p.Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(parsed) != 1 {
		t.Fatalf("got %d cutscenes, want 1", len(parsed))
	}
	cs := parsed[0]
	if cs.FrameCount != 50 {
		t.Errorf("FrameCount = %d, want 50", cs.FrameCount)
	}
	if len(cs.Commands) != 1 || cs.Commands[0].Text == nil || len(cs.Commands[0].Text.Entries) != 1 {
		t.Errorf("Commands = %+v, want one text list with one entry", cs.Commands)
	}
	if len(p.Warnings) != 1 || !strings.Contains(p.Warnings[0].Message, "CS_SOMETHING_NEW") {
		t.Errorf("Warnings = %v", p.Warnings)
	}
}

func TestParseLegacyNames(t *testing.T) {
	text := `CutsceneData legacy[] = {
	CS_BEGIN_CUTSCENE(3, 200),
	CS_CAM_POS_LIST(0, 61),
		CS_CAM_POS(CS_CMD_CONTINUE, 0x00, 0, 70.0f, 1, 2, 3, 0),
		CS_CAM_POS(CS_CMD_STOP, 0x00, 30, 70.0f, 4, 5, 6, 0),
	CS_NPC_ACTION_LIST(0xF, 1),
		CS_NPC_ACTION(0x0001, 0, 10, 0x0000, DEG_TO_BINANG(200.0f), 90, 0, 0, 0, 0, 0, 0, 0.0f, 0.0f, 0.0f),
	CS_PLAY_BGM_LIST(1),
		CS_PLAY_BGM(NA_BGM_OPENING, 0, 1, 0, 0, 0, 0, 0, 0, 0, 0),
	CS_END(),
};`

	parsed, err := Parse(text)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	cmds := parsed[0].Commands
	if len(cmds) != 3 {
		t.Fatalf("got %d commands, want 3", len(cmds))
	}

	cam := cmds[0].Camera
	if cam == nil || cam.Kind != CamEyeSpline || len(cam.Points) != 2 {
		t.Fatalf("camera list = %+v", cam)
	}
	if cam.Points[0].Continue != CamContinue || !cam.Points[1].IsStop() {
		t.Errorf("continue flags = %q, %q", cam.Points[0].Continue, cam.Points[1].Continue)
	}

	cues := cmds[1].ActorCues
	if cues == nil || cues.CmdType != "0x000F" {
		t.Fatalf("actor cues = %+v", cues)
	}
	wantRot := [3]math.Binang{0, 0x8E39, 0x4000}
	if cues.Cues[0].Rotation != wantRot {
		t.Errorf("Rotation = %#v, want %#v", cues.Cues[0].Rotation, wantRot)
	}

	if seq := cmds[2].Sequence; seq == nil || seq.Kind != SeqStart || seq.Entries[0].Value != "NA_BGM_OPENING" {
		t.Errorf("sequence = %+v", seq)
	}
}

func TestParseCommandType(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"short hex is padded", "0xF", "0x000F"},
		{"upper prefix hex is padded", "0X1a", "0x001A"},
		{"decimal kept as written", "15", "15"},
		{"enum name kept as written", "CS_CMD_ACTOR_CUE_1_0", "CS_CMD_ACTOR_CUE_1_0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text := `CutsceneData types[] = {
	CS_BEGIN_CUTSCENE(1, 20),
	CS_ACTOR_CUE_LIST(` + tt.in + `, 1),
		CS_ACTOR_CUE(0x0001, 0, 10, 0x0000, 0x0000, 0x0000, 0, 0, 0, 0, 0, 0, 0.0f, 0.0f, 0.0f),
	CS_END(),
};`
			parsed, err := Parse(text)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			cues := parsed[0].Commands[0].ActorCues
			if cues == nil {
				t.Fatalf("command = %+v, want actor cue list", parsed[0].Commands[0])
			}
			if cues.CmdType != tt.want {
				t.Errorf("CmdType = %q, want %q", cues.CmdType, tt.want)
			}
		})
	}
}

func TestParseRotation(t *testing.T) {
	tests := []struct {
		in   string
		want math.Binang
	}{
		{"0x8000", 0x8000},
		{"0xFFFFFFFF", 0xFFFF},
		{"DEG_TO_BINANG(200.0f)", 0x8E39},
		{"90", 0x4000},
		{"90.0f", 0x4000},
		{"720", 0xFFFF},
	}

	for _, tt := range tests {
		got, err := parseRotation(tt.in)
		if err != nil {
			t.Errorf("parseRotation(%q) error = %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("parseRotation(%q) = 0x%04X, want 0x%04X", tt.in, uint16(got), uint16(tt.want))
		}
	}
}

func TestMaterialize(t *testing.T) {
	cs := createTestCutscene(5)
	eye := cs.Commands[2].Camera
	for i := range eye.Points {
		eye.Points[i].Frame = 0
	}
	eye.Points[0].Frame = 3
	eye.Points[2].Frame = 5
	eye.EndFrame = 1
	cs.Commands[3].Camera.Points[1].Roll = 7

	tree, warnings, err := Materialize(cs)
	if err != nil {
		t.Fatalf("Materialize() error = %v", err)
	}
	if tree.Name != "Cutscene.test_cs" {
		t.Errorf("Name = %q", tree.Name)
	}
	if len(tree.CueLists) != 2 || tree.CueLists[0].Name != "test_cs.Actor Cue List 01" || tree.CueLists[1].Name != "test_cs.Player Cue List 01" {
		t.Errorf("CueLists = %+v", tree.CueLists)
	}
	if got := tree.CueLists[0].Cues[1].Rotation[1]; got != 270 {
		t.Errorf("cue rotation = %v, want 270", got)
	}
	if len(tree.Shots) != 1 {
		t.Fatalf("got %d shots, want 1", len(tree.Shots))
	}
	shot := tree.Shots[0]
	if len(shot.Points) != 4 {
		t.Errorf("shot has %d points, want 4", len(shot.Points))
	}
	if shot.Points[1].Eye != [3]int{10, 50, -101} || shot.Points[1].AT != [3]int{510, 50, -101} {
		t.Errorf("shot point = %+v", shot.Points[1])
	}
	if p := shot.Points[1]; p.Frame != 30 || p.Roll != 7 {
		t.Errorf("shot point timing = frame %d roll %d, want the AT values 30 and 7", p.Frame, p.Roll)
	}
	// One warning per eye point with a frame, plus the end frame.
	if len(warnings) != 3 {
		t.Errorf("warnings = %v, want 3", warnings)
	}
	if len(warnings) > 1 && !strings.Contains(warnings[1].Message, "point 3") {
		t.Errorf("second warning = %q, want it to name point 3", warnings[1].Message)
	}

	cs.Commands[0].ActorCues.Cues[1].StartFrame = 11
	if _, _, err := Materialize(cs); !errors.Is(err, errs.ErrContinuity) {
		t.Errorf("Materialize() error = %v, want ErrContinuity", err)
	}
}
