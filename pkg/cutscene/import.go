package cutscene

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/timtadh/lexmachine"
	"github.com/timtadh/lexmachine/machines"
	"go.uber.org/zap"

	"github.com/Faultbox/z64scene/pkg/errs"
	"github.com/Faultbox/z64scene/pkg/math"
)

const (
	tokenIdent = iota
	tokenNumber
	tokenString
	tokenLParen
	tokenRParen
	tokenLBrace
	tokenRBrace
	tokenComma
	tokenSemicolon
	tokenOther
)

var lexer *lexmachine.Lexer

func init() {
	lexer = lexmachine.NewLexer()
	lexer.Add([]byte(`[a-zA-Z_][a-zA-Z0-9_]*`), getToken(tokenIdent))
	lexer.Add([]byte(`\-?(0[xX][0-9a-fA-F]+|[0-9]+\.?[0-9]*[fF]?|\.[0-9]+[fF]?)`), getToken(tokenNumber))
	lexer.Add([]byte(`"(\\.|[^"])*"`), getToken(tokenString))
	lexer.Add([]byte(`\(`), getToken(tokenLParen))
	lexer.Add([]byte(`\)`), getToken(tokenRParen))
	lexer.Add([]byte(`\{`), getToken(tokenLBrace))
	lexer.Add([]byte(`\}`), getToken(tokenRBrace))
	lexer.Add([]byte(`,`), getToken(tokenComma))
	lexer.Add([]byte(`;`), getToken(tokenSemicolon))
	lexer.Add([]byte(`[\[\]=&\*\+<>\|/~!%\^\?:\.\-]`), getToken(tokenOther))
	lexer.Add([]byte(`//[^\n]*`), skip)
	lexer.Add([]byte(`/\*([^*]|\r|\n|(\*+([^*/]|\r|\n)))*\*+/`), skip)
	lexer.Add([]byte(`#[^\n]*`), skip)
	lexer.Add([]byte(`( |\t|\n|\r)+`), skip)
}

func getToken(tokenType int) lexmachine.Action {
	return func(s *lexmachine.Scanner, m *machines.Match) (interface{}, error) {
		return s.Token(tokenType, string(m.Bytes), m), nil
	}
}

func skip(scan *lexmachine.Scanner, match *machines.Match) (interface{}, error) {
	return nil, nil
}

// legacyNames maps old macro names to their current names.
var legacyNames = map[string]string{
	"CS_CMD_CONTINUE":                "CS_CAM_CONTINUE",
	"CS_CMD_STOP":                    "CS_CAM_STOP",
	"CS_CAM_POS_LIST":                "CS_CAM_EYE_SPLINE",
	"CS_CAM_FOCUS_POINT_LIST":        "CS_CAM_AT_SPLINE",
	"CS_CAM_POS_PLAYER_LIST":         "CS_CAM_EYE_SPLINE_REL_TO_PLAYER",
	"CS_CAM_FOCUS_POINT_PLAYER_LIST": "CS_CAM_AT_SPLINE_REL_TO_PLAYER",
	"CS_CAM_POS":                     "CS_CAM_POINT",
	"CS_CAM_FOCUS_POINT":             "CS_CAM_POINT",
	"CS_CAM_POS_PLAYER":              "CS_CAM_POINT",
	"CS_CAM_FOCUS_POINT_PLAYER":      "CS_CAM_POINT",
	"CS_CMD_07_LIST":                 "CS_CAM_EYE",
	"CS_CMD_08_LIST":                 "CS_CAM_AT",
	"CS_CMD_07":                      "CS_CAM_POINT",
	"CS_CMD_08":                      "CS_CAM_POINT",
	"CS_NPC_ACTION_LIST":             "CS_ACTOR_CUE_LIST",
	"CS_NPC_ACTION":                  "CS_ACTOR_CUE",
	"CS_PLAYER_ACTION_LIST":          "CS_PLAYER_CUE_LIST",
	"CS_PLAYER_ACTION":               "CS_PLAYER_CUE",
	"CS_LIGHTING_LIST":               "CS_LIGHT_SETTING_LIST",
	"CS_LIGHTING":                    "CS_LIGHT_SETTING",
	"CS_PLAY_BGM_LIST":               "CS_START_SEQ_LIST",
	"CS_PLAY_BGM":                    "CS_START_SEQ",
	"CS_STOP_BGM_LIST":               "CS_STOP_SEQ_LIST",
	"CS_STOP_BGM":                    "CS_STOP_SEQ",
	"CS_FADE_BGM_LIST":               "CS_FADE_OUT_SEQ_LIST",
	"CS_FADE_BGM":                    "CS_FADE_OUT_SEQ",
	"CS_CMD_09_LIST":                 "CS_RUMBLE_CONTROLLER_LIST",
	"CS_CMD_09":                      "CS_RUMBLE_CONTROLLER",
	"CS_TEXT_DISPLAY_TEXTBOX":        "CS_TEXT",
	"CS_TEXT_LEARN_SONG":             "CS_TEXT_OCARINA_ACTION",
	"CS_SCENE_TRANS_FX":              "CS_TRANSITION",
	"CS_TERMINATOR":                  "CS_DESTINATION",
}

type token struct {
	typ  int
	text string
	line int
}

// tokenize splits source text into tokens, dropping comments and preprocessor
// lines and renaming legacy identifiers.
func tokenize(text string) ([]token, error) {
	scanner, err := lexer.Scanner([]byte(text))
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to create lexer scanner")
	}

	var out []token
	for itok, err, eos := scanner.Next(); !eos; itok, err, eos = scanner.Next() {
		if ui, is := err.(*machines.UnconsumedInput); is {
			scanner.TC = ui.FailTC
			continue
		} else if err != nil {
			return nil, errors.Wrapf(err, "Failed to parse token")
		}
		tok := itok.(*lexmachine.Token)
		t := token{typ: tok.Type, text: string(tok.Lexeme), line: tok.StartLine}
		if t.typ == tokenIdent {
			if renamed, ok := legacyNames[t.text]; ok {
				t.text = renamed
			}
		}
		out = append(out, t)
	}
	return out, nil
}

// Parser reads CutsceneData arrays out of C source text.
type Parser struct {
	log *zap.Logger
	// Warnings collects the non-fatal problems of the last Parse call.
	Warnings []Warning
}

// NewParser creates a parser logging to log. A nil logger discards output.
func NewParser(log *zap.Logger) *Parser {
	if log == nil {
		log = zap.NewNop()
	}
	return &Parser{log: log}
}

// Parse reads every CutsceneData array in text with a discarding logger.
func Parse(text string) ([]*Cutscene, error) {
	return NewParser(nil).Parse(text)
}

// Parse reads every CutsceneData array in text, in source order.
//
// Unknown commands are logged and close the current list. A list entry with
// no open list is an errs.ErrFormat.
func (p *Parser) Parse(text string) ([]*Cutscene, error) {
	p.Warnings = nil
	toks, err := tokenize(text)
	if err != nil {
		return nil, err
	}

	var result []*Cutscene
	for i := 0; i < len(toks); i++ {
		if toks[i].typ != tokenIdent || toks[i].text != "CutsceneData" {
			continue
		}
		if i+1 >= len(toks) || toks[i+1].typ != tokenIdent {
			return nil, errors.Wrapf(errs.Format("expected a name after CutsceneData"), "line %d", toks[i].line)
		}
		name := toks[i+1].text

		// Skip to the opening brace; a bare declaration has none.
		j := i + 2
		for j < len(toks) && toks[j].typ != tokenLBrace && toks[j].typ != tokenSemicolon {
			j++
		}
		if j >= len(toks) || toks[j].typ == tokenSemicolon {
			i = j
			continue
		}

		cs, next, err := p.parseBlock(name, toks, j+1)
		if err != nil {
			return nil, errors.Wrapf(err, "cutscene %s", name)
		}
		result = append(result, cs)
		i = next
	}
	return result, nil
}

type call struct {
	name string
	args []string
	line int
}

// readCall reads "NAME(args)" at toks[i], splitting arguments on top level commas.
func readCall(toks []token, i int) (call, int, error) {
	c := call{name: toks[i].text, line: toks[i].line}
	i++
	if i >= len(toks) || toks[i].typ != tokenLParen {
		return c, i, nil
	}

	depth := 0
	var arg strings.Builder
	for ; i < len(toks); i++ {
		t := toks[i]
		switch t.typ {
		case tokenLParen:
			depth++
			if depth == 1 {
				continue
			}
		case tokenRParen:
			depth--
			if depth == 0 {
				if s := arg.String(); s != "" || len(c.args) > 0 {
					c.args = append(c.args, s)
				}
				return c, i + 1, nil
			}
		case tokenComma:
			if depth == 1 {
				c.args = append(c.args, arg.String())
				arg.Reset()
				continue
			}
		}
		arg.WriteString(t.text)
	}
	return c, i, errs.Format("line %d: unterminated %s(", c.line, c.name)
}

type listStart func(c call) (Command, error)

type listEntry func(cmd *Command, c call) error

var listStarts = map[string]listStart{
	"CS_ACTOR_CUE_LIST": func(c call) (Command, error) {
		if err := wantArgs(c, 2); err != nil {
			return Command{}, err
		}
		return Command{ActorCues: &ActorCueList{CmdType: normalizeCmdType(c.args[0]), Cues: []ActorCue{}}}, nil
	},
	"CS_PLAYER_CUE_LIST": func(c call) (Command, error) {
		if err := wantArgs(c, 1); err != nil {
			return Command{}, err
		}
		return Command{ActorCues: &ActorCueList{Player: true, Cues: []ActorCue{}}}, nil
	},
	"CS_CAM_EYE_SPLINE":               camListStart(CamEyeSpline),
	"CS_CAM_AT_SPLINE":                camListStart(CamATSpline),
	"CS_CAM_EYE_SPLINE_REL_TO_PLAYER": camListStart(CamEyeSplineRelToPlayer),
	"CS_CAM_AT_SPLINE_REL_TO_PLAYER":  camListStart(CamATSplineRelToPlayer),
	"CS_CAM_EYE":                      camListStart(CamEye),
	"CS_CAM_AT":                       camListStart(CamAT),
	"CS_TEXT_LIST": countedList(func() Command {
		return Command{Text: &TextList{Entries: []TextEntry{}}}
	}),
	"CS_LIGHT_SETTING_LIST": countedList(func() Command {
		return Command{Lighting: &LightSettingList{Entries: []LightSetting{}}}
	}),
	"CS_TIME_LIST": countedList(func() Command {
		return Command{Time: &TimeList{Entries: []TimeEntry{}}}
	}),
	"CS_START_SEQ_LIST":    seqListStart(SeqStart),
	"CS_STOP_SEQ_LIST":     seqListStart(SeqStop),
	"CS_FADE_OUT_SEQ_LIST": seqListStart(SeqFadeOut),
	"CS_MISC_LIST": countedList(func() Command {
		return Command{Misc: &MiscList{Entries: []MiscEntry{}}}
	}),
	"CS_RUMBLE_CONTROLLER_LIST": countedList(func() Command {
		return Command{Rumble: &RumbleList{Entries: []RumbleEntry{}}}
	}),
}

var listEntries = map[string]listEntry{
	"CS_ACTOR_CUE":  parseActorCue,
	"CS_PLAYER_CUE": parseActorCue,
	"CS_CAM_POINT":  parseCamPoint,
	"CS_TEXT": func(cmd *Command, c call) error {
		if cmd.Text == nil {
			return errNoList
		}
		if err := wantArgs(c, 6); err != nil {
			return err
		}
		start, end, err := frames(c.args[1], c.args[2])
		if err != nil {
			return err
		}
		cmd.Text.Entries = append(cmd.Text.Entries, TextEntry{
			Kind: TextNormal, TextID: c.args[0], StartFrame: start, EndFrame: end,
			Type: c.args[3], AltTextID1: c.args[4], AltTextID2: c.args[5],
		})
		return nil
	},
	"CS_TEXT_NONE": func(cmd *Command, c call) error {
		if cmd.Text == nil {
			return errNoList
		}
		if err := wantArgs(c, 2); err != nil {
			return err
		}
		start, end, err := frames(c.args[0], c.args[1])
		if err != nil {
			return err
		}
		cmd.Text.Entries = append(cmd.Text.Entries, TextEntry{Kind: TextNone, StartFrame: start, EndFrame: end})
		return nil
	},
	"CS_TEXT_OCARINA_ACTION": func(cmd *Command, c call) error {
		if cmd.Text == nil {
			return errNoList
		}
		if err := wantArgs(c, 4); err != nil {
			return err
		}
		start, end, err := frames(c.args[1], c.args[2])
		if err != nil {
			return err
		}
		cmd.Text.Entries = append(cmd.Text.Entries, TextEntry{
			Kind: TextOcarinaAction, OcarinaAction: c.args[0], StartFrame: start, EndFrame: end, TextID: c.args[3],
		})
		return nil
	},
	"CS_LIGHT_SETTING": func(cmd *Command, c call) error {
		if cmd.Lighting == nil {
			return errNoList
		}
		if err := wantArgs(c, 11); err != nil {
			return err
		}
		setting, err := parseInt(c.args[0])
		if err != nil {
			return err
		}
		start, end, err := frames(c.args[1], c.args[2])
		if err != nil {
			return err
		}
		cmd.Lighting.Entries = append(cmd.Lighting.Entries, LightSetting{Setting: setting, StartFrame: start, EndFrame: end})
		return nil
	},
	"CS_TIME": func(cmd *Command, c call) error {
		if cmd.Time == nil {
			return errNoList
		}
		if err := wantArgs(c, 5); err != nil {
			return err
		}
		start, end, err := frames(c.args[1], c.args[2])
		if err != nil {
			return err
		}
		hour, err := parseInt(c.args[3])
		if err != nil {
			return err
		}
		minute, err := parseInt(c.args[4])
		if err != nil {
			return err
		}
		cmd.Time.Entries = append(cmd.Time.Entries, TimeEntry{StartFrame: start, EndFrame: end, Hour: hour, Minute: minute})
		return nil
	},
	"CS_START_SEQ":    seqEntry(SeqStart),
	"CS_STOP_SEQ":     seqEntry(SeqStop),
	"CS_FADE_OUT_SEQ": seqEntry(SeqFadeOut),
	"CS_MISC": func(cmd *Command, c call) error {
		if cmd.Misc == nil {
			return errNoList
		}
		if err := wantArgs(c, 14); err != nil {
			return err
		}
		start, end, err := frames(c.args[1], c.args[2])
		if err != nil {
			return err
		}
		cmd.Misc.Entries = append(cmd.Misc.Entries, MiscEntry{Type: c.args[0], StartFrame: start, EndFrame: end})
		return nil
	},
	"CS_RUMBLE_CONTROLLER": func(cmd *Command, c call) error {
		if cmd.Rumble == nil {
			return errNoList
		}
		if err := wantArgs(c, 8); err != nil {
			return err
		}
		start, end, err := frames(c.args[1], c.args[2])
		if err != nil {
			return err
		}
		cmd.Rumble.Entries = append(cmd.Rumble.Entries, RumbleEntry{
			StartFrame: start, EndFrame: end,
			SourceStrength: c.args[3], Duration: c.args[4], DecreaseRate: c.args[5],
		})
		return nil
	},
}

var errNoList = errs.Format("list entry without an open list")

// parseBlock reads commands from toks[i] up to the closing brace.
func (p *Parser) parseBlock(name string, toks []token, i int) (*Cutscene, int, error) {
	cs := &Cutscene{Name: name, Commands: []Command{}}
	open := -1
	ignoring := false

	for i < len(toks) {
		t := toks[i]
		switch t.typ {
		case tokenRBrace:
			return cs, i, nil
		case tokenIdent:
		default:
			i++
			continue
		}

		c, next, err := readCall(toks, i)
		if err != nil {
			return nil, i, err
		}
		i = next

		if start, ok := listStarts[c.name]; ok {
			cmd, err := start(c)
			if err != nil {
				return nil, i, err
			}
			cs.Commands = append(cs.Commands, cmd)
			open = len(cs.Commands) - 1
			ignoring = false
			continue
		}
		if parse, ok := listEntries[c.name]; ok {
			if open < 0 {
				return nil, i, errors.Wrapf(errNoList, "line %d: %s", c.line, c.name)
			}
			if err := parse(&cs.Commands[open], c); err != nil {
				return nil, i, errors.Wrapf(err, "line %d: %s", c.line, c.name)
			}
			continue
		}

		switch c.name {
		case "CS_BEGIN_CUTSCENE":
			if err := wantArgs(c, 2); err != nil {
				return nil, i, err
			}
			if cs.FrameCount, err = parseInt(c.args[1]); err != nil {
				return nil, i, errors.Wrapf(err, "line %d: frame count", c.line)
			}
		case "CS_TRANSITION", "CS_DESTINATION":
			if err := wantArgs(c, 3); err != nil {
				return nil, i, err
			}
			start, end, err := frames(c.args[1], c.args[2])
			if err != nil {
				return nil, i, errors.Wrapf(err, "line %d: %s", c.line, c.name)
			}
			if c.name == "CS_TRANSITION" {
				cs.Commands = append(cs.Commands, Command{Transition: &Transition{Type: c.args[0], StartFrame: start, EndFrame: end}})
			} else {
				cs.Commands = append(cs.Commands, Command{Destination: &Destination{Destination: c.args[0], StartFrame: start, EndFrame: end}})
			}
			open = -1
		case "CS_END":
			open = -1
		case "CS_UNK_DATA_LIST":
			open = -1
			ignoring = true
		case "CS_UNK_DATA":
			if !ignoring {
				p.warn(name, "CS_UNK_DATA outside of a CS_UNK_DATA_LIST at line %d", c.line)
			}
		default:
			p.warn(name, "unknown command %s at line %d", c.name, c.line)
			open = -1
		}
	}
	return nil, i, errs.Format("cutscene %s is missing its closing brace", name)
}

func (p *Parser) warn(cutscene, format string, args ...any) {
	w := newWarning(cutscene, format, args...)
	p.Warnings = append(p.Warnings, w)
	p.log.Warn("cutscene import", zap.String("cutscene", cutscene), zap.String("warning", w.Message))
}

func camListStart(kind CamKind) listStart {
	return func(c call) (Command, error) {
		if err := wantArgs(c, 2); err != nil {
			return Command{}, err
		}
		start, end, err := frames(c.args[0], c.args[1])
		if err != nil {
			return Command{}, err
		}
		return Command{Camera: &CamList{Kind: kind, StartFrame: start, EndFrame: end, Points: []CamPoint{}}}, nil
	}
}

func countedList(build func() Command) listStart {
	return func(c call) (Command, error) {
		if err := wantArgs(c, 1); err != nil {
			return Command{}, err
		}
		return build(), nil
	}
}

func seqListStart(kind SeqKind) listStart {
	return countedList(func() Command {
		return Command{Sequence: &SeqList{Kind: kind, Entries: []SeqEntry{}}}
	})
}

func seqEntry(kind SeqKind) listEntry {
	return func(cmd *Command, c call) error {
		if cmd.Sequence == nil || cmd.Sequence.Kind != kind {
			return errNoList
		}
		if err := wantArgs(c, 11); err != nil {
			return err
		}
		start, end, err := frames(c.args[1], c.args[2])
		if err != nil {
			return err
		}
		cmd.Sequence.Entries = append(cmd.Sequence.Entries, SeqEntry{Value: c.args[0], StartFrame: start, EndFrame: end})
		return nil
	}
}

func parseActorCue(cmd *Command, c call) error {
	if cmd.ActorCues == nil {
		return errNoList
	}
	if err := wantArgs(c, 15); err != nil {
		return err
	}
	cue := ActorCue{Action: c.args[0]}
	var err error
	if cue.StartFrame, cue.EndFrame, err = frames(c.args[1], c.args[2]); err != nil {
		return err
	}
	for k := 0; k < 3; k++ {
		if cue.Rotation[k], err = parseRotation(c.args[3+k]); err != nil {
			return err
		}
		if cue.StartPos[k], err = parseInt(c.args[6+k]); err != nil {
			return err
		}
		if cue.EndPos[k], err = parseInt(c.args[9+k]); err != nil {
			return err
		}
	}
	cmd.ActorCues.Cues = append(cmd.ActorCues.Cues, cue)
	return nil
}

func parseCamPoint(cmd *Command, c call) error {
	if cmd.Camera == nil {
		return errNoList
	}
	if err := wantArgs(c, 8); err != nil {
		return err
	}
	if n := len(cmd.Camera.Points); n > 0 && cmd.Camera.Points[n-1].IsStop() {
		return errs.Format("camera point after the stopping point")
	}
	p := CamPoint{Continue: c.args[0]}
	var err error
	if p.Roll, err = parseInt(c.args[1]); err != nil {
		return err
	}
	if p.Frame, err = parseInt(c.args[2]); err != nil {
		return err
	}
	if p.ViewAngle, err = math.ParseFloat(c.args[3]); err != nil {
		return errs.Format("view angle %q", c.args[3])
	}
	for k := 0; k < 3; k++ {
		if p.Pos[k], err = parseInt(c.args[4+k]); err != nil {
			return err
		}
	}
	cmd.Camera.Points = append(cmd.Camera.Points, p)
	return nil
}

func wantArgs(c call, n int) error {
	if len(c.args) != n {
		return errs.Format("line %d: %s takes %d arguments, got %d", c.line, c.name, n, len(c.args))
	}
	return nil
}

func frames(start, end string) (int, int, error) {
	s, err := parseInt(start)
	if err != nil {
		return 0, 0, err
	}
	e, err := parseInt(end)
	if err != nil {
		return 0, 0, err
	}
	return s, e, nil
}

// parseInt reads a decimal or hexadecimal word.
func parseInt(s string) (int, error) {
	v, err := math.ParseWord(s)
	if err != nil {
		return 0, errs.Format("integer %q", s)
	}
	return int(v), nil
}

// parseRotation reads a binary angle. Hexadecimal values are taken as is;
// DEG_TO_BINANG(x) and decimal values are degrees.
func parseRotation(s string) (math.Binang, error) {
	if inner, ok := strings.CutPrefix(s, "DEG_TO_BINANG("); ok {
		s = strings.TrimSuffix(inner, ")")
	} else if isHex(s) {
		v, err := math.ParseWord(s)
		if err != nil {
			return 0, errs.Format("rotation %q", s)
		}
		return math.Binang(uint16(v)), nil
	}

	deg, err := strconv.ParseFloat(strings.TrimSuffix(s, "f"), 64)
	if err != nil {
		return 0, errs.Format("rotation %q", s)
	}
	return math.DegToBinang(deg), nil
}

func isHex(s string) bool {
	s = strings.TrimPrefix(s, "-")
	return strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X")
}

// normalizeCmdType pads hexadecimal command types to four digits, so 0xF
// becomes 0x000F. Decimal literals and enum names are kept as written.
func normalizeCmdType(s string) string {
	if !isHex(s) {
		return s
	}
	v, err := math.ParseWord(s)
	if err != nil {
		return s
	}
	return fmt.Sprintf("0x%04X", uint16(v))
}
