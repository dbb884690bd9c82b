package main

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/npillmayer/thaifix/fontasset"
	"github.com/npillmayer/thaifix/glyphpair"
	"github.com/npillmayer/thaifix/preview"
	"github.com/npillmayer/thaifix/session"
	"github.com/npillmayer/thaifix/thai"
	"github.com/pterm/pterm"
)

// Intp is our interpreter object
type Intp struct {
	repl    *readline.Instance
	session *session.Session
}

func (intp *Intp) String() string {
	s := intp.session
	if s == nil || s.Asset == nil {
		return "( no asset )"
	}
	dirty := ""
	if s.Asset.Dirty() {
		dirty = " *"
	}
	return fmt.Sprintf("( asset=%s%s, pairs=%d, lang=%s )", s.Asset.Name, dirty, len(s.Pairs), s.Language)
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		pterm.Println(intp.String())
		line, err := intp.repl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		op, err := parseCommand(line)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		quit, err := intp.execute(op)
		if err != nil {
			pterm.Error.Println(err)
			continue
		}
		if quit {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

// Op is a parsed command line.
type Op struct {
	code int
	args []string
}

const (
	QUIT int = iota
	HELP
	ASSET
	LANG
	LIST
	ADD
	REMOVE
	TOGGLE
	GROUP
	OFFSET
	RESET
	FIX
	EXTRACT
	LOAD
	RECORDS
	GROUPS
	PREVIEW
)

type opInfo struct {
	name  string
	usage string
	fn    func(*Intp, *Op) (bool, error)
}

var ops []opInfo

func init() {
	ops = []opInfo{
		QUIT:    {"quit", "quit", quitOp},
		HELP:    {"help", "help", helpOp},
		ASSET:   {"asset", "asset <asset.json|font.ttf>", assetOp},
		LANG:    {"lang", "lang <th|en>", langOp},
		LIST:    {"list", "list", listOp},
		ADD:     {"add", "add [<left group> <right group>]", addOp},
		REMOVE:  {"rm", "rm <n>", removeOp},
		TOGGLE:  {"toggle", "toggle <n>", toggleOp},
		GROUP:   {"group", "group <n> <left|right> <group>", groupOp},
		OFFSET:  {"offset", "offset <n> <left|right> <x> <y>", offsetOp},
		RESET:   {"reset", "reset", resetOp},
		FIX:     {"fix", "fix", fixOp},
		EXTRACT: {"extract", "extract [<dir>]", extractOp},
		LOAD:    {"load", "load <preset>", loadOp},
		RECORDS: {"records", "records", recordsOp},
		GROUPS:  {"groups", "groups", groupsOp},
		PREVIEW: {"preview", "preview <text> [<file.png>]", previewOp},
	}
}

func parseCommand(line string) (*Op, error) {
	fields := strings.Fields(line)
	name := strings.ToLower(fields[0])
	for code, info := range ops {
		if info.name == name {
			tracer().Debugf("parsed command: %v", fields)
			return &Op{code: code, args: fields[1:]}, nil
		}
	}
	return nil, fmt.Errorf("unknown command '%s', try 'help'", fields[0])
}

func completer() *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(ops))
	for _, info := range ops {
		items = append(items, readline.PcItem(info.name))
	}
	return readline.NewPrefixCompleter(items...)
}

func (intp *Intp) execute(op *Op) (bool, error) {
	if op.code < 0 || op.code >= len(ops) {
		return false, fmt.Errorf("unknown command code: %d", op.code)
	}
	return ops[op.code].fn(intp, op)
}

var errUsage = errors.New("usage")

func usage(op *Op) error {
	return fmt.Errorf("%w: %s", errUsage, ops[op.code].usage)
}

func (op *Op) index(i int) (int, error) {
	if len(op.args) <= i {
		return 0, usage(op)
	}
	n, err := strconv.Atoi(op.args[i])
	if err != nil {
		return 0, fmt.Errorf("not a pair number: %s", op.args[i])
	}
	return n, nil
}

func (op *Op) side(i int) (glyphpair.Side, error) {
	if len(op.args) <= i {
		return glyphpair.Left, usage(op)
	}
	return glyphpair.ParseSide(op.args[i])
}

// --- Operations -------------------------------------------------------

func quitOp(intp *Intp, op *Op) (bool, error) {
	return true, nil
}

func helpOp(intp *Intp, op *Op) (bool, error) {
	data := pterm.TableData{{"Command", "Usage"}}
	for _, info := range ops {
		data = append(data, []string{info.name, info.usage})
	}
	return false, pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func assetOp(intp *Intp, op *Op) (bool, error) {
	if len(op.args) != 1 {
		return false, usage(op)
	}
	if err := intp.session.SelectAsset(op.args[0]); err != nil {
		return false, err
	}
	a := intp.session.Asset
	pterm.Info.Printf("font asset %s: %d characters, %d pair records, %d glyph pairs\n",
		a.Name, len(a.Characters), a.Features.Len(), len(intp.session.Pairs))
	return false, nil
}

func langOp(intp *Intp, op *Op) (bool, error) {
	if len(op.args) != 1 {
		return false, usage(op)
	}
	lang, err := session.ParseLanguage(op.args[0])
	if err != nil {
		return false, err
	}
	return false, intp.session.SetLanguage(lang)
}

func listOp(intp *Intp, op *Op) (bool, error) {
	s := intp.session
	if len(s.Pairs) == 0 {
		pterm.Info.Println("no glyph pairs")
		return false, nil
	}
	tag := s.Language.Tag()
	data := pterm.TableData{{"#", "On", "Left", "Offset", "Right", "Offset", "Glyphs"}}
	for i, p := range s.Pairs {
		on := "-"
		if p.Enabled {
			on = "x"
		}
		data = append(data, []string{
			strconv.Itoa(i), on,
			thai.GroupName(p.Left.Type, tag), p.Left.Offset.String(),
			thai.GroupName(p.Right.Type, tag), p.Right.Offset.String(),
			p.Name(),
		})
	}
	return false, pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func addOp(intp *Intp, op *Op) (bool, error) {
	switch len(op.args) {
	case 0:
		return false, intp.session.Add()
	case 2:
		p := glyphpair.NewPair()
		for i, side := range []glyphpair.Side{glyphpair.Left, glyphpair.Right} {
			g, err := thai.ParseGroupType(op.args[i])
			if err != nil {
				return false, err
			}
			p.Side(side).SetGroup(g)
		}
		return false, intp.session.Add(p)
	}
	return false, usage(op)
}

func removeOp(intp *Intp, op *Op) (bool, error) {
	n, err := op.index(0)
	if err != nil {
		return false, err
	}
	return false, intp.session.Remove(n)
}

func toggleOp(intp *Intp, op *Op) (bool, error) {
	n, err := op.index(0)
	if err != nil {
		return false, err
	}
	if n < 0 || n >= len(intp.session.Pairs) {
		return false, fmt.Errorf("no glyph pair #%d", n)
	}
	return false, intp.session.SetEnabled(n, !intp.session.Pairs[n].Enabled)
}

func groupOp(intp *Intp, op *Op) (bool, error) {
	if len(op.args) != 3 {
		return false, usage(op)
	}
	n, err := op.index(0)
	if err != nil {
		return false, err
	}
	side, err := op.side(1)
	if err != nil {
		return false, err
	}
	g, err := thai.ParseGroupType(op.args[2])
	if err != nil {
		return false, err
	}
	return false, intp.session.SetGroup(n, side, g)
}

func offsetOp(intp *Intp, op *Op) (bool, error) {
	if len(op.args) != 4 {
		return false, usage(op)
	}
	n, err := op.index(0)
	if err != nil {
		return false, err
	}
	side, err := op.side(1)
	if err != nil {
		return false, err
	}
	var xy [2]float64
	for i := range xy {
		if xy[i], err = strconv.ParseFloat(op.args[2+i], 64); err != nil {
			return false, fmt.Errorf("not an offset: %s", op.args[2+i])
		}
	}
	return false, intp.session.SetOffset(n, side, xy[0], xy[1])
}

func resetOp(intp *Intp, op *Op) (bool, error) {
	return false, intp.session.Reset()
}

func fixOp(intp *Intp, op *Op) (bool, error) {
	report, err := intp.session.Fix()
	if err != nil {
		return false, err
	}
	pterm.Info.Printf("%d pairs (%d disabled): %d records created, %d updated, %d cleared\n",
		report.Pairs, report.Disabled, report.Created, report.Updated, report.Cleared)
	if len(report.Unresolved) > 0 {
		pterm.Info.Printf("characters missing in font: %s\n", string(report.Unresolved))
	}
	return false, nil
}

func extractOp(intp *Intp, op *Op) (bool, error) {
	dir := "."
	if intp.session.Asset != nil {
		dir = filepath.Dir(intp.session.Asset.Path())
	}
	if len(op.args) > 0 {
		dir = op.args[0]
	}
	path, err := intp.session.ExtractPreset(dir)
	if err != nil {
		return false, err
	}
	pterm.Info.Printf("preset written to %s\n", path)
	return false, nil
}

func loadOp(intp *Intp, op *Op) (bool, error) {
	if len(op.args) != 1 {
		return false, usage(op)
	}
	if err := intp.session.LoadPreset(op.args[0]); err != nil {
		return false, err
	}
	pterm.Info.Printf("loaded %d glyph pairs, %d records written\n",
		len(intp.session.Pairs), intp.session.LastReport.Touched())
	return false, nil
}

func recordsOp(intp *Intp, op *Op) (bool, error) {
	a := intp.session.Asset
	if a == nil {
		return false, session.ErrNoAsset
	}
	data := pterm.TableData{{"First", "Second", "First value", "Second value"}}
	a.Features.Each(func(rec *fontasset.PairAdjustmentRecord) {
		data = append(data, []string{
			glyphLabel(a, rec.First.GlyphIndex), glyphLabel(a, rec.Second.GlyphIndex),
			fmt.Sprint(rec.First.Value), fmt.Sprint(rec.Second.Value),
		})
	})
	if len(data) == 1 {
		pterm.Info.Println("no pair adjustment records")
		return false, nil
	}
	return false, pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func glyphLabel(a *fontasset.Asset, g fontasset.GlyphIndex) string {
	if runes := a.Runes(g); len(runes) > 0 {
		return fmt.Sprintf("%d %s", g, thai.DisplayString(string(runes[0])))
	}
	return strconv.Itoa(int(g))
}

func groupsOp(intp *Intp, op *Op) (bool, error) {
	tag := intp.session.Language.Tag()
	data := pterm.TableData{{"#", "Group", "Glyphs"}}
	for _, g := range thai.Groups() {
		var glyphs []string
		for _, r := range thai.Glyphs(g) {
			glyphs = append(glyphs, thai.DisplayString(string(r)))
		}
		data = append(data, []string{strconv.Itoa(int(g)), thai.GroupName(g, tag), strings.Join(glyphs, " ")})
	}
	return false, pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func previewOp(intp *Intp, op *Op) (bool, error) {
	a := intp.session.Asset
	if a == nil {
		return false, session.ErrNoAsset
	}
	if len(op.args) == 0 || len(op.args) > 2 {
		return false, usage(op)
	}
	out := a.Name + "_preview.png"
	if len(op.args) == 2 {
		out = op.args[1]
	}
	if err := preview.SavePNG(out, a, op.args[0], preview.DefaultOptions()); err != nil {
		return false, err
	}
	pterm.Info.Printf("preview written to %s\n", out)
	return false, nil
}
