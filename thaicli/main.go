package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/npillmayer/thaifix/session"
	"github.com/pterm/pterm"
)

// tracer traces with key 'thaifix'
func tracer() tracing.Trace {
	return tracing.Select("thaifix")
}

var traceKeys = []string{
	"thaifix", "thaifix.session", "thaifix.fixer", "thaifix.asset",
	"thaifix.glyphs", "thaifix.preview",
}

func main() {
	initDisplay()

	// set up logging
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	conf := testconfig.Conf{
		"tracing.adapter": "go",
	}
	for _, key := range traceKeys {
		conf["trace."+key] = "Error"
	}
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracing.SetTraceSelector(trace2go.Selector())

	// command line flags
	tlevel := flag.String("trace", "Info", "Trace level [Debug|Info|Error]")
	assetPath := flag.String("asset", "", "Font asset or font to open")
	cacheDir := flag.String("cache", "", "Directory for session state")
	flag.Parse()
	var level tracing.TraceLevel
	switch *tlevel {
	case "Debug":
		level = tracing.LevelDebug
	case "Info":
		level = tracing.LevelInfo
	case "Error":
		level = tracing.LevelError
	default:
		pterm.Error.Printf("Invalid trace level: %s\n", *tlevel)
		os.Exit(5)
	}
	for _, key := range traceKeys {
		tracing.Select(key).SetTraceLevel(level)
	}
	pterm.Info.Println("Welcome to the Thai font fixer") // colored welcome message
	//
	// open the session
	if *cacheDir != "" {
		conf["cache-dir"] = *cacheDir
	}
	sess, err := session.New(session.ConfigFrom(conf))
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(2)
	}
	if *assetPath != "" {
		err = sess.SelectAsset(*assetPath)
	} else {
		err = sess.Restore()
	}
	if err != nil {
		pterm.Error.Println(err)
	}
	//
	// set up REPL
	repl, err := readline.NewEx(&readline.Config{
		Prompt:          "thai > ",
		AutoComplete:    completer(),
		HistoryFile:     filepath.Join(sess.Config().CacheDir, "history"),
		InterruptPrompt: "^C",
		EOFPrompt:       "quit",
	})
	if err != nil {
		tracer().Errorf(err.Error())
		os.Exit(3)
	}
	defer repl.Close()
	intp := &Intp{repl: repl, session: sess}
	//
	// start receiving commands
	pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
	tracer().Infof("Trace level is %s", *tlevel)
	intp.REPL() // go into interactive mode
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.EnableDebugMessages()
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}
