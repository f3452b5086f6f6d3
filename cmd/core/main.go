// Copyright © 2016, The T Authors.

// Core is a line-oriented demo driver for the document core: it
// loads a file into a Doc, maintains a point over it, and serves a
// small set of stdin commands to move the point, insert text, read
// rendered lines and line/word/char counts, and save back to disk.
// It is mostly intended as an experiment, in the mold of ted: it
// exercises mark.Store, render, viewport, and linecounter together
// without any GUI.
//
// Commands, one per input line:
//
//	p        print the lines currently in view
//	g N      move the point N lines (negative moves up)
//	i text   insert text at the point
//	c        print line/word/char counts
//	w file   save the buffer to file
//	q        quit
package main

import (
	"bufio"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
	"github.com/pkg/profile"
	"golang.org/x/image/math/fixed"

	"github.com/neilbrown/edlib-sub004/attr"
	"github.com/neilbrown/edlib-sub004/core"
	"github.com/neilbrown/edlib-sub004/debugserver"
	"github.com/neilbrown/edlib-sub004/doc"
	"github.com/neilbrown/edlib-sub004/font"
	"github.com/neilbrown/edlib-sub004/linecounter"
	"github.com/neilbrown/edlib-sub004/mark"
	"github.com/neilbrown/edlib-sub004/render"
	"github.com/neilbrown/edlib-sub004/viewport"
)

var (
	filePath   = flag.String("file", "", "a file to load into the buffer")
	logPath    = flag.String("log", "", "a file to which Store diagnostics are logged")
	httpAddr   = flag.String("http", "", "if set, serve debugserver introspection on this address")
	cpuProfile = flag.Bool("cpuprofile", false, "write a CPU profile of this run")
	width      = flag.Int("width", 640, "pane width in pixels")
	height     = flag.Int("height", 400, "pane height in pixels")
	fontPath   = flag.String("font", "", "a TTF file to measure lines with, instead of the built-in bitmap face")
	fontSize   = flag.Int("fontsize", 12, "point size to load -font at")
)

func main() {
	flag.Parse()

	if *cpuProfile {
		profiler := profile.Start(profile.CPUProfile)
		defer profiler.Stop()
	}

	var logger *log.Logger
	if *logPath != "" {
		f, err := os.Create(*logPath)
		if err != nil {
			fmt.Println("failed to open log:", err)
			return
		}
		defer f.Close()
		logger = log.New(f, "", log.LstdFlags)
	}

	content := ""
	if *filePath != "" {
		b, err := os.ReadFile(*filePath)
		if err != nil && !os.IsNotExist(err) {
			fmt.Println("failed to read file:", err)
			return
		}
		content = string(b)
	}

	d := doc.NewTextString(content)
	defer d.Close()
	store := mark.NewStore(d, logger)
	defer store.Close()

	pt, err := store.NewPoint()
	if err != nil {
		fmt.Println("failed to create point:", err)
		return
	}
	if err := store.MarkToEnd(pt, false); err != nil {
		fmt.Println("failed to seat point:", err)
		return
	}

	oracle := render.NewDocOracle(store)
	cfg := &attr.Set{}
	vp := viewport.New(store, oracle, cfg, fixed.I(*width), fixed.I(*height))
	defer vp.Close()
	if *fontPath != "" {
		ttf, err := font.LoadTTF(*fontPath)
		if err != nil {
			fmt.Println("failed to load font:", err)
			return
		}
		vp.SetFace(font.NewFace(font.New(ttf, *fontSize)))
	}
	if err := vp.Reposition(pt); err != nil {
		fmt.Println("failed to position view:", err)
		return
	}

	counter := linecounter.New(store)
	defer counter.Close()

	if *httpAddr != "" {
		demo := store.NewView("cmd")
		defer store.DelView(demo)
		dm, err := store.NewMark(demo)
		if err == nil {
			if err := store.MarkToMark(dm, pt); err != nil {
				fmt.Println("failed to seat demo mark:", err)
			}
		}

		srv := debugserver.New(store)
		srv.AddView("point", demo)
		r := mux.NewRouter()
		srv.RegisterHandlers(r)
		go func() {
			if err := http.ListenAndServe(*httpAddr, r); err != nil {
				fmt.Println("debugserver stopped:", err)
			}
		}()
	}

	in := bufio.NewReader(os.Stdin)
	for {
		line, err := readLine(in)
		if err != nil && err != io.EOF {
			fmt.Println("failed to read input:", err)
			return
		}
		if err == io.EOF && line == "" {
			return
		}

		if !runCommand(line, d, store, pt, vp, counter) {
			return
		}
		if err == io.EOF {
			return
		}
	}
}

func runCommand(line string, d *doc.Text, store *mark.Store, pt *mark.Mark, vp *viewport.Viewport, counter *linecounter.Counter) bool {
	if line == "" {
		return true
	}
	cmd, arg := line[0], strings.TrimSpace(line[1:])
	switch cmd {
	case 'q':
		return false

	case 'p':
		for _, c := range vp.Cells() {
			fmt.Println(render.PlainText(c.Line.Text))
		}

	case 'g':
		n, err := strconv.Atoi(arg)
		if err != nil {
			fmt.Println(core.Invalid, "- bad line count:", arg)
			break
		}
		if err := vp.MoveLine(pt, n); err != nil {
			fmt.Println("failed to move:", err)
		}

	case 'i':
		if _, err := d.Replace(pt.Ref(), pt.Ref(), arg); err != nil {
			fmt.Println("failed to insert:", err)
			break
		}
		if err := vp.Revise(pt); err != nil {
			fmt.Println("failed to revise view:", err)
		}

	case 'c':
		lines, words, chars, err := counter.Count()
		if err != nil {
			fmt.Println("failed to count:", err)
			break
		}
		fmt.Printf("%d lines, %d words, %d chars\n", lines, words, chars)

	case 'w':
		if arg == "" {
			fmt.Println(core.NoArg, "- w requires a file name")
			break
		}
		if err := os.WriteFile(arg, []byte(d.String()), 0644); err != nil {
			fmt.Println("failed to save:", err)
		}

	default:
		// Not one of this driver's commands: per §7's Fallthrough
		// case, decline without changing any state and let the
		// caller's loop carry on, exactly as a pane dispatcher
		// falls through to its parent on an unhandled key.
		fmt.Println(core.Fallthrough, "-", string(cmd))
	}
	return true
}

func readLine(in io.RuneScanner) (string, error) {
	var s []rune
	for {
		switch r, _, err := in.ReadRune(); {
		case err != nil && err != io.EOF:
			return "", err
		case err == io.EOF:
			return string(s), io.EOF
		case r == '\n':
			return string(s), nil
		default:
			s = append(s, r)
		}
	}
}
