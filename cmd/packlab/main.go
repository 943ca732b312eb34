package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/packplan/cascade"
	"github.com/wippyai/packplan/codec"
	"github.com/wippyai/packplan/engine"
)

type options struct {
	format  string
	to      string
	logical string
	word    string
	toWord  string
	values  string
	hex     string
	count   int
	mode    string
	color   bool
}

func main() {
	var (
		format      = flag.String("format", "dynbp", "Format description, e.g. statbp:3 or dynforbp,block=128")
		to          = flag.String("to", "", "Target format for morph mode")
		logical     = flag.String("logical", "u32", "Logical value type (u8..u64, s8..s64)")
		word        = flag.String("word", "u32", "Packed word type (u8, u16, u32, u64)")
		toWord      = flag.String("to-word", "", "Word type of the morph target (defaults to -word)")
		values      = flag.String("values", "", "Comma separated values (read from stdin when empty)")
		hexIn       = flag.String("hex", "", "Packed input as hex, for unpack and morph")
		count       = flag.Int("count", 0, "Number of values in the packed input")
		mode        = flag.String("mode", "pack", "pack, unpack, morph or plan")
		verbose     = flag.Bool("v", false, "Verbose logging")
		interactive = flag.Bool("i", false, "Interactive mode with TUI")
	)
	flag.Parse()

	if *verbose {
		log, err := zap.NewDevelopment()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		defer func() { _ = log.Sync() }()
		codec.SetLogger(log.Named("codec"))
		cascade.SetLogger(log.Named("cascade"))
		engine.SetLogger(log.Named("engine"))
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*format, *logical, *word); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	opts := options{
		format:  *format,
		to:      *to,
		logical: *logical,
		word:    *word,
		toWord:  *toWord,
		values:  *values,
		hex:     *hexIn,
		count:   *count,
		mode:    *mode,
		color:   term.IsTerminal(int(os.Stdout.Fd())),
	}
	if opts.mode == "pack" && opts.values == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: read stdin: %v\n", err)
			os.Exit(1)
		}
		opts.values = strings.Join(strings.Fields(string(data)), ",")
	}

	if err := run(os.Stdout, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintln(os.Stderr, "Usage: packlab -format dynbp -logical u32 -word u32 -values 1,2,4,8")
		fmt.Fprintln(os.Stderr, "       packlab -mode unpack -format dynbp -hex 0400000021840000 -count 4")
		fmt.Fprintln(os.Stderr, "       packlab -mode morph -format dynbp -to delta -hex ... -count 4")
		fmt.Fprintln(os.Stderr, "       packlab -mode plan -format dynforbp")
		fmt.Fprintln(os.Stderr, "       packlab -i  (interactive mode)")
		os.Exit(1)
	}
}

func run(w io.Writer, o options) error {
	c, err := compile(o.format, o.logical, o.word)
	if err != nil {
		return err
	}

	switch o.mode {
	case "plan":
		fmt.Fprintf(w, "Format: %s\n", o.format)
		fmt.Fprint(w, c.Plan().String())
		return nil

	case "pack":
		src, count, err := parseValues(o.values, c.Logical())
		if err != nil {
			return err
		}
		dst := make([]byte, c.Bound(count))
		n, err := c.Compress(src, count, dst)
		if err != nil {
			return err
		}
		report(w, c, count, dst[:n], o.color)
		return nil

	case "unpack":
		data, err := parseHex(o.hex)
		if err != nil {
			return err
		}
		out := make([]byte, o.count*c.Logical().Bytes())
		if _, err := c.Decompress(data, o.count, out); err != nil {
			return err
		}
		fmt.Fprintln(w, formatValues(out, c.Logical()))
		return nil

	case "morph":
		toWord := o.toWord
		if toWord == "" {
			toWord = o.word
		}
		target, err := compile(o.to, o.logical, toWord)
		if err != nil {
			return err
		}
		cs, err := cascade.New(c, target)
		if err != nil {
			return err
		}
		data, err := parseHex(o.hex)
		if err != nil {
			return err
		}
		dst := make([]byte, cs.Bound(o.count))
		n, err := cs.Morph(data, o.count, dst)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Morph: %s -> %s (tile %d)\n", o.format, o.to, cs.Tile())
		report(w, target, o.count, dst[:n], o.color)
		return nil
	}
	return fmt.Errorf("unknown mode %q", o.mode)
}

func report(w io.Writer, c *codec.Codec, count int, packed []byte, color bool) {
	raw := count * c.Logical().Bytes()
	fmt.Fprintf(w, "Values: %d (%d bytes raw)\n", count, raw)
	fmt.Fprintf(w, "Packed: %d bytes, bound %d", len(packed), c.Bound(count))
	if raw > 0 {
		fmt.Fprintf(w, ", ratio %.3f", float64(len(packed))/float64(raw))
	}
	fmt.Fprintf(w, "\nHex: %s\n", hexString(packed))
	fmt.Fprintln(w, renderWords(packed, c.Word().Bytes(), color))
}
