package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"songsync/config"
	"songsync/library"
	"songsync/meta"
	"songsync/txt"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "check":
		cmdCheck(args)
	case "fix":
		cmdFix(args)
	case "meta":
		cmdMeta(args)
	case "list":
		cmdList(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `songsync - song text validator and library inspector

Usage:
  songsync check <file>...        Parse and validate song text files
  songsync fix [flags] <file>...  Normalize song text files in place
  songsync meta <sidecar>         Inspect a sync metadata sidecar
  songsync list                   List the local library index
  songsync help                   Show this help message

Examples:
  songsync check song.txt                 # Validate a single file
  songsync fix --dry-run *.txt            # Show what would change
  songsync meta "Artist - Title/123.songsync"
  songsync list

For help on specific command: songsync <command> -h
`)
}

func cmdCheck(args []string) {
	fs := flag.NewFlagSet("check", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: songsync check <file>...\n")
	}
	fs.Parse(args)

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}

	failed := 0
	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		song, err := txt.ParseBytes(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			failed++
			continue
		}
		voices := len(song.Tracks.Voices)
		fmt.Printf("%s: ok (%s - %s, %d voice(s))\n", path, song.Headers.Artist, song.Headers.Title, voices)
	}
	if failed > 0 {
		os.Exit(1)
	}
}

func cmdFix(args []string) {
	fs := flag.NewFlagSet("fix", flag.ExitOnError)
	dryRun := fs.Bool("dry-run", false, "Report changes without writing files")
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: songsync fix [flags] <file>...\n\nFlags:\n")
		fs.PrintDefaults()
	}
	fs.Parse(args)

	if fs.NArg() == 0 {
		fs.Usage()
		os.Exit(1)
	}

	for _, path := range fs.Args() {
		data, err := os.ReadFile(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			os.Exit(1)
		}
		song, err := txt.ParseBytes(data)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			os.Exit(1)
		}
		res := song.Fix()
		out := song.String()
		changed := out != string(data)
		fmt.Printf("%s: %d mark(s) fixed, BPM factor %d\n", path, res.FixedMarks, res.BPMFactor)
		if *dryRun || !changed {
			continue
		}
		if err := os.WriteFile(path, []byte(out), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "%s: %v\n", path, err)
			os.Exit(1)
		}
	}
}

func cmdMeta(args []string) {
	fs := flag.NewFlagSet("meta", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: songsync meta <sidecar>\n")
	}
	fs.Parse(args)

	if fs.NArg() != 1 {
		fs.Usage()
		os.Exit(1)
	}

	record, err := meta.Load(fs.Arg(0))
	if err != nil {
		if errors.Is(err, meta.ErrMetaFileTooNew) {
			fmt.Fprintf(os.Stderr, "Error: %v (upgrade songsync to read this file)\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "Song ID:\t%s\n", record.SongID)
	fmt.Fprintf(w, "Version:\t%d\n", record.Version)
	fmt.Fprintf(w, "Remote mtime:\t%s\n", time.UnixMilli(record.MTime).Format(time.RFC3339))
	fmt.Fprintf(w, "Pinned:\t%t\n", record.Pinned)
	for _, kind := range meta.ResourceKinds() {
		r := record.Resource(kind)
		if r == nil {
			continue
		}
		fmt.Fprintf(w, "%s:\t%s (%s, %s)\n", kind, r.FileName, r.Resource,
			time.UnixMilli(r.MTime).Format(time.RFC3339))
	}
	for k, v := range record.CustomData {
		fmt.Fprintf(w, "custom %s:\t%s\n", k, v)
	}
	w.Flush()
}

func cmdList(args []string) {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: songsync list\n")
	}
	fs.Parse(args)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	lib, err := library.Open(cfg.DatabasePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer lib.Close()

	songs, err := lib.List(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tARTIST\tTITLE\tFOLDER\tSYNCED")
	for _, s := range songs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.SongID, s.Artist, s.Title, s.Folder,
			time.UnixMilli(s.MTime).Format("2006-01-02"))
	}
	w.Flush()
}
