// eduShare local-mode CLI. Works directly on the JSON snapshot (local
// file by default, S3 object with --s3) through the same note store the
// editor uses.
//
// Usage:
//
//	notes [flags] list
//	notes [flags] add -title T -content C [-tags a,b]
//	notes [flags] edit -id ID -title T -content C [-tags a,b]
//	notes [flags] delete -id ID
//	notes [flags] search [-q QUERY] [-tag TAG]
//	notes [flags] tags
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/kuitang/edushare/internal/blob"
	"github.com/kuitang/edushare/internal/notes"
	"github.com/kuitang/edushare/internal/obs"
	"github.com/kuitang/edushare/internal/s3client"
)

func main() {
	obs.Init()

	var (
		snapshotPath = flag.String("snapshot", "./data/notes-app-data.json", "Path to the local snapshot file")
		useS3        = flag.Bool("s3", false, "Use the S3 snapshot object (AWS_* env vars required)")
	)
	flag.Usage = usage
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()

	port, err := buildPort(ctx, *snapshotPath, *useS3)
	if err != nil {
		fatal(err)
	}

	store, err := notes.Open(ctx, port)
	if err != nil {
		fatal(err)
	}

	if err := dispatch(ctx, store, flag.Arg(0), flag.Args()[1:]); err != nil {
		fatal(err)
	}
}

func dispatch(ctx context.Context, store *notes.Store, command string, args []string) error {
	switch command {
	case "list":
		return cmdList(store)
	case "add":
		return cmdAdd(ctx, store, args)
	case "edit":
		return cmdEdit(ctx, store, args)
	case "delete":
		return cmdDelete(ctx, store, args)
	case "search":
		return cmdSearch(store, args)
	case "tags":
		return cmdTags(store)
	default:
		usage()
		return fmt.Errorf("unknown command %q", command)
	}
}

func cmdList(store *notes.Store) error {
	printNotes(store.List())
	return nil
}

func cmdAdd(ctx context.Context, store *notes.Store, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "Note title")
	content := fs.String("content", "", "Note content")
	tags := fs.String("tags", "", "Comma-separated tags")
	fs.Parse(args)

	note, err := store.Create(ctx, notes.NoteInput{
		Title:   *title,
		Content: *content,
		Tags:    splitTags(*tags),
	})
	if err != nil {
		return err
	}
	fmt.Printf("created %s\n", note.ID)
	return nil
}

func cmdEdit(ctx context.Context, store *notes.Store, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	id := fs.String("id", "", "Note id")
	title := fs.String("title", "", "New title")
	content := fs.String("content", "", "New content")
	tags := fs.String("tags", "", "Comma-separated tags")
	fs.Parse(args)

	note, err := store.Edit(ctx, *id, notes.NoteInput{
		Title:   *title,
		Content: *content,
		Tags:    splitTags(*tags),
	})
	if err != nil {
		return err
	}
	fmt.Printf("updated %s\n", note.ID)
	return nil
}

func cmdDelete(ctx context.Context, store *notes.Store, args []string) error {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	id := fs.String("id", "", "Note id")
	fs.Parse(args)

	if err := store.Delete(ctx, *id); err != nil {
		return err
	}
	fmt.Println("note deleted")
	return nil
}

func cmdSearch(store *notes.Store, args []string) error {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	query := fs.String("q", "", "Text query (title and content)")
	tag := fs.String("tag", "", "Exact tag filter")
	fs.Parse(args)

	printNotes(store.Search(*query, *tag))
	return nil
}

func cmdTags(store *notes.Store) error {
	for _, tag := range store.Tags() {
		fmt.Println(tag)
	}
	return nil
}

func buildPort(ctx context.Context, snapshotPath string, useS3 bool) (notes.Port, error) {
	if !useS3 {
		return blob.NewFileStore(snapshotPath), nil
	}

	client, err := s3client.New(ctx, s3client.Config{
		Endpoint:        os.Getenv("AWS_ENDPOINT_URL_S3"),
		Region:          envOrDefault("AWS_REGION", "auto"),
		AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
		SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		BucketName:      os.Getenv("BUCKET_NAME"),
	})
	if err != nil {
		return nil, err
	}
	return blob.NewS3Store(client, blob.DefaultKey), nil
}

func printNotes(all []notes.Note) {
	for _, note := range all {
		tags := ""
		if len(note.Tags) > 0 {
			tags = " [" + strings.Join(note.Tags, ", ") + "]"
		}
		fmt.Printf("%s  %s%s\n", note.ID, note.Title, tags)
	}
}

func splitTags(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	return strings.Split(raw, ",")
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: notes [flags] <list|add|edit|delete|search|tags> [args]")
	flag.PrintDefaults()
}

func fatal(err error) {
	fmt.Fprintln(os.Stderr, "error:", err)
	os.Exit(1)
}
