// Package main provides the KnowDeck command-line interface.
//
// Usage:
//
//	knowdeck [flags] <command> [command flags]
//
// Commands:
//
//	list        List cards (honors --search and --labels)
//	add         Create a card
//	edit        Update a card
//	rm          Delete a card
//	labels      List labels
//	label-add   Create a label
//	label-edit  Update a label
//	label-rm    Delete a label (cascades into cards)
//	export      Write a backup file (--filtered exports the current filter)
//	import      Restore from a backup file
//	backups     List backup files
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/samber/do/v2"

	"github.com/knowdeckapp/knowdeck/internal/deck"
	"github.com/knowdeckapp/knowdeck/internal/di"
	"github.com/knowdeckapp/knowdeck/internal/di/providers"
	"github.com/knowdeckapp/knowdeck/internal/domain"
	"github.com/knowdeckapp/knowdeck/internal/logger"
)

func main() {
	injector := di.NewContainer()

	if err := di.Bootstrap(injector); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bootstrap: %v\n", err)
		os.Exit(1)
	}

	log := do.MustInvoke[*logger.Logger](injector)
	deckHandle := do.MustInvoke[*providers.DeckHandle](injector)

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		shutdown(injector, log)
		os.Exit(2)
	}

	err := runCommand(context.Background(), deckHandle.Deck, args[0], args[1:])

	shutdown(injector, log)

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func shutdown(injector *do.RootScope, log *logger.Logger) {
	// The DI container shuts services down in reverse order: the deck
	// flushes its pending bucket writes before the database closes.
	if err := injector.Shutdown(); err != nil {
		log.Error("Shutdown error", "error", err)
	}
}

func runCommand(ctx context.Context, d *deck.Deck, cmd string, args []string) error {
	switch cmd {
	case "list":
		return cmdList(d, args)
	case "add":
		return cmdAdd(d, args)
	case "edit":
		return cmdEdit(d, args)
	case "rm":
		return cmdRemove(d, args)
	case "labels":
		return cmdLabels(d)
	case "label-add":
		return cmdLabelAdd(d, args)
	case "label-edit":
		return cmdLabelEdit(d, args)
	case "label-rm":
		return cmdLabelRemove(d, args)
	case "export":
		return cmdExport(ctx, d, args)
	case "import":
		return cmdImport(ctx, d, args)
	case "backups":
		return cmdBackups(d)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}
}

// splitIDs parses a comma-separated id list, dropping empty entries.
func splitIDs(s string) []string {
	if s == "" {
		return nil
	}
	var ids []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			ids = append(ids, part)
		}
	}
	return ids
}

func cmdList(d *deck.Deck, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	search := fs.String("search", "", "Title substring to match (case-sensitive)")
	labels := fs.String("labels", "", "Comma-separated label ids; cards matching any are shown")
	if err := fs.Parse(args); err != nil {
		return err
	}

	d.SetSearchText(*search)
	d.SetSelectedLabelIDs(splitIDs(*labels))

	cards := d.FilteredCards()
	if len(cards) == 0 {
		fmt.Println("No cards.")
		return nil
	}
	for _, c := range cards {
		fmt.Printf("%s  %s\n", c.ID, c.Title)
		if c.Body != "" {
			fmt.Printf("    %s\n", c.Body)
		}
		if len(c.LabelIDs) > 0 {
			fmt.Printf("    labels: %s\n", strings.Join(c.LabelIDs, ", "))
		}
	}
	fmt.Printf("%d card(s)\n", len(cards))
	return nil
}

func cmdAdd(d *deck.Deck, args []string) error {
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	title := fs.String("title", "", "Card title (required)")
	body := fs.String("body", "", "Card body")
	labels := fs.String("labels", "", "Comma-separated label ids")
	if err := fs.Parse(args); err != nil {
		return err
	}

	card, err := d.CreateCard(domain.CreateCardInput{
		Title:    *title,
		Body:     *body,
		LabelIDs: splitIDs(*labels),
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created card %s\n", card.ID)
	return nil
}

func cmdEdit(d *deck.Deck, args []string) error {
	fs := flag.NewFlagSet("edit", flag.ExitOnError)
	title := fs.String("title", "", "New title (defaults to current)")
	body := fs.String("body", "", "New body (defaults to current)")
	labels := fs.String("labels", "", "New comma-separated label ids (defaults to current)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: edit <card-id> [flags]")
	}
	cardID := fs.Arg(0)

	// Unspecified fields keep their current values.
	var current *domain.Card
	for _, c := range d.Cards() {
		if c.ID == cardID {
			card := c
			current = &card
			break
		}
	}
	input := domain.UpdateCardInput{ID: cardID, Title: *title, Body: *body, LabelIDs: splitIDs(*labels)}
	if current != nil {
		if !flagSet(fs, "title") {
			input.Title = current.Title
		}
		if !flagSet(fs, "body") {
			input.Body = current.Body
		}
		if !flagSet(fs, "labels") {
			input.LabelIDs = current.LabelIDs
		}
	}

	card, err := d.UpdateCard(input)
	if err != nil {
		return err
	}
	fmt.Printf("Updated card %s\n", card.ID)
	return nil
}

// flagSet reports whether the named flag was given on the command line.
func flagSet(fs *flag.FlagSet, name string) bool {
	set := false
	fs.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}

func cmdRemove(d *deck.Deck, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: rm <card-id>")
	}
	d.DeleteCard(args[0])
	fmt.Printf("Deleted card %s\n", args[0])
	return nil
}

func cmdLabels(d *deck.Deck) error {
	labels := d.Labels()
	if len(labels) == 0 {
		fmt.Println("No labels.")
		return nil
	}
	for _, l := range labels {
		fmt.Printf("%s  %s  %s\n", l.ID, l.Name, l.Color)
	}
	return nil
}

func cmdLabelAdd(d *deck.Deck, args []string) error {
	fs := flag.NewFlagSet("label-add", flag.ExitOnError)
	name := fs.String("name", "", "Label name (required)")
	labelColor := fs.String("color", "", "CSS color (auto-assigned when omitted)")
	labelID := fs.String("id", "", "Label id (generated when omitted)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	label, err := d.CreateLabel(domain.CreateLabelInput{
		ID:    *labelID,
		Name:  *name,
		Color: *labelColor,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Created label %s (%s)\n", label.ID, label.Color)
	return nil
}

func cmdLabelEdit(d *deck.Deck, args []string) error {
	fs := flag.NewFlagSet("label-edit", flag.ExitOnError)
	name := fs.String("name", "", "New label name")
	labelColor := fs.String("color", "", "New CSS color")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: label-edit <label-id> [flags]")
	}

	label := domain.Label{ID: fs.Arg(0), Name: *name, Color: *labelColor}
	for _, l := range d.Labels() {
		if l.ID == label.ID {
			if !flagSet(fs, "name") {
				label.Name = l.Name
			}
			if !flagSet(fs, "color") {
				label.Color = l.Color
			}
			break
		}
	}

	if err := d.UpdateLabel(label); err != nil {
		return err
	}
	fmt.Printf("Updated label %s\n", label.ID)
	return nil
}

func cmdLabelRemove(d *deck.Deck, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: label-rm <label-id>")
	}
	d.DeleteLabel(args[0])
	fmt.Printf("Deleted label %s\n", args[0])
	return nil
}

func cmdExport(ctx context.Context, d *deck.Deck, args []string) error {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	filtered := fs.Bool("filtered", false, "Export only cards matching the filter")
	search := fs.String("search", "", "Title substring filter for --filtered")
	labels := fs.String("labels", "", "Comma-separated label ids for --filtered")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var path string
	var err error
	if *filtered {
		d.SetSearchText(*search)
		d.SetSelectedLabelIDs(splitIDs(*labels))
		path, err = d.ExportFilteredBackup(ctx)
	} else {
		path, err = d.ExportBackup(ctx)
	}
	if err != nil {
		return err
	}
	fmt.Printf("Backup written to %s\n", path)
	return nil
}

func cmdImport(ctx context.Context, d *deck.Deck, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: import <backup-file>")
	}
	// Accept either a path or the bare name of a file in the backup dir.
	raw, err := os.ReadFile(args[0])
	if err != nil {
		var nameErr error
		if raw, nameErr = d.ReadBackup(filepath.Base(args[0])); nameErr != nil {
			return fmt.Errorf("read backup file: %w", err)
		}
	}
	if err := d.ImportBackup(ctx, raw); err != nil {
		return err
	}
	fmt.Printf("Imported %d card(s) and %d label(s)\n", len(d.Cards()), len(d.Labels()))
	return nil
}

func cmdBackups(d *deck.Deck) error {
	infos, err := d.ListBackups()
	if err != nil {
		return err
	}
	if len(infos) == 0 {
		fmt.Println("No backups.")
		return nil
	}
	for _, info := range infos {
		kind := "full"
		if info.Filtered {
			kind = "filtered"
		}
		fmt.Printf("%s  %8d bytes  %s  %s\n", info.CreatedAt.Format("2006-01-02 15:04:05"), info.Size, kind, info.Name)
	}
	return nil
}
