// Command finchat runs the finance assistant in a terminal and manages the
// record fixtures the server loads.
//
//	finchat [flags]                   chat against the mock or fixture record
//	finchat [flags] suggestions       print the derived suggestions
//	finchat [flags] fixtures          list fixtures in the data directory
//	finchat [flags] init <name>       write the mock record as a fixture
//	finchat [flags] seal | unseal     encrypt or decrypt every fixture
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"findash/internal/config"
	"findash/internal/logger"
	"findash/internal/services/chat"
	"findash/internal/services/dataloader"
	"findash/internal/services/storage"
	"findash/internal/version"
)

func main() {
	cfg := config.Load()

	dataDir := flag.String("data", cfg.DataDirectory, "data directory holding record fixtures")
	fixture := flag.String("fixture", cfg.RecordFixture, "fixture to chat against (empty for mock data)")
	delay := flag.Duration("delay", cfg.TypingDelay, "simulated typing delay")
	plain := flag.Bool("plain", false, "disable colours")
	flag.Parse()

	log := logger.New("warn", os.Stderr)

	if err := run(flag.Args(), *dataDir, *fixture, *delay, *plain || !term.IsTerminal(int(os.Stdout.Fd())), log); err != nil {
		fmt.Fprintln(os.Stderr, "finchat:", err)
		os.Exit(1)
	}
}

func run(args []string, dataDir, fixture string, delay time.Duration, plain bool, log *logrus.Logger) error {
	store, err := storage.New(dataDir)
	if err != nil {
		return err
	}

	cmd := "chat"
	if len(args) > 0 {
		cmd = args[0]
	}

	switch cmd {
	case "fixtures":
		names, err := store.Fixtures()
		if err != nil {
			return err
		}
		for _, n := range names {
			fmt.Println(n)
		}
		return nil

	case "init":
		if len(args) < 2 {
			return errors.New("usage: finchat init <name>")
		}
		if store.IsSealed() {
			if err := unlock(store); err != nil {
				return err
			}
		}
		loader := dataloader.New(store, "", log)
		if err := loader.Save(args[1], loader.Record()); err != nil {
			return err
		}
		fmt.Printf("wrote fixture %s\n", args[1])
		return nil

	case "seal":
		pass, err := readPassword("New passphrase: ")
		if err != nil {
			return err
		}
		confirm, err := readPassword("Repeat passphrase: ")
		if err != nil {
			return err
		}
		if pass != confirm {
			return errors.New("passphrases do not match")
		}
		return store.Seal(pass)

	case "unseal":
		pass, err := readPassword("Passphrase: ")
		if err != nil {
			return err
		}
		return store.Unseal(pass)
	}

	if store.IsSealed() && fixture != "" {
		if err := unlock(store); err != nil {
			return err
		}
	}
	loader := dataloader.New(store, fixture, log)
	if err := loader.Load(); err != nil {
		return err
	}
	record := loader.Record()

	u := newUI(plain)
	switch cmd {
	case "suggestions":
		u.printSuggestions(os.Stdout, record)
		return nil

	case "chat":
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		assistant := chat.NewAssistant(chat.NewMatcher(nil), delay, nil, log)
		fmt.Println(u.title.Render(version.Get().Short() + " · " + loader.Origin() + " data"))

		in, out, restore, err := openTerminal()
		if err != nil {
			return err
		}
		defer restore()
		return u.repl(ctx, in, out, assistant, record)
	}

	return fmt.Errorf("unknown command %q", cmd)
}

// unlock prompts for the passphrase unless FINDASH_RECORD_PASSWORD is set
func unlock(store *storage.Storage) error {
	pass := os.Getenv("FINDASH_RECORD_PASSWORD")
	if pass == "" {
		var err error
		if pass, err = readPassword("Passphrase: "); err != nil {
			return err
		}
	}
	return store.Unlock(pass)
}

func readPassword(prompt string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("a terminal is required to enter a passphrase")
	}
	fmt.Fprint(os.Stderr, prompt)
	b, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	return string(b), err
}

// lineReader yields one line of input at a time
type lineReader interface {
	ReadLine() (string, error)
}

// openTerminal puts an interactive stdin into raw mode behind a line editor
// with history. Piped input is read line by line instead.
func openTerminal() (lineReader, io.Writer, func(), error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return newScanReader(os.Stdin), os.Stdout, func() {}, nil
	}

	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("raw mode: %w", err)
	}
	t := term.NewTerminal(struct {
		io.Reader
		io.Writer
	}{os.Stdin, os.Stdout}, "you › ")

	return t, t, func() { term.Restore(fd, state) }, nil
}
