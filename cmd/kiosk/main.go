package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/fielia/club-services/internal/kiosk/client"
	"github.com/fielia/club-services/internal/kiosk/scanner"
	"github.com/fielia/club-services/internal/membersvc/service"
)

// The kiosk runs at the reception desk with a keyboard-wedge NFC reader
// plugged in. It logs in as the operator, then feeds raw keystrokes through
// the scan aggregator and drives card lookup, registration and editing
// against the member service.

const requestTimeout = 15 * time.Second

func main() {
	serverURL := flag.String("server", "http://localhost:8080", "member service base URL")
	simulate := flag.Bool("simulate", false, "emit one simulated scan on start")
	list := flag.Bool("list", false, "print the card directory and exit")
	idle := flag.Duration("idle", scanner.DefaultIdleTimeout, "scan idle window")
	flag.Parse()

	c, err := client.New(*serverURL)
	if err != nil {
		log.Fatalf("failed to build client: %v", err)
	}

	reader := bufio.NewReader(os.Stdin)
	login(c, reader)

	if *list {
		printDirectory(c)
		return
	}

	var m *scanner.Machine
	m = scanner.New(scanner.Config{IdleTimeout: *idle}, func(id string) {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		card, err := c.LookupCard(ctx, id)
		if err != nil {
			if !errors.Is(err, client.ErrNotFound) {
				log.Errorf("lookup failed: %v", err)
			}
			m.Miss()
			return
		}
		m.Resolve(card)
	})

	if *simulate {
		feedScan(m, uuid.NewString())
	}

	runLoop(m, c, reader)
}

func login(c *client.Client, reader *bufio.Reader) {
	for {
		username := promptLine(reader, "Username: ")
		password := promptLine(reader, "Password: ")

		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		err := c.Login(ctx, username, password)
		cancel()
		if err != nil {
			fmt.Printf("login failed: %v\n\n", err)
			continue
		}

		fmt.Printf("logged in as %s\n", username)
		return
	}
}

func printDirectory(c *client.Client) {
	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	cards, err := c.ListCards(ctx)
	if err != nil {
		log.Fatalf("failed to list cards: %v", err)
	}

	fmt.Printf("%d cards registered\n", len(cards))
	for _, card := range cards {
		fmt.Printf("%-14s %-24s %s\n", card.UUID, card.FirstName+" "+card.LastName, card.Phone)
	}
}

func runLoop(m *scanner.Machine, c *client.Client, reader *bufio.Reader) {
	last := scanner.State("")

	for {
		if m.State() != last {
			render(m)
			last = m.State()
		}

		switch m.State() {
		case scanner.NotFound:
			registerFlow(m, c, reader)
		case scanner.Editing:
			editFlow(m, c, reader)
		default:
			k, edit, err := readKey(reader)
			if err != nil {
				fmt.Println("\nbye")
				return
			}
			if edit && m.State() == scanner.Success {
				m.Edit()
				continue
			}
			m.HandleKey(k)
		}
	}
}

// readKey reads one keystroke in cbreak mode. Tab is the kiosk-local edit
// shortcut, everything else maps onto scanner keys.
func readKey(reader *bufio.Reader) (scanner.Key, bool, error) {
	rawMode(true)
	defer rawMode(false)

	r, _, err := reader.ReadRune()
	if err != nil {
		return scanner.Key{}, false, err
	}

	switch r {
	case '\r', '\n':
		return scanner.Key{Kind: scanner.KeyEnter}, false, nil
	case 0x1b:
		return scanner.Key{Kind: scanner.KeyEscape}, false, nil
	case '\t':
		return scanner.Key{}, true, nil
	default:
		return scanner.Key{Kind: scanner.KeyRune, Rune: r}, false, nil
	}
}

func registerFlow(m *scanner.Machine, c *client.Client, reader *bufio.Reader) {
	answer := promptLine(reader, fmt.Sprintf("Unknown card %s. Register it? [y/N] ", m.ScannedUUID()))
	if !strings.EqualFold(answer, "y") {
		m.Cancel()
		return
	}

	in := service.CardInput{
		UUID:       m.ScannedUUID(),
		FirstName:  promptLine(reader, "First name: "),
		LastName:   promptLine(reader, "Last name: "),
		Phone:      promptLine(reader, "Phone: "),
		Address:    promptLine(reader, "Address: "),
		Preference: promptLine(reader, "Preference: "),
	}

	m.Creating()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	card, err := c.CreateCard(ctx, in)
	if err != nil {
		fmt.Printf("registration failed: %v\n", err)
		m.Fail()
		return
	}

	m.Resolve(card)
}

func editFlow(m *scanner.Machine, c *client.Client, reader *bufio.Reader) {
	card := m.Card()
	fmt.Println("Editing profile. Press Enter to keep the current value, type /cancel to go back.")

	in := service.CardInput{UUID: card.UUID}
	fields := []struct {
		label   string
		current string
		dst     *string
	}{
		{"First name", card.FirstName, &in.FirstName},
		{"Last name", card.LastName, &in.LastName},
		{"Phone", card.Phone, &in.Phone},
		{"Address", card.Address, &in.Address},
		{"Preference", card.Preference, &in.Preference},
	}

	for _, f := range fields {
		v := promptLine(reader, fmt.Sprintf("%s [%s]: ", f.label, f.current))
		if v == "/cancel" {
			m.Cancel()
			return
		}
		if v == "" {
			v = f.current
		}
		*f.dst = v
	}

	m.Updating()

	ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
	defer cancel()

	card, err := c.UpdateCard(ctx, in.UUID, in)
	if err != nil {
		fmt.Printf("update failed: %v\n", err)
		m.Fail()
		return
	}

	m.Resolve(card)
}

func render(m *scanner.Machine) {
	switch m.State() {
	case scanner.Waiting:
		fmt.Println("\n-- waiting for scan --")
	case scanner.Loading, scanner.Registering:
		fmt.Println("...")
	case scanner.Success:
		card := m.Card()
		fmt.Printf("\ncard    %s\nguest   %s %s\nphone   %s\naddress %s\nprefers %s\n",
			card.UUID, card.FirstName, card.LastName, card.Phone, card.Address, card.Preference)
		fmt.Println("[Tab] edit   [Space/Esc] done   scan again anytime")
	}
}

func promptLine(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, err := reader.ReadString('\n')
	if err != nil {
		os.Exit(0)
	}
	return strings.TrimSpace(line)
}

// feedScan pushes a generated identifier through the machine the same way
// the reader would, for testing without a desk setup.
func feedScan(m *scanner.Machine, id string) {
	fmt.Printf("simulating scan of %s\n", id)
	for _, r := range id {
		m.HandleKey(scanner.Key{Kind: scanner.KeyRune, Rune: r})
	}
	m.HandleKey(scanner.Key{Kind: scanner.KeyEnter})
}

// rawMode toggles cbreak input via stty. When stty is unavailable the kiosk
// still works, keys just arrive line-buffered.
func rawMode(on bool) {
	var cmd *exec.Cmd
	if on {
		cmd = exec.Command("stty", "cbreak", "-echo")
	} else {
		cmd = exec.Command("stty", "sane")
	}
	cmd.Stdin = os.Stdin
	if err := cmd.Run(); err != nil {
		log.Debugf("stty unavailable: %v", err)
	}
}
