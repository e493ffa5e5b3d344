package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"golang.org/x/term"

	"github.com/practica/practica-link/internal/folders"
)

// trimToken strips whitespace and a trailing newline from a pasted token.
func trimToken(s string) string {
	return strings.TrimSpace(s)
}

// promptToken reads an API token without echoing it to the terminal.
// Falls back to plain line input when stdin is not a TTY.
func promptToken() (string, error) {
	fmt.Print("Practica API token: ")

	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		data, err := term.ReadPassword(fd)
		fmt.Println()
		if err != nil {
			return "", err
		}
		return trimToken(string(data)), nil
	}

	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return trimToken(line), nil
}

// promptDestination walks the folder tree interactively and returns the
// chosen folder id and its breadcrumb path.
func promptDestination(ctx context.Context, browser *folders.Browser) (string, string, error) {
	if err := browser.LoadRoots(ctx); err != nil {
		return "", "", err
	}

	current := "" // empty means the root listing
	reader := bufio.NewReader(os.Stdin)

	for {
		var listing []struct{ id, name string }
		if current == "" {
			for _, f := range browser.Roots() {
				listing = append(listing, struct{ id, name string }{f.ID, f.Name})
			}
		} else {
			children, err := browser.Children(current)
			if err != nil {
				return "", "", err
			}
			for _, f := range children {
				listing = append(listing, struct{ id, name string }{f.ID, f.Name})
			}
		}

		if current == "" {
			fmt.Println("\nSelect a destination folder:")
		} else {
			path, err := browser.Path(current)
			if err != nil {
				return "", "", err
			}
			fmt.Printf("\n%s\n", path)
		}
		for i, f := range listing {
			fmt.Printf("  %d. %s\n", i+1, f.name)
		}
		if current != "" {
			fmt.Println("  s. Select this folder")
			fmt.Println("  u. Up one level")
		}
		fmt.Println("  q. Cancel")
		fmt.Print("Choose: ")

		input, err := reader.ReadString('\n')
		if err != nil {
			return "", "", err
		}
		input = strings.TrimSpace(strings.ToLower(input))

		switch input {
		case "q":
			return "", "", fmt.Errorf("folder selection cancelled")
		case "s":
			if current == "" {
				fmt.Println("Pick a folder first.")
				continue
			}
			path, err := browser.Path(current)
			if err != nil {
				return "", "", err
			}
			return current, path, nil
		case "u":
			if current == "" {
				continue
			}
			parent, err := browser.Parent(current)
			if err != nil {
				return "", "", err
			}
			current = parent
			continue
		}

		n, err := strconv.Atoi(input)
		if err != nil || n < 1 || n > len(listing) {
			fmt.Println("Invalid choice, please try again.")
			continue
		}

		next := listing[n-1].id
		if err := browser.Expand(ctx, next); err != nil {
			fmt.Fprintf(os.Stderr, "Could not open folder: %v\n", err)
			continue
		}
		current = next
	}
}
