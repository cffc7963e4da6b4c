// Package main implements the interactive passkeep client. It registers and
// logs in against the API, derives the vault key locally from the master
// password and the account salt, and seals every secret before it leaves
// the machine.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/atotto/clipboard"

	"github.com/passkeep/passkeep/internal/client/vault"
	"github.com/passkeep/passkeep/internal/crypto"
	"github.com/passkeep/passkeep/internal/models"
)

var (
	version   string
	buildDate string
)

// shell runs the interactive loop over an authenticated client. key is the
// locally derived vault key; it never leaves this process.
func shell(ctx context.Context, client *vault.Client, key []byte) {
	fmt.Println("Type 'help' for a list of commands.")
	for {
		line := vault.ReadLine("passkeep> ")
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		switch args[0] {
		case "help":
			fmt.Println("Available commands: help, add, list, show <n>, copy <n>, edit <n>, delete <n>, gen [length], exit")
		case "add":
			addRecord(ctx, client, key)
		case "list":
			listRecords(ctx, client)
		case "show":
			withRecord(ctx, client, args, func(rec models.VaultRecord) {
				showRecord(rec, key, false)
			})
		case "copy":
			withRecord(ctx, client, args, func(rec models.VaultRecord) {
				showRecord(rec, key, true)
			})
		case "edit":
			withRecord(ctx, client, args, func(rec models.VaultRecord) {
				editRecord(ctx, client, key, rec)
			})
		case "delete":
			withRecord(ctx, client, args, func(rec models.VaultRecord) {
				if err := client.DeleteRecord(ctx, rec.ID); err != nil {
					fmt.Println("Delete failed:", err)
					return
				}
				fmt.Println("Record deleted")
			})
		case "gen":
			length := 20
			if len(args) > 1 {
				if n, err := strconv.Atoi(args[1]); err == nil {
					length = n
				}
			}
			pw, err := vault.GeneratePassword(vault.GenerateOptions{
				Length:           length,
				Symbols:          true,
				ExcludeLookAlike: true,
			})
			if err != nil {
				fmt.Println("Generation failed:", err)
				continue
			}
			fmt.Println(pw)
		case "exit":
			fmt.Println("Bye")
			return
		default:
			fmt.Println("Unknown command. Type 'help' for a list of commands.")
		}
	}
}

// withRecord resolves an index argument against the current listing and
// applies fn to the selected record.
func withRecord(ctx context.Context, client *vault.Client, args []string, fn func(models.VaultRecord)) {
	if len(args) < 2 {
		fmt.Printf("Usage: %s <n>\n", args[0])
		return
	}
	n, err := strconv.Atoi(args[1])
	if err != nil {
		fmt.Printf("Usage: %s <n>\n", args[0])
		return
	}
	records, err := client.ListRecords(ctx)
	if err != nil {
		fmt.Println("List failed:", err)
		return
	}
	if n < 1 || n > len(records) {
		fmt.Println("No such record")
		return
	}
	fn(records[n-1])
}

func addRecord(ctx context.Context, client *vault.Client, key []byte) {
	title := vault.ReadLine("Title: ")
	username := vault.ReadLine("Username: ")
	url := vault.ReadLine("URL (optional): ")
	secret, err := vault.ReadPassword("Secret (will be encrypted): ")
	if err != nil {
		fmt.Println("Input failed:", err)
		return
	}
	notes := vault.ReadLine("Notes (optional): ")

	sealed, err := crypto.Seal([]byte(secret), key)
	if err != nil {
		fmt.Println("Encryption failed:", err)
		return
	}

	id, err := client.CreateRecord(ctx, vault.RecordInput{
		Title:    title,
		Username: username,
		URL:      url,
		Secret:   sealed,
		Notes:    notes,
	})
	if err != nil {
		fmt.Println("Save failed:", err)
		return
	}
	fmt.Println("Record saved:", id)
}

func listRecords(ctx context.Context, client *vault.Client) {
	records, err := client.ListRecords(ctx)
	if err != nil {
		fmt.Println("List failed:", err)
		return
	}
	if len(records) == 0 {
		fmt.Println("Vault is empty")
		return
	}
	for i, rec := range records {
		line := fmt.Sprintf("%2d. %s (%s)", i+1, rec.Title, rec.Username)
		if rec.URL != "" {
			line += " " + rec.URL
		}
		fmt.Println(line)
	}
}

func showRecord(rec models.VaultRecord, key []byte, toClipboard bool) {
	plain, err := crypto.Open(rec.Secret, key)
	if err != nil {
		// Tag mismatch means the stored blob was tampered with or the
		// key is wrong. Never show partial output.
		fmt.Println("SECURITY: secret failed authentication:", err)
		return
	}

	if toClipboard {
		if err := clipboard.WriteAll(string(plain)); err != nil {
			fmt.Println("Clipboard failed:", err)
			return
		}
		fmt.Println("Secret copied to clipboard")
		return
	}

	fmt.Println("Title:   ", rec.Title)
	fmt.Println("Username:", rec.Username)
	if rec.URL != "" {
		fmt.Println("URL:     ", rec.URL)
	}
	fmt.Println("Secret:  ", string(plain))
	if rec.Notes != "" {
		fmt.Println("Notes:   ", rec.Notes)
	}
}

func editRecord(ctx context.Context, client *vault.Client, key []byte, rec models.VaultRecord) {
	fmt.Println("Leave a field empty to keep the current value.")
	in := vault.RecordInput{
		Title:    orDefault(vault.ReadLine("Title ["+rec.Title+"]: "), rec.Title),
		Username: orDefault(vault.ReadLine("Username ["+rec.Username+"]: "), rec.Username),
		URL:      orDefault(vault.ReadLine("URL ["+rec.URL+"]: "), rec.URL),
		Notes:    orDefault(vault.ReadLine("Notes: "), rec.Notes),
		Secret:   rec.Secret,
	}

	secret, err := vault.ReadPassword("New secret (empty to keep): ")
	if err != nil {
		fmt.Println("Input failed:", err)
		return
	}
	if secret != "" {
		sealed, err := crypto.Seal([]byte(secret), key)
		if err != nil {
			fmt.Println("Encryption failed:", err)
			return
		}
		in.Secret = sealed
	}

	if err := client.UpdateRecord(ctx, rec.ID, in); err != nil {
		fmt.Println("Update failed:", err)
		return
	}
	fmt.Println("Record updated")
}

// main parses command-line flags and dispatches to register or the shell.
func main() {
	var (
		cmd     string
		baseURL string
	)
	flag.StringVar(&cmd, "cmd", "shell", "command to run: register or shell")
	flag.StringVar(&baseURL, "server", "http://localhost:8080", "server base URL")
	flag.Parse()

	fmt.Printf("Build version: %s\n", orDefault(version, "N/A"))
	fmt.Printf("Build date: %s\n", orDefault(buildDate, "N/A"))

	ctx := context.Background()

	client, err := vault.NewClient(baseURL)
	if err != nil {
		log.Fatalf("failed to create client: %v", err)
	}

	email := vault.ReadLine("Email: ")
	password, err := vault.ReadPassword("Master password: ")
	if err != nil {
		log.Fatalf("failed to read password: %v", err)
	}

	if cmd == "register" {
		if err := client.Register(ctx, email, password); err != nil {
			log.Fatalf("registration failed: %v", err)
		}
		fmt.Println("Registered. Run again with -cmd shell to log in.")
		return
	}

	if err := client.Login(ctx, email, password); err != nil {
		log.Fatalf("login failed: %v", err)
	}

	salt, err := client.EncSalt(ctx)
	if err != nil {
		log.Fatalf("failed to fetch encryption salt: %v", err)
	}
	key, err := crypto.DeriveKeyB64([]byte(password), salt)
	if err != nil {
		log.Fatalf("failed to derive vault key: %v", err)
	}

	shell(ctx, client, key)
}

// orDefault returns the first non-zero value (stand-in for cmp.Or,
// which requires Go 1.22+).
func orDefault[T comparable](vals ...T) T {
	var zero T
	for _, v := range vals {
		if v != zero {
			return v
		}
	}
	return zero
}
