package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"quill/app/config"
	"quill/app/models"
	"quill/app/repositories"

	"go.uber.org/zap"
)

// stdin is where confirmation prompts read from.
var stdin io.Reader = os.Stdin

// HandleCommand runs a database or server subcommand and returns an exit
// code.
func HandleCommand(ctx context.Context, cfg config.Config, log *zap.Logger, args []string) int {
	if len(args) < 1 {
		PrintHelp()
		return 1
	}

	switch args[0] {
	case "serve":
		if err := RunAppServer(ctx, cfg, log); err != nil {
			log.Error("server stopped", zap.Error(err))
			return 1
		}
		return 0
	case "clean":
		return clean(cfg.DBPath)
	case "init":
		return initDb(cfg.DBPath)
	case "backup":
		target := ""
		if len(args) > 1 {
			target = args[1]
		}
		return backup(cfg.DBPath, target)
	case "restore":
		if len(args) < 2 {
			fmt.Println("Error: backup file path required for restore")
			return 1
		}
		return restore(cfg.DBPath, args[1])
	case "promote":
		if len(args) < 2 {
			fmt.Println("Error: user email required for promote")
			return 1
		}
		role := models.RoleAdmin
		if len(args) > 2 {
			role = models.Role(strings.ToUpper(args[2]))
		}
		return promote(cfg.DBPath, args[1], role)
	case "help":
		PrintHelp()
		return 0
	default:
		fmt.Printf("Unknown command: %s\n\n", args[0])
		PrintHelp()
		return 1
	}
}

func PrintHelp() {
	helpText := `Usage: quill <command> [options]

Commands:
  serve                           Run the blog API server
  init                            Initialize a new empty database
  clean                           Delete the database
  backup [file]                   Write a full backup of the database
  restore <file>                  Restore the database from a backup
  promote <email> [role]          Change a user's role (default ADMIN)
  version                         Show version information
  help                            Display this help message
`
	fmt.Println(helpText)
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func confirm(prompt string) bool {
	fmt.Print(prompt + " [y/N] ")
	var answer string
	fmt.Fscanln(stdin, &answer)
	return answer == "y" || answer == "Y"
}

func clean(dbPath string) int {
	if !exists(dbPath) {
		fmt.Println("Database is already clean (does not exist)")
		return 0
	}
	if !confirm("Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Println("Operation cancelled")
		return 1
	}
	if err := os.RemoveAll(dbPath); err != nil {
		fmt.Printf("Failed to clean database: %v\n", err)
		return 1
	}
	fmt.Println("Database cleaned successfully")
	return 0
}

func initDb(dbPath string) int {
	if exists(dbPath) {
		fmt.Println("Database already exists. Use 'clean' first if you want to reinitialize.")
		return 1
	}
	db, err := repositories.Open(dbPath)
	if err != nil {
		fmt.Printf("Failed to initialize database: %v\n", err)
		return 1
	}
	if err := db.Close(); err != nil {
		fmt.Printf("Failed to close database: %v\n", err)
		return 1
	}
	fmt.Println("Database initialized successfully")
	return 0
}

// backup writes a full backup to target, or to a timestamped file in a
// backups directory next to the database.
func backup(dbPath, target string) int {
	if !exists(dbPath) {
		fmt.Println("No database exists to backup")
		return 1
	}
	if target == "" {
		target = filepath.Join(filepath.Dir(dbPath), "backups", fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		fmt.Printf("Failed to create backup directory: %v\n", err)
		return 1
	}

	db, err := repositories.Open(dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer db.Close()

	f, err := os.Create(target)
	if err != nil {
		fmt.Printf("Failed to create backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	if _, err := db.Backup(f, 0); err != nil {
		fmt.Printf("Failed to backup database: %v\n", err)
		return 1
	}
	fmt.Printf("Database backed up successfully to %s\n", target)
	return 0
}

func restore(dbPath, backupFile string) int {
	fi, err := os.Stat(backupFile)
	if err != nil {
		fmt.Printf("Backup file does not exist: %s\n", backupFile)
		return 1
	}
	if fi.Size() == 0 {
		fmt.Printf("Backup file is empty: %s\n", backupFile)
		return 1
	}

	if exists(dbPath) {
		if !confirm("Existing database found. Do you want to replace it?") {
			fmt.Println("Operation cancelled")
			return 1
		}
		if err := os.RemoveAll(dbPath); err != nil {
			fmt.Printf("Failed to remove existing database: %v\n", err)
			return 1
		}
	}

	f, err := os.Open(backupFile)
	if err != nil {
		fmt.Printf("Failed to open backup file: %v\n", err)
		return 1
	}
	defer f.Close()

	db, err := repositories.Open(dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer db.Close()

	if err := db.Load(f, 256); err != nil {
		fmt.Printf("Failed to restore database: %v\n", err)
		return 1
	}
	fmt.Println("Database restored successfully")
	return 0
}

func promote(dbPath, email string, role models.Role) int {
	if !role.Valid() {
		fmt.Printf("Invalid role: %s\n", role)
		return 1
	}
	if !exists(dbPath) {
		fmt.Println("No database exists")
		return 1
	}

	db, err := repositories.Open(dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		return 1
	}
	defer db.Close()

	users := repositories.NewBadgerUserRepository(db)
	user, err := users.GetByEmail(email)
	if errors.Is(err, repositories.ErrNotFound) {
		fmt.Printf("No user with email %s\n", email)
		return 1
	}
	if err != nil {
		fmt.Printf("Failed to find user: %v\n", err)
		return 1
	}

	user.Role = role
	user.UpdatedAt = time.Now()
	if err := users.Update(user); err != nil {
		fmt.Printf("Failed to update user: %v\n", err)
		return 1
	}
	fmt.Printf("%s is now %s\n", user.Email, role)
	return 0
}
