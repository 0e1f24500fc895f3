// Command issue-token signs a student or admin JWT for local testing.
// Production tokens come from the login service sharing JWT_SECRET.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"syscall"

	"github.com/stemsi/exstem-quiz/internal/config"
	"github.com/stemsi/exstem-quiz/internal/logger"
	"github.com/stemsi/exstem-quiz/internal/model"
	"github.com/stemsi/exstem-quiz/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Issue Development Token ===")

	// Secret
	if os.Getenv("JWT_SECRET") == "" {
		fmt.Print("Enter JWT Secret (empty keeps the default): ")
		byteSecret, err := term.ReadPassword(int(syscall.Stdin))
		if err != nil {
			fmt.Println("\nError reading secret")
			return
		}
		fmt.Println() // Newline after secret input
		if secret := strings.TrimSpace(string(byteSecret)); secret != "" {
			cfg.JWTSecret = secret
		}
	}

	// Token type
	fmt.Print("Token Type [student/admin] (default student): ")
	typeStr, _ := reader.ReadString('\n')
	tokenType := service.TokenType(strings.ToLower(strings.TrimSpace(typeStr)))
	if tokenType == "" {
		tokenType = service.TokenTypeStudent
	}
	if tokenType != service.TokenTypeStudent && tokenType != service.TokenTypeAdmin {
		fmt.Println("Error: Token type must be student or admin")
		return
	}

	// User ID
	fmt.Print("Enter User ID: ")
	userIDStr, _ := reader.ReadString('\n')
	userID, err := strconv.Atoi(strings.TrimSpace(userIDStr))
	if err != nil || userID < 1 {
		fmt.Println("Error: User ID must be a positive number")
		return
	}

	// Permissions
	var permissions []string
	if tokenType == service.TokenTypeAdmin {
		fmt.Print("Permissions, comma separated (default all): ")
		permStr, _ := reader.ReadString('\n')
		permissions, err = parsePermissions(permStr)
		if err != nil {
			fmt.Println("Error:", err)
			return
		}
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	token, err := service.NewAuthService(cfg).GenerateToken(tokenType, userID, permissions)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to sign token")
	}

	log.Info().
		Str("type", string(tokenType)).
		Int("user_id", userID).
		Strs("permissions", permissions).
		Dur("expires_in", cfg.JWTExpiry).
		Msg("Token issued")
	fmt.Printf("\n%s\n", token)
}

// parsePermissions returns every known permission for empty input.
func parsePermissions(raw string) ([]string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		all := make([]string, len(model.AllPermissions))
		for i, p := range model.AllPermissions {
			all[i] = string(p)
		}
		return all, nil
	}

	known := make(map[string]bool, len(model.AllPermissions))
	for _, p := range model.AllPermissions {
		known[string(p)] = true
	}

	var out []string
	for _, p := range strings.Split(raw, ",") {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if !known[p] {
			return nil, fmt.Errorf("unknown permission %q", p)
		}
		out = append(out, p)
	}
	return out, nil
}
