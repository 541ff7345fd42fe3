package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/banterhq/cubby/internal/auth"
	redisclient "github.com/banterhq/cubby/internal/redis"
	"github.com/banterhq/cubby/internal/snowflake"
	"github.com/banterhq/cubby/internal/storage"
)

// Set via -ldflags at build time.
var version = "dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "migrate":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: cubby-cli migrate")
			fmt.Println()
			fmt.Println("Run database migrations from the migrations/ directory.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runMigrate())
	case "seed":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: cubby-cli seed")
			fmt.Println()
			fmt.Println("Seed the database with demo data: 3 users, a room with 2 participants, and a message.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL  PostgreSQL connection string (required)")
			return
		}
		os.Exit(runSeed())
	case "health":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: cubby-cli health")
			fmt.Println()
			fmt.Println("Probe the backing services: PostgreSQL, Redis, and the object store.")
			fmt.Println("A probe is skipped when its environment is not set.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  DATABASE_URL      PostgreSQL connection string")
			fmt.Println("  REDIS_URL         Redis URL (default: redis://localhost:6379)")
			fmt.Println("  MINIO_ENDPOINT    Object store endpoint")
			fmt.Println("  MINIO_ACCESS_KEY  Object store access key")
			fmt.Println("  MINIO_SECRET_KEY  Object store secret key")
			fmt.Println("  MINIO_BUCKET      Bucket name (default: cubby)")
			return
		}
		os.Exit(runHealth())
	case "token":
		if hasFlag("--help", os.Args[2:]) {
			fmt.Println("Usage: cubby-cli token <user-id>")
			fmt.Println()
			fmt.Println("Mint an access token and a live session for a user, for exercising the API.")
			fmt.Println()
			fmt.Println("Environment:")
			fmt.Println("  JWT_SECRET  Token signing secret (required, must match the server)")
			fmt.Println("  REDIS_URL   Redis URL (default: redis://localhost:6379)")
			return
		}
		os.Exit(runToken(os.Args[2:]))
	case "version":
		fmt.Printf("cubby-cli %s\n", version)
	case "--help", "-h", "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("Usage: cubby-cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  migrate  Run database migrations")
	fmt.Println("  seed     Seed demo data (users, room, membership, message)")
	fmt.Println("  health   Probe PostgreSQL, Redis, and the object store")
	fmt.Println("  token    Mint a dev access token and session for a user")
	fmt.Println("  version  Print version info")
	fmt.Println()
	fmt.Println("Run 'cubby-cli <command> --help' for details on a command.")
}

func hasFlag(flag string, args []string) bool {
	for _, a := range args {
		if a == flag {
			return true
		}
	}
	return false
}

func requireEnv(key string) string {
	v := os.Getenv(key)
	if v == "" {
		fmt.Fprintf(os.Stderr, "error: %s environment variable is required\n", key)
		os.Exit(1)
	}
	return v
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// --- migrate ---

func runMigrate() int {
	dbURL := requireEnv("DATABASE_URL")

	fmt.Println("connecting to database...")
	m, err := migrate.New("file://migrations", dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: migration init failed: %v\n", err)
		return 1
	}
	defer m.Close()

	fmt.Println("running migrations...")
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		fmt.Fprintf(os.Stderr, "error: migration failed: %v\n", err)
		return 1
	}

	v, dirty, _ := m.Version()
	if err == migrate.ErrNoChange {
		fmt.Printf("no new migrations (current version: %d)\n", v)
	} else {
		fmt.Printf("migrations applied (version: %d, dirty: %v)\n", v, dirty)
	}
	return 0
}

// --- seed ---

func runSeed() int {
	dbURL := requireEnv("DATABASE_URL")
	ctx := context.Background()

	fmt.Println("connecting to database...")
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: database connection failed: %v\n", err)
		return 1
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: database ping failed: %v\n", err)
		return 1
	}

	sf, err := snowflake.NewGenerator(0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: snowflake init failed: %v\n", err)
		return 1
	}

	// Hash passwords for demo users.
	fmt.Println("hashing passwords...")
	aliceHash, err := auth.HashPassword("password123")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hashing password: %v\n", err)
		return 1
	}
	bobHash, err := auth.HashPassword("password456")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hashing password: %v\n", err)
		return 1
	}
	carolHash, err := auth.HashPassword("password789")
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: hashing password: %v\n", err)
		return 1
	}

	// Generate IDs.
	aliceID := sf.Generate()
	bobID := sf.Generate()
	carolID := sf.Generate()
	roomID := sf.Generate()
	msgID := sf.Generate()

	now := time.Now()

	tx, err := pool.Begin(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: starting transaction: %v\n", err)
		return 1
	}
	defer tx.Rollback(ctx)

	// Users. Carol stays outside the room to exercise access denials.
	fmt.Println("creating users...")
	_, err = tx.Exec(ctx,
		`INSERT INTO users (id, username, display_name, password_hash, created_at) VALUES ($1,$2,$3,$4,$5), ($6,$7,$8,$9,$10), ($11,$12,$13,$14,$15)
		 ON CONFLICT (id) DO NOTHING`,
		aliceID.Int64(), "alice", "Alice", aliceHash, now,
		bobID.Int64(), "bob", "Bob", bobHash, now,
		carolID.Int64(), "carol", "Carol", carolHash, now,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating users: %v\n", err)
		return 1
	}

	// Room.
	fmt.Println("creating room...")
	_, err = tx.Exec(ctx,
		`INSERT INTO rooms (id, name, created_at) VALUES ($1,$2,$3)
		 ON CONFLICT (id) DO NOTHING`,
		roomID.Int64(), "general", now,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating room: %v\n", err)
		return 1
	}

	// Participants.
	fmt.Println("adding participants...")
	_, err = tx.Exec(ctx,
		`INSERT INTO room_participants (room_id, user_id) VALUES ($1,$2), ($3,$4)
		 ON CONFLICT DO NOTHING`,
		roomID.Int64(), aliceID.Int64(),
		roomID.Int64(), bobID.Int64(),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: adding participants: %v\n", err)
		return 1
	}

	// A first message.
	fmt.Println("creating message...")
	_, err = tx.Exec(ctx,
		`INSERT INTO messages (id, room_id, author_id, content, created_at) VALUES ($1,$2,$3,$4,$5)
		 ON CONFLICT (id) DO NOTHING`,
		msgID.Int64(), roomID.Int64(), aliceID.Int64(), "Welcome to #general!", now,
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: creating message: %v\n", err)
		return 1
	}

	if err := tx.Commit(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: committing transaction: %v\n", err)
		return 1
	}

	fmt.Println()
	fmt.Println("seed complete:")
	fmt.Printf("  users: alice (password123, id %s)\n", aliceID)
	fmt.Printf("         bob   (password456, id %s)\n", bobID)
	fmt.Printf("         carol (password789, id %s, not in the room)\n", carolID)
	fmt.Printf("  room:  general (id %s, participants: alice, bob)\n", roomID)
	return 0
}

// --- health ---

func runHealth() int {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	failed := 0

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		fmt.Print("postgres: ")
		pool, err := pgxpool.New(ctx, dbURL)
		if err == nil {
			err = pool.Ping(ctx)
			pool.Close()
		}
		if err != nil {
			fmt.Printf("down (%v)\n", err)
			failed++
		} else {
			fmt.Println("ok")
		}
	} else {
		fmt.Println("postgres: skipped (DATABASE_URL not set)")
	}

	fmt.Print("redis: ")
	rdb, err := redisclient.NewClient(envOr("REDIS_URL", "redis://localhost:6379"))
	if err == nil {
		err = rdb.Ping(ctx)
		rdb.Close()
	}
	if err != nil {
		fmt.Printf("down (%v)\n", err)
		failed++
	} else {
		fmt.Println("ok")
	}

	if endpoint := os.Getenv("MINIO_ENDPOINT"); endpoint != "" {
		fmt.Print("object store: ")
		_, err := storage.NewMinIOClient(
			endpoint,
			os.Getenv("MINIO_ACCESS_KEY"),
			os.Getenv("MINIO_SECRET_KEY"),
			envOr("MINIO_BUCKET", "cubby"),
			false,
		)
		if err != nil {
			fmt.Printf("down (%v)\n", err)
			failed++
		} else {
			fmt.Println("ok")
		}
	} else {
		fmt.Println("object store: skipped (MINIO_ENDPOINT not set)")
	}

	if failed > 0 {
		fmt.Fprintf(os.Stderr, "%d probe(s) failed\n", failed)
		return 1
	}
	fmt.Println("all probes passed")
	return 0
}

// --- token ---

func runToken(args []string) int {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "error: user id argument is required")
		fmt.Fprintln(os.Stderr, "usage: cubby-cli token <user-id>")
		return 1
	}
	userID, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: invalid user id %q\n", args[0])
		return 1
	}

	secret := requireEnv("JWT_SECRET")

	rdb, err := redisclient.NewClient(envOr("REDIS_URL", "redis://localhost:6379"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: redis connection failed: %v\n", err)
		return 1
	}
	defer rdb.Close()

	ctx := context.Background()
	sessionID := uuid.NewString()
	if err := rdb.StoreSession(ctx, sessionID, userID, 24*time.Hour); err != nil {
		fmt.Fprintf(os.Stderr, "error: storing session: %v\n", err)
		return 1
	}

	token, err := auth.NewTokenService(secret).GenerateAccessToken(userID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: signing token: %v\n", err)
		return 1
	}

	fmt.Printf("token:      %s\n", token)
	fmt.Printf("session_id: %s\n", sessionID)
	fmt.Println()
	fmt.Println("example:")
	fmt.Printf("  curl -H 'Authorization: Bearer %s' -H 'X-Session-Id: %s' http://localhost:8080/users/@me\n", token, sessionID)
	return 0
}
