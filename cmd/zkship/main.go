package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"zkship/internal/app"
	"zkship/internal/logger"
	"zkship/internal/server"
	"zkship/internal/zk"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}
	switch os.Args[1] {
	case "keys":
		cmdKeys()
	case "play":
		cmdPlay()
	case "serve":
		cmdServe()
	default:
		usage()
	}
}

func usage() {
	fmt.Print(`zkship — battleship with provably honest boards

Commands:
  keys  --size N --keys ./keys
  play  [--size N --ships K] [--auto] --keys ./keys
  serve --addr :8080 --keys ./keys
`)
}

func cmdKeys() {
	fs := flag.NewFlagSet("keys", flag.ExitOnError)
	size := fs.Int("size", 9, "board size (number of tiles)")
	keysDir := fs.String("keys", "./keys", "keys directory")
	_ = fs.Parse(os.Args[2:])

	if _, err := zk.LoadSession(*keysDir, *size); err != nil {
		logger.Logger().Fatal().Err(err).Msg("key generation failed")
	}
	fmt.Printf("✓ keys for %d-tile boards ready in %s\n", *size, *keysDir)
}

func cmdServe() {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	addr := fs.String("addr", ":8080", "listen address")
	keysDir := fs.String("keys", "./keys", "keys directory")
	_ = fs.Parse(os.Args[2:])

	svc := app.NewService(*keysDir)
	srv := server.New(svc)
	mux := http.NewServeMux()
	srv.Routes(mux)

	logger.Logger().Info().Str("addr", *addr).Msg("serving")
	if err := http.ListenAndServe(*addr, server.WithCORS(mux)); err != nil {
		logger.Logger().Fatal().Err(err).Msg("server stopped")
	}
}
