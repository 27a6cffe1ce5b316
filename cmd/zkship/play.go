package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"zkship/internal/app"
	"zkship/internal/game"
	"zkship/internal/logger"
)

// cmdPlay runs a full console game: both players in one process, taking
// turns at the keyboard.
func cmdPlay() {
	fs := flag.NewFlagSet("play", flag.ExitOnError)
	size := fs.Int("size", 0, "board size; prompted when omitted")
	ships := fs.Int("ships", 0, "number of ships; prompted when omitted")
	auto := fs.Bool("auto", false, "place ships randomly instead of prompting")
	keysDir := fs.String("keys", "./keys", "keys directory")
	_ = fs.Parse(os.Args[2:])

	in := bufio.NewReader(os.Stdin)

	if *size == 0 {
		*size = promptInt(in, "Choose the size of the board:")
	}
	if *ships == 0 {
		*ships = promptInt(in, "Choose the number of battleships (at most the board size):")
	}
	params, err := gameParams(*size, *ships)
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("invalid parameters")
	}
	fmt.Printf("The board has %d tiles and each player hides %d ships.\n", params.Size, params.Ships)

	m, err := game.NewMatch(params, "Player 1", "Player 2")
	if err != nil {
		logger.Logger().Fatal().Err(err).Msg("cannot create match")
	}

	for i := 0; i < 2; i++ {
		var b game.Board
		if *auto {
			b = game.RandomBoard(params)
		} else {
			fmt.Printf("%s, place your %d battleships!\n", m.Player(i).Name, params.Ships)
			b = placeBoard(in, params)
		}
		if err := m.Place(i, b); err != nil {
			logger.Logger().Fatal().Err(err).Msg("placement rejected")
		}
	}

	// Commit, prove, cross-verify. Either side failing verification ends
	// the program before any tile is revealed.
	fmt.Println("Committing boards and generating validity proofs..")
	svc := app.NewService(*keysDir)
	if err := svc.SetupMatch(m); err != nil {
		logger.Logger().Fatal().Err(err).Msg("setup rejected")
	}
	fmt.Println("Both board proofs verified. Game on!")

	for m.Phase() == game.PhasePlaying {
		attacker := m.Player(m.Turn())
		defender := m.Player(1 - m.Turn())

		fmt.Printf("\n%s's turn! Your view of the opponent's board:\n", attacker.Name)
		fmt.Print(renderView(attacker.View()))
		tile := promptInt(in, "Pick a tile to attack:")

		res, err := m.Fire(tile)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if res.Cheated {
			fmt.Printf("%s tried to cheat! %s wins.\n", defender.Name, attacker.Name)
			return
		}
		if res.Hit {
			fmt.Println("Hit! The opening matches the commitment.")
		} else {
			fmt.Println("Miss. The opening matches the commitment.")
		}
		fmt.Printf("%s has %d ship cells left.\n", defender.Name, res.Remaining)
	}

	if winner, over := m.Winner(); over {
		fmt.Printf("\n%s wins!\n", m.Player(winner).Name)
	}
}

// gameParams checks the raw flag or prompt values against the uint8
// wire range before narrowing them.
func gameParams(size, ships int) (game.PublicParams, error) {
	if size < 1 || size > 255 {
		return game.PublicParams{}, fmt.Errorf("board size %d is out of range (1..255)", size)
	}
	if ships < 0 || ships > 255 {
		return game.PublicParams{}, fmt.Errorf("ship count %d is out of range (0..255)", ships)
	}
	params := game.PublicParams{Ships: uint8(ships), Size: uint8(size)}
	if err := params.Validate(); err != nil {
		return game.PublicParams{}, err
	}
	return params, nil
}

// placeBoard prompts one player through placing each ship on a distinct
// tile.
func placeBoard(in *bufio.Reader, p game.PublicParams) game.Board {
	b := game.NewBoard(p.Size)
	placed := 0
	for placed < int(p.Ships) {
		fmt.Print(renderBoard(b))
		t := promptInt(in, "Type a tile number to position your battleship:")
		switch {
		case t < 0 || t >= len(b):
			fmt.Println("Target not on board.")
		case b[t] == 1:
			fmt.Println("There is already a ship there.")
		default:
			b[t] = 1
			placed++
		}
	}
	fmt.Println(strings.Repeat("-", 64))
	return b
}

func promptInt(in *bufio.Reader, msg string) int {
	for {
		fmt.Println(msg)
		line, err := in.ReadString('\n')
		if err != nil {
			logger.Logger().Fatal().Err(err).Msg("reading input")
		}
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			fmt.Println("Please type a number.")
			continue
		}
		return n
	}
}
