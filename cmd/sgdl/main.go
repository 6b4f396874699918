// Command sgdl plays a compiled rule description interactively: it
// prints the player-visible board, lists the currently legal actions
// and applies the chosen one until the game is won.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joeshaw/envdecode"
	"github.com/sirupsen/logrus"

	"github.com/haldis/sgdl"
)

type config struct {
	GameFile string `env:"SGDL_GAME,required"`
	Seed     int64  `env:"SGDL_SEED,default=42"`
	LogLevel string `env:"SGDL_LOG_LEVEL,default=warning"`
}

func main() {
	var cfg config
	if err := envdecode.Decode(&cfg); err != nil {
		logrus.Fatal(err)
	}
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		logger.Fatal(err)
	}
	logger.SetLevel(level)

	source, err := os.ReadFile(cfg.GameFile)
	if err != nil {
		logger.Fatal(err)
	}
	game, err := sgdl.CompileWithLogger(string(source), cfg.Seed, logger)
	if err != nil {
		logger.Fatal(err)
	}

	scanner := bufio.NewScanner(os.Stdin)
	for !game.IsWin() {
		fmt.Println(game.GameView())
		valid := game.PossibleActions(true)
		if len(valid) == 0 {
			fmt.Println("No valid actions left.")
			return
		}
		for i, action := range valid {
			fmt.Printf("%d: %s\n", i, action)
		}
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		input := strings.TrimSpace(scanner.Text())
		if index, err := strconv.Atoi(input); err == nil {
			if index < 0 || index >= len(valid) {
				fmt.Println("Action index out of range.")
				continue
			}
			game.Act(valid[index], true)
			continue
		}
		ok, err := game.PerformAction(input, true)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if !ok {
			fmt.Println("Illegal move.")
		}
	}
	fmt.Println(game.GameView())
	fmt.Println("You won!")
}
