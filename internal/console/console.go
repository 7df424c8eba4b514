package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/benbeisheim/shadowchess/internal/model"
)

var errStop = errors.New("stop")

// Driver plays a two-player game over a line-oriented text stream.
type Driver struct {
	in  *bufio.Scanner
	out io.Writer
	// Default names used when a player enters a blank one.
	WhiteName string
	BlackName string
}

func NewDriver(in io.Reader, out io.Writer, whiteName, blackName string) *Driver {
	return &Driver{
		in:        bufio.NewScanner(in),
		out:       out,
		WhiteName: whiteName,
		BlackName: blackName,
	}
}

// Run prompts for player names and plays until the game ends, the player
// types stop, or input runs out. It returns the game as left.
func (d *Driver) Run() (*model.Game, error) {
	white, err := d.promptName("Player 1: ", d.WhiteName)
	if err != nil {
		return nil, ignoreStop(err)
	}
	black, err := d.promptName("Player 2: ", d.BlackName)
	if err != nil {
		return nil, ignoreStop(err)
	}
	g := model.NewGame(white, black)

	for !g.IsGameOver() {
		player := g.White()
		if g.WhoseTurn() == model.Black {
			player = g.Black()
		}
		fmt.Fprintf(d.out, "\n%s's turn (%s)\n", player, player.Color)
		if g.IsInCheck(player.Color) {
			fmt.Fprintf(d.out, "%s is in check.\n", player)
		}
		fmt.Fprint(d.out, g)
		fmt.Fprintln(d.out, "Enter 'stop' at any time to quit the game.")

		src, err := d.promptSquare("Piece to move: ")
		if err != nil {
			return g, ignoreStop(err)
		}
		dst, err := d.promptSquare("To square: ")
		if err != nil {
			return g, ignoreStop(err)
		}

		ok, err := g.ProposeMove(src, dst)
		if err != nil {
			return g, err
		}
		if !ok {
			fmt.Fprintln(d.out, "\nILLEGAL MOVE")
			continue
		}
		if err := d.promote(g); err != nil {
			return g, ignoreStop(err)
		}
	}

	fmt.Fprint(d.out, g)
	if winner, ok := g.Winner(); ok {
		name := g.White()
		if winner == model.Black {
			name = g.Black()
		}
		fmt.Fprintf(d.out, "%s wins!\n", name)
	} else if g.IsStalemate() {
		fmt.Fprintln(d.out, "Stalemate!")
	}
	return g, nil
}

// promote asks for a promotion code until the pending pawn is replaced.
func (d *Driver) promote(g *model.Game) error {
	for {
		square, pending := g.PendingPromotion()
		if !pending {
			return nil
		}
		fmt.Fprintf(d.out, "\nChoose your pawn promotion on %s:\nQ - Queen\nR - Rook\nB - Bishop\nN - Knight\n", square)
		line, err := d.readLine()
		if err != nil {
			return err
		}
		kind, ok := model.ParsePromotion(line)
		if !ok {
			continue
		}
		if _, err := g.ResolvePromotion(g.WhoseTurn(), kind); err != nil {
			return err
		}
	}
}

func (d *Driver) promptName(prompt, def string) (string, error) {
	fmt.Fprint(d.out, prompt)
	name, err := d.readLine()
	if err != nil {
		return "", err
	}
	if name == "" {
		return def, nil
	}
	return name, nil
}

// promptSquare reads squares until one parses.
func (d *Driver) promptSquare(prompt string) (model.Position, error) {
	fmt.Fprint(d.out, prompt)
	for {
		line, err := d.readLine()
		if err != nil {
			return model.Position{}, err
		}
		pos, err := model.ParsePosition(line)
		if err == nil {
			return pos, nil
		}
		fmt.Fprint(d.out, "Invalid input, try again: ")
	}
}

// readLine returns errStop on "stop" and io.EOF when input runs out.
func (d *Driver) readLine() (string, error) {
	if !d.in.Scan() {
		if err := d.in.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	line := strings.TrimSpace(d.in.Text())
	if strings.EqualFold(line, "stop") {
		return "", errStop
	}
	return line, nil
}

func ignoreStop(err error) error {
	if errors.Is(err, errStop) || errors.Is(err, io.EOF) {
		return nil
	}
	return err
}
