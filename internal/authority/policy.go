package authority

import (
	"math/rand"

	"github.com/park285/Cheese-Othello-bot/internal/othello"
)

// squareWeights favours corners and edges and penalises the squares that
// hand a corner to the opponent.
var squareWeights = [othello.Size][othello.Size]int{
	{100, -20, 10, 5, 5, 10, -20, 100},
	{-20, -50, -2, -2, -2, -2, -50, -20},
	{10, -2, 1, 1, 1, 1, -2, 10},
	{5, -2, 1, 0, 0, 1, -2, 5},
	{5, -2, 1, 0, 0, 1, -2, 5},
	{10, -2, 1, 1, 1, 1, -2, 10},
	{-20, -50, -2, -2, -2, -2, -50, -20},
	{100, -20, 10, 5, 5, 10, -20, 100},
}

// chooseMove picks a move for p. Difficulty 1 plays randomly, 2 maximises
// discs flipped, 3 adds the positional weight table. Ties go to the first
// move in row-major order.
func chooseMove(b othello.Board, p othello.Player, difficulty int, rng *rand.Rand) (othello.Move, bool) {
	moves := othello.LegalMoves(b, p)
	if len(moves) == 0 {
		return othello.Move{}, false
	}
	if difficulty <= 1 {
		return moves[rng.Intn(len(moves))], true
	}

	best, bestScore := moves[0], 0
	for i, m := range moves {
		score := othello.Flips(b, m)
		if difficulty >= 3 {
			score = score*2 + squareWeights[m.Row][m.Col]
		}
		if i == 0 || score > bestScore {
			best, bestScore = m, score
		}
	}
	return best, true
}
