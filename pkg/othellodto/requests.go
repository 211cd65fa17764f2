package othellodto

type NewGameRequest struct{}

type BoardResponse struct {
	Board Grid `json:"board"`
}

type MoveRequest struct {
	Board  Grid `json:"board"`
	Player int  `json:"player"`
	Row    int  `json:"row"`
	Col    int  `json:"col"`
}

type BotMoveRequest struct {
	Board      Grid `json:"board"`
	Player     int  `json:"player"`
	Difficulty int  `json:"difficulty"`
}

// BotMoveResponse carries the chosen square alongside the resulting board.
type BotMoveResponse struct {
	Board Grid `json:"board"`
	Row   int  `json:"row"`
	Col   int  `json:"col"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
