package othellodto

// ErrorResponse is the body of every non-2xx authority reply.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e ErrorResponse) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Code != "" {
		return e.Code
	}
	return "authority error"
}

const (
	CodeBadRequest  = "bad_request"
	CodeIllegalMove = "illegal_move"
	CodeNoMoves     = "no_moves"
	CodeInternal    = "internal"
)
