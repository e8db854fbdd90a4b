package dto

type AskRequest struct {
	Question string `json:"question"`
	Context  string `json:"context,omitempty"`
}

type AskResponse struct {
	Answer string `json:"answer"`
}
