package handler

import (
	"bytes"
	"encoding/json"
)

// errorResponse is the standard error envelope returned on all 4xx/5xx responses.
type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error,omitempty"`
}

type messageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// skillList accepts either a single skill string or an array of skills.
type skillList []string

func (s *skillList) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*s = nil
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var one string
		if err := json.Unmarshal(data, &one); err != nil {
			return err
		}
		*s = skillList{one}
		return nil
	}
	var many []string
	if err := json.Unmarshal(data, &many); err != nil {
		return err
	}
	*s = many
	return nil
}

type registerRequest struct {
	Name     string    `json:"name"     validate:"required"`
	Email    string    `json:"email"    validate:"required,email"`
	Password string    `json:"password" validate:"required"`
	Role     string    `json:"role"`
	Location string    `json:"location"`
	Phone    string    `json:"phone"`
	Skills   skillList `json:"skills"   swaggertype:"array,string"`
}

type registerResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	UserID  string `json:"userId"`
}

type loginRequest struct {
	Email    string `json:"email"    validate:"required"`
	Password string `json:"password" validate:"required"`
}

type loginUser struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Location string   `json:"location"`
	Email    string   `json:"email"`
	Skills   []string `json:"skills"`
}

type loginResponse struct {
	Success bool      `json:"success"`
	Token   string    `json:"token"`
	Role    string    `json:"role"`
	User    loginUser `json:"user"`
}
