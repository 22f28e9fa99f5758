// Package dto provides data transfer objects for the user HTTP layer.
package dto

import (
	"github.com/talkbase/talkbase/internal/user/domain"
	"github.com/talkbase/talkbase/internal/user/usecase"
)

// ToRegisterUserInput converts a RegisterUserRequest DTO to a RegisterUserInput use case input
func ToRegisterUserInput(req RegisterUserRequest) usecase.RegisterUserInput {
	return usecase.RegisterUserInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
	}
}

// ToLoginInput converts a LoginRequest DTO to a LoginInput use case input
func ToLoginInput(req LoginRequest) usecase.LoginInput {
	return usecase.LoginInput{
		Username: req.Username,
		Password: req.Password,
	}
}

// ToUserResponse converts a domain User model to a UserResponse DTO
// This enforces the boundary between internal domain models and external API contracts
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Username:  user.Username,
		Email:     user.Email,
		IsActive:  user.IsActive,
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}
}

// ToUserListResponse converts a slice of domain users to a UserListResponse DTO
func ToUserListResponse(users []*domain.User) UserListResponse {
	response := UserListResponse{Users: make([]UserResponse, 0, len(users))}
	for _, user := range users {
		response.Users = append(response.Users, ToUserResponse(user))
	}
	return response
}

// ToLoginResponse converts a LoginOutput use case output to a LoginResponse DTO
func ToLoginResponse(output *usecase.LoginOutput) LoginResponse {
	return LoginResponse{
		AccessToken: output.AccessToken,
		TokenType:   output.TokenType,
		ExpiresIn:   output.ExpiresIn,
	}
}
