package auth

import (
	"context"

	"music-service/internal/user"
)

func (s *Server) findUserByEmail(ctx context.Context, email string) (user.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+user.Columns+` FROM users WHERE email = $1`, email)
	return user.Scan(row)
}

func (s *Server) findUserByID(ctx context.Context, id string) (user.User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+user.Columns+` FROM users WHERE id = $1`, id)
	return user.Scan(row)
}
