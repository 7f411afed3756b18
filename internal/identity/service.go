package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/Divy2095/Foodie/internal/docstore"
	"github.com/Divy2095/Foodie/internal/kvstore"
)

const (
	usersCollection = "users"
	sessionPrefix   = "session:"
)

// Service stores accounts as user documents and live sessions in the
// durable key-value scope under opaque bearer tokens.
type Service struct {
	docs     docstore.Store
	sessions kvstore.Store
}

func NewService(docs docstore.Store, sessions kvstore.Store) *Service {
	return &Service{docs: docs, sessions: sessions}
}

type account struct {
	Email        string `json:"email"`
	DisplayName  string `json:"displayName,omitempty"`
	PasswordHash string `json:"passwordHash"`
	CreatedAt    string `json:"createdAt"`
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

// SignUp creates the user document. The orders array starts empty so
// the buyer history append always has a document to land on.
func (s *Service) SignUp(ctx context.Context, email, password, displayName string) (*User, error) {
	if email == "" || password == "" {
		return nil, errors.New("email and password are required")
	}
	if existing, err := s.findByEmail(ctx, email); err != nil {
		return nil, err
	} else if existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	id := uuid.NewString()
	fields, err := docstore.Encode(account{
		Email:        email,
		DisplayName:  displayName,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, err
	}
	fields["orders"] = []any{}
	if err := s.docs.SetFields(ctx, usersCollection, id, fields); err != nil {
		return nil, err
	}
	return &User{ID: id, Email: email, DisplayName: displayName}, nil
}

// SignIn verifies credentials and opens a session, returning the bearer
// token the client presents on later requests.
func (s *Service) SignIn(ctx context.Context, email, password string) (string, *User, error) {
	doc, err := s.findByEmail(ctx, email)
	if err != nil {
		return "", nil, err
	}
	if doc == nil {
		return "", nil, ErrInvalidCredentials
	}
	var acc account
	if err := docstore.Decode(doc.Fields, &acc); err != nil {
		return "", nil, err
	}
	if !CheckPassword(acc.PasswordHash, password) {
		return "", nil, ErrInvalidCredentials
	}

	user := &User{ID: doc.ID, Email: acc.Email, DisplayName: acc.DisplayName}
	token := uuid.NewString()
	payload, err := json.Marshal(user)
	if err != nil {
		return "", nil, err
	}
	if err := s.sessions.Set(ctx, sessionPrefix+token, string(payload)); err != nil {
		return "", nil, err
	}
	return token, user, nil
}

func (s *Service) CurrentUser(ctx context.Context, token string) (*User, error) {
	if token == "" {
		return nil, ErrNoSession
	}
	raw, err := s.sessions.Get(ctx, sessionPrefix+token)
	if errors.Is(err, kvstore.ErrNoValue) {
		return nil, ErrNoSession
	}
	if err != nil {
		return nil, err
	}
	var user User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, ErrNoSession
	}
	return &user, nil
}

func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	return s.sessions.Remove(ctx, sessionPrefix+token)
}

func (s *Service) findByEmail(ctx context.Context, email string) (*docstore.Document, error) {
	docs, err := s.docs.ListDocuments(ctx, usersCollection)
	if err != nil {
		return nil, err
	}
	for i := range docs {
		if e, _ := docs[i].Fields["email"].(string); e == email {
			return &docs[i], nil
		}
	}
	return nil, nil
}
